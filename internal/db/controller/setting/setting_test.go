package setting

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
	"github.com/GoShopAdmin/GoShopAdmin/internal/settings"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// Migrate the schema
	err = db.AutoMigrate(&models.SettingGroup{}, &models.Setting{}, &models.SettingHistory{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedGroup inserts a settings group.
func seedGroup(t *testing.T, db *gorm.DB, slug string, active bool) {
	t.Helper()

	err := db.Create(&models.SettingGroup{Slug: slug, Name: slug, IsActive: active}).Error
	require.NoError(t, err, "failed to seed group")
}

// seedSettings inserts test data into the database.
func seedSettings(t *testing.T, db *gorm.DB, entries []models.Setting) {
	t.Helper()

	for _, entry := range entries {
		err := db.Create(&entry).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func historyCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.SettingHistory{}).Count(&count).Error)

	return count
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)
	seedGroup(t, db, "general", true)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		key           string
		seedData      []models.Setting
		expectedError error
		expectedValue string
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			key:           "site_title",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty key",
			dbParam:       db,
			key:           "",
			expectedError: ErrSettingKeyEmpty,
		},
		{
			name:          "unknown key",
			dbParam:       db,
			key:           "nonexistent",
			expectedError: ErrUnknownSettingKey,
		},
		{
			name:    "successful get",
			dbParam: db,
			key:     "site_title",
			seedData: []models.Setting{
				{Key: "site_title", Group: "general", Type: "text", Value: "My Shop"},
			},
			expectedValue: "My Shop",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Clean database for each test
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			got, err := Get(tc.dbParam, tc.key)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedValue, got.Value)
		})
	}
}

func TestCreate(t *testing.T) {
	testCases := []struct {
		name          string
		entry         models.Setting
		expectedError error
	}{
		{
			name:          "empty key",
			entry:         models.Setting{Group: "general", Type: "text"},
			expectedError: ErrSettingKeyEmpty,
		},
		{
			name:          "unknown type",
			entry:         models.Setting{Key: "k", Group: "general", Type: "telepathy"},
			expectedError: settings.ErrUnknownType,
		},
		{
			name:          "select without options",
			entry:         models.Setting{Key: "k", Group: "general", Type: "select"},
			expectedError: settings.ErrOptionsRequired,
		},
		{
			name:          "options on non-select type",
			entry:         models.Setting{Key: "k", Group: "general", Type: "text", Options: `["a"]`},
			expectedError: settings.ErrOptionsNotAllowed,
		},
		{
			name:          "unknown group",
			entry:         models.Setting{Key: "k", Group: "nope", Type: "text"},
			expectedError: ErrGroupNotFound,
		},
		{
			name:          "duplicate key",
			entry:         models.Setting{Key: "existing", Group: "general", Type: "text"},
			expectedError: ErrDuplicateKey,
		},
		{
			name:          "required with empty initial value",
			entry:         models.Setting{Key: "k", Group: "general", Type: "text", IsRequired: true},
			expectedError: ErrRequiredFieldMissing,
		},
		{
			name:          "initial value fails type check",
			entry:         models.Setting{Key: "k", Group: "general", Type: "number", Value: "abc"},
			expectedError: settings.ErrTypeMismatch,
		},
		{
			name:  "successful create",
			entry: models.Setting{Key: "k", Group: "general", Type: "text", Value: "hello"},
		},
		{
			name: "successful select create",
			entry: models.Setting{
				Key: "currency", Group: "general", Type: "select",
				Value: "EUR", Options: `["EUR","USD"]`,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupTestDB(t)
			seedGroup(t, db, "general", true)
			seedSettings(t, db, []models.Setting{
				{Key: "existing", Group: "general", Type: "text"},
			})

			entry := tc.entry
			err := Create(db, &entry)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)

			stored, err := Get(db, entry.Key)
			require.NoError(t, err)
			assert.Equal(t, entry.Value, stored.Value)
		})
	}
}

func TestCreateNilDB(t *testing.T) {
	err := Create(nil, &models.Setting{Key: "k", Group: "general", Type: "text"})
	assert.ErrorIs(t, err, ErrDBNil)
}

func TestUpdateValue(t *testing.T) {
	seedData := []models.Setting{
		{Key: "site_title", Group: "general", Type: "text", Value: "My Shop", ValidationRule: "required|max:120", IsRequired: true},
		{Key: "max_upload_mb", Group: "general", Type: "number", Value: "16", ValidationRule: "numeric|max:100"},
		{Key: "contact_email", Group: "general", Type: "email", Value: "shop@example.com"},
		{Key: "orphan", Group: "gone", Type: "text", Value: "x"},
	}

	testCases := []struct {
		name          string
		key           string
		newValue      string
		expectedError error
	}{
		{
			name:          "unknown key",
			key:           "nonexistent",
			newValue:      "x",
			expectedError: ErrUnknownSettingKey,
		},
		{
			name:          "required setting rejects empty value",
			key:           "site_title",
			newValue:      "",
			expectedError: ErrRequiredFieldMissing,
		},
		{
			name:          "number rejects non-numeric value",
			key:           "max_upload_mb",
			newValue:      "abc",
			expectedError: settings.ErrTypeMismatch,
		},
		{
			name:          "max rule bounds numeric magnitude",
			key:           "max_upload_mb",
			newValue:      "150",
			expectedError: settings.ErrRuleViolation,
		},
		{
			name:          "email type rejects malformed address",
			key:           "contact_email",
			newValue:      "not-an-email",
			expectedError: settings.ErrTypeMismatch,
		},
		{
			name:          "orphaned setting rejects writes",
			key:           "orphan",
			newValue:      "y",
			expectedError: ErrGroupNotFound,
		},
		{
			name:     "successful update",
			key:      "max_upload_mb",
			newValue: "32",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupTestDB(t)
			seedGroup(t, db, "general", true)
			seedSettings(t, db, seedData)

			before, getErr := Get(db, tc.key)

			updated, err := UpdateValue(db, tc.key, tc.newValue, SystemActor)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, updated)

				// a failed update writes neither the value nor a history entry
				assert.Zero(t, historyCount(t, db))

				if getErr == nil {
					after, err := Get(db, tc.key)
					require.NoError(t, err)
					assert.Equal(t, before.Value, after.Value)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.newValue, updated.Value)

			after, err := Get(db, tc.key)
			require.NoError(t, err)
			assert.Equal(t, tc.newValue, after.Value)

			// exactly one history entry holding both values
			var entries []models.SettingHistory
			require.NoError(t, db.Find(&entries).Error)
			require.Len(t, entries, 1)
			assert.Equal(t, tc.key, entries[0].SettingKey)
			assert.Equal(t, before.Value, entries[0].OldValue)
			assert.Equal(t, tc.newValue, entries[0].NewValue)
			assert.Equal(t, models.ChangeSourceSystem, entries[0].ChangeSource)
		})
	}
}

func TestUpdateValueActorAttribution(t *testing.T) {
	db := setupTestDB(t)
	seedGroup(t, db, "general", true)
	seedSettings(t, db, []models.Setting{
		{Key: "site_title", Group: "general", Type: "text", Value: "My Shop"},
	})

	userID := uint64(7)
	actor := Actor{
		UserID:    &userID,
		IPAddress: "203.0.113.9",
		UserAgent: "test-agent",
	}

	_, err := UpdateValue(db, "site_title", "New Name", actor)
	require.NoError(t, err)

	var entry models.SettingHistory
	require.NoError(t, db.First(&entry).Error)

	require.NotNil(t, entry.ChangedBy)
	assert.Equal(t, userID, *entry.ChangedBy)
	assert.Equal(t, "203.0.113.9", entry.IPAddress)
	assert.Equal(t, "test-agent", entry.UserAgent)
	// without an explicit source the change counts as an admin edit
	assert.Equal(t, models.ChangeSourceAdmin, entry.ChangeSource)
}

func TestUpdateValueSameValueStillRecorded(t *testing.T) {
	db := setupTestDB(t)
	seedGroup(t, db, "general", true)
	seedSettings(t, db, []models.Setting{
		{Key: "site_title", Group: "general", Type: "text", Value: "My Shop"},
	})

	_, err := UpdateValue(db, "site_title", "My Shop", SystemActor)
	require.NoError(t, err)

	// writing the same value is a valid change and lands in the audit trail
	assert.Equal(t, int64(1), historyCount(t, db))
}

func TestUpdateGroup(t *testing.T) {
	db := setupTestDB(t)
	seedGroup(t, db, "general", true)
	seedSettings(t, db, []models.Setting{
		{Key: "site_title", Group: "general", Type: "text", Value: "My Shop", IsRequired: true},
		{Key: "max_upload_mb", Group: "general", Type: "number", Value: "16", ValidationRule: "numeric|max:100"},
		{Key: "contact_email", Group: "general", Type: "email", Value: "shop@example.com"},
	})

	values := map[string]string{
		"site_title":    "Renamed Shop",
		"max_upload_mb": "150", // fails max:100
		"contact_email": "new@example.com",
	}

	results, err := UpdateGroup(db, "general", values, SystemActor)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// results come back in sorted key order
	assert.Equal(t, "contact_email", results[0].Key)
	assert.Equal(t, "max_upload_mb", results[1].Key)
	assert.Equal(t, "site_title", results[2].Key)

	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.ErrorIs(t, results[1].Err, settings.ErrRuleViolation)
	assert.True(t, results[2].OK)

	// the failing key rolled back alone; the valid keys are persisted
	title, err := Get(db, "site_title")
	require.NoError(t, err)
	assert.Equal(t, "Renamed Shop", title.Value)

	upload, err := Get(db, "max_upload_mb")
	require.NoError(t, err)
	assert.Equal(t, "16", upload.Value)

	assert.Equal(t, int64(2), historyCount(t, db))
}

func TestUpdateGroupUnknownGroup(t *testing.T) {
	db := setupTestDB(t)

	_, err := UpdateGroup(db, "nope", map[string]string{"k": "v"}, SystemActor)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestGetGroupSettings(t *testing.T) {
	db := setupTestDB(t)
	seedGroup(t, db, "general", true)
	seedGroup(t, db, "hidden", false)
	seedSettings(t, db, []models.Setting{
		{Key: "b_key", Group: "general", Type: "text", SortOrder: 2},
		{Key: "a_key", Group: "general", Type: "text", SortOrder: 1},
	})

	list, err := GetGroupSettings(db, "general")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a_key", list[0].Key)
	assert.Equal(t, "b_key", list[1].Key)

	// inactive groups behave like missing ones
	_, err = GetGroupSettings(db, "hidden")
	assert.ErrorIs(t, err, ErrGroupNotFound)

	_, err = GetGroupSettings(db, "nope")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestGetPublic(t *testing.T) {
	db := setupTestDB(t)
	seedGroup(t, db, "general", true)
	seedSettings(t, db, []models.Setting{
		{Key: "site_title", Group: "general", Type: "text", Value: "My Shop", IsPublic: true},
		{Key: "smtp_password", Group: "general", Type: "password", Value: "hunter2"},
	})

	list, err := GetPublic(db)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "site_title", list[0].Key)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	seedGroup(t, db, "general", true)
	seedSettings(t, db, []models.Setting{
		{Key: "site_title", Group: "general", Type: "text", Value: "Old"},
	})

	_, err := UpdateValue(db, "site_title", "New", SystemActor)
	require.NoError(t, err)

	require.NoError(t, Delete(db, "site_title"))

	_, err = Get(db, "site_title")
	assert.ErrorIs(t, err, ErrUnknownSettingKey)

	// the audit trail survives the setting's deletion
	assert.Equal(t, int64(1), historyCount(t, db))

	assert.ErrorIs(t, Delete(db, "site_title"), ErrUnknownSettingKey)
	assert.ErrorIs(t, Delete(db, ""), ErrSettingKeyEmpty)
}

func TestDeleteGroupSettings(t *testing.T) {
	db := setupTestDB(t)
	seedGroup(t, db, "general", true)
	seedGroup(t, db, "mail", true)
	seedSettings(t, db, []models.Setting{
		{Key: "a", Group: "general", Type: "text"},
		{Key: "b", Group: "general", Type: "text"},
		{Key: "c", Group: "mail", Type: "text"},
	})

	deleted, err := DeleteGroupSettings(db, "general")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	remaining, err := GetAll(db)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "c", remaining[0].Key)
}
