package transfer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/setting"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.SettingGroup{}, &models.Setting{}, &models.SettingHistory{})
	require.NoError(t, err, "failed to migrate test database")

	for _, slug := range []string{"general", "mail"} {
		err = db.Create(&models.SettingGroup{Slug: slug, Name: slug, IsActive: true}).Error
		require.NoError(t, err, "failed to seed group")
	}

	return db
}

func seedStore(t *testing.T, db *gorm.DB) {
	t.Helper()

	entries := []models.Setting{
		{Key: "site_title", Group: "general", Type: "text", Value: "My Shop", ValidationRule: "required|max:120", IsRequired: true, IsPublic: true, SortOrder: 1},
		{Key: "contact_email", Group: "general", Type: "email", Value: "shop@example.com", SortOrder: 2},
		{Key: "mail_from_name", Group: "mail", Type: "text", Value: "My Shop", SortOrder: 1},
	}

	for i := range entries {
		require.NoError(t, setting.Create(db, &entries[i]), "failed to seed setting")
	}
}

func TestParseFormatAndMode(t *testing.T) {
	for _, valid := range []string{"json", "csv", "xml"} {
		_, err := ParseFormat(valid)
		assert.NoError(t, err)
	}

	_, err := ParseFormat("yaml")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	for _, valid := range []string{"merge", "replace", "update", "skip"} {
		_, err := ParseMode(valid)
		assert.NoError(t, err)
	}

	_, err = ParseMode("upsert")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestExportScopes(t *testing.T) {
	db := setupTestDB(t)
	seedStore(t, db)

	opts := ExportOptions{IncludeValues: true, IncludeMetadata: true}

	t.Run("whole store", func(t *testing.T) {
		data, err := Export(db, Scope{All: true}, FormatJSON, opts)
		require.NoError(t, err)

		records, err := Parse(data, FormatJSON)
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("single group", func(t *testing.T) {
		data, err := Export(db, Scope{Group: "mail"}, FormatJSON, opts)
		require.NoError(t, err)

		records, err := Parse(data, FormatJSON)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "mail_from_name", records[0].Key)
	})

	t.Run("explicit keys", func(t *testing.T) {
		data, err := Export(db, Scope{Keys: []string{"site_title"}}, FormatJSON, opts)
		require.NoError(t, err)

		records, err := Parse(data, FormatJSON)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "site_title", records[0].Key)
	})

	t.Run("values can be excluded", func(t *testing.T) {
		data, err := Export(db, Scope{All: true}, FormatJSON, ExportOptions{IncludeMetadata: true})
		require.NoError(t, err)

		records, err := Parse(data, FormatJSON)
		require.NoError(t, err)

		for _, r := range records {
			assert.Empty(t, r.Value)
		}
	})

	t.Run("envelope carries an export id", func(t *testing.T) {
		data, err := Export(db, Scope{All: true}, FormatJSON, opts)
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.NotEmpty(t, doc["exportId"])
		assert.NotEmpty(t, doc["exportedAt"])
	})
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatCSV, FormatXML} {
		t.Run(string(format), func(t *testing.T) {
			db := setupTestDB(t)
			seedStore(t, db)

			data, err := Export(db, Scope{All: true}, format, ExportOptions{IncludeValues: true, IncludeMetadata: true})
			require.NoError(t, err)

			records, err := Parse(data, format)
			require.NoError(t, err)
			require.Len(t, records, 3)

			// import into a fresh store reproduces the settings
			fresh := setupTestDB(t)

			result, err := Import(fresh, records, ModeMerge, ConflictSkip, setting.SystemActor, "", false)
			require.NoError(t, err)
			assert.Equal(t, 3, result.New)
			assert.Empty(t, result.Errors)

			title, err := setting.Get(fresh, "site_title")
			require.NoError(t, err)
			assert.Equal(t, "My Shop", title.Value)
			assert.Equal(t, "required|max:120", title.ValidationRule)
			assert.True(t, title.IsRequired)
			assert.True(t, title.IsPublic)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("{not json"), FormatJSON)
	assert.ErrorIs(t, err, ErrImportParse)

	_, err = Parse([]byte("<unclosed"), FormatXML)
	assert.ErrorIs(t, err, ErrImportParse)

	_, err = Parse([]byte("name,value\na,b"), FormatCSV)
	assert.ErrorIs(t, err, ErrImportParse)
}

func TestPreviewImport(t *testing.T) {
	db := setupTestDB(t)
	seedStore(t, db)

	records := []Record{
		{Key: "site_title", Group: "general", Type: "text", Value: "Other"},
		{Key: "new_key", Group: "general", Type: "text", Value: "x"},
	}

	t.Run("merge counts conflicts", func(t *testing.T) {
		preview, err := PreviewImport(db, records, ModeMerge)
		require.NoError(t, err)

		assert.Equal(t, 1, preview.New)
		assert.Equal(t, 1, preview.Existing)
		assert.Equal(t, 1, preview.Conflicting)
		assert.Equal(t, []string{"site_title"}, preview.Sample)
	})

	t.Run("other modes have no conflicts", func(t *testing.T) {
		preview, err := PreviewImport(db, records, ModeSkip)
		require.NoError(t, err)

		assert.Equal(t, 1, preview.New)
		assert.Equal(t, 1, preview.Existing)
		assert.Zero(t, preview.Conflicting)
	})

	t.Run("preview does not write", func(t *testing.T) {
		title, err := setting.Get(db, "site_title")
		require.NoError(t, err)
		assert.Equal(t, "My Shop", title.Value)

		_, err = setting.Get(db, "new_key")
		assert.ErrorIs(t, err, setting.ErrUnknownSettingKey)
	})
}

func TestImportModes(t *testing.T) {
	records := []Record{
		{Key: "site_title", Group: "general", Type: "text", Value: "Imported"},
		{Key: "new_a", Group: "general", Type: "text", Value: "a"},
		{Key: "new_b", Group: "general", Type: "text", Value: "b"},
	}

	t.Run("skip inserts only new keys", func(t *testing.T) {
		db := setupTestDB(t)
		seedStore(t, db)

		result, err := Import(db, records, ModeSkip, ConflictSkip, setting.SystemActor, "", false)
		require.NoError(t, err)

		assert.Equal(t, 2, result.New)
		assert.Equal(t, 1, result.Skipped)
		assert.Zero(t, result.Updated)

		title, err := setting.Get(db, "site_title")
		require.NoError(t, err)
		assert.Equal(t, "My Shop", title.Value)
	})

	t.Run("update touches only existing keys", func(t *testing.T) {
		db := setupTestDB(t)
		seedStore(t, db)

		result, err := Import(db, records, ModeUpdate, ConflictSkip, setting.SystemActor, "", false)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Updated)
		assert.Equal(t, 2, result.Skipped)

		title, err := setting.Get(db, "site_title")
		require.NoError(t, err)
		assert.Equal(t, "Imported", title.Value)

		_, err = setting.Get(db, "new_a")
		assert.ErrorIs(t, err, setting.ErrUnknownSettingKey)
	})

	t.Run("replace empties the store first", func(t *testing.T) {
		db := setupTestDB(t)
		seedStore(t, db)

		result, err := Import(db, records, ModeReplace, ConflictSkip, setting.SystemActor, "", false)
		require.NoError(t, err)

		assert.Equal(t, 3, result.New)

		all, err := setting.GetAll(db)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		// settings not in the document are gone
		_, err = setting.Get(db, "contact_email")
		assert.ErrorIs(t, err, setting.ErrUnknownSettingKey)
	})

	t.Run("merge with overwrite updates conflicts", func(t *testing.T) {
		db := setupTestDB(t)
		seedStore(t, db)

		result, err := Import(db, records, ModeMerge, ConflictOverwrite, setting.SystemActor, "", false)
		require.NoError(t, err)

		assert.Equal(t, 2, result.New)
		assert.Equal(t, 1, result.Updated)

		title, err := setting.Get(db, "site_title")
		require.NoError(t, err)
		assert.Equal(t, "Imported", title.Value)
	})

	t.Run("merge with rename suffixes conflicts", func(t *testing.T) {
		db := setupTestDB(t)
		seedStore(t, db)

		result, err := Import(db, records, ModeMerge, ConflictRename, setting.SystemActor, "", false)
		require.NoError(t, err)

		assert.Equal(t, 3, result.New)

		renamed, err := setting.Get(db, "site_title_1")
		require.NoError(t, err)
		assert.Equal(t, "Imported", renamed.Value)

		original, err := setting.Get(db, "site_title")
		require.NoError(t, err)
		assert.Equal(t, "My Shop", original.Value)
	})
}

func TestImportValidatesValues(t *testing.T) {
	db := setupTestDB(t)
	seedStore(t, db)

	records := []Record{
		{Key: "contact_email", Group: "general", Type: "email", Value: "not-an-email"},
		{Key: "fresh", Group: "general", Type: "text", Value: "fine"},
	}

	result, err := Import(db, records, ModeMerge, ConflictOverwrite, setting.SystemActor, "", false)
	require.NoError(t, err)

	assert.Equal(t, 1, result.New)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "contact_email", result.Errors[0].Key)

	// the invalid record changed nothing
	email, err := setting.Get(db, "contact_email")
	require.NoError(t, err)
	assert.Equal(t, "shop@example.com", email.Value)
}

func TestImportTagsHistoryWithImportSource(t *testing.T) {
	db := setupTestDB(t)
	seedStore(t, db)

	records := []Record{
		{Key: "site_title", Group: "general", Type: "text", Value: "Imported"},
	}

	_, err := Import(db, records, ModeMerge, ConflictOverwrite, setting.SystemActor, "", false)
	require.NoError(t, err)

	var entry models.SettingHistory
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, models.ChangeSourceImport, entry.ChangeSource)
}

func TestImportBackup(t *testing.T) {
	db := setupTestDB(t)
	seedStore(t, db)

	dir := t.TempDir()

	records := []Record{
		{Key: "fresh", Group: "general", Type: "text", Value: "x"},
	}

	result, err := Import(db, records, ModeMerge, ConflictSkip, setting.SystemActor, dir, true)
	require.NoError(t, err)
	require.NotEmpty(t, result.BackupFile)

	assert.Equal(t, dir, filepath.Dir(result.BackupFile))
	assert.True(t, strings.HasPrefix(filepath.Base(result.BackupFile), "settings-"))

	data, err := os.ReadFile(result.BackupFile)
	require.NoError(t, err)

	backup, err := Parse(data, FormatJSON)
	require.NoError(t, err)
	assert.Len(t, backup, 3)
}
