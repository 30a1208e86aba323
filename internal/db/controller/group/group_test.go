package group

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.SettingGroup{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func seedGroups(t *testing.T, db *gorm.DB, groups []models.SettingGroup) {
	t.Helper()

	for _, g := range groups {
		err := db.Create(&g).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)
	seedGroups(t, db, []models.SettingGroup{
		{Slug: "general", Name: "General", IsActive: true},
	})

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		slug          string
		expectedError error
	}{
		{name: "nil database", dbParam: nil, slug: "general", expectedError: ErrDBNil},
		{name: "empty slug", dbParam: db, slug: "", expectedError: ErrGroupSlugEmpty},
		{name: "unknown slug", dbParam: db, slug: "nope", expectedError: ErrGroupNotFound},
		{name: "successful get", dbParam: db, slug: "general"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Get(tc.dbParam, tc.slug)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "General", got.Name)
		})
	}
}

func TestGetActive(t *testing.T) {
	db := setupTestDB(t)
	seedGroups(t, db, []models.SettingGroup{
		{Slug: "checkout", Name: "Checkout", SortOrder: 2, IsActive: true},
		{Slug: "general", Name: "General", SortOrder: 1, IsActive: true},
		{Slug: "legacy", Name: "Legacy", SortOrder: 3, IsActive: false},
	})

	list, err := GetActive(db)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// sorted by sort order, inactive groups are hidden
	assert.Equal(t, "general", list[0].Slug)
	assert.Equal(t, "checkout", list[1].Slug)
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)
	seedGroups(t, db, []models.SettingGroup{
		{Slug: "general", Name: "General", IsActive: true},
	})

	assert.ErrorIs(t, Create(nil, &models.SettingGroup{Slug: "x"}), ErrDBNil)
	assert.ErrorIs(t, Create(db, &models.SettingGroup{}), ErrGroupSlugEmpty)
	assert.ErrorIs(t, Create(db, &models.SettingGroup{Slug: "general"}), ErrGroupAlreadyExists)

	require.NoError(t, Create(db, &models.SettingGroup{Slug: "mail", Name: "Mail", IsActive: true}))

	got, err := Get(db, "mail")
	require.NoError(t, err)
	assert.Equal(t, "Mail", got.Name)
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)
	seedGroups(t, db, []models.SettingGroup{
		{Slug: "general", Name: "General", Icon: "gear", IsActive: true},
	})

	assert.ErrorIs(t, Update(db, &models.SettingGroup{Slug: "nope"}), ErrGroupNotFound)

	err := Update(db, &models.SettingGroup{
		Slug:        "general",
		Name:        "Store Identity",
		Icon:        "storefront",
		Description: "Naming and contact details",
		SortOrder:   5,
		IsActive:    false,
	})
	require.NoError(t, err)

	got, err := Get(db, "general")
	require.NoError(t, err)
	assert.Equal(t, "Store Identity", got.Name)
	assert.Equal(t, "storefront", got.Icon)
	assert.Equal(t, 5, got.SortOrder)
	assert.False(t, got.IsActive)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	seedGroups(t, db, []models.SettingGroup{
		{Slug: "general", Name: "General", IsActive: true},
	})

	require.NoError(t, Delete(db, "general"))

	_, err := Get(db, "general")
	assert.ErrorIs(t, err, ErrGroupNotFound)

	assert.ErrorIs(t, Delete(db, "general"), ErrGroupNotFound)
	assert.ErrorIs(t, Delete(db, ""), ErrGroupSlugEmpty)
}
