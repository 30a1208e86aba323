// Package group provides CRUD operations for setting groups.
package group

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
)

const slugQueryPattern = "slug = ?"

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrGroupSlugEmpty is returned when a group slug is empty.
	ErrGroupSlugEmpty = errors.New("group slug cannot be empty")
	// ErrGroupNotFound is returned when a group is not found.
	ErrGroupNotFound = errors.New("setting group not found")
	// ErrGroupAlreadyExists is returned when creating a group whose slug already exists.
	ErrGroupAlreadyExists = errors.New("setting group already exists")
)

// Get retrieves a group by its slug.
func Get(db *gorm.DB, slug string) (*models.SettingGroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if slug == "" {
		return nil, ErrGroupSlugEmpty
	}

	var g models.SettingGroup
	result := db.Where(slugQueryPattern, slug).First(&g)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, result.Error
	}

	return &g, nil
}

// GetActive retrieves all active groups ordered for navigation.
func GetActive(db *gorm.DB) ([]models.SettingGroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var list []models.SettingGroup
	result := db.Where("is_active = ?", true).Order("sort_order, slug").Find(&list)
	if result.Error != nil {
		return nil, result.Error
	}

	return list, nil
}

// GetAll retrieves every group, active or not.
func GetAll(db *gorm.DB) ([]models.SettingGroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var list []models.SettingGroup
	result := db.Order("sort_order, slug").Find(&list)
	if result.Error != nil {
		return nil, result.Error
	}

	return list, nil
}

// Create inserts a new group.
func Create(db *gorm.DB, g *models.SettingGroup) error {
	if db == nil {
		return ErrDBNil
	}
	if g.Slug == "" {
		return ErrGroupSlugEmpty
	}

	var existing models.SettingGroup
	result := db.Where(slugQueryPattern, g.Slug).First(&existing)
	if result.Error == nil {
		return ErrGroupAlreadyExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	return db.Create(g).Error
}

// Update saves changes to a group's metadata. The slug is immutable.
func Update(db *gorm.DB, g *models.SettingGroup) error {
	if db == nil {
		return ErrDBNil
	}
	if g.Slug == "" {
		return ErrGroupSlugEmpty
	}

	var existing models.SettingGroup
	result := db.Where(slugQueryPattern, g.Slug).First(&existing)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return result.Error
	}

	existing.Name = g.Name
	existing.Icon = g.Icon
	existing.Description = g.Description
	existing.SortOrder = g.SortOrder
	existing.IsActive = g.IsActive

	return db.Save(&existing).Error
}

// Delete removes a group by slug. Settings of the group are NOT cascaded;
// they keep their group slug and merely disappear from navigation.
func Delete(db *gorm.DB, slug string) error {
	if db == nil {
		return ErrDBNil
	}
	if slug == "" {
		return ErrGroupSlugEmpty
	}

	result := db.Where(slugQueryPattern, slug).Delete(&models.SettingGroup{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGroupNotFound
	}

	return nil
}
