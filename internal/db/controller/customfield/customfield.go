// Package customfield provides CRUD operations for dynamic custom field
// definitions. Custom fields share the typed value contract of settings.
package customfield

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
	"github.com/GoShopAdmin/GoShopAdmin/internal/settings"
)

const keyQueryPattern = "key = ?"

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrFieldKeyEmpty is returned when a field key is empty.
	ErrFieldKeyEmpty = errors.New("custom field key cannot be empty")
	// ErrFieldNotFound is returned when a custom field is not found.
	ErrFieldNotFound = errors.New("custom field not found")
	// ErrDuplicateKey is returned when creating a field whose key already exists.
	ErrDuplicateKey = errors.New("custom field key already exists")
	// ErrValueRequired is returned when a required field receives an empty value.
	ErrValueRequired = errors.New("required custom field cannot be empty")
)

// Get retrieves a custom field by its key.
func Get(db *gorm.DB, key string) (*models.CustomField, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrFieldKeyEmpty
	}

	var f models.CustomField
	result := db.Where(keyQueryPattern, key).First(&f)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrFieldNotFound
		}
		return nil, result.Error
	}

	return &f, nil
}

// GetByEntity retrieves all custom fields of one shop entity, ordered.
func GetByEntity(db *gorm.DB, entity string) ([]models.CustomField, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var list []models.CustomField
	result := db.Where("entity = ?", entity).Order("sort_order, key").Find(&list)
	if result.Error != nil {
		return nil, result.Error
	}

	return list, nil
}

// GetAll retrieves all custom fields ordered by entity and sort order.
func GetAll(db *gorm.DB) ([]models.CustomField, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var list []models.CustomField
	result := db.Order("entity, sort_order, key").Find(&list)
	if result.Error != nil {
		return nil, result.Error
	}

	return list, nil
}

// Create inserts a new custom field after the same type/options checks
// settings go through.
func Create(db *gorm.DB, f *models.CustomField) error {
	if db == nil {
		return ErrDBNil
	}
	if f.Key == "" {
		return ErrFieldKeyEmpty
	}

	typ, err := settings.ParseType(f.Type)
	if err != nil {
		return err
	}

	if err := typ.CheckOptions(f.Options); err != nil {
		return err
	}

	var existing models.CustomField
	result := db.Where(keyQueryPattern, f.Key).First(&existing)
	if result.Error == nil {
		return ErrDuplicateKey
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	if err := checkValue(f, f.Value); err != nil {
		return err
	}

	return db.Create(f).Error
}

// UpdateValue overwrites a custom field's default value after running the
// same required/type/rule pipeline as settings.
func UpdateValue(db *gorm.DB, key, newValue string) (*models.CustomField, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	f, err := Get(db, key)
	if err != nil {
		return nil, err
	}

	if err := checkValue(f, newValue); err != nil {
		return nil, err
	}

	if err := db.Model(f).Update("value", newValue).Error; err != nil {
		return nil, err
	}

	f.Value = newValue

	return f, nil
}

func checkValue(f *models.CustomField, value string) error {
	if f.IsRequired && value == "" {
		return ErrValueRequired
	}

	if value != "" {
		if err := settings.Type(f.Type).CheckValue(value, f.Options); err != nil {
			return err
		}
	}

	return settings.ApplyRules(settings.Type(f.Type), value, f.ValidationRule)
}

// Delete removes a custom field by key.
func Delete(db *gorm.DB, key string) error {
	if db == nil {
		return ErrDBNil
	}
	if key == "" {
		return ErrFieldKeyEmpty
	}

	result := db.Where(keyQueryPattern, key).Delete(&models.CustomField{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFieldNotFound
	}

	return nil
}
