// Package setting implements the settings store: typed CRUD over settings
// with the ordered validation pipeline and the transactional change history
// append on every value mutation.
package setting

import (
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
	"github.com/GoShopAdmin/GoShopAdmin/internal/settings"
)

const (
	keyQueryPattern  = "key = ?"
	slugQueryPattern = "slug = ?"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrSettingKeyEmpty is returned when a setting key is empty.
	ErrSettingKeyEmpty = errors.New("setting key cannot be empty")
	// ErrUnknownSettingKey is returned when no setting exists for a key.
	ErrUnknownSettingKey = errors.New("unknown setting key")
	// ErrDuplicateKey is returned when creating a setting whose key already exists.
	ErrDuplicateKey = errors.New("setting key already exists")
	// ErrGroupNotFound is returned when a group slug does not reference an active group.
	ErrGroupNotFound = errors.New("setting group not found")
	// ErrRequiredFieldMissing is returned when a required setting receives an empty value.
	ErrRequiredFieldMissing = errors.New("required setting cannot be empty")
)

// Actor identifies who and what performed a mutation, for audit attribution
// only. A nil UserID marks a system change. Auth itself happens upstream.
type Actor struct {
	UserID    *uint64
	IPAddress string
	UserAgent string
	Source    models.ChangeSource
}

// SystemActor is the attribution used for changes the application makes itself.
var SystemActor = Actor{Source: models.ChangeSourceSystem}

// Get retrieves a setting by its key.
func Get(db *gorm.DB, key string) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	var s models.Setting
	result := db.Where(keyQueryPattern, key).First(&s)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownSettingKey
		}
		return nil, result.Error
	}

	return &s, nil
}

// GetAll retrieves all settings ordered by group, sort order and key.
func GetAll(db *gorm.DB) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var list []models.Setting
	result := db.Order("group_slug, sort_order, key").Find(&list)
	if result.Error != nil {
		return nil, result.Error
	}

	return list, nil
}

// GetGroupSettings retrieves the settings of an active group, ordered by
// sort order then key. Returns ErrGroupNotFound for unknown or inactive groups.
func GetGroupSettings(db *gorm.DB, groupSlug string) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := groupMustExist(db, groupSlug); err != nil {
		return nil, err
	}

	var list []models.Setting
	result := db.Where("group_slug = ?", groupSlug).Order("sort_order, key").Find(&list)
	if result.Error != nil {
		return nil, result.Error
	}

	return list, nil
}

// GetPublic retrieves all settings readable without authentication.
func GetPublic(db *gorm.DB) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var list []models.Setting
	result := db.Where("is_public = ?", true).Order("group_slug, sort_order, key").Find(&list)
	if result.Error != nil {
		return nil, result.Error
	}

	return list, nil
}

// Create inserts a new setting after checking key uniqueness, type shape,
// options presence (iff select) and the initial value against the pipeline.
func Create(db *gorm.DB, s *models.Setting) error {
	if db == nil {
		return ErrDBNil
	}
	if s.Key == "" {
		return ErrSettingKeyEmpty
	}

	typ, err := settings.ParseType(s.Type)
	if err != nil {
		return err
	}

	if err := typ.CheckOptions(s.Options); err != nil {
		return err
	}

	if err := groupMustExist(db, s.Group); err != nil {
		return err
	}

	var existing models.Setting
	result := db.Where(keyQueryPattern, s.Key).First(&existing)
	if result.Error == nil {
		return ErrDuplicateKey
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	if err := checkValue(s, s.Value); err != nil {
		return err
	}

	return db.Create(s).Error
}

// UpdateValue overwrites a setting's value after running the ordered
// validation pipeline: key exists, group intact, required, type shape,
// rule clauses. On success the new value and one history entry are
// committed in a single transaction; on any failure nothing is written.
func UpdateValue(db *gorm.DB, key, newValue string, actor Actor) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	s, err := Get(db, key)
	if err != nil {
		return nil, err
	}

	// referential integrity on writes: orphaned settings stay readable
	// but can no longer be changed
	if err := groupMustExist(db, s.Group); err != nil {
		return nil, err
	}

	if err := checkValue(s, newValue); err != nil {
		return nil, err
	}

	oldValue := s.Value

	source := actor.Source
	if source == "" {
		source = models.ChangeSourceAdmin
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(s).Update("value", newValue).Error; err != nil {
			return err
		}

		entry := models.SettingHistory{
			SettingKey:   s.Key,
			OldValue:     oldValue,
			NewValue:     newValue,
			ChangedBy:    actor.UserID,
			ChangedAt:    time.Now().UTC(),
			IPAddress:    actor.IPAddress,
			UserAgent:    actor.UserAgent,
			ChangeSource: source,
		}

		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	s.Value = newValue

	return s, nil
}

// checkValue runs the required, type and rule stages of the pipeline.
func checkValue(s *models.Setting, value string) error {
	if s.IsRequired && strings.TrimSpace(value) == "" {
		return ErrRequiredFieldMissing
	}

	// type and rule checks only apply to non-empty values; emptiness is
	// governed by IsRequired and the required rule clause
	if value != "" {
		typ := settings.Type(s.Type)
		if err := typ.CheckValue(value, s.Options); err != nil {
			return err
		}
	}

	return settings.ApplyRules(settings.Type(s.Type), value, s.ValidationRule)
}

// KeyResult is the outcome of one key in a bulk group save.
type KeyResult struct {
	Key string `json:"key"`
	OK  bool   `json:"ok"`
	// Message is the failure reason, empty on success.
	Message string `json:"message,omitempty"`
	// Err carries the underlying error for callers that classify failures.
	Err error `json:"-"`
}

// UpdateGroup applies UpdateValue to every key in the map, best-effort per
// key: one key failing does not roll back the others. Keys are processed in
// sorted order so results are deterministic. Returns ErrGroupNotFound if the
// group itself is missing or inactive.
func UpdateGroup(db *gorm.DB, groupSlug string, values map[string]string, actor Actor) ([]KeyResult, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := groupMustExist(db, groupSlug); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	results := make([]KeyResult, 0, len(keys))

	for _, key := range keys {
		if _, err := UpdateValue(db, key, values[key], actor); err != nil {
			results = append(results, KeyResult{Key: key, Message: err.Error(), Err: err})
			continue
		}

		results = append(results, KeyResult{Key: key, OK: true})
	}

	return results, nil
}

// Delete removes a setting by key. History entries referring to the key are
// left intact so the audit trail survives the setting's deletion.
func Delete(db *gorm.DB, key string) error {
	if db == nil {
		return ErrDBNil
	}
	if key == "" {
		return ErrSettingKeyEmpty
	}

	result := db.Where(keyQueryPattern, key).Delete(&models.Setting{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUnknownSettingKey
	}

	return nil
}

// DeleteGroupSettings removes every setting of a group, returning the number
// of removed rows. History survives.
func DeleteGroupSettings(db *gorm.DB, groupSlug string) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	result := db.Where("group_slug = ?", groupSlug).Delete(&models.Setting{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func groupMustExist(db *gorm.DB, slug string) error {
	var group models.SettingGroup
	result := db.Where(slugQueryPattern, slug).First(&group)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return result.Error
	}

	if !group.IsActive {
		return ErrGroupNotFound
	}

	return nil
}
