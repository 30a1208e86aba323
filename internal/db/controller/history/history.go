// Package history provides read, revert and clear operations over the
// append-only settings audit log. Entries are only ever appended by
// setting.UpdateValue; this package never creates them on its own.
package history

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/setting"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrHistoryEntryNotFound is returned when no entry exists for an id.
	ErrHistoryEntryNotFound = errors.New("history entry not found")
)

// DefaultPageSize bounds history pages when the caller passes 0.
const DefaultPageSize = 25

// Filters narrows a history listing. Zero values mean "no filter".
type Filters struct {
	// KeyContains matches entries whose setting key contains the substring.
	KeyContains string
	// UserID matches entries changed by one user.
	UserID *uint64
	// From is the inclusive start of the date range (truncated to day).
	From *time.Time
	// To is the inclusive end of the date range (truncated to day).
	To *time.Time
}

// Page is one page of history entries, newest first.
type Page struct {
	Entries    []models.SettingHistory
	Total      int64
	PageNumber int
	PageSize   int
}

// TotalPages returns the page count for the current page size.
func (p *Page) TotalPages() int {
	if p.PageSize == 0 {
		return 0
	}

	pages := int(p.Total) / p.PageSize
	if int(p.Total)%p.PageSize != 0 {
		pages++
	}

	return pages
}

// List returns a page of history entries newest-first plus the total count.
// Empty filters return the full log, paged.
func List(db *gorm.DB, filters Filters, page, pageSize int) (*Page, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	query := db.Model(&models.SettingHistory{})

	if filters.KeyContains != "" {
		query = query.Where("setting_key LIKE ?", "%"+filters.KeyContains+"%")
	}

	if filters.UserID != nil {
		query = query.Where("changed_by = ?", *filters.UserID)
	}

	// date range filters are inclusive by day
	if filters.From != nil {
		from := filters.From.Truncate(24 * time.Hour)
		query = query.Where("changed_at >= ?", from)
	}

	if filters.To != nil {
		to := filters.To.Truncate(24 * time.Hour).Add(24 * time.Hour)
		query = query.Where("changed_at < ?", to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var entries []models.SettingHistory
	err := query.
		Order("changed_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return &Page{
		Entries:    entries,
		Total:      total,
		PageNumber: page,
		PageSize:   pageSize,
	}, nil
}

// Get retrieves a single history entry by id.
func Get(db *gorm.DB, id uint64) (*models.SettingHistory, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var entry models.SettingHistory
	result := db.First(&entry, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrHistoryEntryNotFound
		}
		return nil, result.Error
	}

	return &entry, nil
}

// Revert re-applies the old value of a history entry as a brand new
// update, which itself appends a new history entry recording the revert.
// Reverting is always forward-appending, never an in-place undo. Validation
// failures propagate when the old value no longer satisfies the setting's
// current rules.
func Revert(db *gorm.DB, entryID uint64, actor setting.Actor) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	entry, err := Get(db, entryID)
	if err != nil {
		return nil, err
	}

	actor.Source = models.ChangeSourceRevert

	return setting.UpdateValue(db, entry.SettingKey, entry.OldValue, actor)
}

// Clear irrevocably deletes all history entries and returns how many rows
// were removed. There is no soft-delete tier; callers must confirm first.
func Clear(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	result := db.Where("1 = 1").Delete(&models.SettingHistory{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// ForKey returns the full history of one setting key, newest first.
// The trail survives deletion of the setting itself.
func ForKey(db *gorm.DB, key string) ([]models.SettingHistory, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var entries []models.SettingHistory
	err := db.Where("setting_key = ?", key).Order("changed_at DESC, id DESC").Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}
