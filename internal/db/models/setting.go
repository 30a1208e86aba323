// Package models contains database model definitions.
package models

import "time"

// Setting represents a single typed configuration value.
// The Key is unique and immutable once created; Group references a
// SettingGroup by slug. Value is always stored as text and interpreted
// according to Type.
type Setting struct {
	ID uint64 `gorm:"primaryKey"`
	// Key is the unique identifier of the setting, e.g. "site_title".
	Key string `gorm:"uniqueIndex;size:191;not null"`
	// Group is the slug of the group the setting belongs to.
	Group string `gorm:"column:group_slug;index;size:100;not null"`
	// Type governs rendering and validation of Value.
	Type string `gorm:"size:20;not null"`
	// Value is the serialized setting value.
	Value string `gorm:"type:text"`
	// Options holds the JSON encoded permitted values, present iff Type is select.
	Options string `gorm:"type:text"`
	// ValidationRule is a pipe separated list of named constraints, e.g. "required|max:255".
	ValidationRule string `gorm:"size:255"`
	// IsRequired rejects empty values on update.
	IsRequired bool `gorm:"default:false"`
	// IsPublic exposes the value to unauthenticated API consumers.
	IsPublic bool `gorm:"default:false"`
	// SortOrder is the display ordering within the group.
	SortOrder int `gorm:"default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Setting model.
func (Setting) TableName() string {
	return "settings"
}
