package models

import "time"

// SettingGroup represents a named namespace of settings shown together in the
// admin UI, e.g. "Email", "SEO" or "API".
// Deleting a group does not cascade to its settings; orphaned settings keep
// their group slug but disappear from navigation.
type SettingGroup struct {
	ID uint `gorm:"primaryKey"`
	// Slug is the unique URL identifier of the group.
	Slug string `gorm:"uniqueIndex;size:100;not null"`
	// Name is the display name of the group.
	Name string `gorm:"size:100;not null"`
	// Icon is the css icon class shown in navigation.
	Icon string `gorm:"size:50"`
	// Description provides a human-readable explanation of the group's purpose.
	Description string `gorm:"size:255"`
	// SortOrder is the display ordering in navigation.
	SortOrder int `gorm:"default:0"`
	// IsActive hides the group from navigation and blocks reads when false.
	IsActive  bool `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the SettingGroup model.
func (SettingGroup) TableName() string {
	return "setting_groups"
}
