package models

import "time"

// CustomField is a dynamic, non-core-schema field definition.
// It follows the same type/validation/options contract as Setting but lives
// in its own table so shop entities can be extended without schema changes.
type CustomField struct {
	ID uint64 `gorm:"primaryKey"`
	// Key is the unique identifier of the field.
	Key string `gorm:"uniqueIndex;size:191;not null"`
	// Entity names the shop entity the field attaches to, e.g. "product".
	Entity string `gorm:"index;size:100;not null"`
	// Label is the display name shown on forms.
	Label string `gorm:"size:100;not null"`
	// Type governs rendering and validation of Value.
	Type string `gorm:"size:20;not null"`
	// Value is the serialized default value.
	Value string `gorm:"type:text"`
	// Options holds the JSON encoded permitted values, present iff Type is select.
	Options string `gorm:"type:text"`
	// ValidationRule is a pipe separated list of named constraints.
	ValidationRule string `gorm:"size:255"`
	IsRequired     bool   `gorm:"default:false"`
	SortOrder      int    `gorm:"default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the database table name for the CustomField model.
func (CustomField) TableName() string {
	return "custom_fields"
}
