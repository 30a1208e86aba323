package models

import "time"

// ChangeSource identifies which code path produced a history entry.
type ChangeSource string

const (
	// ChangeSourceAdmin is a change made through the admin UI.
	ChangeSourceAdmin ChangeSource = "admin"
	// ChangeSourceImport is a change applied by a settings import.
	ChangeSourceImport ChangeSource = "import"
	// ChangeSourceRevert is a change produced by reverting a history entry.
	ChangeSourceRevert ChangeSource = "revert"
	// ChangeSourceSystem is a change made by the application itself.
	ChangeSourceSystem ChangeSource = "system"
)

// SettingHistory is an immutable audit record of one setting mutation.
// Rows are append-only: they are never updated, and only the explicit
// "clear history" admin action deletes them. History survives the deletion
// of the setting it refers to.
type SettingHistory struct {
	ID uint64 `gorm:"primaryKey"`
	// SettingKey is the key of the mutated setting.
	SettingKey string `gorm:"index;size:191;not null"`
	// OldValue is the value before the change.
	OldValue string `gorm:"type:text"`
	// NewValue is the value after the change.
	NewValue string `gorm:"type:text"`
	// ChangedBy is the id of the acting user, nil for system changes.
	ChangedBy *uint64 `gorm:"index"`
	// ChangedAt is when the mutation was committed.
	ChangedAt time.Time `gorm:"index;not null"`
	// IPAddress of the request that made the change.
	IPAddress string `gorm:"size:45"`
	// UserAgent of the request that made the change.
	UserAgent string `gorm:"size:255"`
	// ChangeSource identifies the code path (admin, import, revert, system).
	ChangeSource ChangeSource `gorm:"type:varchar(20);not null;default:'admin'"`
}

// TableName specifies the database table name for the SettingHistory model.
func (SettingHistory) TableName() string {
	return "setting_history"
}
