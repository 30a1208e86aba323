// Package transfer implements settings export and two-phase import
// (preview, then commit). Exports are pure reads; imports apply every value
// through the same validation pipeline the admin UI uses and never bypass
// type or rule checks.
package transfer

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/setting"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrImportParse is returned when an import document cannot be parsed.
	ErrImportParse = errors.New("import document is malformed")
	// ErrUnknownFormat is returned for unsupported export/import formats.
	ErrUnknownFormat = errors.New("unknown transfer format")
	// ErrUnknownMode is returned for unsupported import modes.
	ErrUnknownMode = errors.New("unknown import mode")
	// ErrEmptyScope is returned when an export scope selects nothing.
	ErrEmptyScope = errors.New("export scope selects no settings")
)

// Format is a transfer document format.
type Format string

const (
	// FormatJSON is the canonical interchange format.
	FormatJSON Format = "json"
	// FormatCSV is a flat spreadsheet friendly format.
	FormatCSV Format = "csv"
	// FormatXML is provided for legacy integrations.
	FormatXML Format = "xml"
)

// ParseFormat validates a format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV, FormatXML:
		return Format(s), nil
	default:
		return "", ErrUnknownFormat
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXML:
		return "application/xml"
	case FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// Mode decides how an import treats the existing store.
type Mode string

const (
	// ModeMerge adds new keys and resolves existing ones via the conflict policy.
	ModeMerge Mode = "merge"
	// ModeReplace deletes all settings, then inserts the document.
	ModeReplace Mode = "replace"
	// ModeUpdate only touches keys that already exist.
	ModeUpdate Mode = "update"
	// ModeSkip only inserts keys that do not exist yet.
	ModeSkip Mode = "skip"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeMerge, ModeReplace, ModeUpdate, ModeSkip:
		return Mode(s), nil
	default:
		return "", ErrUnknownMode
	}
}

// ConflictPolicy resolves an incoming key that already exists. It only
// applies to ModeMerge.
type ConflictPolicy string

const (
	// ConflictSkip leaves the existing setting untouched.
	ConflictSkip ConflictPolicy = "skip"
	// ConflictOverwrite applies the incoming value to the existing setting.
	ConflictOverwrite ConflictPolicy = "overwrite"
	// ConflictRename inserts the incoming setting under a suffixed key.
	ConflictRename ConflictPolicy = "rename"
)

// Record is the neutral per-setting interchange shape. Value and the
// metadata fields are only populated when the export requested them.
type Record struct {
	Key            string `json:"key" xml:"key"`
	Group          string `json:"group" xml:"group"`
	Type           string `json:"type" xml:"type"`
	Value          string `json:"value,omitempty" xml:"value,omitempty"`
	Options        string `json:"options,omitempty" xml:"options,omitempty"`
	ValidationRule string `json:"validationRule,omitempty" xml:"validationRule,omitempty"`
	IsRequired     bool   `json:"isRequired" xml:"isRequired"`
	IsPublic       bool   `json:"isPublic" xml:"isPublic"`
	SortOrder      int    `json:"sortOrder" xml:"sortOrder"`
}

// Scope selects which settings an export covers.
type Scope struct {
	// All exports the whole store.
	All bool
	// Group exports one group's settings when set.
	Group string
	// Keys exports an explicit key set when non-empty.
	Keys []string
}

// selectSettings resolves a scope against the store.
func selectSettings(db *gorm.DB, scope Scope) ([]models.Setting, error) {
	switch {
	case scope.All:
		return setting.GetAll(db)
	case scope.Group != "":
		return setting.GetGroupSettings(db, scope.Group)
	case len(scope.Keys) > 0:
		list := make([]models.Setting, 0, len(scope.Keys))

		for _, key := range scope.Keys {
			s, err := setting.Get(db, key)
			if err != nil {
				return nil, err
			}

			list = append(list, *s)
		}

		return list, nil
	default:
		return nil, ErrEmptyScope
	}
}
