package transfer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/setting"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
)

// previewSampleSize bounds the sample keys returned by Preview.
const previewSampleSize = 10

// Parse decodes an import document in the given format into records.
// Malformed documents fail with an error wrapping ErrImportParse.
func Parse(data []byte, format Format) ([]Record, error) {
	switch format {
	case FormatJSON:
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImportParse, err)
		}

		return doc.Settings, nil
	case FormatXML:
		var doc document
		if err := xml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImportParse, err)
		}

		return doc.Settings, nil
	case FormatCSV:
		return parseCSV(data)
	default:
		return nil, ErrUnknownFormat
	}
}

func parseCSV(data []byte) ([]Record, error) {
	reader := csv.NewReader(bytes.NewReader(data))

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportParse, err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	if _, ok := col["key"]; !ok {
		return nil, fmt.Errorf("%w: csv header misses the key column", ErrImportParse)
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}

		return row[i]
	}

	var records []Record

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImportParse, err)
		}

		sortOrder, _ := strconv.Atoi(field(row, "sort_order"))

		records = append(records, Record{
			Key:            field(row, "key"),
			Group:          field(row, "group"),
			Type:           field(row, "type"),
			Value:          field(row, "value"),
			Options:        field(row, "options"),
			ValidationRule: field(row, "validation_rule"),
			IsRequired:     field(row, "is_required") == "1",
			IsPublic:       field(row, "is_public") == "1",
			SortOrder:      sortOrder,
		})
	}

	return records, nil
}

// Preview computes what an import would do without mutating the store:
// counts of new, existing and conflicting keys plus a short sample of
// the conflicting ones. Conflicts only matter for ModeMerge.
type Preview struct {
	New         int      `json:"new"`
	Existing    int      `json:"existing"`
	Conflicting int      `json:"conflicting"`
	Sample      []string `json:"sample"`
}

// PreviewImport classifies the incoming records against the current store.
func PreviewImport(db *gorm.DB, records []Record, mode Mode) (*Preview, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	p := &Preview{}

	for _, r := range records {
		_, err := setting.Get(db, r.Key)

		switch {
		case errors.Is(err, setting.ErrUnknownSettingKey):
			p.New++
		case err != nil:
			return nil, err
		default:
			p.Existing++

			if mode == ModeMerge {
				p.Conflicting++

				if len(p.Sample) < previewSampleSize {
					p.Sample = append(p.Sample, r.Key)
				}
			}
		}
	}

	return p, nil
}

// KeyError is a per-key import failure.
type KeyError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// Result summarizes a committed import.
type Result struct {
	TotalImported int        `json:"totalImported"`
	New           int        `json:"new"`
	Updated       int        `json:"updated"`
	Skipped       int        `json:"skipped"`
	Errors        []KeyError `json:"errors,omitempty"`
	// BackupFile is the snapshot path when a pre-import backup was requested.
	BackupFile string `json:"backupFile,omitempty"`
}

// Import applies the records to the store. Every value passes through the
// same validation pipeline as admin edits; updates to existing settings
// produce one history entry each, tagged with the import change source.
// Failures are collected per key, never collapsed into one error.
func Import(
	db *gorm.DB,
	records []Record,
	mode Mode,
	policy ConflictPolicy,
	actor setting.Actor,
	backupDir string,
	createBackup bool,
) (*Result, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	actor.Source = models.ChangeSourceImport

	result := &Result{}

	if createBackup {
		path, err := WriteBackup(db, backupDir)
		if err != nil {
			return nil, err
		}

		result.BackupFile = path
	}

	if mode == ModeReplace {
		// delete-then-insert-all: groups and history are kept
		if err := db.Where("1 = 1").Delete(&models.Setting{}).Error; err != nil {
			return nil, err
		}
	}

	for _, r := range records {
		applyRecord(db, r, mode, policy, actor, result)
	}

	log.Info().
		Str("mode", string(mode)).
		Int("new", result.New).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("settings import committed")

	return result, nil
}

func applyRecord(
	db *gorm.DB,
	r Record,
	mode Mode,
	policy ConflictPolicy,
	actor setting.Actor,
	result *Result,
) {
	_, err := setting.Get(db, r.Key)
	isNew := errors.Is(err, setting.ErrUnknownSettingKey)

	if err != nil && !isNew {
		result.Errors = append(result.Errors, KeyError{Key: r.Key, Message: err.Error()})
		return
	}

	switch mode {
	case ModeReplace:
		// the store was emptied above, everything inserts
		insertRecord(db, r, result)
	case ModeSkip:
		if !isNew {
			result.Skipped++
			return
		}

		insertRecord(db, r, result)
	case ModeUpdate:
		if isNew {
			result.Skipped++
			return
		}

		updateRecord(db, r, actor, result)
	case ModeMerge:
		if isNew {
			insertRecord(db, r, result)
			return
		}

		mergeExisting(db, r, policy, actor, result)
	}
}

func mergeExisting(
	db *gorm.DB,
	r Record,
	policy ConflictPolicy,
	actor setting.Actor,
	result *Result,
) {
	switch policy {
	case ConflictOverwrite:
		updateRecord(db, r, actor, result)
	case ConflictRename:
		renamed := r
		renamed.Key = freeKey(db, r.Key)
		insertRecord(db, renamed, result)
	case ConflictSkip:
		fallthrough
	default:
		result.Skipped++
	}
}

func insertRecord(db *gorm.DB, r Record, result *Result) {
	s := &models.Setting{
		Key:            r.Key,
		Group:          r.Group,
		Type:           r.Type,
		Value:          r.Value,
		Options:        r.Options,
		ValidationRule: r.ValidationRule,
		IsRequired:     r.IsRequired,
		IsPublic:       r.IsPublic,
		SortOrder:      r.SortOrder,
	}

	if err := setting.Create(db, s); err != nil {
		result.Errors = append(result.Errors, KeyError{Key: r.Key, Message: err.Error()})
		return
	}

	result.New++
	result.TotalImported++
}

func updateRecord(db *gorm.DB, r Record, actor setting.Actor, result *Result) {
	if _, err := setting.UpdateValue(db, r.Key, r.Value, actor); err != nil {
		result.Errors = append(result.Errors, KeyError{Key: r.Key, Message: err.Error()})
		return
	}

	result.Updated++
	result.TotalImported++
}

// freeKey finds the first unused "<key>_<n>" suffix for the rename policy.
func freeKey(db *gorm.DB, key string) string {
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", key, i)
		if _, err := setting.Get(db, candidate); errors.Is(err, setting.ErrUnknownSettingKey) {
			return candidate
		}
	}
}
