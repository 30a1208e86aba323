package transfer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
)

// ExportOptions controls which fields an export includes.
type ExportOptions struct {
	IncludeValues   bool
	IncludeMetadata bool
}

// document is the JSON/XML envelope of an export.
type document struct {
	XMLName    xml.Name `json:"-" xml:"settingsExport"`
	ExportID   string   `json:"exportId" xml:"exportId"`
	ExportedAt string   `json:"exportedAt" xml:"exportedAt"`
	Settings   []Record `json:"settings" xml:"setting"`
}

var csvHeader = []string{
	"key", "group", "type", "value", "options",
	"validation_rule", "is_required", "is_public", "sort_order",
}

// Export serializes the selected settings in the requested format.
// It is a pure read; the only side effect is an audit log line.
func Export(db *gorm.DB, scope Scope, format Format, opts ExportOptions) ([]byte, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	list, err := selectSettings(db, scope)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(list))
	for i := range list {
		records = append(records, toRecord(&list[i], opts))
	}

	out, err := encode(records, format)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("format", string(format)).
		Int("settings", len(records)).
		Bool("values", opts.IncludeValues).
		Msg("settings export produced")

	return out, nil
}

func toRecord(s *models.Setting, opts ExportOptions) Record {
	r := Record{
		Key:        s.Key,
		Group:      s.Group,
		Type:       s.Type,
		IsRequired: s.IsRequired,
		IsPublic:   s.IsPublic,
		SortOrder:  s.SortOrder,
	}

	if opts.IncludeValues {
		r.Value = s.Value
	}

	if opts.IncludeMetadata {
		r.Options = s.Options
		r.ValidationRule = s.ValidationRule
	}

	return r
}

func encode(records []Record, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(document{
			ExportID:   uuid.NewString(),
			ExportedAt: time.Now().UTC().Format(time.RFC3339),
			Settings:   records,
		}, "", "  ")
	case FormatXML:
		return xml.MarshalIndent(document{
			ExportID:   uuid.NewString(),
			ExportedAt: time.Now().UTC().Format(time.RFC3339),
			Settings:   records,
		}, "", "  ")
	case FormatCSV:
		return encodeCSV(records)
	default:
		return nil, ErrUnknownFormat
	}
}

func encodeCSV(records []Record) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, r := range records {
		row := []string{
			r.Key, r.Group, r.Type, r.Value, r.Options,
			r.ValidationRule,
			boolField(r.IsRequired), boolField(r.IsPublic),
			strconv.Itoa(r.SortOrder),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()

	return buf.Bytes(), w.Error()
}

func boolField(b bool) string {
	if b {
		return "1"
	}

	return "0"
}

// WriteBackup exports the full store with values and metadata as JSON and
// persists it under dir with a timestamped filename. Returns the file path.
func WriteBackup(db *gorm.DB, dir string) (string, error) {
	if db == nil {
		return "", ErrDBNil
	}

	data, err := Export(db, Scope{All: true}, FormatJSON, ExportOptions{
		IncludeValues:   true,
		IncludeMetadata: true,
	})
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o750); err != nil { //nolint: mnd
		return "", err
	}

	name := fmt.Sprintf("settings-%s-%s.json",
		time.Now().UTC().Format("20060102-150405"),
		uuid.NewString()[:8],
	)
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, data, 0o600); err != nil { //nolint: mnd
		return "", err
	}

	log.Info().Str("path", path).Msg("pre-import settings backup written")

	return path, nil
}
