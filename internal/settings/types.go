// Package settings implements the typed value contract shared by settings
// and custom fields: the closed set of value types, per-type shape checks,
// the field control each type renders as, and the validation rule DSL.
//
// Every type lives in exactly one variant entry so that rendering and
// validation can never drift apart between pages.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Type is the closed enum of setting value types.
type Type string

const (
	// TypeText is a single-line free text value.
	TypeText Type = "text"
	// TypeTextarea is a multi-line free text value.
	TypeTextarea Type = "textarea"
	// TypeNumber is a numeric value stored as text.
	TypeNumber Type = "number"
	// TypeEmail is an email address.
	TypeEmail Type = "email"
	// TypePassword is a masked text value.
	TypePassword Type = "password"
	// TypeURL is a well-formed URL.
	TypeURL Type = "url"
	// TypeColor is a hex color such as #ff8800.
	TypeColor Type = "color"
	// TypeBoolean is a checkbox bound to "1"/"0".
	TypeBoolean Type = "boolean"
	// TypeSelect is a dropdown over the declared options.
	TypeSelect Type = "select"
	// TypeJSON is a JSON document edited as text.
	TypeJSON Type = "json"
	// TypeFile stores the filename returned by the upload collaborator.
	TypeFile Type = "file"
)

// FieldControl is the form control a type renders as.
type FieldControl string

const (
	// ControlInput renders a single-line <input> of the type's subtype.
	ControlInput FieldControl = "input"
	// ControlTextarea renders a multi-line <textarea>.
	ControlTextarea FieldControl = "textarea"
	// ControlCheckbox renders a checkbox bound to "1"/"0".
	ControlCheckbox FieldControl = "checkbox"
	// ControlSelect renders a dropdown from the setting's options.
	ControlSelect FieldControl = "select"
	// ControlJSONEditor renders a textarea with pretty-print on blur.
	ControlJSONEditor FieldControl = "jsoneditor"
	// ControlFile renders the current filename plus an upload affordance.
	ControlFile FieldControl = "file"
)

var (
	// ErrUnknownType is returned when a type string is not part of the enum.
	ErrUnknownType = errors.New("unknown setting type")
	// ErrTypeMismatch is returned when a value does not match the setting's type.
	ErrTypeMismatch = errors.New("value does not match setting type")
	// ErrOptionsRequired is returned when a select setting has no options.
	ErrOptionsRequired = errors.New("select settings require options")
	// ErrOptionsNotAllowed is returned when options are set on a non-select type.
	ErrOptionsNotAllowed = errors.New("options are only allowed on select settings")
	// ErrBadOptions is returned when the options document cannot be parsed.
	ErrBadOptions = errors.New("options must be a JSON array or object")
)

// Option is one permitted value of a select setting.
type Option struct {
	Value string
	Label string
}

// validate is shared for tag based shape checks (email, url, hexcolor, numeric).
var validate = validator.New()

// variant carries everything a type needs: its form control, the html input
// subtype when rendered as ControlInput, and its value shape check.
type variant struct {
	control   FieldControl
	inputType string
	check     func(value string, options []Option) error
}

func tagCheck(tag string) func(string, []Option) error {
	return func(value string, _ []Option) error {
		if err := validate.Var(value, tag); err != nil {
			return fmt.Errorf("%w: not a valid %s", ErrTypeMismatch, tag)
		}

		return nil
	}
}

var variants = map[Type]variant{
	TypeText:     {control: ControlInput, inputType: "text", check: checkAny},
	TypeTextarea: {control: ControlTextarea, check: checkAny},
	TypeNumber:   {control: ControlInput, inputType: "number", check: checkNumber},
	TypeEmail:    {control: ControlInput, inputType: "email", check: tagCheck("email")},
	TypePassword: {control: ControlInput, inputType: "password", check: checkAny},
	TypeURL:      {control: ControlInput, inputType: "url", check: tagCheck("url")},
	TypeColor:    {control: ControlInput, inputType: "color", check: tagCheck("hexcolor")},
	TypeBoolean:  {control: ControlCheckbox, check: checkBoolean},
	TypeSelect:   {control: ControlSelect, check: checkSelect},
	TypeJSON:     {control: ControlJSONEditor, check: checkJSON},
	TypeFile:     {control: ControlFile, check: checkAny},
}

func checkAny(_ string, _ []Option) error {
	return nil
}

func checkNumber(value string, _ []Option) error {
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return fmt.Errorf("%w: not a number", ErrTypeMismatch)
	}

	return nil
}

func checkBoolean(value string, _ []Option) error {
	if value != "1" && value != "0" {
		return fmt.Errorf("%w: boolean values must be \"1\" or \"0\"", ErrTypeMismatch)
	}

	return nil
}

func checkSelect(value string, options []Option) error {
	for _, opt := range options {
		if opt.Value == value {
			return nil
		}
	}

	return fmt.Errorf("%w: %q is not a permitted option", ErrTypeMismatch, value)
}

func checkJSON(value string, _ []Option) error {
	if !json.Valid([]byte(value)) {
		return fmt.Errorf("%w: not valid JSON", ErrTypeMismatch)
	}

	return nil
}

// ParseType validates a type string against the closed enum.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if _, ok := variants[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}

	return t, nil
}

// AllTypes lists every type in the enum in stable order, for building
// type pickers.
func AllTypes() []Type {
	all := make([]Type, 0, len(variants))
	for t := range variants {
		all = append(all, t)
	}

	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

	return all
}

// Valid reports whether the type is part of the enum.
func (t Type) Valid() bool {
	_, ok := variants[t]
	return ok
}

// Control returns the form control this type renders as.
func (t Type) Control() FieldControl {
	return variants[t].control
}

// InputType returns the html input subtype for ControlInput types.
func (t Type) InputType() string {
	return variants[t].inputType
}

// CheckValue verifies that a raw value matches the type's shape.
// rawOptions is the setting's JSON options document, only consulted for
// select types. Returns an error wrapping ErrTypeMismatch on failure.
func (t Type) CheckValue(value, rawOptions string) error {
	v, ok := variants[t]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, string(t))
	}

	var options []Option

	if t == TypeSelect {
		parsed, err := ParseOptions(rawOptions)
		if err != nil {
			return err
		}

		options = parsed
	}

	return v.check(value, options)
}

// CheckOptions enforces that options are present iff the type is select and
// that the document parses.
func (t Type) CheckOptions(rawOptions string) error {
	if t == TypeSelect {
		if rawOptions == "" {
			return ErrOptionsRequired
		}

		_, err := ParseOptions(rawOptions)

		return err
	}

	if rawOptions != "" {
		return ErrOptionsNotAllowed
	}

	return nil
}

// ParseOptions parses a select setting's options document.
// A JSON array yields value==label entries; a JSON object yields key=value,
// value=label entries sorted by key for stable ordering.
func ParseOptions(raw string) ([]Option, error) {
	if raw == "" {
		return nil, ErrOptionsRequired
	}

	var asList []string
	if err := json.Unmarshal([]byte(raw), &asList); err == nil {
		options := make([]Option, 0, len(asList))
		for _, v := range asList {
			options = append(options, Option{Value: v, Label: v})
		}

		return options, nil
	}

	var asMap map[string]string
	if err := json.Unmarshal([]byte(raw), &asMap); err == nil {
		keys := make([]string, 0, len(asMap))
		for k := range asMap {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		options := make([]Option, 0, len(keys))
		for _, k := range keys {
			options = append(options, Option{Value: k, Label: asMap[k]})
		}

		return options, nil
	}

	return nil, ErrBadOptions
}

// PrettyJSON re-indents a JSON document with two spaces.
// Unparseable input is returned unchanged; pretty-printing is a rendering
// convenience, never a validation step.
func PrettyJSON(s string) string {
	var doc any
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return s
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return s
	}

	return string(out)
}
