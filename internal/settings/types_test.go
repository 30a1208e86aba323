package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "text", input: "text"},
		{name: "boolean", input: "boolean"},
		{name: "select", input: "select"},
		{name: "json", input: "json"},
		{name: "file", input: "file"},
		{name: "unknown type", input: "datetime", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			typ, err := ParseType(tc.input)

			if tc.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, ErrUnknownType)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, Type(tc.input), typ)
		})
	}
}

func TestCheckValue(t *testing.T) {
	testCases := []struct {
		name    string
		typ     Type
		value   string
		options string
		wantErr bool
	}{
		{name: "text accepts anything", typ: TypeText, value: "hello"},
		{name: "textarea accepts multiline", typ: TypeTextarea, value: "a\nb"},
		{name: "number valid", typ: TypeNumber, value: "42.5"},
		{name: "number invalid", typ: TypeNumber, value: "abc", wantErr: true},
		{name: "email valid", typ: TypeEmail, value: "shop@example.com"},
		{name: "email invalid", typ: TypeEmail, value: "not-an-email", wantErr: true},
		{name: "url valid", typ: TypeURL, value: "https://example.com/shop"},
		{name: "url invalid", typ: TypeURL, value: "::not a url::", wantErr: true},
		{name: "color valid", typ: TypeColor, value: "#ff8800"},
		{name: "color invalid", typ: TypeColor, value: "orange", wantErr: true},
		{name: "boolean one", typ: TypeBoolean, value: "1"},
		{name: "boolean zero", typ: TypeBoolean, value: "0"},
		{name: "boolean true rejected", typ: TypeBoolean, value: "true", wantErr: true},
		{name: "select member", typ: TypeSelect, value: "eur", options: `["eur","usd"]`},
		{name: "select non member", typ: TypeSelect, value: "gbp", options: `["eur","usd"]`, wantErr: true},
		{name: "select object options", typ: TypeSelect, value: "de", options: `{"de":"Germany","fr":"France"}`},
		{name: "json valid", typ: TypeJSON, value: `{"a":1}`},
		{name: "json invalid", typ: TypeJSON, value: `{"a":`, wantErr: true},
		{name: "file accepts filename", typ: TypeFile, value: "logo.png"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.typ.CheckValue(tc.value, tc.options)

			if tc.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, ErrTypeMismatch)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCheckOptions(t *testing.T) {
	testCases := []struct {
		name     string
		typ      Type
		options  string
		expected error
	}{
		{name: "select with options", typ: TypeSelect, options: `["a","b"]`},
		{name: "select without options", typ: TypeSelect, options: "", expected: ErrOptionsRequired},
		{name: "select with broken options", typ: TypeSelect, options: `[1,2]`, expected: ErrBadOptions},
		{name: "text without options", typ: TypeText, options: ""},
		{name: "text with options", typ: TypeText, options: `["a"]`, expected: ErrOptionsNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.typ.CheckOptions(tc.options)

			if tc.expected != nil {
				require.ErrorIs(t, err, tc.expected)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestParseOptions(t *testing.T) {
	t.Run("array keeps declared order", func(t *testing.T) {
		options, err := ParseOptions(`["eur","usd","gbp"]`)
		require.NoError(t, err)
		require.Len(t, options, 3)
		assert.Equal(t, Option{Value: "eur", Label: "eur"}, options[0])
		assert.Equal(t, Option{Value: "gbp", Label: "gbp"}, options[2])
	})

	t.Run("object maps key to value and value to label", func(t *testing.T) {
		options, err := ParseOptions(`{"de":"Germany","at":"Austria"}`)
		require.NoError(t, err)
		require.Len(t, options, 2)
		assert.Equal(t, Option{Value: "at", Label: "Austria"}, options[0])
		assert.Equal(t, Option{Value: "de", Label: "Germany"}, options[1])
	})
}

func TestControlMapping(t *testing.T) {
	testCases := []struct {
		typ       Type
		control   FieldControl
		inputType string
	}{
		{typ: TypeText, control: ControlInput, inputType: "text"},
		{typ: TypeNumber, control: ControlInput, inputType: "number"},
		{typ: TypeEmail, control: ControlInput, inputType: "email"},
		{typ: TypePassword, control: ControlInput, inputType: "password"},
		{typ: TypeURL, control: ControlInput, inputType: "url"},
		{typ: TypeColor, control: ControlInput, inputType: "color"},
		{typ: TypeTextarea, control: ControlTextarea},
		{typ: TypeBoolean, control: ControlCheckbox},
		{typ: TypeSelect, control: ControlSelect},
		{typ: TypeJSON, control: ControlJSONEditor},
		{typ: TypeFile, control: ControlFile},
	}

	for _, tc := range testCases {
		t.Run(string(tc.typ), func(t *testing.T) {
			assert.Equal(t, tc.control, tc.typ.Control())
			assert.Equal(t, tc.inputType, tc.typ.InputType())
		})
	}
}

func TestPrettyJSON(t *testing.T) {
	t.Run("reindents parseable documents", func(t *testing.T) {
		out := PrettyJSON(`{"a":1,"b":[2,3]}`)
		assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": [\n    2,\n    3\n  ]\n}", out)
	})

	t.Run("leaves broken documents untouched", func(t *testing.T) {
		assert.Equal(t, `{"a":`, PrettyJSON(`{"a":`))
	})
}
