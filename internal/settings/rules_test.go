package settings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRules(t *testing.T) {
	testCases := []struct {
		name     string
		expr     string
		expected []Clause
	}{
		{
			name:     "simple pipe list",
			expr:     "required|email|max:255",
			expected: []Clause{{Name: "required"}, {Name: "email"}, {Name: "max", Param: "255"}},
		},
		{
			name:     "empty expression",
			expr:     "",
			expected: nil,
		},
		{
			name:     "whitespace and empty segments dropped",
			expr:     " required || max:5 ",
			expected: []Clause{{Name: "required"}, {Name: "max", Param: "5"}},
		},
		{
			name:     "regex keeps its parameter verbatim",
			expr:     `regex:^[a-z]+$`,
			expected: []Clause{{Name: "regex", Param: "^[a-z]+$"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseRules(tc.expr))
		})
	}
}

func TestApplyRules(t *testing.T) {
	testCases := []struct {
		name       string
		typ        Type
		value      string
		expr       string
		failClause string
	}{
		{name: "no rules always pass", typ: TypeText, value: "anything", expr: ""},
		{name: "required with value", typ: TypeText, value: "x", expr: "required"},
		{name: "required empty", typ: TypeText, value: "", expr: "required", failClause: "required"},
		{name: "required whitespace only", typ: TypeText, value: "  ", expr: "required", failClause: "required"},
		{name: "email ok", typ: TypeText, value: "a@b.de", expr: "email"},
		{name: "email bad", typ: TypeText, value: "nope", expr: "email", failClause: "email"},
		{name: "non required clauses skip empty values", typ: TypeText, value: "", expr: "email|max:5"},
		{name: "numeric ok", typ: TypeText, value: "12.5", expr: "numeric"},
		{name: "numeric bad", typ: TypeText, value: "abc", expr: "numeric", failClause: "numeric"},
		{name: "integer bad", typ: TypeText, value: "1.5", expr: "integer", failClause: "integer"},
		{name: "number max bounds magnitude", typ: TypeNumber, value: "150", expr: "numeric|max:100", failClause: "max:100"},
		{name: "number within max", typ: TypeNumber, value: "50", expr: "numeric|max:100"},
		{name: "text max bounds length", typ: TypeText, value: "abcdef", expr: "max:5", failClause: "max:5"},
		{name: "text within max length", typ: TypeText, value: "abcde", expr: "max:5"},
		{name: "number min bounds magnitude", typ: TypeNumber, value: "3", expr: "min:5", failClause: "min:5"},
		{name: "text min bounds length", typ: TypeText, value: "ab", expr: "min:3", failClause: "min:3"},
		{name: "regex match", typ: TypeText, value: "abc", expr: "regex:^[a-z]+$"},
		{name: "regex no match", typ: TypeText, value: "abc1", expr: "regex:^[a-z]+$", failClause: "regex:^[a-z]+$"},
		{name: "in list", typ: TypeText, value: "eur", expr: "in:eur,usd"},
		{name: "not in list", typ: TypeText, value: "gbp", expr: "in:eur,usd", failClause: "in:eur,usd"},
		{name: "alpha ok", typ: TypeText, value: "abc", expr: "alpha"},
		{name: "alpha bad", typ: TypeText, value: "abc1", expr: "alpha", failClause: "alpha"},
		{name: "alphanumeric ok", typ: TypeText, value: "abc1", expr: "alphanumeric"},
		{name: "boolean rule", typ: TypeText, value: "2", expr: "boolean", failClause: "boolean"},
		{name: "unknown clause fails", typ: TypeText, value: "x", expr: "shiny", failClause: "shiny"},
		{name: "stops on first failure", typ: TypeText, value: "toolongvalue", expr: "max:3|email", failClause: "max:3"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ApplyRules(tc.typ, tc.value, tc.expr)

			if tc.failClause == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)

			var ruleErr *RuleError
			require.True(t, errors.As(err, &ruleErr))
			assert.Equal(t, tc.failClause, ruleErr.Clause)
		})
	}
}

func TestRuleErrorMessage(t *testing.T) {
	err := ruleFailed("max:100", "must be at most 100")
	assert.Equal(t, `validation rule "max:100" failed: must be at most 100`, err.Error())
}
