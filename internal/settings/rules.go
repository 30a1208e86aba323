package settings

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrRuleViolation matches every RuleError through errors.Is, for callers
// that only need to know a rule clause failed.
var ErrRuleViolation = errors.New("validation rule failed")

// RuleError reports which validation rule clause a value failed.
type RuleError struct {
	// Clause is the failed clause as written in the rule expression,
	// e.g. "max:100".
	Clause string
	// Reason is a short human readable explanation.
	Reason string
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	return fmt.Sprintf("validation rule %q failed: %s", e.Clause, e.Reason)
}

// Unwrap lets errors.Is match RuleError values against ErrRuleViolation.
func (e *RuleError) Unwrap() error {
	return ErrRuleViolation
}

func ruleFailed(clause, reason string) error {
	return &RuleError{Clause: clause, Reason: reason}
}

// Clause is one parsed constraint of a rule expression.
type Clause struct {
	Name  string
	Param string
}

// String renders the clause back to its expression form.
func (c Clause) String() string {
	if c.Param == "" {
		return c.Name
	}

	return c.Name + ":" + c.Param
}

// ParseRules splits a pipe separated rule expression into clauses.
// Empty segments are dropped; "max:255" parses into name "max", param "255".
func ParseRules(expr string) []Clause {
	if strings.TrimSpace(expr) == "" {
		return nil
	}

	parts := strings.Split(expr, "|")
	clauses := make([]Clause, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, param, _ := strings.Cut(part, ":")
		clauses = append(clauses, Clause{Name: strings.ToLower(name), Param: param})
	}

	return clauses
}

// ApplyRules evaluates each clause of a rule expression against a raw value,
// stopping on the first failure. The setting type decides whether min/max
// bound the numeric magnitude (number settings) or the string length.
//
// As in the admin panel this replaces, all clauses except "required" are
// skipped for empty values: emptiness is governed by required alone.
func ApplyRules(t Type, value, expr string) error {
	for _, clause := range ParseRules(expr) {
		if err := applyClause(t, value, clause); err != nil {
			return err
		}
	}

	return nil
}

func applyClause(t Type, value string, clause Clause) error { //nolint:cyclop
	if clause.Name == "required" {
		if strings.TrimSpace(value) == "" {
			return ruleFailed(clause.String(), "value is required")
		}

		return nil
	}

	// required governs emptiness; every other clause passes on empty input
	if value == "" {
		return nil
	}

	switch clause.Name {
	case "email":
		if err := validate.Var(value, "email"); err != nil {
			return ruleFailed(clause.String(), "not a valid email address")
		}
	case "url":
		if err := validate.Var(value, "url"); err != nil {
			return ruleFailed(clause.String(), "not a valid url")
		}
	case "numeric":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return ruleFailed(clause.String(), "not numeric")
		}
	case "integer":
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return ruleFailed(clause.String(), "not an integer")
		}
	case "alpha":
		if err := validate.Var(value, "alpha"); err != nil {
			return ruleFailed(clause.String(), "may only contain letters")
		}
	case "alphanumeric", "alpha_num":
		if err := validate.Var(value, "alphanum"); err != nil {
			return ruleFailed(clause.String(), "may only contain letters and numbers")
		}
	case "boolean":
		if value != "1" && value != "0" {
			return ruleFailed(clause.String(), "must be 1 or 0")
		}
	case "min":
		return applyBound(t, value, clause, false)
	case "max":
		return applyBound(t, value, clause, true)
	case "regex":
		return applyRegex(value, clause)
	case "in":
		return applyIn(value, clause)
	default:
		return ruleFailed(clause.String(), "unknown rule")
	}

	return nil
}

// applyBound enforces min/max. Number settings compare the numeric value,
// everything else compares the string length (matches rule expressions like
// "numeric|max:100" on numbers and "max:255" on text).
func applyBound(t Type, value string, clause Clause, isMax bool) error {
	bound, err := strconv.ParseFloat(clause.Param, 64)
	if err != nil {
		return ruleFailed(clause.String(), "rule parameter is not a number")
	}

	var subject float64

	if t == TypeNumber {
		subject, err = strconv.ParseFloat(value, 64)
		if err != nil {
			return ruleFailed(clause.String(), "not numeric")
		}
	} else {
		subject = float64(len(value))
	}

	if isMax && subject > bound {
		return ruleFailed(clause.String(), fmt.Sprintf("must be at most %s", clause.Param))
	}

	if !isMax && subject < bound {
		return ruleFailed(clause.String(), fmt.Sprintf("must be at least %s", clause.Param))
	}

	return nil
}

func applyRegex(value string, clause Clause) error {
	re, err := regexp.Compile(clause.Param)
	if err != nil {
		return ruleFailed(clause.String(), "invalid pattern")
	}

	if !re.MatchString(value) {
		return ruleFailed(clause.String(), "value does not match pattern")
	}

	return nil
}

func applyIn(value string, clause Clause) error {
	for _, allowed := range strings.Split(clause.Param, ",") {
		if value == strings.TrimSpace(allowed) {
			return nil
		}
	}

	return ruleFailed(clause.String(), "value is not in the permitted list")
}
