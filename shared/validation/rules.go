package validation

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Rule checks a single field value and returns nil when it is acceptable.
type Rule func(value string) error

// Values is form state: field name to current value.
type Values map[string]string

// Errors maps a field name to the first failing message for that field.
type Errors map[string]string

func (e Errors) Valid() bool {
	return len(e) == 0
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

type Field struct {
	Name  string
	Rules []Rule
}

// RuleSet validates a form. Fields are checked in order, all of them, every time.
type RuleSet []Field

// Validate runs every field and never stops early. The result is empty,
// not nil, when everything passed.
func (rs RuleSet) Validate(values Values) Errors {
	errs := Errors{}
	for _, field := range rs {
		if msg, ok := checkField(field, values[field.Name]); !ok {
			errs[field.Name] = msg
		}
	}
	return errs
}

// ValidateField checks one field of the set. Unknown fields pass.
func (rs RuleSet) ValidateField(name, value string) (string, bool) {
	for _, field := range rs {
		if field.Name == name {
			return checkField(field, value)
		}
	}
	return "", true
}

func checkField(field Field, value string) (string, bool) {
	for _, rule := range field.Rules {
		if err := rule(value); err != nil {
			return err.Error(), false
		}
	}
	return "", true
}

// length counts characters of the trimmed value.
func length(v string) int {
	return utf8.RuneCountInString(strings.TrimSpace(v))
}

// Required fails on empty or whitespace-only values.
func Required(msg string) Rule {
	err := errors.New(msg)
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return err
		}
		return nil
	}
}

func MinLen(n int, msg string) Rule {
	err := errors.New(msg)
	return func(v string) error {
		if length(v) < n {
			return err
		}
		return nil
	}
}

func MaxLen(n int, msg string) Rule {
	err := errors.New(msg)
	return func(v string) error {
		if length(v) > n {
			return err
		}
		return nil
	}
}

// Length fails with one message whether the value is too short or too long.
func Length(min, max int, msg string) Rule {
	err := errors.New(msg)
	return func(v string) error {
		if l := length(v); l < min || l > max {
			return err
		}
		return nil
	}
}

func Matches(re *regexp.Regexp, msg string) Rule {
	err := errors.New(msg)
	return func(v string) error {
		if !re.MatchString(strings.TrimSpace(v)) {
			return err
		}
		return nil
	}
}

// Email accepts what validator's "email" tag accepts.
func Email(msg string) Rule {
	err := errors.New(msg)
	return func(v string) error {
		if validate.Var(strings.TrimSpace(v), "required,email") != nil {
			return err
		}
		return nil
	}
}

// Optional applies rules only to a non-blank value.
func Optional(rules ...Rule) Rule {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return nil
		}
		for _, rule := range rules {
			if err := rule(v); err != nil {
				return err
			}
		}
		return nil
	}
}
