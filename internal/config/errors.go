package config

import (
	"sort"
	"strings"
)

// FieldError describes one missing or malformed setting.
type FieldError struct {
	Field  string // environment variable name, e.g. "SECRET_KEY"
	Reason string
}

// Error aggregates every problem found while building a Config.  Load
// returns it instead of stopping at the first failure.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	return "config: invalid configuration: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the reported problems.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// FieldNames returns the sorted, de-duplicated list of failing fields.
func (e *Error) FieldNames() []string {
	seen := make(map[string]struct{}, len(e.Fields))
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := seen[f.Field]; ok {
			continue
		}
		seen[f.Field] = struct{}{}
		out = append(out, f.Field)
	}
	sort.Strings(out)
	return out
}

func (e *Error) add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

func (e *Error) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
