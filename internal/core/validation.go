package core

// validation.go provides the presence checks the service applies.
//
// Validation happens at two points:
//  1. Field design: every setting must use a known FieldType
//  2. Form entries: fields marked Required must be present and non-blank
//
// Values are never type-checked; a "number" field accepts any text. Only
// presence is enforced.

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Field/header name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors is a list of field errors reported together.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Fields returns the names of the fields with errors.
func (errs ValidationErrors) Fields() []string {
	names := make([]string, len(errs))
	for i, e := range errs {
		names[i] = e.Field
	}
	return names
}

// CheckRequired reports every required field that is missing or blank in data.
// Headers are checked in order so the result is stable.
func CheckRequired(headers []string, fields FieldSettings, data map[string]string) ValidationErrors {
	var errs ValidationErrors
	for _, h := range headers {
		fs, ok := fields[h]
		if !ok || !fs.Required {
			continue
		}
		if strings.TrimSpace(data[h]) == "" {
			errs = append(errs, ValidationError{Field: h, Value: data[h], Message: "is required"})
		}
	}
	return errs
}

// NormalizeFields validates field settings against the sheet headers and
// returns the cleaned settings: empty types default to text, options are
// trimmed with blanks dropped, names that are not headers are dropped.
func NormalizeFields(fields FieldSettings, headers []string) (FieldSettings, ValidationErrors) {
	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs ValidationErrors
	out := make(FieldSettings, len(fields))
	for _, name := range names {
		if !known[name] {
			continue
		}
		fs := fields[name]
		if fs.Type == "" {
			fs.Type = FieldText
		}
		if !fs.Type.Valid() {
			errs = append(errs, ValidationError{
				Field:   name,
				Value:   string(fs.Type),
				Message: "unknown field type",
			})
			continue
		}
		fs.Options = cleanOptions(fs.Options)
		if fs.Type != FieldDropdown {
			fs.Options = nil
		}
		out[name] = fs
	}
	return out, errs
}

// SplitOptions parses a comma-separated option list as entered in the
// design form ("HR, IT,Finance").
func SplitOptions(s string) []string {
	return cleanOptions(strings.Split(s, ","))
}

func cleanOptions(opts []string) []string {
	var out []string
	for _, o := range opts {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
