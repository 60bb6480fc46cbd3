package validation

import (
	"maps"
	"slices"
	"strings"
)

// NonFieldErrors is the key for failures not tied to one input field.
const NonFieldErrors = "non_field_errors"

// Errors maps a field name to every message collected for it.
type Errors map[string][]string

// Add appends msg to field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether field has at least one message.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Empty reports whether nothing failed.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Error lists fields in sorted order, e.g. "password2: Password fields didn't match."
func (e Errors) Error() string {
	var b strings.Builder
	for i, field := range slices.Sorted(maps.Keys(e)) {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(field)
		b.WriteString(": ")
		b.WriteString(strings.Join(e[field], " "))
	}
	return b.String()
}
