package model

import (
	"strings"
	"unicode/utf8"

	"github.com/sakif/idealab/internal/apperror"
)

// FieldSpec describes one user-writable field of a record type: its JSON
// key and the maximum stored length in runes. Each record type exposes its
// field table as a package-level slice (IdeaFields, ImprovementFields) and
// the generic CRUD service runs every create/update through Collect.
//
// This replaces per-type validation code with one shared algorithm — the
// table is the only thing that varies between record types.
type FieldSpec struct {
	Name   string
	MaxLen int
}

// Collect validates submitted fields against a field table and returns the
// cleaned values ready for storage.
//
// ALL-OR-NOTHING CONTRACT:
// Every field in the table is required. If any one is absent (or blank
// after trimming) the whole submission is rejected and nothing is returned,
// so callers can never persist a partially-valid record. Present values are
// trimmed of surrounding whitespace and truncated to the field's limit
// before they are returned.
//
// Truncation counts runes, not bytes — limits describe text length, and a
// multi-byte title must not be cut mid-character.
func Collect(specs []FieldSpec, input map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(specs))
	for _, f := range specs {
		v, ok := input[f.Name]
		if !ok {
			return nil, apperror.ValidationFailed(f.Name, f.Name+" is required")
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, apperror.ValidationFailed(f.Name, f.Name+" is required")
		}
		out[f.Name] = Truncate(v, f.MaxLen)
	}
	return out, nil
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
