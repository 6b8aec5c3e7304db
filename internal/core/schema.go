package core

import (
	"fmt"
	"strings"
)

// ValidateSchema checks the structural contract of a schema:
//   - every field has an id, a name, a label and a known type
//   - names are unique
//   - select fields declare at least one option
//
// Rule strings are not checked here; unparseable rules are ignored later.
func ValidateSchema(schema Schema) error {
	seen := make(map[string]int, len(schema))

	for i, f := range schema {
		pos := i + 1
		if strings.TrimSpace(f.ID) == "" {
			return fmt.Errorf("%w: field %d has no id", ErrInvalidSchema, pos)
		}
		if strings.TrimSpace(f.Label) == "" {
			return fmt.Errorf("field %d: %w", pos, ErrEmptyLabel)
		}
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("field %d (%q): %w", pos, f.Label, ErrEmptyName)
		}
		if _, ok := LookupKind(f.Type); !ok {
			return fmt.Errorf("field %d (%q): %w: %q", pos, f.Label, ErrUnknownKind, f.Type)
		}
		if f.Type == KindSelect && len(f.Options) == 0 {
			return fmt.Errorf("field %d (%q): %w", pos, f.Label, ErrMissingOptions)
		}
		if prev, dup := seen[f.Name]; dup {
			return fmt.Errorf("fields %d and %d share name %q: %w", prev, pos, f.Name, ErrDuplicateName)
		}
		seen[f.Name] = pos
	}

	return nil
}

// Normalize returns a copy with options dropped from non-select fields and
// nil rule lists replaced by empty ones.
func (s Schema) Normalize() Schema {
	out := s.Clone()
	for i := range out {
		if out[i].Validations == nil {
			out[i].Validations = []string{}
		}
		if out[i].Type != KindSelect {
			out[i].Options = nil
		}
	}
	return out
}

// ToCamelCase derives a programmatic name from a label. Every run of
// characters outside [A-Za-z0-9] is removed and the character after it is
// upper-cased; the first character of the result is lower-cased.
//
//	"First Name"     -> "firstName"
//	"e-mail address" -> "eMailAddress"
//	"  ---  "        -> ""
func ToCamelCase(label string) string {
	var b strings.Builder
	b.Grow(len(label))

	upperNext := false
	for i := 0; i < len(label); i++ {
		c := label[i]
		if !isASCIIAlnum(c) {
			upperNext = true
			continue
		}
		if upperNext {
			c = toUpperASCII(c)
			upperNext = false
		}
		b.WriteByte(c)
	}

	out := b.String()
	if out == "" {
		return ""
	}
	return string(toLowerASCII(out[0])) + out[1:]
}

func isASCIIAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func toUpperASCII(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

func toLowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// SplitList splits a comma-joined editor string, trimming entries and
// dropping empty ones.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
