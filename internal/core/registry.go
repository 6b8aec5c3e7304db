package core

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// KindSpec is the single definition point for a field kind. The validator,
// form renderer and table engine all read from it.
type KindSpec struct {
	Kind      FieldKind
	Label     string // Shown in the editor's type picker
	InputType string // HTML input type; "select" renders a <select>
	TextLike  bool   // Accepts minLength, maxLength, email and pattern

	// Coerce converts a non-empty raw value. A non-empty message means the
	// value was rejected.
	Coerce func(raw string, def FieldDefinition) (value any, message string)

	// Display formats a stored value for the on-screen table.
	Display func(v any) string
}

var (
	kinds     = make(map[FieldKind]KindSpec)
	kindOrder []FieldKind
	kindsMu   sync.RWMutex
)

// RegisterKind adds a field kind.
// Panics if the kind is already registered.
func RegisterKind(spec KindSpec) {
	kindsMu.Lock()
	defer kindsMu.Unlock()

	if _, exists := kinds[spec.Kind]; exists {
		panic(fmt.Sprintf("field kind already registered: %s", spec.Kind))
	}
	if spec.Display == nil {
		spec.Display = FormatValue
	}
	kinds[spec.Kind] = spec
	kindOrder = append(kindOrder, spec.Kind)
}

// LookupKind returns the registered entry for a kind.
// Returns false if not found.
func LookupKind(kind FieldKind) (KindSpec, bool) {
	kindsMu.RLock()
	defer kindsMu.RUnlock()

	spec, ok := kinds[kind]
	return spec, ok
}

// Kinds returns all registered kinds in registration order.
func Kinds() []KindSpec {
	kindsMu.RLock()
	defer kindsMu.RUnlock()

	result := make([]KindSpec, 0, len(kindOrder))
	for _, k := range kindOrder {
		result = append(result, kinds[k])
	}
	return result
}

// ParseKind resolves a type name, case-insensitively.
func ParseKind(s string) (FieldKind, error) {
	k := FieldKind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := LookupKind(k); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

func init() {
	RegisterKind(KindSpec{
		Kind:      KindText,
		Label:     "Text",
		InputType: "text",
		TextLike:  true,
		Coerce: func(raw string, _ FieldDefinition) (any, string) {
			return raw, ""
		},
	})
	RegisterKind(KindSpec{
		Kind:      KindNumber,
		Label:     "Number",
		InputType: "number",
		Coerce: func(raw string, _ FieldDefinition) (any, string) {
			n, ok := ParseNumber(raw)
			if !ok {
				return nil, "Must be a number"
			}
			return n, ""
		},
	})
	RegisterKind(KindSpec{
		Kind:      KindEmail,
		Label:     "Email",
		InputType: "email",
		TextLike:  true,
		Coerce: func(raw string, _ FieldDefinition) (any, string) {
			if !IsEmail(raw) {
				return nil, "Invalid email address"
			}
			return raw, ""
		},
	})
	RegisterKind(KindSpec{
		Kind:      KindDate,
		Label:     "Date",
		InputType: "date",
		Coerce: func(raw string, _ FieldDefinition) (any, string) {
			t, ok := ParseDate(raw)
			if !ok {
				return nil, "Invalid date"
			}
			return t.Format(isoDate), ""
		},
		Display: FormatDisplayDate,
	})
	RegisterKind(KindSpec{
		Kind:      KindSelect,
		Label:     "Select",
		InputType: "select",
		TextLike:  true,
		Coerce: func(raw string, def FieldDefinition) (any, string) {
			if !slices.Contains(def.Options, raw) {
				return nil, "Must be one of: " + strings.Join(def.Options, ", ")
			}
			return raw, ""
		},
	})
}
