package core

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/schemaform/internal/idgen"
)

// Draft is an unsaved edit of one field as the editor presents it: rules and
// options are comma-joined strings.
type Draft struct {
	ID          string
	Label       string
	Type        FieldKind
	Validations string
	Options     string
}

// Editor holds the ordered list of drafts being edited.
type Editor struct {
	Drafts []Draft
}

// NewEditor starts an editor from the current schema.
func NewEditor(schema Schema) *Editor {
	drafts := make([]Draft, len(schema))
	for i, f := range schema {
		drafts[i] = Draft{
			ID:          f.ID,
			Label:       f.Label,
			Type:        f.Type,
			Validations: strings.Join(f.Validations, ", "),
			Options:     strings.Join(f.Options, ", "),
		}
	}
	return &Editor{Drafts: drafts}
}

// AddField appends an empty text draft with a fresh id.
func (e *Editor) AddField() (Draft, error) {
	id, err := idgen.FieldID()
	if err != nil {
		return Draft{}, fmt.Errorf("add field: %w", err)
	}
	d := Draft{ID: id, Type: KindText}
	e.Drafts = append(e.Drafts, d)
	return d, nil
}

// RemoveField deletes the draft at index i.
func (e *Editor) RemoveField(i int) error {
	if i < 0 || i >= len(e.Drafts) {
		return fmt.Errorf("remove field %d: %w", i, ErrFieldIndex)
	}
	e.Drafts = append(e.Drafts[:i], e.Drafts[i+1:]...)
	return nil
}

// ApplySuggestion appends a suggested rule to the draft's rule text.
func (e *Editor) ApplySuggestion(i int, rule string) error {
	if i < 0 || i >= len(e.Drafts) {
		return fmt.Errorf("apply suggestion %d: %w", i, ErrFieldIndex)
	}
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil
	}
	cur := e.Drafts[i].Validations
	if strings.TrimSpace(cur) == "" {
		e.Drafts[i].Validations = rule
	} else {
		e.Drafts[i].Validations = cur + ", " + rule
	}
	return nil
}

// Build normalizes every draft into a FieldDefinition and checks the
// resulting schema. Nothing is returned unless every draft is valid.
func (e *Editor) Build() (Schema, error) {
	schema := make(Schema, 0, len(e.Drafts))

	for i, d := range e.Drafts {
		if strings.TrimSpace(d.Label) == "" {
			return nil, fmt.Errorf("field %d: %w", i+1, ErrEmptyLabel)
		}
		name := ToCamelCase(d.Label)
		if name == "" {
			return nil, fmt.Errorf("field %d (%q): %w", i+1, d.Label, ErrEmptyName)
		}

		f := FieldDefinition{
			ID:          d.ID,
			Name:        name,
			Label:       d.Label,
			Type:        d.Type,
			Validations: SplitList(d.Validations),
		}
		if d.Type == KindSelect {
			f.Options = SplitList(d.Options)
		}
		schema = append(schema, f)
	}

	if err := ValidateSchema(schema); err != nil {
		return nil, err
	}
	return schema, nil
}
