package core

import "context"

// FieldKind is the declared data type of a field.
type FieldKind string

const (
	KindText   FieldKind = "text"
	KindNumber FieldKind = "number"
	KindEmail  FieldKind = "email"
	KindDate   FieldKind = "date"
	KindSelect FieldKind = "select"
)

// FieldDefinition describes one named, typed column of the schema.
type FieldDefinition struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`   // Programmatic key, unique within the schema
	Label       string    `json:"label" yaml:"label"` // Human-readable
	Type        FieldKind `json:"type" yaml:"type"`
	Validations []string  `json:"validations" yaml:"validations"`
	Options     []string  `json:"options,omitempty" yaml:"options,omitempty"` // Only for KindSelect
}

// Schema is the ordered list of field definitions every record is shaped by.
type Schema []FieldDefinition

// Names returns the programmatic names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Clone returns a deep copy so callers cannot mutate a stored snapshot.
func (s Schema) Clone() Schema {
	if s == nil {
		return Schema{}
	}
	out := make(Schema, len(s))
	for i, f := range s {
		out[i] = f
		out[i].Validations = append([]string(nil), f.Validations...)
		if f.Options != nil {
			out[i].Options = append([]string(nil), f.Options...)
		}
	}
	return out
}

// DataRecord maps field names to scalar values (string, float64, or an ISO date string).
// Keys that no longer exist in the schema are kept as-is.
type DataRecord map[string]any

// Clone returns a shallow copy of the record; values are scalars.
func (r DataRecord) Clone() DataRecord {
	out := make(DataRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Store is the persistence collaborator. Implementations replace the schema
// wholesale and append records; there is no per-record update or delete.
type Store interface {
	GetSchema(ctx context.Context) (Schema, error)
	GetData(ctx context.Context) ([]DataRecord, error)
	UpdateSchema(ctx context.Context, schema Schema) error
	AddData(ctx context.Context, record DataRecord) error
}

// Resetter is implemented by stores that support clearing all state.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Suggester proposes rule strings for a field. It is advisory only.
type Suggester interface {
	Suggest(ctx context.Context, label string, kind FieldKind) ([]string, error)
}

// Result is the uniform outcome returned across the Service boundary.
type Result struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message,omitempty"`
	Error       string   `json:"error,omitempty"`
	Code        string   `json:"code,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// OK builds a successful Result.
func OK(message string) Result {
	return Result{Success: true, Message: message}
}

// Fail builds a failed Result from an error, using the mapped user message.
func Fail(err error) Result {
	msg := MapError(err)
	return Result{Success: false, Error: msg.Message, Code: msg.Code}
}
