package core

// FormControl describes one rendered input of the data-entry form.
type FormControl struct {
	ID          string
	Name        string
	Label       string
	InputType   string // text, number, email, date or select
	Options     []string
	Placeholder string
	Required    bool
	Value       string // Current raw value
	Error       string // Validator message, if the last submit failed
}

// Form renders and validates a data-entry form for a schema.
type Form struct {
	schema    Schema
	validator *RecordValidator
}

// NewForm builds the form and its validators once for a schema snapshot.
func NewForm(schema Schema) *Form {
	return &Form{
		schema:    schema,
		validator: NewRecordValidator(schema),
	}
}

// Controls returns one control per field in schema order. values and errs may
// be nil, which renders the empty defaults.
func (f *Form) Controls(values map[string]string, errs FieldErrors) []FormControl {
	controls := make([]FormControl, len(f.schema))
	for i, def := range f.schema {
		spec, ok := LookupKind(def.Type)
		if !ok {
			spec, _ = LookupKind(KindText)
		}

		c := FormControl{
			ID:          def.ID,
			Name:        def.Name,
			Label:       def.Label,
			InputType:   spec.InputType,
			Placeholder: "Enter " + def.Label,
			Value:       values[def.Name],
			Error:       errs[def.Name],
		}
		if v, ok := f.validator.Validator(def.Name); ok {
			c.Required = v.Required()
		}
		if spec.Kind == KindSelect {
			c.Options = append([]string(nil), def.Options...)
			c.Placeholder = "Select " + def.Label
		}
		controls[i] = c
	}
	return controls
}

// Validate runs every field's validator over the raw values.
func (f *Form) Validate(raw map[string]string) (DataRecord, FieldErrors) {
	return f.validator.Validate(raw)
}

// EmptyValues returns the reset state of the form: every field cleared.
func (f *Form) EmptyValues() map[string]string {
	values := make(map[string]string, len(f.schema))
	for _, def := range f.schema {
		values[def.Name] = ""
	}
	return values
}
