package core

// validation.go turns field definitions into executable validators.
//
// Validation happens at two levels:
//  1. Field validation: one Validator per field, built from its kind and rules
//  2. Record validation: a RecordValidator runs every field and collects errors
//
// Validators are immutable once built and hold no shared state, so the same
// definition always yields an equivalent validator.

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Messages shown next to a failing field.
const (
	msgRequired = "This field is required"
	msgEmail    = "Invalid email address"
	msgPattern  = "Invalid format"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Field name
	Value   string // The rejected raw value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// CheckResult is the outcome of validating one raw value.
type CheckResult struct {
	OK      bool
	Value   any    // Coerced value when OK
	Message string // Failure message when not OK
}

// Validator checks raw input for one field.
type Validator struct {
	def      FieldDefinition
	spec     KindSpec
	rules    []Rule
	required bool
}

// NewValidator compiles a field's kind and rule strings into a Validator.
// Rules that cannot be parsed, or do not apply to the field's kind, are skipped.
func NewValidator(def FieldDefinition) *Validator {
	spec, ok := LookupKind(def.Type)
	if !ok {
		slog.Warn("unknown field kind, treating as text", "field", def.Name, "type", def.Type)
		spec, _ = LookupKind(KindText)
	}

	v := &Validator{def: def, spec: spec}
	for _, rule := range ParseRules(def.Name, def.Validations) {
		if !rule.appliesTo(spec) {
			slog.Debug("rule does not apply to field kind",
				"field", def.Name,
				"type", spec.Kind,
				"rule", rule.Source,
			)
			continue
		}
		if rule.Kind == RuleRequired {
			v.required = true
			continue
		}
		v.rules = append(v.rules, rule)
	}
	return v
}

// Required reports whether the field rejects empty input.
func (v *Validator) Required() bool {
	return v.required
}

// Check validates and coerces a raw value.
func (v *Validator) Check(raw string) CheckResult {
	if strings.TrimSpace(raw) == "" {
		if v.required {
			return CheckResult{Message: msgRequired}
		}
		// Optional and empty: skip coercion and rules.
		return CheckResult{OK: true, Value: ""}
	}

	input := raw
	if !v.spec.TextLike {
		input = strings.TrimSpace(raw)
	}

	value, msg := v.spec.Coerce(input, v.def)
	if msg != "" {
		return CheckResult{Message: msg}
	}

	for _, rule := range v.rules {
		if msg := checkRule(rule, value); msg != "" {
			return CheckResult{Message: msg}
		}
	}

	return CheckResult{OK: true, Value: value}
}

// checkRule applies one rule to an already coerced value.
func checkRule(rule Rule, value any) string {
	switch rule.Kind {
	case RuleMinLength:
		if s, ok := value.(string); ok && float64(utf8.RuneCountInString(s)) < rule.N {
			return fmt.Sprintf("Must be at least %s characters", FormatValue(rule.N))
		}
	case RuleMaxLength:
		if s, ok := value.(string); ok && float64(utf8.RuneCountInString(s)) > rule.N {
			return fmt.Sprintf("Must be at most %s characters", FormatValue(rule.N))
		}
	case RuleMin:
		if n, ok := numericValue(value); ok && n < rule.N {
			return fmt.Sprintf("Must be greater than or equal to %s", FormatValue(rule.N))
		}
	case RuleMax:
		if n, ok := numericValue(value); ok && n > rule.N {
			return fmt.Sprintf("Must be less than or equal to %s", FormatValue(rule.N))
		}
	case RuleEmail:
		if s, ok := value.(string); ok && !IsEmail(s) {
			return msgEmail
		}
	case RulePattern:
		if s, ok := value.(string); ok && !rule.Pattern.MatchString(s) {
			return msgPattern
		}
	}
	return ""
}

// FieldErrors maps field names to the message shown next to them.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, ValidationError{Field: field, Message: msg}.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// RecordValidator validates whole records against a schema.
type RecordValidator struct {
	schema     Schema
	validators []*Validator
}

// NewRecordValidator builds one Validator per schema field.
func NewRecordValidator(schema Schema) *RecordValidator {
	rv := &RecordValidator{
		schema:     schema,
		validators: make([]*Validator, len(schema)),
	}
	for i, def := range schema {
		rv.validators[i] = NewValidator(def)
	}
	return rv
}

// Validator returns the validator for a field name.
func (rv *RecordValidator) Validator(name string) (*Validator, bool) {
	for i, def := range rv.schema {
		if def.Name == name {
			return rv.validators[i], true
		}
	}
	return nil, false
}

// Validate checks every schema field in raw and returns the coerced record.
// Either the full record is returned with nil errors, or no record and every
// failing field's message.
func (rv *RecordValidator) Validate(raw map[string]string) (DataRecord, FieldErrors) {
	record := make(DataRecord, len(rv.schema))
	var errs FieldErrors

	for i, def := range rv.schema {
		res := rv.validators[i].Check(raw[def.Name])
		if !res.OK {
			if errs == nil {
				errs = make(FieldErrors)
			}
			errs[def.Name] = res.Message
			continue
		}
		record[def.Name] = res.Value
	}

	if errs != nil {
		return nil, errs
	}
	return record, nil
}
