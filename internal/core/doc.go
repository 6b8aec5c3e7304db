// Package core provides the business logic for schema-driven data capture.
//
// This package contains all domain logic independent of any UI or transport
// layer. It can be used by web handlers, the JSON API, or tests without
// modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Field Kinds: Registered via [RegisterKind], each kind declares how raw
//     input is coerced, which rules apply to it, and how values are displayed.
//   - Rules: Rule strings such as "minLength:3" are parsed once into typed
//     [Rule] values by [ParseRule]; malformed rules are skipped with a warning.
//   - Editor: [Editor] holds unsaved drafts and normalizes them into a
//     [Schema] with camelCase names derived by [ToCamelCase].
//   - Form: [Form] renders controls and validates a submission into a
//     [DataRecord] with per-field messages.
//   - Table: [Table] filters, sorts and paginates records and exports CSV.
//   - Service: The main entry point; every operation returns a [Result].
//
// # Field Kinds
//
// Kinds are registered at init time. A new kind only needs a [KindSpec]:
//
//	core.RegisterKind(core.KindSpec{
//	    Kind:      "phone",
//	    Label:     "Phone",
//	    InputType: "tel",
//	    TextLike:  true,
//	    Coerce: func(raw string, _ core.FieldDefinition) (any, string) {
//	        return raw, ""
//	    },
//	})
//
// # Duplicate Submissions
//
// Schema saves, record submits and per-field suggestion requests each pass
// through a [BusyGate]. A second request for the same control from the same
// client fails immediately with REQ001 while the first is in flight.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - SCH001-SCH007: Schema shape errors
//   - VAL001: Record validation failed
//   - SUG001-SUG003: Suggestion errors
//   - STO001-STO004: Store errors
//   - REQ001-REQ003: Request lifecycle errors
//   - EXP001: Nothing to export
package core
