// Package core provides the business logic for schema-driven data capture.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Field-level validation messages are shown inline next to each input and do
// not go through this table; everything that ends up in a notification does.
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Invalid schema format (missing attributes, bad payload)
//	SCH002 - Label cannot be empty
//	SCH003 - Label produces an empty field name
//	SCH004 - Two fields derive the same name
//	SCH005 - Select field without options
//	SCH006 - Unsupported field type
//	SCH007 - Editor action referenced a field that no longer exists
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - One or more fields failed validation
//
// # Suggestion Errors (SUG001-SUG099)
//
//	SUG001 - Label or type missing from the request
//	SUG002 - Suggest clicked on a draft without a label
//	SUG003 - The suggestion service failed or timed out
//
// # Store Errors (STO001-STO099)
//
//	STO001 - Schema could not be saved
//	STO002 - Record could not be added
//	STO003 - Store unreachable
//	STO004 - Reset is disabled
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Same control already has a request in flight
//	REQ002 - Request was cancelled
//	REQ003 - Request timed out
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Nothing to export
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches.
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are defined
// before general ones. Shape errors come before store errors because the
// store wraps them.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
// target, when set, is matched with errors.Is before any substring search.
type errorPattern struct {
	pattern string
	target  error
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Schema Errors (SCH001-SCH007)
	// =========================================================================
	{
		pattern: "invalid schema format",
		target:  ErrInvalidSchema,
		msg: UserMessage{
			Message: "Invalid schema format.",
			Action:  "Every field needs an id, a name, a label and a supported type",
			Code:    "SCH001",
		},
	},
	{
		pattern: "label cannot be empty",
		target:  ErrEmptyLabel,
		msg: UserMessage{
			Message: "Label cannot be empty.",
			Action:  "Give every field a label before saving",
			Code:    "SCH002",
		},
	},
	{
		pattern: "field name cannot be empty",
		target:  ErrEmptyName,
		msg: UserMessage{
			Message: "A label must contain at least one letter or digit.",
			Action:  "Field names are derived from labels; rename the field",
			Code:    "SCH003",
		},
	},
	{
		pattern: "duplicate field name",
		target:  ErrDuplicateName,
		msg: UserMessage{
			Message: "Two fields would share the same name.",
			Action:  "Rename one of the fields so their labels differ",
			Code:    "SCH004",
		},
	},
	{
		pattern: "select field requires at least one option",
		target:  ErrMissingOptions,
		msg: UserMessage{
			Message: "Select fields need at least one option.",
			Action:  "Enter comma-separated options for the field",
			Code:    "SCH005",
		},
	},
	{
		pattern: "invalid field type",
		target:  ErrUnknownKind,
		msg: UserMessage{
			Message: "Unsupported field type.",
			Action:  "Use text, number, email, date or select",
			Code:    "SCH006",
		},
	},
	{
		pattern: "field index out of range",
		target:  ErrFieldIndex,
		msg: UserMessage{
			Message: "That field no longer exists.",
			Action:  "Reload the editor and try again",
			Code:    "SCH007",
		},
	},

	// =========================================================================
	// Validation Errors (VAL001)
	// =========================================================================
	{
		pattern: "validation failed",
		msg:     validationMessage,
	},

	// =========================================================================
	// Suggestion Errors (SUG001-SUG003)
	// =========================================================================
	{
		pattern: "suggestion input missing",
		target:  ErrSuggestInput,
		msg: UserMessage{
			Message: "Field name and data type are required.",
			Action:  "Provide both a label and a type",
			Code:    "SUG001",
		},
	},
	{
		pattern: "suggestion needs label",
		target:  ErrSuggestNeedLabel,
		msg: UserMessage{
			Message: "Please provide a field label first.",
			Action:  "Type a label, then ask for suggestions",
			Code:    "SUG002",
		},
	},
	{
		pattern: "suggestion service failed",
		target:  ErrSuggestFailed,
		msg: UserMessage{
			Message: "Failed to get AI suggestions.",
			Action:  "Enter rules manually or try again later",
			Code:    "SUG003",
		},
	},

	// =========================================================================
	// Export Errors (EXP001)
	// =========================================================================
	{
		pattern: "nothing to export",
		target:  ErrNothingToExport,
		msg: UserMessage{
			Message: "There are no rows to export.",
			Action:  "Clear the search or add records first",
			Code:    "EXP001",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ003)
	// =========================================================================
	{
		pattern: "request already in progress",
		target:  ErrBusy,
		msg: UserMessage{
			Message: "This request is already in progress.",
			Action:  "Wait for it to finish",
			Code:    "REQ001",
		},
	},

	// =========================================================================
	// Store Errors (STO001-STO004)
	// These wrap the underlying cause, so they come after shape errors.
	// =========================================================================
	{
		pattern: "save schema failed",
		target:  ErrSaveSchema,
		msg: UserMessage{
			Message: "Failed to save schema.",
			Action:  "Please try again",
			Code:    "STO001",
		},
	},
	{
		pattern: "add data failed",
		target:  ErrAddData,
		msg: UserMessage{
			Message: "Failed to add data.",
			Action:  "Please try again",
			Code:    "STO002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the data store",
			Action:  "Please try again in a few moments",
			Code:    "STO003",
		},
	},
	{
		pattern: "reset disabled",
		target:  ErrResetDisabled,
		msg: UserMessage{
			Message: "Resetting the store is disabled",
			Action:  "Set STORE_ALLOW_RESET=true to enable it",
			Code:    "STO004",
		},
	},
	{
		pattern: "context canceled",
		target:  context.Canceled,
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context deadline exceeded",
		target:  context.DeadlineExceeded,
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		target:  ErrRateLimited,
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// validationMessage is returned for FieldErrors (VAL001).
var validationMessage = UserMessage{
	Message: "Please correct the highlighted fields.",
	Action:  "Each invalid field shows what is wrong with it",
	Code:    "VAL001",
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Known sentinels and FieldErrors are resolved through the error chain
// first, in table order. Only errors that match none of them fall back to a
// case-insensitive search of the error text, since that text may carry user
// input such as labels or option values. If nothing matches, a generic
// fallback message with code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var fieldErrs FieldErrors
	if errors.As(err, &fieldErrs) {
		return validationMessage
	}
	for _, ep := range errorPatterns {
		if ep.target != nil && errors.Is(err, ep.target) {
			return ep.msg
		}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with its user-friendly message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
