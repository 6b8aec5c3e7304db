package core

import "errors"

// Schema shape errors. Wrapped with the offending field for context.
var (
	ErrInvalidSchema  = errors.New("invalid schema format")
	ErrEmptyLabel     = errors.New("label cannot be empty")
	ErrEmptyName      = errors.New("field name cannot be empty")
	ErrDuplicateName  = errors.New("duplicate field name")
	ErrMissingOptions = errors.New("select field requires at least one option")
	ErrUnknownKind    = errors.New("invalid field type")
)

// Request lifecycle and collaborator errors.
var (
	ErrBusy             = errors.New("request already in progress")
	ErrNothingToExport  = errors.New("nothing to export")
	ErrSuggestInput     = errors.New("suggestion input missing")
	ErrSuggestNeedLabel = errors.New("suggestion needs label")
	ErrSuggestFailed    = errors.New("suggestion service failed")
	ErrSaveSchema       = errors.New("save schema failed")
	ErrAddData          = errors.New("add data failed")
	ErrResetDisabled    = errors.New("reset disabled")
	ErrFieldIndex       = errors.New("field index out of range")
	ErrRateLimited      = errors.New("rate limit exceeded")
)
