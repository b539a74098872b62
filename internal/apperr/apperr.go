// Package apperr is the error taxonomy this core and its HTTP layer
// share (spec §7): Storage, InvalidQuery, Internal. Grounded on
// pkg/errors/errors.go's AppError/Is*/Wrap pattern, renamed to the
// three kinds the spec names instead of the teacher's
// validation/not-found/internal split.
package apperr

import "fmt"

// Kind categorizes an AppError (spec §7).
type Kind string

const (
	// Storage wraps a failure from the underlying document/term store.
	Storage Kind = "STORAGE"
	// InvalidQuery covers bad index uids, unknown indexes, and
	// sortable/filterable/facet misuse.
	InvalidQuery Kind = "INVALID_QUERY"
	// Internal marks an assertion failure — a programmer error that
	// should never arise from valid outer-pipeline use.
	Internal Kind = "INTERNAL"
)

// Code is one of the HTTP error codes spec §6.1 names.
type Code string

const (
	CodeMissingIndexUID Code = "missing_index_uid"
	CodeInvalidIndexUID Code = "invalid_index_uid"
	CodeIndexNotFound   Code = "index_not_found"
	CodeInvalidFacets   Code = "invalid_search_facets"
	CodeInvalidFilter   Code = "invalid_search_filter"
	CodeInvalidSort     Code = "invalid_search_sort"
	CodeBadRequest      Code = "bad_request"
	CodeMissingField    Code = "missing_field"
)

// AppError is the error type carried through the pipeline and mapped
// to the HTTP error envelope at the boundary (spec §7: "Storage and
// InvalidQuery propagate up through the pipeline; the outer HTTP layer
// maps them to the error envelope").
type AppError struct {
	Kind    Kind
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// NewInvalidQuery creates an InvalidQuery error carrying an HTTP error
// code (spec §6.1).
func NewInvalidQuery(code Code, message string) error {
	return &AppError{Kind: InvalidQuery, Code: code, Message: message}
}

// NewStorage wraps an underlying storage failure.
func NewStorage(message string, err error) error {
	return &AppError{Kind: Storage, Code: CodeBadRequest, Message: message, Err: err}
}

// Wrap adds context to err, preserving its Kind/Code if it is already
// an AppError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Kind:    appErr.Kind,
			Code:    appErr.Code,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
		}
	}
	return &AppError{Kind: Storage, Code: CodeBadRequest, Message: message, Err: err}
}

// IsInvalidQuery reports whether err is an InvalidQuery AppError.
func IsInvalidQuery(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Kind == InvalidQuery
}

// IsStorage reports whether err is a Storage AppError.
func IsStorage(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Kind == Storage
}

// AsAppError unwraps err to an *AppError, if it is one.
func AsAppError(err error) (*AppError, bool) {
	appErr, ok := err.(*AppError)
	return appErr, ok
}
