package render

import (
	"errors"
	"fmt"
)

// RenderErrorCode categorizes rendering failures.
type RenderErrorCode string

const (
	// ErrCodeUnsupportedPattern indicates the IR shape is well-formed
	// but outside what this backend renders (e.g. multi-hop traversal in
	// the SurrealQL backend). This is a contract, not an omission: the
	// renderer refuses rather than emitting a guess.
	ErrCodeUnsupportedPattern RenderErrorCode = "UNSUPPORTED_PATTERN"

	// ErrCodeMissingSource indicates a query shape that requires an
	// explicit anchor (e.g. a recursive traversal) was given none.
	ErrCodeMissingSource RenderErrorCode = "MISSING_SOURCE"

	// ErrCodeUnsupportedFilter indicates a filter value whose type the
	// backend cannot bind for the requested operator.
	ErrCodeUnsupportedFilter RenderErrorCode = "UNSUPPORTED_FILTER"
)

// RenderError reports that a renderer could not translate a well-formed
// GraphIR. Distinct from a parse failure: the IR itself is valid.
type RenderError struct {
	Code    RenderErrorCode
	Message string
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnsupportedPattern reports whether err is an UNSUPPORTED_PATTERN
// render error. Uses errors.As to handle wrapped errors.
func IsUnsupportedPattern(err error) bool {
	var re *RenderError
	return errors.As(err, &re) && re.Code == ErrCodeUnsupportedPattern
}

func unsupportedPattern(format string, args ...any) *RenderError {
	return &RenderError{Code: ErrCodeUnsupportedPattern, Message: fmt.Sprintf(format, args...)}
}

func missingSource(format string, args ...any) *RenderError {
	return &RenderError{Code: ErrCodeMissingSource, Message: fmt.Sprintf(format, args...)}
}

func unsupportedFilter(format string, args ...any) *RenderError {
	return &RenderError{Code: ErrCodeUnsupportedFilter, Message: fmt.Sprintf(format, args...)}
}
