package syntax

import (
	"fmt"

	"github.com/roach88/kiln/internal/ir"
)

// QuerySyntax is the contract every query front-end implements.
//
// Implementations are stateless values: CanHandle and Parse are pure
// functions of their input, so a single instance is safe to share across
// goroutines.
type QuerySyntax interface {
	// Name is a stable identifier for diagnostics ("jaq", "cypher").
	Name() string

	// CanHandle is a cheap syntactic sniff, typically an anchored regex
	// over the trimmed input. It must not allocate heavily and must not
	// panic. False negatives are acceptable; false positives mis-route
	// the query and must be avoided.
	CanHandle(input string) bool

	// Parse fully parses the input into GraphIR. It is only called
	// after CanHandle returned true for the same input.
	Parse(input string) (*ir.GraphIR, error)

	// Priority orders front-ends in the dispatcher: higher values are
	// tried first. A universal fallback must declare the lowest
	// priority so more specific syntaxes get first refusal.
	Priority() uint8
}

// ParseError reports that a front-end accepted an input (CanHandle was
// true) but could not fully interpret it.
type ParseError struct {
	// Syntax names the front-end that produced the error.
	Syntax string

	// Message is a human-readable description of what went wrong.
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Syntax, e.Message)
}

// NoSyntaxError reports that no registered front-end recognized the input.
type NoSyntaxError struct {
	Input string
}

// Error implements the error interface.
func (e *NoSyntaxError) Error() string {
	return "no registered syntax recognized this query"
}
