package syntax

import (
	"slices"
	"sort"
	"strings"

	"github.com/roach88/kiln/internal/ir"
)

// Dispatcher routes a raw query string to the first front-end that
// recognizes it.
//
// The registry is sorted once at construction (stable, descending by
// priority; ties keep registration order) and never mutated afterwards,
// so a Dispatcher is safe for concurrent use without synchronization.
type Dispatcher struct {
	syntaxes []QuerySyntax
}

// NewDispatcher builds a dispatcher over the given front-ends.
func NewDispatcher(syntaxes ...QuerySyntax) *Dispatcher {
	ordered := slices.Clone(syntaxes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() > ordered[j].Priority()
	})
	return &Dispatcher{syntaxes: ordered}
}

// Default returns a dispatcher with every built-in front-end registered.
func Default() *Dispatcher {
	return NewDispatcher(
		NewCypherSyntax(),
		NewJaqSyntax(),
	)
}

// Syntaxes returns the registered front-ends in dispatch order.
func (d *Dispatcher) Syntaxes() []QuerySyntax {
	return slices.Clone(d.syntaxes)
}

// Compile parses input with the first front-end whose CanHandle accepts
// it. That front-end's result, success or failure, is final: the
// dispatcher never falls back to a second front-end after a matching
// front-end's Parse fails, since retrying a syntax error against a
// different grammar only obscures the real diagnostic.
func (d *Dispatcher) Compile(input string) (*ir.GraphIR, error) {
	trimmed := strings.TrimSpace(input)
	for _, s := range d.syntaxes {
		if s.CanHandle(trimmed) {
			return s.Parse(trimmed)
		}
	}
	return nil, &NoSyntaxError{Input: trimmed}
}
