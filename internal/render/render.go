package render

import (
	"sort"

	"github.com/roach88/kiln/internal/ir"
)

// RenderedQuery is a backend query string plus its named parameters,
// ready for safe execution by a database client. All literal user content
// flows through Params; the SQL references parameters with the backend's
// binding syntax ($name for SurrealQL, :name for SQLite). The one
// exception is the edge type, which is interpolated directly into the
// query text under the assumption that it is a constrained identifier,
// never attacker-controlled free text.
type RenderedQuery struct {
	SQL    string         `json:"sql"`
	Params map[string]any `json:"params"`
}

// QueryRenderer turns GraphIR into a backend-specific RenderedQuery.
//
// Implementations are pure: rendering the same IR twice yields
// byte-identical output, and a renderer never mutates the IR.
type QueryRenderer interface {
	// Name is a stable identifier for diagnostics and registry lookup.
	Name() string

	// Render produces the backend query. IR shapes the backend does not
	// support return a RenderError with ErrCodeUnsupportedPattern, never
	// a malformed query string.
	Render(q *ir.GraphIR) (*RenderedQuery, error)
}

// Registry holds the available backends, keyed by renderer name. Like the
// syntax dispatcher's registry it is built once and read-only afterwards.
type Registry struct {
	renderers map[string]QueryRenderer
}

// NewRegistry builds a registry over the given renderers.
func NewRegistry(renderers ...QueryRenderer) *Registry {
	m := make(map[string]QueryRenderer, len(renderers))
	for _, r := range renderers {
		m[r.Name()] = r
	}
	return &Registry{renderers: m}
}

// DefaultRegistry returns a registry with every built-in backend using
// its default schema.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewSurrealRenderer(),
		NewSqliteRenderer(),
	)
}

// Get returns the renderer registered under name.
func (r *Registry) Get(name string) (QueryRenderer, bool) {
	renderer, ok := r.renderers[name]
	return renderer, ok
}

// Names returns the registered backend names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
