// Package ir defines the graph query intermediate representation (GraphIR).
//
// GraphIR is the abstraction boundary between query front-ends and backend
// renderers. Every accepted textual syntax (jaq-style, Cypher-style) parses
// into the same GraphIR, and every backend (SurrealQL, SQLite) renders from
// it:
//
//	[jaq syntax]    ─┐              ┌─> [SurrealQL renderer]
//	                 ├─> [GraphIR] ─┤
//	[cypher syntax] ─┘              └─> [SQLite renderer]
//
// A GraphIR value is plain data: no behavior, no back-references, no shared
// mutable state. Once a front-end returns it, it is treated as immutable by
// every consumer, so values can be rendered concurrently without locking.
//
// SEALED SUM TYPES:
//
// QuerySource and PatternElement are sealed interfaces using the marker
// method pattern. Only types in this package implement them, which lets
// backend renderers type-switch exhaustively: an unhandled variant is an
// explicit rejection in the renderer, never a silent fall-through.
//
// Filter values are ordinary decoded JSON (string, int64, float64, bool,
// nil, []any, map[string]any). Renderers never interpolate them into query
// text; they flow through the RenderedQuery parameter map.
package ir
