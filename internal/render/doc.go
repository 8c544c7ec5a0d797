// Package render translates GraphIR into backend query strings.
//
// Each backend implements QueryRenderer and produces a RenderedQuery:
// a SQL (or SurrealQL) string plus a parameter map. Values always
// travel through parameters, never string interpolation, with one
// deliberate exception: edge type names, which the front-ends constrain
// to identifier characters.
//
// Renderers are deterministic. The same GraphIR always produces the
// same query text and the same parameter names, so compiled output can
// be snapshot-tested and cached.
package render
