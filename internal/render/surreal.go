package render

import (
	"fmt"
	"strings"

	"github.com/roach88/kiln/internal/ir"
)

// SurrealRenderer renders GraphIR to SurrealQL.
//
// Assumed schema: an entity table keyed by record id with a title field,
// and a relation (edge) table whose `in`/`out` record links carry a
// relation_type field. Table names are configurable so the renderer can
// target differently-named schemas without touching logic.
//
// Supported shapes: plain lookups (by title or all entities, with
// filters) and a single traversal step anchored by title. Multi-hop
// patterns, node-pattern elements and quantified edges return
// UNSUPPORTED_PATTERN.
type SurrealRenderer struct {
	entityTable   string
	relationTable string
}

// NewSurrealRenderer returns a renderer over the default "entities" and
// "relations" tables.
func NewSurrealRenderer() *SurrealRenderer {
	return &SurrealRenderer{entityTable: "entities", relationTable: "relations"}
}

// NewSurrealRendererWithTables returns a renderer targeting custom table
// names. Only the table names change; clause structure is identical.
func NewSurrealRendererWithTables(entityTable, relationTable string) *SurrealRenderer {
	return &SurrealRenderer{entityTable: entityTable, relationTable: relationTable}
}

// Name implements QueryRenderer.
func (r *SurrealRenderer) Name() string {
	return "surrealql"
}

// Render implements QueryRenderer.
func (r *SurrealRenderer) Render(q *ir.GraphIR) (*RenderedQuery, error) {
	params := make(map[string]any)

	if len(q.Pattern.Elements) == 0 {
		sql, err := r.renderLookup(q, params)
		if err != nil {
			return nil, err
		}
		return &RenderedQuery{SQL: sql, Params: params}, nil
	}

	if edge, ok := singleEdge(q.Pattern); ok {
		title, isTitle := q.Source.(ir.ByTitle)
		if !isTitle {
			return nil, unsupportedPattern("surrealql backend requires a title anchor for traversals, got %T", q.Source)
		}
		if edge.Quantifier != nil {
			return nil, unsupportedPattern("variable-length paths are not supported by the surrealql backend")
		}
		sql := r.renderTraversal(edge, title.Title, params)
		return &RenderedQuery{SQL: sql, Params: params}, nil
	}

	return nil, unsupportedPattern("surrealql backend renders at most one traversal step, got pattern with %d elements", len(q.Pattern.Elements))
}

// singleEdge reports whether the pattern is exactly one edge element.
// Node elements are rejected here on purpose: they carry constraints this
// backend does not render, and dropping them would change semantics.
func singleEdge(p ir.GraphPattern) (ir.EdgePattern, bool) {
	if len(p.Elements) != 1 {
		return ir.EdgePattern{}, false
	}
	edge, ok := p.Elements[0].(ir.EdgePattern)
	return edge, ok
}

// renderLookup handles patterns with no traversal.
func (r *SurrealRenderer) renderLookup(q *ir.GraphIR, params map[string]any) (string, error) {
	filterClause := r.renderFilters(q.Filters, params)

	switch src := q.Source.(type) {
	case ir.ByTitle:
		params["title"] = src.Title
		return fmt.Sprintf("SELECT * FROM %s WHERE title = $title%s LIMIT 1", r.entityTable, filterClause), nil
	case ir.All, nil:
		if filterClause == "" {
			return fmt.Sprintf("SELECT * FROM %s", r.entityTable), nil
		}
		// First clause: the continuation "AND" becomes "WHERE".
		return fmt.Sprintf("SELECT * FROM %s WHERE %s", r.entityTable, strings.TrimPrefix(filterClause, " AND ")), nil
	default:
		return "", unsupportedPattern("surrealql backend cannot render a plain lookup for source %T", q.Source)
	}
}

// renderTraversal handles exactly one traversal step from a title anchor.
func (r *SurrealRenderer) renderTraversal(edge ir.EdgePattern, title string, params map[string]any) string {
	params["title"] = title

	edgeType := edge.EdgeType
	if edgeType == "" {
		edgeType = "wikilink"
	}

	outQuery := fmt.Sprintf("SELECT out FROM %s WHERE `in`.title = $title AND relation_type = %q FETCH out", r.relationTable, edgeType)
	inQuery := fmt.Sprintf("SELECT `in` FROM %s WHERE out.title = $title AND relation_type = %q FETCH `in`", r.relationTable, edgeType)

	switch edge.Direction {
	case ir.Out:
		return outQuery
	case ir.In:
		return inQuery
	default:
		// Both and Undirected render identically: the union of out- and
		// in-edges.
		return fmt.Sprintf("array::concat((%s), (%s))", outQuery, inQuery)
	}
}

// renderFilters renders the conjunctive filter block. Each clause joins
// with " AND ", and the whole block carries a leading " AND " so it can
// be appended after an existing WHERE; callers starting a fresh WHERE
// strip that prefix. Parameter names follow the filter index: filter_0,
// filter_1, ...
func (r *SurrealRenderer) renderFilters(filters []ir.Filter, params map[string]any) string {
	if len(filters) == 0 {
		return ""
	}

	parts := make([]string, 0, len(filters))
	for i, f := range filters {
		name := fmt.Sprintf("filter_%d", i)
		switch f.Op {
		case ir.Eq, ir.Ne:
			// Ne renders identically to Eq in this backend, including
			// the null branch.
			if f.Value == nil {
				parts = append(parts, fmt.Sprintf("%s IS NOT NULL", f.Field))
			} else {
				params[name] = f.Value
				parts = append(parts, fmt.Sprintf("%s = $%s", f.Field, name))
			}
		case ir.Contains:
			params[name] = f.Value
			parts = append(parts, fmt.Sprintf("$%s IN %s", name, f.Field))
		case ir.StartsWith:
			if s, ok := f.Value.(string); ok {
				params[name] = s + "%"
				parts = append(parts, fmt.Sprintf("%s LIKE $%s", f.Field, name))
			} else {
				// Non-string prefix match degrades to a no-op clause
				// instead of failing the whole query.
				parts = append(parts, "true")
			}
		case ir.EndsWith:
			if s, ok := f.Value.(string); ok {
				params[name] = "%" + s
				parts = append(parts, fmt.Sprintf("%s LIKE $%s", f.Field, name))
			} else {
				parts = append(parts, "true")
			}
		}
	}

	return " AND " + strings.Join(parts, " AND ")
}
