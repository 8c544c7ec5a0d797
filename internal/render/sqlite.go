package render

import (
	"fmt"
	"strings"

	"github.com/roach88/kiln/internal/ir"
)

// SqliteRenderer renders GraphIR to SQLite SQL with :name parameter
// binding.
//
// Default schema:
//
//	CREATE TABLE notes (
//	    path TEXT PRIMARY KEY,
//	    title TEXT,
//	    content TEXT
//	);
//
//	CREATE TABLE edges (
//	    source TEXT NOT NULL,
//	    target TEXT NOT NULL,
//	    type TEXT NOT NULL,
//	    PRIMARY KEY (source, target, type)
//	);
//
// Fixed-length patterns render as JOINs; variable-length paths render as
// a recursive CTE with cycle prevention. Table and column names are
// configurable via NewSqliteRendererWithSchema.
type SqliteRenderer struct {
	NotesTable   string
	EdgesTable   string
	SourceColumn string
	TargetColumn string
	TypeColumn   string
}

// NewSqliteRenderer returns a renderer over the default notes/edges
// schema.
func NewSqliteRenderer() *SqliteRenderer {
	return NewSqliteRendererWithSchema("notes", "edges", "source", "target", "type")
}

// NewSqliteRendererWithTables returns a renderer with custom table names
// and default column names.
func NewSqliteRendererWithTables(notes, edges string) *SqliteRenderer {
	return NewSqliteRendererWithSchema(notes, edges, "source", "target", "type")
}

// NewSqliteRendererWithSchema returns a renderer with fully custom table
// and column names.
func NewSqliteRendererWithSchema(notesTable, edgesTable, sourceColumn, targetColumn, typeColumn string) *SqliteRenderer {
	return &SqliteRenderer{
		NotesTable:   notesTable,
		EdgesTable:   edgesTable,
		SourceColumn: sourceColumn,
		TargetColumn: targetColumn,
		TypeColumn:   typeColumn,
	}
}

// NewSqliteRendererEAV returns a renderer for the entity-attribute-value
// schema used by the kiln ingestion pipeline.
func NewSqliteRendererEAV() *SqliteRenderer {
	return NewSqliteRendererWithSchema("entities", "relations", "from_entity_id", "to_entity_id", "relation_type")
}

// Name implements QueryRenderer.
func (r *SqliteRenderer) Name() string {
	return "sqlite"
}

// Render implements QueryRenderer.
func (r *SqliteRenderer) Render(q *ir.GraphIR) (*RenderedQuery, error) {
	params := make(map[string]any)

	if len(q.Pattern.Elements) == 0 {
		sql, err := r.renderLookup(q, params)
		if err != nil {
			return nil, err
		}
		return &RenderedQuery{SQL: sql, Params: params}, nil
	}

	var sql string
	var err error
	if needsRecursion(q) {
		sql, err = r.renderRecursive(q, params)
	} else {
		sql, err = r.renderSimple(q, params)
	}
	if err != nil {
		return nil, err
	}
	return &RenderedQuery{SQL: sql, Params: params}, nil
}

// needsRecursion reports whether any edge carries a quantifier.
func needsRecursion(q *ir.GraphIR) bool {
	for _, el := range q.Pattern.Elements {
		if edge, ok := el.(ir.EdgePattern); ok && edge.Quantifier != nil {
			return true
		}
	}
	return false
}

// renderLookup handles patterns with no traversal.
func (r *SqliteRenderer) renderLookup(q *ir.GraphIR, params map[string]any) (string, error) {
	var conditions []string

	switch src := q.Source.(type) {
	case ir.ByTitle:
		params["title"] = src.Title
		conditions = append(conditions, "title = :title")
	case ir.ByPath:
		params["path"] = src.Path
		conditions = append(conditions, "path = :path")
	case ir.ByID:
		params["id"] = src.ID
		conditions = append(conditions, "path = :id")
	case ir.All, nil:
	default:
		return "", unsupportedPattern("sqlite backend cannot render a plain lookup for source %T", q.Source)
	}

	for i, f := range q.Filters {
		clause, err := r.renderFilter(f, i, params)
		if err != nil {
			return "", err
		}
		conditions = append(conditions, clause)
	}

	selectFields := "*"
	if len(q.Projections) > 0 {
		selectFields = renderProjections(q.Projections)
	}

	if len(conditions) == 0 {
		return fmt.Sprintf("SELECT %s FROM %s", selectFields, r.NotesTable), nil
	}
	return fmt.Sprintf("SELECT %s FROM %s\nWHERE %s", selectFields, r.NotesTable, strings.Join(conditions, "\n  AND ")), nil
}

// renderSimple handles fixed-length patterns as JOINs.
//
// Edge-only patterns (the jaq front-end emits no node elements) are
// normalized first: implicit anonymous nodes are threaded between the
// edges so `outlinks("X")` renders the same JOINs as the equivalent
// MATCH pattern, and the final hop's node is selected.
func (r *SqliteRenderer) renderSimple(q *ir.GraphIR, params map[string]any) (string, error) {
	elements, synthesized := normalizePattern(q.Pattern)

	var (
		joins       []string
		conditions  []string
		nodeAliases []string
		edgeIdx     int
	)

	for _, element := range elements {
		switch el := element.(type) {
		case ir.NodePattern:
			alias := el.Alias
			if alias == "" {
				alias = fmt.Sprintf("n%d", len(nodeAliases))
			}
			nodeAliases = append(nodeAliases, alias)

			for _, prop := range el.Properties {
				paramName := fmt.Sprintf("prop_%s_%s", alias, prop.Key)
				params[paramName] = prop.Value
				conditions = append(conditions, fmt.Sprintf("%s.%s = :%s", alias, prop.Key, paramName))
			}

		case ir.EdgePattern:
			if len(nodeAliases) == 0 {
				return "", unsupportedPattern("pattern mixes nodes and edges but starts with an edge")
			}
			edgeAlias := fmt.Sprintf("e%d", edgeIdx)
			prevNode := nodeAliases[len(nodeAliases)-1]

			var join string
			switch el.Direction {
			case ir.Out:
				join = fmt.Sprintf("JOIN %s %s ON %s.%s = %s.path",
					r.EdgesTable, edgeAlias, edgeAlias, r.SourceColumn, prevNode)
			case ir.In:
				join = fmt.Sprintf("JOIN %s %s ON %s.%s = %s.path",
					r.EdgesTable, edgeAlias, edgeAlias, r.TargetColumn, prevNode)
			default: // Both and Undirected render identically
				join = fmt.Sprintf("JOIN %s %s ON (%s.%s = %s.path OR %s.%s = %s.path)",
					r.EdgesTable, edgeAlias,
					edgeAlias, r.SourceColumn, prevNode,
					edgeAlias, r.TargetColumn, prevNode)
			}
			joins = append(joins, join)

			if el.EdgeType != "" {
				paramName := fmt.Sprintf("edge_type_%d", edgeIdx)
				params[paramName] = el.EdgeType
				conditions = append(conditions, fmt.Sprintf("%s.%s = :%s", edgeAlias, r.TypeColumn, paramName))
			}

			edgeIdx++
		}
	}

	switch src := q.Source.(type) {
	case ir.ByTitle:
		params["source_title"] = src.Title
		conditions = append(conditions, fmt.Sprintf("%s.title = :source_title", nodeAliases[0]))
	case ir.ByPath:
		params["source_path"] = src.Path
		conditions = append(conditions, fmt.Sprintf("%s.path = :source_path", nodeAliases[0]))
	case ir.ByID:
		params["source_id"] = src.ID
		conditions = append(conditions, fmt.Sprintf("%s.path = :source_id", nodeAliases[0]))
	}

	for i, f := range q.Filters {
		clause, err := r.renderFilter(f, i, params)
		if err != nil {
			return "", err
		}
		conditions = append(conditions, clause)
	}

	// The jaq shape selects the traversal targets; cypher patterns keep
	// the original anchor-selection unless a RETURN clause projects.
	resultAlias := nodeAliases[0]
	if synthesized {
		resultAlias = nodeAliases[len(nodeAliases)-1]
	}
	selectFields := fmt.Sprintf("%s.*", resultAlias)
	if len(q.Projections) > 0 {
		selectFields = renderProjections(q.Projections)
	}

	fromClause := r.buildFromClause(nodeAliases, joins)

	sql := fmt.Sprintf("SELECT %s\nFROM %s", selectFields, fromClause)
	if len(conditions) > 0 {
		sql += fmt.Sprintf("\nWHERE %s", strings.Join(conditions, "\n  AND "))
	}
	return sql, nil
}

// normalizePattern threads implicit nodes through edge-only patterns.
// Patterns that already contain nodes pass through untouched.
func normalizePattern(p ir.GraphPattern) ([]ir.PatternElement, bool) {
	if p.HasNodes() {
		return p.Elements, false
	}
	elements := make([]ir.PatternElement, 0, 2*len(p.Elements)+1)
	elements = append(elements, ir.NodePattern{})
	for _, el := range p.Elements {
		elements = append(elements, el, ir.NodePattern{})
	}
	return elements, true
}

// buildFromClause assembles the FROM clause, joining each edge and the
// node table for the hop it lands on.
func (r *SqliteRenderer) buildFromClause(nodeAliases []string, joins []string) string {
	if len(nodeAliases) == 0 {
		return r.NotesTable
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", r.NotesTable, nodeAliases[0])

	for i, join := range joins {
		b.WriteByte('\n')
		b.WriteString(join)

		if i+1 < len(nodeAliases) {
			nextAlias := nodeAliases[i+1]
			edgeAlias := fmt.Sprintf("e%d", i)
			fmt.Fprintf(&b,
				"\nJOIN %s %s ON %s.path = CASE WHEN %s.%s = %s.path THEN %s.%s ELSE %s.%s END",
				r.NotesTable, nextAlias, nextAlias,
				edgeAlias, r.SourceColumn, nodeAliases[i],
				edgeAlias, r.TargetColumn,
				edgeAlias, r.SourceColumn)
		}
	}
	return b.String()
}

// renderRecursive handles variable-length paths with a recursive CTE.
func (r *SqliteRenderer) renderRecursive(q *ir.GraphIR, params map[string]any) (string, error) {
	minDepth, maxDepth := pathBounds(q)
	edgeType, direction := firstEdgeTypeAndDirection(q)

	var sourcePath string
	switch src := q.Source.(type) {
	case ir.ByPath:
		params["source"] = src.Path
		sourcePath = ":source"
	case ir.ByTitle:
		params["source"] = src.Title
		sourcePath = fmt.Sprintf("(SELECT path FROM %s WHERE title = :source)", r.NotesTable)
	default:
		return "", missingSource("recursive traversal requires a path or title anchor, got %T", q.Source)
	}

	var directionCondition, nextNode string
	switch direction {
	case ir.Out:
		directionCondition = fmt.Sprintf("e.%s = t.path", r.SourceColumn)
		nextNode = fmt.Sprintf("e.%s", r.TargetColumn)
	case ir.In:
		directionCondition = fmt.Sprintf("e.%s = t.path", r.TargetColumn)
		nextNode = fmt.Sprintf("e.%s", r.SourceColumn)
	default: // Both and Undirected
		directionCondition = fmt.Sprintf("(e.%s = t.path OR e.%s = t.path)", r.SourceColumn, r.TargetColumn)
		nextNode = fmt.Sprintf("CASE WHEN e.%s = t.path THEN e.%s ELSE e.%s END", r.SourceColumn, r.TargetColumn, r.SourceColumn)
	}

	var edgeFilter string
	if edgeType != "" {
		params["edge_type"] = edgeType
		edgeFilter = fmt.Sprintf(" AND e.%s = :edge_type", r.TypeColumn)
	}

	var depthCheck string
	if maxDepth >= 0 {
		depthCheck = fmt.Sprintf("\n        AND t.depth < %d", maxDepth)
	}

	// The traversal results surface under the pattern's final node
	// alias, so RETURN projections against the far end resolve.
	targetAlias := "n"
	for _, el := range q.Pattern.Elements {
		if node, ok := el.(ir.NodePattern); ok && node.Alias != "" {
			targetAlias = node.Alias
		}
	}

	selectFields := fmt.Sprintf("%s.*", targetAlias)
	if len(q.Projections) > 0 {
		selectFields = renderProjections(q.Projections)
	}

	// Zero-hop matches include the source itself; any positive minimum
	// depth excludes it since the caller asked for actual traversals.
	var excludeSource string
	if minDepth > 0 {
		excludeSource = fmt.Sprintf("\n  AND t.path != %s", sourcePath)
	}

	sql := fmt.Sprintf(`WITH RECURSIVE traverse(path, depth, visited) AS (
    SELECT %s, 0, %s

    UNION ALL

    SELECT
        %s,
        t.depth + 1,
        t.visited || ',' || %s
    FROM traverse t
    JOIN %s e ON %s%s
    WHERE instr(',' || t.visited || ',', ',' || %s || ',') = 0%s
)
SELECT DISTINCT %s
FROM %s %s
JOIN traverse t ON %s.path = t.path
WHERE t.depth >= %d%s`,
		sourcePath, sourcePath,
		nextNode, nextNode,
		r.EdgesTable, directionCondition, edgeFilter,
		nextNode,
		depthCheck,
		selectFields,
		r.NotesTable, targetAlias,
		targetAlias,
		minDepth, excludeSource)

	return sql, nil
}

// pathBounds extracts the quantifier bounds of the first quantified
// edge. Max -1 means unbounded.
func pathBounds(q *ir.GraphIR) (int, int) {
	for _, el := range q.Pattern.Elements {
		if edge, ok := el.(ir.EdgePattern); ok && edge.Quantifier != nil {
			return edge.Quantifier.Min, edge.Quantifier.Max
		}
	}
	return 1, 1
}

// firstEdgeTypeAndDirection returns the type and direction of the first
// edge in the pattern.
func firstEdgeTypeAndDirection(q *ir.GraphIR) (string, ir.EdgeDirection) {
	for _, el := range q.Pattern.Elements {
		if edge, ok := el.(ir.EdgePattern); ok {
			return edge.EdgeType, edge.Direction
		}
	}
	return "", ir.Out
}

// renderFilter renders one filter clause with a :filter_{i} parameter.
// Unlike the SurrealQL backend, string operators here are strict: a
// non-string value for Contains/StartsWith/EndsWith is an error.
func (r *SqliteRenderer) renderFilter(f ir.Filter, index int, params map[string]any) (string, error) {
	paramName := fmt.Sprintf("filter_%d", index)

	switch f.Op {
	case ir.Eq:
		if f.Value == nil {
			return fmt.Sprintf("%s IS NULL", f.Field), nil
		}
		params[paramName] = f.Value
		return fmt.Sprintf("%s = :%s", f.Field, paramName), nil

	case ir.Ne:
		if f.Value == nil {
			return fmt.Sprintf("%s IS NOT NULL", f.Field), nil
		}
		params[paramName] = f.Value
		return fmt.Sprintf("%s != :%s", f.Field, paramName), nil

	case ir.Contains:
		s, ok := f.Value.(string)
		if !ok {
			return "", unsupportedFilter("CONTAINS requires a string value, got %T", f.Value)
		}
		params[paramName] = "%" + escapeLikePattern(s) + "%"
		return fmt.Sprintf(`%s LIKE :%s ESCAPE '\'`, f.Field, paramName), nil

	case ir.StartsWith:
		s, ok := f.Value.(string)
		if !ok {
			return "", unsupportedFilter("STARTS WITH requires a string value, got %T", f.Value)
		}
		params[paramName] = escapeLikePattern(s) + "%"
		return fmt.Sprintf(`%s LIKE :%s ESCAPE '\'`, f.Field, paramName), nil

	case ir.EndsWith:
		s, ok := f.Value.(string)
		if !ok {
			return "", unsupportedFilter("ENDS WITH requires a string value, got %T", f.Value)
		}
		params[paramName] = "%" + escapeLikePattern(s)
		return fmt.Sprintf(`%s LIKE :%s ESCAPE '\'`, f.Field, paramName), nil

	default:
		return "", unsupportedFilter("unknown match operator %v", f.Op)
	}
}

// escapeLikePattern escapes SQL LIKE metacharacters in a user value.
func escapeLikePattern(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func renderProjections(projections []ir.Projection) string {
	parts := make([]string, len(projections))
	for i, p := range projections {
		if p.Alias != "" {
			parts[i] = fmt.Sprintf("%s AS %s", p.Field, p.Alias)
		} else {
			parts[i] = p.Field
		}
	}
	return strings.Join(parts, ", ")
}
