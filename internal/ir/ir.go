package ir

// GraphIR is the syntax-independent representation of a graph query.
//
// It is produced by a syntax front-end and consumed by a backend renderer.
// The zero value is a valid query meaning "every entity, no traversal".
type GraphIR struct {
	// Source is where traversal begins. Nil is equivalent to All.
	Source QuerySource

	// Pattern is the ordered sequence of traversal steps from Source.
	// An empty pattern means a plain lookup or listing.
	Pattern GraphPattern

	// Filters are conjunctive (AND) predicates over the result set.
	// Order is preserved; it determines generated parameter names
	// (filter_0, filter_1, ...) but not semantics.
	Filters []Filter

	// PostFilter is a verbatim expression in the front-end's own
	// post-processing language (e.g. jaq "select(.tags)"). It is opaque
	// to the compiler and handed to an external evaluator after query
	// execution. Empty means none.
	PostFilter string

	// Projections select output columns. Empty means "everything"
	// (backend-dependent default).
	Projections []Projection
}

// GraphPattern is an ordered sequence of traversal steps.
type GraphPattern struct {
	Elements []PatternElement
}

// QuerySource identifies the anchor of a traversal.
//
// Sealed interface: only ByTitle, ByPath, ByID and All implement it.
type QuerySource interface {
	querySource()
}

// ByTitle anchors the query at the entity with the given exact title.
type ByTitle struct {
	Title string
}

func (ByTitle) querySource() {}

// ByPath anchors the query at the entity with the given vault path.
type ByPath struct {
	Path string
}

func (ByPath) querySource() {}

// ByID anchors the query at the entity with the given id.
type ByID struct {
	ID string
}

func (ByID) querySource() {}

// All anchors nowhere: the query ranges over every entity.
type All struct{}

func (All) querySource() {}

// PatternElement is one step of a graph pattern.
//
// Sealed interface: only NodePattern and EdgePattern implement it.
// Renderers must type-switch exhaustively and explicitly reject shapes
// they do not support.
type PatternElement interface {
	patternElement()
}

// NodePattern matches an entity, optionally binding it to an alias and
// constraining it by label and property values.
type NodePattern struct {
	Alias      string // "" = anonymous
	Label      string // "" = any label
	Properties []PropertyMatch
}

func (NodePattern) patternElement() {}

// PropertyMatch constrains one property of a node pattern.
type PropertyMatch struct {
	Key   string
	Op    MatchOp
	Value any
}

// EdgePattern matches a typed, directed relation.
type EdgePattern struct {
	Alias      string // "" = anonymous
	EdgeType   string // relation name, e.g. "wikilink"; "" = any type
	Direction  EdgeDirection
	Quantifier *Quantifier // nil = exactly one hop
}

func (EdgePattern) patternElement() {}

// EdgeDirection orients an edge pattern relative to the preceding node.
type EdgeDirection int

const (
	// Out matches edges leaving the anchor.
	Out EdgeDirection = iota
	// In matches edges arriving at the anchor.
	In
	// Both matches either direction.
	Both
	// Undirected means the pattern has no inherent direction. Current
	// renderers treat it identically to Both.
	Undirected
)

// String returns the canonical lowercase name of the direction.
func (d EdgeDirection) String() string {
	switch d {
	case Out:
		return "out"
	case In:
		return "in"
	case Both:
		return "both"
	case Undirected:
		return "undirected"
	default:
		return "unknown"
	}
}

// Quantifier bounds a variable-length path. Max < 0 means unbounded.
type Quantifier struct {
	Min int
	Max int
}

// ZeroOrMore matches any number of hops, including zero.
func ZeroOrMore() Quantifier { return Quantifier{Min: 0, Max: -1} }

// OneOrMore matches at least one hop.
func OneOrMore() Quantifier { return Quantifier{Min: 1, Max: -1} }

// Exactly matches precisely n hops.
func Exactly(n int) Quantifier { return Quantifier{Min: n, Max: n} }

// Between matches between min and max hops inclusive; max < 0 leaves the
// upper bound open.
func Between(min, max int) Quantifier { return Quantifier{Min: min, Max: max} }

// Unbounded reports whether the quantifier has no upper bound.
func (q Quantifier) Unbounded() bool { return q.Max < 0 }

// Filter is one conjunctive predicate over the result set.
type Filter struct {
	Field string
	Op    MatchOp
	Value any // decoded JSON value; nil represents JSON null
}

// MatchOp is the comparison operator of a Filter or PropertyMatch.
type MatchOp int

const (
	// Eq matches when the field equals the value.
	Eq MatchOp = iota
	// Ne matches when the field differs from the value.
	Ne
	// Contains matches when the value is an element of a collection
	// field (or a substring, backend-dependent).
	Contains
	// StartsWith matches a string prefix.
	StartsWith
	// EndsWith matches a string suffix.
	EndsWith
)

// String returns the canonical name of the operator.
func (op MatchOp) String() string {
	switch op {
	case Eq:
		return "eq"
	case Ne:
		return "ne"
	case Contains:
		return "contains"
	case StartsWith:
		return "starts_with"
	case EndsWith:
		return "ends_with"
	default:
		return "unknown"
	}
}

// Projection selects one output column, optionally renamed.
type Projection struct {
	Field string
	Alias string // "" = no alias
}

// Edges returns the edge elements of the pattern, in order.
func (p GraphPattern) Edges() []EdgePattern {
	var edges []EdgePattern
	for _, el := range p.Elements {
		if e, ok := el.(EdgePattern); ok {
			edges = append(edges, e)
		}
	}
	return edges
}

// HasNodes reports whether the pattern contains any node elements.
// Front-ends differ here: the jaq syntax emits edge-only patterns, the
// cypher syntax interleaves nodes and edges.
func (p GraphPattern) HasNodes() bool {
	for _, el := range p.Elements {
		if _, ok := el.(NodePattern); ok {
			return true
		}
	}
	return false
}
