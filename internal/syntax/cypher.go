package syntax

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/roach88/kiln/internal/ir"
)

// Fast prefix check for the Cypher MATCH keyword.
// CREATE/DELETE/MERGE are not supported.
var cypherPrefixRe = regexp.MustCompile(`(?i)^\s*MATCH\b`)

// CypherSyntax parses Cypher-style MATCH queries:
//
//	MATCH (a:Note {title: 'Index'})-[:wikilink*1..3]->(b)
//	WHERE b.folder = 'Projects' AND b.status != 'draft'
//	RETURN b.title AS name
//
// Supported: node patterns with alias/label/properties, the four edge
// directions, path quantifiers (*, +, *1..3, *..5, *2..), WHERE with
// = != <> STARTS WITH ENDS WITH CONTAINS chained by AND, RETURN
// projections with AS aliases, and $name parameter placeholders (carried
// through as "$name" string values).
type CypherSyntax struct {
	parser *participle.Parser[cypherQuery]
}

var cypherLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(MATCH|WHERE|AND|RETURN|AS|STARTS|ENDS|WITH|CONTAINS|TRUE|FALSE|NULL)\b`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
	{Name: "String", Pattern: `'[^']*'|"[^"]*"`},
	{Name: "Param", Pattern: `\$[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "DotDot", Pattern: `\.\.`},
	{Name: "Punct", Pattern: `[-\[\]<>(){}:,.*+=!]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// NewCypherSyntax returns the cypher front-end.
func NewCypherSyntax() *CypherSyntax {
	return &CypherSyntax{
		parser: participle.MustBuild[cypherQuery](
			participle.Lexer(cypherLexer),
			participle.Elide("Whitespace"),
			participle.CaseInsensitive("Keyword"),
			participle.UseLookahead(participle.MaxLookahead),
		),
	}
}

// Name implements QuerySyntax.
func (s *CypherSyntax) Name() string {
	return "cypher"
}

// CanHandle implements QuerySyntax.
func (s *CypherSyntax) CanHandle(input string) bool {
	return cypherPrefixRe.MatchString(input)
}

// Priority implements QuerySyntax. Higher than the jaq fallback.
func (s *CypherSyntax) Priority() uint8 {
	return 55
}

// Parse implements QuerySyntax.
func (s *CypherSyntax) Parse(input string) (*ir.GraphIR, error) {
	ast, err := s.parser.ParseString("", input)
	if err != nil {
		return nil, &ParseError{Syntax: s.Name(), Message: err.Error()}
	}
	return buildCypherIR(ast)
}

// Grammar. Alternation order matters for edges: the shared "-" core is
// factored so the grammar stays unambiguous; direction is reconstructed
// from the captured arrow heads.

type cypherQuery struct {
	Pattern cypherPattern `parser:"'MATCH' @@"`
	Where   []cypherCond  `parser:"('WHERE' @@ ('AND' @@)*)?"`
	Return  []cypherProj  `parser:"('RETURN' @@ (',' @@)*)?"`
}

type cypherPattern struct {
	First cypherNode  `parser:"@@"`
	Hops  []cypherHop `parser:"@@*"`
}

type cypherHop struct {
	Edge cypherEdge `parser:"@@"`
	Node cypherNode `parser:"@@"`
}

type cypherNode struct {
	Alias string       `parser:"'(' @Ident?"`
	Label string       `parser:"(':' @Ident)?"`
	Props []cypherProp `parser:"('{' (@@ (',' @@)* ','?)? '}')? ')'"`
}

type cypherProp struct {
	Key   string      `parser:"@Ident ':'"`
	Value cypherValue `parser:"@@"`
}

type cypherEdge struct {
	Left  bool            `parser:"(@('<' '-') | '-')"`
	Inner cypherEdgeInner `parser:"@@"`
	Right bool            `parser:"'-' @'>'?"`
}

type cypherEdgeInner struct {
	Alias string       `parser:"'[' @Ident?"`
	Type  string       `parser:"(':' @Ident)?"`
	Quant *cypherQuant `parser:"@@? ']'"`
}

type cypherQuant struct {
	Plus   bool    `parser:"@'+'"`
	Star   bool    `parser:"| ( @'*'"`
	Min    *string `parser:"    @Number?"`
	DotDot bool    `parser:"    @DotDot?"`
	Max    *string `parser:"    @Number? )"`
}

type cypherCond struct {
	Alias string      `parser:"@Ident '.'"`
	Prop  string      `parser:"@Ident"`
	Op    cypherOp    `parser:"@@"`
	Value cypherValue `parser:"@@"`
}

type cypherOp struct {
	Eq         bool `parser:"@'='"`
	NeBang     bool `parser:"| @('!' '=')"`
	NeAngle    bool `parser:"| @('<' '>')"`
	StartsWith bool `parser:"| @('STARTS' 'WITH')"`
	EndsWith   bool `parser:"| @('ENDS' 'WITH')"`
	Contains   bool `parser:"| @'CONTAINS'"`
}

type cypherProj struct {
	Alias string  `parser:"@Ident"`
	Prop  *string `parser:"('.' @Ident)?"`
	As    *string `parser:"('AS' @Ident)?"`
}

type cypherValue struct {
	Str   *string `parser:"@String"`
	Num   *string `parser:"| @Number"`
	True  bool    `parser:"| @'TRUE'"`
	False bool    `parser:"| @'FALSE'"`
	Null  bool    `parser:"| @'NULL'"`
	Param *string `parser:"| @Param"`
}

// IR construction.

func buildCypherIR(ast *cypherQuery) (*ir.GraphIR, error) {
	var source ir.QuerySource = ir.All{}
	var elements []ir.PatternElement

	nodes := []cypherNode{ast.Pattern.First}
	var edges []cypherEdge
	for _, hop := range ast.Pattern.Hops {
		edges = append(edges, hop.Edge)
		nodes = append(nodes, hop.Node)
	}

	for i, node := range nodes {
		np := ir.NodePattern{Alias: node.Alias, Label: node.Label}
		for _, prop := range node.Props {
			value, err := cypherValueToGo(prop.Value)
			if err != nil {
				return nil, err
			}

			// The first node carrying a concrete path or title property
			// anchors the query. Parameter placeholders stay unresolved.
			if _, isAll := source.(ir.All); isAll {
				if s, ok := value.(string); ok && !strings.HasPrefix(s, "$") {
					switch prop.Key {
					case "path":
						source = ir.ByPath{Path: s}
					case "title":
						source = ir.ByTitle{Title: s}
					}
				}
			}

			np.Properties = append(np.Properties, ir.PropertyMatch{
				Key:   prop.Key,
				Op:    ir.Eq,
				Value: value,
			})
		}
		elements = append(elements, np)

		if i < len(edges) {
			edge := edges[i]
			ep := ir.EdgePattern{
				Alias:     edge.Inner.Alias,
				EdgeType:  edge.Inner.Type,
				Direction: cypherDirection(edge),
			}
			q, err := cypherQuantifier(edge.Inner.Quant)
			if err != nil {
				return nil, err
			}
			ep.Quantifier = q
			elements = append(elements, ep)
		}
	}

	filters := make([]ir.Filter, 0, len(ast.Where))
	for _, cond := range ast.Where {
		value, err := cypherValueToGo(cond.Value)
		if err != nil {
			return nil, err
		}
		filters = append(filters, ir.Filter{
			Field: cond.Alias + "." + cond.Prop,
			Op:    cypherMatchOp(cond.Op),
			Value: value,
		})
	}

	projections := make([]ir.Projection, 0, len(ast.Return))
	for _, proj := range ast.Return {
		field := proj.Alias
		if proj.Prop != nil {
			field = proj.Alias + "." + *proj.Prop
		}
		p := ir.Projection{Field: field}
		if proj.As != nil {
			p.Alias = *proj.As
		}
		projections = append(projections, p)
	}

	return &ir.GraphIR{
		Source:      source,
		Pattern:     ir.GraphPattern{Elements: elements},
		Filters:     filters,
		Projections: projections,
	}, nil
}

func cypherDirection(edge cypherEdge) ir.EdgeDirection {
	switch {
	case edge.Left && edge.Right:
		return ir.Both
	case edge.Left:
		return ir.In
	case edge.Right:
		return ir.Out
	default:
		return ir.Undirected
	}
}

func cypherQuantifier(q *cypherQuant) (*ir.Quantifier, error) {
	if q == nil {
		return nil, nil
	}
	if q.Plus {
		quant := ir.OneOrMore()
		return &quant, nil
	}

	var quant ir.Quantifier
	switch {
	case q.Min == nil && q.Max == nil:
		// "*" or the degenerate "*.."
		quant = ir.ZeroOrMore()
	case q.Min != nil && !q.DotDot:
		// "*3" is an exact hop count
		n, err := parseQuantBound(*q.Min)
		if err != nil {
			return nil, err
		}
		quant = ir.Exactly(n)
	case q.Min != nil && q.Max != nil:
		min, err := parseQuantBound(*q.Min)
		if err != nil {
			return nil, err
		}
		max, err := parseQuantBound(*q.Max)
		if err != nil {
			return nil, err
		}
		quant = ir.Between(min, max)
	case q.Min != nil:
		// "*2.." keeps the upper bound open
		min, err := parseQuantBound(*q.Min)
		if err != nil {
			return nil, err
		}
		quant = ir.Between(min, -1)
	default:
		// "*..5" starts at zero
		max, err := parseQuantBound(*q.Max)
		if err != nil {
			return nil, err
		}
		quant = ir.Between(0, max)
	}
	return &quant, nil
}

func parseQuantBound(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, &ParseError{Syntax: "cypher", Message: fmt.Sprintf("invalid path quantifier bound %q", s)}
	}
	return n, nil
}

func cypherMatchOp(op cypherOp) ir.MatchOp {
	switch {
	case op.NeBang || op.NeAngle:
		return ir.Ne
	case op.StartsWith:
		return ir.StartsWith
	case op.EndsWith:
		return ir.EndsWith
	case op.Contains:
		return ir.Contains
	default:
		return ir.Eq
	}
}

// cypherValueToGo lowers a parsed literal to a plain JSON-compatible Go
// value. Parameters become "$name" strings for later substitution.
func cypherValueToGo(v cypherValue) (any, error) {
	switch {
	case v.Str != nil:
		s := *v.Str
		return s[1 : len(s)-1], nil
	case v.Num != nil:
		s := *v.Num
		if strings.Contains(s, ".") {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, &ParseError{Syntax: "cypher", Message: fmt.Sprintf("invalid float literal %q", s)}
			}
			return f, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, &ParseError{Syntax: "cypher", Message: fmt.Sprintf("integer overflow in literal %q", s)}
		}
		return n, nil
	case v.True:
		return true, nil
	case v.False:
		return false, nil
	case v.Param != nil:
		return *v.Param, nil
	default: // NULL
		return nil, nil
	}
}
