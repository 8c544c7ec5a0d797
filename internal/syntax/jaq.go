package syntax

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/kiln/internal/ir"
)

// Fast prefix check for the four jaq-style graph functions. Anchored so a
// partial match deeper in the input never routes here.
var jaqPrefixRe = regexp.MustCompile(`^\s*(outlinks|inlinks|find|neighbors)\s*\(`)

// Arrow traversal segments: ->wikilink[], <-embed[], <->wikilink[].
var jaqArrowRe = regexp.MustCompile(`^(<->|->|<-)(\w+)\[\]$`)

// jaqFunctions are the recognized graph source functions, each taking a
// single quoted title argument.
var jaqFunctions = []string{"outlinks", "inlinks", "find", "neighbors"}

// JaqSyntax parses the jq/jaq-inspired pipe syntax:
//
//	outlinks("Index")
//	find("Project") | <-wikilink[] | select(.tags | contains("active"))
//
// Segments are split on "|". The first segment must be one of the four
// graph functions; subsequent segments are either arrow traversals or
// verbatim post-filter expressions handed to the external jaq evaluator.
type JaqSyntax struct{}

// NewJaqSyntax returns the jaq front-end.
func NewJaqSyntax() *JaqSyntax {
	return &JaqSyntax{}
}

// Name implements QuerySyntax.
func (s *JaqSyntax) Name() string {
	return "jaq"
}

// CanHandle implements QuerySyntax.
func (s *JaqSyntax) CanHandle(input string) bool {
	return jaqPrefixRe.MatchString(input)
}

// Priority implements QuerySyntax. The jaq syntax is the universal
// fallback (any pipe expression could belong to it), so it declares the
// lowest priority of all registered front-ends.
func (s *JaqSyntax) Priority() uint8 {
	return 10
}

// Parse implements QuerySyntax.
func (s *JaqSyntax) Parse(input string) (*ir.GraphIR, error) {
	segments := strings.Split(strings.TrimSpace(input), "|")

	var (
		srcFunc    string
		srcTitle   string
		haveSource bool
		traversals []ir.EdgePattern
		postParts  []string
	)

	for _, raw := range segments {
		seg := strings.TrimSpace(raw)

		if !haveSource {
			fn, title, ok, err := parseGraphCall(seg)
			if err != nil {
				return nil, err
			}
			if ok {
				srcFunc, srcTitle = fn, title
				haveSource = true
				continue
			}
		}

		if m := jaqArrowRe.FindStringSubmatch(seg); m != nil {
			if !haveSource {
				return nil, s.errorf("traversal %q before a graph function; query must start with a graph function (outlinks, inlinks, find, neighbors)", seg)
			}
			traversals = append(traversals, ir.EdgePattern{
				Direction: arrowDirection(m[1]),
				EdgeType:  m[2],
			})
			continue
		}

		// Neither a source call nor a traversal: the segment belongs to
		// the downstream post-filter language and is carried verbatim.
		postParts = append(postParts, seg)
	}

	if !haveSource {
		return nil, s.errorf("query must start with a graph function (outlinks, inlinks, find, neighbors)")
	}

	elements := basePattern(srcFunc)
	for _, t := range traversals {
		elements = append(elements, t)
	}

	q := &ir.GraphIR{
		Source:  ir.ByTitle{Title: srcTitle},
		Pattern: ir.GraphPattern{Elements: elements},
	}
	if len(postParts) > 0 {
		q.PostFilter = strings.Join(postParts, " | ")
	}
	return q, nil
}

func (s *JaqSyntax) errorf(format string, args ...any) error {
	return &ParseError{Syntax: s.Name(), Message: fmt.Sprintf(format, args...)}
}

// parseGraphCall tries to read seg as a simple graph function call with a
// single quoted argument, e.g. find("Project Notes") or outlinks('Index').
//
// Returns ok=false without an error when the segment is not a simple
// call: either it does not start with a known function, or it is a
// compound expression with trailing content after the closing paren. In
// the compound case the segment falls through to post-filter treatment;
// that rule is what lets `find("X") | select(...)` parse. A segment that
// does start as a call but is malformed (unquoted argument, unclosed
// quote, missing paren) is a hard parse error.
func parseGraphCall(seg string) (fn, title string, ok bool, err error) {
	for _, name := range jaqFunctions {
		rest, found := strings.CutPrefix(seg, name)
		if !found {
			continue
		}
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, "(") {
			// Function-like prefix but no call, e.g. "finder(...)"
			// already failed CutPrefix; this is "find x" style text.
			continue
		}
		rest = strings.TrimSpace(rest[1:])
		if rest == "" || (rest[0] != '"' && rest[0] != '\'') {
			return "", "", false, &ParseError{
				Syntax:  "jaq",
				Message: fmt.Sprintf("expected quoted string argument in %s(...)", name),
			}
		}
		quote := rest[0]
		end := strings.IndexByte(rest[1:], quote)
		if end < 0 {
			return "", "", false, &ParseError{
				Syntax:  "jaq",
				Message: fmt.Sprintf("unclosed quoted string argument in %s(...)", name),
			}
		}
		arg := rest[1 : 1+end]
		tail := strings.TrimSpace(rest[1+end+1:])
		if !strings.HasPrefix(tail, ")") {
			return "", "", false, &ParseError{
				Syntax:  "jaq",
				Message: fmt.Sprintf("expected closing parenthesis in %s(...)", name),
			}
		}
		if strings.TrimSpace(tail[1:]) != "" {
			// Compound expression like contains("x") == false inside a
			// larger segment: not a source call, not an error.
			return "", "", false, nil
		}
		return name, arg, true, nil
	}
	return "", "", false, nil
}

func arrowDirection(arrow string) ir.EdgeDirection {
	switch arrow {
	case "->":
		return ir.Out
	case "<-":
		return ir.In
	default: // "<->", guaranteed by jaqArrowRe
		return ir.Both
	}
}

// basePattern maps a source function to its implicit traversal.
func basePattern(fn string) []ir.PatternElement {
	switch fn {
	case "outlinks":
		return []ir.PatternElement{ir.EdgePattern{Direction: ir.Out, EdgeType: "wikilink"}}
	case "inlinks":
		return []ir.PatternElement{ir.EdgePattern{Direction: ir.In, EdgeType: "wikilink"}}
	case "neighbors":
		return []ir.PatternElement{ir.EdgePattern{Direction: ir.Both, EdgeType: "wikilink"}}
	default: // "find": plain lookup, no implicit edge
		return nil
	}
}
