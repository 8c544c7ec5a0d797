package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces a deterministic JSON encoding of a GraphIR:
// object keys are sorted, strings are NFC normalized, and HTML characters
// are not escaped. Two structurally equal IR values always produce
// byte-identical output, which is what the CLI and golden tests rely on.
func MarshalCanonical(g *GraphIR) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, canonicalMap(g)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// canonicalMap lowers a GraphIR to plain maps and slices with stable,
// tagged representations for the sum types.
func canonicalMap(g *GraphIR) map[string]any {
	m := map[string]any{
		"source":      sourceMap(g.Source),
		"pattern":     patternList(g.Pattern),
		"filters":     filterList(g.Filters),
		"projections": projectionList(g.Projections),
	}
	if g.PostFilter != "" {
		m["post_filter"] = g.PostFilter
	}
	return m
}

func sourceMap(s QuerySource) any {
	switch src := s.(type) {
	case ByTitle:
		return map[string]any{"by_title": src.Title}
	case ByPath:
		return map[string]any{"by_path": src.Path}
	case ByID:
		return map[string]any{"by_id": src.ID}
	case All, nil:
		return "all"
	default:
		return fmt.Sprintf("unknown(%T)", s)
	}
}

func patternList(p GraphPattern) []any {
	elements := make([]any, 0, len(p.Elements))
	for _, el := range p.Elements {
		switch e := el.(type) {
		case NodePattern:
			node := map[string]any{}
			if e.Alias != "" {
				node["alias"] = e.Alias
			}
			if e.Label != "" {
				node["label"] = e.Label
			}
			if len(e.Properties) > 0 {
				props := make([]any, len(e.Properties))
				for i, pm := range e.Properties {
					props[i] = map[string]any{
						"key":   pm.Key,
						"op":    pm.Op.String(),
						"value": pm.Value,
					}
				}
				node["properties"] = props
			}
			elements = append(elements, map[string]any{"node": node})
		case EdgePattern:
			edge := map[string]any{"direction": e.Direction.String()}
			if e.Alias != "" {
				edge["alias"] = e.Alias
			}
			if e.EdgeType != "" {
				edge["type"] = e.EdgeType
			}
			if e.Quantifier != nil {
				q := map[string]any{"min": e.Quantifier.Min}
				if !e.Quantifier.Unbounded() {
					q["max"] = e.Quantifier.Max
				}
				edge["quantifier"] = q
			}
			elements = append(elements, map[string]any{"edge": edge})
		}
	}
	return elements
}

func filterList(filters []Filter) []any {
	out := make([]any, len(filters))
	for i, f := range filters {
		out[i] = map[string]any{
			"field": f.Field,
			"op":    f.Op.String(),
			"value": f.Value,
		}
	}
	return out
}

func projectionList(projections []Projection) []any {
	out := make([]any, len(projections))
	for i, p := range projections {
		proj := map[string]any{"field": p.Field}
		if p.Alias != "" {
			proj["alias"] = p.Alias
		}
		out[i] = proj
	}
	return out
}

// writeCanonical serializes v with sorted object keys and NFC strings.
func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case string:
		return writeCanonicalString(buf, val)
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case int:
		buf.WriteString(strconv.Itoa(val))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case float64:
		// Integral floats print without decimals so identical queries
		// encode identically regardless of which front-end parsed them.
		if val == float64(int64(val)) {
			buf.WriteString(strconv.FormatInt(int64(val), 10))
		} else {
			buf.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
		}
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported type in canonical JSON: %T", v)
	}
	return nil
}

// writeCanonicalString encodes s as a JSON string, NFC normalized, with
// HTML escaping disabled (<, > and & appear verbatim).
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	// json.Encoder appends a trailing newline.
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
