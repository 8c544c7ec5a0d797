package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalShape(t *testing.T) {
	q := &GraphIR{
		Source: ByTitle{Title: "Index"},
		Pattern: GraphPattern{Elements: []PatternElement{
			EdgePattern{EdgeType: "wikilink", Direction: Out},
		}},
	}

	got, err := MarshalCanonical(q)
	require.NoError(t, err)
	assert.Equal(t,
		`{"filters":[],"pattern":[{"edge":{"direction":"out","type":"wikilink"}}],"projections":[],"source":{"by_title":"Index"}}`,
		string(got))
}

func TestMarshalCanonicalSources(t *testing.T) {
	tests := []struct {
		name   string
		source QuerySource
		want   string
	}{
		{name: "by title", source: ByTitle{Title: "X"}, want: `{"by_title":"X"}`},
		{name: "by path", source: ByPath{Path: "a/b.md"}, want: `{"by_path":"a/b.md"}`},
		{name: "by id", source: ByID{ID: "01J8"}, want: `{"by_id":"01J8"}`},
		{name: "all", source: All{}, want: `"all"`},
		{name: "nil is all", source: nil, want: `"all"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(&GraphIR{Source: tt.source})
			require.NoError(t, err)
			assert.Contains(t, string(got), `"source":`+tt.want)
		})
	}
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	quant := Between(1, 3)
	q := &GraphIR{
		Source: ByTitle{Title: "Index"},
		Pattern: GraphPattern{Elements: []PatternElement{
			NodePattern{Alias: "a", Label: "Note", Properties: []PropertyMatch{
				{Key: "title", Op: Eq, Value: "Index"},
			}},
			EdgePattern{Alias: "e", EdgeType: "wikilink", Direction: Both, Quantifier: &quant},
			NodePattern{Alias: "b"},
		}},
		Filters: []Filter{
			{Field: "b.status", Op: Ne, Value: "draft"},
			{Field: "b.tags", Op: Contains, Value: "active"},
		},
		Projections: []Projection{{Field: "b.title", Alias: "name"}},
		PostFilter:  `select(.folder == "Work")`,
	}

	first, err := MarshalCanonical(q)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := MarshalCanonical(q)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "é" as a single code point vs "e" + combining acute accent.
	composed := &GraphIR{Source: ByTitle{Title: "Café"}}
	decomposed := &GraphIR{Source: ByTitle{Title: "Café"}}

	a, err := MarshalCanonical(composed)
	require.NoError(t, err)
	b, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	q := &GraphIR{
		Source:  All{},
		Filters: []Filter{{Field: "content", Op: Contains, Value: "<b> & </b>"}},
	}

	got, err := MarshalCanonical(q)
	require.NoError(t, err)
	assert.Contains(t, string(got), "<b> & </b>")
	assert.NotContains(t, string(got), `<`)
	assert.NotContains(t, string(got), `&`)
}

func TestMarshalCanonicalPostFilterOmittedWhenEmpty(t *testing.T) {
	got, err := MarshalCanonical(&GraphIR{Source: All{}})
	require.NoError(t, err)
	assert.NotContains(t, string(got), "post_filter")
}

func TestMarshalCanonicalQuantifierBounds(t *testing.T) {
	unbounded := OneOrMore()
	exact := Exactly(2)

	q := &GraphIR{
		Source: ByTitle{Title: "X"},
		Pattern: GraphPattern{Elements: []PatternElement{
			EdgePattern{EdgeType: "wikilink", Direction: Out, Quantifier: &unbounded},
			EdgePattern{EdgeType: "embed", Direction: Out, Quantifier: &exact},
		}},
	}

	got, err := MarshalCanonical(q)
	require.NoError(t, err)
	// unbounded quantifiers omit the max key entirely
	assert.Contains(t, string(got), `"quantifier":{"min":1}`)
	assert.Contains(t, string(got), `"quantifier":{"max":2,"min":2}`)
}

func TestMarshalCanonicalIntegralFloat(t *testing.T) {
	// 3 parsed as int64 and 3.0 parsed as float64 encode identically.
	asInt, err := MarshalCanonical(&GraphIR{
		Source:  All{},
		Filters: []Filter{{Field: "n", Op: Eq, Value: int64(3)}},
	})
	require.NoError(t, err)

	asFloat, err := MarshalCanonical(&GraphIR{
		Source:  All{},
		Filters: []Filter{{Field: "n", Op: Eq, Value: float64(3)}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(asInt), string(asFloat))
}
