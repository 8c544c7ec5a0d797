package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kiln/internal/render"
)

func TestParseSqliteDefaults(t *testing.T) {
	p, err := Parse(`backend: "sqlite"`)
	require.NoError(t, err)
	assert.Equal(t, &Profile{
		Backend:       "sqlite",
		EntityTable:   "notes",
		RelationTable: "edges",
		SourceColumn:  "source",
		TargetColumn:  "target",
		TypeColumn:    "type",
	}, p)
}

func TestParseSurrealDefaults(t *testing.T) {
	p, err := Parse(`backend: "surrealql"`)
	require.NoError(t, err)
	assert.Equal(t, "entities", p.EntityTable)
	assert.Equal(t, "relations", p.RelationTable)
}

func TestParseOverrides(t *testing.T) {
	p, err := Parse(`
backend:        "sqlite"
entity_table:   "pages"
relation_table: "links"
source_column:  "from_id"
target_column:  "to_id"
type_column:    "kind"
`)
	require.NoError(t, err)
	assert.Equal(t, &Profile{
		Backend:       "sqlite",
		EntityTable:   "pages",
		RelationTable: "links",
		SourceColumn:  "from_id",
		TargetColumn:  "to_id",
		TypeColumn:    "kind",
	}, p)
}

func TestParseRejectsUnknownBackend(t *testing.T) {
	_, err := Parse(`backend: "postgres"`)
	require.Error(t, err)

	var pe *ProfileError
	require.ErrorAs(t, err, &pe)
}

func TestParseRejectsMissingBackend(t *testing.T) {
	_, err := Parse(`entity_table: "pages"`)
	require.Error(t, err)
}

func TestParseRejectsWrongType(t *testing.T) {
	_, err := Parse(`
backend:      "sqlite"
entity_table: 42
`)
	require.Error(t, err)
}

func TestLoadProfileFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
backend:      "surrealql"
entity_table: "kb_entities"
`), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "surrealql", p.Backend)
	assert.Equal(t, "kb_entities", p.EntityTable)
	assert.Equal(t, "relations", p.RelationTable)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.cue"))
	require.Error(t, err)

	var pe *ProfileError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Message, "reading profile")
}

func TestDefaultProfiles(t *testing.T) {
	for _, backend := range []string{"sqlite", "surrealql"} {
		p, err := Default(backend)
		require.NoError(t, err, backend)
		assert.Equal(t, backend, p.Backend)
	}
}

func TestProfileRenderer(t *testing.T) {
	p, err := Parse(`
backend:        "sqlite"
entity_table:   "pages"
relation_table: "links"
source_column:  "from_id"
target_column:  "to_id"
type_column:    "kind"
`)
	require.NoError(t, err)

	r, err := p.Renderer()
	require.NoError(t, err)
	require.IsType(t, &render.SqliteRenderer{}, r)

	sq := r.(*render.SqliteRenderer)
	assert.Equal(t, "pages", sq.NotesTable)
	assert.Equal(t, "links", sq.EdgesTable)
	assert.Equal(t, "from_id", sq.SourceColumn)

	p, err = Parse(`backend: "surrealql"`)
	require.NoError(t, err)
	r, err = p.Renderer()
	require.NoError(t, err)
	assert.Equal(t, "surrealql", r.Name())
}

func TestProfileRendererUnknownBackend(t *testing.T) {
	p := &Profile{Backend: "postgres"}
	_, err := p.Renderer()
	require.Error(t, err)
}
