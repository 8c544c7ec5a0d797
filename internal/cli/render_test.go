package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSqliteDefault(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRenderCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{`outlinks("Index")`})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "FROM notes n0")
	assert.Contains(t, output, "source_title = Index")
}

func TestRenderSurrealBackend(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRenderCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{`outlinks("Index")`, "--backend", "surrealql"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "SELECT out FROM relations")
}

func TestRenderTableOverrides(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRenderCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{`find("X")`, "--entity-table", "pages"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "FROM pages")
}

func TestRenderWithProfile(t *testing.T) {
	profilePath := filepath.Join(t.TempDir(), "profile.cue")
	require.NoError(t, os.WriteFile(profilePath, []byte(`
backend:        "surrealql"
entity_table:   "kb_entities"
relation_table: "kb_relations"
`), 0o644))

	buf := &bytes.Buffer{}
	cmd := NewRenderCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{`outlinks("Index")`, "--profile", profilePath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "FROM kb_relations")
}

func TestRenderJSONIncludesPostFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRenderCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{`find("X") | select(.folder == "Work")`})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   RenderOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Contains(t, resp.Data.SQL, "title = :title")
	assert.Equal(t, `select(.folder == "Work")`, resp.Data.PostFilter)
}

func TestRenderUnknownBackend(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRenderCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{`find("X")`, "--backend", "postgres"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), ErrCodeBackend)
}

func TestRenderMissingProfile(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRenderCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{`find("X")`, "--profile", filepath.Join(t.TempDir(), "absent.cue")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRenderUnsupportedPattern(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRenderCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	// Multi-hop is outside what the surrealql backend renders.
	cmd.SetArgs([]string{`outlinks("Index") | ->embed[]`, "--backend", "surrealql"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeRender, resp.Error.Code)
}
