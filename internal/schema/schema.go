// Package schema loads backend profiles: CUE documents that bind a
// renderer to the table and column names of a concrete database.
//
// Profiles are validated against the embedded #Profile definition, so a
// typo in a column name or an unknown backend fails at load time with a
// CUE position instead of surfacing later as broken SQL.
package schema

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/kiln/internal/render"
)

//go:embed profile.cue
var profileSchema string

// Profile binds a backend renderer to a database layout.
type Profile struct {
	Backend       string `json:"backend"`
	EntityTable   string `json:"entity_table"`
	RelationTable string `json:"relation_table"`
	SourceColumn  string `json:"source_column"`
	TargetColumn  string `json:"target_column"`
	TypeColumn    string `json:"type_column"`
}

// ProfileError reports a profile that failed schema validation.
type ProfileError struct {
	Message string
	Pos     token.Pos // CUE position if available
}

// Error implements the error interface.
func (e *ProfileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Parse validates src against #Profile and decodes it. Unset fields take
// the schema defaults for the declared backend.
func Parse(src string) (*Profile, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(profileSchema)
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	val := ctx.CompileString(src)
	if err := val.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Profile")).Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var p Profile
	if err := unified.Decode(&p); err != nil {
		return nil, formatCUEError(err)
	}
	return &p, nil
}

// Load reads and parses a profile file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ProfileError{Message: fmt.Sprintf("reading profile: %v", err)}
	}
	return Parse(string(data))
}

// Default returns the built-in profile for a backend name.
func Default(backend string) (*Profile, error) {
	return Parse(fmt.Sprintf("backend: %q", backend))
}

// Renderer constructs the QueryRenderer this profile describes.
func (p *Profile) Renderer() (render.QueryRenderer, error) {
	switch p.Backend {
	case "sqlite":
		return render.NewSqliteRendererWithSchema(
			p.EntityTable, p.RelationTable,
			p.SourceColumn, p.TargetColumn, p.TypeColumn,
		), nil
	case "surrealql":
		return render.NewSurrealRendererWithTables(p.EntityTable, p.RelationTable), nil
	default:
		return nil, &ProfileError{Message: fmt.Sprintf("unknown backend %q", p.Backend)}
	}
}

// formatCUEError unwraps a CUE error list and surfaces the first error
// with its source position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &ProfileError{Message: first.Error(), Pos: positions[0]}
	}
	return &ProfileError{Message: first.Error()}
}
