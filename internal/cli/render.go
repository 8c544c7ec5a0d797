package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/kiln/internal/render"
	"github.com/roach88/kiln/internal/schema"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Backend       string
	Profile       string // path to a CUE profile file
	EntityTable   string
	RelationTable string
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <query>",
		Short: "Render a query to backend SQL",
		Long: `Compile a query and render it for a backend.

The backend comes from --backend, or from a CUE profile file given
with --profile. Table names can be overridden per invocation.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Backend, "backend", "b", "sqlite", "target backend (sqlite|surrealql)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "CUE profile file describing the backend schema")
	cmd.Flags().StringVar(&opts.EntityTable, "entity-table", "", "override the entity table name")
	cmd.Flags().StringVar(&opts.RelationTable, "relation-table", "", "override the relation table name")

	return cmd
}

func runRender(opts *RenderOptions, query string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	renderer, err := resolveRenderer(opts, formatter)
	if err != nil {
		return err
	}

	q, err := compileQuery(opts.RootOptions, formatter, query)
	if err != nil {
		return err
	}

	rendered, err := renderer.Render(q)
	if err != nil {
		var renderErr *render.RenderError
		if errors.As(err, &renderErr) {
			return failf(formatter, ErrCodeRender,
				fmt.Sprintf("%s backend: %s", renderer.Name(), renderErr.Message),
				map[string]any{"code": string(renderErr.Code)})
		}
		return failf(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	return outputRendered(formatter, q.PostFilter, rendered)
}

// resolveRenderer builds the renderer from flags: profile file if given,
// named backend otherwise, with table overrides applied last.
func resolveRenderer(opts *RenderOptions, formatter *OutputFormatter) (render.QueryRenderer, error) {
	var profile *schema.Profile
	var err error

	if opts.Profile != "" {
		profile, err = schema.Load(opts.Profile)
		if err != nil {
			return nil, commandErrf(formatter, ErrCodeProfile, err.Error(), nil)
		}
		opts.Logger().Debug("loaded profile", "path", opts.Profile, "backend", profile.Backend)
	} else {
		profile, err = schema.Default(opts.Backend)
		if err != nil {
			return nil, commandErrf(formatter, ErrCodeBackend,
				fmt.Sprintf("unknown backend %q", opts.Backend), nil)
		}
	}

	if opts.EntityTable != "" {
		profile.EntityTable = opts.EntityTable
	}
	if opts.RelationTable != "" {
		profile.RelationTable = opts.RelationTable
	}

	renderer, err := profile.Renderer()
	if err != nil {
		return nil, commandErrf(formatter, ErrCodeBackend, err.Error(), nil)
	}
	return renderer, nil
}

// RenderOutput is the JSON payload of the render command.
type RenderOutput struct {
	SQL        string         `json:"sql"`
	Params     map[string]any `json:"params"`
	PostFilter string         `json:"post_filter,omitempty"`
}

func outputRendered(formatter *OutputFormatter, postFilter string, rendered *render.RenderedQuery) error {
	if formatter.Format == "json" {
		return formatter.Success(RenderOutput{
			SQL:        rendered.SQL,
			Params:     rendered.Params,
			PostFilter: postFilter,
		})
	}

	fmt.Fprintln(formatter.Writer, rendered.SQL)
	if len(rendered.Params) > 0 {
		keys := make([]string, 0, len(rendered.Params))
		for k := range rendered.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(formatter.Writer, "\nParameters:")
		for _, k := range keys {
			fmt.Fprintf(formatter.Writer, "  %s = %v\n", k, rendered.Params[k])
		}
	}
	if postFilter != "" {
		fmt.Fprintf(formatter.Writer, "\nPost-filter (apply downstream): %s\n", postFilter)
	}
	return nil
}
