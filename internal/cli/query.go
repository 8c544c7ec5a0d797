package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kiln/internal/render"
	"github.com/roach88/kiln/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	DB string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <query>",
		Short: "Run a query against a SQLite knowledge base",
		Long: `Compile a query, render it for sqlite and execute it against the
database given with --db.

Post-filter expressions are not evaluated here; they are reported
verbatim for a downstream jaq process.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to the SQLite database (required)")
	cmd.MarkFlagRequired("db")

	return cmd
}

// QueryOutput is the JSON payload of the query command.
type QueryOutput struct {
	Rows       []map[string]any `json:"rows"`
	RowCount   int              `json:"row_count"`
	PostFilter string           `json:"post_filter,omitempty"`
}

func runQuery(opts *QueryOptions, query string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	q, err := compileQuery(opts.RootOptions, formatter, query)
	if err != nil {
		return err
	}

	renderer := render.NewSqliteRenderer()
	rendered, err := renderer.Render(q)
	if err != nil {
		var renderErr *render.RenderError
		if errors.As(err, &renderErr) {
			return failf(formatter, ErrCodeRender, renderErr.Message,
				map[string]any{"code": string(renderErr.Code)})
		}
		return failf(formatter, ErrCodeGeneric, err.Error(), nil)
	}
	opts.Logger().Debug("rendered query", "sql", rendered.SQL)

	s, err := store.Open(opts.DB)
	if err != nil {
		return commandErrf(formatter, ErrCodeDatabase, err.Error(), nil)
	}
	defer s.Close()

	rows, err := s.Execute(cmd.Context(), rendered)
	if err != nil {
		return failf(formatter, ErrCodeDatabase, err.Error(), nil)
	}

	out := QueryOutput{Rows: rows, RowCount: len(rows), PostFilter: q.PostFilter}
	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	for _, row := range rows {
		fmt.Fprintln(formatter.Writer, formatRow(row))
	}
	fmt.Fprintf(formatter.Writer, "\n%d row(s)\n", out.RowCount)
	if out.PostFilter != "" {
		fmt.Fprintf(formatter.Writer, "Post-filter (apply downstream): %s\n", out.PostFilter)
	}
	return nil
}

// formatRow prints one result row as key=value pairs in column order
// title, path first, then the rest alphabetically.
func formatRow(row map[string]any) string {
	ordered := make([]string, 0, len(row))
	for _, key := range []string{"title", "path"} {
		if v, ok := row[key]; ok {
			ordered = append(ordered, fmt.Sprintf("%s=%v", key, v))
		}
	}

	var rest []string
	for k, v := range row {
		if k == "title" || k == "path" {
			continue
		}
		rest = append(rest, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(rest)
	return strings.Join(append(ordered, rest...), "  ")
}
