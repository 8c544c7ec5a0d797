package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kiln/internal/store"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	DB string
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <fixture.yaml>",
		Short: "Import a YAML fixture into a SQLite knowledge base",
		Long: `Import notes and edges from a YAML fixture file.

The database and schema are created if missing. Existing rows with
the same keys are replaced, so re-loading a fixture is idempotent.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to the SQLite database (required)")
	cmd.MarkFlagRequired("db")

	return cmd
}

// LoadOutput is the JSON payload of the load command.
type LoadOutput struct {
	Notes int `json:"notes"`
	Edges int `json:"edges"`
}

func runLoad(opts *LoadOptions, fixturePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := store.Open(opts.DB)
	if err != nil {
		return commandErrf(formatter, ErrCodeDatabase, err.Error(), nil)
	}
	defer s.Close()

	f, err := s.ImportFile(cmd.Context(), fixturePath)
	if err != nil {
		return commandErrf(formatter, ErrCodeFixture, err.Error(), nil)
	}
	opts.Logger().Debug("imported fixture", "path", fixturePath,
		"notes", len(f.Notes), "edges", len(f.Edges))

	out := LoadOutput{Notes: len(f.Notes), Edges: len(f.Edges)}
	if formatter.Format == "json" {
		return formatter.Success(out)
	}
	fmt.Fprintf(formatter.Writer, "Imported %d note(s), %d edge(s) into %s\n",
		out.Notes, out.Edges, opts.DB)
	return nil
}
