package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kiln/internal/syntax"
)

// SyntaxInfo describes one registered front-end.
type SyntaxInfo struct {
	Name     string `json:"name"`
	Priority uint8  `json:"priority"`
}

// NewSyntaxesCommand creates the syntaxes command.
func NewSyntaxesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "syntaxes",
		Short: "List registered query front-ends",
		Long:  "List the registered query front-ends in dispatch order (highest priority first).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}

			var infos []SyntaxInfo
			for _, s := range syntax.Default().Syntaxes() {
				infos = append(infos, SyntaxInfo{Name: s.Name(), Priority: s.Priority()})
			}

			if formatter.Format == "json" {
				return formatter.Success(infos)
			}
			for _, info := range infos {
				fmt.Fprintf(formatter.Writer, "%-10s priority %d\n", info.Name, info.Priority)
			}
			return nil
		},
	}
}
