package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/kiln/internal/ir"
	"github.com/roach88/kiln/internal/syntax"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query>",
		Short: "Compile a query to canonical IR",
		Long: `Compile a query to its canonical intermediate form.

The query is routed to a front-end by syntax (Cypher MATCH or jaq
pipes) and printed as canonical JSON: sorted keys, NFC strings. The
same query always produces byte-identical output.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, query string, cmd *cobra.Command) error {
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

	canonical, err := ir.MarshalCanonical(q)
	if err != nil {
		return failf(formatter, ErrCodeGeneric, fmt.Sprintf("encoding IR: %v", err), nil)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, append(canonical, '\n'), 0o644); err != nil {
			return commandErrf(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
		opts.Logger().Debug("wrote canonical IR", "path", opts.Output, "bytes", len(canonical))
	}

	if formatter.Format == "json" {
		return formatter.Success(json.RawMessage(canonical))
	}
	fmt.Fprintln(formatter.Writer, string(canonical))
	return nil
}

// compileQuery routes query text through the dispatcher and maps parse
// failures onto CLI error codes.
func compileQuery(opts *RootOptions, formatter *OutputFormatter, query string) (*ir.GraphIR, error) {
	dispatcher := syntax.Default()

	for _, s := range dispatcher.Syntaxes() {
		if s.CanHandle(query) {
			opts.Logger().Debug("matched syntax", "syntax", s.Name(), "priority", s.Priority())
			break
		}
	}

	q, err := dispatcher.Compile(query)
	if err != nil {
		var parseErr *syntax.ParseError
		if errors.As(err, &parseErr) {
			return nil, failf(formatter, ErrCodeParse,
				fmt.Sprintf("parsing %s query: %s", parseErr.Syntax, parseErr.Message), nil)
		}
		var noSyntax *syntax.NoSyntaxError
		if errors.As(err, &noSyntax) {
			return nil, failf(formatter, ErrCodeNoSyntax, err.Error(), nil)
		}
		return nil, failf(formatter, ErrCodeGeneric, err.Error(), nil)
	}
	return q, nil
}
