package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/rdfsql/internal/engine"
	"github.com/roach88/rdfsql/internal/querysparql"
	"github.com/roach88/rdfsql/internal/schema"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompileResult is the JSON payload of the compile command.
type CompileResult struct {
	Table    string   `json:"table"`
	Columns  []string `json:"columns"`
	Distinct bool     `json:"distinct"`
	Query    string   `json:"query"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <plan.yaml>",
		Short: "Compile a plan to SPARQL",
		Long: `Compile a YAML plan to SPARQL without running it.

The plan's table is resolved against the model so that filter operands
are typed like the columns they compare.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, newSession(rootOpts, cmd), cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the query to a file")

	return cmd
}

func runCompile(opts *CompileOptions, s *session, cmd *cobra.Command, planPath string) error {
	plan, err := s.loadPlan(planPath)
	if err != nil {
		return err
	}

	eng, err := s.openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	node, err := eng.Build(cmd.Context(), plan)
	if err != nil {
		return s.fail(queryExit(err), err)
	}
	q, err := eng.Compile(node)
	if err != nil {
		code, exit := engine.ErrCodeInvalidPlan, ExitCommandError
		if querysparql.IsUnsupported(err) {
			code, exit = engine.ErrCodeUnsupported, ExitFailure
		}
		return s.failCode(exit, string(code), err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(q.Text+"\n"), 0o644); err != nil {
			return s.failCode(ExitCommandError, ErrCodeWriteFailed, fmt.Errorf("writing output file: %w", err))
		}
		s.out.VerboseLog("Wrote query to %s", opts.Output)
	}

	if s.out.Format == "json" {
		return s.out.Success(CompileResult{
			Table:    q.Table,
			Columns:  q.Columns,
			Distinct: q.Distinct,
			Query:    q.Text,
		})
	}
	fmt.Fprintln(s.out.Writer, q.Text)
	return nil
}

func isTableNotFound(err error) bool {
	return errors.Is(err, schema.ErrTableNotFound)
}
