// Package cli implements the rdfsql command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DefaultModelPath is the model file read when --model is not given.
const DefaultModelPath = "rdfsql.yaml"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Model   string // model file path
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the rdfsql CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rdfsql",
		Short: "rdfsql - SQL tables over RDF graphs",
		Long: `rdfsql exposes an RDF graph as relational tables.

Tables are discovered from the graph (one per property, or one per
class) or declared in the model file. Plans over those tables are
compiled to SPARQL and run against the model's endpoint.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Model, "model", "m", DefaultModelPath, "model file (.yaml, .json or .cue)")

	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
