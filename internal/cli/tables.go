package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/rdfsql/internal/engine"
	"github.com/roach88/rdfsql/internal/schema"
)

// TableInfo is one row of the tables listing.
type TableInfo struct {
	Name string `json:"name"`
	Mode string `json:"mode"`
}

// ColumnInfo is one row of a table description.
type ColumnInfo struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Predicate string `json:"predicate,omitempty"`
}

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the model's tables",
		Long: `List the tables the model exposes.

Property and class tables are discovered from the graph; mapping
tables are the ones declared in the model file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(newSession(rootOpts, cmd), cmd)
		},
	}
}

func runTables(s *session, cmd *cobra.Command) error {
	eng, err := s.openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx := cmd.Context()
	names, err := eng.Schema().TableNames(ctx)
	if err != nil {
		return s.failCode(ExitFailure, ErrCodeEndpoint, err)
	}

	tables := make([]TableInfo, 0, len(names))
	for _, name := range names {
		t, err := eng.Schema().Table(ctx, name)
		if err != nil {
			return s.failCode(ExitFailure, ErrCodeEndpoint, err)
		}
		tables = append(tables, TableInfo{Name: name, Mode: t.Mode().String()})
	}

	if s.out.Format == "json" {
		return s.out.Success(tables)
	}

	w := tabwriter.NewWriter(s.out.Writer, 0, 4, 2, ' ', 0)
	for _, t := range tables {
		fmt.Fprintf(w, "%s\t%s\n", t.Name, t.Mode)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(s.out.Writer, "(%s)\n", pluralize(len(tables), "table", "tables"))
	return nil
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Show a table's columns and types",
		Long: `Resolve and print a table's columns.

Column types are probed from a sample of the graph the first time a
table is used.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(newSession(rootOpts, cmd), cmd, args[0])
		},
	}
}

func runDescribe(s *session, cmd *cobra.Command, table string) error {
	eng, err := s.openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	cols, err := eng.Describe(cmd.Context(), table)
	if err != nil {
		return s.failDescribe(table, err)
	}

	infos := columnInfos(cols)
	if s.out.Format == "json" {
		return s.out.Success(infos)
	}

	fmt.Fprintf(s.out.Writer, "TABLE %s\n", table)
	w := tabwriter.NewWriter(s.out.Writer, 0, 4, 2, ' ', 0)
	for _, c := range infos {
		pred := ""
		if c.Predicate != "" {
			pred = "<" + c.Predicate + ">"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", c.Name, c.Type, pred)
	}
	return w.Flush()
}

func (s *session) failDescribe(table string, err error) error {
	code := errorCode(err)
	exit := ExitFailure
	if code == ErrCodeGeneric && isTableNotFound(err) {
		code = string(engine.ErrCodeTableNotFound)
		exit = ExitCommandError
	}
	return s.failCode(exit, code, fmt.Errorf("describe %s: %w", table, err))
}

func columnInfos(cols []schema.Column) []ColumnInfo {
	infos := make([]ColumnInfo, len(cols))
	for i, c := range cols {
		infos[i] = ColumnInfo{Name: c.Name, Type: c.Type.String(), Predicate: c.Predicate}
	}
	return infos
}
