package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rdfsql/internal/scalar"
	"github.com/roach88/rdfsql/internal/schema"
)

// QueryResult is the JSON payload of the query command. Cells are text;
// null cells are JSON null.
type QueryResult struct {
	Query   string       `json:"query"`
	Columns []ColumnInfo `json:"columns"`
	Rows    [][]*string  `json:"rows"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <plan.yaml>",
		Short: "Run a plan and print its rows",
		Long: `Compile a YAML plan to SPARQL, run it against the model's endpoint
and print the decoded rows.

Exit codes:
  0 - Query succeeded
  1 - Query failed (endpoint, schema or decode error)
  2 - Command error (bad model, bad plan, unknown table)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(newSession(rootOpts, cmd), cmd, args[0])
		},
	}
}

func runQuery(s *session, cmd *cobra.Command, planPath string) error {
	plan, err := s.loadPlan(planPath)
	if err != nil {
		return err
	}

	eng, err := s.openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx := cmd.Context()
	node, err := eng.Build(ctx, plan)
	if err != nil {
		return s.fail(queryExit(err), err)
	}
	res, err := eng.Execute(ctx, node)
	if err != nil {
		return s.fail(queryExit(err), err)
	}
	s.out.VerboseLog("Query %s:\n%s", res.QueryID, res.Query.Text)

	if s.out.Format == "json" {
		return s.out.encode(CLIResponse{
			Status:  "ok",
			QueryID: res.QueryID,
			Data:    queryResult(res.Query.Text, res.Rows),
		})
	}
	return printRows(s.out.Writer, res.Rows)
}

// cellText renders one cell. Values that do not match the column type
// print as null.
func cellText(t scalar.Type, v any) (string, bool) {
	if v == nil || !t.Accepts(v) {
		return "null", false
	}
	return scalar.Format(t, v), true
}

// printRows writes a header of name:TYPE pairs, one line per row with
// cells separated by " | ", and a row count.
func printRows(w io.Writer, rows *schema.Rows) error {
	header := make([]string, len(rows.Columns))
	for i, c := range rows.Columns {
		header[i] = c + ":" + rows.Types[i].String()
	}
	if _, err := fmt.Fprintln(w, strings.Join(header, " | ")); err != nil {
		return err
	}

	n := 0
	for rows.Next() {
		vals := rows.Values()
		cells := make([]string, len(vals))
		for i, v := range vals {
			cells[i], _ = cellText(rows.Types[i], v)
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, " | ")); err != nil {
			return err
		}
		n++
	}
	_, err := fmt.Fprintf(w, "(%s)\n", pluralize(n, "row", "rows"))
	return err
}

func queryResult(text string, rows *schema.Rows) QueryResult {
	cols := make([]ColumnInfo, len(rows.Columns))
	for i, c := range rows.Columns {
		cols[i] = ColumnInfo{Name: c, Type: rows.Types[i].String()}
	}

	out := QueryResult{Query: text, Columns: cols, Rows: make([][]*string, 0, rows.Len())}
	for _, row := range rows.All() {
		cells := make([]*string, len(row))
		for i, v := range row {
			if s, ok := cellText(rows.Types[i], v); ok {
				cells[i] = &s
			}
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}
