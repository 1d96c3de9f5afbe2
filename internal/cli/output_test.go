package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rdfsql/internal/scalar"
	"github.com/roach88/rdfsql/internal/schema"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"query": "SELECT ?s <http://x>"}))

	assert.Contains(t, buf.String(), "<http://x>")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("E001", "query failed", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E001", resp.Error.Code)
	assert.Equal(t, "query failed", resp.Error.Message)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, formatter.Error("E301", "bad plan", "line 3"))
	assert.Equal(t, "Error [E301]: bad plan\nDetails: line 3\n", buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	quiet := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut}
	quiet.VerboseLog("hidden %d", 1)
	assert.Empty(t, errOut.String())

	loud := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}
	loud.VerboseLog("shown %d", 2)
	assert.Equal(t, "shown 2\n", errOut.String())
	assert.Empty(t, out.String())
}

func TestExitError(t *testing.T) {
	cause := errors.New("boom")
	err := WrapExitError(ExitCommandError, "E008", cause)

	assert.Equal(t, "E008: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ExitFailure, GetExitCode(cause))
	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())
}

func TestPrintRows_NullOnMismatch(t *testing.T) {
	rows := schema.NewRows(
		[]string{"s", "o"},
		[]scalar.Type{scalar.String, scalar.BigInt},
		[][]any{
			{"http://ex.org/a", int64(7)},
			{"http://ex.org/b", "seven"},
			{"http://ex.org/c", nil},
		},
	)

	buf := &bytes.Buffer{}
	require.NoError(t, printRows(buf, rows))
	assert.Equal(t, `s:VARCHAR | o:BIGINT
http://ex.org/a | 7
http://ex.org/b | null
http://ex.org/c | null
(3 rows)
`, buf.String())
}

func TestQueryResult_NullCells(t *testing.T) {
	rows := schema.NewRows(
		[]string{"o"},
		[]scalar.Type{scalar.Bool},
		[][]any{{true}, {"yes"}},
	)

	res := queryResult("SELECT ?o", rows)
	require.Len(t, res.Rows, 2)
	require.NotNil(t, res.Rows[0][0])
	assert.Equal(t, "true", *res.Rows[0][0])
	assert.Nil(t, res.Rows[1][0])
	assert.Equal(t, []ColumnInfo{{Name: "o", Type: "BOOLEAN"}}, res.Columns)
}
