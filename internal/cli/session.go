package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/rdfsql/internal/config"
	"github.com/roach88/rdfsql/internal/engine"
	"github.com/roach88/rdfsql/internal/planfile"
)

// Error codes for failures that are not model or query errors.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeEndpoint    = "E008" // Endpoint could not be opened or used
	ErrCodePlan        = "E301" // Plan file unreadable or malformed
)

// session is one command's view of the model: its output formatter and,
// once opened, its engine.
type session struct {
	opts   *RootOptions
	out    *OutputFormatter
	logger *slog.Logger
	model  *config.Model
}

func newSession(opts *RootOptions, cmd *cobra.Command) *session {
	return &session{
		opts: opts,
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
		logger: newLogger(cmd.ErrOrStderr(), opts.Verbose),
	}
}

// newLogger logs warnings and errors to w, and debug output too when
// verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadModel reads the --model file.
func (s *session) loadModel() (*config.Model, error) {
	if s.model != nil {
		return s.model, nil
	}
	m, err := config.Load(s.opts.Model)
	if err != nil {
		return nil, s.fail(ExitCommandError, err)
	}
	s.out.VerboseLog("Loaded model %s (endpoint %s, %s tables)", s.opts.Model, m.Endpoint, m.TableMode)
	s.model = m
	return m, nil
}

// openEngine loads the model and connects to its endpoint.
func (s *session) openEngine() (*engine.Engine, error) {
	m, err := s.loadModel()
	if err != nil {
		return nil, err
	}
	eng, err := engine.Open(*m, engine.WithLogger(s.logger))
	if err != nil {
		return nil, s.failCode(ExitCommandError, ErrCodeEndpoint, err)
	}
	return eng, nil
}

func (s *session) loadPlan(path string) (*planfile.Plan, error) {
	p, err := planfile.Load(path)
	if err != nil {
		return nil, s.failCode(ExitCommandError, ErrCodePlan, err)
	}
	return p, nil
}

// fail reports err with the code its type carries and returns the
// ExitError the command should return.
func (s *session) fail(exit int, err error) error {
	return s.failCode(exit, errorCode(err), err)
}

func (s *session) failCode(exit int, code string, err error) error {
	_ = s.out.Error(code, err.Error(), nil)
	return WrapExitError(exit, code, err)
}

// errorCode picks the most specific code err carries.
func errorCode(err error) string {
	if code := config.ErrorCode(err); code != "" {
		return code
	}
	if code := engine.ErrorCode(err); code != "" {
		return string(code)
	}
	return ErrCodeGeneric
}

// queryExit maps a query error to an exit code: malformed plans are
// command errors, everything else is a query failure.
func queryExit(err error) int {
	var qe *engine.QueryError
	if errors.As(err, &qe) {
		switch qe.Code {
		case engine.ErrCodeInvalidPlan, engine.ErrCodeTableNotFound:
			return ExitCommandError
		}
	}
	return ExitFailure
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
