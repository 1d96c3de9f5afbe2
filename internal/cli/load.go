package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rdfsql/internal/engine"
	"github.com/roach88/rdfsql/internal/triplestore"
)

// LoadResult is the JSON payload of the load command.
type LoadResult struct {
	Files []LoadedFile `json:"files"`
	Added int          `json:"added"`
	Total int          `json:"total"`
}

// LoadedFile reports one loaded file.
type LoadedFile struct {
	Path  string `json:"path"`
	Added int    `json:"added"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file.nq>...",
		Short: "Load N-Triples or N-Quads into the local store",
		Long: `Load N-Triples or N-Quads files into the model's local store.

The model's endpoint must be a sqlite: store. Quads already present are
skipped.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(newSession(rootOpts, cmd), cmd, args)
		},
	}
}

func runLoad(s *session, cmd *cobra.Command, files []string) error {
	m, err := s.loadModel()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(m.Endpoint, engine.SQLitePrefix) {
		return s.failCode(ExitCommandError, ErrCodeEndpoint,
			fmt.Errorf("load requires a %s endpoint, model uses %s", engine.SQLitePrefix, m.Endpoint))
	}

	st, err := triplestore.Open(strings.TrimPrefix(m.Endpoint, engine.SQLitePrefix), triplestore.WithLogger(s.logger))
	if err != nil {
		return s.failCode(ExitCommandError, ErrCodeEndpoint, err)
	}
	defer st.Close()

	ctx := cmd.Context()
	result := LoadResult{Files: make([]LoadedFile, 0, len(files))}
	for _, path := range files {
		n, err := loadFile(ctx, st, path)
		if err != nil {
			return s.failCode(ExitCommandError, ErrCodeNotFound, err)
		}
		s.out.VerboseLog("Loaded %s from %s", pluralize(n, "quad", "quads"), path)
		result.Files = append(result.Files, LoadedFile{Path: path, Added: n})
		result.Added += n
	}

	total, err := st.Len(ctx)
	if err != nil {
		return s.failCode(ExitFailure, ErrCodeEndpoint, err)
	}
	result.Total = total

	if s.out.Format == "json" {
		return s.out.Success(result)
	}
	fmt.Fprintf(s.out.Writer, "✓ Loaded %s from %s (%d in store)\n",
		pluralize(result.Added, "quad", "quads"),
		pluralize(len(files), "file", "files"),
		result.Total)
	return nil
}

func loadFile(ctx context.Context, st *triplestore.Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := st.Load(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}
