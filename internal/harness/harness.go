package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rdfsql/internal/config"
	"github.com/roach88/rdfsql/internal/engine"
	"github.com/roach88/rdfsql/internal/scalar"
	"github.com/roach88/rdfsql/internal/triplestore"
)

// Harness runs scenarios. The zero value discards engine logs.
type Harness struct {
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger routes engine logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// New returns a harness.
func New(opts ...Option) *Harness {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default harness.
func Run(ctx context.Context, s *Scenario) (*Result, error) {
	return New().Run(ctx, s)
}

// Run executes a scenario in a fresh store and returns the result.
//
// An error is returned only when the scenario cannot be set up: the graph
// does not load or the model is invalid. Failed queries are recorded in
// the result and checked against their expectations.
func (h *Harness) Run(ctx context.Context, s *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "rdfsql-harness-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}
	defer os.RemoveAll(dir)

	dbPath := filepath.Join(dir, "graph.db")
	if err := loadGraph(ctx, dbPath, s); err != nil {
		return nil, err
	}

	model, err := scenarioModel(s, dbPath)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(s.Queries))
	for i := range s.Queries {
		ids[i] = fmt.Sprintf("%s-%d", s.Name, i+1)
	}
	eng, err := engine.Open(*model,
		engine.WithLogger(h.logger),
		engine.WithIDGenerator(engine.NewFixedGenerator(ids...)))
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	defer eng.Close()

	result := NewResult()
	for _, step := range s.Queries {
		outcome := runStep(ctx, eng, step)
		result.Queries = append(result.Queries, outcome)
		for _, msg := range checkExpect(step, outcome) {
			result.AddError(fmt.Sprintf("%s: %s", step.Name, msg))
		}
	}
	return result, nil
}

func loadGraph(ctx context.Context, path string, s *Scenario) error {
	st, err := triplestore.Open(path)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer st.Close()

	var r io.Reader
	switch {
	case s.GraphFile != "":
		f, err := os.Open(s.GraphFile)
		if err != nil {
			return fmt.Errorf("failed to read graph: %w", err)
		}
		defer f.Close()
		r = f
	case s.Graph != "":
		r = strings.NewReader(s.Graph)
	default:
		return nil
	}

	if _, err := st.Load(ctx, r); err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}
	return nil
}

// scenarioModel validates the scenario's model block as a model file
// pointing at the store in dbPath.
func scenarioModel(s *Scenario, dbPath string) (*config.Model, error) {
	raw := make(map[string]any, len(s.Model)+1)
	for k, v := range s.Model {
		raw[k] = v
	}
	raw["endpoint"] = engine.SQLitePrefix + dbPath

	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model: %w", err)
	}
	m, err := config.Parse(s.Name+".yaml", data)
	if err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}
	return m, nil
}

func runStep(ctx context.Context, eng *engine.Engine, step QueryStep) QueryOutcome {
	out := QueryOutcome{Name: step.Name}

	node, err := eng.Build(ctx, &step.Plan)
	if err != nil {
		return withError(out, err)
	}

	res, err := eng.Execute(ctx, node)
	if err != nil {
		return withError(out, err)
	}

	out.QueryID = res.QueryID
	out.Query = res.Query.Text
	out.Columns = res.Rows.Columns
	out.Types = make([]string, len(res.Rows.Types))
	for i, t := range res.Rows.Types {
		out.Types[i] = t.String()
	}
	out.Rows = make([][]string, 0, res.Rows.Len())
	for _, row := range res.Rows.All() {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = scalar.Format(res.Rows.Types[i], v)
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}

func withError(out QueryOutcome, err error) QueryOutcome {
	out.Code = string(engine.ErrorCode(err))
	out.Error = err.Error()
	return out
}
