package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/rdfsql/internal/config"
	"github.com/roach88/rdfsql/internal/endpoint"
	"github.com/roach88/rdfsql/internal/schema"
	"github.com/roach88/rdfsql/internal/triplestore"
)

// SQLitePrefix marks a local triple store endpoint.
const SQLitePrefix = "sqlite:"

// OpenEndpoint connects to the endpoint a model names.
func OpenEndpoint(m config.Model, logger *slog.Logger) (endpoint.Endpoint, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch {
	case strings.HasPrefix(m.Endpoint, "http://"), strings.HasPrefix(m.Endpoint, "https://"):
		timeout, err := m.TimeoutDuration()
		if err != nil {
			return nil, err
		}
		opts := []endpoint.HTTPOption{
			endpoint.WithRetryMax(m.RetryMax),
			endpoint.WithLogger(logger),
		}
		if timeout > 0 {
			opts = append(opts, endpoint.WithTimeout(timeout))
		}
		return endpoint.NewHTTP(m.Endpoint, opts...)

	case strings.HasPrefix(m.Endpoint, SQLitePrefix):
		path := strings.TrimPrefix(m.Endpoint, SQLitePrefix)
		if path == "" {
			return nil, fmt.Errorf("endpoint %q: missing database path", m.Endpoint)
		}
		return triplestore.Open(path, triplestore.WithLogger(logger))

	default:
		return nil, fmt.Errorf("endpoint %q: unsupported scheme", m.Endpoint)
	}
}

// Open validates m, connects to its endpoint and returns an engine over
// the resulting schema. Tables are enumerated lazily.
func Open(m config.Model, opts ...Option) (*Engine, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	cfg, err := m.SchemaConfig()
	if err != nil {
		return nil, err
	}

	e := New(nil, opts...)
	ep, err := OpenEndpoint(m, e.logger)
	if err != nil {
		return nil, fmt.Errorf("open endpoint: %w", err)
	}
	e.schema = schema.New(ep, cfg, schema.WithLogger(e.logger))

	e.logger.Debug("engine opened",
		"endpoint", m.Endpoint,
		"table_mode", m.TableMode)
	return e, nil
}
