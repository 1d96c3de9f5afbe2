package testutil

import (
	"context"
	"sync"

	"github.com/roach88/rdfsql/internal/endpoint"
)

// CountingEndpoint wraps an endpoint and records every query sent to it.
//
// Thread-safety: all methods are safe for concurrent use.
type CountingEndpoint struct {
	endpoint.Endpoint

	mu      sync.Mutex
	queries []string
}

// NewCountingEndpoint wraps ep.
func NewCountingEndpoint(ep endpoint.Endpoint) *CountingEndpoint {
	return &CountingEndpoint{Endpoint: ep}
}

// Query records the query and forwards it.
func (c *CountingEndpoint) Query(ctx context.Context, query string) (endpoint.Cursor, error) {
	c.mu.Lock()
	c.queries = append(c.queries, query)
	c.mu.Unlock()
	return c.Endpoint.Query(ctx, query)
}

// Count returns the number of queries sent so far.
func (c *CountingEndpoint) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queries)
}

// Queries returns a copy of the recorded queries in send order.
func (c *CountingEndpoint) Queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

// Reset forgets recorded queries.
func (c *CountingEndpoint) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = nil
}
