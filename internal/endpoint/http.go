package endpoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/roach88/rdfsql/internal/rdf"
)

const resultsJSON = "application/sparql-results+json"

// HTTP is an Endpoint backed by a remote SPARQL 1.1 protocol service.
// Queries are sent as form-encoded POSTs; results are read as SPARQL JSON.
type HTTP struct {
	url    string
	client *retryablehttp.Client
	logger *slog.Logger
}

// HTTPOption configures an HTTP endpoint.
type HTTPOption func(*httpConfig)

type httpConfig struct {
	timeout  time.Duration
	retryMax int
	logger   *slog.Logger
	client   *http.Client
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *httpConfig) { c.timeout = d }
}

// WithRetryMax sets how many times a failed request is retried.
func WithRetryMax(n int) HTTPOption {
	return func(c *httpConfig) { c.retryMax = n }
}

// WithLogger sets the logger used for request and retry logging.
func WithLogger(l *slog.Logger) HTTPOption {
	return func(c *httpConfig) { c.logger = l }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *httpConfig) { c.client = hc }
}

// NewHTTP creates an endpoint for the given query URL.
func NewHTTP(endpointURL string, opts ...HTTPOption) (*HTTP, error) {
	u, err := url.Parse(endpointURL)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint url %q: scheme must be http or https", endpointURL)
	}

	cfg := httpConfig{
		timeout:  30 * time.Second,
		retryMax: 3,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.retryMax
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = cfg.logger
	if cfg.client != nil {
		hc := *cfg.client
		client.HTTPClient = &hc
	}
	client.HTTPClient.Timeout = cfg.timeout

	return &HTTP{url: endpointURL, client: client, logger: cfg.logger}, nil
}

// Query runs a SELECT query and materializes its solutions.
func (h *HTTP) Query(ctx context.Context, query string) (Cursor, error) {
	form := url.Values{"query": {query}}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, h.url, []byte(form.Encode()))
	if err != nil {
		return nil, &TransportError{Endpoint: h.url, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", resultsJSON)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: h.url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: h.url, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Endpoint:   h.url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", truncate(string(body), 200)),
		}
	}

	vars, rows, err := ParseResults(body)
	if err != nil {
		return nil, &TransportError{Endpoint: h.url, StatusCode: resp.StatusCode, Err: err}
	}
	h.logger.Debug("sparql query answered", "endpoint", h.url, "rows", len(rows))
	return NewCursor(vars, rows), nil
}

// Close releases idle connections.
func (h *HTTP) Close() error {
	h.client.HTTPClient.CloseIdleConnections()
	return nil
}

// ParseResults decodes a SPARQL 1.1 JSON results document.
func ParseResults(body []byte) ([]string, [][]rdf.Term, error) {
	if !gjson.ValidBytes(body) {
		return nil, nil, errors.New("invalid SPARQL JSON results")
	}
	doc := gjson.ParseBytes(body)
	head := doc.Get("head.vars")
	if !head.IsArray() {
		return nil, nil, errors.New("SPARQL JSON results: missing head.vars")
	}

	var vars []string
	for _, v := range head.Array() {
		vars = append(vars, v.String())
	}

	var rows [][]rdf.Term
	for _, binding := range doc.Get("results.bindings").Array() {
		values := binding.Map()
		row := make([]rdf.Term, len(vars))
		for i, name := range vars {
			value, ok := values[name]
			if !ok {
				continue
			}
			term, err := parseTerm(value)
			if err != nil {
				return nil, nil, fmt.Errorf("binding %s: %w", name, err)
			}
			row[i] = term
		}
		rows = append(rows, row)
	}
	return vars, rows, nil
}

func parseTerm(v gjson.Result) (rdf.Term, error) {
	value := v.Get("value").String()
	switch kind := v.Get("type").String(); kind {
	case "uri":
		return rdf.IRI(value), nil
	case "bnode":
		return rdf.BlankNode(value), nil
	case "literal", "typed-literal":
		if lang := v.Get("xml:lang").String(); lang != "" {
			return rdf.NewLangString(value, lang), nil
		}
		return rdf.NewLiteral(value, v.Get("datatype").String()), nil
	default:
		return nil, fmt.Errorf("unknown term type %q", kind)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
