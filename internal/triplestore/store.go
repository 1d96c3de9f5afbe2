package triplestore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/rdfsql/internal/endpoint"
	"github.com/roach88/rdfsql/internal/rdf"
)

//go:embed schema.sql
var schemaSQL string

// Term kinds stored in the s_kind and o_kind columns.
const (
	kindIRI     = 0
	kindBlank   = 1
	kindLiteral = 2
)

// Quad is a triple in a graph. An empty Graph is the default graph.
type Quad struct {
	Graph rdf.IRI
	S     rdf.Term
	P     rdf.IRI
	O     rdf.Term
}

// Store is a SQLite-backed quad store that answers SPARQL SELECT queries.
// It implements endpoint.Endpoint.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ endpoint.Endpoint = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for query tracing.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open creates or opens a store at path. Use ":memory:" for a
// private in-memory store.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A single connection keeps ":memory:" databases alive and avoids
	// SQLITE_BUSY between writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	s := &Store{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add inserts quads, ignoring duplicates. It returns the number of new quads.
func (s *Store) Add(ctx context.Context, quads ...Quad) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO quads (g, s, s_kind, p, o, o_kind, o_datatype, o_lang)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	for i, q := range quads {
		if q.P == "" {
			return 0, fmt.Errorf("quad %d: empty predicate", i)
		}
		sv, sk, _, _, err := encodeTerm(q.S)
		if err != nil {
			return 0, fmt.Errorf("quad %d subject: %w", i, err)
		}
		if sk == kindLiteral {
			return 0, fmt.Errorf("quad %d: literal subject %s", i, q.S)
		}
		ov, ok, odt, olang, err := encodeTerm(q.O)
		if err != nil {
			return 0, fmt.Errorf("quad %d object: %w", i, err)
		}
		res, err := stmt.ExecContext(ctx, string(q.Graph), sv, sk, string(q.P), ov, ok, odt, olang)
		if err != nil {
			return 0, fmt.Errorf("failed to insert quad %d: %w", i, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read rows affected: %w", err)
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return added, nil
}

// Len returns the number of stored quads.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM quads").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count quads: %w", err)
	}
	return n, nil
}

// Query parses and evaluates a SPARQL SELECT query.
func (s *Store) Query(ctx context.Context, query string) (endpoint.Cursor, error) {
	q, err := parseQuery(query)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("evaluating query", "query", query)

	ev := &evaluator{db: s.db}
	vars, rows, err := ev.run(ctx, q)
	if err != nil {
		return nil, err
	}
	return endpoint.NewCursor(vars, rows), nil
}

// encodeTerm returns the stored value, kind, datatype and language of a term.
func encodeTerm(t rdf.Term) (string, int, string, string, error) {
	switch v := t.(type) {
	case rdf.IRI:
		return string(v), kindIRI, "", "", nil
	case rdf.BlankNode:
		return string(v), kindBlank, "", "", nil
	case rdf.Literal:
		dt := v.Datatype
		if dt == rdf.XSDString || v.Lang != "" {
			dt = ""
		}
		return v.Lexical, kindLiteral, dt, v.Lang, nil
	case nil:
		return "", 0, "", "", fmt.Errorf("missing term")
	default:
		return "", 0, "", "", fmt.Errorf("unsupported term %T", t)
	}
}

// decodeTerm rebuilds a term from its stored columns.
func decodeTerm(value string, kind int, datatype, lang string) rdf.Term {
	switch kind {
	case kindIRI:
		return rdf.IRI(value)
	case kindBlank:
		return rdf.BlankNode(value)
	default:
		if lang != "" {
			return rdf.NewLangString(value, lang)
		}
		return rdf.NewLiteral(value, datatype)
	}
}
