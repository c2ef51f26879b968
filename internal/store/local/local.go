// Package local is the embedded SQLite backend of the store boundary.
//
// It executes the pattern-block fragment the Embedded dialect emits:
// statement patterns, the text-match pseudo-predicate, and single
// statement FILTER NOT EXISTS guards. Blocks outside the fragment
// (property paths, OPTIONAL, UNION, BIND, expression filters) are
// rejected; the Embedded dialect never produces them when inference
// simulation is off, which is the only supported mode for this backend.
package local

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/arkival/trellis/internal/rdf"
	"github.com/arkival/trellis/internal/sparql"
	"github.com/arkival/trellis/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Store is an embedded triple store. Uses SQLite with WAL mode for
// concurrent read access; writes are serialized on one connection.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path. Applies
// required pragmas and the schema; idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent mutation.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Insert stores triples. Duplicates are stored as-is; the engine's
// queries are set-shaped and tolerate them.
func (s *Store) Insert(ctx context.Context, triples []rdf.Triple) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert triples: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO triples (subject, predicate, object_kind, object_value, object_datatype, graph)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("insert triples: %w", err)
	}
	defer stmt.Close()

	for _, t := range triples {
		kind, value, datatype := splitObject(t.Object)
		if _, err := stmt.ExecContext(ctx, t.Subject, t.Predicate, kind, value, datatype, t.Graph); err != nil {
			return fmt.Errorf("insert triple <%s>: %w", t.Subject, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored triples.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM triples").Scan(&n); err != nil {
		return 0, fmt.Errorf("count triples: %w", err)
	}
	return n, nil
}

// Select implements store.TripleStore over the embedded fragment.
func (s *Store) Select(ctx context.Context, q sparql.SelectQuery) ([]store.Row, error) {
	c, err := compileBlock(q.Block)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, c, q.Variables, q.Limit, q.Offset)
}

// Construct implements store.TripleStore: it evaluates the block, then
// instantiates the template once per solution.
func (s *Store) Construct(ctx context.Context, q sparql.ConstructQuery) ([]rdf.Triple, error) {
	c, err := compileBlock(q.Block)
	if err != nil {
		return nil, err
	}
	rows, err := s.execute(ctx, c, nil, 0, 0)
	if err != nil {
		return nil, err
	}

	var out []rdf.Triple
	seen := map[string]bool{}
	for _, row := range rows {
		for _, tmpl := range q.Template {
			t, ok := instantiate(tmpl, row)
			if !ok {
				continue
			}
			key := rdf.FormatTriple(t)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) execute(ctx context.Context, c *compiled, projection []string, limit, offset int) ([]store.Row, error) {
	query, args := c.sql(projection, limit, offset)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &store.TimeoutError{Endpoint: "embedded", Cause: ctx.Err()}
		}
		return nil, &store.UnavailableError{Endpoint: "embedded", Cause: err}
	}
	defer rows.Close()

	names := c.projected(projection)
	var out []store.Row
	for rows.Next() {
		scan := make([]any, len(names)*3)
		for i := range scan {
			scan[i] = new(sql.NullString)
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("scan solution: %w", err)
		}
		row := store.Row{}
		for i, name := range names {
			kind := scan[i*3].(*sql.NullString).String
			value := scan[i*3+1].(*sql.NullString).String
			datatype := scan[i*3+2].(*sql.NullString).String
			if value == "" && kind == "" {
				continue
			}
			row[name] = assembleTerm(kind, value, datatype)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.UnavailableError{Endpoint: "embedded", Cause: err}
	}
	return out, nil
}

func splitObject(o rdf.Term) (kind, value, datatype string) {
	switch obj := o.(type) {
	case rdf.IRI:
		return "iri", obj.Value, ""
	case rdf.Literal:
		return "literal", obj.Lexical, obj.Datatype
	default:
		return "iri", "", ""
	}
}

func assembleTerm(kind, value, datatype string) rdf.Term {
	if kind == "literal" {
		if datatype == "" {
			datatype = rdf.XsdString
		}
		return rdf.NewLiteral(value, datatype)
	}
	return rdf.NewIRI(value)
}

func instantiate(tmpl rdf.StatementPattern, row store.Row) (rdf.Triple, bool) {
	subject, ok := groundIRI(tmpl.Subject, row)
	if !ok {
		return rdf.Triple{}, false
	}
	predicate, ok := groundIRI(tmpl.Predicate, row)
	if !ok {
		return rdf.Triple{}, false
	}
	object, ok := groundTerm(tmpl.Object, row)
	if !ok {
		return rdf.Triple{}, false
	}
	return rdf.Triple{Subject: subject, Predicate: predicate, Object: object}, true
}

func groundIRI(t rdf.Term, row store.Row) (string, bool) {
	term, ok := groundTerm(t, row)
	if !ok {
		return "", false
	}
	iri, ok := term.(rdf.IRI)
	if !ok {
		return "", false
	}
	return iri.Value, true
}

func groundTerm(t rdf.Term, row store.Row) (rdf.Term, bool) {
	switch term := t.(type) {
	case rdf.Variable:
		bound, ok := row[term.Name]
		return bound, ok
	case rdf.IRI, rdf.Literal:
		return term, true
	default:
		return nil, false
	}
}
