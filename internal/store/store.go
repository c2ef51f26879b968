// Package store defines the store-access boundary: the collaborator that
// executes a final, dialect-specific query and returns rows or triples.
//
// Two backends implement it: sparqlhttp speaks the SPARQL 1.1 protocol
// to an external endpoint, local executes the pattern-block fragment on
// an embedded SQLite database.
//
// Failure surface is deliberately narrow: a store reports either a
// timeout or unavailability. Both are retryable by the caller; this
// engine never retries internally, since query execution is not
// guaranteed idempotent at the store layer for write paths.
package store

import (
	"context"

	"github.com/arkival/trellis/internal/rdf"
	"github.com/arkival/trellis/internal/sparql"
)

// Row is one SELECT solution: variable name to bound term.
type Row map[string]rdf.Term

// TripleStore executes finished queries. Implementations must be safe
// for concurrent use by independent requests.
type TripleStore interface {
	// Select executes a SELECT query and returns its solutions.
	Select(ctx context.Context, q sparql.SelectQuery) ([]Row, error)

	// Construct executes a CONSTRUCT query and returns the flat triple
	// set for graph assembly.
	Construct(ctx context.Context, q sparql.ConstructQuery) ([]rdf.Triple, error)
}
