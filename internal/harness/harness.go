package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/arkival/trellis/internal/assemble"
	"github.com/arkival/trellis/internal/dialect"
	"github.com/arkival/trellis/internal/optimize"
	"github.com/arkival/trellis/internal/rdf"
	"github.com/arkival/trellis/internal/sparql"
	"github.com/arkival/trellis/internal/store/local"
)

// Run executes the scenario: seed a fresh in-memory store, push the
// query through validation, transformation, and optimization, execute
// it, and assemble the graph when main resources are named.
func Run(ctx context.Context, sc Scenario) (*Result, error) {
	triples, err := rdf.ParseNTriples(strings.NewReader(sc.Dataset))
	if err != nil {
		return nil, fmt.Errorf("scenario %s dataset: %w", sc.Name, err)
	}

	s, err := local.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	defer s.Close()

	if err := s.Insert(ctx, triples); err != nil {
		return nil, fmt.Errorf("scenario %s seed: %w", sc.Name, err)
	}

	q, err := prepare(sc)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	rows, err := s.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("scenario %s execute: %w", sc.Name, err)
	}

	result := &Result{Rows: rows}
	if len(sc.MainOrder) > 0 {
		graph, err := assembleGraph(ctx, s, sc)
		if err != nil {
			return nil, fmt.Errorf("scenario %s assemble: %w", sc.Name, err)
		}
		result.Graph = graph
	}
	return result, nil
}

func prepare(sc Scenario) (sparql.SelectQuery, error) {
	profile := sc.Profile
	if profile.Name == "" {
		builtin, err := dialect.BuiltIn("embedded")
		if err != nil {
			return sparql.SelectQuery{}, err
		}
		profile = builtin
	}

	if err := rdf.ValidateBlock(sc.Query.Block); err != nil {
		return sparql.SelectQuery{}, err
	}
	transformed, err := dialect.Transform(sc.Query.Block, profile, dialect.Options{
		SimulateInference: sc.SimulateInference,
		ExplicitOnly:      sc.ExplicitOnly,
	})
	if err != nil {
		return sparql.SelectQuery{}, err
	}

	q := sc.Query
	q.Block = optimize.Optimize(transformed.Block)
	q.DefaultGraph = transformed.DefaultGraph
	return q, nil
}

// assembleGraph reads the scenario's whole dataset back through the
// store boundary and assembles it for the principal.
func assembleGraph(ctx context.Context, s *local.Store, sc Scenario) (*assemble.ResponseGraph, error) {
	all := rdf.Statement(
		rdf.Variable{Name: "s"},
		rdf.Variable{Name: "p"},
		rdf.Variable{Name: "o"},
	)
	triples, err := s.Construct(ctx, sparql.ConstructQuery{
		Template: []rdf.StatementPattern{all},
		Block:    rdf.Block(all),
	})
	if err != nil {
		return nil, err
	}

	pageSize := sc.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	return assemble.Assemble(triples, sc.MainOrder, pageSize, sc.Principal, assemble.Options{}), nil
}
