// Package harness runs end-to-end scenarios through the full query
// pipeline: parse a fixture dataset, transform and optimize the block,
// execute it against a fresh embedded store, and optionally assemble a
// permission-filtered response graph. Every scenario gets its own
// in-memory database, so runs are isolated and deterministic.
package harness

import (
	"github.com/arkival/trellis/internal/assemble"
	"github.com/arkival/trellis/internal/dialect"
	"github.com/arkival/trellis/internal/permission"
	"github.com/arkival/trellis/internal/sparql"
	"github.com/arkival/trellis/internal/store"
)

// Scenario is one end-to-end case. Dataset seeds the store, Query runs
// through the transform and optimize passes before execution. When
// MainOrder is non-empty the harness additionally reads the whole graph
// back and assembles it for the principal.
type Scenario struct {
	Name string

	// Dataset is N-Triples text seeding the scenario's store.
	Dataset string

	Query sparql.SelectQuery

	// Profile defaults to the embedded built-in when zero.
	Profile dialect.Profile

	SimulateInference bool
	ExplicitOnly      bool

	// Principal is the requesting identity for the assembly stage;
	// anonymous when zero.
	Principal permission.Principal

	// MainOrder lists the main resource IRIs for assembly, in caller
	// order. Empty skips the assembly stage.
	MainOrder []string

	// PageSize bounds the assembled page; defaults to 25.
	PageSize int
}

// Result collects what the scenario produced.
type Result struct {
	// Rows is the executed SELECT solution sequence, in store order.
	Rows []store.Row

	// Graph is the assembled response, nil when the scenario named no
	// main resources.
	Graph *assemble.ResponseGraph
}
