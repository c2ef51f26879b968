package harness

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arkival/trellis/internal/assemble"
)

// RequireMain returns the assembled main resource with the given IRI,
// failing the test when it was redacted or never matched.
func RequireMain(t *testing.T, g *assemble.ResponseGraph, iri string) *assemble.ResourceNode {
	t.Helper()
	require.NotNil(t, g)
	for _, main := range g.Mains {
		if main.IRI == iri {
			return main
		}
	}
	require.Failf(t, "main resource missing", "no assembled main with IRI %s", iri)
	return nil
}

// RequireValues returns the resource's values under a property, failing
// when the count differs.
func RequireValues(t *testing.T, res *assemble.ResourceNode, property string, count int) []*assemble.ValueNode {
	t.Helper()
	values := res.Values[property]
	require.Lenf(t, values, count, "values of %s on %s", property, res.IRI)
	return values
}
