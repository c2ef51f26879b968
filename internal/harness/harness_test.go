package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkival/trellis/internal/permission"
	"github.com/arkival/trellis/internal/rdf"
	"github.com/arkival/trellis/internal/sparql"
)

const labeledDataset = `
<http://ex.org/a> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.knora.org/ontology/knora-base#Resource> .
<http://ex.org/a> <http://www.w3.org/2000/01/rdf-schema#label> "alpha" .
<http://ex.org/b> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.knora.org/ontology/knora-base#Resource> .
<http://ex.org/b> <http://www.w3.org/2000/01/rdf-schema#label> "beta" .
<http://ex.org/c> <http://www.w3.org/2000/01/rdf-schema#label> "gamma" .
`

func TestRun_SelectLabels(t *testing.T) {
	result, err := Run(context.Background(), Scenario{
		Name:    "select-labels",
		Dataset: labeledDataset,
		Query: sparql.SelectQuery{
			Variables: []string{"r", "label"},
			Block: rdf.Block(
				rdf.Statement(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfType), rdf.NewIRI(rdf.Resource)),
				rdf.Statement(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfsLabel), rdf.Variable{Name: "label"}),
			),
		},
	})
	require.NoError(t, err)
	CompareTrace(t, "select_labels", result)
}

func TestRun_DeletedFlagGuard(t *testing.T) {
	dataset := labeledDataset +
		`<http://ex.org/b> <http://www.knora.org/ontology/knora-base#isDeleted> "true"^^<http://www.w3.org/2001/XMLSchema#boolean> .` + "\n"

	// Asking for isDeleted=false must also match entities carrying no
	// flag at all, so http://ex.org/a still qualifies.
	result, err := Run(context.Background(), Scenario{
		Name:    "deleted-guard",
		Dataset: dataset,
		Query: sparql.SelectQuery{
			Variables: []string{"r"},
			Block: rdf.Block(
				rdf.Statement(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfType), rdf.NewIRI(rdf.Resource)),
				rdf.Statement(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.IsDeleted), rdf.BoolLiteral(false)),
			),
		},
	})
	require.NoError(t, err)
	CompareTrace(t, "deleted_guard", result)
}

const permissionedDataset = `
<http://ex.org/r1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.knora.org/ontology/knora-base#Resource> .
<http://ex.org/r1> <http://www.w3.org/2000/01/rdf-schema#label> "First thing" .
<http://ex.org/r1> <http://www.knora.org/ontology/knora-base#attachedToUser> <http://ex.org/users/alice> .
<http://ex.org/r1> <http://www.knora.org/ontology/knora-base#attachedToProject> <http://ex.org/projects/0001> .
<http://ex.org/r1> <http://www.knora.org/ontology/knora-base#hasPermissions> "CR knora-admin:Creator|V knora-admin:KnownUser" .
<http://ex.org/r1> <http://onto.example.org/v2#hasComment> <http://ex.org/r1/values/v1> .
<http://ex.org/r1/values/v1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.knora.org/ontology/knora-base#TextValue> .
<http://ex.org/r1/values/v1> <http://www.knora.org/ontology/knora-base#attachedToUser> <http://ex.org/users/alice> .
<http://ex.org/r1/values/v1> <http://www.knora.org/ontology/knora-base#hasPermissions> "CR knora-admin:Creator" .
<http://ex.org/r1/values/v1> <http://www.knora.org/ontology/knora-base#valueHasString> "private note" .
<http://ex.org/r1> <http://onto.example.org/v2#hasComment> <http://ex.org/r1/values/v2> .
<http://ex.org/r1/values/v2> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.knora.org/ontology/knora-base#TextValue> .
<http://ex.org/r1/values/v2> <http://www.knora.org/ontology/knora-base#attachedToUser> <http://ex.org/users/alice> .
<http://ex.org/r1/values/v2> <http://www.knora.org/ontology/knora-base#hasPermissions> "CR knora-admin:Creator|V knora-admin:KnownUser" .
<http://ex.org/r1/values/v2> <http://www.knora.org/ontology/knora-base#valueHasString> "public note" .
`

func TestRun_AssemblesGraphForPrincipal(t *testing.T) {
	const hasComment = "http://onto.example.org/v2#hasComment"

	sc := Scenario{
		Name:    "assemble",
		Dataset: permissionedDataset,
		Query: sparql.SelectQuery{
			Variables: []string{"r"},
			Block: rdf.Block(
				rdf.Statement(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfType), rdf.NewIRI(rdf.Resource)),
			),
		},
		MainOrder: []string{"http://ex.org/r1"},
		Principal: permission.Principal{UserIRI: "http://ex.org/users/bob", Authenticated: true},
	}

	result, err := Run(context.Background(), sc)
	require.NoError(t, err)
	require.NotNil(t, result.Graph)

	// A known non-creator sees the resource but only the public value.
	res := RequireMain(t, result.Graph, "http://ex.org/r1")
	assert.Equal(t, permission.View, res.UserPermission)
	values := RequireValues(t, res, hasComment, 1)
	assert.Equal(t, "http://ex.org/r1/values/v2", values[0].IRI)
	assert.Equal(t, 1, result.Graph.RedactedValues)

	// The creator sees both values.
	sc.Principal = permission.Principal{UserIRI: "http://ex.org/users/alice", Authenticated: true}
	result, err = Run(context.Background(), sc)
	require.NoError(t, err)
	res = RequireMain(t, result.Graph, "http://ex.org/r1")
	RequireValues(t, res, hasComment, 2)
}

func TestRun_MalformedDataset(t *testing.T) {
	_, err := Run(context.Background(), Scenario{
		Name:    "bad",
		Dataset: "<http://ex.org/a> <http://ex.org/p>\n",
		Query: sparql.SelectQuery{
			Variables: []string{"r"},
			Block: rdf.Block(
				rdf.Statement(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfType), rdf.NewIRI(rdf.Resource)),
			),
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset")
}

func TestTrace_EmptyResult(t *testing.T) {
	assert.Equal(t, "no rows\n", Trace(&Result{}))
}
