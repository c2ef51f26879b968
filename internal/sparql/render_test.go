package sparql

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkival/trellis/internal/rdf"
)

func golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRenderSelect_Basic(t *testing.T) {
	q := SelectQuery{
		Variables: []string{"r", "label"},
		Distinct:  true,
		Block: rdf.Block(
			rdf.Statement(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfType), rdf.NewIRI(rdf.Resource)),
			rdf.Statement(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfsLabel), rdf.Variable{Name: "label"}),
		),
		OrderBy: []string{"r"},
		Limit:   25,
		Offset:  50,
	}

	text, err := RenderSelect(q)
	require.NoError(t, err)
	golden(t).Assert(t, "select_basic", []byte(text))
}

func TestRenderSelect_Nested(t *testing.T) {
	q := SelectQuery{
		Variables:    []string{"r"},
		DefaultGraph: "http://www.ontotext.com/explicit",
		Block: rdf.Block(
			rdf.Statement(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfType), rdf.NewIRI(rdf.Resource)),
			rdf.BindPattern{Var: rdf.Variable{Name: "n"}, Expr: rdf.Expression{Text: "STRLEN(?label)", Variables: []string{"label"}}},
			rdf.FilterPattern{Expr: rdf.Expression{Text: "?n > 3", Variables: []string{"n"}}},
			rdf.OptionalPattern{Block: rdf.Block(
				rdf.Statement(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfsLabel), rdf.Variable{Name: "label"}).
					InGraph(rdf.NewIRI("http://example.org/g")),
			)},
			rdf.UnionPattern{
				Left: rdf.Block(
					rdf.Statement(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.HasLinkTo), rdf.Variable{Name: "o"}),
				),
				Right: rdf.Block(
					rdf.Statement(rdf.Variable{Name: "tv"}, rdf.NewIRI(rdf.RdfsSubClassOf).WithPath(rdf.PathZeroOrMore), rdf.NewIRI(rdf.Resource)),
				),
			},
			rdf.FilterNotExistsPattern{Block: rdf.Block(
				rdf.Statement(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.IsDeleted), rdf.BoolLiteral(true)),
			)},
		),
	}

	text, err := RenderSelect(q)
	require.NoError(t, err)
	golden(t).Assert(t, "select_nested", []byte(text))
}

func TestRenderSelect_StarProjection(t *testing.T) {
	q := SelectQuery{
		Block: rdf.Block(
			rdf.Statement(rdf.Variable{Name: "s"}, rdf.Variable{Name: "p"}, rdf.Variable{Name: "o"}),
		),
	}

	text, err := RenderSelect(q)
	require.NoError(t, err)
	golden(t).Assert(t, "select_star", []byte(text))
}

func TestRenderConstruct(t *testing.T) {
	q := ConstructQuery{
		Template: []rdf.StatementPattern{
			rdf.Statement(rdf.Variable{Name: "r"}, rdf.Variable{Name: "p"}, rdf.Variable{Name: "o"}),
		},
		Block: rdf.Block(
			rdf.Statement(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfType), rdf.NewIRI(rdf.Resource)),
			rdf.Statement(rdf.Variable{Name: "r"}, rdf.Variable{Name: "p"}, rdf.Variable{Name: "o"}),
		),
	}

	text, err := RenderConstruct(q)
	require.NoError(t, err)
	golden(t).Assert(t, "construct", []byte(text))
}

func TestRenderSelect_Deterministic(t *testing.T) {
	q := SelectQuery{
		Variables: []string{"r"},
		Block: rdf.Block(
			rdf.Statement(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfType), rdf.NewIRI(rdf.Resource)),
		),
	}

	first, err := RenderSelect(q)
	require.NoError(t, err)
	second, err := RenderSelect(q)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderSelect_RejectsResidualFullText(t *testing.T) {
	q := SelectQuery{
		Variables: []string{"r"},
		Block: rdf.Block(rdf.FullTextPattern{
			Subject: rdf.Variable{Name: "r"},
			Object:  rdf.Variable{Name: "l"},
			Query:   "mountain",
		}),
	}

	_, err := RenderSelect(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full-text")
}
