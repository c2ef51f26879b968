package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkival/trellis/internal/dialect"
	"github.com/arkival/trellis/internal/rdf"
)

func stmt(s, p, o rdf.Term) rdf.StatementPattern {
	return rdf.Statement(s, p, o)
}

func TestOptimize_ClassOrder(t *testing.T) {
	// fulltext < bind < anchored < other < deleted guard, regardless of
	// input order.
	deleted := stmt(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.IsDeleted), rdf.BoolLiteral(false))
	other := stmt(rdf.Variable{Name: "r"}, rdf.Variable{Name: "p"}, rdf.Variable{Name: "o"})
	anchored := stmt(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfType), rdf.NewIRI(rdf.Resource))
	bind := rdf.BindPattern{Var: rdf.Variable{Name: "n"}, Expr: rdf.Expression{Text: "1"}}
	fulltext := rdf.FullTextPattern{Subject: rdf.Variable{Name: "r"}, Object: rdf.Variable{Name: "l"}, Query: "x"}

	out := Optimize(rdf.Block(deleted, other, anchored, bind, fulltext))
	require.Len(t, out.Elements, 5)

	assert.IsType(t, rdf.FullTextPattern{}, out.Elements[0])
	assert.IsType(t, rdf.BindPattern{}, out.Elements[1])
	assert.Equal(t, anchored, out.Elements[2])
	assert.Equal(t, other, out.Elements[3])
	assert.IsType(t, rdf.FilterNotExistsPattern{}, out.Elements[4])
}

func TestOptimize_StableWithinClass(t *testing.T) {
	a := stmt(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfType), rdf.NewIRI(rdf.Resource))
	b := stmt(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.HasLinkTo), rdf.NewIRI("http://data.example.org/t"))
	c := stmt(rdf.NewIRI("http://data.example.org/s"), rdf.NewIRI(rdf.RdfsLabel), rdf.Variable{Name: "l"})

	out := Optimize(rdf.Block(a, b, c))
	assert.Equal(t, []rdf.PatternElement{a, b, c}, out.Elements)
}

func TestOptimize_Idempotent(t *testing.T) {
	block := rdf.Block(
		stmt(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.IsDeleted), rdf.BoolLiteral(false)),
		stmt(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfType), rdf.NewIRI(rdf.Resource)),
		rdf.FullTextPattern{Subject: rdf.Variable{Name: "r"}, Object: rdf.Variable{Name: "l"}, Query: "x"},
	)

	once := Optimize(block)
	twice := Optimize(once)
	assert.Equal(t, once, twice)
}

func TestOptimize_BindStaysAfterItsBinder(t *testing.T) {
	// The statement binds ?y; the Bind reads it and must not be hoisted
	// above the statement.
	binder := stmt(rdf.NewIRI("http://data.example.org/s"), rdf.NewIRI(rdf.RdfsLabel), rdf.Variable{Name: "y"})
	dependent := rdf.BindPattern{
		Var:  rdf.Variable{Name: "z"},
		Expr: rdf.Expression{Text: "?y + 1", Variables: []string{"y"}},
	}

	out := Optimize(rdf.Block(binder, dependent))
	require.Len(t, out.Elements, 2)
	assert.Equal(t, binder, out.Elements[0])
	assert.Equal(t, dependent, out.Elements[1])
}

func TestOptimize_BindDependencyChains(t *testing.T) {
	binder := stmt(rdf.Variable{Name: "r"}, rdf.Variable{Name: "p"}, rdf.Variable{Name: "y"})
	first := rdf.BindPattern{
		Var:  rdf.Variable{Name: "z"},
		Expr: rdf.Expression{Text: "STR(?y)", Variables: []string{"y"}},
	}
	second := rdf.BindPattern{
		Var:  rdf.Variable{Name: "w"},
		Expr: rdf.Expression{Text: "UCASE(?z)", Variables: []string{"z"}},
	}
	free := rdf.BindPattern{Var: rdf.Variable{Name: "n"}, Expr: rdf.Expression{Text: "1"}}

	out := Optimize(rdf.Block(binder, first, second, free))
	require.Len(t, out.Elements, 4)

	// Only the dependency-free Bind is hoisted; the chain keeps its
	// order behind the binding statement.
	assert.Equal(t, free, out.Elements[0])
	assert.Equal(t, binder, out.Elements[1])
	assert.Equal(t, first, out.Elements[2])
	assert.Equal(t, second, out.Elements[3])
}

func TestOptimize_BindAfterOptionalBinder(t *testing.T) {
	opt := rdf.OptionalPattern{Block: rdf.Block(
		stmt(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfsLabel), rdf.Variable{Name: "label"}),
	)}
	dependent := rdf.BindPattern{
		Var:  rdf.Variable{Name: "z"},
		Expr: rdf.Expression{Text: "COALESCE(?label, \"\")", Variables: []string{"label"}},
	}

	out := Optimize(rdf.Block(opt, dependent))
	require.Len(t, out.Elements, 2)
	assert.IsType(t, rdf.OptionalPattern{}, out.Elements[0])
	assert.Equal(t, dependent, out.Elements[1])
}

func TestOptimize_TextIndexInvocationRanksAsFullText(t *testing.T) {
	invocation := stmt(rdf.Variable{Name: "r"}, rdf.NewIRI(dialect.LuceneTextIndex), rdf.StringLiteral("x"))
	anchored := stmt(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfType), rdf.NewIRI(rdf.Resource))

	out := Optimize(rdf.Block(anchored, invocation))
	assert.Equal(t, invocation, out.Elements[0])
	assert.Equal(t, anchored, out.Elements[1])
}

func TestOptimize_DeletedFlagRewrite(t *testing.T) {
	subject := rdf.Variable{Name: "r"}

	// isDeleted false becomes a not-exists guard over isDeleted true.
	out := Optimize(rdf.Block(stmt(subject, rdf.NewIRI(rdf.IsDeleted), rdf.BoolLiteral(false))))
	require.Len(t, out.Elements, 1)
	guard, ok := out.Elements[0].(rdf.FilterNotExistsPattern)
	require.True(t, ok)
	require.Len(t, guard.Block.Elements, 1)
	inner := guard.Block.Elements[0].(rdf.StatementPattern)
	assert.True(t, rdf.TermEqual(inner.Object, rdf.BoolLiteral(true)))

	// An unbound flag variable gets the same guard.
	out = Optimize(rdf.Block(stmt(subject, rdf.NewIRI(rdf.IsDeleted), rdf.Variable{Name: "d"})))
	_, ok = out.Elements[0].(rdf.FilterNotExistsPattern)
	assert.True(t, ok)

	// Asking for deleted entities explicitly is left alone.
	explicit := stmt(subject, rdf.NewIRI(rdf.IsDeleted), rdf.BoolLiteral(true))
	out = Optimize(rdf.Block(explicit))
	assert.Equal(t, explicit, out.Elements[0])
}

func TestOptimize_RecursesWithoutCrossingBoundaries(t *testing.T) {
	innerDeleted := stmt(rdf.Variable{Name: "v"}, rdf.NewIRI(rdf.IsDeleted), rdf.BoolLiteral(false))
	innerAnchored := stmt(rdf.Variable{Name: "v"}, rdf.NewIRI(rdf.RdfType), rdf.NewIRI(rdf.LinkValue))
	opt := rdf.OptionalPattern{Block: rdf.Block(innerDeleted, innerAnchored)}
	outer := stmt(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfType), rdf.NewIRI(rdf.Resource))

	out := Optimize(rdf.Block(opt, outer))
	require.Len(t, out.Elements, 2)

	// Outer anchored statement sorts before the optional, and the
	// optional's contents were reordered in place.
	assert.Equal(t, outer, out.Elements[0])
	reordered, ok := out.Elements[1].(rdf.OptionalPattern)
	require.True(t, ok)
	assert.Equal(t, innerAnchored, reordered.Block.Elements[0])
	_, ok = reordered.Block.Elements[1].(rdf.FilterNotExistsPattern)
	assert.True(t, ok)
}

func TestOptimize_DoesNotMutateInput(t *testing.T) {
	deleted := stmt(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.IsDeleted), rdf.BoolLiteral(false))
	anchored := stmt(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.RdfType), rdf.NewIRI(rdf.Resource))
	block := rdf.Block(deleted, anchored)

	Optimize(block)
	assert.Equal(t, deleted, block.Elements[0])
	assert.Equal(t, anchored, block.Elements[1])
}
