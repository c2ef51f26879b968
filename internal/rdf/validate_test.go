package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBlock_WellFormed(t *testing.T) {
	block := Block(
		Statement(Variable{Name: "r"}, NewIRI(RdfType), NewIRI(Resource)),
		FilterPattern{Expr: Expression{Text: "?n > 3", Variables: []string{"n"}}},
		BindPattern{Var: Variable{Name: "n"}, Expr: Expression{Text: "STRLEN(?l)", Variables: []string{"l"}}},
		OptionalPattern{Block: Block(
			Statement(Variable{Name: "r"}, NewIRI(RdfsLabel), Variable{Name: "l"}),
		)},
	)

	assert.NoError(t, ValidateBlock(block))
}

func TestValidateBlock_NilTerm(t *testing.T) {
	block := Block(StatementPattern{Subject: Variable{Name: "r"}, Predicate: NewIRI(RdfType)})

	err := ValidateBlock(block)
	require.Error(t, err)
	assert.True(t, IsMalformedQuery(err))
	assert.Contains(t, err.Error(), "nil term")
}

func TestValidateBlock_LiteralSubject(t *testing.T) {
	block := Block(Statement(StringLiteral("nope"), NewIRI(RdfType), NewIRI(Resource)))

	err := ValidateBlock(block)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "literal in subject position")
}

func TestValidateBlock_LiteralPredicate(t *testing.T) {
	block := Block(Statement(Variable{Name: "r"}, StringLiteral("nope"), NewIRI(Resource)))

	err := ValidateBlock(block)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "literal in predicate position")
}

func TestValidateBlock_BindRebind(t *testing.T) {
	block := Block(
		Statement(Variable{Name: "r"}, NewIRI(RdfsLabel), Variable{Name: "l"}),
		BindPattern{Var: Variable{Name: "l"}, Expr: Expression{Text: "UCASE(?l)"}},
	)

	err := ValidateBlock(block)
	require.Error(t, err)
	assert.True(t, IsMalformedQuery(err))
	assert.Contains(t, err.Error(), "rebinds")
}

func TestValidateBlock_BindInSiblingScopesAllowed(t *testing.T) {
	// The same variable may be bound in both union branches; neither
	// branch sees the other's bindings.
	block := Block(UnionPattern{
		Left: Block(
			BindPattern{Var: Variable{Name: "x"}, Expr: Expression{Text: "1"}},
		),
		Right: Block(
			BindPattern{Var: Variable{Name: "x"}, Expr: Expression{Text: "2"}},
		),
	})

	assert.NoError(t, ValidateBlock(block))
}

func TestValidateBlock_EmptyFullTextQuery(t *testing.T) {
	block := Block(FullTextPattern{
		Subject: Variable{Name: "r"},
		Object:  Variable{Name: "l"},
		Query:   "",
	})

	err := ValidateBlock(block)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty query string")
}

func TestValidateBlock_EmptySubBlocks(t *testing.T) {
	cases := []struct {
		name string
		elem PatternElement
	}{
		{"optional", OptionalPattern{}},
		{"union left", UnionPattern{Right: Block(Statement(Variable{Name: "r"}, NewIRI(RdfType), NewIRI(Resource)))}},
		{"not exists", FilterNotExistsPattern{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBlock(Block(tc.elem))
			require.Error(t, err)
			assert.True(t, IsMalformedQuery(err))
		})
	}
}

func TestValidateBlock_NestedViolation(t *testing.T) {
	block := Block(OptionalPattern{Block: Block(
		Statement(StringLiteral("bad"), NewIRI(RdfType), NewIRI(Resource)),
	)})

	err := ValidateBlock(block)
	require.Error(t, err)
	assert.True(t, IsMalformedQuery(err))
}
