package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arkival/trellis/internal/rdf"
)

func TestFreshVariable_Stable(t *testing.T) {
	a := typeVariable(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.Resource))
	b := typeVariable(rdf.Variable{Name: "r"}, rdf.NewIRI(rdf.Resource))

	assert.Equal(t, a, b)
	assert.Len(t, a.Name, 17) // "g" + 16 hex digits
}

func TestFreshVariable_DomainSeparation(t *testing.T) {
	subject := rdf.Variable{Name: "r"}
	target := rdf.NewIRI(rdf.Resource)

	tv := typeVariable(subject, target)
	pv := propVariable(subject, target)
	assert.NotEqual(t, tv.Name, pv.Name)
}

func TestFreshVariable_InputSeparation(t *testing.T) {
	// Concatenation ambiguity must not collide: ("ab", "c") vs ("a", "bc").
	a := freshVariable(domainTypeVar, rdf.Variable{Name: "ab"}, rdf.Variable{Name: "c"})
	b := freshVariable(domainTypeVar, rdf.Variable{Name: "a"}, rdf.Variable{Name: "bc"})
	assert.NotEqual(t, a.Name, b.Name)
}
