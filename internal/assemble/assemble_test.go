package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkival/trellis/internal/permission"
	"github.com/arkival/trellis/internal/rdf"
)

const (
	aliceIRI   = "http://data.example.org/users/alice"
	bobIRI     = "http://data.example.org/users/bob"
	projectIRI = "http://data.example.org/projects/0001"

	res1  = "http://data.example.org/resources/r1"
	res2  = "http://data.example.org/resources/r2"
	val1  = res1 + "/values/v1"
	val2  = res1 + "/values/v2"
	link1 = res1 + "/values/link1"

	hasComment = "http://onto.example.org/v2#hasComment"
	hasLink    = "http://onto.example.org/v2#hasOtherThing"
)

func iriTriple(s, p, o string) rdf.Triple {
	return rdf.Triple{Subject: s, Predicate: p, Object: rdf.NewIRI(o)}
}

func litTriple(s, p, lexical, datatype string) rdf.Triple {
	return rdf.Triple{Subject: s, Predicate: p, Object: rdf.NewLiteral(lexical, datatype)}
}

func strTriple(s, p, lexical string) rdf.Triple {
	return litTriple(s, p, lexical, rdf.XsdString)
}

// resourceTriples is r1 with a creator-only comment value and a
// publicly visible one.
func resourceTriples() []rdf.Triple {
	return []rdf.Triple{
		iriTriple(res1, rdf.RdfType, rdf.Resource),
		strTriple(res1, rdf.RdfsLabel, "First thing"),
		iriTriple(res1, rdf.AttachedToUser, aliceIRI),
		iriTriple(res1, rdf.AttachedToProject, projectIRI),
		strTriple(res1, rdf.HasPermissions, "CR knora-admin:Creator|V knora-admin:KnownUser"),
		strTriple(res1, rdf.CreationDate, "2024-05-01T10:00:00Z"),

		iriTriple(res1, hasComment, val1),
		iriTriple(val1, rdf.RdfType, "http://www.knora.org/ontology/knora-base#TextValue"),
		iriTriple(val1, rdf.AttachedToUser, aliceIRI),
		strTriple(val1, rdf.HasPermissions, "CR knora-admin:Creator"),
		strTriple(val1, rdf.ValueHasString, "private note"),

		iriTriple(res1, hasComment, val2),
		iriTriple(val2, rdf.RdfType, "http://www.knora.org/ontology/knora-base#TextValue"),
		iriTriple(val2, rdf.AttachedToUser, aliceIRI),
		strTriple(val2, rdf.HasPermissions, "CR knora-admin:Creator|V knora-admin:KnownUser"),
		strTriple(val2, rdf.ValueHasString, "public note"),
	}
}

func knownUser(iri string) permission.Principal {
	return permission.Principal{UserIRI: iri, Authenticated: true}
}

func TestAssemble_ValueRedactionPerPrincipal(t *testing.T) {
	triples := resourceTriples()

	// The creator sees both values.
	graph := Assemble(triples, []string{res1}, 0, knownUser(aliceIRI), Options{})
	require.Len(t, graph.Mains, 1)
	require.Len(t, graph.Mains[0].Values[hasComment], 2)
	assert.Zero(t, graph.RedactedValues)

	// Another known user sees only the public value; the redaction is
	// counted, not an error.
	graph = Assemble(triples, []string{res1}, 0, knownUser(bobIRI), Options{})
	require.Len(t, graph.Mains, 1)
	values := graph.Mains[0].Values[hasComment]
	require.Len(t, values, 1)
	assert.Equal(t, val2, values[0].IRI)
	assert.Equal(t, 1, graph.RedactedValues)
	assert.Equal(t, permission.View, values[0].UserPermission)
}

func TestAssemble_ResourceRedaction(t *testing.T) {
	// Anonymous requests match no entry; the whole resource disappears.
	graph := Assemble(resourceTriples(), []string{res1}, 0, permission.Anonymous(), Options{})
	assert.Empty(t, graph.Mains)
	assert.Equal(t, 1, graph.RedactedResources)
}

func TestAssemble_MissingLiteralFailsClosed(t *testing.T) {
	triples := []rdf.Triple{
		iriTriple(res1, rdf.RdfType, rdf.Resource),
		iriTriple(res1, rdf.AttachedToUser, aliceIRI),
		iriTriple(res1, rdf.AttachedToProject, projectIRI),
	}

	// No literal: only the creator may see the resource.
	graph := Assemble(triples, []string{res1}, 0, knownUser(bobIRI), Options{})
	assert.Empty(t, graph.Mains)

	graph = Assemble(triples, []string{res1}, 0, knownUser(aliceIRI), Options{})
	require.Len(t, graph.Mains, 1)
	assert.Empty(t, graph.Mains[0].Permissions)
}

func TestAssemble_PreviewResourceCarriesNoValues(t *testing.T) {
	triples := resourceTriples()
	// Downgrade the resource literal so known users get only RV.
	for i, tr := range triples {
		if tr.Subject == res1 && tr.Predicate == rdf.HasPermissions {
			triples[i] = strTriple(res1, rdf.HasPermissions, "CR knora-admin:Creator|RV knora-admin:KnownUser")
		}
	}

	graph := Assemble(triples, []string{res1}, 0, knownUser(bobIRI), Options{})
	require.Len(t, graph.Mains, 1)
	node := graph.Mains[0]
	assert.Equal(t, permission.RestrictedView, node.UserPermission)
	assert.Equal(t, "First thing", node.Label)
	assert.Empty(t, node.Values, "preview resources expose metadata only")
}

func TestAssemble_ValueOrdering(t *testing.T) {
	triples := []rdf.Triple{
		iriTriple(res1, rdf.RdfType, rdf.Resource),
		iriTriple(res1, rdf.AttachedToUser, aliceIRI),
		strTriple(res1, rdf.HasPermissions, "V knora-admin:KnownUser"),
	}
	// Three values: explicit orders 2 and 1, plus one unordered.
	for i, spec := range []struct {
		iri   string
		order string
	}{
		{res1 + "/values/a", "2"},
		{res1 + "/values/b", "1"},
		{res1 + "/values/c", ""},
	} {
		triples = append(triples,
			iriTriple(res1, hasComment, spec.iri),
			iriTriple(spec.iri, rdf.RdfType, "http://www.knora.org/ontology/knora-base#TextValue"),
			strTriple(spec.iri, rdf.HasPermissions, "V knora-admin:KnownUser"),
			strTriple(spec.iri, rdf.ValueHasString, "note"),
		)
		if spec.order != "" {
			triples = append(triples, litTriple(spec.iri, rdf.ValueHasOrder, spec.order, rdf.XsdInteger))
		}
		_ = i
	}

	graph := Assemble(triples, []string{res1}, 0, knownUser(bobIRI), Options{})
	require.Len(t, graph.Mains, 1)
	values := graph.Mains[0].Values[hasComment]
	require.Len(t, values, 3)
	assert.Equal(t, res1+"/values/b", values[0].IRI)
	assert.Equal(t, res1+"/values/a", values[1].IRI)
	assert.Equal(t, res1+"/values/c", values[2].IRI, "unordered values sort last")
	assert.EqualValues(t, -1, values[2].Order)
}

func linkTriples(targetPermissions string) []rdf.Triple {
	triples := []rdf.Triple{
		iriTriple(res1, rdf.RdfType, rdf.Resource),
		iriTriple(res1, rdf.AttachedToUser, aliceIRI),
		strTriple(res1, rdf.HasPermissions, "V knora-admin:KnownUser"),

		iriTriple(res1, hasLink, link1),
		iriTriple(link1, rdf.RdfType, rdf.LinkValue),
		strTriple(link1, rdf.HasPermissions, "V knora-admin:KnownUser"),
		litTriple(link1, rdf.ValueHasRefCount, "1", rdf.XsdInteger),
		iriTriple(link1, rdf.RdfObject, res2),
	}
	if targetPermissions != "" {
		triples = append(triples,
			iriTriple(res2, rdf.RdfType, rdf.Resource),
			strTriple(res2, rdf.RdfsLabel, "Second thing"),
			iriTriple(res2, rdf.AttachedToUser, aliceIRI),
			strTriple(res2, rdf.HasPermissions, targetPermissions),
		)
	}
	return triples
}

func TestAssemble_LinkTargetBecomesDependent(t *testing.T) {
	graph := Assemble(linkTriples("V knora-admin:KnownUser"), []string{res1}, 0, knownUser(bobIRI), Options{})
	require.Len(t, graph.Mains, 1)

	links := graph.Mains[0].Values[hasLink]
	require.Len(t, links, 1)
	assert.True(t, links[0].IsLink())
	assert.Equal(t, res2, links[0].TargetIRI)
	assert.Contains(t, links[0].Contents, rdf.ValueHasRefCount)

	dep, ok := graph.Dependents[res2]
	require.True(t, ok)
	assert.False(t, dep.Stub)
	assert.Equal(t, "Second thing", dep.Label)
}

func TestAssemble_AbsentLinkTargetSynthesizesStub(t *testing.T) {
	// Target triples never fetched: the reference must stay resolvable.
	graph := Assemble(linkTriples(""), []string{res1}, 0, knownUser(bobIRI), Options{})
	require.Len(t, graph.Mains, 1)

	dep, ok := graph.Dependents[res2]
	require.True(t, ok)
	assert.True(t, dep.Stub)
	assert.Equal(t, res2, dep.IRI)
	assert.Empty(t, dep.Label)
}

func TestAssemble_RedactedLinkTargetSynthesizesStub(t *testing.T) {
	// Target present but invisible to this principal: stub, and the
	// redaction is counted.
	graph := Assemble(linkTriples("CR knora-admin:Creator"), []string{res1}, 0, knownUser(bobIRI), Options{})
	require.Len(t, graph.Mains, 1)

	dep, ok := graph.Dependents[res2]
	require.True(t, ok)
	assert.True(t, dep.Stub)
	assert.Equal(t, 1, graph.RedactedResources)
}

func TestAssemble_LinkToMainStaysReference(t *testing.T) {
	triples := append(linkTriples("V knora-admin:KnownUser"),
		// res2 is itself a page main.
		strTriple(res2, rdf.CreationDate, "2024-05-02T10:00:00Z"),
	)

	graph := Assemble(triples, []string{res1, res2}, 0, knownUser(bobIRI), Options{})
	require.Len(t, graph.Mains, 2)
	assert.NotContains(t, graph.Dependents, res2, "main targets are not duplicated as dependents")
	assert.Equal(t, res2, graph.Mains[0].Values[hasLink][0].TargetIRI)
}

func TestAssemble_SharedDependentMerged(t *testing.T) {
	otherLink := res1 + "/values/link2"
	triples := append(linkTriples("V knora-admin:KnownUser"),
		iriTriple(res1, hasLink, otherLink),
		iriTriple(otherLink, rdf.RdfType, rdf.LinkValue),
		strTriple(otherLink, rdf.HasPermissions, "V knora-admin:KnownUser"),
		strTriple(otherLink, rdf.ValueHasString, "1"),
		iriTriple(otherLink, rdf.RdfObject, res2),
	)

	graph := Assemble(triples, []string{res1}, 0, knownUser(bobIRI), Options{})
	require.Len(t, graph.Mains, 1)
	assert.Len(t, graph.Mains[0].Values[hasLink], 2)
	assert.Len(t, graph.Dependents, 1, "both links share one dependent entry")
}

func TestAssemble_Paging(t *testing.T) {
	var triples []rdf.Triple
	var order []string
	for _, iri := range []string{res1, res2} {
		order = append(order, iri)
		triples = append(triples,
			iriTriple(iri, rdf.RdfType, rdf.Resource),
			iriTriple(iri, rdf.AttachedToUser, aliceIRI),
			strTriple(iri, rdf.HasPermissions, "V knora-admin:KnownUser"),
		)
	}

	graph := Assemble(triples, order, 1, knownUser(bobIRI), Options{})
	require.Len(t, graph.Mains, 1)
	assert.Equal(t, res1, graph.Mains[0].IRI)
	assert.True(t, graph.MayHaveMore)

	graph = Assemble(triples, order, 2, knownUser(bobIRI), Options{})
	assert.Len(t, graph.Mains, 2)
	assert.False(t, graph.MayHaveMore)

	graph = Assemble(triples, order, 2, knownUser(bobIRI), Options{MoreResultsProbed: true})
	assert.True(t, graph.MayHaveMore)
}

func TestAssemble_UnmatchedMainOmitted(t *testing.T) {
	graph := Assemble(resourceTriples(), []string{res1, "http://data.example.org/resources/ghost"}, 0, knownUser(aliceIRI), Options{})
	assert.Len(t, graph.Mains, 1)
}

func TestAssemble_DeletedValueMetadata(t *testing.T) {
	valueIRI := res1 + "/values/gone"
	triples := []rdf.Triple{
		iriTriple(res1, rdf.RdfType, rdf.Resource),
		strTriple(res1, rdf.HasPermissions, "V knora-admin:KnownUser"),
		iriTriple(res1, hasComment, valueIRI),
		iriTriple(valueIRI, rdf.RdfType, "http://www.knora.org/ontology/knora-base#TextValue"),
		strTriple(valueIRI, rdf.HasPermissions, "V knora-admin:KnownUser"),
		strTriple(valueIRI, rdf.ValueHasString, "old text"),
		litTriple(valueIRI, rdf.IsDeleted, "true", rdf.XsdBoolean),
		strTriple(valueIRI, rdf.DeleteComment, "superseded by survey"),
	}

	graph := Assemble(triples, []string{res1}, 0, knownUser(bobIRI), Options{})
	require.Len(t, graph.Mains, 1)
	values := graph.Mains[0].Values[hasComment]
	require.Len(t, values, 1)
	assert.True(t, values[0].Deleted)
	assert.Equal(t, "superseded by survey", values[0].DeleteComment)
}

func TestAssemble_Deterministic(t *testing.T) {
	triples := resourceTriples()
	first := Assemble(triples, []string{res1}, 0, knownUser(aliceIRI), Options{})
	second := Assemble(triples, []string{res1}, 0, knownUser(aliceIRI), Options{})
	assert.Equal(t, first, second)
}
