package rdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNTriples_Basic(t *testing.T) {
	input := `
# resources
<http://data.example.org/r1> <` + RdfType + `> <` + Resource + `> .
<http://data.example.org/r1> <` + RdfsLabel + `> "Thing one" .
<http://data.example.org/r1> <` + ValueHasOrder + `> "2"^^<` + XsdInteger + `> .
`
	triples, err := ParseNTriples(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, triples, 3)

	assert.Equal(t, "http://data.example.org/r1", triples[0].Subject)
	assert.Equal(t, RdfType, triples[0].Predicate)
	iri, ok := triples[0].ObjectIRI()
	require.True(t, ok)
	assert.Equal(t, Resource, iri)

	lit, ok := triples[1].ObjectLiteral()
	require.True(t, ok)
	assert.Equal(t, "Thing one", lit.Lexical)
	assert.Equal(t, XsdString, lit.Datatype)

	lit, ok = triples[2].ObjectLiteral()
	require.True(t, ok)
	assert.Equal(t, "2", lit.Lexical)
	assert.Equal(t, XsdInteger, lit.Datatype)
}

func TestParseNTriples_EscapesAndLanguageTag(t *testing.T) {
	input := `<http://e.org/s> <http://e.org/p> "line\none \"quoted\"" .
<http://e.org/s> <http://e.org/p> "Bergwerk"@de .`

	triples, err := ParseNTriples(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, triples, 2)

	lit, _ := triples[0].ObjectLiteral()
	assert.Equal(t, "line\none \"quoted\"", lit.Lexical)

	// language tags are dropped, the value stays a plain string
	lit, _ = triples[1].ObjectLiteral()
	assert.Equal(t, "Bergwerk", lit.Lexical)
	assert.Equal(t, XsdString, lit.Datatype)
}

func TestParseNTriples_Malformed(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"bare subject", `r1 <http://e.org/p> <http://e.org/o> .`},
		{"unterminated literal", `<http://e.org/s> <http://e.org/p> "open .`},
		{"trailing tokens", `<http://e.org/s> <http://e.org/p> <http://e.org/o> extra .`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseNTriples(strings.NewReader(tc.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 1")
		})
	}
}

func TestFormatTriple_RoundTrip(t *testing.T) {
	orig := Triple{
		Subject:   "http://e.org/s",
		Predicate: "http://e.org/p",
		Object:    NewLiteral("tab\there", XsdString),
	}

	parsed, err := ParseNTriples(strings.NewReader(FormatTriple(orig)))
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, orig.Subject, parsed[0].Subject)
	assert.Equal(t, orig.Predicate, parsed[0].Predicate)
	assert.True(t, TermEqual(orig.Object, parsed[0].Object))
}
