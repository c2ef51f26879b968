package rdf

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Term is a sealed interface over the three RDF term kinds used in both
// abstract and dialect-specific queries. Only Variable, IRI, and Literal
// implement it.
type Term interface {
	term() // Marker method - seals interface to this package
}

// PathOperator modifies how an IRI in predicate position matches.
//
// An empty operator matches a single edge. "*" matches a chain of zero or
// more edges and is the mechanism behind subsumption simulation
// (subClassOf*, subPropertyOf*) and standoff ancestor expansion.
type PathOperator string

const (
	// PathNone matches exactly one edge.
	PathNone PathOperator = ""

	// PathZeroOrMore matches a transitive chain of zero or more edges.
	PathZeroOrMore PathOperator = "*"
)

// Variable is a named query variable (?name).
type Variable struct {
	Name string
}

func (Variable) term() {}

func (v Variable) String() string {
	return "?" + v.Name
}

// IRI is an absolute IRI reference, optionally carrying a property-path
// operator when used in predicate position.
type IRI struct {
	Value string
	Path  PathOperator
}

func (IRI) term() {}

// NewIRI creates an IRI with no path operator.
func NewIRI(value string) IRI {
	return IRI{Value: value}
}

// WithPath returns a copy of the IRI carrying the given path operator.
func (i IRI) WithPath(op PathOperator) IRI {
	i.Path = op
	return i
}

func (i IRI) String() string {
	return "<" + i.Value + ">" + string(i.Path)
}

// Literal is a typed RDF literal. The lexical form is NFC normalized at
// construction so that values compare and hash identically regardless of
// the Unicode composition of the input.
type Literal struct {
	Lexical  string
	Datatype string
}

func (Literal) term() {}

// NewLiteral creates a Literal with the given lexical form and datatype
// IRI. The lexical form is NFC normalized.
func NewLiteral(lexical, datatype string) Literal {
	return Literal{Lexical: norm.NFC.String(lexical), Datatype: datatype}
}

// StringLiteral creates an xsd:string literal.
func StringLiteral(lexical string) Literal {
	return NewLiteral(lexical, XsdString)
}

// BoolLiteral creates an xsd:boolean literal.
func BoolLiteral(b bool) Literal {
	if b {
		return Literal{Lexical: "true", Datatype: XsdBoolean}
	}
	return Literal{Lexical: "false", Datatype: XsdBoolean}
}

// IntLiteral creates an xsd:integer literal.
func IntLiteral(n int64) Literal {
	return Literal{Lexical: fmt.Sprintf("%d", n), Datatype: XsdInteger}
}

func (l Literal) String() string {
	return fmt.Sprintf("%q^^<%s>", l.Lexical, l.Datatype)
}

// TermEqual reports structural equality of two terms. Distinct kinds are
// never equal; IRIs compare value and path operator; literals compare
// lexical form and datatype.
func TermEqual(a, b Term) bool {
	switch ta := a.(type) {
	case Variable:
		tb, ok := b.(Variable)
		return ok && ta.Name == tb.Name
	case IRI:
		tb, ok := b.(IRI)
		return ok && ta.Value == tb.Value && ta.Path == tb.Path
	case Literal:
		tb, ok := b.(Literal)
		return ok && ta.Lexical == tb.Lexical && ta.Datatype == tb.Datatype
	default:
		return false
	}
}

// IsVariable reports whether the term is a Variable.
func IsVariable(t Term) bool {
	_, ok := t.(Variable)
	return ok
}

// IsIRI reports whether the term is an IRI.
func IsIRI(t Term) bool {
	_, ok := t.(IRI)
	return ok
}

// TermString renders a term in SPARQL surface syntax. Used by renderers
// and error messages; the output is deterministic.
func TermString(t Term) string {
	switch tt := t.(type) {
	case Variable:
		return tt.String()
	case IRI:
		return tt.String()
	case Literal:
		return tt.String()
	default:
		return fmt.Sprintf("<unknown term %T>", t)
	}
}

// VariableNames collects the names of all variables appearing in the
// given terms, in order of first appearance.
func VariableNames(terms ...Term) []string {
	var names []string
	seen := map[string]bool{}
	for _, t := range terms {
		v, ok := t.(Variable)
		if !ok || seen[v.Name] {
			continue
		}
		seen[v.Name] = true
		names = append(names, v.Name)
	}
	return names
}

// CompactIRI shortens a well-known IRI using the standard prefixes, for
// readable error messages and explain output. Unknown IRIs are returned
// in angle brackets.
func CompactIRI(iri string) string {
	for prefix, ns := range wellKnownPrefixes {
		if strings.HasPrefix(iri, ns) {
			return prefix + ":" + strings.TrimPrefix(iri, ns)
		}
	}
	return "<" + iri + ">"
}

// ExpandIRI expands a prefixed name (knora-base:isDeleted) using the
// standard prefixes. Returns false for an unknown prefix.
func ExpandIRI(name string) (string, bool) {
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		return "", false
	}
	ns, ok := wellKnownPrefixes[prefix]
	if !ok {
		return "", false
	}
	return ns + local, true
}

var wellKnownPrefixes = map[string]string{
	"knora-base":  KnoraBasePrefix,
	"knora-admin": KnoraAdminPrefix,
	"rdf":         RdfPrefix,
	"rdfs":        RdfsPrefix,
	"xsd":         XsdPrefix,
}
