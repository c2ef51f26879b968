package dialect

import "fmt"

// Family tags one of the supported store families. The set is closed;
// Transform switches exhaustively on it.
type Family int

const (
	// FamilyGraphDB is a store with native RDFS inference and a Lucene
	// full-text index whose matches bind the indexed subject.
	FamilyGraphDB Family = iota + 1

	// FamilyFuseki is a store without native inference whose jena-text
	// index matches indexed object literals.
	FamilyFuseki

	// FamilyEmbedded is the in-process SQLite backend: no inference, no
	// text index beyond substring match.
	FamilyEmbedded
)

// String returns the family name used in configuration files.
func (f Family) String() string {
	switch f {
	case FamilyGraphDB:
		return "graphdb"
	case FamilyFuseki:
		return "fuseki"
	case FamilyEmbedded:
		return "embedded"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// ParseFamily resolves a configuration name to a Family.
func ParseFamily(name string) (Family, error) {
	switch name {
	case "graphdb":
		return FamilyGraphDB, nil
	case "fuseki":
		return FamilyFuseki, nil
	case "embedded":
		return FamilyEmbedded, nil
	default:
		return 0, fmt.Errorf("unknown dialect family %q", name)
	}
}

// Profile is one store's capability profile. Immutable after construction;
// safe to share across goroutines.
type Profile struct {
	// Name identifies the profile in configuration and explain output.
	Name string

	// Family selects the rewrite rules.
	Family Family

	// NativeInference reports whether the store performs subsumption
	// inference itself. When false and the caller requests inference,
	// Transform simulates it with property paths.
	NativeInference bool

	// ExplicitGraph is the named graph holding only asserted triples.
	// Empty for stores that keep no inferred triples.
	ExplicitGraph string

	// TextIndexPredicate invokes the store's full-text index.
	TextIndexPredicate string

	// TextIndexOnLiterals reports whether the index matches object
	// literals rather than subjects, requiring the literal-binding
	// statement to be re-emitted after the index invocation.
	TextIndexOnLiterals bool
}

// Built-in store IRIs. The text-index predicates are exported so the
// optimizer can recognize index invocations in already-transformed blocks.
const (
	graphDBExplicitGraph = "http://www.ontotext.com/explicit"

	// LuceneTextIndex is GraphDB's full-text index predicate.
	LuceneTextIndex = "http://www.ontotext.com/owlim/lucene#fullTextSearchIndex"

	// JenaTextQuery is Fuseki's jena-text index predicate.
	JenaTextQuery = "http://jena.apache.org/text#query"

	// EmbeddedTextMatch is the pseudo-predicate the local SQLite backend
	// compiles to a substring match. It never appears in stored data.
	EmbeddedTextMatch = "http://arkival.dev/trellis#textMatch"
)

// TextIndexPredicates lists every predicate Transform may emit for a
// full-text pseudo-pattern.
func TextIndexPredicates() []string {
	return []string{LuceneTextIndex, JenaTextQuery, EmbeddedTextMatch}
}

// GraphDB is the built-in profile for the GraphDB family.
func GraphDB() Profile {
	return Profile{
		Name:               "graphdb",
		Family:             FamilyGraphDB,
		NativeInference:    true,
		ExplicitGraph:      graphDBExplicitGraph,
		TextIndexPredicate: LuceneTextIndex,
	}
}

// Fuseki is the built-in profile for the Fuseki family.
func Fuseki() Profile {
	return Profile{
		Name:                "fuseki",
		Family:              FamilyFuseki,
		NativeInference:     false,
		TextIndexPredicate:  JenaTextQuery,
		TextIndexOnLiterals: true,
	}
}

// Embedded is the built-in profile for the local SQLite backend.
func Embedded() Profile {
	return Profile{
		Name:                "embedded",
		Family:              FamilyEmbedded,
		NativeInference:     false,
		TextIndexPredicate:  EmbeddedTextMatch,
		TextIndexOnLiterals: true,
	}
}

// BuiltIn resolves a built-in profile by family name.
func BuiltIn(name string) (Profile, error) {
	family, err := ParseFamily(name)
	if err != nil {
		return Profile{}, err
	}
	switch family {
	case FamilyGraphDB:
		return GraphDB(), nil
	case FamilyFuseki:
		return Fuseki(), nil
	case FamilyEmbedded:
		return Embedded(), nil
	default:
		return Profile{}, fmt.Errorf("no built-in profile for family %s", family)
	}
}
