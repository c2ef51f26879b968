package rdf

// PatternElement is a sealed interface over the element kinds a QueryBlock
// may contain. Only types in this package implement it.
//
// Element types:
//   - StatementPattern: a triple template
//   - FilterPattern: a boolean expression over bound variables
//   - BindPattern: binds a derived expression to a fresh variable
//   - FullTextPattern: pseudo-pattern for store text-index search
//   - OptionalPattern: OPTIONAL sub-block
//   - UnionPattern: UNION of two sub-blocks
//   - FilterNotExistsPattern: negative existence test over a sub-block
//
// The set is closed so dialect transformers and renderers can type-switch
// exhaustively.
type PatternElement interface {
	patternElement() // Marker method - seals interface to this package
}

// StatementPattern is a triple template. Any position may be a Variable.
// Graph is nil unless the statement is scoped to a named graph (including
// the canonical explicit-assertions marker).
//
// Equality is structural; see StatementEqual.
type StatementPattern struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

func (StatementPattern) patternElement() {}

// Statement creates a StatementPattern in the default graph.
func Statement(s, p, o Term) StatementPattern {
	return StatementPattern{Subject: s, Predicate: p, Object: o}
}

// InGraph returns a copy of the statement scoped to the given graph term.
func (sp StatementPattern) InGraph(g Term) StatementPattern {
	sp.Graph = g
	return sp
}

// StatementEqual reports structural equality of two statement patterns,
// including graph scope.
func StatementEqual(a, b StatementPattern) bool {
	if (a.Graph == nil) != (b.Graph == nil) {
		return false
	}
	if a.Graph != nil && !TermEqual(a.Graph, b.Graph) {
		return false
	}
	return TermEqual(a.Subject, b.Subject) &&
		TermEqual(a.Predicate, b.Predicate) &&
		TermEqual(a.Object, b.Object)
}

// Expression is an opaque filter/bind expression in SPARQL surface syntax.
// The engine never evaluates expressions; it only orders and renders them.
// Variables lists the variables the expression references, which the
// optimizer needs for binding-dependency order.
type Expression struct {
	Text      string
	Variables []string
}

// FilterPattern keeps solutions for which the expression holds.
type FilterPattern struct {
	Expr Expression
}

func (FilterPattern) patternElement() {}

// BindPattern binds the expression's value to Var. The variable must not
// be bound by any earlier element of the enclosing block.
type BindPattern struct {
	Var  Variable
	Expr Expression
}

func (BindPattern) patternElement() {}

// FullTextPattern is the store-agnostic full-text search pseudo-pattern.
// Subject is the matched entity, Object the variable bound to the matched
// literal, Query the search string.
//
// LiteralStatement, when non-nil, is the statement binding Object to its
// literal value; dialects whose text index matches object literals rather
// than subjects re-emit it after their index invocation.
type FullTextPattern struct {
	Subject          Term
	Object           Variable
	Query            string
	LiteralStatement *StatementPattern
}

func (FullTextPattern) patternElement() {}

// OptionalPattern wraps a sub-block whose solutions are optional.
type OptionalPattern struct {
	Block QueryBlock
}

func (OptionalPattern) patternElement() {}

// UnionPattern takes the union of solutions of two sub-blocks.
type UnionPattern struct {
	Left  QueryBlock
	Right QueryBlock
}

func (UnionPattern) patternElement() {}

// FilterNotExistsPattern keeps solutions for which the sub-block has no
// match. Absence of a matching triple is the success condition.
type FilterNotExistsPattern struct {
	Block QueryBlock
}

func (FilterNotExistsPattern) patternElement() {}

// QueryBlock is an ordered sequence of pattern elements.
//
// Invariant: the block's meaning is preserved under reordering of its
// top-level elements, except that an element referencing a variable bound
// by an earlier Bind must stay after that Bind.
type QueryBlock struct {
	Elements []PatternElement
}

// Block creates a QueryBlock from elements.
func Block(elems ...PatternElement) QueryBlock {
	return QueryBlock{Elements: elems}
}

// Append returns a copy of the block with elems appended. The receiver is
// not modified; blocks are treated as immutable throughout the engine.
func (b QueryBlock) Append(elems ...PatternElement) QueryBlock {
	out := make([]PatternElement, 0, len(b.Elements)+len(elems))
	out = append(out, b.Elements...)
	out = append(out, elems...)
	return QueryBlock{Elements: out}
}

// Triple is a concrete statement as returned by a CONSTRUCT query. All
// positions are ground: Subject and Predicate are IRIs, Object is an IRI
// or Literal rendered by ObjectIRI/ObjectLiteral.
type Triple struct {
	Subject   string
	Predicate string
	Object    Term
	Graph     string
}

// ObjectIRI returns the object IRI value and true when the object is an
// IRI term.
func (t Triple) ObjectIRI() (string, bool) {
	iri, ok := t.Object.(IRI)
	if !ok {
		return "", false
	}
	return iri.Value, true
}

// ObjectLiteral returns the object literal and true when the object is a
// Literal term.
func (t Triple) ObjectLiteral() (Literal, bool) {
	lit, ok := t.Object.(Literal)
	return lit, ok
}
