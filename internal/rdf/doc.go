// Package rdf provides the foundational graph types for Trellis.
//
// This package contains type definitions only. All other internal packages
// import rdf; rdf imports nothing internal. This ensures the pattern model
// remains the foundational layer with no circular dependencies.
//
// Two families of types live here:
//
// Terms and triples:
//   - Term: sealed union of Variable, IRI, and Literal
//   - Triple: a concrete (subject, predicate, object, graph) statement
//     as returned by a store CONSTRUCT query
//
// Pattern model:
//   - StatementPattern: a (subject, predicate, object, graph) template
//     whose positions may be variables
//   - QueryBlock: an ordered sequence of pattern elements (statements,
//     filters, binds, full-text search, optional/union/not-exists blocks)
//
// SEALED INTERFACES:
//
// Term and PatternElement are sealed interfaces using the marker method
// pattern. Only types in this package can implement them.
//
// This enables:
//   - Exhaustive type switches in the dialect transformers and renderers
//   - Compile-time safety against external extensions
//   - Structural equality that is total over the closed set
//
// Example:
//
//	switch t := term.(type) {
//	case rdf.Variable:
//	    // ?name
//	case rdf.IRI:
//	    // <http://...> possibly with a property-path operator
//	case rdf.Literal:
//	    // "lexical"^^<datatype>
//	}
package rdf
