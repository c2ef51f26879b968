// Package dialect rewrites a store-agnostic query block into the form a
// specific triple store executes.
//
// A Dialect is a capability profile of one store family:
//
//   - FamilyGraphDB: native RDFS inference, inferred triples kept alongside
//     asserted ones, Lucene full-text index matching subjects.
//   - FamilyFuseki: no native inference, jena-text full-text index matching
//     indexed object literals.
//   - FamilyEmbedded: no native inference, the in-process SQLite backend
//     with a substring text match.
//
// The set of families is closed; Transform switches exhaustively on the
// family tag. Profiles vary only in IRIs (explicit graph, text-index
// predicate), which custom CUE profile files may override.
//
// Transform is pure: it never mutates its input block and performs no I/O.
// Rewrites that introduce variables derive their names from a hash of the
// rewritten statement, so transforming the same block twice yields
// structurally identical output.
package dialect
