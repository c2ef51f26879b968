// Package assemble reconstructs the flat triple set returned by a
// CONSTRUCT query into a permission-filtered forest of versioned
// resource objects.
//
// The assembly pipeline:
//
//  1. Group triples by subject into candidate nodes; a subject carrying
//     any valueHas* marker predicate is value-shaped, otherwise
//     resource-shaped.
//  2. Evaluate each value's own permission literal for the requesting
//     principal and redact values with no access. An absent or
//     unparseable literal fails closed: creator and admins only.
//  3. Resolve link values to their target resources, synthesizing a
//     minimal stub node for targets missing from the triple set - a
//     dangling reference never aborts the response.
//  4. Merge dependent resources reached from several mains by IRI; a
//     shared dependent is emitted once and link values refer to it by
//     IRI, never as a duplicated subtree.
//  5. Order main resources by the caller-supplied sequence, silently
//     omitting IRIs the triple set (after redaction) does not contain.
//  6. Truncate to the page size.
//
// Assemble is deterministic given the same triple set and principal, and
// has no side effects; redaction is reported through counters on the
// response, never as an error.
package assemble
