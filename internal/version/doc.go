// Package version serializes mutations per resource and enforces
// monotonic value version chains.
//
// Every logical value is a lineage: a chain of versions linked by
// predecessor references, ending in the version with no predecessor. The
// state machine per version is
//
//	Active → Superseded   (an update created a new head)
//	Active → Deleted      (soft delete; terminal for the whole lineage)
//
// A mutation must name the lineage head; naming any superseded version
// fails with a stale-version error, surfaced to callers as not-found
// since the referenced IRI no longer denotes an editable target.
//
// At most one mutation is in flight per resource at a time, enforced by
// a keyed mutual-exclusion token acquired before the head is read and
// released after the new head is durably recorded - including on
// failure, so a lineage is never left locked. Mutations on different
// resources never block each other.
package version
