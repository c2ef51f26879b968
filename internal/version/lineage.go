package version

import (
	"errors"
	"fmt"
)

// State is a value version's place in its lineage.
type State int

const (
	// Active is the editable head of a lineage.
	Active State = iota + 1

	// Superseded is a prior version replaced by an update. Terminal.
	Superseded

	// Deleted is a soft-deleted head. Terminal for the whole lineage.
	Deleted
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Superseded:
		return "superseded"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Record is one value version as the guard sees it.
type Record struct {
	IRI      string
	Resource string
	Property string
	Type     string

	// Previous is the predecessor version IRI, empty on the first
	// version of the lineage.
	Previous string

	State State

	// DeleteComment is the optional free-text reason on Deleted heads.
	DeleteComment string

	// Permissions is the value's literal in wire form.
	Permissions string

	// Creator is the IRI of the user who created this version.
	Creator string
}

// StaleVersionError reports a mutation submitted against a version that
// is no longer the lineage head. Surfaced externally as not-found: from
// the caller's perspective the referenced IRI no longer denotes an
// editable target.
type StaleVersionError struct {
	// Referenced is the version IRI the caller named.
	Referenced string

	// Head is the current lineage head, empty when the whole lineage is
	// deleted.
	Head string
}

func (e *StaleVersionError) Error() string {
	if e.Head == "" {
		return fmt.Sprintf("stale version reference <%s>: lineage is deleted", e.Referenced)
	}
	return fmt.Sprintf("stale version reference <%s>: current head is <%s>", e.Referenced, e.Head)
}

// IsStaleVersion reports whether err is a stale-version reference. Uses
// errors.As to handle wrapped errors.
func IsStaleVersion(err error) bool {
	var se *StaleVersionError
	return errors.As(err, &se)
}

// ValidateChain checks the lineage invariants over the chain reachable
// from head by predecessor links, given every version keyed by IRI:
//
//  1. The chain is a simple path: no IRI revisited, ending in a version
//     with no predecessor.
//  2. Exactly one version is non-terminal (the head), unless the head is
//     Deleted, in which case every version is terminal.
func ValidateChain(head string, versions map[string]Record) error {
	seen := map[string]bool{}
	active := 0
	iri := head
	for iri != "" {
		if seen[iri] {
			return fmt.Errorf("version chain revisits <%s>", iri)
		}
		seen[iri] = true
		rec, ok := versions[iri]
		if !ok {
			return fmt.Errorf("version chain references missing <%s>", iri)
		}
		if rec.State == Active {
			if iri != head {
				return fmt.Errorf("active version <%s> is not the chain head", iri)
			}
			active++
		}
		iri = rec.Previous
	}

	headRec := versions[head]
	if headRec.State == Deleted {
		if active != 0 {
			return fmt.Errorf("deleted lineage contains an active version")
		}
		return nil
	}
	if active != 1 {
		return fmt.Errorf("lineage has %d active versions, want exactly 1 at the head", active)
	}
	return nil
}
