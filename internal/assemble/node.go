package assemble

import (
	"github.com/arkival/trellis/internal/permission"
	"github.com/arkival/trellis/internal/rdf"
)

// ResourceNode is an assembled resource: a main result or a dependent
// reached through a link value.
type ResourceNode struct {
	IRI   string
	Type  string
	Label string

	// Creator, Project, and CreationDate come from the bookkeeping
	// triples; empty on stub nodes.
	Creator      string
	Project      string
	CreationDate string

	// Permissions is the resource's own literal in canonical form.
	Permissions string

	// UserPermission is the requesting principal's effective code on
	// this resource; HasPermission is false on stubs, whose literal was
	// not in the triple set.
	UserPermission permission.Code
	HasPermission  bool

	// Values maps property IRI to the visible values, in valueHasOrder
	// then IRI order.
	Values map[string][]*ValueNode

	// Stub marks a minimal placeholder synthesized for a link target
	// absent from the triple set.
	Stub bool
}

// ValueNode is an assembled value attached to a resource.
type ValueNode struct {
	IRI  string
	Type string

	// Creator and CreationDate from the value's bookkeeping triples.
	Creator      string
	CreationDate string

	// Permissions is the value's literal in canonical form; empty when
	// the value carried none (and assembly fell back to fail-closed).
	Permissions string

	// UserPermission is the principal's effective code on this value.
	UserPermission permission.Code

	// PreviousVersion is the predecessor value IRI; empty on the first
	// version of a lineage.
	PreviousVersion string

	// Deleted and DeleteComment carry the soft-delete state.
	Deleted       bool
	DeleteComment string

	// Order is the valueHasOrder position, -1 when absent.
	Order int64

	// Contents holds the valueHas* statement objects, predicate to
	// ordered object terms.
	Contents map[string][]rdf.Term

	// TargetIRI is set on link values: the IRI of the referenced
	// resource, resolved through the response's dependent map.
	TargetIRI string
}

// IsLink reports whether the value is a link value.
func (v *ValueNode) IsLink() bool {
	return v.Type == rdf.LinkValue
}

// ResponseGraph is the assembled response: main resources in caller
// order, shared dependents keyed by IRI, and redaction counters.
// Constructed fresh per request; never persisted.
type ResponseGraph struct {
	Mains []*ResourceNode

	// Dependents holds every resource reachable only through link
	// values, merged by IRI. Link values point into it via TargetIRI.
	Dependents map[string]*ResourceNode

	// MayHaveMore is true when the page was truncated or an external
	// probe found at least one further matching main resource.
	MayHaveMore bool

	// RedactedValues counts values dropped by the permission calculus.
	// Redaction is a deliberate non-error outcome; the count lets the
	// caller report it.
	RedactedValues int

	// RedactedResources counts resources dropped entirely.
	RedactedResources int
}

// Dependent returns the dependent resource a link value refers to, nil
// when the target was a main resource or the IRI is unknown.
func (g *ResponseGraph) Dependent(iri string) *ResourceNode {
	return g.Dependents[iri]
}
