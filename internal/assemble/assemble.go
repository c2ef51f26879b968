package assemble

import (
	"sort"
	"strconv"
	"strings"

	"github.com/arkival/trellis/internal/permission"
	"github.com/arkival/trellis/internal/rdf"
)

// Options carry the non-pure inputs of an assembly.
type Options struct {
	// MoreResultsProbed is the result of the external probe for further
	// matching main resources beyond the page. The probe itself is a
	// store call made by the caller, not by this package.
	MoreResultsProbed bool
}

// Assemble builds the response graph from a flat triple set. See the
// package documentation for the pipeline. Deterministic given the same
// triple set and principal.
func Assemble(triples []rdf.Triple, mainOrder []string, pageSize int, principal permission.Principal, opts Options) *ResponseGraph {
	a := &assembly{
		principal: principal,
		nodes:     groupBySubject(triples),
		resources: map[string]*ResourceNode{},
		graph: &ResponseGraph{
			Dependents: map[string]*ResourceNode{},
		},
	}

	mains := map[string]bool{}
	for _, iri := range mainOrder {
		mains[iri] = true
	}

	for _, iri := range mainOrder {
		raw, ok := a.nodes[iri]
		if !ok || raw.valueShaped {
			// Absent after redaction or never matched: omitted, never an
			// error.
			continue
		}
		node := a.assembleResource(raw, mains)
		if node == nil {
			continue
		}
		a.graph.Mains = append(a.graph.Mains, node)
	}

	if pageSize > 0 && len(a.graph.Mains) > pageSize {
		a.graph.Mains = a.graph.Mains[:pageSize]
		a.graph.MayHaveMore = true
	}
	if opts.MoreResultsProbed {
		a.graph.MayHaveMore = true
	}
	return a.graph
}

// rawNode is a subject's triples before classification.
type rawNode struct {
	iri         string
	preds       map[string][]rdf.Term
	predOrder   []string
	valueShaped bool
}

func (r *rawNode) first(pred string) (rdf.Term, bool) {
	objs := r.preds[pred]
	if len(objs) == 0 {
		return nil, false
	}
	return objs[0], true
}

func (r *rawNode) firstIRI(pred string) string {
	t, ok := r.first(pred)
	if !ok {
		return ""
	}
	iri, ok := t.(rdf.IRI)
	if !ok {
		return ""
	}
	return iri.Value
}

func (r *rawNode) firstLexical(pred string) string {
	t, ok := r.first(pred)
	if !ok {
		return ""
	}
	lit, ok := t.(rdf.Literal)
	if !ok {
		return ""
	}
	return lit.Lexical
}

func groupBySubject(triples []rdf.Triple) map[string]*rawNode {
	nodes := map[string]*rawNode{}
	for _, t := range triples {
		node, ok := nodes[t.Subject]
		if !ok {
			node = &rawNode{iri: t.Subject, preds: map[string][]rdf.Term{}}
			nodes[t.Subject] = node
		}
		if _, seen := node.preds[t.Predicate]; !seen {
			node.predOrder = append(node.predOrder, t.Predicate)
		}
		node.preds[t.Predicate] = append(node.preds[t.Predicate], t.Object)
		if strings.HasPrefix(t.Predicate, rdf.ValueHasPrefix) {
			node.valueShaped = true
		}
	}
	return nodes
}

type assembly struct {
	principal permission.Principal
	nodes     map[string]*rawNode

	// resources memoizes assembled resource nodes by IRI, merging
	// dependents shared by several mains and breaking link cycles.
	resources map[string]*ResourceNode

	graph *ResponseGraph
}

// assembleResource builds a resource node and its visible values. Returns
// nil when the principal has no access to the resource at all.
func (a *assembly) assembleResource(raw *rawNode, mains map[string]bool) *ResourceNode {
	if existing, ok := a.resources[raw.iri]; ok {
		return existing
	}

	meta := permission.EntityMeta{
		IRI:     raw.iri,
		Creator: raw.firstIRI(rdf.AttachedToUser),
		Project: raw.firstIRI(rdf.AttachedToProject),
	}
	lit, rawLiteral := a.parseLiteral(raw)
	granted, ok := permission.Effective(lit, meta, a.principal)
	if !ok {
		a.graph.RedactedResources++
		return nil
	}

	node := &ResourceNode{
		IRI:            raw.iri,
		Type:           raw.firstIRI(rdf.RdfType),
		Label:          raw.firstLexical(rdf.RdfsLabel),
		Creator:        meta.Creator,
		Project:        meta.Project,
		CreationDate:   raw.firstLexical(rdf.CreationDate),
		Permissions:    rawLiteral,
		UserPermission: granted,
		HasPermission:  true,
		Values:         map[string][]*ValueNode{},
	}
	a.resources[raw.iri] = node

	// A resource redacted to preview carries metadata only; its values
	// stay below the declared minimum visibility.
	if granted < permission.View {
		return node
	}

	for _, prop := range raw.predOrder {
		for _, obj := range raw.preds[prop] {
			valueIRI, isIRI := obj.(rdf.IRI)
			if !isIRI {
				continue
			}
			valueRaw, present := a.nodes[valueIRI.Value]
			if !present || !valueRaw.valueShaped {
				continue
			}
			value := a.assembleValue(valueRaw, meta, mains)
			if value == nil {
				continue
			}
			node.Values[prop] = append(node.Values[prop], value)
		}
	}
	for prop := range node.Values {
		sortValues(node.Values[prop])
	}
	return node
}

// assembleValue builds a value node, applying the value's own literal.
// Returns nil when the value is redacted.
func (a *assembly) assembleValue(raw *rawNode, owner permission.EntityMeta, mains map[string]bool) *ValueNode {
	meta := permission.EntityMeta{
		IRI:     raw.iri,
		Creator: raw.firstIRI(rdf.AttachedToUser),
		Project: owner.Project,
	}
	lit, rawLiteral := a.parseLiteral(raw)
	granted, ok := permission.Effective(lit, meta, a.principal)
	if !ok {
		a.graph.RedactedValues++
		return nil
	}

	value := &ValueNode{
		IRI:             raw.iri,
		Type:            raw.firstIRI(rdf.RdfType),
		Creator:         meta.Creator,
		CreationDate:    raw.firstLexical(rdf.ValueCreationDate),
		Permissions:     rawLiteral,
		UserPermission:  granted,
		PreviousVersion: raw.firstIRI(rdf.PreviousValue),
		Deleted:         raw.firstLexical(rdf.IsDeleted) == "true",
		DeleteComment:   raw.firstLexical(rdf.DeleteComment),
		Order:           -1,
		Contents:        map[string][]rdf.Term{},
	}
	if ord := raw.firstLexical(rdf.ValueHasOrder); ord != "" {
		if n, err := strconv.ParseInt(ord, 10, 64); err == nil {
			value.Order = n
		}
	}
	for _, pred := range raw.predOrder {
		if strings.HasPrefix(pred, rdf.ValueHasPrefix) {
			value.Contents[pred] = append([]rdf.Term(nil), raw.preds[pred]...)
		}
	}

	if value.IsLink() {
		a.resolveLinkTarget(raw, value, mains)
	}
	return value
}

// resolveLinkTarget resolves a link value's rdf:object reference into a
// dependent resource, synthesizing a stub for targets absent from the
// triple set. A dangling reference must not abort the response.
func (a *assembly) resolveLinkTarget(raw *rawNode, value *ValueNode, mains map[string]bool) {
	target := raw.firstIRI(rdf.RdfObject)
	if target == "" {
		return
	}
	value.TargetIRI = target

	if mains[target] {
		// The target is itself a main resource; the IRI reference is
		// enough, no dependent entry.
		return
	}

	targetRaw, present := a.nodes[target]
	if !present || targetRaw.valueShaped {
		a.ensureStub(target)
		return
	}

	node := a.assembleResource(targetRaw, mains)
	if node == nil {
		// Target fully redacted for this principal: fail closed on its
		// content but keep the reference resolvable.
		a.ensureStub(target)
		return
	}
	a.graph.Dependents[target] = node
}

func (a *assembly) ensureStub(iri string) {
	if _, ok := a.graph.Dependents[iri]; ok {
		return
	}
	a.graph.Dependents[iri] = &ResourceNode{IRI: iri, Stub: true}
}

// parseLiteral reads the entity's object-access literal, substituting the
// fail-closed fallback when it is absent or unparseable.
func (a *assembly) parseLiteral(raw *rawNode) (permission.Literal, string) {
	s := raw.firstLexical(rdf.HasPermissions)
	if s == "" {
		return permission.FallbackLiteral(permission.ObjectAccess), ""
	}
	lit, err := permission.Parse(permission.ObjectAccess, s)
	if err != nil {
		return permission.FallbackLiteral(permission.ObjectAccess), ""
	}
	return lit, lit.Format()
}

func sortValues(values []*ValueNode) {
	sort.SliceStable(values, func(i, j int) bool {
		a, b := values[i], values[j]
		if a.Order != b.Order {
			if a.Order == -1 {
				return false
			}
			if b.Order == -1 {
				return true
			}
			return a.Order < b.Order
		}
		return a.IRI < b.IRI
	})
}
