package dialect

import (
	"fmt"

	"github.com/arkival/trellis/internal/rdf"
)

// Options control a single transformation.
type Options struct {
	// SimulateInference asks a store without native inference to emulate
	// subsumption over rdfs:subClassOf / rdfs:subPropertyOf with property
	// paths. Ignored by stores that infer natively.
	SimulateInference bool

	// ExplicitOnly restricts the whole query to asserted triples. Stores
	// that keep inferred triples alongside asserted ones disable them
	// with a query-level default-graph clause; stores without inferred
	// data need no directive.
	ExplicitOnly bool
}

// Result is a transformed block plus the optional default-graph directive
// the query-level serializer must emit (FROM clause). DefaultGraph is
// empty when the dialect needs none.
type Result struct {
	Block        rdf.QueryBlock
	DefaultGraph string
}

// Transform rewrites a store-agnostic block into the given profile's
// dialect. Pure and deterministic: the input block is never mutated, and
// identical inputs yield structurally identical output including the
// names of introduced variables.
//
// The block must already have passed rdf.ValidateBlock.
func Transform(block rdf.QueryBlock, profile Profile, opts Options) (Result, error) {
	out, err := transformBlock(block, profile, opts)
	if err != nil {
		return Result{}, err
	}

	res := Result{Block: out}
	if opts.ExplicitOnly && profile.ExplicitGraph != "" {
		res.DefaultGraph = profile.ExplicitGraph
	}
	return res, nil
}

func transformBlock(block rdf.QueryBlock, profile Profile, opts Options) (rdf.QueryBlock, error) {
	var out []rdf.PatternElement
	for _, elem := range block.Elements {
		switch el := elem.(type) {
		case rdf.StatementPattern:
			expanded, err := transformStatement(el, profile, opts)
			if err != nil {
				return rdf.QueryBlock{}, err
			}
			out = append(out, expanded...)
		case rdf.FullTextPattern:
			out = append(out, transformFullText(el, profile)...)
		case rdf.OptionalPattern:
			inner, err := transformBlock(el.Block, profile, opts)
			if err != nil {
				return rdf.QueryBlock{}, err
			}
			out = append(out, rdf.OptionalPattern{Block: inner})
		case rdf.UnionPattern:
			left, err := transformBlock(el.Left, profile, opts)
			if err != nil {
				return rdf.QueryBlock{}, err
			}
			right, err := transformBlock(el.Right, profile, opts)
			if err != nil {
				return rdf.QueryBlock{}, err
			}
			out = append(out, rdf.UnionPattern{Left: left, Right: right})
		case rdf.FilterNotExistsPattern:
			inner, err := transformBlock(el.Block, profile, opts)
			if err != nil {
				return rdf.QueryBlock{}, err
			}
			out = append(out, rdf.FilterNotExistsPattern{Block: inner})
		case rdf.FilterPattern, rdf.BindPattern:
			out = append(out, el)
		default:
			return rdf.QueryBlock{}, fmt.Errorf("transform: unknown pattern element %T", elem)
		}
	}
	return rdf.QueryBlock{Elements: out}, nil
}

// transformStatement applies the per-statement rewrite rules, possibly
// expanding one statement into several.
func transformStatement(sp rdf.StatementPattern, profile Profile, opts Options) ([]rdf.PatternElement, error) {
	sp = rewriteStandoffAncestor(sp)
	sp, err := rewriteExplicitGraph(sp, profile)
	if err != nil {
		return nil, err
	}

	if !profile.NativeInference && opts.SimulateInference {
		return simulateSubsumption(sp), nil
	}
	return []rdf.PatternElement{sp}, nil
}

// rewriteStandoffAncestor replaces the start-ancestor relation, which no
// store materializes, with a transitive closure over start-parent.
func rewriteStandoffAncestor(sp rdf.StatementPattern) rdf.StatementPattern {
	pred, ok := sp.Predicate.(rdf.IRI)
	if !ok || pred.Value != rdf.StandoffStartAncestor {
		return sp
	}
	sp.Predicate = rdf.NewIRI(rdf.StandoffStartParent).WithPath(rdf.PathZeroOrMore)
	return sp
}

// rewriteExplicitGraph handles the canonical explicit-assertions marker.
// Stores with native inference rewrite it to their explicit graph; stores
// without inferred data drop it (every triple is asserted).
func rewriteExplicitGraph(sp rdf.StatementPattern, profile Profile) (rdf.StatementPattern, error) {
	if sp.Graph == nil {
		return sp, nil
	}
	g, ok := sp.Graph.(rdf.IRI)
	if !ok || g.Value != rdf.ExplicitGraphMarker {
		return sp, nil
	}
	if profile.NativeInference {
		if profile.ExplicitGraph == "" {
			return sp, fmt.Errorf("profile %s declares native inference but no explicit graph", profile.Name)
		}
		sp.Graph = rdf.NewIRI(profile.ExplicitGraph)
		return sp, nil
	}
	sp.Graph = nil
	return sp, nil
}

// simulateSubsumption expands a statement so subclass/subproperty members
// match on a store without native inference.
//
// An rdf:type statement with a declared class C becomes
//
//	?tv rdfs:subClassOf* C .
//	subject rdf:type ?tv .
//
// Any other IRI predicate P becomes
//
//	?pv rdfs:subPropertyOf* P .
//	subject ?pv object .
//
// Predicates that already carry a path operator, variable predicates, and
// the deletion flag (never subclassed) are left alone.
func simulateSubsumption(sp rdf.StatementPattern) []rdf.PatternElement {
	pred, ok := sp.Predicate.(rdf.IRI)
	if !ok || pred.Path != rdf.PathNone || pred.Value == rdf.IsDeleted {
		return []rdf.PatternElement{sp}
	}

	if pred.Value == rdf.RdfType {
		class, ok := sp.Object.(rdf.IRI)
		if !ok {
			return []rdf.PatternElement{sp}
		}
		tv := typeVariable(sp.Subject, class)
		closure := rdf.StatementPattern{
			Subject:   tv,
			Predicate: rdf.NewIRI(rdf.RdfsSubClassOf).WithPath(rdf.PathZeroOrMore),
			Object:    class,
			Graph:     sp.Graph,
		}
		member := sp
		member.Object = tv
		return []rdf.PatternElement{closure, member}
	}

	pv := propVariable(sp.Subject, pred)
	closure := rdf.StatementPattern{
		Subject:   pv,
		Predicate: rdf.NewIRI(rdf.RdfsSubPropertyOf).WithPath(rdf.PathZeroOrMore),
		Object:    pred,
		Graph:     sp.Graph,
	}
	member := sp
	member.Predicate = pv
	return []rdf.PatternElement{closure, member}
}

// transformFullText rewrites the full-text pseudo-pattern into the
// profile's index invocation. Profiles whose index matches object
// literals re-emit the literal-binding statement afterwards so the
// matched literal stays bound.
func transformFullText(ft rdf.FullTextPattern, profile Profile) []rdf.PatternElement {
	invocation := rdf.StatementPattern{
		Subject:   ft.Subject,
		Predicate: rdf.NewIRI(profile.TextIndexPredicate),
		Object:    rdf.StringLiteral(ft.Query),
	}
	out := []rdf.PatternElement{invocation}
	if profile.TextIndexOnLiterals && ft.LiteralStatement != nil {
		out = append(out, *ft.LiteralStatement)
	}
	return out
}
