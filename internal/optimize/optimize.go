// Package optimize reorders the top-level elements of a query block so
// the store evaluates selective patterns first.
//
// Optimize is a stable multi-pass partition: elements keep their relative
// input order within each class, which makes the output deterministic and
// suitable for golden-file comparison. It never moves an element across
// an Optional/Union/FilterNotExists boundary; nested blocks are optimized
// independently, each as its own top level.
package optimize

import (
	"sort"

	"github.com/arkival/trellis/internal/dialect"
	"github.com/arkival/trellis/internal/rdf"
)

// Element classes, in evaluation order.
//
//	rankFullText: full-text index invocations narrow the candidate set
//	  before other joins execute.
//	rankBind: derived values are materialized before anything references
//	  them downstream.
//	rankAnchored: statements with a ground IRI in subject or object
//	  position are cheap equality joins that prune early.
//	rankOther: everything else keeps its input order.
//	rankDeleted: the deletion-flag test gates nothing and runs last.
const (
	rankFullText = iota
	rankBind
	rankAnchored
	rankOther
	rankDeleted
)

// Optimize returns a reordered copy of the block. The input is never
// mutated.
//
// A Bind is never ordered above an earlier element that binds one of its
// expression's variables: such a Bind takes the rank of its latest
// binder, and the stable sort keeps it behind that binder.
//
// Deletion-flag statements whose object is false (or unbound) are
// rewritten to a trailing FilterNotExists over an isDeleted=true
// statement: absence of the triple is the success condition, so rows
// lacking the flag entirely still match. Statements explicitly asking
// for isDeleted=true are left alone.
func Optimize(block rdf.QueryBlock) rdf.QueryBlock {
	elems := make([]rdf.PatternElement, 0, len(block.Elements))
	for _, elem := range block.Elements {
		switch el := elem.(type) {
		case rdf.StatementPattern:
			if rewritten, ok := rewriteDeletedFlag(el); ok {
				elems = append(elems, rewritten)
				continue
			}
			elems = append(elems, el)
		case rdf.OptionalPattern:
			elems = append(elems, rdf.OptionalPattern{Block: Optimize(el.Block)})
		case rdf.UnionPattern:
			elems = append(elems, rdf.UnionPattern{Left: Optimize(el.Left), Right: Optimize(el.Right)})
		case rdf.FilterNotExistsPattern:
			elems = append(elems, rdf.FilterNotExistsPattern{Block: Optimize(el.Block)})
		default:
			elems = append(elems, elem)
		}
	}

	ranks := make([]int, len(elems))
	for i, elem := range elems {
		r := rank(elem)
		if bind, ok := elem.(rdf.BindPattern); ok {
			for j := 0; j < i; j++ {
				if ranks[j] > r && bindsAny(elems[j], bind.Expr.Variables) {
					r = ranks[j]
				}
			}
		}
		ranks[i] = r
	}

	order := make([]int, len(elems))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return ranks[order[i]] < ranks[order[j]]
	})

	out := make([]rdf.PatternElement, len(elems))
	for i, idx := range order {
		out[i] = elems[idx]
	}
	return rdf.QueryBlock{Elements: out}
}

// bindsAny reports whether the element can bind any of the named
// variables.
func bindsAny(elem rdf.PatternElement, names []string) bool {
	bound := boundVariables(elem)
	for _, name := range names {
		for _, b := range bound {
			if b == name {
				return true
			}
		}
	}
	return false
}

// boundVariables lists the variables an element can bind in a solution.
// Sub-blocks count: an Optional or a Union branch may be the only binder
// of a variable a later Bind reads.
func boundVariables(elem rdf.PatternElement) []string {
	switch el := elem.(type) {
	case rdf.StatementPattern:
		return rdf.VariableNames(el.Subject, el.Predicate, el.Object, el.Graph)
	case rdf.FullTextPattern:
		return rdf.VariableNames(el.Subject, el.Object)
	case rdf.BindPattern:
		return []string{el.Var.Name}
	case rdf.OptionalPattern:
		return blockVariables(el.Block)
	case rdf.UnionPattern:
		return append(blockVariables(el.Left), blockVariables(el.Right)...)
	default:
		return nil
	}
}

func blockVariables(block rdf.QueryBlock) []string {
	var names []string
	for _, elem := range block.Elements {
		names = append(names, boundVariables(elem)...)
	}
	return names
}

func rank(elem rdf.PatternElement) int {
	switch el := elem.(type) {
	case rdf.FullTextPattern:
		return rankFullText
	case rdf.BindPattern:
		return rankBind
	case rdf.StatementPattern:
		if isTextIndexInvocation(el) {
			return rankFullText
		}
		if rdf.IsIRI(el.Subject) || rdf.IsIRI(el.Object) {
			return rankAnchored
		}
		return rankOther
	case rdf.FilterNotExistsPattern:
		if isDeletedGuard(el) {
			return rankDeleted
		}
		return rankOther
	default:
		return rankOther
	}
}

// rewriteDeletedFlag converts "?s isDeleted false" (or an unbound flag
// variable) into a FilterNotExists guard. The guard form is stricter than
// suffix ordering alone: it also matches entities carrying no flag.
func rewriteDeletedFlag(sp rdf.StatementPattern) (rdf.FilterNotExistsPattern, bool) {
	pred, ok := sp.Predicate.(rdf.IRI)
	if !ok || pred.Value != rdf.IsDeleted {
		return rdf.FilterNotExistsPattern{}, false
	}
	if lit, ok := sp.Object.(rdf.Literal); ok && lit.Lexical == "true" {
		return rdf.FilterNotExistsPattern{}, false
	}
	guard := rdf.Statement(sp.Subject, rdf.NewIRI(rdf.IsDeleted), rdf.BoolLiteral(true))
	guard.Graph = sp.Graph
	return rdf.FilterNotExistsPattern{Block: rdf.Block(guard)}, true
}

func isDeletedGuard(fne rdf.FilterNotExistsPattern) bool {
	if len(fne.Block.Elements) != 1 {
		return false
	}
	sp, ok := fne.Block.Elements[0].(rdf.StatementPattern)
	if !ok {
		return false
	}
	pred, ok := sp.Predicate.(rdf.IRI)
	return ok && pred.Value == rdf.IsDeleted
}

func isTextIndexInvocation(sp rdf.StatementPattern) bool {
	pred, ok := sp.Predicate.(rdf.IRI)
	if !ok {
		return false
	}
	for _, index := range dialect.TextIndexPredicates() {
		if pred.Value == index {
			return true
		}
	}
	return false
}
