package rdf

import (
	"errors"
	"fmt"
)

// MalformedQueryError reports a pattern model that violates a structural
// invariant. Malformed queries are rejected before any store call.
type MalformedQueryError struct {
	// Message describes the violated invariant.
	Message string

	// Element renders the offending element, when one can be named.
	Element string
}

func (e *MalformedQueryError) Error() string {
	if e.Element != "" {
		return fmt.Sprintf("malformed query: %s (%s)", e.Message, e.Element)
	}
	return "malformed query: " + e.Message
}

// IsMalformedQuery reports whether err is a MalformedQueryError. Uses
// errors.As to handle wrapped errors.
func IsMalformedQuery(err error) bool {
	var me *MalformedQueryError
	return errors.As(err, &me)
}

// ValidateBlock checks the structural invariants of a query block:
//
//  1. Every statement position is non-nil; predicates are IRIs or
//     variables, never literals; subjects are never literals.
//  2. A Bind may not rebind a variable introduced by an earlier element
//     of the same block.
//  3. A FullTextPattern carries a non-empty search string.
//  4. Union branches and Optional/NotExists sub-blocks are non-empty and
//     recursively valid.
//
// Returns nil when the block is well-formed.
func ValidateBlock(block QueryBlock) error {
	return validateBlock(block, map[string]bool{})
}

func validateBlock(block QueryBlock, bound map[string]bool) error {
	for _, elem := range block.Elements {
		switch el := elem.(type) {
		case StatementPattern:
			if err := validateStatement(el); err != nil {
				return err
			}
			bindStatementVars(el, bound)
		case FilterPattern:
			if el.Expr.Text == "" {
				return &MalformedQueryError{Message: "empty filter expression"}
			}
		case BindPattern:
			if el.Var.Name == "" {
				return &MalformedQueryError{Message: "bind with unnamed variable"}
			}
			if bound[el.Var.Name] {
				return &MalformedQueryError{
					Message: "bind rebinds an already bound variable",
					Element: el.Var.String(),
				}
			}
			bound[el.Var.Name] = true
		case FullTextPattern:
			if el.Query == "" {
				return &MalformedQueryError{Message: "full-text search with empty query string"}
			}
			if el.Subject == nil {
				return &MalformedQueryError{Message: "full-text search with nil subject"}
			}
			bound[el.Object.Name] = true
			if v, ok := el.Subject.(Variable); ok {
				bound[v.Name] = true
			}
		case OptionalPattern:
			if len(el.Block.Elements) == 0 {
				return &MalformedQueryError{Message: "empty optional block"}
			}
			if err := validateBlock(el.Block, childScope(bound)); err != nil {
				return err
			}
		case UnionPattern:
			if len(el.Left.Elements) == 0 || len(el.Right.Elements) == 0 {
				return &MalformedQueryError{Message: "union with empty branch"}
			}
			if err := validateBlock(el.Left, childScope(bound)); err != nil {
				return err
			}
			if err := validateBlock(el.Right, childScope(bound)); err != nil {
				return err
			}
		case FilterNotExistsPattern:
			if len(el.Block.Elements) == 0 {
				return &MalformedQueryError{Message: "empty filter-not-exists block"}
			}
			if err := validateBlock(el.Block, childScope(bound)); err != nil {
				return err
			}
		default:
			return &MalformedQueryError{Message: fmt.Sprintf("unknown pattern element %T", elem)}
		}
	}
	return nil
}

func validateStatement(sp StatementPattern) error {
	if sp.Subject == nil || sp.Predicate == nil || sp.Object == nil {
		return &MalformedQueryError{Message: "statement with nil term"}
	}
	if _, ok := sp.Subject.(Literal); ok {
		return &MalformedQueryError{
			Message: "literal in subject position",
			Element: TermString(sp.Subject),
		}
	}
	if _, ok := sp.Predicate.(Literal); ok {
		return &MalformedQueryError{
			Message: "literal in predicate position",
			Element: TermString(sp.Predicate),
		}
	}
	return nil
}

func bindStatementVars(sp StatementPattern, bound map[string]bool) {
	for _, name := range VariableNames(sp.Subject, sp.Predicate, sp.Object) {
		bound[name] = true
	}
}

// childScope copies the bound set so sub-blocks see outer bindings but
// cannot leak their own outward.
func childScope(bound map[string]bool) map[string]bool {
	child := make(map[string]bool, len(bound))
	for k, v := range bound {
		child[k] = v
	}
	return child
}
