// Package sparql renders a dialect-specific query block to SPARQL text.
//
// Rendering is deterministic: the same block always produces the same
// bytes, which the golden-file tests rely on. IRIs are emitted in full
// angle-bracket form; no prefix declarations are generated.
//
// The input block must already be dialect-transformed: a remaining
// full-text pseudo-pattern is a rendering error, since only a dialect
// knows its index invocation.
package sparql

import (
	"fmt"
	"strings"

	"github.com/arkival/trellis/internal/rdf"
)

// SelectQuery is a SELECT to render.
type SelectQuery struct {
	// Variables projects the named variables; empty projects *.
	Variables []string

	Distinct bool

	// DefaultGraph, when set, emits a FROM clause (the transformer's
	// default-graph directive).
	DefaultGraph string

	Block rdf.QueryBlock

	// OrderBy lists variables for the ORDER BY clause; results are
	// otherwise store-ordered and non-deterministic.
	OrderBy []string

	Limit  int
	Offset int
}

// ConstructQuery is a CONSTRUCT to render.
type ConstructQuery struct {
	// Template statements build the returned triples.
	Template []rdf.StatementPattern

	DefaultGraph string

	Block rdf.QueryBlock
}

// RenderSelect renders a SELECT query.
func RenderSelect(q SelectQuery) (string, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	if q.Distinct {
		b.WriteString("DISTINCT ")
	}
	if len(q.Variables) == 0 {
		b.WriteString("*")
	} else {
		for i, v := range q.Variables {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString("?" + v)
		}
	}
	b.WriteString("\n")
	writeFrom(&b, q.DefaultGraph)
	b.WriteString("WHERE {\n")
	if err := writeBlock(&b, q.Block, 1); err != nil {
		return "", err
	}
	b.WriteString("}\n")
	for i, v := range q.OrderBy {
		if i == 0 {
			b.WriteString("ORDER BY")
		}
		b.WriteString(" ?" + v)
		if i == len(q.OrderBy)-1 {
			b.WriteString("\n")
		}
	}
	if q.Offset > 0 {
		fmt.Fprintf(&b, "OFFSET %d\n", q.Offset)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, "LIMIT %d\n", q.Limit)
	}
	return b.String(), nil
}

// RenderConstruct renders a CONSTRUCT query.
func RenderConstruct(q ConstructQuery) (string, error) {
	var b strings.Builder
	b.WriteString("CONSTRUCT {\n")
	for _, sp := range q.Template {
		b.WriteString(indent(1))
		writeStatementTerms(&b, sp)
		b.WriteString(" .\n")
	}
	b.WriteString("}\n")
	writeFrom(&b, q.DefaultGraph)
	b.WriteString("WHERE {\n")
	if err := writeBlock(&b, q.Block, 1); err != nil {
		return "", err
	}
	b.WriteString("}\n")
	return b.String(), nil
}

func writeFrom(b *strings.Builder, graph string) {
	if graph != "" {
		fmt.Fprintf(b, "FROM <%s>\n", graph)
	}
}

func writeBlock(b *strings.Builder, block rdf.QueryBlock, depth int) error {
	for _, elem := range block.Elements {
		switch el := elem.(type) {
		case rdf.StatementPattern:
			writeStatement(b, el, depth)
		case rdf.FilterPattern:
			fmt.Fprintf(b, "%sFILTER(%s)\n", indent(depth), el.Expr.Text)
		case rdf.BindPattern:
			fmt.Fprintf(b, "%sBIND(%s AS ?%s)\n", indent(depth), el.Expr.Text, el.Var.Name)
		case rdf.OptionalPattern:
			fmt.Fprintf(b, "%sOPTIONAL {\n", indent(depth))
			if err := writeBlock(b, el.Block, depth+1); err != nil {
				return err
			}
			fmt.Fprintf(b, "%s}\n", indent(depth))
		case rdf.UnionPattern:
			fmt.Fprintf(b, "%s{\n", indent(depth))
			if err := writeBlock(b, el.Left, depth+1); err != nil {
				return err
			}
			fmt.Fprintf(b, "%s} UNION {\n", indent(depth))
			if err := writeBlock(b, el.Right, depth+1); err != nil {
				return err
			}
			fmt.Fprintf(b, "%s}\n", indent(depth))
		case rdf.FilterNotExistsPattern:
			fmt.Fprintf(b, "%sFILTER NOT EXISTS {\n", indent(depth))
			if err := writeBlock(b, el.Block, depth+1); err != nil {
				return err
			}
			fmt.Fprintf(b, "%s}\n", indent(depth))
		case rdf.FullTextPattern:
			return fmt.Errorf("render: full-text pseudo-pattern must be dialect-transformed first")
		default:
			return fmt.Errorf("render: unknown pattern element %T", elem)
		}
	}
	return nil
}

func writeStatement(b *strings.Builder, sp rdf.StatementPattern, depth int) {
	if g, ok := sp.Graph.(rdf.IRI); ok {
		fmt.Fprintf(b, "%sGRAPH <%s> { ", indent(depth), g.Value)
		writeStatementTerms(b, sp)
		b.WriteString(" . }\n")
		return
	}
	b.WriteString(indent(depth))
	writeStatementTerms(b, sp)
	b.WriteString(" .\n")
}

func writeStatementTerms(b *strings.Builder, sp rdf.StatementPattern) {
	b.WriteString(rdf.TermString(sp.Subject))
	b.WriteString(" ")
	b.WriteString(rdf.TermString(sp.Predicate))
	b.WriteString(" ")
	b.WriteString(rdf.TermString(sp.Object))
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
