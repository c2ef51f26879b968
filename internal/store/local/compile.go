package local

import (
	"fmt"
	"strings"

	"github.com/arkival/trellis/internal/dialect"
	"github.com/arkival/trellis/internal/rdf"
)

// FragmentError reports a block element the embedded backend cannot
// execute.
type FragmentError struct {
	Element string
}

func (e *FragmentError) Error() string {
	return "outside the embedded fragment: " + e.Element
}

// varBinding is where a variable's term is read from. IRI positions
// (subject, predicate) have no kind or datatype column.
type varBinding struct {
	kindExpr  string // empty for IRI positions
	valueExpr string
	dtExpr    string // empty for IRI positions
}

// compiled is a block lowered to a parameterized self-join over the
// triples table. All values are parameterized, never interpolated.
type compiled struct {
	aliases  []string
	conds    []string
	args     []any
	vars     map[string]varBinding
	varOrder []string
}

func compileBlock(block rdf.QueryBlock) (*compiled, error) {
	c := &compiled{vars: map[string]varBinding{}}
	for _, elem := range block.Elements {
		switch el := elem.(type) {
		case rdf.StatementPattern:
			if err := c.addStatement(el); err != nil {
				return nil, err
			}
		case rdf.FilterNotExistsPattern:
			if err := c.addNotExists(el); err != nil {
				return nil, err
			}
		default:
			return nil, &FragmentError{Element: fmt.Sprintf("%T", elem)}
		}
	}
	if len(c.aliases) == 0 {
		return nil, &FragmentError{Element: "empty block"}
	}
	return c, nil
}

func (c *compiled) addStatement(sp rdf.StatementPattern) error {
	pred, isIRIPred := sp.Predicate.(rdf.IRI)
	if isIRIPred && pred.Path != rdf.PathNone {
		return &FragmentError{Element: "property path " + pred.String()}
	}
	if isIRIPred && pred.Value == dialect.EmbeddedTextMatch {
		return c.addTextMatch(sp)
	}

	alias := c.nextAlias()
	if err := c.bindIRIPosition(alias+".subject", sp.Subject, "subject"); err != nil {
		return err
	}
	if err := c.bindIRIPosition(alias+".predicate", sp.Predicate, "predicate"); err != nil {
		return err
	}
	c.bindObject(alias, sp.Object)

	if g, ok := sp.Graph.(rdf.IRI); ok {
		c.conds = append(c.conds, alias+".graph = ?")
		c.args = append(c.args, g.Value)
	}
	return nil
}

// addTextMatch lowers the Embedded dialect's text-match pseudo-predicate
// to a case-blind substring match over literal objects.
func (c *compiled) addTextMatch(sp rdf.StatementPattern) error {
	query, ok := sp.Object.(rdf.Literal)
	if !ok {
		return &FragmentError{Element: "text match with non-literal query"}
	}
	alias := c.nextAlias()
	if err := c.bindIRIPosition(alias+".subject", sp.Subject, "subject"); err != nil {
		return err
	}
	c.conds = append(c.conds,
		alias+".object_kind = 'literal'",
		alias+".object_value LIKE ? ESCAPE '\\'")
	c.args = append(c.args, "%"+escapeLike(query.Lexical)+"%")
	return nil
}

func (c *compiled) addNotExists(fne rdf.FilterNotExistsPattern) error {
	if len(fne.Block.Elements) != 1 {
		return &FragmentError{Element: "multi-statement FILTER NOT EXISTS"}
	}
	sp, ok := fne.Block.Elements[0].(rdf.StatementPattern)
	if !ok {
		return &FragmentError{Element: "non-statement FILTER NOT EXISTS"}
	}

	var conds []string
	ref := func(col string, t rdf.Term) error {
		switch term := t.(type) {
		case rdf.Variable:
			outer, bound := c.vars[term.Name]
			if !bound {
				return &FragmentError{Element: "unbound variable " + term.String() + " in FILTER NOT EXISTS"}
			}
			conds = append(conds, col+" = "+outer.valueExpr)
		case rdf.IRI:
			if term.Path != rdf.PathNone {
				return &FragmentError{Element: "property path " + term.String()}
			}
			conds = append(conds, col+" = ?")
			c.args = append(c.args, term.Value)
		case rdf.Literal:
			conds = append(conds, col+" = ?")
			c.args = append(c.args, term.Lexical)
		}
		return nil
	}
	if err := ref("x.subject", sp.Subject); err != nil {
		return err
	}
	if err := ref("x.predicate", sp.Predicate); err != nil {
		return err
	}
	if err := ref("x.object_value", sp.Object); err != nil {
		return err
	}

	c.conds = append(c.conds,
		"NOT EXISTS (SELECT 1 FROM triples x WHERE "+strings.Join(conds, " AND ")+")")
	return nil
}

// bindIRIPosition handles a subject or predicate position, which is
// always an IRI in stored data.
func (c *compiled) bindIRIPosition(col string, t rdf.Term, position string) error {
	switch term := t.(type) {
	case rdf.Variable:
		c.bindVar(term.Name, varBinding{valueExpr: col})
	case rdf.IRI:
		c.conds = append(c.conds, col+" = ?")
		c.args = append(c.args, term.Value)
	case rdf.Literal:
		return &FragmentError{Element: "literal in " + position + " position"}
	}
	return nil
}

func (c *compiled) bindObject(alias string, t rdf.Term) {
	switch term := t.(type) {
	case rdf.Variable:
		c.bindVar(term.Name, varBinding{
			kindExpr:  alias + ".object_kind",
			valueExpr: alias + ".object_value",
			dtExpr:    alias + ".object_datatype",
		})
	case rdf.IRI:
		c.conds = append(c.conds, alias+".object_kind = 'iri'", alias+".object_value = ?")
		c.args = append(c.args, term.Value)
	case rdf.Literal:
		c.conds = append(c.conds,
			alias+".object_kind = 'literal'",
			alias+".object_value = ?",
			alias+".object_datatype = ?")
		c.args = append(c.args, term.Lexical, term.Datatype)
	}
}

// bindVar records the first occurrence of a variable and joins later
// occurrences to it by value equality. Joining an object position to an
// IRI position constrains the object kind.
func (c *compiled) bindVar(name string, binding varBinding) {
	existing, bound := c.vars[name]
	if !bound {
		c.vars[name] = binding
		c.varOrder = append(c.varOrder, name)
		return
	}
	c.conds = append(c.conds, binding.valueExpr+" = "+existing.valueExpr)
	if binding.kindExpr != "" && existing.kindExpr == "" {
		c.conds = append(c.conds, binding.kindExpr+" = 'iri'")
	}
	if binding.kindExpr == "" && existing.kindExpr != "" {
		c.conds = append(c.conds, existing.kindExpr+" = 'iri'")
	}
}

// projected resolves the variable names the SELECT emits, in order.
func (c *compiled) projected(projection []string) []string {
	if len(projection) == 0 {
		return c.varOrder
	}
	var names []string
	for _, name := range projection {
		if _, ok := c.vars[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// sql assembles the final query. Every query carries a deterministic
// ORDER BY over the projected value columns.
func (c *compiled) sql(projection []string, limit, offset int) (string, []any) {
	names := c.projected(projection)

	var selects []string
	var orderBy []string
	for i, name := range names {
		b := c.vars[name]
		kind := "'iri'"
		if b.kindExpr != "" {
			kind = b.kindExpr
		}
		dt := "''"
		if b.dtExpr != "" {
			dt = b.dtExpr
		}
		selects = append(selects,
			fmt.Sprintf("%s AS v%d_kind", kind, i),
			fmt.Sprintf("%s AS v%d_value", b.valueExpr, i),
			fmt.Sprintf("%s AS v%d_datatype", dt, i))
		orderBy = append(orderBy, fmt.Sprintf("v%d_value COLLATE BINARY ASC", i))
	}

	var b strings.Builder
	b.WriteString("SELECT DISTINCT ")
	b.WriteString(strings.Join(selects, ", "))
	b.WriteString(" FROM ")
	b.WriteString(strings.Join(c.aliases, ", "))
	if len(c.conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(c.conds, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(strings.Join(orderBy, ", "))

	args := append([]any(nil), c.args...)
	if limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, limit)
		if offset > 0 {
			b.WriteString(" OFFSET ?")
			args = append(args, offset)
		}
	}
	return b.String(), args
}

func (c *compiled) nextAlias() string {
	alias := fmt.Sprintf("t%d", len(c.aliases))
	c.aliases = append(c.aliases, "triples "+alias)
	return alias
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}
