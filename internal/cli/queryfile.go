package cli

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arkival/trellis/internal/rdf"
	"github.com/arkival/trellis/internal/sparql"
)

// QueryFile is the YAML surface syntax for a SELECT query. Terms are
// written compactly: "?name" for variables, "<http://...>" or a prefixed
// name for IRIs (a trailing "*" marks a zero-or-more path), anything else
// for literals. Bare integers and booleans get their xsd datatypes.
type QueryFile struct {
	Select   []string      `yaml:"select"`
	Distinct bool          `yaml:"distinct"`
	Where    []elementSpec `yaml:"where"`
	OrderBy  []string      `yaml:"orderBy,omitempty"`
	Limit    int           `yaml:"limit,omitempty"`
	Offset   int           `yaml:"offset,omitempty"`
}

type elementSpec struct {
	Statement *statementSpec `yaml:"statement,omitempty"`
	FullText  *fullTextSpec  `yaml:"fulltext,omitempty"`
	Filter    *exprSpec      `yaml:"filter,omitempty"`
	Bind      *bindSpec      `yaml:"bind,omitempty"`
	Optional  []elementSpec  `yaml:"optional,omitempty"`
	Union     *unionSpec     `yaml:"union,omitempty"`
	NotExists []elementSpec  `yaml:"notExists,omitempty"`
}

type statementSpec struct {
	S     string `yaml:"s"`
	P     string `yaml:"p"`
	O     string `yaml:"o"`
	Graph string `yaml:"graph,omitempty"`
}

type fullTextSpec struct {
	S     string `yaml:"s"`
	O     string `yaml:"o"`
	Query string `yaml:"query"`
}

type exprSpec struct {
	Expr string   `yaml:"expr"`
	Vars []string `yaml:"vars,omitempty"`
}

type bindSpec struct {
	Var  string   `yaml:"var"`
	Expr string   `yaml:"expr"`
	Vars []string `yaml:"vars,omitempty"`
}

type unionSpec struct {
	Left  []elementSpec `yaml:"left"`
	Right []elementSpec `yaml:"right"`
}

// LoadQueryFile reads a YAML query file and builds the SELECT query.
func LoadQueryFile(path string) (sparql.SelectQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sparql.SelectQuery{}, fmt.Errorf("read query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return sparql.SelectQuery{}, fmt.Errorf("parse query file %s: %w", path, err)
	}
	return qf.Build()
}

// Build converts the YAML surface form into a SelectQuery.
func (qf QueryFile) Build() (sparql.SelectQuery, error) {
	if len(qf.Select) == 0 {
		return sparql.SelectQuery{}, fmt.Errorf("query file selects no variables")
	}
	block, err := buildBlock(qf.Where)
	if err != nil {
		return sparql.SelectQuery{}, err
	}
	vars := make([]string, len(qf.Select))
	for i, v := range qf.Select {
		vars[i] = strings.TrimPrefix(v, "?")
	}
	order := make([]string, len(qf.OrderBy))
	for i, v := range qf.OrderBy {
		order[i] = strings.TrimPrefix(v, "?")
	}
	return sparql.SelectQuery{
		Variables: vars,
		Distinct:  qf.Distinct,
		Block:     block,
		OrderBy:   order,
		Limit:     qf.Limit,
		Offset:    qf.Offset,
	}, nil
}

func buildBlock(specs []elementSpec) (rdf.QueryBlock, error) {
	elems := make([]rdf.PatternElement, 0, len(specs))
	for i, spec := range specs {
		elem, err := buildElement(spec)
		if err != nil {
			return rdf.QueryBlock{}, fmt.Errorf("element %d: %w", i, err)
		}
		elems = append(elems, elem)
	}
	return rdf.Block(elems...), nil
}

func buildElement(spec elementSpec) (rdf.PatternElement, error) {
	switch {
	case spec.Statement != nil:
		return buildStatement(*spec.Statement)
	case spec.FullText != nil:
		return buildFullText(*spec.FullText)
	case spec.Filter != nil:
		return rdf.FilterPattern{Expr: buildExpr(*spec.Filter)}, nil
	case spec.Bind != nil:
		return rdf.BindPattern{
			Var:  rdf.Variable{Name: strings.TrimPrefix(spec.Bind.Var, "?")},
			Expr: buildExpr(exprSpec{Expr: spec.Bind.Expr, Vars: spec.Bind.Vars}),
		}, nil
	case spec.Optional != nil:
		block, err := buildBlock(spec.Optional)
		if err != nil {
			return nil, err
		}
		return rdf.OptionalPattern{Block: block}, nil
	case spec.Union != nil:
		left, err := buildBlock(spec.Union.Left)
		if err != nil {
			return nil, err
		}
		right, err := buildBlock(spec.Union.Right)
		if err != nil {
			return nil, err
		}
		return rdf.UnionPattern{Left: left, Right: right}, nil
	case spec.NotExists != nil:
		block, err := buildBlock(spec.NotExists)
		if err != nil {
			return nil, err
		}
		return rdf.FilterNotExistsPattern{Block: block}, nil
	default:
		return nil, fmt.Errorf("element has no recognized pattern key")
	}
}

func buildStatement(spec statementSpec) (rdf.StatementPattern, error) {
	s, err := parseTerm(spec.S)
	if err != nil {
		return rdf.StatementPattern{}, fmt.Errorf("subject: %w", err)
	}
	p, err := parseTerm(spec.P)
	if err != nil {
		return rdf.StatementPattern{}, fmt.Errorf("predicate: %w", err)
	}
	o, err := parseTerm(spec.O)
	if err != nil {
		return rdf.StatementPattern{}, fmt.Errorf("object: %w", err)
	}
	sp := rdf.Statement(s, p, o)
	if spec.Graph != "" {
		g, err := parseTerm(spec.Graph)
		if err != nil {
			return rdf.StatementPattern{}, fmt.Errorf("graph: %w", err)
		}
		sp = sp.InGraph(g)
	}
	return sp, nil
}

func buildFullText(spec fullTextSpec) (rdf.FullTextPattern, error) {
	s, err := parseTerm(spec.S)
	if err != nil {
		return rdf.FullTextPattern{}, fmt.Errorf("fulltext subject: %w", err)
	}
	if !strings.HasPrefix(spec.O, "?") {
		return rdf.FullTextPattern{}, fmt.Errorf("fulltext object %q must be a variable", spec.O)
	}
	return rdf.FullTextPattern{
		Subject: s,
		Object:  rdf.Variable{Name: strings.TrimPrefix(spec.O, "?")},
		Query:   spec.Query,
	}, nil
}

func buildExpr(spec exprSpec) rdf.Expression {
	vars := spec.Vars
	if vars == nil {
		vars = scanExprVariables(spec.Expr)
	}
	return rdf.Expression{Text: spec.Expr, Variables: vars}
}

// scanExprVariables extracts ?name occurrences from an opaque expression
// so that fixtures need not repeat them.
func scanExprVariables(expr string) []string {
	var names []string
	seen := map[string]bool{}
	for i := 0; i < len(expr); i++ {
		if expr[i] != '?' {
			continue
		}
		j := i + 1
		for j < len(expr) && isNameByte(expr[j]) {
			j++
		}
		if j > i+1 {
			name := expr[i+1 : j]
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		i = j - 1
	}
	return names
}

func isNameByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// parseTerm reads a compact term string.
func parseTerm(s string) (rdf.Term, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty term")
	}
	switch {
	case strings.HasPrefix(s, "?"):
		return rdf.Variable{Name: s[1:]}, nil
	case strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">"):
		return rdf.NewIRI(s[1 : len(s)-1]), nil
	case strings.HasPrefix(s, "\""):
		return parseQuotedLiteral(s)
	}
	if iri, ok := parsePrefixed(s); ok {
		return iri, nil
	}
	// Bare scalars become literals.
	switch s {
	case "true":
		return rdf.BoolLiteral(true), nil
	case "false":
		return rdf.BoolLiteral(false), nil
	}
	if isInteger(s) {
		return rdf.NewLiteral(s, rdf.XsdInteger), nil
	}
	return rdf.StringLiteral(s), nil
}

func parsePrefixed(s string) (rdf.IRI, bool) {
	path := rdf.PathNone
	if strings.HasSuffix(s, "*") {
		path = rdf.PathZeroOrMore
		s = s[:len(s)-1]
	}
	expanded, ok := rdf.ExpandIRI(s)
	if !ok {
		return rdf.IRI{}, false
	}
	return rdf.NewIRI(expanded).WithPath(path), true
}

func parseQuotedLiteral(s string) (rdf.Term, error) {
	end := strings.LastIndex(s, "\"")
	if end == 0 {
		return nil, fmt.Errorf("unterminated literal %q", s)
	}
	lexical := s[1:end]
	rest := s[end+1:]
	if rest == "" {
		return rdf.StringLiteral(lexical), nil
	}
	if !strings.HasPrefix(rest, "^^") {
		return nil, fmt.Errorf("malformed literal suffix %q", rest)
	}
	dt := rest[2:]
	if strings.HasPrefix(dt, "<") && strings.HasSuffix(dt, ">") {
		return rdf.NewLiteral(lexical, dt[1:len(dt)-1]), nil
	}
	expanded, ok := rdf.ExpandIRI(dt)
	if !ok {
		return nil, fmt.Errorf("unknown datatype prefix in %q", dt)
	}
	return rdf.NewLiteral(lexical, expanded), nil
}

func isInteger(s string) bool {
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
