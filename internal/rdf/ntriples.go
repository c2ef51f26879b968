package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// FormatTriple renders a triple as one N-Triples line (without newline).
// Graph scope is not representable in N-Triples and is omitted.
func FormatTriple(t Triple) string {
	return fmt.Sprintf("<%s> <%s> %s .", t.Subject, t.Predicate, formatObject(t.Object))
}

func formatObject(o Term) string {
	switch obj := o.(type) {
	case IRI:
		return "<" + obj.Value + ">"
	case Literal:
		if obj.Datatype == "" || obj.Datatype == XsdString {
			return quoteLiteral(obj.Lexical)
		}
		return quoteLiteral(obj.Lexical) + "^^<" + obj.Datatype + ">"
	default:
		return "<>"
	}
}

func quoteLiteral(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}

// ParseNTriples reads N-Triples lines from r. Blank lines and comment
// lines starting with '#' are skipped. Blank nodes are not supported;
// every subject in this engine's data is an IRI.
func ParseNTriples(r io.Reader) ([]Triple, error) {
	var triples []Triple
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		t, err := parseNTripleLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		triples = append(triples, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read triples: %w", err)
	}
	return triples, nil
}

func parseNTripleLine(line string) (Triple, error) {
	line = strings.TrimSuffix(strings.TrimSpace(line), ".")
	line = strings.TrimSpace(line)

	subject, rest, err := takeIRI(line)
	if err != nil {
		return Triple{}, fmt.Errorf("subject: %w", err)
	}
	predicate, rest, err := takeIRI(rest)
	if err != nil {
		return Triple{}, fmt.Errorf("predicate: %w", err)
	}
	object, err := parseObject(strings.TrimSpace(rest))
	if err != nil {
		return Triple{}, fmt.Errorf("object: %w", err)
	}
	return Triple{Subject: subject, Predicate: predicate, Object: object}, nil
}

func takeIRI(s string) (string, string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "<") {
		return "", "", fmt.Errorf("expected IRI, got %q", truncate(s))
	}
	end := strings.Index(s, ">")
	if end < 0 {
		return "", "", fmt.Errorf("unterminated IRI in %q", truncate(s))
	}
	return s[1:end], s[end+1:], nil
}

func parseObject(s string) (Term, error) {
	if strings.HasPrefix(s, "<") {
		iri, rest, err := takeIRI(s)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(rest) != "" {
			return nil, fmt.Errorf("trailing tokens after IRI in %q", truncate(s))
		}
		return NewIRI(iri), nil
	}
	if !strings.HasPrefix(s, `"`) {
		return nil, fmt.Errorf("expected IRI or literal, got %q", truncate(s))
	}

	lexical, rest, err := takeQuoted(s)
	if err != nil {
		return nil, err
	}
	rest = strings.TrimSpace(rest)
	datatype := XsdString
	if after, ok := strings.CutPrefix(rest, "^^"); ok {
		dt, trailing, err := takeIRI(after)
		if err != nil {
			return nil, fmt.Errorf("datatype: %w", err)
		}
		if strings.TrimSpace(trailing) != "" {
			return nil, fmt.Errorf("trailing tokens after datatype in %q", truncate(s))
		}
		datatype = dt
	} else if strings.HasPrefix(rest, "@") {
		// Language tags are accepted and dropped; the engine treats
		// language-tagged strings as plain strings.
	} else if rest != "" {
		return nil, fmt.Errorf("trailing tokens after literal in %q", truncate(s))
	}
	return NewLiteral(lexical, datatype), nil
}

func takeQuoted(s string) (string, string, error) {
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		if c == '"' {
			return b.String(), s[i+1:], nil
		}
		if c == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte('\\')
				b.WriteByte(s[i])
			}
			i++
			continue
		}
		b.WriteByte(c)
		i++
	}
	return "", "", fmt.Errorf("unterminated literal in %q", truncate(s))
}

func truncate(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
