package permission

import (
	"sort"
	"strings"

	"github.com/arkival/trellis/internal/rdf"
)

// Entry is one (code, principal) pair of a literal. Principal is always
// stored as a full group/role IRI; parsing resolves keywords and the
// knora-admin prefix, formatting re-compacts well-known groups.
type Entry struct {
	Code      Code
	Principal string
}

// Literal is a parsed permission literal. Entries are kept in canonical
// order: descending code, ties broken by ascending principal token.
type Literal struct {
	Kind    Kind
	Entries []Entry
}

// Reserved principal keywords accepted on input.
var principalKeywords = map[string]string{
	"any-user":       rdf.UnknownUser,
	"known-user":     rdf.KnownUser,
	"project-member": rdf.ProjectMember,
	"creator":        rdf.Creator,
}

const adminPrefix = "knora-admin:"

// resolvePrincipal expands a wire principal token to a full IRI.
func resolvePrincipal(token string) (string, bool) {
	if iri, ok := principalKeywords[token]; ok {
		return iri, true
	}
	if rest, ok := strings.CutPrefix(token, adminPrefix); ok {
		return rdf.KnoraAdminPrefix + rest, true
	}
	if strings.Contains(token, "://") {
		return token, true
	}
	return "", false
}

// principalToken compacts a principal IRI to its canonical wire token.
// Well-known knora-admin groups use the prefixed form; anything else is
// emitted as a full IRI.
func principalToken(iri string) string {
	if rest, ok := strings.CutPrefix(iri, rdf.KnoraAdminPrefix); ok {
		return adminPrefix + rest
	}
	return iri
}

// Parse parses a permission literal of the given kind.
//
// Grammar: entries separated by "|", each entry "CODE principal" with a
// comma-separated principal list. Fails on an unknown code, a missing
// principal, or the same principal listed twice.
func Parse(kind Kind, s string) (Literal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Literal{}, &ValidationError{Code: ErrCodeEmptyPermissionSet, Message: "empty permission literal"}
	}

	seen := map[string]bool{}
	var entries []Entry
	for _, part := range strings.Split(s, "|") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			return Literal{}, &ValidationError{Code: ErrCodeEmptyPermissionSet, Message: "empty permission entry"}
		}
		code, ok := ParseCode(kind, fields[0])
		if !ok {
			return Literal{}, &ValidationError{
				Code:    ErrCodeInvalidPermissionCode,
				Message: "unknown " + kind.String() + " permission token",
				Token:   fields[0],
			}
		}
		if len(fields) != 2 {
			return Literal{}, &ValidationError{
				Code:    ErrCodeMissingPrincipal,
				Message: "permission entry must be CODE followed by its principals",
				Token:   fields[0],
			}
		}
		// The original data allows one code to grant several principals,
		// comma separated: "CR knora-admin:Creator,knora-admin:ProjectAdmin".
		for _, raw := range strings.Split(fields[1], ",") {
			principal, ok := resolvePrincipal(raw)
			if !ok {
				return Literal{}, &ValidationError{
					Code:    ErrCodeMissingPrincipal,
					Message: "unrecognized principal reference",
					Token:   raw,
				}
			}
			if seen[principal] {
				return Literal{}, &ValidationError{
					Code:    ErrCodeDuplicatePrincipal,
					Message: "principal listed more than once",
					Token:   raw,
				}
			}
			seen[principal] = true
			entries = append(entries, Entry{Code: code, Principal: principal})
		}
	}

	lit := Literal{Kind: kind, Entries: entries}
	lit.canonicalize()
	return lit, nil
}

// Format serializes the literal in canonical form. Parsing the result
// yields a literal that formats to the identical byte sequence.
func (l Literal) Format() string {
	c := l
	c.canonicalize()
	parts := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		parts = append(parts, Token(c.Kind, e.Code)+" "+principalToken(e.Principal))
	}
	return strings.Join(parts, "|")
}

// canonicalize sorts entries by descending code, ties by ascending
// principal token.
func (l *Literal) canonicalize() {
	sort.SliceStable(l.Entries, func(i, j int) bool {
		a, b := l.Entries[i], l.Entries[j]
		if a.Code != b.Code {
			return a.Code > b.Code
		}
		return principalToken(a.Principal) < principalToken(b.Principal)
	})
}

// CodeFor returns the code granted to the exact principal IRI, if any.
func (l Literal) CodeFor(principal string) (Code, bool) {
	for _, e := range l.Entries {
		if e.Principal == principal {
			return e.Code, true
		}
	}
	return 0, false
}
