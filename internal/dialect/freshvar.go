package dialect

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/arkival/trellis/internal/rdf"
)

// Domain prefixes for fresh-variable derivation. The null separator
// prevents boundary ambiguity between domain and inputs.
const (
	domainTypeVar = "trellis/typevar/v1"
	domainPropVar = "trellis/propvar/v1"
)

// freshVariable derives a variable name from a domain and the terms of
// the statement being rewritten. The same inputs always yield the same
// name, so repeated transformation of one block is deterministic, and
// distinct statements within one query get distinct names.
func freshVariable(domain string, terms ...rdf.Term) rdf.Variable {
	h := sha256.New()
	h.Write([]byte(domain))
	for _, t := range terms {
		h.Write([]byte{0x00})
		h.Write([]byte(rdf.TermString(t)))
	}
	sum := hex.EncodeToString(h.Sum(nil))
	return rdf.Variable{Name: "g" + sum[:16]}
}

// typeVariable names the fresh variable joining a subject to the
// subclasses of its declared class.
func typeVariable(subject, class rdf.Term) rdf.Variable {
	return freshVariable(domainTypeVar, subject, class)
}

// propVariable names the fresh variable joining a statement to the
// subproperties of its declared predicate.
func propVariable(subject, predicate rdf.Term) rdf.Variable {
	return freshVariable(domainPropVar, subject, predicate)
}
