package harness

import (
	"sort"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/arkival/trellis/internal/rdf"
)

// Trace renders the SELECT rows of a result as stable text, one solution
// per line with bindings in variable-name order. Identical results
// always render identically, so traces can be compared against golden
// files.
func Trace(r *Result) string {
	if len(r.Rows) == 0 {
		return "no rows\n"
	}
	var b strings.Builder
	for _, row := range r.Rows {
		names := make([]string, 0, len(row))
		for name := range row {
			names = append(names, name)
		}
		sort.Strings(names)
		for i, name := range names {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte('?')
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(rdf.TermString(row[name]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// CompareTrace asserts the result's trace against the named golden file
// under testdata/golden. Run with -update to rewrite fixtures.
func CompareTrace(t *testing.T, name string, r *Result) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(Trace(r)))
}
