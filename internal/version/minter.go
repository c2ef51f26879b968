package version

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Minter produces IRIs for newly created value versions.
type Minter interface {
	NewValueIRI(resourceIRI string) string
}

// UUIDMinter mints value IRIs under the resource with a time-sortable
// UUIDv7 suffix, so versions of one resource sort by creation.
//
// Stateless and safe for concurrent use.
type UUIDMinter struct{}

// NewValueIRI returns "<resourceIRI>/values/<uuidv7>".
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDMinter) NewValueIRI(resourceIRI string) string {
	return fmt.Sprintf("%s/values/%s", resourceIRI, uuid.Must(uuid.NewV7()).String())
}

// FixedMinter returns predetermined IRIs for testing, enabling
// deterministic assertions on minted identities.
//
// Safe for concurrent use via internal mutex.
type FixedMinter struct {
	mu   sync.Mutex
	iris []string
	idx  int
}

// NewFixedMinter creates a FixedMinter over the given IRIs.
func NewFixedMinter(iris ...string) *FixedMinter {
	return &FixedMinter{iris: iris}
}

// NewValueIRI returns the next predetermined IRI, falling back to a
// counter-derived IRI when the sequence is exhausted.
func (m *FixedMinter) NewValueIRI(resourceIRI string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idx < len(m.iris) {
		iri := m.iris[m.idx]
		m.idx++
		return iri
	}
	m.idx++
	return fmt.Sprintf("%s/values/fixed-%d", resourceIRI, m.idx)
}
