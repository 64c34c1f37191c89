package ledger

import (
	"sync"

	"github.com/google/uuid"
)

// ProcessedSet is a concurrent set of transaction ids that have committed.
// Presence implies "do not reapply". It is the sole source of truth for
// idempotency: the processor must check membership before any state
// change and insert atomically on commit.
type ProcessedSet struct {
	mu  sync.RWMutex
	ids map[uuid.UUID]struct{}
}

func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{ids: make(map[uuid.UUID]struct{})}
}

// Contains is a membership test under the set's read lock (RLock only):
// readers do not block each other, but they wait for a concurrent Insert.
func (p *ProcessedSet) Contains(id uuid.UUID) bool {
	p.mu.RLock()
	_, ok := p.ids[id]
	p.mu.RUnlock()
	return ok
}

// Insert returns whether id was newly inserted; false means a duplicate.
func (p *ProcessedSet) Insert(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.ids[id]; ok {
		return false
	}
	p.ids[id] = struct{}{}
	return true
}

// Len reports the number of processed ids, for snapshot and metrics.
func (p *ProcessedSet) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.ids)
}

// Snapshot returns a detached copy of every processed id.
func (p *ProcessedSet) Snapshot() []uuid.UUID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(p.ids))
	for id := range p.ids {
		out = append(out, id)
	}
	return out
}
