package ledger

import (
	"bytes"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"

	"ledger-engine/internal/domain/models"
)

// ErrAccountNotFound is returned by the store (and surfaces through the
// ledger and processor unchanged) when an id has no account.
var ErrAccountNotFound = newLedgerError("account not found")

const defaultShardCount = 32

type shard struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*models.Account
}

// Store is a concurrent map id->Account, partitioned into shards so that
// structural operations (insert, lookup) on unrelated accounts don't
// serialize on a single lock. Mutation of an individual account's balance
// and history happens under that account's own Mu, acquired via WithMut /
// WithTwoMut — the shard lock here only ever protects the map's shape.
type Store struct {
	shards []*shard
}

// NewStore builds a store with shardCount shards. shardCount is rounded up
// to the next power of two so the shard index can be computed with a mask.
func NewStore(shardCount int) *Store {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	n := 1
	for n < shardCount {
		n <<= 1
	}
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{accounts: make(map[uuid.UUID]*models.Account)}
	}
	return &Store{shards: shards}
}

func (s *Store) shardFor(id uuid.UUID) *shard {
	h := fnv.New32a()
	_, _ = h.Write(id[:])
	return s.shards[h.Sum32()&uint32(len(s.shards)-1)]
}

// Insert adds a freshly created account to the store. Used only by
// CreateAccount and by snapshot restore.
func (s *Store) Insert(acc *models.Account) {
	sh := s.shardFor(acc.UUID)
	sh.mu.Lock()
	sh.accounts[acc.UUID] = acc
	sh.mu.Unlock()
}

func (s *Store) lookup(id uuid.UUID) (*models.Account, bool) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	acc, ok := sh.accounts[id]
	sh.mu.RUnlock()
	return acc, ok
}

// GetClone returns a detached copy suitable for read-only use.
func (s *Store) GetClone(id uuid.UUID) (models.Account, error) {
	acc, ok := s.lookup(id)
	if !ok {
		return models.Account{}, ErrAccountNotFound
	}
	acc.Mu.Lock()
	clone := acc.Clone()
	acc.Mu.Unlock()
	return clone, nil
}

// WithMut runs fn under the account's exclusive lock. Used by Deposit.
func (s *Store) WithMut(id uuid.UUID, fn func(acc *models.Account)) error {
	acc, ok := s.lookup(id)
	if !ok {
		return ErrAccountNotFound
	}
	acc.Mu.Lock()
	defer acc.Mu.Unlock()
	fn(acc)
	return nil
}

// WithTwoMut acquires exclusive locks on two distinct accounts in a
// globally consistent order — the account whose UUID sorts smaller
// byte-lexicographically is locked first — and invokes fn with both. This
// ordering is the sole deadlock-avoidance protocol for transfers: two
// concurrent transfers between the same pair, submitted in opposite
// directions, always agree on lock order and therefore never cycle.
func (s *Store) WithTwoMut(idA, idB uuid.UUID, fn func(a, b *models.Account)) error {
	if idA == idB {
		return s.WithMut(idA, func(acc *models.Account) { fn(acc, acc) })
	}

	accA, okA := s.lookup(idA)
	accB, okB := s.lookup(idB)
	if !okA || !okB {
		return ErrAccountNotFound
	}

	first, second := accA, accB
	firstIsA := true
	if bytes.Compare(idA[:], idB[:]) > 0 {
		first, second = accB, accA
		firstIsA = false
	}

	first.Mu.Lock()
	defer first.Mu.Unlock()
	second.Mu.Lock()
	defer second.Mu.Unlock()

	if firstIsA {
		fn(first, second)
	} else {
		fn(second, first)
	}
	return nil
}

// Len returns the number of accounts currently held, for shutdown
// snapshotting and metrics.
func (s *Store) Len() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.accounts)
		sh.mu.RUnlock()
	}
	return total
}

// IterSnapshot takes a coherent read pass over every account and returns
// detached clones, for use by the snapshot persistence layer at shutdown.
func (s *Store) IterSnapshot() []models.Account {
	out := make([]models.Account, 0, s.Len())
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, acc := range sh.accounts {
			acc.Mu.Lock()
			out = append(out, acc.Clone())
			acc.Mu.Unlock()
		}
		sh.mu.RUnlock()
	}
	return out
}
