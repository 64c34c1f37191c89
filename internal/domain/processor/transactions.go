package processor

import (
	"sync"

	"github.com/google/uuid"

	"ledger-engine/internal/domain/models"
)

// transactionLog is the authoritative record of every submitted
// instruction, keyed by transaction id. It exists for snapshot
// completeness and GetTransaction-style queries; the hot path never reads
// it back — idempotency is decided solely by the ledger's ProcessedSet.
type transactionLog struct {
	mu   sync.RWMutex
	txns map[uuid.UUID]models.Transaction
}

func newTransactionLog() *transactionLog {
	return &transactionLog{txns: make(map[uuid.UUID]models.Transaction)}
}

func (t *transactionLog) insert(tx models.Transaction) {
	t.mu.Lock()
	t.txns[tx.ID] = tx
	t.mu.Unlock()
}

func (t *transactionLog) setStatus(id uuid.UUID, status models.TransactionStatus) {
	t.mu.Lock()
	if tx, ok := t.txns[id]; ok {
		tx.Status = status
		t.txns[id] = tx
	}
	t.mu.Unlock()
}

func (t *transactionLog) get(id uuid.UUID) (models.Transaction, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tx, ok := t.txns[id]
	return tx, ok
}

func (t *transactionLog) all() []models.Transaction {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.Transaction, 0, len(t.txns))
	for _, tx := range t.txns {
		out = append(out, tx)
	}
	return out
}

func (t *transactionLog) adopt(txns []models.Transaction) {
	t.mu.Lock()
	for _, tx := range txns {
		t.txns[tx.ID] = tx
	}
	t.mu.Unlock()
}
