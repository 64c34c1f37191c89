// Package ledger holds the low-level, state-mutating primitives the
// transaction processor calls: create, fetch, transfer, deposit, and the
// idempotency gate. The processor never touches the Store or ProcessedSet
// directly — every mutation flows through here so the atomicity and
// locking protocol has exactly one implementation.
package ledger

import (
	"github.com/google/uuid"

	"ledger-engine/internal/domain/models"
)

// Ledger is the capability set the transaction processor depends on. The
// in-memory, sharded-store implementation below is the only one this
// repository ships, but the processor is written against this interface so
// a different backing store could be substituted without touching
// dispatch logic.
type Ledger interface {
	CreateAccount(txID uuid.UUID, keys []models.Key) (uuid.UUID, error)
	GetAccount(id uuid.UUID) (models.Account, error)
	Deposit(txID, accountID uuid.UUID, amount uint64) error
	Transfer(txID, src, dst uuid.UUID, amount uint64) error
	IsProcessed(txID uuid.UUID) bool
	MarkProcessed(txID uuid.UUID)
	AccountCount() int
	Accounts() []models.Account
	ProcessedIDs() []uuid.UUID
}

// InMemoryLedger composes a sharded Store and a ProcessedSet. It is safe
// for concurrent use by many goroutines.
type InMemoryLedger struct {
	accounts  *Store
	processed *ProcessedSet
}

// New builds a ledger over fresh, empty containers.
func New() *InMemoryLedger {
	return &InMemoryLedger{
		accounts:  NewStore(defaultShardCount),
		processed: NewProcessedSet(),
	}
}

// Adopt builds a ledger over containers populated by snapshot restore.
func Adopt(accounts *Store, processed *ProcessedSet) *InMemoryLedger {
	return &InMemoryLedger{accounts: accounts, processed: processed}
}

// CreateAccount generates a fresh UUID and inserts a zero-balance account,
// after atomically claiming txID in the processed set. ProcessedSet.Insert
// is itself the atomic check-and-mark: two concurrent calls racing on the
// same txID can only ever have one of them observe a true return, so at
// most one account is ever created per txID, with no separate lock needed
// (there is no existing account to lock on — the account does not exist
// yet).
func (l *InMemoryLedger) CreateAccount(txID uuid.UUID, keys []models.Key) (uuid.UUID, error) {
	if !l.processed.Insert(txID) {
		return uuid.UUID{}, ErrAlreadyProcessed
	}
	acc := models.NewAccount(keys)
	l.accounts.Insert(acc)
	return acc.UUID, nil
}

// GetAccount returns a detached snapshot copy.
func (l *InMemoryLedger) GetAccount(id uuid.UUID) (models.Account, error) {
	return l.accounts.GetClone(id)
}

// Deposit increases the target balance by exactly amount, atomically with
// the idempotency check and mark, all under the entry's exclusive lock —
// mirroring Transfer's TOCTOU guard so two concurrent submissions of the
// same txID cannot both observe "not yet processed" and both apply the
// deposit. Overflow is checked, never saturated.
func (l *InMemoryLedger) Deposit(txID, accountID uuid.UUID, amount uint64) error {
	var opErr error
	err := l.accounts.WithMut(accountID, func(acc *models.Account) {
		if l.processed.Contains(txID) {
			opErr = ErrAlreadyProcessed
			return
		}
		if acc.Balance+amount < acc.Balance {
			opErr = ErrArithmeticOverflow
			return
		}
		acc.Balance += amount
		l.processed.Insert(txID)
	})
	if err != nil {
		return err
	}
	return opErr
}

// Transfer moves amount from src to dst under the ordered two-entry lock.
// All four effects — src balance, dst balance, both history appends, and
// the processed-id insert — are atomic with respect to any concurrent
// reader or writer touching either account.
//
// Callers (the processor) are responsible for the idempotency pre-check
// and the self-transfer policy; Transfer assumes src != dst and that the
// caller has already decided this id should be attempted.
func (l *InMemoryLedger) Transfer(txID, src, dst uuid.UUID, amount uint64) error {
	var opErr error
	err := l.accounts.WithTwoMut(src, dst, func(source, destination *models.Account) {
		// Mandatory TOCTOU guard: a racing duplicate may have committed
		// between the processor's pre-lock check and this pair-lock
		// acquisition. Re-checking here, under the lock, is what makes
		// idempotency linearizable per account pair.
		if l.processed.Contains(txID) {
			opErr = ErrAlreadyProcessed
			return
		}
		if source.Balance < amount {
			opErr = ErrInsufficientFunds
			return
		}
		if destination.Balance+amount < destination.Balance {
			opErr = ErrArithmeticOverflow
			return
		}

		source.Balance -= amount
		destination.Balance += amount
		source.TransactionHistory = append(source.TransactionHistory, txID)
		destination.TransactionHistory = append(destination.TransactionHistory, txID)
		l.processed.Insert(txID)
	})
	if err != nil {
		return err
	}
	return opErr
}

func (l *InMemoryLedger) IsProcessed(txID uuid.UUID) bool { return l.processed.Contains(txID) }

func (l *InMemoryLedger) MarkProcessed(txID uuid.UUID) { l.processed.Insert(txID) }

func (l *InMemoryLedger) AccountCount() int { return l.accounts.Len() }

// Accounts takes a coherent read pass over every account, for snapshotting.
func (l *InMemoryLedger) Accounts() []models.Account { return l.accounts.IterSnapshot() }

// ProcessedIDs returns every transaction id committed so far, for
// snapshotting.
func (l *InMemoryLedger) ProcessedIDs() []uuid.UUID { return l.processed.Snapshot() }
