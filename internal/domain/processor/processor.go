// Package processor implements the transaction processor: instruction
// dispatch, the idempotency gate, validation, and result shaping. It is
// the only caller of the ledger's mutating primitives.
package processor

import (
	"github.com/google/uuid"

	"ledger-engine/internal/domain/ledger"
	"ledger-engine/internal/domain/models"
	"ledger-engine/internal/pkg/validation"
)

// ResultKind tags which variant a Result carries.
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultAccountCreated
	ResultBalance
)

// Result is the processor's success variant: Success | AccountCreated(id) |
// Balance(amount).
type Result struct {
	Kind      ResultKind
	AccountID uuid.UUID
	Balance   uint64
}

func success() Result                   { return Result{Kind: ResultSuccess} }
func accountCreated(id uuid.UUID) Result { return Result{Kind: ResultAccountCreated, AccountID: id} }
func balance(amount uint64) Result       { return Result{Kind: ResultBalance, Balance: amount} }

// Processor dispatches decoded transactions onto the ledger. It does not
// itself suspend: every call takes locks, mutates, releases, and returns.
type Processor struct {
	ledger ledger.Ledger
	txns   *transactionLog
}

// New builds a processor over the given ledger with a fresh transaction
// log, for a cold boot with no prior state.
func New(l ledger.Ledger) *Processor {
	return &Processor{ledger: l, txns: newTransactionLog()}
}

// Adopt builds a processor over a ledger and a transaction log populated
// by snapshot restore.
func Adopt(l ledger.Ledger, txns []models.Transaction) *Processor {
	log := newTransactionLog()
	log.adopt(txns)
	return &Processor{ledger: l, txns: log}
}

// Transactions returns every recorded transaction, for snapshotting.
func (p *Processor) Transactions() []models.Transaction { return p.txns.all() }

// GetTransaction looks up a previously submitted transaction by id. This
// is the one query the hot path never needs — it exists for
// GetTransaction-style external callers.
func (p *Processor) GetTransaction(id uuid.UUID) (models.Transaction, bool) {
	return p.txns.get(id)
}

// AccountsSnapshot takes a coherent read pass over every account, for the
// lifecycle orchestrator's shutdown snapshot.
func (p *Processor) AccountsSnapshot() []models.Account { return p.ledger.Accounts() }

// ProcessedSnapshot returns every processed transaction id, for the
// lifecycle orchestrator's shutdown snapshot.
func (p *Processor) ProcessedSnapshot() []uuid.UUID { return p.ledger.ProcessedIDs() }

// Process dispatches transaction on its instruction kind and returns the
// shaped result or a processor error. It is the engine's single public
// entry point.
func (p *Processor) Process(transaction models.Transaction) (Result, error) {
	switch transaction.Instruction.Kind {
	case models.InstructionCreateAccount:
		return p.processCreateAccount(transaction)
	case models.InstructionDeposit:
		return p.processDeposit(transaction)
	case models.InstructionTransfer:
		return p.processTransfer(transaction)
	case models.InstructionGetBalance:
		return p.processGetBalance(transaction)
	default:
		return Result{}, ErrInvalidAmount
	}
}

// processCreateAccount defers the idempotency check-and-mark entirely to
// the ledger: CreateAccount claims transaction.ID in the processed set and
// creates the account as one atomic step, so two concurrent submissions of
// the same id can never both succeed (the cheap IsProcessed probe below is
// just a pre-filter to skip the txn log write on the common duplicate
// path; it is not itself what makes this correct).
func (p *Processor) processCreateAccount(transaction models.Transaction) (Result, error) {
	if p.ledger.IsProcessed(transaction.ID) {
		return Result{}, ErrTransactionAlreadyProcessed
	}

	p.txns.insert(transaction)

	id, err := p.ledger.CreateAccount(transaction.ID, transaction.Instruction.Keys)
	if err != nil {
		p.txns.setStatus(transaction.ID, models.StatusFailed)
		return Result{}, fromLedgerError(err)
	}

	p.txns.setStatus(transaction.ID, models.StatusCompleted)
	return accountCreated(id), nil
}

// processDeposit defers the idempotency check-and-mark to the ledger's
// Deposit, which performs the check, the balance mutation, and the mark
// under the account's own lock (mirroring Transfer's TOCTOU guard) so two
// concurrent submissions of the same id cannot both apply the amount.
func (p *Processor) processDeposit(transaction models.Transaction) (Result, error) {
	if p.ledger.IsProcessed(transaction.ID) {
		return Result{}, ErrTransactionAlreadyProcessed
	}

	if err := validation.ValidateAmount(transaction.Instruction.Amount); err != nil {
		return Result{}, ErrInvalidAmount
	}

	p.txns.insert(transaction)

	if err := p.ledger.Deposit(transaction.ID, transaction.Instruction.Destination, transaction.Instruction.Amount); err != nil {
		p.txns.setStatus(transaction.ID, models.StatusFailed)
		return Result{}, fromLedgerError(err)
	}

	p.txns.setStatus(transaction.ID, models.StatusCompleted)
	return success(), nil
}

// processTransfer implements the design-critical path from the spec:
//
//  1. If already processed, reject.
//  2. If src == dst, apply the self-transfer policy (no-op commit: mark
//     processed, return Success) without acquiring the pair-lock.
//  3. Acquire both entries in UUID-lexicographic order.
//  4. Re-check is_processed under the lock (TOCTOU guard).
//  5. Reject on insufficient funds.
//  6. Checked arithmetic; overflow rejects.
//  7. Write both balances, append both histories, mark processed.
//  8. Release, return Success.
//
// Steps 3-8 are the ledger's Transfer; this function owns 1, 2, and
// validation, and translates the ledger's errors.
func (p *Processor) processTransfer(transaction models.Transaction) (Result, error) {
	instr := transaction.Instruction

	if p.ledger.IsProcessed(transaction.ID) {
		return Result{}, ErrTransactionAlreadyProcessed
	}

	if err := validation.ValidateAmount(instr.Amount); err != nil {
		return Result{}, ErrInvalidAmount
	}

	if instr.Source == instr.Destination {
		p.txns.insert(transaction)
		p.ledger.MarkProcessed(transaction.ID)
		p.txns.setStatus(transaction.ID, models.StatusCompleted)
		return success(), nil
	}

	p.txns.insert(transaction)

	if err := p.ledger.Transfer(transaction.ID, instr.Source, instr.Destination, instr.Amount); err != nil {
		p.txns.setStatus(transaction.ID, models.StatusFailed)
		return Result{}, fromLedgerError(err)
	}

	p.txns.setStatus(transaction.ID, models.StatusCompleted)
	return success(), nil
}

// processGetBalance is read-only: it never mutates state and is never
// recorded in the processed-id set or the transaction log.
func (p *Processor) processGetBalance(transaction models.Transaction) (Result, error) {
	acc, err := p.ledger.GetAccount(transaction.Instruction.Account)
	if err != nil {
		return Result{}, fromLedgerError(err)
	}
	return balance(acc.Balance), nil
}
