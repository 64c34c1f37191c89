package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus is the external view of a Transaction's lifecycle:
// Pending -> Completed on success, Pending -> Failed on any error.
type TransactionStatus int

const (
	StatusPending TransactionStatus = iota
	StatusCompleted
	StatusFailed
)

func (s TransactionStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// InstructionKind tags which variant an Instruction carries.
type InstructionKind int

const (
	InstructionTransfer InstructionKind = iota
	InstructionCreateAccount
	InstructionDeposit
	InstructionGetBalance
)

// Instruction is a tagged union over the four operations the engine
// accepts. Exactly the fields relevant to Kind are populated.
type Instruction struct {
	Kind InstructionKind

	// Transfer
	Source      uuid.UUID
	Destination uuid.UUID
	Amount      uint64

	// CreateAccount
	Keys []Key

	// Deposit reuses Destination + Amount above.

	// GetBalance
	Account uuid.UUID
}

func TransferInstruction(source, destination uuid.UUID, amount uint64) Instruction {
	return Instruction{Kind: InstructionTransfer, Source: source, Destination: destination, Amount: amount}
}

func CreateAccountInstruction(keys []Key) Instruction {
	return Instruction{Kind: InstructionCreateAccount, Keys: keys}
}

func DepositInstruction(destination uuid.UUID, amount uint64) Instruction {
	return Instruction{Kind: InstructionDeposit, Destination: destination, Amount: amount}
}

func GetBalanceInstruction(account uuid.UUID) Instruction {
	return Instruction{Kind: InstructionGetBalance, Account: account}
}

// Transaction is the durable record of a submitted instruction. The
// account histories hold only transaction ids; this map is the
// authoritative record of what instruction a given id represents.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	Instruction Instruction       `json:"instruction"`
	Status      TransactionStatus `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
}

func NewTransaction(id uuid.UUID, instruction Instruction, timestamp time.Time) Transaction {
	return Transaction{
		ID:          id,
		Instruction: instruction,
		Status:      StatusPending,
		Timestamp:   timestamp,
	}
}
