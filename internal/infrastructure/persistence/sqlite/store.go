// Package sqlite implements snapshot persistence against an embedded,
// file-backed SQL database reached through database/sql. It mirrors the
// reference service's PostgreSQL repository in shape — a pooled
// connection, transactional writes, row-by-row scans — but targets a
// single local file instead of a network server, since the engine's
// durability story is a shutdown-time snapshot, not a live-replicated
// store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"ledger-engine/internal/domain/models"
)

// Store owns the snapshot file's schema and the load/save round-trip.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the snapshot file at path and ensures
// its schema exists. Absence of the file means "empty engine".
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	db.SetMaxOpenConns(1) // single-file SQLite: one writer at a time

	s := &Store{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			uuid TEXT PRIMARY KEY,
			balance INTEGER NOT NULL,
			keys TEXT NOT NULL,
			transaction_history TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			instruction TEXT NOT NULL,
			status TEXT NOT NULL,
			timestamp TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS processed_transactions (
			id TEXT PRIMARY KEY
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// transactionHistoryRow and instructionRow are the JSON-friendly shapes
// persisted in the transaction_history / instruction columns.
type transactionHistoryRow = []uuid.UUID

type instructionRow struct {
	Kind        models.InstructionKind `json:"kind"`
	Source      uuid.UUID              `json:"source,omitempty"`
	Destination uuid.UUID              `json:"destination,omitempty"`
	Amount      uint64                 `json:"amount,omitempty"`
	Keys        []models.Key           `json:"keys,omitempty"`
	Account     uuid.UUID              `json:"account,omitempty"`
}

func toInstructionRow(i models.Instruction) instructionRow {
	return instructionRow{
		Kind:        i.Kind,
		Source:      i.Source,
		Destination: i.Destination,
		Amount:      i.Amount,
		Keys:        i.Keys,
		Account:     i.Account,
	}
}

func fromInstructionRow(r instructionRow) models.Instruction {
	return models.Instruction{
		Kind:        r.Kind,
		Source:      r.Source,
		Destination: r.Destination,
		Amount:      r.Amount,
		Keys:        r.Keys,
		Account:     r.Account,
	}
}

// State is the full durable snapshot: every account, every submitted
// transaction, and every processed transaction id.
type State struct {
	Accounts     []models.Account
	Transactions []models.Transaction
	Processed    []uuid.UUID
}

// SaveState is a full rewrite inside one transaction: DELETE FROM … then
// bulk INSERT for each container. It is invoked only at graceful
// shutdown — the engine is not write-through.
func (s *Store) SaveState(ctx context.Context, state State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"accounts", "transactions", "processed_transactions"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, acc := range state.Accounts {
		keysJSON, err := json.Marshal(acc.Keys)
		if err != nil {
			return fmt.Errorf("marshal keys for %s: %w", acc.UUID, err)
		}
		historyJSON, err := json.Marshal(acc.TransactionHistory)
		if err != nil {
			return fmt.Errorf("marshal history for %s: %w", acc.UUID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (uuid, balance, keys, transaction_history) VALUES (?, ?, ?, ?)`,
			acc.UUID.String(), acc.Balance, string(keysJSON), string(historyJSON),
		); err != nil {
			return fmt.Errorf("insert account %s: %w", acc.UUID, err)
		}
	}

	for _, txn := range state.Transactions {
		instrJSON, err := json.Marshal(toInstructionRow(txn.Instruction))
		if err != nil {
			return fmt.Errorf("marshal instruction for %s: %w", txn.ID, err)
		}
		statusJSON, err := json.Marshal(txn.Status)
		if err != nil {
			return fmt.Errorf("marshal status for %s: %w", txn.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, instruction, status, timestamp) VALUES (?, ?, ?, ?)`,
			txn.ID.String(), string(instrJSON), string(statusJSON), txn.Timestamp.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("insert transaction %s: %w", txn.ID, err)
		}
	}

	for _, id := range state.Processed {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO processed_transactions (id) VALUES (?)`, id.String(),
		); err != nil {
			return fmt.Errorf("insert processed id %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot transaction: %w", err)
	}
	return nil
}

// LoadState performs three scans and returns the full durable state for
// the engine to adopt. An empty file (no rows) yields an empty State, not
// an error.
func (s *Store) LoadState(ctx context.Context) (State, error) {
	var state State

	accRows, err := s.db.QueryContext(ctx, `SELECT uuid, balance, keys, transaction_history FROM accounts`)
	if err != nil {
		return State{}, fmt.Errorf("query accounts: %w", err)
	}
	for accRows.Next() {
		var idStr, keysJSON, historyJSON string
		var balance uint64
		if err := accRows.Scan(&idStr, &balance, &keysJSON, &historyJSON); err != nil {
			accRows.Close()
			return State{}, fmt.Errorf("scan account: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			accRows.Close()
			return State{}, fmt.Errorf("parse account uuid %q: %w", idStr, err)
		}
		var keys []models.Key
		if err := json.Unmarshal([]byte(keysJSON), &keys); err != nil {
			accRows.Close()
			return State{}, fmt.Errorf("unmarshal keys for %s: %w", idStr, err)
		}
		var history transactionHistoryRow
		if err := json.Unmarshal([]byte(historyJSON), &history); err != nil {
			accRows.Close()
			return State{}, fmt.Errorf("unmarshal history for %s: %w", idStr, err)
		}
		state.Accounts = append(state.Accounts, models.Account{
			UUID:               id,
			Balance:            balance,
			Keys:               keys,
			TransactionHistory: history,
		})
	}
	if err := accRows.Err(); err != nil {
		accRows.Close()
		return State{}, err
	}
	accRows.Close()

	txnRows, err := s.db.QueryContext(ctx, `SELECT id, instruction, status, timestamp FROM transactions`)
	if err != nil {
		return State{}, fmt.Errorf("query transactions: %w", err)
	}
	for txnRows.Next() {
		var idStr, instrJSON, statusJSON, timestampStr string
		if err := txnRows.Scan(&idStr, &instrJSON, &statusJSON, &timestampStr); err != nil {
			txnRows.Close()
			return State{}, fmt.Errorf("scan transaction: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			txnRows.Close()
			return State{}, fmt.Errorf("parse transaction uuid %q: %w", idStr, err)
		}
		var row instructionRow
		if err := json.Unmarshal([]byte(instrJSON), &row); err != nil {
			txnRows.Close()
			return State{}, fmt.Errorf("unmarshal instruction for %s: %w", idStr, err)
		}
		var status models.TransactionStatus
		if err := json.Unmarshal([]byte(statusJSON), &status); err != nil {
			txnRows.Close()
			return State{}, fmt.Errorf("unmarshal status for %s: %w", idStr, err)
		}
		timestamp, err := time.Parse(time.RFC3339, timestampStr)
		if err != nil {
			txnRows.Close()
			return State{}, fmt.Errorf("parse timestamp for %s: %w", idStr, err)
		}
		state.Transactions = append(state.Transactions, models.Transaction{
			ID:          id,
			Instruction: fromInstructionRow(row),
			Status:      status,
			Timestamp:   timestamp,
		})
	}
	if err := txnRows.Err(); err != nil {
		txnRows.Close()
		return State{}, err
	}
	txnRows.Close()

	idRows, err := s.db.QueryContext(ctx, `SELECT id FROM processed_transactions`)
	if err != nil {
		return State{}, fmt.Errorf("query processed transactions: %w", err)
	}
	for idRows.Next() {
		var idStr string
		if err := idRows.Scan(&idStr); err != nil {
			idRows.Close()
			return State{}, fmt.Errorf("scan processed id: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			idRows.Close()
			return State{}, fmt.Errorf("parse processed uuid %q: %w", idStr, err)
		}
		state.Processed = append(state.Processed, id)
	}
	if err := idRows.Err(); err != nil {
		idRows.Close()
		return State{}, err
	}
	idRows.Close()

	return state, nil
}
