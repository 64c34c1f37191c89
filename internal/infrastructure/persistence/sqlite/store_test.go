package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-engine/internal/domain/models"
	"ledger-engine/internal/infrastructure/persistence/sqlite"
)

func openTemp(t *testing.T) *sqlite.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.db")
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadState_EmptyFileYieldsEmptyState(t *testing.T) {
	store := openTemp(t)

	state, err := store.LoadState(context.Background())

	require.NoError(t, err)
	assert.Empty(t, state.Accounts)
	assert.Empty(t, state.Transactions)
	assert.Empty(t, state.Processed)
}

func TestSaveState_RoundTripsAccounts(t *testing.T) {
	store := openTemp(t)
	ctx := context.Background()

	accID := uuid.New()
	txID := uuid.New()
	state := sqlite.State{
		Accounts: []models.Account{
			{
				UUID:               accID,
				Balance:            4200,
				Keys:               []models.Key{models.NewEmailKey("a@example.com")},
				TransactionHistory: []uuid.UUID{txID},
			},
		},
		Transactions: []models.Transaction{
			models.NewTransaction(txID, models.DepositInstruction(accID, 4200), time.Now().UTC().Truncate(time.Second)),
		},
		Processed: []uuid.UUID{txID},
	}

	require.NoError(t, store.SaveState(ctx, state))

	loaded, err := store.LoadState(ctx)
	require.NoError(t, err)

	require.Len(t, loaded.Accounts, 1)
	assert.Equal(t, accID, loaded.Accounts[0].UUID)
	assert.Equal(t, uint64(4200), loaded.Accounts[0].Balance)
	assert.Equal(t, state.Accounts[0].Keys, loaded.Accounts[0].Keys)
	assert.Equal(t, []uuid.UUID{txID}, loaded.Accounts[0].TransactionHistory)

	require.Len(t, loaded.Transactions, 1)
	assert.Equal(t, txID, loaded.Transactions[0].ID)
	assert.Equal(t, models.InstructionDeposit, loaded.Transactions[0].Instruction.Kind)
	assert.Equal(t, uint64(4200), loaded.Transactions[0].Instruction.Amount)

	require.Len(t, loaded.Processed, 1)
	assert.Equal(t, txID, loaded.Processed[0])
}

func TestSaveState_IsFullRewrite(t *testing.T) {
	store := openTemp(t)
	ctx := context.Background()

	first := sqlite.State{Accounts: []models.Account{{UUID: uuid.New(), Balance: 1}}}
	require.NoError(t, store.SaveState(ctx, first))

	second := sqlite.State{Accounts: []models.Account{{UUID: uuid.New(), Balance: 2}}}
	require.NoError(t, store.SaveState(ctx, second))

	loaded, err := store.LoadState(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Accounts, 1, "SaveState must replace the prior snapshot wholesale, not append to it")
	assert.Equal(t, second.Accounts[0].UUID, loaded.Accounts[0].UUID)
}
