package ledger_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-engine/internal/domain/ledger"
	"ledger-engine/internal/domain/models"
)

func createAccount(t *testing.T, l *ledger.InMemoryLedger, keys []models.Key) uuid.UUID {
	t.Helper()
	id, err := l.CreateAccount(uuid.New(), keys)
	require.NoError(t, err)
	return id
}

func deposit(t *testing.T, l *ledger.InMemoryLedger, accountID uuid.UUID, amount uint64) {
	t.Helper()
	require.NoError(t, l.Deposit(uuid.New(), accountID, amount))
}

func TestCreateAccount_ZeroBalance(t *testing.T) {
	l := ledger.New()

	id := createAccount(t, l, []models.Key{models.NewEmailKey("a@example.com")})

	acc, err := l.GetAccount(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), acc.Balance)
	assert.Equal(t, id, acc.UUID)
}

func TestCreateAccount_RepeatedIDRejected(t *testing.T) {
	l := ledger.New()
	txID := uuid.New()

	firstID, err := l.CreateAccount(txID, nil)
	require.NoError(t, err)

	_, err = l.CreateAccount(txID, nil)
	assert.ErrorIs(t, err, ledger.ErrAlreadyProcessed)

	assert.Equal(t, 1, l.AccountCount())
	acc, err := l.GetAccount(firstID)
	require.NoError(t, err)
	assert.Equal(t, firstID, acc.UUID)
}

// TestCreateAccount_ConcurrentDuplicateCreatesExactlyOneAccount submits the
// same transaction id from many goroutines at once: ProcessedSet.Insert is
// the atomic check-and-mark, so only one of them may ever observe success.
func TestCreateAccount_ConcurrentDuplicateCreatesExactlyOneAccount(t *testing.T) {
	l := ledger.New()
	txID := uuid.New()
	n := 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	var successes int
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := l.CreateAccount(txID, nil); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, l.AccountCount())
}

func TestGetAccount_NotFound(t *testing.T) {
	l := ledger.New()

	_, err := l.GetAccount(uuid.New())

	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestDeposit_IncreasesBalance(t *testing.T) {
	l := ledger.New()
	id := createAccount(t, l, nil)

	deposit(t, l, id, 500)
	deposit(t, l, id, 250)

	acc, err := l.GetAccount(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(750), acc.Balance)
}

func TestDeposit_OverflowRejected(t *testing.T) {
	l := ledger.New()
	id := createAccount(t, l, nil)
	deposit(t, l, id, ^uint64(0))

	err := l.Deposit(uuid.New(), id, 1)

	assert.ErrorIs(t, err, ledger.ErrArithmeticOverflow)
	acc, _ := l.GetAccount(id)
	assert.Equal(t, ^uint64(0), acc.Balance)
}

func TestDeposit_RepeatedIDAppliesOnce(t *testing.T) {
	l := ledger.New()
	id := createAccount(t, l, nil)

	txID := uuid.New()
	require.NoError(t, l.Deposit(txID, id, 500))

	err := l.Deposit(txID, id, 500)
	assert.ErrorIs(t, err, ledger.ErrAlreadyProcessed)

	acc, _ := l.GetAccount(id)
	assert.Equal(t, uint64(500), acc.Balance)
}

// TestDeposit_ConcurrentDuplicateAppliesExactlyOnce submits the same
// deposit transaction id from many goroutines at once: the check, the
// balance mutation, and the mark all happen inside the same WithMut
// closure, so exactly one of them may apply the amount.
func TestDeposit_ConcurrentDuplicateAppliesExactlyOnce(t *testing.T) {
	l := ledger.New()
	id := createAccount(t, l, nil)
	txID := uuid.New()
	n := 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	var successes int
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if err := l.Deposit(txID, id, 10); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	acc, _ := l.GetAccount(id)
	assert.Equal(t, uint64(10), acc.Balance)
}

func TestTransfer_MovesBalanceAtomically(t *testing.T) {
	l := ledger.New()
	src := createAccount(t, l, nil)
	dst := createAccount(t, l, nil)
	deposit(t, l, src, 1000)

	txID := uuid.New()
	err := l.Transfer(txID, src, dst, 400)
	require.NoError(t, err)

	srcAcc, _ := l.GetAccount(src)
	dstAcc, _ := l.GetAccount(dst)
	assert.Equal(t, uint64(600), srcAcc.Balance)
	assert.Equal(t, uint64(400), dstAcc.Balance)
	assert.Contains(t, srcAcc.TransactionHistory, txID)
	assert.Contains(t, dstAcc.TransactionHistory, txID)
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	l := ledger.New()
	src := createAccount(t, l, nil)
	dst := createAccount(t, l, nil)
	deposit(t, l, src, 100)

	err := l.Transfer(uuid.New(), src, dst, 500)

	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	srcAcc, _ := l.GetAccount(src)
	assert.Equal(t, uint64(100), srcAcc.Balance)
}

// TestTransfer_RetryAfterInsufficientFundsFixedSucceeds exercises the
// retry half of scenario S3: a transfer rejected for insufficient funds
// must not be marked processed, so resubmitting the same tx_id after a
// deposit corrects the precondition and the retry commits normally.
func TestTransfer_RetryAfterInsufficientFundsFixedSucceeds(t *testing.T) {
	l := ledger.New()
	src := createAccount(t, l, nil)
	dst := createAccount(t, l, nil)
	deposit(t, l, src, 100)

	txID := uuid.New()
	err := l.Transfer(txID, src, dst, 500)
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	assert.False(t, l.IsProcessed(txID), "a rejected transfer must not be marked processed")

	deposit(t, l, src, 500)

	err = l.Transfer(txID, src, dst, 500)
	require.NoError(t, err)

	srcAcc, _ := l.GetAccount(src)
	dstAcc, _ := l.GetAccount(dst)
	assert.Equal(t, uint64(100), srcAcc.Balance)
	assert.Equal(t, uint64(500), dstAcc.Balance)
	assert.True(t, l.IsProcessed(txID))
}

func TestTransfer_DestinationNotFound(t *testing.T) {
	l := ledger.New()
	src := createAccount(t, l, nil)
	deposit(t, l, src, 100)

	err := l.Transfer(uuid.New(), src, uuid.New(), 10)

	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestTransfer_RepeatedIDAppliesOnce(t *testing.T) {
	l := ledger.New()
	src := createAccount(t, l, nil)
	dst := createAccount(t, l, nil)
	deposit(t, l, src, 1000)

	txID := uuid.New()
	require.NoError(t, l.Transfer(txID, src, dst, 300))

	err := l.Transfer(txID, src, dst, 300)
	assert.ErrorIs(t, err, ledger.ErrAlreadyProcessed)

	srcAcc, _ := l.GetAccount(src)
	dstAcc, _ := l.GetAccount(dst)
	assert.Equal(t, uint64(700), srcAcc.Balance)
	assert.Equal(t, uint64(300), dstAcc.Balance)
}

// TestTransfer_ConcurrentOppositeDirectionsNeverDeadlock hammers the same
// account pair from both directions at once. The only way this finishes is
// if WithTwoMut's UUID-lexicographic lock order is actually consistent
// regardless of which side calls first.
func TestTransfer_ConcurrentOppositeDirectionsNeverDeadlock(t *testing.T) {
	l := ledger.New()
	a := createAccount(t, l, nil)
	b := createAccount(t, l, nil)
	deposit(t, l, a, 1_000_000)
	deposit(t, l, b, 1_000_000)

	var wg sync.WaitGroup
	n := 500
	wg.Add(2 * n)

	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = l.Transfer(uuid.New(), a, b, 1)
		}()
		go func() {
			defer wg.Done()
			_ = l.Transfer(uuid.New(), b, a, 1)
		}()
	}
	wg.Wait()

	accA, _ := l.GetAccount(a)
	accB, _ := l.GetAccount(b)
	assert.Equal(t, uint64(2_000_000), accA.Balance+accB.Balance)
}

func TestTransfer_SameAccountBothSides(t *testing.T) {
	l := ledger.New()
	id := createAccount(t, l, nil)
	deposit(t, l, id, 500)

	err := l.Transfer(uuid.New(), id, id, 100)

	require.NoError(t, err)
	acc, _ := l.GetAccount(id)
	assert.Equal(t, uint64(500), acc.Balance)
}

func TestAccounts_SnapshotIsCoherentAndDetached(t *testing.T) {
	l := ledger.New()
	id := createAccount(t, l, []models.Key{models.NewCPFKey("123")})
	deposit(t, l, id, 42)

	snap := l.Accounts()
	require.Len(t, snap, 1)
	snap[0].Balance = 999

	acc, _ := l.GetAccount(id)
	assert.Equal(t, uint64(42), acc.Balance, "mutating a snapshot clone must not affect the store")
}

func TestProcessedSet_InsertReportsNovelty(t *testing.T) {
	p := ledger.NewProcessedSet()
	id := uuid.New()

	assert.True(t, p.Insert(id))
	assert.False(t, p.Insert(id))
	assert.True(t, p.Contains(id))
	assert.Equal(t, 1, p.Len())
}
