package models

import (
	"sync"

	"github.com/google/uuid"
)

// Account is owned uniquely by the account store. Mu guards Balance and
// TransactionHistory; callers never take Mu directly — they go through the
// store's WithMut / WithTwoMut helpers, which enforce the locking protocol.
type Account struct {
	UUID               uuid.UUID   `json:"uuid"`
	Balance            uint64      `json:"balance"`
	Keys               []Key       `json:"keys"`
	TransactionHistory []uuid.UUID `json:"transaction_history"`

	Mu sync.Mutex `json:"-"`
}

// NewAccount creates a zero-balance account with the given keys. Keys are
// opaque and are not deduplicated or validated.
func NewAccount(keys []Key) *Account {
	return &Account{
		UUID:               uuid.New(),
		Balance:            0,
		Keys:               append([]Key(nil), keys...),
		TransactionHistory: make([]uuid.UUID, 0),
	}
}

// Clone returns a detached deep copy, safe to hand to a reader without
// holding Mu afterwards. Callers must hold Mu while calling Clone if the
// account is reachable from the store.
func (a *Account) Clone() Account {
	keys := append([]Key(nil), a.Keys...)
	history := append([]uuid.UUID(nil), a.TransactionHistory...)
	return Account{
		UUID:               a.UUID,
		Balance:            a.Balance,
		Keys:               keys,
		TransactionHistory: history,
	}
}
