// Package validation holds request-shape validation shared by the
// processor and the RPC front-end, in the same spirit as the reference
// service's validation package: small pure functions, no dependencies on
// the domain types they validate.
package validation

import (
	"errors"

	"github.com/google/uuid"
)

// ValidateAmount rejects a zero amount. Deposit and Transfer amounts carry
// no semantic value at zero and would otherwise waste a processed-id slot
// for no effect.
func ValidateAmount(amount uint64) error {
	if amount == 0 {
		return errors.New("amount must be greater than zero")
	}
	return nil
}

// ValidateUUID parses a canonical 36-character UUID string, the shape
// every id on the wire must take. Malformed ids are rejected at the RPC
// boundary before the engine is ever invoked.
func ValidateUUID(raw string) (uuid.UUID, error) {
	if len(raw) != 36 {
		return uuid.UUID{}, errors.New("invalid identifier: must be a canonical UUID")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, errors.New("invalid identifier: must be a canonical UUID")
	}
	return id, nil
}
