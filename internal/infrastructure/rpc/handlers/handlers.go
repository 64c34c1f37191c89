// Package handlers implements the four RPC methods the engine is called
// through. Every handler follows the same shape as the reference
// service's: decode, validate shape, call the engine, translate the
// result or error into the response, log on the reject paths.
package handlers

import (
	"time"

	"github.com/google/uuid"

	"ledger-engine/internal/domain/models"
	"ledger-engine/internal/domain/processor"
	apierrors "ledger-engine/internal/pkg/errors"
	"ledger-engine/internal/pkg/validation"
)

// Engine is the one capability the RPC layer depends on.
type Engine interface {
	Process(transaction models.Transaction) (processor.Result, error)
}

func translateProcessError(err error) apierrors.APIError {
	switch err {
	case processor.ErrAccountNotFound:
		return apierrors.NewAccountNotFoundError()
	case processor.ErrInsufficientFunds:
		return apierrors.NewInsufficientFundsError()
	case processor.ErrArithmeticOverflow:
		return apierrors.NewArithmeticOverflowError()
	case processor.ErrTransactionAlreadyProcessed:
		return apierrors.NewTransactionAlreadyProcessedError()
	case processor.ErrInvalidAmount:
		return apierrors.NewInvalidAmountError("amount must be greater than zero")
	default:
		return apierrors.NewInternalServerError("unexpected engine error")
	}
}

func submissionTime() time.Time { return time.Now().UTC() }

func parseUUID(raw string) (uuid.UUID, bool) {
	id, err := validation.ValidateUUID(raw)
	return id, err == nil
}
