// Package errors translates domain errors into the structured shape the
// wire front-end returns: a code, a message, and the HTTP status to send,
// in the same style as the reference service's error package.
package errors

import "net/http"

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e APIError) Error() string { return e.Message }

const (
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeInternalServer         = "INTERNAL_SERVER_ERROR"
	ErrCodeInsufficientFunds      = "INSUFFICIENT_FUNDS"
	ErrCodeInvalidAmount          = "INVALID_AMOUNT"
	ErrCodeAccountNotFound        = "ACCOUNT_NOT_FOUND"
	ErrCodeArithmeticOverflow     = "ARITHMETIC_OVERFLOW"
	ErrCodeTransactionAlreadyDone = "TRANSACTION_ALREADY_PROCESSED"
)

func NewValidationError(message string) APIError {
	return APIError{Code: ErrCodeValidation, Message: message, Status: http.StatusBadRequest}
}

func NewInternalServerError(message string) APIError {
	return APIError{Code: ErrCodeInternalServer, Message: message, Status: http.StatusInternalServerError}
}

func NewInsufficientFundsError() APIError {
	return APIError{
		Code:    ErrCodeInsufficientFunds,
		Message: "insufficient funds for this transaction",
		Status:  http.StatusBadRequest,
	}
}

func NewInvalidAmountError(message string) APIError {
	return APIError{Code: ErrCodeInvalidAmount, Message: message, Status: http.StatusBadRequest}
}

func NewAccountNotFoundError() APIError {
	return APIError{Code: ErrCodeAccountNotFound, Message: "account not found", Status: http.StatusNotFound}
}

func NewArithmeticOverflowError() APIError {
	return APIError{
		Code:    ErrCodeArithmeticOverflow,
		Message: "operation would overflow the destination balance",
		Status:  http.StatusBadRequest,
	}
}

// NewTransactionAlreadyProcessedError is, by design, not a failure the
// client should treat as terminal: retries of the same transaction id are
// always safe, so this is surfaced as success=false with a message the
// client can recognize and swallow.
func NewTransactionAlreadyProcessedError() APIError {
	return APIError{
		Code:    ErrCodeTransactionAlreadyDone,
		Message: "transaction already processed",
		Status:  http.StatusConflict,
	}
}
