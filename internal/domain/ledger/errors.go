package ledger

// Error is the ledger's error taxonomy. Every ledger operation that fails
// returns one of these, and every failure leaves state unchanged.
type Error struct {
	message string
}

func newLedgerError(message string) *Error { return &Error{message: message} }

func (e *Error) Error() string { return e.message }

var (
	// ErrInsufficientFunds is returned by Transfer when src.Balance < amount.
	ErrInsufficientFunds = newLedgerError("insufficient funds")

	// ErrArithmeticOverflow is returned by Deposit/Transfer when the
	// destination balance would overflow uint64. The spec disallows
	// saturation: overflow is a fatal arithmetic error, not a clamp.
	ErrArithmeticOverflow = newLedgerError("arithmetic overflow")

	// ErrAlreadyProcessed is returned by CreateAccount and Deposit when the
	// transaction id is already in the processed set, and when the
	// under-lock TOCTOU re-check in Transfer finds the transaction id
	// already committed. For Transfer the re-check is not
	// redundant with the processor's pre-lock check: without it, two
	// concurrent submissions of the same id can both pass the pre-check
	// and then serialize on the pair-lock, double-spending.
	ErrAlreadyProcessed = newLedgerError("transaction already processed")
)
