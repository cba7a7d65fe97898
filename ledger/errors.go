/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The taxonomy has three tiers with very different handling:

  1. Parse errors    - bad rows in the input stream; logged and skipped
  2. Rejections      - semantically invalid events (unknown tx, locked
                       account, insufficient funds, wrong dispute state,
                       arithmetic overflow); logged, no state change,
                       the stream continues
  3. Storage errors  - backend I/O failures; fatal, the run terminates

USAGE:
  if ledger.IsRejection(err) {
      // log and move on
  }
  if ledger.IsFatal(err) {
      // abort the run, non-zero exit
  }

SEE ALSO:
  - engine.go: Produces and classifies these errors
  - csv/reader.go: Wraps row failures with ErrMalformedEvent
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMalformedEvent marks a skippable bad input row. The engine logs the
	// row and continues; it never reaches the stores.
	ErrMalformedEvent = errors.New("malformed event")

	// ErrAmountNotPositive is returned when a deposit/withdrawal amount is
	// zero or negative. Enforced at PositiveAmount construction.
	ErrAmountNotPositive = errors.New("amount must be positive")

	// ErrAmountOverflow is returned when decimal arithmetic would exceed
	// MaxMagnitude. The offending event is rejected; balances are untouched.
	ErrAmountOverflow = errors.New("amount overflow")

	// ErrMissingAmount is returned when a deposit/withdrawal event carries
	// no amount.
	ErrMissingAmount = errors.New("missing amount")

	// ErrInsufficientFunds is returned when a withdrawal or a deposit
	// dispute exceeds the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrHeldMismatch is returned when a resolve/chargeback would release
	// more than is currently held.
	ErrHeldMismatch = errors.New("held funds mismatch")

	// ErrAccountLocked is returned for any event targeting a locked account.
	// Lock is terminal for the life of the stream.
	ErrAccountLocked = errors.New("account locked")

	// ErrDuplicateTransaction is returned when a deposit/withdrawal reuses
	// an already-recorded transaction id.
	ErrDuplicateTransaction = errors.New("duplicate transaction id")

	// ErrTransactionNotFound is returned when a dispute/resolve/chargeback
	// references an unknown transaction id.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrClientMismatch is returned when a dispute/resolve/chargeback
	// references a transaction belonging to a different client.
	ErrClientMismatch = errors.New("client mismatch")

	// ErrDisputeState is returned when an event does not match the
	// transaction's current dispute state (e.g. resolve on an undisputed
	// transaction, or a re-dispute after settlement).
	ErrDisputeState = errors.New("invalid dispute state transition")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientFundsError provides details about a balance shortage.
type InsufficientFundsError struct {
	Client    ClientID
	Available Amount
	Requested Amount
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for client %d: available %s, requested %s",
		e.Client, e.Available, e.Requested)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// RejectionError is the per-event diagnostic emitted by Run. It pins the
// rejected event to its position in the stream.
type RejectionError struct {
	Index  uint64
	Event  Event
	Reason error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("event %d rejected: type=%s client=%d tx=%d: %v",
		e.Index, e.Event.Type, e.Event.Client, e.Event.Tx, e.Reason)
}

func (e *RejectionError) Unwrap() error {
	return e.Reason
}

// StorageError wraps a backend failure. Unlike rejections it is fatal:
// Process surfaces it and Run terminates.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRejection reports whether err is a per-event rejection: the event had no
// effect and the stream may continue.
func IsRejection(err error) bool {
	return errors.Is(err, ErrAmountNotPositive) ||
		errors.Is(err, ErrAmountOverflow) ||
		errors.Is(err, ErrMissingAmount) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrHeldMismatch) ||
		errors.Is(err, ErrAccountLocked) ||
		errors.Is(err, ErrDuplicateTransaction) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrClientMismatch) ||
		errors.Is(err, ErrDisputeState) ||
		errors.Is(err, ErrMalformedEvent)
}

// IsFatal reports whether err must terminate the run (backend I/O failure).
func IsFatal(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
