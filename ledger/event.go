/*
event.go - Input events consumed by the engine

PURPOSE:
  Events are what the input stream delivers: one of the five event types,
  a client id, a transaction id, and (for deposits and withdrawals) a
  strictly positive amount. Reference events (dispute/resolve/chargeback)
  never carry an amount; any amount on the wire is dropped at parse time.

STREAMING:
  EventSource is a pull iterator so the engine never materializes the full
  input. csv.Reader (the csv package) is the production implementation;
  tests drive the engine with in-memory slices.

SEE ALSO:
  - engine.go: Consumes events via Process/Run
  - csv/reader.go: Decodes the CSV wire format into events
*/
package ledger

// =============================================================================
// EVENT TAXONOMY
// =============================================================================

type EventType string

const (
	EventDeposit    EventType = "deposit"
	EventWithdrawal EventType = "withdrawal"
	EventDispute    EventType = "dispute"
	EventResolve    EventType = "resolve"
	EventChargeback EventType = "chargeback"
)

// Event is a single entry of the input stream.
// Amount is nil for dispute/resolve/chargeback events.
type Event struct {
	Type   EventType
	Client ClientID
	Tx     TxID
	Amount *PositiveAmount
}

// =============================================================================
// EVENT SOURCE - Lazy, finite, non-restartable stream
// =============================================================================

// EventSource yields events in stream order. Next returns io.EOF once the
// stream is exhausted. A returned error wrapping ErrMalformedEvent marks a
// skippable bad row; any other error is fatal to the run.
type EventSource interface {
	Next() (Event, error)
}
