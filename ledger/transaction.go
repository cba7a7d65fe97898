/*
transaction.go - Monetary history records and the dispute lifecycle states

PURPOSE:
  A Transaction is the immutable-ish record of a monetary event (deposit or
  withdrawal) plus its current dispute state. Only monetary events get a
  record; dispute/resolve/chargeback events reference an existing record by
  transaction id and carry no amount of their own.

DISPUTE LIFECYCLE:
  Undisputed -> Disputed -> Resolved     (dispute cleared, funds released)
                         -> ChargedBack  (dispute confirmed, account locked)

  Resolved and ChargedBack are terminal: once a dispute settles either way,
  no further dispute traffic is accepted for that transaction. Transitions
  are enforced centrally by the engine (engine.go); the record itself stays
  a passive value.

SEE ALSO:
  - engine.go: The only code that advances DisputeState
  - store.go: TransactionStore owning all records
*/
package ledger

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ClientID identifies a client account. 16-bit per the wire format.
type ClientID uint16

// TxID identifies a monetary transaction, globally unique across a run.
// 32-bit per the wire format.
type TxID uint32

// =============================================================================
// TRANSACTION - Record of a monetary event
// =============================================================================

// TransactionKind distinguishes the two monetary event types. Only these two
// produce transaction records.
type TransactionKind string

const (
	TxDeposit    TransactionKind = "deposit"
	TxWithdrawal TransactionKind = "withdrawal"
)

// DisputeState tracks where a transaction sits in the dispute lifecycle.
type DisputeState string

const (
	DisputeNone        DisputeState = "undisputed"
	DisputeOpen        DisputeState = "disputed"
	DisputeResolved    DisputeState = "resolved"
	DisputeChargedBack DisputeState = "charged_back"
)

// Disputable reports whether a dispute may open on a transaction in this
// state. Only a never-disputed transaction qualifies.
func (s DisputeState) Disputable() bool {
	return s == DisputeNone
}

// Settleable reports whether a resolve or chargeback may act on this state.
// Only an open dispute can settle.
func (s DisputeState) Settleable() bool {
	return s == DisputeOpen
}

// Terminal reports whether the dispute lifecycle has ended for this
// transaction. A terminal state accepts no further dispute traffic.
func (s DisputeState) Terminal() bool {
	return s == DisputeResolved || s == DisputeChargedBack
}

// Transaction is the historical record of a deposit or withdrawal.
// The Client recorded at creation is the only client whose disputes may
// reference this id; the engine rejects mismatches.
type Transaction struct {
	ID     TxID
	Client ClientID
	Kind   TransactionKind
	Amount PositiveAmount
	State  DisputeState
}
