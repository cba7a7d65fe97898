/*
store.go - Persistence interfaces for accounts and transaction history

PURPOSE:
  Defines the interface between the engine and its two keyed collections.
  Both backends (RAM, disk) implement the same capability set, so the
  engine is polymorphic over storage and the same stream produces the same
  snapshot either way.

CONTRACT:
  Get:     point lookup; (value, false, nil) when the key is absent
  Put:     insert or replace; atomic with respect to a single call
  Update:  read-modify-write; the mutation function validates and computes
           the new value, and a mutation error aborts with NO write. This
           is how the engine applies balance changes all-or-nothing.
  Iterate: full scan (accounts only; history is never scanned at snapshot)

  Neither store provides transactionality ACROSS keys or across the two
  stores; atomicity is bounded per call. The engine orders its writes so a
  crash between them leaves only benign divergence (see engine.go).

ABSENT KEYS:
  AccountStore.Update synthesizes NewAccount(id) when the key is absent -
  accounts are created lazily. TransactionStore.Update fails with
  ErrTransactionNotFound instead: dispute traffic must reference history.

IMPLEMENTATIONS:
  - ledger/store/memory.go: In-memory maps
  - store/sqlite:           SQLite tables (mattn/go-sqlite3)
  - store/bolt:             bbolt buckets, big-endian binary keys

SEE ALSO:
  - engine.go: The only mutating caller
  - factory/backend.go: Backend selection by name
*/
package ledger

import "context"

// =============================================================================
// ACCOUNT STORE
// =============================================================================

// AccountStore is the keyed collection of per-client accounts.
type AccountStore interface {
	// Get returns the account for id, with found=false when absent.
	Get(ctx context.Context, id ClientID) (Account, bool, error)

	// Put inserts or replaces the account keyed by its Client field.
	Put(ctx context.Context, acct Account) error

	// Update applies mutate to the current account (or NewAccount(id) when
	// absent) and persists the result. If mutate returns an error, nothing
	// is written and that error is returned verbatim.
	Update(ctx context.Context, id ClientID, mutate func(Account) (Account, error)) error

	// Iterate calls fn for every stored account. Order is backend-defined
	// but stable for a run.
	Iterate(ctx context.Context, fn func(Account) error) error
}

// =============================================================================
// TRANSACTION STORE
// =============================================================================

// TransactionStore is the keyed collection of monetary history records.
// It exclusively owns all records; the engine holds no references across
// events.
type TransactionStore interface {
	// Get returns the transaction for id, with found=false when absent.
	Get(ctx context.Context, id TxID) (Transaction, bool, error)

	// Put inserts or replaces the record keyed by its ID field.
	Put(ctx context.Context, tx Transaction) error

	// Update applies mutate to the current record and persists the result.
	// Returns ErrTransactionNotFound when the key is absent. If mutate
	// returns an error, nothing is written.
	Update(ctx context.Context, id TxID, mutate func(Transaction) (Transaction, error)) error
}
