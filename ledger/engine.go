/*
engine.go - Event dispatch and the dispute state machine

PURPOSE:
  The Engine consumes the event stream one event at a time and mediates the
  two stores. All business rules live here: the locked-account gate, the
  per-type preconditions, the dispute lifecycle transitions, and the write
  ordering that keeps a mid-event failure from corrupting balances.

DISPATCH ORDER (per event):
  1. Locked-account gate: every event on a locked account is rejected,
     dispute traffic included. Chargeback is terminal.
  2. Type-specific preconditions (duplicate/unknown tx, client mismatch,
     dispute state, funds checks).
  3. Balance effect applied via AccountStore.Update with a closure that
     validates and computes the new state - a failed closure writes nothing.
  4. Transaction record written last.

WRITE ORDERING:
  The account mutation commits before the transaction record. A crash
  between the two writes can leave a transaction recorded as Undisputed
  while its balance effect already applied (or a deposit applied with no
  record). Neither store spans both keys transactionally, so this narrow
  divergence is accepted; balances themselves are never half-applied.

SEQUENTIALITY:
  Process runs events to completion in stream order. There is no
  interleaving of event effects; per-client ordering follows from global
  ordering. Store calls are the only operations that may block on I/O.

SEE ALSO:
  - account.go: The mutators applied inside Update closures
  - errors.go: Rejection vs fatal classification
  - snapshot.go: End-of-stream output
*/
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine applies events to the account and transaction stores.
type Engine struct {
	accounts     AccountStore
	transactions TransactionStore
	logger       *log.Logger
}

// NewEngine creates an engine over the given stores. Rejection diagnostics
// go to stderr unless SetLogger overrides that.
func NewEngine(accounts AccountStore, transactions TransactionStore) *Engine {
	return &Engine{
		accounts:     accounts,
		transactions: transactions,
		logger:       log.New(os.Stderr, "", 0),
	}
}

// SetLogger redirects per-event rejection diagnostics.
func (e *Engine) SetLogger(l *log.Logger) {
	e.logger = l
}

// Accounts exposes the account store for read-only collaborators (snapshot
// writers, the HTTP API). Mutation stays inside the engine.
func (e *Engine) Accounts() AccountStore {
	return e.accounts
}

// Transactions exposes the transaction store for read-only collaborators.
func (e *Engine) Transactions() TransactionStore {
	return e.transactions
}

// =============================================================================
// PROCESS - One event, all-or-nothing
// =============================================================================

// Process applies a single event. It returns nil on success, a rejection
// error (IsRejection) when the event is semantically invalid, or a
// *StorageError (IsFatal) on backend failure. A rejection means the event
// had no effect; a *StorageError from the final transaction-record write
// comes after the balance effect was committed (see WRITE ORDERING).
func (e *Engine) Process(ctx context.Context, ev Event) error {
	acct, found, err := e.accounts.Get(ctx, ev.Client)
	if err != nil {
		return &StorageError{Op: "accounts.get", Err: err}
	}
	if found && acct.Locked {
		return ErrAccountLocked
	}

	switch ev.Type {
	case EventDeposit:
		return e.record(ctx, ev, TxDeposit)
	case EventWithdrawal:
		return e.record(ctx, ev, TxWithdrawal)
	case EventDispute, EventResolve, EventChargeback:
		return e.settle(ctx, ev)
	default:
		return fmt.Errorf("%w: unknown event type %q", ErrMalformedEvent, ev.Type)
	}
}

// record handles the two monetary events: a fresh transaction id, a positive
// amount, and a new history record on success.
func (e *Engine) record(ctx context.Context, ev Event, kind TransactionKind) error {
	if ev.Amount == nil {
		return ErrMissingAmount
	}
	if _, found, err := e.transactions.Get(ctx, ev.Tx); err != nil {
		return &StorageError{Op: "transactions.get", Err: err}
	} else if found {
		return ErrDuplicateTransaction
	}

	amt := *ev.Amount
	err := e.accounts.Update(ctx, ev.Client, func(a Account) (Account, error) {
		if kind == TxDeposit {
			return a, a.Deposit(amt)
		}
		return a, a.Withdraw(amt)
	})
	if err != nil {
		if IsRejection(err) {
			return err
		}
		return &StorageError{Op: "accounts.update", Err: err}
	}

	// Balance effect committed; the record is written last so a failure here
	// can never leave a half-applied balance.
	if err := e.transactions.Put(ctx, Transaction{
		ID:     ev.Tx,
		Client: ev.Client,
		Kind:   kind,
		Amount: amt,
		State:  DisputeNone,
	}); err != nil {
		return &StorageError{Op: "transactions.put", Err: err}
	}
	return nil
}

// settle handles the three reference events that drive the dispute state
// machine of an existing transaction.
func (e *Engine) settle(ctx context.Context, ev Event) error {
	t, found, err := e.transactions.Get(ctx, ev.Tx)
	if err != nil {
		return &StorageError{Op: "transactions.get", Err: err}
	}
	if !found {
		return ErrTransactionNotFound
	}
	if t.Client != ev.Client {
		return ErrClientMismatch
	}

	var next DisputeState
	switch ev.Type {
	case EventDispute:
		// Resolved and ChargedBack are terminal; re-disputes never reopen.
		if !t.State.Disputable() {
			return ErrDisputeState
		}
		next = DisputeOpen
	default: // EventResolve, EventChargeback
		if !t.State.Settleable() {
			return ErrDisputeState
		}
		if ev.Type == EventResolve {
			next = DisputeResolved
		} else {
			next = DisputeChargedBack
		}
	}

	err = e.accounts.Update(ctx, ev.Client, func(a Account) (Account, error) {
		switch ev.Type {
		case EventDispute:
			return a, a.Hold(t.Kind, t.Amount)
		case EventResolve:
			return a, a.Release(t.Kind, t.Amount)
		default:
			return a, a.Chargeback(t.Kind, t.Amount)
		}
	})
	if err != nil {
		if IsRejection(err) {
			return err
		}
		return &StorageError{Op: "accounts.update", Err: err}
	}

	if err := e.transactions.Update(ctx, ev.Tx, func(tx Transaction) (Transaction, error) {
		tx.State = next
		return tx, nil
	}); err != nil {
		return &StorageError{Op: "transactions.update", Err: err}
	}
	return nil
}

// =============================================================================
// RUN - Drain a stream
// =============================================================================

// Run drains src by repeated Process. Malformed rows and rejected events are
// logged and skipped; storage errors terminate the run. Returns nil once the
// stream is exhausted.
func (e *Engine) Run(ctx context.Context, src EventSource) error {
	for index := uint64(0); ; index++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		ev, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, ErrMalformedEvent) {
				e.logger.Printf("event %d skipped: %v", index, err)
				continue
			}
			return err
		}

		if err := e.Process(ctx, ev); err != nil {
			if IsFatal(err) {
				return err
			}
			e.logger.Printf("%v", &RejectionError{Index: index, Event: ev, Reason: err})
		}
	}
}
