/*
account.go - Per-client balance registers and their mutators

PURPOSE:
  An Account tracks a client's available and held funds plus the locked
  flag. Mutators validate before they mutate: on error the account is
  unchanged, which is what lets the engine apply them inside a store
  Update closure and get all-or-nothing semantics per event.

BALANCE MODEL:
  available  funds the client may withdraw
  held       funds set aside pending dispute settlement
  total      available + held, derived at snapshot time, never stored

  held goes NEGATIVE when a withdrawal is disputed: the contested debit is
  provisionally credited back to available and the negative hold marks the
  claim. available + held (the total) is unchanged by opening or resolving
  any dispute.

LOCKING:
  Locked is set by a confirmed chargeback and never cleared. The engine,
  not the account, gates events on it - mirroring how dispute-state
  transitions are centralized in the engine.

SEE ALSO:
  - engine.go: Applies these mutators per event
  - snapshot.go: Derives total for output
*/
package ledger

// =============================================================================
// ACCOUNT
// =============================================================================

// Account is the per-client balance state.
type Account struct {
	Client    ClientID
	Available Amount
	Held      Amount
	Locked    bool
}

// NewAccount returns a fresh, unlocked account with zero balances.
// Accounts are created lazily by the engine on first use of a client id.
func NewAccount(client ClientID) Account {
	return Account{Client: client}
}

// Total returns available + held. Mutators keep both registers within
// MaxMagnitude, so the sum never overflows a decimal.
func (a Account) Total() Amount {
	return Amount{Value: a.Available.Value.Add(a.Held.Value)}
}

// =============================================================================
// MONETARY MUTATORS
// =============================================================================

// Deposit credits available.
func (a *Account) Deposit(amt PositiveAmount) error {
	avail, err := a.Available.Add(amt.Amount())
	if err != nil {
		return err
	}
	a.Available = avail
	return nil
}

// Withdraw debits available, rejecting a debit past zero.
func (a *Account) Withdraw(amt PositiveAmount) error {
	if a.Available.LessThan(amt.Amount()) {
		return &InsufficientFundsError{Client: a.Client, Available: a.Available, Requested: amt.Amount()}
	}
	avail, err := a.Available.Sub(amt.Amount())
	if err != nil {
		return err
	}
	a.Available = avail
	return nil
}

// =============================================================================
// DISPUTE MUTATORS - Balance effects keyed by the disputed transaction's kind
// =============================================================================

// Hold applies the balance effect of opening a dispute.
//
// Disputed deposit: available -> held. Requires available >= amt; if the
// funds were already withdrawn the dispute is rejected rather than driving
// available negative.
//
// Disputed withdrawal: the contested debit is credited back to available
// and recorded as a negative hold. Total is unchanged.
func (a *Account) Hold(kind TransactionKind, amt PositiveAmount) error {
	switch kind {
	case TxDeposit:
		if a.Available.LessThan(amt.Amount()) {
			return &InsufficientFundsError{Client: a.Client, Available: a.Available, Requested: amt.Amount()}
		}
		return a.shift(amt, -1)
	default:
		return a.shift(amt, +1)
	}
}

// Release applies the balance effect of resolving a dispute, reversing the
// corresponding Hold. Resolving a withdrawal dispute re-applies the debit,
// so it requires the provisional credit to still be available.
func (a *Account) Release(kind TransactionKind, amt PositiveAmount) error {
	switch kind {
	case TxDeposit:
		if a.Held.LessThan(amt.Amount()) {
			return ErrHeldMismatch
		}
		return a.shift(amt, +1)
	default:
		if a.Available.LessThan(amt.Amount()) {
			return &InsufficientFundsError{Client: a.Client, Available: a.Available, Requested: amt.Amount()}
		}
		return a.shift(amt, -1)
	}
}

// Chargeback applies the balance effect of confirming a dispute and locks
// the account. A charged-back deposit leaves the account with the held funds
// removed; a charged-back withdrawal credits available and debits held by the
// amount once more (the same shift as opening the dispute), so total is
// unchanged.
func (a *Account) Chargeback(kind TransactionKind, amt PositiveAmount) error {
	switch kind {
	case TxDeposit:
		if a.Held.LessThan(amt.Amount()) {
			return ErrHeldMismatch
		}
		held, err := a.Held.Sub(amt.Amount())
		if err != nil {
			return err
		}
		a.Held = held
	default:
		if err := a.shift(amt, +1); err != nil {
			return err
		}
	}
	a.Locked = true
	return nil
}

// shift moves amt between the two registers: direction +1 credits available
// and debits held, -1 does the reverse. Both new values are computed before
// either register is assigned so a failed op leaves the account untouched.
func (a *Account) shift(amt PositiveAmount, direction int) error {
	var avail, held Amount
	var err error
	if direction > 0 {
		if avail, err = a.Available.Add(amt.Amount()); err != nil {
			return err
		}
		if held, err = a.Held.Sub(amt.Amount()); err != nil {
			return err
		}
	} else {
		if avail, err = a.Available.Sub(amt.Amount()); err != nil {
			return err
		}
		if held, err = a.Held.Add(amt.Amount()); err != nil {
			return err
		}
	}
	a.Available, a.Held = avail, held
	return nil
}
