package ledger_test

import (
	"testing"

	"github.com/warp/txledger/ledger"
)

// =============================================================================
// DISPUTE STATE TESTS - The lifecycle predicates, directly on the enum
// =============================================================================

func TestDisputeState_Disputable(t *testing.T) {
	// GIVEN: Each of the four lifecycle states
	// WHEN: Asking whether a dispute may open
	// THEN: Only the never-disputed state qualifies

	cases := map[ledger.DisputeState]bool{
		ledger.DisputeNone:        true,
		ledger.DisputeOpen:        false,
		ledger.DisputeResolved:    false,
		ledger.DisputeChargedBack: false,
	}
	for state, want := range cases {
		if got := state.Disputable(); got != want {
			t.Errorf("%s.Disputable() = %v, want %v", state, got, want)
		}
	}
}

func TestDisputeState_Settleable(t *testing.T) {
	// Only an open dispute can resolve or charge back.
	cases := map[ledger.DisputeState]bool{
		ledger.DisputeNone:        false,
		ledger.DisputeOpen:        true,
		ledger.DisputeResolved:    false,
		ledger.DisputeChargedBack: false,
	}
	for state, want := range cases {
		if got := state.Settleable(); got != want {
			t.Errorf("%s.Settleable() = %v, want %v", state, got, want)
		}
	}
}

func TestDisputeState_Terminal(t *testing.T) {
	// Both settlement outcomes end the lifecycle for good.
	cases := map[ledger.DisputeState]bool{
		ledger.DisputeNone:        false,
		ledger.DisputeOpen:        false,
		ledger.DisputeResolved:    true,
		ledger.DisputeChargedBack: true,
	}
	for state, want := range cases {
		if got := state.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", state, got, want)
		}
	}
}

func TestDisputeState_NoStateIsBothOpenAndTerminal(t *testing.T) {
	// A state that could settle must not also be terminal, and vice versa;
	// the two predicates partition the post-creation lifecycle.
	for _, state := range []ledger.DisputeState{
		ledger.DisputeNone,
		ledger.DisputeOpen,
		ledger.DisputeResolved,
		ledger.DisputeChargedBack,
	} {
		if state.Settleable() && state.Terminal() {
			t.Errorf("%s is both settleable and terminal", state)
		}
		if state.Disputable() && (state.Settleable() || state.Terminal()) {
			t.Errorf("%s is disputable but not initial", state)
		}
	}
}

// =============================================================================
// TRANSACTION RECORD TESTS
// =============================================================================

func TestTransaction_RecordFields(t *testing.T) {
	// GIVEN: A freshly recorded deposit
	// THEN: It carries its owning client, kind, amount, and starts undisputed

	tx := ledger.Transaction{
		ID:     100,
		Client: 7,
		Kind:   ledger.TxDeposit,
		Amount: pos(t, "50.0"),
		State:  ledger.DisputeNone,
	}

	if tx.ID != 100 || tx.Client != 7 {
		t.Errorf("unexpected identity: %+v", tx)
	}
	if tx.Kind != ledger.TxDeposit {
		t.Errorf("expected deposit kind, got %s", tx.Kind)
	}
	if !tx.Amount.Amount().Equal(amt(t, "50.0")) {
		t.Errorf("expected amount 50.0, got %v", tx.Amount)
	}
	if !tx.State.Disputable() {
		t.Errorf("a fresh record must be disputable, got %s", tx.State)
	}
}

func TestTransaction_IDWidths(t *testing.T) {
	// Identifier types cover their full wire widths.
	tx := ledger.Transaction{
		ID:     ledger.TxID(^uint32(0)),
		Client: ledger.ClientID(^uint16(0)),
		Kind:   ledger.TxWithdrawal,
		Amount: pos(t, "0.0001"),
		State:  ledger.DisputeNone,
	}
	if uint32(tx.ID) != 4294967295 {
		t.Errorf("tx id must span 32 bits, got %d", tx.ID)
	}
	if uint16(tx.Client) != 65535 {
		t.Errorf("client id must span 16 bits, got %d", tx.Client)
	}
}
