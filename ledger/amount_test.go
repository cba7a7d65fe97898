package ledger_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/warp/txledger/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func amt(t *testing.T, s string) ledger.Amount {
	t.Helper()
	a, err := ledger.ParseAmount(s)
	if err != nil {
		t.Fatalf("parse amount %q: %v", s, err)
	}
	return a
}

func pos(t *testing.T, s string) ledger.PositiveAmount {
	t.Helper()
	p, err := ledger.NewPositiveAmount(decimal.RequireFromString(s))
	if err != nil {
		t.Fatalf("positive amount %q: %v", s, err)
	}
	return p
}

// =============================================================================
// AMOUNT TESTS
// =============================================================================

func TestParseAmount(t *testing.T) {
	a := amt(t, "10.5")
	if !a.Value.Equal(decimal.RequireFromString("10.5")) {
		t.Errorf("expected 10.5, got %v", a.Value)
	}

	if _, err := ledger.ParseAmount("not-a-number"); err == nil {
		t.Error("expected error for malformed literal")
	}
	if _, err := ledger.ParseAmount(""); err == nil {
		t.Error("expected error for empty literal")
	}
}

func TestAmount_ExactArithmetic(t *testing.T) {
	// GIVEN: Amounts that are classic float troublemakers
	// WHEN: Adding and subtracting
	// THEN: Results are exact, no drift

	a := amt(t, "0.1")
	b := amt(t, "0.2")

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.Equal(amt(t, "0.3")) {
		t.Errorf("expected exactly 0.3, got %v", sum)
	}

	diff, err := sum.Sub(amt(t, "0.3"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !diff.IsZero() {
		t.Errorf("expected zero, got %v", diff)
	}
}

func TestAmount_OverflowDetected(t *testing.T) {
	// GIVEN: An amount at the magnitude ceiling
	// WHEN: Pushing it past the ceiling in either direction
	// THEN: ErrAmountOverflow, not wraparound

	top := ledger.NewAmount(ledger.MaxMagnitude)
	one := amt(t, "1")

	if _, err := top.Add(one); !errors.Is(err, ledger.ErrAmountOverflow) {
		t.Errorf("expected overflow, got %v", err)
	}

	bottom := ledger.NewAmount(ledger.MaxMagnitude.Neg())
	if _, err := bottom.Sub(one); !errors.Is(err, ledger.ErrAmountOverflow) {
		t.Errorf("expected overflow, got %v", err)
	}

	// The extremes themselves are fine.
	if _, err := top.Sub(one); err != nil {
		t.Errorf("unexpected error at ceiling: %v", err)
	}
}

func TestAmount_StringFixed_FourDigits(t *testing.T) {
	cases := map[string]string{
		"1":        "1.0000",
		"1.5":      "1.5000",
		"0.0001":   "0.0001",
		"-3.25":    "-3.2500",
		"10.12345": "10.1235", // extra precision preserved internally, rounded on output
	}
	for in, want := range cases {
		if got := amt(t, in).StringFixed(); got != want {
			t.Errorf("StringFixed(%q) = %q, want %q", in, got, want)
		}
	}
}

// =============================================================================
// POSITIVE AMOUNT TESTS
// =============================================================================

func TestPositiveAmount_Validation(t *testing.T) {
	if _, err := ledger.NewPositiveAmount(decimal.RequireFromString("1.0")); err != nil {
		t.Errorf("1.0 should be valid: %v", err)
	}
	if _, err := ledger.NewPositiveAmount(decimal.Zero); !errors.Is(err, ledger.ErrAmountNotPositive) {
		t.Errorf("zero should be rejected, got %v", err)
	}
	if _, err := ledger.NewPositiveAmount(decimal.RequireFromString("-1.0")); !errors.Is(err, ledger.ErrAmountNotPositive) {
		t.Errorf("negative should be rejected, got %v", err)
	}
	if _, err := ledger.NewPositiveAmount(ledger.MaxMagnitude.Add(decimal.New(1, 0))); !errors.Is(err, ledger.ErrAmountOverflow) {
		t.Errorf("past the ceiling should be rejected, got %v", err)
	}
}
