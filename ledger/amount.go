/*
Package ledger provides the core payments transaction-processing engine.

PURPOSE:
  This package contains the types and algorithms for maintaining per-client
  account state from a chronological stream of monetary events: deposits,
  withdrawals, and the three-stage dispute lifecycle (dispute, resolve,
  chargeback). Accounts and transaction history live behind small store
  interfaces so the same engine runs against RAM or disk.

KEY CONCEPTS IN THIS FILE (amount.go):
  - Amount: A signed fixed-point decimal with exact, bounded arithmetic
  - PositiveAmount: An Amount constrained to be strictly positive

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal - no binary floating point, ever
  2. Bounded: Arithmetic past MaxMagnitude is a detectable error, not wraparound
  3. Type Safety: PositiveAmount makes "amount > 0" a construction-time fact

USAGE:
  a, err := ledger.ParseAmount("10.5")
  amt, err := ledger.NewPositiveAmount(a.Value)
  sum, err := a.Add(other) // errors on overflow instead of wrapping

SEE ALSO:
  - account.go: Balance registers built on Amount
  - transaction.go: Monetary history records carrying PositiveAmount
  - engine.go: Event dispatch using both
*/
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Signed exact decimal, bounded magnitude
// =============================================================================

// Amount is a signed decimal quantity of funds.
//
// decimal.Decimal is arbitrary precision and never wraps, so the engine
// enforces an explicit magnitude bound: any arithmetic result whose absolute
// value exceeds MaxMagnitude is reported as ErrAmountOverflow and discarded.
type Amount struct {
	Value decimal.Decimal
}

// MaxMagnitude is the largest absolute value an Amount may hold (the 96-bit
// mantissa ceiling, 2^96 - 1).
var MaxMagnitude = decimal.RequireFromString("79228162514264337593543950335")

func NewAmount(value decimal.Decimal) Amount {
	return Amount{Value: value}
}

// ParseAmount parses a decimal literal such as "1.5" or "-0.0001".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.Abs().GreaterThan(MaxMagnitude) {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, ErrAmountOverflow)
	}
	return Amount{Value: d}, nil
}

// Add returns a+b, or ErrAmountOverflow if the result exceeds MaxMagnitude.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a.Value.Add(b.Value)
	if sum.Abs().GreaterThan(MaxMagnitude) {
		return Amount{}, ErrAmountOverflow
	}
	return Amount{Value: sum}, nil
}

// Sub returns a-b, or ErrAmountOverflow if the result exceeds MaxMagnitude.
func (a Amount) Sub(b Amount) (Amount, error) {
	diff := a.Value.Sub(b.Value)
	if diff.Abs().GreaterThan(MaxMagnitude) {
		return Amount{}, ErrAmountOverflow
	}
	return Amount{Value: diff}, nil
}

func (a Amount) IsNegative() bool          { return a.Value.IsNegative() }
func (a Amount) IsZero() bool              { return a.Value.IsZero() }
func (a Amount) IsPositive() bool          { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool       { return a.Value.Equal(b.Value) }
func (a Amount) LessThan(b Amount) bool    { return a.Value.LessThan(b.Value) }
func (a Amount) GreaterThan(b Amount) bool { return a.Value.GreaterThan(b.Value) }

// StringFixed renders the amount with exactly four fractional digits, the
// precision of the snapshot output.
func (a Amount) StringFixed() string {
	return a.Value.StringFixed(4)
}

func (a Amount) String() string {
	return a.Value.String()
}

// =============================================================================
// POSITIVE AMOUNT - Amount constrained to > 0 at construction
// =============================================================================

// PositiveAmount is an Amount known to be strictly positive. Deposits and
// withdrawals carry one; the zero value is invalid and only NewPositiveAmount
// produces valid instances.
type PositiveAmount struct {
	value decimal.Decimal
}

// NewPositiveAmount validates that value > 0 and within MaxMagnitude.
func NewPositiveAmount(value decimal.Decimal) (PositiveAmount, error) {
	if !value.IsPositive() {
		return PositiveAmount{}, ErrAmountNotPositive
	}
	if value.GreaterThan(MaxMagnitude) {
		return PositiveAmount{}, ErrAmountOverflow
	}
	return PositiveAmount{value: value}, nil
}

// Amount returns the wrapped value as a plain Amount.
func (p PositiveAmount) Amount() Amount {
	return Amount{Value: p.value}
}

// Decimal returns the raw decimal value.
func (p PositiveAmount) Decimal() decimal.Decimal {
	return p.value
}

func (p PositiveAmount) String() string {
	return p.value.String()
}
