/*
codec.go - Versioned binary encoding of stored values

PURPOSE:
  Encodes accounts and transactions into compact byte payloads for the
  bbolt buckets. Every payload starts with a version byte so a format
  change is detectable; decoding an unknown version fails loudly instead
  of misreading balances.

LAYOUT (version 1):
  account:      [ver][available][held][locked]
  transaction:  [ver][client:2BE][kind][state][amount]

  Decimals are length-prefixed decimal strings: exact, and self-describing
  enough that no precision assumptions are baked into the format.
*/
package bolt

import (
	"encoding/binary"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/txledger/ledger"
)

const codecVersion byte = 1

// =============================================================================
// ACCOUNT CODEC
// =============================================================================

func encodeAccount(a ledger.Account) []byte {
	buf := []byte{codecVersion}
	buf = appendDecimal(buf, a.Available.Value)
	buf = appendDecimal(buf, a.Held.Value)
	if a.Locked {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	return buf
}

func decodeAccount(id ledger.ClientID, data []byte) (ledger.Account, error) {
	if len(data) == 0 || data[0] != codecVersion {
		return ledger.Account{}, fmt.Errorf("corrupt account %d: unknown codec version", id)
	}
	rest := data[1:]

	available, rest, err := readDecimal(rest)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("corrupt account %d: available: %w", id, err)
	}
	held, rest, err := readDecimal(rest)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("corrupt account %d: held: %w", id, err)
	}
	if len(rest) != 1 {
		return ledger.Account{}, fmt.Errorf("corrupt account %d: truncated payload", id)
	}

	return ledger.Account{
		Client:    id,
		Available: ledger.NewAmount(available),
		Held:      ledger.NewAmount(held),
		Locked:    rest[0] != 0,
	}, nil
}

// =============================================================================
// TRANSACTION CODEC
// =============================================================================

var (
	kindToByte = map[ledger.TransactionKind]byte{
		ledger.TxDeposit:    1,
		ledger.TxWithdrawal: 2,
	}
	byteToKind = map[byte]ledger.TransactionKind{
		1: ledger.TxDeposit,
		2: ledger.TxWithdrawal,
	}

	stateToByte = map[ledger.DisputeState]byte{
		ledger.DisputeNone:        0,
		ledger.DisputeOpen:        1,
		ledger.DisputeResolved:    2,
		ledger.DisputeChargedBack: 3,
	}
	byteToState = map[byte]ledger.DisputeState{
		0: ledger.DisputeNone,
		1: ledger.DisputeOpen,
		2: ledger.DisputeResolved,
		3: ledger.DisputeChargedBack,
	}
)

func encodeTransaction(t ledger.Transaction) []byte {
	buf := []byte{codecVersion}
	buf = binary.BigEndian.AppendUint16(buf, uint16(t.Client))
	buf = append(buf, kindToByte[t.Kind], stateToByte[t.State])
	buf = appendDecimal(buf, t.Amount.Decimal())
	return buf
}

func decodeTransaction(id ledger.TxID, data []byte) (ledger.Transaction, error) {
	if len(data) < 5 || data[0] != codecVersion {
		return ledger.Transaction{}, fmt.Errorf("corrupt transaction %d: unknown codec version", id)
	}
	client := ledger.ClientID(binary.BigEndian.Uint16(data[1:3]))
	kind, ok := byteToKind[data[3]]
	if !ok {
		return ledger.Transaction{}, fmt.Errorf("corrupt transaction %d: unknown kind %d", id, data[3])
	}
	state, ok := byteToState[data[4]]
	if !ok {
		return ledger.Transaction{}, fmt.Errorf("corrupt transaction %d: unknown dispute state %d", id, data[4])
	}

	value, rest, err := readDecimal(data[5:])
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("corrupt transaction %d: amount: %w", id, err)
	}
	if len(rest) != 0 {
		return ledger.Transaction{}, fmt.Errorf("corrupt transaction %d: trailing bytes", id)
	}
	amount, err := ledger.NewPositiveAmount(value)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("corrupt transaction %d: amount: %w", id, err)
	}

	return ledger.Transaction{
		ID:     id,
		Client: client,
		Kind:   kind,
		Amount: amount,
		State:  state,
	}, nil
}

// =============================================================================
// DECIMAL FIELDS - Length-prefixed exact decimal strings
// =============================================================================

func appendDecimal(buf []byte, d decimal.Decimal) []byte {
	s := d.String()
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}

func readDecimal(data []byte) (decimal.Decimal, []byte, error) {
	if len(data) < 2 {
		return decimal.Decimal{}, nil, fmt.Errorf("truncated length prefix")
	}
	n := int(binary.BigEndian.Uint16(data))
	if len(data) < 2+n {
		return decimal.Decimal{}, nil, fmt.Errorf("truncated decimal field")
	}
	d, err := decimal.NewFromString(string(data[2 : 2+n]))
	if err != nil {
		return decimal.Decimal{}, nil, err
	}
	return d, data[2+n:], nil
}
