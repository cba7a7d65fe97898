/*
Package csv adapts the CSV wire format to and from the ledger engine.

PURPOSE:
  The input side decodes `type, client, tx, amount` rows into ledger
  events, lazily, one row per Next call - the engine never materializes
  the stream. The output side (writer.go) encodes the final account
  snapshot with exactly four fractional digits.

TOLERANCE:
  Whitespace around fields is trimmed. Dispute/resolve/chargeback rows may
  omit the amount column entirely or leave it blank; any amount present is
  ignored. A bad row yields a *RowError wrapping ledger.ErrMalformedEvent,
  which the engine logs and skips - one bad row never sinks the stream.

SEE ALSO:
  - ledger/event.go: The decoded event type and EventSource contract
  - writer.go: Snapshot encoding
*/
package csv

import (
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/txledger/ledger"
)

// ErrHeader is returned when the required `type, client, tx, amount` header
// row is missing or malformed. Unlike a bad data row this is fatal: without
// the header the stream cannot be trusted at all.
var ErrHeader = errors.New("missing or malformed header row")

// RowError marks a single undecodable row. It wraps ledger.ErrMalformedEvent
// so the engine's Run loop can skip it and continue.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// =============================================================================
// READER
// =============================================================================

// Reader decodes the event stream. It implements ledger.EventSource.
type Reader struct {
	r          *stdcsv.Reader
	row        int
	headerRead bool
}

// NewReader wraps src. The header row is validated on the first Next call.
func NewReader(src io.Reader) *Reader {
	r := stdcsv.NewReader(src)
	r.FieldsPerRecord = -1 // reference rows may omit the amount column
	r.TrimLeadingSpace = true
	return &Reader{r: r}
}

// Next returns the next event. io.EOF ends the stream; a *RowError marks a
// skippable bad row; anything else is fatal.
func (r *Reader) Next() (ledger.Event, error) {
	if !r.headerRead {
		if err := r.readHeader(); err != nil {
			return ledger.Event{}, err
		}
	}

	record, err := r.r.Read()
	if err != nil {
		if err == io.EOF {
			return ledger.Event{}, io.EOF
		}
		var parseErr *stdcsv.ParseError
		if errors.As(err, &parseErr) {
			r.row++
			return ledger.Event{}, r.rowError(fmt.Errorf("%w: %v", ledger.ErrMalformedEvent, err))
		}
		return ledger.Event{}, err
	}
	r.row++

	return r.decode(record)
}

func (r *Reader) readHeader() error {
	record, err := r.r.Read()
	if err != nil {
		if err == io.EOF {
			return fmt.Errorf("%w: empty input", ErrHeader)
		}
		return fmt.Errorf("%w: %v", ErrHeader, err)
	}
	r.headerRead = true

	want := []string{"type", "client", "tx", "amount"}
	if len(record) != len(want) {
		return fmt.Errorf("%w: got %v", ErrHeader, record)
	}
	for i, field := range record {
		if strings.TrimSpace(field) != want[i] {
			return fmt.Errorf("%w: got %v", ErrHeader, record)
		}
	}
	return nil
}

func (r *Reader) decode(record []string) (ledger.Event, error) {
	if len(record) < 3 {
		return ledger.Event{}, r.rowError(fmt.Errorf("%w: want at least type, client, tx", ledger.ErrMalformedEvent))
	}
	for i, field := range record {
		record[i] = strings.TrimSpace(field)
	}

	var evType ledger.EventType
	switch record[0] {
	case "deposit":
		evType = ledger.EventDeposit
	case "withdraw", "withdrawal":
		evType = ledger.EventWithdrawal
	case "dispute":
		evType = ledger.EventDispute
	case "resolve":
		evType = ledger.EventResolve
	case "chargeback":
		evType = ledger.EventChargeback
	default:
		return ledger.Event{}, r.rowError(fmt.Errorf("%w: unknown type %q", ledger.ErrMalformedEvent, record[0]))
	}

	client, err := strconv.ParseUint(record[1], 10, 16)
	if err != nil {
		return ledger.Event{}, r.rowError(fmt.Errorf("%w: client %q: %v", ledger.ErrMalformedEvent, record[1], err))
	}
	tx, err := strconv.ParseUint(record[2], 10, 32)
	if err != nil {
		return ledger.Event{}, r.rowError(fmt.Errorf("%w: tx %q: %v", ledger.ErrMalformedEvent, record[2], err))
	}

	ev := ledger.Event{
		Type:   evType,
		Client: ledger.ClientID(client),
		Tx:     ledger.TxID(tx),
	}

	// Reference events carry no amount of their own; whatever is in the
	// column is dropped here.
	if evType != ledger.EventDeposit && evType != ledger.EventWithdrawal {
		return ev, nil
	}

	if len(record) < 4 || record[3] == "" {
		return ledger.Event{}, r.rowError(fmt.Errorf("%w: %s requires an amount", ledger.ErrMalformedEvent, evType))
	}
	value, err := decimal.NewFromString(record[3])
	if err != nil {
		return ledger.Event{}, r.rowError(fmt.Errorf("%w: amount %q: %v", ledger.ErrMalformedEvent, record[3], err))
	}
	amount, err := ledger.NewPositiveAmount(value)
	if err != nil {
		return ledger.Event{}, r.rowError(fmt.Errorf("%w: amount %q: %w", ledger.ErrMalformedEvent, record[3], err))
	}
	ev.Amount = &amount

	return ev, nil
}

func (r *Reader) rowError(err error) error {
	return &RowError{Row: r.row, Err: err}
}
