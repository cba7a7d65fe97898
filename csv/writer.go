/*
writer.go - Snapshot CSV encoding

PURPOSE:
  Serializes the final account state as `client, available, held, total,
  locked` rows. Amounts are printed with exactly four fractional digits;
  locked is true/false. Row order is whatever the account store iterates.
*/
package csv

import (
	stdcsv "encoding/csv"
	"io"
	"strconv"

	"github.com/warp/txledger/ledger"
)

// Writer encodes account snapshots. Write emits the header before the first
// row; call Flush once the snapshot is complete.
type Writer struct {
	w           *stdcsv.Writer
	wroteHeader bool
}

func NewWriter(dst io.Writer) *Writer {
	return &Writer{w: stdcsv.NewWriter(dst)}
}

// Write emits one snapshot row.
func (w *Writer) Write(s ledger.AccountSnapshot) error {
	if !w.wroteHeader {
		if err := w.w.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
			return err
		}
		w.wroteHeader = true
	}
	return w.w.Write([]string{
		strconv.FormatUint(uint64(s.Client), 10),
		s.Available.StringFixed(),
		s.Held.StringFixed(),
		s.Total.StringFixed(),
		strconv.FormatBool(s.Locked),
	})
}

// Flush writes any buffered rows (and the header, for an empty snapshot) to
// the underlying writer.
func (w *Writer) Flush() error {
	if !w.wroteHeader {
		if err := w.w.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
			return err
		}
		w.wroteHeader = true
	}
	w.w.Flush()
	return w.w.Error()
}
