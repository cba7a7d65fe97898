package csv_test

import (
	"bytes"
	"testing"

	"github.com/warp/txledger/csv"
	"github.com/warp/txledger/ledger"
)

func amount(t *testing.T, s string) ledger.Amount {
	t.Helper()
	a, err := ledger.ParseAmount(s)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestWriter_FourFractionalDigits(t *testing.T) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	err := w.Write(ledger.AccountSnapshot{
		Client:    1,
		Available: amount(t, "8.5"),
		Held:      amount(t, "0"),
		Total:     amount(t, "8.5"),
		Locked:    false,
	})
	if err != nil {
		t.Fatal(err)
	}
	err = w.Write(ledger.AccountSnapshot{
		Client:    2,
		Available: amount(t, "3"),
		Held:      amount(t, "-1.25"),
		Total:     amount(t, "1.75"),
		Locked:    true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	want := "client,available,held,total,locked\n" +
		"1,8.5000,0.0000,8.5000,false\n" +
		"2,3.0000,-1.2500,1.7500,true\n"
	if got := buf.String(); got != want {
		t.Errorf("unexpected output:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestWriter_EmptySnapshotStillHasHeader(t *testing.T) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != "client,available,held,total,locked\n" {
		t.Errorf("expected bare header, got %q", got)
	}
}

func TestWriter_RoundTripFourDigits(t *testing.T) {
	// An amount entered with four fractional digits survives output exactly.
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(ledger.AccountSnapshot{
		Client:    9,
		Available: amount(t, "0.0001"),
		Held:      amount(t, "0"),
		Total:     amount(t, "0.0001"),
	}); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	want := "client,available,held,total,locked\n9,0.0001,0.0000,0.0001,false\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
