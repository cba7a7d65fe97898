package ledger_test

import (
	"bytes"
	"context"
	"io"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/warp/txledger/csv"
	"github.com/warp/txledger/ledger"
	"github.com/warp/txledger/ledger/store"
	"github.com/warp/txledger/store/bolt"
	"github.com/warp/txledger/store/sqlite"
)

// =============================================================================
// END-TO-END SCENARIOS - CSV in, CSV out, through the full pipeline
// =============================================================================

// runCSV drains input through a fresh in-memory engine and returns the
// snapshot rows (header dropped, sorted) for order-independent comparison.
func runCSV(t *testing.T, input string) []string {
	t.Helper()
	engine := ledger.NewEngine(store.NewMemoryAccounts(), store.NewMemoryTransactions())
	engine.SetLogger(log.New(io.Discard, "", 0))

	if err := engine.Run(context.Background(), csv.NewReader(strings.NewReader(input))); err != nil {
		t.Fatalf("run: %v", err)
	}

	var out bytes.Buffer
	w := csv.NewWriter(&out)
	if err := engine.Snapshot(context.Background(), w.Write); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if lines[0] != "client,available,held,total,locked" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	rows := lines[1:]
	sort.Strings(rows)
	return rows
}

func assertRows(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestScenario_BasicDepositWithdraw(t *testing.T) {
	rows := runCSV(t, `type, client, tx, amount
deposit,1,1,10.0
deposit,2,2,2.0
withdraw,1,3,1.5
withdraw,2,4,3.0
`)
	assertRows(t, rows, []string{
		"1,8.5000,0.0000,8.5000,false",
		"2,2.0000,0.0000,2.0000,false",
	})
}

func TestScenario_DisputeAndResolveDeposit(t *testing.T) {
	rows := runCSV(t, `type, client, tx, amount
deposit,1,1,5.0
dispute,1,1,
resolve,1,1,
dispute,1,1,
`)
	// The trailing re-dispute is rejected: resolved is terminal.
	assertRows(t, rows, []string{
		"1,5.0000,0.0000,5.0000,false",
	})
}

func TestScenario_ChargebackLocksAccount(t *testing.T) {
	rows := runCSV(t, `type, client, tx, amount
deposit,1,1,5.0
deposit,1,2,3.0
dispute,1,1,
chargeback,1,1,
deposit,1,3,10.0
`)
	// The final deposit lands on a locked account and is rejected.
	assertRows(t, rows, []string{
		"1,3.0000,0.0000,3.0000,true",
	})
}

func TestScenario_DisputeRejectedForInsufficientAvailable(t *testing.T) {
	rows := runCSV(t, `type, client, tx, amount
deposit,1,1,5.0
withdraw,1,2,5.0
dispute,1,1,
`)
	assertRows(t, rows, []string{
		"1,0.0000,0.0000,0.0000,false",
	})
}

func TestScenario_UnknownAndCrossClientReferences(t *testing.T) {
	rows := runCSV(t, `type, client, tx, amount
deposit,1,1,5.0
dispute,2,1,
resolve,1,99,
`)
	assertRows(t, rows, []string{
		"1,5.0000,0.0000,5.0000,false",
	})
}

func TestScenario_DuplicateTxID(t *testing.T) {
	rows := runCSV(t, `type, client, tx, amount
deposit,1,1,5.0
deposit,1,1,1.0
`)
	assertRows(t, rows, []string{
		"1,5.0000,0.0000,5.0000,false",
	})
}

// =============================================================================
// DISPUTE-RESOLVE ROUND TRIP - A cleared dispute leaves no trace
// =============================================================================

func TestDisputeResolve_EquivalentToNoDispute(t *testing.T) {
	disputed := runCSV(t, `type, client, tx, amount
deposit,1,1,7.5
dispute,1,1,
resolve,1,1,
`)
	plain := runCSV(t, `type, client, tx, amount
deposit,1,1,7.5
`)
	assertRows(t, disputed, plain)
}

// =============================================================================
// BACKEND EQUIVALENCE - Same stream, same snapshot, any backend
// =============================================================================

// exerciseStream touches every dispatch path: deposits, a rejected and an
// accepted withdrawal, both dispute kinds, a resolve, a chargeback plus
// lock, duplicates, unknown references, and a client mismatch.
const exerciseStream = `type, client, tx, amount
deposit,1,1,100.0
deposit,2,2,50.0
deposit,3,3,10.0
withdraw,1,4,25.5
withdraw,2,5,80.0
deposit,1,1,999.0
dispute,1,4,
resolve,1,4,
dispute,2,2,
chargeback,2,2,
deposit,2,6,5.0
dispute,3,3,
dispute,1,99,
resolve,3,1,
withdraw,3,7,2.0
`

func snapshotWith(t *testing.T, accounts ledger.AccountStore, transactions ledger.TransactionStore) []ledger.AccountSnapshot {
	t.Helper()
	engine := ledger.NewEngine(accounts, transactions)
	engine.SetLogger(log.New(io.Discard, "", 0))

	if err := engine.Run(context.Background(), csv.NewReader(strings.NewReader(exerciseStream))); err != nil {
		t.Fatalf("run: %v", err)
	}
	snaps, err := engine.Snapshots(context.Background())
	if err != nil {
		t.Fatalf("snapshots: %v", err)
	}
	return snaps
}

func TestBackendEquivalence(t *testing.T) {
	reference := snapshotWith(t, store.NewMemoryAccounts(), store.NewMemoryTransactions())

	sq, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })

	bl, err := bolt.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { bl.Close() })

	backends := map[string][]ledger.AccountSnapshot{
		"sqlite": snapshotWith(t, sq.Accounts(), sq.Transactions()),
		"bolt":   snapshotWith(t, bl.Accounts(), bl.Transactions()),
	}

	for name, snaps := range backends {
		if len(snaps) != len(reference) {
			t.Errorf("%s: expected %d accounts, got %d", name, len(reference), len(snaps))
			continue
		}
		for i, want := range reference {
			got := snaps[i]
			if got.Client != want.Client ||
				!got.Available.Equal(want.Available) ||
				!got.Held.Equal(want.Held) ||
				!got.Total.Equal(want.Total) ||
				got.Locked != want.Locked {
				t.Errorf("%s: account %d diverges: got %+v, want %+v", name, want.Client, got, want)
			}
		}
	}
}
