/*
snapshot.go - End-of-stream account state

PURPOSE:
  Produces the final tabular state once Run has drained the stream: one
  record per known client with available, held, derived total, and the
  locked flag. Safe only after Run completes; the engine does not guard
  against concurrent mutation because there is none by then.

SEE ALSO:
  - csv/writer.go: Serializes snapshots to the output CSV
  - api/handlers.go: Serves snapshots over HTTP
*/
package ledger

import (
	"context"
	"sort"
)

// AccountSnapshot is one row of the final output. Total is derived at
// snapshot time, never stored.
type AccountSnapshot struct {
	Client    ClientID
	Available Amount
	Held      Amount
	Total     Amount
	Locked    bool
}

func snapshotOf(a Account) AccountSnapshot {
	return AccountSnapshot{
		Client:    a.Client,
		Available: a.Available,
		Held:      a.Held,
		Total:     a.Total(),
		Locked:    a.Locked,
	}
}

// Snapshot streams one snapshot per known account to fn, in the backing
// store's iteration order. An error from fn stops the iteration.
func (e *Engine) Snapshot(ctx context.Context, fn func(AccountSnapshot) error) error {
	return e.accounts.Iterate(ctx, func(a Account) error {
		return fn(snapshotOf(a))
	})
}

// Snapshots materializes all account snapshots sorted by client id. The
// client space is 16-bit, so the full set always fits in memory.
func (e *Engine) Snapshots(ctx context.Context) ([]AccountSnapshot, error) {
	var snaps []AccountSnapshot
	if err := e.Snapshot(ctx, func(s AccountSnapshot) error {
		snaps = append(snaps, s)
		return nil
	}); err != nil {
		return nil, err
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Client < snaps[j].Client })
	return snaps, nil
}
