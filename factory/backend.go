/*
Package factory provides storage backend construction by name.

PURPOSE:
  Converts a backend name ("memory", "sqlite", "bolt") plus a data path
  into the pair of store implementations the engine needs. This keeps the
  binaries free of backend wiring - the CLI and the HTTP server both pick
  a backend from a flag and hand the rest to this package.

BACKENDS:
  memory   ledger/store maps; all state lost at process exit
  sqlite   store/sqlite; relational on-disk (":memory:" also accepted)
  bolt     store/bolt; embedded key/value on-disk, path required

USAGE:
  stores, err := factory.Open("bolt", "./data/ledger.db")
  if err != nil {
      log.Fatal(err)
  }
  defer stores.Close()

  engine := ledger.NewEngine(stores.Accounts, stores.Transactions)

SEE ALSO:
  - cmd/engine/main.go: CLI backend selection
  - cmd/ledgerd/main.go: Server backend selection
*/
package factory

import (
	"fmt"
	"io"

	"github.com/warp/txledger/ledger"
	memstore "github.com/warp/txledger/ledger/store"
	"github.com/warp/txledger/store/bolt"
	"github.com/warp/txledger/store/sqlite"
)

// Backends lists the recognized backend names, for flag help text.
var Backends = []string{"memory", "sqlite", "bolt"}

// Stores bundles the two store implementations of one backend plus its
// lifecycle. Close is a no-op for the in-memory backend.
type Stores struct {
	Accounts     ledger.AccountStore
	Transactions ledger.TransactionStore

	closer io.Closer
}

// Close releases the underlying backend, if it holds resources.
func (s *Stores) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Open constructs the stores for the named backend. path is the on-disk
// location for persistent backends and is ignored by the in-memory one.
func Open(backend, path string) (*Stores, error) {
	switch backend {
	case "memory":
		return &Stores{
			Accounts:     memstore.NewMemoryAccounts(),
			Transactions: memstore.NewMemoryTransactions(),
		}, nil

	case "sqlite":
		if path == "" {
			path = ":memory:"
		}
		st, err := sqlite.New(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		return &Stores{Accounts: st.Accounts(), Transactions: st.Transactions(), closer: st}, nil

	case "bolt":
		st, err := bolt.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open bolt backend: %w", err)
		}
		return &Stores{Accounts: st.Accounts(), Transactions: st.Transactions(), closer: st}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q (want one of %v)", backend, Backends)
	}
}
