/*
main.go - Batch CLI entry point

PURPOSE:
  Reads a transaction event CSV, drains it through the ledger engine, and
  writes the final account snapshot CSV to standard output. Per-event
  rejection diagnostics go to standard error.

USAGE:
  engine [flags] <input.csv>

COMMAND-LINE FLAGS:
  -backend   Storage backend: memory (default), sqlite, bolt
  -db        Data path for the persistent backends
             (sqlite defaults to ":memory:"; bolt requires a path)

EXIT CODES:
  0  Stream drained, snapshot written - even if individual events were
     rejected along the way
  1  Unrecoverable setup or storage error (missing file, backend open
     failure, backend I/O failure mid-run)
  2  Bad command line

EXAMPLES:
  # In-memory run
  engine transactions.csv > accounts.csv

  # Disk-backed run for streams that exceed RAM
  engine -backend=bolt -db=./ledger.db transactions.csv > accounts.csv

SEE ALSO:
  - ledger/engine.go: The rules applied per event
  - cmd/ledgerd/main.go: The HTTP server over the same engine
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/warp/txledger/csv"
	"github.com/warp/txledger/factory"
	"github.com/warp/txledger/ledger"
)

func main() {
	backend := flag.String("backend", "memory", fmt.Sprintf("storage backend, one of %v", factory.Backends))
	dbPath := flag.String("db", "", "data path for persistent backends")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: engine [flags] <input.csv>")
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *backend, *dbPath, os.Stdout); err != nil {
		log.Fatalf("engine: %v", err)
	}
}

// run is the whole batch pipeline: open the backend, drain the input
// stream, write the snapshot to out. main only adds flag parsing and the
// exit code.
func run(inputPath, backend, dbPath string, out io.Writer) error {
	ctx := context.Background()

	stores, err := factory.Open(backend, dbPath)
	if err != nil {
		return err
	}
	defer stores.Close()

	input, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer input.Close()

	engine := ledger.NewEngine(stores.Accounts, stores.Transactions)
	if err := engine.Run(ctx, csv.NewReader(input)); err != nil {
		return err
	}

	w := csv.NewWriter(out)
	if err := engine.Snapshot(ctx, w.Write); err != nil {
		return err
	}
	return w.Flush()
}
