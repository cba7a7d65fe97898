/*
Package sqlite provides a SQLite-backed implementation of the ledger store
interfaces.

PURPOSE:
  Persists accounts and transaction history in SQLite for datasets that
  exceed RAM (the transaction id space is 32-bit). The same engine runs
  unchanged against this backend or the in-memory one; only the store
  wiring differs.

KEY TABLES:
  accounts:      One row per client (client, available, held, locked)
  transactions:  One row per monetary event (tx, client, kind, amount,
                 dispute_state)

  Amounts are stored as decimal TEXT so no precision is lost crossing the
  persistence boundary.

ATOMICITY:
  Update() wraps its read-modify-write in a database transaction; a
  mutation error rolls back and nothing is written. Atomicity is bounded
  per call - there is no transactionality across the two tables. The
  engine orders its writes accordingly.

CONCURRENCY:
  Uses sync.Mutex around Update's transaction. The engine is sequential,
  so this only matters when the HTTP API reads concurrently.

WAL MODE:
  Opened with WAL (Write-Ahead Logging): readers don't block the writer
  and crash recovery is better.

USAGE:
  st, err := sqlite.New("./data/ledger.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

  engine := ledger.NewEngine(st.Accounts(), st.Transactions())

SEE ALSO:
  - ledger/store.go: Interface definitions
  - store/bolt: The key/value on-disk alternative
  - ledger/store/memory.go: In-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/txledger/ledger"
)

// Store owns the database handle. The two ledger store interfaces are
// exposed as views over the same connection.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Accounts returns the account-store view.
func (s *Store) Accounts() ledger.AccountStore {
	return &accountStore{s}
}

// Transactions returns the transaction-store view.
func (s *Store) Transactions() ledger.TransactionStore {
	return &transactionStore{s}
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		client INTEGER PRIMARY KEY,
		available TEXT NOT NULL,
		held TEXT NOT NULL,
		locked INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS transactions (
		tx INTEGER PRIMARY KEY,
		client INTEGER NOT NULL,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		dispute_state TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_client
		ON transactions(client);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ACCOUNT STORE VIEW
// =============================================================================

type accountStore struct {
	s *Store
}

func (a *accountStore) Get(ctx context.Context, id ledger.ClientID) (ledger.Account, bool, error) {
	row := a.s.db.QueryRowContext(ctx,
		`SELECT available, held, locked FROM accounts WHERE client = ?`, int64(id))
	acct, err := scanAccount(row, id)
	if err == sql.ErrNoRows {
		return ledger.Account{}, false, nil
	}
	if err != nil {
		return ledger.Account{}, false, err
	}
	return acct, true, nil
}

func (a *accountStore) Put(ctx context.Context, acct ledger.Account) error {
	_, err := a.s.db.ExecContext(ctx, `
		INSERT INTO accounts (client, available, held, locked) VALUES (?, ?, ?, ?)
		ON CONFLICT(client) DO UPDATE SET available = excluded.available,
			held = excluded.held, locked = excluded.locked`,
		int64(acct.Client), acct.Available.Value.String(), acct.Held.Value.String(), boolToInt(acct.Locked))
	return err
}

func (a *accountStore) Update(ctx context.Context, id ledger.ClientID, mutate func(ledger.Account) (ledger.Account, error)) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	tx, err := a.s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT available, held, locked FROM accounts WHERE client = ?`, int64(id))
	cur, err := scanAccount(row, id)
	if err == sql.ErrNoRows {
		cur = ledger.NewAccount(id)
	} else if err != nil {
		return err
	}

	next, err := mutate(cur)
	if err != nil {
		// Rolled back by the deferred Rollback; nothing was written.
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (client, available, held, locked) VALUES (?, ?, ?, ?)
		ON CONFLICT(client) DO UPDATE SET available = excluded.available,
			held = excluded.held, locked = excluded.locked`,
		int64(next.Client), next.Available.Value.String(), next.Held.Value.String(), boolToInt(next.Locked)); err != nil {
		return err
	}
	return tx.Commit()
}

func (a *accountStore) Iterate(ctx context.Context, fn func(ledger.Account) error) error {
	rows, err := a.s.db.QueryContext(ctx,
		`SELECT client, available, held, locked FROM accounts ORDER BY client`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var client int64
		var available, held string
		var locked int
		if err := rows.Scan(&client, &available, &held, &locked); err != nil {
			return err
		}
		acct, err := buildAccount(ledger.ClientID(client), available, held, locked)
		if err != nil {
			return err
		}
		if err := fn(acct); err != nil {
			return err
		}
	}
	return rows.Err()
}

// =============================================================================
// TRANSACTION STORE VIEW
// =============================================================================

type transactionStore struct {
	s *Store
}

func (t *transactionStore) Get(ctx context.Context, id ledger.TxID) (ledger.Transaction, bool, error) {
	row := t.s.db.QueryRowContext(ctx,
		`SELECT client, kind, amount, dispute_state FROM transactions WHERE tx = ?`, int64(id))
	rec, err := scanTransaction(row, id)
	if err == sql.ErrNoRows {
		return ledger.Transaction{}, false, nil
	}
	if err != nil {
		return ledger.Transaction{}, false, err
	}
	return rec, true, nil
}

func (t *transactionStore) Put(ctx context.Context, rec ledger.Transaction) error {
	_, err := t.s.db.ExecContext(ctx, `
		INSERT INTO transactions (tx, client, kind, amount, dispute_state) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(tx) DO UPDATE SET client = excluded.client, kind = excluded.kind,
			amount = excluded.amount, dispute_state = excluded.dispute_state`,
		int64(rec.ID), int64(rec.Client), string(rec.Kind), rec.Amount.Decimal().String(), string(rec.State))
	return err
}

func (t *transactionStore) Update(ctx context.Context, id ledger.TxID, mutate func(ledger.Transaction) (ledger.Transaction, error)) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	tx, err := t.s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT client, kind, amount, dispute_state FROM transactions WHERE tx = ?`, int64(id))
	cur, err := scanTransaction(row, id)
	if err == sql.ErrNoRows {
		return ledger.ErrTransactionNotFound
	}
	if err != nil {
		return err
	}

	next, err := mutate(cur)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE transactions SET client = ?, kind = ?, amount = ?, dispute_state = ? WHERE tx = ?`,
		int64(next.Client), string(next.Kind), next.Amount.Decimal().String(), string(next.State), int64(next.ID)); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// ROW HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner, id ledger.ClientID) (ledger.Account, error) {
	var available, held string
	var locked int
	if err := row.Scan(&available, &held, &locked); err != nil {
		return ledger.Account{}, err
	}
	return buildAccount(id, available, held, locked)
}

func buildAccount(id ledger.ClientID, available, held string, locked int) (ledger.Account, error) {
	avail, err := decimal.NewFromString(available)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("corrupt account %d: available %q: %w", id, available, err)
	}
	h, err := decimal.NewFromString(held)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("corrupt account %d: held %q: %w", id, held, err)
	}
	return ledger.Account{
		Client:    id,
		Available: ledger.NewAmount(avail),
		Held:      ledger.NewAmount(h),
		Locked:    locked != 0,
	}, nil
}

func scanTransaction(row rowScanner, id ledger.TxID) (ledger.Transaction, error) {
	var client int64
	var kind, amount, state string
	if err := row.Scan(&client, &kind, &amount, &state); err != nil {
		return ledger.Transaction{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("corrupt transaction %d: amount %q: %w", id, amount, err)
	}
	amt, err := ledger.NewPositiveAmount(d)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("corrupt transaction %d: amount %q: %w", id, amount, err)
	}
	return ledger.Transaction{
		ID:     id,
		Client: ledger.ClientID(client),
		Kind:   ledger.TransactionKind(kind),
		Amount: amt,
		State:  ledger.DisputeState(state),
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
