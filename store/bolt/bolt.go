/*
Package bolt provides a bbolt-backed implementation of the ledger store
interfaces.

PURPOSE:
  An embedded ordered key/value backend for datasets exceeding RAM, laid
  out as the two logical column families of the persisted state:

    accounts      bucket, keyed by client id (big-endian 2 bytes)
    transactions  bucket, keyed by tx id (big-endian 4 bytes)

  Values use a compact versioned binary encoding (codec.go). The format is
  private to this package; compatibility across versions is not required.

ATOMICITY:
  bbolt runs every mutation inside a serialized write transaction, so
  Update's read-modify-write is naturally atomic per call: a mutation
  error aborts the bbolt transaction and nothing is written.

USAGE:
  st, err := bolt.Open("./data/ledger.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

  engine := ledger.NewEngine(st.Accounts(), st.Transactions())

SEE ALSO:
  - ledger/store.go: Interface definitions
  - codec.go: Value encoding
  - store/sqlite: The relational on-disk alternative
*/
package bolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/warp/txledger/ledger"
	"go.etcd.io/bbolt"
)

var (
	accountsBucket     = []byte("accounts")
	transactionsBucket = []byte("transactions")
)

// Store owns the bbolt database handle. The two ledger store interfaces are
// exposed as views over the same handle.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
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

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{accountsBucket, transactionsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

func clientKey(id ledger.ClientID) []byte {
	key := make([]byte, 2)
	binary.BigEndian.PutUint16(key, uint16(id))
	return key
}

func txKey(id ledger.TxID) []byte {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, uint32(id))
	return key
}

// =============================================================================
// ACCOUNT STORE VIEW
// =============================================================================

type accountStore struct {
	s *Store
}

func (a *accountStore) Get(ctx context.Context, id ledger.ClientID) (ledger.Account, bool, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Account{}, false, err
	}

	var acct ledger.Account
	found := false
	err := a.s.db.View(func(tx *bbolt.Tx) error {
		payload := tx.Bucket(accountsBucket).Get(clientKey(id))
		if payload == nil {
			return nil
		}
		decoded, err := decodeAccount(id, payload)
		if err != nil {
			return err
		}
		acct, found = decoded, true
		return nil
	})
	return acct, found, err
}

func (a *accountStore) Put(ctx context.Context, acct ledger.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload := encodeAccount(acct)
	return a.s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(accountsBucket).Put(clientKey(acct.Client), payload)
	})
}

// Update runs the read-modify-write inside a single bbolt write transaction.
func (a *accountStore) Update(ctx context.Context, id ledger.ClientID, mutate func(ledger.Account) (ledger.Account, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return a.s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(accountsBucket)

		cur := ledger.NewAccount(id)
		if payload := bucket.Get(clientKey(id)); payload != nil {
			decoded, err := decodeAccount(id, payload)
			if err != nil {
				return err
			}
			cur = decoded
		}

		next, err := mutate(cur)
		if err != nil {
			// Returning the error aborts the bbolt transaction.
			return err
		}
		return bucket.Put(clientKey(id), encodeAccount(next))
	})
}

func (a *accountStore) Iterate(ctx context.Context, fn func(ledger.Account) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return a.s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(accountsBucket).ForEach(func(key, payload []byte) error {
			if len(key) != 2 {
				return fmt.Errorf("corrupt account key %x", key)
			}
			acct, err := decodeAccount(ledger.ClientID(binary.BigEndian.Uint16(key)), payload)
			if err != nil {
				return err
			}
			return fn(acct)
		})
	})
}

// =============================================================================
// TRANSACTION STORE VIEW
// =============================================================================

type transactionStore struct {
	s *Store
}

func (t *transactionStore) Get(ctx context.Context, id ledger.TxID) (ledger.Transaction, bool, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Transaction{}, false, err
	}

	var rec ledger.Transaction
	found := false
	err := t.s.db.View(func(tx *bbolt.Tx) error {
		payload := tx.Bucket(transactionsBucket).Get(txKey(id))
		if payload == nil {
			return nil
		}
		decoded, err := decodeTransaction(id, payload)
		if err != nil {
			return err
		}
		rec, found = decoded, true
		return nil
	})
	return rec, found, err
}

func (t *transactionStore) Put(ctx context.Context, rec ledger.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload := encodeTransaction(rec)
	return t.s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(transactionsBucket).Put(txKey(rec.ID), payload)
	})
}

func (t *transactionStore) Update(ctx context.Context, id ledger.TxID, mutate func(ledger.Transaction) (ledger.Transaction, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return t.s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(transactionsBucket)

		payload := bucket.Get(txKey(id))
		if payload == nil {
			return ledger.ErrTransactionNotFound
		}
		cur, err := decodeTransaction(id, payload)
		if err != nil {
			return err
		}

		next, err := mutate(cur)
		if err != nil {
			return err
		}
		return bucket.Put(txKey(id), encodeTransaction(next))
	})
}
