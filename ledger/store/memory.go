// Package store provides in-memory implementations of the ledger store
// interfaces, used for testing and for runs whose state fits in RAM.
package store

import (
	"context"
	"sync"

	"github.com/warp/txledger/ledger"
)

// =============================================================================
// MEMORY ACCOUNT STORE
// =============================================================================

// MemoryAccounts keeps all accounts in a map. The engine is sequential, but
// the HTTP API may read concurrently, so access is guarded anyway.
type MemoryAccounts struct {
	mu       sync.RWMutex
	accounts map[ledger.ClientID]ledger.Account
}

func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{accounts: make(map[ledger.ClientID]ledger.Account)}
}

func (m *MemoryAccounts) Get(_ context.Context, id ledger.ClientID) (ledger.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	return a, ok, nil
}

func (m *MemoryAccounts) Put(_ context.Context, acct ledger.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[acct.Client] = acct
	return nil
}

// Update applies mutate to the stored account, creating a fresh account when
// the id is absent. A mutate error leaves the map untouched.
func (m *MemoryAccounts) Update(_ context.Context, id ledger.ClientID, mutate func(ledger.Account) (ledger.Account, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.accounts[id]
	if !ok {
		cur = ledger.NewAccount(id)
	}
	next, err := mutate(cur)
	if err != nil {
		return err
	}
	m.accounts[id] = next
	return nil
}

func (m *MemoryAccounts) Iterate(_ context.Context, fn func(ledger.Account) error) error {
	// Copy under the lock so fn runs without holding it.
	m.mu.RLock()
	accounts := make([]ledger.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		accounts = append(accounts, a)
	}
	m.mu.RUnlock()

	for _, a := range accounts {
		if err := fn(a); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// MEMORY TRANSACTION STORE
// =============================================================================

// MemoryTransactions keeps the monetary history in a map keyed by tx id.
type MemoryTransactions struct {
	mu           sync.RWMutex
	transactions map[ledger.TxID]ledger.Transaction
}

func NewMemoryTransactions() *MemoryTransactions {
	return &MemoryTransactions{transactions: make(map[ledger.TxID]ledger.Transaction)}
}

func (m *MemoryTransactions) Get(_ context.Context, id ledger.TxID) (ledger.Transaction, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.transactions[id]
	return t, ok, nil
}

func (m *MemoryTransactions) Put(_ context.Context, tx ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[tx.ID] = tx
	return nil
}

// Update fails with ErrTransactionNotFound for an absent id: dispute traffic
// must reference recorded history.
func (m *MemoryTransactions) Update(_ context.Context, id ledger.TxID, mutate func(ledger.Transaction) (ledger.Transaction, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.transactions[id]
	if !ok {
		return ledger.ErrTransactionNotFound
	}
	next, err := mutate(cur)
	if err != nil {
		return err
	}
	m.transactions[id] = next
	return nil
}
