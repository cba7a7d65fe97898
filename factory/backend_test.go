package factory_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/warp/txledger/factory"
	"github.com/warp/txledger/ledger"
)

func TestOpen_Memory(t *testing.T) {
	stores, err := factory.Open("memory", "")
	if err != nil {
		t.Fatal(err)
	}
	defer stores.Close()

	if err := stores.Accounts.Put(context.Background(), ledger.NewAccount(1)); err != nil {
		t.Errorf("memory backend should accept writes: %v", err)
	}
}

func TestOpen_Sqlite_DefaultsToMemory(t *testing.T) {
	stores, err := factory.Open("sqlite", "")
	if err != nil {
		t.Fatal(err)
	}
	defer stores.Close()

	if err := stores.Accounts.Put(context.Background(), ledger.NewAccount(1)); err != nil {
		t.Errorf("sqlite backend should accept writes: %v", err)
	}
}

func TestOpen_Bolt(t *testing.T) {
	stores, err := factory.Open("bolt", filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer stores.Close()

	if err := stores.Accounts.Put(context.Background(), ledger.NewAccount(1)); err != nil {
		t.Errorf("bolt backend should accept writes: %v", err)
	}
}

func TestOpen_BoltWithoutPathFails(t *testing.T) {
	if _, err := factory.Open("bolt", ""); err == nil {
		t.Error("bolt without a path must fail")
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := factory.Open("postgres", ""); err == nil {
		t.Error("unknown backend must fail")
	}
}
