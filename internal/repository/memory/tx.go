package memory

import (
	"context"
	"sync"
)

// txStore is what a memory store contributes to a transaction scope: a deep
// snapshot whose returned closure rolls the store back to it.
type txStore interface {
	snapshot() (restore func())
}

// TxManager serializes write transactions with one mutex and rolls every
// registered store back to its pre-transaction snapshot when fn fails. That
// gives the memory stores the same commit-on-success / rollback-on-error
// contract the postgres implementation gets from real transactions.
type TxManager struct {
	mu     sync.Mutex
	stores []txStore
}

// NewTxManager registers the stores participating in transaction scopes.
func NewTxManager(stores ...txStore) *TxManager {
	return &TxManager{stores: stores}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	restores := make([]func(), 0, len(m.stores))
	for _, s := range m.stores {
		restores = append(restores, s.snapshot())
	}

	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}
