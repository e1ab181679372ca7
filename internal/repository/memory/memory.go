// Package memory provides an in-memory record store used by tests.
package memory

import (
	"context"
	"sync"

	"github.com/ebrukaya/therapy-ledger/internal/model"
)

type LedgerRepository struct {
	mu       sync.RWMutex
	sessions []model.Session
	saves    int
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{sessions: []model.Session{}}
}

func (r *LedgerRepository) Load(_ context.Context) ([]model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Session, len(r.sessions))
	copy(out, r.sessions)
	return out, nil
}

func (r *LedgerRepository) Save(_ context.Context, sessions []model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make([]model.Session, len(sessions))
	copy(r.sessions, sessions)
	r.saves++
	return nil
}

// Saves reports how many write-throughs the store has seen.
func (r *LedgerRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}
