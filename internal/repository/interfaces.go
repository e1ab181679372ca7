package repository

import (
	"context"

	"github.com/ebrukaya/therapy-ledger/internal/model"
)

// LedgerRepository is the persistent record store: a single logical slot
// holding the full session array. Every mutation writes the whole ledger;
// there is no per-record persistence.
type LedgerRepository interface {
	Load(ctx context.Context) ([]model.Session, error)
	Save(ctx context.Context, sessions []model.Session) error
}
