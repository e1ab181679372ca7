package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ebrukaya/therapy-ledger/internal/model"
)

// slotKey matches the storage key of the original browser tool.
const slotKey = "sessions"

type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Load reads the whole session array from the slot. An absent slot or a
// payload that no longer parses both load as the empty ledger; corruption is
// not fatal on startup.
func (r *LedgerRepository) Load(ctx context.Context) ([]model.Session, error) {
	query := `
		SELECT payload
		FROM ledger_slots
		WHERE slot = ?
	`
	var payload []byte
	err := r.db.GetContext(ctx, &payload, query, slotKey)
	if errors.Is(err, sql.ErrNoRows) {
		return []model.Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger slot: %w", err)
	}

	var sessions []model.Session
	if err := json.Unmarshal(payload, &sessions); err != nil {
		return []model.Session{}, nil
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	return sessions, nil
}

// Save writes the full session array back to the slot.
func (r *LedgerRepository) Save(ctx context.Context, sessions []model.Session) error {
	payload, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	query := `
		INSERT INTO ledger_slots (slot, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, slotKey, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save ledger slot: %w", err)
	}
	return nil
}
