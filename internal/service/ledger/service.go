package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/ebrukaya/therapy-ledger/internal/model"
	"github.com/ebrukaya/therapy-ledger/internal/repository"
	apperrors "github.com/ebrukaya/therapy-ledger/pkg/errors"
	"github.com/ebrukaya/therapy-ledger/pkg/logger"
)

const snapshotKey = "ledger"

// Service owns the canonical session ledger. Every mutation derives the
// dependent fields (commission, due date, payment date) and writes the whole
// ledger through to the record store.
type Service struct {
	repo     repository.LedgerRepository
	validate *validator.Validate
	snapshot *cache.Cache
	log      *logger.Logger
}

func NewService(repo repository.LedgerRepository, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
		snapshot: cache.New(5*time.Minute, 10*time.Minute),
		log:      log,
	}
}

func (s *Service) Create(ctx context.Context, req model.CreateSessionRequest) (*model.Session, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation("invalid session", err)
	}

	status := req.PaymentStatus
	if status == "" {
		status = model.PaymentStatusWaiting
	}

	session := model.Session{
		ID:            uuid.NewString(),
		PatientName:   req.PatientName,
		SessionDate:   req.SessionDate,
		SessionFee:    req.SessionFee,
		Commission:    model.CommissionFor(req.SessionFee),
		PaymentStatus: status,
	}

	if req.PaymentDueDate != nil {
		due := *req.PaymentDueDate
		session.PaymentDueDate = &due
	} else {
		due := req.SessionDate.Add(model.DueDatePeriod)
		session.PaymentDueDate = &due
	}

	if status == model.PaymentStatusPaid {
		now := time.Now()
		session.PaymentDate = &now
	}

	sessions, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.store(ctx, append(sessions, session)); err != nil {
		return nil, err
	}

	s.log.Debug("session created", "id", session.ID, "patient", session.PatientName)
	return &session, nil
}

// Update replaces the record matching session.ID wholesale. The payment date
// follows the status transition: entering Paid stamps it, leaving Paid clears
// it, staying Paid keeps the earlier stamp. Commission is always recomputed
// from the incoming fee.
func (s *Service) Update(ctx context.Context, session model.Session) (*model.Session, error) {
	if err := validateSession(session); err != nil {
		return nil, apperrors.Validation("invalid session", err)
	}

	sessions, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(sessions, session.ID)
	if idx < 0 {
		return nil, apperrors.NotFound("session", nil)
	}
	old := sessions[idx]

	session.Commission = model.CommissionFor(session.SessionFee)

	if session.PaymentStatus == model.PaymentStatusPaid {
		if old.PaymentStatus != model.PaymentStatusPaid {
			now := time.Now()
			session.PaymentDate = &now
		} else {
			session.PaymentDate = old.PaymentDate
		}
	} else {
		session.PaymentDate = nil
	}

	sessions[idx] = session
	if err := s.store(ctx, sessions); err != nil {
		return nil, err
	}

	return &session, nil
}

// Patch merges the non-nil fields of patch into the matching record. A fee
// change recomputes the commission; a status change follows the same payment
// date rules as Update.
func (s *Service) Patch(ctx context.Context, id string, patch model.SessionPatch) (*model.Session, error) {
	sessions, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(sessions, id)
	if idx < 0 {
		return nil, apperrors.NotFound("session", nil)
	}

	updated := sessions[idx]

	if patch.PatientName != nil {
		if *patch.PatientName == "" {
			return nil, apperrors.Validation("patient name cannot be empty", nil)
		}
		updated.PatientName = *patch.PatientName
	}
	if patch.SessionDate != nil {
		if patch.SessionDate.IsZero() {
			return nil, apperrors.Validation("session date is required", nil)
		}
		updated.SessionDate = *patch.SessionDate
	}
	if patch.SessionFee != nil {
		if *patch.SessionFee < 0 {
			return nil, apperrors.Validation("session fee cannot be negative", nil)
		}
		updated.SessionFee = *patch.SessionFee
		updated.Commission = model.CommissionFor(*patch.SessionFee)
	}
	if patch.PaymentDueDate != nil {
		due := *patch.PaymentDueDate
		updated.PaymentDueDate = &due
	}
	if patch.PaymentStatus != nil {
		if !patch.PaymentStatus.Valid() {
			return nil, apperrors.Validation(fmt.Sprintf("unknown payment status %q", *patch.PaymentStatus), nil)
		}
		old := updated.PaymentStatus
		updated.PaymentStatus = *patch.PaymentStatus
		if *patch.PaymentStatus == model.PaymentStatusPaid {
			if old != model.PaymentStatusPaid {
				now := time.Now()
				updated.PaymentDate = &now
			}
		} else {
			updated.PaymentDate = nil
		}
	}

	sessions[idx] = updated
	if err := s.store(ctx, sessions); err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete removes the matching record. Deleting an id that is not in the
// ledger is an error rather than a silent no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	sessions, err := s.load(ctx)
	if err != nil {
		return err
	}

	idx := indexOf(sessions, id)
	if idx < 0 {
		return apperrors.NotFound("session", nil)
	}

	sessions = append(sessions[:idx], sessions[idx+1:]...)
	return s.store(ctx, sessions)
}

// BulkCreate adds several sessions in one write. The due date is always
// derived from the session date here; the bulk path accepts no explicit due
// dates.
func (s *Service) BulkCreate(ctx context.Context, inputs []model.BulkSessionInput) ([]model.Session, error) {
	created := make([]model.Session, 0, len(inputs))
	for i, input := range inputs {
		if err := s.validate.Struct(input); err != nil {
			return nil, apperrors.Validation(fmt.Sprintf("invalid session at row %d", i+1), err)
		}

		status := input.PaymentStatus
		if status == "" {
			status = model.PaymentStatusWaiting
		}

		due := input.SessionDate.Add(model.DueDatePeriod)
		session := model.Session{
			ID:             uuid.NewString(),
			PatientName:    input.PatientName,
			SessionDate:    input.SessionDate,
			SessionFee:     input.SessionFee,
			Commission:     model.CommissionFor(input.SessionFee),
			PaymentStatus:  status,
			PaymentDueDate: &due,
		}
		if status == model.PaymentStatusPaid {
			now := time.Now()
			session.PaymentDate = &now
		}
		created = append(created, session)
	}

	sessions, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.store(ctx, append(sessions, created...)); err != nil {
		return nil, err
	}

	s.log.Info("bulk add completed", "count", len(created))
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Session, error) {
	sessions, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOf(sessions, id)
	if idx < 0 {
		return nil, apperrors.NotFound("session", nil)
	}
	session := sessions[idx]
	return &session, nil
}

// List returns the raw ledger. Presentation order is always derived by the
// filter engine, never by storage order.
func (s *Service) List(ctx context.Context) ([]model.Session, error) {
	return s.load(ctx)
}

func (s *Service) ListFiltered(ctx context.Context, filters model.SessionFilters) ([]model.Session, error) {
	sessions, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return ApplyFilters(sessions, filters), nil
}

// ReplaceAll swaps in a completely new ledger. This is the commit half of an
// import; the caller is responsible for having confirmed the overwrite.
func (s *Service) ReplaceAll(ctx context.Context, sessions []model.Session) error {
	if sessions == nil {
		sessions = []model.Session{}
	}
	return s.store(ctx, sessions)
}

// ImportLedger replaces the entire ledger with the imported sessions. Import
// never merges, so the overwrite must be approved by the confirm callback
// first; a declined import leaves the ledger untouched and returns false.
func (s *Service) ImportLedger(ctx context.Context, sessions []model.Session, confirm func(current, incoming int) bool) (bool, error) {
	if len(sessions) == 0 {
		return false, apperrors.EmptyResult("nothing to import")
	}

	current, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	if confirm != nil && !confirm(len(current), len(sessions)) {
		return false, nil
	}

	if err := s.store(ctx, sessions); err != nil {
		return false, err
	}
	s.log.Info("ledger imported", "count", len(sessions), "replaced", len(current))
	return true, nil
}

func (s *Service) load(ctx context.Context) ([]model.Session, error) {
	if cached, ok := s.snapshot.Get(snapshotKey); ok {
		stored := cached.([]model.Session)
		out := make([]model.Session, len(stored))
		copy(out, stored)
		return out, nil
	}

	sessions, err := s.repo.Load(ctx)
	if err != nil {
		return nil, apperrors.Persistence("failed to load ledger", err)
	}
	s.snapshot.Set(snapshotKey, sessions, cache.DefaultExpiration)

	out := make([]model.Session, len(sessions))
	copy(out, sessions)
	return out, nil
}

// store refreshes the in-memory snapshot before writing through. A failed
// write surfaces as a persistence error but the new state stays visible; it
// just may not survive a restart.
func (s *Service) store(ctx context.Context, sessions []model.Session) error {
	s.snapshot.Set(snapshotKey, sessions, cache.DefaultExpiration)
	if err := s.repo.Save(ctx, sessions); err != nil {
		return apperrors.Persistence("failed to persist ledger", err)
	}
	return nil
}

func validateSession(session model.Session) error {
	if session.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if session.PatientName == "" {
		return fmt.Errorf("patient name is required")
	}
	if session.SessionDate.IsZero() {
		return fmt.Errorf("session date is required")
	}
	if session.SessionFee < 0 {
		return fmt.Errorf("session fee cannot be negative")
	}
	if !session.PaymentStatus.Valid() {
		return fmt.Errorf("unknown payment status %q", session.PaymentStatus)
	}
	return nil
}

func indexOf(sessions []model.Session, id string) int {
	for i := range sessions {
		if sessions[i].ID == id {
			return i
		}
	}
	return -1
}
