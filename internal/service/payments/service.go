// Package payments derives the due-date view over unpaid sessions: what is
// overdue and what falls due within the next week. Nothing here is persisted;
// both buckets are recomputed from the ledger on every read.
package payments

import (
	"context"
	"sort"
	"time"

	"github.com/ebrukaya/therapy-ledger/internal/model"
)

// UpcomingWindow is how far ahead a due date still counts as upcoming.
const UpcomingWindow = 7 * 24 * time.Hour

type SessionSource interface {
	List(ctx context.Context) ([]model.Session, error)
}

type Service struct {
	source SessionSource
}

func NewService(source SessionSource) *Service {
	return &Service{source: source}
}

type Overview struct {
	Overdue            []model.Session
	Upcoming           []model.Session
	OutstandingBalance float64
}

func (s *Service) Overview(ctx context.Context, now time.Time) (*Overview, error) {
	sessions, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}

	overdue, upcoming := Buckets(sessions, now)
	return &Overview{
		Overdue:            overdue,
		Upcoming:           upcoming,
		OutstandingBalance: OutstandingTotal(sessions),
	}, nil
}

// Buckets splits Waiting sessions with a due date into overdue (due before
// the start of today, most overdue first) and upcoming (due between today and
// today plus seven days, inclusive, soonest first). The buckets are disjoint.
func Buckets(sessions []model.Session, now time.Time) (overdue, upcoming []model.Session) {
	today := startOfDay(now)
	horizon := today.Add(UpcomingWindow)

	for _, session := range sessions {
		if session.PaymentStatus != model.PaymentStatusWaiting || session.PaymentDueDate == nil {
			continue
		}
		due := *session.PaymentDueDate
		switch {
		case due.Before(today):
			overdue = append(overdue, session)
		case !due.After(horizon):
			upcoming = append(upcoming, session)
		}
	}

	byDueDate(overdue)
	byDueDate(upcoming)
	return overdue, upcoming
}

// OutstandingTotal sums the fees of every Waiting session.
func OutstandingTotal(sessions []model.Session) float64 {
	var total float64
	for _, session := range sessions {
		if session.PaymentStatus == model.PaymentStatusWaiting {
			total += session.SessionFee
		}
	}
	return total
}

func byDueDate(sessions []model.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].PaymentDueDate.Before(*sessions[j].PaymentDueDate)
	})
}

func startOfDay(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}
