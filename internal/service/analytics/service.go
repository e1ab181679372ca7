// Package analytics computes the summary views over the session ledger:
// monthly and overall totals, patient frequency, and the income series.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/ebrukaya/therapy-ledger/internal/model"
)

// TopPatients caps the patient frequency ranking.
const TopPatients = 10

// SessionSource is anything that can hand over the current ledger.
type SessionSource interface {
	List(ctx context.Context) ([]model.Session, error)
}

type Service struct {
	source SessionSource
}

func NewService(source SessionSource) *Service {
	return &Service{source: source}
}

// MonthlySummary aggregates one calendar month. The session count covers all
// statuses; the money totals exclude Cancelled sessions.
type MonthlySummary struct {
	Label              string
	Year               int
	Month              time.Month
	SessionsCount      int
	TotalIncome        float64
	TotalCommission    float64
	PaidCommission     float64
	OutstandingBalance float64
}

type OverallSummary struct {
	TotalIncome        float64
	OutstandingBalance float64
}

type PatientCount struct {
	PatientName string
	Sessions    int
}

type MonthIncome struct {
	Label  string
	Year   int
	Month  time.Month
	Income float64
}

type StatusCount struct {
	Status model.PaymentStatus
	Count  int
}

func (s *Service) MonthlySummaries(ctx context.Context) ([]MonthlySummary, error) {
	sessions, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}
	return MonthlySummaries(sessions), nil
}

func (s *Service) Overall(ctx context.Context) (*OverallSummary, error) {
	sessions, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}
	summary := Overall(sessions)
	return &summary, nil
}

func (s *Service) PatientFrequency(ctx context.Context) ([]PatientCount, error) {
	sessions, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}
	return PatientFrequency(sessions, TopPatients), nil
}

func (s *Service) MonthlyIncomeSeries(ctx context.Context) ([]MonthIncome, error) {
	sessions, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}
	return MonthlyIncomeSeries(sessions), nil
}

func (s *Service) StatusDistribution(ctx context.Context) ([]StatusCount, error) {
	sessions, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}
	return StatusDistribution(sessions), nil
}

func (s *Service) SessionsForMonth(ctx context.Context, year int, month time.Month) ([]model.Session, error) {
	sessions, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}
	return SessionsForMonth(sessions, year, month), nil
}

// MonthlySummaries buckets sessions by their local calendar month, most
// recent month first. Month rollover follows local wall-clock boundaries.
func MonthlySummaries(sessions []model.Session) []MonthlySummary {
	buckets := map[monthKey]*MonthlySummary{}
	for _, session := range sessions {
		key := monthOf(session.SessionDate)
		bucket, ok := buckets[key]
		if !ok {
			bucket = &MonthlySummary{
				Label: monthLabel(key),
				Year:  key.year,
				Month: key.month,
			}
			buckets[key] = bucket
		}

		bucket.SessionsCount++
		if session.PaymentStatus == model.PaymentStatusCancelled {
			continue
		}
		bucket.TotalIncome += session.SessionFee
		bucket.TotalCommission += session.Commission
		if session.PaymentStatus == model.PaymentStatusPaid {
			bucket.PaidCommission += session.Commission
		}
		if session.PaymentStatus == model.PaymentStatusWaiting {
			bucket.OutstandingBalance += session.SessionFee
		}
	}

	out := make([]MonthlySummary, 0, len(buckets))
	for _, bucket := range buckets {
		out = append(out, *bucket)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out
}

func Overall(sessions []model.Session) OverallSummary {
	var summary OverallSummary
	for _, session := range sessions {
		if session.PaymentStatus != model.PaymentStatusCancelled {
			summary.TotalIncome += session.SessionFee
		}
		if session.PaymentStatus == model.PaymentStatusWaiting {
			summary.OutstandingBalance += session.SessionFee
		}
	}
	return summary
}

// PatientFrequency ranks patients by non-Cancelled session count, descending,
// truncated to limit. Ties break alphabetically so the ranking is stable.
func PatientFrequency(sessions []model.Session, limit int) []PatientCount {
	counts := map[string]int{}
	for _, session := range sessions {
		if session.PaymentStatus == model.PaymentStatusCancelled {
			continue
		}
		counts[session.PatientName]++
	}

	out := make([]PatientCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, PatientCount{PatientName: name, Sessions: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sessions != out[j].Sessions {
			return out[i].Sessions > out[j].Sessions
		}
		return out[i].PatientName < out[j].PatientName
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MonthlyIncomeSeries sums Paid fees per month in chronological order, the
// opposite ordering from the summary picker. Meant for charting.
func MonthlyIncomeSeries(sessions []model.Session) []MonthIncome {
	buckets := map[monthKey]float64{}
	for _, session := range sessions {
		if session.PaymentStatus != model.PaymentStatusPaid {
			continue
		}
		buckets[monthOf(session.SessionDate)] += session.SessionFee
	}

	out := make([]MonthIncome, 0, len(buckets))
	for key, income := range buckets {
		out = append(out, MonthIncome{
			Label:  shortMonthLabel(key),
			Year:   key.year,
			Month:  key.month,
			Income: income,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// StatusDistribution counts sessions per payment status, omitting statuses
// with no sessions.
func StatusDistribution(sessions []model.Session) []StatusCount {
	counts := map[model.PaymentStatus]int{}
	for _, session := range sessions {
		counts[session.PaymentStatus]++
	}

	out := make([]StatusCount, 0, len(counts))
	for _, status := range model.PaymentStatuses {
		if counts[status] > 0 {
			out = append(out, StatusCount{Status: status, Count: counts[status]})
		}
	}
	return out
}

// SessionsForMonth returns one month's sessions, newest first.
func SessionsForMonth(sessions []model.Session, year int, month time.Month) []model.Session {
	out := make([]model.Session, 0)
	for _, session := range sessions {
		key := monthOf(session.SessionDate)
		if key.year == year && key.month == month {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SessionDate.After(out[j].SessionDate)
	})
	return out
}

type monthKey struct {
	year  int
	month time.Month
}

func monthOf(t time.Time) monthKey {
	local := t.Local()
	return monthKey{year: local.Year(), month: local.Month()}
}

func monthLabel(key monthKey) string {
	return time.Date(key.year, key.month, 1, 0, 0, 0, 0, time.Local).Format("January 2006")
}

func shortMonthLabel(key monthKey) string {
	return time.Date(key.year, key.month, 1, 0, 0, 0, 0, time.Local).Format("Jan 06")
}
