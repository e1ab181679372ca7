package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebrukaya/therapy-ledger/internal/model"
)

type staticSource []model.Session

func (s staticSource) List(_ context.Context) ([]model.Session, error) {
	return s, nil
}

func may(day int) time.Time {
	return time.Date(2024, 5, day, 12, 0, 0, 0, time.Local)
}

func june(day int) time.Time {
	return time.Date(2024, 6, day, 12, 0, 0, 0, time.Local)
}

func session(name string, date time.Time, fee float64, status model.PaymentStatus) model.Session {
	return model.Session{
		PatientName:   name,
		SessionDate:   date,
		SessionFee:    fee,
		Commission:    model.CommissionFor(fee),
		PaymentStatus: status,
	}
}

func TestMonthlySummaries(t *testing.T) {
	sessions := []model.Session{
		session("Ayse Demir", may(3), 1100, model.PaymentStatusPaid),
		session("Mehmet Kaya", may(10), 500, model.PaymentStatusCancelled),
		session("Elif Sahin", june(2), 200, model.PaymentStatusWaiting),
	}

	out := MonthlySummaries(sessions)
	require.Len(t, out, 2)

	// most recent month first
	assert.Equal(t, time.June, out[0].Month)
	assert.Equal(t, time.May, out[1].Month)

	assert.Equal(t, 1, out[0].SessionsCount)
	assert.InDelta(t, 0, out[0].TotalIncome, 1e-9)
	assert.InDelta(t, 200, out[0].OutstandingBalance, 1e-9)

	// cancelled sessions count toward the session total but never the money
	assert.Equal(t, "May 2024", out[1].Label)
	assert.Equal(t, 2, out[1].SessionsCount)
	assert.InDelta(t, 1100, out[1].TotalIncome, 1e-9)
	assert.InDelta(t, 0, out[1].OutstandingBalance, 1e-9)
	assert.InDelta(t, model.CommissionFor(1100), out[1].PaidCommission, 1e-9)
	assert.InDelta(t, model.CommissionFor(1100), out[1].TotalCommission, 1e-9)
}

func TestOverall(t *testing.T) {
	sessions := []model.Session{
		session("Ayse Demir", may(3), 1100, model.PaymentStatusPaid),
		session("Mehmet Kaya", may(10), 500, model.PaymentStatusCancelled),
		session("Elif Sahin", june(2), 200, model.PaymentStatusWaiting),
	}

	summary := Overall(sessions)
	assert.InDelta(t, 1300, summary.TotalIncome, 1e-9)
	assert.InDelta(t, 200, summary.OutstandingBalance, 1e-9)
}

func TestPatientFrequency(t *testing.T) {
	sessions := []model.Session{
		session("Ayse Demir", may(1), 100, model.PaymentStatusPaid),
		session("Ayse Demir", may(8), 100, model.PaymentStatusWaiting),
		session("Mehmet Kaya", may(2), 100, model.PaymentStatusPaid),
		session("Elif Sahin", may(3), 100, model.PaymentStatusPaid),
		// cancelled sessions do not count toward frequency
		session("Mehmet Kaya", may(9), 100, model.PaymentStatusCancelled),
	}

	out := PatientFrequency(sessions, 10)
	require.Len(t, out, 3)
	assert.Equal(t, PatientCount{PatientName: "Ayse Demir", Sessions: 2}, out[0])

	// ties break alphabetically
	assert.Equal(t, "Elif Sahin", out[1].PatientName)
	assert.Equal(t, "Mehmet Kaya", out[2].PatientName)

	// the ranking is truncated to the limit
	out = PatientFrequency(sessions, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "Ayse Demir", out[0].PatientName)
}

func TestMonthlyIncomeSeries(t *testing.T) {
	sessions := []model.Session{
		session("Ayse Demir", june(2), 300, model.PaymentStatusPaid),
		session("Mehmet Kaya", may(3), 1100, model.PaymentStatusPaid),
		session("Elif Sahin", may(10), 999, model.PaymentStatusWaiting),
	}

	out := MonthlyIncomeSeries(sessions)
	require.Len(t, out, 2)

	// chronological, paid sessions only
	assert.Equal(t, "May 24", out[0].Label)
	assert.InDelta(t, 1100, out[0].Income, 1e-9)
	assert.Equal(t, "Jun 24", out[1].Label)
	assert.InDelta(t, 300, out[1].Income, 1e-9)
}

func TestStatusDistribution(t *testing.T) {
	sessions := []model.Session{
		session("Ayse Demir", may(1), 100, model.PaymentStatusWaiting),
		session("Mehmet Kaya", may(2), 100, model.PaymentStatusPaid),
		session("Elif Sahin", may(3), 100, model.PaymentStatusWaiting),
	}

	out := StatusDistribution(sessions)
	require.Len(t, out, 2)

	// display order, zero-count statuses omitted
	assert.Equal(t, StatusCount{Status: model.PaymentStatusPaid, Count: 1}, out[0])
	assert.Equal(t, StatusCount{Status: model.PaymentStatusWaiting, Count: 2}, out[1])
}

func TestSessionsForMonth(t *testing.T) {
	sessions := []model.Session{
		session("Ayse Demir", may(3), 100, model.PaymentStatusPaid),
		session("Mehmet Kaya", may(10), 100, model.PaymentStatusWaiting),
		session("Elif Sahin", june(2), 100, model.PaymentStatusPaid),
	}

	out := SessionsForMonth(sessions, 2024, time.May)
	require.Len(t, out, 2)
	assert.Equal(t, "Mehmet Kaya", out[0].PatientName)
	assert.Equal(t, "Ayse Demir", out[1].PatientName)

	assert.Empty(t, SessionsForMonth(sessions, 2024, time.April))
}

func TestServiceDelegatesToSource(t *testing.T) {
	svc := NewService(staticSource{
		session("Ayse Demir", may(3), 1100, model.PaymentStatusPaid),
	})

	summary, err := svc.Overall(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1100, summary.TotalIncome, 1e-9)
}
