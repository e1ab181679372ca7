package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebrukaya/therapy-ledger/internal/model"
)

func filterFixture() []model.Session {
	return []model.Session{
		{ID: "1", PatientName: "Ayse Demir", SessionDate: time.Date(2024, 1, 10, 14, 0, 0, 0, time.UTC), PaymentStatus: model.PaymentStatusPaid},
		{ID: "2", PatientName: "Mehmet Kaya", SessionDate: time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC), PaymentStatus: model.PaymentStatusWaiting},
		{ID: "3", PatientName: "Elif Sahin", SessionDate: time.Date(2024, 2, 5, 16, 0, 0, 0, time.UTC), PaymentStatus: model.PaymentStatusCancelled},
	}
}

func TestApplyFiltersDateRange(t *testing.T) {
	sessions := filterFixture()

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)
	out := ApplyFilters(sessions, model.SessionFilters{Start: &start, End: &end})

	// two January sessions, newest first
	require.Len(t, out, 2)
	assert.Equal(t, "2", out[0].ID)
	assert.Equal(t, "1", out[1].ID)

	// input order is untouched
	assert.Equal(t, "1", sessions[0].ID)
}

func TestApplyFiltersQuery(t *testing.T) {
	sessions := filterFixture()

	out := ApplyFilters(sessions, model.SessionFilters{Query: "ayse"})
	require.Len(t, out, 1)
	assert.Equal(t, "Ayse Demir", out[0].PatientName)

	// match is a case-insensitive substring
	out = ApplyFilters(sessions, model.SessionFilters{Query: "  KAY "})
	require.Len(t, out, 1)
	assert.Equal(t, "Mehmet Kaya", out[0].PatientName)

	out = ApplyFilters(sessions, model.SessionFilters{Query: "nobody"})
	assert.Empty(t, out)
}

func TestApplyFiltersStatus(t *testing.T) {
	sessions := filterFixture()

	assert.Len(t, ApplyFilters(sessions, model.SessionFilters{}), 3)
	assert.Len(t, ApplyFilters(sessions, model.SessionFilters{Status: model.StatusFilterAll}), 3)

	out := ApplyFilters(sessions, model.SessionFilters{Status: string(model.PaymentStatusWaiting)})
	require.Len(t, out, 1)
	assert.Equal(t, "2", out[0].ID)
}

func TestApplyFiltersSortNewestFirst(t *testing.T) {
	out := ApplyFilters(filterFixture(), model.SessionFilters{})
	require.Len(t, out, 3)
	assert.Equal(t, "3", out[0].ID)
	assert.Equal(t, "2", out[1].ID)
	assert.Equal(t, "1", out[2].ID)
}
