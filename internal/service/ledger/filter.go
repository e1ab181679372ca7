package ledger

import (
	"sort"
	"strings"

	"github.com/ebrukaya/therapy-ledger/internal/model"
)

// ApplyFilters produces a view list without mutating its input: name and
// status predicates, an inclusive session-date range, and the fixed
// date-descending presentation order.
func ApplyFilters(sessions []model.Session, filters model.SessionFilters) []model.Session {
	query := strings.ToLower(strings.TrimSpace(filters.Query))

	out := make([]model.Session, 0, len(sessions))
	for _, session := range sessions {
		if query != "" && !strings.Contains(strings.ToLower(session.PatientName), query) {
			continue
		}
		if !matchesStatus(session.PaymentStatus, filters.Status) {
			continue
		}
		if !model.InRange(session.SessionDate, filters.Start, filters.End) {
			continue
		}
		out = append(out, session)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].SessionDate.After(out[j].SessionDate)
	})
	return out
}

func matchesStatus(status model.PaymentStatus, filter string) bool {
	if filter == "" || filter == model.StatusFilterAll {
		return true
	}
	return string(status) == filter
}
