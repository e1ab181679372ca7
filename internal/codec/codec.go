// Package codec serializes the ledger to backup files and validates external
// payloads back into session records before they may replace the ledger.
package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/ebrukaya/therapy-ledger/internal/model"
	apperrors "github.com/ebrukaya/therapy-ledger/pkg/errors"
)

const productName = "therapyledger"

// Format identifies a backup file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// csvColumns is the fixed export column order. Import accepts any column
// order as long as all names are present.
var csvColumns = []string{
	"id",
	"patientName",
	"sessionDate",
	"sessionFee",
	"commission",
	"paymentStatus",
	"paymentDueDate",
	"paymentDate",
}

// DetectFormat resolves an import format from a file extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepathExt(filename), ".")) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", apperrors.ImportFormat(fmt.Sprintf("unsupported import file %q, expected .json or .csv", filename), nil)
}

func filepathExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

// Filename builds the backup file name for an export performed at now,
// e.g. therapyledger_backup_2024-05-01.json.
func Filename(format Format, now time.Time) string {
	return fmt.Sprintf("%s_backup_%s.%s", productName, now.Format("2006-01-02"), format)
}

// ExportOptions optionally restricts an export to an inclusive session-date
// range; nil bounds are unbounded.
type ExportOptions struct {
	Start *time.Time
	End   *time.Time
}

func filterForExport(sessions []model.Session, opts ExportOptions) []model.Session {
	out := make([]model.Session, 0, len(sessions))
	for _, session := range sessions {
		if model.InRange(session.SessionDate, opts.Start, opts.End) {
			out = append(out, session)
		}
	}
	return out
}

// timestampLayouts are accepted on import, most specific first.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats a backup (or the command line)
// may carry: RFC3339, a date with minutes, or a bare date.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
