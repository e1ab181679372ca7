package codec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ebrukaya/therapy-ledger/internal/model"
	apperrors "github.com/ebrukaya/therapy-ledger/pkg/errors"
)

// RowWarning describes one skipped CSV row. Row warnings never abort the
// import; they are reported alongside the accepted records.
type RowWarning struct {
	Row int
	Err error
}

func (w RowWarning) String() string {
	return fmt.Sprintf("row %d skipped: %v", w.Row, w.Err)
}

// ExportCSV renders the ledger in the fixed column order. The patient name is
// always quoted, with embedded quotes doubled, so names containing commas or
// quotes survive the round trip.
func ExportCSV(sessions []model.Session, opts ExportOptions) ([]byte, error) {
	filtered := filterForExport(sessions, opts)
	if len(filtered) == 0 {
		return nil, apperrors.EmptyResult("no sessions to export")
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(csvColumns, ","))
	buf.WriteByte('\n')

	for _, session := range filtered {
		fields := []string{
			session.ID,
			quoteCSV(session.PatientName),
			formatTimestamp(session.SessionDate),
			formatFee(session.SessionFee),
			formatFee(session.Commission),
			string(session.PaymentStatus),
			formatOptional(session.PaymentDueDate),
			formatOptional(session.PaymentDate),
		}
		buf.WriteString(strings.Join(fields, ","))
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// ParseCSV validates a CSV backup payload. The header row is required and may
// list the columns in any order; rows with a mismatched field count or an
// invalid record are skipped with a warning rather than failing the import.
func ParseCSV(data []byte) ([]model.Session, []RowWarning, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, apperrors.ImportFormat("backup is missing a CSV header row", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range csvColumns {
		if _, ok := columns[required]; !ok {
			return nil, nil, apperrors.ImportFormat(fmt.Sprintf("backup is missing required column %q", required), nil)
		}
	}

	var (
		sessions []model.Session
		warnings []RowWarning
	)
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			warnings = append(warnings, RowWarning{Row: row, Err: apperrors.ImportRow("malformed row", err)})
			continue
		}
		if len(fields) != len(header) {
			warnings = append(warnings, RowWarning{
				Row: row,
				Err: apperrors.ImportRow(fmt.Sprintf("expected %d fields, got %d", len(header), len(fields)), nil),
			})
			continue
		}

		session, err := validateRecord(rowRecord(columns, fields))
		if err != nil {
			warnings = append(warnings, RowWarning{Row: row, Err: apperrors.ImportRow("invalid record", err)})
			continue
		}
		sessions = append(sessions, session)
	}

	if len(sessions) == 0 {
		return nil, warnings, apperrors.EmptyResult("backup contains no valid sessions")
	}
	return sessions, warnings, nil
}

// rowRecord converts one CSV row into the same dynamic shape the JSON
// importer validates, so both formats share a single validity predicate.
func rowRecord(columns map[string]int, fields []string) map[string]interface{} {
	record := make(map[string]interface{}, len(columns))
	for name, idx := range columns {
		value := fields[idx]
		switch name {
		case "sessionFee", "commission":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				record[name] = f
			} else {
				// Leave the raw string so validation reports the type error.
				record[name] = value
			}
		case "paymentDueDate", "paymentDate":
			if value != "" {
				record[name] = value
			}
		default:
			record[name] = value
		}
	}
	return record
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatFee(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTimestamp(*t)
}
