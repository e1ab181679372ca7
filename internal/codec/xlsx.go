package codec

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"github.com/ebrukaya/therapy-ledger/internal/model"
	apperrors "github.com/ebrukaya/therapy-ledger/pkg/errors"
)

const xlsxSheet = "Sessions"

// ExportXLSX renders the ledger as a single-sheet workbook with the same
// columns as the CSV export, for handing off to a spreadsheet.
func ExportXLSX(sessions []model.Session, opts ExportOptions) ([]byte, error) {
	filtered := filterForExport(sessions, opts)
	if len(filtered) == 0 {
		return nil, apperrors.EmptyResult("no sessions to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), xlsxSheet)

	header := make([]interface{}, len(csvColumns))
	for i, name := range csvColumns {
		header[i] = name
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return nil, apperrors.Internal(err)
	}

	for i, session := range filtered {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		row := []interface{}{
			session.ID,
			session.PatientName,
			formatTimestamp(session.SessionDate),
			session.SessionFee,
			session.Commission,
			string(session.PaymentStatus),
			formatOptional(session.PaymentDueDate),
			formatOptional(session.PaymentDate),
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperrors.Internal(err)
	}
	return buf.Bytes(), nil
}
