package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebrukaya/therapy-ledger/internal/model"
	apperrors "github.com/ebrukaya/therapy-ledger/pkg/errors"
)

func TestCSVRoundTripAwkwardName(t *testing.T) {
	sessions := backupFixture()
	sessions[0].PatientName = `Demir, Ayse "Didi"`

	data, err := ExportCSV(sessions, ExportOptions{})
	require.NoError(t, err)

	restored, warnings, err := ParseCSV(data)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, restored, 2)

	// commas and quotes in the name survive the round trip
	assert.Equal(t, `Demir, Ayse "Didi"`, restored[0].PatientName)
	assert.True(t, restored[0].SessionDate.Equal(sessions[0].SessionDate))
	assert.InDelta(t, sessions[0].Commission, restored[0].Commission, 1e-9)
	require.NotNil(t, restored[0].PaymentDate)
	assert.True(t, restored[0].PaymentDate.Equal(*sessions[0].PaymentDate))
	assert.Nil(t, restored[1].PaymentDate)
}

func TestExportCSVQuotesPatientName(t *testing.T) {
	data, err := ExportCSV(backupFixture(), ExportOptions{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(csvColumns, ","), lines[0])
	assert.Contains(t, lines[1], `"Ayse Demir"`)
}

func TestParseCSVSkipsBadRows(t *testing.T) {
	payload := strings.Join([]string{
		"id,patientName,sessionDate,sessionFee,commission,paymentStatus,paymentDueDate,paymentDate",
		`s1,"Ayse Demir",2024-05-01T15:00:00Z,1100,500,Waiting,2024-05-08T15:00:00Z,`,
		`s2,"Mehmet Kaya",2024-05-02T15:00:00Z,not-a-number,500,Waiting,,`,
		`s3,"Elif Sahin",2024-05-03T15:00:00Z,2200,1000,Paid,,2024-05-03T18:00:00Z`,
	}, "\n")

	sessions, warnings, err := ParseCSV([]byte(payload))
	require.NoError(t, err)

	// valid rows are accepted, the bad one is reported and skipped
	require.Len(t, sessions, 2)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.Equal(t, "s3", sessions[1].ID)

	require.Len(t, warnings, 1)
	assert.Equal(t, 2, warnings[0].Row)
	assert.True(t, apperrors.IsCode(warnings[0].Err, apperrors.ErrImportRow))
	assert.Contains(t, warnings[0].String(), "sessionFee")
}

func TestParseCSVFieldCountMismatch(t *testing.T) {
	payload := strings.Join([]string{
		"id,patientName,sessionDate,sessionFee,commission,paymentStatus,paymentDueDate,paymentDate",
		`s1,"Ayse Demir",2024-05-01T15:00:00Z,1100,500,Waiting,,`,
		`s2,"Mehmet Kaya",2024-05-02T15:00:00Z`,
	}, "\n")

	sessions, warnings, err := ParseCSV([]byte(payload))
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Len(t, warnings, 1)
	assert.Equal(t, 2, warnings[0].Row)
}

func TestParseCSVHeaderOrderIndependent(t *testing.T) {
	payload := strings.Join([]string{
		"patientName,id,paymentStatus,sessionFee,commission,sessionDate,paymentDate,paymentDueDate",
		`"Ayse Demir",s1,Paid,1100,500,2024-05-01T15:00:00Z,2024-05-06T09:30:00Z,2024-05-08T15:00:00Z`,
	}, "\n")

	sessions, warnings, err := ParseCSV([]byte(payload))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.Equal(t, "Ayse Demir", sessions[0].PatientName)
	assert.Equal(t, model.PaymentStatusPaid, sessions[0].PaymentStatus)
}

func TestParseCSVMissingColumn(t *testing.T) {
	payload := strings.Join([]string{
		"id,patientName,sessionDate,sessionFee,commission,paymentStatus,paymentDueDate",
		`s1,"Ayse Demir",2024-05-01T15:00:00Z,1100,500,Waiting,`,
	}, "\n")

	_, _, err := ParseCSV([]byte(payload))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrImportFormat))
}

func TestParseCSVNoValidRows(t *testing.T) {
	payload := strings.Join([]string{
		"id,patientName,sessionDate,sessionFee,commission,paymentStatus,paymentDueDate,paymentDate",
		`s1,"Ayse Demir",yesterday,1100,500,Waiting,,`,
	}, "\n")

	_, warnings, err := ParseCSV([]byte(payload))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrEmptyResult))
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].String(), "row 1")
}

func TestParseCSVMissingHeader(t *testing.T) {
	_, _, err := ParseCSV(nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrImportFormat))
}
