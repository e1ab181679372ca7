package codec

import (
	"encoding/json"
	"fmt"

	"github.com/ebrukaya/therapy-ledger/internal/model"
	apperrors "github.com/ebrukaya/therapy-ledger/pkg/errors"
)

// ExportJSON renders the ledger (optionally range-filtered) as a pretty
// printed array. Exporting nothing is an error, not an empty file.
func ExportJSON(sessions []model.Session, opts ExportOptions) ([]byte, error) {
	filtered := filterForExport(sessions, opts)
	if len(filtered) == 0 {
		return nil, apperrors.EmptyResult("no sessions to export")
	}

	data, err := json.MarshalIndent(filtered, "", "  ")
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return data, nil
}

// ParseJSON validates a JSON backup payload. The payload must be an array and
// every element must pass the record predicate; a single bad record rejects
// the whole import.
func ParseJSON(data []byte) ([]model.Session, error) {
	var raw []map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.ImportFormat("backup payload must be a JSON array of sessions", err)
	}

	sessions := make([]model.Session, 0, len(raw))
	for i, record := range raw {
		session, err := validateRecord(record)
		if err != nil {
			return nil, apperrors.ImportFormat(fmt.Sprintf("record %d is invalid", i+1), err)
		}
		sessions = append(sessions, session)
	}

	if len(sessions) == 0 {
		return nil, apperrors.EmptyResult("backup contains no sessions")
	}
	return sessions, nil
}
