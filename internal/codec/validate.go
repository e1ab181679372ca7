package codec

import (
	"fmt"
	"time"

	"github.com/ebrukaya/therapy-ledger/internal/model"
)

// validateRecord is the import validity predicate: it checks the shape of one
// decoded record and returns the typed session or the first violation. It
// never panics on malformed input; every shape problem becomes an error.
func validateRecord(record map[string]interface{}) (model.Session, error) {
	var session model.Session

	id, err := stringField(record, "id")
	if err != nil {
		return session, err
	}
	name, err := stringField(record, "patientName")
	if err != nil {
		return session, err
	}

	rawDate, err := stringField(record, "sessionDate")
	if err != nil {
		return session, err
	}
	sessionDate, err := ParseTimestamp(rawDate)
	if err != nil {
		return session, fmt.Errorf("sessionDate: %w", err)
	}

	fee, err := numberField(record, "sessionFee")
	if err != nil {
		return session, err
	}
	commission, err := numberField(record, "commission")
	if err != nil {
		return session, err
	}

	rawStatus, err := stringField(record, "paymentStatus")
	if err != nil {
		return session, err
	}
	status := model.PaymentStatus(rawStatus)
	if !status.Valid() {
		return session, fmt.Errorf("unknown payment status %q", rawStatus)
	}

	dueDate, err := optionalTimestamp(record, "paymentDueDate")
	if err != nil {
		return session, err
	}
	paymentDate, err := optionalTimestamp(record, "paymentDate")
	if err != nil {
		return session, err
	}

	session = model.Session{
		ID:             id,
		PatientName:    name,
		SessionDate:    sessionDate,
		SessionFee:     fee,
		Commission:     commission,
		PaymentStatus:  status,
		PaymentDueDate: dueDate,
		PaymentDate:    paymentDate,
	}
	return session, nil
}

func stringField(record map[string]interface{}, key string) (string, error) {
	value, ok := record[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q must be a string", key)
	}
	if s == "" {
		return "", fmt.Errorf("field %q cannot be empty", key)
	}
	return s, nil
}

func numberField(record map[string]interface{}, key string) (float64, error) {
	value, ok := record[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	f, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q must be a number", key)
	}
	return f, nil
}

func optionalTimestamp(record map[string]interface{}, key string) (*time.Time, error) {
	value, ok := record[key]
	if !ok || value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("field %q must be a timestamp string", key)
	}
	if s == "" {
		return nil, nil
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &t, nil
}
