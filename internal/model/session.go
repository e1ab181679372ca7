package model

import (
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPaid      PaymentStatus = "Paid"
	PaymentStatusWaiting   PaymentStatus = "Waiting"
	PaymentStatusCancelled PaymentStatus = "Cancelled"
)

// PaymentStatuses lists every valid status, in display order.
var PaymentStatuses = []PaymentStatus{
	PaymentStatusPaid,
	PaymentStatusWaiting,
	PaymentStatusCancelled,
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusWaiting, PaymentStatusCancelled:
		return true
	}
	return false
}

// Session is one billable counseling appointment record. JSON keys match the
// backup format of the original browser tool so old exports import cleanly.
type Session struct {
	ID             string        `json:"id"`
	PatientName    string        `json:"patientName"`
	SessionDate    time.Time     `json:"sessionDate"`
	SessionFee     float64       `json:"sessionFee"`
	Commission     float64       `json:"commission"`
	PaymentStatus  PaymentStatus `json:"paymentStatus"`
	PaymentDueDate *time.Time    `json:"paymentDueDate,omitempty"`
	PaymentDate    *time.Time    `json:"paymentDate,omitempty"`
}

// CommissionFor returns the practitioner share of a session fee: the fee with
// 10% tax removed, split in half.
func CommissionFor(fee float64) float64 {
	return (fee / 1.1) / 2
}

// DueDatePeriod is how long after the session the payment falls due when no
// explicit due date is given.
const DueDatePeriod = 7 * 24 * time.Hour

type CreateSessionRequest struct {
	PatientName    string        `validate:"required"`
	SessionDate    time.Time     `validate:"required"`
	SessionFee     float64       `validate:"gte=0"`
	PaymentStatus  PaymentStatus `validate:"omitempty,oneof=Paid Waiting Cancelled"`
	PaymentDueDate *time.Time
}

// BulkSessionInput is one row of a bulk add. The bulk path never accepts a
// caller-supplied due date; it is always derived from the session date.
type BulkSessionInput struct {
	PatientName   string        `validate:"required"`
	SessionDate   time.Time     `validate:"required"`
	SessionFee    float64       `validate:"gte=0"`
	PaymentStatus PaymentStatus `validate:"omitempty,oneof=Paid Waiting Cancelled"`
}

// SessionPatch is a partial update; nil fields are left untouched.
type SessionPatch struct {
	PatientName    *string
	SessionDate    *time.Time
	SessionFee     *float64
	PaymentStatus  *PaymentStatus
	PaymentDueDate *time.Time
}

// StatusFilterAll matches every payment status.
const StatusFilterAll = "all"

type SessionFilters struct {
	Query  string
	Status string // StatusFilterAll or an exact PaymentStatus value
	Start  *time.Time
	End    *time.Time
}

// Active reports whether any filter deviates from its default. It only
// drives empty-state presentation, never filtering itself.
func (f SessionFilters) Active() bool {
	if f.Query != "" {
		return true
	}
	if f.Status != "" && f.Status != StatusFilterAll {
		return true
	}
	return f.Start != nil || f.End != nil
}
