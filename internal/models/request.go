package models

import (
	"fmt"
	"time"

	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
)

// RequestType enumerates the supported request categories. The vocabulary is
// canonical English; localized labels live in the tracker projection only.
type RequestType string

const (
	RequestTypeVacation    RequestType = "VACATION"
	RequestTypeSickLeave   RequestType = "SICK_LEAVE"
	RequestTypeTimeOff     RequestType = "TIME_OFF"
	RequestTypeShiftChange RequestType = "SHIFT_CHANGE"
	RequestTypeOvertime    RequestType = "OVERTIME"
)

// RequestTypes lists every valid request type.
var RequestTypes = []RequestType{
	RequestTypeVacation,
	RequestTypeSickLeave,
	RequestTypeTimeOff,
	RequestTypeShiftChange,
	RequestTypeOvertime,
}

// Valid reports whether the type belongs to the closed set.
func (t RequestType) Valid() bool {
	for _, known := range RequestTypes {
		if t == known {
			return true
		}
	}
	return false
}

// RequestStatus captures the lifecycle states of a request.
type RequestStatus string

const (
	RequestStatusDraft           RequestStatus = "DRAFT"
	RequestStatusSubmitted       RequestStatus = "SUBMITTED"
	RequestStatusPendingApproval RequestStatus = "PENDING_APPROVAL"
	RequestStatusApproved        RequestStatus = "APPROVED"
	RequestStatusRejected        RequestStatus = "REJECTED"
	RequestStatusCancelled       RequestStatus = "CANCELLED"
)

// Terminal reports whether the status permits no further transition.
func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestStatusApproved, RequestStatusRejected, RequestStatusCancelled:
		return true
	}
	return false
}

// Editable reports whether core request fields may still be mutated.
// DRAFT is the only editable state; everything after is append-only.
func (s RequestStatus) Editable() bool {
	return s == RequestStatusDraft
}

// RequestAction names a lifecycle operation against a request.
type RequestAction string

const (
	ActionSubmit  RequestAction = "submit"
	ActionReview  RequestAction = "review"
	ActionApprove RequestAction = "approve"
	ActionReject  RequestAction = "reject"
	ActionCancel  RequestAction = "cancel"
)

// transitions is the single source of truth for the lifecycle. Every surface
// (submission, review, cancellation) consults this table instead of carrying
// its own copy of the rules.
var transitions = map[RequestStatus]map[RequestAction]RequestStatus{
	RequestStatusDraft: {
		ActionSubmit: RequestStatusSubmitted,
		ActionCancel: RequestStatusCancelled,
	},
	RequestStatusSubmitted: {
		ActionReview:  RequestStatusPendingApproval,
		ActionApprove: RequestStatusApproved,
		ActionReject:  RequestStatusRejected,
		ActionCancel:  RequestStatusCancelled,
	},
	RequestStatusPendingApproval: {
		ActionApprove: RequestStatusApproved,
		ActionReject:  RequestStatusRejected,
		ActionCancel:  RequestStatusCancelled,
	},
}

// Transition resolves the next status for an action, or an invalid-transition
// error when the action is not permitted from the current status.
func Transition(from RequestStatus, action RequestAction) (RequestStatus, error) {
	if allowed, ok := transitions[from]; ok {
		if next, ok := allowed[action]; ok {
			return next, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrInvalidTransition,
		fmt.Sprintf("cannot %s a request in status %s", action, from))
}

// ActionSources lists every status an action may legally start from. Guarded
// repository updates use this as the WHERE clause status set.
func ActionSources(action RequestAction) []RequestStatus {
	sources := make([]RequestStatus, 0, 3)
	for _, from := range []RequestStatus{RequestStatusDraft, RequestStatusSubmitted, RequestStatusPendingApproval} {
		if _, ok := transitions[from][action]; ok {
			sources = append(sources, from)
		}
	}
	return sources
}

// ExchangeStatus tracks the counterpart employee's decision on a shift exchange.
type ExchangeStatus string

const (
	ExchangePending  ExchangeStatus = "PENDING"
	ExchangeAccepted ExchangeStatus = "ACCEPTED"
	ExchangeDeclined ExchangeStatus = "DECLINED"
)

// RequestPriority is advisory ordering metadata; it never gates a transition.
type RequestPriority string

const (
	PriorityLow    RequestPriority = "LOW"
	PriorityNormal RequestPriority = "NORMAL"
	PriorityHigh   RequestPriority = "HIGH"
	PriorityUrgent RequestPriority = "URGENT"
)

// Valid reports whether the priority belongs to the closed set.
func (p RequestPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Request is the central workflow entity: an employee-submitted item subject
// to manager approval.
type Request struct {
	ID         string          `db:"id" json:"id"`
	EmployeeID string          `db:"employee_id" json:"employeeId"`
	Type       RequestType     `db:"type" json:"type"`
	Status     RequestStatus   `db:"status" json:"status"`
	Priority   RequestPriority `db:"priority" json:"priority"`
	Title      string          `db:"title" json:"title"`
	Reason     string          `db:"reason" json:"reason"`
	StartDate  time.Time       `db:"start_date" json:"startDate"`
	EndDate    *time.Time      `db:"end_date" json:"endDate,omitempty"`

	// Type-specific payload. Only the columns relevant to Type are populated.
	CurrentShiftID     *string         `db:"current_shift_id" json:"currentShiftId,omitempty"`
	RequestedShiftID   *string         `db:"requested_shift_id" json:"requestedShiftId,omitempty"`
	ExchangePartnerID  *string         `db:"exchange_partner_id" json:"exchangePartnerId,omitempty"`
	ExchangeStatus     *ExchangeStatus `db:"exchange_status" json:"exchangeStatus,omitempty"`
	OvertimeHours      *float64        `db:"overtime_hours" json:"overtimeHours,omitempty"`
	MedicalCertificate *bool           `db:"medical_certificate" json:"medicalCertificate,omitempty"`
	EmergencyContact   *string         `db:"emergency_contact" json:"emergencyContact,omitempty"`
	HalfDay            *bool           `db:"half_day" json:"halfDay,omitempty"`

	SubmittedAt      *time.Time `db:"submitted_at" json:"submittedAt,omitempty"`
	DecidedAt        *time.Time `db:"decided_at" json:"decidedAt,omitempty"`
	ApproverID       *string    `db:"approver_id" json:"approverId,omitempty"`
	ApproverName     *string    `db:"approver_name" json:"approverName,omitempty"`
	ApproverComments *string    `db:"approver_comments" json:"approverComments,omitempty"`
	IdempotencyKey   *string    `db:"idempotency_key" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// RequestFilter constrains listing queries.
type RequestFilter struct {
	Status     []RequestStatus
	Type       RequestType
	EmployeeID string
	ManagerID  string
	ApproverID string
	From       *time.Time
	To         *time.Time
	Search     string
	Limit      int
	Offset     int
}
