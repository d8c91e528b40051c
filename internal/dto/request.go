package dto

import (
	"github.com/oneaiguru/wfm-portal-api/internal/models"
)

// RequestPayload carries the mutable fields of a request. Dates travel as
// YYYY-MM-DD strings, matching the portal's wizard inputs.
type RequestPayload struct {
	Type      string `json:"type"`
	Priority  string `json:"priority"`
	Title     string `json:"title"`
	Reason    string `json:"reason"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate,omitempty"`

	CurrentShiftID     string   `json:"currentShiftId,omitempty"`
	RequestedShiftID   string   `json:"requestedShiftId,omitempty"`
	ExchangePartnerID  string   `json:"exchangePartnerId,omitempty"`
	OvertimeHours      *float64 `json:"overtimeHours,omitempty"`
	MedicalCertificate *bool    `json:"medicalCertificate,omitempty"`
	EmergencyContact   string   `json:"emergencyContact,omitempty"`
	HalfDay            *bool    `json:"halfDay,omitempty"`
}

// CreateRequestPayload creates a draft, or submits immediately when Submit is
// set (the wizard's final "Submit" vs "Save as Draft" buttons).
type CreateRequestPayload struct {
	RequestPayload
	Submit bool `json:"submit"`
}

// DecisionPayload carries the approver's mandatory commentary.
type DecisionPayload struct {
	Comments string `json:"comments"`
}

// ExchangeReplyPayload records the counterpart employee's decision on a
// shift-exchange request.
type ExchangeReplyPayload struct {
	Accept bool `json:"accept"`
}

// RequestQuery mirrors supported listing filters.
type RequestQuery struct {
	Status     []models.RequestStatus
	Type       models.RequestType
	EmployeeID string
	From       string
	To         string
	Search     string
	Page       int
	PageSize   int
}
