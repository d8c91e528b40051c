package dto

import "time"

// Step states used by the status tracker projection.
const (
	StepCompleted = "completed"
	StepCurrent   = "current"
	StepUpcoming  = "upcoming"
)

// TrackerStep is one named position in the request progression display.
type TrackerStep struct {
	Key       string     `json:"key"`
	Label     string     `json:"label"`
	State     string     `json:"state"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Comments  *string    `json:"comments,omitempty"`
	Approver  *string    `json:"approver,omitempty"`
}

// TrackerView is the read-only projection of a request's lifecycle. Exactly
// one terminal step appears; the absent outcome is omitted, never rendered as
// failed.
type TrackerView struct {
	RequestID string       `json:"requestId"`
	Status    string       `json:"status"`
	Steps     []TrackerStep `json:"steps"`
	Exchange  *TrackerStep `json:"exchange,omitempty"`
}
