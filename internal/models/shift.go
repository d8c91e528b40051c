package models

import "time"

// Shift is a catalog entry used to validate shift-change requests.
type Shift struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Department string    `db:"department" json:"department"`
	StartTime  string    `db:"start_time" json:"startTime"` // HH:MM
	EndTime    string    `db:"end_time" json:"endTime"`     // HH:MM
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
