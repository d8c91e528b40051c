package models

import "time"

// Employee is a directory entry. Requests must reference a real directory
// identity; clients resolve the acting employee through a lookup, never a
// hardcoded id.
type Employee struct {
	ID         string    `db:"id" json:"id"`
	FullName   string    `db:"full_name" json:"fullName"`
	Email      string    `db:"email" json:"email"`
	Position   string    `db:"position" json:"position"`
	Department string    `db:"department" json:"department"`
	ManagerID  *string   `db:"manager_id" json:"managerId,omitempty"`
	Active     bool      `db:"active" json:"active"`
	HiredAt    time.Time `db:"hired_at" json:"hiredAt"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// EmployeeFilter captures directory listing criteria.
type EmployeeFilter struct {
	Department string
	ManagerID  string
	Active     *bool
	Search     string
	Page       int
	PageSize   int
}
