package models

import "time"

// UpcomingLeave summarises an approved absence starting soon.
type UpcomingLeave struct {
	RequestID    string     `db:"request_id" json:"requestId"`
	EmployeeID   string     `db:"employee_id" json:"employeeId"`
	EmployeeName string     `db:"employee_name" json:"employeeName"`
	Type         string     `db:"type" json:"type"`
	StartDate    time.Time  `db:"start_date" json:"startDate"`
	EndDate      *time.Time `db:"end_date" json:"endDate,omitempty"`
}

// StatusCount pairs a request status with its frequency.
type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}

// TypeCount pairs a request type with its frequency.
type TypeCount struct {
	Type  string `db:"type" json:"type"`
	Count int    `db:"count" json:"count"`
}

// ManagerDashboard aggregates a manager's team and approval queue.
type ManagerDashboard struct {
	ManagerID        string          `json:"managerId"`
	TeamHeadcount    int             `json:"teamHeadcount"`
	PendingApprovals int             `json:"pendingApprovals"`
	StatusCounts     []StatusCount   `json:"statusCounts"`
	TypeCounts       []TypeCount     `json:"typeCounts"`
	UpcomingLeave    []UpcomingLeave `json:"upcomingLeave"`
	GeneratedAt      time.Time       `json:"generatedAt"`
}
