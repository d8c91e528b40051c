package models

import "time"

// PlannedPosition is the staffing plan row a department is budgeted for.
type PlannedPosition struct {
	ID         string    `db:"id" json:"id"`
	Department string    `db:"department" json:"department"`
	Position   string    `db:"position" json:"position"`
	Planned    int       `db:"planned" json:"planned"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// VacancyGap compares planned headcount against active employees.
type VacancyGap struct {
	Department string `db:"department" json:"department"`
	Position   string `db:"position" json:"position"`
	Planned    int    `db:"planned" json:"planned"`
	Filled     int    `db:"filled" json:"filled"`
	Gap        int    `db:"gap" json:"gap"`
}

// ReportFormat enumerates supported vacancy report outputs.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "CSV"
	ReportFormatPDF ReportFormat = "PDF"
)

// ReportStatus tracks asynchronous report generation.
type ReportStatus string

const (
	ReportStatusQueued  ReportStatus = "QUEUED"
	ReportStatusRunning ReportStatus = "RUNNING"
	ReportStatusDone    ReportStatus = "DONE"
	ReportStatusFailed  ReportStatus = "FAILED"
)

// VacancyReport is a queued gap-report generation job.
type VacancyReport struct {
	ID          string       `db:"id" json:"id"`
	Format      ReportFormat `db:"format" json:"format"`
	Status      ReportStatus `db:"status" json:"status"`
	FilePath    *string      `db:"file_path" json:"-"`
	FileName    *string      `db:"file_name" json:"fileName,omitempty"`
	Error       *string      `db:"error" json:"error,omitempty"`
	RequestedBy string       `db:"requested_by" json:"requestedBy"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	CompletedAt *time.Time   `db:"completed_at" json:"completedAt,omitempty"`
}
