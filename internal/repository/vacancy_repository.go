package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/oneaiguru/wfm-portal-api/internal/models"
)

const reportColumns = `id, format, status, file_path, file_name, error, requested_by, created_at, completed_at`

// VacancyRepository computes staffing gaps and persists report jobs.
type VacancyRepository struct {
	db *sqlx.DB
}

// NewVacancyRepository constructs the repository.
func NewVacancyRepository(db *sqlx.DB) *VacancyRepository {
	return &VacancyRepository{db: db}
}

// Gaps compares the staffing plan against active headcount per
// department/position. Overstaffed rows come back with a zero gap.
func (r *VacancyRepository) Gaps(ctx context.Context, department string) ([]models.VacancyGap, error) {
	query := `SELECT p.department, p.position, p.planned,
	       COUNT(e.id) AS filled,
	       GREATEST(p.planned - COUNT(e.id), 0) AS gap
	FROM planned_positions p
	LEFT JOIN employees e ON e.department = p.department AND e.position = p.position AND e.active`
	args := []interface{}{}
	if department != "" {
		query += " WHERE p.department = $1"
		args = append(args, department)
	}
	query += ` GROUP BY p.department, p.position, p.planned
	ORDER BY gap DESC, p.department, p.position`
	var gaps []models.VacancyGap
	if err := r.db.SelectContext(ctx, &gaps, query, args...); err != nil {
		return nil, fmt.Errorf("compute vacancy gaps: %w", err)
	}
	return gaps, nil
}

// CreateReport inserts a queued report job.
func (r *VacancyRepository) CreateReport(ctx context.Context, report *models.VacancyReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.Status == "" {
		report.Status = models.ReportStatusQueued
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO vacancy_reports (id, format, status, file_path, file_name, error, requested_by, created_at, completed_at)
	VALUES (:id, :format, :status, :file_path, :file_name, :error, :requested_by, :created_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("create vacancy report: %w", err)
	}
	return nil
}

// GetReport fetches a report job.
func (r *VacancyRepository) GetReport(ctx context.Context, id string) (*models.VacancyReport, error) {
	query := fmt.Sprintf(`SELECT %s FROM vacancy_reports WHERE id = $1`, reportColumns)
	var report models.VacancyReport
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		return nil, err
	}
	return &report, nil
}

// ListReports returns a requester's report jobs, newest first.
func (r *VacancyRepository) ListReports(ctx context.Context, requestedBy string, limit int) ([]models.VacancyReport, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM vacancy_reports WHERE requested_by = $1 ORDER BY created_at DESC LIMIT %d`, reportColumns, limit)
	var reports []models.VacancyReport
	if err := r.db.SelectContext(ctx, &reports, query, requestedBy); err != nil {
		return nil, fmt.Errorf("list vacancy reports: %w", err)
	}
	return reports, nil
}

// MarkReportRunning flips a queued job to RUNNING.
func (r *VacancyRepository) MarkReportRunning(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE vacancy_reports SET status = '%s' WHERE id = $1 AND status = '%s'`,
		models.ReportStatusRunning, models.ReportStatusQueued)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark report running: %w", err)
	}
	return requireRowsAffected(result)
}

// CompleteReport records a finished job and the produced file.
func (r *VacancyRepository) CompleteReport(ctx context.Context, id, filePath, fileName string, completedAt time.Time) error {
	query := fmt.Sprintf(`UPDATE vacancy_reports SET status = '%s', file_path = $1, file_name = $2, completed_at = $3 WHERE id = $4`,
		models.ReportStatusDone)
	result, err := r.db.ExecContext(ctx, query, filePath, fileName, completedAt, id)
	if err != nil {
		return fmt.Errorf("complete report: %w", err)
	}
	return requireRowsAffected(result)
}

// FailReport records a failed job with its error message.
func (r *VacancyRepository) FailReport(ctx context.Context, id, message string, completedAt time.Time) error {
	query := fmt.Sprintf(`UPDATE vacancy_reports SET status = '%s', error = $1, completed_at = $2 WHERE id = $3`,
		models.ReportStatusFailed)
	result, err := r.db.ExecContext(ctx, query, message, completedAt, id)
	if err != nil {
		return fmt.Errorf("fail report: %w", err)
	}
	return requireRowsAffected(result)
}
