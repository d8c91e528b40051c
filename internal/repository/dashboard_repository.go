package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/oneaiguru/wfm-portal-api/internal/models"
)

// DashboardRepository runs the aggregate queries behind the manager view.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// StatusCounts groups the team's requests by status.
func (r *DashboardRepository) StatusCounts(ctx context.Context, managerID string) ([]models.StatusCount, error) {
	const query = `SELECT r.status, COUNT(*) AS count
	FROM requests r
	JOIN employees e ON e.id = r.employee_id
	WHERE e.manager_id = $1
	GROUP BY r.status
	ORDER BY r.status`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query, managerID); err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	return counts, nil
}

// TypeCounts groups the team's requests by type.
func (r *DashboardRepository) TypeCounts(ctx context.Context, managerID string) ([]models.TypeCount, error) {
	const query = `SELECT r.type, COUNT(*) AS count
	FROM requests r
	JOIN employees e ON e.id = r.employee_id
	WHERE e.manager_id = $1
	GROUP BY r.type
	ORDER BY r.type`
	var counts []models.TypeCount
	if err := r.db.SelectContext(ctx, &counts, query, managerID); err != nil {
		return nil, fmt.Errorf("type counts: %w", err)
	}
	return counts, nil
}

// UpcomingLeave lists approved absences starting within the window.
func (r *DashboardRepository) UpcomingLeave(ctx context.Context, managerID string, from, to time.Time, limit int) ([]models.UpcomingLeave, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT r.id AS request_id, r.employee_id, e.full_name AS employee_name, r.type, r.start_date, r.end_date
	FROM requests r
	JOIN employees e ON e.id = r.employee_id
	WHERE e.manager_id = $1 AND r.status = 'APPROVED' AND r.start_date BETWEEN $2 AND $3
	ORDER BY r.start_date ASC LIMIT %d`, limit)
	var leave []models.UpcomingLeave
	if err := r.db.SelectContext(ctx, &leave, query, managerID, from, to); err != nil {
		return nil, fmt.Errorf("upcoming leave: %w", err)
	}
	return leave, nil
}
