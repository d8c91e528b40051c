package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/oneaiguru/wfm-portal-api/internal/models"
)

const shiftColumns = `id, name, department, start_time, end_time, active, created_at`

// ShiftRepository reads the shift catalog.
type ShiftRepository struct {
	db *sqlx.DB
}

// NewShiftRepository constructs the repository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// GetByID fetches a catalog entry.
func (r *ShiftRepository) GetByID(ctx context.Context, id string) (*models.Shift, error) {
	query := fmt.Sprintf(`SELECT %s FROM shifts WHERE id = $1`, shiftColumns)
	var shift models.Shift
	if err := r.db.GetContext(ctx, &shift, query, id); err != nil {
		return nil, err
	}
	return &shift, nil
}

// ListActive returns selectable shifts, optionally scoped to a department.
func (r *ShiftRepository) ListActive(ctx context.Context, department string) ([]models.Shift, error) {
	query := fmt.Sprintf(`SELECT %s FROM shifts WHERE active`, shiftColumns)
	args := []interface{}{}
	if department != "" {
		query += " AND department = $1"
		args = append(args, department)
	}
	query += " ORDER BY start_time ASC"
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query, args...); err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	return shifts, nil
}
