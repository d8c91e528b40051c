package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/oneaiguru/wfm-portal-api/internal/models"
)

const employeeColumns = `id, full_name, email, position, department, manager_id, active, hired_at, created_at, updated_at`

// EmployeeRepository serves directory lookups.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs the repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// GetByID fetches a single directory entry.
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE id = $1`, employeeColumns)
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		return nil, err
	}
	return &employee, nil
}

// List returns directory entries matching the filter with a total count.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if filter.Department != "" {
		args = append(args, filter.Department)
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}
	if filter.ManagerID != "" {
		args = append(args, filter.ManagerID)
		conditions = append(conditions, fmt.Sprintf("manager_id = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR position ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM employees" + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	query := fmt.Sprintf("SELECT %s FROM employees%s ORDER BY full_name ASC LIMIT %d OFFSET %d",
		employeeColumns, where, pageSize, (page-1)*pageSize)
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}
	return employees, total, nil
}

// Search performs a name/position match for the directory typeahead.
func (r *EmployeeRepository) Search(ctx context.Context, term string, limit int) ([]models.Employee, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT %s FROM employees
	WHERE active AND (full_name ILIKE $1 OR position ILIKE $1 OR email ILIKE $1)
	ORDER BY full_name ASC LIMIT %d`, employeeColumns, limit)
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, "%"+term+"%"); err != nil {
		return nil, fmt.Errorf("search employees: %w", err)
	}
	return employees, nil
}

// CountTeam returns the active headcount reporting to a manager.
func (r *EmployeeRepository) CountTeam(ctx context.Context, managerID string) (int, error) {
	const query = `SELECT COUNT(*) FROM employees WHERE manager_id = $1 AND active`
	var count int
	if err := r.db.GetContext(ctx, &count, query, managerID); err != nil {
		return 0, fmt.Errorf("count team: %w", err)
	}
	return count, nil
}
