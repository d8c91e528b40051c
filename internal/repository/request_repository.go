package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/oneaiguru/wfm-portal-api/internal/models"
)

const requestColumns = `id, employee_id, type, status, priority, title, reason, start_date, end_date,
       current_shift_id, requested_shift_id, exchange_partner_id, exchange_status,
       overtime_hours, medical_certificate, emergency_contact, half_day,
       submitted_at, decided_at, approver_id, approver_name, approver_comments,
       idempotency_key, created_at, updated_at`

// RequestRepository persists workflow requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a new request row.
func (r *RequestRepository) Create(ctx context.Context, request *models.Request) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = models.RequestStatusDraft
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now
	const query = `INSERT INTO requests
	(id, employee_id, type, status, priority, title, reason, start_date, end_date,
	 current_shift_id, requested_shift_id, exchange_partner_id, exchange_status,
	 overtime_hours, medical_certificate, emergency_contact, half_day,
	 submitted_at, decided_at, approver_id, approver_name, approver_comments,
	 idempotency_key, created_at, updated_at)
	VALUES (:id, :employee_id, :type, :status, :priority, :title, :reason, :start_date, :end_date,
	 :current_shift_id, :requested_shift_id, :exchange_partner_id, :exchange_status,
	 :overtime_hours, :medical_certificate, :emergency_contact, :half_day,
	 :submitted_at, :decided_at, :approver_id, :approver_name, :approver_comments,
	 :idempotency_key, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// GetByID fetches a request by identifier.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE id = $1`, requestColumns)
	var request models.Request
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// GetByIdempotencyKey returns the request previously created with the key.
func (r *RequestRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE idempotency_key = $1`, requestColumns)
	var request models.Request
	if err := r.db.GetContext(ctx, &request, query, key); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns requests matching the filter (latest first).
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 8)
	builder.WriteString(fmt.Sprintf("SELECT %s FROM requests", requestColumns))

	conditions := make([]string, 0, 6)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if filter.ManagerID != "" {
		args = append(args, filter.ManagerID)
		conditions = append(conditions, fmt.Sprintf("employee_id IN (SELECT id FROM employees WHERE manager_id = $%d)", len(args)))
	}
	if filter.ApproverID != "" {
		args = append(args, filter.ApproverID)
		conditions = append(conditions, fmt.Sprintf("approver_id = $%d", len(args)))
	}
	if filter.From != nil && filter.To != nil {
		// period overlap: request range intersects [from, to]
		args = append(args, *filter.To)
		fromIdx := len(args)
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d AND COALESCE(end_date, start_date) >= $%d", fromIdx, len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR reason ILIKE $%d)", len(args), len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

// Count returns the number of requests matching a status set, optionally
// scoped to a manager's team.
func (r *RequestRepository) CountPendingForManager(ctx context.Context, managerID string) (int, error) {
	const query = `SELECT COUNT(*) FROM requests r
	JOIN employees e ON e.id = r.employee_id
	WHERE e.manager_id = $1 AND r.status IN ('SUBMITTED', 'PENDING_APPROVAL')`
	var count int
	if err := r.db.GetContext(ctx, &count, query, managerID); err != nil {
		return 0, fmt.Errorf("count pending requests: %w", err)
	}
	return count, nil
}

// UpdateDraft rewrites the mutable fields of a draft. The status guard keeps
// submitted requests append-only at the storage layer too.
func (r *RequestRepository) UpdateDraft(ctx context.Context, request *models.Request) error {
	request.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf(`UPDATE requests SET
	type = :type, priority = :priority, title = :title, reason = :reason,
	start_date = :start_date, end_date = :end_date,
	current_shift_id = :current_shift_id, requested_shift_id = :requested_shift_id,
	exchange_partner_id = :exchange_partner_id, exchange_status = :exchange_status,
	overtime_hours = :overtime_hours, medical_certificate = :medical_certificate,
	emergency_contact = :emergency_contact, half_day = :half_day,
	updated_at = :updated_at
	WHERE id = :id AND status = '%s'`, models.RequestStatusDraft)
	result, err := r.db.NamedExecContext(ctx, query, request)
	if err != nil {
		return fmt.Errorf("update draft request: %w", err)
	}
	return requireRowsAffected(result)
}

// TransitionParams groups the columns written during a status transition.
type TransitionParams struct {
	ID               string
	FromStatuses     []models.RequestStatus
	Status           models.RequestStatus
	SubmittedAt      *time.Time
	DecidedAt        *time.Time
	ApproverID       *string
	ApproverName     *string
	ApproverComments *string
	ExchangeStatus   *models.ExchangeStatus
}

// UpdateStatus performs a guarded transition. The WHERE clause restricts the
// permitted source statuses so that a concurrent decision loses with
// sql.ErrNoRows instead of silently overwriting a terminal state.
func (r *RequestRepository) UpdateStatus(ctx context.Context, params TransitionParams) error {
	if len(params.FromStatuses) == 0 {
		return fmt.Errorf("update status: no source statuses")
	}
	guards := make([]string, len(params.FromStatuses))
	for i, status := range params.FromStatuses {
		guards[i] = fmt.Sprintf("'%s'", status)
	}

	setParts := []string{"status = :status", "updated_at = :updated_at"}
	if params.SubmittedAt != nil {
		setParts = append(setParts, "submitted_at = :submitted_at")
	}
	if params.DecidedAt != nil {
		setParts = append(setParts, "decided_at = :decided_at")
	}
	if params.ApproverID != nil {
		setParts = append(setParts, "approver_id = :approver_id", "approver_name = :approver_name", "approver_comments = :approver_comments")
	}
	if params.ExchangeStatus != nil {
		setParts = append(setParts, "exchange_status = :exchange_status")
	}
	query := fmt.Sprintf("UPDATE requests SET %s WHERE id = :id AND status IN (%s)",
		strings.Join(setParts, ", "),
		strings.Join(guards, ","),
	)
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":                params.ID,
		"status":            params.Status,
		"updated_at":        time.Now().UTC(),
		"submitted_at":      params.SubmittedAt,
		"decided_at":        params.DecidedAt,
		"approver_id":       params.ApproverID,
		"approver_name":     params.ApproverName,
		"approver_comments": params.ApproverComments,
		"exchange_status":   params.ExchangeStatus,
	})
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	return requireRowsAffected(result)
}

// UpdateExchangeStatus records the counterpart's reply. Guarded on the
// exchange still being PENDING and the request not yet decided.
func (r *RequestRepository) UpdateExchangeStatus(ctx context.Context, id string, status models.ExchangeStatus) error {
	query := fmt.Sprintf(`UPDATE requests SET exchange_status = $1, updated_at = $2
	WHERE id = $3 AND exchange_status = '%s' AND status IN ('%s', '%s', '%s')`,
		models.ExchangePending,
		models.RequestStatusDraft, models.RequestStatusSubmitted, models.RequestStatusPendingApproval,
	)
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update exchange status: %w", err)
	}
	return requireRowsAffected(result)
}

func requireRowsAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check affected rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
