package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/oneaiguru/wfm-portal-api/internal/models"
)

func newRequestRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var requestRowColumns = []string{
	"id", "employee_id", "type", "status", "priority", "title", "reason", "start_date", "end_date",
	"current_shift_id", "requested_shift_id", "exchange_partner_id", "exchange_status",
	"overtime_hours", "medical_certificate", "emergency_contact", "half_day",
	"submitted_at", "decided_at", "approver_id", "approver_name", "approver_comments",
	"idempotency_key", "created_at", "updated_at",
}

func addRequestRow(rows *sqlmock.Rows, id string, status models.RequestStatus) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, "emp-1", "VACATION", string(status), "NORMAL", "Summer vacation", "two weeks off", now, now.AddDate(0, 0, 13),
		nil, nil, nil, nil,
		nil, nil, nil, nil,
		nil, nil, nil, nil, nil,
		nil, now, now,
	)
}

func TestRequestRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO requests")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	request := &models.Request{
		EmployeeID: "emp-1",
		Type:       models.RequestTypeVacation,
		Title:      "Summer vacation",
		Reason:     "two weeks off",
		Priority:   models.PriorityNormal,
		StartDate:  time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), request))
	require.NotEmpty(t, request.ID)
	require.Equal(t, models.RequestStatusDraft, request.Status)

	rows := addRequestRow(sqlmock.NewRows(requestRowColumns), request.ID, models.RequestStatusDraft)
	mock.ExpectQuery(regexp.QuoteMeta("FROM requests WHERE id = $1")).
		WithArgs(request.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	require.Equal(t, request.ID, found.ID)
	require.Equal(t, models.RequestTypeVacation, found.Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryGetByIdempotencyKey(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	rows := addRequestRow(sqlmock.NewRows(requestRowColumns), "req-1", models.RequestStatusSubmitted)
	mock.ExpectQuery(regexp.QuoteMeta("FROM requests WHERE idempotency_key = $1")).
		WithArgs("idem-key-1").
		WillReturnRows(rows)

	found, err := repo.GetByIdempotencyKey(context.Background(), "idem-key-1")
	require.NoError(t, err)
	require.Equal(t, "req-1", found.ID)

	mock.ExpectQuery(regexp.QuoteMeta("FROM requests WHERE idempotency_key = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByIdempotencyKey(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	rows := addRequestRow(sqlmock.NewRows(requestRowColumns), "req-1", models.RequestStatusSubmitted)
	mock.ExpectQuery(regexp.QuoteMeta("status IN ($1,$2)") + ".*" + regexp.QuoteMeta("employee_id = $3")).
		WithArgs("SUBMITTED", "PENDING_APPROVAL", "emp-1").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.RequestFilter{
		Status:     []models.RequestStatus{models.RequestStatusSubmitted, models.RequestStatusPendingApproval},
		EmployeeID: "emp-1",
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "req-1", list[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryListManagerScope(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	rows := sqlmock.NewRows(requestRowColumns)
	mock.ExpectQuery(regexp.QuoteMeta("employee_id IN (SELECT id FROM employees WHERE manager_id = $1)")).
		WithArgs("emp-mgr").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.RequestFilter{ManagerID: "emp-mgr"})
	require.NoError(t, err)
	require.Empty(t, list)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryUpdateStatusGuard(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	now := time.Now()
	approver := "user-mgr"
	name := "Maria Ivanova"
	comments := "approved"

	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET") + ".*" + regexp.QuoteMeta("status IN ('SUBMITTED','PENDING_APPROVAL')")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	err := repo.UpdateStatus(context.Background(), TransitionParams{
		ID:               "req-1",
		FromStatuses:     []models.RequestStatus{models.RequestStatusSubmitted, models.RequestStatusPendingApproval},
		Status:           models.RequestStatusApproved,
		DecidedAt:        &now,
		ApproverID:       &approver,
		ApproverName:     &name,
		ApproverComments: &comments,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	// losing a concurrent decision surfaces as sql.ErrNoRows
	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.UpdateStatus(context.Background(), TransitionParams{
		ID:           "req-1",
		FromStatuses: []models.RequestStatus{models.RequestStatusSubmitted},
		Status:       models.RequestStatusApproved,
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRequestRepositoryUpdateStatusRequiresSources(t *testing.T) {
	db, _, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	err := repo.UpdateStatus(context.Background(), TransitionParams{ID: "req-1", Status: models.RequestStatusApproved})
	require.Error(t, err)
}

func TestRequestRepositoryUpdateDraftGuard(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	request := &models.Request{ID: "req-1", Type: models.RequestTypeVacation, Title: "t", StartDate: time.Now()}

	mock.ExpectExec("(?s)" + regexp.QuoteMeta("UPDATE requests SET") + ".*" + regexp.QuoteMeta("status = 'DRAFT'")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateDraft(context.Background(), request))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.UpdateDraft(context.Background(), request), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryUpdateExchangeStatusGuard(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	mock.ExpectExec("(?s)" + regexp.QuoteMeta("UPDATE requests SET exchange_status = $1") + ".*" + regexp.QuoteMeta("exchange_status = 'PENDING'")).
		WithArgs("ACCEPTED", sqlmock.AnyArg(), "req-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateExchangeStatus(context.Background(), "req-1", models.ExchangeAccepted))

	// second reply loses the guard
	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET exchange_status = $1")).
		WithArgs("DECLINED", sqlmock.AnyArg(), "req-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.UpdateExchangeStatus(context.Background(), "req-1", models.ExchangeDeclined), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryCountPendingForManager(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM requests")).
		WithArgs("emp-mgr").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountPendingForManager(context.Background(), "emp-mgr")
	require.NoError(t, err)
	require.Equal(t, 4, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
