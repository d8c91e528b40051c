package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/oneaiguru/wfm-portal-api/internal/models"
)

func newNotificationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestNotificationRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	requestID := "req-1"
	notification := &models.Notification{
		UserID:    "user-1",
		Type:      models.NotificationRequestApproved,
		Title:     "Request approved",
		Message:   "Summer vacation was approved",
		RequestID: &requestID,
	}
	require.NoError(t, repo.Create(context.Background(), notification))
	require.NotEmpty(t, notification.ID)

	rows := sqlmock.NewRows([]string{"id", "user_id", "type", "title", "message", "request_id", "read", "read_at", "created_at"}).
		AddRow(notification.ID, "user-1", "REQUEST_APPROVED", "Request approved", "Summer vacation was approved", requestID, false, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM notifications WHERE id = $1")).
		WithArgs(notification.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), notification.ID)
	require.NoError(t, err)
	require.Equal(t, notification.ID, found.ID)
	require.False(t, found.Read)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryListUnreadOnly(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{"id", "user_id", "type", "title", "message", "request_id", "read", "read_at", "created_at"}).
		AddRow("not-1", "user-1", "REQUEST_SUBMITTED", "t", "m", nil, false, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM notifications WHERE user_id = $1 AND NOT read ORDER BY created_at DESC")).
		WithArgs("user-1").
		WillReturnRows(rows)

	list, total, err := repo.List(context.Background(), models.NotificationFilter{UserID: "user-1", UnreadOnly: true})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, list, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkReadScopedToOwner(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	readAt := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET read = TRUE, read_at = $1 WHERE id = $2 AND user_id = $3 AND NOT read")).
		WithArgs(readAt, "not-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkRead(context.Background(), "not-1", "user-1", readAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkAllRead(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	readAt := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET read = TRUE, read_at = $1 WHERE user_id = $2 AND NOT read")).
		WithArgs(readAt, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.MarkAllRead(context.Background(), "user-1", readAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notifications WHERE id = $1 AND user_id = $2")).
		WithArgs("not-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "not-1", "user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
