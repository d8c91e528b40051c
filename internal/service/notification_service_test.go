package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/oneaiguru/wfm-portal-api/internal/dto"
	"github.com/oneaiguru/wfm-portal-api/internal/models"
	"github.com/oneaiguru/wfm-portal-api/pkg/config"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
)

type stubNotificationStore struct {
	rows        map[string]*models.Notification
	markAllRuns int
}

func newStubNotificationStore() *stubNotificationStore {
	return &stubNotificationStore{rows: map[string]*models.Notification{}}
}

func (s *stubNotificationStore) Create(_ context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	notification.CreatedAt = time.Now().UTC()
	clone := *notification
	s.rows[notification.ID] = &clone
	return nil
}

func (s *stubNotificationStore) GetByID(_ context.Context, id string) (*models.Notification, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *row
	return &clone, nil
}

func (s *stubNotificationStore) List(_ context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	var result []models.Notification
	for _, row := range s.rows {
		if row.UserID != filter.UserID {
			continue
		}
		if filter.UnreadOnly && row.Read {
			continue
		}
		result = append(result, *row)
	}
	return result, len(result), nil
}

func (s *stubNotificationStore) CountUnread(_ context.Context, userID string) (int, error) {
	count := 0
	for _, row := range s.rows {
		if row.UserID == userID && !row.Read {
			count++
		}
	}
	return count, nil
}

func (s *stubNotificationStore) MarkRead(_ context.Context, id, userID string, readAt time.Time) error {
	row, ok := s.rows[id]
	if !ok || row.UserID != userID {
		return nil
	}
	row.Read = true
	row.ReadAt = &readAt
	return nil
}

func (s *stubNotificationStore) MarkAllRead(_ context.Context, userID string, readAt time.Time) error {
	s.markAllRuns++
	for _, row := range s.rows {
		if row.UserID == userID && !row.Read {
			row.Read = true
			row.ReadAt = &readAt
		}
	}
	return nil
}

func (s *stubNotificationStore) Delete(_ context.Context, id, userID string) error {
	row, ok := s.rows[id]
	if !ok || row.UserID != userID {
		return sql.ErrNoRows
	}
	delete(s.rows, id)
	return nil
}

type stubRecipients struct {
	managers map[string][]models.User
	owners   map[string]*models.User
}

func (s *stubRecipients) FindManagersOfEmployee(_ context.Context, employeeID string) ([]models.User, error) {
	return s.managers[employeeID], nil
}

func (s *stubRecipients) FindByEmployeeID(_ context.Context, employeeID string) (*models.User, error) {
	owner, ok := s.owners[employeeID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return owner, nil
}

func newNotificationFixture() (*NotificationService, *stubNotificationStore) {
	store := newStubNotificationStore()
	recipients := &stubRecipients{
		managers: map[string][]models.User{
			"emp-1": {{ID: "user-mgr", Role: models.RoleManager}, {ID: "user-hr", Role: models.RoleHRAdmin}},
		},
		owners: map[string]*models.User{
			"emp-1": {ID: "user-emp1"},
		},
	}
	// queue disabled: dispatch falls back to synchronous writes
	svc := NewNotificationService(store, recipients, nil, config.NotificationsConfig{Enabled: false})
	return svc, store
}

func notificationActor(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: models.RoleEmployee}
}

func TestRequestSubmittedFansOutToManagers(t *testing.T) {
	svc, store := newNotificationFixture()
	request := &models.Request{ID: "req-1", EmployeeID: "emp-1", Type: models.RequestTypeVacation, Title: "Summer vacation"}

	svc.RequestSubmitted(context.Background(), request)

	rows, _, err := svc.List(context.Background(), dto.NotificationQuery{}, notificationActor("user-mgr"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, models.NotificationRequestSubmitted, rows[0].Type)
	require.Equal(t, "req-1", *rows[0].RequestID)

	rows, _, err = svc.List(context.Background(), dto.NotificationQuery{}, notificationActor("user-hr"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, store.rows, 2)
}

func TestRequestDecidedNotifiesOwnerWithComments(t *testing.T) {
	svc, _ := newNotificationFixture()
	comments := "enjoy your trip"
	request := &models.Request{
		ID:               "req-1",
		EmployeeID:       "emp-1",
		Title:            "Summer vacation",
		Status:           models.RequestStatusApproved,
		ApproverComments: &comments,
	}

	svc.RequestDecided(context.Background(), request)

	rows, _, err := svc.List(context.Background(), dto.NotificationQuery{}, notificationActor("user-emp1"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, models.NotificationRequestApproved, rows[0].Type)
	require.Contains(t, rows[0].Message, "approved")
	require.Contains(t, rows[0].Message, comments)
}

func TestRequestDecidedRejection(t *testing.T) {
	svc, _ := newNotificationFixture()
	request := &models.Request{ID: "req-1", EmployeeID: "emp-1", Title: "Overtime", Status: models.RequestStatusRejected}

	svc.RequestDecided(context.Background(), request)

	rows, _, err := svc.List(context.Background(), dto.NotificationQuery{}, notificationActor("user-emp1"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, models.NotificationRequestRejected, rows[0].Type)
}

func TestMarkReadOwnershipAndBadge(t *testing.T) {
	svc, store := newNotificationFixture()
	notification := &models.Notification{UserID: "user-emp1", Type: models.NotificationRequestApproved, Title: "t", Message: "m"}
	require.NoError(t, store.Create(context.Background(), notification))

	count, err := svc.UnreadCount(context.Background(), notificationActor("user-emp1"))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	// a stranger cannot mark someone else's notification
	err = svc.MarkRead(context.Background(), notification.ID, notificationActor("user-stranger"))
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.MarkRead(context.Background(), notification.ID, notificationActor("user-emp1")))

	count, err = svc.UnreadCount(context.Background(), notificationActor("user-emp1"))
	require.NoError(t, err)
	require.Equal(t, 0, count)

	err = svc.MarkRead(context.Background(), "missing", notificationActor("user-emp1"))
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMarkAllReadIsIdempotent(t *testing.T) {
	svc, store := newNotificationFixture()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Create(context.Background(), &models.Notification{UserID: "user-emp1", Title: "t", Message: "m"}))
	}

	require.NoError(t, svc.MarkAllRead(context.Background(), notificationActor("user-emp1")))
	count, err := svc.UnreadCount(context.Background(), notificationActor("user-emp1"))
	require.NoError(t, err)
	require.Equal(t, 0, count)

	// second run is a no-op, not an error
	require.NoError(t, svc.MarkAllRead(context.Background(), notificationActor("user-emp1")))
	require.Equal(t, 2, store.markAllRuns)
}

func TestDeleteNotification(t *testing.T) {
	svc, store := newNotificationFixture()
	notification := &models.Notification{UserID: "user-emp1", Title: "t", Message: "m"}
	require.NoError(t, store.Create(context.Background(), notification))

	err := svc.Delete(context.Background(), notification.ID, notificationActor("user-stranger"))
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), notification.ID, notificationActor("user-emp1")))
	require.Empty(t, store.rows)
}
