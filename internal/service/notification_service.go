package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oneaiguru/wfm-portal-api/internal/dto"
	"github.com/oneaiguru/wfm-portal-api/internal/models"
	"github.com/oneaiguru/wfm-portal-api/pkg/config"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
	"github.com/oneaiguru/wfm-portal-api/pkg/jobs"
)

type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string, readAt time.Time) error
	MarkAllRead(ctx context.Context, userID string, readAt time.Time) error
	Delete(ctx context.Context, id, userID string) error
}

type recipientResolver interface {
	FindManagersOfEmployee(ctx context.Context, employeeID string) ([]models.User, error)
	FindByEmployeeID(ctx context.Context, employeeID string) (*models.User, error)
}

// NotificationService serves the per-user inbox and performs the lifecycle
// fan-out. Deliveries go through an in-memory worker queue so transition
// handlers never block on inbox writes.
type NotificationService struct {
	repo   notificationStore
	users  recipientResolver
	queue  *jobs.Queue
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService constructs the service and its delivery queue.
func NewNotificationService(repo notificationStore, users recipientResolver, logger *zap.Logger, cfg config.NotificationsConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		repo:   repo,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
	if cfg.Enabled {
		s.queue = jobs.NewQueue("notifications", s.deliver, jobs.QueueConfig{
			Workers:    cfg.WorkerConcurrency,
			MaxRetries: cfg.WorkerRetries,
			RetryDelay: cfg.RetryDelay,
			Logger:     logger,
		})
	}
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	if s.queue != nil {
		s.queue.Start(ctx)
	}
}

// Stop drains the delivery workers.
func (s *NotificationService) Stop() {
	if s.queue != nil {
		s.queue.Stop()
	}
}

// List returns the caller's notifications with pagination metadata.
func (s *NotificationService) List(ctx context.Context, query dto.NotificationQuery, actor *models.JWTClaims) ([]models.Notification, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	filter := models.NotificationFilter{
		UserID:     actor.UserID,
		UnreadOnly: query.UnreadOnly,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	notifications, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return notifications, pagination, nil
}

// UnreadCount returns the caller's badge count.
func (s *NotificationService) UnreadCount(ctx context.Context, actor *models.JWTClaims) (int, error) {
	if actor == nil {
		return 0, appErrors.ErrUnauthorized
	}
	count, err := s.repo.CountUnread(ctx, actor.UserID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread notifications")
	}
	return count, nil
}

// MarkRead flags one notification as read for the caller.
func (s *NotificationService) MarkRead(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification")
	}
	if notification.UserID != actor.UserID {
		return appErrors.ErrForbidden
	}
	if err := s.repo.MarkRead(ctx, id, actor.UserID, s.now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

// MarkAllRead flags everything unread for the caller. The operation is
// idempotent: a second call is a no-op, not an error.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if err := s.repo.MarkAllRead(ctx, actor.UserID, s.now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return nil
}

// Delete removes one of the caller's notifications.
func (s *NotificationService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification")
	}
	if notification.UserID != actor.UserID {
		return appErrors.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id, actor.UserID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notification")
	}
	return nil
}

// RequestSubmitted fans the submission out to the owner's manager and HR.
func (s *NotificationService) RequestSubmitted(ctx context.Context, request *models.Request) {
	recipients, err := s.users.FindManagersOfEmployee(ctx, request.EmployeeID)
	if err != nil {
		s.logger.Warn("failed to resolve submission recipients", zap.String("request_id", request.ID), zap.Error(err))
		return
	}
	for _, recipient := range recipients {
		s.dispatch(ctx, &models.Notification{
			UserID:    recipient.ID,
			Type:      models.NotificationRequestSubmitted,
			Title:     "Request awaiting review",
			Message:   fmt.Sprintf("%s (%s) was submitted for approval", request.Title, request.Type),
			RequestID: &request.ID,
		})
	}
}

// RequestDecided notifies the owner of the outcome, comments included.
func (s *NotificationService) RequestDecided(ctx context.Context, request *models.Request) {
	owner, err := s.users.FindByEmployeeID(ctx, request.EmployeeID)
	if err != nil {
		s.logger.Warn("failed to resolve request owner", zap.String("request_id", request.ID), zap.Error(err))
		return
	}
	notificationType := models.NotificationRequestRejected
	verdict := "rejected"
	if request.Status == models.RequestStatusApproved {
		notificationType = models.NotificationRequestApproved
		verdict = "approved"
	}
	message := fmt.Sprintf("%s was %s", request.Title, verdict)
	if request.ApproverComments != nil && *request.ApproverComments != "" {
		message = fmt.Sprintf("%s: %s", message, *request.ApproverComments)
	}
	s.dispatch(ctx, &models.Notification{
		UserID:    owner.ID,
		Type:      notificationType,
		Title:     fmt.Sprintf("Request %s", verdict),
		Message:   message,
		RequestID: &request.ID,
	})
}

// RequestCancelled tells the reviewers that a submitted request was withdrawn.
func (s *NotificationService) RequestCancelled(ctx context.Context, request *models.Request) {
	recipients, err := s.users.FindManagersOfEmployee(ctx, request.EmployeeID)
	if err != nil {
		s.logger.Warn("failed to resolve cancellation recipients", zap.String("request_id", request.ID), zap.Error(err))
		return
	}
	for _, recipient := range recipients {
		s.dispatch(ctx, &models.Notification{
			UserID:    recipient.ID,
			Type:      models.NotificationRequestCancelled,
			Title:     "Request withdrawn",
			Message:   fmt.Sprintf("%s was cancelled by the employee", request.Title),
			RequestID: &request.ID,
		})
	}
}

// ExchangeReplied informs the request owner about the counterpart's answer.
func (s *NotificationService) ExchangeReplied(ctx context.Context, request *models.Request, accepted bool) {
	owner, err := s.users.FindByEmployeeID(ctx, request.EmployeeID)
	if err != nil {
		s.logger.Warn("failed to resolve request owner", zap.String("request_id", request.ID), zap.Error(err))
		return
	}
	verdict := "declined"
	if accepted {
		verdict = "accepted"
	}
	s.dispatch(ctx, &models.Notification{
		UserID:    owner.ID,
		Type:      models.NotificationExchangeReply,
		Title:     "Shift exchange update",
		Message:   fmt.Sprintf("Your counterpart %s the exchange for %s", verdict, request.Title),
		RequestID: &request.ID,
	})
}

// dispatch queues the notification, falling back to a synchronous write when
// the queue is unavailable.
func (s *NotificationService) dispatch(ctx context.Context, notification *models.Notification) {
	if s.queue != nil {
		if err := s.queue.Enqueue(jobs.Job{Type: "notification", Payload: notification}); err == nil {
			return
		}
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to persist notification", zap.String("user_id", notification.UserID), zap.Error(err))
	}
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(*models.Notification)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_type", job.Type))
		return nil
	}
	return s.repo.Create(ctx, notification)
}
