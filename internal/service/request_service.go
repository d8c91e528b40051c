package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/oneaiguru/wfm-portal-api/internal/dto"
	"github.com/oneaiguru/wfm-portal-api/internal/models"
	"github.com/oneaiguru/wfm-portal-api/internal/repository"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
)

type requestStore interface {
	Create(ctx context.Context, request *models.Request) error
	GetByID(ctx context.Context, id string) (*models.Request, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Request, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error)
	UpdateDraft(ctx context.Context, request *models.Request) error
	UpdateStatus(ctx context.Context, params repository.TransitionParams) error
	UpdateExchangeStatus(ctx context.Context, id string, status models.ExchangeStatus) error
	CountPendingForManager(ctx context.Context, managerID string) (int, error)
}

type employeeDirectory interface {
	GetByID(ctx context.Context, id string) (*models.Employee, error)
}

type shiftCatalog interface {
	GetByID(ctx context.Context, id string) (*models.Shift, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// lifecycleNotifier receives fan-out events after successful transitions.
// Delivery is best effort; implementations must not fail the transition.
type lifecycleNotifier interface {
	RequestSubmitted(ctx context.Context, request *models.Request)
	RequestDecided(ctx context.Context, request *models.Request)
	RequestCancelled(ctx context.Context, request *models.Request)
	ExchangeReplied(ctx context.Context, request *models.Request, accepted bool)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// RequestService orchestrates the request lifecycle: drafting, submission,
// review, decisions, cancellation and the shift-exchange handshake.
type RequestService struct {
	repo      requestStore
	employees employeeDirectory
	shifts    shiftCatalog
	audit     auditLogger
	notifier  lifecycleNotifier
	cache     cacheInvalidator
	logger    *zap.Logger
	now       func() time.Time
}

// RequestServiceParams groups constructor dependencies.
type RequestServiceParams struct {
	Repo      requestStore
	Employees employeeDirectory
	Shifts    shiftCatalog
	Audit     auditLogger
	Notifier  lifecycleNotifier
	Cache     cacheInvalidator
	Logger    *zap.Logger
}

// NewRequestService constructs the service with defaults.
func NewRequestService(params RequestServiceParams) *RequestService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		repo:      params.Repo,
		employees: params.Employees,
		shifts:    params.Shifts,
		audit:     params.Audit,
		notifier:  params.Notifier,
		cache:     params.Cache,
		logger:    logger,
		now:       time.Now,
	}
}

// Create stores a new request as a draft, or submits it immediately when the
// payload asks for it. A repeated call carrying the same idempotency key
// returns the original request instead of creating a duplicate; the second
// return value reports whether a new row was written.
func (s *RequestService) Create(ctx context.Context, payload dto.CreateRequestPayload, idempotencyKey string, actor *models.JWTClaims) (*models.Request, bool, error) {
	employeeID, err := actingEmployee(actor)
	if err != nil {
		return nil, false, err
	}

	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey != "" {
		existing, err := s.repo.GetByIdempotencyKey(ctx, idempotencyKey)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check idempotency key")
		}
	}

	request, err := s.buildRequest(ctx, payload.RequestPayload, employeeID)
	if err != nil {
		return nil, false, err
	}
	if idempotencyKey != "" {
		request.IdempotencyKey = &idempotencyKey
	}

	if payload.Submit {
		next, err := models.Transition(models.RequestStatusDraft, models.ActionSubmit)
		if err != nil {
			return nil, false, err
		}
		now := s.now().UTC()
		request.Status = next
		request.SubmittedAt = &now
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}

	s.emitAudit(ctx, actor, models.AuditActionRequestCreate, request)
	if request.Status == models.RequestStatusSubmitted {
		if s.notifier != nil {
			s.notifier.RequestSubmitted(ctx, request)
		}
		s.invalidateDashboards(ctx)
	}
	return request, true, nil
}

// UpdateDraft rewrites a draft's content. Only the owning employee may edit,
// and only while the request is still a draft.
func (s *RequestService) UpdateDraft(ctx context.Context, id string, payload dto.RequestPayload, actor *models.JWTClaims) (*models.Request, error) {
	employeeID, err := actingEmployee(actor)
	if err != nil {
		return nil, err
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.EmployeeID != employeeID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owner can edit a request")
	}
	if !request.Status.Editable() {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only drafts can be edited")
	}

	updated, err := s.buildRequest(ctx, payload, request.EmployeeID)
	if err != nil {
		return nil, err
	}
	updated.ID = request.ID
	updated.Status = request.Status
	updated.CreatedAt = request.CreatedAt
	updated.IdempotencyKey = request.IdempotencyKey

	if err := s.repo.UpdateDraft(ctx, updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "request is no longer a draft")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update draft")
	}
	return updated, nil
}

// Submit moves a draft into the approval pipeline.
func (s *RequestService) Submit(ctx context.Context, id string, actor *models.JWTClaims) (*models.Request, error) {
	employeeID, err := actingEmployee(actor)
	if err != nil {
		return nil, err
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.EmployeeID != employeeID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owner can submit a request")
	}

	next, err := models.Transition(request.Status, models.ActionSubmit)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	params := repository.TransitionParams{
		ID:           request.ID,
		FromStatuses: models.ActionSources(models.ActionSubmit),
		Status:       next,
		SubmittedAt:  &now,
	}
	if err := s.repo.UpdateStatus(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "request state changed concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit request")
	}
	request.Status = next
	request.SubmittedAt = &now
	request.UpdatedAt = now

	s.emitAudit(ctx, actor, models.AuditActionRequestSubmit, request)
	if s.notifier != nil {
		s.notifier.RequestSubmitted(ctx, request)
	}
	s.invalidateDashboards(ctx)
	return request, nil
}

// Review marks a submitted request as actively under review by the caller.
func (s *RequestService) Review(ctx context.Context, id string, actor *models.JWTClaims) (*models.Request, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireReviewer(ctx, actor, request); err != nil {
		return nil, err
	}

	next, err := models.Transition(request.Status, models.ActionReview)
	if err != nil {
		return nil, err
	}
	params := repository.TransitionParams{
		ID:           request.ID,
		FromStatuses: models.ActionSources(models.ActionReview),
		Status:       next,
		ApproverID:   &actor.UserID,
		ApproverName: &actor.FullName,
	}
	if err := s.repo.UpdateStatus(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "request state changed concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark request under review")
	}
	request.Status = next
	request.ApproverID = &actor.UserID
	request.ApproverName = &actor.FullName
	s.invalidateDashboards(ctx)
	return request, nil
}

// Decide approves or rejects a pending request. Comments are mandatory: the
// employee always learns why. Shift changes can only be approved after the
// counterpart accepted the exchange.
func (s *RequestService) Decide(ctx context.Context, id string, payload dto.DecisionPayload, approve bool, actor *models.JWTClaims) (*models.Request, error) {
	comments := strings.TrimSpace(payload.Comments)
	if comments == "" {
		return nil, appErrors.Field("comments", "comments are required for a decision")
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireReviewer(ctx, actor, request); err != nil {
		return nil, err
	}

	action := models.ActionReject
	if approve {
		action = models.ActionApprove
	}
	next, err := models.Transition(request.Status, action)
	if err != nil {
		return nil, err
	}
	if approve && request.Type == models.RequestTypeShiftChange {
		if request.ExchangeStatus == nil || *request.ExchangeStatus != models.ExchangeAccepted {
			return nil, appErrors.Clone(appErrors.ErrConflict, "counterpart has not accepted the exchange")
		}
	}

	now := s.now().UTC()
	params := repository.TransitionParams{
		ID:               request.ID,
		FromStatuses:     models.ActionSources(action),
		Status:           next,
		DecidedAt:        &now,
		ApproverID:       &actor.UserID,
		ApproverName:     &actor.FullName,
		ApproverComments: &comments,
	}
	if err := s.repo.UpdateStatus(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "request was already decided")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record decision")
	}
	request.Status = next
	request.DecidedAt = &now
	request.ApproverID = &actor.UserID
	request.ApproverName = &actor.FullName
	request.ApproverComments = &comments
	request.UpdatedAt = now

	s.emitAudit(ctx, actor, models.AuditActionRequestDecision, request)
	if s.notifier != nil {
		s.notifier.RequestDecided(ctx, request)
	}
	s.invalidateDashboards(ctx)
	return request, nil
}

// Cancel withdraws a request. The owner can cancel at any point before a
// decision; HR admins can cancel on an employee's behalf.
func (s *RequestService) Cancel(ctx context.Context, id string, actor *models.JWTClaims) (*models.Request, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	isOwner := actor.EmployeeID != "" && actor.EmployeeID == request.EmployeeID
	if !isOwner && actor.Role != models.RoleHRAdmin && actor.Role != models.RoleSuperAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owner or HR can cancel a request")
	}

	next, err := models.Transition(request.Status, models.ActionCancel)
	if err != nil {
		return nil, err
	}
	params := repository.TransitionParams{
		ID:           request.ID,
		FromStatuses: models.ActionSources(models.ActionCancel),
		Status:       next,
	}
	if err := s.repo.UpdateStatus(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "request was already finalised")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel request")
	}
	wasSubmitted := request.SubmittedAt != nil
	request.Status = next
	request.UpdatedAt = s.now().UTC()

	s.emitAudit(ctx, actor, models.AuditActionRequestCancel, request)
	if s.notifier != nil && wasSubmitted {
		s.notifier.RequestCancelled(ctx, request)
	}
	s.invalidateDashboards(ctx)
	return request, nil
}

// ExchangeReply records the counterpart's answer to a shift exchange. Only the
// named partner may reply, and only once.
func (s *RequestService) ExchangeReply(ctx context.Context, id string, payload dto.ExchangeReplyPayload, actor *models.JWTClaims) (*models.Request, error) {
	employeeID, err := actingEmployee(actor)
	if err != nil {
		return nil, err
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Type != models.RequestTypeShiftChange || request.ExchangePartnerID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request has no exchange counterpart")
	}
	if *request.ExchangePartnerID != employeeID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the named counterpart can reply")
	}
	if request.ExchangeStatus != nil && *request.ExchangeStatus != models.ExchangePending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "exchange was already answered")
	}

	status := models.ExchangeDeclined
	if payload.Accept {
		status = models.ExchangeAccepted
	}
	if err := s.repo.UpdateExchangeStatus(ctx, request.ID, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "exchange is no longer open")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record exchange reply")
	}
	request.ExchangeStatus = &status

	s.emitAudit(ctx, actor, models.AuditActionExchangeReply, request)
	if s.notifier != nil {
		s.notifier.ExchangeReplied(ctx, request, payload.Accept)
	}
	return request, nil
}

// Get returns a request enforcing visibility scope.
func (s *RequestService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Request, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireViewer(ctx, actor, request); err != nil {
		return nil, err
	}
	return request, nil
}

// Tracker returns the localized progression view of a request.
func (s *RequestService) Tracker(ctx context.Context, id, locale string, actor *models.JWTClaims) (*dto.TrackerView, error) {
	request, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	view := BuildTracker(request, locale)
	return &view, nil
}

// List returns requests scoped by role: employees see their own, managers
// their team, HR everything.
func (s *RequestService) List(ctx context.Context, query dto.RequestQuery, actor *models.JWTClaims) ([]models.Request, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.RequestFilter{
		Status:     query.Status,
		Type:       query.Type,
		EmployeeID: strings.TrimSpace(query.EmployeeID),
		Search:     strings.TrimSpace(query.Search),
	}
	if query.From != "" {
		from, err := parseDate(query.From)
		if err != nil {
			return nil, appErrors.Field("from", "must be a YYYY-MM-DD date")
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := parseDate(query.To)
		if err != nil {
			return nil, appErrors.Field("to", "must be a YYYY-MM-DD date")
		}
		filter.To = &to
	}

	switch actor.Role {
	case models.RoleSuperAdmin, models.RoleHRAdmin:
		// unrestricted
	case models.RoleManager:
		if actor.EmployeeID == "" {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "account is not linked to an employee")
		}
		if filter.EmployeeID != actor.EmployeeID {
			// manager browsing the team, not their own requests
			filter.ManagerID = actor.EmployeeID
		}
	default:
		if actor.EmployeeID == "" {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "account is not linked to an employee")
		}
		filter.EmployeeID = actor.EmployeeID
	}

	pageSize := query.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return requests, nil
}

// PendingCount returns the approval queue size for the acting manager.
func (s *RequestService) PendingCount(ctx context.Context, actor *models.JWTClaims) (int, error) {
	if actor == nil {
		return 0, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleManager && actor.Role != models.RoleHRAdmin && actor.Role != models.RoleSuperAdmin {
		return 0, appErrors.ErrForbidden
	}
	if actor.EmployeeID == "" {
		return 0, appErrors.Clone(appErrors.ErrForbidden, "account is not linked to an employee")
	}
	count, err := s.repo.CountPendingForManager(ctx, actor.EmployeeID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending requests")
	}
	return count, nil
}

func (s *RequestService) load(ctx context.Context, id string) (*models.Request, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return request, nil
}

// buildRequest converts the transport payload into a validated model,
// resolving shift and counterpart references against the catalog.
func (s *RequestService) buildRequest(ctx context.Context, payload dto.RequestPayload, employeeID string) (*models.Request, error) {
	request := &models.Request{
		EmployeeID: employeeID,
		Type:       models.RequestType(strings.ToUpper(strings.TrimSpace(payload.Type))),
		Status:     models.RequestStatusDraft,
		Priority:   models.PriorityNormal,
		Title:      strings.TrimSpace(payload.Title),
		Reason:     strings.TrimSpace(payload.Reason),
	}
	if payload.Priority != "" {
		request.Priority = models.RequestPriority(strings.ToUpper(strings.TrimSpace(payload.Priority)))
	}
	if payload.StartDate != "" {
		start, err := parseDate(payload.StartDate)
		if err != nil {
			return nil, appErrors.Field("startDate", "must be a YYYY-MM-DD date")
		}
		request.StartDate = start
	}
	if payload.EndDate != "" {
		end, err := parseDate(payload.EndDate)
		if err != nil {
			return nil, appErrors.Field("endDate", "must be a YYYY-MM-DD date")
		}
		request.EndDate = &end
	}

	request.CurrentShiftID = optionalString(payload.CurrentShiftID)
	request.RequestedShiftID = optionalString(payload.RequestedShiftID)
	request.ExchangePartnerID = optionalString(payload.ExchangePartnerID)
	request.OvertimeHours = payload.OvertimeHours
	request.MedicalCertificate = payload.MedicalCertificate
	request.EmergencyContact = optionalString(payload.EmergencyContact)
	request.HalfDay = payload.HalfDay
	if request.ExchangePartnerID != nil {
		pending := models.ExchangePending
		request.ExchangeStatus = &pending
	}

	if err := validateRequestModel(request); err != nil {
		return nil, err
	}
	if request.Type == models.RequestTypeShiftChange {
		if err := s.verifyShiftChange(ctx, request); err != nil {
			return nil, err
		}
	}
	return request, nil
}

// verifyShiftChange resolves shift and counterpart references so drafts never
// point at retired shifts or inactive employees.
func (s *RequestService) verifyShiftChange(ctx context.Context, request *models.Request) error {
	for field, id := range map[string]*string{
		"currentShiftId":   request.CurrentShiftID,
		"requestedShiftId": request.RequestedShiftID,
	} {
		if id == nil || s.shifts == nil {
			continue
		}
		shift, err := s.shifts.GetByID(ctx, *id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Field(field, "unknown shift")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve shift")
		}
		if !shift.Active {
			return appErrors.Field(field, "shift is no longer active")
		}
	}
	if request.ExchangePartnerID != nil && s.employees != nil {
		partner, err := s.employees.GetByID(ctx, *request.ExchangePartnerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Field("exchangePartnerId", "unknown employee")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve exchange partner")
		}
		if !partner.Active {
			return appErrors.Field("exchangePartnerId", "employee is not active")
		}
	}
	return nil
}

// requireReviewer admits HR admins over any request and managers over their
// own team.
func (s *RequestService) requireReviewer(ctx context.Context, actor *models.JWTClaims, request *models.Request) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	switch actor.Role {
	case models.RoleSuperAdmin, models.RoleHRAdmin:
		return nil
	case models.RoleManager:
		manages, err := s.managesEmployee(ctx, actor, request.EmployeeID)
		if err != nil {
			return err
		}
		if !manages {
			return appErrors.Clone(appErrors.ErrForbidden, "request belongs to another team")
		}
		return nil
	}
	return appErrors.ErrForbidden
}

func (s *RequestService) requireViewer(ctx context.Context, actor *models.JWTClaims, request *models.Request) error {
	switch actor.Role {
	case models.RoleSuperAdmin, models.RoleHRAdmin:
		return nil
	}
	if actor.EmployeeID != "" {
		if actor.EmployeeID == request.EmployeeID {
			return nil
		}
		if request.ExchangePartnerID != nil && *request.ExchangePartnerID == actor.EmployeeID {
			return nil
		}
	}
	if actor.Role == models.RoleManager {
		manages, err := s.managesEmployee(ctx, actor, request.EmployeeID)
		if err != nil {
			return err
		}
		if manages {
			return nil
		}
	}
	return appErrors.ErrForbidden
}

func (s *RequestService) managesEmployee(ctx context.Context, actor *models.JWTClaims, employeeID string) (bool, error) {
	if actor.EmployeeID == "" || s.employees == nil {
		return false, nil
	}
	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve employee")
	}
	return employee.ManagerID != nil && *employee.ManagerID == actor.EmployeeID, nil
}

func (s *RequestService) emitAudit(ctx context.Context, actor *models.JWTClaims, action string, request *models.Request) {
	if s.audit == nil {
		return
	}
	snapshot, err := json.Marshal(request)
	if err != nil {
		snapshot = []byte("{}")
	}
	log := &models.AuditLog{
		Action:     action,
		Resource:   "request",
		ResourceID: &request.ID,
		NewValues:  snapshot,
		IPAddress:  "system",
		UserAgent:  "request-service",
	}
	if actor != nil {
		log.UserID = &actor.UserID
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

func (s *RequestService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, managerDashboardPattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func actingEmployee(actor *models.JWTClaims) (string, error) {
	if actor == nil {
		return "", appErrors.ErrUnauthorized
	}
	if actor.EmployeeID == "" {
		return "", appErrors.Clone(appErrors.ErrForbidden, "account is not linked to an employee")
	}
	return actor.EmployeeID, nil
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(raw))
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
