package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oneaiguru/wfm-portal-api/internal/dto"
	"github.com/oneaiguru/wfm-portal-api/internal/models"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
	"github.com/oneaiguru/wfm-portal-api/pkg/response"
)

type requestService interface {
	Create(ctx context.Context, payload dto.CreateRequestPayload, idempotencyKey string, actor *models.JWTClaims) (*models.Request, bool, error)
	UpdateDraft(ctx context.Context, id string, payload dto.RequestPayload, actor *models.JWTClaims) (*models.Request, error)
	Submit(ctx context.Context, id string, actor *models.JWTClaims) (*models.Request, error)
	Review(ctx context.Context, id string, actor *models.JWTClaims) (*models.Request, error)
	Decide(ctx context.Context, id string, payload dto.DecisionPayload, approve bool, actor *models.JWTClaims) (*models.Request, error)
	Cancel(ctx context.Context, id string, actor *models.JWTClaims) (*models.Request, error)
	ExchangeReply(ctx context.Context, id string, payload dto.ExchangeReplyPayload, actor *models.JWTClaims) (*models.Request, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Request, error)
	Tracker(ctx context.Context, id, locale string, actor *models.JWTClaims) (*dto.TrackerView, error)
	List(ctx context.Context, query dto.RequestQuery, actor *models.JWTClaims) ([]models.Request, error)
	PendingCount(ctx context.Context, actor *models.JWTClaims) (int, error)
}

// RequestHandler exposes REST endpoints for the request lifecycle.
type RequestHandler struct {
	service requestService
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(service requestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// Create godoc
// @Summary Create a request (draft or submitted)
// @Tags Requests
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Deduplication key"
// @Param payload body dto.CreateRequestPayload true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.CreateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request payload"))
		return
	}
	request, created, err := h.service.Create(c.Request.Context(), payload, c.GetHeader("Idempotency-Key"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusCreated
	if !created {
		// replayed idempotency key: return the original without a new row
		status = http.StatusOK
	}
	response.JSON(c, status, request, nil)
}

// Update godoc
// @Summary Update a draft request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.RequestPayload true "Request payload"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [put]
func (h *RequestHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.RequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request payload"))
		return
	}
	request, err := h.service.UpdateDraft(c.Request.Context(), c.Param("id"), payload, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Submit godoc
// @Summary Submit a draft for approval
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/submit [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := h.service.Submit(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Review godoc
// @Summary Mark a submitted request as under review
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/review [put]
func (h *RequestHandler) Review(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := h.service.Review(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Approve godoc
// @Summary Approve a pending request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.DecisionPayload true "Approval comments"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/approve [put]
func (h *RequestHandler) Approve(c *gin.Context) {
	h.decide(c, true)
}

// Reject godoc
// @Summary Reject a pending request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.DecisionPayload true "Rejection comments"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/reject [put]
func (h *RequestHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *RequestHandler) decide(c *gin.Context, approve bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.DecisionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid decision payload"))
		return
	}
	request, err := h.service.Decide(c.Request.Context(), c.Param("id"), payload, approve, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Cancel godoc
// @Summary Cancel a request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/cancel [put]
func (h *RequestHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := h.service.Cancel(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// ExchangeReply godoc
// @Summary Answer a shift exchange as the counterpart
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.ExchangeReplyPayload true "Exchange answer"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/exchange [put]
func (h *RequestHandler) ExchangeReply(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.ExchangeReplyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid exchange payload"))
		return
	}
	request, err := h.service.ExchangeReply(c.Request.Context(), c.Param("id"), payload, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Get godoc
// @Summary Get request detail
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Tracker godoc
// @Summary Get the localized status tracker of a request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Param locale query string false "Label locale (en or ru)"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/tracker [get]
func (h *RequestHandler) Tracker(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	view, err := h.service.Tracker(c.Request.Context(), c.Param("id"), c.Query("locale"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// List godoc
// @Summary List requests visible to the caller
// @Tags Requests
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param type query string false "Request type"
// @Param employeeId query string false "Employee ID"
// @Param from query string false "Overlap window start (YYYY-MM-DD)"
// @Param to query string false "Overlap window end (YYYY-MM-DD)"
// @Param search query string false "Title/reason search"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.RequestQuery{
		EmployeeID: c.Query("employeeId"),
		From:       c.Query("from"),
		To:         c.Query("to"),
		Search:     c.Query("search"),
		Page:       intQuery(c, "page"),
		PageSize:   intQuery(c, "pageSize"),
	}
	if rawType := c.Query("type"); rawType != "" {
		query.Type = models.RequestType(strings.ToUpper(rawType))
	}
	if rawStatus := c.Query("status"); rawStatus != "" {
		parts := strings.Split(rawStatus, ",")
		statuses := make([]models.RequestStatus, 0, len(parts))
		for _, part := range parts {
			part = strings.ToUpper(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			statuses = append(statuses, models.RequestStatus(part))
		}
		query.Status = statuses
	}
	requests, err := h.service.List(c.Request.Context(), query, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// PendingCount godoc
// @Summary Count requests awaiting the caller's approval
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/pending-count [get]
func (h *RequestHandler) PendingCount(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	count, err := h.service.PendingCount(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"pending": count}, nil)
}

func intQuery(c *gin.Context, key string) int {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
