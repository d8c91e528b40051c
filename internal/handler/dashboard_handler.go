package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oneaiguru/wfm-portal-api/internal/models"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
	"github.com/oneaiguru/wfm-portal-api/pkg/response"
)

type dashboardService interface {
	Manager(ctx context.Context, managerID string, actor *models.JWTClaims) (*models.ManagerDashboard, bool, error)
}

// DashboardHandler serves aggregated manager views.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Manager godoc
// @Summary Get a manager's team dashboard
// @Tags Dashboards
// @Produce json
// @Param id path string true "Manager employee ID"
// @Success 200 {object} response.Envelope
// @Router /managers/{id}/dashboard [get]
func (h *DashboardHandler) Manager(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	dashboard, cached, err := h.service.Manager(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil, map[string]interface{}{"cache": cached})
}
