package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oneaiguru/wfm-portal-api/internal/dto"
	"github.com/oneaiguru/wfm-portal-api/internal/models"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
	"github.com/oneaiguru/wfm-portal-api/pkg/response"
)

type employeeService interface {
	Get(ctx context.Context, id string) (*models.Employee, error)
	Current(ctx context.Context, actor *models.JWTClaims) (*models.Employee, error)
	List(ctx context.Context, query dto.EmployeeQuery) ([]models.Employee, *models.Pagination, error)
	Search(ctx context.Context, term string, limit int) ([]models.Employee, error)
}

// EmployeeHandler exposes the employee directory.
type EmployeeHandler struct {
	service employeeService
}

// NewEmployeeHandler constructs the handler.
func NewEmployeeHandler(service employeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

// List godoc
// @Summary List employees
// @Tags Employees
// @Produce json
// @Param department query string false "Department filter"
// @Param managerId query string false "Manager filter"
// @Param active query bool false "Active filter"
// @Param search query string false "Name search"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	query := dto.EmployeeQuery{
		Department: c.Query("department"),
		ManagerID:  c.Query("managerId"),
		Search:     c.Query("search"),
		Page:       intQuery(c, "page"),
		PageSize:   intQuery(c, "pageSize"),
	}
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			query.Active = &active
		}
	}
	rows, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// Get godoc
// @Summary Get an employee by ID
// @Tags Employees
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	employee, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Me godoc
// @Summary Get the caller's employee profile
// @Tags Employees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /employees/me [get]
func (h *EmployeeHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	employee, err := h.service.Current(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Search godoc
// @Summary Search employees by name for exchange partner selection
// @Tags Employees
// @Produce json
// @Param q query string true "Search term (min 2 characters)"
// @Param limit query int false "Max results"
// @Success 200 {object} response.Envelope
// @Router /employees/search/query [get]
func (h *EmployeeHandler) Search(c *gin.Context) {
	rows, err := h.service.Search(c.Request.Context(), c.Query("q"), intQuery(c, "limit"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
