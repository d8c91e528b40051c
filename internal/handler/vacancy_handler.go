package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oneaiguru/wfm-portal-api/internal/dto"
	"github.com/oneaiguru/wfm-portal-api/internal/models"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
	"github.com/oneaiguru/wfm-portal-api/pkg/response"
)

type vacancyService interface {
	Gaps(ctx context.Context, department string, actor *models.JWTClaims) ([]models.VacancyGap, error)
	QueueReport(ctx context.Context, payload dto.CreateReportPayload, actor *models.JWTClaims) (*models.VacancyReport, error)
	GetReport(ctx context.Context, id string, actor *models.JWTClaims) (*models.VacancyReport, error)
	ListReports(ctx context.Context, actor *models.JWTClaims) ([]models.VacancyReport, error)
	Open(ctx context.Context, id string, actor *models.JWTClaims) (*models.VacancyReport, io.ReadCloser, error)
}

// VacancyHandler serves staffing gap analysis and report generation.
type VacancyHandler struct {
	service vacancyService
}

// NewVacancyHandler constructs the handler.
func NewVacancyHandler(service vacancyService) *VacancyHandler {
	return &VacancyHandler{service: service}
}

// Gaps godoc
// @Summary List staffing gaps per position
// @Tags Vacancies
// @Produce json
// @Param department query string false "Department filter"
// @Success 200 {object} response.Envelope
// @Router /vacancy/gaps [get]
func (h *VacancyHandler) Gaps(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	gaps, err := h.service.Gaps(c.Request.Context(), c.Query("department"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gaps, nil)
}

// CreateReport godoc
// @Summary Queue an async staffing gap report
// @Tags Vacancies
// @Accept json
// @Produce json
// @Param payload body dto.CreateReportPayload true "Report format"
// @Success 202 {object} response.Envelope
// @Router /vacancy/reports [post]
func (h *VacancyHandler) CreateReport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.CreateReportPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid report payload"))
		return
	}
	report, err := h.service.QueueReport(c.Request.Context(), payload, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, report, nil)
}

// GetReport godoc
// @Summary Get the status of a queued report
// @Tags Vacancies
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /vacancy/reports/{id} [get]
func (h *VacancyHandler) GetReport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	report, err := h.service.GetReport(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// ListReports godoc
// @Summary List the caller's queued reports
// @Tags Vacancies
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /vacancy/reports [get]
func (h *VacancyHandler) ListReports(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	reports, err := h.service.ListReports(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}

// DownloadReport godoc
// @Summary Download a completed report
// @Tags Vacancies
// @Produce octet-stream
// @Param id path string true "Report ID"
// @Success 200 {file} binary
// @Router /vacancy/reports/{id}/download [get]
func (h *VacancyHandler) DownloadReport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	report, reader, err := h.service.Open(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer reader.Close()

	fileName := "report"
	if report.FileName != nil {
		fileName = *report.FileName
	}
	contentType := "text/csv"
	if strings.EqualFold(string(report.Format), "PDF") {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.DataFromReader(http.StatusOK, -1, contentType, reader, nil)
}
