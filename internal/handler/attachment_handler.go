package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oneaiguru/wfm-portal-api/internal/models"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
	"github.com/oneaiguru/wfm-portal-api/pkg/response"
)

type attachmentService interface {
	Upload(ctx context.Context, requestID, fileName, contentType string, size int64, content io.Reader, actor *models.JWTClaims) (*models.Attachment, error)
	List(ctx context.Context, requestID string, actor *models.JWTClaims) ([]models.Attachment, error)
	Open(ctx context.Context, id string, actor *models.JWTClaims) (*models.Attachment, io.ReadCloser, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
}

// AttachmentHandler manages supporting documents on requests.
type AttachmentHandler struct {
	service attachmentService
}

// NewAttachmentHandler constructs the handler.
func NewAttachmentHandler(service attachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

// Upload godoc
// @Summary Attach a file to a request
// @Tags Attachments
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Request ID"
// @Param file formData file true "File to attach"
// @Success 201 {object} response.Envelope
// @Router /requests/{id}/attachments [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "multipart field 'file' is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read uploaded file"))
		return
	}
	defer file.Close()

	attachment, err := h.service.Upload(
		c.Request.Context(),
		c.Param("id"),
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		file,
		claims,
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attachment)
}

// List godoc
// @Summary List attachments on a request
// @Tags Attachments
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/attachments [get]
func (h *AttachmentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	attachments, err := h.service.List(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attachments, nil)
}

// Download godoc
// @Summary Download an attachment
// @Tags Attachments
// @Produce octet-stream
// @Param id path string true "Attachment ID"
// @Success 200 {file} binary
// @Router /attachments/{id}/download [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	attachment, reader, err := h.service.Open(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+attachment.FileName+`"`)
	c.DataFromReader(http.StatusOK, attachment.SizeBytes, attachment.ContentType, reader, nil)
}

// Delete godoc
// @Summary Delete an attachment
// @Tags Attachments
// @Produce json
// @Param id path string true "Attachment ID"
// @Success 204 "No Content"
// @Router /attachments/{id} [delete]
func (h *AttachmentHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
