package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oneaiguru/wfm-portal-api/internal/models"
	"github.com/oneaiguru/wfm-portal-api/pkg/config"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
)

type attachmentStore interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	GetByID(ctx context.Context, id string) (*models.Attachment, error)
	ListByRequest(ctx context.Context, requestID string) ([]models.Attachment, error)
	Delete(ctx context.Context, id string) error
}

type attachmentRequestReader interface {
	GetByID(ctx context.Context, id string) (*models.Request, error)
}

type attachmentFileStore interface {
	SaveStream(filename string, r io.Reader) (string, int64, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

// AttachmentService stores supporting documents for requests. Metadata lives
// in Postgres, bytes in the injected file store.
type AttachmentService struct {
	repo     attachmentStore
	requests attachmentRequestReader
	files    attachmentFileStore
	cfg      config.AttachmentsConfig
	logger   *zap.Logger
}

// NewAttachmentService constructs the service.
func NewAttachmentService(repo attachmentStore, requests attachmentRequestReader, files attachmentFileStore, cfg config.AttachmentsConfig, logger *zap.Logger) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttachmentService{repo: repo, requests: requests, files: files, cfg: cfg, logger: logger}
}

// Upload validates and stores a file against a request. Size and extension
// limits come from configuration; the terminal-state check keeps decided
// requests append-only.
func (s *AttachmentService) Upload(ctx context.Context, requestID, fileName, contentType string, size int64, content io.Reader, actor *models.JWTClaims) (*models.Attachment, error) {
	request, err := s.loadScoped(ctx, requestID, actor)
	if err != nil {
		return nil, err
	}
	if request.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "cannot attach files to a finalised request")
	}
	if size <= 0 {
		return nil, appErrors.Field("file", "file is empty")
	}
	if size > s.cfg.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge,
			fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxFileSizeBytes))
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if !s.extensionAllowed(ext) {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFile,
			fmt.Sprintf("extension %q is not allowed", ext))
	}

	name := filepath.Join(requestID, uuid.NewString()+"."+ext)
	storedPath, written, err := s.files.SaveStream(name, io.LimitReader(content, s.cfg.MaxFileSizeBytes+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}
	if written > s.cfg.MaxFileSizeBytes {
		s.removeFile(storedPath)
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge,
			fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxFileSizeBytes))
	}

	attachment := &models.Attachment{
		RequestID:   requestID,
		FileName:    filepath.Base(fileName),
		StoredPath:  storedPath,
		ContentType: contentType,
		SizeBytes:   written,
		UploadedBy:  actor.UserID,
	}
	if err := s.repo.Create(ctx, attachment); err != nil {
		s.removeFile(storedPath)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist attachment")
	}
	return attachment, nil
}

// List returns a request's attachments, subject to the same visibility rules
// as the request itself.
func (s *AttachmentService) List(ctx context.Context, requestID string, actor *models.JWTClaims) ([]models.Attachment, error) {
	if _, err := s.loadScoped(ctx, requestID, actor); err != nil {
		return nil, err
	}
	attachments, err := s.repo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attachments")
	}
	return attachments, nil
}

// Open returns the attachment metadata and a reader over its bytes. The
// caller owns closing the reader.
func (s *AttachmentService) Open(ctx context.Context, id string, actor *models.JWTClaims) (*models.Attachment, io.ReadCloser, error) {
	attachment, err := s.get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.loadScoped(ctx, attachment.RequestID, actor); err != nil {
		return nil, nil, err
	}
	file, err := s.files.Open(attachment.StoredPath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open stored file")
	}
	return attachment, file, nil
}

// Delete removes an attachment while the request is still open. Only the
// uploader or HR may delete.
func (s *AttachmentService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	attachment, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	request, err := s.loadScoped(ctx, attachment.RequestID, actor)
	if err != nil {
		return err
	}
	if request.Status.Terminal() {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "cannot modify attachments of a finalised request")
	}
	if attachment.UploadedBy != actor.UserID && actor.Role != models.RoleHRAdmin && actor.Role != models.RoleSuperAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only the uploader or HR can delete an attachment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attachment")
	}
	s.removeFile(attachment.StoredPath)
	return nil
}

func (s *AttachmentService) get(ctx context.Context, id string) (*models.Attachment, error) {
	attachment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attachment")
	}
	return attachment, nil
}

// loadScoped resolves the request and checks the actor may touch it: the
// owner, the exchange counterpart, or HR.
func (s *AttachmentService) loadScoped(ctx context.Context, requestID string, actor *models.JWTClaims) (*models.Request, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	switch actor.Role {
	case models.RoleSuperAdmin, models.RoleHRAdmin, models.RoleManager:
		return request, nil
	}
	if actor.EmployeeID != "" && actor.EmployeeID == request.EmployeeID {
		return request, nil
	}
	if request.ExchangePartnerID != nil && actor.EmployeeID == *request.ExchangePartnerID {
		return request, nil
	}
	return nil, appErrors.ErrForbidden
}

func (s *AttachmentService) extensionAllowed(ext string) bool {
	if ext == "" {
		return false
	}
	for _, allowed := range s.cfg.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

func (s *AttachmentService) removeFile(path string) {
	if err := s.files.Delete(path); err != nil {
		s.logger.Warn("failed to remove stored file", zap.String("path", path), zap.Error(err))
	}
}
