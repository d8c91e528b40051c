package service

import (
	"context"
	"database/sql"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/oneaiguru/wfm-portal-api/internal/models"
	"github.com/oneaiguru/wfm-portal-api/pkg/config"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
	"github.com/oneaiguru/wfm-portal-api/pkg/storage"
)

type stubAttachmentStore struct {
	rows map[string]*models.Attachment
}

func newStubAttachmentStore() *stubAttachmentStore {
	return &stubAttachmentStore{rows: map[string]*models.Attachment{}}
}

func (s *stubAttachmentStore) Create(_ context.Context, attachment *models.Attachment) error {
	if attachment.ID == "" {
		attachment.ID = uuid.NewString()
	}
	attachment.CreatedAt = time.Now().UTC()
	clone := *attachment
	s.rows[attachment.ID] = &clone
	return nil
}

func (s *stubAttachmentStore) GetByID(_ context.Context, id string) (*models.Attachment, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *row
	return &clone, nil
}

func (s *stubAttachmentStore) ListByRequest(_ context.Context, requestID string) ([]models.Attachment, error) {
	var result []models.Attachment
	for _, row := range s.rows {
		if row.RequestID == requestID {
			result = append(result, *row)
		}
	}
	return result, nil
}

func (s *stubAttachmentStore) Delete(_ context.Context, id string) error {
	if _, ok := s.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.rows, id)
	return nil
}

type stubRequestReader struct {
	requests map[string]*models.Request
}

func (s *stubRequestReader) GetByID(_ context.Context, id string) (*models.Request, error) {
	request, ok := s.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return request, nil
}

func newAttachmentFixture(t *testing.T) (*AttachmentService, *stubAttachmentStore, *stubRequestReader) {
	t.Helper()
	store := newStubAttachmentStore()
	requests := &stubRequestReader{requests: map[string]*models.Request{
		"req-open": {ID: "req-open", EmployeeID: "emp-1", Status: models.RequestStatusSubmitted},
		"req-done": {ID: "req-done", EmployeeID: "emp-1", Status: models.RequestStatusApproved},
	}}
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewAttachmentService(store, requests, files, config.AttachmentsConfig{
		Enabled:           true,
		MaxFileSizeBytes:  64,
		AllowedExtensions: []string{"pdf", "png"},
	}, nil)
	return svc, store, requests
}

func ownerClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-1", Role: models.RoleEmployee, EmployeeID: "emp-1"}
}

func TestUploadAndDownloadRoundTrip(t *testing.T) {
	svc, _, _ := newAttachmentFixture(t)
	content := "certificate bytes"

	attachment, err := svc.Upload(context.Background(), "req-open", "certificate.pdf", "application/pdf", int64(len(content)), strings.NewReader(content), ownerClaims())
	require.NoError(t, err)
	require.Equal(t, "certificate.pdf", attachment.FileName)
	require.Equal(t, int64(len(content)), attachment.SizeBytes)
	require.FileExists(t, attachment.StoredPath)

	got, reader, err := svc.Open(context.Background(), attachment.ID, ownerClaims())
	require.NoError(t, err)
	defer reader.Close()
	require.Equal(t, attachment.ID, got.ID)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, content, string(data))
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc, _, _ := newAttachmentFixture(t)
	big := strings.Repeat("x", 65)

	_, err := svc.Upload(context.Background(), "req-open", "big.pdf", "application/pdf", int64(len(big)), strings.NewReader(big), ownerClaims())
	require.Equal(t, appErrors.ErrPayloadTooLarge.Code, appErrors.FromError(err).Code)
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	svc, _, _ := newAttachmentFixture(t)

	_, err := svc.Upload(context.Background(), "req-open", "script.exe", "application/octet-stream", 10, strings.NewReader("0123456789"), ownerClaims())
	require.Equal(t, appErrors.ErrUnsupportedFile.Code, appErrors.FromError(err).Code)

	_, err = svc.Upload(context.Background(), "req-open", "noextension", "text/plain", 10, strings.NewReader("0123456789"), ownerClaims())
	require.Equal(t, appErrors.ErrUnsupportedFile.Code, appErrors.FromError(err).Code)
}

func TestUploadRejectsFinalisedRequest(t *testing.T) {
	svc, _, _ := newAttachmentFixture(t)

	_, err := svc.Upload(context.Background(), "req-done", "late.pdf", "application/pdf", 4, strings.NewReader("data"), ownerClaims())
	require.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestUploadRejectsUndeclaredOverflow(t *testing.T) {
	svc, store, _ := newAttachmentFixture(t)
	// declared size fits, actual stream does not
	big := strings.Repeat("x", 80)

	_, err := svc.Upload(context.Background(), "req-open", "sneaky.pdf", "application/pdf", 10, strings.NewReader(big), ownerClaims())
	require.Equal(t, appErrors.ErrPayloadTooLarge.Code, appErrors.FromError(err).Code)
	require.Empty(t, store.rows)
}

func TestAttachmentVisibilityScope(t *testing.T) {
	svc, _, _ := newAttachmentFixture(t)
	_, err := svc.Upload(context.Background(), "req-open", "doc.pdf", "application/pdf", 4, strings.NewReader("data"), ownerClaims())
	require.NoError(t, err)

	stranger := &models.JWTClaims{UserID: "user-9", Role: models.RoleEmployee, EmployeeID: "emp-9"}
	_, err = svc.List(context.Background(), "req-open", stranger)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	hr := &models.JWTClaims{UserID: "user-hr", Role: models.RoleHRAdmin}
	attachments, err := svc.List(context.Background(), "req-open", hr)
	require.NoError(t, err)
	require.Len(t, attachments, 1)
}

func TestDeleteAttachmentRules(t *testing.T) {
	svc, store, requests := newAttachmentFixture(t)
	attachment, err := svc.Upload(context.Background(), "req-open", "doc.pdf", "application/pdf", 4, strings.NewReader("data"), ownerClaims())
	require.NoError(t, err)

	// another employee on the same request cannot delete someone else's upload
	partner := &models.JWTClaims{UserID: "user-2", Role: models.RoleEmployee, EmployeeID: "emp-1"}
	err = svc.Delete(context.Background(), attachment.ID, partner)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// once the request is finalised, nothing can be deleted
	requests.requests["req-open"].Status = models.RequestStatusApproved
	err = svc.Delete(context.Background(), attachment.ID, ownerClaims())
	require.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)

	requests.requests["req-open"].Status = models.RequestStatusSubmitted
	require.NoError(t, svc.Delete(context.Background(), attachment.ID, ownerClaims()))
	require.Empty(t, store.rows)
	_, statErr := os.Stat(attachment.StoredPath)
	require.True(t, os.IsNotExist(statErr))
}
