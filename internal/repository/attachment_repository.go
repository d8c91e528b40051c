package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/oneaiguru/wfm-portal-api/internal/models"
)

const attachmentColumns = `id, request_id, file_name, stored_path, content_type, size_bytes, uploaded_by, created_at`

// AttachmentRepository persists file metadata; bytes live on disk.
type AttachmentRepository struct {
	db *sqlx.DB
}

// NewAttachmentRepository constructs the repository.
func NewAttachmentRepository(db *sqlx.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create inserts attachment metadata.
func (r *AttachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	if attachment.ID == "" {
		attachment.ID = uuid.NewString()
	}
	if attachment.CreatedAt.IsZero() {
		attachment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attachments (id, request_id, file_name, stored_path, content_type, size_bytes, uploaded_by, created_at)
	VALUES (:id, :request_id, :file_name, :stored_path, :content_type, :size_bytes, :uploaded_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, attachment); err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}
	return nil
}

// GetByID fetches one attachment row.
func (r *AttachmentRepository) GetByID(ctx context.Context, id string) (*models.Attachment, error) {
	query := fmt.Sprintf(`SELECT %s FROM attachments WHERE id = $1`, attachmentColumns)
	var attachment models.Attachment
	if err := r.db.GetContext(ctx, &attachment, query, id); err != nil {
		return nil, err
	}
	return &attachment, nil
}

// ListByRequest returns the attachments of a request, oldest first.
func (r *AttachmentRepository) ListByRequest(ctx context.Context, requestID string) ([]models.Attachment, error) {
	query := fmt.Sprintf(`SELECT %s FROM attachments WHERE request_id = $1 ORDER BY created_at ASC`, attachmentColumns)
	var attachments []models.Attachment
	if err := r.db.SelectContext(ctx, &attachments, query, requestID); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return attachments, nil
}

// Delete removes attachment metadata.
func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM attachments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return requireRowsAffected(result)
}
