package models

import "time"

// Attachment stores metadata for a file uploaded against a request; the bytes
// live on disk under the configured storage directory.
type Attachment struct {
	ID          string    `db:"id" json:"id"`
	RequestID   string    `db:"request_id" json:"requestId"`
	FileName    string    `db:"file_name" json:"fileName"`
	StoredPath  string    `db:"stored_path" json:"-"`
	ContentType string    `db:"content_type" json:"contentType"`
	SizeBytes   int64     `db:"size_bytes" json:"sizeBytes"`
	UploadedBy  string    `db:"uploaded_by" json:"uploadedBy"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
