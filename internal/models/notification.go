package models

import "time"

// NotificationType distinguishes lifecycle events delivered to users.
type NotificationType string

const (
	NotificationRequestSubmitted NotificationType = "REQUEST_SUBMITTED"
	NotificationRequestApproved  NotificationType = "REQUEST_APPROVED"
	NotificationRequestRejected  NotificationType = "REQUEST_REJECTED"
	NotificationRequestCancelled NotificationType = "REQUEST_CANCELLED"
	NotificationExchangeReply    NotificationType = "EXCHANGE_REPLY"
)

// Notification is a per-user inbox row written by the lifecycle fan-out.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"userId"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	RequestID *string          `db:"request_id" json:"requestId,omitempty"`
	Read      bool             `db:"read" json:"read"`
	ReadAt    *time.Time       `db:"read_at" json:"readAt,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}

// NotificationFilter constrains inbox listing.
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Page       int
	PageSize   int
}
