package dto

// NotificationQuery mirrors supported inbox filters.
type NotificationQuery struct {
	UnreadOnly bool
	Page       int
	PageSize   int
}

// UnreadCount is returned alongside notification listings.
type UnreadCount struct {
	Unread int `json:"unread"`
}
