package domain

import "time"

// NotificationType tags a notification with the event that produced it.
type NotificationType string

const (
	NotificationSpotAvailable   NotificationType = "spot_available"
	NotificationBookingReminder NotificationType = "booking_reminder"
	NotificationGeneral         NotificationType = "general"
)

// Notification is a single entry in a user's notification feed.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Type      NotificationType `json:"type"`
	SentAt    time.Time        `json:"sent_at"`
	Delivered bool             `json:"delivered"`
	Status    string           `json:"status"`
	IsRead    bool             `json:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
}

// NotificationPage is one page of the paginated notification listing.
type NotificationPage struct {
	Results []Notification `json:"results"`
	Count   int            `json:"count"`
	Next    *string        `json:"next"`
}

// HasNext reports whether another page follows this one.
func (p NotificationPage) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// UnreadCount is the response of the unread-count endpoint.
type UnreadCount struct {
	Unread int `json:"unread"`
}

// Stream event kinds pushed over the notification socket.
const (
	EventSendNotification    = "send_notification"
	EventUnreadNotifications = "unread_notifications"
)

// StreamEvent is one tagged frame from the notification socket. Exactly one
// of Notification or Notifications is set, depending on Type.
type StreamEvent struct {
	Type          string         `json:"type"`
	Notification  *Notification  `json:"data,omitempty"`
	Notifications []Notification `json:"notifications,omitempty"`
}
