package domain

import "time"

// PushSubscription is a registered web-push endpoint for an account.
type PushSubscription struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}

// EmailPreference controls whether the account receives email notifications.
type EmailPreference struct {
	ID            int64 `json:"id"`
	UserID        int64 `json:"user"`
	ReceiveEmails bool  `json:"receive_emails"`
}
