package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is one entry of the account activity trail the backend records
// for logins, bookings, spot and facility changes.
type AuditLog struct {
	ID          uuid.UUID `json:"id"`
	User        string    `json:"user"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ip_address,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
