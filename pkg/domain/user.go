package domain

import "fmt"

// Role is the closed set of account roles the platform knows about.
type Role string

const (
	RoleDriver    Role = "driver"
	RoleProvider  Role = "provider"
	RoleAttendant Role = "attendant"
	RoleAdmin     Role = "admin"
)

// ParseRole validates a raw role string from the API.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleDriver, RoleProvider, RoleAttendant, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("domain.ParseRole: unknown role %q", s)
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// User is the canonical account profile. Snapshots of the platform carried
// several drifting User shapes; this is the merged schema.
type User struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Address         string `json:"address,omitempty"`
	City            string `json:"city,omitempty"`
	State           string `json:"state,omitempty"`
	Country         string `json:"country,omitempty"`
	PostalCode      string `json:"postal_code,omitempty"`
	IsActive        bool   `json:"is_active"`
	Role            Role   `json:"role"`
	DefaultRadiusKM string `json:"default_radius_km,omitempty"`
}

// DisplayName prefers the real name and falls back to the username.
func (u User) DisplayName() string {
	if u.FirstName != "" || u.LastName != "" {
		if u.LastName == "" {
			return u.FirstName
		}
		if u.FirstName == "" {
			return u.LastName
		}
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}
