package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/advancepark/parkterm/pkg/domain"
)

// RegisterParams is the payload for creating a new account.
type RegisterParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// ProfileUpdate carries the mutable profile fields; empty fields are left
// untouched server-side.
type ProfileUpdate struct {
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Address         string `json:"address,omitempty"`
	City            string `json:"city,omitempty"`
	State           string `json:"state,omitempty"`
	Country         string `json:"country,omitempty"`
	PostalCode      string `json:"postal_code,omitempty"`
	DefaultRadiusKM string `json:"default_radius_km,omitempty"`
}

// Login exchanges credentials for a token pair. It does not persist the
// pair; that is the session manager's job.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	var pair domain.TokenPair
	body := map[string]string{"username": username, "password": password}
	if err := c.post(ctx, "/accounts/login/", body, &pair); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &pair, nil
}

// Register creates an account and returns the minted token pair. Rejected
// submissions surface as *ValidationError keyed by field name.
func (c *Client) Register(ctx context.Context, params RegisterParams) (*domain.TokenPair, error) {
	var pair domain.TokenPair
	if err := c.post(ctx, "/accounts/register/", params, &pair); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &pair, nil
}

// Logout blacklists the stored refresh token server-side. With no refresh
// token stored there is nothing to invalidate and no call is made.
func (c *Client) Logout(ctx context.Context) error {
	refresh := c.creds.Tokens().Refresh
	if refresh == "" {
		return nil
	}
	body := map[string]string{"refresh": refresh}
	if err := c.post(ctx, "/accounts/logout/", body, nil); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

// Profile returns the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/accounts/profile/", &u); err != nil {
		return nil, fmt.Errorf("client.Profile: %w", err)
	}
	return &u, nil
}

// UpdateProfile applies a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	if err := c.put(ctx, "/accounts/profile/", update, nil); err != nil {
		return fmt.Errorf("client.UpdateProfile: %w", err)
	}
	return nil
}

// ChangePassword rotates the account password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	if err := c.post(ctx, "/accounts/change-password/", body, nil); err != nil {
		return fmt.Errorf("client.ChangePassword: %w", err)
	}
	return nil
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Results []domain.User `json:"results"`
	Count   int           `json:"count"`
	Next    *string       `json:"next"`
}

// AdminUsers lists accounts, admin only.
func (c *Client) AdminUsers(ctx context.Context, page, limit int) (*UserPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var users UserPage
	if err := c.get(ctx, "/accounts/admin/users/?"+params.Encode(), &users); err != nil {
		return nil, fmt.Errorf("client.AdminUsers: %w", err)
	}
	return &users, nil
}

// AdminUser fetches a single account by id, admin only.
func (c *Client) AdminUser(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/accounts/admin/users/"+strconv.FormatInt(id, 10)+"/", &u); err != nil {
		return nil, fmt.Errorf("client.AdminUser: %w", err)
	}
	return &u, nil
}

// AddAttendantParams creates an attendant account bound to a facility.
type AddAttendantParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Facility int64  `json:"facility"`
}

// AddAttendant registers a facility attendant, admin only.
func (c *Client) AddAttendant(ctx context.Context, params AddAttendantParams) error {
	if err := c.post(ctx, "/accounts/admin/users/add-attendant/", params, nil); err != nil {
		return fmt.Errorf("client.AddAttendant: %w", err)
	}
	return nil
}

// FacilityAttendants lists the attendants assigned to a facility.
func (c *Client) FacilityAttendants(ctx context.Context, facilityID int64) ([]domain.User, error) {
	var attendants []domain.User
	path := "/accounts/admin/facilities/" + strconv.FormatInt(facilityID, 10) + "/attendants/"
	if err := c.get(ctx, path, &attendants); err != nil {
		return nil, fmt.Errorf("client.FacilityAttendants: %w", err)
	}
	return attendants, nil
}

// AssignAttendants adds attendant accounts to a facility's roster.
func (c *Client) AssignAttendants(ctx context.Context, facilityID int64, attendantIDs []int64) error {
	path := "/accounts/admin/facilities/" + strconv.FormatInt(facilityID, 10) + "/attendants/"
	body := map[string][]int64{"attendant_ids": attendantIDs}
	if err := c.post(ctx, path, body, nil); err != nil {
		return fmt.Errorf("client.AssignAttendants: %w", err)
	}
	return nil
}

// RemoveAttendants takes attendant accounts off a facility's roster.
func (c *Client) RemoveAttendants(ctx context.Context, facilityID int64, attendantIDs []int64) error {
	path := "/accounts/admin/facilities/" + strconv.FormatInt(facilityID, 10) + "/attendants/"
	body := map[string][]int64{"attendant_ids": attendantIDs}
	if err := c.doRequest(ctx, http.MethodDelete, path, body, nil); err != nil {
		return fmt.Errorf("client.RemoveAttendants: %w", err)
	}
	return nil
}

// AuditLogPage is one page of the account activity trail.
type AuditLogPage struct {
	Results []domain.AuditLog `json:"results"`
	Count   int               `json:"count"`
	Next    *string           `json:"next"`
}

// AuditLogs lists the activity trail, newest first, admin only.
func (c *Client) AuditLogs(ctx context.Context, page int) (*AuditLogPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var logs AuditLogPage
	if err := c.get(ctx, "/accounts/logs/?"+params.Encode(), &logs); err != nil {
		return nil, fmt.Errorf("client.AuditLogs: %w", err)
	}
	return &logs, nil
}

// ExportAuditLogs downloads the full activity trail as CSV, admin only.
func (c *Client) ExportAuditLogs(ctx context.Context) ([]byte, error) {
	data, err := c.doRaw(ctx, http.MethodGet, "/accounts/logs/export/")
	if err != nil {
		return nil, fmt.Errorf("client.ExportAuditLogs: %w", err)
	}
	return data, nil
}

// NewsletterSubscription is the account's newsletter opt-in state.
type NewsletterSubscription struct {
	Subscribed bool `json:"subscribed"`
}

// Newsletter returns the authenticated user's newsletter subscription.
func (c *Client) Newsletter(ctx context.Context) (*NewsletterSubscription, error) {
	var sub NewsletterSubscription
	if err := c.get(ctx, "/accounts/newsletter/", &sub); err != nil {
		return nil, fmt.Errorf("client.Newsletter: %w", err)
	}
	return &sub, nil
}

// UpdateNewsletter changes the authenticated user's newsletter opt-in.
func (c *Client) UpdateNewsletter(ctx context.Context, subscribed bool) error {
	body := NewsletterSubscription{Subscribed: subscribed}
	if err := c.patch(ctx, "/accounts/newsletter/", body, nil); err != nil {
		return fmt.Errorf("client.UpdateNewsletter: %w", err)
	}
	return nil
}

// SubscribeNewsletter signs an email address up publicly, no auth required.
func (c *Client) SubscribeNewsletter(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if err := c.doRequest(ctx, http.MethodPost, "/accounts/newsletter/subscribe/", body, nil); err != nil {
		return fmt.Errorf("client.SubscribeNewsletter: %w", err)
	}
	return nil
}
