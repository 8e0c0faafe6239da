// Package session maintains the authenticated identity and its tokens for
// the lifetime of the application.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/advancepark/parkterm/internal/creds"
	"github.com/advancepark/parkterm/pkg/client"
	"github.com/advancepark/parkterm/pkg/domain"
)

// Manager owns the current user and drives the token lifecycle. It is built
// once at startup and injected wherever identity is needed; there is no
// ambient global session.
type Manager struct {
	client *client.Client
	creds  creds.Store
	log    *zap.Logger

	mu      sync.RWMutex
	user    *domain.User
	lastErr string
}

// NewManager builds a session manager. A nil logger disables logging.
func NewManager(c *client.Client, store creds.Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{client: c, creds: store, log: log}
}

// User returns the resolved user, or nil while unauthenticated.
func (m *Manager) User() *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// Err returns the recoverable error flag set by a failed profile fetch.
func (m *Manager) Err() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Authenticated reports whether a user has been resolved.
func (m *Manager) Authenticated() bool {
	return m.User() != nil
}

// Login exchanges credentials for tokens, persists them and fetches the
// profile. Field-level validation failures pass through as
// *client.ValidationError for inline form display.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	pair, err := m.client.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("session.Login: %w", err)
	}
	return m.adopt(ctx, *pair)
}

// Register creates an account and logs it in with the minted tokens.
func (m *Manager) Register(ctx context.Context, params client.RegisterParams) error {
	pair, err := m.client.Register(ctx, params)
	if err != nil {
		return fmt.Errorf("session.Register: %w", err)
	}
	return m.adopt(ctx, *pair)
}

// adopt persists a freshly minted pair, clears error state and resolves the
// profile.
func (m *Manager) adopt(ctx context.Context, pair domain.TokenPair) error {
	if err := m.creds.Save(pair); err != nil {
		return fmt.Errorf("session: save tokens: %w", err)
	}
	m.mu.Lock()
	m.lastErr = ""
	m.mu.Unlock()
	return m.FetchCurrentUser(ctx)
}

// Logout invalidates the session server-side on a best-effort basis, then
// unconditionally clears local tokens and user state. Local state is clean
// even when the network call fails.
func (m *Manager) Logout(ctx context.Context) {
	if m.creds.Tokens().HasAccess() {
		if err := m.client.Logout(ctx); err != nil {
			m.log.Warn("server-side logout failed", zap.Error(err))
		}
	}
	if err := m.creds.Clear(); err != nil {
		m.log.Warn("clearing stored tokens failed", zap.Error(err))
	}
	m.mu.Lock()
	m.user = nil
	m.lastErr = ""
	m.mu.Unlock()
}

// RefreshAccessToken silently renews the token pair. With no refresh token
// stored it is a no-op: that just means logged out. A failed refresh is
// terminal for the session and forces a logout.
func (m *Manager) RefreshAccessToken(ctx context.Context) error {
	_, err := m.client.RefreshTokens(ctx)
	if errors.Is(err, client.ErrNoRefreshToken) {
		return nil
	}
	if err != nil {
		m.log.Warn("refresh failed, ending session", zap.Error(err))
		m.Logout(ctx)
		return fmt.Errorf("session.RefreshAccessToken: %w", err)
	}
	return nil
}

// FetchCurrentUser resolves the profile for the stored tokens. Failure is
// recoverable: the error flag is set, the session stays, callers may retry.
func (m *Manager) FetchCurrentUser(ctx context.Context) error {
	u, err := m.client.Profile(ctx)
	if err != nil {
		m.mu.Lock()
		m.lastErr = "failed to fetch user"
		m.mu.Unlock()
		return fmt.Errorf("session.FetchCurrentUser: %w", err)
	}
	m.mu.Lock()
	m.user = u
	m.lastErr = ""
	m.mu.Unlock()
	return nil
}

// UpdateProfile applies a partial update and merges the changed fields into
// the local user.
func (m *Manager) UpdateProfile(ctx context.Context, update client.ProfileUpdate) error {
	if err := m.client.UpdateProfile(ctx, update); err != nil {
		return fmt.Errorf("session.UpdateProfile: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	mergeProfile(m.user, update)
	return nil
}

func mergeProfile(u *domain.User, update client.ProfileUpdate) {
	if update.FirstName != "" {
		u.FirstName = update.FirstName
	}
	if update.LastName != "" {
		u.LastName = update.LastName
	}
	if update.Phone != "" {
		u.Phone = update.Phone
	}
	if update.Address != "" {
		u.Address = update.Address
	}
	if update.City != "" {
		u.City = update.City
	}
	if update.State != "" {
		u.State = update.State
	}
	if update.Country != "" {
		u.Country = update.Country
	}
	if update.PostalCode != "" {
		u.PostalCode = update.PostalCode
	}
	if update.DefaultRadiusKM != "" {
		u.DefaultRadiusKM = update.DefaultRadiusKM
	}
}

// Bootstrap restores the session at startup: with a stored access token,
// try the profile fetch; if that fails, fall back to a refresh and try the
// fetch once more.
func (m *Manager) Bootstrap(ctx context.Context) error {
	if !m.creds.Tokens().HasAccess() {
		return nil
	}
	if err := m.FetchCurrentUser(ctx); err == nil {
		return nil
	}
	if err := m.RefreshAccessToken(ctx); err != nil {
		return fmt.Errorf("session.Bootstrap: %w", err)
	}
	if !m.creds.Tokens().HasAccess() {
		return nil
	}
	if err := m.FetchCurrentUser(ctx); err != nil {
		return fmt.Errorf("session.Bootstrap: %w", err)
	}
	return nil
}

// refreshLead is how far before the access token's expiry a proactive
// refresh fires.
const refreshLead = time.Minute

// refreshFloor is the soonest a rescheduled refresh may fire, so a token
// already near expiry cannot spin the loop.
const refreshFloor = 30 * time.Second

// RunRefreshLoop proactively renews tokens so they never expire mid-request.
// Each wait is scheduled from the stored token's exp claim when readable,
// falling back to the configured interval. It funnels through the same
// coalesced refresh as the 401 retry path and returns when ctx is canceled.
func (m *Manager) RunRefreshLoop(ctx context.Context, interval time.Duration) {
	timer := time.NewTimer(m.nextRefreshIn(interval))
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if err := m.RefreshAccessToken(ctx); err != nil {
				m.log.Warn("periodic refresh failed", zap.Error(err))
			}
			timer.Reset(m.nextRefreshIn(interval))
		}
	}
}

// nextRefreshIn derives the next wait from ExpiryHint, clamped between
// refreshFloor and fallback.
func (m *Manager) nextRefreshIn(fallback time.Duration) time.Duration {
	exp, ok := m.ExpiryHint()
	if !ok {
		return fallback
	}
	d := time.Until(exp) - refreshLead
	if d < refreshFloor {
		return refreshFloor
	}
	if d > fallback {
		return fallback
	}
	return d
}

// ExpiryHint reads the exp claim of the stored access token without
// verifying the signature. The hint only schedules proactive refreshes;
// authorization is always the server's call.
func (m *Manager) ExpiryHint() (time.Time, bool) {
	access := m.creds.Tokens().Access
	if access == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
