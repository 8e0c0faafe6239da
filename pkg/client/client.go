// Package client is the typed API client for the Advance Parking platform.
// It attaches the stored access token to every request and transparently
// recovers from an expired token with a single coalesced refresh-and-retry.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/advancepark/parkterm/internal/creds"
	"github.com/advancepark/parkterm/pkg/domain"
)

// maxErrorBody caps how much of an error response is read back.
const maxErrorBody = 1 << 20

// Client is the Advance Parking API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      creds.Store
	log        *zap.Logger
	refresh    singleflight.Group
}

// New creates a new API client. A nil logger disables logging.
func New(baseURL string, store creds.Store, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   store,
		log:     log,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// RefreshTokens exchanges the stored refresh token for a new pair and
// persists it. Concurrent callers (the periodic refresh timer and any number
// of in-flight 401 retries) share a single network call and its outcome.
// With no refresh token stored it returns ErrNoRefreshToken without touching
// the network.
func (c *Client) RefreshTokens(ctx context.Context) (domain.TokenPair, error) {
	return c.refreshTokens(ctx, c.creds.Tokens().Access)
}

// refreshTokens performs the coalesced refresh. usedAccess is the access
// token the caller last sent; if the store already holds a different one,
// another caller refreshed in the meantime and no new call is issued.
func (c *Client) refreshTokens(ctx context.Context, usedAccess string) (domain.TokenPair, error) {
	cur := c.creds.Tokens()
	if cur.HasAccess() && cur.Access != usedAccess {
		return cur, nil
	}
	if !cur.HasRefresh() {
		return domain.TokenPair{}, ErrNoRefreshToken
	}

	v, err, _ := c.refresh.Do(cur.Refresh, func() (any, error) {
		latest := c.creds.Tokens()
		if latest.HasAccess() && latest.Access != usedAccess {
			return latest, nil
		}
		pair, err := c.postRefresh(ctx, latest.Refresh)
		if err != nil {
			c.log.Warn("token refresh failed", zap.Error(err))
			return nil, err
		}
		if !pair.HasRefresh() {
			// Server kept the old refresh token.
			pair.Refresh = latest.Refresh
		}
		if err := c.creds.Save(pair); err != nil {
			return nil, fmt.Errorf("persist refreshed tokens: %w", err)
		}
		c.log.Info("access token refreshed")
		return pair, nil
	})
	if err != nil {
		return domain.TokenPair{}, err
	}
	return v.(domain.TokenPair), nil
}

// postRefresh hits the refresh endpoint directly, outside the retry path.
func (c *Client) postRefresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	payload, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("marshal refresh body: %w", err)
	}
	resp, err := c.send(ctx, http.MethodPost, "/accounts/refresh/", payload, "", uuid.NewString())
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("refresh request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		return domain.TokenPair{}, readError(resp)
	}
	var pair domain.TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return domain.TokenPair{}, fmt.Errorf("decode refresh response: %w", err)
	}
	if !pair.HasAccess() {
		return domain.TokenPair{}, fmt.Errorf("refresh response missing access token")
	}
	return pair, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		payload = data
	}

	reqID := uuid.NewString()
	access := c.creds.Tokens().Access

	resp, err := c.send(ctx, method, path, payload, access, reqID)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Keep the original error: a failed refresh must surface this, not
		// its own failure, and the request is never retried a second time.
		origErr := readError(resp)
		pair, refreshErr := c.refreshTokens(ctx, access)
		if refreshErr != nil {
			return origErr
		}
		resp, err = c.send(ctx, method, path, payload, pair.Access, reqID)
		if err != nil {
			return fmt.Errorf("retry request: %w", err)
		}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		return readError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// doRaw is doRequest for endpoints that serve a file instead of JSON. It
// shares the same 401 refresh-and-retry and returns the raw body.
func (c *Client) doRaw(ctx context.Context, method, path string) ([]byte, error) {
	reqID := uuid.NewString()
	access := c.creds.Tokens().Access

	resp, err := c.send(ctx, method, path, nil, access, reqID)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		origErr := readError(resp)
		pair, refreshErr := c.refreshTokens(ctx, access)
		if refreshErr != nil {
			return nil, origErr
		}
		resp, err = c.send(ctx, method, path, nil, pair.Access, reqID)
		if err != nil {
			return nil, fmt.Errorf("retry request: %w", err)
		}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		return nil, readError(resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// send issues a single HTTP request. The payload is a byte slice rather than
// a reader so the 401 retry can resend the same body.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, access, reqID string) (*http.Response, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", reqID),
			zap.Error(err))
		return nil, err
	}
	c.log.Debug("request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return resp, nil
}

// readError consumes the response body and turns a non-2xx response into a
// typed error. It closes the body.
func readError(resp *http.Response) error {
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if readErr != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
	}

	var generic struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &generic) == nil {
		if generic.Detail != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: generic.Detail}
		}
		if generic.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: generic.Error}
		}
	}

	// A 400 whose body is an object of field -> messages is a form
	// validation failure; keep the per-field structure for inline display.
	if resp.StatusCode == http.StatusBadRequest {
		if fields, ok := parseFieldErrors(body); ok {
			return &ValidationError{StatusCode: resp.StatusCode, Fields: fields}
		}
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}

func parseFieldErrors(body []byte) (map[string][]string, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return nil, false
	}
	fields := make(map[string][]string, len(raw))
	for name, msg := range raw {
		var list []string
		if json.Unmarshal(msg, &list) == nil {
			fields[name] = list
			continue
		}
		var single string
		if json.Unmarshal(msg, &single) == nil {
			fields[name] = []string{single}
			continue
		}
		return nil, false
	}
	return fields, true
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPut, path, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPatch, path, body, out)
}
