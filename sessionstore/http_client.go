package sessionstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	apperrors "github.com/dottapps/auth-gateway/internal/errors"
)

// HTTPClient implements Client against the backend session service's
// REST API. Every call carries a short timeout; a failed connection or
// a 5xx answer surfaces as ErrStoreUnreachable so callers can apply
// retry policy instead of logging the user out.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a session service client. timeout bounds each
// request and must not exceed 5 seconds.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 || timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

var _ Client = (*HTTPClient)(nil)

// Create registers a new session and returns its id.
func (c *HTTPClient) Create(ctx context.Context, userID, tenantID string) (string, error) {
	body := map[string]string{"user_id": userID, "tenant_id": tenantID}
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/sessions", body, &out); err != nil {
		return "", errors.Wrap(err, "[HTTPClient Create]")
	}
	if out.SessionID == "" {
		return "", errors.Wrap(apperrors.ErrInternal, "[HTTPClient Create] empty session id")
	}
	return out.SessionID, nil
}

// Validate fetches the live record for a session id.
func (c *HTTPClient) Validate(ctx context.Context, sessionID string) (*SessionRecord, error) {
	var record SessionRecord
	err := c.do(ctx, http.MethodGet, "/sessions/"+sessionID, nil, &record)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, errors.Wrap(err, "[HTTPClient Validate]")
	}
	return &record, nil
}

// Delete revokes a session. Deleting an already-gone session is not an
// error.
func (c *HTTPClient) Delete(ctx context.Context, sessionID string) error {
	err := c.do(ctx, http.MethodDelete, "/sessions/"+sessionID, nil, nil)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return errors.Wrap(err, "[HTTPClient Delete]")
}

// Heartbeat marks a session active.
func (c *HTTPClient) Heartbeat(ctx context.Context, sessionID string) (HeartbeatResult, error) {
	var result HeartbeatResult
	err := c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/heartbeat", nil, &result)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return HeartbeatResult{}, apperrors.ErrSessionNotFound
		}
		return HeartbeatResult{}, errors.Wrap(err, "[HTTPClient Heartbeat]")
	}
	return result, nil
}

// ResolveUser maps a verified OAuth identity onto a backend user.
func (c *HTTPClient) ResolveUser(ctx context.Context, subject, email string) (*UserRecord, error) {
	body := map[string]string{"subject": subject, "email": email}
	var user UserRecord
	if err := c.do(ctx, http.MethodPost, "/users/resolve", body, &user); err != nil {
		return nil, errors.Wrap(err, "[HTTPClient ResolveUser]")
	}
	return &user, nil
}

// GetUser fetches the user record, including onboarding progress.
func (c *HTTPClient) GetUser(ctx context.Context, userID string) (*UserRecord, error) {
	var user UserRecord
	err := c.do(ctx, http.MethodGet, "/users/"+userID, nil, &user)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "[HTTPClient GetUser]")
	}
	return &user, nil
}

// GetOnboarding fetches just the onboarding record.
func (c *HTTPClient) GetOnboarding(ctx context.Context, userID string) (*OnboardingRecord, error) {
	var record OnboardingRecord
	err := c.do(ctx, http.MethodGet, "/users/"+userID+"/onboarding", nil, &record)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "[HTTPClient GetOnboarding]")
	}
	return &record, nil
}

// PutOnboarding stores a server-confirmed onboarding transition.
func (c *HTTPClient) PutOnboarding(ctx context.Context, userID string, record OnboardingRecord) error {
	err := c.do(ctx, http.MethodPut, "/users/"+userID+"/onboarding", record, nil)
	return errors.Wrap(err, "[HTTPClient PutOnboarding]")
}

// do performs one request/response cycle. Connection and timeout
// failures become ErrStoreUnreachable; 404 becomes ErrNotFound; other
// non-2xx statuses are reported with their body snippet.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(apperrors.ErrStoreUnreachable, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.ErrNotFound
	case resp.StatusCode >= 500:
		return errors.Wrapf(apperrors.ErrStoreUnreachable, "status %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(snippet))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
