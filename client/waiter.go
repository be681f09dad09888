// Package client holds the pieces that run next to the UI rather than
// in the gateway: the propagation waiter and the heartbeat keeper.
package client

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultPollInterval = 200 * time.Millisecond
	defaultMaxWait      = 5 * time.Second
)

// Waiter polls the gateway until a freshly established session becomes
// visible. Cookies can lag the establishment response behind a proxy
// or CDN edge, so the very next request may not see them yet.
type Waiter struct {
	httpClient *http.Client
	baseURL    string
	interval   time.Duration
}

// NewWaiter creates a propagation waiter. httpClient must carry the
// cookie jar that received the establishment response.
func NewWaiter(httpClient *http.Client, baseURL string) *Waiter {
	return &Waiter{
		httpClient: httpClient,
		baseURL:    baseURL,
		interval:   defaultPollInterval,
	}
}

// AwaitSession polls the session endpoint at a fixed interval until a
// positive validation or until maxWait elapses. It returns false on
// timeout without error so callers can fall back to an explicit
// re-authentication path instead of looping.
func (w *Waiter) AwaitSession(ctx context.Context, maxWait time.Duration) bool {
	if maxWait <= 0 {
		maxWait = defaultMaxWait
	}

	deadline := time.Now().Add(maxWait)
	for attempt := 0; ; attempt++ {
		if w.probe(ctx) {
			return true
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			log.Debug().Int("attempts", attempt+1).Msg("session did not propagate before deadline")
			return false
		}

		wait := w.interval
		if wait > remaining {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
	}
}

func (w *Waiter) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/auth/session", nil)
	if err != nil {
		return false
	}
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
