package bridgetoken

import (
	"context"
	"sync"
	"time"

	"github.com/dottapps/auth-gateway/internal/errors"
)

type inMemoryEntry struct {
	token    Token
	consumed bool
}

// InMemoryRepo is a mutex-guarded implementation of Repo for
// single-instance deployments and tests.
type InMemoryRepo struct {
	mu      sync.Mutex
	window  time.Duration
	entries map[string]*inMemoryEntry
	nowFn   func() time.Time
}

// NewInMemoryRepo creates an in-memory bridge token repository with the
// given freshness window.
func NewInMemoryRepo(window time.Duration) *InMemoryRepo {
	return &InMemoryRepo{
		window:  window,
		entries: make(map[string]*inMemoryEntry),
		nowFn:   time.Now,
	}
}

var _ Repo = (*InMemoryRepo)(nil)

// Issue stores a freshly minted token.
func (r *InMemoryRepo) Issue(_ context.Context, token *Token) error {
	if token == nil || token.Value == "" {
		return errors.Wrapf(errors.ErrInternal, "[InMemoryRepo Issue] empty token")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[token.Value] = &inMemoryEntry{token: *token}
	return nil
}

// Redeem consumes a token, idempotently within the freshness window.
func (r *InMemoryRepo) Redeem(_ context.Context, value string) (*Token, bool, error) {
	if value == "" {
		return nil, false, errors.ErrTokenNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[value]
	if !ok {
		return nil, false, errors.ErrTokenNotFound
	}

	if r.nowFn().Sub(entry.token.IssuedAt) > r.window {
		if entry.consumed {
			return nil, false, errors.ErrTokenReplayed
		}
		delete(r.entries, value)
		return nil, false, errors.ErrTokenExpired
	}

	replayed := entry.consumed
	entry.consumed = true
	cp := entry.token
	return &cp, replayed, nil
}
