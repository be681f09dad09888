package bridgetoken

import (
	"context"
	"time"
)

// Token is the short-lived, single-use handoff between the OAuth
// exchange and session establishment. It carries the session id
// candidate so establishment never re-runs the exchange.
type Token struct {
	Value     string    `json:"value"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	TenantID  string    `json:"tenant_id,omitempty"`
	ReturnURL string    `json:"return_url,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Repo stores issued bridge tokens for the freshness window.
//
// Redeem is the serialization point for duplicate submissions: the
// first call for a value consumes the token; further calls inside the
// freshness window return the same payload with replayed=true so the
// establishment endpoint stays idempotent. Outside the window Redeem
// fails with ErrTokenExpired (never issued or aged out) or
// ErrTokenReplayed (consumed, window elapsed).
type Repo interface {
	Issue(ctx context.Context, token *Token) error
	Redeem(ctx context.Context, value string) (token *Token, replayed bool, err error)
}
