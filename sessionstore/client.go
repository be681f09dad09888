package sessionstore

import (
	"context"
	"time"
)

// SessionRecord is the backend's authoritative view of a session.
type SessionRecord struct {
	SessionID      string    `json:"session_id"`
	UserID         string    `json:"user_id"`
	TenantID       string    `json:"tenant_id,omitempty"`
	IssuedAt       time.Time `json:"issued_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// OnboardingRecord is the server-confirmed onboarding progress for a
// user. CompletedSteps is append-only; the gateway never rewrites it
// wholesale.
type OnboardingRecord struct {
	CurrentStep    string   `json:"current_step"`
	CompletedSteps []string `json:"completed_steps"`
	TenantID       string   `json:"tenant_id,omitempty"`
}

// UserRecord is the backend user referenced by a session.
type UserRecord struct {
	UserID     string           `json:"user_id"`
	Email      string           `json:"email"`
	TenantID   string           `json:"tenant_id,omitempty"`
	Plan       string           `json:"plan,omitempty"`
	Onboarding OnboardingRecord `json:"onboarding"`
}

// HeartbeatResult reports whether the backend wants the client to
// refresh its session material.
type HeartbeatResult struct {
	RefreshRequired bool `json:"refresh_required"`
}

// Client is the gateway's interface to the external session service.
// Implementations must distinguish errors.ErrSessionNotFound (the
// record definitively does not exist) from errors.ErrStoreUnreachable
// (transient; callers must not clear cookies on it).
type Client interface {
	Create(ctx context.Context, userID, tenantID string) (string, error)
	Validate(ctx context.Context, sessionID string) (*SessionRecord, error)
	Delete(ctx context.Context, sessionID string) error
	Heartbeat(ctx context.Context, sessionID string) (HeartbeatResult, error)

	// ResolveUser maps a verified OAuth identity onto a backend user,
	// creating one on first sign-in.
	ResolveUser(ctx context.Context, subject, email string) (*UserRecord, error)
	GetUser(ctx context.Context, userID string) (*UserRecord, error)
	GetOnboarding(ctx context.Context, userID string) (*OnboardingRecord, error)
	PutOnboarding(ctx context.Context, userID string, record OnboardingRecord) error
}
