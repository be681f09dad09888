package sessionauth

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dottapps/auth-gateway/internal/errors"
	"github.com/dottapps/auth-gateway/sessioncookie"
	"github.com/dottapps/auth-gateway/sessionstore"
)

// AuthResult is the outcome of validating a request's cookies.
//
// ClearNames lists the cookie names the caller must expire in its
// response. It is either empty, the single cookie that failed to
// decode, or the full managed set — clearing a subset of the aliases
// is treated as a defect, so callers always clear exactly what is
// listed here.
type AuthResult struct {
	Authenticated bool
	SessionID     string
	UserID        string
	TenantID      string

	ClearNames []string
	// Retryable marks a negative result caused by store
	// unreachability. Cookies are kept; the caller may retry.
	Retryable bool
}

// Validator resolves a request's session cookies to one canonical
// session identifier and checks it against the backend store. Cookie
// presence alone never authenticates a request.
type Validator struct {
	codec *sessioncookie.Codec
	store sessionstore.Client
}

func New(codec *sessioncookie.Codec, store sessionstore.Client) *Validator {
	return &Validator{codec: codec, store: store}
}

// Validate resolves the canonical cookie first, then legacy aliases in
// fixed priority order, and confirms the referenced session with the
// store. Callers never learn which alias matched.
func (v *Validator) Validate(ctx context.Context, r *http.Request) (AuthResult, error) {
	value, matchedName, ok := sessioncookie.FromRequest(r)
	if !ok {
		return AuthResult{}, nil
	}

	session, err := v.codec.Decode(value)
	if err != nil {
		// Tampered or corrupt cookie. Only the offending cookie is
		// cleared; a sibling alias may still carry a valid value.
		log.Debug().Str("cookie", matchedName).Err(err).Msg("session cookie decode failed")
		return AuthResult{ClearNames: []string{matchedName}}, nil
	}

	record, err := v.store.Validate(ctx, session.SessionID)
	switch {
	case err == nil:
		return AuthResult{
			Authenticated: true,
			SessionID:     record.SessionID,
			UserID:        record.UserID,
			TenantID:      record.TenantID,
		}, nil
	case errors.Is(err, errors.ErrSessionNotFound):
		// Definitive: the session is gone. Every alias must go with it.
		return AuthResult{ClearNames: sessioncookie.Names()}, nil
	case errors.Is(err, errors.ErrStoreUnreachable):
		// Transient. Never log a user out over a network blip.
		return AuthResult{Retryable: true}, nil
	default:
		return AuthResult{}, errors.Wrapf(err, "[Validator Validate] session %s", session.SessionID)
	}
}
