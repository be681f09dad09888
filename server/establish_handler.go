package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dottapps/auth-gateway/internal/errors"
	"github.com/dottapps/auth-gateway/onboarding"
	"github.com/dottapps/auth-gateway/sessioncookie"
)

// EstablishSessionHandler turns a bridge token into the canonical
// cookie bundle. Duplicate submissions of the same token inside the
// freshness window return the same bundle; the token repo serializes
// concurrent duplicates.
func (s *Server) EstablishSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value := r.FormValue("token")
		if value == "" {
			var body struct {
				Token string `json:"token"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				value = body.Token
			}
		}
		s.establish(w, r, value)
	}
}

// SessionBridgeHandler is the redirect landing for the OAuth callback:
// a thin GET wrapper over the same establishment path.
func (s *Server) SessionBridgeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.establish(w, r, r.URL.Query().Get("token"))
	}
}

func (s *Server) establish(w http.ResponseWriter, r *http.Request, value string) {
	if value == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing_token"})
		return
	}

	token, replayed, err := s.bridgeTokens.Redeem(r.Context(), value)
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrTokenExpired), errors.Is(err, errors.ErrTokenReplayed), errors.Is(err, errors.ErrTokenNotFound):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
		return
	default:
		log.Error().Err(err).Msg("bridge token redemption failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}
	if replayed {
		log.Debug().Str("session_id", token.SessionID).Msg("bridge token replayed within freshness window")
	}

	// The token only names a session id candidate; the store decides
	// whether it is actually live.
	record, err := s.store.Validate(r.Context(), token.SessionID)
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrSessionNotFound):
		sessioncookie.ClearAll(w, r, s.config.GetCookieDomain())
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "session_not_found"})
		return
	case errors.Is(err, errors.ErrStoreUnreachable):
		// Transient; the caller may retry with the same token.
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "store_unreachable"})
		return
	default:
		log.Error().Err(err).Msg("session validation failed during establishment")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}

	encoded, err := s.codec.Encode(sessioncookie.Session{
		SessionID: record.SessionID,
		UserID:    record.UserID,
		TenantID:  record.TenantID,
		IssuedAt:  record.IssuedAt,
		ExpiresAt: record.ExpiresAt,
	})
	if err != nil {
		log.Error().Err(err).Msg("cookie encoding failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}

	// Cookie lifetime mirrors the backend record and never exceeds
	// the configured session TTL.
	maxAge := int(time.Until(record.ExpiresAt).Seconds())
	if ttl := int(s.config.GetSessionTTL().Seconds()); maxAge > ttl {
		maxAge = ttl
	}
	if maxAge < 0 {
		maxAge = 0
	}
	sessioncookie.Write(w, r, sessioncookie.Bundle{
		SessionID: record.SessionID,
		Value:     encoded,
		MaxAge:    maxAge,
	}, s.config.GetCookieDomain())

	http.Redirect(w, r, s.resolveDestination(r, token.ReturnURL, record.UserID), http.StatusSeeOther)
}

// resolveDestination asks the onboarding resolver where a freshly
// established session should land. The backend record is authoritative;
// returnURL is honored only once onboarding is complete.
func (s *Server) resolveDestination(r *http.Request, returnURL, userID string) string {
	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			// Valid session but no user record: send to account
			// recovery instead of silently restarting onboarding.
			return "/account/recovery"
		}
		log.Warn().Err(err).Str("user_id", userID).Msg("user lookup failed after establishment")
		return "/"
	}

	resolution, err := onboarding.Resolve(user)
	if err != nil {
		if errors.Is(err, errors.ErrOnboardingStateInconsistent) {
			return "/account/recovery"
		}
		log.Warn().Err(err).Str("user_id", userID).Msg("onboarding resolution failed")
		return "/"
	}

	if resolution.NextStep == onboarding.StepComplete && returnURL != "" {
		return safeDestination(returnURL, resolution.RedirectURL)
	}
	return safeDestination(resolution.RedirectURL, "/")
}
