package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dottapps/auth-gateway/internal/errors"
	"github.com/dottapps/auth-gateway/sessionauth"
	"github.com/dottapps/auth-gateway/sessioncookie"
)

type sessionUser struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId,omitempty"`
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *sessionUser `json:"user,omitempty"`
	SessionID     string       `json:"sessionId,omitempty"`
	Retryable     bool         `json:"retryable,omitempty"`
}

// SessionInfoHandler reports whether the request carries a live
// session. A negative answer clears cookies only when the store
// definitively reported the session gone.
func (s *Server) SessionInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.validator.Validate(r.Context(), r)
		if err != nil {
			log.Error().Err(err).Msg("session validation failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
			return
		}

		s.applyCookieClearing(w, r, result)

		if !result.Authenticated {
			if result.Retryable {
				w.Header().Set("Retry-After", "1")
			}
			writeJSON(w, http.StatusUnauthorized, sessionResponse{Retryable: result.Retryable})
			return
		}

		writeJSON(w, http.StatusOK, sessionResponse{
			Authenticated: true,
			SessionID:     result.SessionID,
			User:          &sessionUser{ID: result.UserID, TenantID: result.TenantID},
		})
	}
}

// LogoutHandler clears every cookie variant and revokes the backend
// session. Cookie clearing is unconditional: logout is an explicit
// user intent, unlike the validator's transient-failure policy.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if value, _, ok := sessioncookie.FromRequest(r); ok {
			if session, err := s.codec.Decode(value); err == nil {
				if err := s.store.Delete(r.Context(), session.SessionID); err != nil {
					// Best effort; the cookie bundle goes regardless.
					log.Warn().Err(err).Str("session_id", session.SessionID).Msg("backend session delete failed")
				}
			}
		}

		sessioncookie.ClearAll(w, r, s.config.GetCookieDomain())
		writeJSON(w, http.StatusOK, map[string]bool{"loggedOut": true})
	}
}

// HeartbeatHandler relays a keep-alive to the backend store.
func (s *Server) HeartbeatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.validator.Validate(r.Context(), r)
		if err != nil {
			log.Error().Err(err).Msg("session validation failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
			return
		}

		s.applyCookieClearing(w, r, result)

		if !result.Authenticated {
			if result.Retryable {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "store_unreachable"})
				return
			}
			writeJSON(w, http.StatusUnauthorized, sessionResponse{})
			return
		}

		hb, err := s.store.Heartbeat(r.Context(), result.SessionID)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]bool{"refreshRequired": hb.RefreshRequired})
		case errors.Is(err, errors.ErrSessionNotFound):
			sessioncookie.ClearAll(w, r, s.config.GetCookieDomain())
			writeJSON(w, http.StatusUnauthorized, sessionResponse{})
		case errors.Is(err, errors.ErrStoreUnreachable):
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "store_unreachable"})
		default:
			log.Error().Err(err).Msg("heartbeat failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		}
	}
}

// applyCookieClearing expires exactly the cookie names the validator
// flagged. All-or-single semantics live in the validator; partial
// clearing of the alias set never happens here.
func (s *Server) applyCookieClearing(w http.ResponseWriter, r *http.Request, result sessionauth.AuthResult) {
	if len(result.ClearNames) == 0 {
		return
	}
	if len(result.ClearNames) == len(sessioncookie.Names()) {
		sessioncookie.ClearAll(w, r, s.config.GetCookieDomain())
		return
	}
	for _, name := range result.ClearNames {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   s.config.GetCookieDomain(),
			HttpOnly: true,
			Secure:   getScheme(r) == "https",
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}
