package server

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/dottapps/auth-gateway/authflow"
	"github.com/dottapps/auth-gateway/bridgetoken"
)

// OAuthCallbackHandler finishes an authorization round trip. The state
// returned by the provider must byte-equal the one stored at redirect
// time before any code exchange happens; a mismatch is a hard
// rejection with no session created.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Parse form to support both GET (query params) and POST (form_post response mode)
		// r.FormValue works for both query params and POST form data
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")

		// Provider-reported errors end the flow before any CSRF
		// checks; the user may simply retry sign-in.
		if errorParam != "" {
			log.Warn().Str("error", errorParam).Str("description", r.FormValue("error_description")).
				Msg("authorization rejected by provider")
			s.clearFlowCookies(w, r)
			redirectSignInError(w, r, "provider_rejected")
			return
		}

		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		stateCookie, err := r.Cookie(stateCookieName)
		if err != nil || stateCookie.Value == "" {
			http.Error(w, "Authorization flow state missing", http.StatusBadRequest)
			return
		}
		if subtle.ConstantTimeCompare([]byte(stateCookie.Value), []byte(state)) != 1 {
			log.Warn().Msg("state mismatch on OAuth callback")
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		verifierCookie, err := r.Cookie(verifierCookieName)
		if err != nil || verifierCookie.Value == "" {
			http.Error(w, "Authorization flow state missing", http.StatusBadRequest)
			return
		}

		// Server-side consume enforces single use of the state even
		// though its contents travel in cookies.
		txn, err := s.flowStates.Consume(r.Context(), state)
		if err != nil {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		payload, err := authflow.DecodeState(state)
		if err != nil {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		s.clearFlowCookies(w, r)

		// Exchange authorization code for tokens using the stored verifier
		oauth2Token, err := s.oauth.Exchange(
			r.Context(),
			code,
			oauth2.SetAuthURLParam("code_verifier", verifierCookie.Value),
		)
		if err != nil {
			// Recoverable: the user can retry sign-in.
			log.Warn().Err(err).Msg("token exchange failed")
			redirectSignInError(w, r, "exchange_failed")
			return
		}

		identity, err := s.oauth.VerifyIDToken(r.Context(), oauth2Token)
		if err != nil {
			log.Warn().Err(err).Msg("ID token verification failed")
			redirectSignInError(w, r, "verification_failed")
			return
		}

		// Validate nonce to prevent replay attacks
		if identity.Nonce != payload.Nonce {
			http.Error(w, "Invalid nonce", http.StatusUnauthorized)
			return
		}

		user, err := s.store.ResolveUser(r.Context(), identity.Subject, identity.Email)
		if err != nil {
			log.Error().Err(err).Msg("failed to resolve backend user")
			redirectSignInError(w, r, "signin_failed")
			return
		}

		sessionID, err := s.store.Create(r.Context(), user.UserID, user.TenantID)
		if err != nil {
			log.Error().Err(err).Msg("failed to create session")
			redirectSignInError(w, r, "signin_failed")
			return
		}

		// Hand off to establishment via a single-use bridge token; the
		// exchange never has to run again.
		token := &bridgetoken.Token{
			Value:     generateRandomString(32),
			SessionID: sessionID,
			UserID:    user.UserID,
			TenantID:  user.TenantID,
			ReturnURL: txn.ReturnURL,
			IssuedAt:  time.Now(),
		}
		if err := s.bridgeTokens.Issue(r.Context(), token); err != nil {
			log.Error().Err(err).Msg("failed to issue bridge token")
			redirectSignInError(w, r, "signin_failed")
			return
		}

		http.Redirect(w, r, RouteSessionBridge+"?token="+url.QueryEscape(token.Value), http.StatusSeeOther)
	}
}
