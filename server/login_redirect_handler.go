package server

import (
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/dottapps/auth-gateway/authflow"
	"github.com/dottapps/auth-gateway/sessioncookie"
)

// LoginRedirectHandler starts an authorization round trip: it mints a
// PKCE/state transaction, persists it in short-lived cookies and the
// flow-state repo, and 302s to the provider's authorization URL.
func (s *Server) LoginRedirectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnURL := r.URL.Query().Get("returnUrl")
		platform := r.URL.Query().Get("platform")

		txn, err := authflow.NewTransaction(returnURL, platform)
		if err != nil {
			log.Error().Err(err).Msg("failed to create authorization transaction")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		if err := s.flowStates.Upsert(r.Context(), txn); err != nil {
			log.Error().Err(err).Msg("failed to persist authorization transaction")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		// A new login must never mix with the remains of an old one.
		sessioncookie.ClearAll(w, r, s.config.GetCookieDomain())
		s.setFlowCookies(w, r, txn.State, txn.CodeVerifier)

		payload, err := authflow.DecodeState(txn.State)
		if err != nil {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		authURL := s.oauth.AuthCodeURL(
			txn.State,
			oauth2.SetAuthURLParam("code_challenge", txn.CodeChallenge),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"),
			oidc.Nonce(payload.Nonce),
		)
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}
