package server

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

const (
	// stateCookieName carries the issued CSRF state across the
	// provider redirect round trip.
	stateCookieName = "auth_flow_state"
	// verifierCookieName carries the PKCE verifier alongside it.
	verifierCookieName = "auth_flow_verifier"
)

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// setFlowCookies persists the transaction's state and verifier for the
// duration of the authorization round trip.
func (s *Server) setFlowCookies(w http.ResponseWriter, r *http.Request, state, verifier string) {
	maxAge := int(s.config.GetFlowStateTTL().Seconds())
	for name, value := range map[string]string{
		stateCookieName:    state,
		verifierCookieName: verifier,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			HttpOnly: true,
			Secure:   getScheme(r) == "https",
			SameSite: http.SameSiteLaxMode,
			MaxAge:   maxAge,
		})
	}
}

// clearFlowCookies removes the transaction cookies once the flow has
// finished, succeeded or not.
func (s *Server) clearFlowCookies(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{stateCookieName, verifierCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   getScheme(r) == "https",
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

// redirectSignInError sends the user back to the sign-in entry point
// with a generic error flag. The flag names a category, never details.
func redirectSignInError(w http.ResponseWriter, r *http.Request, flag string) {
	http.Redirect(w, r, RouteSignIn+"?error="+url.QueryEscape(flag), http.StatusSeeOther)
}

// safeDestination rejects destinations that would bounce a response
// back into this gateway's own entry points (redirect-loop guard) or
// leave the site entirely. fallback is used instead.
func safeDestination(dest, fallback string) string {
	if dest == "" || !strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "//") {
		return fallback
	}
	for _, own := range []string{RouteLoginRedirect, RouteCallback, RouteSessionBridge, RouteEstablishSession, RouteSignIn} {
		if dest == own || strings.HasPrefix(dest, own+"?") {
			return fallback
		}
	}
	return dest
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
