package sessioncookie

import "net/http"

// CanonicalName is the one cookie name new code reads and writes.
const CanonicalName = "sid"

// legacyAliases are older cookie names still present on clients from
// previous releases. All read/write paths go through this package so
// every alias always carries the same value as the canonical cookie.
// Priority order matters: the first match wins during resolution.
var legacyAliases = []string{"session_token", "appSession", "dott_auth_session"}

// Names returns every cookie name this gateway manages, canonical first.
func Names() []string {
	names := make([]string, 0, len(legacyAliases)+1)
	names = append(names, CanonicalName)
	names = append(names, legacyAliases...)
	return names
}

// Bundle is the full cookie set issued for one session.
type Bundle struct {
	SessionID string
	Value     string
	MaxAge    int
}

// Write sets the canonical cookie and every legacy alias to the same
// encoded value in a single response.
func Write(w http.ResponseWriter, r *http.Request, b Bundle, domain string) {
	for _, name := range Names() {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    b.Value,
			Path:     "/",
			Domain:   domain,
			HttpOnly: true,
			Secure:   isSecureRequest(r),
			SameSite: http.SameSiteLaxMode,
			MaxAge:   b.MaxAge,
		})
	}
}

// ClearAll expires every managed cookie name in one response. Partial
// clearing leaves stale aliases behind, so there is no single-name
// variant.
func ClearAll(w http.ResponseWriter, r *http.Request, domain string) {
	for _, name := range Names() {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   domain,
			HttpOnly: true,
			Secure:   isSecureRequest(r),
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

// FromRequest resolves the session cookie value for a request, probing
// the canonical name first and then each alias in priority order.
// The matched name is returned for logging only; callers never branch
// on it.
func FromRequest(r *http.Request) (value, matchedName string, ok bool) {
	for _, name := range Names() {
		cookie, err := r.Cookie(name)
		if err != nil || cookie.Value == "" {
			continue
		}
		return cookie.Value, name, true
	}
	return "", "", false
}

func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}
