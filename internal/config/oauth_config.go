package config

import (
	"strings"
	"time"
)

type OAuthConfig interface {
	GetProviderIssuer() string
	GetClientID() string
	GetClientSecret() string
	GetOAuthScopes() []string
	GetFlowStateTTL() time.Duration
	GetVerifierLength() int
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetProviderIssuer() string {
	return GetEnv("OAUTH_ISSUER", "https://accounts.google.com")
}

func (OAuth) GetClientID() string {
	return GetEnv("OAUTH_CLIENT_ID", "")
}

func (OAuth) GetClientSecret() string {
	return GetEnv("OAUTH_CLIENT_SECRET", "")
}

func (OAuth) GetOAuthScopes() []string {
	scopes := GetEnv("OAUTH_SCOPES", "openid profile email")
	return strings.Fields(scopes)
}

// GetFlowStateTTL bounds how long an authorization round trip may take.
// Transaction cookies and the server-side flow state share this TTL.
func (OAuth) GetFlowStateTTL() time.Duration {
	return 10 * time.Minute
}

func (OAuth) GetVerifierLength() int {
	return 32 // 32 bytes = 256 bits
}
