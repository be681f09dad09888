package config

import "time"

type SessionConfig interface {
	GetCookieSecret() string
	GetCookieDomain() string
	GetSessionTTL() time.Duration
	GetBridgeTokenTTL() time.Duration
	GetStoreTimeout() time.Duration
	GetHeartbeatInterval() time.Duration
}

type Sessions struct{}

var _ SessionConfig = Sessions{}

// GetCookieSecret is the master secret the cookie codec derives its
// signing key from. Must be set outside of DEV.
func (Sessions) GetCookieSecret() string {
	return GetEnv("COOKIE_SECRET", "dev-only-insecure-secret")
}

func (Sessions) GetCookieDomain() string {
	return GetEnv("COOKIE_DOMAIN", "")
}

// GetSessionTTL mirrors the backend session TTL. Cookie MaxAge never
// exceeds this value.
func (Sessions) GetSessionTTL() time.Duration {
	return 24 * time.Hour
}

func (Sessions) GetBridgeTokenTTL() time.Duration {
	return 5 * time.Minute
}

func (Sessions) GetStoreTimeout() time.Duration {
	return 5 * time.Second
}

func (Sessions) GetHeartbeatInterval() time.Duration {
	return 60 * time.Second
}
