package sessioncookie

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// Session is the payload carried by the session cookie. It references a
// backend session record; holding a decoded Session is never proof of
// validity on its own.
type Session struct {
	SessionID string
	UserID    string
	TenantID  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// DecodeError signals that a cookie value failed authentication or
// parsing. Callers treat the request as unauthenticated; retrying the
// same value can never succeed.
type DecodeError struct {
	cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("session cookie decode failed: %v", e.cause)
}

func (e *DecodeError) Unwrap() error { return e.cause }

// sessionClaims is the JWT claim set used on the wire.
type sessionClaims struct {
	UserID   string `json:"uid"`
	TenantID string `json:"tid,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session cookie values. Encoding uses HS256
// with a key derived from the master secret, so a forged or corrupted
// value fails closed in Decode.
type Codec struct {
	key []byte
}

const keyDerivationInfo = "auth-gateway/session-cookie/v1"

// NewCodec derives the cookie signing key from the master secret via
// HKDF-SHA256.
func NewCodec(masterSecret string) (*Codec, error) {
	if masterSecret == "" {
		return nil, fmt.Errorf("[NewCodec] master secret is required")
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(masterSecret), nil, []byte(keyDerivationInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("[NewCodec] key derivation: %w", err)
	}
	return &Codec{key: key}, nil
}

// Encode serializes a session into a signed, transport-safe value.
func (c *Codec) Encode(session Session) (string, error) {
	if session.SessionID == "" {
		return "", fmt.Errorf("[Codec Encode] sessionID is required")
	}

	claims := sessionClaims{
		UserID:   session.UserID,
		TenantID: session.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.SessionID,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("[Codec Encode] signing: %w", err)
	}
	return value, nil
}

// Decode verifies a cookie value and recovers the session payload.
// Any failure, including an unexpected signing method, tampering, or
// expiry, is returned as a *DecodeError.
func (c *Codec) Decode(value string) (Session, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(value, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Session{}, &DecodeError{cause: err}
	}
	if !token.Valid || claims.Subject == "" {
		return Session{}, &DecodeError{cause: fmt.Errorf("invalid token payload")}
	}

	session := Session{
		SessionID: claims.Subject,
		UserID:    claims.UserID,
		TenantID:  claims.TenantID,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}
