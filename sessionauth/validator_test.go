package sessionauth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dottapps/auth-gateway/sessionauth"
	"github.com/dottapps/auth-gateway/sessioncookie"
	"github.com/dottapps/auth-gateway/sessionstore"
	"github.com/dottapps/auth-gateway/sessionstore/storefakes"
)

type fixture struct {
	codec     *sessioncookie.Codec
	store     *storefakes.FakeStore
	validator *sessionauth.Validator
}

func setup(t *testing.T) *fixture {
	t.Helper()
	codec, err := sessioncookie.NewCodec("validator-test-secret")
	require.NoError(t, err)
	store := storefakes.NewFakeStore()
	return &fixture{
		codec:     codec,
		store:     store,
		validator: sessionauth.New(codec, store),
	}
}

func (f *fixture) establishedCookie(t *testing.T) (string, string) {
	t.Helper()
	sessionID, err := f.store.Create(context.Background(), "user-1", "tenant-1")
	require.NoError(t, err)
	value, err := f.codec.Encode(sessioncookie.Session{
		SessionID: sessionID,
		UserID:    "user-1",
		TenantID:  "tenant-1",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	return sessionID, value
}

func TestValidateCanonicalCookie(t *testing.T) {
	f := setup(t)
	sessionID, value := f.establishedCookie(t)

	r := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	r.AddCookie(&http.Cookie{Name: "sid", Value: value})

	result, err := f.validator.Validate(context.Background(), r)
	require.NoError(t, err)
	require.True(t, result.Authenticated)
	require.Equal(t, sessionID, result.SessionID)
	require.Equal(t, "user-1", result.UserID)
	require.Equal(t, "tenant-1", result.TenantID)
	require.Empty(t, result.ClearNames)
}

func TestValidateNormalizesLegacyAlias(t *testing.T) {
	f := setup(t)
	sessionID, value := f.establishedCookie(t)

	// Only the oldest legacy alias is present; the result is
	// indistinguishable from a canonical-cookie request.
	r := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	r.AddCookie(&http.Cookie{Name: "dott_auth_session", Value: value})

	result, err := f.validator.Validate(context.Background(), r)
	require.NoError(t, err)
	require.True(t, result.Authenticated)
	require.Equal(t, sessionID, result.SessionID)
}

func TestValidateNoCookies(t *testing.T) {
	f := setup(t)
	r := httptest.NewRequest(http.MethodGet, "/auth/session", nil)

	result, err := f.validator.Validate(context.Background(), r)
	require.NoError(t, err)
	require.False(t, result.Authenticated)
	require.Empty(t, result.ClearNames)
	require.False(t, result.Retryable)
}

func TestValidateSessionGoneClearsEveryAlias(t *testing.T) {
	f := setup(t)
	value, err := f.codec.Encode(sessioncookie.Session{
		SessionID: "sess-revoked",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	r.AddCookie(&http.Cookie{Name: "sid", Value: value})

	result, err := f.validator.Validate(context.Background(), r)
	require.NoError(t, err)
	require.False(t, result.Authenticated)
	require.ElementsMatch(t, sessioncookie.Names(), result.ClearNames)
}

func TestValidateStoreUnreachableKeepsCookies(t *testing.T) {
	f := setup(t)
	_, value := f.establishedCookie(t)
	f.store.Unreachable = true

	r := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	r.AddCookie(&http.Cookie{Name: "sid", Value: value})

	result, err := f.validator.Validate(context.Background(), r)
	require.NoError(t, err)
	require.False(t, result.Authenticated)
	require.True(t, result.Retryable)
	require.Empty(t, result.ClearNames)
}

func TestValidateTamperedCookieClearsOnlyThatCookie(t *testing.T) {
	f := setup(t)

	r := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	r.AddCookie(&http.Cookie{Name: "appSession", Value: "forged-value"})

	result, err := f.validator.Validate(context.Background(), r)
	require.NoError(t, err)
	require.False(t, result.Authenticated)
	require.Equal(t, []string{"appSession"}, result.ClearNames)
}

var _ sessionstore.Client = (*storefakes.FakeStore)(nil)
