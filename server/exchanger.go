package server

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/dottapps/auth-gateway/internal/config"
)

// Identity is the verified provider identity extracted from an ID
// token on the callback.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Nonce   string
}

// Exchanger wraps the OAuth provider interaction so handlers (and
// tests) never touch the provider directly.
type Exchanger interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	VerifyIDToken(ctx context.Context, token *oauth2.Token) (*Identity, error)
}

// OidcExchanger implements Exchanger on a discovered OIDC provider
// using the standard oauth2 library.
type OidcExchanger struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

// NewOidcExchanger discovers the provider from the configured issuer
// and builds the oauth2 configuration with this gateway's callback as
// the redirect URI.
func NewOidcExchanger(ctx context.Context, cfg config.Config) (*OidcExchanger, error) {
	provider, err := oidc.NewProvider(ctx, cfg.GetProviderIssuer())
	if err != nil {
		return nil, fmt.Errorf("[NewOidcExchanger] failed to create OIDC provider: %w", err)
	}

	return &OidcExchanger{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GetClientID(),
			ClientSecret: cfg.GetClientSecret(),
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.GetBaseURL() + RouteCallback,
			Scopes:       cfg.GetOAuthScopes(),
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.GetClientID()}),
	}, nil
}

var _ Exchanger = (*OidcExchanger)(nil)

func (e *OidcExchanger) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return e.oauth2Config.AuthCodeURL(state, opts...)
}

func (e *OidcExchanger) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	return e.oauth2Config.Exchange(ctx, code, opts...)
}

// VerifyIDToken checks the ID token signature and claims and extracts
// the identity used to resolve the backend user.
func (e *OidcExchanger) VerifyIDToken(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("[VerifyIDToken] no ID token in response")
	}

	idToken, err := e.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("[VerifyIDToken] verification failed: %w", err)
	}

	var claims struct {
		Nonce string `json:"nonce"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("[VerifyIDToken] failed to extract claims: %w", err)
	}

	return &Identity{
		Subject: idToken.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Nonce:   claims.Nonce,
	}, nil
}
