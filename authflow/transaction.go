package authflow

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Transaction holds everything issued for one authorization round trip:
// the PKCE verifier/challenge pair and the CSRF state value. The state
// must come back byte-identical on the callback; the verifier never
// leaves the server side.
type Transaction struct {
	State         string
	CodeVerifier  string
	CodeChallenge string
	ReturnURL     string
	Platform      string
	CreatedAt     time.Time
}

// StatePayload is the JSON document carried inside the state parameter,
// base64url-encoded. Embedding returnURL and platform here lets them
// survive the provider redirect without a server-side lookup.
type StatePayload struct {
	Nonce     string `json:"nonce"`
	ReturnURL string `json:"return_url,omitempty"`
	Platform  string `json:"platform,omitempty"`
	IssuedAt  int64  `json:"iat"`
}

// NewTransaction creates a fresh authorization transaction with a
// 256-bit PKCE verifier and an independent random state value.
// The only error path is randomness-source failure.
func NewTransaction(returnURL, platform string) (*Transaction, error) {
	verifier, err := randomURLString(32)
	if err != nil {
		return nil, fmt.Errorf("[NewTransaction] verifier generation: %w", err)
	}

	nonce, err := randomURLString(16)
	if err != nil {
		return nil, fmt.Errorf("[NewTransaction] nonce generation: %w", err)
	}

	now := time.Now()
	payload := StatePayload{
		Nonce:     nonce,
		ReturnURL: returnURL,
		Platform:  platform,
		IssuedAt:  now.Unix(),
	}
	state, err := encodeState(payload)
	if err != nil {
		return nil, fmt.Errorf("[NewTransaction] state encoding: %w", err)
	}

	return &Transaction{
		State:         state,
		CodeVerifier:  verifier,
		CodeChallenge: CodeChallenge(verifier),
		ReturnURL:     returnURL,
		Platform:      platform,
		CreatedAt:     now,
	}, nil
}

// CodeChallenge derives the S256 PKCE challenge from a verifier.
func CodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// DecodeState unpacks the payload embedded in a state parameter.
// A decode failure means the state was not issued by this gateway.
func DecodeState(state string) (*StatePayload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil {
		return nil, fmt.Errorf("[DecodeState] base64 decode: %w", err)
	}
	var payload StatePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("[DecodeState] unmarshal: %w", err)
	}
	if payload.Nonce == "" {
		return nil, fmt.Errorf("[DecodeState] missing nonce")
	}
	return &payload, nil
}

func encodeState(payload StatePayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func randomURLString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
