package errors

import (
	"errors"
	"fmt"
)

// Common error types for the auth gateway
var (
	// OAuth flow errors
	ErrCsrfMismatch     = errors.New("state does not match issued value")
	ErrFlowStateMissing = errors.New("authorization flow state missing or expired")
	ErrExchangeFailed   = errors.New("authorization code exchange failed")

	// Bridge token errors
	ErrTokenExpired  = errors.New("bridge token expired")
	ErrTokenReplayed = errors.New("bridge token already consumed")
	ErrTokenNotFound = errors.New("bridge token not found")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	// Backend session store errors
	ErrStoreUnreachable = errors.New("session store unreachable")

	// Onboarding errors
	ErrOnboardingStateInconsistent = errors.New("no onboarding record for a valid session")
	ErrUserNotFound                = errors.New("user not found")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
