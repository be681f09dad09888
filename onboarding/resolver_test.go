package onboarding_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dottapps/auth-gateway/internal/errors"
	"github.com/dottapps/auth-gateway/onboarding"
	"github.com/dottapps/auth-gateway/sessionstore"
)

func user(step string, completed []string, plan, tenantID string) *sessionstore.UserRecord {
	return &sessionstore.UserRecord{
		UserID:   "user-1",
		Plan:     plan,
		TenantID: tenantID,
		Onboarding: sessionstore.OnboardingRecord{
			CurrentStep:    step,
			CompletedSteps: completed,
			TenantID:       tenantID,
		},
	}
}

func TestResolveForwardTable(t *testing.T) {
	tests := []struct {
		name string
		in   *sessionstore.UserRecord
		want onboarding.Step
	}{
		{"fresh user", user("not_started", nil, "", ""), onboarding.StepBusinessInfo},
		{"business info done", user("business_info", []string{"business_info"}, "", ""), onboarding.StepSubscription},
		{"paid plan pays", user("subscription", []string{"business_info"}, "professional", ""), onboarding.StepPayment},
		{"free plan skips payment", user("subscription", []string{"business_info"}, "free", ""), onboarding.StepSetup},
		{"payment done", user("payment", []string{"business_info", "subscription"}, "professional", ""), onboarding.StepSetup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := onboarding.Resolve(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, res.NextStep)
			require.Equal(t, "/onboarding/"+string(tt.want), res.RedirectURL)
		})
	}
}

func TestResolveCompleteRedirectsToTenantDashboard(t *testing.T) {
	res, err := onboarding.Resolve(user("setup", []string{"business_info", "subscription", "payment", "setup"}, "professional", "tenant-7"))
	require.NoError(t, err)
	require.Equal(t, onboarding.StepComplete, res.NextStep)
	require.Equal(t, "/tenant/tenant-7/dashboard", res.RedirectURL)
}

func TestResolveNeverRegresses(t *testing.T) {
	// A stale currentStep cannot send the user backwards once the
	// backend recorded later steps as completed.
	res, err := onboarding.Resolve(user("business_info", []string{"business_info", "subscription"}, "professional", ""))
	require.NoError(t, err)
	require.Equal(t, onboarding.StepPayment, res.NextStep)
}

func TestResolveMonotonicOverGrowingCompletedSteps(t *testing.T) {
	steps := []string{"business_info", "subscription", "payment", "setup"}
	lastIndex := -1
	for i := range steps {
		u := user("business_info", steps[:i+1], "professional", "tenant-1")
		res, err := onboarding.Resolve(u)
		require.NoError(t, err)
		require.Greater(t, res.NextStep.Index(), lastIndex)
		lastIndex = res.NextStep.Index()
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	u := user("subscription", []string{"business_info"}, "free", "")
	first, err := onboarding.Resolve(u)
	require.NoError(t, err)
	second, err := onboarding.Resolve(u)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestResolveInconsistentStates(t *testing.T) {
	_, err := onboarding.Resolve(nil)
	require.ErrorIs(t, err, errors.ErrOnboardingStateInconsistent)

	_, err = onboarding.Resolve(&sessionstore.UserRecord{})
	require.ErrorIs(t, err, errors.ErrOnboardingStateInconsistent)

	_, err = onboarding.Resolve(user("time_travel", nil, "", ""))
	require.ErrorIs(t, err, errors.ErrOnboardingStateInconsistent)

	// Complete without a tenant is a backend inconsistency, not a
	// reason to restart onboarding.
	_, err = onboarding.Resolve(user("complete", nil, "professional", ""))
	require.ErrorIs(t, err, errors.ErrOnboardingStateInconsistent)
}
