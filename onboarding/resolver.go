package onboarding

import (
	"fmt"

	"github.com/dottapps/auth-gateway/internal/errors"
	"github.com/dottapps/auth-gateway/sessionstore"
)

// Step is a stage of the guided tenant setup flow.
type Step string

const (
	StepNotStarted   Step = "not_started"
	StepBusinessInfo Step = "business_info"
	StepSubscription Step = "subscription"
	StepPayment      Step = "payment"
	StepSetup        Step = "setup"
	StepComplete     Step = "complete"
)

// PlanFree marks tenants that skip the payment step.
const PlanFree = "free"

// stepOrder is the fixed forward-only progression. A resolved step
// never moves to an earlier index than the highest step the backend
// has recorded as completed.
var stepOrder = []Step{
	StepNotStarted,
	StepBusinessInfo,
	StepSubscription,
	StepPayment,
	StepSetup,
	StepComplete,
}

var stepIndex = func() map[Step]int {
	m := make(map[Step]int, len(stepOrder))
	for i, s := range stepOrder {
		m[s] = i
	}
	return m
}()

// Index returns the position of a step in the progression, or -1 for
// an unknown step.
func (s Step) Index() int {
	i, ok := stepIndex[s]
	if !ok {
		return -1
	}
	return i
}

// Resolution is the routing decision for a validated user.
type Resolution struct {
	NextStep    Step
	RedirectURL string
}

// Resolve computes the next onboarding step and target redirect for a
// backend user record. It is a pure function of the record: calling it
// twice with the same input yields the same result. The record always
// comes from the validated session's backend user, never from client
// hints.
func Resolve(user *sessionstore.UserRecord) (Resolution, error) {
	if user == nil || user.UserID == "" {
		return Resolution{}, errors.ErrOnboardingStateInconsistent
	}

	record := user.Onboarding
	current := Step(record.CurrentStep)
	if current == "" {
		current = StepNotStarted
	}
	if current.Index() < 0 {
		return Resolution{}, errors.Wrapf(errors.ErrOnboardingStateInconsistent,
			"unknown step %q for user %s", record.CurrentStep, user.UserID)
	}

	// Floor the progression at the highest server-confirmed completed
	// step so a stale currentStep can never send the user backwards.
	effective := current.Index()
	for _, completed := range record.CompletedSteps {
		if idx := Step(completed).Index(); idx > effective {
			effective = idx
		}
	}

	next := stepOrder[len(stepOrder)-1]
	if effective+1 < len(stepOrder) {
		next = stepOrder[effective+1]
	}
	if next == StepPayment && user.Plan == PlanFree {
		next = StepSetup
	}

	if next == StepComplete {
		tenantID := record.TenantID
		if tenantID == "" {
			tenantID = user.TenantID
		}
		if tenantID == "" {
			return Resolution{}, errors.Wrapf(errors.ErrOnboardingStateInconsistent,
				"onboarding complete but no tenant for user %s", user.UserID)
		}
		return Resolution{
			NextStep:    StepComplete,
			RedirectURL: fmt.Sprintf("/tenant/%s/dashboard", tenantID),
		}, nil
	}

	return Resolution{
		NextStep:    next,
		RedirectURL: fmt.Sprintf("/onboarding/%s", next),
	}, nil
}
