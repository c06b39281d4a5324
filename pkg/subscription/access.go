package subscription

import (
	"math"
	"time"
)

// trialWarningDays is the remaining-trial threshold at which clients should
// warn the user.
const trialWarningDays = 3

// Access is the derived view of what a user may do right now.
type Access struct {
	HasAccess            bool `json:"hasAccess"`
	IsTrialActive        bool `json:"isTrialActive"`
	IsSubscriptionActive bool `json:"isSubscriptionActive"`
	DaysRemaining        int  `json:"daysRemaining"`
}

// TrialEndingSoon reports an active trial with at most three days left.
func (a Access) TrialEndingSoon() bool {
	return a.IsTrialActive && a.DaysRemaining <= trialWarningDays
}

// Evaluate derives Access from a subscription row at the instant now.
// A nil row yields the zero Access.
func Evaluate(sub *Subscription, now time.Time) Access {
	if sub == nil {
		return Access{}
	}

	var a Access
	a.IsTrialActive = sub.Status == StatusTrial && sub.TrialEndsAt != nil && sub.TrialEndsAt.After(now)
	a.IsSubscriptionActive = sub.Status == StatusActive && sub.ExpiresAt != nil && sub.ExpiresAt.After(now)
	a.HasAccess = a.IsTrialActive || a.IsSubscriptionActive

	switch {
	case a.IsTrialActive:
		a.DaysRemaining = daysUntil(*sub.TrialEndsAt, now)
	case a.IsSubscriptionActive:
		a.DaysRemaining = daysUntil(*sub.ExpiresAt, now)
	}

	return a
}

// daysUntil rounds the remaining window up to whole days.
func daysUntil(end, now time.Time) int {
	remaining := end.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}
