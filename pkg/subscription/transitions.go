package subscription

import (
	"slices"
	"strings"
	"time"
)

// Provider statuses that drive a transition.
const (
	EventPaid     = "paid"
	EventExpired  = "expired"
	EventCanceled = "canceled"
)

// Outcome names what a webhook did to the row.
type Outcome string

const (
	OutcomeActivated   Outcome = "activated"
	OutcomeDeactivated Outcome = "deactivated"
	OutcomeIgnored     Outcome = "ignored"
)

// transition moves a row from one of `from` to `to` when a provider status
// in `on` arrives. apply mutates the row in place.
type transition struct {
	from    []Status
	on      []string
	to      Status
	outcome Outcome
	apply   func(sub *Subscription, periodDays int, now time.Time)
}

var transitions = []transition{
	{
		from:    []Status{StatusPending, StatusActive},
		on:      []string{EventPaid},
		to:      StatusActive,
		outcome: OutcomeActivated,
		apply: func(sub *Subscription, periodDays int, now time.Time) {
			sub.StartedAt = timePtr(now)
			sub.ExpiresAt = timePtr(now.AddDate(0, 0, periodDays))
			sub.TrialEndsAt = nil
		},
	},
	{
		from:    []Status{StatusPending, StatusActive},
		on:      []string{EventExpired, EventCanceled},
		to:      StatusInactive,
		outcome: OutcomeDeactivated,
		apply: func(sub *Subscription, _ int, _ time.Time) {
			sub.ProviderTransactionID = ""
		},
	},
}

// normalizeEvent lower-cases and trims a provider status.
func normalizeEvent(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// findTransition returns the transition for the row's current status and the
// reported provider status.
func findTransition(current Status, event string) (transition, bool) {
	for _, t := range transitions {
		if slices.Contains(t.from, current) && slices.Contains(t.on, event) {
			return t, true
		}
	}
	return transition{}, false
}

// applyNotification returns the updated copy of sub and the outcome. When no
// transition matches, sub is returned untouched with OutcomeIgnored.
func applyNotification(sub *Subscription, event string, periodDays int, now time.Time) (*Subscription, Outcome) {
	t, ok := findTransition(sub.Status, normalizeEvent(event))
	if !ok {
		return sub, OutcomeIgnored
	}

	next := sub.Clone()
	next.Status = t.to
	t.apply(next, periodDays, now)
	next.UpdatedAt = now
	return next, t.outcome
}
