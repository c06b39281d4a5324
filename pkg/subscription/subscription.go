package subscription

import "time"

// Status is the lifecycle state of a subscription row.
type Status string

const (
	StatusPending  Status = "pending"
	StatusTrial    Status = "trial"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusTrial, StatusActive, StatusInactive:
		return true
	}
	return false
}

// Subscription is the single per-user subscription row.
type Subscription struct {
	UserID string `json:"userId"`
	Status Status `json:"status"`
	PlanID string `json:"planId,omitempty"`
	Amount int64  `json:"amount,omitempty"` // minor units, informational

	TrialEndsAt *time.Time `json:"trialEndsAt,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`

	// ProviderTransactionID correlates the row with the last charge created
	// at the payment provider. Empty means no open charge.
	ProviderTransactionID string `json:"providerTransactionId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate without touching stored state.
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	c := *s
	c.TrialEndsAt = cloneTime(s.TrialEndsAt)
	c.ExpiresAt = cloneTime(s.ExpiresAt)
	c.StartedAt = cloneTime(s.StartedAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}
