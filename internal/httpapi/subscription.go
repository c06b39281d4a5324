package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/palletepro/palletepro/pkg/subscription"
)

type accessView struct {
	subscription.Access
	TrialEndingSoon bool                       `json:"trialEndingSoon"`
	Subscription    *subscription.Subscription `json:"subscription,omitempty"`
}

func (a *API) accessFor(ctx context.Context, userID string) (accessView, error) {
	sub, err := a.subs.Get(ctx, userID)
	if err != nil && !errors.Is(err, subscription.ErrSubscriptionNotFound) {
		return accessView{}, err
	}
	acc := subscription.Evaluate(sub, a.now())
	return accessView{Access: acc, TrialEndingSoon: acc.TrialEndingSoon(), Subscription: sub}, nil
}

func (a *API) access(r *http.Request) Response {
	u, err := currentUser(r)
	if err != nil {
		return Error(err)
	}
	view, err := a.accessFor(r.Context(), u.ID)
	if err != nil {
		return Error(err)
	}
	return JSON(view)
}

func (a *API) startTrial(r *http.Request) Response {
	u, err := currentUser(r)
	if err != nil {
		return Error(err)
	}
	if _, err := a.subs.StartTrial(r.Context(), u.ID); err != nil {
		return Error(err)
	}
	view, err := a.accessFor(r.Context(), u.ID)
	if err != nil {
		return Error(err)
	}
	return JSON(view)
}

type awaitView struct {
	Activated bool `json:"activated"`
	accessView
}

// awaitActive long-polls until the user's paid subscription is active or
// the timeout passes. A timeout is not an error; the response reports the
// current access with activated=false.
func (a *API) awaitActive(r *http.Request) Response {
	u, err := currentUser(r)
	if err != nil {
		return Error(err)
	}

	timeout := defaultAwaitTimeout
	if raw := r.URL.Query().Get("timeout"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Error(errors.Join(ErrInvalidQuery, errors.New("timeout must be a positive duration such as 30s")))
		}
		timeout = min(d, maxAwaitTimeout)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	_, err = a.subs.AwaitActive(ctx, u.ID, a.poll)
	activated := err == nil
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return Error(err)
	}

	view, err := a.accessFor(r.Context(), u.ID)
	if err != nil {
		return Error(err)
	}
	return JSON(awaitView{Activated: activated, accessView: view})
}
