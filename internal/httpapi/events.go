package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/palletepro/palletepro/internal/session"
	"github.com/palletepro/palletepro/pkg/logger"
	"github.com/palletepro/palletepro/pkg/realtime"
)

// events streams dashboard signals over SSE. The first patch is sent on
// connect; afterwards one patch follows each burst of changes to the user's
// tables.
func (a *API) events(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		info := classifyError(err)
		writeEnvelopeError(w, r, info)
		return
	}

	ctx := r.Context()
	log := a.log.With(logger.UserID(u.ID), logger.Component("events"))

	// capacity one coalesces bursts into a single refresh
	changed := make(chan realtime.Change, 1)
	unsubscribe := a.hub.Subscribe(ctx, realtime.Filter{UserID: u.ID}, func(c realtime.Change) {
		select {
		case changed <- c:
		default:
		}
	})
	defer unsubscribe()

	sse := datastar.NewSSE(w, r)

	if err := a.patchDashboard(ctx, sse, u, nil); err != nil {
		log.WarnContext(ctx, "initial dashboard patch failed", logger.Error(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-changed:
			if err := a.patchDashboard(ctx, sse, u, &c); err != nil {
				if ctx.Err() == nil {
					log.WarnContext(ctx, "dashboard patch failed", logger.Error(err), slog.String("table", c.Table))
				}
				return
			}
		}
	}
}

type dashboardSignals struct {
	Stats      any              `json:"stats"`
	Access     any              `json:"access"`
	LastChange *realtime.Change `json:"lastChange,omitempty"`
}

func (a *API) patchDashboard(ctx context.Context, sse *datastar.ServerSentEventGenerator, u session.User, c *realtime.Change) error {
	st, err := a.records.Stats(ctx, u)
	if err != nil {
		return err
	}
	acc, err := a.accessFor(ctx, u.ID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(dashboardSignals{Stats: st, Access: acc.Access, LastChange: c})
	if err != nil {
		return err
	}
	return sse.PatchSignals(data)
}
