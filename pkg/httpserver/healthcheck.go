package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Check is a named readiness dependency.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// Liveness always answers 200 while the process can serve requests.
func Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"alive"}`))
}

// Readiness runs every check with a short timeout and reports per-check
// status. Any failure turns the response into a 503.
func Readiness(log *slog.Logger, checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, c := range checks {
			if err := c.Fn(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", "check", c.Name, "error", err)
				results[c.Name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			results[c.Name] = "up"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"ready": status == http.StatusOK, "checks": results})
	}
}
