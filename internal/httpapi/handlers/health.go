package handlers

import (
	"context"
	"net/http"
	"time"

	"demoreel/internal/httpkit"
)

// Health reports liveness; ?deep=true also checks dependencies.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	health := map[string]any{
		"status":  "ok",
		"service": "demoreel-api",
		"version": "0.1.0",
	}

	if r.URL.Query().Get("deep") == "true" {
		checks := map[string]map[string]any{
			"postgres": check(ctx, h.jobs.Ping),
			"redis":    check(ctx, h.queue.Ping),
			"storage":  {"status": "ok", "provider": h.sp.Provider()},
		}
		health["checks"] = checks

		for name, c := range checks {
			if c["status"] != "ok" {
				health["status"] = "degraded"
				h.log.FromContext(ctx).Warn("health check degraded", "check", name, "error", c["error"])
			}
		}
	}

	httpkit.WriteJSON(w, http.StatusOK, health)
}

func check(ctx context.Context, ping func(context.Context) error) map[string]any {
	start := time.Now()
	result := map[string]any{"status": "ok"}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := ping(checkCtx); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}
	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}
