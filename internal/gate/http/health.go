package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/invitegate/pkg/gatesdk"
	"github.com/aussiebroadwan/invitegate/pkg/httpx"
)

// Pinger is anything readiness depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LivezHandler godoc
//
//	@Summary		Liveness Check
//	@Description	Always 200 while the process is serving
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	gatesdk.HealthResponse	"status"
//	@Router			/livez [get].
func LivezHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, gatesdk.HealthResponse{Status: "ok"})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check
//	@Description	Pings the store and the cache
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	gatesdk.HealthResponse	"status, checks"
//	@Failure		503	{object}	gatesdk.HealthResponse	"status, checks - not ready"
//	@Router			/readyz [get].
func ReadyzHandler(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := gatesdk.HealthResponse{Status: "ok", Checks: make(map[string]string, len(deps))}
		status := http.StatusOK

		for name, dep := range deps {
			if err := dep.Ping(r.Context()); err != nil {
				resp.Checks[name] = "error: " + err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		httpx.NoCache(w)
		httpx.WriteJSON(w, status, resp)
	}
}
