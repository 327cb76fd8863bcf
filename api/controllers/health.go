package controllers

import (
	"context"
	"net/http"

	"github.com/rmoralesf/vitalstack-backend/api/responses"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
	"github.com/rmoralesf/vitalstack-backend/pkg/logger"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness only.
func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness: database and cache must both respond.
func HealthReady(database, cache Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		status := map[string]string{"service": "ok", "database": "ok", "cache": "ok"}
		healthy := true
		if database == nil || database.Ping(ctx) != nil {
			status["database"] = "unreachable"
			healthy = false
		}
		if cache == nil || cache.Ping(ctx) != nil {
			status["cache"] = "unreachable"
			healthy = false
		}

		if !healthy {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unreachable").WithDetails(status))
			return
		}
		responses.WriteSuccess(w, status)
	}
}
