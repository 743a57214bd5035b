package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/SeptianAdiraharja/Inventory/api/responses"
	"github.com/SeptianAdiraharja/Inventory/pkg/config"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
)

const envHeader = "X-Inventory-Env"

// Pinger is satisfied by db.Client and redis.Client.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every configured dependency. A nil pinger is skipped so
// redis can stay optional.
func HealthReady(cfg *config.Config, db Pinger, cache Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		deps := []struct {
			name string
			p    Pinger
		}{{"database", db}, {"redis", cache}}

		checks := map[string]string{}
		var failed error
		for _, dep := range deps {
			if dep.p == nil {
				continue
			}
			if err := dep.p.Ping(ctx); err != nil {
				checks[dep.name] = "down"
				if failed == nil {
					failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, dep.name+" unavailable").WithDetails(checks)
				}
				continue
			}
			checks[dep.name] = "up"
		}
		if failed != nil {
			responses.WriteError(r.Context(), logg, w, failed)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
