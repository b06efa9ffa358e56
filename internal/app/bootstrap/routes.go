// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	consolefeature "github.com/wanderhub/travelhub/internal/app/features/console"
	healthfeature "github.com/wanderhub/travelhub/internal/app/features/health"
	"github.com/wanderhub/travelhub/internal/app/system/auth"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. The router loads the signed-in operator from the
// session cookie on every request and mounts:
//   - /health   liveness and database readiness
//   - /metrics  Prometheus scrape endpoint
//   - /console  the admin console JSON API
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if deps.Console == nil || deps.Console.Registry == nil {
		return nil, errors.New("console services not started")
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Console.Registry, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", promhttp.HandlerFor(deps.Console.Metrics, promhttp.HandlerOpts{}))

	consoleHandler := consolefeature.NewHandler(deps.Console.Registry, sessionMgr, logger)
	r.Mount("/console", consolefeature.Routes(consoleHandler, sessionMgr))

	return r, nil
}
