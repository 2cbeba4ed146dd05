// Package http assembles the full API surface: middleware chain, public
// authentication routes, authenticated employee routes, and admin routes.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ackhandler "complyd/internal/ack/handler"
	"complyd/internal/audit"
	audithandler "complyd/internal/audit/handler"
	authhandler "complyd/internal/auth/handler"
	compliancehandler "complyd/internal/compliance/handler"
	"complyd/internal/platform/metrics"
	"complyd/internal/platform/middleware"
	policyhandler "complyd/internal/policy/handler"
	rosterhandler "complyd/internal/roster/handler"
	"complyd/pkg/domain"
	"complyd/pkg/platform/httputil"
)

// Deps carries everything the router needs wired in. Ready checks backing
// services (database, redis); nil means no external dependencies are
// configured.
type Deps struct {
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Validator  middleware.TokenValidator
	Recorder   *audit.Recorder
	Ready      func(ctx context.Context) error
	Auth       *authhandler.Handler
	Roster     *rosterhandler.Handler
	Policies   *policyhandler.Handler
	Acks       *ackhandler.Handler
	Compliance *compliancehandler.Handler
	AuditLogs  *audithandler.Handler
}

// New builds the router. The middleware order matters: recovery outermost,
// then request identity and metadata so every later stage (including the
// audit error trail) sees them.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Latency(d.Metrics))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.ResolveActor(d.Validator, d.Logger))
	r.Use(audit.ErrorTrail(d.Recorder))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReady(d.Ready, d.Logger))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public: login, the OTP flow, and policy reads.
	d.Auth.Register(r)
	d.Policies.RegisterReads(r)

	// Any authenticated employee.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.Logger))
		d.Acks.Register(r)
	})

	// Admin only.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(domain.RoleAdmin, d.Logger))
		d.Roster.Register(r)
		d.Policies.RegisterAdmin(r)
		d.Compliance.Register(r)
		d.AuditLogs.Register(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(ready func(ctx context.Context) error, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "readiness check failed", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
