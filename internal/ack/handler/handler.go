package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"complyd/internal/ack"
	"complyd/internal/ack/service"
	"complyd/internal/platform/metrics"
	dErrors "complyd/pkg/domain-errors"
	"complyd/pkg/platform/httputil"
	"complyd/pkg/requestcontext"
)

// Service defines the interface for acknowledgment operations.
type Service interface {
	Acknowledge(ctx context.Context, policyID, employeeID string) (*ack.Record, error)
	PoliciesWithStatus(ctx context.Context, employeeID string) ([]*service.PolicyWithStatus, error)
}

// Handler handles acknowledgment endpoints. Both routes act on behalf of the
// authenticated caller; there is no way to acknowledge for someone else.
type Handler struct {
	acks    Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(ackService Service, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{acks: ackService, metrics: m, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/policies/{policyID}/ack", h.handleAcknowledge)
	r.Get("/policies/_me/with-status", h.handleMyPolicies)
}

func (h *Handler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	record, err := h.acks.Acknowledge(ctx, chi.URLParam(r, "policyID"), actor.ID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to record acknowledgment",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	h.metrics.AcknowledgmentsRecorded.Inc()
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleMyPolicies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	annotated, err := h.acks.PoliciesWithStatus(ctx, actor.ID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to list policies with status",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	if annotated == nil {
		annotated = []*service.PolicyWithStatus{}
	}
	httputil.WriteJSON(w, http.StatusOK, annotated)
}
