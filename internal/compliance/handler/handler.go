package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"complyd/internal/compliance"
	"complyd/pkg/platform/httputil"
	"complyd/pkg/requestcontext"
)

// Service defines the interface for compliance reporting.
type Service interface {
	Summarize(ctx context.Context) (*compliance.Summary, error)
}

// Handler serves the compliance dashboard summary. Admin-gated by the router.
type Handler struct {
	compliance Service
	logger     *slog.Logger
}

func New(complianceService Service, logger *slog.Logger) *Handler {
	return &Handler{compliance: complianceService, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/compliance/summary", h.handleSummary)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.compliance.Summarize(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to compute compliance summary",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, summary)
}
