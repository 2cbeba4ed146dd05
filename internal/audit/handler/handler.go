package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"complyd/internal/audit"
	dErrors "complyd/pkg/domain-errors"
	"complyd/pkg/platform/httputil"
	"complyd/pkg/requestcontext"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler serves the admin audit query endpoint. The role gate is applied by
// the router; this handler assumes an Admin actor.
type Handler struct {
	store  audit.Store
	logger *slog.Logger
}

func New(store audit.Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/audit-logs", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	page := positiveInt(q.Get("page"), 1)
	pageSize := positiveInt(q.Get("pageSize"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filters := audit.Filters{
		Action:       q.Get("action"),
		ResourceType: q.Get("resourceType"),
		ActorEmail:   q.Get("actorEmail"),
		IP:           q.Get("ip"),
		Status:       audit.Status(q.Get("status")),
	}

	result, err := h.store.List(ctx, filters, page, pageSize)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to query audit events",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to query audit events", err))
		return
	}

	if result.Items == nil {
		result.Items = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func positiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
