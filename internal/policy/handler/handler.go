package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"complyd/internal/policy"
	"complyd/internal/policy/service"
	dErrors "complyd/pkg/domain-errors"
	"complyd/pkg/platform/httputil"
	"complyd/pkg/requestcontext"
)

// Service defines the interface for policy lifecycle operations.
type Service interface {
	Create(ctx context.Context, input service.CreatePolicyInput) (*policy.Policy, error)
	Get(ctx context.Context, policyID string) (*policy.Policy, error)
	List(ctx context.Context) ([]*policy.Policy, error)
	Update(ctx context.Context, policyID string, input service.UpdatePolicyInput) (*policy.Policy, error)
	SetStatus(ctx context.Context, policyID string, status string) (*policy.Policy, error)
	Delete(ctx context.Context, policyID string) error
}

// Handler handles policy management endpoints. Mutations are admin-gated by
// the router; reads are public.
type Handler struct {
	policies Service
	logger   *slog.Logger
}

func New(policyService Service, logger *slog.Logger) *Handler {
	return &Handler{policies: policyService, logger: logger}
}

// RegisterReads mounts the public read endpoints.
func (h *Handler) RegisterReads(r chi.Router) {
	r.Get("/policies", h.handleList)
	r.Get("/policies/{policyID}", h.handleGet)
}

// RegisterAdmin mounts the mutation endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/policies", h.handleCreate)
	r.Put("/policies/{policyID}", h.handleUpdate)
	r.Post("/policies/{policyID}/status", h.handleSetStatus)
	r.Delete("/policies/{policyID}", h.handleDelete)
}

type createPolicyRequest struct {
	PolicyID    string `json:"policyId"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Version     string `json:"version"`
}

type updatePolicyRequest struct {
	Title       *string `json:"title"`
	Subtitle    *string `json:"subtitle"`
	Description *string `json:"description"`
	Version     *string `json:"version"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.policies.Create(ctx, service.CreatePolicyInput{
		PolicyID:    req.PolicyID,
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Description: req.Description,
		Status:      req.Status,
		Version:     req.Version,
	})
	if err != nil {
		h.logWarn(ctx, "failed to create policy", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	policies, err := h.policies.List(ctx)
	if err != nil {
		h.logWarn(ctx, "failed to list policies", err)
		httputil.WriteError(w, err)
		return
	}

	if policies == nil {
		policies = []*policy.Policy{}
	}
	httputil.WriteJSON(w, http.StatusOK, policies)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := h.policies.Get(ctx, chi.URLParam(r, "policyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.policies.Update(ctx, chi.URLParam(r, "policyID"), service.UpdatePolicyInput{
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Description: req.Description,
		Version:     req.Version,
	})
	if err != nil {
		h.logWarn(ctx, "failed to update policy", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.policies.SetStatus(ctx, chi.URLParam(r, "policyID"), req.Status)
	if err != nil {
		h.logWarn(ctx, "failed to change policy status", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.policies.Delete(ctx, chi.URLParam(r, "policyID")); err != nil {
		h.logWarn(ctx, "failed to delete policy", err)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logWarn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
