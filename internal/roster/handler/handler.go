package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"complyd/internal/roster"
	"complyd/internal/roster/service"
	dErrors "complyd/pkg/domain-errors"
	"complyd/pkg/platform/httputil"
	"complyd/pkg/requestcontext"
)

// Service defines the interface for roster operations.
type Service interface {
	Create(ctx context.Context, input service.CreateEmployeeInput) (*roster.Employee, error)
	Get(ctx context.Context, employeeID string) (*roster.Employee, error)
	List(ctx context.Context) ([]*roster.Employee, error)
	Update(ctx context.Context, employeeID string, input service.UpdateEmployeeInput) (*roster.Employee, error)
	Delete(ctx context.Context, employeeID string) error
}

// Handler handles employee roster endpoints. All routes are admin-gated by
// the router.
type Handler struct {
	roster Service
	logger *slog.Logger
}

func New(rosterService Service, logger *slog.Logger) *Handler {
	return &Handler{roster: rosterService, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/employees", h.handleCreate)
	r.Get("/employees", h.handleList)
	r.Get("/employees/{employeeID}", h.handleGet)
	r.Put("/employees/{employeeID}", h.handleUpdate)
	r.Delete("/employees/{employeeID}", h.handleDelete)
}

type createEmployeeRequest struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Role      string `json:"role"`
}

type updateEmployeeRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	Role      *string `json:"role"`
}

// employeeResponse never carries the password hash.
type employeeResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toEmployeeResponse(e *roster.Employee) employeeResponse {
	return employeeResponse{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     e.Email,
		Phone:     e.Phone,
		Address:   e.Address,
		Role:      string(e.Role),
		CreatedAt: e.CreatedAt,
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	employee, err := h.roster.Create(ctx, service.CreateEmployeeInput{
		ID:        req.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		Address:   req.Address,
		Role:      req.Role,
	})
	if err != nil {
		h.logWarn(ctx, "failed to create employee", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toEmployeeResponse(employee))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	employees, err := h.roster.List(ctx)
	if err != nil {
		h.logWarn(ctx, "failed to list employees", err)
		httputil.WriteError(w, err)
		return
	}

	out := make([]employeeResponse, 0, len(employees))
	for _, employee := range employees {
		out = append(out, toEmployeeResponse(employee))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	employee, err := h.roster.Get(ctx, chi.URLParam(r, "employeeID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toEmployeeResponse(employee))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	employee, err := h.roster.Update(ctx, chi.URLParam(r, "employeeID"), service.UpdateEmployeeInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		Address:   req.Address,
		Role:      req.Role,
	})
	if err != nil {
		h.logWarn(ctx, "failed to update employee", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toEmployeeResponse(employee))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.roster.Delete(ctx, chi.URLParam(r, "employeeID")); err != nil {
		h.logWarn(ctx, "failed to delete employee", err)
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
