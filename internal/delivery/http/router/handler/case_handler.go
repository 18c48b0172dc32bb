package handler

import (
	"log/slog"
	"net/http"
	"sort"

	"caseflow/config"
	"caseflow/internal/delivery/http/middleware"
	"caseflow/internal/delivery/http/response"
	"caseflow/internal/domain/entity"
	"caseflow/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CaseHandler holds dependencies for support-case handlers.
type CaseHandler struct {
	uc     usecase.CaseUsecase
	cfg    *config.Config
	logger *slog.Logger
}

// NewCaseHandler is the constructor for CaseHandler, injected by Fx.
func NewCaseHandler(uc usecase.CaseUsecase, cfg *config.Config, logger *slog.Logger) *CaseHandler {
	return &CaseHandler{uc: uc, cfg: cfg, logger: logger}
}

type submitCaseRequest struct {
	Query          string `json:"query" validate:"required"`
	Language       string `json:"language"`
	ManufacturerID string `json:"manufacturer_id" validate:"required"`
}

type manufacturerReplyRequest struct {
	TaskNumber string `json:"task_number" validate:"required"`
	Reply      string `json:"reply" validate:"required"`
}

// Submit creates a new support case for the authenticated user. Language is
// auto-detected when the request leaves it empty.
func (h *CaseHandler) Submit(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "NOT_AUTHENTICATED", "Authentication required")
	}

	var req submitCaseRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid case input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid case input")
	}

	created, err := h.uc.Submit(c.Request().Context(), &usecase.SubmitCaseInput{
		OwnerID:        userID,
		Query:          req.Query,
		Language:       req.Language,
		ManufacturerID: req.ManufacturerID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, created, "Case submitted")
}

// Forward submits the case to its manufacturer and records the issued task
// number. Only the case owner or an admin may trigger it; ownership is
// checked by reading the case first.
func (h *CaseHandler) Forward(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "NOT_AUTHENTICATED", "Authentication required")
	}
	isAdmin, _ := c.Get(middleware.ContextKeyIsAdmin).(bool)

	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid case ID")
	}

	// Ownership gate before the transition.
	if _, err := h.uc.GetCase(c.Request().Context(), userID, isAdmin, caseID); err != nil {
		return errors.WithStack(err)
	}

	forwarded, err := h.uc.Forward(c.Request().Context(), caseID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, forwarded, "Case forwarded")
}

// Get returns one case, enforcing ownership unless the requester is admin.
func (h *CaseHandler) Get(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "NOT_AUTHENTICATED", "Authentication required")
	}
	isAdmin, _ := c.Get(middleware.ContextKeyIsAdmin).(bool)

	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid case ID")
	}

	found, err := h.uc.GetCase(c.Request().Context(), userID, isAdmin, caseID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, found, "")
}

// ListOwn returns the authenticated user's cases, newest first.
func (h *CaseHandler) ListOwn(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "NOT_AUTHENTICATED", "Authentication required")
	}

	cases, err := h.uc.ListOwn(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, cases, "")
}

// ListManufacturers returns the configured manufacturer catalog the submit
// form chooses from, sorted by ID for a stable order.
func (h *CaseHandler) ListManufacturers(c echo.Context) error {
	catalog := make([]entity.Manufacturer, 0, len(h.cfg.Manufacturers))
	for id, m := range h.cfg.Manufacturers {
		catalog = append(catalog, entity.Manufacturer{
			ID:     id,
			Name:   m.Name,
			Email:  m.Email,
			APIURL: m.APIURL,
		})
	}
	sort.Slice(catalog, func(i, j int) bool { return catalog[i].ID < catalog[j].ID })

	return response.Success(c, http.StatusOK, catalog, "")
}

// ManufacturerReply is the webhook manufacturers call when they answer a
// forwarded case. The case is matched by task number; the reply is translated
// back and routed through the approval gate.
func (h *CaseHandler) ManufacturerReply(c echo.Context) error {
	var req manufacturerReplyRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reply payload")
	}
	if err := c.Validate(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reply payload")
	}

	updated, err := h.uc.RecordReply(c.Request().Context(), &usecase.RecordReplyInput{
		TaskNumber: req.TaskNumber,
		Reply:      req.Reply,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, updated, "Reply recorded")
}
