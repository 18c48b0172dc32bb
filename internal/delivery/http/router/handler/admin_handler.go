package handler

import (
	"log/slog"
	"net/http"

	"caseflow/internal/delivery/http/middleware"
	"caseflow/internal/delivery/http/response"
	"caseflow/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AdminHandler holds dependencies for the manual-approval surface. Every
// route it serves sits behind the RequireAdmin middleware.
type AdminHandler struct {
	uc     usecase.CaseUsecase
	logger *slog.Logger
}

// NewAdminHandler is the constructor for AdminHandler, injected by Fx.
func NewAdminHandler(uc usecase.CaseUsecase, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{uc: uc, logger: logger}
}

// ListPendingApprovals returns all cases waiting for manual sign-off, oldest
// reply first.
func (h *AdminHandler) ListPendingApprovals(c echo.Context) error {
	cases, err := h.uc.ListPendingApprovals(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, cases, "")
}

// Approve releases a pending case's reply to its owner.
func (h *AdminHandler) Approve(c echo.Context) error {
	approverID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "NOT_AUTHENTICATED", "Authentication required")
	}

	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid case ID")
	}

	approved, err := h.uc.Approve(c.Request().Context(), caseID, approverID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, approved, "Case approved")
}

// Close archives an approved case.
func (h *AdminHandler) Close(c echo.Context) error {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid case ID")
	}

	closed, err := h.uc.Close(c.Request().Context(), caseID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, closed, "Case closed")
}
