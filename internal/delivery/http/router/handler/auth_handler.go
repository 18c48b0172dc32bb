// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"caseflow/internal/delivery/http/middleware"
	"caseflow/internal/delivery/http/response"
	"caseflow/internal/domain/entity"
	"caseflow/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for authentication-related handlers.
type AuthHandler struct {
	uc     usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, logger: logger}
}

type signupRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type verifyCodeRequest struct {
	UserID  uuid.UUID `json:"user_id" validate:"required"`
	Purpose string    `json:"purpose" validate:"required,oneof=signup login"`
	Code    string    `json:"code" validate:"required,len=6"`
}

type resendCodeRequest struct {
	UserID  uuid.UUID `json:"user_id" validate:"required"`
	Purpose string    `json:"purpose" validate:"required,oneof=signup login"`
}

// pendingResponse is the body returned when a verification code has been
// issued and the client must confirm it. MockCode is populated only when the
// mail transport runs in mock mode.
type pendingResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Purpose  string    `json:"purpose"`
	MockCode string    `json:"mock_code,omitempty"`
}

func toPendingResponse(p *usecase.PendingVerification) pendingResponse {
	return pendingResponse{
		UserID:   p.UserID,
		Purpose:  string(p.Purpose),
		MockCode: p.MockCode,
	}
}

// Signup handles account creation. The account stays unverified until the
// emailed code is confirmed.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid signup input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid signup input")
	}

	pending, err := h.uc.Signup(c.Request().Context(), &usecase.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toPendingResponse(pending), "Verification code sent")
}

// Login checks the password and issues a login code. No session exists until
// VerifyCode succeeds.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}

	pending, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toPendingResponse(pending), "Verification code sent")
}

// VerifyCode consumes a verification code and, on success, opens the session
// and returns the access token.
func (h *AuthHandler) VerifyCode(c echo.Context) error {
	var req verifyCodeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid verification input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid verification input")
	}

	output, err := h.uc.VerifyCode(c.Request().Context(), req.UserID, entity.CodePurpose(req.Purpose), req.Code)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"user":         output.User,
		"access_token": output.AccessToken,
	}, "Verification successful")
}

// ResendCode reissues the code for (user, purpose), invalidating the prior one.
func (h *AuthHandler) ResendCode(c echo.Context) error {
	var req resendCodeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid resend input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid resend input")
	}

	pending, err := h.uc.ResendCode(c.Request().Context(), req.UserID, entity.CodePurpose(req.Purpose))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toPendingResponse(pending), "Verification code resent")
}

// Logout ends the caller's session. Idempotent.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "NOT_AUTHENTICATED", "Authentication required")
	}

	if err := h.uc.Logout(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Logged out")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
