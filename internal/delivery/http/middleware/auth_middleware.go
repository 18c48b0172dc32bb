package middleware

import (
	"strings"

	domainerrors "caseflow/internal/domain/errors"
	"caseflow/internal/domain/service"
	"caseflow/internal/usecase"

	"github.com/labstack/echo/v4"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextKeyUserID  = "userID"
	ContextKeyIsAdmin = "isAdmin"
)

// AuthMiddleware validates the JWT access token and then consults the
// session guard. The token is only a transport credential: a request with a
// cryptographically valid token but no live session is rejected, and a
// session that crossed the inactivity timeout is cleared on this very check.
// All failure modes produce the same 401 so an expired session is
// indistinguishable from never having logged in.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	sessions usecase.SessionUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, sessions usecase.SessionUsecase) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, sessions: sessions}
}

// Authenticate is the core middleware function guarding every protected route.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return domainerrors.ErrNotAuthenticated
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return domainerrors.ErrNotAuthenticated
		}

		claims, err := m.tokenSvc.ValidateToken(tokenString)
		if err != nil {
			return domainerrors.ErrNotAuthenticated
		}

		session, ok, err := m.sessions.Validate(c.Request().Context(), claims.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return domainerrors.ErrNotAuthenticated
		}

		// The session, not the token, is the authority on admin rights.
		c.Set(ContextKeyUserID, session.UserID)
		c.Set(ContextKeyIsAdmin, session.IsAdmin)

		return next(c)
	}
}

// RequireAdmin rejects requests whose session does not carry admin rights.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		isAdmin, ok := c.Get(ContextKeyIsAdmin).(bool)
		if !ok || !isAdmin {
			return domainerrors.ErrPermissionDenied
		}

		return next(c)
	}
}
