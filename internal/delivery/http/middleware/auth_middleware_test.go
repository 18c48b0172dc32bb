package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"caseflow/internal/domain/entity"
	domainerrors "caseflow/internal/domain/errors"
	"caseflow/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokenService struct {
	validToken string
	claims     *service.Claims
}

func (f *fakeTokenService) GenerateToken(userID uuid.UUID, isAdmin bool) (string, error) {
	return f.validToken, nil
}

func (f *fakeTokenService) ValidateToken(tokenString string) (*service.Claims, error) {
	if tokenString != f.validToken {
		return nil, errors.New("signature mismatch")
	}

	return f.claims, nil
}

type fakeSessionGuard struct {
	sessions map[uuid.UUID]*entity.Session
}

func (f *fakeSessionGuard) Start(ctx context.Context, userID uuid.UUID, isAdmin bool) (*entity.Session, error) {
	s := &entity.Session{UserID: userID, Authenticated: true, IsAdmin: isAdmin, CreatedAt: time.Now()}
	f.sessions[userID] = s

	return s, nil
}

func (f *fakeSessionGuard) Validate(ctx context.Context, userID uuid.UUID) (*entity.Session, bool, error) {
	s, ok := f.sessions[userID]
	if !ok {
		return nil, false, nil
	}

	return s, true, nil
}

func (f *fakeSessionGuard) End(ctx context.Context, userID uuid.UUID) error {
	delete(f.sessions, userID)

	return nil
}

func newAuthTestContext(t *testing.T, authHeader string) echo.Context {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/cases", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	return e.NewContext(req, httptest.NewRecorder())
}

func isNotAuthenticated(t *testing.T, err error) {
	t.Helper()

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrNotAuthenticated.ErrorCode(), appErr.ErrorCode())
}

func TestAuthMiddleware_ValidTokenWithLiveSession(t *testing.T) {
	userID := uuid.New()
	guard := &fakeSessionGuard{sessions: map[uuid.UUID]*entity.Session{}}
	_, err := guard.Start(context.Background(), userID, true)
	require.NoError(t, err)

	m := NewAuthMiddleware(&fakeTokenService{
		validToken: "good-token",
		claims:     &service.Claims{UserID: userID, IsAdmin: true},
	}, guard)

	c := newAuthTestContext(t, "Bearer good-token")
	var nextCalled bool
	err = m.Authenticate(func(c echo.Context) error {
		nextCalled = true

		return nil
	})(c)

	require.NoError(t, err)
	assert.True(t, nextCalled)
	assert.Equal(t, userID, c.Get(ContextKeyUserID))
	assert.Equal(t, true, c.Get(ContextKeyIsAdmin))
}

func TestAuthMiddleware_RejectsWithoutHeader(t *testing.T) {
	m := NewAuthMiddleware(&fakeTokenService{validToken: "good-token"},
		&fakeSessionGuard{sessions: map[uuid.UUID]*entity.Session{}})

	c := newAuthTestContext(t, "")
	err := m.Authenticate(func(c echo.Context) error { return nil })(c)

	isNotAuthenticated(t, err)
}

func TestAuthMiddleware_RejectsBadToken(t *testing.T) {
	m := NewAuthMiddleware(&fakeTokenService{validToken: "good-token"},
		&fakeSessionGuard{sessions: map[uuid.UUID]*entity.Session{}})

	c := newAuthTestContext(t, "Bearer forged-token")
	err := m.Authenticate(func(c echo.Context) error { return nil })(c)

	isNotAuthenticated(t, err)
}

// A valid token whose session ended must be rejected exactly like an
// unauthenticated request.
func TestAuthMiddleware_RejectsValidTokenWithoutSession(t *testing.T) {
	userID := uuid.New()
	m := NewAuthMiddleware(&fakeTokenService{
		validToken: "good-token",
		claims:     &service.Claims{UserID: userID},
	}, &fakeSessionGuard{sessions: map[uuid.UUID]*entity.Session{}})

	c := newAuthTestContext(t, "Bearer good-token")
	err := m.Authenticate(func(c echo.Context) error { return nil })(c)

	isNotAuthenticated(t, err)
}

func TestRequireAdmin(t *testing.T) {
	m := NewAuthMiddleware(&fakeTokenService{},
		&fakeSessionGuard{sessions: map[uuid.UUID]*entity.Session{}})

	t.Run("admin session passes", func(t *testing.T) {
		c := newAuthTestContext(t, "")
		c.Set(ContextKeyIsAdmin, true)

		err := m.RequireAdmin(func(c echo.Context) error { return nil })(c)
		assert.NoError(t, err)
	})

	t.Run("regular session is forbidden", func(t *testing.T) {
		c := newAuthTestContext(t, "")
		c.Set(ContextKeyIsAdmin, false)

		err := m.RequireAdmin(func(c echo.Context) error { return nil })(c)

		var appErr domainerrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, domainerrors.ErrPermissionDenied.ErrorCode(), appErr.ErrorCode())
	})

	t.Run("missing flag is forbidden", func(t *testing.T) {
		c := newAuthTestContext(t, "")

		err := m.RequireAdmin(func(c echo.Context) error { return nil })(c)
		assert.Error(t, err)
	})
}
