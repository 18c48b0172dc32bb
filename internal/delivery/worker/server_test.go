package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"caseflow/config"
	httpmiddleware "caseflow/internal/delivery/http/middleware"
	"caseflow/internal/delivery/worker/handler"
	"caseflow/internal/domain/entity"
	domainerrors "caseflow/internal/domain/errors"
	"caseflow/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

type nopLifecycle struct{}

func (nopLifecycle) Append(fx.Hook) {}

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

type countingReminders struct {
	scans int
}

func (f *countingReminders) Scan(ctx context.Context, now time.Time) ([]*entity.Case, error) {
	f.scans++

	return nil, nil
}

// newScanTestServer builds a worker server around fakes, with one session
// registered for userID carrying the given admin flag.
func newScanTestServer(t *testing.T, userID uuid.UUID, isAdmin bool) (*workerServer, *countingReminders) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	guard := &fakeSessionGuard{sessions: map[uuid.UUID]*entity.Session{}}
	_, err := guard.Start(context.Background(), userID, isAdmin)
	require.NoError(t, err)

	reminders := &countingReminders{}
	clock := service.NewSystemClock()

	d, err := NewServer(ServerParams{
		Lc:          nopLifecycle{},
		Cfg:         &config.Config{},
		Logger:      logger,
		ScanHandler: handler.NewScanHandler(handler.ScanHandlerParams{Reminders: reminders, Clock: clock, Logger: logger}),
		AuthMiddleware: httpmiddleware.NewAuthMiddleware(&fakeTokenService{
			validToken: "good-token",
			claims:     &service.Claims{UserID: userID, IsAdmin: isAdmin},
		}, guard),
		ErrorMiddleware: httpmiddleware.NewErrorMiddleware(logger),
		Reminders:       reminders,
		Clock:           clock,
	})
	require.NoError(t, err)

	srv, ok := d.(*workerServer)
	require.True(t, ok)

	return srv, reminders
}

func postScan(srv *workerServer, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/scan", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	srv.server.ServeHTTP(rec, req)

	return rec
}

func decodeErrorEnvelope(t *testing.T, rec *httptest.ResponseRecorder) domainerrors.Response {
	t.Helper()

	var envelope domainerrors.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	return envelope
}

func TestScanEndpoint_RejectsWithoutToken(t *testing.T) {
	srv, reminders := newScanTestServer(t, uuid.New(), true)

	rec := postScan(srv, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	envelope := decodeErrorEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, domainerrors.ErrNotAuthenticated.ErrorCode(), envelope.Error.Code)
	assert.Zero(t, reminders.scans)
}

func TestScanEndpoint_RejectsRegularSession(t *testing.T) {
	srv, reminders := newScanTestServer(t, uuid.New(), false)

	rec := postScan(srv, "Bearer good-token")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	envelope := decodeErrorEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, domainerrors.ErrPermissionDenied.ErrorCode(), envelope.Error.Code)
	assert.Zero(t, reminders.scans)
}

func TestScanEndpoint_AdminTriggersSweep(t *testing.T) {
	srv, reminders := newScanTestServer(t, uuid.New(), true)

	rec := postScan(srv, "Bearer good-token")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, reminders.scans)
}
