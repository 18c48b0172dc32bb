package impl

import (
	"context"
	"testing"
	"time"

	"caseflow/internal/infra/persistence/memory"
	"caseflow/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionFixture(t *testing.T) (usecase.SessionUsecase, *fakeClock) {
	t.Helper()

	store := memory.NewStore()
	clock := newFakeClock(time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC))

	sessions := NewSessionService(SessionServiceParams{
		TxManager: memory.NewTransactionManager(store),
		Clock:     clock,
		Config:    testWorkflowConfig(),
		Logger:    testLogger(),
	})

	return sessions, clock
}

func TestSessionService_StartAndValidate(t *testing.T) {
	sessions, clock := newSessionFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	started, err := sessions.Start(ctx, userID, true)
	require.NoError(t, err)
	assert.True(t, started.Authenticated)
	assert.True(t, started.IsAdmin)
	assert.Equal(t, clock.Now(), started.CreatedAt)

	session, valid, err := sessions.Validate(ctx, userID)
	require.NoError(t, err)
	assert.True(t, valid)
	require.NotNil(t, session)
	assert.Equal(t, userID, session.UserID)
}

func TestSessionService_ValidateUnknownUser(t *testing.T) {
	sessions, _ := newSessionFixture(t)

	session, valid, err := sessions.Validate(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Nil(t, session)
}

func TestSessionService_TimeoutBoundary(t *testing.T) {
	sessions, clock := newSessionFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := sessions.Start(ctx, userID, false)
	require.NoError(t, err)

	// Just inside the 24 hour window.
	clock.Advance(24*time.Hour - time.Minute)
	_, valid, err := sessions.Validate(ctx, userID)
	require.NoError(t, err)
	assert.True(t, valid)

	// At exactly 24 hours the session is expired and cleared.
	clock.Advance(time.Minute)
	session, valid, err := sessions.Validate(ctx, userID)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Nil(t, session)

	// Expired is indistinguishable from never-authenticated, even if the
	// clock were to run backwards afterwards.
	clock.Advance(-23 * time.Hour)
	_, valid, err = sessions.Validate(ctx, userID)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestSessionService_StartResetsWindow(t *testing.T) {
	sessions, clock := newSessionFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := sessions.Start(ctx, userID, false)
	require.NoError(t, err)

	clock.Advance(23 * time.Hour)
	_, err = sessions.Start(ctx, userID, false)
	require.NoError(t, err)

	// 25 hours after the first login, 2 after the second: still valid.
	clock.Advance(2 * time.Hour)
	_, valid, err := sessions.Validate(ctx, userID)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestSessionService_EndIsIdempotent(t *testing.T) {
	sessions, _ := newSessionFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := sessions.Start(ctx, userID, false)
	require.NoError(t, err)

	require.NoError(t, sessions.End(ctx, userID))
	require.NoError(t, sessions.End(ctx, userID))

	_, valid, err := sessions.Validate(ctx, userID)
	require.NoError(t, err)
	assert.False(t, valid)
}
