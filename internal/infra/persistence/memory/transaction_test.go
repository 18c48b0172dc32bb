package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"caseflow/internal/domain/entity"
	"caseflow/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionManager_RollbackOnError(t *testing.T) {
	store := NewStore()
	txManager := NewTransactionManager(store)
	ctx := context.Background()

	caseID := uuid.New()
	err := txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		c := &entity.Case{
			ID:          caseID,
			OwnerID:     uuid.New(),
			Status:      entity.CaseStatusSubmitted,
			SubmittedAt: time.Now(),
		}
		if err := repoFactory.CaseRepo().Create(ctx, c); err != nil {
			return err
		}

		return errors.New("business rule rejected")
	})
	require.Error(t, err)

	// The failed transaction left no trace.
	err = txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		_, err := repoFactory.CaseRepo().FindByID(ctx, caseID)

		return err
	})
	assert.ErrorIs(t, err, repository.ErrCaseNotFound)
}

func TestTransactionManager_CommitPersists(t *testing.T) {
	store := NewStore()
	txManager := NewTransactionManager(store)
	ctx := context.Background()

	user := &entity.User{ID: uuid.New(), Username: "kirsten", Email: "k@example.test"}
	require.NoError(t, txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.UserRepo().Create(ctx, user)
	}))

	var found *entity.User
	require.NoError(t, txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		found, err = repoFactory.UserRepo().FindByEmail(ctx, "k@example.test")

		return err
	}))
	assert.Equal(t, user.ID, found.ID)
}

func TestTransactionManager_SerializesConcurrentIncrements(t *testing.T) {
	store := NewStore()
	txManager := NewTransactionManager(store)
	ctx := context.Background()

	sessionUser := uuid.New()
	require.NoError(t, txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.SessionRepo().Save(ctx, &entity.Session{UserID: sessionUser})
	}))

	// Each goroutine reads the session timestamp and writes it one second
	// later. Serialized transactions make the result exact.
	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
				sessionRepo := repoFactory.SessionRepo()
				session, err := sessionRepo.Find(ctx, sessionUser)
				if err != nil {
					return err
				}
				session.CreatedAt = session.CreatedAt.Add(time.Second)

				return sessionRepo.Save(ctx, session)
			})
		}()
	}
	wg.Wait()

	var final *entity.Session
	require.NoError(t, txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		final, err = repoFactory.SessionRepo().Find(ctx, sessionUser)

		return err
	}))
	assert.Equal(t, time.Time{}.Add(workers*time.Second), final.CreatedAt)
}

func TestCaseRepository_TaskNumberUniqueness(t *testing.T) {
	store := NewStore()
	txManager := NewTransactionManager(store)
	ctx := context.Background()

	first := &entity.Case{ID: uuid.New(), OwnerID: uuid.New(), Status: entity.CaseStatusAwaitingReply, TaskNumber: "TASK-1"}
	second := &entity.Case{ID: uuid.New(), OwnerID: uuid.New(), Status: entity.CaseStatusSubmitted}

	require.NoError(t, txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.CaseRepo().Create(ctx, first); err != nil {
			return err
		}

		return repoFactory.CaseRepo().Create(ctx, second)
	}))

	// Assigning an already-held task number fails and rolls back.
	err := txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		second.TaskNumber = "TASK-1"

		return repoFactory.CaseRepo().Update(ctx, second)
	})
	assert.ErrorIs(t, err, repository.ErrTaskNumberTaken)
}
