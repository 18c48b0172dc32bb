package memory

import (
	"context"

	"caseflow/internal/domain/entity"
	"caseflow/internal/domain/repository"

	"github.com/google/uuid"
)

// sessionRepository implements SessionRepository against the in-memory store.
type sessionRepository struct {
	store *Store
}

func (repo *sessionRepository) Find(_ context.Context, userID uuid.UUID) (*entity.Session, error) {
	session, ok := repo.store.sessions[userID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}

	return &session, nil
}

func (repo *sessionRepository) Save(_ context.Context, session *entity.Session) error {
	repo.store.sessions[session.UserID] = *session

	return nil
}

func (repo *sessionRepository) Delete(_ context.Context, userID uuid.UUID) error {
	delete(repo.store.sessions, userID)

	return nil
}
