package memory

import (
	"context"

	"caseflow/internal/domain/entity"
	domainerrors "caseflow/internal/domain/errors"
	"caseflow/internal/domain/repository"

	"github.com/google/uuid"
)

// userRepository implements UserRepository against the in-memory store.
type userRepository struct {
	store *Store
}

func (repo *userRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := repo.store.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return &user, nil
}

func (repo *userRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	id, ok := repo.store.usersByMail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	user := repo.store.users[id]

	return &user, nil
}

func (repo *userRepository) Create(_ context.Context, user *entity.User) error {
	if _, taken := repo.store.usersByMail[user.Email]; taken {
		return domainerrors.ErrUserAlreadyExists.WithDetails("email already exists")
	}

	repo.store.users[user.ID] = *user
	repo.store.usersByMail[user.Email] = user.ID

	return nil
}

func (repo *userRepository) Update(_ context.Context, user *entity.User) error {
	prev, ok := repo.store.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}

	if user.Email != prev.Email {
		if holder, taken := repo.store.usersByMail[user.Email]; taken && holder != user.ID {
			return domainerrors.ErrUserAlreadyExists.WithDetails("email already exists")
		}
		delete(repo.store.usersByMail, prev.Email)
		repo.store.usersByMail[user.Email] = user.ID
	}

	repo.store.users[user.ID] = *user

	return nil
}
