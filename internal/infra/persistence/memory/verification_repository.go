package memory

import (
	"context"

	"caseflow/internal/domain/entity"
	"caseflow/internal/domain/repository"

	"github.com/google/uuid"
)

// verificationCodeRepository implements VerificationCodeRepository against
// the in-memory store.
type verificationCodeRepository struct {
	store *Store
}

func (repo *verificationCodeRepository) Find(_ context.Context, userID uuid.UUID, purpose entity.CodePurpose) (*entity.VerificationCode, error) {
	code, ok := repo.store.codes[codeKey{userID: userID, purpose: purpose}]
	if !ok {
		return nil, repository.ErrCodeNotFound
	}

	return &code, nil
}

func (repo *verificationCodeRepository) Save(_ context.Context, code *entity.VerificationCode) error {
	repo.store.codes[codeKey{userID: code.UserID, purpose: code.Purpose}] = *code

	return nil
}

func (repo *verificationCodeRepository) Delete(_ context.Context, userID uuid.UUID, purpose entity.CodePurpose) error {
	delete(repo.store.codes, codeKey{userID: userID, purpose: purpose})

	return nil
}
