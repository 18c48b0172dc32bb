package postgres

import (
	"context"

	"caseflow/internal/domain/entity"
	domainerrors "caseflow/internal/domain/errors"
	"caseflow/internal/domain/repository"
	"caseflow/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// verificationCodeRepository implements VerificationCodeRepository using GORM.
// Find takes a FOR UPDATE lock so a code can validate at most once under
// concurrent submissions.
type verificationCodeRepository struct {
	db *gorm.DB
}

// NewVerificationCodeRepository is the constructor for verificationCodeRepository.
func NewVerificationCodeRepository(db *gorm.DB) repository.VerificationCodeRepository {
	return &verificationCodeRepository{db: db}
}

// Find retrieves the current code record for (userID, purpose).
func (repo *verificationCodeRepository) Find(ctx context.Context, userID uuid.UUID, purpose entity.CodePurpose) (*entity.VerificationCode, error) {
	var codeM model.VerificationCodeModel
	err := repo.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&codeM, "user_id = ? AND purpose = ?", userID, purpose.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCodeNotFound
		}

		return nil, errors.Wrap(err, "failed to find verification code")
	}

	return toVerificationDomain(&codeM), nil
}

// Save creates or replaces the code record for its (userID, purpose) key.
func (repo *verificationCodeRepository) Save(ctx context.Context, code *entity.VerificationCode) error {
	codeM := fromVerificationDomain(code)

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "purpose"}},
			UpdateAll: true,
		}).
		Create(codeM).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to save verification code")
	}

	return nil
}

// Delete removes the code record for (userID, purpose), if any.
func (repo *verificationCodeRepository) Delete(ctx context.Context, userID uuid.UUID, purpose entity.CodePurpose) error {
	err := repo.db.WithContext(ctx).
		Delete(&model.VerificationCodeModel{}, "user_id = ? AND purpose = ?", userID, purpose.String()).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete verification code")
	}

	return nil
}

// --- Mapper Functions ---

func toVerificationDomain(data *model.VerificationCodeModel) *entity.VerificationCode {
	if data == nil {
		return nil
	}

	return &entity.VerificationCode{
		UserID:    data.UserID,
		Purpose:   entity.CodePurpose(data.Purpose),
		Code:      data.Code,
		CreatedAt: data.CreatedAt,
		ExpiresAt: data.ExpiresAt,
		Consumed:  data.Consumed,
	}
}

func fromVerificationDomain(data *entity.VerificationCode) *model.VerificationCodeModel {
	if data == nil {
		return nil
	}

	return &model.VerificationCodeModel{
		UserID:    data.UserID,
		Purpose:   data.Purpose.String(),
		Code:      data.Code,
		CreatedAt: data.CreatedAt,
		ExpiresAt: data.ExpiresAt,
		Consumed:  data.Consumed,
	}
}
