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

// caseRepository implements the domain.CaseRepository interface using GORM.
// Reads by ID and task number take a FOR UPDATE lock: the state machine's
// read-check-write sequences run inside one transaction, and the lock
// serializes concurrent transitions on the same case.
type caseRepository struct {
	db *gorm.DB
}

// NewCaseRepository is the constructor for caseRepository.
func NewCaseRepository(db *gorm.DB) repository.CaseRepository {
	return &caseRepository{db: db}
}

// Create persists a new case entity.
func (repo *caseRepository) Create(ctx context.Context, c *entity.Case) error {
	caseM := fromCaseDomain(c)

	if err := repo.db.WithContext(ctx).Create(caseM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrTaskNumberTaken
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create case")
	}

	return nil
}

// FindByID retrieves a single case by its unique ID, locking the row for the
// duration of the enclosing transaction.
func (repo *caseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Case, error) {
	var caseM model.CaseModel
	err := repo.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&caseM, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCaseNotFound
		}

		return nil, errors.Wrap(err, "failed to find case by id")
	}

	return toCaseDomain(&caseM), nil
}

// FindByTaskNumber retrieves the case holding the given task number, locking
// the row like FindByID.
func (repo *caseRepository) FindByTaskNumber(ctx context.Context, taskNumber string) (*entity.Case, error) {
	var caseM model.CaseModel
	err := repo.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&caseM, "task_number = ?", taskNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCaseNotFound
		}

		return nil, errors.Wrap(err, "failed to find case by task number")
	}

	return toCaseDomain(&caseM), nil
}

// ListByOwner retrieves all cases submitted by a user, newest first.
func (repo *caseRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Case, error) {
	var caseMs []*model.CaseModel
	err := repo.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("submitted_at DESC").
		Find(&caseMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list cases by owner")
	}

	return toCaseDomainList(caseMs), nil
}

// ListAwaitingReply retrieves the reminder scan candidates: forwarded cases
// still awaiting a reply with no reminder sent yet.
func (repo *caseRepository) ListAwaitingReply(ctx context.Context) ([]*entity.Case, error) {
	var caseMs []*model.CaseModel
	err := repo.db.WithContext(ctx).
		Where("status = ? AND reminder_sent = false AND forwarded_at IS NOT NULL", entity.CaseStatusAwaitingReply.String()).
		Order("forwarded_at ASC").
		Find(&caseMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list cases awaiting reply")
	}

	return toCaseDomainList(caseMs), nil
}

// ListPendingApproval retrieves cases waiting for manual sign-off.
func (repo *caseRepository) ListPendingApproval(ctx context.Context) ([]*entity.Case, error) {
	var caseMs []*model.CaseModel
	err := repo.db.WithContext(ctx).
		Where("status = ?", entity.CaseStatusPendingApproval.String()).
		Order("reply_received_at ASC").
		Find(&caseMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list cases pending approval")
	}

	return toCaseDomainList(caseMs), nil
}

// Update persists the mutated case read earlier in the same transaction.
func (repo *caseRepository) Update(ctx context.Context, c *entity.Case) error {
	caseM := fromCaseDomain(c)

	if err := repo.db.WithContext(ctx).Save(caseM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrTaskNumberTaken
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update case")
	}

	return nil
}

// --- Mapper Functions ---

func toCaseDomain(data *model.CaseModel) *entity.Case {
	if data == nil {
		return nil
	}

	var taskNumber string
	if data.TaskNumber != nil {
		taskNumber = *data.TaskNumber
	}

	return &entity.Case{
		ID:                data.ID,
		OwnerID:           data.OwnerID,
		OriginalQuery:     data.OriginalQuery,
		Language:          data.Language,
		ManufacturerID:    data.ManufacturerID,
		TranslatedQuery:   data.TranslatedQuery,
		TaskNumber:        taskNumber,
		Status:            entity.CaseStatus(data.Status),
		SubmittedAt:       data.SubmittedAt,
		ForwardedAt:       data.ForwardedAt,
		ReplyReceivedAt:   data.ReplyReceivedAt,
		ReminderSent:      data.ReminderSent,
		ReminderSentAt:    data.ReminderSentAt,
		NeedsApproval:     data.NeedsApproval,
		Approved:          data.Approved,
		ApprovedAt:        data.ApprovedAt,
		ManufacturerReply: data.ManufacturerReply,
		ReplyTranslated:   data.ReplyTranslated,
		ClosedAt:          data.ClosedAt,
	}
}

func toCaseDomainList(data []*model.CaseModel) []*entity.Case {
	cases := make([]*entity.Case, 0, len(data))
	for _, caseM := range data {
		cases = append(cases, toCaseDomain(caseM))
	}

	return cases
}

func fromCaseDomain(data *entity.Case) *model.CaseModel {
	if data == nil {
		return nil
	}

	// An empty task number is stored as NULL so the unique index only
	// applies once the manufacturer assigns one.
	var taskNumber *string
	if data.TaskNumber != "" {
		tn := data.TaskNumber
		taskNumber = &tn
	}

	return &model.CaseModel{
		ID:                data.ID,
		OwnerID:           data.OwnerID,
		OriginalQuery:     data.OriginalQuery,
		Language:          data.Language,
		ManufacturerID:    data.ManufacturerID,
		TranslatedQuery:   data.TranslatedQuery,
		TaskNumber:        taskNumber,
		Status:            data.Status.String(),
		SubmittedAt:       data.SubmittedAt,
		ForwardedAt:       data.ForwardedAt,
		ReplyReceivedAt:   data.ReplyReceivedAt,
		ReminderSent:      data.ReminderSent,
		ReminderSentAt:    data.ReminderSentAt,
		NeedsApproval:     data.NeedsApproval,
		Approved:          data.Approved,
		ApprovedAt:        data.ApprovedAt,
		ManufacturerReply: data.ManufacturerReply,
		ReplyTranslated:   data.ReplyTranslated,
		ClosedAt:          data.ClosedAt,
	}
}
