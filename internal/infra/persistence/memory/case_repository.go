package memory

import (
	"context"
	"sort"

	"caseflow/internal/domain/entity"
	"caseflow/internal/domain/repository"

	"github.com/google/uuid"
)

// caseRepository implements CaseRepository against the in-memory store.
// The enclosing transaction already holds the store mutex.
type caseRepository struct {
	store *Store
}

func (repo *caseRepository) Create(_ context.Context, c *entity.Case) error {
	if c.TaskNumber != "" {
		if _, taken := repo.store.casesByTask[c.TaskNumber]; taken {
			return repository.ErrTaskNumberTaken
		}
		repo.store.casesByTask[c.TaskNumber] = c.ID
	}
	repo.store.cases[c.ID] = *c

	return nil
}

func (repo *caseRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Case, error) {
	c, ok := repo.store.cases[id]
	if !ok {
		return nil, repository.ErrCaseNotFound
	}

	return &c, nil
}

func (repo *caseRepository) FindByTaskNumber(_ context.Context, taskNumber string) (*entity.Case, error) {
	id, ok := repo.store.casesByTask[taskNumber]
	if !ok {
		return nil, repository.ErrCaseNotFound
	}

	c := repo.store.cases[id]

	return &c, nil
}

func (repo *caseRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*entity.Case, error) {
	cases := repo.collect(func(c *entity.Case) bool {
		return c.OwnerID == ownerID
	})
	sort.Slice(cases, func(i, j int) bool {
		return cases[i].SubmittedAt.After(cases[j].SubmittedAt)
	})

	return cases, nil
}

func (repo *caseRepository) ListAwaitingReply(_ context.Context) ([]*entity.Case, error) {
	cases := repo.collect(func(c *entity.Case) bool {
		return c.Status == entity.CaseStatusAwaitingReply && !c.ReminderSent && c.ForwardedAt != nil
	})
	sort.Slice(cases, func(i, j int) bool {
		return cases[i].ForwardedAt.Before(*cases[j].ForwardedAt)
	})

	return cases, nil
}

func (repo *caseRepository) ListPendingApproval(_ context.Context) ([]*entity.Case, error) {
	cases := repo.collect(func(c *entity.Case) bool {
		return c.Status == entity.CaseStatusPendingApproval
	})
	sort.Slice(cases, func(i, j int) bool {
		if cases[i].ReplyReceivedAt == nil || cases[j].ReplyReceivedAt == nil {
			return cases[i].SubmittedAt.Before(cases[j].SubmittedAt)
		}

		return cases[i].ReplyReceivedAt.Before(*cases[j].ReplyReceivedAt)
	})

	return cases, nil
}

func (repo *caseRepository) Update(_ context.Context, c *entity.Case) error {
	prev, ok := repo.store.cases[c.ID]
	if !ok {
		return repository.ErrCaseNotFound
	}

	if c.TaskNumber != prev.TaskNumber {
		if c.TaskNumber != "" {
			if holder, taken := repo.store.casesByTask[c.TaskNumber]; taken && holder != c.ID {
				return repository.ErrTaskNumberTaken
			}
			repo.store.casesByTask[c.TaskNumber] = c.ID
		}
		if prev.TaskNumber != "" {
			delete(repo.store.casesByTask, prev.TaskNumber)
		}
	}

	repo.store.cases[c.ID] = *c

	return nil
}

func (repo *caseRepository) collect(match func(*entity.Case) bool) []*entity.Case {
	cases := make([]*entity.Case, 0)
	for id := range repo.store.cases {
		c := repo.store.cases[id]
		if match(&c) {
			cases = append(cases, &c)
		}
	}

	return cases
}
