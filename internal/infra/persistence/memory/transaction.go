package memory

import (
	"context"

	"caseflow/internal/domain/repository"
)

// transactionManager implements the domain's TransactionManager against the
// in-memory store. Execute holds the store mutex end to end: concurrent
// transactions serialize, and the second always observes the first's result.
type transactionManager struct {
	store *Store
}

// repositoryFactory hands out repositories bound to the locked store.
type repositoryFactory struct {
	store *Store
}

func (f *repositoryFactory) CaseRepo() repository.CaseRepository {
	return &caseRepository{store: f.store}
}

func (f *repositoryFactory) UserRepo() repository.UserRepository {
	return &userRepository{store: f.store}
}

func (f *repositoryFactory) VerificationRepo() repository.VerificationCodeRepository {
	return &verificationCodeRepository{store: f.store}
}

func (f *repositoryFactory) SessionRepo() repository.SessionRepository {
	return &sessionRepository{store: f.store}
}

// NewTransactionManager creates a TransactionManager over the given store.
func NewTransactionManager(store *Store) repository.TransactionManager {
	return &transactionManager{store: store}
}

// Execute runs fn under the store mutex. On error the store is restored to
// its pre-transaction snapshot, so partial writes never become visible.
func (tm *transactionManager) Execute(_ context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	tm.store.mu.Lock()
	defer tm.store.mu.Unlock()

	snap := tm.store.snapshot()

	defer func() {
		if r := recover(); r != nil {
			tm.store.restore(snap)
			panic(r)
		}
	}()

	if err := fn(&repositoryFactory{store: tm.store}); err != nil {
		tm.store.restore(snap)

		return err
	}

	return nil
}
