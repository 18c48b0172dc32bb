package repository

import "context"

// TransactionManager defines the interface for managing store transactions.
// Every read-check-write sequence in the use case layer runs inside Execute,
// which is the atomicity unit required for one-time transitions (status,
// consumed, reminder_sent): two concurrent callers cannot both observe the
// pre-transition state and both succeed.
type TransactionManager interface {
	// Execute runs a function within a single store transaction.
	// If the function returns an error the transaction is rolled back,
	// otherwise it is committed. All repository operations obtained from the
	// factory are bound to that same transaction.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory provides repository instances bound to one transaction.
type RepositoryFactory interface {
	// CaseRepo returns a CaseRepository bound to the current transaction.
	CaseRepo() CaseRepository

	// UserRepo returns a UserRepository bound to the current transaction.
	UserRepo() UserRepository

	// VerificationRepo returns a VerificationCodeRepository bound to the
	// current transaction.
	VerificationRepo() VerificationCodeRepository

	// SessionRepo returns a SessionRepository bound to the current transaction.
	SessionRepo() SessionRepository
}
