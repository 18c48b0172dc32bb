package impl

import (
	"context"
	"regexp"
	"testing"
	"time"

	"caseflow/internal/domain/entity"
	domainerrors "caseflow/internal/domain/errors"
	"caseflow/internal/domain/repository"
	"caseflow/internal/domain/service"
	"caseflow/internal/infra/persistence/memory"
	"caseflow/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

type verificationFixture struct {
	verification usecase.VerificationUsecase
	clock        *fakeClock
	notifier     *fakeNotifier
	userID       uuid.UUID
}

func newVerificationFixture(t *testing.T) *verificationFixture {
	t.Helper()

	store := memory.NewStore()
	txManager := memory.NewTransactionManager(store)
	clock := newFakeClock(time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC))
	notifier := &fakeNotifier{}

	user := &entity.User{
		ID:        uuid.New(),
		Username:  "kirsten",
		Email:     "kirsten@example.test",
		CreatedAt: clock.Now(),
	}
	err := txManager.Execute(context.Background(), func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.UserRepo().Create(context.Background(), user)
	})
	require.NoError(t, err)

	verification := NewVerificationService(VerificationServiceParams{
		TxManager: txManager,
		Notifier:  notifier,
		Clock:     clock,
		Config:    testWorkflowConfig(),
		Logger:    testLogger(),
	})

	return &verificationFixture{
		verification: verification,
		clock:        clock,
		notifier:     notifier,
		userID:       user.ID,
	}
}

func TestVerificationService_IssueAndVerify(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	code, err := f.verification.Issue(ctx, f.userID, entity.CodePurposeLogin)
	require.NoError(t, err)
	assert.Regexp(t, sixDigits, code)

	// The code went out by mail.
	mails := f.notifier.byKind(service.KindVerificationCode)
	require.Len(t, mails, 1)
	assert.Equal(t, "kirsten@example.test", mails[0].Recipient)
	assert.Equal(t, code, mails[0].Payload["code"])

	require.NoError(t, f.verification.Verify(ctx, f.userID, entity.CodePurposeLogin, code))

	// Single use: the consumed code never validates again.
	err = f.verification.Verify(ctx, f.userID, entity.CodePurposeLogin, code)
	assert.ErrorIs(t, err, domainerrors.ErrNoActiveCode)
}

func TestVerificationService_VerifyWithoutIssue(t *testing.T) {
	f := newVerificationFixture(t)

	err := f.verification.Verify(context.Background(), f.userID, entity.CodePurposeLogin, "123456")
	assert.ErrorIs(t, err, domainerrors.ErrNoActiveCode)
}

func TestVerificationService_VerifyWrongCode(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	code, err := f.verification.Issue(ctx, f.userID, entity.CodePurposeLogin)
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	err = f.verification.Verify(ctx, f.userID, entity.CodePurposeLogin, wrong)
	assert.ErrorIs(t, err, domainerrors.ErrCodeMismatch)

	// A mismatch does not consume the code.
	require.NoError(t, f.verification.Verify(ctx, f.userID, entity.CodePurposeLogin, code))
}

func TestVerificationService_VerifyExpired(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	code, err := f.verification.Issue(ctx, f.userID, entity.CodePurposeLogin)
	require.NoError(t, err)

	// The window is 10 minutes; the boundary instant itself still validates.
	f.clock.Advance(10 * time.Minute)
	require.NoError(t, f.verification.Verify(ctx, f.userID, entity.CodePurposeLogin, code))

	code, err = f.verification.Issue(ctx, f.userID, entity.CodePurposeLogin)
	require.NoError(t, err)
	f.clock.Advance(10*time.Minute + time.Second)
	err = f.verification.Verify(ctx, f.userID, entity.CodePurposeLogin, code)
	assert.ErrorIs(t, err, domainerrors.ErrCodeExpired)
}

func TestVerificationService_ResendSupersedesPriorCode(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	oldCode, err := f.verification.Issue(ctx, f.userID, entity.CodePurposeSignup)
	require.NoError(t, err)

	newCode, err := f.verification.Resend(ctx, f.userID, entity.CodePurposeSignup)
	require.NoError(t, err)

	if oldCode != newCode {
		err = f.verification.Verify(ctx, f.userID, entity.CodePurposeSignup, oldCode)
		assert.ErrorIs(t, err, domainerrors.ErrCodeMismatch)
	}
	require.NoError(t, f.verification.Verify(ctx, f.userID, entity.CodePurposeSignup, newCode))
}

func TestVerificationService_PurposesAreIndependent(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	signupCode, err := f.verification.Issue(ctx, f.userID, entity.CodePurposeSignup)
	require.NoError(t, err)
	loginCode, err := f.verification.Issue(ctx, f.userID, entity.CodePurposeLogin)
	require.NoError(t, err)

	// Issuing a login code does not supersede the signup code.
	require.NoError(t, f.verification.Verify(ctx, f.userID, entity.CodePurposeSignup, signupCode))
	require.NoError(t, f.verification.Verify(ctx, f.userID, entity.CodePurposeLogin, loginCode))
}

func TestVerificationService_IssueUnknownUser(t *testing.T) {
	f := newVerificationFixture(t)

	_, err := f.verification.Issue(context.Background(), uuid.New(), entity.CodePurposeLogin)
	require.Error(t, err)
	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrUserNotFound.ErrorCode(), appErr.ErrorCode())
}

func TestVerificationService_MailFailureKeepsCodeValid(t *testing.T) {
	f := newVerificationFixture(t)
	f.notifier.fail = true
	ctx := context.Background()

	code, err := f.verification.Issue(ctx, f.userID, entity.CodePurposeLogin)
	require.NoError(t, err)

	require.NoError(t, f.verification.Verify(ctx, f.userID, entity.CodePurposeLogin, code))
}
