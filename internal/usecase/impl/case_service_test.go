package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"caseflow/internal/domain/entity"
	domainerrors "caseflow/internal/domain/errors"
	"caseflow/internal/domain/repository"
	"caseflow/internal/domain/service"
	"caseflow/internal/infra/persistence/memory"
	"caseflow/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type caseFixture struct {
	cases      usecase.CaseUsecase
	txManager  repository.TransactionManager
	clock      *fakeClock
	translator *fakeTranslator
	gateway    *fakeGateway
	notifier   *fakeNotifier
	owner      *entity.User
}

func newCaseFixture(t *testing.T) *caseFixture {
	t.Helper()

	store := memory.NewStore()
	txManager := memory.NewTransactionManager(store)
	cfg := testWorkflowConfig()
	clock := newFakeClock(time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)) // a Monday
	translator := &fakeTranslator{detected: "da"}
	gateway := &fakeGateway{}
	notifier := &fakeNotifier{}

	owner := &entity.User{
		ID:        uuid.New(),
		Username:  "kirsten",
		Email:     "kirsten@example.test",
		Verified:  true,
		CreatedAt: clock.Now(),
	}
	err := txManager.Execute(context.Background(), func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.UserRepo().Create(context.Background(), owner)
	})
	require.NoError(t, err)

	cases := NewCaseService(CaseServiceParams{
		TxManager:  txManager,
		Gate:       NewApprovalGate(cfg),
		Translator: translator,
		Gateway:    gateway,
		Notifier:   notifier,
		Clock:      clock,
		Config:     cfg,
		Logger:     testLogger(),
	})

	return &caseFixture{
		cases:      cases,
		txManager:  txManager,
		clock:      clock,
		translator: translator,
		gateway:    gateway,
		notifier:   notifier,
		owner:      owner,
	}
}

func (f *caseFixture) submit(t *testing.T, manufacturerID string) *entity.Case {
	t.Helper()

	c, err := f.cases.Submit(context.Background(), &usecase.SubmitCaseInput{
		OwnerID:        f.owner.ID,
		Query:          "Min kaffemaskine lækker vand",
		ManufacturerID: manufacturerID,
	})
	require.NoError(t, err)

	return c
}

func TestCaseService_Submit(t *testing.T) {
	f := newCaseFixture(t)

	c := f.submit(t, "globo")

	assert.Equal(t, entity.CaseStatusSubmitted, c.Status)
	assert.Equal(t, "da", c.Language)
	assert.Equal(t, "[da->en] Min kaffemaskine lækker vand", c.TranslatedQuery)
	assert.Empty(t, c.TaskNumber)
	assert.Equal(t, f.clock.Now(), c.SubmittedAt)

	// The case is readable by its owner right away.
	got, err := f.cases.GetCase(context.Background(), f.owner.ID, false, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}

func TestCaseService_SubmitValidation(t *testing.T) {
	f := newCaseFixture(t)
	ctx := context.Background()

	_, err := f.cases.Submit(ctx, &usecase.SubmitCaseInput{
		OwnerID: f.owner.ID, Query: "   ", ManufacturerID: "globo",
	})
	assert.ErrorContains(t, err, "query must not be empty")

	_, err = f.cases.Submit(ctx, &usecase.SubmitCaseInput{
		OwnerID: f.owner.ID, Query: "broken", ManufacturerID: "nobody",
	})
	assert.ErrorContains(t, err, "unknown manufacturer")

	_, err = f.cases.Submit(ctx, &usecase.SubmitCaseInput{
		OwnerID: f.owner.ID, Query: "broken", Language: "xx", ManufacturerID: "globo",
	})
	assert.ErrorContains(t, err, "unsupported language")
}

func TestCaseService_SubmitTranslationOutage(t *testing.T) {
	f := newCaseFixture(t)
	f.translator.down = true

	c := f.submit(t, "globo")

	// Detection falls back to English, translation stays pending.
	assert.Equal(t, service.EnglishLang, c.Language)
	assert.Empty(t, c.TranslatedQuery)
	assert.Equal(t, entity.CaseStatusSubmitted, c.Status)
}

func TestCaseService_ForwardAssignsTaskNumber(t *testing.T) {
	f := newCaseFixture(t)
	c := f.submit(t, "globo")

	forwarded, err := f.cases.Forward(context.Background(), c.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.CaseStatusAwaitingReply, forwarded.Status)
	assert.Equal(t, "TASK-1001", forwarded.TaskNumber)
	require.NotNil(t, forwarded.ForwardedAt)

	confirmations := f.notifier.byKind(service.KindCaseSubmitted)
	require.Len(t, confirmations, 1)
	assert.Equal(t, f.owner.Email, confirmations[0].Recipient)
	assert.Equal(t, "TASK-1001", confirmations[0].Payload["task_number"])
}

func TestCaseService_ForwardGatewayDownCaseStaysSubmitted(t *testing.T) {
	f := newCaseFixture(t)
	c := f.submit(t, "globo")
	f.gateway.down = true

	_, err := f.cases.Forward(context.Background(), c.ID)
	require.Error(t, err)

	got, err := f.cases.GetCase(context.Background(), f.owner.ID, false, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CaseStatusSubmitted, got.Status)
	assert.Empty(t, got.TaskNumber)
	assert.Nil(t, got.ForwardedAt)

	// A later retry succeeds once the gateway recovers.
	f.gateway.down = false
	forwarded, err := f.cases.Forward(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CaseStatusAwaitingReply, forwarded.Status)
}

func TestCaseService_ForwardDuplicateTaskNumber(t *testing.T) {
	f := newCaseFixture(t)
	f.gateway.fixedTask = "TASK-7777"

	first := f.submit(t, "globo")
	second := f.submit(t, "globo")

	_, err := f.cases.Forward(context.Background(), first.ID)
	require.NoError(t, err)

	_, err = f.cases.Forward(context.Background(), second.ID)
	require.Error(t, err)
	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, domainerrors.ErrDuplicateTaskNumber.ErrorCode(), appErr.ErrorCode())

	// The losing case is left untouched in submitted state.
	got, err := f.cases.GetCase(context.Background(), f.owner.ID, false, second.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CaseStatusSubmitted, got.Status)
	assert.Empty(t, got.TaskNumber)
}

func TestCaseService_ForwardTwiceFails(t *testing.T) {
	f := newCaseFixture(t)
	c := f.submit(t, "globo")

	_, err := f.cases.Forward(context.Background(), c.ID)
	require.NoError(t, err)

	_, err = f.cases.Forward(context.Background(), c.ID)
	var invalid *domainerrors.InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, entity.CaseStatusAwaitingReply.String(), invalid.From)
}

func TestCaseService_RecordReplyPendingApproval(t *testing.T) {
	f := newCaseFixture(t)
	c := f.submit(t, "globo") // globo is not auto-approved
	_, err := f.cases.Forward(context.Background(), c.ID)
	require.NoError(t, err)

	updated, err := f.cases.RecordReply(context.Background(), &usecase.RecordReplyInput{
		TaskNumber: "TASK-1001",
		Reply:      "Please descale the machine.",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.CaseStatusPendingApproval, updated.Status)
	assert.True(t, updated.NeedsApproval)
	assert.False(t, updated.Approved)
	assert.Equal(t, "Please descale the machine.", updated.ManufacturerReply)
	assert.Equal(t, "[en->da] Please descale the machine.", updated.ReplyTranslated)
	require.NotNil(t, updated.ReplyReceivedAt)

	// The support team is asked for sign-off; the user hears nothing yet.
	assert.Len(t, f.notifier.byKind(service.KindApprovalRequested), 1)
	assert.Empty(t, f.notifier.byKind(service.KindReplyAvailable))
}

func TestCaseService_RecordReplyAutoApprove(t *testing.T) {
	f := newCaseFixture(t)
	c := f.submit(t, "acme") // acme is on the auto-approve list
	_, err := f.cases.Forward(context.Background(), c.ID)
	require.NoError(t, err)

	updated, err := f.cases.RecordReply(context.Background(), &usecase.RecordReplyInput{
		TaskNumber: "TASK-1001",
		Reply:      "Firmware update fixes this.",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.CaseStatusApproved, updated.Status)
	assert.False(t, updated.NeedsApproval)
	assert.True(t, updated.Approved)
	require.NotNil(t, updated.ApprovedAt)

	released := f.notifier.byKind(service.KindReplyAvailable)
	require.Len(t, released, 1)
	assert.Equal(t, f.owner.Email, released[0].Recipient)
}

func TestCaseService_RecordReplyWrongStateLeavesCaseUnchanged(t *testing.T) {
	f := newCaseFixture(t)
	c := f.submit(t, "globo")
	_, err := f.cases.Forward(context.Background(), c.ID)
	require.NoError(t, err)

	_, err = f.cases.RecordReply(context.Background(), &usecase.RecordReplyInput{
		TaskNumber: "TASK-1001", Reply: "first",
	})
	require.NoError(t, err)

	// A second reply on the same task number hits pending_approval and fails.
	_, err = f.cases.RecordReply(context.Background(), &usecase.RecordReplyInput{
		TaskNumber: "TASK-1001", Reply: "second",
	})
	var invalid *domainerrors.InvalidTransitionError
	require.True(t, errors.As(err, &invalid))

	got, err := f.cases.GetCase(context.Background(), f.owner.ID, false, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.ManufacturerReply)
	assert.Equal(t, entity.CaseStatusPendingApproval, got.Status)
}

func TestCaseService_RecordReplyUnknownTaskNumber(t *testing.T) {
	f := newCaseFixture(t)

	_, err := f.cases.RecordReply(context.Background(), &usecase.RecordReplyInput{
		TaskNumber: "TASK-9999", Reply: "hello",
	})
	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, domainerrors.ErrCaseNotFound.ErrorCode(), appErr.ErrorCode())
}

func TestCaseService_ApproveAndClose(t *testing.T) {
	f := newCaseFixture(t)
	c := f.submit(t, "globo")
	_, err := f.cases.Forward(context.Background(), c.ID)
	require.NoError(t, err)
	_, err = f.cases.RecordReply(context.Background(), &usecase.RecordReplyInput{
		TaskNumber: "TASK-1001", Reply: "Descale it.",
	})
	require.NoError(t, err)

	adminID := uuid.New()
	approved, err := f.cases.Approve(context.Background(), c.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, entity.CaseStatusApproved, approved.Status)
	assert.True(t, approved.Approved)
	require.NotNil(t, approved.ApprovedAt)
	assert.Len(t, f.notifier.byKind(service.KindReplyAvailable), 1)

	// Approving twice fails; the first approval stands.
	_, err = f.cases.Approve(context.Background(), c.ID, adminID)
	var invalid *domainerrors.InvalidTransitionError
	require.True(t, errors.As(err, &invalid))

	closed, err := f.cases.Close(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CaseStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	// Closed is terminal.
	_, err = f.cases.Close(context.Background(), c.ID)
	require.True(t, errors.As(err, &invalid))
}

func TestCaseService_MarkReminderSentTwice(t *testing.T) {
	f := newCaseFixture(t)
	c := f.submit(t, "globo")
	_, err := f.cases.Forward(context.Background(), c.ID)
	require.NoError(t, err)

	updated, err := f.cases.MarkReminderSent(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, updated.ReminderSent)
	require.NotNil(t, updated.ReminderSentAt)
	assert.Equal(t, entity.CaseStatusAwaitingReply, updated.Status)

	_, err = f.cases.MarkReminderSent(context.Background(), c.ID)
	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, domainerrors.ErrAlreadyReminded.ErrorCode(), appErr.ErrorCode())
}

func TestCaseService_MarkReminderSentConcurrent(t *testing.T) {
	f := newCaseFixture(t)
	c := f.submit(t, "globo")
	_, err := f.cases.Forward(context.Background(), c.ID)
	require.NoError(t, err)

	const callers = 8
	results := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.cases.MarkReminderSent(context.Background(), c.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, alreadyReminded int
	for err := range results {
		if err == nil {
			successes++

			continue
		}
		var appErr domainerrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, domainerrors.ErrAlreadyReminded.ErrorCode(), appErr.ErrorCode())
		alreadyReminded++
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, alreadyReminded)
}

func TestCaseService_GetCaseOwnership(t *testing.T) {
	f := newCaseFixture(t)
	c := f.submit(t, "globo")
	stranger := uuid.New()

	_, err := f.cases.GetCase(context.Background(), stranger, false, c.ID)
	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, domainerrors.ErrPermissionDenied.ErrorCode(), appErr.ErrorCode())

	// An admin reads any case.
	got, err := f.cases.GetCase(context.Background(), stranger, true, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}

func TestCaseService_ListOwnNewestFirst(t *testing.T) {
	f := newCaseFixture(t)

	first := f.submit(t, "globo")
	f.clock.Advance(time.Hour)
	second := f.submit(t, "acme")

	cases, err := f.cases.ListOwn(context.Background(), f.owner.ID)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, second.ID, cases[0].ID)
	assert.Equal(t, first.ID, cases[1].ID)
}

func TestCaseService_ListPendingApprovals(t *testing.T) {
	f := newCaseFixture(t)
	c := f.submit(t, "globo")
	_, err := f.cases.Forward(context.Background(), c.ID)
	require.NoError(t, err)
	_, err = f.cases.RecordReply(context.Background(), &usecase.RecordReplyInput{
		TaskNumber: "TASK-1001", Reply: "pending review",
	})
	require.NoError(t, err)

	pending, err := f.cases.ListPendingApprovals(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, c.ID, pending[0].ID)
}
