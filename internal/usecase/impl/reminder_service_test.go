package impl

import (
	"context"
	"testing"
	"time"

	"caseflow/internal/domain/entity"
	"caseflow/internal/domain/service"
	"caseflow/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reminderFixture struct {
	*caseFixture
	reminders usecase.ReminderUsecase
}

func newReminderFixture(t *testing.T) *reminderFixture {
	t.Helper()

	base := newCaseFixture(t)
	reminders := NewReminderService(ReminderServiceParams{
		TxManager: base.txManager,
		Cases:     base.cases,
		Gateway:   base.gateway,
		Notifier:  base.notifier,
		Config:    testWorkflowConfig(),
		Logger:    testLogger(),
	})

	return &reminderFixture{caseFixture: base, reminders: reminders}
}

// forwardCase submits and forwards one case. The fixture clock starts on a
// Monday morning, so weekday arithmetic below is plain wall time.
func (f *reminderFixture) forwardCase(t *testing.T) *entity.Case {
	t.Helper()

	c := f.submit(t, "globo")
	forwarded, err := f.cases.Forward(context.Background(), c.ID)
	require.NoError(t, err)

	return forwarded
}

func TestReminderService_ScanRemindsOverdueCase(t *testing.T) {
	f := newReminderFixture(t)
	c := f.forwardCase(t) // forwarded Monday 09:00

	// Tuesday 10:00 is 25 business hours later.
	now := c.ForwardedAt.Add(25 * time.Hour)

	reminded, err := f.reminders.Scan(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, reminded, 1)
	assert.Equal(t, c.ID, reminded[0].ID)
	assert.True(t, reminded[0].ReminderSent)

	assert.Equal(t, 1, f.gateway.reminderCount())
	notified := f.notifier.byKind(service.KindReminder)
	require.Len(t, notified, 1)
	assert.Equal(t, "help@globo.test", notified[0].Recipient)
	assert.Equal(t, c.TaskNumber, notified[0].Payload["task_number"])
}

func TestReminderService_ScanWithinThresholdDoesNothing(t *testing.T) {
	f := newReminderFixture(t)
	c := f.forwardCase(t)

	// Tuesday 08:00: only 23 business hours elapsed.
	now := c.ForwardedAt.Add(23 * time.Hour)

	reminded, err := f.reminders.Scan(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, reminded)
	assert.Equal(t, 0, f.gateway.reminderCount())
}

func TestReminderService_ExactThresholdIsNotOverdue(t *testing.T) {
	f := newReminderFixture(t)
	c := f.forwardCase(t)

	// Exactly 24 business hours: not strictly greater, no reminder.
	now := c.ForwardedAt.Add(24 * time.Hour)

	reminded, err := f.reminders.Scan(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, reminded)
}

func TestReminderService_WeekendHoursDoNotCount(t *testing.T) {
	f := newReminderFixture(t)

	// Forward on Friday 10:00; the following Monday 10:00 is 72 wall hours
	// but only 24 business hours away.
	f.clock.Set(time.Date(2026, time.January, 9, 10, 0, 0, 0, time.UTC)) // Friday
	c := f.forwardCase(t)

	monday := time.Date(2026, time.January, 12, 10, 0, 0, 0, time.UTC)
	reminded, err := f.reminders.Scan(context.Background(), monday)
	require.NoError(t, err)
	assert.Empty(t, reminded)

	// One more weekday hour pushes it over the threshold.
	reminded, err = f.reminders.Scan(context.Background(), monday.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, reminded, 1)
	assert.Equal(t, c.ID, reminded[0].ID)
}

func TestReminderService_SecondScanSkipsRemindedCase(t *testing.T) {
	f := newReminderFixture(t)
	c := f.forwardCase(t)
	now := c.ForwardedAt.Add(25 * time.Hour)

	reminded, err := f.reminders.Scan(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, reminded, 1)

	// The flag excludes the case from every later scan.
	reminded, err = f.reminders.Scan(context.Background(), now.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, reminded)
	assert.Equal(t, 1, f.gateway.reminderCount())
}

func TestReminderService_DispatchFailureKeepsFlag(t *testing.T) {
	f := newReminderFixture(t)
	c := f.forwardCase(t)
	now := c.ForwardedAt.Add(25 * time.Hour)

	f.notifier.fail = true
	f.gateway.down = false

	reminded, err := f.reminders.Scan(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, reminded, 1)

	// The dispatch failed but the flag stays: at-most-once beats at-least-once here.
	got, err := f.cases.GetCase(context.Background(), f.owner.ID, false, c.ID)
	require.NoError(t, err)
	assert.True(t, got.ReminderSent)

	f.notifier.fail = false
	reminded, err = f.reminders.Scan(context.Background(), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, reminded)
}

func TestReminderService_ReplyBeforeThresholdSuppressesReminder(t *testing.T) {
	f := newReminderFixture(t)
	c := f.forwardCase(t)

	_, err := f.cases.RecordReply(context.Background(), &usecase.RecordReplyInput{
		TaskNumber: c.TaskNumber, Reply: "sorted",
	})
	require.NoError(t, err)

	reminded, err := f.reminders.Scan(context.Background(), c.ForwardedAt.Add(100*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, reminded)
}
