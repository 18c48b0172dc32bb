package impl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"caseflow/config"
	domainerrors "caseflow/internal/domain/errors"
	"caseflow/internal/domain/service"

	"github.com/pkg/errors"
)

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fakeTranslator tags text like the development translator and can be
// switched into outage mode.
type fakeTranslator struct {
	detected string
	down     bool
}

func (t *fakeTranslator) DetectLanguage(context.Context, string) (string, error) {
	if t.down {
		return "", domainerrors.ErrTranslationUnavailable
	}
	if t.detected == "" {
		return service.EnglishLang, nil
	}

	return t.detected, nil
}

func (t *fakeTranslator) Translate(_ context.Context, text, sourceLang, targetLang string) (string, error) {
	if t.down {
		return "", domainerrors.ErrTranslationUnavailable
	}
	if sourceLang == targetLang {
		return text, nil
	}

	return fmt.Sprintf("[%s->%s] %s", sourceLang, targetLang, text), nil
}

// fakeGateway issues sequential task numbers and can be forced down or made
// to repeat a task number.
type fakeGateway struct {
	mu        sync.Mutex
	counter   int
	down      bool
	fixedTask string
	reminders []string
}

func (g *fakeGateway) SubmitCase(context.Context, string, string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.down {
		return "", domainerrors.ErrManufacturerUnavailable
	}
	if g.fixedTask != "" {
		return g.fixedTask, nil
	}
	g.counter++

	return fmt.Sprintf("TASK-%d", 1000+g.counter), nil
}

func (g *fakeGateway) SendReminder(_ context.Context, _, taskNumber string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.down {
		return domainerrors.ErrManufacturerUnavailable
	}
	g.reminders = append(g.reminders, taskNumber)

	return nil
}

func (g *fakeGateway) reminderCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.reminders)
}

// fakeNotifier records every notification and can simulate delivery failure.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []service.Notification
	fail bool
}

func (n *fakeNotifier) Send(_ context.Context, notification *service.Notification) error {
	if n.fail {
		return errors.New("smtp connection refused")
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, *notification)

	return nil
}

func (n *fakeNotifier) byKind(kind service.NotificationKind) []service.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []service.Notification
	for _, msg := range n.sent {
		if msg.Kind == kind {
			out = append(out, msg)
		}
	}

	return out
}

func testWorkflowConfig() *config.Config {
	cfg := &config.Config{
		Workflow: &config.WorkflowConfig{
			ReminderThresholdHours:   24,
			SessionTimeoutHours:      24,
			CodeExpiryMinutes:        10,
			AutoApproveManufacturers: []string{"acme"},
		},
		SMTP: &config.SMTPConfig{
			CompanyName:  "Caseflow",
			SupportEmail: "support@caseflow.test",
			UseMock:      true,
		},
		Translation: &config.TranslationConfig{
			UseMock: true,
			SupportedLanguages: map[string]string{
				"en": "English",
				"da": "Danish",
				"de": "German",
			},
		},
		Manufacturers: map[string]config.ManufacturerConfig{
			"acme":  {Name: "Acme", Email: "support@acme.test", UseMock: true},
			"globo": {Name: "Globo", Email: "help@globo.test", UseMock: true},
		},
	}
	cfg.SecretKey.Access = "test_access_secret_key_very_long_for_testing"

	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
