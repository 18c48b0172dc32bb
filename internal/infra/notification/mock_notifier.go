package notification

import (
	"context"
	"log/slog"

	"caseflow/internal/domain/service"
)

// mockNotifier logs would-be emails instead of sending them. Used in
// development and tests, where showing the verification code beats mailing it.
type mockNotifier struct {
	logger *slog.Logger
}

// NewMockNotifier creates a Notifier that only logs.
func NewMockNotifier(logger *slog.Logger) service.Notifier {
	return &mockNotifier{logger: logger}
}

func (m *mockNotifier) Send(_ context.Context, n *service.Notification) error {
	attrs := make([]any, 0, len(n.Payload)+2)
	attrs = append(attrs,
		slog.String("recipient", n.Recipient),
		slog.String("kind", string(n.Kind)))
	for k, v := range n.Payload {
		attrs = append(attrs, slog.String(k, v))
	}

	m.logger.Info("Mock notification", attrs...)

	return nil
}
