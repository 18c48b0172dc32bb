package notification

import (
	"log/slog"

	"caseflow/config"
	"caseflow/internal/domain/service"

	"go.uber.org/fx"
)

// NotifierParams holds dependencies for the Notifier, injected by Fx
type NotifierParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewNotifier creates a Notifier based on configuration. With no SMTP block,
// or with useMock set, mail goes to the log instead of the wire.
func NewNotifier(params NotifierParams) (service.Notifier, error) {
	cfg := params.Config
	logger := params.Logger

	if cfg.SMTP == nil || cfg.SMTP.UseMock {
		logger.Info("SMTP not configured or mocked, using mock notifier")

		return NewMockNotifier(logger), nil
	}

	logger.Info("Using SMTP notifier",
		slog.String("host", cfg.SMTP.Host),
		slog.String("sender", cfg.SMTP.SenderEmail),
	)

	return NewSMTPNotifier(cfg)
}
