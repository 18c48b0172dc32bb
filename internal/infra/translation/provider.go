package translation

import (
	"log/slog"

	"caseflow/config"
	"caseflow/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// TranslatorParams holds dependencies for the Translator, injected by Fx
type TranslatorParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewTranslator creates a Translator based on configuration.
func NewTranslator(params TranslatorParams) (service.Translator, error) {
	cfg := params.Config.Translation
	logger := params.Logger

	if cfg == nil || cfg.UseMock {
		logger.Info("Translation provider not configured or mocked, using mock translator")

		return NewMockTranslator(logger), nil
	}

	if cfg.APIURL == "" {
		return nil, errors.New("translation api url is required when mock is disabled")
	}

	logger.Info("Using HTTP translation provider", slog.String("api_url", cfg.APIURL))

	return NewHTTPTranslator(cfg, logger), nil
}
