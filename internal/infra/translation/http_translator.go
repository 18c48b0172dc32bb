package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"caseflow/config"
	domainerrors "caseflow/internal/domain/errors"
	"caseflow/internal/domain/service"

	"github.com/pkg/errors"
)

// httpTranslator implements Translator against a REST translation API. Any
// transport or provider failure surfaces as ErrTranslationUnavailable so the
// workflow can keep the untranslated text and move on.
type httpTranslator struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
	DetectedLang   string `json:"detected_lang,omitempty"`
}

type detectRequest struct {
	Text string `json:"text"`
}

type detectResponse struct {
	Lang string `json:"lang"`
}

// NewHTTPTranslator creates a Translator backed by the configured REST API.
func NewHTTPTranslator(cfg *config.TranslationConfig, logger *slog.Logger) service.Translator {
	return &httpTranslator{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (t *httpTranslator) DetectLanguage(ctx context.Context, text string) (string, error) {
	var out detectResponse
	if err := t.post(ctx, "/detect", detectRequest{Text: text}, &out); err != nil {
		t.logger.Warn("Language detection request failed", slog.Any("error", err))

		return "", domainerrors.ErrTranslationUnavailable.WithDetails(err.Error())
	}
	if out.Lang == "" {
		return "", domainerrors.ErrTranslationUnavailable.WithDetails("provider returned no language")
	}

	return out.Lang, nil
}

func (t *httpTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if sourceLang == targetLang {
		return text, nil
	}

	var out translateResponse
	req := translateRequest{Text: text, SourceLang: sourceLang, TargetLang: targetLang}
	if err := t.post(ctx, "/translate", req, &out); err != nil {
		t.logger.Warn("Translation request failed",
			slog.Any("error", err),
			slog.String("source", sourceLang),
			slog.String("target", targetLang),
		)

		return "", domainerrors.ErrTranslationUnavailable.WithDetails(err.Error())
	}
	if out.TranslatedText == "" {
		return "", domainerrors.ErrTranslationUnavailable.WithDetails("provider returned empty translation")
	}

	return out.TranslatedText, nil
}

func (t *httpTranslator) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("translation provider returned status %d", resp.StatusCode)
	}

	return errors.WithStack(json.NewDecoder(resp.Body).Decode(out))
}
