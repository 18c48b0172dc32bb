// Package translation implements the translation provider boundary.
package translation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"caseflow/internal/domain/service"
)

// languageNames maps supported ISO 639-1 codes to display names.
var languageNames = map[string]string{
	"en": "English",
	"da": "Danish",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"sv": "Swedish",
	"no": "Norwegian",
	"nl": "Dutch",
	"it": "Italian",
	"pt": "Portuguese",
}

// markerWords are high-frequency function words used for the mock's cheap
// language detection. Real detection is the HTTP provider's job.
var markerWords = map[string][]string{
	"da": {"jeg", "ikke", "det", "og", "hej", "tak"},
	"de": {"ich", "nicht", "und", "der", "die", "das", "ist"},
	"fr": {"je", "ne", "pas", "le", "la", "est", "bonjour"},
	"es": {"yo", "no", "el", "la", "es", "hola", "gracias"},
	"sv": {"jag", "inte", "och", "det", "hej", "tack"},
	"nl": {"ik", "niet", "het", "een", "en", "dank"},
	"it": {"io", "non", "il", "la", "ciao", "grazie"},
	"pt": {"eu", "não", "o", "a", "olá", "obrigado"},
}

// mockTranslator fakes translation by tagging the text with the language
// pair, matching how the system behaves before a real provider is wired.
type mockTranslator struct {
	logger *slog.Logger
}

// NewMockTranslator creates a Translator that tags instead of translating.
func NewMockTranslator(logger *slog.Logger) service.Translator {
	return &mockTranslator{logger: logger}
}

// DetectLanguage guesses the language from function-word frequency and falls
// back to English when nothing matches.
func (m *mockTranslator) DetectLanguage(_ context.Context, text string) (string, error) {
	tokens := strings.Fields(strings.ToLower(text))

	best, bestHits := service.EnglishLang, 0
	for code, words := range markerWords {
		hits := 0
		for _, token := range tokens {
			for _, w := range words {
				if strings.Trim(token, ".,!?;:") == w {
					hits++
				}
			}
		}
		if hits > bestHits {
			best, bestHits = code, hits
		}
	}

	m.logger.Debug("Mock language detection", slog.String("detected", best))

	return best, nil
}

// Translate tags the text with the language pair. Same-language translation
// returns the text unchanged.
func (m *mockTranslator) Translate(_ context.Context, text, sourceLang, targetLang string) (string, error) {
	if sourceLang == targetLang {
		return text, nil
	}

	if targetLang == service.EnglishLang {
		return fmt.Sprintf("[Translated from %s to English] %s", displayName(sourceLang), text), nil
	}

	return fmt.Sprintf("[Translated to %s] %s", displayName(targetLang), text), nil
}

func displayName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}

	return code
}
