package service

import "context"

// EnglishLang is the pivot language all manufacturer communication uses.
const EnglishLang = "en"

// Translator is the boundary to the translation provider. Failures surface
// as ErrTranslationUnavailable; the caller keeps the untranslated text and
// proceeds, flagging the case for retry.
type Translator interface {
	// DetectLanguage returns the ISO 639-1 code of the text's language.
	DetectLanguage(ctx context.Context, text string) (string, error)

	// Translate converts text between two language codes. Translating to
	// the source language returns the text unchanged.
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}
