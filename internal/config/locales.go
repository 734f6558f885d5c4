package config

import "log/slog"

const (
	LangEN = "en"
	LangES = "es"
)

// SupportedLanguages lists the languages with a built-in message catalog.
func SupportedLanguages() []string {
	return []string{LangEN, LangES}
}

func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages() {
		if l == lang {
			return true
		}
	}
	return false
}

// GetLocaleConfig falls back to English for unknown languages.
func GetLocaleConfig(lang string) string {
	if IsSupportedLanguage(lang) {
		return lang
	}
	slog.Warn("unsupported language, falling back to english", "language", lang)
	return LangEN
}
