package config

import "strings"

const (
	LangEN = "en"
	LangES = "es"
)

// UILanguage maps the message locale onto a language the CLI itself is translated to.
// The commit message locale can be anything; CLI output falls back to English.
func UILanguage(locale string) string {
	base, _, _ := strings.Cut(strings.ToLower(locale), "-")
	switch base {
	case LangES:
		return LangES
	default:
		return LangEN
	}
}
