package ai

import (
	"regexp"
	"strings"
)

var trailingPeriod = regexp.MustCompile(`(\w)\.$`)

// SanitizeMessage trims the completion, drops line breaks and removes one trailing
// period that follows a word character. "v1.2." keeps its inner dots, "..." is left alone.
func SanitizeMessage(message string) string {
	message = strings.TrimSpace(message)
	message = strings.NewReplacer("\n", "", "\r", "").Replace(message)
	return trailingPeriod.ReplaceAllString(message, "$1")
}

// DeduplicateMessages drops exact repeats, keeping the first occurrence order.
func DeduplicateMessages(messages []string) []string {
	seen := make(map[string]struct{}, len(messages))
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// NormalizeMessages sanitizes and deduplicates raw completions. Completions that are
// empty after sanitizing are dropped, so the result may be shorter than the input.
func NormalizeMessages(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, r := range raw {
		if m := SanitizeMessage(r); m != "" {
			sanitized = append(sanitized, m)
		}
	}
	return DeduplicateMessages(sanitized)
}

// NormalizeMultiline trims and deduplicates completions that keep their line structure,
// such as pull request descriptions.
func NormalizeMultiline(raw []string) []string {
	trimmed := make([]string, 0, len(raw))
	for _, r := range raw {
		if m := strings.TrimSpace(strings.ReplaceAll(r, "\r\n", "\n")); m != "" {
			trimmed = append(trimmed, m)
		}
	}
	return DeduplicateMessages(trimmed)
}
