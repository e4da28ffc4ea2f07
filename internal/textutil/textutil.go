// Package textutil shapes raw transcript text into the short labels used by
// the navigation panel: one-line summaries, hover previews, and the head+tail
// elision applied before text is sent to the summarization gateway.
package textutil

import "strings"

// Placeholder is shown for turns whose user text could not be extracted.
const Placeholder = "(no content)"

// elideSeparator marks the removed middle of an elided text.
const elideSeparator = "……"

// OneLine collapses all whitespace runs into single spaces and trims the ends.
func OneLine(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}

// Summary produces the panel label for a turn: a single line truncated to max
// runes. Empty or whitespace-only input yields the placeholder label.
func Summary(text string, max int) string {
	line := OneLine(text)
	if line == "" {
		return Placeholder
	}
	return Truncate(line, max)
}

// FullText produces the longer preview label. Unlike Summary, empty input
// stays empty so callers can skip rendering the preview entirely.
func FullText(text string, max int) string {
	return Truncate(OneLine(text), max)
}

// Truncate cuts text to max runes, appending "..." when anything was removed.
func Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

// Elide shortens text that exceeds max runes by keeping the first and last
// half runes and dropping the middle. Text at or under max passes through
// unchanged, so the function is idempotent once its output fits.
func Elide(text string, max, half int) string {
	runes := []rune(text)
	if len(runes) <= max || max <= 0 || half <= 0 {
		return text
	}
	if 2*half >= len(runes) {
		return text
	}
	return string(runes[:half]) + elideSeparator + string(runes[len(runes)-half:])
}
