package service

import "strings"

// FallbackTitle is used when there is no input text to derive from.
const FallbackTitle = "Ringkasan"

const titleTokens = 5

// GenerateTitle derives a display title from the first sentence of the
// input: the sentence's first five whitespace-separated tokens joined
// by single spaces, with "..." appended when the sentence had five or
// more tokens.
func GenerateTitle(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return FallbackTitle
	}

	first := ""
	for _, sentence := range strings.FieldsFunc(trimmed, isSentenceEnd) {
		if s := strings.TrimSpace(sentence); s != "" {
			first = s
			break
		}
	}
	if first == "" {
		return FallbackTitle
	}

	words := strings.Fields(first)
	if len(words) < titleTokens {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:titleTokens], " ") + "..."
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}
