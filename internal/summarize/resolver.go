package summarize

import (
	"errors"
	"net/url"
	"strings"
)

// ErrEmptyInput is returned for empty or whitespace-only submissions.
// Rejected before any classification or network call.
var ErrEmptyInput = errors.New("input is empty")

// Kind is the dispatch path a submission resolves to.
type Kind int

const (
	KindText Kind = iota
	KindURL
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindFile:
		return "file"
	default:
		return "text"
	}
}

// Resolve classifies a raw text submission. A well-formed absolute
// http/https URL goes to the URL path; any other non-empty string is
// plain text. File uploads never pass through here, they are KindFile
// by construction.
func Resolve(input string) (Kind, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return KindText, ErrEmptyInput
	}
	if isAbsoluteURL(trimmed) {
		return KindURL, nil
	}
	return KindText, nil
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
