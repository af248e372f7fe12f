package model

import "errors"

// Input and analysis failures surfaced to callers.
// Wrap with fmt.Errorf("%w: ...") and test with errors.Is.
var (
	ErrEmptyInput                = errors.New("empty input")
	ErrInvalidURLFormat          = errors.New("invalid URL format")
	ErrTooShort                  = errors.New("article too short")
	ErrUnsupportedLanguage       = errors.New("unsupported language")
	ErrUnexpectedAnalysisFailure = errors.New("unexpected analysis failure")
)

// UserMessage returns the message shown to a person for a taxonomy error
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return "Please enter a URL or paste some article text."
	case errors.Is(err, ErrInvalidURLFormat):
		return "Invalid URL format. Please enter a valid URL."
	case errors.Is(err, ErrTooShort):
		return "Article too short. Please provide at least 100 words."
	case errors.Is(err, ErrUnsupportedLanguage):
		return "Only English articles are supported."
	default:
		return "An unexpected error occurred during analysis."
	}
}

// ErrorReason returns a short machine-readable label for a taxonomy error
func ErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrInvalidURLFormat):
		return "invalid_url"
	case errors.Is(err, ErrTooShort):
		return "too_short"
	case errors.Is(err, ErrUnsupportedLanguage):
		return "unsupported_language"
	default:
		return "unexpected"
	}
}
