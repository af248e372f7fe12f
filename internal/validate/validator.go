package validate

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ppiankov/fnd/internal/model"
)

// InputValidator enforces the pre-conditions the scorer assumes
type InputValidator struct {
	minWords       int
	minLetterRatio float64
}

// NewInputValidator creates a validator from the input configuration
func NewInputValidator(cfg model.InputConfig) *InputValidator {
	if cfg.MinWords <= 0 {
		cfg.MinWords = 100
	}
	if cfg.MinLetterRatio <= 0 || cfg.MinLetterRatio > 1 {
		cfg.MinLetterRatio = 0.5
	}

	return &InputValidator{
		minWords:       cfg.MinWords,
		minLetterRatio: cfg.MinLetterRatio,
	}
}

// ValidateText checks pasted article text and returns it trimmed
func (v *InputValidator) ValidateText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", fmt.Errorf("%w: no article text provided", model.ErrEmptyInput)
	}

	words := WordCount(trimmed)
	if words < v.minWords {
		return "", fmt.Errorf("%w: %d words, at least %d required", model.ErrTooShort, words, v.minWords)
	}

	ratio := LetterRatio(trimmed)
	if ratio < v.minLetterRatio {
		return "", fmt.Errorf("%w: %.0f%% latin letters, at least %.0f%% required",
			model.ErrUnsupportedLanguage, ratio*100, v.minLetterRatio*100)
	}

	return trimmed, nil
}

// ResolveURL parses a user-entered URL and returns its hostname
func (v *InputValidator) ResolveURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("%w: no URL provided", model.ErrEmptyInput)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrInvalidURLFormat, err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q has no scheme or host", model.ErrInvalidURLFormat, trimmed)
	}

	host := parsed.Hostname()
	if host == "" {
		return "", fmt.Errorf("%w: %q has no hostname", model.ErrInvalidURLFormat, trimmed)
	}

	return strings.ToLower(host), nil
}

// WordCount counts whitespace-separated tokens
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// LetterRatio returns the share of characters that are ASCII letters
func LetterRatio(text string) float64 {
	total := 0
	letters := 0
	for _, r := range text {
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}
