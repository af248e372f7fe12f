package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/fnd/internal/model"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestInputValidator_ValidateText(t *testing.T) {
	v := NewInputValidator(model.DefaultConfig().Input)

	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"empty", "", model.ErrEmptyInput},
		{"whitespace", "  \n\t ", model.ErrEmptyInput},
		{"99 words", words(99), model.ErrTooShort},
		{"100 words", words(100), nil},
		{"non latin", strings.TrimSpace(strings.Repeat("слово ", 120)), model.ErrUnsupportedLanguage},
		{"digits heavy", strings.TrimSpace(strings.Repeat("a1234 ", 120)), model.ErrUnsupportedLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateText(tt.text)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestInputValidator_ValidateText_Trims(t *testing.T) {
	v := NewInputValidator(model.InputConfig{MinWords: 2})

	got, err := v.ValidateText("\n  hello world  \n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello world" {
		t.Errorf("expected trimmed text, got %q", got)
	}
}

func TestInputValidator_ResolveURL(t *testing.T) {
	v := NewInputValidator(model.InputConfig{})

	tests := []struct {
		raw     string
		host    string
		wantErr error
	}{
		{"https://www.bbc.com/news/article-1", "www.bbc.com", nil},
		{"  http://Example.ORG:8080/path  ", "example.org", nil},
		{"", "", model.ErrEmptyInput},
		{"   ", "", model.ErrEmptyInput},
		{"bbc.com/news", "", model.ErrInvalidURLFormat},
		{"https://", "", model.ErrInvalidURLFormat},
		{"http://[::1", "", model.ErrInvalidURLFormat},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			host, err := v.ResolveURL(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if host != tt.host {
				t.Errorf("expected host %q, got %q", tt.host, host)
			}
		})
	}
}

func TestNewInputValidator_Defaults(t *testing.T) {
	v := NewInputValidator(model.InputConfig{})
	if v.minWords != 100 {
		t.Errorf("expected default 100 words, got %d", v.minWords)
	}
	if v.minLetterRatio != 0.5 {
		t.Errorf("expected default ratio 0.5, got %v", v.minLetterRatio)
	}
}

func TestLetterRatio(t *testing.T) {
	if LetterRatio("") != 0 {
		t.Error("expected 0 for empty text")
	}
	if LetterRatio("abcd") != 1 {
		t.Error("expected 1 for all letters")
	}
	if r := LetterRatio("ab12"); r != 0.5 {
		t.Errorf("expected 0.5, got %v", r)
	}
}

func TestWordCount(t *testing.T) {
	if n := WordCount("one  two\nthree\tfour"); n != 4 {
		t.Errorf("expected 4, got %d", n)
	}
}
