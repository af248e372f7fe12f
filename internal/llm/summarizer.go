package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ppiankov/fnd/internal/extract"
	"github.com/ppiankov/fnd/internal/model"
	"github.com/sony/gobreaker"
)

// newBackOff returns the retry schedule between provider attempts
var newBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.Multiplier = 2.0
	b.MaxElapsedTime = 0 // bounded by MaxRetries instead
	return b
}

// Summarizer produces the optional narrative summary for a finished analysis.
// It never changes the score; every failure degrades to a warning.
type Summarizer struct {
	provider Provider
	config   Config
	breaker  *gobreaker.CircuitBreaker
}

// NewSummarizer creates a summarizer; the provider is nil when LLM is disabled
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return newSummarizer(provider, config), nil
}

func newSummarizer(provider Provider, config Config) *Summarizer {
	settings := gobreaker.Settings{
		Name:        "llm-summary",
		MaxRequests: 1,
		Interval:    0, // Don't reset counts automatically
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Summarizer{
		provider: provider,
		config:   config,
		breaker:  gobreaker.NewCircuitBreaker(settings),
	}
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the configured provider, or "" when disabled
func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary explains result using only the links found in articleText.
// Returns nil when disabled. Provider failures are reported as warnings, not errors.
func (s *Summarizer) GenerateSummary(ctx context.Context, result model.AnalysisResult, articleText string) (*model.LLMSummary, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	summary := &model.LLMSummary{
		Enabled:        true,
		Provider:       s.provider.Name(),
		Model:          s.config.Model,
		StrictEvidence: s.config.StrictEvidence,
	}

	if !s.provider.IsAvailable(ctx) {
		summary.Enabled = false
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("LLM provider '%s' is not available (check API key or connection)", summary.Provider))
		return summary, nil
	}

	req := SummarizeRequest{
		Result:       result,
		EvidenceURLs: extract.Links(articleText),
		Model:        s.config.Model,
		MaxTokens:    s.config.MaxTokens,
	}

	resp, err := s.summarize(ctx, req)
	if err != nil {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("LLM summary generation failed: %v", err))
		return summary, nil
	}

	summary.SummaryMD = resp.Summary
	if resp.Model != "" {
		summary.Model = resp.Model
	}

	summary.Warnings = append(summary.Warnings, fmt.Sprintf("Tokens used: %d", resp.TokensUsed))
	if s.config.StrictEvidence {
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("Verified %d citations against %d article links", len(resp.CitedURLs), len(req.EvidenceURLs)))
	}

	return summary, nil
}

// summarize calls the provider through the circuit breaker, retrying transient failures
func (s *Summarizer) summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	var resp *SummarizeResponse

	operation := func() error {
		out, err := s.breaker.Execute(func() (interface{}, error) {
			return s.provider.Summarize(ctx, req)
		})
		if err != nil {
			if permanent(ctx, err) {
				return backoff.Permanent(err)
			}
			return err
		}

		r, _ := out.(*SummarizeResponse)
		if r == nil {
			return backoff.Permanent(fmt.Errorf("empty response from %s", s.provider.Name()))
		}
		resp = r
		return nil
	}

	retries := s.config.MaxRetries
	if retries < 0 {
		retries = 0
	}
	b := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), uint64(retries)), ctx)

	if err := backoff.Retry(operation, b); err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return nil, fmt.Errorf("circuit breaker is open: %w", err)
		}
		return nil, err
	}
	return resp, nil
}

// permanent reports whether retrying err cannot help
func permanent(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, ErrCitationLeak) ||
		errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests)
}

// RenderSeparateMarkdown renders the summary as a standalone document.
// Returns "" when there is nothing to render.
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}

	var b strings.Builder

	b.WriteString("# LLM Summary\n\n")
	b.WriteString("> **GENERATED CONTENT**: written by a language model after scoring finished. ")
	b.WriteString("The credibility score was determined independently by heuristic rules and is not affected by this text.\n\n")

	fmt.Fprintf(&b, "- **Provider**: %s\n", summary.Provider)
	if summary.Model != "" {
		fmt.Fprintf(&b, "- **Model**: %s\n", summary.Model)
	}
	fmt.Fprintf(&b, "- **Strict Evidence Mode**: %t\n\n", summary.StrictEvidence)

	b.WriteString("---\n\n")
	if strings.TrimSpace(summary.SummaryMD) == "" {
		b.WriteString("_No summary generated._\n")
	} else {
		b.WriteString(summary.SummaryMD)
		b.WriteString("\n")
	}

	if len(summary.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range summary.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}
