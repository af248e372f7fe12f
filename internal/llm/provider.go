package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/fnd/internal/extract"
	"github.com/ppiankov/fnd/internal/model"
)

// ErrCitationLeak is returned when a summary cites a URL the article never linked
var ErrCitationLeak = errors.New("citation leak")

const systemPrompt = "You explain F.N.D. credibility analyses with strict adherence to evidence constraints."

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a summary of the analysis with strict evidence mode
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Result is the finished analysis to explain
	Result model.AnalysisResult

	// EvidenceURLs is the STRICT allowlist of URLs the LLM can cite:
	// the links found in the article text
	EvidenceURLs []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	Summary    string
	CitedURLs  []string // URLs the LLM actually cited (for verification)
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	Timeout int // seconds

	// StrictEvidence enforces the URL allowlist
	StrictEvidence bool

	MaxTokens  int
	MaxRetries int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:       "", // Disabled by default
		Timeout:        30,
		StrictEvidence: true,
		MaxTokens:      600,
		MaxRetries:     2,
	}
}

// BuildPrompt constructs the default prompt for explaining an analysis
func BuildPrompt(result model.AnalysisResult, evidenceURLs []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are explaining an F.N.D. credibility analysis. The score is a heuristic estimate from fixed text rules - it NEVER establishes whether the article is true or false.

CRITICAL RULES:
1. You MUST ONLY cite URLs from this allowed list:
%s

2. DO NOT infer, speculate, or cite external sources beyond this list.
3. DO NOT change, dispute or recompute the score. Explain it.
4. Never say "this article is true" or "this article is false" - only describe the signals.

Analysis:
- Source: %s
- Headline: %s
- Verdict: %s
- Credibility Score: %d%% (%s)

Rule results:
`, joinURLs(evidenceURLs), result.Source, result.Headline, result.Judgment, result.FinalConfidence, result.Level)

	for _, item := range result.Analysis {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", item.Score, item.Rule, item.Reasoning)
	}

	b.WriteString("\nProvide a 3-4 sentence plain-language explanation of what drove the score and what a reader should verify next.")

	return b.String()
}

// joinURLs formats the allowlist, capped at 20 entries
func joinURLs(urls []string) string {
	if len(urls) == 0 {
		return "(No URLs in the article - cite nothing)"
	}

	var b strings.Builder
	for i, u := range urls {
		if i >= 20 {
			fmt.Fprintf(&b, "\n... and %d more URLs", len(urls)-20)
			break
		}
		fmt.Fprintf(&b, "\n- %s", u)
	}
	return b.String()
}

// verifyCitations extracts the URLs in summary and, in strict mode, rejects any not in allowed
func verifyCitations(summary string, allowed []string, strict bool) ([]string, error) {
	cited := extract.Links(summary)
	if !strict {
		return cited, nil
	}

	allow := make(map[string]bool, len(allowed))
	for _, u := range allowed {
		allow[u] = true
	}

	for _, u := range cited {
		if !allow[u] {
			return nil, fmt.Errorf("%w: LLM cited disallowed URL: %s", ErrCitationLeak, u)
		}
	}
	return cited, nil
}

// pickModel resolves the model from request, config, then fallback
func pickModel(req, cfg, fallback string) string {
	if req != "" {
		return req
	}
	if cfg != "" {
		return cfg
	}
	return fallback
}

// pickMaxTokens resolves the token limit from request, config, then 600
func pickMaxTokens(req, cfg int) int {
	if req > 0 {
		return req
	}
	if cfg > 0 {
		return cfg
	}
	return 600
}
