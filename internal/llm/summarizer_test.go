package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/ppiankov/fnd/internal/model"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	response  *SummarizeResponse
	err       error
	failFirst int // fail this many calls with err before succeeding
	calls     atomic.Int32
	lastReq   SummarizeRequest
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	n := int(m.calls.Add(1))
	m.lastReq = req
	if m.err != nil && (m.failFirst == 0 || n <= m.failFirst) {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

// noWait replaces the retry schedule for the duration of a test
func noWait(t *testing.T) {
	t.Helper()
	orig := newBackOff
	newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	t.Cleanup(func() { newBackOff = orig })
}

func testResult() model.AnalysisResult {
	return model.AnalysisResult{
		Source:   "bbc.com",
		Headline: "Calm Report On Policy",
		Analysis: []model.AnalysisItem{
			{Rule: model.RuleSourceCredibility, Passed: model.OutcomePassed, Score: "+10", Reasoning: "Source domain 'bbc.com' is on the list of reputable news outlets."},
			{Rule: model.RuleDateContext, Passed: model.OutcomeFailed, Score: "-5", Reasoning: "The article lacks a clear publication date."},
		},
		FinalConfidence: 55,
		Judgment:        model.LikelyCredible,
		Level:           model.LevelLow,
	}
}

func TestNewSummarizer_DisabledProvider(t *testing.T) {
	summarizer, err := NewSummarizer(Config{Provider: ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summarizer.IsEnabled() {
		t.Error("Expected summarizer to be disabled")
	}
	if summarizer.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}
}

func TestNewSummarizer_UnknownProvider(t *testing.T) {
	if _, err := NewSummarizer(Config{Provider: "bard"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestNewSummarizer_MissingKey(t *testing.T) {
	for _, provider := range []string{"openai", "anthropic", "claude"} {
		if _, err := NewSummarizer(Config{Provider: provider}); err == nil {
			t.Errorf("Expected error for %s without API key", provider)
		}
	}
}

func TestSummarizer_GenerateSummary_Disabled(t *testing.T) {
	summarizer := newSummarizer(nil, Config{})

	summary, err := summarizer.GenerateSummary(context.Background(), testResult(), "text")
	if err != nil {
		t.Errorf("Expected no error when disabled, got %v", err)
	}
	if summary != nil {
		t.Error("Expected nil summary when provider disabled")
	}

	var nilSummarizer *Summarizer
	if summary, _ := nilSummarizer.GenerateSummary(context.Background(), testResult(), ""); summary != nil {
		t.Error("Expected nil summary from nil summarizer")
	}
}

func TestSummarizer_GenerateSummary_ProviderUnavailable(t *testing.T) {
	summarizer := newSummarizer(&MockProvider{name: "test-provider", available: false}, Config{StrictEvidence: true})

	summary, err := summarizer.GenerateSummary(context.Background(), testResult(), "text")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if summary == nil {
		t.Fatal("Expected summary object with warnings")
	}
	if summary.Enabled {
		t.Error("Expected summary to be marked as disabled")
	}

	found := false
	for _, warning := range summary.Warnings {
		if strings.Contains(warning, "not available") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected warning about unavailability, got %v", summary.Warnings)
	}
}

func TestSummarizer_GenerateSummary_Success(t *testing.T) {
	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		response: &SummarizeResponse{
			Summary:    "The source is reputable but no date was found.",
			CitedURLs:  []string{"https://example.com/1"},
			Model:      "test-model",
			TokensUsed: 150,
		},
	}
	summarizer := newSummarizer(mock, Config{Model: "test-model", StrictEvidence: true, MaxTokens: 300})

	article := "Headline\nSee https://example.com/1 and https://example.com/2."
	summary, err := summarizer.GenerateSummary(context.Background(), testResult(), article)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary == nil || !summary.Enabled {
		t.Fatal("Expected enabled summary")
	}

	if summary.Provider != "test-provider" || summary.Model != "test-model" {
		t.Errorf("Unexpected provider/model: %s/%s", summary.Provider, summary.Model)
	}
	if summary.SummaryMD != "The source is reputable but no date was found." {
		t.Errorf("Unexpected summary text: %s", summary.SummaryMD)
	}

	// The allowlist comes from the article text
	if len(mock.lastReq.EvidenceURLs) != 2 || mock.lastReq.MaxTokens != 300 {
		t.Errorf("Unexpected request: %+v", mock.lastReq)
	}

	foundTokens, foundCitations := false, false
	for _, warning := range summary.Warnings {
		if strings.Contains(warning, "Tokens used: 150") {
			foundTokens = true
		}
		if strings.Contains(warning, "Verified 1 citations against 2 article links") {
			foundCitations = true
		}
	}
	if !foundTokens || !foundCitations {
		t.Errorf("Expected token and citation notes, got %v", summary.Warnings)
	}
}

func TestSummarizer_GenerateSummary_ProviderError(t *testing.T) {
	noWait(t)

	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		err:       errors.New("API rate limit exceeded"),
	}
	summarizer := newSummarizer(mock, Config{StrictEvidence: true, MaxRetries: 2})

	summary, err := summarizer.GenerateSummary(context.Background(), testResult(), "text")
	if err != nil {
		t.Errorf("Expected no error (graceful degradation), got %v", err)
	}
	if summary == nil || !summary.Enabled {
		t.Fatal("Expected enabled summary with error warning")
	}
	if summary.SummaryMD != "" {
		t.Error("Expected no summary text on failure")
	}

	if got := mock.calls.Load(); got != 3 {
		t.Errorf("Expected 1 attempt + 2 retries, got %d", got)
	}

	found := false
	for _, warning := range summary.Warnings {
		if strings.Contains(warning, "failed") && strings.Contains(warning, "rate limit") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected warning to mention error: %v", summary.Warnings)
	}
}

func TestSummarizer_RetriesTransientFailure(t *testing.T) {
	noWait(t)

	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		err:       errors.New("connection reset"),
		failFirst: 1,
		response:  &SummarizeResponse{Summary: "ok", TokensUsed: 5},
	}
	summarizer := newSummarizer(mock, Config{MaxRetries: 2})

	summary, _ := summarizer.GenerateSummary(context.Background(), testResult(), "")
	if summary.SummaryMD != "ok" {
		t.Errorf("Expected success after retry, got warnings %v", summary.Warnings)
	}
	if got := mock.calls.Load(); got != 2 {
		t.Errorf("Expected 2 attempts, got %d", got)
	}
}

func TestSummarizer_CitationLeakNotRetried(t *testing.T) {
	noWait(t)

	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		err:       fmt.Errorf("%w: LLM cited disallowed URL: https://evil.example", ErrCitationLeak),
	}
	summarizer := newSummarizer(mock, Config{StrictEvidence: true, MaxRetries: 3})

	summary, _ := summarizer.GenerateSummary(context.Background(), testResult(), "")
	if got := mock.calls.Load(); got != 1 {
		t.Errorf("Expected a single attempt for citation leak, got %d", got)
	}
	if len(summary.Warnings) == 0 || !strings.Contains(summary.Warnings[0], "citation leak") {
		t.Errorf("Expected citation leak warning, got %v", summary.Warnings)
	}
}

func TestSummarizer_CircuitBreakerOpens(t *testing.T) {
	noWait(t)

	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		err:       errors.New("upstream down"),
	}
	summarizer := newSummarizer(mock, Config{MaxRetries: 0})

	for i := 0; i < 5; i++ {
		_, _ = summarizer.GenerateSummary(context.Background(), testResult(), "")
	}
	if got := mock.calls.Load(); got != 5 {
		t.Fatalf("Expected 5 calls before tripping, got %d", got)
	}

	summary, _ := summarizer.GenerateSummary(context.Background(), testResult(), "")
	if got := mock.calls.Load(); got != 5 {
		t.Errorf("Expected open breaker to short-circuit, got %d calls", got)
	}
	if !strings.Contains(strings.Join(summary.Warnings, " "), "circuit breaker is open") {
		t.Errorf("Expected circuit breaker warning, got %v", summary.Warnings)
	}
}

func TestRenderSeparateMarkdown_Disabled(t *testing.T) {
	if md := RenderSeparateMarkdown(&model.LLMSummary{Enabled: false}); md != "" {
		t.Error("Expected empty markdown when disabled")
	}
	if md := RenderSeparateMarkdown(nil); md != "" {
		t.Error("Expected empty markdown when nil")
	}
}

func TestRenderSeparateMarkdown_Success(t *testing.T) {
	summary := &model.LLMSummary{
		Enabled:        true,
		Provider:       "openai",
		Model:          "gpt-4o-mini",
		StrictEvidence: true,
		SummaryMD:      "This is the generated summary content.",
		Warnings: []string{
			"Tokens used: 150",
			"Verified 5 citations against 5 article links",
		},
	}

	md := RenderSeparateMarkdown(summary)

	requiredSections := []string{
		"# LLM Summary",
		"GENERATED CONTENT",
		"**Provider**: openai",
		"**Model**: gpt-4o-mini",
		"**Strict Evidence Mode**: true",
		"This is the generated summary content.",
		"## Notes",
		"Tokens used: 150",
		"determined independently",
	}

	for _, section := range requiredSections {
		if !strings.Contains(md, section) {
			t.Errorf("Expected markdown to contain '%s'", section)
		}
	}
}

func TestRenderSeparateMarkdown_NoSummary(t *testing.T) {
	md := RenderSeparateMarkdown(&model.LLMSummary{Enabled: true, Provider: "test-provider"})

	if !strings.Contains(md, "No summary generated") {
		t.Error("Expected message about no summary")
	}
	if strings.Contains(md, "## Notes") {
		t.Error("Expected no notes section without warnings")
	}
}

func TestBuildPrompt_BasicStructure(t *testing.T) {
	prompt := BuildPrompt(testResult(), []string{"https://example.com/1", "https://example.com/2"})

	requiredElements := []string{
		"CRITICAL RULES",
		"MUST ONLY cite URLs from this allowed list",
		"https://example.com/1",
		"https://example.com/2",
		"DO NOT infer, speculate",
		"Source: bbc.com",
		"Headline: Calm Report On Policy",
		"Verdict: Likely Credible",
		"Credibility Score: 55% (Low Confidence)",
		"[+10] Source Credibility:",
		"[-5] Date & Context:",
		"NEVER establishes whether the article is true",
	}

	for _, element := range requiredElements {
		if !strings.Contains(prompt, element) {
			t.Errorf("Expected prompt to contain '%s'", element)
		}
	}
}

func TestBuildPrompt_NoEvidence(t *testing.T) {
	prompt := BuildPrompt(testResult(), nil)

	if !strings.Contains(prompt, "No URLs in the article") {
		t.Error("Expected message about no evidence URLs")
	}
}

func TestJoinURLs_Many(t *testing.T) {
	urls := make([]string, 25)
	for i := range urls {
		urls[i] = "https://example.com/" + string(rune('a'+i))
	}

	result := joinURLs(urls)

	if !strings.Contains(result, "and 5 more URLs") {
		t.Error("Expected truncation message for many URLs")
	}
	if !strings.Contains(result, urls[19]) || strings.Contains(result, urls[20]) {
		t.Error("Expected exactly the first 20 URLs")
	}
}

func TestVerifyCitations(t *testing.T) {
	allowed := []string{"https://example.com/1"}

	cited, err := verifyCitations("See https://example.com/1.", allowed, true)
	if err != nil || len(cited) != 1 {
		t.Errorf("Expected allowed citation, got %v, %v", cited, err)
	}

	_, err = verifyCitations("See https://other.example/x", allowed, true)
	if !errors.Is(err, ErrCitationLeak) {
		t.Errorf("Expected ErrCitationLeak, got %v", err)
	}

	cited, err = verifyCitations("See https://other.example/x", allowed, false)
	if err != nil || len(cited) != 1 {
		t.Errorf("Expected lenient mode to pass, got %v, %v", cited, err)
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Provider != "" {
		t.Errorf("Expected provider to be empty (disabled), got '%s'", config.Provider)
	}
	if !config.StrictEvidence {
		t.Error("Expected strict evidence to be enabled by default")
	}
	if config.Timeout <= 0 || config.MaxTokens <= 0 {
		t.Error("Expected positive timeout and max tokens")
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := ConfigFromModel(model.LLMConfig{
		Provider:   "ollama",
		Model:      "llama3.1",
		MaxRetries: 4,
		HTTPProxy:  "http://proxy:3128",
	})

	if cfg.Provider != "ollama" || cfg.Model != "llama3.1" || cfg.MaxRetries != 4 || cfg.HTTPProxy != "http://proxy:3128" {
		t.Errorf("Unexpected config: %+v", cfg)
	}
}

func TestSummarizer_ProviderName(t *testing.T) {
	enabled := newSummarizer(&MockProvider{name: "test-provider"}, Config{})

	if !enabled.IsEnabled() {
		t.Error("Expected IsEnabled() to return true when provider exists")
	}
	if enabled.ProviderName() != "test-provider" {
		t.Errorf("Expected provider name 'test-provider', got '%s'", enabled.ProviderName())
	}
}
