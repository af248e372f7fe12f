package model

import "time"

// Report wraps an AnalysisResult with request metadata.
// The embedded result is deterministic; everything else describes the run.
type Report struct {
	Input      InputMeta      `json:"input"`
	Result     AnalysisResult `json:"result"`
	AnalyzedAt time.Time      `json:"analyzed_at"`
	Cached     bool           `json:"cached"`
	Principles Principles     `json:"principles"`

	LLM *LLMSummary `json:"llm,omitempty"` // Optional LLM summary (separate, never affects score)
}

// InputMode records how the article reached the scorer
type InputMode string

const (
	InputModeURL  InputMode = "url"
	InputModeText InputMode = "text"
	InputModeFile InputMode = "file"
	InputModeFeed InputMode = "feed"
)

// InputMeta describes the original request
type InputMeta struct {
	Mode      InputMode `json:"mode"`
	RawURL    string    `json:"raw_url,omitempty"`   // As entered, for the URL path
	Path      string    `json:"path,omitempty"`      // Local file, for file and feed inputs
	WordCount int       `json:"word_count"`          // Whitespace-separated tokens in the scored text
	Simulated bool      `json:"simulated,omitempty"` // Body is the placeholder, not fetched content
}

// Principles documents the properties every report is produced under
type Principles struct {
	Heuristic     bool `json:"heuristic"`     // Rule-based estimate, not a fact check
	Deterministic bool `json:"deterministic"` // Same input, same result
	Transparent   bool `json:"transparent"`   // Every delta carries its reasoning
}

// DefaultPrinciples returns the standard fnd principles
func DefaultPrinciples() Principles {
	return Principles{
		Heuristic:     true,
		Deterministic: true,
		Transparent:   true,
	}
}

// LLMSummary contains optional LLM-generated commentary
// CRITICAL: This never affects scoring and is clearly separated
type LLMSummary struct {
	Enabled        bool     `json:"enabled"`
	Provider       string   `json:"provider,omitempty"`
	Model          string   `json:"model,omitempty"`
	StrictEvidence bool     `json:"strict_evidence"`
	SummaryMD      string   `json:"summary_md,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
}

// Disclaimer closes every rendered report
const Disclaimer = "Note: This analysis is based on automated heuristics and should not be the sole factor in determining article credibility. Always verify important claims through multiple reputable sources."
