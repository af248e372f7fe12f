package model

import (
	"encoding/json"
	"fmt"
)

// PastedTextSource is the source sentinel for articles supplied as raw text
const PastedTextSource = "Pasted Text"

// Rule names, in evaluation order
const (
	RuleSourceCredibility = "Source Credibility"
	RuleHeadlineStyle     = "Headline Style"
	RuleCitationQuality   = "Citation Quality"
	RuleWritingStyle      = "Writing Style"
	RuleDateContext       = "Date & Context"
	RuleEmotionalLanguage = "Emotional Language"
)

// RuleOrder lists every rule name in the order the scorer evaluates them
var RuleOrder = []string{
	RuleSourceCredibility,
	RuleHeadlineStyle,
	RuleCitationQuality,
	RuleWritingStyle,
	RuleDateContext,
	RuleEmotionalLanguage,
}

// Outcome is the three-valued result of a single rule
type Outcome int

const (
	OutcomeUnknown Outcome = iota // Not applicable or unverified
	OutcomePassed
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePassed:
		return "passed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the outcome as true, false or null
func (o Outcome) MarshalJSON() ([]byte, error) {
	switch o {
	case OutcomePassed:
		return []byte("true"), nil
	case OutcomeFailed:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false or null
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var v *bool
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("outcome: %w", err)
	}
	switch {
	case v == nil:
		*o = OutcomeUnknown
	case *v:
		*o = OutcomePassed
	default:
		*o = OutcomeFailed
	}
	return nil
}

// Judgment is the binary verdict derived from the final confidence
type Judgment int

const (
	LikelyFalse Judgment = iota
	LikelyCredible
)

func (j Judgment) String() string {
	if j == LikelyCredible {
		return "Likely Credible"
	}
	return "Likely False"
}

func (j Judgment) MarshalText() ([]byte, error) {
	return []byte(j.String()), nil
}

func (j *Judgment) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Likely Credible":
		*j = LikelyCredible
	case "Likely False":
		*j = LikelyFalse
	default:
		return fmt.Errorf("unknown judgment: %q", text)
	}
	return nil
}

// Level is the coarse confidence band derived from the final confidence
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
)

func (l Level) String() string {
	switch l {
	case LevelHigh:
		return "High Confidence"
	case LevelMedium:
		return "Medium Confidence"
	default:
		return "Low Confidence"
	}
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	switch string(text) {
	case "High Confidence":
		*l = LevelHigh
	case "Medium Confidence":
		*l = LevelMedium
	case "Low Confidence":
		*l = LevelLow
	default:
		return fmt.Errorf("unknown level: %q", text)
	}
	return nil
}

// JudgmentFor returns the verdict for a clamped confidence value
func JudgmentFor(confidence int) Judgment {
	if confidence >= 50 {
		return LikelyCredible
	}
	return LikelyFalse
}

// LevelFor returns the confidence band for a clamped confidence value
func LevelFor(confidence int) Level {
	switch {
	case confidence > 80:
		return LevelHigh
	case confidence >= 60:
		return LevelMedium
	default:
		return LevelLow
	}
}

// AnalysisItem is the outcome of one heuristic rule
type AnalysisItem struct {
	Rule      string  `json:"rule"`
	Passed    Outcome `json:"passed"`
	Score     string  `json:"score"` // Display delta: "+10", "-15", "±0", "N/A"
	Reasoning string  `json:"reasoning"`
}

// AnalysisResult is the scorer output for one article
type AnalysisResult struct {
	Source          string         `json:"source"`
	Headline        string         `json:"headline"`
	Analysis        []AnalysisItem `json:"analysis"`
	FinalConfidence int            `json:"finalConfidence"`
	Judgment        Judgment       `json:"judgment"`
	Level           Level          `json:"level"`
}

// SourceTier classifies an article source against the domain lists
type SourceTier int

const (
	SourceUnlisted SourceTier = iota
	SourceReputable
	SourceSuspicious
	SourcePastedText
)

func (t SourceTier) String() string {
	switch t {
	case SourceReputable:
		return "reputable"
	case SourceSuspicious:
		return "suspicious"
	case SourcePastedText:
		return "pasted_text"
	default:
		return "unlisted"
	}
}
