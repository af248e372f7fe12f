package pipeline

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/fnd/internal/model"
	"github.com/ppiankov/fnd/internal/score"
)

func sampleReport() *model.Report {
	return &model.Report{
		Input:      model.InputMeta{Mode: model.InputModeText, WordCount: 120},
		Result:     score.NewScorer().Analyze("bbc.com", "Calm Report On Policy\nOfficials announced the policy change on March 3, 2024. See https://example.com for details."),
		AnalyzedAt: time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC),
		Principles: model.DefaultPrinciples(),
	}
}

func TestFormatText_ExactLayout(t *testing.T) {
	result := model.AnalysisResult{
		Source:   "example.org",
		Headline: "Plain headline",
		Analysis: []model.AnalysisItem{
			{Rule: model.RuleSourceCredibility, Passed: model.OutcomeUnknown, Score: "±0", Reasoning: "Unverified."},
			{Rule: model.RuleDateContext, Passed: model.OutcomeFailed, Score: "-5", Reasoning: "No date."},
		},
		FinalConfidence: 45,
		Judgment:        model.LikelyFalse,
		Level:           model.LevelLow,
	}

	want := "F.N.D. Analysis Report\n" +
		"=====================================\n\n" +
		"Source: example.org\n" +
		"Headline: Plain headline\n\n" +
		"Verdict: Likely False\n" +
		"Credibility Score: 45% (Low Confidence)\n\n" +
		"Analysis Breakdown:\n" +
		"---------------------------\n" +
		"\n[±0] Source Credibility:\n" +
		"  - Unverified.\n" +
		"\n[-5] Date & Context:\n" +
		"  - No date.\n" +
		"\n\n" + model.Disclaimer + "\n"

	if got := FormatText(result); got != want {
		t.Errorf("FormatText mismatch.\nGot:\n%s\nWant:\n%s", got, want)
	}
}

func TestFormatText_Idempotent(t *testing.T) {
	report := sampleReport()

	first := FormatText(report.Result)
	second := FormatText(report.Result)
	if first != second {
		t.Error("Expected identical output for the same result")
	}
	if !strings.Contains(first, "Credibility Score: 95% (High Confidence)") {
		t.Errorf("Unexpected score line:\n%s", first)
	}
}

func TestRenderer_Markdown(t *testing.T) {
	r := NewRenderer(model.OutputConfig{IncludeFooter: true}, &bytes.Buffer{})
	report := sampleReport()
	report.Result.Headline = "Pipes | and *stars*"

	md := r.Markdown(report)

	for _, want := range []string{
		"# F.N.D. Analysis Report",
		"## Verdict: Likely Credible",
		"**Credibility Score**: 95% (High Confidence)",
		"| Source Credibility | passed | +10 |",
		`Pipes | and \*stars\*`,
		model.Disclaimer,
		"Generated by fnd on 2024-03-04 12:00:00 UTC",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q:\n%s", want, md)
		}
	}
}

func TestRenderer_Markdown_NoFooter(t *testing.T) {
	r := NewRenderer(model.OutputConfig{IncludeFooter: false}, &bytes.Buffer{})

	md := r.Markdown(sampleReport())
	if strings.Contains(md, "Generated by fnd") {
		t.Error("Expected no footer")
	}
	if !strings.Contains(md, model.Disclaimer) {
		t.Error("Disclaimer must always be present")
	}
}

func TestRenderer_HTML(t *testing.T) {
	r := NewRenderer(model.OutputConfig{}, &bytes.Buffer{})
	report := sampleReport()
	report.Result.Headline = "<script>alert(1)</script>"

	page, err := r.HTML(report)
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}

	for _, want := range []string{"<!DOCTYPE html>", "<h1>F.N.D. Analysis Report</h1>", "<table>", "<td>Source Credibility</td>"} {
		if !strings.Contains(page, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if strings.Contains(page, "<script>") {
		t.Error("Headline markup must be escaped")
	}
}

func TestRenderer_Summary_PlainWhenNotTerminal(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(model.OutputConfig{Color: true}, &out)

	report := sampleReport()
	report.Cached = true
	r.RenderSummary(report)

	got := out.String()
	if strings.Contains(got, "\x1b[") {
		t.Error("Expected no ANSI escapes for a non-terminal writer")
	}
	for _, want := range []string{"F.N.D. Analysis Report", "Likely Credible", "95%", "✓ +10", "(cached result)"} {
		if !strings.Contains(got, want) {
			t.Errorf("Summary missing %q:\n%s", want, got)
		}
	}
}

func TestRenderer_WriteDash(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(model.OutputConfig{}, &out)

	if err := r.RenderText(sampleReport(), "-"); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "F.N.D. Analysis Report\n") {
		t.Errorf("Expected text report on output, got:\n%s", out.String())
	}
}

func TestPlaceholderText(t *testing.T) {
	want := "Simulated article from example.com. This is a demonstration. To analyze full text, please use the 'Paste Text' option."
	if got := PlaceholderText("example.com"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
