package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/fnd/internal/model"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/term"
)

const (
	reportTitle = "F.N.D. Analysis Report"
	titleRule   = "====================================="
	sectionRule = "---------------------------"
)

// FormatText renders the plain-text report.
// The output depends only on the result, so the same result always renders identically.
func FormatText(result model.AnalysisResult) string {
	var b strings.Builder

	b.WriteString(reportTitle + "\n")
	b.WriteString(titleRule + "\n\n")
	fmt.Fprintf(&b, "Source: %s\n", result.Source)
	fmt.Fprintf(&b, "Headline: %s\n\n", result.Headline)
	fmt.Fprintf(&b, "Verdict: %s\n", result.Judgment)
	fmt.Fprintf(&b, "Credibility Score: %d%% (%s)\n\n", result.FinalConfidence, result.Level)
	b.WriteString("Analysis Breakdown:\n")
	b.WriteString(sectionRule + "\n")

	for _, item := range result.Analysis {
		fmt.Fprintf(&b, "\n[%s] %s:\n", item.Score, item.Rule)
		fmt.Fprintf(&b, "  - %s\n", item.Reasoning)
	}

	b.WriteString("\n\n" + model.Disclaimer + "\n")
	return b.String()
}

// Styles for the terminal summary
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Passed  lipgloss.Style
	Failed  lipgloss.Style
	Unknown lipgloss.Style
	Faint   lipgloss.Style
}

// NewStyles returns colored styles, or plain ones when enabled is false
func NewStyles(enabled bool) Styles {
	if !enabled {
		plain := lipgloss.NewStyle()
		return Styles{Title: plain, Label: plain, Passed: plain, Failed: plain, Unknown: plain, Faint: plain}
	}

	return Styles{
		Title:   lipgloss.NewStyle().Bold(true),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Passed:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Unknown: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Faint:   lipgloss.NewStyle().Faint(true),
	}
}

// Renderer writes reports as JSON, Markdown, HTML, plain text and a terminal summary
type Renderer struct {
	includeFooter bool
	out           io.Writer
	styles        Styles
	markdown      goldmark.Markdown
}

// NewRenderer creates a renderer. Colors are used only when cfg.Color is set
// and out is a terminal.
func NewRenderer(cfg model.OutputConfig, out io.Writer) *Renderer {
	return &Renderer{
		includeFooter: cfg.IncludeFooter,
		out:           out,
		styles:        NewStyles(cfg.Color && isTerminal(out)),
		markdown:      goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return r.write(path, append(data, '\n'))
}

// RenderMarkdown writes the Markdown report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return r.write(path, []byte(r.Markdown(report)))
}

// RenderHTML writes the report as a standalone HTML page
func (r *Renderer) RenderHTML(report *model.Report, path string) error {
	page, err := r.HTML(report)
	if err != nil {
		return err
	}
	return r.write(path, []byte(page))
}

// RenderText writes the plain-text report
func (r *Renderer) RenderText(report *model.Report, path string) error {
	return r.write(path, []byte(FormatText(report.Result)))
}

// RenderLLMMarkdown writes pre-rendered LLM summary Markdown
func (r *Renderer) RenderLLMMarkdown(content, path string) error {
	return r.write(path, []byte(content))
}

// Markdown renders the report as Markdown
func (r *Renderer) Markdown(report *model.Report) string {
	result := report.Result
	var b strings.Builder

	b.WriteString("# " + reportTitle + "\n\n")
	fmt.Fprintf(&b, "- **Source**: %s\n", escapeMarkdown(result.Source))
	fmt.Fprintf(&b, "- **Headline**: %s\n", escapeMarkdown(result.Headline))
	if report.Input.Simulated {
		b.WriteString("- **Body**: placeholder, the article was not fetched\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Verdict: %s\n\n", result.Judgment)
	fmt.Fprintf(&b, "**Credibility Score**: %d%% (%s)\n\n", result.FinalConfidence, result.Level)

	b.WriteString("## Analysis Breakdown\n\n")
	b.WriteString("| Rule | Result | Score | Reasoning |\n")
	b.WriteString("|------|--------|-------|-----------|\n")
	for _, item := range result.Analysis {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			escapeCell(item.Rule), item.Passed, item.Score, escapeCell(item.Reasoning))
	}

	b.WriteString("\n---\n\n")
	fmt.Fprintf(&b, "_%s_\n", model.Disclaimer)

	if r.includeFooter {
		fmt.Fprintf(&b, "\n_Generated by fnd on %s._\n", report.AnalyzedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	}

	return b.String()
}

// HTML renders the Markdown report into a standalone page.
// Raw HTML in article text is not passed through.
func (r *Renderer) HTML(report *model.Report) (string, error) {
	var body bytes.Buffer
	if err := r.markdown.Convert([]byte(r.Markdown(report)), &body); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s: %s</title>\n", reportTitle, html.EscapeString(report.Result.Source))
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

// RenderSummary prints a short colored summary to the renderer output
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Fprint(r.out, r.Summary(report))
}

// Summary returns the terminal summary
func (r *Renderer) Summary(report *model.Report) string {
	result := report.Result
	s := r.styles
	var b strings.Builder

	b.WriteString(s.Title.Render(reportTitle) + "\n")
	fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Source:  "), result.Source)
	fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Headline:"), result.Headline)

	verdict := s.Failed
	if result.Judgment == model.LikelyCredible {
		verdict = s.Passed
	}
	fmt.Fprintf(&b, "%s %s  %d%% (%s)\n\n", s.Label.Render("Verdict: "),
		verdict.Render(result.Judgment.String()), result.FinalConfidence, result.Level)

	for _, item := range result.Analysis {
		mark, style := "?", s.Unknown
		switch item.Passed {
		case model.OutcomePassed:
			mark, style = "✓", s.Passed
		case model.OutcomeFailed:
			mark, style = "✗", s.Failed
		}
		fmt.Fprintf(&b, "  %s %-5s %s\n", style.Render(mark), item.Score, item.Rule)
	}

	if report.Cached {
		b.WriteString("\n" + s.Faint.Render("(cached result)") + "\n")
	}
	if report.Input.Simulated {
		b.WriteString("\n" + s.Faint.Render("URL body is a placeholder; paste the article text for a full analysis.") + "\n")
	}

	return b.String()
}

// write stores data at path; "-" writes to the renderer output
func (r *Renderer) write(path string, data []byte) error {
	if path == "-" {
		_, err := r.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", "&lt;",
	">", "&gt;",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(escapeMarkdown(s), "|", `\|`)
}
