package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/fnd/internal/cache"
	"github.com/ppiankov/fnd/internal/extract"
	"github.com/ppiankov/fnd/internal/llm"
	"github.com/ppiankov/fnd/internal/metrics"
	"github.com/ppiankov/fnd/internal/model"
	"github.com/ppiankov/fnd/internal/score"
	"github.com/ppiankov/fnd/internal/validate"
	"golang.org/x/sync/singleflight"
)

// Analyzer scores an article; *score.Scorer is the production implementation
type Analyzer interface {
	Analyze(source, text string) model.AnalysisResult
}

// Pipeline validates input, scores it and wraps the result in a report
type Pipeline struct {
	validator   *validate.InputValidator
	scorer      Analyzer
	resolver    Resolver
	cache       *cache.ResultCache // nil when caching is disabled
	fingerprint string
	group       singleflight.Group
	renderer    *Renderer
	summarizer  *llm.Summarizer // nil if disabled
	config      *model.Config
	warnings    io.Writer
	now         func() time.Time
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	resultCache, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}

	p := &Pipeline{
		validator:   validate.NewInputValidator(cfg.Input),
		scorer:      score.NewScorerWithLexicon(cfg.Lexicon),
		resolver:    PlaceholderResolver{},
		cache:       resultCache,
		fingerprint: cfg.Lexicon.Fingerprint(),
		renderer:    NewRenderer(cfg.Output, os.Stdout),
		config:      cfg,
		warnings:    os.Stderr,
		now:         time.Now,
	}

	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(p.warnings, "Warning: Failed to initialize LLM provider: %v\n", err)
		} else {
			p.summarizer = s
		}
	}

	return p, nil
}

// SetWarningOutput redirects non-fatal warnings (default stderr)
func (p *Pipeline) SetWarningOutput(w io.Writer) {
	p.warnings = w
}

// SetOutput redirects the terminal summary (default stdout)
func (p *Pipeline) SetOutput(w io.Writer) {
	p.renderer = NewRenderer(p.config.Output, w)
}

// Renderer returns the report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// AnalyzeText validates and scores pasted article text
func (p *Pipeline) AnalyzeText(ctx context.Context, text string) (*model.Report, error) {
	trimmed, err := p.validator.ValidateText(text)
	if err != nil {
		return nil, p.reject(err)
	}

	return p.analyze(ctx, model.PastedTextSource, trimmed, model.InputMeta{
		Mode:      model.InputModeText,
		WordCount: validate.WordCount(trimmed),
	})
}

// AnalyzeFile scores a local article file. HTML files are reduced to their
// headline and paragraphs first; anything else is read as plain text.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) (*model.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	text := string(data)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		article, err := extract.ArticleFromHTML(bytes.NewReader(data))
		if err != nil {
			return nil, p.reject(fmt.Errorf("%w: %v", model.ErrEmptyInput, err))
		}
		text = article.Text()
	}

	trimmed, err := p.validator.ValidateText(text)
	if err != nil {
		return nil, p.reject(err)
	}

	return p.analyze(ctx, model.PastedTextSource, trimmed, model.InputMeta{
		Mode:      model.InputModeFile,
		Path:      path,
		WordCount: validate.WordCount(trimmed),
	})
}

// AnalyzeURL resolves a URL to its hostname and scores the resolved body
func (p *Pipeline) AnalyzeURL(ctx context.Context, rawURL string) (*model.Report, error) {
	host, err := p.validator.ResolveURL(rawURL)
	if err != nil {
		return nil, p.reject(err)
	}

	resolved, err := p.resolver.Resolve(ctx, host, strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}

	return p.analyze(ctx, host, resolved.Text, model.InputMeta{
		Mode:      model.InputModeURL,
		RawURL:    strings.TrimSpace(rawURL),
		WordCount: validate.WordCount(resolved.Text),
		Simulated: resolved.Simulated,
	})
}

// AnalyzeArticle scores text already paired with its source, such as a feed item.
// Only emptiness is checked; feed excerpts are routinely shorter than the paste minimum.
func (p *Pipeline) AnalyzeArticle(ctx context.Context, source, text string) (*model.Report, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, p.reject(fmt.Errorf("%w: no article text provided", model.ErrEmptyInput))
	}
	if strings.TrimSpace(source) == "" {
		source = model.PastedTextSource
	}

	return p.analyze(ctx, source, text, model.InputMeta{
		Mode:      model.InputModeFeed,
		WordCount: validate.WordCount(text),
	})
}

// analyze scores the article and builds the report
func (p *Pipeline) analyze(ctx context.Context, source, text string, meta model.InputMeta) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timer := metrics.StartTimer()
	defer timer.ObserveDuration()

	result, cached, err := p.score(source, text)
	if err != nil {
		return nil, p.reject(err)
	}
	metrics.RecordAnalysis(result.Judgment.String(), result.Level.String(), result.FinalConfidence)

	report := &model.Report{
		Input:      meta,
		Result:     result,
		AnalyzedAt: p.now().UTC(),
		Cached:     cached,
		Principles: model.DefaultPrinciples(),
	}

	// Summary runs AFTER scoring and never affects the score
	if p.summarizer.IsEnabled() {
		summary, err := p.summarizer.GenerateSummary(ctx, result, text)
		if err != nil {
			fmt.Fprintf(p.warnings, "Warning: LLM summary generation failed: %v\n", err)
		} else if summary != nil {
			report.LLM = summary
			metrics.RecordLLMSummary(summaryStatus(summary))
		}
	}

	return report, nil
}

type flightResult struct {
	result model.AnalysisResult
	cached bool
}

// score returns the cached result or runs the scorer once per distinct input
func (p *Pipeline) score(source, text string) (model.AnalysisResult, bool, error) {
	key := cache.CacheKey(source, text, p.fingerprint)

	if result, found := p.cache.Get(key); found {
		metrics.RecordCacheHit()
		return result, true, nil
	}

	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		// A flight that finished between our miss and Do has filled the cache
		if result, found := p.cache.Get(key); found {
			return flightResult{result: result, cached: true}, nil
		}

		result, err := p.safeAnalyze(source, text)
		if err != nil {
			return nil, err
		}

		if err := p.cache.Put(key, result); err != nil {
			fmt.Fprintf(p.warnings, "Warning: failed to cache result: %v\n", err)
		}
		return flightResult{result: result}, nil
	})
	if err != nil {
		return model.AnalysisResult{}, false, err
	}

	fr := v.(flightResult)
	if fr.cached {
		metrics.RecordCacheHit()
	}
	return fr.result, fr.cached, nil
}

// safeAnalyze converts a scorer panic into ErrUnexpectedAnalysisFailure
func (p *Pipeline) safeAnalyze(source, text string) (result model.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", model.ErrUnexpectedAnalysisFailure, r)
		}
	}()

	return p.scorer.Analyze(source, text), nil
}

// reject records a refused input and passes the error through
func (p *Pipeline) reject(err error) error {
	metrics.RecordRejection(model.ErrorReason(err))
	return err
}

func summaryStatus(s *model.LLMSummary) string {
	switch {
	case !s.Enabled:
		return "unavailable"
	case s.SummaryMD == "":
		return "failed"
	default:
		return "ok"
	}
}

// RenderReport writes the report to every requested output and prints the terminal summary
func (p *Pipeline) RenderReport(report *model.Report, opts RenderOptions) error {
	if opts.JSONPath != "" {
		if err := p.renderer.RenderJSON(report, opts.JSONPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if opts.Verbose {
			fmt.Fprintf(p.warnings, "✓ Wrote JSON: %s\n", opts.JSONPath)
		}
	}

	if opts.MarkdownPath != "" {
		if err := p.renderer.RenderMarkdown(report, opts.MarkdownPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if opts.Verbose {
			fmt.Fprintf(p.warnings, "✓ Wrote Markdown: %s\n", opts.MarkdownPath)
		}
	}

	if opts.HTMLPath != "" {
		if err := p.renderer.RenderHTML(report, opts.HTMLPath); err != nil {
			return fmt.Errorf("render HTML: %w", err)
		}
		if opts.Verbose {
			fmt.Fprintf(p.warnings, "✓ Wrote HTML: %s\n", opts.HTMLPath)
		}
	}

	if opts.TextPath != "" {
		if err := p.renderer.RenderText(report, opts.TextPath); err != nil {
			return fmt.Errorf("render text: %w", err)
		}
		if opts.Verbose {
			fmt.Fprintf(p.warnings, "✓ Wrote text report: %s\n", opts.TextPath)
		}
	}

	// LLM summary goes to its own file next to the Markdown report
	if report.LLM != nil && report.LLM.Enabled && opts.MarkdownPath != "" && opts.MarkdownPath != "-" {
		llmPath := strings.TrimSuffix(opts.MarkdownPath, ".md") + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(report.LLM), llmPath); err != nil {
			fmt.Fprintf(p.warnings, "Warning: Failed to write LLM summary: %v\n", err)
		} else if opts.Verbose {
			fmt.Fprintf(p.warnings, "✓ Wrote LLM Summary: %s\n", llmPath)
		}
	}

	if !opts.Quiet {
		p.renderer.RenderSummary(report)
	}

	return nil
}

// RenderOptions selects report outputs; "-" writes to the renderer's output
type RenderOptions struct {
	JSONPath     string
	MarkdownPath string
	HTMLPath     string
	TextPath     string
	Verbose      bool
	Quiet        bool // Skip the terminal summary
}
