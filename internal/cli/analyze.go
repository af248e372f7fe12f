package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ppiankov/fnd/internal/model"
	"github.com/ppiankov/fnd/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	inURL       string
	inText      string
	inFile      string
	inStdin     bool
	outJSON     string
	outMD       string
	outHTML     string
	outText     string
	brief       bool
	timeout     time.Duration
	noCache     bool
	noFooter    bool
	noColor     bool
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [url]",
	Short: "Score the credibility of a single article",
	Long: `Analyze scores one article with the heuristic rules and prints the report.

Input (exactly one):
  --url      only the hostname is used; the body is a placeholder, so paste
             the article text for a full analysis
  --text     article text, first line is the headline (at least 100 words)
  --file     a .txt or .html file (HTML is reduced to headline and paragraphs)
  --stdin    read article text from standard input

Example:
  fnd analyze https://www.bbc.com/news/article
  fnd analyze --file article.txt --json report.json --md report.md
  pbpaste | fnd analyze --stdin --brief
  fnd analyze --file article.html --llm --llm-provider ollama --llm-model llama3.1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Input flags
	analyzeCmd.Flags().StringVar(&inURL, "url", "", "article URL")
	analyzeCmd.Flags().StringVar(&inText, "text", "", "article text")
	analyzeCmd.Flags().StringVar(&inFile, "file", "", "article file (.txt or .html)")
	analyzeCmd.Flags().BoolVar(&inStdin, "stdin", false, "read article text from stdin")

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (- for stdout)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (- for stdout)")
	analyzeCmd.Flags().StringVar(&outHTML, "html", "", "output HTML path (- for stdout)")
	analyzeCmd.Flags().StringVar(&outText, "txt", "", "output text report path (- for stdout)")
	analyzeCmd.Flags().BoolVar(&brief, "brief", false, "print a short colored summary instead of the full report")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout (covers the optional LLM summary)")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	analyzeCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// LLM flags
	analyzeCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
}

// analysisConfig loads configuration and applies the flags shared by analyze and batch
func analysisConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	if flags.Changed("no-color") {
		cfg.Output.Color = !noColor
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.StrictEvidence = true // Always enforce
		if llmModel != "" {
			cfg.LLM.Model = llmModel
		}
		applyProviderEnv(cfg)
	}
	if err := requireProviderKey(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		if inURL != "" {
			return fmt.Errorf("URL given both as argument and --url")
		}
		inURL = args[0]
	}

	if n := countInputs(); n != 1 {
		return fmt.Errorf("provide exactly one of --url, --text, --file or --stdin (got %d)", n)
	}

	cfg, err := analysisConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}
	p.SetOutput(cmd.OutOrStdout())

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		if cfg.LLM.Provider != "" {
			fmt.Fprintf(os.Stderr, "LLM: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	report, err := analyzeInput(ctx, p, cmd.InOrStdin())
	if err != nil {
		// Taxonomy errors get the user-facing message; the cause stays in verbose output
		if isInputError(err) {
			if cfg.Output.Verbose {
				fmt.Fprintf(os.Stderr, "Detail: %v\n", err)
			}
			return errors.New(model.UserMessage(err))
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Scored %s: %d%% (%s)\n", report.Result.Source, report.Result.FinalConfidence, report.Result.Judgment)
		if report.Cached {
			fmt.Fprintf(os.Stderr, "✓ Served from cache\n")
		}
		if report.LLM != nil && report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	opts := pipeline.RenderOptions{
		JSONPath:     outJSON,
		MarkdownPath: outMD,
		HTMLPath:     outHTML,
		TextPath:     outText,
		Verbose:      cfg.Output.Verbose,
		Quiet:        !brief,
	}
	// Without file outputs the full text report goes to stdout
	if !brief && opts.JSONPath == "" && opts.MarkdownPath == "" && opts.HTMLPath == "" && opts.TextPath == "" {
		opts.TextPath = "-"
	}

	if err := p.RenderReport(report, opts); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

func countInputs() int {
	n := 0
	for _, set := range []bool{inURL != "", inText != "", inFile != "", inStdin} {
		if set {
			n++
		}
	}
	return n
}

func analyzeInput(ctx context.Context, p *pipeline.Pipeline, stdin io.Reader) (*model.Report, error) {
	switch {
	case inURL != "":
		return p.AnalyzeURL(ctx, inURL)
	case inFile != "":
		return p.AnalyzeFile(ctx, inFile)
	case inStdin:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return p.AnalyzeText(ctx, string(data))
	default:
		return p.AnalyzeText(ctx, inText)
	}
}

func isInputError(err error) bool {
	return errors.Is(err, model.ErrEmptyInput) ||
		errors.Is(err, model.ErrInvalidURLFormat) ||
		errors.Is(err, model.ErrTooShort) ||
		errors.Is(err, model.ErrUnsupportedLanguage) ||
		errors.Is(err, model.ErrUnexpectedAnalysisFailure)
}
