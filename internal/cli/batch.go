package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ppiankov/fnd/internal/extract"
	"github.com/ppiankov/fnd/internal/pipeline"
	"github.com/ppiankov/fnd/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	feedFile     string
	// noCache, noFooter, llm* are defined in analyze.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Score many articles in parallel",
	Long: `Batch scores many inputs concurrently and writes one JSON and one
Markdown report per input, plus summary.json.

Inputs:
  <file>         URL list, one per line; blank lines and # comments are skipped
  --feed <file>  RSS or Atom feed; each item's title and body are scored
                 (feed excerpts are not held to the 100-word minimum)

Example:
  fnd batch urls.txt
  fnd batch urls.txt --concurrency 10 --output-dir ./reports
  fnd batch --feed world.xml --output-dir ./feed-reports`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./fnd-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&feedFile, "feed", "", "RSS/Atom feed file to score instead of a URL list")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if (len(args) == 1) == (feedFile != "") {
		return fmt.Errorf("provide either a URL list file or --feed")
	}

	cfg, err := analysisConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	input := feedFile
	if input == "" {
		input = args[0]
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  F.N.D. Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", input)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	var items []*worker.Item
	if feedFile != "" {
		items, err = processFeed(ctx, processor, feedFile)
	} else {
		fmt.Fprintf(os.Stderr, "⚙️  Reading URLs from file...\n")
		items, err = processor.ProcessFile(ctx, input)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ Processed %d inputs\n\n", len(items))

	renderer := p.Renderer()
	for _, item := range items {
		if item.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", item.Input, item.Error)
			continue
		}

		slug := fmt.Sprintf("%03d-%s", item.Index+1, sanitizeFilename(item.Report.Result.Source))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(item.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", item.Input, err)
			continue
		}
		if err := renderer.RenderMarkdown(item.Report, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", item.Input, err)
			continue
		}

		r := item.Report.Result
		fmt.Fprintf(os.Stderr, "✓ %s: %d%% %s\n", item.Input, r.FinalConfidence, r.Judgment)
	}

	summary := worker.Summarize(items)
	if err := writeSummary(filepath.Join(outputDir, "summary.json"), input, items, summary); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:            %d\n", summary.Total)
	fmt.Fprintf(os.Stderr, "  Likely Credible:  %d\n", summary.Credible)
	fmt.Fprintf(os.Stderr, "  Likely False:     %d\n", summary.False)
	fmt.Fprintf(os.Stderr, "  Failures:         %d\n", summary.Failed)
	fmt.Fprintf(os.Stderr, "  Avg confidence:   %.1f%%\n", summary.AverageConfidence)
	fmt.Fprintf(os.Stderr, "  Output:           %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

func processFeed(ctx context.Context, processor *worker.BatchProcessor, path string) ([]*worker.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	defer func() { _ = f.Close() }()

	fmt.Fprintf(os.Stderr, "⚙️  Parsing feed...\n")
	feedItems, err := extract.ParseFeed(f)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d feed items\n", len(feedItems))

	return processor.ProcessFeed(ctx, feedItems), nil
}

// batchEntry is one line of summary.json
type batchEntry struct {
	Input      string `json:"input"`
	Source     string `json:"source,omitempty"`
	Confidence int    `json:"confidence,omitempty"`
	Judgment   string `json:"judgment,omitempty"`
	Error      string `json:"error,omitempty"`
}

func writeSummary(path, input string, items []*worker.Item, summary worker.Summary) error {
	entries := make([]batchEntry, len(items))
	for i, item := range items {
		entries[i] = batchEntry{Input: item.Input}
		if item.Error != nil {
			entries[i].Error = item.Error.Error()
			continue
		}
		entries[i].Source = item.Report.Result.Source
		entries[i].Confidence = item.Report.Result.FinalConfidence
		entries[i].Judgment = item.Report.Result.Judgment.String()
	}

	data, err := json.MarshalIndent(struct {
		Input   string         `json:"input"`
		Summary worker.Summary `json:"summary"`
		Items   []batchEntry   `json:"items"`
	}{input, summary, entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	s = filenameReplacer.Replace(strings.TrimSpace(s))
	if s == "" || s == "." || s == ".." {
		s = "article"
	}

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}

	return s
}
