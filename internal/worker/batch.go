package worker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/ppiankov/fnd/internal/extract"
	"github.com/ppiankov/fnd/internal/model"
)

// Analyzer scores URLs and pre-sourced articles
type Analyzer interface {
	AnalyzeURL(ctx context.Context, rawURL string) (*model.Report, error)
	AnalyzeArticle(ctx context.Context, source, text string) (*model.Report, error)
}

// Item is the outcome of one batch entry
type Item struct {
	Index  int           `json:"index"`
	Input  string        `json:"input"` // URL, or the feed item link
	Report *model.Report `json:"report,omitempty"`
	Error  error         `json:"-"`
}

// GetError returns the error from the analysis
func (i *Item) GetError() error {
	return i.Error
}

// urlJob analyses one URL
type urlJob struct {
	index    int
	url      string
	analyzer Analyzer
	limiter  *Limiter
}

func (j *urlJob) Execute(ctx context.Context) Result {
	item := &Item{Index: j.index, Input: j.url}

	if err := j.limiter.Wait(ctx, limiterKey(j.url)); err != nil {
		item.Error = err
		return item
	}

	item.Report, item.Error = j.analyzer.AnalyzeURL(ctx, j.url)
	return item
}

// feedJob analyses one feed item
type feedJob struct {
	index    int
	feedItem extract.FeedItem
	analyzer Analyzer
	limiter  *Limiter
}

func (j *feedJob) Execute(ctx context.Context) Result {
	item := &Item{Index: j.index, Input: j.feedItem.Link}

	if err := j.limiter.Wait(ctx, j.feedItem.Source); err != nil {
		item.Error = err
		return item
	}

	item.Report, item.Error = j.analyzer.AnalyzeArticle(ctx, j.feedItem.Source, j.feedItem.Text)
	return item
}

// BatchProcessor analyses many inputs concurrently, throttled per source host
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a new batch processor.
// requestsPerSecond <= 0 disables throttling.
func NewBatchProcessor(analyzer Analyzer, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		limiter:     NewLimiter(requestsPerSecond, burst),
	}
}

// ProcessURLs analyses URLs concurrently. Items come back in input order.
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*Item {
	jobs := make([]Job, len(urls))
	for i, u := range urls {
		jobs[i] = &urlJob{index: i, url: u, analyzer: b.analyzer, limiter: b.limiter}
	}

	return b.run(ctx, jobs, func(i int) string { return urls[i] })
}

// ProcessFeed analyses feed items concurrently. Items come back in feed order.
func (b *BatchProcessor) ProcessFeed(ctx context.Context, items []extract.FeedItem) []*Item {
	jobs := make([]Job, len(items))
	for i, fi := range items {
		jobs[i] = &feedJob{index: i, feedItem: fi, analyzer: b.analyzer, limiter: b.limiter}
	}

	return b.run(ctx, jobs, func(i int) string { return items[i].Link })
}

// ProcessFile reads URLs from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*Item, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}

	return b.ProcessURLs(ctx, urls), nil
}

func (b *BatchProcessor) run(ctx context.Context, jobs []Job, input func(int) string) []*Item {
	if len(jobs) == 0 {
		return []*Item{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, job := range jobs {
		if !pool.Submit(job) {
			break
		}
	}

	results := pool.Wait()

	items := make([]*Item, len(jobs))
	for i := range items {
		if i < len(results) && results[i] != nil {
			items[i] = results[i].(*Item)
			continue
		}
		// Never ran: the batch was canceled
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		items[i] = &Item{Index: i, Input: input(i), Error: err}
	}

	return items
}

// ReadURLsFromFile reads URLs from a file (one per line)
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadURLs(file)
}

// ReadURLs reads one URL per line, skipping blanks, # comments and duplicates
func ReadURLs(r io.Reader) ([]string, error) {
	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	return urls, nil
}

// Summary aggregates a batch run
type Summary struct {
	Total             int     `json:"total"`
	Credible          int     `json:"credible"`
	False             int     `json:"false"`
	Failed            int     `json:"failed"`
	AverageConfidence float64 `json:"average_confidence"`
}

// Summarize counts verdicts and failures across items
func Summarize(items []*Item) Summary {
	s := Summary{Total: len(items)}
	sum := 0

	for _, item := range items {
		if item.Error != nil || item.Report == nil {
			s.Failed++
			continue
		}
		sum += item.Report.Result.FinalConfidence
		if item.Report.Result.Judgment == model.LikelyCredible {
			s.Credible++
		} else {
			s.False++
		}
	}

	if scored := s.Credible + s.False; scored > 0 {
		s.AverageConfidence = float64(sum) / float64(scored)
	}
	return s
}

// limiterKey throttles by hostname; unparseable input shares one bucket
func limiterKey(rawURL string) string {
	if host := hostOf(rawURL); host != "" {
		return host
	}
	return "invalid"
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
