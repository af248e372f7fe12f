package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce sync.Once

	// analysesTotal counts completed analyses by verdict and band
	analysesTotal *prometheus.CounterVec

	// confidence tracks the distribution of final confidence values
	confidence prometheus.Histogram

	// rejectionsTotal counts inputs refused before scoring
	rejectionsTotal *prometheus.CounterVec

	// analysisDuration tracks end-to-end analysis latency
	analysisDuration prometheus.Histogram

	// cacheHitsTotal counts results served from the cache
	cacheHitsTotal prometheus.Counter

	// llmSummariesTotal counts narrative summary attempts by status
	llmSummariesTotal *prometheus.CounterVec
)

// InitMetrics registers all fnd metrics with the default registry.
// Safe to call more than once.
func InitMetrics() {
	metricsOnce.Do(func() {
		analysesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fnd_analyses_total",
				Help: "Total number of completed analyses by judgment and confidence level",
			},
			[]string{"judgment", "level"},
		)

		confidence = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fnd_confidence",
				Help:    "Distribution of final credibility confidence (0-100)",
				Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		)

		rejectionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fnd_rejections_total",
				Help: "Total number of inputs rejected before scoring, by reason",
			},
			[]string{"reason"},
		)

		analysisDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fnd_analysis_duration_seconds",
				Help:    "Duration of analyses in seconds, including the optional LLM summary",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15},
			},
		)

		cacheHitsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "fnd_cache_hits_total",
				Help: "Total number of analysis results served from cache",
			},
		)

		llmSummariesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fnd_llm_summaries_total",
				Help: "Total number of LLM summary attempts by status",
			},
			[]string{"status"},
		)
	})
}

// RecordAnalysis records a completed analysis
func RecordAnalysis(judgment, level string, finalConfidence int) {
	if analysesTotal != nil {
		analysesTotal.WithLabelValues(judgment, level).Inc()
	}
	if confidence != nil {
		confidence.Observe(float64(finalConfidence))
	}
}

// RecordRejection records an input refused by validation
// reason: "empty_input", "invalid_url", "too_short", "unsupported_language", "unexpected"
func RecordRejection(reason string) {
	if rejectionsTotal != nil {
		rejectionsTotal.WithLabelValues(reason).Inc()
	}
}

// RecordCacheHit records a result served from cache
func RecordCacheHit() {
	if cacheHitsTotal != nil {
		cacheHitsTotal.Inc()
	}
}

// RecordLLMSummary records a summary attempt
// status: "ok", "failed", "unavailable"
func RecordLLMSummary(status string) {
	if llmSummariesTotal != nil {
		llmSummariesTotal.WithLabelValues(status).Inc()
	}
}

// RecordDuration records the duration of an analysis
func RecordDuration(d time.Duration) {
	if analysisDuration != nil {
		analysisDuration.Observe(d.Seconds())
	}
}

// Timer measures one analysis
type Timer struct {
	start time.Time
}

// StartTimer creates a timer for the current analysis
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time since the timer started
func (t *Timer) ObserveDuration() {
	if t != nil {
		RecordDuration(time.Since(t.start))
	}
}
