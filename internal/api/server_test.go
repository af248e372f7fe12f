package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/fnd/internal/model"
	"github.com/ppiankov/fnd/internal/pipeline"
	"github.com/ppiankov/fnd/internal/util"
)

const neutralArticle = `City Council Approves New Library Budget
The city council voted on June 12, 2024 to approve a revised budget for the public library system. The plan adds funding for longer weekend hours, new computers, and a mobile reading program that will visit neighborhoods without a branch. Council members discussed the proposal during a two hour meeting that included comments from residents, teachers, and library staff. The finance director explained that the cost will be covered by savings from an energy efficiency project completed last year. Several residents asked about accessibility improvements, and the director confirmed that ramps and updated signage are included in the second phase. The library board will publish a detailed schedule next month. A copy of the approved budget is available at https://www.example.org/library-budget for anyone who wants to review the numbers. The next council meeting will take place in July, when members expect to review the parks department plan and a proposal for bicycle lanes downtown.`

// panicAnalyzer fails every request the hard way
type panicAnalyzer struct{}

func (panicAnalyzer) AnalyzeText(ctx context.Context, text string) (*model.Report, error) {
	panic("boom")
}

func (panicAnalyzer) AnalyzeURL(ctx context.Context, rawURL string) (*model.Report, error) {
	panic("boom")
}

func newTestServer(t *testing.T, mutate func(cfg *model.Config)) *Server {
	t.Helper()

	cfg := model.DefaultConfig()
	cfg.RateLimiting.RequestsPerSecond = 0
	if mutate != nil {
		mutate(cfg)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output, io.Discard)
	return NewServer(cfg, p, renderer, util.NewLogger(io.Discard, "text", "error"))
}

func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("unexpected body: %v", body)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a request ID header")
	}
}

func TestServer_Analyze_Text(t *testing.T) {
	s := newTestServer(t, nil)

	rec := postJSON(t, s.Handler(), "/api/v1/analyze", AnalyzeRequest{Text: neutralArticle})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report model.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid report JSON: %v", err)
	}
	if report.Result.FinalConfidence != 85 || report.Result.Judgment != model.LikelyCredible {
		t.Errorf("unexpected result: %+v", report.Result)
	}
	if report.Result.Source != model.PastedTextSource {
		t.Errorf("expected pasted text source, got %q", report.Result.Source)
	}
}

func TestServer_Analyze_URL(t *testing.T) {
	s := newTestServer(t, nil)

	rec := postJSON(t, s.Handler(), "/api/v1/analyze", AnalyzeRequest{URL: "https://www.bbc.com/news/1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report model.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid report JSON: %v", err)
	}
	if report.Result.Source != "www.bbc.com" || !report.Input.Simulated {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestServer_Analyze_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   interface{}
		status int
		reason string
	}{
		{"empty", AnalyzeRequest{}, http.StatusBadRequest, "empty_input"},
		{"invalid url", AnalyzeRequest{URL: "not a url"}, http.StatusBadRequest, "invalid_url"},
		{"both", AnalyzeRequest{URL: "https://a.example", Text: "x"}, http.StatusBadRequest, "ambiguous_input"},
		{"too short", AnalyzeRequest{Text: "Too short to score."}, http.StatusUnprocessableEntity, "too_short"},
		{"unsupported", AnalyzeRequest{Text: strings.Repeat("новости ", 120)}, http.StatusUnprocessableEntity, "unsupported_language"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, s.Handler(), "/api/v1/analyze", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}

			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid error JSON: %v", err)
			}
			if resp.Reason != tt.reason {
				t.Errorf("expected reason %s, got %s", tt.reason, resp.Reason)
			}
			if resp.Error == "" || resp.RequestID == "" {
				t.Errorf("incomplete error response: %+v", resp)
			}
		})
	}
}

func TestServer_Analyze_InvalidJSON(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestServer_Analyze_BodyTooLarge(t *testing.T) {
	s := newTestServer(t, func(cfg *model.Config) { cfg.Server.MaxBodyBytes = 64 })

	rec := postJSON(t, s.Handler(), "/api/v1/analyze", AnalyzeRequest{Text: neutralArticle})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestServer_Analyze_PanicIsInternalError(t *testing.T) {
	cfg := model.DefaultConfig()
	s := NewServer(cfg, panicAnalyzer{}, pipeline.NewRenderer(cfg.Output, io.Discard), util.NewLogger(io.Discard, "text", "error"))

	rec := postJSON(t, s.Handler(), "/api/v1/analyze", AnalyzeRequest{Text: neutralArticle})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestServer_Report_Formats(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"", "text/plain", "Credibility Score: 85% (High Confidence)"},
		{"text", "text/plain", "F.N.D. Analysis Report\n====="},
		{"markdown", "text/markdown", "## Verdict: Likely Credible"},
		{"html", "text/html", "<h1>F.N.D. Analysis Report</h1>"},
	}

	for _, tt := range tests {
		t.Run("format="+tt.format, func(t *testing.T) {
			path := "/api/v1/report"
			if tt.format != "" {
				path += "?format=" + tt.format
			}
			rec := postJSON(t, s.Handler(), path, AnalyzeRequest{Text: neutralArticle})

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if !strings.HasPrefix(rec.Header().Get("Content-Type"), tt.contentType) {
				t.Errorf("expected %s, got %s", tt.contentType, rec.Header().Get("Content-Type"))
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body missing %q:\n%s", tt.contains, rec.Body.String())
			}
		})
	}
}

func TestServer_Report_UnknownFormat(t *testing.T) {
	s := newTestServer(t, nil)

	rec := postJSON(t, s.Handler(), "/api/v1/report?format=pdf", AnalyzeRequest{Text: neutralArticle})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestServer_RequestIDPropagation(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(RequestIDHeader, "trace-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "trace-123" {
		t.Errorf("expected client request ID to be echoed, got %q", got)
	}
}

func TestServer_APIKey(t *testing.T) {
	s := newTestServer(t, func(cfg *model.Config) { cfg.Server.APIKey = "secret" })

	rec := postJSON(t, s.Handler(), "/api/v1/analyze", AnalyzeRequest{URL: "https://bbc.com/x"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", rec.Code)
	}

	for _, header := range []struct{ name, value string }{
		{"X-API-Key", "secret"},
		{"Authorization", "Bearer secret"},
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"url":"https://bbc.com/x"}`))
		req.Header.Set(header.name, header.value)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200 with key, got %d", header.name, rec.Code)
		}
	}

	// Health stays open
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected open health check, got %d", rec.Code)
	}
}

func TestServer_RateLimit(t *testing.T) {
	s := newTestServer(t, func(cfg *model.Config) {
		cfg.RateLimiting.RequestsPerSecond = 0.001
		cfg.RateLimiting.BurstSize = 2
	})

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = postJSON(t, s.Handler(), "/api/v1/analyze", AnalyzeRequest{URL: "https://bbc.com/x"}).Code
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("expected burst to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst, got %d", codes[2])
	}
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t, nil)

	postJSON(t, s.Handler(), "/api/v1/analyze", AnalyzeRequest{URL: "https://bbc.com/x"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "fnd_analyses_total") {
		t.Error("expected fnd metrics in exposition")
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analyze", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestServer_Run_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, func(cfg *model.Config) { cfg.Server.Addr = "127.0.0.1:0" })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	if err := <-done; err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}
