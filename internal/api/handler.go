package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/fnd/internal/model"
	"github.com/ppiankov/fnd/internal/pipeline"
)

// AnalyzeRequest is the body of analyze and report requests.
// Exactly one of URL and Text must be set.
type AnalyzeRequest struct {
	URL  string `json:"url,omitempty"`
	Text string `json:"text,omitempty"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Error     string `json:"error"`
	Reason    string `json:"reason"`
	RequestID string `json:"request_id,omitempty"`
}

// Health check endpoint
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "fnd-api",
	})
}

// Analyze scores a URL or pasted text and returns the report as JSON
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	report, ok := s.analyze(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Report scores the input and returns the rendered report.
// format is text (default), markdown or html.
func (s *Server) Report(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "markdown" && format != "html" {
		s.writeError(w, r, http.StatusBadRequest, "unsupported format: use text, markdown or html", "invalid_format")
		return
	}

	report, ok := s.analyze(w, r)
	if !ok {
		return
	}

	switch format {
	case "markdown":
		writeBody(w, "text/markdown; charset=utf-8", s.renderer.Markdown(report))
	case "html":
		page, err := s.renderer.HTML(report)
		if err != nil {
			s.logger.Error("render HTML failed", "error", err, "request_id", RequestID(r.Context()))
			s.writeError(w, r, http.StatusInternalServerError, model.UserMessage(err), "render_failed")
			return
		}
		writeBody(w, "text/html; charset=utf-8", page)
	default:
		writeBody(w, "text/plain; charset=utf-8", pipeline.FormatText(report.Result))
	}
}

// analyze decodes the request and runs the pipeline, writing the error response on failure
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) (*model.Report, bool) {
	if s.config.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large", "too_large")
			return nil, false
		}
		s.writeError(w, r, http.StatusBadRequest, "invalid JSON body", "invalid_json")
		return nil, false
	}

	hasURL := strings.TrimSpace(req.URL) != ""
	hasText := strings.TrimSpace(req.Text) != ""
	if hasURL && hasText {
		s.writeError(w, r, http.StatusBadRequest, "provide either url or text, not both", "ambiguous_input")
		return nil, false
	}

	var (
		report *model.Report
		err    error
	)
	if hasURL {
		report, err = s.analyzer.AnalyzeURL(r.Context(), req.URL)
	} else {
		report, err = s.analyzer.AnalyzeText(r.Context(), req.Text)
	}

	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("analysis failed", "error", err, "request_id", RequestID(r.Context()))
		}
		s.writeError(w, r, status, model.UserMessage(err), model.ErrorReason(err))
		return nil, false
	}

	return report, true
}

// statusFor maps the error taxonomy to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrEmptyInput), errors.Is(err, model.ErrInvalidURLFormat):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrTooShort), errors.Is(err, model.ErrUnsupportedLanguage):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message, reason string) {
	writeJSON(w, status, ErrorResponse{
		Error:     message,
		Reason:    reason,
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeBody(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
