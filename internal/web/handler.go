package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"html-analyzer/internal/analyzer"
	"html-analyzer/internal/metrics"
)

const urlParameterNotFound = "Please enter the url"

//go:embed templates/index.html
var templateFS embed.FS

var tmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// PageAnalyzer is satisfied by *analyzer.Analyzer.
type PageAnalyzer interface {
	AnalyzePage(ctx context.Context, pageURL string) *analyzer.AnalysisResult
}

type TemplateData struct {
	URL     string
	Error   string
	Results *analyzer.AnalysisResult
}

type Handler struct {
	analyzer PageAnalyzer
	logger   *slog.Logger
}

func NewHandler(a PageAnalyzer, logger *slog.Logger) *Handler {
	metrics.Init()
	return &Handler{analyzer: a, logger: logger}
}

func clientError(w http.ResponseWriter, status int, message string) {
	http.Error(w, message, status)
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	trace := string(debug.Stack())
	h.logger.Error("Internal Server Error", "error", err, "trace", trace)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		clientError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	data := TemplateData{}

	if r.Method == http.MethodPost {
		h.logger.Info("Received an html analyzer request", "remote_addr", r.RemoteAddr)
		data = h.analyze(r)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		h.serverError(w, err)
	}
}

func (h *Handler) analyze(r *http.Request) TemplateData {
	urlToAnalyze := strings.TrimSpace(r.FormValue("url"))
	data := TemplateData{URL: urlToAnalyze}

	if urlToAnalyze == "" {
		h.logger.Warn("The url parameter is not set")
		data.Error = urlParameterNotFound
		return data
	}

	start := time.Now()
	result := h.analyzer.AnalyzePage(r.Context(), urlToAnalyze)

	outcome := "success"
	if !result.Succeeded {
		outcome = result.Message
	}
	metrics.ObserveAnalysis(outcome, time.Since(start).Seconds())

	if !result.Succeeded {
		h.logger.Warn("Analysis failed for URL", "url", urlToAnalyze, "failure", result.Message)
		data.Error = result.Failure.Description()
		return data
	}

	h.logger.Info("Analysis successful", "url", urlToAnalyze)
	data.Results = result
	return data
}
