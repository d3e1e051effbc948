package web

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"html-analyzer/internal/metrics"
)

// NewRouter wires the analyzer page and the metrics endpoint.
func NewRouter(a PageAnalyzer, logger *slog.Logger) http.Handler {
	metrics.Init()

	mux := http.NewServeMux()
	mux.Handle("/", NewHandler(a, logger))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return Logging(logger)(Metrics(mux))
}
