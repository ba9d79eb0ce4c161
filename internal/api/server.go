// Package api serves the live scan over HTTP: a JSON frame feed, zoom
// controls, CSV and PNG export, an ECharts page, and a raw serial tail for
// debugging.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/polarscan/internal/scan"
	"github.com/banshee-data/polarscan/internal/serialmux"
	"github.com/banshee-data/polarscan/internal/view"
)

// ANSI escape codes for request logging
const (
	colorCyan      = "\033[36m"
	colorReset     = "\033[0m"
	colorYellow    = "\033[33m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
)

// Server exposes the scan runner and view state over HTTP. It never touches
// the scan buffer directly: reads go through published frames and snapshots.
type Server struct {
	runner *scan.Runner
	view   *view.State
	mux    serialmux.SerialMuxInterface
}

// NewServer wires the HTTP layer over a runner, view state, and the serial
// mux (used only by the debug tail).
func NewServer(runner *scan.Runner, vs *view.State, m serialmux.SerialMuxInterface) *Server {
	return &Server{
		runner: runner,
		view:   vs,
		mux:    m,
	}
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleDashboard)
	mux.HandleFunc("/chart", s.handleChart)
	mux.HandleFunc("/api/scan", s.handleScan)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/zoom/in", s.handleZoomIn)
	mux.HandleFunc("/api/zoom/out", s.handleZoomOut)
	mux.HandleFunc("/api/zoom/reset", s.handleZoomReset)
	mux.HandleFunc("/api/export.csv", s.handleExportCSV)
	mux.HandleFunc("/api/snapshot.png", s.handleSnapshotPNG)
	mux.HandleFunc("/debug/tail", s.handleTail)
	return mux
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
