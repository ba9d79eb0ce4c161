package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/banshee-data/polarscan/internal/scan"
)

// scanResponse is the JSON payload for /api/scan: the latest frame plus the
// view bounds the chart should draw with.
type scanResponse struct {
	Frame   scan.Frame `json:"frame"`
	RangeMM float64    `json:"range_mm"`
	Markers []float64  `json:"markers"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	frame, ok := s.runner.Latest()
	if !ok {
		s.writeJSONError(w, http.StatusServiceUnavailable, "no scan frame published yet")
		return
	}

	resp := scanResponse{
		Frame:   frame,
		RangeMM: s.view.Range(),
		Markers: s.view.Markers(),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write scan frame")
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if err := json.NewEncoder(w).Encode(s.runner.Stats()); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write stats")
	}
}

// zoomResponse reports the view state after a zoom action.
type zoomResponse struct {
	RangeMM float64   `json:"range_mm"`
	Markers []float64 `json:"markers"`
}

func (s *Server) handleZoomIn(w http.ResponseWriter, r *http.Request) {
	s.handleZoom(w, r, s.view.ZoomIn)
}

func (s *Server) handleZoomOut(w http.ResponseWriter, r *http.Request) {
	s.handleZoom(w, r, s.view.ZoomOut)
}

func (s *Server) handleZoomReset(w http.ResponseWriter, r *http.Request) {
	s.handleZoom(w, r, s.view.Reset)
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request, action func() float64) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	action()
	resp := zoomResponse{
		RangeMM: s.view.Range(),
		Markers: s.view.Markers(),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write zoom state")
	}
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	readings := s.runner.RawSnapshot()
	filename := fmt.Sprintf("scan-%s.csv", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	// headers are already out by the time a row write can fail, so the only
	// option left is to log and let the client see the truncated body
	if err := scan.WriteCSV(w, readings); err != nil {
		log.Printf("csv export aborted: %v", err)
	}
}

// handleTail streams raw serial lines as Server-Sent Events for debugging
// the sensor link.
func (s *Server) handleTail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	id, c := s.mux.Subscribe()
	defer s.mux.Unsubscribe(id)

	w.Write([]byte(": ping\n\n"))
	flusher.Flush()

	for {
		select {
		case payload, ok := <-c:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
