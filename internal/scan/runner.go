package scan

import (
	"context"
	"log"
	"math"
	"sync"
	"time"
)

// ColorMode selects how frame points are colored.
type ColorMode int

const (
	// ColorBands uses the fixed proximity thresholds.
	ColorBands ColorMode = iota
	// ColorGradient rescales a blue→red colormap to each frame's observed
	// min/max distance.
	ColorGradient
)

// ParseColorMode maps a config token to a ColorMode.
func ParseColorMode(s string) (ColorMode, bool) {
	switch s {
	case "bands", "":
		return ColorBands, true
	case "gradient":
		return ColorGradient, true
	}
	return ColorBands, false
}

// Frame is one rendered snapshot of the scan, published to the display side
// on every cadence tick. Slices are parallel: one entry per visible point,
// in angle order. A Frame is immutable once published.
type Frame struct {
	Angles    []float64 `json:"angles"`    // degrees
	Distances []float64 `json:"distances"` // millimeters
	Colors    []string  `json:"colors"`    // #RRGGBB per point
	Bands     []string  `json:"bands"`     // proximity band name per point
	Smoothed  bool      `json:"smoothed"`
	At        time.Time `json:"at"`
}

// Stats counts what the scan loop has seen since startup.
type Stats struct {
	Lines       int64 `json:"lines"`
	ParseErrors int64 `json:"parse_errors"`
	Frames      int64 `json:"frames"`
}

// LineSource is the subset of the serial mux the runner needs: a subscriber
// feed of raw lines.
type LineSource interface {
	Subscribe() (string, chan string)
	Unsubscribe(string)
}

// Runner owns the scan buffer. It drains parsed readings from the serial
// feed and publishes a colored frame on a fixed cadence, whether or not new
// data arrived. The buffer is only ever touched from Run's goroutine; the
// HTTP side reads published frames and snapshots through a mutex.
type Runner struct {
	source  LineSource
	buf     *Buffer
	cadence time.Duration
	smooth  bool
	mode    ColorMode

	mu        sync.Mutex
	latest    Frame
	latestRaw []Reading
	hasFrame  bool
	stats     Stats
}

// NewRunner wires a scan loop over the given line source and buffer.
func NewRunner(source LineSource, buf *Buffer, cadence time.Duration, smooth bool, mode ColorMode) *Runner {
	return &Runner{
		source:  source,
		buf:     buf,
		cadence: cadence,
		smooth:  smooth,
		mode:    mode,
	}
}

// Run consumes lines and publishes frames until the context is cancelled.
// The cadence tick fires regardless of data arrival, so a quiet sensor still
// refreshes the display. Run returns the context error on cancellation; that
// is the only shutdown path.
func (r *Runner) Run(ctx context.Context) error {
	id, lines := r.source.Subscribe()
	defer r.source.Unsubscribe(id)

	ticker := time.NewTicker(r.cadence)
	defer ticker.Stop()

	log.Printf("scan loop started: %d buckets, cadence %v", r.buf.Len(), r.cadence)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			r.mu.Lock()
			r.stats.Lines++
			r.mu.Unlock()

			reading, err := ParseLine(line)
			if err != nil {
				r.mu.Lock()
				r.stats.ParseErrors++
				r.mu.Unlock()
				log.Printf("discarding line %q: %v", line, err)
				continue
			}
			r.buf.Update(reading.AngleDeg, reading.DistanceMM)

		case <-ticker.C:
			r.publish()
		}
	}
}

// publish builds a frame from the current buffer and stores it as the
// latest. The raw (unsmoothed) snapshot is kept alongside for CSV export.
func (r *Runner) publish() {
	raw := r.buf.Snapshot()

	dense := r.buf.Distances()
	smoothed := false
	if r.smooth {
		dense, smoothed = Smooth(dense, r.buf.Factor())
	}

	frame := buildFrame(dense, r.buf.Factor(), r.mode)
	frame.Smoothed = smoothed
	frame.At = time.Now()

	r.mu.Lock()
	r.latest = frame
	r.latestRaw = raw
	r.hasFrame = true
	r.stats.Frames++
	r.mu.Unlock()
}

// buildFrame extracts the visible points from a dense bucket array and
// colors them.
func buildFrame(dense []float64, factor float64, mode ColorMode) Frame {
	f := Frame{}
	minV, maxV, _ := validRange(dense)
	for i, d := range dense {
		if math.IsNaN(d) {
			continue
		}
		f.Angles = append(f.Angles, float64(i)/factor)
		f.Distances = append(f.Distances, d)

		band := ClassifyBand(d)
		f.Bands = append(f.Bands, band.String())
		switch mode {
		case ColorGradient:
			f.Colors = append(f.Colors, HexColor(GradientColor(d, minV, maxV)))
		default:
			f.Colors = append(f.Colors, band.Hex())
		}
	}
	return f
}

// Mode returns the configured color mode.
func (r *Runner) Mode() ColorMode { return r.mode }

// Latest returns the most recently published frame. ok is false before the
// first cadence tick.
func (r *Runner) Latest() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest, r.hasFrame
}

// RawSnapshot returns the unsmoothed buffer contents as of the last
// published frame, for export.
func (r *Runner) RawSnapshot() []Reading {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Reading, len(r.latestRaw))
	copy(out, r.latestRaw)
	return out
}

// Stats returns loop counters.
func (r *Runner) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
