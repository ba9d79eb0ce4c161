package scan

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// fakeSource feeds lines straight into the runner, standing in for the
// serial mux.
type fakeSource struct {
	ch chan string
}

func newFakeSource() *fakeSource {
	return &fakeSource{ch: make(chan string)}
}

func (f *fakeSource) Subscribe() (string, chan string) { return "test", f.ch }
func (f *fakeSource) Unsubscribe(string)               {}

// startRunner runs r until the test finishes.
func startRunner(t *testing.T, r *Runner) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

// waitForPoints polls until a frame with at least n points is published.
func waitForPoints(t *testing.T, r *Runner, n int) Frame {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if frame, ok := r.Latest(); ok && len(frame.Angles) >= n {
			return frame
		}
		select {
		case <-deadline:
			frame, _ := r.Latest()
			t.Fatalf("timed out waiting for %d points, have %d", n, len(frame.Angles))
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRunnerSampleScan(t *testing.T) {
	source := newFakeSource()
	buf, err := NewBuffer(360, false)
	require.NoError(t, err)

	r := NewRunner(source, buf, 10*time.Millisecond, false, ColorBands)
	startRunner(t, r)

	for _, line := range []string{
		"Angle: 0°, Distance: 150 mm",
		"Angle: 90°, Distance: 800 mm",
		"Angle: 180°, Distance: 1500 mm",
		"Angle: 270°, Distance: 400 mm",
	} {
		source.ch <- line
	}

	frame := waitForPoints(t, r, 4)

	if diff := cmp.Diff([]float64{0, 90, 180, 270}, frame.Angles); diff != "" {
		t.Errorf("frame angles mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{150, 800, 1500, 400}, frame.Distances); diff != "" {
		t.Errorf("frame distances mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"very-near", "near", "far", "near"}, frame.Bands); diff != "" {
		t.Errorf("frame bands mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"#FF0000", "#FFFF00", "#00FF00", "#FFFF00"}, frame.Colors); diff != "" {
		t.Errorf("frame colors mismatch (-want +got):\n%s", diff)
	}
	if frame.Smoothed {
		t.Error("frame marked smoothed with smoothing disabled")
	}

	raw := r.RawSnapshot()
	want := []Reading{{0, 150}, {90, 800}, {180, 1500}, {270, 400}}
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("raw snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestRunnerDiscardsMalformedLines(t *testing.T) {
	source := newFakeSource()
	buf, err := NewBuffer(360, false)
	require.NoError(t, err)

	r := NewRunner(source, buf, 10*time.Millisecond, false, ColorBands)
	startRunner(t, r)

	source.ch <- "not a reading"
	source.ch <- "Angle: 10°, Distance: 500 mm"

	frame := waitForPoints(t, r, 1)
	require.Len(t, frame.Angles, 1)
	require.Equal(t, 10.0, frame.Angles[0])

	stats := r.Stats()
	require.Equal(t, int64(2), stats.Lines)
	require.Equal(t, int64(1), stats.ParseErrors)
}

func TestRunnerGradientColors(t *testing.T) {
	source := newFakeSource()
	buf, err := NewBuffer(360, false)
	require.NoError(t, err)

	r := NewRunner(source, buf, 10*time.Millisecond, false, ColorGradient)
	startRunner(t, r)

	source.ch <- "Angle: 0°, Distance: 100 mm"
	source.ch <- "Angle: 90°, Distance: 2000 mm"

	frame := waitForPoints(t, r, 2)
	require.Equal(t, []string{"#0000FF", "#FF0000"}, frame.Colors)
}

func TestRunnerSmoothedFlagTracksFallback(t *testing.T) {
	source := newFakeSource()
	buf, err := NewBuffer(360, false)
	require.NoError(t, err)

	r := NewRunner(source, buf, 10*time.Millisecond, true, ColorBands)
	startRunner(t, r)

	// Three points: below the spline minimum, so raw data is published and
	// the frame must not claim smoothing.
	source.ch <- "Angle: 0°, Distance: 500 mm"
	source.ch <- "Angle: 90°, Distance: 600 mm"
	source.ch <- "Angle: 180°, Distance: 700 mm"

	frame := waitForPoints(t, r, 3)
	if frame.Smoothed {
		t.Error("frame marked smoothed although the smoother fell back to raw data")
	}

	// A fourth point crosses the threshold.
	source.ch <- "Angle: 270°, Distance: 800 mm"
	deadline := time.After(2 * time.Second)
	for {
		if frame, ok := r.Latest(); ok && frame.Smoothed {
			return
		}
		select {
		case <-deadline:
			t.Fatal("frame never marked smoothed with four valid readings")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRunnerPublishesEmptyFrameWithoutData(t *testing.T) {
	source := newFakeSource()
	buf, err := NewBuffer(360, false)
	require.NoError(t, err)

	r := NewRunner(source, buf, 10*time.Millisecond, false, ColorBands)
	startRunner(t, r)

	deadline := time.After(2 * time.Second)
	for {
		if frame, ok := r.Latest(); ok {
			if len(frame.Angles) != 0 {
				t.Fatalf("expected empty frame, got %d points", len(frame.Angles))
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("no frame published on an idle feed")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in     string
		want   ColorMode
		wantOK bool
	}{
		{"bands", ColorBands, true},
		{"", ColorBands, true},
		{"gradient", ColorGradient, true},
		{"rainbow", ColorBands, false},
	}
	for _, tt := range tests {
		got, ok := ParseColorMode(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseColorMode(%q) = (%v, %v), expected (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
