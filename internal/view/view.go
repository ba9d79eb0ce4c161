// Package view tracks the radial axis state of the polar display. The scan
// buffer is never touched from here: zoom actions change only how far out
// the chart draws.
package view

import "sync"

// Zoom steps are multiplicative, matching the display hardware buttons.
const (
	zoomInStep  = 0.7
	zoomOutStep = 1.4
)

// markerCount is the number of radial tick markers drawn inside the current
// range.
const markerCount = 4

// State holds the current radial range in millimeters. It is mutated only by
// explicit zoom and reset actions and read by the render layer for axis
// bounds and tick markers.
type State struct {
	mu           sync.Mutex
	current      float64
	defaultRange float64
	min          float64
	max          float64
}

// NewState creates a view with the given default range and clamp bounds.
func NewState(defaultRange, minRange, maxRange float64) *State {
	return &State{
		current:      defaultRange,
		defaultRange: defaultRange,
		min:          minRange,
		max:          maxRange,
	}
}

// Range returns the current radial range.
func (s *State) Range() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ZoomIn shrinks the range by the zoom step, clamped at the minimum, and
// returns the new range.
func (s *State) ZoomIn() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.current * zoomInStep
	if next < s.min {
		next = s.min
	}
	s.current = next
	return s.current
}

// ZoomOut grows the range by the zoom step, clamped at the maximum, and
// returns the new range.
func (s *State) ZoomOut() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.current * zoomOutStep
	if next > s.max {
		next = s.max
	}
	s.current = next
	return s.current
}

// Reset restores the default range and returns it.
func (s *State) Reset() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.defaultRange
	return s.current
}

// Markers returns the radial tick marker positions for the current range:
// evenly spaced steps up to and including the range itself.
func (s *State) Markers() []float64 {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()

	step := current / markerCount
	out := make([]float64, 0, markerCount)
	for m := step; m <= current+step/2; m += step {
		out = append(out, m)
	}
	return out
}
