package scan

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewBufferRejectsUnsupportedResolutions(t *testing.T) {
	for _, buckets := range []int{0, -1, 100, 361, 1440} {
		if _, err := NewBuffer(buckets, false); err == nil {
			t.Errorf("NewBuffer(%d) succeeded, expected error", buckets)
		}
	}
	for _, buckets := range []int{360, 720} {
		b, err := NewBuffer(buckets, false)
		if err != nil {
			t.Fatalf("NewBuffer(%d) returned error: %v", buckets, err)
		}
		if b.Len() != buckets {
			t.Errorf("Len() = %d, expected %d", b.Len(), buckets)
		}
	}
}

func TestBufferUpdateAndSnapshot(t *testing.T) {
	b, err := NewBuffer(360, false)
	if err != nil {
		t.Fatal(err)
	}

	b.Update(0, 150)
	b.Update(90, 800)
	b.Update(180, 1500)
	b.Update(270, 400)

	want := []Reading{
		{AngleDeg: 0, DistanceMM: 150},
		{AngleDeg: 90, DistanceMM: 800},
		{AngleDeg: 180, DistanceMM: 1500},
		{AngleDeg: 270, DistanceMM: 400},
	}
	if diff := cmp.Diff(want, b.Snapshot()); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
	if b.ValidCount() != 4 {
		t.Errorf("ValidCount() = %d, expected 4", b.ValidCount())
	}
}

func TestBufferUpdateIsIdempotent(t *testing.T) {
	b, _ := NewBuffer(360, false)
	b.Update(42, 999)
	first := b.Snapshot()
	b.Update(42, 999)
	if diff := cmp.Diff(first, b.Snapshot()); diff != "" {
		t.Errorf("repeated update changed buffer state (-first +second):\n%s", diff)
	}
}

func TestBufferOverwriteLastWriteWins(t *testing.T) {
	b, _ := NewBuffer(360, false)
	b.Update(42, 100)
	b.Update(42, 2000)

	snap := b.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(snap))
	}
	if snap[0].DistanceMM != 2000 {
		t.Errorf("bucket holds %v, expected 2000", snap[0].DistanceMM)
	}
}

func TestBufferAngleBucketing(t *testing.T) {
	tests := []struct {
		name       string
		buckets    int
		angle      float64
		wantBucket int
	}{
		{"rounds down", 360, 10.4, 10},
		{"rounds up", 360, 10.6, 11},
		{"wraps full revolution", 360, 360, 0},
		{"wraps past revolution", 360, 365, 5},
		{"negative wraps", 360, -10, 350},
		{"half degree resolution", 720, 10.5, 21},
		{"half degree rounds", 720, 10.26, 21},
		{"half degree wraps", 720, 360.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := NewBuffer(tt.buckets, false)
			b.Update(tt.angle, 500)
			dist := b.Distances()
			if math.IsNaN(dist[tt.wantBucket]) {
				t.Fatalf("bucket %d empty after Update(%v)", tt.wantBucket, tt.angle)
			}
			// no other bucket should be touched
			for i, d := range dist {
				if i != tt.wantBucket && !math.IsNaN(d) {
					t.Errorf("bucket %d unexpectedly holds %v", i, d)
				}
			}
		})
	}
}

func TestBufferSanityGate(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		accepted bool
	}{
		{"in range", 2500, true},
		{"zero", 0, true},
		{"maximum", 5000, true},
		{"negative", -1, false},
		{"too far", 5001, false},
		{"NaN", math.NaN(), false},
		{"positive infinity", math.Inf(1), false},
		{"negative infinity", math.Inf(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := NewBuffer(360, true)
			b.Update(10, tt.distance)
			got := b.ValidCount() == 1
			if got != tt.accepted {
				t.Errorf("Update(10, %v) accepted=%v, expected %v", tt.distance, got, tt.accepted)
			}
		})
	}
}

func TestBufferWithoutGateAcceptsOutOfRange(t *testing.T) {
	b, _ := NewBuffer(360, false)
	b.Update(10, 9999)
	if b.ValidCount() != 1 {
		t.Errorf("ungated buffer rejected 9999mm")
	}
}

func TestBufferDistancesReturnsCopy(t *testing.T) {
	b, _ := NewBuffer(360, false)
	b.Update(5, 123)
	d := b.Distances()
	d[5] = 0
	if b.Distances()[5] != 123 {
		t.Error("mutating the Distances() result changed the buffer")
	}
}
