package scan

import (
	"fmt"
	"math"
)

// Distance sanity bounds in millimeters. Readings outside this window are
// sensor glitches (the unit tops out at 5m) and are dropped when the gate is
// enabled.
const (
	MinDistanceMM = 0
	MaxDistanceMM = 5000
)

// Supported buffer resolutions: one bucket per degree, or per half degree.
const (
	BucketsPerDegree     = 360
	BucketsPerHalfDegree = 720
)

// Buffer holds the most recent distance per angle bucket for one revolution
// of the sensor. A bucket with no reading yet holds NaN. The buffer is
// allocated once and never resizes; a new reading for a bucket overwrites
// the old one unconditionally. There is no time-based expiry: a stale value
// persists until the sensor sweeps past that angle again.
type Buffer struct {
	distances []float64
	factor    float64 // buckets per degree of arc
	gate      bool
}

// NewBuffer allocates a scan buffer with the given number of angle buckets.
// Only 360 and 720 bucket layouts are produced by the supported sensors.
// When sanityGate is set, updates with a non-finite distance or one outside
// [MinDistanceMM, MaxDistanceMM] are silently dropped.
func NewBuffer(buckets int, sanityGate bool) (*Buffer, error) {
	if buckets != BucketsPerDegree && buckets != BucketsPerHalfDegree {
		return nil, fmt.Errorf("unsupported bucket count %d: expected %d or %d", buckets, BucketsPerDegree, BucketsPerHalfDegree)
	}
	d := make([]float64, buckets)
	for i := range d {
		d[i] = math.NaN()
	}
	return &Buffer{
		distances: d,
		factor:    float64(buckets) / 360,
		gate:      sanityGate,
	}, nil
}

// Len returns the number of angle buckets.
func (b *Buffer) Len() int { return len(b.distances) }

// Factor returns the number of buckets per degree of arc.
func (b *Buffer) Factor() float64 { return b.factor }

// BucketAngle returns the angle in degrees covered by bucket i.
func (b *Buffer) BucketAngle(i int) float64 {
	return float64(i) / b.factor
}

// Update stores a distance at the bucket nearest the given angle,
// overwriting any prior value. Angles are reduced modulo one revolution.
func (b *Buffer) Update(angleDeg, distanceMM float64) {
	if b.gate {
		if math.IsNaN(distanceMM) || math.IsInf(distanceMM, 0) {
			return
		}
		if distanceMM < MinDistanceMM || distanceMM > MaxDistanceMM {
			return
		}
	}
	n := len(b.distances)
	i := int(math.Round(angleDeg*b.factor)) % n
	if i < 0 {
		i += n
	}
	b.distances[i] = distanceMM
}

// ValidCount returns the number of buckets holding a reading.
func (b *Buffer) ValidCount() int {
	count := 0
	for _, d := range b.distances {
		if !math.IsNaN(d) {
			count++
		}
	}
	return count
}

// Snapshot returns the (angle°, distance) pairs for every bucket holding a
// reading, in bucket order.
func (b *Buffer) Snapshot() []Reading {
	out := make([]Reading, 0, len(b.distances))
	for i, d := range b.distances {
		if math.IsNaN(d) {
			continue
		}
		out = append(out, Reading{AngleDeg: b.BucketAngle(i), DistanceMM: d})
	}
	return out
}

// Distances returns a copy of the dense bucket array, NaN marking buckets
// with no reading yet.
func (b *Buffer) Distances() []float64 {
	out := make([]float64, len(b.distances))
	copy(out, b.distances)
	return out
}
