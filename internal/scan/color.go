package scan

import (
	"fmt"
	"image/color"
	"math"
)

// Proximity thresholds in millimeters separating the color bands.
const (
	VeryNearMaxMM = 300
	NearMaxMM     = 1000
)

// Band is a coarse proximity classification of a distance reading.
type Band int

const (
	BandUnknown Band = iota
	BandVeryNear
	BandNear
	BandFar
)

// ClassifyBand maps a distance to its proximity band. NaN (no reading)
// classifies as unknown.
func ClassifyBand(distanceMM float64) Band {
	switch {
	case math.IsNaN(distanceMM):
		return BandUnknown
	case distanceMM <= VeryNearMaxMM:
		return BandVeryNear
	case distanceMM <= NearMaxMM:
		return BandNear
	default:
		return BandFar
	}
}

func (b Band) String() string {
	switch b {
	case BandVeryNear:
		return "very-near"
	case BandNear:
		return "near"
	case BandFar:
		return "far"
	default:
		return "unknown"
	}
}

// Color returns the display color for the band.
func (b Band) Color() color.RGBA {
	switch b {
	case BandVeryNear:
		return color.RGBA{R: 0xFF, A: 0xFF} // red
	case BandNear:
		return color.RGBA{R: 0xFF, G: 0xFF, A: 0xFF} // yellow
	case BandFar:
		return color.RGBA{G: 0xFF, A: 0xFF} // green
	default:
		return color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF} // gray
	}
}

// Hex returns the band color as a #RRGGBB string for the web chart.
func (b Band) Hex() string {
	return HexColor(b.Color())
}

// HexColor formats an RGBA color as #RRGGBB.
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// gradientStops is the 4-stop colormap used in gradient mode, interpolated
// blue → green → yellow → red across the observed distance range.
var gradientStops = []color.RGBA{
	{B: 0xFF, A: 0xFF},          // blue
	{G: 0xFF, A: 0xFF},          // green
	{R: 0xFF, G: 0xFF, A: 0xFF}, // yellow
	{R: 0xFF, A: 0xFF},          // red
}

// GradientColor maps a distance onto the 4-stop colormap scaled to the
// [min, max] of the current frame's valid readings. The scale is recomputed
// every frame, so the color of a fixed distance drifts as the observed range
// changes; that matches the display this replaces. NaN maps to gray.
func GradientColor(distanceMM, minMM, maxMM float64) color.RGBA {
	if math.IsNaN(distanceMM) {
		return BandUnknown.Color()
	}
	t := 0.0
	if maxMM > minMM {
		t = (distanceMM - minMM) / (maxMM - minMM)
	}
	t = math.Max(0, math.Min(1, t))

	// position within the stop sequence
	pos := t * float64(len(gradientStops)-1)
	i := int(pos)
	if i >= len(gradientStops)-1 {
		return gradientStops[len(gradientStops)-1]
	}
	frac := pos - float64(i)
	a, b := gradientStops[i], gradientStops[i+1]
	return color.RGBA{
		R: lerpByte(a.R, b.R, frac),
		G: lerpByte(a.G, b.G, frac),
		B: lerpByte(a.B, b.B, frac),
		A: 0xFF,
	}
}

func lerpByte(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// validRange returns the min and max of the non-NaN values. ok is false when
// no valid values exist.
func validRange(values []float64) (minV, maxV float64, ok bool) {
	minV, maxV = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		ok = true
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return minV, maxV, ok
}
