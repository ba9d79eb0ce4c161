// Package units holds the small unit conversions shared by the scan and
// rendering layers. Angles coming off the sensor are degrees; the smoother
// and polar projection work in radians.
package units

import "math"

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NormalizeDegrees reduces an angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// PolarToXY projects a polar point (angle in degrees, radial distance) onto
// cartesian coordinates with 0° at the top and angles increasing clockwise,
// matching the sensor's mounting orientation.
func PolarToXY(angleDeg, distance float64) (x, y float64) {
	theta := Deg2Rad(angleDeg)
	return distance * math.Sin(theta), distance * math.Cos(theta)
}
