package scan

import (
	"fmt"
	"strconv"
	"strings"
)

// Reading is a single angle/distance measurement reported by the sensor.
type Reading struct {
	AngleDeg   float64 `json:"angle"`
	DistanceMM float64 `json:"distance"`
}

// ParseLine parses one line of sensor output. The firmware emits one reading
// per line in a fixed format:
//
//	Angle: 123.4°, Distance: 567 mm
//
// A malformed line (missing comma, missing colon, non-numeric value) returns
// an error; callers discard the line and keep reading. Parse failures are
// never fatal.
func ParseLine(line string) (Reading, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 2 {
		return Reading{}, fmt.Errorf("expected two comma-separated fields, got %d in %q", len(parts), line)
	}

	angle, err := parseField(parts[0], "°")
	if err != nil {
		return Reading{}, fmt.Errorf("bad angle field: %v", err)
	}
	distance, err := parseField(parts[1], "mm")
	if err != nil {
		return Reading{}, fmt.Errorf("bad distance field: %v", err)
	}

	return Reading{AngleDeg: angle, DistanceMM: distance}, nil
}

// parseField extracts the numeric value from a "Label: <value><unit>" field.
func parseField(field, unit string) (float64, error) {
	kv := strings.SplitN(field, ":", 2)
	if len(kv) != 2 {
		return 0, fmt.Errorf("missing colon in %q", field)
	}
	raw := strings.TrimSpace(kv[1])
	raw = strings.TrimSuffix(raw, unit)
	raw = strings.TrimSpace(raw)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric value %q", raw)
	}
	return v, nil
}
