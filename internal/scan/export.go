package scan

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes a snapshot as delimited text: a header row followed by one
// row per stored reading, angles in degrees.
func WriteCSV(w io.Writer, readings []Reading) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"angle", "distance"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range readings {
		row := []string{
			strconv.FormatFloat(r.AngleDeg, 'f', -1, 64),
			strconv.FormatFloat(r.DistanceMM, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
