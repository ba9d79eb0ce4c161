package api

import (
	"fmt"
	"image/color"
	"net/http"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/polarscan/internal/scan"
	"github.com/banshee-data/polarscan/internal/units"
)

// handleSnapshotPNG renders the latest frame to a PNG scatter, polar points
// projected onto XY, one glyph per reading in its classifier color.
func (s *Server) handleSnapshotPNG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	frame, ok := s.runner.Latest()
	if !ok {
		s.writeJSONError(w, http.StatusServiceUnavailable, "no scan frame published yet")
		return
	}

	p, err := buildSnapshotPlot(frame, s.view.Range())
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to build plot: %v", err))
		return
	}

	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render plot: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := wt.WriteTo(w); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to write PNG: %v", err))
	}
}

func buildSnapshotPlot(frame scan.Frame, rangeMM float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "360° Rangefinder Scan"
	p.X.Label.Text = "X (mm)"
	p.Y.Label.Text = "Y (mm)"
	p.X.Min, p.X.Max = -rangeMM, rangeMM
	p.Y.Min, p.Y.Max = -rangeMM, rangeMM
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(frame.Angles))
	colors := make([]color.RGBA, len(frame.Angles))
	for i := range frame.Angles {
		x, y := units.PolarToXY(frame.Angles[i], frame.Distances[i])
		pts[i].X = x
		pts[i].Y = y
		colors[i] = parseHexColor(frame.Colors[i])
	}

	if len(pts) >= 2 {
		ln, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		ln.LineStyle.Width = vg.Points(0.5)
		ln.LineStyle.Color = color.RGBA{R: 0x66, G: 0x77, B: 0x88, A: 0xFF}
		p.Add(ln)
	}

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  colors[i],
			Radius: vg.Points(3),
			Shape:  draw.CircleGlyph{},
		}
	}
	p.Add(sc)
	return p, nil
}

// parseHexColor reads a #RRGGBB string. Anything malformed comes back gray,
// matching the unknown band.
func parseHexColor(s string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02X%02X%02X", &r, &g, &b); err != nil {
		return color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}
