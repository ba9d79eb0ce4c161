package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/polarscan/internal/scan"
	"github.com/banshee-data/polarscan/internal/units"
	"github.com/banshee-data/polarscan/internal/view"
)

// gradientColors is the colormap handed to ECharts in gradient mode, low
// distance to high.
var gradientColors = []string{"#0000FF", "#00FF00", "#FFFF00", "#FF0000"}

// handleChart renders the current scan as an ECharts scatter page, polar
// points projected onto XY with 0° at the top, clockwise. Axis bounds come
// from the view state so the zoom endpoints change what this page draws.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	frame, ok := s.runner.Latest()
	if !ok {
		frame = scan.Frame{}
	}

	scatter := buildScatter(frame, s.view, s.runner.Mode())

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func buildScatter(frame scan.Frame, vs *view.State, mode scan.ColorMode) *charts.Scatter {
	rangeMM := vs.Range()

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "360° Rangefinder Scan",
			Width:     "900px",
			Height:    "900px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "360° Rangefinder Scan",
			Subtitle: fmt.Sprintf("points=%d range=%.0fmm smoothed=%v", len(frame.Angles), rangeMM, frame.Smoothed),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -rangeMM, Max: rangeMM, Name: "X (mm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -rangeMM, Max: rangeMM, Name: "Y (mm)", NameLocation: "middle", NameGap: 30}),
	)

	if mode == scan.ColorGradient {
		addGradientSeries(scatter, frame)
	} else {
		addBandSeries(scatter, frame)
	}
	addOutline(scatter, frame)
	return scatter
}

// addOutline overlaps a thin line connecting the scan points in angle order,
// drawn under the color-coded scatter.
func addOutline(scatter *charts.Scatter, frame scan.Frame) {
	if len(frame.Angles) < 2 {
		return
	}
	data := make([]opts.LineData, 0, len(frame.Angles))
	for i := range frame.Angles {
		d := frame.Distances[i]
		x, y := units.PolarToXY(frame.Angles[i], d)
		data = append(data, opts.LineData{Value: []interface{}{x, y, d}})
	}

	line := charts.NewLine()
	line.AddSeries("outline", data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: 1, Opacity: opts.Float(0.5)}),
	)
	scatter.Overlap(line)
}

// addGradientSeries adds one series with a distance-keyed visual map, scaled
// to the frame's own min/max so the coloring matches the classifier's
// frame-relative gradient.
func addGradientSeries(scatter *charts.Scatter, frame scan.Frame) {
	data := make([]opts.ScatterData, 0, len(frame.Angles))
	minD, maxD := 0.0, 1.0
	for i := range frame.Angles {
		d := frame.Distances[i]
		if i == 0 || d < minD {
			minD = d
		}
		if i == 0 || d > maxD {
			maxD = d
		}
		x, y := units.PolarToXY(frame.Angles[i], d)
		data = append(data, opts.ScatterData{Value: []interface{}{x, y, d}})
	}

	scatter.SetGlobalOptions(charts.WithVisualMapOpts(opts.VisualMap{
		Show:       opts.Bool(true),
		Calculable: opts.Bool(true),
		Min:        float32(minD),
		Max:        float32(maxD),
		Dimension:  "2",
		InRange:    &opts.VisualMapInRange{Color: gradientColors},
	}))
	scatter.AddSeries("scan", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
}

// addBandSeries adds one series per proximity band so the legend doubles as
// the color key.
func addBandSeries(scatter *charts.Scatter, frame scan.Frame) {
	series := map[string][]opts.ScatterData{}
	for i := range frame.Angles {
		x, y := units.PolarToXY(frame.Angles[i], frame.Distances[i])
		band := frame.Bands[i]
		series[band] = append(series[band], opts.ScatterData{Value: []interface{}{x, y}})
	}

	for _, band := range []scan.Band{scan.BandVeryNear, scan.BandNear, scan.BandFar, scan.BandUnknown} {
		data, ok := series[band.String()]
		if !ok {
			continue
		}
		scatter.AddSeries(band.String(), data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: band.Hex()}),
		)
	}
}
