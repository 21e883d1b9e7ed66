package plotting

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteHTML renders an interactive page with a position-over-time line
// chart and the top-down XY path of target and follower.
func (r *ResponseRecorder) WriteHTML(w io.Writer) error {
	samples := r.Samples()
	if len(samples) == 0 {
		return ErrNoSamples
	}
	summary := r.Summary()

	times := make([]string, len(samples))
	for i, s := range samples {
		times[i] = fmt.Sprintf("%.3f", s.Time)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: r.title, Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: r.title, Subtitle: fmt.Sprintf("samples=%d", summary.Samples)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Position"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	line.SetXAxis(times)
	for _, a := range activeAxes(samples) {
		_, target, follower := series(samples, a)
		line.AddSeries(fmt.Sprintf("target %s", a), lineData(target))
		line.AddSeries(fmt.Sprintf("follower %s", a), lineData(follower),
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	path := charts.NewScatter()
	path.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "700px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: "XY path", Subtitle: fmt.Sprintf(
			"max |err| x=%.3f y=%.3f", summary.Axes[0].MaxAbsError, summary.Axes[1].MaxAbsError)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Y", NameLocation: "middle", NameGap: 30}),
	)
	targetPts := make([]opts.ScatterData, len(samples))
	followerPts := make([]opts.ScatterData, len(samples))
	for i, s := range samples {
		targetPts[i] = opts.ScatterData{Value: []interface{}{s.Target.X, s.Target.Y}}
		followerPts[i] = opts.ScatterData{Value: []interface{}{s.Follower.X, s.Follower.Y}}
	}
	path.AddSeries("target", targetPts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	path.AddSeries("follower", followerPts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	page := components.NewPage()
	page.AddCharts(line, path)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	return nil
}

func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
	}
	return data
}
