package plotting

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoSamples is returned when rendering an empty recorder.
var ErrNoSamples = errors.New("no samples recorded")

var (
	targetColors   = []color.Color{color.RGBA{R: 200, G: 60, B: 60, A: 255}, color.RGBA{R: 60, G: 160, B: 60, A: 255}, color.RGBA{R: 60, G: 90, B: 210, A: 255}}
	followerColors = []color.Color{color.RGBA{R: 240, G: 150, B: 150, A: 255}, color.RGBA{R: 150, G: 220, B: 150, A: 255}, color.RGBA{R: 150, G: 170, B: 250, A: 255}}
)

// WritePNG renders target and follower position against time for every
// moving axis. Target lines are solid, follower lines dashed.
func (r *ResponseRecorder) WritePNG(path string) error {
	samples := r.Samples()
	if len(samples) == 0 {
		return ErrNoSamples
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = r.title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Position"

	for _, a := range activeAxes(samples) {
		t, target, follower := series(samples, a)

		targetLine, err := plotter.NewLine(xys(t, target))
		if err != nil {
			return err
		}
		targetLine.Color = targetColors[a]
		targetLine.Width = vg.Points(1.5)
		p.Add(targetLine)
		p.Legend.Add(fmt.Sprintf("target %s", a), targetLine)

		followerLine, err := plotter.NewLine(xys(t, follower))
		if err != nil {
			return err
		}
		followerLine.Color = followerColors[a]
		followerLine.Width = vg.Points(1.5)
		followerLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(followerLine)
		p.Legend.Add(fmt.Sprintf("follower %s", a), followerLine)
	}
	p.Add(plotter.NewGrid())

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save response plot: %w", err)
	}
	return nil
}

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	return pts
}
