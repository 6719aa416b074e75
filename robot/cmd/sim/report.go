package main

import (
	"image/color"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"go.viam.com/diffdrive/motionplan/trajectory"
	"go.viam.com/diffdrive/spatialmath"
)

// pathRecorder collects the true and estimated poses of a run.
type pathRecorder struct {
	actual   plotter.XYs
	estimate plotter.XYs
	drift    stats.Float64Data
}

func (r *pathRecorder) record(actual, estimate spatialmath.Pose2d) {
	r.actual = append(r.actual, plotter.XY{X: actual.X(), Y: actual.Y()})
	r.estimate = append(r.estimate, plotter.XY{X: estimate.X(), Y: estimate.Y()})
	r.drift = append(r.drift, actual.Distance(estimate))
}

// len returns the number of recorded ticks.
func (r *pathRecorder) len() int {
	return len(r.drift)
}

// driftSummary returns the mean, 95th percentile and largest distance between the estimate
// and the true pose.
func (r *pathRecorder) driftSummary() (mean, p95, maxDrift float64, err error) {
	if mean, err = stats.Mean(r.drift); err != nil {
		return 0, 0, 0, err
	}
	if p95, err = stats.Percentile(r.drift, 95); err != nil {
		return 0, 0, 0, err
	}
	if maxDrift, err = stats.Max(r.drift); err != nil {
		return 0, 0, 0, err
	}
	return mean, p95, maxDrift, nil
}

// savePlot draws the driven and estimated paths, plus planned when it is not nil, to a PNG
// at path.
func (r *pathRecorder) savePlot(path string, planned *trajectory.Trajectory) error {
	p := plot.New()
	p.Title.Text = "drivetrain path"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Add(plotter.NewGrid())

	if planned != nil {
		states := planned.States()
		xys := make(plotter.XYs, 0, len(states))
		for _, s := range states {
			xys = append(xys, plotter.XY{X: s.Pose.X(), Y: s.Pose.Y()})
		}
		if err := r.addLine(p, "planned", xys, color.RGBA{B: 200, A: 255}); err != nil {
			return err
		}
	}
	if err := r.addLine(p, "actual", r.actual, color.RGBA{R: 200, A: 255}); err != nil {
		return err
	}
	if err := r.addLine(p, "estimate", r.estimate, color.RGBA{G: 160, A: 255}); err != nil {
		return err
	}
	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "failed to save plot to %q", path)
	}
	return nil
}

func (r *pathRecorder) addLine(p *plot.Plot, name string, xys plotter.XYs, c color.Color) error {
	line, err := plotter.NewLine(xys)
	if err != nil {
		return errors.Wrapf(err, "failed to plot %s path", name)
	}
	line.Color = c
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}
