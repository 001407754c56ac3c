// Package report renders optimizer progress as charts.
package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/guttosm/flippulse/internal/optimizer"
)

// ErrNoHistory is returned when there is nothing to draw.
var ErrNoHistory = errors.New("no improvements to plot")

var supportedFormats = map[string]struct{}{
	".png": {}, ".svg": {}, ".pdf": {}, ".jpg": {}, ".jpeg": {},
}

// FitnessSeries turns accepted improvements into plot points
// (iteration, fitness).
func FitnessSeries(history []optimizer.Improvement) plotter.XYs {
	pts := make(plotter.XYs, len(history))
	for i, h := range history {
		pts[i].X = float64(h.Iteration)
		pts[i].Y = h.Fitness
	}
	return pts
}

// SaveFitnessPlot draws the fitness of every accepted improvement against
// its iteration and writes it to path. The image format follows the file
// extension (png, svg, pdf, jpg).
func SaveFitnessPlot(history []optimizer.Improvement, path string) error {
	if len(history) == 0 {
		return ErrNoHistory
	}
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := supportedFormats[ext]; !ok {
		return fmt.Errorf("unsupported plot format %q", ext)
	}

	p := plot.New()
	p.Title.Text = "Recommendation weight search"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "simulated profit"
	p.Add(plotter.NewGrid())

	pts := FitnessSeries(history)
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("building fitness line: %w", err)
	}
	p.Add(line, points)

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("saving fitness plot: %w", err)
	}
	return nil
}
