package report

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/jakechorley/shift-optimiser/pkg/core/optimiser"
)

const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 5 * vg.Inch
)

// EvolutionPlot builds a chart of best and mean fitness per generation
func EvolutionPlot(stats []optimiser.GenerationStats, title string) (*plot.Plot, error) {
	if len(stats) == 0 {
		return nil, fmt.Errorf("no generation statistics to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness"
	p.Add(plotter.NewGrid())

	bestPts := make(plotter.XYs, len(stats))
	meanPts := make(plotter.XYs, len(stats))
	for i, s := range stats {
		bestPts[i].X = float64(s.Generation)
		bestPts[i].Y = s.Max
		meanPts[i].X = float64(s.Generation)
		meanPts[i].Y = s.Mean
	}

	bestLine, err := plotter.NewLine(bestPts)
	if err != nil {
		return nil, fmt.Errorf("failed to build best fitness line: %w", err)
	}
	bestLine.Color = plotutil.Color(0)

	meanLine, err := plotter.NewLine(meanPts)
	if err != nil {
		return nil, fmt.Errorf("failed to build mean fitness line: %w", err)
	}
	meanLine.Color = plotutil.Color(1)
	meanLine.Dashes = plotutil.Dashes(1)

	p.Add(bestLine, meanLine)
	p.Legend.Add("best", bestLine)
	p.Legend.Add("mean", meanLine)
	p.Legend.Top = true
	p.Legend.Left = true

	return p, nil
}

// PlotEvolution saves the evolution chart to path. The image format follows the
// file extension (.png, .svg, .pdf, ...).
func PlotEvolution(stats []optimiser.GenerationStats, title, path string) error {
	p, err := EvolutionPlot(stats, title)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create chart directory: %w", err)
		}
	}

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}

	return nil
}
