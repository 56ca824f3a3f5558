package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// PlotMeanQual writes a line plot of mean quality by read position for one
// or more stages to an image file (format chosen by extension).
func PlotMeanQual(out string, summaries []*Summary) error {
	p := plot.New()
	p.Title.Text = "Mean base quality by position"
	p.X.Label.Text = "read position"
	p.Y.Label.Text = "mean quality"

	for i, s := range summaries {
		means := s.Qual.MeanByPosition()
		xys := make(plotter.XYs, len(means))
		for pos, m := range means {
			xys[pos].X = float64(pos + 1)
			xys[pos].Y = m
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("plotting %s: %w", s.Prefix, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(s.Prefix, line)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, out); err != nil {
		return fmt.Errorf("saving plot %s: %w", out, err)
	}
	return nil
}
