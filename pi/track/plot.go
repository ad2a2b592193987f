/*
DESCRIPTION
  plot.go provides plotting of pupil tracks and intensity histograms.

AUTHORS
  AusOcean eye tracker contributors

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean)

  It is free software: you can redistribute it and/or modify them
  under the terms of the GNU General Public License as published by the
  Free Software Foundation, either version 3 of the License, or (at your
  option) any later version.

  It is distributed in the hope that it will be useful, but WITHOUT
  ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
  FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License
  for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt.  If not, see http://www.gnu.org/licenses.
*/

package track

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ausocean/eyetracker/pi/pupil"
)

// PlotTrajectory plots the pupil centre of every found frame and saves it as
// dir/name.png. Image coordinates are used, so y grows downwards.
func PlotTrajectory(dir, name string, r *Results) error {
	var xy plotter.XYs
	for i, ok := range r.Found {
		if ok {
			xy = append(xy, plotter.XY{X: r.CenterX[i], Y: -r.CenterY[i]})
		}
	}
	if len(xy) == 0 {
		return ErrNoPupil
	}

	err := plotToFile(
		dir,
		name,
		"x (px)",
		"-y (px)",
		func(p *plot.Plot) error {
			return plotutil.AddLinePoints(p, "Pupil Center", xy)
		},
	)
	if err != nil {
		return fmt.Errorf("could not plot trajectory: %w", err)
	}
	return nil
}

// PlotHistogram plots the intensity histogram h as a bar chart with the spike
// indices of s marked, and saves it as dir/name.png.
func PlotHistogram(dir, name string, h *pupil.Histogram, s pupil.SpikeIndices) error {
	if h == nil {
		return errors.New("nil histogram")
	}
	vals := make(plotter.Values, pupil.Levels)
	var top float64
	for i, c := range h {
		vals[i] = float64(c)
		if vals[i] > top {
			top = vals[i]
		}
	}

	err := plotToFile(
		dir,
		name,
		"Intensity",
		"Pixels",
		func(p *plot.Plot) error {
			bars, err := plotter.NewBarChart(vals, vg.Points(1))
			if err != nil {
				return fmt.Errorf("could not create bar chart: %w", err)
			}
			bars.LineStyle.Width = 0
			p.Add(bars)

			for _, m := range []struct {
				label string
				x     int
				c     color.Color
			}{
				{"Lowest Spike", s.Lowest, plotutil.Color(0)},
				{"Highest Spike", s.Highest, plotutil.Color(1)},
			} {
				l, err := plotter.NewLine(plotter.XYs{{X: float64(m.x), Y: 0}, {X: float64(m.x), Y: top}})
				if err != nil {
					return fmt.Errorf("could not create spike line: %w", err)
				}
				l.Color = m.c
				p.Add(l)
				p.Legend.Add(m.label, l)
			}
			return nil
		},
	)
	if err != nil {
		return fmt.Errorf("could not plot histogram: %w", err)
	}
	return nil
}

// plotToFile creates a plot with a specified name and x&y titles using the
// provided draw function, and then saves to a PNG file with filename of name.
func plotToFile(dir, name, xTitle, yTitle string, draw func(*plot.Plot) error) error {
	p := plot.New()
	p.Title.Text = name
	p.X.Label.Text = xTitle
	p.Y.Label.Text = yTitle
	err := draw(p)
	if err != nil {
		return fmt.Errorf("could not draw plot contents: %w", err)
	}
	if err := p.Save(15*vg.Centimeter, 15*vg.Centimeter, filepath.Join(dir, name+".png")); err != nil {
		return fmt.Errorf("could not save plot: %w", err)
	}
	return nil
}
