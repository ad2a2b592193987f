/*
DESCRIPTION
  results.go provides Results, a per frame record of pupil fits, and summary
  statistics over the frames in which a pupil was found.

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

// Package track records pupil fits across a sequence of frames, summarises
// them and plots them.
package track

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/ausocean/eyetracker/pi/pupil"
)

// ErrNoPupil is returned by Summary when no frame held a pupil.
var ErrNoPupil = errors.New("no pupil found in any frame")

// Results holds the fitted ellipse of each frame.
type Results struct {
	CenterX []float64
	CenterY []float64
	Width   []float64
	Height  []float64
	Angle   []float64
	Found   []bool
}

// NewResults returns a new Results for n frames.
func NewResults(n int) (*Results, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid result size: %v", n)
	}

	r := new(Results)
	r.CenterX = make([]float64, n)
	r.CenterY = make([]float64, n)
	r.Width = make([]float64, n)
	r.Height = make([]float64, n)
	r.Angle = make([]float64, n)
	r.Found = make([]bool, n)

	return r, nil
}

// Len returns the number of frames.
func (r *Results) Len() int { return len(r.Found) }

// Update records e as the fit of frame index. A non finite e marks the frame
// as having no pupil.
func (r *Results) Update(index int, e pupil.Ellipse) {
	r.CenterX[index] = e.CenterX
	r.CenterY[index] = e.CenterY
	r.Width[index] = e.Width
	r.Height[index] = e.Height
	r.Angle[index] = e.Angle
	r.Found[index] = e.IsFinite()
}

// Ellipse returns the fit recorded for frame index.
func (r *Results) Ellipse(index int) pupil.Ellipse {
	return pupil.Ellipse{
		CenterX: r.CenterX[index],
		CenterY: r.CenterY[index],
		Width:   r.Width[index],
		Height:  r.Height[index],
		Angle:   r.Angle[index],
	}
}

// Stats summarises the frames in which a pupil was found.
type Stats struct {
	Frames, Found int
	MeanX, MeanY  float64
	StdX, StdY    float64
	MeanWidth     float64
	MeanHeight    float64
}

// Summary returns statistics over the found frames. Standard deviations are
// 0 when a single frame was found.
func (r *Results) Summary() (Stats, error) {
	s := Stats{Frames: r.Len()}
	x := r.found(r.CenterX)
	s.Found = len(x)
	if s.Found == 0 {
		return s, ErrNoPupil
	}
	y := r.found(r.CenterY)

	s.MeanX, s.StdX = stat.MeanStdDev(x, nil)
	s.MeanY, s.StdY = stat.MeanStdDev(y, nil)
	if s.Found == 1 {
		s.StdX, s.StdY = 0, 0
	}
	s.MeanWidth = stat.Mean(r.found(r.Width), nil)
	s.MeanHeight = stat.Mean(r.found(r.Height), nil)
	return s, nil
}

// found returns the values of v for the frames holding a pupil.
func (r *Results) found(v []float64) []float64 {
	var out []float64
	for i, ok := range r.Found {
		if ok {
			out = append(out, v[i])
		}
	}
	return out
}
