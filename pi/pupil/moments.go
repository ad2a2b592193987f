/*
DESCRIPTION
  moments.go computes raw and central image moments of a binary mask and
  converts them into a fitted ellipse.

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

// Package pupil provides the numeric core of the pupil tracker: fitting an
// ellipse to a binary pupil mask using image moments, and locating the
// intensity spikes in an eye image histogram from which the pupil and glint
// thresholds are derived.
//
// Both routines are pure. An all zero mask yields an Ellipse whose fields are
// all NaN; callers must check Ellipse.IsFinite before using a fit.
package pupil

import "math"

// Moments holds the raw spatial moments of a mask up to second order. Every
// nonzero pixel has weight 1, x is the column and y the row.
type Moments struct {
	M00, M10, M01, M20, M02, M11 float64
}

// ComputeMoments calculates the raw moments of src in a single pass.
func ComputeMoments(src MaskSource) Moments {
	var m Moments
	rows, cols := src.Rows(), src.Cols()
	for r := 0; r < rows; r++ {
		y := float64(r)
		var n, sx, sxx float64
		for c := 0; c < cols; c++ {
			if src.At(r, c) == 0 {
				continue
			}
			x := float64(c)
			n++
			sx += x
			sxx += x * x
		}
		if n == 0 {
			continue
		}
		m.M00 += n
		m.M10 += sx
		m.M01 += n * y
		m.M20 += sxx
		m.M02 += n * y * y
		m.M11 += sx * y
	}
	return m
}

// Centroid returns the centre of mass. Both values are NaN when M00 is 0.
func (m Moments) Centroid() (x, y float64) {
	return m.M10 / m.M00, m.M01 / m.M00
}

// Central returns the second order central moments normalised by M00.
func (m Moments) Central() (mu20, mu02, mu11 float64) {
	cx, cy := m.Centroid()
	mu20 = m.M20/m.M00 - cx*cx
	mu02 = m.M02/m.M00 - cy*cy
	mu11 = m.M11/m.M00 - cx*cy
	return mu20, mu02, mu11
}

// Ellipse converts the moments into an ellipse. Width and height are
// sqrt(2(mu20+mu02 ± common)) which, for a uniformly filled ellipse, equal
// its semi-axis lengths. They are not padded; see Ellipse.Pad.
//
// When M00 is 0 every field of the result is NaN.
func (m Moments) Ellipse() Ellipse {
	if m.M00 == 0 {
		nan := math.NaN()
		return Ellipse{CenterX: nan, CenterY: nan, Width: nan, Height: nan, Angle: nan}
	}

	var e Ellipse
	e.CenterX, e.CenterY = m.Centroid()
	mu20, mu02, mu11 := m.Central()

	common := math.Sqrt((mu20-mu02)*(mu20-mu02) + 4*mu11*mu11)
	e.Width = math.Sqrt(nonNegative(2 * (mu20 + mu02 + common)))
	e.Height = math.Sqrt(nonNegative(2 * (mu20 + mu02 - common)))

	var num, den float64
	if mu02 > mu20 {
		num = mu02 - mu20 + common
		den = 2 * mu11
	} else {
		num = 2 * mu11
		den = mu20 - mu02 + common
	}

	// Orientation is undefined for a circularly symmetric mask.
	if num == 0 && den == 0 {
		e.Angle = 0
	} else {
		e.Angle = math.Atan2(num, den) * 180 / math.Pi
	}
	return e
}

// FitEllipse fits an ellipse to the nonzero pixels of src. src is only read.
// An all zero mask produces NaN in every field; FitEllipse never panics.
func FitEllipse(src MaskSource) Ellipse {
	return ComputeMoments(src).Ellipse()
}

// nonNegative clamps the small negative values float rounding produces for
// degenerate (single line) masks.
func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
