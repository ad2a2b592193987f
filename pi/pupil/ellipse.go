/*
DESCRIPTION
  ellipse.go provides the Ellipse type produced by the moment fitter along with
  geometric helpers used when reporting a pupil.

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

package pupil

import (
	"fmt"
	"math"
)

// Ellipse is a fitted pupil ellipse. Width and Height are the spread along the
// major and minor principal axes and Angle is the rotation of the major axis
// from the horizontal in degrees. Angle comes straight from atan2 and lies in
// [-90, 180); it is only meaningful modulo 180. When the major axis is closer
// to vertical and tilted back it exceeds 90, so a -45 degree ellipse reports
// about 135.
type Ellipse struct {
	CenterX, CenterY float64
	Width, Height    float64
	Angle            float64
}

// IsFinite reports whether every field of e is a finite number. A fit of an
// empty mask is not finite, which is how callers tell that no pupil was found.
func (e Ellipse) IsFinite() bool {
	for _, v := range [...]float64{e.CenterX, e.CenterY, e.Width, e.Height, e.Angle} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Pad returns a copy of e with dw and dh added to the width and height. The
// moment fit under-estimates the visible pupil boundary on edge masks; the
// offsets are a calibration constant of the caller.
func (e Ellipse) Pad(dw, dh float64) Ellipse {
	e.Width += dw
	e.Height += dh
	return e
}

// Area returns the area of the ellipse treating Width and Height as semi-axes.
func (e Ellipse) Area() float64 {
	return math.Pi * e.Width * e.Height
}

// Circumference returns Ramanujan's second approximation of the perimeter,
// treating Width and Height as semi-axes.
func (e Ellipse) Circumference() float64 {
	a, b := e.Width, e.Height
	if a+b == 0 {
		return 0
	}
	h := (a - b) * (a - b) / ((a + b) * (a + b))
	return math.Pi * (a + b) * (1 + 3*h/(10+math.Sqrt(4-3*h)))
}

// MajorAxis returns the major axis as a vector of length Width.
func (e Ellipse) MajorAxis() (x, y float64) {
	sin, cos := math.Sincos(e.Angle * math.Pi / 180)
	return e.Width * cos, e.Width * sin
}

// MinorAxis returns the minor axis as a vector of length Height.
func (e Ellipse) MinorAxis() (x, y float64) {
	sin, cos := math.Sincos(e.Angle * math.Pi / 180)
	return -e.Height * sin, e.Height * cos
}

// Ratio returns Height/Width, 1 for a circle and towards 0 for a flat ellipse.
func (e Ellipse) Ratio() float64 {
	return e.Height / e.Width
}

func (e Ellipse) String() string {
	return fmt.Sprintf("center=(%.2f, %.2f) size=(%.2f, %.2f) angle=%.2f", e.CenterX, e.CenterY, e.Width, e.Height, e.Angle)
}
