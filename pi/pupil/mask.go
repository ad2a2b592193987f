/*
DESCRIPTION
  mask.go provides the MaskSource interface through which the ellipse fitter
  reads a 2D buffer, and Mask, a row-major buffer implementation of it.

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
	"image"
	"image/color"
	"math"
)

// MaskSource is a 2D buffer of 8-bit pixel values. Implementations exist for
// plain Go buffers and for gocv matrices (see package pupilcv), so the same
// fitter serves masks from any backend.
type MaskSource interface {
	Rows() int
	Cols() int
	At(row, col int) uint8
}

// Mask is a row-major 8-bit buffer.
type Mask struct {
	Width, Height int
	Pix           []uint8
}

// NewMask returns an all zero mask of the given size.
func NewMask(w, h int) *Mask {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Mask{Width: w, Height: h, Pix: make([]uint8, w*h)}
}

// MaskFromGray copies a grayscale image into a new Mask.
func MaskFromGray(g *image.Gray) *Mask {
	b := g.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		copy(m.Pix[y*m.Width:(y+1)*m.Width], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return m
}

// MaskFromImage converts img to grayscale and returns a Mask holding 255 for
// every pixel whose intensity is at most threshold and 0 otherwise, i.e. the
// dark regions of the image are selected.
func MaskFromImage(img image.Image, threshold int) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			v := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
			if int(v) <= threshold {
				m.Pix[y*m.Width+x] = 255
			}
		}
	}
	return m
}

// Rows implements MaskSource.
func (m *Mask) Rows() int { return m.Height }

// Cols implements MaskSource.
func (m *Mask) Cols() int { return m.Width }

// At implements MaskSource.
func (m *Mask) At(row, col int) uint8 { return m.Pix[row*m.Width+col] }

// Set sets the pixel at (x, y). Out of range coordinates are ignored.
func (m *Mask) Set(x, y int, v uint8) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// FillEllipse sets to 255 every pixel whose centre lies inside the ellipse
// centred on (cx, cy) with semi-axes a (along angle) and b, angle given in
// degrees clockwise from the x axis in image coordinates.
func (m *Mask) FillEllipse(cx, cy, a, b, angle float64) {
	if a <= 0 || b <= 0 {
		return
	}
	sin, cos := math.Sincos(angle * math.Pi / 180)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			u := dx*cos + dy*sin
			v := -dx*sin + dy*cos
			if (u*u)/(a*a)+(v*v)/(b*b) <= 1 {
				m.Pix[y*m.Width+x] = 255
			}
		}
	}
}
