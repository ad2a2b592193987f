//go:build withcv
// +build withcv

/*
DESCRIPTION
  pupilcv.go adapts gocv matrices to the pupil package so masks and
  histograms produced by OpenCV can be fitted without copying.

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

// Package pupilcv provides gocv adapters for the pupil package.
package pupilcv

import (
	"errors"
	"fmt"

	"github.com/ausocean/utils/logging"
	"gocv.io/x/gocv"

	"github.com/ausocean/eyetracker/pi/pupil"
)

var (
	errEmpty   = errors.New("mat is empty")
	errBadType = errors.New("mat is not single channel 8-bit")
)

// MatSource exposes a single channel 8-bit gocv.Mat as a pupil.MaskSource.
// The Mat is read, never modified, and must outlive the MatSource.
type MatSource struct {
	m gocv.Mat
}

// NewMatSource returns a MatSource for m after checking its type.
func NewMatSource(m gocv.Mat) (*MatSource, error) {
	if m.Empty() {
		return nil, errEmpty
	}
	if m.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("%w: type %v", errBadType, m.Type())
	}
	return &MatSource{m: m}, nil
}

// Rows implements pupil.MaskSource.
func (s *MatSource) Rows() int { return s.m.Rows() }

// Cols implements pupil.MaskSource.
func (s *MatSource) Cols() int { return s.m.Cols() }

// At implements pupil.MaskSource.
func (s *MatSource) At(row, col int) uint8 { return s.m.GetUCharAt(row, col) }

// FitMat fits an ellipse to the nonzero pixels of mask. As with
// pupil.FitEllipse an empty (all zero) mask gives a NaN ellipse; an error is
// only returned when mask cannot be read as a mask.
func FitMat(mask gocv.Mat) (pupil.Ellipse, error) {
	src, err := NewMatSource(mask)
	if err != nil {
		return pupil.Ellipse{}, fmt.Errorf("could not use mask: %w", err)
	}
	return pupil.FitEllipse(src), nil
}

// Histogram computes the 256 bin intensity histogram of a grayscale image.
func Histogram(gray gocv.Mat) (*pupil.Histogram, error) {
	if gray.Empty() {
		return nil, errEmpty
	}
	if gray.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("%w: type %v", errBadType, gray.Type())
	}

	hist := gocv.NewMat()
	defer hist.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	err := gocv.CalcHist([]gocv.Mat{gray}, []int{0}, mask, &hist, []int{pupil.Levels}, []float64{0, pupil.Levels}, false)
	if err != nil {
		return nil, fmt.Errorf("could not calculate histogram: %w", err)
	}

	counts := make([]float64, pupil.Levels)
	for i := range counts {
		counts[i] = float64(hist.GetFloatAt(i, 0))
	}
	return pupil.HistogramFromCounts(counts)
}

// Thresholds computes the histogram of gray and derives the pupil and glint
// thresholds configured by c.
func Thresholds(gray gocv.Mat, c pupil.Config, l logging.Logger) (s pupil.SpikeIndices, pupilThresh, glintThresh int, err error) {
	h, err := Histogram(gray)
	if err != nil {
		return s, 0, 0, err
	}
	s, pupilThresh, glintThresh = c.Thresholds(h)
	if s.Fallback {
		l.Debug("too few histogram spikes, using fallback", "found", s.Found, "lowest", s.Lowest, "highest", s.Highest)
	}
	l.Debug("histogram thresholds", "pupil", pupilThresh, "glint", glintThresh, "maxCount", s.MaxCount)
	return s, pupilThresh, glintThresh, nil
}
