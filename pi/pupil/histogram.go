/*
DESCRIPTION
  histogram.go provides the intensity Histogram of an eye image and the spike
  locator used to derive the pupil and glint intensity thresholds.

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
	"errors"
	"fmt"
	"math"
)

// Levels is the number of intensity levels of an 8-bit image.
const Levels = 256

// Default spike policy. A histogram with no spikes falls back to the full
// intensity range.
const (
	DefaultMinSpikes    = 1
	DefaultFallbackLow  = 0
	DefaultFallbackHigh = Levels - 1
)

var errHistogramLength = errors.New("histogram must have 256 bins")

// Histogram holds pixel counts indexed by intensity.
type Histogram [Levels]uint64

// HistogramOf counts the pixel intensities of src.
func HistogramOf(src MaskSource) *Histogram {
	var h Histogram
	rows, cols := src.Rows(), src.Cols()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			h[src.At(r, c)]++
		}
	}
	return &h
}

// HistogramFromCounts converts counts computed elsewhere, for example by
// OpenCV's calcHist which produces float bins, into a Histogram.
func HistogramFromCounts(counts []float64) (*Histogram, error) {
	if len(counts) != Levels {
		return nil, fmt.Errorf("%w: got %d", errHistogramLength, len(counts))
	}
	var h Histogram
	for i, c := range counts {
		// float64(math.MaxUint64) rounds up to 2^64, which does not fit.
		if c < 0 || math.IsNaN(c) || c >= math.MaxUint64 {
			return nil, fmt.Errorf("invalid count at bin %d: %v", i, c)
		}
		h[i] = uint64(c)
	}
	return &h, nil
}

// Total returns the number of pixels counted.
func (h *Histogram) Total() uint64 {
	var n uint64
	for _, c := range h {
		n += c
	}
	return n
}

// SpikeIndices is the result of a spike search. Lowest and Highest are the
// intensities used by callers to threshold the pupil and glint masks.
type SpikeIndices struct {
	Lowest, Highest int
	MaxCount        uint64 // Largest count among the spikes, 0 on fallback.
	Found           int    // Number of spike bins found.
	Fallback        bool   // True if Lowest and Highest are the policy fallback.
}

// Thresholds returns the pupil threshold Lowest+pupilOffset and the glint
// threshold Highest-glintOffset, each clamped to the intensity range.
func (s SpikeIndices) Thresholds(pupilOffset, glintOffset int) (pupil, glint int) {
	return clampLevel(s.Lowest + pupilOffset), clampLevel(s.Highest - glintOffset)
}

// SpikePolicy decides what a spike search returns when the histogram holds
// fewer than MinSpikes spikes.
type SpikePolicy struct {
	MinSpikes int
	Fallback  [2]int // Lowest, highest.
}

// DefaultSpikePolicy returns the policy used by LocateSpikes.
func DefaultSpikePolicy() SpikePolicy {
	return SpikePolicy{
		MinSpikes: DefaultMinSpikes,
		Fallback:  [2]int{DefaultFallbackLow, DefaultFallbackHigh},
	}
}

// LocateSpikes finds the lowest and highest intensities whose count strictly
// exceeds minSpikeCount, using the default policy.
func LocateSpikes(h *Histogram, minSpikeCount int) SpikeIndices {
	return DefaultSpikePolicy().Locate(h, minSpikeCount)
}

// Locate scans all bins of h. A bin is a spike if its count is strictly
// greater than minSpikeCount. If fewer than p.MinSpikes spikes are found the
// fallback pair is returned; Locate never fails.
func (p SpikePolicy) Locate(h *Histogram, minSpikeCount int) SpikeIndices {
	s := SpikeIndices{Lowest: Levels - 1, Highest: 0}
	for i, c := range h {
		if minSpikeCount >= 0 && c <= uint64(minSpikeCount) {
			continue
		}
		s.Found++
		if c > s.MaxCount {
			s.MaxCount = c
		}
		if i < s.Lowest {
			s.Lowest = i
		}
		if i > s.Highest {
			s.Highest = i
		}
	}

	need := p.MinSpikes
	if need < 1 {
		need = 1
	}
	if s.Found < need {
		return SpikeIndices{
			Lowest:   p.Fallback[0],
			Highest:  p.Fallback[1],
			Found:    s.Found,
			Fallback: true,
		}
	}
	return s
}

func clampLevel(v int) int {
	switch {
	case v < 0:
		return 0
	case v > Levels-1:
		return Levels - 1
	}
	return v
}
