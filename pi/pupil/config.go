/*
DESCRIPTION
  config.go provides Config, the calibration parameters a caller needs to turn
  a histogram into pupil and glint thresholds and to pad a fitted ellipse.

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
	"strconv"

	"github.com/ausocean/utils/logging"
)

// Config defaults.
const (
	defaultMinSpikeCount = 40
	defaultPupilOffset   = 9
	defaultGlintOffset   = 5
)

// Config variable keys, as used by Update.
const (
	KeyMinSpikeCount = "MinSpikeCount"
	KeyMinSpikes     = "MinSpikes"
	KeyPupilOffset   = "PupilOffset"
	KeyGlintOffset   = "GlintOffset"
	KeyFallbackLow   = "FallbackLow"
	KeyFallbackHigh  = "FallbackHigh"
	KeyWidthPad      = "WidthPad"
	KeyHeightPad     = "HeightPad"
)

// Config holds the tunable parameters that sit around the fitter and the
// spike locator. The zero value is not valid; use NewConfig or Validate.
type Config struct {
	MinSpikeCount int // A histogram bin is a spike if its count exceeds this.
	MinSpikes     int // Fewer spikes than this selects the fallback pair.
	FallbackLow   int
	FallbackHigh  int
	PupilOffset   int // Added to the lowest spike to get the pupil threshold.
	GlintOffset   int // Subtracted from the highest spike to get the glint threshold.

	// Calibration offsets added to a fitted ellipse's width and height.
	WidthPad, HeightPad float64
}

// NewConfig returns a Config holding the defaults.
func NewConfig() Config {
	return Config{
		MinSpikeCount: defaultMinSpikeCount,
		MinSpikes:     DefaultMinSpikes,
		FallbackLow:   DefaultFallbackLow,
		FallbackHigh:  DefaultFallbackHigh,
		PupilOffset:   defaultPupilOffset,
		GlintOffset:   defaultGlintOffset,
	}
}

// Validate replaces invalid fields with their defaults, logging each one.
func (c *Config) Validate(l logging.Logger) {
	if c.MinSpikeCount < 0 {
		c.logInvalidField(l, KeyMinSpikeCount, defaultMinSpikeCount)
		c.MinSpikeCount = defaultMinSpikeCount
	}
	if c.MinSpikes < 1 {
		c.logInvalidField(l, KeyMinSpikes, DefaultMinSpikes)
		c.MinSpikes = DefaultMinSpikes
	}
	if !validLevel(c.FallbackLow) {
		c.logInvalidField(l, KeyFallbackLow, DefaultFallbackLow)
		c.FallbackLow = DefaultFallbackLow
	}
	if !validLevel(c.FallbackHigh) || c.FallbackHigh < c.FallbackLow {
		c.logInvalidField(l, KeyFallbackHigh, DefaultFallbackHigh)
		c.FallbackHigh = DefaultFallbackHigh
	}
	if c.PupilOffset < 0 || c.PupilOffset >= Levels {
		c.logInvalidField(l, KeyPupilOffset, defaultPupilOffset)
		c.PupilOffset = defaultPupilOffset
	}
	if c.GlintOffset < 0 || c.GlintOffset >= Levels {
		c.logInvalidField(l, KeyGlintOffset, defaultGlintOffset)
		c.GlintOffset = defaultGlintOffset
	}
	if !finite(c.WidthPad) {
		c.logInvalidField(l, KeyWidthPad, 0.0)
		c.WidthPad = 0
	}
	if !finite(c.HeightPad) {
		c.logInvalidField(l, KeyHeightPad, 0.0)
		c.HeightPad = 0
	}
}

// Update applies the given variables to c. Unknown keys are ignored. Values
// that do not parse are skipped; the returned error joins one error per bad
// key. Update does not validate; call Validate afterwards.
func (c *Config) Update(vars map[string]string, l logging.Logger) error {
	var errs []error
	for k, v := range vars {
		var perr error
		switch k {
		case KeyMinSpikeCount:
			c.MinSpikeCount, perr = atoi(v, c.MinSpikeCount)
		case KeyMinSpikes:
			c.MinSpikes, perr = atoi(v, c.MinSpikes)
		case KeyPupilOffset:
			c.PupilOffset, perr = atoi(v, c.PupilOffset)
		case KeyGlintOffset:
			c.GlintOffset, perr = atoi(v, c.GlintOffset)
		case KeyFallbackLow:
			c.FallbackLow, perr = atoi(v, c.FallbackLow)
		case KeyFallbackHigh:
			c.FallbackHigh, perr = atoi(v, c.FallbackHigh)
		case KeyWidthPad:
			c.WidthPad, perr = atof(v, c.WidthPad)
		case KeyHeightPad:
			c.HeightPad, perr = atof(v, c.HeightPad)
		default:
			l.Debug("ignoring unknown config variable", "key", k)
			continue
		}
		if perr != nil {
			l.Warning("invalid config variable", "key", k, "value", v, "error", perr)
			errs = append(errs, fmt.Errorf("could not parse %s: %w", k, perr))
		}
	}
	return errors.Join(errs...)
}

// Policy returns the spike policy described by c.
func (c Config) Policy() SpikePolicy {
	return SpikePolicy{MinSpikes: c.MinSpikes, Fallback: [2]int{c.FallbackLow, c.FallbackHigh}}
}

// Thresholds locates the spikes of h according to c and returns the spike
// indices along with the derived pupil and glint thresholds.
func (c Config) Thresholds(h *Histogram) (s SpikeIndices, pupil, glint int) {
	s = c.Policy().Locate(h, c.MinSpikeCount)
	pupil, glint = s.Thresholds(c.PupilOffset, c.GlintOffset)
	return s, pupil, glint
}

// Calibrate applies the configured padding to e. A non finite e is returned
// unchanged so that the caller's NaN check still holds.
func (c Config) Calibrate(e Ellipse) Ellipse {
	if !e.IsFinite() {
		return e
	}
	return e.Pad(c.WidthPad, c.HeightPad)
}

func (c *Config) logInvalidField(l logging.Logger, name string, def interface{}) {
	l.Info(name+" bad or unset, defaulting", name, def)
}

func validLevel(v int) bool { return v >= 0 && v < Levels }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func atoi(s string, old int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return old, err
	}
	return v, nil
}

func atof(s string, old float64) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return old, err
	}
	return v, nil
}
