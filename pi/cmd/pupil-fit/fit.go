/*
DESCRIPTION
  fit.go provides the per image processing of pupil-fit.

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

package main

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/ausocean/eyetracker/pi/pupil"
	"github.com/ausocean/eyetracker/pi/track"
	"github.com/ausocean/utils/logging"
)

// report is the outcome of fitting one image.
type report struct {
	name      string
	binary    bool // Image was used as a mask directly.
	spikes    pupil.SpikeIndices
	threshold int
	ellipse   pupil.Ellipse
}

func (r report) String() string {
	if !r.ellipse.IsFinite() {
		return r.name + ": unable to locate pupil"
	}
	e := r.ellipse
	if r.binary {
		return fmt.Sprintf("%s: mask %v", r.name, e)
	}
	return fmt.Sprintf("%s: %v spikes=(%d, %d) threshold=%d", r.name, e, r.spikes.Lowest, r.spikes.Highest, r.threshold)
}

// fitter fits pupils to a sequence of image files.
type fitter struct {
	cfg       pupil.Config
	threshold int // Fixed pupil threshold, derived per image if negative.
	plotDir   string
	log       logging.Logger
}

// run fits every file in paths, writing one report line per file to w, and
// returns the number of files in which a pupil was found. A file that cannot
// be decoded is logged and reported as having no pupil.
func (f *fitter) run(paths []string, w io.Writer) (int, error) {
	res, err := track.NewResults(len(paths))
	if err != nil {
		return 0, fmt.Errorf("could not create results: %w", err)
	}

	for i, p := range paths {
		img, err := decode(p)
		if err != nil {
			f.log.Error("could not decode image", "path", p, "error", err)
			fmt.Fprintf(w, "%s: unable to locate pupil\n", filepath.Base(p))
			continue
		}

		r, h := f.fit(filepath.Base(p), img)
		res.Update(i, r.ellipse)
		fmt.Fprintln(w, r)

		if f.plotDir != "" && !r.binary {
			name := strings.TrimSuffix(r.name, filepath.Ext(r.name)) + " histogram"
			err = track.PlotHistogram(f.plotDir, name, h, r.spikes)
			if err != nil {
				f.log.Warning("could not plot histogram", "image", r.name, "error", err)
			}
		}
	}

	s, err := res.Summary()
	if errors.Is(err, track.ErrNoPupil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	f.log.Info("summary", "frames", s.Frames, "found", s.Found, "meanX", s.MeanX, "meanY", s.MeanY, "stdX", s.StdX, "stdY", s.StdY)

	if f.plotDir != "" && s.Found > 1 {
		err = track.PlotTrajectory(f.plotDir, "trajectory", res)
		if err != nil {
			f.log.Warning("could not plot trajectory", "error", err)
		}
	}
	return s.Found, nil
}

// fit builds the pupil mask of img and fits an ellipse to it. The histogram
// of the grayscale image is returned for plotting.
func (f *fitter) fit(name string, img image.Image) (report, *pupil.Histogram) {
	r := report{name: name}
	gray := grayMask(img)
	h := pupil.HistogramOf(gray)

	var mask *pupil.Mask
	if isBinary(h) {
		r.binary = true
		mask = gray
		f.log.Debug("using image as mask", "image", name)
	} else {
		var glint int
		r.spikes, r.threshold, glint = f.cfg.Thresholds(h)
		if r.spikes.Fallback {
			f.log.Debug("too few histogram spikes, using fallback", "image", name, "found", r.spikes.Found)
		}
		if f.threshold >= 0 {
			r.threshold = f.threshold
		}
		f.log.Debug("thresholds", "image", name, "pupil", r.threshold, "glint", glint, "lowest", r.spikes.Lowest, "highest", r.spikes.Highest)
		mask = pupil.MaskFromImage(img, r.threshold)
	}

	e := pupil.FitEllipse(mask)
	if !e.IsFinite() {
		f.log.Info("unable to locate pupil", "image", name)
		r.ellipse = e
		return r, h
	}
	r.ellipse = f.cfg.Calibrate(e)
	f.log.Debug("fitted pupil", "image", name, "ellipse", r.ellipse.String())
	return r, h
}

// decode reads and decodes the image file at path.
func decode(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", path, err)
	}
	return img, nil
}

// grayMask returns the grayscale intensities of img as a Mask.
func grayMask(img image.Image) *pupil.Mask {
	if g, ok := img.(*image.Gray); ok {
		return pupil.MaskFromGray(g)
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			g.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return pupil.MaskFromGray(g)
}

// isBinary reports whether every pixel counted in h is 0 or 255.
func isBinary(h *pupil.Histogram) bool {
	return h[0]+h[pupil.Levels-1] == h.Total()
}
