/*
DESCRIPTION
  moments_test.go provides testing for the moment based ellipse fitter.

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
	"sync"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// angleDiff returns the difference between two orientations in degrees,
// modulo 180.
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 180)
	if d < 0 {
		d += 180
	}
	return math.Min(d, 180-d)
}

func within(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

// TestComputeMoments checks raw moments on a hand computed mask.
func TestComputeMoments(t *testing.T) {
	m := NewMask(4, 3)
	m.Set(1, 0, 255)
	m.Set(2, 1, 1)
	m.Set(7, 7, 255) // Out of range, ignored.

	want := Moments{M00: 2, M10: 3, M01: 1, M20: 5, M02: 1, M11: 2}
	got := ComputeMoments(m)
	if got != want {
		t.Errorf("did not get expected moments. Got: %+v, Want: %+v", got, want)
	}

	cx, cy := got.Centroid()
	if cx != 1.5 || cy != 0.5 {
		t.Errorf("did not get expected centroid. Got: (%v, %v), Want: (1.5, 0.5)", cx, cy)
	}
}

// TestFitCircle checks that a filled circle gives its centre and equal axes.
func TestFitCircle(t *testing.T) {
	const (
		cx, cy = 50.0, 40.0
		r      = 20.0
	)
	m := NewMask(100, 90)
	m.FillEllipse(cx, cy, r, r, 0)

	e := FitEllipse(m)
	if !e.IsFinite() {
		t.Fatalf("expected finite ellipse, got: %v", e)
	}
	if !within(e.CenterX, cx, 1) || !within(e.CenterY, cy, 1) {
		t.Errorf("did not get expected center. Got: (%v, %v), Want: (%v, %v)", e.CenterX, e.CenterY, cx, cy)
	}
	if math.Abs(e.Width-e.Height) > 0.05*e.Width {
		t.Errorf("width and height differ by more than 5%%: %v, %v", e.Width, e.Height)
	}
	if !within(e.Width, r, 0.05*r) {
		t.Errorf("did not get expected width. Got: %v, Want: %v", e.Width, r)
	}
}

// TestFitOrientation checks orientation and axis ratio of filled ellipses.
func TestFitOrientation(t *testing.T) {
	tests := []struct {
		name      string
		a, b      float64
		angle     float64
		wantAngle float64
	}{
		{name: "horizontal", a: 30, b: 12, angle: 0, wantAngle: 0},
		{name: "vertical", a: 30, b: 12, angle: 90, wantAngle: 90},
		{name: "diagonal", a: 35, b: 15, angle: 45, wantAngle: 45},
		{name: "anti-diagonal", a: 35, b: 15, angle: -45, wantAngle: -45},
		{name: "shallow", a: 32, b: 10, angle: 20, wantAngle: 20},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := NewMask(121, 121)
			m.FillEllipse(60, 60, test.a, test.b, test.angle)
			e := FitEllipse(m)

			if !e.IsFinite() {
				t.Fatalf("expected finite ellipse, got: %v", e)
			}
			if d := angleDiff(e.Angle, test.wantAngle); d > 1.5 {
				t.Errorf("did not get expected angle. Got: %v, Want: %v", e.Angle, test.wantAngle)
			}
			if e.Angle < -90 || e.Angle >= 180 {
				t.Errorf("angle out of range: %v", e.Angle)
			}
			ratio, want := e.Width/e.Height, test.a/test.b
			if math.Abs(ratio-want) > 0.05*want {
				t.Errorf("did not get expected axis ratio. Got: %v, Want: %v", ratio, want)
			}
			if e.Width < e.Height {
				t.Errorf("width should be the major axis: %v < %v", e.Width, e.Height)
			}
		})
	}
}

// TestFitAntiDiagonalAngle pins the raw angle reported for an ellipse tilted
// by -45 degrees, which is 135 rather than -45.
func TestFitAntiDiagonalAngle(t *testing.T) {
	m := NewMask(121, 121)
	m.FillEllipse(60, 60, 35, 15, -45)
	e := FitEllipse(m)
	if math.Abs(e.Angle-135) > 1.5 {
		t.Errorf("did not get expected angle. Got: %v, Want: %v", e.Angle, 135.0)
	}
}

// TestFitDiagonalExact checks that a mask symmetric about the diagonal takes
// the mu20 == mu02 branch and reports exactly 45 degrees.
func TestFitDiagonalExact(t *testing.T) {
	m := NewMask(121, 121)
	m.FillEllipse(60, 60, 35, 15, 45)

	// Make the mask exactly symmetric about y = x.
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.At(y, x) != 0 {
				m.Set(y, x, 255)
			}
		}
	}

	e := FitEllipse(m)
	if e.Angle != 45 {
		t.Errorf("did not get expected angle. Got: %v, Want: 45", e.Angle)
	}
}

// TestFitEmpty checks that an empty mask propagates NaN into every field.
func TestFitEmpty(t *testing.T) {
	for _, m := range []*Mask{NewMask(1, 1), NewMask(64, 48)} {
		e := FitEllipse(m)
		for i, v := range []float64{e.CenterX, e.CenterY, e.Width, e.Height, e.Angle} {
			if !math.IsNaN(v) {
				t.Errorf("field %d of empty %dx%d fit is not NaN: %v", i, m.Width, m.Height, v)
			}
		}
		if e.IsFinite() {
			t.Errorf("empty fit reported as finite")
		}
	}
}

// TestFitDegenerate checks that single pixel and single line masks produce
// finite results with zero spread where expected.
func TestFitDegenerate(t *testing.T) {
	t.Run("pixel", func(t *testing.T) {
		m := NewMask(10, 10)
		m.Set(3, 7, 255)
		e := FitEllipse(m)
		want := Ellipse{CenterX: 3, CenterY: 7}
		if e != want {
			t.Errorf("did not get expected ellipse. Got: %v, Want: %v", e, want)
		}
	})

	t.Run("line", func(t *testing.T) {
		m := NewMask(40, 10)
		for x := 5; x < 35; x++ {
			m.Set(x, 4, 255)
		}
		e := FitEllipse(m)
		if !e.IsFinite() {
			t.Fatalf("expected finite ellipse, got: %v", e)
		}
		if e.Height > 1e-6 || e.Angle != 0 {
			t.Errorf("did not get expected flat ellipse: %v", e)
		}
		if !within(e.CenterX, 19.5, 1e-9) || e.CenterY != 4 {
			t.Errorf("did not get expected center: %v", e)
		}
	})
}

// TestFitEigen cross checks width and height against the eigenvalues of the
// covariance matrix of the mask.
func TestFitEigen(t *testing.T) {
	m := NewMask(100, 100)
	m.FillEllipse(48, 52, 30, 18, 33)
	m.FillEllipse(70, 30, 8, 8, 0)

	mom := ComputeMoments(m)
	mu20, mu02, mu11 := mom.Central()
	cov := mat.NewSymDense(2, []float64{mu20, mu11, mu11, mu02})

	var es mat.EigenSym
	if !es.Factorize(cov, false) {
		t.Fatal("could not factorize covariance")
	}
	vals := es.Values(nil) // Ascending.

	e := mom.Ellipse()
	if !within(e.Width, 2*math.Sqrt(vals[1]), 1e-6) {
		t.Errorf("width does not match major eigenvalue. Got: %v, Want: %v", e.Width, 2*math.Sqrt(vals[1]))
	}
	if !within(e.Height, 2*math.Sqrt(vals[0]), 1e-6) {
		t.Errorf("height does not match minor eigenvalue. Got: %v, Want: %v", e.Height, 2*math.Sqrt(vals[0]))
	}
}

// TestFitBinaryWeights checks that only zero vs nonzero matters.
func TestFitBinaryWeights(t *testing.T) {
	a := NewMask(50, 50)
	a.FillEllipse(20, 25, 12, 6, 10)
	b := NewMask(50, 50)
	for i, v := range a.Pix {
		if v != 0 {
			b.Pix[i] = uint8(1 + i%254)
		}
	}
	if FitEllipse(a) != FitEllipse(b) {
		t.Errorf("fit depends on nonzero pixel values: %v != %v", FitEllipse(a), FitEllipse(b))
	}
}

// TestFitConcurrent checks that concurrent fits of a shared mask agree.
func TestFitConcurrent(t *testing.T) {
	m := NewMask(80, 80)
	m.FillEllipse(40, 40, 25, 10, 60)
	want := FitEllipse(m)

	var wg sync.WaitGroup
	got := make([]Ellipse, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = FitEllipse(m)
		}(i)
	}
	wg.Wait()

	for i, e := range got {
		if e != want {
			t.Errorf("fit %d differs. Got: %v, Want: %v", i, e, want)
		}
	}
}

// TestMaskFromImage checks conversion of images into masks.
func TestMaskFromImage(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 6, 4))
	for i := range g.Pix {
		g.Pix[i] = 200
	}
	g.SetGray(2, 1, color.Gray{Y: 10})
	g.SetGray(3, 2, color.Gray{Y: 30})

	m := MaskFromImage(g, 20)
	if m.At(1, 2) != 255 || m.At(2, 3) != 0 {
		t.Errorf("did not get expected thresholded pixels: %v", m.Pix)
	}

	sub := g.SubImage(image.Rect(2, 1, 5, 3)).(*image.Gray)
	sm := MaskFromGray(sub)
	if sm.Width != 3 || sm.Height != 2 {
		t.Fatalf("did not get expected size. Got: %dx%d, Want: 3x2", sm.Width, sm.Height)
	}
	if sm.At(0, 0) != 10 || sm.At(1, 1) != 30 || sm.At(0, 2) != 200 {
		t.Errorf("did not get expected pixels: %v", sm.Pix)
	}
}
