package audio

import (
	"math"
	"testing"
)

func expectEqual(t *testing.T, actual, expected interface{}) {
	t.Helper()
	if actual != expected {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func expectNearlyEqual(t *testing.T, actual, expected float64) {
	t.Helper()
	if math.Abs(actual-expected) > 0.0001 {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func TestBitreverse(t *testing.T) {
	expectEqual(t, bitReverse(0, 8), 0)
	expectEqual(t, bitReverse(1, 8), 4)
	expectEqual(t, bitReverse(2, 8), 2)
	expectEqual(t, bitReverse(3, 8), 6)
	expectEqual(t, bitReverse(4, 8), 1)
	expectEqual(t, bitReverse(5, 8), 5)
	expectEqual(t, bitReverse(6, 8), 3)
	expectEqual(t, bitReverse(7, 8), 7)
}

func TestFFT(t *testing.T) {
	x := toComplex([]float64{0, 0.25, 0.5, 0.75, 1, 0.75, 0.5, 0.25})
	NewFFT(8).Calc(x)
	expectNearlyEqual(t, real(x[0]), 4)
	expectNearlyEqual(t, real(x[1]), -(1 + math.Sqrt(2)/2))
	expectNearlyEqual(t, real(x[2]), 0)
	expectNearlyEqual(t, real(x[3]), -(1 - math.Sqrt(2)/2))
	expectNearlyEqual(t, real(x[4]), 0)
	expectNearlyEqual(t, real(x[5]), -(1 - math.Sqrt(2)/2))
	expectNearlyEqual(t, real(x[6]), 0)
	expectNearlyEqual(t, real(x[7]), -(1 + math.Sqrt(2)/2))
	for i := range x {
		expectNearlyEqual(t, imag(x[i]), 0)
	}
}

func TestFFTAbs(t *testing.T) {
	impulse := []float64{1, 0, 0, 0, 0, 0, 0, 0}
	NewFFT(8).CalcAbs(impulse)
	for i := range impulse {
		expectNearlyEqual(t, impulse[i], 1)
	}
	x := make([]float64, 8)
	for i := range x {
		x[i] = math.Cos(2 * math.Pi * 2 * float64(i) / 8)
	}
	NewFFT(8).CalcAbs(x)
	for i, expected := range []float64{0, 0, 4, 0, 0, 0, 4, 0} {
		expectNearlyEqual(t, x[i], expected)
	}
}

func TestMagnitudeSpectrum(t *testing.T) {
	const rate = 8000
	frame := make([]float64, 800)
	for i := range frame {
		frame[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / rate)
	}
	mags, step := magnitudeSpectrum(frame, rate, Han)
	expectEqual(t, len(mags), 512)
	expectNearlyEqual(t, step, 7.8125)
	peak := 0
	for i := range mags {
		if mags[i] > mags[peak] {
			peak = i
		}
	}
	if math.Abs(float64(peak)*step-1000) > step {
		t.Errorf("expected a peak near 1000 Hz, but got: %v", float64(peak)*step)
	}
}

func TestWindows(t *testing.T) {
	for _, name := range []string{"han", "hamming", "blackman"} {
		w, err := WindowByName(name)
		if err != nil {
			t.Fatal(err)
		}
		data := []float64{1, 1, 1, 1}
		w(data)
		// symmetric around the center, peak at n/2
		expectNearlyEqual(t, data[1], data[3])
		if data[2] < data[1] || data[0] > data[1] {
			t.Errorf("%s: unexpected shape %v", name, data)
		}
	}
	data := []float64{1, 1, 1, 1}
	Han(data)
	expectNearlyEqual(t, data[0], 0)
	expectNearlyEqual(t, data[1], 0.5)
	expectNearlyEqual(t, data[2], 1)
	if _, err := WindowByName("triangle"); err == nil {
		t.Error("expected an error for an unknown window")
	}
}
