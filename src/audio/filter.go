package audio

import (
	"fmt"
	"math"
)

// FormantFilter is a two-pole resonator modeling one vocal-tract formant.
// It only holds coefficients; the feedback registers live inside Apply,
// so a single value can be shared by any number of concurrent notes.
type FormantFilter struct {
	g  float64
	a1 float64
	a2 float64
}

// NewFormantFilter derives the resonator coefficients.
// widthOrQ is a bandwidth in Hz when isBandwidth is set, otherwise a Q factor.
func NewFormantFilter(freq float64, widthOrQ float64, samplePeriod float64, isBandwidth bool) (FormantFilter, error) {
	if !(freq > 0) {
		return FormantFilter{}, fmt.Errorf("formant %v Hz: %w", freq, ErrNonPositiveFrequency)
	}
	if !(widthOrQ > 0) {
		return FormantFilter{}, fmt.Errorf("formant %v Hz, width %v: %w", freq, widthOrQ, ErrInvalidQ)
	}
	if !(samplePeriod > 0) {
		return FormantFilter{}, fmt.Errorf("sample period %v: %w", samplePeriod, ErrInvalidSampleRate)
	}
	q := widthOrQ
	if isBandwidth {
		q = freq / widthOrQ
	}
	w := 2 * math.Pi * freq
	w0 := w * math.Sqrt(1+1/(4*q*q))
	alpha := w0 / (2 * q)
	a1 := -2 * math.Exp(-alpha*samplePeriod) * math.Cos(w*samplePeriod)
	a2 := math.Exp(-2 * alpha * samplePeriod)
	return FormantFilter{
		g:  1 + a1 + a2,
		a1: a1,
		a2: a2,
	}, nil
}

// Coefficients returns (g, a1, a2).
func (f FormantFilter) Coefficients() (float64, float64, float64) {
	return f.g, f.a1, f.a2
}

// Apply filters signal in place:
//   y[n] = g*x[n] - a1*y[n-1] - a2*y[n-2]
// with y[-1] = y[-2] = 0 on every call.
func (f FormantFilter) Apply(signal []float64) {
	n1, n2 := 0.0, 0.0
	for i, x := range signal {
		y := f.g*x - f.a1*n1 - f.a2*n2
		n2 = n1
		n1 = y
		signal[i] = y
	}
}

// ImpulseResponse returns the first n samples of the response to a unit impulse.
func (f FormantFilter) ImpulseResponse(n int) []float64 {
	h := make([]float64, n)
	if n > 0 {
		h[0] = 1
	}
	f.Apply(h)
	return h
}

// FrequencyResponse returns |H| at n/2 evenly spaced bins from 0 to Nyquist.
// n must be a power of two.
func (f FormantFilter) FrequencyResponse(n int) []float64 {
	h := f.ImpulseResponse(n)
	NewFFT(n).CalcAbs(h)
	return h[:n/2]
}

func applyFilters(filters []FormantFilter, signal []float64) {
	for _, filter := range filters {
		filter.Apply(signal)
	}
}
