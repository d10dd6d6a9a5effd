package audio

import (
	"log"
	"math"
	"math/cmplx"
)

// FFT is a radix-2 transform of a fixed power-of-two length.
type FFT struct {
	bitReverseTable []int
	wTable          []complex128
}

// NewFFT ...
func NewFFT(length int) *FFT {
	if length <= 0 || length&(length-1) != 0 {
		log.Panicf("FFT length should be a power of two, got %d", length)
	}
	return &FFT{
		bitReverseTable: makeBitReverseTable(length),
		wTable:          makeWTable(length),
	}
}
func makeBitReverseTable(n int) []int {
	array := make([]int, n)
	for i := 0; i < n; i++ {
		array[i] = bitReverse(i, n)
	}
	return array
}
func bitReverse(k, n int) int {
	m := 0
	for ; n > 1; n = n >> 1 {
		m = m<<1 + k&1
		k = k >> 1
	}
	return m
}
func makeWTable(n int) []complex128 {
	array := make([]complex128, n)
	w := -2.0 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		array[i] = cmplx.Exp(complex(0, w*float64(i)))
	}
	return array
}

// Calc transforms x in place.
func (fft *FFT) Calc(x []complex128) {
	n := len(x)
	if n != len(fft.bitReverseTable) {
		log.Panicf("length should be %v", len(fft.bitReverseTable))
	}
	for i := 0; i < n; i++ {
		rev := fft.bitReverseTable[i]
		if i < rev {
			x[i], x[rev] = x[rev], x[i]
		}
	}
	for m := 1; m < n; m = m << 1 {
		step := m << 1
		for k := 0; k < m; k++ {
			w := fft.wTable[n/step*k]
			for i := k; i < n; i += step {
				j := i + m
				tmp := x[j] * w
				x[j] = x[i] - tmp
				x[i] = x[i] + tmp
			}
		}
	}
}

// CalcAbs replaces x with the magnitude of its transform.
func (fft *FFT) CalcAbs(x []float64) {
	cx := toComplex(x)
	fft.Calc(cx)
	for i := range x {
		x[i] = cmplx.Abs(cx[i])
	}
}

func toComplex(x []float64) []complex128 {
	cx := make([]complex128, len(x))
	for i, v := range x {
		cx[i] = complex(v, 0)
	}
	return cx
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// magnitudeSpectrum windows a copy of frame, zero-pads it to a power of two
// and returns the single-sided magnitudes with the frequency step between bins.
func magnitudeSpectrum(frame []float64, sampleRate int, window Window) ([]float64, float64) {
	n := nextPowerOfTwo(len(frame))
	data := make([]float64, n)
	copy(data, frame)
	window(data[:len(frame)])
	NewFFT(n).CalcAbs(data)
	for i := range data {
		data[i] = data[i] * 2 / float64(len(frame))
	}
	return data[:n/2], float64(sampleRate) / float64(n)
}
