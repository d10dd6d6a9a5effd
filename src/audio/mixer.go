package audio

import "math"

// ----- Mixer ----- //

// MixParams is the post-processing applied to a finished song.
type MixParams struct {
	Compression float64 // exponent k of sign(x)*|x|^k; 0 disables the stage
	Volume      float64 // peak level after normalization
}

// DefaultMixParams normalizes to full scale without compression.
func DefaultMixParams() MixParams {
	return MixParams{Compression: 0, Volume: 1}
}

// Process compresses (if enabled), peak-normalizes and scales buf in place.
func (p MixParams) Process(buf []float64) {
	if p.Compression > 0 {
		Compress(buf, p.Compression)
	}
	if Normalize(buf) && p.Volume != 1 {
		for i := range buf {
			buf[i] *= p.Volume
		}
	}
}

// Compress applies sign(x)*|x|^k sample-wise.
func Compress(buf []float64, k float64) {
	for i, x := range buf {
		buf[i] = math.Copysign(math.Pow(math.Abs(x), k), x)
	}
}

// Peak returns the largest absolute sample.
func Peak(buf []float64) float64 {
	peak := 0.0
	for _, x := range buf {
		if a := math.Abs(x); a > peak {
			peak = a
		}
	}
	return peak
}

// Normalize divides buf by its peak. Silence is left untouched and reported as false.
func Normalize(buf []float64) bool {
	peak := Peak(buf)
	if peak == 0 {
		return false
	}
	for i := range buf {
		buf[i] /= peak
	}
	return true
}
