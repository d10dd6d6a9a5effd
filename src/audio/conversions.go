package audio

import (
	"fmt"
	"math"
)

// referenceFreq is the frequency of MIDI note 0.
const referenceFreq = 8.18

// SemitoneToFrequency maps a (possibly fractional) semitone number to Hz.
func SemitoneToFrequency(st float64) float64 {
	return referenceFreq * math.Pow(2, st/12)
}

// FrequencyToSemitone is the inverse of SemitoneToFrequency.
func FrequencyToSemitone(freq float64) (float64, error) {
	if !(freq > 0) {
		return 0, fmt.Errorf("%v Hz: %w", freq, ErrNonPositiveFrequency)
	}
	return math.Log2(freq/referenceFreq) * 12, nil
}

// DecibelToAmplitude ...
func DecibelToAmplitude(db float64) float64 {
	return math.Pow(10, db/20)
}

// AmplitudeToDecibel ...
func AmplitudeToDecibel(a float64) (float64, error) {
	if !(a > 0) {
		return 0, fmt.Errorf("%v: %w", a, ErrNonPositiveAmplitude)
	}
	return 20 * math.Log10(a), nil
}

// sampleCount converts seconds to a whole number of samples.
// The small epsilon keeps products like 0.29*100 from truncating one short.
func sampleCount(duration float64, sampleRate int) int {
	return int(math.Floor(duration*float64(sampleRate) + 1e-6))
}
