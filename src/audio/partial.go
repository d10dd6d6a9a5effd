package audio

import (
	"fmt"
	"math"
)

// Vibrato modulates the phase of a partial.
// Depth is in semitones; zero disables it.
type Vibrato struct {
	Rate  float64 // Hz
	Depth float64 // semitones
}

// Partial is a single sinusoid.
type Partial struct {
	Amplitude float64
	Frequency float64
	Vibrato   Vibrato
}

// SampleTimes returns n sample instants spaced 1/sampleRate apart, starting at 0.
func SampleTimes(n int, sampleRate int) []float64 {
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) / float64(sampleRate)
	}
	return times
}

// Generate renders the partial at the given instants.
func (p *Partial) Generate(times []float64) ([]float64, error) {
	out := make([]float64, len(times))
	if err := p.AddTo(out, times); err != nil {
		return nil, err
	}
	return out, nil
}

// AddTo accumulates the partial into dst. len(dst) must equal len(times).
func (p *Partial) AddTo(dst []float64, times []float64) error {
	if len(dst) != len(times) {
		return fmt.Errorf("partial: dst has %d samples, times has %d", len(dst), len(times))
	}
	w := 2 * math.Pi * p.Frequency
	if p.Vibrato.Depth == 0 {
		for i, t := range times {
			dst[i] += p.Amplitude * math.Sin(w*t)
		}
		return nil
	}
	excursion, err := p.excursion()
	if err != nil {
		return err
	}
	vw := 2 * math.Pi * p.Vibrato.Rate
	for i, t := range times {
		vib := excursion * math.Sin(vw*t)
		dst[i] += p.Amplitude * math.Sin(w*t+vib)
	}
	return nil
}

// excursion is how far (in Hz) the partial moves when shifted by the vibrato depth.
func (p *Partial) excursion() (float64, error) {
	st, err := FrequencyToSemitone(p.Frequency)
	if err != nil {
		return 0, err
	}
	return SemitoneToFrequency(st+p.Vibrato.Depth) - p.Frequency, nil
}
