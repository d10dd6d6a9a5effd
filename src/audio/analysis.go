package audio

import (
	"fmt"
	"math"
	"sort"
)

// AnalysisParams controls how partials are extracted from a recorded tone.
type AnalysisParams struct {
	Start       float64 // s, first window (just after the onset)
	SecondStart float64 // s, second window used to measure decay
	Length      float64 // s, window length
	Count       int     // strongest peaks kept
	MaxFreq     float64 // Hz, peaks above are ignored
	Window      Window
}

// DefaultAnalysisParams ...
func DefaultAnalysisParams() AnalysisParams {
	return AnalysisParams{
		Start:       0,
		SecondStart: 0.7,
		Length:      0.1,
		Count:       15,
		MaxFreq:     15000,
		Window:      Han,
	}
}

// DecayingPartial is a sinusoid with an exponential amplitude envelope
// amp * exp(-decay * t).
type DecayingPartial struct {
	Freq  float64
	Amp   float64
	Decay float64 // 1/s
}

type peak struct {
	bin int
	mag float64
}

// AnalyzeSample finds the strongest spectral peaks of a recorded tone and
// estimates how fast each one decays. Only peaks present in both windows are kept.
func AnalyzeSample(samples []float64, sampleRate int, p AnalysisParams) ([]DecayingPartial, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%d: %w", sampleRate, ErrInvalidSampleRate)
	}
	gap := p.SecondStart - p.Start
	if p.Start < 0 || !(gap > 0) || !(p.Length > 0) {
		return nil, fmt.Errorf("invalid analysis windows start=%v second=%v length=%v", p.Start, p.SecondStart, p.Length)
	}
	if p.Window == nil {
		p.Window = Han
	}
	size := sampleCount(p.Length, sampleRate)
	first := sampleCount(p.Start, sampleRate)
	second := sampleCount(p.SecondStart, sampleRate)
	if size == 0 || second+size > len(samples) {
		return nil, fmt.Errorf("sample too short for analysis: %d samples, need %d", len(samples), second+size)
	}
	mags1, step := magnitudeSpectrum(samples[first:first+size], sampleRate, p.Window)
	mags2, _ := magnitudeSpectrum(samples[second:second+size], sampleRate, p.Window)
	maxBin := int(p.MaxFreq / step)
	peaks1 := strongestPeaks(mags1, maxBin, p.Count)
	peaks2 := strongestPeaks(mags2, maxBin, p.Count)

	partials := make([]DecayingPartial, 0, len(peaks1))
	for _, pk := range peaks1 {
		later, ok := matchPeak(peaks2, pk.bin)
		if !ok {
			continue
		}
		partials = append(partials, DecayingPartial{
			Freq:  float64(pk.bin) * step,
			Amp:   pk.mag,
			Decay: (math.Log(pk.mag) - math.Log(later.mag)) / gap,
		})
	}
	if len(partials) == 0 {
		return nil, ErrNoPartials
	}
	return partials, nil
}

// strongestPeaks returns up to count local maxima below maxBin, in bin order.
func strongestPeaks(mags []float64, maxBin int, count int) []peak {
	if maxBin > len(mags)-1 {
		maxBin = len(mags) - 1
	}
	var peaks []peak
	for i := 1; i < maxBin; i++ {
		if mags[i] > mags[i-1] && mags[i] >= mags[i+1] && mags[i] > 0 {
			peaks = append(peaks, peak{bin: i, mag: mags[i]})
		}
	}
	sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].mag > peaks[j].mag })
	if len(peaks) > count {
		peaks = peaks[:count]
	}
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].bin < peaks[j].bin })
	return peaks
}

// matchPeak finds the peak at bin, allowing one bin of drift.
func matchPeak(peaks []peak, bin int) (peak, bool) {
	for _, pk := range peaks {
		if pk.bin == bin {
			return pk, true
		}
	}
	for _, pk := range peaks {
		if pk.bin == bin-1 || pk.bin == bin+1 {
			return pk, true
		}
	}
	return peak{}, false
}
