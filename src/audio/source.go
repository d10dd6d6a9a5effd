package audio

import (
	"fmt"
	"math"
)

// HarmonicSource is an unfiltered, unnormalized sum of harmonics.
// Samples may be shared with a cache and must not be modified.
type HarmonicSource struct {
	Samples  []float64
	Partials int // harmonics actually summed
}

// SourceGenerator builds harmonic sources with a spectral-slope falloff.
type SourceGenerator struct {
	partials   int
	sampleRate int
	slopeDB    float64 // dB per octave added to the loudness-derived slope
	cache      Cache
	owner      uint64
}

// NewSourceGenerator returns a generator. A nil cache gets a private in-memory one.
func NewSourceGenerator(partials int, sampleRate int, slopeDB float64, cache Cache) (*SourceGenerator, error) {
	if partials <= 0 {
		return nil, fmt.Errorf("%d: %w", partials, ErrInvalidPartials)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%d: %w", sampleRate, ErrInvalidSampleRate)
	}
	if cache == nil {
		cache = NewCache()
	}
	return &SourceGenerator{
		partials:   partials,
		sampleRate: sampleRate,
		slopeDB:    slopeDB,
		cache:      cache,
		owner:      newCacheOwner(),
	}, nil
}

// SampleRate ...
func (g *SourceGenerator) SampleRate() int {
	return g.sampleRate
}

// Gen returns a source of the given pitch and length.
// A cached source is reused when it is at least as long as requested.
func (g *SourceGenerator) Gen(pitch float64, duration float64, loudness float64, vib Vibrato) (*HarmonicSource, error) {
	if !(loudness > 0) {
		return nil, fmt.Errorf("%v: %w", loudness, ErrInvalidLoudness)
	}
	if duration < 0 {
		return nil, fmt.Errorf("%v s: %w", duration, ErrInvalidDuration)
	}
	f0 := SemitoneToFrequency(pitch)
	n := sampleCount(duration, g.sampleRate)
	key := makeCacheKey(g.owner, pitch, loudness, vib)
	if samples, ok := lookupPrefix(g.cache, key, n); ok {
		return &HarmonicSource{Samples: samples, Partials: g.partialCount(f0)}, nil
	}
	samples, partials, err := g.generate(f0, n, loudness, vib)
	if err != nil {
		return nil, err
	}
	g.cache.Store(key, samples)
	return &HarmonicSource{Samples: samples[:n:n], Partials: partials}, nil
}

func (g *SourceGenerator) generate(f0 float64, n int, loudness float64, vib Vibrato) ([]float64, int, error) {
	loudnessDB, err := AmplitudeToDecibel(loudness)
	if err != nil {
		return nil, 0, err
	}
	slope := g.slopeDB + loudnessDB
	baseOctave := math.Log2(f0)
	times := SampleTimes(n, g.sampleRate)
	source := make([]float64, n)
	count := g.partialCount(f0)
	for i := 0; i < count; i++ {
		fi := f0 * float64(i+1)
		p := &Partial{
			Amplitude: DecibelToAmplitude(slope * (math.Log2(fi) - baseOctave)),
			Frequency: fi,
			Vibrato:   vib,
		}
		if err := p.AddTo(source, times); err != nil {
			return nil, 0, err
		}
	}
	return source, count, nil
}

// partialCount applies the Nyquist guard. The check uses the 0-based index i
// (i*f0, not (i+1)*f0), so the last summed harmonic may sit just above Nyquist.
func (g *SourceGenerator) partialCount(f0 float64) int {
	nyquist := float64(g.sampleRate) / 2
	for i := 0; i < g.partials; i++ {
		if float64(i)*f0 > nyquist {
			return i
		}
	}
	return g.partials
}
