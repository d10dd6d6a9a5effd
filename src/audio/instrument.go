package audio

import (
	"fmt"
	"math"
)

// Instrument is an additive timbre resynthesized from a recorded tone.
// Unlike Voice, every note is normalized to the instrument volume.
type Instrument struct {
	name       string
	basePitch  float64
	partials   []DecayingPartial
	volume     float64
	sampleRate int
	cache      Cache
	owner      uint64
}

var _ Singer = (*Instrument)(nil)

// NewInstrument ...
func NewInstrument(name string, basePitch float64, partials []DecayingPartial, volume float64, sampleRate int, cache Cache) (*Instrument, error) {
	if len(partials) == 0 {
		return nil, fmt.Errorf("instrument %q: %w", name, ErrNoPartials)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("instrument %q: %w", name, ErrInvalidSampleRate)
	}
	if cache == nil {
		cache = NewCache()
	}
	return &Instrument{
		name:       name,
		basePitch:  basePitch,
		partials:   partials,
		volume:     volume,
		sampleRate: sampleRate,
		cache:      cache,
		owner:      newCacheOwner(),
	}, nil
}

// Name ...
func (ins *Instrument) Name() string {
	return ins.name
}

// Sing shifts the analyzed partials to pitch and scales the note by loudness.
func (ins *Instrument) Sing(pitch float64, duration float64, loudness float64) ([]float64, error) {
	if !(loudness > 0) {
		return nil, fmt.Errorf("instrument %q: %v: %w", ins.name, loudness, ErrInvalidLoudness)
	}
	if duration < 0 {
		return nil, fmt.Errorf("instrument %q: %v s: %w", ins.name, duration, ErrInvalidDuration)
	}
	n := sampleCount(duration, ins.sampleRate)
	// normalizing per note breaks the prefix property, so tones are
	// cached per length
	key := makeCacheKey(ins.owner, pitch, loudness, Vibrato{})
	key.Length = int64(n)
	if tone, ok := lookupPrefix(ins.cache, key, n); ok {
		return tone, nil
	}
	ratio := math.Pow(2, (pitch-ins.basePitch)/12)
	nyquist := float64(ins.sampleRate) / 2
	times := SampleTimes(n, ins.sampleRate)
	tone := make([]float64, n)
	for _, p := range ins.partials {
		freq := p.Freq * ratio
		if freq > nyquist {
			continue
		}
		w := 2 * math.Pi * freq
		for i, t := range times {
			tone[i] += p.Amp * math.Exp(-p.Decay*t) * math.Sin(w*t)
		}
	}
	Normalize(tone)
	for i := range tone {
		tone[i] *= ins.volume * loudness
	}
	ins.cache.Store(key, tone)
	return tone[:n:n], nil
}
