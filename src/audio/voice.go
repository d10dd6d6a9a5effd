package audio

import (
	"fmt"
)

// Singer renders one note into a buffer that the caller must not modify.
type Singer interface {
	Name() string
	Sing(pitch float64, duration float64, loudness float64) ([]float64, error)
}

// Voice is a timbre made of a formant bank applied to a harmonic source.
type Voice struct {
	name     string
	source   *SourceGenerator
	filters  []FormantFilter
	loudness float64
	vibrato  Vibrato
	cache    Cache
	owner    uint64
}

var _ Singer = (*Voice)(nil)

// NewVoice builds the formant bank. Filters are applied in the order given.
func NewVoice(name string, source *SourceGenerator, formants []Formant, loudness float64, vib Vibrato, cache Cache) (*Voice, error) {
	if len(formants) == 0 {
		return nil, fmt.Errorf("voice %q: %w", name, ErrNoFormants)
	}
	if !(loudness > 0) {
		return nil, fmt.Errorf("voice %q: %w", name, ErrInvalidLoudness)
	}
	samplePeriod := 1 / float64(source.SampleRate())
	filters := make([]FormantFilter, len(formants))
	for i := range formants {
		filter, err := formants[i].filter(samplePeriod)
		if err != nil {
			return nil, fmt.Errorf("voice %q: %w", name, err)
		}
		filters[i] = filter
	}
	if cache == nil {
		cache = NewCache()
	}
	return &Voice{
		name:     name,
		source:   source,
		filters:  filters,
		loudness: loudness,
		vibrato:  vib,
		cache:    cache,
		owner:    newCacheOwner(),
	}, nil
}

// Name ...
func (v *Voice) Name() string {
	return v.name
}

// Sing returns the filtered note. The output is not normalized so that
// relative loudness between notes survives until the final mix.
func (v *Voice) Sing(pitch float64, duration float64, loudness float64) ([]float64, error) {
	if !(loudness > 0) {
		return nil, fmt.Errorf("voice %q: %v: %w", v.name, loudness, ErrInvalidLoudness)
	}
	if duration < 0 {
		return nil, fmt.Errorf("voice %q: %v s: %w", v.name, duration, ErrInvalidDuration)
	}
	n := sampleCount(duration, v.source.SampleRate())
	key := makeCacheKey(v.owner, pitch, loudness, Vibrato{})
	if sound, ok := lookupPrefix(v.cache, key, n); ok {
		return sound, nil
	}
	src, err := v.source.Gen(pitch, duration, loudness*v.loudness, v.vibrato)
	if err != nil {
		return nil, fmt.Errorf("voice %q: %w", v.name, err)
	}
	// the source may be cached by the generator; filter a private copy
	sound := make([]float64, len(src.Samples))
	copy(sound, src.Samples)
	applyFilters(v.filters, sound)
	v.cache.Store(key, sound)
	return sound[:n:n], nil
}
