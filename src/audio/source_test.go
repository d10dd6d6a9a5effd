package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNyquistGuard(t *testing.T) {
	gen, err := NewSourceGenerator(100, 44100, 0, nil)
	require.NoError(t, err)
	for _, pitch := range []float64{36, 57, 69, 81, 100, 120} {
		f0 := SemitoneToFrequency(pitch)
		src, err := gen.Gen(pitch, 0.01, 1, Vibrato{})
		require.NoError(t, err)
		for i := 0; i < src.Partials; i++ {
			assert.LessOrEqual(t, float64(i)*f0, 22050.0, "pitch %v harmonic index %d", pitch, i)
		}
		if src.Partials < 100 {
			assert.Greater(t, float64(src.Partials)*f0, 22050.0, "pitch %v stopped early", pitch)
		}
	}
}

func TestPartialCount(t *testing.T) {
	gen, err := NewSourceGenerator(10, 1000, 0, nil)
	require.NoError(t, err)
	// 0 and 300 pass the check, 600 does not
	assert.Equal(t, 2, gen.partialCount(300))
	assert.Equal(t, 10, gen.partialCount(20))

	gen, err = NewSourceGenerator(1, 1000, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.partialCount(440))
}

func TestSingleHarmonicSource(t *testing.T) {
	gen, err := NewSourceGenerator(1, 8000, 0, nil)
	require.NoError(t, err)
	src, err := gen.Gen(69, 0.01, 1, Vibrato{})
	require.NoError(t, err)
	require.Len(t, src.Samples, 80)
	f0 := SemitoneToFrequency(69)
	for i, x := range src.Samples {
		assert.InDelta(t, math.Sin(2*math.Pi*f0*float64(i)/8000), x, 1e-12)
	}
}

func TestSpectralSlope(t *testing.T) {
	// half loudness lowers every octave by about 6 dB
	gen, err := NewSourceGenerator(2, 8000, 0, nil)
	require.NoError(t, err)
	n := 8000
	src, err := gen.Gen(57, 1, 0.5, Vibrato{})
	require.NoError(t, err)
	f0 := SemitoneToFrequency(57)
	a1 := projection(src.Samples, f0, 8000)
	a2 := projection(src.Samples, 2*f0, 8000)
	assert.InDelta(t, 1, a1, 0.01)
	assert.InDelta(t, 0.5, a2, 0.01)
	assert.Len(t, src.Samples, n)
}

func TestSourceCachePrefix(t *testing.T) {
	gen, err := NewSourceGenerator(20, 8000, -3, nil)
	require.NoError(t, err)
	long, err := gen.Gen(60, 0.5, 0.8, Vibrato{Rate: 5, Depth: 0.3})
	require.NoError(t, err)
	short, err := gen.Gen(60, 0.2, 0.8, Vibrato{Rate: 5, Depth: 0.3})
	require.NoError(t, err)
	require.Len(t, short.Samples, 1600)
	assert.Equal(t, long.Samples[:1600], short.Samples)

	fresh, err := NewSourceGenerator(20, 8000, -3, nil)
	require.NoError(t, err)
	longer, err := fresh.Gen(60, 0.2, 0.8, Vibrato{Rate: 5, Depth: 0.3})
	require.NoError(t, err)
	longer, err = fresh.Gen(60, 0.7, 0.8, Vibrato{Rate: 5, Depth: 0.3})
	require.NoError(t, err)
	require.Len(t, longer.Samples, 5600)
	assert.Equal(t, long.Samples, longer.Samples[:4000])
}

func TestSourceErrors(t *testing.T) {
	_, err := NewSourceGenerator(0, 8000, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidPartials)
	_, err = NewSourceGenerator(10, 0, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidSampleRate)
	gen, err := NewSourceGenerator(10, 8000, 0, nil)
	require.NoError(t, err)
	_, err = gen.Gen(60, 1, 0, Vibrato{})
	assert.ErrorIs(t, err, ErrInvalidLoudness)
	assert.ErrorContains(t, err, "loudness must be positive")
	_, err = gen.Gen(60, 0.1, 1.5, Vibrato{})
	assert.NoError(t, err)
	_, err = gen.Gen(60, -1, 1, Vibrato{})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

// projection measures the amplitude of the sine at freq over whole seconds of signal.
func projection(signal []float64, freq float64, rate int) float64 {
	sum := 0.0
	for i, x := range signal {
		sum += x * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return 2 * sum / float64(len(signal))
}
