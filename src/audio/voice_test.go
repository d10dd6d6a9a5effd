package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVoice(t *testing.T, rate int) (*Voice, *SourceGenerator) {
	t.Helper()
	gen, err := NewSourceGenerator(20, rate, 0, nil)
	require.NoError(t, err)
	formants, ok := VowelFormants("a")
	require.True(t, ok)
	voice, err := NewVoice("a", gen, formants, 1, Vibrato{Rate: 5, Depth: 0.2}, nil)
	require.NoError(t, err)
	return voice, gen
}

func TestVoiceCacheFreshness(t *testing.T) {
	const rate = 8000
	voice, _ := newTestVoice(t, rate)

	first, err := voice.Sing(60, 0.5, 0.7)
	require.NoError(t, err)
	require.Len(t, first, 4000)

	shorter, err := voice.Sing(60, 0.2, 0.7)
	require.NoError(t, err)
	require.Len(t, shorter, 1600)
	assert.Equal(t, first[:1600], shorter)

	longer, err := voice.Sing(60, 0.8, 0.7)
	require.NoError(t, err)
	require.Len(t, longer, 6400)
	assert.Equal(t, first, longer[:4000])
}

func TestVoiceKeepsSourcePristine(t *testing.T) {
	const rate = 8000
	voice, gen := newTestVoice(t, rate)
	_, err := voice.Sing(62, 0.3, 1)
	require.NoError(t, err)

	cached, err := gen.Gen(62, 0.3, 1, voice.vibrato)
	require.NoError(t, err)
	fresh, err := NewSourceGenerator(20, rate, 0, nil)
	require.NoError(t, err)
	expected, err := fresh.Gen(62, 0.3, 1, voice.vibrato)
	require.NoError(t, err)
	assert.Equal(t, expected.Samples, cached.Samples)
}

func TestVoiceLoudness(t *testing.T) {
	voice, _ := newTestVoice(t, 8000)
	loud, err := voice.Sing(60, 0.2, 1)
	require.NoError(t, err)
	soft, err := voice.Sing(60, 0.2, 0.25)
	require.NoError(t, err)
	assert.Greater(t, Peak(loud), Peak(soft))
}

func TestVoiceErrors(t *testing.T) {
	gen, err := NewSourceGenerator(20, 8000, 0, nil)
	require.NoError(t, err)
	_, err = NewVoice("empty", gen, nil, 1, Vibrato{}, nil)
	assert.ErrorIs(t, err, ErrNoFormants)
	_, err = NewVoice("bad", gen, []Formant{{Freq: 500, Width: 0}}, 1, Vibrato{}, nil)
	assert.ErrorIs(t, err, ErrInvalidQ)

	voice, _ := newTestVoice(t, 8000)
	_, err = voice.Sing(60, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidLoudness)
	_, err = voice.Sing(60, -0.1, 1)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestVowels(t *testing.T) {
	for _, name := range VowelNames {
		formants, ok := VowelFormants(name)
		require.True(t, ok, name)
		assert.Len(t, formants, 5, name)
		for _, f := range formants {
			assert.Equal(t, float64(vowelQ), f.Width)
			assert.False(t, f.Bandwidth)
		}
	}
	_, ok := VowelFormants("y")
	assert.False(t, ok)
}
