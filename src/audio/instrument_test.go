package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decayingTone(rate int, seconds float64, partials []DecayingPartial) []float64 {
	n := sampleCount(seconds, rate)
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(rate)
		for _, p := range partials {
			out[i] += p.Amp * math.Exp(-p.Decay*t) * math.Sin(2*math.Pi*p.Freq*t)
		}
	}
	return out
}

func nearest(partials []DecayingPartial, freq float64) DecayingPartial {
	best := partials[0]
	for _, p := range partials {
		if math.Abs(p.Freq-freq) < math.Abs(best.Freq-freq) {
			best = p
		}
	}
	return best
}

func TestAnalyzeSample(t *testing.T) {
	const rate = 8000
	tone := decayingTone(rate, 1, []DecayingPartial{
		{Freq: 440, Amp: 1, Decay: 2},
		{Freq: 880, Amp: 0.5, Decay: 4},
	})
	partials, err := AnalyzeSample(tone, rate, DefaultAnalysisParams())
	require.NoError(t, err)

	strongest := partials[0]
	for _, p := range partials {
		if p.Amp > strongest.Amp {
			strongest = p
		}
	}
	assert.InDelta(t, 440, strongest.Freq, 8)

	fundamental := nearest(partials, 440)
	assert.InDelta(t, 440, fundamental.Freq, 8)
	assert.InDelta(t, 2, fundamental.Decay, 0.2)
	second := nearest(partials, 880)
	assert.InDelta(t, 880, second.Freq, 8)
	assert.InDelta(t, 4, second.Decay, 0.4)
	assert.Greater(t, fundamental.Amp, second.Amp)
}

func TestAnalyzeSampleErrors(t *testing.T) {
	_, err := AnalyzeSample(make([]float64, 100), 8000, DefaultAnalysisParams())
	assert.Error(t, err)
	_, err = AnalyzeSample(make([]float64, 8000), 0, DefaultAnalysisParams())
	assert.ErrorIs(t, err, ErrInvalidSampleRate)
	_, err = AnalyzeSample(make([]float64, 8000), 8000, DefaultAnalysisParams())
	assert.ErrorIs(t, err, ErrNoPartials)

	p := DefaultAnalysisParams()
	p.SecondStart = p.Start
	_, err = AnalyzeSample(make([]float64, 8000), 8000, p)
	assert.Error(t, err)
}

func TestInstrumentSing(t *testing.T) {
	const rate = 8000
	ins, err := NewInstrument("sine", 69, []DecayingPartial{{Freq: 440, Amp: 1}}, 0.8, rate, nil)
	require.NoError(t, err)
	assert.Equal(t, "sine", ins.Name())

	tone, err := ins.Sing(81, 0.5, 0.5)
	require.NoError(t, err)
	require.Len(t, tone, 4000)
	assert.InDelta(t, 0.4, Peak(tone), 1e-12)
	assert.InDelta(t, 0.4, projection(tone, 880, rate), 0.01)

	again, err := ins.Sing(81, 0.5, 0.5)
	require.NoError(t, err)
	assert.Equal(t, tone, again)
	shorter, err := ins.Sing(81, 0.25, 0.5)
	require.NoError(t, err)
	assert.Len(t, shorter, 2000)
	assert.InDelta(t, 0.4, Peak(shorter), 1e-12)
	shorterAgain, err := ins.Sing(81, 0.25, 0.5)
	require.NoError(t, err)
	assert.Same(t, &shorter[0], &shorterAgain[0])
	longAgain, err := ins.Sing(81, 0.5, 0.5)
	require.NoError(t, err)
	assert.Same(t, &tone[0], &longAgain[0])
}

func TestInstrumentSkipsPartialsAboveNyquist(t *testing.T) {
	ins, err := NewInstrument("sine", 69, []DecayingPartial{{Freq: 440, Amp: 1}}, 1, 8000, nil)
	require.NoError(t, err)
	tone, err := ins.Sing(69+48, 0.1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, Peak(tone))
}

func TestInstrumentErrors(t *testing.T) {
	_, err := NewInstrument("none", 60, nil, 1, 8000, nil)
	assert.ErrorIs(t, err, ErrNoPartials)
	ins, err := NewInstrument("sine", 69, []DecayingPartial{{Freq: 440, Amp: 1}}, 1, 8000, nil)
	require.NoError(t, err)
	_, err = ins.Sing(60, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidLoudness)
}

func TestInstrumentParamsFromSample(t *testing.T) {
	const rate = 8000
	tone := decayingTone(rate, 1, []DecayingPartial{{Freq: 500, Amp: 1, Decay: 1}})
	load := func(path string) ([]float64, int, error) {
		assert.Equal(t, "tone.wav", path)
		return tone, rate, nil
	}
	p := &InstrumentParams{Name: "tone", File: "tone.wav", BasePitch: 60, Volume: 1, Window: "hamming"}
	ins, err := p.NewInstrument(load, rate)
	require.NoError(t, err)
	assert.InDelta(t, 500, nearest(ins.partials, 500).Freq, 8)

	p.Window = "triangle"
	_, err = p.NewInstrument(load, rate)
	assert.Error(t, err)
}
