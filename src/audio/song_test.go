package audio

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{}, "", 0)
}

func TestSongEndToEnd(t *testing.T) {
	// 500 ticks per beat at 120 bpm is 1 ms per tick
	score := &Score{
		TicksPerBeat: 500,
		Tracks:       []Track{{noteOn(0, 69, 100), noteOff(500, 69)}},
	}
	params := DefaultSongParams()
	params.SampleRate = 1000
	song, err := NewSong(score, params, quietLogger())
	require.NoError(t, err)
	assert.InDelta(t, 0.001, song.TickLength(), 1e-15)
	assert.InDelta(t, 0.5, song.Length(), 1e-12)

	gen, err := NewSourceGenerator(1, 1000, 0, nil)
	require.NoError(t, err)
	voice, err := NewVoice("one", gen, []Formant{{Freq: 1000, Width: 10}}, 1, Vibrato{}, nil)
	require.NoError(t, err)
	require.NoError(t, song.Assign(0, voice, 0))

	out, err := song.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 500)
	assert.Equal(t, 1.0, Peak(out))
	nonzero := 0
	for _, x := range out {
		if x != 0 {
			nonzero++
		}
	}
	assert.Greater(t, nonzero, 400)
}

func newTestSong(t *testing.T, jobs int) (*Song, *Voice) {
	t.Helper()
	score := &Score{
		TicksPerBeat: 480,
		Tracks: []Track{
			{{Kind: EventTempo, Tempo: 250000}},
			{noteOn(0, 60, 100), noteOff(240, 60), noteOn(0, 64, 90), noteOff(240, 64)},
			{noteOn(120, 67, 70), noteOn(0, 72, 70), noteOff(480, 67), noteOff(0, 72)},
		},
	}
	params := DefaultSongParams()
	params.SampleRate = 8000
	params.Jobs = jobs
	params.Mix.Compression = 0.85
	song, err := NewSong(score, params, quietLogger())
	require.NoError(t, err)
	voice, _ := newTestVoice(t, 8000)
	return song, voice
}

func TestSongDeterministicAcrossJobs(t *testing.T) {
	var outputs [][]float64
	for _, jobs := range []int{1, 8} {
		song, voice := newTestSong(t, jobs)
		require.NoError(t, song.Assign(1, voice, 0))
		require.NoError(t, song.Assign(2, voice, -12))
		out, err := song.Generate(context.Background())
		require.NoError(t, err)
		outputs = append(outputs, out)
	}
	assert.Equal(t, outputs[0], outputs[1])
	assert.InDelta(t, 1, Peak(outputs[0]), 1e-12)
}

func TestSongUnassignedTracksAreSilent(t *testing.T) {
	song, voice := newTestSong(t, 0)
	require.NoError(t, song.Assign(2, voice, 0))
	notes := song.Notes()
	require.Len(t, notes, 2)
	for _, n := range notes {
		assert.Equal(t, 2, n.Track)
	}

	song, _ = newTestSong(t, 0)
	out, err := song.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, Peak(out))
	assert.Len(t, out, sampleCount(song.Length(), 8000))
}

func TestSongAssignOutOfRange(t *testing.T) {
	song, voice := newTestSong(t, 0)
	assert.ErrorIs(t, song.Assign(3, voice, 0), ErrTrackOutOfRange)
	assert.ErrorIs(t, song.Assign(-1, voice, 0), ErrTrackOutOfRange)
}

func TestSongCancel(t *testing.T) {
	song, voice := newTestSong(t, 1)
	require.NoError(t, song.Assign(1, voice, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := song.Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSongDeclick(t *testing.T) {
	song, voice := newTestSong(t, 0)
	song.params.AttackMs = 10
	song.params.ReleaseMs = 20
	require.NoError(t, song.Assign(1, voice, 0))
	out, err := song.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[0])
}

func TestNewSongErrors(t *testing.T) {
	_, err := NewSong(&Score{TicksPerBeat: 480}, SongParams{}, nil)
	assert.ErrorIs(t, err, ErrInvalidSampleRate)
	_, err = NewSong(&Score{}, DefaultSongParams(), nil)
	assert.Error(t, err)
}

func TestAccumulate(t *testing.T) {
	out := make([]float64, 4)
	assert.True(t, accumulate(out, []float64{1, 1}, 0))
	assert.False(t, accumulate(out, []float64{1, 2, 3}, 2))
	assert.Equal(t, []float64{1, 1, 1, 2}, out)
	assert.False(t, accumulate(out, []float64{5}, 4))
	assert.True(t, accumulate(out, nil, 9))
	assert.Equal(t, []float64{1, 1, 1, 2}, out)
}
