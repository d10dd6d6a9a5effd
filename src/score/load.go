package score

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/jinjor/midi-singer/src/audio"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrTimeCode is returned for files timed in SMPTE frames instead of ticks per beat.
var ErrTimeCode = errors.New("SMPTE time code is not supported")

// Load reads a Standard MIDI File from path.
func Load(path string) (*audio.Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	score, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return score, nil
}

// Read parses a Standard MIDI File. Only note starts, note ends and tempo
// changes are kept; every other message survives as EventOther so that
// track timing is unchanged.
func Read(r io.Reader) (*audio.Score, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read SMF: %w", err)
	}
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, ErrTimeCode
	}
	score := &audio.Score{
		TicksPerBeat: uint16(ticks),
		Tracks:       make([]audio.Track, len(s.Tracks)),
	}
	for i, track := range s.Tracks {
		events := make(audio.Track, len(track))
		for j, ev := range track {
			events[j] = decode(ev.Delta, ev.Message)
		}
		score.Tracks[i] = events
	}
	return score, nil
}

func decode(delta uint32, data []byte) audio.Event {
	e := audio.Event{Delta: delta}
	var ch, key, vel uint8
	msg := midi.Message(data)
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		e.Kind = audio.EventNoteOn
		e.Note = key
		e.Velocity = vel
		return e
	case msg.GetNoteEnd(&ch, &key):
		e.Kind = audio.EventNoteOff
		e.Note = key
		return e
	}
	var bpm float64
	if smf.Message(data).GetMetaTempo(&bpm) && bpm > 0 {
		e.Kind = audio.EventTempo
		e.Tempo = uint32(math.Round(60e6 / bpm))
	}
	return e
}
