package audio

import (
	"fmt"
)

// ----- MIDI Event ----- //

// EventKind ...
type EventKind int

const (
	EventOther EventKind = iota
	EventNoteOn
	EventNoteOff
	EventTempo
)

func (k EventKind) String() string {
	switch k {
	case EventNoteOn:
		return "note_on"
	case EventNoteOff:
		return "note_off"
	case EventTempo:
		return "tempo"
	default:
		return "other"
	}
}

// Event is one track message. Delta is in ticks since the previous event.
// A note-on with velocity 0 is a note end.
type Event struct {
	Delta    uint32
	Kind     EventKind
	Note     uint8
	Velocity uint8
	Tempo    uint32 // µs per beat, EventTempo only
}

// Track ...
type Track []Event

// Ticks is the sum of all deltas.
func (t Track) Ticks() uint64 {
	var ticks uint64
	for _, e := range t {
		ticks += uint64(e.Delta)
	}
	return ticks
}

// ----- Score ----- //

const defaultTempo = 500000 // µs per beat (120 bpm)

// Score is a parsed multi-track MIDI file.
type Score struct {
	TicksPerBeat uint16
	Tracks       []Track
}

// Tempo returns the first tempo of the info track, or 120 bpm when there is none.
func (s *Score) Tempo(infoTrack int) uint32 {
	if infoTrack < 0 || infoTrack >= len(s.Tracks) {
		return defaultTempo
	}
	for _, e := range s.Tracks[infoTrack] {
		if e.Kind == EventTempo && e.Tempo > 0 {
			return e.Tempo
		}
	}
	return defaultTempo
}

// TickLength is the duration of one tick in seconds.
func (s *Score) TickLength(infoTrack int) (float64, error) {
	if s.TicksPerBeat == 0 {
		return 0, fmt.Errorf("score has no ticks per beat")
	}
	return (float64(s.Tempo(infoTrack)) / 1e6) / float64(s.TicksPerBeat), nil
}

// Ticks is the length of the longest track.
func (s *Score) Ticks() uint64 {
	var ticks uint64
	for _, t := range s.Tracks {
		if tt := t.Ticks(); tt > ticks {
			ticks = tt
		}
	}
	return ticks
}

func (t Track) hasNotes() bool {
	for _, e := range t {
		if e.Kind == EventNoteOn && e.Velocity > 0 {
			return true
		}
	}
	return false
}
