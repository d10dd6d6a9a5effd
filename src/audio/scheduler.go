package audio

import (
	"log"
)

// NoteEvent is a paired note-on/note-off.
type NoteEvent struct {
	Track     int
	Pitch     float64 // semitones, before track transposition
	StartTick uint64
	EndTick   uint64
	Start     float64 // s
	Duration  float64 // s
	Velocity  float64 // 0-1
}

type openNote struct {
	tick     uint64
	velocity uint8
}

// ScheduleTrack pairs note starts with note ends.
// A new start on a pitch that is still sounding replaces it; an end with
// nothing open is ignored. Notes are returned in the order they end.
func ScheduleTrack(index int, track Track, tickLength float64, logger *log.Logger) []NoteEvent {
	if logger == nil {
		logger = log.Default()
	}
	var notes []NoteEvent
	open := make(map[uint8]openNote)
	var tick uint64
	for _, e := range track {
		tick += uint64(e.Delta)
		switch {
		case e.Kind == EventNoteOn && e.Velocity > 0:
			open[e.Note] = openNote{tick: tick, velocity: e.Velocity}
		case e.Kind == EventNoteOff || e.Kind == EventNoteOn:
			start, ok := open[e.Note]
			if !ok {
				logger.Printf("track %d: note end %d at tick %d without a start, ignored", index, e.Note, tick)
				continue
			}
			delete(open, e.Note)
			notes = append(notes, NoteEvent{
				Track:     index,
				Pitch:     float64(e.Note),
				StartTick: start.tick,
				EndTick:   tick,
				Start:     float64(start.tick) * tickLength,
				Duration:  float64(tick-start.tick) * tickLength,
				Velocity:  float64(start.velocity) / 127,
			})
		}
	}
	if len(open) > 0 {
		logger.Printf("track %d: %d notes never ended, dropped", index, len(open))
	}
	return notes
}
