package score

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/jinjor/midi-singer/src/audio"
	"gitlab.com/gomidi/rtmididrv"
)

// ErrNoMidiIn is returned when no MIDI input port is available.
var ErrNoMidiIn = errors.New("MIDI IN not found")

const (
	takeTicksPerBeat = 480
	takeTempo        = 500000 // µs per beat
)

// TakeEvent is one raw message received from a MIDI input.
type TakeEvent struct {
	DeltaMicroseconds int64
	Data              []byte
}

// Take is everything played into a MIDI input during a recording.
type Take struct {
	sync.Mutex
	Port   string
	Events []TakeEvent
}

func (t *Take) add(data []byte, deltaMicroseconds int64) {
	msg := make([]byte, len(data))
	copy(msg, data)
	t.Lock()
	t.Events = append(t.Events, TakeEvent{DeltaMicroseconds: deltaMicroseconds, Data: msg})
	t.Unlock()
}

// Score quantizes the take to 480 ticks per beat at 120 bpm on a single track.
// Time is accumulated in microseconds and rounded per event, so rounding
// errors do not drift.
func (t *Take) Score() *audio.Score {
	t.Lock()
	defer t.Unlock()
	tickMicroseconds := float64(takeTempo) / takeTicksPerBeat
	track := make(audio.Track, 0, len(t.Events)+1)
	track = append(track, audio.Event{Kind: audio.EventTempo, Tempo: takeTempo})
	var elapsed int64
	var lastTick uint64
	for _, ev := range t.Events {
		elapsed += ev.DeltaMicroseconds
		tick := uint64(math.Round(float64(elapsed) / tickMicroseconds))
		if tick < lastTick {
			tick = lastTick
		}
		track = append(track, decode(uint32(tick-lastTick), ev.Data))
		lastTick = tick
	}
	return &audio.Score{
		TicksPerBeat: takeTicksPerBeat,
		Tracks:       []audio.Track{track},
	}
}

// Record listens to the MIDI input named port (the first one when empty)
// until ctx is done and returns what was played.
func Record(ctx context.Context, port string, logger *log.Logger) (*Take, error) {
	if logger == nil {
		logger = log.Default()
	}
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MIDI driver: %w", err)
	}
	defer func() {
		err := drv.Close()
		if err != nil {
			logger.Printf("failed to close MIDI driver: %v\n", err)
		}
	}()
	ins, err := drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("failed to get MIDI IN: %w", err)
	}
	logger.Printf("MIDI IN: %v\n", ins)
	if len(ins) == 0 {
		return nil, ErrNoMidiIn
	}
	in := ins[0]
	if port != "" {
		in = nil
		for _, candidate := range ins {
			if candidate.String() == port {
				in = candidate
				break
			}
		}
		if in == nil {
			return nil, fmt.Errorf("%q: %w", port, ErrNoMidiIn)
		}
	}
	if err := in.Open(); err != nil {
		return nil, fmt.Errorf("failed to open MIDI IN: %w", err)
	}
	logger.Println("opened " + in.String())
	defer func() {
		err := in.Close()
		if err != nil {
			logger.Printf("failed to close MIDI IN: %v\n", err)
		}
	}()
	take := &Take{Port: in.String()}
	logger.Println("start recording MIDI IN...")
	if err := in.SetListener(take.add); err != nil {
		return nil, fmt.Errorf("failed to set listener: %w", err)
	}
	<-ctx.Done()
	logger.Println("stop recording MIDI IN...")
	if err := in.StopListening(); err != nil {
		logger.Printf("failed to stop listening: %v\n", err)
	}
	take.Lock()
	logger.Printf("recorded %d messages\n", len(take.Events))
	take.Unlock()
	return take, nil
}
