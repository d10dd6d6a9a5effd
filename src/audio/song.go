package audio

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ----- Song Params ----- //

// SongParams configures rendering and post-processing.
type SongParams struct {
	SampleRate int
	InfoTrack  int     // track whose first tempo event sets the tick length
	Jobs       int     // concurrent note renders; <= 0 means NumCPU
	AttackMs   float64 // declick fade-in per note, 0 = off
	ReleaseMs  float64 // declick fade-out per note, 0 = off
	Mix        MixParams
}

// DefaultSongParams ...
func DefaultSongParams() SongParams {
	return SongParams{
		SampleRate: 44100,
		InfoTrack:  0,
		Jobs:       0,
		Mix:        DefaultMixParams(),
	}
}

// ----- Song ----- //

type trackSlot struct {
	singer    Singer
	transpose int
}

// Song renders a Score with one Singer per track.
type Song struct {
	score      *Score
	params     SongParams
	tickLength float64
	length     float64 // s
	tracks     []trackSlot
	logger     *log.Logger
}

// NewSong measures the score. Every track starts silent.
func NewSong(score *Score, params SongParams, logger *log.Logger) (*Song, error) {
	if params.SampleRate <= 0 {
		return nil, fmt.Errorf("%d: %w", params.SampleRate, ErrInvalidSampleRate)
	}
	if logger == nil {
		logger = log.Default()
	}
	tickLength, err := score.TickLength(params.InfoTrack)
	if err != nil {
		return nil, err
	}
	return &Song{
		score:      score,
		params:     params,
		tickLength: tickLength,
		length:     float64(score.Ticks()) * tickLength,
		tracks:     make([]trackSlot, len(score.Tracks)),
		logger:     logger,
	}, nil
}

// TickLength is the duration of a tick in seconds.
func (s *Song) TickLength() float64 {
	return s.tickLength
}

// Length is the song duration in seconds.
func (s *Song) Length() float64 {
	return s.length
}

// Assign makes singer render track, shifted by transpose semitones.
// A nil singer silences the track.
func (s *Song) Assign(track int, singer Singer, transpose int) error {
	if track < 0 || track >= len(s.tracks) {
		return fmt.Errorf("track %d of %d: %w", track, len(s.tracks), ErrTrackOutOfRange)
	}
	s.tracks[track] = trackSlot{singer: singer, transpose: transpose}
	return nil
}

// Notes schedules every assigned track. Unassigned tracks are skipped.
func (s *Song) Notes() []NoteEvent {
	var notes []NoteEvent
	for i, track := range s.score.Tracks {
		if s.tracks[i].singer == nil {
			continue
		}
		notes = append(notes, ScheduleTrack(i, track, s.tickLength, s.logger)...)
	}
	return notes
}

// Generate renders all notes, sums them into a buffer sized for the song and
// runs the mixer over it. Notes are rendered concurrently but summed in
// schedule order, so the result does not depend on Jobs.
func (s *Song) Generate(ctx context.Context) ([]float64, error) {
	notes := s.Notes()
	rendered := make([][]float64, len(notes))

	jobs := s.params.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range notes {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			note := notes[i]
			slot := s.tracks[note.Track]
			sound, err := slot.singer.Sing(note.Pitch+float64(slot.transpose), note.Duration, note.Velocity)
			if err != nil {
				return fmt.Errorf("track %d, note %v at tick %d: %w", note.Track, note.Pitch, note.StartTick, err)
			}
			rendered[i] = sound
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]float64, sampleCount(s.length, s.params.SampleRate))
	attack := sampleCount(s.params.AttackMs/1000, s.params.SampleRate)
	release := sampleCount(s.params.ReleaseMs/1000, s.params.SampleRate)
	clipped := 0
	for i, note := range notes {
		sound := rendered[i]
		if attack > 0 || release > 0 {
			shaped := make([]float64, len(sound))
			copy(shaped, sound)
			declick(shaped, attack, release)
			sound = shaped
		}
		if !accumulate(out, sound, sampleCount(note.Start, s.params.SampleRate)) {
			clipped++
		}
	}
	if clipped > 0 {
		s.logger.Printf("%d notes ran past the end of the song and were cut", clipped)
	}
	s.params.Mix.Process(out)
	return out, nil
}

// accumulate adds sound into out at offset, clamped to out.
// It reports whether the whole sound fit.
func accumulate(out []float64, sound []float64, offset int) bool {
	if offset >= len(out) {
		return len(sound) == 0
	}
	end := offset + len(sound)
	fit := true
	if end > len(out) {
		end = len(out)
		fit = false
	}
	for i := offset; i < end; i++ {
		out[i] += sound[i-offset]
	}
	return fit
}
