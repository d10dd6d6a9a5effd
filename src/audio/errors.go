package audio

import "errors"

var (
	ErrNonPositiveFrequency = errors.New("frequency must be positive")
	ErrNonPositiveAmplitude = errors.New("amplitude must be positive")
	ErrInvalidLoudness      = errors.New("loudness must be positive")
	ErrInvalidDuration      = errors.New("duration must not be negative")
	ErrInvalidSampleRate    = errors.New("sample rate must be positive")
	ErrInvalidPartials      = errors.New("partial count must be positive")
	ErrInvalidQ             = errors.New("bandwidth or Q must be positive")
	ErrNoFormants           = errors.New("voice needs at least one formant")
	ErrNoPartials           = errors.New("instrument needs at least one partial")
	ErrTrackOutOfRange      = errors.New("track index out of range")
	ErrUnknownSinger        = errors.New("unknown singer")
)
