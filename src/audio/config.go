package audio

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
)

// ----- Config ----- //

// Config is everything needed to turn a Score into a mixed buffer.
type Config struct {
	SampleRate      int
	Partials        int
	SpectralSlopeDB float64
	Compression     float64
	Volume          float64
	InfoTrack       int
	Jobs            int
	AttackMs        float64
	ReleaseMs       float64
	Voices          []*VoiceParams
	Instruments     []*InstrumentParams
	Tracks          []*TrackParams
}

type configJSON struct {
	SampleRate      int               `json:"sampleRate"`
	Partials        int               `json:"partials"`
	SpectralSlopeDB float64           `json:"spectralSlopeDb"`
	Compression     float64           `json:"compression"`
	Volume          float64           `json:"volume"`
	InfoTrack       int               `json:"infoTrack"`
	Jobs            int               `json:"jobs"`
	AttackMs        float64           `json:"attackMs"`
	ReleaseMs       float64           `json:"releaseMs"`
	Voices          []json.RawMessage `json:"voices"`
	Instruments     []json.RawMessage `json:"instruments"`
	Tracks          []json.RawMessage `json:"tracks"`
}

// NewConfig returns the defaults: 44.1 kHz, 30 partials, flat slope,
// compression 0.85, full-scale output and no explicit track assignment.
func NewConfig() *Config {
	return &Config{
		SampleRate:  44100,
		Partials:    30,
		Compression: 0.85,
		Volume:      1,
	}
}

// ApplyJSON overwrites the fields present in data. Voices, instruments
// and tracks are replaced as a whole, and kept when their key is absent or null.
func (c *Config) ApplyJSON(data []byte) error {
	j := c.toConfigJSON()
	j.Voices = nil
	j.Instruments = nil
	j.Tracks = nil
	if err := json.Unmarshal(data, j); err != nil {
		return fmt.Errorf("failed to apply JSON to config: %w", err)
	}
	c.SampleRate = j.SampleRate
	c.Partials = j.Partials
	c.SpectralSlopeDB = j.SpectralSlopeDB
	c.Compression = j.Compression
	c.Volume = j.Volume
	c.InfoTrack = j.InfoTrack
	c.Jobs = j.Jobs
	c.AttackMs = j.AttackMs
	c.ReleaseMs = j.ReleaseMs
	if j.Voices != nil {
		voices := make([]*VoiceParams, len(j.Voices))
		for i, data := range j.Voices {
			voices[i] = newVoiceParams("")
			if err := voices[i].applyJSON(data); err != nil {
				return err
			}
		}
		c.Voices = voices
	}
	if j.Instruments != nil {
		instruments := make([]*InstrumentParams, len(j.Instruments))
		for i, data := range j.Instruments {
			instruments[i] = &InstrumentParams{}
			if err := instruments[i].applyJSON(data); err != nil {
				return err
			}
		}
		c.Instruments = instruments
	}
	if j.Tracks != nil {
		tracks := make([]*TrackParams, len(j.Tracks))
		for i, data := range j.Tracks {
			tracks[i] = &TrackParams{}
			if err := tracks[i].applyJSON(data); err != nil {
				return err
			}
		}
		c.Tracks = tracks
	}
	return nil
}

// ToJSON ...
func (c *Config) ToJSON() []byte {
	return c.toConfigJSON().marshal()
}

func (c *Config) toConfigJSON() *configJSON {
	voices := make([]json.RawMessage, len(c.Voices))
	for i, v := range c.Voices {
		voices[i] = v.toJSON()
	}
	instruments := make([]json.RawMessage, len(c.Instruments))
	for i, p := range c.Instruments {
		instruments[i] = p.toJSON()
	}
	tracks := make([]json.RawMessage, len(c.Tracks))
	for i, t := range c.Tracks {
		tracks[i] = t.toJSON()
	}
	return &configJSON{
		SampleRate:      c.SampleRate,
		Partials:        c.Partials,
		SpectralSlopeDB: c.SpectralSlopeDB,
		Compression:     c.Compression,
		Volume:          c.Volume,
		InfoTrack:       c.InfoTrack,
		Jobs:            c.Jobs,
		AttackMs:        c.AttackMs,
		ReleaseMs:       c.ReleaseMs,
		Voices:          voices,
		Instruments:     instruments,
		Tracks:          tracks,
	}
}

func (j *configJSON) marshal() []byte {
	bytes, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		panic(err)
	}
	return bytes
}

// Set changes one value. Nested keys look like
// "voice.<name>.loudness", "voice.<name>.formant.<i>.freq" or "track.<index>.singer".
// A voice or track that does not exist yet is created.
func (c *Config) Set(key string, value string) error {
	parts := strings.SplitN(key, ".", 3)
	switch parts[0] {
	case "voice":
		if len(parts) != 3 {
			return fmt.Errorf("invalid key %q", key)
		}
		return c.voice(parts[1]).set(parts[2], value)
	case "track":
		if len(parts) != 3 {
			return fmt.Errorf("invalid key %q", key)
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("invalid key %q: %w", key, err)
		}
		return c.track(index).set(parts[2], value)
	}
	if len(parts) != 1 {
		return fmt.Errorf("unknown key %q", key)
	}
	switch key {
	case "sampleRate", "partials", "infoTrack", "jobs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		switch key {
		case "sampleRate":
			c.SampleRate = n
		case "partials":
			c.Partials = n
		case "infoTrack":
			c.InfoTrack = n
		case "jobs":
			c.Jobs = n
		}
	case "spectralSlopeDb", "compression", "volume", "attackMs", "releaseMs":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		switch key {
		case "spectralSlopeDb":
			c.SpectralSlopeDB = f
		case "compression":
			c.Compression = f
		case "volume":
			c.Volume = f
		case "attackMs":
			c.AttackMs = f
		case "releaseMs":
			c.ReleaseMs = f
		}
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}

func (c *Config) voice(name string) *VoiceParams {
	for _, v := range c.Voices {
		if v.Name == name {
			return v
		}
	}
	v := newVoiceParams(name)
	c.Voices = append(c.Voices, v)
	return v
}

func (c *Config) track(index int) *TrackParams {
	for _, t := range c.Tracks {
		if t.Index == index {
			return t
		}
	}
	t := &TrackParams{Index: index}
	c.Tracks = append(c.Tracks, t)
	return t
}

// SongParams ...
func (c *Config) SongParams() SongParams {
	return SongParams{
		SampleRate: c.SampleRate,
		InfoTrack:  c.InfoTrack,
		Jobs:       c.Jobs,
		AttackMs:   c.AttackMs,
		ReleaseMs:  c.ReleaseMs,
		Mix: MixParams{
			Compression: c.Compression,
			Volume:      c.Volume,
		},
	}
}

// Singers builds every singer the config can reach: the built-in vowels,
// the configured voices (which may shadow a vowel) and the instruments.
// load may be nil when there are no instruments.
func (c *Config) Singers(load SampleLoader) (map[string]Singer, error) {
	gen, err := NewSourceGenerator(c.Partials, c.SampleRate, c.SpectralSlopeDB, nil)
	if err != nil {
		return nil, err
	}
	singers := make(map[string]Singer)
	for _, name := range VowelNames {
		v := newVoiceParams(name)
		voice, err := v.NewVoice(gen)
		if err != nil {
			return nil, err
		}
		singers[name] = voice
	}
	for _, v := range c.Voices {
		voice, err := v.NewVoice(gen)
		if err != nil {
			return nil, err
		}
		singers[v.Name] = voice
	}
	for _, p := range c.Instruments {
		if load == nil {
			return nil, fmt.Errorf("instrument %q: no sample loader", p.Name)
		}
		ins, err := p.NewInstrument(load, c.SampleRate)
		if err != nil {
			return nil, err
		}
		singers[p.Name] = ins
	}
	return singers, nil
}

// AssignTracks applies the track table to song. Without a table every track
// that has notes gets a built-in vowel, cycling through VowelNames.
func (c *Config) AssignTracks(song *Song, singers map[string]Singer, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	if len(c.Tracks) == 0 {
		i := 0
		for index, track := range song.score.Tracks {
			if !track.hasNotes() {
				continue
			}
			name := VowelNames[i%len(VowelNames)]
			i++
			if err := song.Assign(index, singers[name], 0); err != nil {
				return err
			}
			logger.Printf("track %d: %s", index, name)
		}
		return nil
	}
	for _, t := range c.Tracks {
		singer, ok := singers[t.Singer]
		if !ok {
			return fmt.Errorf("track %d: %q: %w", t.Index, t.Singer, ErrUnknownSinger)
		}
		if err := song.Assign(t.Index, singer, t.Transpose); err != nil {
			return err
		}
	}
	return nil
}
