package audio

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ----- Voice Params ----- //

// VoiceParams describes a formant Voice. When Formants is empty the
// formants of the built-in Vowel are used.
type VoiceParams struct {
	Name         string
	Vowel        string
	Formants     []Formant
	Loudness     float64
	VibratoRate  float64
	VibratoDepth float64
}

type voiceJSON struct {
	Name         string            `json:"name"`
	Vowel        string            `json:"vowel,omitempty"`
	Formants     []json.RawMessage `json:"formants,omitempty"`
	Loudness     float64           `json:"loudness"`
	VibratoRate  float64           `json:"vibratoRate,omitempty"`
	VibratoDepth float64           `json:"vibratoDepth,omitempty"`
}

func newVoiceParams(name string) *VoiceParams {
	return &VoiceParams{Name: name, Loudness: 1}
}

func (v *VoiceParams) applyJSON(data json.RawMessage) error {
	j := voiceJSON{Loudness: 1}
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("failed to apply JSON to voice: %w", err)
	}
	v.Name = j.Name
	v.Vowel = j.Vowel
	v.Loudness = j.Loudness
	v.VibratoRate = j.VibratoRate
	v.VibratoDepth = j.VibratoDepth
	v.Formants = make([]Formant, len(j.Formants))
	for i, f := range j.Formants {
		if err := v.Formants[i].applyJSON(f); err != nil {
			return fmt.Errorf("voice %q formant %d: %w", j.Name, i, err)
		}
	}
	return nil
}
func (v *VoiceParams) toJSON() json.RawMessage {
	formants := make([]json.RawMessage, len(v.Formants))
	for i := range v.Formants {
		formants[i] = v.Formants[i].toJSON()
	}
	return toRawMessage(&voiceJSON{
		Name:         v.Name,
		Vowel:        v.Vowel,
		Formants:     formants,
		Loudness:     v.Loudness,
		VibratoRate:  v.VibratoRate,
		VibratoDepth: v.VibratoDepth,
	})
}
func (v *VoiceParams) set(key string, value string) error {
	switch key {
	case "vowel":
		v.Vowel = value
		return nil
	case "loudness", "vibratoRate", "vibratoDepth":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		switch key {
		case "loudness":
			v.Loudness = f
		case "vibratoRate":
			v.VibratoRate = f
		case "vibratoDepth":
			v.VibratoDepth = f
		}
		return nil
	}
	// formant.<index>.<key>
	parts := strings.SplitN(key, ".", 3)
	if len(parts) != 3 || parts[0] != "formant" {
		return fmt.Errorf("unknown voice key %q", key)
	}
	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return err
	}
	if err := v.resolveFormants(); err != nil {
		return err
	}
	if index < 0 || index >= len(v.Formants) {
		return fmt.Errorf("voice %q has no formant %d", v.Name, index)
	}
	return v.Formants[index].set(parts[2], value)
}

// resolveFormants copies the built-in vowel formants into Formants when it is empty.
func (v *VoiceParams) resolveFormants() error {
	if len(v.Formants) > 0 {
		return nil
	}
	vowel := v.Vowel
	if vowel == "" {
		vowel = v.Name
	}
	formants, ok := VowelFormants(vowel)
	if !ok {
		return fmt.Errorf("voice %q: no formants and no vowel %q", v.Name, vowel)
	}
	v.Formants = formants
	return nil
}

// NewVoice builds the Voice on top of gen.
func (v *VoiceParams) NewVoice(gen *SourceGenerator) (*Voice, error) {
	if err := v.resolveFormants(); err != nil {
		return nil, err
	}
	vib := Vibrato{Rate: v.VibratoRate, Depth: v.VibratoDepth}
	return NewVoice(v.Name, gen, v.Formants, v.Loudness, vib, nil)
}

// ----- Instrument Params ----- //

// InstrumentParams describes an Instrument analyzed from a WAV file.
type InstrumentParams struct {
	Name        string
	File        string
	Start       float64
	SecondStart float64
	BasePitch   float64
	Volume      float64
	Window      string
}

type instrumentJSON struct {
	Name        string  `json:"name"`
	File        string  `json:"file"`
	Start       float64 `json:"start"`
	SecondStart float64 `json:"secondStart,omitempty"`
	BasePitch   float64 `json:"basePitch"`
	Volume      float64 `json:"volume"`
	Window      string  `json:"window,omitempty"`
}

func (p *InstrumentParams) applyJSON(data json.RawMessage) error {
	j := instrumentJSON{Volume: 1}
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("failed to apply JSON to instrument: %w", err)
	}
	p.Name = j.Name
	p.File = j.File
	p.Start = j.Start
	p.SecondStart = j.SecondStart
	p.BasePitch = j.BasePitch
	p.Volume = j.Volume
	p.Window = j.Window
	return nil
}
func (p *InstrumentParams) toJSON() json.RawMessage {
	return toRawMessage(&instrumentJSON{
		Name:        p.Name,
		File:        p.File,
		Start:       p.Start,
		SecondStart: p.SecondStart,
		BasePitch:   p.BasePitch,
		Volume:      p.Volume,
		Window:      p.Window,
	})
}

// SampleLoader reads a mono sample and its rate.
type SampleLoader func(path string) ([]float64, int, error)

// NewInstrument analyzes the configured sample. The analyzed frequencies are
// absolute, so the instrument can render at a sampleRate other than the file's.
func (p *InstrumentParams) NewInstrument(load SampleLoader, sampleRate int) (*Instrument, error) {
	samples, rate, err := load(p.File)
	if err != nil {
		return nil, fmt.Errorf("instrument %q: %w", p.Name, err)
	}
	window, err := WindowByName(p.Window)
	if err != nil {
		return nil, fmt.Errorf("instrument %q: %w", p.Name, err)
	}
	ap := DefaultAnalysisParams()
	ap.Start = p.Start
	if p.SecondStart > 0 {
		ap.SecondStart = p.SecondStart
	}
	ap.Window = window
	partials, err := AnalyzeSample(samples, rate, ap)
	if err != nil {
		return nil, fmt.Errorf("instrument %q: %w", p.Name, err)
	}
	return NewInstrument(p.Name, p.BasePitch, partials, p.Volume, sampleRate, nil)
}

// ----- Track Params ----- //

// TrackParams assigns a singer to a track.
type TrackParams struct {
	Index     int
	Singer    string
	Transpose int
}

type trackJSON struct {
	Index     int    `json:"index"`
	Singer    string `json:"singer"`
	Transpose int    `json:"transpose,omitempty"`
}

func (t *TrackParams) applyJSON(data json.RawMessage) error {
	var j trackJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("failed to apply JSON to track: %w", err)
	}
	t.Index = j.Index
	t.Singer = j.Singer
	t.Transpose = j.Transpose
	return nil
}
func (t *TrackParams) toJSON() json.RawMessage {
	return toRawMessage(&trackJSON{
		Index:     t.Index,
		Singer:    t.Singer,
		Transpose: t.Transpose,
	})
}
func (t *TrackParams) set(key string, value string) error {
	switch key {
	case "singer":
		t.Singer = value
	case "transpose":
		transpose, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		t.Transpose = transpose
	default:
		return fmt.Errorf("unknown track key %q", key)
	}
	return nil
}

func toRawMessage(v interface{}) json.RawMessage {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return json.RawMessage(bytes)
}
