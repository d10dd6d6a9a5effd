package audio

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ----- Formant ----- //

// Formant describes one resonance of a vowel.
// Width is a Q factor unless Bandwidth is set, in which case it is in Hz.
type Formant struct {
	Freq      float64
	Width     float64
	Bandwidth bool
}

type formantJSON struct {
	Freq      float64 `json:"freq"`
	Width     float64 `json:"width"`
	Bandwidth bool    `json:"bandwidth,omitempty"`
}

func (f *Formant) applyJSON(data json.RawMessage) error {
	var j formantJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("failed to apply JSON to formant: %w", err)
	}
	f.Freq = j.Freq
	f.Width = j.Width
	f.Bandwidth = j.Bandwidth
	return nil
}
func (f *Formant) toJSON() json.RawMessage {
	return toRawMessage(&formantJSON{
		Freq:      f.Freq,
		Width:     f.Width,
		Bandwidth: f.Bandwidth,
	})
}
func (f *Formant) set(key string, value string) error {
	switch key {
	case "freq":
		freq, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		f.Freq = freq
	case "width", "q":
		width, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		f.Width = width
	case "bandwidth":
		f.Bandwidth = value == "true"
	default:
		return fmt.Errorf("unknown formant key %q", key)
	}
	return nil
}

func (f *Formant) filter(samplePeriod float64) (FormantFilter, error) {
	return NewFormantFilter(f.Freq, f.Width, samplePeriod, f.Bandwidth)
}

// ----- Vowels ----- //

const vowelQ = 10

var vowelFreqs = map[string][]float64{
	"a":  {680, 1120, 2760, 3360, 4200},
	"u":  {240, 800, 2480, 3000, 5400},
	"i":  {280, 2120, 2840, 3560, 4280},
	"ae": {800, 1640, 2760, 3560, 4560},
	"e":  {360, 2240, 2880, 3460, 4500},
	"o":  {520, 1000, 2800, 3475, 5600},
}

// VowelNames lists the built-in vowels in a stable order.
var VowelNames = []string{"a", "e", "i", "o", "u", "ae"}

// VowelFormants returns the formant bank of a built-in vowel.
func VowelFormants(name string) ([]Formant, bool) {
	freqs, ok := vowelFreqs[name]
	if !ok {
		return nil, false
	}
	formants := make([]Formant, len(freqs))
	for i, freq := range freqs {
		formants[i] = Formant{Freq: freq, Width: vowelQ}
	}
	return formants, true
}
