// Package wavio reads and writes mono PCM WAV files.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bitDepth = 16

// ErrInvalidFile is returned when a file is not a readable WAV.
var ErrInvalidFile = errors.New("invalid wav file")

// ToPCM16 scales samples in [-1, 1] to 16-bit integers, clipping what is outside.
func ToPCM16(samples []float64) []int {
	data := make([]int, len(samples))
	for i, x := range samples {
		v := math.Round(x * 32767)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		data[i] = int(v)
	}
	return data
}

// Write stores samples as a 16-bit mono WAV file.
func Write(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, samples, sampleRate); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// Encode writes a 16-bit mono WAV stream to w.
func Encode(w io.WriteSeeker, samples []float64, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, bitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Data:           ToPCM16(samples),
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

// Read loads the first channel of a PCM WAV file as samples in [-1, 1].
func Read(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	samples, sampleRate, err := Decode(f)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	return samples, sampleRate, nil
}

// Decode reads the first channel of a PCM WAV stream.
func Decode(r io.ReadSeeker) ([]float64, int, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, 0, ErrInvalidFile
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	channels := int(decoder.NumChans)
	if channels < 1 {
		return nil, 0, ErrInvalidFile
	}
	scale := math.Pow(2, float64(decoder.BitDepth)-1)
	samples := make([]float64, len(buf.Data)/channels)
	for i := range samples {
		samples[i] = float64(buf.Data[i*channels]) / scale
	}
	return samples, int(decoder.SampleRate), nil
}
