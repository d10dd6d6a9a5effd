package main

import (
	"context"
	"log"
	"path/filepath"

	"github.com/jinjor/midi-singer/src/audio"
	"github.com/jinjor/midi-singer/src/wavio"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const responseSize = 4096

func main() {
	var (
		pitch    float64
		duration float64
		rate     int
		partials int
	)
	pflag.Float64Var(&pitch, "pitch", 57, "pitch in semitones")
	pflag.Float64Var(&duration, "duration", 1, "length in seconds")
	pflag.IntVar(&rate, "rate", 44100, "sample rate")
	pflag.IntVar(&partials, "partials", 30, "harmonics in the source")
	pflag.Parse()
	dir := pflag.Arg(0)
	if dir == "" {
		panic("dir is not passed")
	}
	log.SetFlags(log.Lshortfile)

	gen, err := audio.NewSourceGenerator(partials, rate, 0, nil)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	g, _ := errgroup.WithContext(context.Background())
	for _, name := range audio.VowelNames {
		name := name
		g.Go(func() error {
			formants, _ := audio.VowelFormants(name)
			voice, err := audio.NewVoice(name, gen, formants, 1, audio.Vibrato{}, nil)
			if err != nil {
				return err
			}
			logResponse(name, formants, rate)
			sound, err := voice.Sing(pitch, duration, 1)
			if err != nil {
				return err
			}
			out := make([]float64, len(sound))
			copy(out, sound)
			audio.Normalize(out)
			path := filepath.Join(dir, name+".wav")
			if err := wavio.Write(path, out, rate); err != nil {
				return err
			}
			log.Printf("saved %s\n", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("Successfully generated vowels.")
}

// logResponse prints where each formant filter actually peaks.
func logResponse(name string, formants []audio.Formant, rate int) {
	binStep := float64(rate) / responseSize
	for _, f := range formants {
		filter, err := audio.NewFormantFilter(f.Freq, f.Width, 1/float64(rate), f.Bandwidth)
		if err != nil {
			log.Printf("%s: %v\n", name, err)
			continue
		}
		response := filter.FrequencyResponse(responseSize)
		peak := 0
		for i := 1; i < len(response); i++ {
			if response[i] > response[peak] {
				peak = i
			}
		}
		log.Printf("%s: formant %.0f Hz peaks at %.0f Hz\n", name, f.Freq, float64(peak)*binStep)
	}
}
