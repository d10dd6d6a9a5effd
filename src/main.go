package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/jinjor/midi-singer/src/audio"
	"github.com/jinjor/midi-singer/src/playback"
	"github.com/jinjor/midi-singer/src/score"
	"github.com/jinjor/midi-singer/src/wavio"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stderr, "", log.Lshortfile)

	var (
		configPath  string
		outPath     string
		presetDir   string
		port        string
		sets        []string
		jobs        int
		play        bool
		record      bool
		dump        bool
		printConfig bool
	)
	pflag.StringVarP(&configPath, "config", "c", "", "JSON config file")
	pflag.StringVarP(&outPath, "out", "o", "", "output WAV file (default: input name with .wav)")
	pflag.StringVar(&presetDir, "presets", "", "directory of voice presets (_list.json + <name>.json)")
	pflag.StringVar(&port, "port", "", "MIDI IN port to record from (default: first)")
	pflag.StringArrayVarP(&sets, "set", "s", nil, "override a config value, key=value (repeatable)")
	pflag.IntVarP(&jobs, "jobs", "j", 0, "notes rendered concurrently (default: NumCPU)")
	pflag.BoolVarP(&play, "play", "p", false, "play the result after rendering")
	pflag.BoolVarP(&record, "record", "r", false, "record a take from MIDI IN until interrupted instead of reading a file")
	pflag.BoolVar(&dump, "dump", false, "dump the scheduled notes")
	pflag.BoolVar(&printConfig, "print-config", false, "print the effective config and exit")
	pflag.Parse()

	logger.Printf("NumCPU: %v\n", runtime.NumCPU())

	cfg, err := loadConfig(configPath, presetDir, sets)
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}
	if pflag.CommandLine.Changed("jobs") {
		cfg.Jobs = jobs
	}
	if printConfig {
		fmt.Println(string(cfg.ToJSON()))
		return
	}

	ctx := context.Background()
	var s *audio.Score
	if record {
		recordCtx, stop := withSignals(ctx)
		s, err = recordScore(recordCtx, port)
		stop()
		if outPath == "" {
			outPath = "take-" + time.Now().Format("20060102-150405") + ".wav"
		}
	} else {
		if pflag.NArg() == 0 {
			logger.Fatalf("usage: %s [flags] input.mid", filepath.Base(os.Args[0]))
		}
		input := pflag.Arg(0)
		s, err = score.Load(input)
		if outPath == "" {
			outPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".wav"
		}
	}
	if err != nil {
		logger.Fatalf("error: %v\n", err)
	}

	ctx, stop := withSignals(ctx)
	defer stop()

	out, err := render(ctx, cfg, s, dump)
	if err != nil {
		logger.Fatalf("render error: %v\n", err)
	}
	if err := wavio.Write(outPath, out, cfg.SampleRate); err != nil {
		logger.Fatalf("error writing output file: %v", err)
	}
	logger.Printf("wrote %s (%.2f s)\n", outPath, float64(len(out))/float64(cfg.SampleRate))

	if play {
		if err := playback.Play(ctx, out, cfg.SampleRate, logger); err != nil {
			logger.Fatalf("playback error: %v\n", err)
		}
	}
	logger.Println("main() ended.")
}

func loadConfig(path string, presetDir string, sets []string) (*audio.Config, error) {
	cfg := audio.NewConfig()
	if path != "" {
		bytes, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.ApplyJSON(bytes); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if presetDir != "" {
		if err := audio.NewPresetManager(presetDir).ApplyTo(cfg); err != nil {
			return nil, err
		}
	}
	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: expected key=value", set)
		}
		if err := cfg.Set(key, value); err != nil {
			return nil, fmt.Errorf("--set %q: %w", set, err)
		}
	}
	return cfg, nil
}

// withSignals returns a context that is cancelled on the first interrupt.
func withSignals(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case sig := <-signalCh:
			logger.Printf("Caught signal %s: shutting down...\n", sig)
			cancel()
		case <-done:
		}
	}()
	return ctx, func() {
		signal.Stop(signalCh)
		close(done)
		cancel()
	}
}

func recordScore(ctx context.Context, port string) (*audio.Score, error) {
	logger.Println("recording, press Ctrl-C to stop")
	take, err := score.Record(ctx, port, logger)
	if err != nil {
		return nil, err
	}
	return take.Score(), nil
}

func render(ctx context.Context, cfg *audio.Config, s *audio.Score, dump bool) ([]float64, error) {
	song, err := audio.NewSong(s, cfg.SongParams(), logger)
	if err != nil {
		return nil, err
	}
	singers, err := cfg.Singers(wavio.Read)
	if err != nil {
		return nil, err
	}
	if err := cfg.AssignTracks(song, singers, logger); err != nil {
		return nil, err
	}
	if dump {
		spew.Fdump(os.Stderr, song.Notes())
	}
	logger.Printf("rendering %.2f s, tick %.6f s\n", song.Length(), song.TickLength())

	// progress is logged every 5 s until the render returns
	var out []float64
	g, ctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	g.Go(func() error {
		defer close(done)
		var err error
		out, err = song.Generate(ctx)
		return err
	})
	g.Go(func() error {
		start := time.Now()
		t := time.NewTicker(5 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-done:
				logger.Printf("rendered in %v\n", time.Since(start).Round(time.Millisecond))
				return nil
			case <-ctx.Done():
				return nil
			case <-t.C:
				logger.Printf("still rendering... %v\n", time.Since(start).Round(time.Second))
			}
		}
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
