package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/hapticlab/envsynth"
	"github.com/hapticlab/envsynth/internal/thermal"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to a YAML rig config")
		risePath    = flag.String("rise", "", "JSON rise coefficient triple (overrides config)")
		returnPath  = flag.String("return", "", "JSON return coefficient triple (overrides config)")
		total       = flag.Float64("duration", 0, "total envelope duration in seconds (0 = config default)")
		active      = flag.Float64("active", 0, "active duration in seconds (0 = same as total)")
		seed        = flag.Uint64("seed", 0, "seed for random envelopes (0 = random)")
		envPath     = flag.String("envelopes", "", `JSON file with "vib_amp", "vib_freq" and "thr_amp" sample arrays`)
		outPath     = flag.String("out", "", `write the payload JSON here ("-" for stdout)`)
		result      = flag.Bool("result", false, "write the result form (thermal_signal) instead of the play form")
		wavPath     = flag.String("wav", "", "write a stereo WAV (vibration left, thermal right)")
		full        = flag.Bool("full", false, "render the whole total duration instead of the active part")
		play        = flag.Bool("play", false, "preview the vibration channel on the audio device")
		playPayload = flag.String("play-payload", "", "preview a previously written payload file and exit")
		volume      = flag.Float64("volume", 1.0, "preview volume scalar")
		loop        = flag.Bool("loop", false, "loop the preview until interrupted")
	)
	flag.Parse()

	if *playPayload != "" {
		f, err := os.Open(*playPayload)
		if err != nil {
			log.Fatal(err)
		}
		p, err := envsynth.DecodePayload(f)
		f.Close()
		if err != nil {
			log.Fatal(err)
		}
		preview(p.Signal(), *volume, *loop)
		return
	}

	cfg, err := loadConfig(*configPath, *risePath, *returnPath)
	if err != nil {
		log.Fatal(err)
	}
	opts := []envsynth.SessionOption{envsynth.WithConfig(cfg)}
	if *seed != 0 {
		opts = append(opts, envsynth.WithRand(rand.New(rand.NewPCG(*seed, *seed))))
	}
	s, err := envsynth.NewSession(opts...)
	if err != nil {
		log.Fatal(err)
	}
	if *total > 0 {
		if err := s.SetTotalDuration(*total); err != nil {
			log.Fatal(err)
		}
	}
	if *active > 0 {
		if err := s.SetActiveDuration(*active); err != nil {
			log.Fatal(err)
		}
	}
	if *envPath != "" {
		if err := loadEnvelopes(s, *envPath); err != nil {
			log.Fatal(err)
		}
	} else {
		s.Randomize()
	}

	sig, err := s.Generate(*full)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprintf(os.Stderr, "rendered %.2fs of %.2fs (%d samples at %d Hz)\n",
		sig.Duration, sig.TotalDuration, sig.Samples(), sig.SampleRate)

	if *outPath != "" {
		p := envsynth.PlayPayload(sig)
		if *result {
			p = envsynth.ResultPayload(sig)
		}
		if err := writePayload(*outPath, p); err != nil {
			log.Fatal(err)
		}
	}
	if *wavPath != "" {
		if err := envsynth.SaveWAV(*wavPath, sig, cfg.Thermal); err != nil {
			log.Fatal(err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", *wavPath)
	}
	if *play {
		preview(sig, *volume, *loop)
	}
}

func loadConfig(path, risePath, returnPath string) (envsynth.Config, error) {
	cfg := envsynth.DefaultConfig()
	if strings.TrimSpace(path) != "" {
		var err error
		if cfg, err = envsynth.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	if risePath != "" {
		c, err := thermal.LoadCoeffs(risePath)
		if err != nil {
			return cfg, err
		}
		cfg.RiseCoeffs = c
	}
	if returnPath != "" {
		c, err := thermal.LoadCoeffs(returnPath)
		if err != nil {
			return cfg, err
		}
		cfg.ReturnCoeffs = c
	}
	return cfg, nil
}

func loadEnvelopes(s *envsynth.Session, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc map[string][]float64
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for name, samples := range doc {
		k, err := envsynth.ParseKind(name)
		if err != nil {
			return err
		}
		if err := s.SetInput(k, samples); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func writePayload(path string, p envsynth.Payload) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return p.Encode(w)
}

func preview(sig envsynth.Signal, volume float64, loop bool) {
	pl, err := envsynth.NewPlayer(envsynth.PreviewSampleRate, envsynth.WithLoopPlayback(loop))
	if err != nil {
		log.Fatal(err)
	}
	pl.SetMasterVolume(volume)
	ch := pl.Watch()
	if err := pl.Play(sig); err != nil {
		log.Fatal(err)
	}
	loopCount := 0
	for event := range ch {
		switch event.Kind {
		case envsynth.EventPlaybackEnded:
			fmt.Println("playback completed")
			pl.Wait()
			return
		case envsynth.EventLoopCompleted:
			loopCount++
			fmt.Printf("loop %d completed\n", loopCount)
		}
	}
}
