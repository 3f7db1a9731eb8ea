package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/thelolagemann/gbatimers/internal/gba"
	"github.com/thelolagemann/gbatimers/internal/timer"
	"github.com/thelolagemann/gbatimers/pkg/log"
	"github.com/thelolagemann/gbatimers/pkg/savestate"
	"github.com/thelolagemann/gbatimers/pkg/scenario"
	"github.com/thelolagemann/gbatimers/pkg/trace"
	"github.com/thelolagemann/gbatimers/pkg/utils"
	"github.com/thelolagemann/gbatimers/pkg/wavwriter"
)

func main() {
	scriptFile := flag.String("script", "", "The scenario script to run (plain, .gz, .zip or .7z)")
	stateFile := flag.String("state", "", "The save state to start from, updated when the script completes")
	plotFile := flag.String("plot", "", "Write a PNG graph of the timer counters to this file")
	wavFile := flag.String("wav", "", "Record the sound FIFO output to this WAV file")
	sampleRate := flag.Int("rate", 32768, "The sample rate of the WAV recording")
	listen := flag.String("listen", "", "Stream the timer trace to websocket clients on this address")
	prescale := flag.Uint("prescale", 0, "Additional prescale bits applied to every timer (0-5)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logger := log.NewWithWriter(os.Stderr, *debug)
	if err := run(logger, config{
		script:     *scriptFile,
		state:      *stateFile,
		plot:       *plotFile,
		wav:        *wavFile,
		sampleRate: *sampleRate,
		listen:     *listen,
		prescale:   *prescale,
	}); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

type config struct {
	script, state, plot, wav string
	sampleRate               int
	listen                   string
	prescale                 uint
}

func run(logger log.Logger, cfg config) error {
	if cfg.script == "" {
		return errors.New("no script given (-script)")
	}
	if cfg.prescale > timer.MaxForcedPrescale {
		return fmt.Errorf("prescale %d out of range (0-%d)", cfg.prescale, timer.MaxForcedPrescale)
	}

	data, err := utils.LoadFile(cfg.script)
	if err != nil {
		return err
	}
	script, err := scenario.Parse(bytes.NewReader(data))
	if err != nil {
		return err
	}

	opts := []gba.Opt{
		gba.WithLogger(logger),
		gba.WithForcedPrescale(uint8(cfg.prescale)),
	}

	if cfg.state != "" {
		state, err := savestate.ReadFile(cfg.state)
		switch {
		case err == nil:
			opts = append(opts, gba.WithState(state))
		case errors.Is(err, os.ErrNotExist):
			logger.Infof("no save state at %s, starting from power on", cfg.state)
		default:
			return err
		}
	}

	var observers []func(timer.Trace)
	var recorder *trace.Recorder
	if cfg.plot != "" {
		recorder = trace.NewRecorder(0)
		observers = append(observers, recorder.Observe)
	}

	if cfg.listen != "" {
		hub := trace.NewHub(logger)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go hub.Run(ctx)

		ln, err := net.Listen("tcp", cfg.listen)
		if err != nil {
			return err
		}
		srv := &http.Server{Handler: hub}
		go srv.Serve(ln)
		defer srv.Close()

		logger.Infof("waiting for a trace client on ws://%s", ln.Addr())
		for hub.Connected() == 0 {
			time.Sleep(10 * time.Millisecond)
		}
		observers = append(observers, hub.Observe)
	}

	if len(observers) > 0 {
		opts = append(opts, gba.WithObserver(func(tr timer.Trace) {
			for _, observe := range observers {
				observe(tr)
			}
		}))
	}

	var wav *wavwriter.WavWriter
	if cfg.wav != "" {
		wav, err = wavwriter.New(cfg.wav, cfg.sampleRate)
		if err != nil {
			return err
		}
		opts = append(opts, gba.WithSink(wav))
	}

	g, err := gba.New(opts...)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := scenario.NewRunner(g, os.Stdout, logger).Run(script); err != nil {
		return err
	}
	logger.Infof("ran %d commands to cycle %d in %s", len(script), g.Cycle(), time.Since(start))

	if cfg.state != "" {
		if err := savestate.WriteFile(cfg.state, g.State()); err != nil {
			return err
		}
		logger.Infof("saved state to %s", cfg.state)
	}
	if wav != nil {
		if err := wav.Close(); err != nil {
			return err
		}
		logger.Infof("wrote %d frames to %s", wav.Len(), cfg.wav)
	}
	if recorder != nil {
		f, err := os.Create(cfg.plot)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := trace.Plot(recorder.Records(), f, 1024, 512); err != nil {
			return err
		}
		logger.Infof("wrote counter graph to %s", cfg.plot)
	}

	return nil
}
