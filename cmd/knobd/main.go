//go:build linux && !tinygo

// Command knobd reads a rotary encoder on the GPIO lines of a Linux board
// and logs its detents and presses. With -trace it replays a recorded trace
// instead of touching hardware.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dikkadev/prettyslog"

	"encoder-ctrl/config"
	"encoder-ctrl/dial"
	"encoder-ctrl/pins"
	"encoder-ctrl/rotary"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (built-in defaults when empty)")
	chip := flag.String("chip", "gpiochip0", "GPIO chip the encoder is wired to")
	tracePath := flag.String("trace", "", "replay a YAML trace instead of reading GPIO")
	logLevel := flag.String("log-level", "", "overrides logging.level from the config")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	level, err := config.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(prettyslog.NewPrettyslogHandler("knob",
		prettyslog.WithLevel(level),
	))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *chip, *tracePath, logger); err != nil {
		slog.Error("knobd failed", "err", err)
		os.Exit(1)
	}
	slog.Info("knobd terminated gracefully")
}

func run(ctx context.Context, cfg config.Config, chip, tracePath string, logger *slog.Logger) error {
	p := cfg.Encoder.ToEncoderPins()
	opts := cfg.Encoder.ToEncoderOptions(logger)

	if tracePath != "" {
		samples, err := LoadTrace(tracePath)
		if err != nil {
			return err
		}
		script := pins.NewScript()
		enc := rotary.NewEncoder(script, p, opts...)
		level := subscribe(enc, script, logger)

		slog.Info("replaying trace", "path", tracePath, "samples", len(samples))
		if err := Replay(ctx, enc, script, p, samples); err != nil {
			return err
		}
		slog.Info("trace replayed", "position", enc.Position(), "level", level.Level())
		return nil
	}

	lines := pins.NewChip(chip, logger)
	defer func() {
		if err := lines.Close(); err != nil {
			slog.Warn("error releasing gpio lines", "err", err)
		}
	}()

	enc := rotary.NewEncoder(lines, p, opts...)
	subscribe(enc, lines, logger)
	if err := enc.Initialize(ctx); err != nil {
		return err
	}

	slog.Info("knobd is running. press Ctrl+C to exit", "chip", chip)
	<-enc.Done()
	slog.Info("interrupt signal received. shutting down")
	return nil
}

// subscribe logs every event along with the position and the dial level it
// leads to.
func subscribe(enc *rotary.Encoder, clock pins.Sampler, logger *slog.Logger) *dial.Dial {
	level := dial.New(clock.NowMillis, 0)
	level.Attach(enc)

	logTurn := func(ev rotary.Event) func() {
		return func() {
			logger.Info("turned", "direction", ev, "position", enc.Position(), "level", level.Level())
		}
	}
	enc.OnTurned(rotary.Clockwise, logTurn(rotary.Clockwise))
	enc.OnTurned(rotary.CounterClockwise, logTurn(rotary.CounterClockwise))
	enc.OnPressed(func() {
		logger.Info("pressed", "position", enc.Position())
	})
	return level
}
