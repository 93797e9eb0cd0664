package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/xyproto/randomstring"
	"golang.org/x/sync/errgroup"

	"elevsim/src/config"
	"elevsim/src/console"
	"elevsim/src/dispatcher"
	"elevsim/src/logger"
	"elevsim/src/timer"
)

const runIDLen = 8

func main() {
	configPath := flag.String("config", "", "YAML config file")
	envPath := flag.String("env", ".env", "env file with ELEVSIM_* overrides")
	floors := flag.Int("floors", 0, "number of floors (overrides config)")
	elevators := flag.Int("elevators", 0, "number of elevators (overrides config)")
	calls := flag.String("calls", "", `hall calls to issue at startup, e.g. "5:up,3:down"`)
	interactive := flag.Bool("interactive", false, "read hall calls and panel stops from the keyboard")
	logLevel := flag.String("log", "", "log level (overrides config)")
	logFile := flag.String("logfile", "", "also write the log to this file")
	runID := flag.String("run", "", "run identifier, random when empty")
	flag.Parse()

	log := logger.Get()

	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *floors > 0 {
		cfg.NumFloors = *floors
	}
	if *elevators > 0 {
		cfg.NumElevators = *elevators
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	closeLog, err := logger.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	defer closeLog()
	if *runID == "" {
		*runID = randomstring.EnglishFrequencyString(runIDLen)
	}

	hallCalls, err := console.ParseCalls(*calls)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -calls")
	}

	log.Info().
		Str("run", *runID).
		Int("floors", cfg.NumFloors).
		Int("elevators", cfg.NumElevators).
		Dur("travel", cfg.TravelDuration).
		Dur("dwell", cfg.DwellDuration).
		Msg("Starting simulation")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := dispatcher.New(cfg, timer.NewRealClock())
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.Run(ctx) })

	for _, call := range hallCalls {
		d.RequestElevator(call.Floor, call.Dir)
	}

	if *interactive {
		g.Go(func() error {
			defer stop()
			return console.New(d, os.Stdout, cfg.NumElevators).Run(ctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Str("run", *runID).Msg("Simulation stopped")
	}
	log.Info().Str("run", *runID).Msg("Simulation finished")
}
