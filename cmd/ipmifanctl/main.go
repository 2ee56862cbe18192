package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/ipmifanctl/internal/config"
	"codeberg.org/mutker/ipmifanctl/internal/controller"
	"codeberg.org/mutker/ipmifanctl/internal/curve"
	"codeberg.org/mutker/ipmifanctl/internal/errors"
	"codeberg.org/mutker/ipmifanctl/internal/ipmi"
	"codeberg.org/mutker/ipmifanctl/internal/logger"
	"codeberg.org/mutker/ipmifanctl/internal/pid"
	"codeberg.org/mutker/ipmifanctl/internal/telemetry"
)

const cleanupTimeout = 10 * time.Second

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug().Msg("Config loaded")
}

func main() {
	errFactory := errors.New()

	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer pid.Remove()

	segments, err := curve.Compile(cfg.Curve)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to compile fan curve")
	}
	table := curve.NewTable(segments, cfg.DutyMin, cfg.DutyMax)
	logger.Debug().Int("segments", len(segments)).Msg("Fan curve compiled")

	client, err := ipmi.NewClient(ipmi.Config{
		Binary:        cfg.IPMI.Binary,
		Host:          cfg.IPMI.Host,
		Username:      cfg.IPMI.Username,
		Password:      cfg.IPMI.Password,
		Interface:     cfg.IPMI.Interface,
		SensorPattern: cfg.IPMI.SensorPattern,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize IPMI client")
	}

	collector, err := telemetry.NewService(telemetry.Config{
		Enabled: cfg.Telemetry,
		DBPath:  cfg.TelemetryDB,
	})
	if err != nil {
		// Telemetry must never block the control decision, startup included
		logger.Warn().Err(err).Msg("telemetry unavailable, continuing without it")
		collector, _ = telemetry.NewService(telemetry.Config{})
	}
	defer collector.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if !cfg.Monitor {
		if err := client.EnableManualControl(ctx); err != nil {
			logger.FatalWithCode(errFactory.Wrap(errors.ErrInitFailed, err)).
				Msg("failed to enable manual fan control")
		}
	}

	loop := controller.New(controller.Config{
		Interval:   time.Duration(cfg.Interval) * time.Second,
		Hysteresis: cfg.Hysteresis,
		FanBanks:   cfg.FanBanks,
		Monitor:    cfg.Monitor,
	}, table, client, client, collector)

	if err := loop.Run(ctx); err != nil {
		logger.ErrorWithCode(errFactory.Wrap(errors.ErrMainLoop, err)).Msg("error in main loop")
	}

	cleanup(client)
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func cleanup(client *ipmi.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	if !cfg.Monitor {
		if err := client.EnableAutoControl(ctx); err != nil {
			logger.Error().Err(err).Msg("failed to restore automatic fan control")
		}
	}
	logger.Info().Msg("Exiting...")
}
