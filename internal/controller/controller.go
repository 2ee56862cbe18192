package controller

import (
	"context"
	"math"
	"time"

	"codeberg.org/mutker/ipmifanctl/internal/curve"
	"codeberg.org/mutker/ipmifanctl/internal/errors"
	"codeberg.org/mutker/ipmifanctl/internal/logger"
	"codeberg.org/mutker/ipmifanctl/internal/telemetry"
)

// TemperatureSource supplies the aggregated temperature reading for a tick.
type TemperatureSource interface {
	Sample(ctx context.Context) (float64, error)
}

// Actuator is the fan command sink, one call per bank per actuation.
type Actuator interface {
	SetDutyCycle(ctx context.Context, bank, duty int) error
}

// Recorder receives one snapshot per tick, gated or not.
type Recorder interface {
	Record(ctx context.Context, snapshot *telemetry.Snapshot) error
}

// State carries the controller across ticks. Zero-initialized at startup
// and never reset for the life of the process.
type State struct {
	LastTemperature float64
	LastDuty        int
	CurrentDuty     int
}

type Config struct {
	Interval   time.Duration
	Hysteresis float64
	FanBanks   int
	Monitor    bool
}

// Loop owns all mutable controller state. Ticks run strictly sequentially;
// there is no concurrent access.
type Loop struct {
	cfg      Config
	table    *curve.Table
	source   TemperatureSource
	actuator Actuator
	recorder Recorder
	state    State
}

func New(cfg Config, table *curve.Table, source TemperatureSource, actuator Actuator, recorder Recorder) *Loop {
	return &Loop{
		cfg:      cfg,
		table:    table,
		source:   source,
		actuator: actuator,
		recorder: recorder,
	}
}

// ShouldActuate reports whether the temperature has drifted far enough from
// the last actuated temperature to justify re-sending fan commands. The gate
// keys off temperature delta, not duty cycle delta: noise-level jitter must
// not re-send identical commands even where the curve is flat.
func ShouldActuate(newTemperature float64, state State, threshold float64) bool {
	return math.Abs(newTemperature-state.LastTemperature) > threshold
}

// Run drives the loop until the context is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if l.cfg.Interval <= 0 {
		errFactory := errors.New()
		return errFactory.New(errors.ErrInvalidInterval)
	}

	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	if l.cfg.Monitor {
		logger.Info().Msg("Monitor mode activated. Fans will not be actuated.")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.Tick(ctx)
		}
	}
}

// Tick runs one sample-evaluate-gate-actuate-report cycle. Sampling and
// actuation failures are logged and survived; only configuration problems
// can stop the loop, and those are caught before Run.
func (l *Loop) Tick(ctx context.Context) {
	temperature, err := l.source.Sample(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Temperature sample failed, skipping actuation")
		return
	}

	duty := l.table.Evaluate(temperature)
	l.state.CurrentDuty = duty

	actuate := !l.cfg.Monitor && ShouldActuate(temperature, l.state, l.cfg.Hysteresis)

	// Telemetry reflects desired state, not actuated state.
	l.record(ctx, temperature, duty, actuate)

	if !actuate {
		logger.Debug().
			Float64("temperature", temperature).
			Int("desired_duty", duty).
			Msg("Within hysteresis, not actuating")
		return
	}

	for bank := 0; bank < l.cfg.FanBanks; bank++ {
		if err := l.actuator.SetDutyCycle(ctx, bank, duty); err != nil {
			logger.Error().Err(err).Int("bank", bank).Msg("Failed to set fan duty cycle")
		}
	}

	l.state.LastTemperature = temperature
	l.state.LastDuty = duty

	logger.Debug().
		Float64("temperature", temperature).
		Int("duty", duty).
		Int("banks", l.cfg.FanBanks).
		Msg("Fan duty cycle updated")
}

func (l *Loop) record(ctx context.Context, temperature float64, duty int, actuate bool) {
	if l.recorder == nil {
		return
	}

	snapshot := &telemetry.Snapshot{
		Timestamp:   time.Now(),
		Temperature: temperature,
		DesiredDuty: duty,
		LastDuty:    l.state.LastDuty,
		Actuated:    actuate,
	}

	if err := l.recorder.Record(ctx, snapshot); err != nil {
		logger.Warn().Err(err).Msg("Failed to record telemetry")
	}
}

// State returns a copy of the current controller state.
func (l *Loop) State() State {
	return l.state
}
