package telemetry

import (
	"context"
	"time"
)

// Collector defines the core domain interface
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Repository defines the interface for telemetry data storage
type Repository interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Snapshot is one control loop tick. DesiredDuty is the evaluator output
// before the actuation gate; LastDuty is the duty cycle most recently sent
// to the hardware.
type Snapshot struct {
	Timestamp   time.Time
	Temperature float64
	DesiredDuty int
	LastDuty    int
	Actuated    bool
}
