package ipmi

import "codeberg.org/mutker/ipmifanctl/internal/errors"

const (
	// Configuration Errors
	ErrInvalidSensorPattern = errors.ErrorCode("ipmi_invalid_sensor_pattern")

	// Sampling Errors
	ErrSampleFailed    = errors.ErrorCode("ipmi_sample_failed")
	ErrNoUsableReading = errors.ErrorCode("ipmi_no_usable_reading")

	// Actuation Errors
	ErrActuationFailed = errors.ErrorCode("ipmi_actuation_failed")
	ErrInvalidBank     = errors.ErrorCode("ipmi_invalid_fan_bank")
	ErrInvalidDuty     = errors.ErrorCode("ipmi_invalid_duty_cycle")

	// Command Errors
	ErrCommandFailed = errors.ErrorCode("ipmi_command_failed")
	ErrModeChange    = errors.ErrorCode("ipmi_mode_change_failed")
)
