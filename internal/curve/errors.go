package curve

import "codeberg.org/mutker/ipmifanctl/internal/errors"

const (
	ErrNoControlPoints      = errors.ErrorCode("curve_no_control_points")
	ErrDuplicateTemperature = errors.ErrorCode("curve_duplicate_temperature")
)
