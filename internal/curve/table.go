package curve

import "math"

// Table owns the compiled segments together with the valid duty cycle
// output range. Immutable after construction.
type Table struct {
	segments []Segment
	minDuty  int
	maxDuty  int
}

func NewTable(segments []Segment, minDuty, maxDuty int) *Table {
	return &Table{
		segments: segments,
		minDuty:  minDuty,
		maxDuty:  maxDuty,
	}
}

// Evaluate maps a temperature to a duty cycle. The first segment (in
// ascending order of upper bound) whose upper bound is at or above the
// temperature applies; a temperature equal to a control point therefore
// belongs to the lower segment. Temperatures outside the configured range
// extrapolate along the first or last segment, so a reading above the top
// control point keeps escalating fan speed instead of failing closed.
// The result is rounded half away from zero and clamped to the duty bounds.
func (t *Table) Evaluate(temperature float64) int {
	segment := t.segments[len(t.segments)-1]
	for _, candidate := range t.segments {
		if candidate.UpperBound >= temperature {
			segment = candidate
			break
		}
	}

	duty := int(math.Round(segment.Slope*temperature + segment.Intercept))

	return clamp(duty, t.minDuty, t.maxDuty)
}

func clamp(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}

	if value > maxValue {
		return maxValue
	}

	return value
}
