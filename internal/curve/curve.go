package curve

import (
	"sort"

	"codeberg.org/mutker/ipmifanctl/internal/errors"
)

// ControlPoint is a configured fan curve anchor: at Temperature degrees
// Celsius the fans should run at Duty hardware units.
type ControlPoint struct {
	Temperature float64
	Duty        float64
}

// Segment is the line duty = Slope*temperature + Intercept, valid for
// temperatures up to and including UpperBound.
type Segment struct {
	UpperBound float64
	Slope      float64
	Intercept  float64
}

// Compile turns a set of control points into contiguous linear segments,
// sorted by ascending temperature. Each segment passes exactly through its
// two anchoring control points. A single control point compiles to one flat
// segment, which makes the curve constant over the whole temperature range.
func Compile(points []ControlPoint) ([]Segment, error) {
	errFactory := errors.New()

	if len(points) == 0 {
		return nil, errFactory.New(ErrNoControlPoints)
	}

	sorted := make([]ControlPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Temperature < sorted[j].Temperature
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Temperature == sorted[i-1].Temperature {
			return nil, errFactory.WithData(ErrDuplicateTemperature, sorted[i].Temperature)
		}
	}

	if len(sorted) == 1 {
		return []Segment{{
			UpperBound: sorted[0].Temperature,
			Slope:      0,
			Intercept:  sorted[0].Duty,
		}}, nil
	}

	segments := make([]Segment, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		p0, p1 := sorted[i-1], sorted[i]
		slope := (p1.Duty - p0.Duty) / (p1.Temperature - p0.Temperature)
		segments = append(segments, Segment{
			UpperBound: p1.Temperature,
			Slope:      slope,
			Intercept:  p1.Duty - slope*p1.Temperature,
		})
	}

	return segments, nil
}
