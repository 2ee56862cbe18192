package ipmi

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"codeberg.org/mutker/ipmifanctl/internal/errors"
)

// Sample returns the hottest usable temperature reading from the BMC sensor
// repository, in degrees Celsius. Rows without an "ok" status or without a
// numeric reading are discarded, as are sensors not matching the configured
// name pattern.
func (c *Client) Sample(ctx context.Context) (float64, error) {
	errFactory := errors.New()

	out, err := c.run(ctx, "sdr", "type", "Temperature")
	if err != nil {
		return 0, errFactory.Wrap(ErrSampleFailed, err)
	}

	readings := parseSDR(out, c.pattern)
	if len(readings) == 0 {
		return 0, errFactory.New(ErrNoUsableReading)
	}

	hottest := readings[0]
	for _, reading := range readings[1:] {
		if reading > hottest {
			hottest = reading
		}
	}

	return hottest, nil
}

var readingPattern = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*(?:degrees|°)`)

// parseSDR extracts temperature values from ipmitool sdr table output.
// Expected row shape:
//
//	CPU1 Temp | 30h | ok | 3.1 | 54 degrees C
func parseSDR(out string, pattern *regexp.Regexp) []float64 {
	var readings []float64

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, "|")
		if len(fields) < 5 {
			continue
		}

		name := strings.TrimSpace(fields[0])
		status := strings.TrimSpace(fields[2])
		value := strings.TrimSpace(fields[4])

		if pattern != nil && !pattern.MatchString(name) {
			continue
		}
		if !strings.EqualFold(status, "ok") {
			continue
		}

		match := readingPattern.FindStringSubmatch(value)
		if match == nil {
			continue
		}

		reading, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}

		readings = append(readings, reading)
	}

	return readings
}
