package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/ipmifanctl/internal/config"
	"codeberg.org/mutker/ipmifanctl/internal/curve"
	"codeberg.org/mutker/ipmifanctl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetArgs(t *testing.T) {
	t.Helper()
	oldArgs := os.Args
	os.Args = []string{"ipmifanctl"}
	t.Cleanup(func() { os.Args = oldArgs })
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ipmifanctl.toml")
	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err)
	return path
}

func TestLoad(t *testing.T) {
	resetArgs(t)
	path := writeConfig(t, `
interval = 7
hysteresis = 3.5
fan_banks = 2
duty_min = 10
duty_max = 90
monitor = false
log_level = "debug"
telemetry = true
database = "/path/to/telemetry.db"

[[curve]]
temperature = 40.0
duty = 25.0

[[curve]]
temperature = 70.0
duty = 80.0

[ipmi]
host = "bmc01.example.net"
username = "admin"
password = "secret"
sensor_pattern = "(?i)cpu.*temp"
`)
	t.Setenv("IPMIFANCTL_CONFIG", path)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Interval, "Expected Interval 7")
	assert.Equal(t, 3.5, cfg.Hysteresis, "Expected Hysteresis 3.5")
	assert.Equal(t, 2, cfg.FanBanks, "Expected FanBanks 2")
	assert.Equal(t, 10, cfg.DutyMin, "Expected DutyMin 10")
	assert.Equal(t, 90, cfg.DutyMax, "Expected DutyMax 90")
	assert.False(t, cfg.Monitor, "Expected Monitor false")
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
	assert.True(t, cfg.Telemetry, "Expected Telemetry true")
	assert.Equal(t, "/path/to/telemetry.db", cfg.TelemetryDB, "Expected TelemetryDB /path/to/telemetry.db")
	assert.Equal(t, []curve.ControlPoint{
		{Temperature: 40, Duty: 25},
		{Temperature: 70, Duty: 80},
	}, cfg.Curve)
	assert.Equal(t, "bmc01.example.net", cfg.IPMI.Host)
	assert.Equal(t, "admin", cfg.IPMI.Username)
	assert.Equal(t, "secret", cfg.IPMI.Password)
	assert.Equal(t, "(?i)cpu.*temp", cfg.IPMI.SensorPattern)
}

func TestLoadDefaults(t *testing.T) {
	resetArgs(t)
	// A curve is the only thing without a sensible default.
	path := writeConfig(t, `
[[curve]]
temperature = 50.0
duty = 40.0
`)
	t.Setenv("IPMIFANCTL_CONFIG", path)

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, 5, cfg.Interval, "Expected default Interval 5")
	assert.Equal(t, 2.0, cfg.Hysteresis, "Expected default Hysteresis 2")
	assert.Equal(t, 1, cfg.FanBanks, "Expected default FanBanks 1")
	assert.Equal(t, 0, cfg.DutyMin, "Expected default DutyMin 0")
	assert.Equal(t, 100, cfg.DutyMax, "Expected default DutyMax 100")
	assert.False(t, cfg.Monitor, "Expected default Monitor false")
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
	assert.False(t, cfg.Telemetry, "Expected default Telemetry false")
	assert.Equal(t, "ipmitool", cfg.IPMI.Binary, "Expected default ipmitool binary")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	resetArgs(t)
	path := writeConfig(t, `
This is not a valid TOML file
`)
	t.Setenv("IPMIFANCTL_CONFIG", path)

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestLoadRejectsEmptyCurve(t *testing.T) {
	resetArgs(t)
	path := writeConfig(t, `
interval = 5
`)
	t.Setenv("IPMIFANCTL_CONFIG", path)

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrEmptyCurve))
}

func TestLogLevelFlag(t *testing.T) {
	resetArgs(t)
	os.Args = []string{"ipmifanctl", "--log-level", "debug"}

	path := writeConfig(t, `
log_level = "info"

[[curve]]
temperature = 50.0
duty = 40.0
`)
	t.Setenv("IPMIFANCTL_CONFIG", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel to be set by flag")
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Interval:   5,
			Hysteresis: 2,
			FanBanks:   1,
			DutyMin:    0,
			DutyMax:    100,
			LogLevel:   "info",
			Curve:      []curve.ControlPoint{{Temperature: 50, Duty: 40}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		code   errors.ErrorCode
	}{
		{"zero interval", func(c *config.Config) { c.Interval = 0 }, errors.ErrInvalidInterval},
		{"negative hysteresis", func(c *config.Config) { c.Hysteresis = -1 }, errors.ErrInvalidHysteresis},
		{"zero banks", func(c *config.Config) { c.FanBanks = 0 }, errors.ErrInvalidBankCount},
		{"inverted duty bounds", func(c *config.Config) { c.DutyMin = 100; c.DutyMax = 0 }, errors.ErrInvalidDutyBounds},
		{"empty curve", func(c *config.Config) { c.Curve = nil }, errors.ErrEmptyCurve},
		{"bad log level", func(c *config.Config) { c.LogLevel = "loud" }, errors.ErrInvalidLogLevel},
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tc.code))
		})
	}
}
