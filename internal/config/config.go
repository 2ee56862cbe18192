package config

import (
	"os"
	"strings"

	"codeberg.org/mutker/ipmifanctl/internal/curve"
	"codeberg.org/mutker/ipmifanctl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultInterval    = 5
	defaultHysteresis  = 2.0
	defaultFanBanks    = 1
	defaultDutyMin     = 0
	defaultDutyMax     = 100
	defaultTelemetryDB = "/var/lib/ipmifanctl/telemetry.db"

	envConfigPath = "IPMIFANCTL_CONFIG"
	envPrefix     = "IPMIFANCTL"
)

type Config struct {
	Interval    int                  `mapstructure:"interval"`
	Hysteresis  float64              `mapstructure:"hysteresis"`
	FanBanks    int                  `mapstructure:"fan_banks"`
	DutyMin     int                  `mapstructure:"duty_min"`
	DutyMax     int                  `mapstructure:"duty_max"`
	Monitor     bool                 `mapstructure:"monitor"`
	LogLevel    string               `mapstructure:"log_level"`
	Telemetry   bool                 `mapstructure:"telemetry"`
	TelemetryDB string               `mapstructure:"database"`
	Curve       []curve.ControlPoint `mapstructure:"curve"`
	IPMI        IPMIConfig           `mapstructure:"ipmi"`
}

type IPMIConfig struct {
	Binary        string `mapstructure:"binary"`
	Host          string `mapstructure:"host"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	Interface     string `mapstructure:"interface"`
	SensorPattern string `mapstructure:"sensor_pattern"`
}

// Load reads configuration from flags, an optional TOML file and the
// environment, in that order of precedence, then validates it.
func Load() (*Config, error) {
	errFactory := errors.New()

	flags := pflag.NewFlagSet("ipmifanctl", pflag.ContinueOnError)
	configFile := flags.String("config", "", "Path to configuration file")
	flags.Int("interval", defaultInterval, "Seconds between control loop ticks")
	flags.Float64("hysteresis", defaultHysteresis, "Temperature change required before re-actuating")
	flags.Int("fan-banks", defaultFanBanks, "Number of fan banks to actuate")
	flags.Bool("monitor", false, "Only evaluate and report, never touch the fans")
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	flags.Bool("telemetry", false, "Enable telemetry collection")
	flags.String("database", defaultTelemetryDB, "Path to the telemetry database")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("hysteresis", defaultHysteresis)
	v.SetDefault("fan_banks", defaultFanBanks)
	v.SetDefault("duty_min", defaultDutyMin)
	v.SetDefault("duty_max", defaultDutyMax)
	v.SetDefault("monitor", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", defaultTelemetryDB)
	v.SetDefault("ipmi.binary", "ipmitool")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := *configFile
	if path == "" {
		path = os.Getenv(envConfigPath)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	} else {
		v.SetConfigName("ipmifanctl")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errFactory.Wrap(errors.ErrReadConfig, err)
			}
		}
	}

	// Override config file values with command line flags
	flags.Visit(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		v.Set(key, f.Value.String())
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks everything that must hold before the control loop starts.
// Any violation is fatal at startup.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.Hysteresis < 0 {
		return errFactory.WithData(errors.ErrInvalidHysteresis, c.Hysteresis)
	}
	if c.FanBanks < 1 {
		return errFactory.WithData(errors.ErrInvalidBankCount, c.FanBanks)
	}
	if c.DutyMin < 0 || c.DutyMin >= c.DutyMax {
		return errFactory.WithData(errors.ErrInvalidDutyBounds, []int{c.DutyMin, c.DutyMax})
	}
	if len(c.Curve) == 0 {
		return errFactory.New(errors.ErrEmptyCurve)
	}
	if !isValidLogLevel(c.LogLevel) {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warning", "warn", "error":
		return true
	default:
		return false
	}
}
