package ipmi

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strings"

	"codeberg.org/mutker/ipmifanctl/internal/errors"
	"codeberg.org/mutker/ipmifanctl/internal/logger"
)

const defaultBinary = "ipmitool"

type Config struct {
	Binary        string
	Host          string
	Username      string
	Password      string
	Interface     string
	SensorPattern string
}

// Client shells out to ipmitool for sensor readings and raw fan commands.
// It targets the local BMC by default, or a remote one when Host is set.
type Client struct {
	cfg     Config
	pattern *regexp.Regexp
}

func NewClient(cfg Config) (*Client, error) {
	errFactory := errors.New()

	if cfg.Binary == "" {
		cfg.Binary = defaultBinary
	}
	if cfg.Interface == "" {
		cfg.Interface = "lanplus"
	}

	client := &Client{cfg: cfg}

	if cfg.SensorPattern != "" {
		pattern, err := regexp.Compile(cfg.SensorPattern)
		if err != nil {
			return nil, errFactory.Wrap(ErrInvalidSensorPattern, err)
		}
		client.pattern = pattern
	}

	return client, nil
}

// args prepends the remote session flags when a BMC host is configured.
func (c *Client) args(command ...string) []string {
	if c.cfg.Host == "" {
		return command
	}

	remote := []string{"-I", c.cfg.Interface, "-H", c.cfg.Host}
	if c.cfg.Username != "" {
		remote = append(remote, "-U", c.cfg.Username)
	}
	if c.cfg.Password != "" {
		remote = append(remote, "-P", c.cfg.Password)
	}

	return append(remote, command...)
}

func (c *Client) run(ctx context.Context, command ...string) (string, error) {
	errFactory := errors.New()

	args := c.args(command...)
	cmd := exec.CommandContext(ctx, c.cfg.Binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug().Str("binary", c.cfg.Binary).Strs("args", args).Msg("Running ipmitool")

	if err := cmd.Run(); err != nil {
		cmdErr := errFactory.Wrap(ErrCommandFailed, err)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			cmdErr = cmdErr.WithData(msg)
		}
		return "", cmdErr
	}

	return stdout.String(), nil
}

// EnableManualControl switches the BMC fan controller to manual mode so
// raw duty cycle commands stick instead of being overridden by firmware.
func (c *Client) EnableManualControl(ctx context.Context) error {
	if _, err := c.run(ctx, "raw", "0x30", "0x45", "0x01", "0x01"); err != nil {
		return errors.New().Wrap(ErrModeChange, err)
	}

	return nil
}

// EnableAutoControl hands fan control back to the BMC firmware.
func (c *Client) EnableAutoControl(ctx context.Context) error {
	if _, err := c.run(ctx, "raw", "0x30", "0x45", "0x01", "0x00"); err != nil {
		return errors.New().Wrap(ErrModeChange, err)
	}

	return nil
}
