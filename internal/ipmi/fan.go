package ipmi

import (
	"context"
	"fmt"

	"codeberg.org/mutker/ipmifanctl/internal/errors"
)

const maxRawDuty = 0x64

// SetDutyCycle sends one raw fan command for the given bank. Duty is in
// hardware units (0-100, 0x64 is full speed).
func (c *Client) SetDutyCycle(ctx context.Context, bank, duty int) error {
	errFactory := errors.New()

	if bank < 0 {
		return errFactory.WithData(ErrInvalidBank, bank)
	}
	if duty < 0 || duty > maxRawDuty {
		return errFactory.WithData(ErrInvalidDuty, duty)
	}

	_, err := c.run(ctx, "raw", "0x30", "0x70", "0x66", "0x01",
		fmt.Sprintf("0x%02x", bank), fmt.Sprintf("0x%02x", duty))
	if err != nil {
		return errFactory.Wrap(ErrActuationFailed, err)
	}

	return nil
}
