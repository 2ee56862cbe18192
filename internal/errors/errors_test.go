package errors_test

import (
	"testing"

	"codeberg.org/mutker/ipmifanctl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	errFactory := errors.New()

	err := errFactory.New(errors.ErrInvalidInterval)
	assert.Equal(t, "Invalid interval value", err.Error())

	err = errFactory.WithData(errors.ErrInvalidInterval, 0)
	assert.Equal(t, "Invalid interval value: 0", err.Error())

	unknown := errFactory.New(errors.ErrorCode("no_such_code"))
	assert.Equal(t, "no_such_code", unknown.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	errFactory := errors.New()

	cause := errFactory.New(errors.ErrInternal)
	wrapped := errFactory.Wrap(errors.ErrMainLoop, cause)

	require.ErrorIs(t, wrapped, cause)
	assert.Equal(t, errors.ErrMainLoop, wrapped.Code())
}

func TestHasCode(t *testing.T) {
	errFactory := errors.New()

	cause := errFactory.New(errors.ErrInvalidInterval)
	wrapped := errFactory.Wrap(errors.ErrInvalidConfig, cause)

	assert.True(t, errors.HasCode(wrapped, errors.ErrInvalidConfig))
	assert.True(t, errors.HasCode(wrapped, errors.ErrInvalidInterval))
	assert.False(t, errors.HasCode(wrapped, errors.ErrMainLoop))
	assert.False(t, errors.HasCode(nil, errors.ErrInternal))
}
