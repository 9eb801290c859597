package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/pyhf/hfval/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "rule set",
			ID:       "legacy",
		}
		assert.Equal(t, "rule set legacy not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("measurement", "NormalMeasurement")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestMissingParameterError(t *testing.T) {
	err := pkgerrors.NewMissingParameterError("alpha_JES", "JES", "pyhf")
	assert.Equal(t, "parameter JES missing from pyhf file", err.Error())
	assert.True(t, pkgerrors.IsNotFound(err))

	var missing *pkgerrors.MissingParameterError
	require.True(t, errors.As(fmt.Errorf("compare: %w", err), &missing))
	assert.Equal(t, "alpha_JES", missing.Parameter)
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "expand_policy",
			Message: "unknown policy",
		}
		assert.Equal(t, "validation failed for field expand_policy: unknown policy", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "empty rule set"}
		assert.Equal(t, "validation failed: empty rule set", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestParseError(t *testing.T) {
	base := errors.New("unexpected token")

	err := pkgerrors.NewParseError("json", "ws.json", "bad document", base)
	assert.Equal(t, "parse error in json file ws.json: bad document", err.Error())
	assert.ErrorIs(t, err, base)

	err.Line = 12
	assert.Equal(t, "parse error in json at ws.json:12: bad document", err.Error())

	assert.Equal(t, "report parse error: x", pkgerrors.NewParseError("report", "", "x", nil).Error())
}

func TestWrapHelpers(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapIO("read", "x", nil))
	assert.Nil(t, pkgerrors.WrapParse("json", "x", nil))
	assert.Nil(t, pkgerrors.WrapResource("load", "workspace", "", nil))
	assert.Nil(t, pkgerrors.WrapValidation("rules", nil))

	base := errors.New("boom")

	var ioErr *pkgerrors.IOError
	require.ErrorAs(t, pkgerrors.WrapIO("open", "/tmp/ws.json", base), &ioErr)
	assert.Equal(t, "IO error during open of /tmp/ws.json: boom", ioErr.Error())
	assert.ErrorIs(t, ioErr, base)

	var resErr *pkgerrors.ResourceError
	require.ErrorAs(t, pkgerrors.WrapResource("apply", "patch", "signal_500_100", base), &resErr)
	assert.Equal(t, "failed to apply patch signal_500_100: boom", resErr.Error())

	assert.True(t, pkgerrors.IsValidationError(pkgerrors.WrapValidation("rules", base)))

	cfgErr := pkgerrors.NewConfigError("rulesets", "bad regex", base)
	assert.Equal(t, "configuration error in rulesets: bad regex", cfgErr.Error())
	assert.ErrorIs(t, cfgErr, base)
}
