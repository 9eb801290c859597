package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockDefaults(t *testing.T) {
	m := &Mock{}

	// matches App when --format is not set, so commands take their plain path
	assert.Equal(t, "", m.OutputFormat())
	assert.True(t, m.NoColor())
	assert.Equal(t, "dev", m.Version())

	v, err := m.Validator()
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestMockOverrides(t *testing.T) {
	m := &Mock{OutputFormatFunc: func() string { return "json" }}
	assert.Equal(t, "json", m.OutputFormat())
}
