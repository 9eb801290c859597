package pyhf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhf/hfval/pkg/errors"
)

func loadModel(t *testing.T) *Model {
	t.Helper()
	ws, err := LoadWorkspace(testdata("workspace.json"))
	require.NoError(t, err)
	m, err := ws.Model("")
	require.NoError(t, err)
	return m
}

func TestModelParameterOrder(t *testing.T) {
	m := loadModel(t)

	assert.Equal(t, []string{"JES", "Lumi", "mu_SIG", "staterror_CR", "staterror_SR", "xsec"}, m.Names())
	assert.Equal(t, 7, m.Size())
	assert.Equal(t, "mu_SIG", m.POI)
	assert.Equal(t, "NormalMeasurement", m.Measurement)

	slices := map[string]Slice{
		"JES":          {0, 1},
		"Lumi":         {1, 2},
		"mu_SIG":       {2, 3},
		"staterror_CR": {3, 4},
		"staterror_SR": {4, 6},
		"xsec":         {6, 7},
	}
	for name, want := range slices {
		ps, ok := m.Parameter(name)
		require.True(t, ok, name)
		assert.Equal(t, want, ps.Slice, name)
	}

	_, ok := m.Parameter("alpha_JES")
	assert.False(t, ok)
}

func TestModelInitsAndBounds(t *testing.T) {
	m := loadModel(t)

	assert.Equal(t, []float64{0, 1, 0.5, 1, 1, 1, 0}, m.InitVector())

	lumi, _ := m.Parameter("Lumi")
	assert.Equal(t, TypeLumi, lumi.Type)
	assert.Equal(t, [][2]float64{{0.915, 1.085}}, lumi.Bounds)

	jes, _ := m.Parameter("JES")
	assert.Equal(t, [][2]float64{{-5, 5}}, jes.Bounds)

	mu, _ := m.Parameter("mu_SIG")
	assert.Equal(t, [][2]float64{{0, 5}}, mu.Bounds)
}

func TestModelValuesWithoutFit(t *testing.T) {
	m := loadModel(t)

	values, err := m.Values(nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, values["staterror_SR"])
	assert.Equal(t, []float64{0.5}, values["mu_SIG"])
	assert.Len(t, values, 6)
}

func TestModelRejectsConflicts(t *testing.T) {
	t.Run("type conflict", func(t *testing.T) {
		ws, err := DecodeWorkspace([]byte(`{"channels": [{"name": "A", "samples": [
			{"name": "s", "data": [1], "modifiers": [{"name": "x", "type": "normfactor", "data": null}]},
			{"name": "t", "data": [1], "modifiers": [{"name": "x", "type": "lumi", "data": null}]}
		]}], "measurements": [{"name": "m", "config": {"poi": ""}}]}`))
		require.NoError(t, err)
		_, err = ws.Model("")
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("shared staterror size", func(t *testing.T) {
		ws, err := DecodeWorkspace([]byte(`{"channels": [
			{"name": "A", "samples": [{"name": "s", "data": [1], "modifiers": [{"name": "st", "type": "staterror", "data": [1]}]}]},
			{"name": "B", "samples": [{"name": "s", "data": [1, 2], "modifiers": [{"name": "st", "type": "staterror", "data": [1, 1]}]}]}
		], "measurements": [{"name": "m", "config": {"poi": ""}}]}`))
		require.NoError(t, err)
		_, err = ws.Model("")
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("unknown poi", func(t *testing.T) {
		ws, err := DecodeWorkspace([]byte(`{"channels": [{"name": "A", "samples": [
			{"name": "s", "data": [1], "modifiers": []}
		]}], "measurements": [{"name": "m", "config": {"poi": "mu"}}]}`))
		require.NoError(t, err)
		_, err = ws.Model("")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("inits length", func(t *testing.T) {
		ws, err := DecodeWorkspace([]byte(`{"channels": [{"name": "A", "samples": [
			{"name": "s", "data": [1], "modifiers": [{"name": "mu", "type": "normfactor", "data": null}]}
		]}], "measurements": [{"name": "m", "config": {"poi": "mu", "parameters": [{"name": "mu", "inits": [1, 2]}]}}]}`))
		require.NoError(t, err)
		_, err = ws.Model("")
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestBackgroundOnlyModelNeedsSignal(t *testing.T) {
	ws, err := LoadWorkspace(testdata("bkgonly.json"))
	require.NoError(t, err)

	_, err = ws.Model("")
	assert.True(t, errors.IsNotFound(err), "the POI lives in the signal patch")
}
