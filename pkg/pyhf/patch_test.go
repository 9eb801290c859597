package pyhf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhf/hfval/pkg/errors"
)

func TestApplyPatchRebuildsSignalWorkspace(t *testing.T) {
	bkg, err := LoadWorkspace(testdata("bkgonly.json"))
	require.NoError(t, err)
	patch, err := LoadPatch(testdata("signal_patch.json"))
	require.NoError(t, err)

	ws, err := ApplyPatch(bkg, patch)
	require.NoError(t, err)
	require.Len(t, ws.Channels[1].Samples, 2)
	assert.Equal(t, "signal", ws.Channels[1].Samples[1].Name)

	m, err := ws.Model("")
	require.NoError(t, err)
	assert.Equal(t, 7, m.Size())
	assert.Contains(t, m.Names(), "mu_SIG")

	// the input is untouched
	assert.Len(t, bkg.Channels[1].Samples, 1)
}

func TestApplyPatchInvalid(t *testing.T) {
	bkg, err := LoadWorkspace(testdata("bkgonly.json"))
	require.NoError(t, err)

	_, err = ApplyPatch(bkg, []byte(`[{"op": "remove", "path": "/channels/9"}]`))
	require.Error(t, err)
	var resErr *errors.ResourceError
	assert.ErrorAs(t, err, &resErr)

	_, err = ApplyPatch(bkg, []byte(`{"not": "a patch"}`))
	require.Error(t, err)
}

func TestLoadPatchSet(t *testing.T) {
	ps, err := LoadPatchSet(testdata("patchset.json"))
	require.NoError(t, err)

	assert.Equal(t, []string{"m1", "m2"}, ps.Metadata.Labels)
	require.Len(t, ps.Patches, 3)

	p, err := ps.Patch("C1N2_400_100")
	require.NoError(t, err)
	assert.Equal(t, []float64{400, 100}, p.Metadata.Values)

	name, ok := p.SignalName()
	assert.True(t, ok)
	assert.Equal(t, "C1N2_400_100", name)

	idx, err := p.Operations[0].ChannelIndex()
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = ps.Patch("C1N2_999_1")
	assert.True(t, errors.IsNotFound(err))
}

func TestPatchApply(t *testing.T) {
	bkg, err := LoadWorkspace(testdata("bkgonly.json"))
	require.NoError(t, err)
	ps, err := LoadPatchSet(testdata("patchset.json"))
	require.NoError(t, err)

	ws, err := ps.Patches[0].Apply(bkg)
	require.NoError(t, err)
	sr := ws.Channels[1]
	require.Len(t, sr.Samples, 2)
	assert.Equal(t, []float64{4, 8}, sr.Samples[1].Data)

	m, err := ws.Model("")
	require.NoError(t, err)
	assert.Contains(t, m.Names(), "JES_sig")
}

func TestOperationChannelIndex(t *testing.T) {
	tests := []struct {
		path    string
		want    int
		wantErr bool
	}{
		{"/channels/0/samples/2", 0, false},
		{"/channels/12/samples/-", 12, false},
		{"/observations/0", 0, true},
		{"/channels/x/samples/0", 0, true},
		{"/channels", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Operation{Path: tt.path}.ChannelIndex()
			if tt.wantErr {
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOperationSample(t *testing.T) {
	_, ok := Operation{Op: "remove", Path: "/channels/0"}.Sample()
	assert.False(t, ok)

	_, ok = Operation{Op: "replace", Path: "/version", Value: []byte(`"1.0.1"`)}.Sample()
	assert.False(t, ok)

	s, ok := Operation{Op: "add", Value: []byte(`{"name": "sig", "data": [1, 2], "modifiers": []}`)}.Sample()
	assert.True(t, ok)
	assert.Equal(t, "sig", s.Name)
}
