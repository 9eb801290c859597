package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhf/hfval/internal/cmd/output"
	"github.com/pyhf/hfval/pkg/errors"
)

func TestMissingParameters(t *testing.T) {
	assert.Nil(t, MissingParameters(nil))

	a := MissingParameters([]*errors.MissingParameterError{
		errors.NewMissingParameterError("alpha_FAKES", "FAKES", "pyhf"),
	})
	require.NotNil(t, a)
	assert.Equal(t, LevelWarning, a.Level)
	assert.Equal(t, []string{"alpha_FAKES (as FAKES) not found in pyhf"}, a.Details)
}

func TestAlertString(t *testing.T) {
	a := NewError("cannot load").WithError(fmt.Errorf("boom"))
	assert.Equal(t, "✗ cannot load: boom", a.String())
	assert.Equal(t, "! careful", NewWarning("careful").String())
}

func TestFormatWriterPlain(t *testing.T) {
	var buf bytes.Buffer
	w := NewFormatWriter(&buf, output.FormatTable)
	require.NoError(t, w.WriteAlert(NewWarning("rule set differs").WithDetails("step 3", "step 4")))
	assert.Equal(t, "! rule set differs\n   step 3\n   step 4\n", buf.String())

	buf.Reset()
	require.NoError(t, w.WriteAlert(nil))
	assert.Empty(t, buf.String())
}

func TestFormatWriterColor(t *testing.T) {
	var buf bytes.Buffer
	w := NewFormatWriter(&buf, "").WithConfig(WriterConfig{UseColor: true})
	require.NoError(t, w.WriteAlert(NewSuccess("done").WithDetails("hidden")))
	assert.Equal(t, LevelSuccess.Color()+"✓ done"+ResetColor()+"\n", buf.String())
}

func TestFormatWriterStructured(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatWriter(&buf, output.FormatJSON).WriteAlert(NewInfo("note").WithDetails("d")))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "info", decoded["level"])
	assert.Equal(t, "note", decoded["message"])

	buf.Reset()
	require.NoError(t, NewFormatWriter(&buf, output.FormatYAML).WriteAlert(NewError("bad")))
	assert.Contains(t, buf.String(), "level: error")
	assert.Contains(t, buf.String(), "message: bad")
}

func TestMultiWriter(t *testing.T) {
	var a, b bytes.Buffer
	w := MultiWriter(NewWriterTo(&a), NewWriterTo(&b), DiscardWriter)
	require.NoError(t, w.WriteAlert(NewInfo("x")))
	assert.Equal(t, "i x\n", a.String())
	assert.Equal(t, a.String(), b.String())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "unknown(9)", Level(9).String())
	assert.Equal(t, "?", Level(9).Icon())
}
