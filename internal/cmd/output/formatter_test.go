package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhf/hfval/internal/cmd/table"
	"github.com/pyhf/hfval/pkg/errors"
)

type row struct {
	Name     string  `json:"param"`
	Value    float64 `json:"pyhf_val,omitempty"`
	internal int
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", ""},
		{"table", FormatTable},
		{"JSON", FormatJSON},
		{" yaml ", FormatYAML},
		{"wide", FormatWide},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("csv")
	assert.True(t, errors.IsValidationError(err))
}

func TestFormatIsTable(t *testing.T) {
	assert.True(t, Format("").IsTable())
	assert.True(t, FormatWide.IsTable())
	assert.False(t, FormatJSON.IsTable())
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, []row{{Name: "mu", Value: 1.5}}))
	assert.JSONEq(t, `[{"param":"mu","pyhf_val":1.5}]`, buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, map[string][]string{"only_a": {"FAKES"}}))
	assert.Equal(t, "only_a:\n- FAKES\n", buf.String())
}

func TestTableFormatterData(t *testing.T) {
	var buf bytes.Buffer
	data := table.Data{
		Headers:         []string{"Param", "Value"},
		Rows:            [][]string{{"mu_SIG", "1.3"}},
		ColumnAlignment: []table.Align{table.AlignLeft, table.AlignRight},
	}
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, data))
	assert.Contains(t, buf.String(), "mu_SIG")
	assert.Contains(t, buf.String(), "1.3")
}

func TestTableFormatterReflection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, []row{{Name: "lumi_x", Value: 2}}))
	out := strings.ToLower(buf.String())
	assert.Contains(t, out, "param")
	assert.Contains(t, out, "lumi_x")
	assert.NotContains(t, out, "internal")

	buf.Reset()
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, &row{Name: "single"}))
	assert.Contains(t, strings.ToLower(buf.String()), "property")
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, buf.String())
}

func TestWrite(t *testing.T) {
	toTable := func(wide bool) table.Data {
		headers := []string{"Name"}
		if wide {
			headers = append(headers, "Extra")
		}
		return table.Data{Headers: headers, Rows: [][]string{make([]string, len(headers))}}
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatWide, []string{"x"}, toTable))
	assert.Contains(t, strings.ToLower(buf.String()), "extra")

	buf.Reset()
	require.NoError(t, Write(&buf, FormatJSON, []string{"x"}, toTable))
	assert.JSONEq(t, `["x"]`, buf.String())
}

func TestWriteSections(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSections(&buf, FormatTable,
		Section{Title: "First", Data: table.Data{Headers: []string{"A"}, Rows: [][]string{{"1"}}}},
		Section{Title: "Second", Data: table.Data{Headers: []string{"B"}, Rows: [][]string{{"2"}}}},
	)
	require.NoError(t, err)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "First\n"))
	assert.Contains(t, out, "\n\nSecond\n")
}
