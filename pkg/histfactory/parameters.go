// Package histfactory reads parameter dumps exported from a HistFactory
// "combined" workspace. ROOT files are never opened here; the dump is
// produced next to the fit and carries one value per parameter.
package histfactory

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/pyhf/hfval/pkg/errors"
)

// Dump formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// Parameter is a named value from the legacy workspace.
type Parameter struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// Parameters is an ordered, duplicate-free parameter list.
type Parameters struct {
	list  []Parameter
	index map[string]int
}

// NewParameters builds a parameter list, rejecting empty and duplicate names.
func NewParameters(params ...Parameter) (*Parameters, error) {
	p := &Parameters{index: make(map[string]int, len(params))}
	for _, param := range params {
		if err := p.add(param); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Parameters) add(param Parameter) error {
	if param.Name == "" {
		return &errors.ValidationError{Field: "name", Message: "parameter without a name"}
	}
	if _, ok := p.index[param.Name]; ok {
		return &errors.ValidationError{Field: "name", Value: param.Name, Message: "duplicate parameter " + param.Name}
	}
	p.index[param.Name] = len(p.list)
	p.list = append(p.list, param)
	return nil
}

// Len returns the number of parameters.
func (p *Parameters) Len() int {
	return len(p.list)
}

// All returns the parameters in file order.
func (p *Parameters) All() []Parameter {
	return append([]Parameter(nil), p.list...)
}

// Names returns the parameter names in file order.
func (p *Parameters) Names() []string {
	names := make([]string, len(p.list))
	for i, param := range p.list {
		names[i] = param.Name
	}
	return names
}

// Values returns a name to value map.
func (p *Parameters) Values() map[string]float64 {
	values := make(map[string]float64, len(p.list))
	for _, param := range p.list {
		values[param.Name] = param.Value
	}
	return values
}

// Get returns the named value.
func (p *Parameters) Get(name string) (float64, bool) {
	i, ok := p.index[name]
	if !ok {
		return 0, false
	}
	return p.list[i].Value, true
}

// FormatOf picks the dump format from the file extension.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// LoadParameters reads a parameter dump, choosing the format by extension.
func LoadParameters(path string) (*Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	params, err := Decode(data, FormatOf(path))
	if err != nil {
		var parseErr *errors.ParseError
		if errors.As(err, &parseErr) && parseErr.File == "" {
			parseErr.File = path
		}
		return nil, err
	}
	return params, nil
}

// Decode parses a dump in the given format.
func Decode(data []byte, format string) (*Parameters, error) {
	switch format {
	case FormatJSON, FormatYAML:
		return decodeStructured(data, format)
	case FormatText:
		return decodeText(data)
	default:
		return nil, &errors.ValidationError{Field: "format", Value: format, Message: "unsupported parameter dump format"}
	}
}

// decodeStructured handles both the mapping form {name: value} and the list
// form [{name, value}]. JSON is a subset of YAML, so one ordered decoder
// serves both and keeps the file order of mapping keys.
func decodeStructured(data []byte, format string) (*Parameters, error) {
	var doc any
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, errors.WrapParse(format, "", err)
	}

	params := &Parameters{index: make(map[string]int)}
	switch v := doc.(type) {
	case yaml.MapSlice:
		for _, item := range v {
			name := fmt.Sprint(item.Key)
			value, err := toFloat(item.Value)
			if err != nil {
				return nil, errors.NewParseError(format, "", fmt.Sprintf("parameter %s: %v", name, err), err)
			}
			if err := params.add(Parameter{Name: name, Value: value}); err != nil {
				return nil, err
			}
		}
	case []any:
		for i, entry := range v {
			param, err := entryParameter(entry)
			if err != nil {
				return nil, errors.NewParseError(format, "", fmt.Sprintf("entry %d: %v", i, err), err)
			}
			if err := params.add(param); err != nil {
				return nil, err
			}
		}
	case nil:
		return nil, errors.NewParseError(format, "", "empty document", nil)
	default:
		return nil, errors.NewParseError(format, "", fmt.Sprintf("unexpected top-level %T", doc), nil)
	}
	return params, nil
}

func entryParameter(entry any) (Parameter, error) {
	fields, ok := entry.(yaml.MapSlice)
	if !ok {
		return Parameter{}, fmt.Errorf("expected a mapping, got %T", entry)
	}
	var param Parameter
	var hasName, hasValue bool
	for _, item := range fields {
		switch fmt.Sprint(item.Key) {
		case "name":
			param.Name, hasName = fmt.Sprint(item.Value), true
		case "value":
			value, err := toFloat(item.Value)
			if err != nil {
				return Parameter{}, err
			}
			param.Value, hasValue = value, true
		}
	}
	if !hasName || !hasValue {
		return Parameter{}, fmt.Errorf("entry needs both name and value")
	}
	return param, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		return parseValue(n)
	default:
		return 0, fmt.Errorf("value %v is not a number", v)
	}
}

// parseValue accepts the spellings ROOT prints for non-finite values.
func parseValue(s string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nan", "-nan":
		return math.NaN(), nil
	case "inf", "+inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// decodeText reads "name value" lines. Blank lines and # comments are
// skipped; "name = value +/- error" as printed by RooArgSet is accepted too.
func decodeText(data []byte) (*Parameters, error) {
	params := &Parameters{index: make(map[string]int)}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) > 2 && fields[1] == "=" {
			fields = append(fields[:1], fields[2:]...)
		}
		if len(fields) < 2 {
			return nil, &errors.ParseError{Format: FormatText, Line: lineNo, Message: "expected \"name value\""}
		}
		value, err := parseValue(fields[1])
		if err != nil {
			return nil, &errors.ParseError{Format: FormatText, Line: lineNo, Message: fmt.Sprintf("bad value %q", fields[1]), Err: err}
		}
		if err := params.add(Parameter{Name: fields[0], Value: value}); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapParse(FormatText, "", err)
	}
	if params.Len() == 0 {
		return nil, errors.NewParseError(FormatText, "", "no parameters found", nil)
	}
	return params, nil
}
