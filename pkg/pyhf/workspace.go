// Package pyhf reads the JSON statistical model format: workspaces, RFC 6902
// patches and patch sets, and best-fit result files. It derives the
// parameter map (name, slice, init values) a pyhf model would build, so
// fitted vectors produced by pyhf can be attributed to parameter names
// without running a fit.
package pyhf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pyhf/hfval/pkg/errors"
)

// Modifier types understood by the parameter map.
const (
	TypeNormsys     = "normsys"
	TypeHistosys    = "histosys"
	TypeNormfactor  = "normfactor"
	TypeLumi        = "lumi"
	TypeStaterror   = "staterror"
	TypeShapesys    = "shapesys"
	TypeShapefactor = "shapefactor"
)

var knownTypes = map[string]bool{
	TypeNormsys:     true,
	TypeHistosys:    true,
	TypeNormfactor:  true,
	TypeLumi:        true,
	TypeStaterror:   true,
	TypeShapesys:    true,
	TypeShapefactor: true,
}

// Workspace is a pyhf workspace document.
type Workspace struct {
	Channels     []Channel     `json:"channels"`
	Observations []Observation `json:"observations"`
	Measurements []Measurement `json:"measurements"`
	Version      string        `json:"version"`

	raw []byte
}

// Channel is a named region with its samples.
type Channel struct {
	Name    string   `json:"name"`
	Samples []Sample `json:"samples"`
}

// Sample is a nominal histogram and the modifiers acting on it.
type Sample struct {
	Name      string     `json:"name"`
	Data      []float64  `json:"data"`
	Modifiers []Modifier `json:"modifiers"`
}

// Modifier is a systematic or free parameter acting on a sample. Data
// depends on Type and is decoded on demand.
type Modifier struct {
	Name string          `json:"name"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NormsysData holds the normalization factors of a normsys modifier.
type NormsysData struct {
	Hi float64 `json:"hi"`
	Lo float64 `json:"lo"`
}

// HistosysData holds the shifted templates of a histosys modifier.
type HistosysData struct {
	HiData []float64 `json:"hi_data"`
	LoData []float64 `json:"lo_data"`
}

// Normsys decodes normsys data.
func (m Modifier) Normsys() (NormsysData, error) {
	var d NormsysData
	if m.Type != TypeNormsys {
		return d, &errors.ValidationError{Field: "type", Value: m.Type, Message: fmt.Sprintf("modifier %s is not a normsys", m.Name)}
	}
	if err := json.Unmarshal(m.Data, &d); err != nil {
		return d, errors.WrapParse("json", m.Name, err)
	}
	return d, nil
}

// Histosys decodes histosys data.
func (m Modifier) Histosys() (HistosysData, error) {
	var d HistosysData
	if m.Type != TypeHistosys {
		return d, &errors.ValidationError{Field: "type", Value: m.Type, Message: fmt.Sprintf("modifier %s is not a histosys", m.Name)}
	}
	if err := json.Unmarshal(m.Data, &d); err != nil {
		return d, errors.WrapParse("json", m.Name, err)
	}
	return d, nil
}

// Observation is the observed data of a channel.
type Observation struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

// Measurement selects a parameter of interest and parameter settings.
type Measurement struct {
	Name   string            `json:"name"`
	Config MeasurementConfig `json:"config"`
}

// MeasurementConfig is the config block of a measurement.
type MeasurementConfig struct {
	POI        string               `json:"poi"`
	Parameters []ParameterSettings `json:"parameters"`
}

// ParameterSettings overrides defaults for one parameter.
type ParameterSettings struct {
	Name    string       `json:"name"`
	Inits   []float64    `json:"inits,omitempty"`
	Bounds  [][2]float64 `json:"bounds,omitempty"`
	Auxdata []float64    `json:"auxdata,omitempty"`
	Sigmas  []float64    `json:"sigmas,omitempty"`
	Fixed   bool         `json:"fixed,omitempty"`
}

// LoadWorkspace reads and validates a workspace file.
func LoadWorkspace(path string) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	ws, err := DecodeWorkspace(data)
	if err != nil {
		return nil, errors.WrapResource("load", "workspace", path, err)
	}
	return ws, nil
}

// DecodeWorkspace parses and validates a workspace document.
func DecodeWorkspace(data []byte) (*Workspace, error) {
	var ws Workspace
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&ws); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	ws.raw = bytes.Clone(data)
	return &ws, nil
}

// Validate checks the structure the parameter map relies on.
func (w *Workspace) Validate() error {
	if len(w.Channels) == 0 {
		return &errors.ValidationError{Field: "channels", Message: "workspace has no channels"}
	}
	if len(w.Measurements) == 0 {
		return &errors.ValidationError{Field: "measurements", Message: "workspace has no measurements"}
	}
	seen := make(map[string]bool, len(w.Channels))
	for _, ch := range w.Channels {
		if ch.Name == "" {
			return &errors.ValidationError{Field: "channels", Message: "channel without a name"}
		}
		if seen[ch.Name] {
			return &errors.ValidationError{Field: "channels", Value: ch.Name, Message: "duplicate channel " + ch.Name}
		}
		seen[ch.Name] = true
		if len(ch.Samples) == 0 {
			return &errors.ValidationError{Field: "samples", Value: ch.Name, Message: "channel " + ch.Name + " has no samples"}
		}
		nbins := len(ch.Samples[0].Data)
		for _, s := range ch.Samples {
			if len(s.Data) != nbins {
				return &errors.ValidationError{
					Field:   "data",
					Value:   s.Name,
					Message: fmt.Sprintf("sample %s in channel %s has %d bins, expected %d", s.Name, ch.Name, len(s.Data), nbins),
				}
			}
			for _, m := range s.Modifiers {
				if !knownTypes[m.Type] {
					return &errors.ValidationError{
						Field:   "modifiers",
						Value:   m.Type,
						Message: fmt.Sprintf("modifier %s in %s/%s has unknown type %q", m.Name, ch.Name, s.Name, m.Type),
					}
				}
			}
		}
	}
	return nil
}

// Bytes returns the document the workspace was decoded from.
func (w *Workspace) Bytes() []byte {
	if w.raw != nil {
		return w.raw
	}
	data, _ := json.Marshal(w)
	return data
}

// ChannelBins returns the bin count of every channel.
func (w *Workspace) ChannelBins() map[string]int {
	bins := make(map[string]int, len(w.Channels))
	for _, ch := range w.Channels {
		if len(ch.Samples) > 0 {
			bins[ch.Name] = len(ch.Samples[0].Data)
		}
	}
	return bins
}

// ChannelNames returns channel names in document order.
func (w *Workspace) ChannelNames() []string {
	names := make([]string, len(w.Channels))
	for i, ch := range w.Channels {
		names[i] = ch.Name
	}
	return names
}

// Measurement returns the named measurement, or the first one when name is empty.
func (w *Workspace) Measurement(name string) (*Measurement, error) {
	if name == "" {
		return &w.Measurements[0], nil
	}
	for i := range w.Measurements {
		if w.Measurements[i].Name == name {
			return &w.Measurements[i], nil
		}
	}
	return nil, errors.NewNotFoundError("measurement", name)
}
