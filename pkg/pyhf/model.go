package pyhf

import (
	"fmt"
	"sort"

	"github.com/pyhf/hfval/pkg/errors"
)

// Slice is a half-open index range into the flat parameter vector.
type Slice struct {
	Start int `json:"start" yaml:"start"`
	Stop  int `json:"stop" yaml:"stop"`
}

// Len returns the number of entries in the slice.
func (s Slice) Len() int {
	return s.Stop - s.Start
}

// ParameterSet is one entry of the parameter map.
type ParameterSet struct {
	Name   string       `json:"name" yaml:"name"`
	Type   string       `json:"type" yaml:"type"`
	Slice  Slice        `json:"slice" yaml:"slice"`
	Inits  []float64    `json:"inits" yaml:"inits"`
	Bounds [][2]float64 `json:"bounds" yaml:"bounds"`
	Fixed  bool         `json:"fixed,omitempty" yaml:"fixed,omitempty"`
}

// Model is the parameter map of a workspace under one measurement.
type Model struct {
	Measurement   string         `json:"measurement" yaml:"measurement"`
	POI           string         `json:"poi" yaml:"poi"`
	ParameterSets []ParameterSet `json:"parameters" yaml:"parameters"`

	index map[string]int
	bins  map[string]int
}

var defaultBounds = map[string][2]float64{
	TypeNormsys:     {-5, 5},
	TypeHistosys:    {-5, 5},
	TypeNormfactor:  {0, 10},
	TypeLumi:        {0, 10},
	TypeStaterror:   {1e-10, 10},
	TypeShapesys:    {1e-10, 10},
	TypeShapefactor: {0, 10},
}

func defaultInit(typ string) float64 {
	if typ == TypeNormsys || typ == TypeHistosys {
		return 0
	}
	return 1
}

func perBin(typ string) bool {
	return typ == TypeStaterror || typ == TypeShapesys || typ == TypeShapefactor
}

// Model builds the parameter map for the named measurement (the first one
// when name is empty). Parameter sets are ordered by name and sliced
// contiguously in that order.
func (w *Workspace) Model(measurement string) (*Model, error) {
	meas, err := w.Measurement(measurement)
	if err != nil {
		return nil, err
	}

	type requirement struct {
		typ  string
		size int
	}
	reqs := make(map[string]requirement)
	for _, ch := range w.Channels {
		nbins := len(ch.Samples[0].Data)
		for _, s := range ch.Samples {
			for _, m := range s.Modifiers {
				size := 1
				if perBin(m.Type) {
					size = nbins
				}
				prev, ok := reqs[m.Name]
				if !ok {
					reqs[m.Name] = requirement{typ: m.Type, size: size}
					continue
				}
				if prev.typ != m.Type {
					return nil, &errors.ValidationError{
						Field:   "modifiers",
						Value:   m.Name,
						Message: fmt.Sprintf("modifier %s is used as both %s and %s", m.Name, prev.typ, m.Type),
					}
				}
				if prev.size != size {
					return nil, &errors.ValidationError{
						Field:   "modifiers",
						Value:   m.Name,
						Message: fmt.Sprintf("modifier %s is shared across channels with %d and %d bins", m.Name, prev.size, size),
					}
				}
			}
		}
	}

	names := make([]string, 0, len(reqs))
	for name := range reqs {
		names = append(names, name)
	}
	sort.Strings(names)

	settings := make(map[string]ParameterSettings, len(meas.Config.Parameters))
	for _, p := range meas.Config.Parameters {
		settings[p.Name] = p
	}

	model := &Model{
		Measurement:   meas.Name,
		POI:           meas.Config.POI,
		ParameterSets: make([]ParameterSet, 0, len(names)),
		index:         make(map[string]int, len(names)),
		bins:          w.ChannelBins(),
	}
	if model.POI != "" {
		if _, ok := reqs[model.POI]; !ok {
			return nil, errors.NewNotFoundError("parameter of interest", model.POI)
		}
	}

	offset := 0
	for _, name := range names {
		req := reqs[name]
		ps := ParameterSet{
			Name:   name,
			Type:   req.typ,
			Slice:  Slice{Start: offset, Stop: offset + req.size},
			Inits:  make([]float64, req.size),
			Bounds: make([][2]float64, req.size),
		}
		for i := range ps.Inits {
			ps.Inits[i] = defaultInit(req.typ)
			ps.Bounds[i] = defaultBounds[req.typ]
		}
		if s, ok := settings[name]; ok {
			if err := applySettings(&ps, s); err != nil {
				return nil, err
			}
		}
		model.index[name] = len(model.ParameterSets)
		model.ParameterSets = append(model.ParameterSets, ps)
		offset += req.size
	}
	return model, nil
}

func applySettings(ps *ParameterSet, s ParameterSettings) error {
	check := func(field string, n int) error {
		if n != 0 && n != ps.Slice.Len() {
			return &errors.ValidationError{
				Field:   field,
				Value:   ps.Name,
				Message: fmt.Sprintf("parameter %s has %d %s for %d entries", ps.Name, n, field, ps.Slice.Len()),
			}
		}
		return nil
	}
	if err := check("auxdata", len(s.Auxdata)); err != nil {
		return err
	}
	if err := check("inits", len(s.Inits)); err != nil {
		return err
	}
	if err := check("bounds", len(s.Bounds)); err != nil {
		return err
	}
	// lumi starts at its auxiliary measurement unless inits say otherwise
	if ps.Type == TypeLumi && len(s.Auxdata) > 0 {
		copy(ps.Inits, s.Auxdata)
	}
	if len(s.Inits) > 0 {
		copy(ps.Inits, s.Inits)
	}
	if len(s.Bounds) > 0 {
		copy(ps.Bounds, s.Bounds)
	}
	ps.Fixed = s.Fixed
	return nil
}

// Size returns the length of the flat parameter vector.
func (m *Model) Size() int {
	if len(m.ParameterSets) == 0 {
		return 0
	}
	return m.ParameterSets[len(m.ParameterSets)-1].Slice.Stop
}

// Parameter returns the named parameter set.
func (m *Model) Parameter(name string) (ParameterSet, bool) {
	i, ok := m.index[name]
	if !ok {
		return ParameterSet{}, false
	}
	return m.ParameterSets[i], true
}

// Names returns the parameter set names in slice order.
func (m *Model) Names() []string {
	names := make([]string, len(m.ParameterSets))
	for i, ps := range m.ParameterSets {
		names[i] = ps.Name
	}
	return names
}

// InitVector returns the flat vector of init values.
func (m *Model) InitVector() []float64 {
	vec := make([]float64, m.Size())
	for _, ps := range m.ParameterSets {
		copy(vec[ps.Slice.Start:ps.Slice.Stop], ps.Inits)
	}
	return vec
}

// ChannelBins returns the bin count of every channel.
func (m *Model) ChannelBins() map[string]int {
	return m.bins
}

// Values returns the values of every parameter set. A nil fit yields the
// init values, which is what an unfitted comparison uses.
func (m *Model) Values(fit *FitResult) (map[string][]float64, error) {
	vec := m.InitVector()
	if fit != nil {
		var err error
		if vec, err = fit.vector(m); err != nil {
			return nil, err
		}
	}
	values := make(map[string][]float64, len(m.ParameterSets))
	for _, ps := range m.ParameterSets {
		values[ps.Name] = append([]float64(nil), vec[ps.Slice.Start:ps.Slice.Stop]...)
	}
	return values, nil
}
