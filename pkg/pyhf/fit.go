package pyhf

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pyhf/hfval/pkg/errors"
)

// FitResult holds best-fit values produced by an external pyhf fit, either
// as a flat vector in parameter-map order or keyed by parameter name.
type FitResult struct {
	Bestfit     []float64            `json:"bestfit,omitempty"`
	Uncertainty []float64            `json:"uncertainty,omitempty"`
	Parameters  map[string][]float64 `json:"parameters,omitempty"`
	TwiceNLL    *float64             `json:"twice_nll,omitempty"`
}

// LoadFitResult reads a best-fit file.
func LoadFitResult(path string) (*FitResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var fit FitResult
	if err := json.Unmarshal(data, &fit); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	if len(fit.Bestfit) == 0 && len(fit.Parameters) == 0 {
		return nil, &errors.ValidationError{Field: "bestfit", Value: path, Message: "fit result has neither bestfit nor parameters"}
	}
	return &fit, nil
}

// vector lays the fit out in the model's parameter order. Named values
// override the init values of their parameter set; parameters without a
// named value keep their inits.
func (f *FitResult) vector(m *Model) ([]float64, error) {
	if len(f.Bestfit) > 0 {
		if len(f.Bestfit) != m.Size() {
			return nil, &errors.ValidationError{
				Field:   "bestfit",
				Value:   len(f.Bestfit),
				Message: fmt.Sprintf("bestfit has %d values, model has %d parameters", len(f.Bestfit), m.Size()),
			}
		}
		return append([]float64(nil), f.Bestfit...), nil
	}

	vec := m.InitVector()
	for name, values := range f.Parameters {
		ps, ok := m.Parameter(name)
		if !ok {
			return nil, errors.NewNotFoundError("parameter", name)
		}
		if len(values) != ps.Slice.Len() {
			return nil, &errors.ValidationError{
				Field:   "parameters",
				Value:   name,
				Message: fmt.Sprintf("parameter %s has %d values, slice has %d", name, len(values), ps.Slice.Len()),
			}
		}
		copy(vec[ps.Slice.Start:ps.Slice.Stop], values)
	}
	return vec, nil
}
