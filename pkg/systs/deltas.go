package systs

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pyhf/hfval/pkg/errors"
	"github.com/pyhf/hfval/pkg/pyhf"
)

// HandleDeltas combines up and down shifts into one absolute uncertainty
// per bin. When both shifts point the same way the nominal is not bracketed
// and the shifts add; otherwise the larger magnitude is kept.
func HandleDeltas(up, dn []float64) []float64 {
	out := make([]float64, len(up))
	for i := range up {
		sameSign := (up[i] > 0 && dn[i] > 0) || (up[i] <= 0 && dn[i] <= 0)
		if sameSign {
			out[i] = up[i] + dn[i]
		} else {
			out[i] = math.Max(math.Abs(dn[i]), math.Abs(up[i]))
		}
	}
	return out
}

// ModifierDelta is the combined absolute shift of one modifier per bin.
type ModifierDelta struct {
	Name   string    `json:"name" yaml:"name"`
	Type   string    `json:"type" yaml:"type"`
	Deltas []float64 `json:"deltas" yaml:"deltas"`
}

// RelativeSize returns |delta|/nominal per bin. Bins with zero nominal
// yield NaN or Inf.
func (m ModifierDelta) RelativeSize(nominal []float64) []float64 {
	rel := make([]float64, len(m.Deltas))
	for i, d := range m.Deltas {
		rel[i] = math.Abs(d) / nominal[i]
	}
	return rel
}

// SampleSystematics is the systematic budget of one sample.
type SampleSystematics struct {
	Sample    string          `json:"sample" yaml:"sample"`
	Nominal   []float64       `json:"nominal" yaml:"nominal"`
	Relative  []float64       `json:"relative" yaml:"relative"`
	Modifiers []ModifierDelta `json:"modifiers" yaml:"modifiers"`
}

// ProcessSample computes the relative systematic size of every bin: the
// histosys and normsys deltas summed in quadrature and divided by the
// nominal yield. Bins with zero nominal report 1. Statistical and
// free-floating modifiers do not contribute.
func ProcessSample(sample pyhf.Sample) (*SampleSystematics, error) {
	nom := sample.Data
	nbins := len(nom)
	result := &SampleSystematics{Sample: sample.Name, Nominal: append([]float64(nil), nom...)}

	up := make([]float64, nbins)
	dn := make([]float64, nbins)
	for _, m := range sample.Modifiers {
		switch m.Type {
		case pyhf.TypeHistosys:
			d, err := m.Histosys()
			if err != nil {
				return nil, err
			}
			if len(d.HiData) != nbins || len(d.LoData) != nbins {
				return nil, &errors.ValidationError{
					Field:   "modifiers",
					Value:   m.Name,
					Message: fmt.Sprintf("histosys %s of sample %s does not have %d bins", m.Name, sample.Name, nbins),
				}
			}
			floats.SubTo(up, d.HiData, nom)
			floats.SubTo(dn, nom, d.LoData)
		case pyhf.TypeNormsys:
			d, err := m.Normsys()
			if err != nil {
				return nil, err
			}
			floats.ScaleTo(up, d.Hi-1, nom)
			floats.ScaleTo(dn, d.Lo-1, nom)
		default:
			continue
		}
		result.Modifiers = append(result.Modifiers, ModifierDelta{Name: m.Name, Type: m.Type, Deltas: HandleDeltas(up, dn)})
	}

	result.Relative = make([]float64, nbins)
	column := make([]float64, len(result.Modifiers))
	for b := 0; b < nbins; b++ {
		if nom[b] == 0 {
			result.Relative[b] = 1
			continue
		}
		for i, m := range result.Modifiers {
			column[i] = m.Deltas[b]
		}
		result.Relative[b] = floats.Norm(column, 2) / nom[b]
	}
	return result, nil
}
