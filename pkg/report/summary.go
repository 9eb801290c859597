package report

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pyhf/hfval/pkg/constants"
	"github.com/pyhf/hfval/pkg/errors"
	"github.com/pyhf/hfval/pkg/reconcile"
)

// Histogram is a binned distribution. Edges has one more entry than Counts.
// Values equal to the last edge are counted in the last bin.
type Histogram struct {
	Edges     []float64 `json:"edges" yaml:"edges"`
	Counts    []float64 `json:"counts" yaml:"counts"`
	Underflow int       `json:"underflow" yaml:"underflow"`
	Overflow  int       `json:"overflow" yaml:"overflow"`
	Invalid   int       `json:"invalid,omitempty" yaml:"invalid,omitempty"`
}

// NewHistogram bins values over edges.
func NewHistogram(values, edges []float64) Histogram {
	h := Histogram{
		Edges:  append([]float64(nil), edges...),
		Counts: make([]float64, len(edges)-1),
	}
	lo, hi := edges[0], edges[len(edges)-1]

	inRange := make([]float64, 0, len(values))
	atUpper := 0
	for _, v := range values {
		switch {
		case math.IsNaN(v):
			h.Invalid++
		case v < lo:
			h.Underflow++
		case v > hi:
			h.Overflow++
		case v == hi:
			atUpper++
		default:
			inRange = append(inRange, v)
		}
	}
	sort.Float64s(inRange)
	if len(inRange) > 0 {
		stat.Histogram(h.Counts, edges, inRange, nil)
	}
	h.Counts[len(h.Counts)-1] += float64(atUpper)
	return h
}

// Total returns the number of binned values.
func (h Histogram) Total() float64 {
	return floats.Sum(h.Counts)
}

// RelativeEdges returns the log-spaced edges of the |% diff| histogram.
func RelativeEdges() []float64 {
	return floats.LogSpan(make([]float64, constants.RelativeBins),
		math.Pow(10, constants.RelativeMinExp), math.Pow(10, constants.RelativeMaxExp))
}

// AbsoluteEdges returns the linear edges of the abs diff histogram.
func AbsoluteEdges() []float64 {
	return floats.Span(make([]float64, constants.AbsoluteBins), -constants.AbsoluteClip, constants.AbsoluteClip)
}

// ParameterSummary aggregates one parameter across reports.
type ParameterSummary struct {
	Name           string  `json:"param" yaml:"param"`
	Count          int     `json:"count" yaml:"count"`
	MeanAbsDiff    float64 `json:"mean_abs_diff" yaml:"mean_abs_diff"`
	MaxPercentDiff float64 `json:"max_perc_diff" yaml:"max_perc_diff"`
}

// Summary aggregates comparison reports.
type Summary struct {
	Files      int                `json:"files" yaml:"files"`
	Records    int                `json:"records" yaml:"records"`
	Parameters []ParameterSummary `json:"parameters" yaml:"parameters"`
	Relative   Histogram          `json:"relative" yaml:"relative"`
	Absolute   Histogram          `json:"absolute" yaml:"absolute"`
}

// Summarize aggregates records grouped by report.
func Summarize(reports [][]reconcile.Record) *Summary {
	type acc struct {
		abs []float64
		rel []float64
	}
	byName := make(map[string]*acc)
	var absAll, relAll []float64
	total := 0
	for _, recs := range reports {
		for _, r := range recs {
			a, ok := byName[r.Name]
			if !ok {
				a = &acc{}
				byName[r.Name] = a
			}
			a.abs = append(a.abs, r.AbsDiff)
			a.rel = append(a.rel, math.Abs(r.PercentDiff))
			absAll = append(absAll, clip(r.AbsDiff, constants.AbsoluteClip))
			relAll = append(relAll, math.Abs(r.PercentDiff))
			total++
		}
	}

	s := &Summary{
		Files:      len(reports),
		Records:    total,
		Parameters: make([]ParameterSummary, 0, len(byName)),
		Relative:   NewHistogram(relAll, RelativeEdges()),
		Absolute:   NewHistogram(absAll, AbsoluteEdges()),
	}
	for name, a := range byName {
		s.Parameters = append(s.Parameters, ParameterSummary{
			Name:           name,
			Count:          len(a.abs),
			MeanAbsDiff:    stat.Mean(a.abs, nil),
			MaxPercentDiff: floats.Max(a.rel),
		})
	}
	sort.Slice(s.Parameters, func(i, j int) bool {
		if s.Parameters[i].MaxPercentDiff != s.Parameters[j].MaxPercentDiff {
			return s.Parameters[i].MaxPercentDiff > s.Parameters[j].MaxPercentDiff
		}
		return s.Parameters[i].Name < s.Parameters[j].Name
	})
	return s
}

// SummarizeFiles reads every report and summarizes them. The context is
// checked between files.
func SummarizeFiles(ctx context.Context, paths []string) (*Summary, error) {
	if len(paths) == 0 {
		return nil, &errors.ValidationError{Field: "files", Message: "at least one report is required"}
	}
	reports := make([][]reconcile.Record, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, errors.ErrCanceled
		}
		records, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		reports = append(reports, records)
	}
	return Summarize(reports), nil
}

func clip(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}
