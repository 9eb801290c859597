package reconcile

import (
	"sort"

	"github.com/pyhf/hfval/pkg/errors"
)

// Record is one resolved parameter pair.
type Record struct {
	Name        string  `json:"param" yaml:"param"`
	Source      string  `json:"source" yaml:"source"`
	ValueA      float64 `json:"root_val" yaml:"root_val"`
	ValueB      float64 `json:"pyhf_val" yaml:"pyhf_val"`
	AbsDiff     float64 `json:"abs_diff" yaml:"abs_diff"`
	PercentDiff float64 `json:"perc_diff" yaml:"perc_diff"`
}

// Comparison holds every resolvable record of side A plus the names that
// had no counterpart on side B.
type Comparison struct {
	Records []Record                        `json:"records" yaml:"records"`
	Missing []*errors.MissingParameterError `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Resolved reports the number of records.
func (c *Comparison) Resolved() int {
	return len(c.Records)
}

// Difference is the symmetric name-set report.
type Difference struct {
	OnlyA []string `json:"only_a" yaml:"only_a"`
	OnlyB []string `json:"only_b" yaml:"only_b"`
}

// Empty reports whether both sides hold the same names.
func (d *Difference) Empty() bool {
	return len(d.OnlyA) == 0 && len(d.OnlyB) == 0
}

// PercentDiff returns 100*(b-a)/b, or 0 when b is exactly zero.
func PercentDiff(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return 100 * (b - a) / b
}

// Compare canonicalizes every name of sourceA and looks it up in sourceB.
// Names with no counterpart are returned in Missing; the comparison always
// completes. A nil canonicalize leaves names untouched.
func Compare(sourceA, sourceB map[string]float64, canonicalize func(string) string) *Comparison {
	return compare(sourceA, sourceB, canonicalize, "B")
}

func compare(sourceA, sourceB map[string]float64, canonicalize func(string) string, sideB string) *Comparison {
	if canonicalize == nil {
		canonicalize = func(s string) string { return s }
	}

	names := make([]string, 0, len(sourceA))
	for name := range sourceA {
		names = append(names, name)
	}
	sort.Strings(names)

	result := &Comparison{Records: make([]Record, 0, len(names))}
	for _, name := range names {
		canonical := canonicalize(name)
		valueB, ok := sourceB[canonical]
		if !ok {
			result.Missing = append(result.Missing, errors.NewMissingParameterError(name, canonical, sideB))
			continue
		}
		valueA := sourceA[name]
		result.Records = append(result.Records, Record{
			Name:        canonical,
			Source:      name,
			ValueA:      valueA,
			ValueB:      valueB,
			AbsDiff:     valueB - valueA,
			PercentDiff: PercentDiff(valueA, valueB),
		})
	}

	sort.SliceStable(result.Records, func(i, j int) bool {
		return result.Records[i].Name < result.Records[j].Name
	})
	return result
}

// DiffNameSets returns the names only in a and only in b, each sorted and
// de-duplicated. No canonicalization is applied.
func DiffNameSets(a, b []string) (onlyA, onlyB []string) {
	setA := toSet(a)
	setB := toSet(b)
	return minus(setA, setB), minus(setB, setA)
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

func minus(a, b map[string]struct{}) []string {
	out := []string{}
	for name := range a {
		if _, ok := b[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
