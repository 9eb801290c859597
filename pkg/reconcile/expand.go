package reconcile

import (
	"fmt"
	"strings"

	"github.com/pyhf/hfval/pkg/errors"
)

// statErrorToken marks per-bin statistical-error parameters.
const statErrorToken = "staterror"

// ExpansionPolicy decides when a vector parameter is emitted as indexed
// entries instead of a single bare name.
type ExpansionPolicy string

const (
	// ExpandMultiOrStaterror expands slices longer than one, and
	// statistical-error parameters of any length.
	ExpandMultiOrStaterror ExpansionPolicy = "multi-or-staterror"

	// ExpandMultiOnly expands only slices longer than one.
	ExpandMultiOnly ExpansionPolicy = "multi-only"
)

// DefaultExpansionPolicy is the policy both comparison flows use.
const DefaultExpansionPolicy = ExpandMultiOrStaterror

// ParseExpansionPolicy parses a policy name. The empty string selects the default.
func ParseExpansionPolicy(s string) (ExpansionPolicy, error) {
	switch p := ExpansionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DefaultExpansionPolicy, nil
	case ExpandMultiOrStaterror, ExpandMultiOnly:
		return p, nil
	default:
		return "", &errors.ValidationError{
			Field:   "expand_policy",
			Value:   s,
			Message: fmt.Sprintf("must be one of: %s, %s", ExpandMultiOrStaterror, ExpandMultiOnly),
		}
	}
}

// Expands reports whether a parameter of the given slice length is indexed.
func (p ExpansionPolicy) Expands(name string, sliceLength int) bool {
	if sliceLength > 1 {
		return true
	}
	return p != ExpandMultiOnly && sliceLength == 1 && strings.Contains(name, statErrorToken)
}

// ExpandNames returns the entry names for a parameter without values.
func ExpandNames(name string, sliceLength int, policy ExpansionPolicy) []string {
	if !policy.Expands(name, sliceLength) {
		return []string{name}
	}
	names := make([]string, sliceLength)
	for i := range names {
		names[i] = indexed(name, i)
	}
	return names
}

// ExpandVector maps the values of a parameter slice to entry names:
// name_0..name_{L-1} when the policy expands it, otherwise the bare name
// with the first value.
func ExpandVector(name string, sliceLength int, values []float64, policy ExpansionPolicy) (map[string]float64, error) {
	if sliceLength < 1 {
		return nil, &errors.ValidationError{Field: "slice", Value: sliceLength, Message: fmt.Sprintf("parameter %s has an empty slice", name)}
	}
	if len(values) < sliceLength {
		return nil, &errors.ValidationError{
			Field:   "values",
			Value:   len(values),
			Message: fmt.Sprintf("parameter %s has %d values for a slice of length %d", name, len(values), sliceLength),
		}
	}

	if !policy.Expands(name, sliceLength) {
		return map[string]float64{name: values[0]}, nil
	}
	out := make(map[string]float64, sliceLength)
	for i := 0; i < sliceLength; i++ {
		out[indexed(name, i)] = values[i]
	}
	return out, nil
}

func indexed(name string, i int) string {
	return fmt.Sprintf("%s_%d", name, i)
}
