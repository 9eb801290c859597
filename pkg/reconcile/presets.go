package reconcile

import (
	"slices"
	"sort"
	"sync"

	"github.com/pyhf/hfval/pkg/errors"
)

// Built-in rule set names.
const (
	// RuleSetFitted is the rule order used when comparing fitted values.
	RuleSetFitted = "fitted"

	// RuleSetNuisance is the rule order used when comparing parameter names.
	// It lowercases the luminosity token where RuleSetFitted capitalizes it.
	RuleSetNuisance = "nuisance"

	// RuleSetFittedCuts is RuleSetFitted plus a collapse of the "_cuts_0"
	// suffix into "_cuts".
	RuleSetFittedCuts = "fitted-cuts"
)

func fittedRules() []Rule {
	return []Rule{
		Literal("strip-alpha", "alpha_", ""),
		Literal("stat-prefix", "gamma_stat_", "staterror_"),
		Literal("lumi-case", "lumi", "Lumi"),
		Literal("strip-bin", "_bin", ""),
	}
}

func nuisanceRules() []Rule {
	return []Rule{
		Literal("strip-alpha", "alpha_", ""),
		Literal("stat-prefix", "gamma_stat_", "staterror_"),
		Literal("stat-prefix-again", "gamma_stat_", "staterror_"),
		Literal("lumi-case", "Lumi", "lumi"),
		Literal("strip-bin", "_bin", ""),
	}
}

func builtinRuleSets() []*RuleSet {
	mustBuild := func(name, description string, rules []Rule) *RuleSet {
		rs, err := NewRuleSet(name, description, rules...)
		if err != nil {
			panic("programming error: invalid built-in rule set " + name + ": " + err.Error())
		}
		return rs
	}
	return []*RuleSet{
		mustBuild(RuleSetFitted, "fitted-value comparison; luminosity capitalized", fittedRules()),
		mustBuild(RuleSetNuisance, "name-set comparison; luminosity lowercased", nuisanceRules()),
		mustBuild(RuleSetFittedCuts, "fitted-value comparison with _cuts_0 collapsed to _cuts",
			append(fittedRules(), Literal("cuts-suffix", "_cuts_0", "_cuts"))),
	}
}

// Registry holds named rule sets. It starts with the built-in sets;
// configuration may register more or override them.
type Registry struct {
	mu   sync.RWMutex
	sets map[string]*RuleSet
}

// NewRegistry returns a registry seeded with the built-in rule sets.
func NewRegistry() *Registry {
	r := &Registry{sets: make(map[string]*RuleSet)}
	for _, rs := range builtinRuleSets() {
		r.sets[rs.Name] = rs
	}
	return r
}

// Register adds or replaces a rule set.
func (r *Registry) Register(rs *RuleSet) error {
	if rs == nil || rs.Name == "" {
		return &errors.ValidationError{Field: "rulesets", Message: "rule set must have a name"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[rs.Name] = rs
	return nil
}

// Get returns the named rule set.
func (r *Registry) Get(name string) (*RuleSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.sets[name]
	if !ok {
		return nil, errors.NewNotFoundError("rule set", name)
	}
	return rs, nil
}

// Names returns the registered rule set names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sets))
	for name := range r.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns every registered rule set, sorted by name.
func (r *Registry) List() []*RuleSet {
	names := r.Names()
	out := make([]*RuleSet, 0, len(names))
	for _, name := range names {
		rs, _ := r.Get(name)
		out = append(out, rs)
	}
	return out
}

// Counterpart returns the built-in rule set used by the other comparison
// flow, so callers can warn when the two disagree.
func Counterpart(name string) string {
	if slices.Contains([]string{RuleSetFitted, RuleSetFittedCuts}, name) {
		return RuleSetNuisance
	}
	return RuleSetFitted
}
