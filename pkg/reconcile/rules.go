package reconcile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pyhf/hfval/pkg/errors"
)

// Rule is a single textual rewrite applied during canonicalization.
// A literal rule replaces every occurrence of Match; a regex rule replaces
// every match of the RE2 pattern, expanding $1 style references in Replace.
type Rule struct {
	Name    string `json:"name" yaml:"name" mapstructure:"name"`
	Match   string `json:"match" yaml:"match" mapstructure:"match"`
	Replace string `json:"replace" yaml:"replace" mapstructure:"replace"`
	Regex   bool   `json:"regex,omitempty" yaml:"regex,omitempty" mapstructure:"regex"`

	re *regexp.Regexp
}

// Literal returns a rule replacing every occurrence of match.
func Literal(name, match, replace string) Rule {
	return Rule{Name: name, Match: match, Replace: replace}
}

// Pattern returns a regex rule. The pattern is compiled when the rule
// becomes part of a RuleSet.
func Pattern(name, pattern, replace string) Rule {
	return Rule{Name: name, Match: pattern, Replace: replace, Regex: true}
}

func (r *Rule) compile() error {
	if r.Match == "" {
		return &errors.ValidationError{Field: "match", Value: r.Name, Message: "rule must match a non-empty token"}
	}
	if !r.Regex {
		return nil
	}
	re, err := regexp.Compile(r.Match)
	if err != nil {
		return errors.NewConfigError("rules", fmt.Sprintf("rule %q has an invalid pattern", r.Name), err)
	}
	r.re = re
	return nil
}

// Apply rewrites name with this rule.
func (r Rule) Apply(name string) string {
	if r.Regex {
		re := r.re
		if re == nil {
			re = regexp.MustCompile(r.Match)
		}
		return re.ReplaceAllString(name, r.Replace)
	}
	return strings.ReplaceAll(name, r.Match, r.Replace)
}

// String renders the rule as "match -> replace".
func (r Rule) String() string {
	replace := r.Replace
	if replace == "" {
		replace = `""`
	}
	if r.Regex {
		return fmt.Sprintf("/%s/ -> %s", r.Match, replace)
	}
	return fmt.Sprintf("%s -> %s", r.Match, replace)
}

func (r Rule) equal(o Rule) bool {
	return r.Match == o.Match && r.Replace == o.Replace && r.Regex == o.Regex
}

// RuleSet is a named, ordered list of rules. Rules are applied in
// sequence, so a later rule sees the output of the earlier ones.
type RuleSet struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Rules       []Rule `json:"rules" yaml:"rules"`
}

// NewRuleSet validates and compiles rules into a RuleSet.
func NewRuleSet(name, description string, rules ...Rule) (*RuleSet, error) {
	if name == "" {
		return nil, &errors.ValidationError{Field: "name", Message: "rule set name cannot be empty"}
	}
	compiled := make([]Rule, len(rules))
	for i, rule := range rules {
		if rule.Name == "" {
			rule.Name = fmt.Sprintf("rule-%d", i+1)
		}
		if err := rule.compile(); err != nil {
			return nil, err
		}
		compiled[i] = rule
	}
	return &RuleSet{Name: name, Description: description, Rules: compiled}, nil
}

// Canonicalize applies every rule in order.
func (rs *RuleSet) Canonicalize(name string) string {
	if rs == nil {
		return name
	}
	for _, rule := range rs.Rules {
		name = rule.Apply(name)
	}
	return name
}

// CanonicalizeAll canonicalizes each name, keeping input order.
func (rs *RuleSet) CanonicalizeAll(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = rs.Canonicalize(name)
	}
	return out
}

// Trace returns the intermediate name after each rule, starting with the input.
func (rs *RuleSet) Trace(name string) []string {
	steps := make([]string, 0, len(rs.Rules)+1)
	steps = append(steps, name)
	for _, rule := range rs.Rules {
		name = rule.Apply(name)
		steps = append(steps, name)
	}
	return steps
}

// Stable reports whether the canonical form of name is a fixed point of
// the rule set. Literal rules can expose a new match once an earlier
// rewrite has run, as in "SR_cuts_0_0" under "_cuts_0"->"_cuts", so a
// second pass may rewrite such a name again.
func (rs *RuleSet) Stable(name string) bool {
	once := rs.Canonicalize(name)
	return rs.Canonicalize(once) == once
}

// Diff describes positional differences between two rule sets. An empty
// result means both apply the same rules in the same order.
func (rs *RuleSet) Diff(other *RuleSet) []string {
	var diffs []string
	n := max(len(rs.Rules), len(other.Rules))
	for i := 0; i < n; i++ {
		switch {
		case i >= len(rs.Rules):
			diffs = append(diffs, fmt.Sprintf("step %d: only in %s: %s", i+1, other.Name, other.Rules[i]))
		case i >= len(other.Rules):
			diffs = append(diffs, fmt.Sprintf("step %d: only in %s: %s", i+1, rs.Name, rs.Rules[i]))
		case !rs.Rules[i].equal(other.Rules[i]):
			diffs = append(diffs, fmt.Sprintf("step %d: %s has %s, %s has %s",
				i+1, rs.Name, rs.Rules[i], other.Name, other.Rules[i]))
		}
	}
	return diffs
}
