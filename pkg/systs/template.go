package systs

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/pyhf/hfval/pkg/errors"
)

var templateField = regexp.MustCompile(`\{([^{}]*)\}`)

// Template matches signal names such as C1N2_Wh_hbb_550_200 against a
// pattern like C1N2_Wh_hbb_{a}_{b} and extracts the named fields.
type Template struct {
	raw    string
	fields []string
	re     *regexp.Regexp
}

// ParseTemplate compiles a signal name template. Every field must be named.
func ParseTemplate(s string) (*Template, error) {
	matches := templateField.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return nil, &errors.ValidationError{Field: "signal_template", Value: s, Message: "template has no {field} placeholders"}
	}

	t := &Template{raw: s}
	seen := make(map[string]bool)
	var pattern strings.Builder
	pattern.WriteString("^")
	last := 0
	for _, m := range matches {
		name := s[m[2]:m[3]]
		if !validField(name) {
			return nil, &errors.ValidationError{Field: "signal_template", Value: s, Message: fmt.Sprintf("field {%s} must be a non-empty identifier", name)}
		}
		if seen[name] {
			return nil, &errors.ValidationError{Field: "signal_template", Value: s, Message: fmt.Sprintf("field {%s} appears twice", name)}
		}
		seen[name] = true
		t.fields = append(t.fields, name)

		pattern.WriteString(regexp.QuoteMeta(s[last:m[0]]))
		fmt.Fprintf(&pattern, "(?P<%s>.+?)", name)
		last = m[1]
	}
	pattern.WriteString(regexp.QuoteMeta(s[last:]))
	pattern.WriteString("$")

	re, err := regexp.Compile(pattern.String())
	if err != nil {
		return nil, errors.NewConfigError("signal_template", "cannot compile template "+s, err)
	}
	t.re = re
	return t, nil
}

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validField(name string) bool {
	return fieldName.MatchString(name)
}

// String returns the template as written.
func (t *Template) String() string {
	return t.raw
}

// Fields returns the field names in template order.
func (t *Template) Fields() []string {
	return append([]string(nil), t.fields...)
}

// HasField reports whether the template defines the named field.
func (t *Template) HasField(name string) bool {
	return slices.Contains(t.fields, name)
}

// Match extracts the field values from a signal name.
func (t *Template) Match(name string) (map[string]string, bool) {
	m := t.re.FindStringSubmatch(name)
	if m == nil {
		return nil, false
	}
	out := make(map[string]string, len(t.fields))
	for i, sub := range t.re.SubexpNames() {
		if sub != "" {
			out[sub] = m[i]
		}
	}
	return out, true
}

// Float extracts one field of a signal name as a number.
func (t *Template) Float(name, field string) (float64, error) {
	values, ok := t.Match(name)
	if !ok {
		return 0, &errors.ValidationError{Field: "signal", Value: name, Message: fmt.Sprintf("signal %s does not match template %s", name, t.raw)}
	}
	raw, ok := values[field]
	if !ok {
		return 0, errors.NewNotFoundError("template field", field)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &errors.ValidationError{Field: field, Value: raw, Message: fmt.Sprintf("field %s of signal %s is not a number", field, name)}
	}
	return v, nil
}
