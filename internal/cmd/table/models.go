// Package table provides common table formatting utilities for CLI commands.
package table

import (
	"strconv"

	"github.com/pyhf/hfval/internal/cmd/emoji"
	"github.com/pyhf/hfval/pkg/reconcile"
	"github.com/pyhf/hfval/pkg/report"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// ComparisonToTableData converts a fitted comparison to table format.
// Wide output adds the legacy name each record was resolved from.
func ComparisonToTableData(cmp *reconcile.Comparison, wide bool) Data {
	headers := []string{"Param", "Pyhf Val", "Root Val", "Abs Diff", "% Diff"}
	align := []Align{AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight}
	if wide {
		headers = append(headers, "Source")
		align = append(align, AlignLeft)
	}

	rows := make([][]string, 0, cmp.Resolved()+len(cmp.Missing))
	for _, r := range cmp.Records {
		row := []string{
			r.Name,
			report.FormatScientific(r.ValueB),
			report.FormatScientific(r.ValueA),
			report.FormatScientific(r.AbsDiff),
			report.FormatFixed(r.PercentDiff),
		}
		if wide {
			row = append(row, r.Source)
		}
		rows = append(rows, row)
	}
	for _, m := range cmp.Missing {
		row := []string{m.Canonical, emoji.Missing, emoji.Missing, emoji.Missing, emoji.Missing}
		if wide {
			row = append(row, m.Parameter)
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// DifferenceToTableData converts a name-set difference to table format.
func DifferenceToTableData(diff *reconcile.Difference, sideA, sideB string) Data {
	rows := make([][]string, 0, len(diff.OnlyA)+len(diff.OnlyB))
	for _, name := range diff.OnlyA {
		rows = append(rows, []string{name, sideA})
	}
	for _, name := range diff.OnlyB {
		rows = append(rows, []string{name, sideB})
	}
	return Data{
		Headers:         []string{"Parameter", "Only In"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft},
	}
}

// RegistryToTableData lists every rule set with its rule count.
func RegistryToTableData(reg *reconcile.Registry, defaults ...string) Data {
	rows := [][]string{}
	for _, rs := range reg.List() {
		marker := ""
		for _, d := range defaults {
			if d == rs.Name {
				marker = emoji.Success
			}
		}
		rows = append(rows, []string{rs.Name, strconv.Itoa(len(rs.Rules)), marker, rs.Description})
	}
	return Data{
		Headers:         []string{"Name", "Rules", "Default", "Description"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignCenter, AlignLeft},
	}
}

// RuleSetToTableData lists the rules of one rule set in application order.
func RuleSetToTableData(rs *reconcile.RuleSet) Data {
	rows := make([][]string, 0, len(rs.Rules))
	for i, rule := range rs.Rules {
		kind := "literal"
		if rule.Regex {
			kind = "regex"
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), rule.Name, kind, rule.String()})
	}
	return Data{
		Headers:         []string{"Step", "Name", "Kind", "Rewrite"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft},
	}
}

// TraceToTableData shows each name after every rule of rs.
func TraceToTableData(rs *reconcile.RuleSet, names []string) Data {
	headers := []string{"Input"}
	for _, rule := range rs.Rules {
		headers = append(headers, rule.Name)
	}
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, rs.Trace(name))
	}
	return Data{Headers: headers, Rows: rows}
}
