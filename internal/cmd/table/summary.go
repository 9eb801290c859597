package table

import (
	"strconv"

	"github.com/pyhf/hfval/pkg/report"
)

// SummaryToTableData lists per-parameter aggregates, worst first.
func SummaryToTableData(s *report.Summary) Data {
	rows := make([][]string, 0, len(s.Parameters))
	for _, p := range s.Parameters {
		rows = append(rows, []string{
			p.Name,
			strconv.Itoa(p.Count),
			report.FormatScientific(p.MeanAbsDiff),
			report.FormatFixed(p.MaxPercentDiff),
		})
	}
	return Data{
		Headers:         []string{"Param", "Files", "Mean Abs Diff", "Max % Diff"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight, AlignRight},
	}
}

// HistogramToTableData renders the non-empty bins of h with under and
// overflow rows.
func HistogramToTableData(h report.Histogram) Data {
	rows := [][]string{}
	if h.Underflow > 0 {
		rows = append(rows, []string{"underflow", "", strconv.Itoa(h.Underflow)})
	}
	for i, count := range h.Counts {
		if count == 0 {
			continue
		}
		rows = append(rows, []string{
			strconv.FormatFloat(h.Edges[i], 'g', 4, 64),
			strconv.FormatFloat(h.Edges[i+1], 'g', 4, 64),
			strconv.FormatFloat(count, 'f', 0, 64),
		})
	}
	if h.Overflow > 0 {
		rows = append(rows, []string{"overflow", "", strconv.Itoa(h.Overflow)})
	}
	return Data{
		Headers:         []string{"Low", "High", "Count"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignRight, AlignRight},
	}
}
