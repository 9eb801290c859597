package table

import (
	"strconv"
	"strings"

	"github.com/pyhf/hfval/pkg/systs"
)

// OutliersToTableData converts outlier bins to table format.
func OutliersToTableData(outliers []systs.Outlier) Data {
	rows := make([][]string, 0, len(outliers))
	for _, o := range outliers {
		rows = append(rows, []string{
			o.Signal,
			o.Channel,
			strconv.Itoa(o.Bin),
			formatFloat(o.Nominal),
			formatFloat(o.Relative),
		})
	}
	return Data{
		Headers:         []string{"Signal", "Channel", "Bin", "Nominal", "Relative"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight},
	}
}

// LargeSystsToTableData converts large systematics to table format, one row
// per bin with the offending modifiers joined.
func LargeSystsToTableData(large []systs.LargeSystematics) Data {
	rows := make([][]string, 0, len(large))
	for _, l := range large {
		mods := make([]string, 0, len(l.Modifiers))
		for _, m := range l.Modifiers {
			mods = append(mods, m.Name+"="+formatFloat(m.Relative))
		}
		rows = append(rows, []string{l.Signal, l.Channel, strconv.Itoa(l.Bin), strings.Join(mods, ", ")})
	}
	return Data{
		Headers:         []string{"Signal", "Channel", "Bin", "Modifiers"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignLeft},
	}
}

// GridToTableData flattens per-bin grids into one row per point.
func GridToTableData(bins []systs.GridBin, xVar, yVar string) Data {
	rows := [][]string{}
	for _, b := range bins {
		for _, p := range b.Points {
			rows = append(rows, []string{
				b.Channel,
				strconv.Itoa(b.Bin),
				p.Signal,
				formatFloat(p.X),
				formatFloat(p.Y),
				formatFloat(p.Relative),
			})
		}
	}
	return Data{
		Headers:         []string{"Channel", "Bin", "Signal", xVar, yVar, "Relative"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignLeft, AlignRight, AlignRight, AlignRight},
	}
}

// ChannelsToTableData lists the channels of an analysis.
func ChannelsToTableData(channels []systs.Channel) Data {
	rows := make([][]string, 0, len(channels))
	for _, c := range channels {
		rows = append(rows, []string{c.Path, c.Name, strconv.Itoa(c.Bins)})
	}
	return Data{
		Headers:         []string{"Path", "Channel", "Bins"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
