// Package report writes and reads the fixed-width comparison report and
// aggregates many reports into difference histograms.
package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pyhf/hfval/pkg/constants"
	"github.com/pyhf/hfval/pkg/errors"
	"github.com/pyhf/hfval/pkg/reconcile"
)

// Column titles in report order.
var Columns = []string{"param", "pyhf val", "root val", "abs diff", "% diff"}

const (
	bannerOpen  = "\n\n########### Printing nuisance parameter comparisons to screen #############\n\n"
	bannerClose = "\n###########################################################################\n\n"
)

// gluedValue matches a value written straight after a name that filled
// the whole parameter column.
var gluedValue = regexp.MustCompile(`^(.+?)([-+]?\d\.\d+e[-+]\d+|-?nan|-?inf)$`)

// Header returns the header line of a report, without the trailing newline.
func Header() string {
	var b strings.Builder
	for i, col := range Columns {
		width := constants.ValueColumnWidth
		if i == 0 {
			width = constants.ParamColumnWidth
		}
		fmt.Fprintf(&b, "%-*s", width, col)
	}
	return b.String()
}

// FormatRow renders one record. Values are written pyhf first, then root.
func FormatRow(r reconcile.Record) string {
	return fmt.Sprintf("%-*s%-*s%-*s%-*s%-*s",
		constants.ParamColumnWidth, r.Name,
		constants.ValueColumnWidth, FormatScientific(r.ValueB),
		constants.ValueColumnWidth, FormatScientific(r.ValueA),
		constants.ValueColumnWidth, FormatScientific(r.AbsDiff),
		constants.ValueColumnWidth, FormatFixed(r.PercentDiff),
	)
}

// FormatScientific renders v with six significant decimals in exponent form.
func FormatScientific(v float64) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	return strconv.FormatFloat(v, 'e', 6, 64)
}

// FormatFixed renders v with six decimals.
func FormatFixed(v float64) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// nonFinite spells NaN and infinities the way numpy reads them back.
func nonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "nan", true
	case math.IsInf(v, 1):
		return "inf", true
	case math.IsInf(v, -1):
		return "-inf", true
	}
	return "", false
}

// Write writes the header, a blank line and one row per record.
func Write(w io.Writer, records []reconcile.Record) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n\n", Header())
	for _, r := range records {
		fmt.Fprintln(bw, FormatRow(r))
	}
	return bw.Flush()
}

// WriteFramed writes the report between banner lines, for terminal output.
func WriteFramed(w io.Writer, records []reconcile.Record) error {
	if _, err := io.WriteString(w, bannerOpen); err != nil {
		return err
	}
	if err := Write(w, records); err != nil {
		return err
	}
	_, err := io.WriteString(w, bannerClose)
	return err
}

// WriteFile writes a report to path.
func WriteFile(path string, records []reconcile.Record) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := Write(f, records); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	return errors.WrapIO("close", path, f.Close())
}

// Read parses a report. Header, banner and blank lines are skipped. Rows
// are split on whitespace; a name wider than its column runs into the
// first value and is split off again.
func Read(r io.Reader) ([]reconcile.Record, error) {
	var records []reconcile.Record
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if skipLine(fields) {
			continue
		}
		if len(fields) == len(Columns)-1 {
			if m := gluedValue.FindStringSubmatch(fields[0]); m != nil {
				fields = append([]string{m[1], m[2]}, fields[1:]...)
			}
		}
		if len(fields) != len(Columns) {
			return nil, &errors.ParseError{
				Format:  "report",
				Line:    lineNo,
				Message: fmt.Sprintf("expected %d columns, found %d", len(Columns), len(fields)),
			}
		}
		var values [4]float64
		for i, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, &errors.ParseError{Format: "report", Line: lineNo, Message: fmt.Sprintf("bad number %q", field), Err: err}
			}
			values[i] = v
		}
		records = append(records, reconcile.Record{
			Name:        fields[0],
			ValueB:      values[0],
			ValueA:      values[1],
			AbsDiff:     values[2],
			PercentDiff: values[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapParse("report", "", err)
	}
	return records, nil
}

func skipLine(fields []string) bool {
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return true
	}
	return fields[0] == Columns[0] && len(fields) > 1 && fields[1] == "pyhf"
}

// ReadFile parses the report at path.
func ReadFile(path string) ([]reconcile.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	records, err := Read(f)
	if err != nil {
		var parseErr *errors.ParseError
		if errors.As(err, &parseErr) {
			parseErr.File = path
		}
		return nil, err
	}
	return records, nil
}
