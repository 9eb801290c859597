// Package systs measures the relative size of systematic uncertainties on
// every signal sample of a pyhf patch set, flags outlying bins and lays the
// results out over the signal grid.
package systs

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/pyhf/hfval/pkg/errors"
	"github.com/pyhf/hfval/pkg/logging"
	"github.com/pyhf/hfval/pkg/pyhf"
)

// Channel is a background channel addressed by patch operations.
type Channel struct {
	Path  string `json:"path" yaml:"path"`
	Index int    `json:"index" yaml:"index"`
	Name  string `json:"name" yaml:"name"`
	Bins  int    `json:"bins" yaml:"bins"`
}

// SignalSample is a processed sample added by a patch operation.
type SignalSample struct {
	Path              string `json:"path" yaml:"path"`
	SampleSystematics `yaml:",inline"`
}

// Signal is one signal hypothesis of the patch set.
type Signal struct {
	Name    string         `json:"name" yaml:"name"`
	Patch   string         `json:"patch" yaml:"patch"`
	Values  []float64      `json:"values,omitempty" yaml:"values,omitempty"`
	Samples []SignalSample `json:"samples" yaml:"samples"`
}

// Sample returns the sample added at path.
func (s *Signal) Sample(path string) (*SignalSample, bool) {
	for i := range s.Samples {
		if s.Samples[i].Path == path {
			return &s.Samples[i], true
		}
	}
	return nil, false
}

// Analysis holds the systematics of every signal in a patch set.
type Analysis struct {
	Signals  []Signal  `json:"signals" yaml:"signals"`
	Channels []Channel `json:"channels" yaml:"channels"`
}

type options struct {
	checkApply bool
	logger     *zerolog.Logger
}

// Option configures Analyze.
type Option func(*options)

// WithApplyCheck applies every patch to the background-only workspace and
// fails when one does not apply cleanly.
func WithApplyCheck(enabled bool) Option {
	return func(o *options) {
		o.checkApply = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Analyze processes every patch whose first operation carries a sample.
// Each added sample is attributed to the background channel its path
// points at.
func Analyze(ctx context.Context, bkg *pyhf.Workspace, ps *pyhf.PatchSet, opts ...Option) (*Analysis, error) {
	o := &options{logger: &logging.Nop}
	for _, opt := range opts {
		opt(o)
	}

	names := bkg.ChannelNames()
	bins := bkg.ChannelBins()
	analysis := &Analysis{}
	channels := make(map[string]bool)

	for _, patch := range ps.Patches {
		if err := ctx.Err(); err != nil {
			return nil, errors.ErrCanceled
		}
		signalName, ok := patch.SignalName()
		if !ok {
			o.logger.Debug().Str("patch", patch.Metadata.Name).Msg("Skipping patch without a signal sample")
			continue
		}
		if o.checkApply {
			if _, err := patch.Apply(bkg); err != nil {
				return nil, err
			}
		}

		signal := Signal{Name: signalName, Patch: patch.Metadata.Name, Values: patch.Metadata.Values}
		for _, op := range patch.Operations {
			if op.Op != "add" {
				continue
			}
			sample, ok := op.Sample()
			if !ok {
				continue
			}
			idx, err := op.ChannelIndex()
			if err != nil {
				return nil, err
			}
			if idx >= len(names) {
				return nil, &errors.ValidationError{
					Field:   "path",
					Value:   op.Path,
					Message: fmt.Sprintf("patch %s addresses channel %d, background has %d", patch.Metadata.Name, idx, len(names)),
				}
			}
			if !channels[op.Path] {
				channels[op.Path] = true
				analysis.Channels = append(analysis.Channels, Channel{Path: op.Path, Index: idx, Name: names[idx], Bins: bins[names[idx]]})
			}
			processed, err := ProcessSample(sample)
			if err != nil {
				return nil, errors.WrapResource("process", "patch", patch.Metadata.Name, err)
			}
			signal.Samples = append(signal.Samples, SignalSample{Path: op.Path, SampleSystematics: *processed})
		}
		analysis.Signals = append(analysis.Signals, signal)
	}

	sort.SliceStable(analysis.Channels, func(i, j int) bool {
		return analysis.Channels[i].Path < analysis.Channels[j].Path
	})
	o.logger.Debug().
		Int("signals", len(analysis.Signals)).
		Int("channels", len(analysis.Channels)).
		Msg("Analyzed patch set")
	return analysis, nil
}

// Channel returns the channel addressed by path.
func (a *Analysis) Channel(path string) (Channel, bool) {
	for _, ch := range a.Channels {
		if ch.Path == path {
			return ch, true
		}
	}
	return Channel{}, false
}

// Outlier is a bin whose relative systematic exceeds the threshold.
type Outlier struct {
	Relative float64 `json:"relative" yaml:"relative"`
	Nominal  float64 `json:"nominal" yaml:"nominal"`
	Signal   string  `json:"signal" yaml:"signal"`
	Channel  string  `json:"channel" yaml:"channel"`
	Bin      int     `json:"bin" yaml:"bin"`
}

// Outliers returns every bin with relative size above threshold, largest
// nominal yield first. Bins are numbered from zero.
func (a *Analysis) Outliers(threshold float64) []Outlier {
	var out []Outlier
	for _, sig := range a.Signals {
		for _, s := range sig.Samples {
			ch, _ := a.Channel(s.Path)
			for b, rel := range s.Relative {
				if rel > threshold {
					out = append(out, Outlier{Relative: rel, Nominal: s.Nominal[b], Signal: sig.Name, Channel: ch.Name, Bin: b})
				}
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Nominal > out[j].Nominal
	})
	return out
}

// ModifierSize is the relative size of one modifier in one bin.
type ModifierSize struct {
	Name     string  `json:"name" yaml:"name"`
	Relative float64 `json:"relative" yaml:"relative"`
}

// LargeSystematics lists the modifiers of one signal bin above threshold.
type LargeSystematics struct {
	Signal    string         `json:"signal" yaml:"signal"`
	Channel   string         `json:"channel" yaml:"channel"`
	Bin       int            `json:"bin" yaml:"bin"`
	Modifiers []ModifierSize `json:"modifiers" yaml:"modifiers"`
}

// LargeSystematics returns, per signal, channel and bin, the modifiers
// whose finite relative size exceeds threshold. Bins without any are
// omitted. Bins are numbered from one.
func (a *Analysis) LargeSystematics(threshold float64) []LargeSystematics {
	var out []LargeSystematics
	for _, sig := range a.Signals {
		for _, s := range sig.Samples {
			ch, _ := a.Channel(s.Path)
			sizes := make([][]float64, len(s.Modifiers))
			for i, m := range s.Modifiers {
				sizes[i] = m.RelativeSize(s.Nominal)
			}
			for b := range s.Nominal {
				entry := LargeSystematics{Signal: sig.Name, Channel: ch.Name, Bin: b + 1}
				for i, m := range s.Modifiers {
					rel := sizes[i][b]
					if rel > threshold && !math.IsInf(rel, 0) && !math.IsNaN(rel) {
						entry.Modifiers = append(entry.Modifiers, ModifierSize{Name: m.Name, Relative: rel})
					}
				}
				if len(entry.Modifiers) > 0 {
					out = append(out, entry)
				}
			}
		}
	}
	return out
}

// GridPoint is one signal hypothesis placed on the x/y grid.
type GridPoint struct {
	Signal   string  `json:"signal" yaml:"signal"`
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Relative float64 `json:"relative" yaml:"relative"`
}

// GridBin holds the grid of one channel bin. Bins are numbered from one.
type GridBin struct {
	Channel string      `json:"channel" yaml:"channel"`
	Bin     int         `json:"bin" yaml:"bin"`
	Points  []GridPoint `json:"points" yaml:"points"`
}

// Grid places every signal on the x/y plane spanned by two template fields
// and reports the relative systematic of each bin of the channel at path.
// Signals without a sample in that channel count as zero, and zero entries
// are dropped from each bin independently.
func (a *Analysis) Grid(path string, tmpl *Template, xVar, yVar string) ([]GridBin, error) {
	ch, ok := a.Channel(path)
	if !ok {
		return nil, errors.NewNotFoundError("channel path", path)
	}
	for _, v := range []string{xVar, yVar} {
		if !tmpl.HasField(v) {
			return nil, &errors.ValidationError{Field: "signal_template", Value: v, Message: fmt.Sprintf("template %s has no field {%s}", tmpl, v)}
		}
	}

	grid := make([]GridBin, ch.Bins)
	for b := range grid {
		grid[b] = GridBin{Channel: ch.Name, Bin: b + 1}
	}
	for _, sig := range a.Signals {
		x, err := tmpl.Float(sig.Name, xVar)
		if err != nil {
			return nil, err
		}
		y, err := tmpl.Float(sig.Name, yVar)
		if err != nil {
			return nil, err
		}
		s, ok := sig.Sample(path)
		if !ok {
			continue
		}
		for b := range grid {
			if b < len(s.Relative) && s.Relative[b] != 0 {
				grid[b].Points = append(grid[b].Points, GridPoint{Signal: sig.Name, X: x, Y: y, Relative: s.Relative[b]})
			}
		}
	}
	return grid, nil
}
