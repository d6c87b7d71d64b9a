// SPDX-License-Identifier: MIT
// Package: binning
//
// resolve.go — turning a Spec into concrete index groups and the replacement
// elements that summarise each group.
//
// Two element families, two empty-bin policies:
//   - Records (events, channels): a bin that matches nothing is dropped, and a
//     missing category value never forms a bin.
//   - Ranges (time, frequency): a bin that matches nothing is kept as a NaN
//     placeholder so the axis keeps its requested layout.
//
// In both families an axis left with zero non-empty bins is ErrShape.

package binning

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

// DefaultLabelField is the record field that carries bin labels.
const DefaultLabelField = "label"

// Option customises record resolution.
type Option func(*options)

type options struct {
	labelField string
}

// WithLabelField sets the record field that receives bin labels.
// Panics on an empty name (programmer error).
func WithLabelField(name string) Option {
	if name == "" {
		panic("binning: WithLabelField(\"\")")
	}
	return func(o *options) { o.labelField = name }
}

func gatherOptions(opts []Option) options {
	o := options{labelField: DefaultLabelField}
	for _, fn := range opts {
		fn(&o)
	}

	return o
}

// candidate is a bin before the empty-bin policy is applied.
type candidate struct {
	idx     []int
	natural string // unique category value, "" when none
	fallback string
}

// ResolveRecords bins an events or channels table.
// Returns the index groups and a new table with one record per bin.
func ResolveRecords(recs *pattern.Records, spec Spec, opts ...Option) ([][]int, *pattern.Records, error) {
	o := gatherOptions(opts)
	n := recs.Len()
	if n == 0 {
		return nil, nil, fmt.Errorf("binning: %s: %w: no elements to bin", spec, pattern.ErrShape)
	}

	var cands []candidate
	switch spec.Kind {
	case CollapseAll:
		cands = []candidate{{idx: pattern.Identity(n), fallback: "all"}}
	case OnePerElement:
		return onePerRecord(recs, spec, o)
	case Explicit:
		if err := checkIndices(spec, n); err != nil {
			return nil, nil, err
		}
		for k, g := range spec.Indices {
			cands = append(cands, candidate{idx: append([]int(nil), g...), fallback: defaultLabel(k)})
		}
	case Membership:
		col, err := recs.Column(spec.Field)
		if err != nil {
			return nil, nil, fmt.Errorf("binning: %s: %w", spec, err)
		}
		cands = membership(col, spec.Groups)
	case Predicate:
		ps, err := compilePredicates(recs, spec.Exprs)
		if err != nil {
			return nil, nil, err
		}
		groups, err := ps.bins()
		if err != nil {
			return nil, nil, err
		}
		for k, g := range groups {
			cands = append(cands, candidate{idx: g, fallback: spec.Exprs[k]})
		}
	default:
		return nil, nil, fmt.Errorf("binning: %s: %w: not applicable to records", spec, pattern.ErrSpecType)
	}

	if len(spec.Labels) > 0 && len(spec.Labels) != len(cands) {
		return nil, nil, fmt.Errorf("binning: %s: %w: %d labels for %d bins",
			spec, pattern.ErrConfig, len(spec.Labels), len(cands))
	}

	var bins [][]int
	var labels []string
	for k, c := range cands {
		if len(c.idx) == 0 {
			continue
		}
		bins = append(bins, c.idx)
		switch {
		case len(spec.Labels) > 0:
			labels = append(labels, spec.Labels[k])
		case c.natural != "":
			labels = append(labels, c.natural)
		default:
			labels = append(labels, constantLabel(recs, o.labelField, c.idx, c.fallback))
		}
	}
	if len(bins) == 0 {
		return nil, nil, fmt.Errorf("binning: %s: %w: every bin is empty", spec, pattern.ErrShape)
	}

	out, err := summariseRecords(recs, bins, labels, o.labelField)
	if err != nil {
		return nil, nil, err
	}

	return bins, out, nil
}

// onePerRecord returns singleton bins and the original records, relabelled
// only when explicit labels are given.
func onePerRecord(recs *pattern.Records, spec Spec, o options) ([][]int, *pattern.Records, error) {
	n := recs.Len()
	bins := make([][]int, n)
	for i := range bins {
		bins[i] = []int{i}
	}
	if len(spec.Labels) == 0 {
		out, err := recs.Subset(pattern.Identity(n))
		return bins, out, err
	}
	if len(spec.Labels) != n {
		return nil, nil, fmt.Errorf("binning: %s: %w: %d labels for %d bins", spec, pattern.ErrConfig, len(spec.Labels), n)
	}
	out, err := summariseRecords(recs, bins, spec.Labels, o.labelField)

	return bins, out, err
}

// membership groups the records of one column. Missing values never join a bin.
func membership(col []pattern.Value, groups [][]pattern.Value) []candidate {
	if len(groups) == 0 {
		var cands []candidate
		seen := make(map[string]int)
		for i, v := range col {
			if v.IsMissing() {
				continue
			}
			k := pattern.Key(v)
			pos, ok := seen[k]
			if !ok {
				pos = len(cands)
				seen[k] = pos
				cands = append(cands, candidate{natural: v.String()})
			}
			cands[pos].idx = append(cands[pos].idx, i)
		}
		return cands
	}

	cands := make([]candidate, len(groups))
	for k, g := range groups {
		names := make([]string, len(g))
		keys := make(map[string]bool, len(g))
		for j, v := range g {
			names[j] = v.String()
			keys[pattern.Key(v)] = true
		}
		cands[k].fallback = strings.Join(names, "/")
		if len(g) == 1 {
			cands[k].natural = names[0]
		}
		for i, v := range col {
			if !v.IsMissing() && keys[pattern.Key(v)] {
				cands[k].idx = append(cands[k].idx, i)
			}
		}
	}

	return cands
}

// constantLabel keeps an existing label that all members share, else fallback.
func constantLabel(recs *pattern.Records, field string, idx []int, fallback string) string {
	col, err := recs.Column(field)
	if err != nil {
		return fallback
	}
	v := col[idx[0]]
	for _, i := range idx[1:] {
		if !col[i].Equal(v) {
			return fallback
		}
	}
	if v.IsMissing() {
		return fallback
	}

	return v.String()
}

// summariseRecords builds one record per bin: a field survives only if it is
// constant inside every bin; the label field is always present.
func summariseRecords(recs *pattern.Records, bins [][]int, labels []string, labelField string) (*pattern.Records, error) {
	var fields []string
	var cols [][]pattern.Value
	for _, f := range recs.Fields() {
		if f == labelField {
			continue
		}
		src, _ := recs.Column(f)
		col := make([]pattern.Value, len(bins))
		keep := true
		for b, idx := range bins {
			v := src[idx[0]]
			for _, i := range idx[1:] {
				if !src[i].Equal(v) {
					keep = false
					break
				}
			}
			if !keep {
				break
			}
			col[b] = v
		}
		if keep {
			fields = append(fields, f)
			cols = append(cols, col)
		}
	}

	lab := make([]pattern.Value, len(bins))
	for b := range bins {
		lab[b] = pattern.Str(labels[b])
	}
	fields = append(fields, labelField)
	cols = append(cols, lab)

	out, err := pattern.NewRecordsFromColumns(fields, cols)
	if err != nil {
		return nil, fmt.Errorf("binning: summarise records: %w", err)
	}

	return out, nil
}

// ResolveRanges bins a time or frequency axis. unit is used for synthesized
// labels ("0 to 200 ms").
func ResolveRanges(elems []pattern.Range, spec Spec, unit string) ([][]int, []pattern.Range, error) {
	n := len(elems)
	if n == 0 {
		return nil, nil, fmt.Errorf("binning: %s: %w: no elements to bin", spec, pattern.ErrShape)
	}

	var bins [][]int
	var fixed []string // labels implied by the spec itself, "" when data-driven
	switch spec.Kind {
	case CollapseAll:
		bins = [][]int{pattern.Identity(n)}
		fixed = []string{""}
	case OnePerElement:
		bins = make([][]int, n)
		fixed = make([]string, n)
		for i := range bins {
			bins[i] = []int{i}
			fixed[i] = elems[i].Label
		}
	case Explicit:
		if err := checkIndices(spec, n); err != nil {
			return nil, nil, err
		}
		if err := checkContiguous(spec); err != nil {
			return nil, nil, err
		}
		for k, g := range spec.Indices {
			bins = append(bins, append([]int(nil), g...))
			fixed = append(fixed, "")
			if len(g) == 0 {
				fixed[k] = defaultLabel(k)
			}
		}
	case Ranges:
		if err := checkBounds(spec); err != nil {
			return nil, nil, err
		}
		for _, b := range spec.Bounds {
			var idx []int
			for i, e := range elems {
				if e.Avg >= b[0] && e.Avg < b[1] {
					idx = append(idx, i)
				}
			}
			bins = append(bins, idx)
			fixed = append(fixed, pattern.RangeLabel(b[0], b[1], unit))
		}
	default:
		return nil, nil, fmt.Errorf("binning: %s: %w: not applicable to %s ranges", spec, pattern.ErrSpecType, unit)
	}

	if len(spec.Labels) > 0 && len(spec.Labels) != len(bins) {
		return nil, nil, fmt.Errorf("binning: %s: %w: %d labels for %d bins",
			spec, pattern.ErrConfig, len(spec.Labels), len(bins))
	}

	out := make([]pattern.Range, len(bins))
	filled := 0
	for k, idx := range bins {
		label := fixed[k]
		if len(spec.Labels) > 0 {
			label = spec.Labels[k]
		}
		if len(idx) == 0 {
			out[k] = pattern.Placeholder(label)
			continue
		}
		filled++
		out[k] = summariseRange(elems, idx, label, unit)
	}
	if filled == 0 {
		return nil, nil, fmt.Errorf("binning: %s: %w: every bin is empty", spec, pattern.ErrShape)
	}

	return bins, out, nil
}

// summariseRange takes the min start, max end and mean average of the members.
func summariseRange(elems []pattern.Range, idx []int, label, unit string) pattern.Range {
	if len(idx) == 1 && label == elems[idx[0]].Label {
		return elems[idx[0]]
	}
	r := pattern.Range{Start: math.Inf(1), End: math.Inf(-1)}
	for _, i := range idx {
		e := elems[i]
		r.Start = math.Min(r.Start, e.Start)
		r.End = math.Max(r.End, e.End)
		r.Avg += e.Avg
	}
	r.Avg /= float64(len(idx))
	r.Label = label
	if r.Label == "" {
		r.Label = pattern.RangeLabel(r.Start, r.End, unit)
	}

	return r
}

func checkIndices(spec Spec, n int) error {
	if len(spec.Indices) == 0 {
		return fmt.Errorf("binning: %s: %w: no index groups", spec, pattern.ErrConfig)
	}
	for k, g := range spec.Indices {
		for _, i := range g {
			if i < 0 || i >= n {
				return fmt.Errorf("binning: %s: bin %d: %w: index %d (len %d)", spec, k, pattern.ErrConfig, i, n)
			}
		}
	}

	return nil
}

// checkBounds requires ascending, non-overlapping [start, end) ranges.
func checkBounds(spec Spec) error {
	if len(spec.Bounds) == 0 {
		return fmt.Errorf("binning: %s: %w: no ranges", spec, pattern.ErrConfig)
	}
	for k, b := range spec.Bounds {
		if !(b[0] < b[1]) {
			return fmt.Errorf("binning: %s: range %d: %w: start %g not below end %g", spec, k, pattern.ErrConfig, b[0], b[1])
		}
		if k > 0 && b[0] < spec.Bounds[k-1][1] {
			return fmt.Errorf("binning: %s: range %d: %w: overlaps or precedes range %d", spec, k, pattern.ErrConfig, k-1)
		}
	}

	return nil
}

// checkContiguous requires explicit groups on a range axis to be runs of
// consecutive ascending indices, each starting after the previous run ends.
// Empty groups are skipped.
func checkContiguous(spec Spec) error {
	last := -1
	for k, g := range spec.Indices {
		if len(g) == 0 {
			continue
		}
		if g[0] <= last {
			return fmt.Errorf("binning: %s: group %d: %w: starts at %d, not after index %d",
				spec, k, pattern.ErrConfig, g[0], last)
		}
		for j := 1; j < len(g); j++ {
			if g[j] != g[j-1]+1 {
				return fmt.Errorf("binning: %s: group %d: %w: indices not consecutive ascending",
					spec, k, pattern.ErrConfig)
			}
		}
		last = g[len(g)-1]
	}

	return nil
}

func defaultLabel(k int) string {
	return "bin " + strconv.Itoa(k+1)
}
