// SPDX-License-Identifier: MIT
// Package: binning
//
// spec.go — the bin specification tagged variant and its declarative parser.
//
// A Spec is resolved from the configuration surface exactly once (ParseSpec)
// and never re-inspected by type afterwards: every resolver switches on Kind.

package binning

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

// Kind selects the variant of a Spec.
type Kind int

const (
	// Explicit lists index groups (0-based) directly.
	Explicit Kind = iota
	// Ranges lists [start, end) intervals over the element averages (time/freq).
	Ranges
	// Membership groups records by the values of one field. With no Groups,
	// every distinct value forms its own bin.
	Membership
	// Predicate forms one bin per boolean expression over record fields.
	Predicate
	// CollapseAll forms a single bin covering the whole axis.
	CollapseAll
	// OnePerElement forms one singleton bin per existing element.
	OnePerElement
)

var kindNames = map[Kind]string{
	Explicit:      "indices",
	Ranges:        "ranges",
	Membership:    "field",
	Predicate:     "expr",
	CollapseAll:   "all",
	OnePerElement: "each",
}

// String returns the config keyword of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Spec is one axis' bin specification.
type Spec struct {
	Kind    Kind
	Indices [][]int           // Explicit
	Bounds  [][2]float64      // Ranges
	Field   string            // Membership
	Groups  [][]pattern.Value // Membership; nil means one bin per distinct value
	Exprs   []string          // Predicate
	Labels  []string          // optional, one per bin
}

// All returns the "single bin covering the whole axis" sentinel.
func All() Spec { return Spec{Kind: CollapseAll} }

// Each returns the "one singleton bin per element" sentinel.
func Each() Spec { return Spec{Kind: OnePerElement} }

// Indices returns an explicit index-group spec.
func Indices(groups ...[]int) Spec { return Spec{Kind: Explicit, Indices: groups} }

// Bounds returns a numeric range spec; each pair is [start, end).
func Bounds(pairs ...[2]float64) Spec { return Spec{Kind: Ranges, Bounds: pairs} }

// ByField returns a value-membership spec. Without groups every distinct
// value of field becomes a bin.
func ByField(field string, groups ...[]pattern.Value) Spec {
	return Spec{Kind: Membership, Field: field, Groups: groups}
}

// Where returns a predicate spec with one bin per expression.
func Where(exprs ...string) Spec { return Spec{Kind: Predicate, Exprs: exprs} }

// WithLabels returns a copy of s carrying explicit bin labels.
func (s Spec) WithLabels(labels ...string) Spec {
	s.Labels = labels
	return s
}

// Specs holds one optional spec per axis; nil leaves the axis untouched.
type Specs [pattern.Rank]*Spec

// Params renders the specs as artifact creation parameters.
func (ss Specs) Params() map[string]string {
	out := make(map[string]string)
	for ax, s := range ss {
		if s == nil {
			continue
		}
		out["bins."+pattern.Axis(ax).String()] = s.String()
	}

	return out
}

// String renders a compact, stable description of the spec.
func (s Spec) String() string {
	var b strings.Builder
	b.WriteString(s.Kind.String())
	switch s.Kind {
	case Explicit:
		fmt.Fprintf(&b, "=%v", s.Indices)
	case Ranges:
		fmt.Fprintf(&b, "=%v", s.Bounds)
	case Membership:
		fmt.Fprintf(&b, "=%s", s.Field)
		if len(s.Groups) > 0 {
			fmt.Fprintf(&b, "%v", s.Groups)
		}
	case Predicate:
		fmt.Fprintf(&b, "=%q", s.Exprs)
	}
	if len(s.Labels) > 0 {
		fmt.Fprintf(&b, " labels=%q", s.Labels)
	}

	return b.String()
}

// ParseSpec converts a YAML/JSON-decoded value into a Spec for the given axis.
//
// Accepted surface:
//
//	"all" | "collapse"                  CollapseAll
//	"each" | "iter"                     OnePerElement
//	"<expr>"                            Predicate with one expression (events/chan)
//	[[0, 1], [2]]                       Explicit (events/chan)
//	[[0, 200], [200, 400]]              Ranges (time/freq)
//	["expr1", "expr2"]                  Predicate (events/chan)
//	{indices: [[...]], labels: [...]}   Explicit
//	{ranges: [[s, e], ...]}             Ranges
//	{field: f, values: [[v, ...], ...]} Membership (values optional)
//	{expr: "..." | [...]}               Predicate
//
// Any other shape is ErrSpecType.
func ParseSpec(ax pattern.Axis, raw any) (Spec, error) {
	numeric := ax == pattern.Time || ax == pattern.Freq
	switch v := raw.(type) {
	case Spec:
		if err := checkAxisKind(ax, v); err != nil {
			return Spec{}, err
		}
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "all", "collapse":
			return All(), nil
		case "each", "iter":
			return Each(), nil
		}
		if numeric {
			return Spec{}, specTypeErrorf(ax, raw, "predicates apply to events and channels only")
		}
		return Where(v), nil
	case []any:
		return parseList(ax, v)
	case map[string]any:
		return parseMap(ax, v)
	default:
		return Spec{}, specTypeErrorf(ax, raw, "")
	}
}

func parseList(ax pattern.Axis, list []any) (Spec, error) {
	numeric := ax == pattern.Time || ax == pattern.Freq
	if len(list) == 0 {
		return Spec{}, specTypeErrorf(ax, list, "empty list")
	}
	if _, ok := list[0].(string); ok {
		if numeric {
			return Spec{}, specTypeErrorf(ax, list, "predicates apply to events and channels only")
		}
		exprs, err := toStrings(list)
		if err != nil {
			return Spec{}, specTypeErrorf(ax, list, err.Error())
		}
		return Where(exprs...), nil
	}
	if numeric {
		bounds, err := toBounds(list)
		if err != nil {
			return Spec{}, specTypeErrorf(ax, list, err.Error())
		}
		return Bounds(bounds...), nil
	}
	groups, err := toIndexGroups(list)
	if err != nil {
		return Spec{}, specTypeErrorf(ax, list, err.Error())
	}

	return Indices(groups...), nil
}

func parseMap(ax pattern.Axis, m map[string]any) (Spec, error) {
	kinds := make([]string, 0, 1)
	for _, k := range []string{"indices", "ranges", "field", "expr"} {
		if _, ok := m[k]; ok {
			kinds = append(kinds, k)
		}
	}
	for k := range m {
		switch k {
		case "indices", "ranges", "field", "expr", "values", "labels":
		default:
			return Spec{}, specTypeErrorf(ax, m, fmt.Sprintf("unknown key %q", k))
		}
	}
	if len(kinds) != 1 {
		sort.Strings(kinds)
		return Spec{}, specTypeErrorf(ax, m, fmt.Sprintf("need exactly one of indices/ranges/field/expr, got %v", kinds))
	}
	if _, ok := m["values"]; ok && kinds[0] != "field" {
		return Spec{}, specTypeErrorf(ax, m, "values applies to field bins only")
	}

	var s Spec
	var err error
	switch kinds[0] {
	case "indices":
		list, ok := m["indices"].([]any)
		if !ok {
			return Spec{}, specTypeErrorf(ax, m, "indices must be a list of lists")
		}
		var groups [][]int
		if groups, err = toIndexGroups(list); err == nil {
			s = Indices(groups...)
		}
	case "ranges":
		list, ok := m["ranges"].([]any)
		if !ok {
			return Spec{}, specTypeErrorf(ax, m, "ranges must be a list of [start, end] pairs")
		}
		var bounds [][2]float64
		if bounds, err = toBounds(list); err == nil {
			s = Bounds(bounds...)
		}
	case "field":
		field, ok := m["field"].(string)
		if !ok || field == "" {
			return Spec{}, specTypeErrorf(ax, m, "field must be a non-empty string")
		}
		s = ByField(field)
		if raw, ok := m["values"]; ok {
			s.Groups, err = toValueGroups(raw)
		}
	case "expr":
		switch e := m["expr"].(type) {
		case string:
			s = Where(e)
		case []any:
			var exprs []string
			if exprs, err = toStrings(e); err == nil {
				s = Where(exprs...)
			}
		default:
			return Spec{}, specTypeErrorf(ax, m, "expr must be a string or a list of strings")
		}
	}
	if err != nil {
		return Spec{}, specTypeErrorf(ax, m, err.Error())
	}
	if raw, ok := m["labels"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return Spec{}, specTypeErrorf(ax, m, "labels must be a list of strings")
		}
		if s.Labels, err = toStrings(list); err != nil {
			return Spec{}, specTypeErrorf(ax, m, err.Error())
		}
	}

	if err := checkAxisKind(ax, s); err != nil {
		return Spec{}, err
	}

	return s, nil
}

// checkAxisKind rejects variants that make no sense on an axis.
func checkAxisKind(ax pattern.Axis, s Spec) error {
	numeric := ax == pattern.Time || ax == pattern.Freq
	switch {
	case numeric && (s.Kind == Membership || s.Kind == Predicate):
		return specTypeErrorf(ax, s.Kind, "field and expr bins apply to events and channels only")
	case !numeric && s.Kind == Ranges:
		return specTypeErrorf(ax, s.Kind, "ranges apply to time and frequency only")
	}

	return nil
}

func specTypeErrorf(ax pattern.Axis, raw any, detail string) error {
	if detail != "" {
		return fmt.Errorf("binning: %s spec %v: %w: %s", ax, raw, pattern.ErrSpecType, detail)
	}

	return fmt.Errorf("binning: %s spec %v (%T): %w", ax, raw, raw, pattern.ErrSpecType)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}

	return 0, false
}

func toStrings(list []any) ([]string, error) {
	out := make([]string, len(list))
	for i, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("element %d is %T, want string", i, v)
		}
		out[i] = s
	}

	return out, nil
}

// toIndexGroups accepts [[i, ...], ...] or a flat [i, ...] (a single group).
func toIndexGroups(list []any) ([][]int, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("no index groups")
	}
	if _, flat := toNumber(list[0]); flat {
		list = []any{list}
	}
	out := make([][]int, len(list))
	for i, g := range list {
		inner, ok := g.([]any)
		if !ok {
			return nil, fmt.Errorf("group %d is %T, want list of indices", i, g)
		}
		out[i] = make([]int, len(inner))
		for j, v := range inner {
			n, ok := toNumber(v)
			if !ok || n != float64(int(n)) {
				return nil, fmt.Errorf("group %d element %d is %v, want integer", i, j, v)
			}
			out[i][j] = int(n)
		}
	}

	return out, nil
}

func toBounds(list []any) ([][2]float64, error) {
	out := make([][2]float64, len(list))
	for i, p := range list {
		pair, ok := p.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("range %d is %v, want [start, end]", i, p)
		}
		for j := range pair {
			n, ok := toNumber(pair[j])
			if !ok {
				return nil, fmt.Errorf("range %d bound %v is not numeric", i, pair[j])
			}
			out[i][j] = n
		}
	}

	return out, nil
}

func toValue(v any) (pattern.Value, error) {
	if s, ok := v.(string); ok {
		return pattern.Str(s), nil
	}
	if n, ok := toNumber(v); ok {
		return pattern.Num(n), nil
	}

	return pattern.Value{}, fmt.Errorf("value %v is %T, want number or string", v, v)
}

// toValueGroups accepts [[v, ...], ...] or a flat [v, ...] (one value per group).
func toValueGroups(raw any) ([][]pattern.Value, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("values must be a list")
	}
	out := make([][]pattern.Value, len(list))
	for i, g := range list {
		inner, ok := g.([]any)
		if !ok {
			inner = []any{g}
		}
		out[i] = make([]pattern.Value, len(inner))
		for j, v := range inner {
			val, err := toValue(v)
			if err != nil {
				return nil, fmt.Errorf("group %d: %w", i, err)
			}
			out[i][j] = val
		}
	}

	return out, nil
}
