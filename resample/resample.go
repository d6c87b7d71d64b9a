// SPDX-License-Identifier: MIT

// Package resample balances index lists across groups by over- or
// undersampling.
//
// Resample operates purely on indices tagged with group ids. After resampling
// every group holds the same number of indices: the size of the largest
// group for Over, of the smallest group for Under. Randomness comes from the
// caller's *rand.Rand, so repeated calls draw fresh samples while a seeded
// source keeps runs reproducible.
package resample

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"

	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

// Mode selects the resampling strategy.
type Mode int

const (
	// None returns the indices unchanged.
	None Mode = iota
	// Over draws with replacement until every group matches the largest.
	Over
	// Under draws without replacement down to the smallest group.
	Under
)

var modeNames = [...]string{None: "none", Over: "over", Under: "under"}

// String returns the configuration name of the mode.
func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode converts "none", "over" or "under" (case-insensitive; "" means
// none) into a Mode. Other names return ErrConfig.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "over":
		return Over, nil
	case "under":
		return Under, nil
	}
	return None, fmt.Errorf("resample: unknown sampling mode %q (want none, over or under): %w", s, pattern.ErrConfig)
}

// Resample balances idx across groups, where groups[k] is the group id of
// idx[k]. The result lists groups in ascending id order; within a group,
// Over keeps the original members first and appends the draws.
// Complexity: O(n + groups·target).
func Resample(rng *rand.Rand, idx, groups []int, mode Mode) ([]int, error) {
	if len(idx) != len(groups) {
		return nil, fmt.Errorf("resample: %d indices, %d group ids: %w", len(idx), len(groups), pattern.ErrShape)
	}
	if mode == None {
		return slices.Clone(idx), nil
	}
	if rng == nil {
		return nil, fmt.Errorf("resample: %s sampling needs a random source: %w", mode, pattern.ErrConfig)
	}
	if len(idx) == 0 {
		return []int{}, nil
	}

	members := make(map[int][]int)
	for k, g := range groups {
		members[g] = append(members[g], idx[k])
	}
	ids := make([]int, 0, len(members))
	lo, hi := len(idx), 0
	for g, m := range members {
		ids = append(ids, g)
		lo, hi = min(lo, len(m)), max(hi, len(m))
	}
	slices.Sort(ids)

	var out []int
	switch mode {
	case Over:
		out = make([]int, 0, hi*len(ids))
		for _, g := range ids {
			m := members[g]
			out = append(out, m...)
			for range hi - len(m) {
				out = append(out, m[rng.Intn(len(m))])
			}
		}
	case Under:
		out = make([]int, 0, lo*len(ids))
		for _, g := range ids {
			m := members[g]
			for _, p := range rng.Perm(len(m))[:lo] {
				out = append(out, m[p])
			}
		}
	default:
		return nil, fmt.Errorf("resample: %s: %w", mode, pattern.ErrConfig)
	}

	return out, nil
}
