// SPDX-License-Identifier: MIT

// Package selector derives per-observation vectors from the event records:
// classification targets (or regression values), cross-validation fold ids
// and training-group ids.
//
// All vectors preserve observation order. Categories are enumerated in the
// first-seen order of their value combination while scanning the records
// from the top, so the first distinct combination gets code 1, the second
// code 2, and so on. This ordering is part of the contract.
package selector
