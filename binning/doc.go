// Package binning turns declarative bin specifications into concrete index
// groups along one pattern axis, together with replacement elements that
// summarise each group.
//
// A Spec is a tagged variant:
//
//	Explicit       index groups, 0-based                 events, chan, time, freq
//	Ranges         [start, end) over element averages    time, freq
//	Membership     values of one field                   events, chan
//	Predicate      Go boolean expressions over fields    events, chan
//	CollapseAll    one bin with every element            any axis
//	OnePerElement  one singleton bin per element         any axis
//
// Labels are chosen as: explicit label > the bin's unique category value >
// a synthesized "<start> to <end> <unit>" string (ranges), the expression
// text (predicates) or "bin <n>".
//
// Empty bins are dropped on record axes and kept as NaN placeholders on range
// axes; an axis that would end up with no populated bin fails with
// pattern.ErrShape.
//
// Predicate expressions are compiled once per table with the yaegi Go
// interpreter; fields whose names are Go identifiers (and not keywords) are in
// scope as float64 or string variables, and the math and strings packages are
// available.
package binning
