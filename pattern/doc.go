// Package pattern defines the data model shared by the toolbox: the rank-4
// Array (observations × channels × time × frequency), the dimension
// descriptors of each axis and the Pattern artifact that ties them together.
//
// Descriptor kinds:
//
//	events   — *Records, one record per observation (trial), arbitrary fields
//	chan     — *Records with fields number, region, label (see NewChannels)
//	time     — []Range in milliseconds
//	freq     — []Range in Hz
//
// Invariant: Array.Len(ax) == Dims.Len(ax) for every axis, and no axis is
// ever empty. Pattern.Validate enforces it.
//
// Errors:
//
//	ErrConfig    — missing or invalid spec, unknown field, observations axis misuse
//	ErrShape     — empty axis, descriptor/extent mismatch, inconsistent results
//	ErrSpecType  — bin spec value of an unsupported shape or type
package pattern
