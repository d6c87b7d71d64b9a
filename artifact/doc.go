// SPDX-License-Identifier: MIT

// Package artifact persists Pattern and Stat artifacts as single gob-encoded
// files at deterministic paths:
//
//	<root>/<source>/<kind>/<kind>_<name>_<source>.gob
//
// Save writes through a temporary file in the target directory followed by
// a rename, so readers see either the previous artifact or the complete new
// one. Writers serialise on an advisory "<path>.lock" file; a writer that
// cannot take the lock within the store's timeout (100 s by default) fails
// with ErrLockTimeout and leaves the existing artifact untouched. Lock
// release is detected through fsnotify, with polling as a fallback.
//
// Artifacts are gob-encoded because their arrays legitimately carry NaN.
// Model values stored in Stat records must be registered with gob.Register.
package artifact
