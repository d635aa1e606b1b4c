// Package probe inspects target paths without changing them.
//
// Both inspectors classify every requested path as absent, file, directory,
// symlink (with its literal, unresolved target) or other, in one batched
// pass. Absence is a normal answer. Anything the inspector cannot vouch
// for, such as a failed command, an unreadable path or a path missing from
// the output, fails the whole probe with PROBE_FAILURE; a probe never
// guesses absence.
package probe

import (
	stderrors "errors"
)

// ErrNotDirectory is returned by List when the path is not a directory.
var ErrNotDirectory = stderrors.New("not a directory")
