// Package state persists the applied-state snapshot of each (user,
// repository) pair.
//
// A snapshot records which link specifications the last successful run
// applied, so the next run can remove what the configuration dropped. It is
// always written whole: a run either replaces the snapshot or leaves the
// previous one untouched.
//
// Two stores exist. FileStore works on the local filesystem with atomic
// renames and flock-based locking. ShellStore works through a host.Runner
// and is used by the local-shell and ssh transports.
package state
