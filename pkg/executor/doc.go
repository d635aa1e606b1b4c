// Package executor applies planned actions to a host.
//
// Actions run strictly in order and execution stops at the first failure;
// later actions are never attempted. Every executor is confined to one
// home directory: mutated paths must lie below it and home itself is never
// linked, backed up or removed. LocalExecutor runs each action as synthfs
// operations on the real filesystem. ShellExecutor issues mkdir, ln, mv
// and rm commands through a host.Runner.
package executor
