package types

import (
	"fmt"
	"path/filepath"
)

// ActionKind tags the variant of a PlannedAction.
type ActionKind string

const (
	ActionEnsureDir        ActionKind = "ensure-dir"
	ActionCreateLink       ActionKind = "create-link"
	ActionBackupThenRelink ActionKind = "backup-then-relink"
	ActionRemovePath       ActionKind = "remove-path"
)

// PlannedAction is a single filesystem mutation emitted by the planner.
// The set of variants is closed: EnsureDir, CreateLink, BackupThenRelink and
// RemovePath.
type PlannedAction interface {
	Kind() ActionKind
	// Path is the path the action mutates.
	Path() string
	Description() string
	isPlannedAction()
}

// EnsureDir creates a directory and its parents if missing.
type EnsureDir struct {
	Dir string
}

func (a EnsureDir) Kind() ActionKind    { return ActionEnsureDir }
func (a EnsureDir) Path() string        { return a.Dir }
func (a EnsureDir) Description() string { return fmt.Sprintf("ensure directory %s", a.Dir) }
func (EnsureDir) isPlannedAction()      {}

// CreateLink creates a symlink at Target pointing to Source.
type CreateLink struct {
	Target string
	Source string
}

func (a CreateLink) Kind() ActionKind { return ActionCreateLink }
func (a CreateLink) Path() string     { return a.Target }
func (a CreateLink) Description() string {
	return fmt.Sprintf("link %s -> %s", a.Target, a.Source)
}
func (CreateLink) isPlannedAction() {}

// BackupThenRelink moves whatever sits at Target to Backup, ensures the
// parent directory and links Target to Source.
type BackupThenRelink struct {
	Target string
	Source string
	Backup string
}

func (a BackupThenRelink) Kind() ActionKind { return ActionBackupThenRelink }
func (a BackupThenRelink) Path() string     { return a.Target }
func (a BackupThenRelink) Parent() string   { return filepath.Dir(a.Target) }
func (a BackupThenRelink) Description() string {
	return fmt.Sprintf("back up %s to %s and link -> %s", a.Target, a.Backup, a.Source)
}
func (BackupThenRelink) isPlannedAction() {}

// RemovePath recursively removes an obsolete path.
type RemovePath struct {
	Target string
}

func (a RemovePath) Kind() ActionKind    { return ActionRemovePath }
func (a RemovePath) Path() string        { return a.Target }
func (a RemovePath) Description() string { return fmt.Sprintf("remove %s", a.Target) }
func (RemovePath) isPlannedAction()      {}

// ActionResult is the outcome of executing one planned action.
type ActionResult struct {
	Action PlannedAction
	Err    error
}

// Succeeded reports whether the action applied cleanly.
func (r ActionResult) Succeeded() bool { return r.Err == nil }

// ExecutionReport collects per-action outcomes of one executor call. Actions
// after the first failure are never attempted and do not appear.
type ExecutionReport struct {
	Results []ActionResult
}

// Failed returns the first failed result, if any.
func (r ExecutionReport) Failed() (ActionResult, bool) {
	for _, res := range r.Results {
		if res.Err != nil {
			return res, true
		}
	}
	return ActionResult{}, false
}

// Applied counts the actions that succeeded.
func (r ExecutionReport) Applied() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}
