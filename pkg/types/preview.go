package types

// LinkState is the planner's verdict for one resolved link.
type LinkState string

const (
	LinkConverged LinkState = "converged"
	LinkMissing   LinkState = "missing"
	LinkConflict  LinkState = "conflict"
)

// LinkStatus pairs a resolved link with its current state.
type LinkStatus struct {
	Link     ResolvedLink
	State    LinkState
	Existing FilesystemEntry
}

// Preview is what an approval gate is shown before anything is mutated.
type Preview struct {
	User     string
	Home     string
	Repo     string
	RepoDir  string
	Links    []LinkStatus
	Obsolete []string
	Dropped  []DroppedSpec
	Actions  []PlannedAction
}

// HasChanges reports whether applying the preview mutates anything.
func (p Preview) HasChanges() bool {
	return len(p.Actions) > 0
}
