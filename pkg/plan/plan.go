// Package plan decides the filesystem actions that converge a home
// directory to the desired links. It performs no I/O: everything it knows
// about the filesystem comes from a probe result.
package plan

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/arthur-debert/dotlinks/pkg/paths"
	"github.com/arthur-debert/dotlinks/pkg/types"
)

// BackupInfix separates a target from the timestamp in its backup name.
const BackupInfix = ".bak_"

// Input is everything the planner needs.
type Input struct {
	Links    []types.ResolvedLink
	Obsolete []string
	Probe    types.ProbeResult
	Now      time.Time
}

// Plan is the planner's output.
type Plan struct {
	// Actions holds removals first, then link actions in link order.
	Actions  []types.PlannedAction
	Statuses []types.LinkStatus
	// Removed lists the obsolete paths scheduled for removal.
	Removed []string
	// Unprobed lists chosen backup paths the probe did not cover. The plan
	// is only final once this is empty.
	Unprobed []string
}

// ProbePaths returns the paths whose state the planner needs: every link
// target and every obsolete path.
func ProbePaths(links []types.ResolvedLink, obsolete []string) []string {
	out := make([]string, 0, len(links)+len(obsolete))
	seen := make(map[string]bool)
	for _, p := range obsolete {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, l := range links {
		if !seen[l.TargetPath] {
			seen[l.TargetPath] = true
			out = append(out, l.TargetPath)
		}
	}
	return out
}

// Build computes the plan.
func Build(in Input) Plan {
	var p Plan

	for _, path := range in.Obsolete {
		if in.Probe.Exists(path) {
			p.Actions = append(p.Actions, types.RemovePath{Target: path})
			p.Removed = append(p.Removed, path)
		}
	}

	reserved := make(map[string]bool, len(in.Links))
	for _, l := range in.Links {
		reserved[l.TargetPath] = true
	}

	ensured := make(map[string]bool)
	stamp := in.Now.Unix()

	for _, link := range in.Links {
		entry := current(in.Probe, link.TargetPath, p.Removed)

		switch {
		case !entry.Exists:
			parent := filepath.Dir(link.TargetPath)
			if !ensured[parent] {
				ensured[parent] = true
				p.Actions = append(p.Actions, types.EnsureDir{Dir: parent})
			}
			p.Actions = append(p.Actions, types.CreateLink{Target: link.TargetPath, Source: link.SourceItem})
			p.Statuses = append(p.Statuses, types.LinkStatus{Link: link, State: types.LinkMissing, Existing: entry})

		case entry.PointsTo(link.SourceItem):
			p.Statuses = append(p.Statuses, types.LinkStatus{Link: link, State: types.LinkConverged, Existing: entry})

		default:
			backup, probed := chooseBackup(link.TargetPath, stamp, in.Probe, reserved)
			reserved[backup] = true
			if !probed {
				p.Unprobed = append(p.Unprobed, backup)
			}
			p.Actions = append(p.Actions, types.BackupThenRelink{
				Target: link.TargetPath,
				Source: link.SourceItem,
				Backup: backup,
			})
			p.Statuses = append(p.Statuses, types.LinkStatus{Link: link, State: types.LinkConflict, Existing: entry})
		}
	}

	return p
}

// current returns the entry expected at path once removals ran: anything
// at or beneath a removed path is gone.
func current(probe types.ProbeResult, path string, removed []string) types.FilesystemEntry {
	for _, r := range removed {
		if paths.IsWithin(r, path) {
			return types.Absent(path)
		}
	}
	if entry, ok := probe.Get(path); ok {
		return entry
	}
	return types.Absent(path)
}

// chooseBackup picks the first candidate that is neither known to exist
// nor reserved by this plan. probed reports whether the probe vouched for
// the candidate's absence.
func chooseBackup(target string, stamp int64, probe types.ProbeResult, reserved map[string]bool) (string, bool) {
	base := fmt.Sprintf("%s%s%d", target, BackupInfix, stamp)
	for i := 0; ; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d", base, i)
		}
		if reserved[candidate] || probe.Exists(candidate) {
			continue
		}
		_, probed := probe.Get(candidate)
		return candidate, probed
	}
}

// Counts tallies statuses by state.
func Counts(statuses []types.LinkStatus) map[types.LinkState]int {
	counts := make(map[types.LinkState]int, 3)
	for _, s := range statuses {
		counts[s.State]++
	}
	return counts
}
