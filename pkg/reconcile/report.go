package reconcile

import (
	"time"

	"github.com/arthur-debert/dotlinks/pkg/types"
)

// Outcome summarizes what happened to one repository.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomePlanned   Outcome = "planned"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// RepoReport is the result of reconciling one repository.
type RepoReport struct {
	User    string
	Repo    string
	Outcome Outcome
	// Preview is filled once a plan was computed.
	Preview   types.Preview
	Execution types.ExecutionReport
	// Err explains skipped and failed outcomes.
	Err      error
	Duration time.Duration
}

// RunReport aggregates every repository of one run.
type RunReport struct {
	Mode     Mode
	Started  time.Time
	Duration time.Duration
	Repos    []RepoReport
}

// Count returns how many repositories ended with outcome.
func (r RunReport) Count(outcome Outcome) int {
	n := 0
	for _, repo := range r.Repos {
		if repo.Outcome == outcome {
			n++
		}
	}
	return n
}

// HasFailures reports whether any repository failed.
func (r RunReport) HasFailures() bool {
	return r.Count(OutcomeFailed) > 0
}

// ActionsApplied totals the actions that ran successfully.
func (r RunReport) ActionsApplied() int {
	n := 0
	for _, repo := range r.Repos {
		n += repo.Execution.Applied()
	}
	return n
}
