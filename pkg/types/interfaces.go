package types

import (
	"context"
	"time"
)

// Inspector implements batched, read-only inspection of a host's filesystem.
type Inspector interface {
	// Probe classifies every path in one batched inspection. Absent paths
	// are reported with Exists=false; a failed or inconclusive inspection
	// is an error, never an implicit absence.
	Probe(ctx context.Context, paths []string) (ProbeResult, error)
	// List returns the immediate child names of dir.
	List(ctx context.Context, dir string) ([]string, error)
}

// Executor applies an ordered list of planned actions, stopping at the first
// failure.
type Executor interface {
	Execute(ctx context.Context, actions []PlannedAction) (ExecutionReport, error)
}

// StateKey identifies the applied-state snapshot of one (user, repository).
type StateKey struct {
	User string
	Home string
	Repo string
}

// StateStore loads and replaces applied-state snapshots.
type StateStore interface {
	// Lock takes exclusive ownership of the snapshot for one run. The
	// returned function releases it.
	Lock(ctx context.Context, key StateKey) (func() error, error)
	Load(ctx context.Context, key StateKey) (AppliedState, error)
	Save(ctx context.Context, key StateKey, state AppliedState) error
}

// SourceControl makes a repository checkout present and current.
type SourceControl interface {
	Ensure(ctx context.Context, repo RepoConfig, dir string) error
	ListTop(ctx context.Context, dir string) ([]string, error)
}

// UserSource resolves eligible login identities.
type UserSource interface {
	// Lookup returns the user or an ErrUserNotEligible error.
	Lookup(ctx context.Context, name string) (User, error)
}

// ApprovalGate decides whether a previewed reconciliation may proceed.
type ApprovalGate interface {
	Approve(ctx context.Context, preview Preview) (bool, error)
}

// Clock abstracts time for deterministic backup names in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }
