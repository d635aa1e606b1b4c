package reconcile

import (
	"bytes"
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotlinks/pkg/diff"
	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/expand"
	"github.com/arthur-debert/dotlinks/pkg/logging"
	"github.com/arthur-debert/dotlinks/pkg/paths"
	"github.com/arthur-debert/dotlinks/pkg/plan"
	"github.com/arthur-debert/dotlinks/pkg/state"
	"github.com/arthur-debert/dotlinks/pkg/types"
)

// Mode selects how far a run goes.
type Mode int

const (
	// ModeApply executes approved plans and persists state.
	ModeApply Mode = iota
	// ModeDryRun updates checkouts and plans, but touches nothing else.
	ModeDryRun
	// ModeStatus plans against existing checkouts without updating them.
	ModeStatus
)

func (m Mode) String() string {
	switch m {
	case ModeApply:
		return "apply"
	case ModeDryRun:
		return "dry-run"
	case ModeStatus:
		return "status"
	}
	return "unknown"
}

// DefaultProbeRounds bounds the extra probes spent confirming backup names.
const DefaultProbeRounds = 3

// Collaborators are the adapters acting on behalf of one user.
type Collaborators struct {
	Inspector types.Inspector
	Executor  types.Executor
	Store     types.StateStore
	Source    types.SourceControl
}

// Transport provides users and per-user collaborators. A For error is a
// setup failure and aborts the run.
type Transport interface {
	Users() types.UserSource
	For(ctx context.Context, user types.User) (Collaborators, error)
}

// Engine reconciles repositories.
type Engine struct {
	transport   Transport
	paths       paths.Paths
	gate        types.ApprovalGate
	clock       types.Clock
	probeRounds int
	logger      zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the clock used for backup names.
func WithClock(c types.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithProbeRounds sets how many extra probes may confirm backup names.
func WithProbeRounds(n int) Option {
	return func(e *Engine) { e.probeRounds = n }
}

// New returns an engine. gate is consulted before any mutation in
// ModeApply.
func New(t Transport, p paths.Paths, gate types.ApprovalGate, opts ...Option) *Engine {
	e := &Engine{
		transport:   t,
		paths:       p,
		gate:        gate,
		clock:       types.SystemClock{},
		probeRounds: DefaultProbeRounds,
		logger:      logging.GetLogger("reconcile"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run reconciles repos in order. The returned error is set only for
// problems that abort the whole run: transport setup failures and
// cancellation. Everything else is recorded per repository.
func (e *Engine) Run(ctx context.Context, repos []types.RepoConfig, mode Mode) (RunReport, error) {
	report := RunReport{Mode: mode, Started: e.clock.Now()}
	start := time.Now()

	if len(repos) == 0 {
		e.logger.Info().Msg("No dotfile repositories configured, nothing to do")
		return report, nil
	}

	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}

		rr, err := e.Reconcile(ctx, repo, mode)
		report.Repos = append(report.Repos, rr)
		if err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
	}

	report.Duration = time.Since(start)
	return report, nil
}

// Reconcile processes a single repository. Only fatal errors are returned;
// all other problems end up in the report.
func (e *Engine) Reconcile(ctx context.Context, repo types.RepoConfig, mode Mode) (RepoReport, error) {
	start := time.Now()
	rr := RepoReport{User: repo.User, Repo: repo.Name()}
	logger := e.logger.With().Str("user", repo.User).Str("repo", rr.Repo).Str("mode", mode.String()).Logger()

	finish := func(outcome Outcome, err error) (RepoReport, error) {
		rr.Outcome = outcome
		rr.Err = err
		rr.Duration = time.Since(start)

		event := logger.Info()
		switch outcome {
		case OutcomeFailed:
			event = logger.Error().Err(err)
		case OutcomeSkipped:
			event = logger.Warn().Err(err)
		}
		event.Str("outcome", string(outcome)).Dur("took", rr.Duration).Msg("Repository reconciled")

		if errors.IsFatal(err) {
			return rr, err
		}
		return rr, nil
	}

	user, err := e.transport.Users().Lookup(ctx, repo.User)
	if err != nil {
		return finish(OutcomeSkipped, err)
	}

	collab, err := e.transport.For(ctx, user)
	if err != nil {
		if !errors.IsErrorCode(err, errors.ErrTransportSetup) {
			err = errors.Wrapf(err, errors.ErrTransportSetup, "cannot act as %s", user.Name)
		}
		return finish(OutcomeFailed, err)
	}

	repoDir := e.paths.RepoDir(user.Home, rr.Repo)
	rr.Preview = types.Preview{User: user.Name, Home: user.Home, Repo: rr.Repo, RepoDir: repoDir}

	if mode != ModeStatus {
		if err := collab.Source.Ensure(ctx, repo, repoDir); err != nil {
			return finish(OutcomeSkipped, asCode(err, errors.ErrRepoUnavailable, "cannot update checkout"))
		}
	}

	key := types.StateKey{User: user.Name, Home: user.Home, Repo: rr.Repo}
	if mode == ModeApply {
		unlock, err := collab.Store.Lock(ctx, key)
		if err != nil {
			return finish(OutcomeFailed, err)
		}
		defer func() {
			if err := unlock(); err != nil {
				logger.Warn().Err(err).Msg("Failed to release state lock")
			}
		}()
	}

	previous, err := collab.Store.Load(ctx, key)
	if err != nil {
		return finish(OutcomeFailed, err)
	}

	top, err := collab.Source.ListTop(ctx, repoDir)
	if err != nil {
		return finish(OutcomeSkipped, asCode(err, errors.ErrRepoUnavailable, "cannot list checkout"))
	}

	expanded, err := expand.New(collab.Inspector).Expand(ctx, repo.Links, repoDir, user.Home, top)
	if err != nil {
		return finish(OutcomeFailed, err)
	}
	for _, d := range expanded.Dropped {
		logger.Warn().Str("from", d.Spec.From).Str("reason", d.Reason).Msg("Link skipped")
	}

	obsolete := diff.Obsolete(previous.Applied, repo.Links, user.Home)
	p, err := e.plan(ctx, collab.Inspector, expanded.Links, obsolete)
	if err != nil {
		return finish(OutcomeFailed, err)
	}

	rr.Preview.Links = p.Statuses
	rr.Preview.Obsolete = p.Removed
	rr.Preview.Dropped = expanded.Dropped
	rr.Preview.Actions = p.Actions

	logger.Debug().
		Int("links", len(expanded.Links)).
		Int("obsolete", len(obsolete)).
		Int("actions", len(p.Actions)).
		Msg("Plan computed")

	if mode != ModeApply {
		return finish(OutcomePlanned, nil)
	}

	next := state.Build(expanded.Retained)

	if !rr.Preview.HasChanges() {
		if err := e.saveIfChanged(ctx, collab.Store, key, previous, next); err != nil {
			return finish(OutcomeFailed, err)
		}
		return finish(OutcomeUnchanged, nil)
	}

	approved, err := e.gate.Approve(ctx, rr.Preview)
	if err != nil {
		return finish(OutcomeFailed, err)
	}
	if !approved {
		return finish(OutcomeSkipped, errors.Newf(errors.ErrApprovalDeclined, "changes to %s for %s were declined", rr.Repo, user.Name))
	}

	rr.Execution, err = collab.Executor.Execute(ctx, p.Actions)
	if err != nil {
		return finish(OutcomeFailed, asCode(err, errors.ErrExecutionFailure, "execution failed"))
	}

	if err := collab.Store.Save(ctx, key, next); err != nil {
		return finish(OutcomeFailed, err)
	}
	return finish(OutcomeApplied, nil)
}

// plan probes and plans, probing again while the planner proposes backup
// names nobody has looked at yet.
func (e *Engine) plan(ctx context.Context, inspector types.Inspector, links []types.ResolvedLink, obsolete []string) (plan.Plan, error) {
	probed, err := inspector.Probe(ctx, plan.ProbePaths(links, obsolete))
	if err != nil {
		return plan.Plan{}, asCode(err, errors.ErrProbeFailure, "probe failed")
	}

	known := make(types.ProbeResult, len(probed))
	for path, entry := range probed {
		known[path] = entry
	}

	in := plan.Input{Links: links, Obsolete: obsolete, Probe: known, Now: e.clock.Now()}
	for round := 0; ; round++ {
		p := plan.Build(in)
		if len(p.Unprobed) == 0 {
			return p, nil
		}
		if round >= e.probeRounds {
			return plan.Plan{}, errors.Newf(errors.ErrProbeFailure, "could not confirm %d backup path(s) are free", len(p.Unprobed)).
				WithDetail("paths", p.Unprobed)
		}

		extra, err := inspector.Probe(ctx, p.Unprobed)
		if err != nil {
			return plan.Plan{}, asCode(err, errors.ErrProbeFailure, "probe failed")
		}
		for path, entry := range extra {
			known[path] = entry
		}
	}
}

func (e *Engine) saveIfChanged(ctx context.Context, store types.StateStore, key types.StateKey, previous, next types.AppliedState) error {
	before, err := state.Encode(previous)
	if err != nil {
		return err
	}
	after, err := state.Encode(next)
	if err != nil {
		return err
	}
	if bytes.Equal(before, after) {
		return nil
	}
	return store.Save(ctx, key, next)
}

// asCode keeps domain-coded errors and wraps anything else, raw command
// failures included, with code.
func asCode(err error, code errors.ErrorCode, msg string) error {
	switch errors.GetErrorCode(err) {
	case errors.ErrUnknown, errors.ErrCommandFailed:
	default:
		return err
	}
	return errors.Wrap(err, code, msg)
}
