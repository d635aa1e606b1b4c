package executor

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	pathsutil "github.com/arthur-debert/dotlinks/pkg/paths"
	"github.com/arthur-debert/dotlinks/pkg/types"
)

// applyFunc applies one action.
type applyFunc func(ctx context.Context, action types.PlannedAction) error

// run drives actions through apply, stopping at the first failure.
func run(ctx context.Context, logger zerolog.Logger, home string, actions []types.PlannedAction, apply applyFunc) (types.ExecutionReport, error) {
	report := types.ExecutionReport{Results: make([]types.ActionResult, 0, len(actions))}

	for i, action := range actions {
		if err := ctx.Err(); err != nil {
			return report, errors.Wrap(err, errors.ErrExecutionFailure, "execution interrupted")
		}

		err := Validate(action, home)
		if err == nil {
			err = apply(ctx, action)
		}
		report.Results = append(report.Results, types.ActionResult{Action: action, Err: err})

		if err != nil {
			logger.Error().
				Err(err).
				Str("action", string(action.Kind())).
				Str("path", action.Path()).
				Int("skipped", len(actions)-i-1).
				Msg("Action failed, stopping")
			return report, errors.Wrapf(err, errors.ErrExecutionFailure, "%s", action.Description()).
				WithDetail("path", action.Path()).
				WithDetail("applied", i)
		}

		logger.Info().
			Str("action", string(action.Kind())).
			Str("path", action.Path()).
			Msg(action.Description())
	}

	return report, nil
}

// Validate rejects actions whose paths are empty, relative or the root.
// When home is set, every mutated path must lie below it, and only
// EnsureDir may name home itself.
func Validate(action types.PlannedAction, home string) error {
	var paths, mutated []string
	switch a := action.(type) {
	case types.EnsureDir:
		paths = []string{a.Dir}
	case types.CreateLink:
		paths = []string{a.Target, a.Source}
		mutated = []string{a.Target}
	case types.BackupThenRelink:
		paths = []string{a.Target, a.Source, a.Backup}
		mutated = []string{a.Target, a.Backup}
	case types.RemovePath:
		paths = []string{a.Target}
		mutated = []string{a.Target}
	default:
		return errors.Newf(errors.ErrActionInvalid, "unsupported action %T", action)
	}

	for _, p := range paths {
		if p == "" || !filepath.IsAbs(p) {
			return errors.Newf(errors.ErrActionInvalid, "%s: path %q must be absolute", action.Kind(), p)
		}
		if filepath.Clean(p) == "/" && action.Kind() != types.ActionEnsureDir {
			return errors.Newf(errors.ErrActionInvalid, "%s: refusing to touch /", action.Kind())
		}
	}

	if home == "" {
		return nil
	}
	home = filepath.Clean(home)
	if action.Kind() == types.ActionEnsureDir && !pathsutil.IsWithin(home, action.Path()) {
		return errors.Newf(errors.ErrActionInvalid, "%s: %s is outside %s", action.Kind(), action.Path(), home)
	}
	for _, p := range mutated {
		if filepath.Clean(p) == home {
			return errors.Newf(errors.ErrActionInvalid, "%s: refusing to touch the home directory %s", action.Kind(), home).
				WithDetail("path", p)
		}
		if !pathsutil.IsWithin(home, p) {
			return errors.Newf(errors.ErrActionInvalid, "%s: %s is outside %s", action.Kind(), p, home).
				WithDetail("path", p)
		}
	}
	return nil
}
