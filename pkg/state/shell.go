package state

import (
	"context"
	"strings"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/host"
	"github.com/arthur-debert/dotlinks/pkg/logging"
	"github.com/arthur-debert/dotlinks/pkg/paths"
	"github.com/arthur-debert/dotlinks/pkg/types"
)

const (
	loadScript = `if [ -e "$1" ]; then
  echo Y
  cat "$1"
else
  echo N
fi`

	saveScript = `dir=$(dirname "$1")
mkdir -p "$dir" || exit 1
tmp="$1.tmp.$$"
printf '%s' "$2" > "$tmp" || { rm -f "$tmp"; exit 1; }
mv -f "$tmp" "$1"`

	lockScript = `mkdir -p "$(dirname "$1")" || exit 1
mkdir "$1" 2>/dev/null || exit 75`

	unlockScript = `rmdir "$1"`

	// exitLocked is EX_TEMPFAIL
	exitLocked = 75
)

// ShellStore keeps snapshots on a host reached through a runner.
type ShellStore struct {
	runner host.Runner
	paths  paths.Paths
}

// NewShellStore creates a store running its commands through r.
func NewShellStore(r host.Runner, p paths.Paths) *ShellStore {
	return &ShellStore{runner: r, paths: p}
}

// Lock creates a lock directory next to the snapshot. mkdir is atomic, so
// only one run can hold it.
func (s *ShellStore) Lock(ctx context.Context, key types.StateKey) (func() error, error) {
	lockPath := s.paths.LockFile(key.Home, key.Repo)
	if _, err := host.Shell(ctx, s.runner, lockScript, lockPath); err != nil {
		if host.ExitCode(err) == exitLocked {
			return nil, errors.Newf(errors.ErrStateLocked, "state of %s for %s is locked by another run", key.Repo, key.User).
				WithDetail("lock", lockPath)
		}
		return nil, errors.Wrapf(err, errors.ErrStateWrite, "cannot lock %s", lockPath)
	}

	unlock := func() error {
		// The run's context may already be cancelled; unlocking must still happen.
		if _, err := host.Shell(context.Background(), s.runner, unlockScript, lockPath); err != nil {
			return errors.Wrapf(err, errors.ErrStateWrite, "cannot unlock %s", lockPath)
		}
		return nil
	}
	return unlock, nil
}

func (s *ShellStore) Load(ctx context.Context, key types.StateKey) (types.AppliedState, error) {
	path := s.paths.StateFile(key.Home, key.Repo)
	res, err := host.Shell(ctx, s.runner, loadScript, path)
	if err != nil {
		return types.AppliedState{}, errors.Wrapf(err, errors.ErrStateRead, "cannot read %s", path)
	}

	marker, body, _ := strings.Cut(res.Stdout, "\n")
	switch marker {
	case "N":
		return Decode(nil)
	case "Y":
	default:
		return types.AppliedState{}, errors.Newf(errors.ErrStateRead, "unexpected output reading %s", path)
	}

	st, err := Decode([]byte(body))
	if err != nil {
		return types.AppliedState{}, errors.Wrapf(err, errors.GetErrorCode(err), "state file %s", path).
			WithDetail("path", path)
	}
	return st, nil
}

// Save writes a sibling temporary file and renames it over the snapshot.
func (s *ShellStore) Save(ctx context.Context, key types.StateKey, st types.AppliedState) error {
	path := s.paths.StateFile(key.Home, key.Repo)
	data, err := Encode(st)
	if err != nil {
		return err
	}

	if _, err := host.Shell(ctx, s.runner, saveScript, path, string(data)); err != nil {
		return errors.Wrapf(err, errors.ErrStateWrite, "cannot write %s", path)
	}

	logger := logging.GetLogger("state.shell")
	logger.Debug().
		Str("path", path).
		Int("records", len(st.Applied)).
		Msg("Saved state")
	return nil
}
