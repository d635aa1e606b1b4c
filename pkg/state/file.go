package state

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/logging"
	"github.com/arthur-debert/dotlinks/pkg/paths"
	"github.com/arthur-debert/dotlinks/pkg/types"
)

// FileStore keeps snapshots on the local operating system filesystem. Reads,
// advisory locks and atomic renames all go to the same disk.
type FileStore struct {
	paths paths.Paths
}

// NewFileStore creates a store laying files out according to p.
func NewFileStore(p paths.Paths) *FileStore {
	return &FileStore{paths: p}
}

// Lock takes a non-blocking exclusive lock on the snapshot.
func (s *FileStore) Lock(ctx context.Context, key types.StateKey) (func() error, error) {
	lockPath := s.paths.LockFile(key.Home, key.Repo)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStateWrite, "cannot create state directory for %s", key.Repo)
	}

	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrStateWrite, "cannot lock %s", lockPath)
	}
	if !locked {
		return nil, errors.Newf(errors.ErrStateLocked, "state of %s for %s is locked by another run", key.Repo, key.User).
			WithDetail("lock", lockPath)
	}

	logger := logging.GetLogger("state.file")
	logger.Debug().Str("lock", lockPath).Msg("Locked state")
	return lock.Unlock, nil
}

func (s *FileStore) Load(ctx context.Context, key types.StateKey) (types.AppliedState, error) {
	path := s.paths.StateFile(key.Home, key.Repo)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Decode(nil)
		}
		return types.AppliedState{}, errors.Wrapf(err, errors.ErrStateRead, "cannot read %s", path)
	}

	st, err := Decode(data)
	if err != nil {
		return types.AppliedState{}, errors.Wrapf(err, errors.GetErrorCode(err), "state file %s", path).
			WithDetail("path", path)
	}
	return st, nil
}

// Save atomically replaces the snapshot.
func (s *FileStore) Save(ctx context.Context, key types.StateKey, st types.AppliedState) error {
	path := s.paths.StateFile(key.Home, key.Repo)
	data, err := Encode(st)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrStateWrite, "cannot create %s", filepath.Dir(path))
	}
	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrStateWrite, "cannot write %s", path)
	}

	logger := logging.GetLogger("state.file")
	logger.Debug().
		Str("path", path).
		Int("records", len(st.Applied)).
		Msg("Saved state")
	return nil
}
