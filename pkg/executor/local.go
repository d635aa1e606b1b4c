package executor

import (
	"context"
	stderrors "errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/logging"
	"github.com/arthur-debert/dotlinks/pkg/types"
)

// LocalExecutor applies actions in-process through synthfs operations on
// the real filesystem. Each action runs in its own pipeline, so a failure
// never leaves a later action half-applied.
type LocalExecutor struct {
	logger     zerolog.Logger
	home       string
	filesystem filesystem.FullFileSystem
}

// NewLocalExecutor returns an executor confined to home.
func NewLocalExecutor(home string) *LocalExecutor {
	// PathAwareFileSystem resolves absolute paths against /
	osfs := filesystem.NewOSFileSystem("/")
	return &LocalExecutor{
		logger:     logging.GetLogger("executor.local"),
		home:       home,
		filesystem: synthfs.NewPathAwareFileSystem(osfs, "/").WithAbsolutePaths(),
	}
}

func (e *LocalExecutor) Execute(ctx context.Context, actions []types.PlannedAction) (types.ExecutionReport, error) {
	e.logger.Debug().Int("actionCount", len(actions)).Str("home", e.home).Msg("Executing actions")
	return run(ctx, e.logger, e.home, actions, e.apply)
}

func (e *LocalExecutor) apply(ctx context.Context, action types.PlannedAction) error {
	sfs := synthfs.New()
	ops, err := e.operations(sfs, action)
	if err != nil || len(ops) == 0 {
		return err
	}

	options := synthfs.DefaultPipelineOptions()
	options.RollbackOnError = false

	_, err = synthfs.RunWithOptions(ctx, e.filesystem, options, ops...)
	return err
}

// operations converts one action into synthfs operations.
func (e *LocalExecutor) operations(sfs *synthfs.SynthFS, action types.PlannedAction) ([]synthfs.Operation, error) {
	id := operationID(action)

	switch a := action.(type) {
	case types.EnsureDir:
		if info, err := e.filesystem.Stat(a.Dir); err == nil && info.IsDir() {
			return nil, nil
		}
		return []synthfs.Operation{sfs.CreateDirWithID(id, a.Dir, 0755)}, nil

	case types.CreateLink:
		// Something may have appeared since the probe
		if err := ensureAbsent(e.filesystem, a.Target); err != nil {
			return nil, err
		}
		return []synthfs.Operation{sfs.CreateSymlinkWithID(id, a.Source, a.Target)}, nil

	case types.BackupThenRelink:
		return []synthfs.Operation{sfs.CustomOperationWithID(id, func(ctx context.Context, fs filesystem.FileSystem) error {
			if err := ensureAbsent(fs, a.Backup); err != nil {
				return err
			}
			if err := rename(fs, a.Target, a.Backup); err != nil {
				return err
			}
			if err := fs.MkdirAll(a.Parent(), 0755); err != nil {
				return err
			}
			return fs.Symlink(a.Source, a.Target)
		})}, nil

	case types.RemovePath:
		return []synthfs.Operation{sfs.CustomOperationWithID(id, func(ctx context.Context, fs filesystem.FileSystem) error {
			return removeAll(fs, a.Target)
		})}, nil
	}
	return nil, errors.Newf(errors.ErrActionInvalid, "unsupported action %T", action)
}

// ensureAbsent fails when anything, including a dangling symlink, sits at
// path.
func ensureAbsent(fs filesystem.FileSystem, path string) error {
	exists := &os.PathError{Op: "create", Path: path, Err: os.ErrExist}

	if l, ok := fs.(interface {
		Lstat(name string) (iofs.FileInfo, error)
	}); ok {
		if _, err := l.Lstat(path); err == nil {
			return exists
		} else if !notExist(err) {
			return err
		}
		return nil
	}

	if _, err := fs.Stat(path); err == nil {
		return exists
	} else if !notExist(err) {
		return err
	}
	if r, ok := fs.(interface {
		Readlink(name string) (string, error)
	}); ok {
		if _, err := r.Readlink(path); err == nil {
			return exists
		}
	}
	return nil
}

func notExist(err error) bool {
	return os.IsNotExist(err) || stderrors.Is(err, iofs.ErrNotExist)
}

func rename(fs filesystem.FileSystem, from, to string) error {
	r, ok := fs.(interface{ Rename(oldpath, newpath string) error })
	if !ok {
		return errors.Newf(errors.ErrActionInvalid, "filesystem %T cannot rename", fs)
	}
	return r.Rename(from, to)
}

func removeAll(fs filesystem.FileSystem, path string) error {
	r, ok := fs.(interface{ RemoveAll(path string) error })
	if !ok {
		return errors.Newf(errors.ErrActionInvalid, "filesystem %T cannot remove recursively", fs)
	}
	return r.RemoveAll(path)
}

func operationID(action types.PlannedAction) string {
	name := strings.NewReplacer("/", "_", ".", "_").Replace(filepath.Base(action.Path()))
	return fmt.Sprintf("%s_%s_%d", action.Kind(), name, time.Now().UnixNano())
}
