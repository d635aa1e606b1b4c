package probe

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"syscall"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/filesystem"
	"github.com/arthur-debert/dotlinks/pkg/types"
)

// LocalInspector inspects the filesystem of the invoking process.
type LocalInspector struct {
	FS filesystem.FS
}

// NewLocalInspector returns an inspector over fsys.
func NewLocalInspector(fsys filesystem.FS) *LocalInspector {
	return &LocalInspector{FS: fsys}
}

func (l *LocalInspector) Probe(ctx context.Context, paths []string) (types.ProbeResult, error) {
	result := make(types.ProbeResult, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrProbeFailure, "probe interrupted")
		}
		if _, done := result[path]; done {
			continue
		}
		entry, err := l.entry(path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrProbeFailure, "cannot inspect %s", path).
				WithDetail("path", path)
		}
		result[path] = entry
	}
	return result, nil
}

func (l *LocalInspector) entry(path string) (types.FilesystemEntry, error) {
	info, err := l.FS.Lstat(path)
	if err != nil {
		if isAbsent(err) {
			return types.Absent(path), nil
		}
		return types.FilesystemEntry{}, err
	}

	entry := types.FilesystemEntry{Path: path, Exists: true}
	switch mode := info.Mode(); {
	case mode&fs.ModeSymlink != 0:
		target, err := l.FS.Readlink(path)
		if err != nil {
			return types.FilesystemEntry{}, err
		}
		entry.IsLink = true
		entry.LinkTarget = target
	case mode.IsDir():
		entry.IsDir = true
	case mode.IsRegular():
		entry.IsFile = true
	}
	return entry, nil
}

func (l *LocalInspector) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrProbeFailure, "listing interrupted")
	}

	info, err := l.FS.Stat(dir)
	if err != nil {
		if isAbsent(err) {
			return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
		}
		return nil, errors.Wrapf(err, errors.ErrProbeFailure, "cannot list %s", dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}

	entries, err := l.FS.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrProbeFailure, "cannot list %s", dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// isAbsent treats "a parent is not a directory" like a missing path: the
// target cannot exist there.
func isAbsent(err error) bool {
	return os.IsNotExist(err) || stderrors.Is(err, syscall.ENOTDIR)
}
