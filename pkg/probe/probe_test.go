// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir), sh and GNU find for the shell inspector
// PURPOSE: Verify both inspectors classify paths identically

package probe_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/filesystem"
	"github.com/arthur-debert/dotlinks/pkg/host"
	"github.com/arthur-debert/dotlinks/pkg/probe"
	"github.com/arthur-debert/dotlinks/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	dir       string
	file      string
	subdir    string
	link      string
	dangling  string
	absent    string
	underFile string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:       dir,
		file:      filepath.Join(dir, ".bashrc"),
		subdir:    filepath.Join(dir, ".config"),
		link:      filepath.Join(dir, ".config", "nvim"),
		dangling:  filepath.Join(dir, ".zshrc"),
		absent:    filepath.Join(dir, ".profile"),
		underFile: filepath.Join(dir, ".bashrc", "child"),
	}
	require.NoError(t, os.WriteFile(f.file, []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(f.subdir, 0755))
	require.NoError(t, os.Symlink(f.subdir, f.link))
	require.NoError(t, os.Symlink("/nowhere/zshrc", f.dangling))
	return f
}

func (f fixture) paths() []string {
	return []string{f.file, f.subdir, f.link, f.dangling, f.absent, f.underFile, f.file}
}

func (f fixture) check(t *testing.T, result types.ProbeResult) {
	t.Helper()
	assert.Len(t, result, 6)

	assert.Equal(t, types.FilesystemEntry{Path: f.file, Exists: true, IsFile: true}, result[f.file])
	assert.Equal(t, types.FilesystemEntry{Path: f.subdir, Exists: true, IsDir: true}, result[f.subdir])
	assert.Equal(t, types.FilesystemEntry{Path: f.link, Exists: true, IsLink: true, LinkTarget: f.subdir}, result[f.link])
	assert.Equal(t, types.FilesystemEntry{Path: f.dangling, Exists: true, IsLink: true, LinkTarget: "/nowhere/zshrc"}, result[f.dangling])
	assert.Equal(t, types.Absent(f.absent), result[f.absent])
	assert.Equal(t, types.Absent(f.underFile), result[f.underFile])
}

func TestLocalInspectorProbe(t *testing.T) {
	f := newFixture(t)
	inspector := probe.NewLocalInspector(filesystem.NewOS())

	result, err := inspector.Probe(context.Background(), f.paths())
	require.NoError(t, err)
	f.check(t, result)
}

func TestShellInspectorProbe(t *testing.T) {
	f := newFixture(t)
	inspector := probe.NewShellInspector(host.LocalRunner{})

	result, err := inspector.Probe(context.Background(), f.paths())
	require.NoError(t, err)
	f.check(t, result)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b", ".hidden", "a"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	file := filepath.Join(dir, "a")

	inspectors := map[string]types.Inspector{
		"local": probe.NewLocalInspector(filesystem.NewOS()),
		"shell": probe.NewShellInspector(host.LocalRunner{}),
	}
	for name, inspector := range inspectors {
		t.Run(name, func(t *testing.T) {
			names, err := inspector.List(context.Background(), dir)
			require.NoError(t, err)
			assert.Equal(t, []string{".hidden", "a", "b"}, names)

			_, err = inspector.List(context.Background(), file)
			assert.ErrorIs(t, err, probe.ErrNotDirectory)

			_, err = inspector.List(context.Background(), filepath.Join(dir, "missing"))
			assert.ErrorIs(t, err, probe.ErrNotDirectory)

			empty := filepath.Join(dir, "empty")
			require.NoError(t, os.MkdirAll(empty, 0755))
			names, err = inspector.List(context.Background(), empty)
			require.NoError(t, err)
			assert.Empty(t, names)
			require.NoError(t, os.Remove(empty))
		})
	}
}

func TestShellInspectorFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("runner failure is a probe failure", func(t *testing.T) {
		r := &host.RecordingRunner{Respond: func(host.Call) (host.Result, error) {
			return host.Result{ExitCode: 1, Stderr: "find: permission denied"}, nil
		}}
		_, err := probe.NewShellInspector(r).Probe(ctx, []string{"/home/dex/.bashrc"})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrProbeFailure))
	})

	t.Run("missing output line is a probe failure, not absence", func(t *testing.T) {
		r := &host.RecordingRunner{Respond: func(host.Call) (host.Result, error) {
			return host.Result{Stdout: "/home/dex/.bashrc\tf\t\n"}, nil
		}}
		_, err := probe.NewShellInspector(r).Probe(ctx, []string{"/home/dex/.bashrc", "/home/dex/.zshrc"})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrProbeFailure))
		assert.Equal(t, "/home/dex/.zshrc", errors.GetErrorDetails(err)["path"])
	})

	t.Run("malformed output", func(t *testing.T) {
		r := &host.RecordingRunner{Respond: func(host.Call) (host.Result, error) {
			return host.Result{Stdout: "garbage\n"}, nil
		}}
		_, err := probe.NewShellInspector(r).Probe(ctx, []string{"/x"})
		assert.True(t, errors.IsErrorCode(err, errors.ErrProbeFailure))
	})

	t.Run("unsearchable parent fails inspection instead of reading as absent", func(t *testing.T) {
		r := &host.RecordingRunner{Respond: func(host.Call) (host.Result, error) {
			return host.Result{Stdout: "/home/dex/.ssh/config\tE\t/home/dex/.ssh\n"}, nil
		}}
		_, err := probe.NewShellInspector(r).Probe(ctx, []string{"/home/dex/.ssh/config"})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrProbeFailure))
		details := errors.GetErrorDetails(err)
		assert.Equal(t, "/home/dex/.ssh/config", details["path"])
		assert.Equal(t, "/home/dex/.ssh", details["blocked_by"])
	})

	t.Run("unprintable path", func(t *testing.T) {
		r := &host.RecordingRunner{}
		_, err := probe.NewShellInspector(r).Probe(ctx, []string{"/home/dex/odd\nname"})
		assert.True(t, errors.IsErrorCode(err, errors.ErrProbeFailure))
		assert.Empty(t, r.Calls())
	})

	t.Run("one invocation per batch", func(t *testing.T) {
		r := &host.RecordingRunner{Respond: func(call host.Call) (host.Result, error) {
			out := ""
			for _, p := range call.ShellArgs() {
				out += p + "\tN\t\n"
			}
			return host.Result{Stdout: out}, nil
		}}
		paths := make([]string, probe.MaxBatch+1)
		for i := range paths {
			paths[i] = fmt.Sprintf("/home/dex/f%d", i)
		}
		result, err := probe.NewShellInspector(r).Probe(ctx, paths)
		require.NoError(t, err)
		assert.Len(t, result, len(paths))
		assert.Len(t, r.Calls(), 2)
	})
}

func TestUnsearchableDirectoryFailsInspection(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits do not apply to root")
	}
	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.MkdirAll(filepath.Join(locked, "inner"), 0755))
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	inspectors := map[string]types.Inspector{
		"local": probe.NewLocalInspector(filesystem.NewOS()),
		"shell": probe.NewShellInspector(host.LocalRunner{}),
	}
	for name, inspector := range inspectors {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, path := range []string{
				filepath.Join(locked, "file"),
				filepath.Join(locked, "inner", "deeper"),
			} {
				_, err := inspector.Probe(ctx, []string{path})
				require.Error(t, err, path)
				assert.True(t, errors.IsErrorCode(err, errors.ErrProbeFailure), path)
			}

			_, err := inspector.List(ctx, filepath.Join(locked, "inner"))
			require.Error(t, err)
			assert.NotErrorIs(t, err, probe.ErrNotDirectory)
			assert.True(t, errors.IsErrorCode(err, errors.ErrProbeFailure))

			result, err := inspector.Probe(ctx, []string{filepath.Join(dir, "absent")})
			require.NoError(t, err)
			assert.False(t, result[filepath.Join(dir, "absent")].Exists)
		})
	}
}
