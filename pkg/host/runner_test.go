package host_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "''"},
		{"plain", "'plain'"},
		{"with space", "'with space'"},
		{"it's", `'it'"'"'s'`},
		{"$HOME", "'$HOME'"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, host.Quote(tt.in))
		})
	}
}

func TestJoinCommand(t *testing.T) {
	assert.Equal(t, "'ls'", host.JoinCommand("ls", nil))
	assert.Equal(t, "'ln' '-sfn' '/repo/a b' '/home/dex/a'", host.JoinCommand("ln", []string{"-sfn", "/repo/a b", "/home/dex/a"}))
}

func TestLocalRunner(t *testing.T) {
	ctx := context.Background()
	r := host.LocalRunner{}

	t.Run("captures output", func(t *testing.T) {
		res, err := host.Shell(ctx, r, `printf '%s\n' "$1"; printf oops >&2`, "hello world")
		require.NoError(t, err)
		assert.Equal(t, "hello world\n", res.Stdout)
		assert.Equal(t, "oops", res.Stderr)
		assert.Equal(t, 0, res.ExitCode)
	})

	t.Run("non-zero exit is an error", func(t *testing.T) {
		res, err := host.Shell(ctx, r, `echo broken >&2; exit 3`)
		require.Error(t, err)
		assert.Equal(t, 3, res.ExitCode)
		assert.Equal(t, 3, host.ExitCode(err))
		assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))
		assert.Contains(t, err.Error(), "broken")
	})

	t.Run("missing binary", func(t *testing.T) {
		_, err := r.Run(ctx, filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))
	})

	t.Run("context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err := r.Run(ctx, "sleep", "5")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestAsUser(t *testing.T) {
	inner := &host.RecordingRunner{}

	same := host.AsUser(inner, "dex", "dex")
	assert.Same(t, inner, same)

	sudo := host.AsUser(inner, "ana", "root")
	_, err := sudo.Run(context.Background(), "git", "pull", "--ff-only")
	require.NoError(t, err)

	calls := inner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "sudo", calls[0].Cmd)
	assert.Equal(t, []string{"-n", "-H", "-u", "ana", "--", "git", "pull", "--ff-only"}, calls[0].Args)
}

func TestRecordingRunner(t *testing.T) {
	r := &host.RecordingRunner{Respond: func(call host.Call) (host.Result, error) {
		if call.Script() != "" {
			return host.Result{Stdout: "ok\n"}, nil
		}
		return host.Result{ExitCode: 2, Stderr: "denied"}, nil
	}}

	res, err := host.Shell(context.Background(), r, "echo ok", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", res.Stdout)
	assert.Equal(t, []string{"a", "b"}, r.Calls()[0].ShellArgs())

	_, err = r.Run(context.Background(), "rm", "-rf", "/x")
	require.Error(t, err)
	assert.Equal(t, 2, host.ExitCode(err))
	assert.True(t, r.Calls()[1].Contains("'/x'"))
}

func TestSSHRunnerConfigErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing host", func(t *testing.T) {
		r := &host.SSHRunner{User: "root", KeyPath: "/nope"}
		_, err := r.Run(ctx, "true")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ssh host is required")
	})

	t.Run("missing user", func(t *testing.T) {
		r := &host.SSHRunner{Host: "127.0.0.1"}
		_, err := r.Run(ctx, "true")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ssh user is required")
	})

	t.Run("unreadable key", func(t *testing.T) {
		r := &host.SSHRunner{Host: "127.0.0.1", User: "root", KeyPath: filepath.Join(t.TempDir(), "id")}
		_, err := r.Run(ctx, "true")
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("close without connection", func(t *testing.T) {
		r := &host.SSHRunner{}
		assert.NoError(t, r.Close())
	})
}
