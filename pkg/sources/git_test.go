package sources_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/host"
	"github.com/arthur-debert/dotlinks/pkg/sources"
	"github.com/arthur-debert/dotlinks/pkg/types"
)

var repo = types.RepoConfig{User: "dex", URL: "https://example.org/dex/dots.git", Pull: true}

// respond answers `test -d` with exitTest and everything else successfully.
func respond(exitTest int, failing string) func(host.Call) (host.Result, error) {
	return func(call host.Call) (host.Result, error) {
		if call.Cmd == "test" {
			return host.Result{ExitCode: exitTest}, nil
		}
		if failing != "" && call.Contains(failing) {
			return host.Result{ExitCode: 128, Stderr: "fatal: " + failing}, nil
		}
		return host.Result{}, nil
	}
}

func lines(calls []host.Call) []string {
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Line())
	}
	return out
}

func TestEnsureClonesWhenAbsent(t *testing.T) {
	r := &host.RecordingRunner{Respond: respond(1, "")}
	err := sources.NewGit(r).Ensure(context.Background(), repo, "/home/dex/.dotfiles/dotlinks/dots")
	require.NoError(t, err)

	got := lines(r.Calls())
	assert.Contains(t, got, "'mkdir' '-p' '--' '/home/dex/.dotfiles/dotlinks'")
	assert.Contains(t, got, "'git' 'clone' '--branch' 'main' '--' 'https://example.org/dex/dots.git' '/home/dex/.dotfiles/dotlinks/dots'")
	for _, line := range got {
		assert.NotContains(t, line, "pull")
	}
}

func TestEnsureUpdatesExistingCheckout(t *testing.T) {
	tests := []struct {
		name     string
		pull     bool
		wantPull bool
	}{
		{name: "pull enabled", pull: true, wantPull: true},
		{name: "pull disabled", pull: false, wantPull: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &host.RecordingRunner{Respond: respond(0, "")}
			cfg := repo
			cfg.Pull = tt.pull
			cfg.Branch = "work"

			require.NoError(t, sources.NewGit(r).Ensure(context.Background(), cfg, "/srv/dots"))

			got := lines(r.Calls())
			assert.Contains(t, got, "'git' '-C' '/srv/dots' 'checkout' 'work'")
			if tt.wantPull {
				assert.Contains(t, got, "'git' '-C' '/srv/dots' 'pull' '--ff-only'")
			} else {
				assert.NotContains(t, got, "'git' '-C' '/srv/dots' 'pull' '--ff-only'")
			}
		})
	}
}

func TestEnsureFailuresAreRepoUnavailable(t *testing.T) {
	tests := []struct {
		name     string
		exitTest int
		failing  string
	}{
		{name: "git missing", exitTest: 1, failing: "command -v git"},
		{name: "clone fails", exitTest: 1, failing: "clone"},
		{name: "pull fails", exitTest: 0, failing: "pull"},
		{name: "checkout inspection fails", exitTest: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &host.RecordingRunner{Respond: respond(tt.exitTest, tt.failing)}
			err := sources.NewGit(r).Ensure(context.Background(), repo, "/srv/dots")
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrRepoUnavailable))
			assert.True(t, errors.IsSkip(err))
		})
	}
}

func TestListTop(t *testing.T) {
	r := &host.RecordingRunner{Respond: func(host.Call) (host.Result, error) {
		return host.Result{Stdout: ".bashrc\n.git\nnvim\npolybar\n"}, nil
	}}

	names, err := sources.NewGit(r).ListTop(context.Background(), "/srv/dots")
	require.NoError(t, err)
	assert.Equal(t, []string{".bashrc", "nvim", "polybar"}, names)
}

func TestListTopFailure(t *testing.T) {
	r := &host.RecordingRunner{Respond: func(host.Call) (host.Result, error) {
		return host.Result{ExitCode: 2, Stderr: "ls: cannot access"}, nil
	}}

	_, err := sources.NewGit(r).ListTop(context.Background(), "/srv/missing")
	assert.True(t, errors.IsErrorCode(err, errors.ErrRepoUnavailable))
}

// TEST TYPE: Integration Test
// DEPENDENCIES: git binary, real filesystem
// PURPOSE: Clone a local repository, then update it in place
func TestGitAgainstLocalRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	root := t.TempDir()
	origin := filepath.Join(root, "origin")
	require.NoError(t, os.MkdirAll(filepath.Join(origin, "nvim"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(origin, ".bashrc"), []byte("export A=1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(origin, "nvim", "init.lua"), []byte("--\n"), 0644))

	git := func(args ...string) {
		t.Helper()
		base := []string{"-c", "user.name=test", "-c", "user.email=test@example.org", "-C", origin}
		out, err := exec.Command("git", append(base, args...)...).CombinedOutput()
		require.NoError(t, err, strings.TrimSpace(string(out)))
	}
	git("init", "-q", "-b", "main")
	git("add", ".")
	git("commit", "-q", "-m", "initial")

	cfg := types.RepoConfig{User: "dex", URL: origin, Pull: true}
	dir := filepath.Join(root, "home", ".dotfiles", "dotlinks", cfg.Name())
	g := sources.NewGit(host.LocalRunner{})

	require.NoError(t, g.Ensure(context.Background(), cfg, dir))
	names, err := g.ListTop(context.Background(), dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".bashrc", "nvim"}, names)

	// Second run finds the checkout and fast-forwards it
	require.NoError(t, os.WriteFile(filepath.Join(origin, "zshrc"), []byte("#\n"), 0644))
	git("add", ".")
	git("commit", "-q", "-m", "zsh")

	require.NoError(t, g.Ensure(context.Background(), cfg, dir))
	names, err = g.ListTop(context.Background(), dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".bashrc", "nvim", "zshrc"}, names)
}
