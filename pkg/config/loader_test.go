package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "dotlinks.yaml", `
dotfiles:
  - user: dex
    url: https://github.com/dex/dots.git
    pull: true
    links:
      - from: nvim
        to: .config/nvim
      - from: polybar
        to: .config/polybar
        open: true
      - from: .bashrc
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	require.Len(t, cfg.Dotfiles, 1)

	repo := cfg.Dotfiles[0]
	assert.Equal(t, "dex", repo.User)
	assert.Equal(t, "dots", repo.Name())
	assert.Equal(t, "main", repo.EffectiveBranch())
	assert.True(t, repo.Pull)
	assert.Equal(t, []types.LinkSpec{
		{From: "nvim", To: ".config/nvim"},
		{From: "polybar", To: ".config/polybar", Open: true},
		{From: ".bashrc"},
	}, repo.Links)

	// Defaults fill the rest
	assert.Equal(t, ".dotfiles/dotlinks", cfg.Settings.RepoDir)
	assert.Equal(t, ".local/state/dotlinks", cfg.Settings.StateDir)
	assert.Equal(t, 1000, cfg.Settings.MinUID)
	assert.Equal(t, []string{"bash", "zsh", "fish", "sh"}, cfg.Settings.LoginShells)
	assert.Equal(t, TransportDirect, cfg.Transport.Kind)
	assert.Equal(t, 10*time.Second, cfg.Transport.SSH.Timeout)
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "dotlinks.toml", `
[settings]
min_uid = 500
login_shells = ["zsh"]

[transport]
kind = "ssh"

[transport.ssh]
host = "box.example.org"
timeout = "3s"

[[dotfiles]]
user = "ana"
url = "git@github.com:ana/cfg.git"
branch = "dev"

[[dotfiles.links]]
from = "i3"
to = ".config/i3"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Settings.MinUID)
	assert.Equal(t, []string{"zsh"}, cfg.Settings.LoginShells)
	assert.Equal(t, TransportSSH, cfg.Transport.Kind)
	assert.Equal(t, "box.example.org:22", cfg.Transport.SSH.Address())
	assert.Equal(t, "root", cfg.Transport.SSH.User)
	assert.Equal(t, 3*time.Second, cfg.Transport.SSH.Timeout)

	require.Len(t, cfg.Dotfiles, 1)
	assert.Equal(t, "cfg", cfg.Dotfiles[0].Name())
	assert.Equal(t, "dev", cfg.Dotfiles[0].EffectiveBranch())
	assert.Equal(t, []types.LinkSpec{{From: "i3", To: ".config/i3"}}, cfg.Dotfiles[0].Links)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "dotlinks.yaml", "dotfiles: []\n")

	t.Setenv("DOTLINKS_SETTINGS__MIN_UID", "2000")
	t.Setenv("DOTLINKS_SETTINGS__LOGIN_SHELLS", "zsh,fish")
	t.Setenv("DOTLINKS_TRANSPORT__KIND", "local")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.Settings.MinUID)
	assert.Equal(t, []string{"zsh", "fish"}, cfg.Settings.LoginShells)
	assert.Equal(t, TransportLocal, cfg.Transport.Kind)
	assert.Empty(t, cfg.Dotfiles)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "bad.yaml", "dotfiles: [\n  - user: dex\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
	})

	t.Run("wrong shape", func(t *testing.T) {
		path := writeConfig(t, "shape.yaml", "dotfiles: not-a-list\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
	})

	t.Run("invalid content", func(t *testing.T) {
		path := writeConfig(t, "invalid.yaml", "dotfiles:\n  - url: https://example.org/dots.git\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	})
}

func TestExampleContentLoads(t *testing.T) {
	path := writeConfig(t, "example.yaml", ExampleContent())

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Dotfiles, 1)
	assert.Len(t, cfg.Dotfiles[0].Links, 3)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "transport.ssh.host", envKey("DOTLINKS_TRANSPORT__SSH__HOST"))
	assert.Equal(t, "settings.min_uid", envKey("DOTLINKS_SETTINGS__MIN_UID"))
}
