package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dotlinks/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for dotlinks
	EnvConfigDir = "DOTLINKS_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for dotlinks
	EnvStateDir = "DOTLINKS_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppName is the directory name for dotlinks-specific files
	AppName = "dotlinks"

	// DefaultRepoDir is where checkouts live, relative to the user's home
	DefaultRepoDir = ".dotfiles/dotlinks"

	// DefaultStateDir is where applied-state snapshots live, relative to
	// the user's home
	DefaultStateDir = ".local/state/dotlinks"

	// StateFilePrefix prefixes the repository name in snapshot file names
	StateFilePrefix = "dotfiles_"

	// LockSuffix is appended to a snapshot path to name its lock
	LockSuffix = ".lock"

	// DefaultConfigFile is the configuration file looked up in ConfigDir
	DefaultConfigFile = "config.yaml"

	// LogFileName is the name of the log file
	LogFileName = "dotlinks.log"
)

// Paths computes every location dotlinks reads or writes.
type Paths interface {
	RepoDir(home, repo string) string
	StateFile(home, repo string) string
	LockFile(home, repo string) string
	ConfigDir() string
	ConfigFile() string
	StateDir() string
	LogFilePath() string
}

type paths struct {
	// repoDir and stateDir are relative to each user's home
	repoDir  string
	stateDir string

	xdgConfig string
	xdgState  string
}

// New creates a Paths instance. repoDir and stateDir are relative to the
// home directory of the user being reconciled; empty values take the
// defaults.
func New(repoDir, stateDir string) (Paths, error) {
	if repoDir == "" {
		repoDir = DefaultRepoDir
	}
	if stateDir == "" {
		stateDir = DefaultStateDir
	}

	for _, rel := range []string{repoDir, stateDir} {
		if err := ValidateRelative(rel); err != nil {
			return nil, err
		}
	}

	p := &paths{
		repoDir:  filepath.Clean(repoDir),
		stateDir: filepath.Clean(stateDir),
	}
	p.setupXDGDirs()
	return p, nil
}

// setupXDGDirs initializes XDG directories, respecting environment overrides
func (p *paths) setupXDGDirs() {
	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.xdgConfig = expandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, AppName)
	}

	if stateDir := os.Getenv(EnvStateDir); stateDir != "" {
		p.xdgState = expandHome(stateDir)
	} else {
		p.xdgState = filepath.Join(xdg.StateHome, AppName)
	}
}

// RepoDir returns the checkout directory of repo for the user whose home
// is home.
func (p *paths) RepoDir(home, repo string) string {
	return filepath.Join(home, p.repoDir, repo)
}

// StateFile returns the applied-state snapshot of repo for the user whose
// home is home.
func (p *paths) StateFile(home, repo string) string {
	return filepath.Join(home, p.stateDir, StateFilePrefix+repo)
}

// LockFile returns the lock guarding StateFile.
func (p *paths) LockFile(home, repo string) string {
	return p.StateFile(home, repo) + LockSuffix
}

// ConfigDir returns the XDG config directory for dotlinks
func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

// ConfigFile returns the default configuration file path
func (p *paths) ConfigFile() string {
	return filepath.Join(p.xdgConfig, DefaultConfigFile)
}

// StateDir returns the XDG state directory of the invoking process
func (p *paths) StateDir() string {
	return p.xdgState
}

// LogFilePath returns the path to the dotlinks log file
func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := GetHomeDirectory()
	if err != nil {
		return path
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}

// ExpandHome expands a leading ~ to the invoking user's home directory.
func ExpandHome(path string) string {
	return expandHome(path)
}

// JoinHome joins a home-relative path onto home. A relative path of "."
// is home itself.
func JoinHome(home, rel string) string {
	return filepath.Clean(filepath.Join(home, rel))
}

// RelToHome returns target relative to home, or target unchanged when it
// is not below home.
func RelToHome(home, target string) string {
	rel, err := filepath.Rel(home, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return target
	}
	return rel
}

// IsWithin reports whether path equals base or lies beneath it.
func IsWithin(base, path string) bool {
	base = filepath.Clean(base)
	path = filepath.Clean(path)
	if base == path {
		return true
	}
	if base == string(filepath.Separator) {
		return strings.HasPrefix(path, base)
	}
	return strings.HasPrefix(path, base+string(filepath.Separator))
}

// GetHomeDirectory returns the invoking user's home directory
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if home := os.Getenv(EnvHome); home != "" {
			return home, nil
		}
		return "", errors.Wrapf(err, errors.ErrNotFound, "failed to get home directory")
	}
	return homeDir, nil
}
