package config

import (
	"time"

	"github.com/arthur-debert/dotlinks/pkg/types"
)

// Transport kinds
const (
	TransportDirect = "direct"
	TransportLocal  = "local"
	TransportSSH    = "ssh"
)

// Config is the complete, validated configuration of one run.
type Config struct {
	Settings  Settings           `koanf:"settings"`
	Transport Transport          `koanf:"transport"`
	Dotfiles  []types.RepoConfig `koanf:"dotfiles"`

	// Source is the file the configuration was read from.
	Source string `koanf:"-"`
}

// Settings holds host-wide layout and eligibility rules.
type Settings struct {
	// RepoDir and StateDir are relative to each user's home
	RepoDir  string `koanf:"repo_dir"`
	StateDir string `koanf:"state_dir"`

	PasswdFile  string   `koanf:"passwd_file"`
	MinUID      int      `koanf:"min_uid"`
	LoginShells []string `koanf:"login_shells"`
}

// Transport selects how the host is reached.
type Transport struct {
	Kind string `koanf:"kind"`
	SSH  SSH    `koanf:"ssh"`
}

// SSH configures the ssh transport.
type SSH struct {
	Host                     string        `koanf:"host"`
	Port                     string        `koanf:"port"`
	User                     string        `koanf:"user"`
	KeyPath                  string        `koanf:"key_path"`
	KnownHosts               string        `koanf:"known_hosts"`
	InsecureSkipHostKeyCheck bool          `koanf:"insecure_skip_host_key_check"`
	Timeout                  time.Duration `koanf:"timeout"`
}

// Address returns host:port.
func (s SSH) Address() string {
	return s.Host + ":" + s.Port
}
