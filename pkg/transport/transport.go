package transport

import (
	"context"
	"os/user"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotlinks/pkg/config"
	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/executor"
	"github.com/arthur-debert/dotlinks/pkg/filesystem"
	"github.com/arthur-debert/dotlinks/pkg/host"
	"github.com/arthur-debert/dotlinks/pkg/logging"
	"github.com/arthur-debert/dotlinks/pkg/paths"
	"github.com/arthur-debert/dotlinks/pkg/probe"
	"github.com/arthur-debert/dotlinks/pkg/reconcile"
	"github.com/arthur-debert/dotlinks/pkg/sources"
	"github.com/arthur-debert/dotlinks/pkg/state"
	"github.com/arthur-debert/dotlinks/pkg/types"
	"github.com/arthur-debert/dotlinks/pkg/users"
)

// Factory implements reconcile.Transport for one configured transport.
type Factory struct {
	kind  string
	paths paths.Paths
	// runner is the unwrapped runner of the shell kinds, and runs git for
	// direct.
	runner  host.Runner
	fs      filesystem.FS
	current string
	users   types.UserSource
	logger  zerolog.Logger
}

// Options override the process-level pieces a Factory would otherwise
// discover itself.
type Options struct {
	// Runner replaces the local or ssh runner.
	Runner host.Runner
	// FS replaces the filesystem the direct kind reads passwd and inspects
	// paths through. State files always live on the real disk.
	FS filesystem.FS
	// CurrentUser replaces the invoking user's name.
	CurrentUser string
}

// New builds the factory for cfg.Transport.Kind.
func New(cfg *config.Config, p paths.Paths, opts Options) (*Factory, error) {
	f := &Factory{
		kind:   cfg.Transport.Kind,
		paths:  p,
		runner: opts.Runner,
		fs:     opts.FS,
		logger: logging.GetLogger("transport"),
	}
	rules := users.Rules{MinUID: cfg.Settings.MinUID, LoginShells: cfg.Settings.LoginShells}

	switch f.kind {
	case config.TransportDirect, "":
		f.kind = config.TransportDirect
		if f.fs == nil {
			f.fs = filesystem.NewOS()
		}
		if f.runner == nil {
			f.runner = host.LocalRunner{}
		}
		f.users = users.NewFileSource(f.fs, cfg.Settings.PasswdFile, rules)

	case config.TransportLocal:
		if f.runner == nil {
			f.runner = host.LocalRunner{}
		}
		f.users = users.NewRunnerSource(f.runner, cfg.Settings.PasswdFile, rules)

	case config.TransportSSH:
		if f.runner == nil {
			f.runner = newSSHRunner(cfg.Transport.SSH)
		}
		if opts.CurrentUser == "" {
			opts.CurrentUser = cfg.Transport.SSH.User
		}
		f.users = users.NewRunnerSource(f.runner, cfg.Settings.PasswdFile, rules)

	default:
		return nil, errors.Newf(errors.ErrTransportSetup, "unknown transport %q", cfg.Transport.Kind)
	}

	f.current = opts.CurrentUser
	if f.current == "" {
		u, err := user.Current()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTransportSetup, "cannot determine the invoking user")
		}
		f.current = u.Username
	}

	f.logger.Debug().Str("kind", f.kind).Str("current", f.current).Msg("Transport ready")
	return f, nil
}

func newSSHRunner(s config.SSH) *host.SSHRunner {
	return &host.SSHRunner{
		Host:                        s.Host,
		Port:                        s.Port,
		User:                        s.User,
		KeyPath:                     paths.ExpandHome(s.KeyPath),
		KnownHostsPath:              paths.ExpandHome(s.KnownHosts),
		InsecureSkipHostKeyChecking: s.InsecureSkipHostKeyCheck,
		Timeout:                     s.Timeout,
	}
}

// Kind returns the transport kind.
func (f *Factory) Kind() string { return f.kind }

func (f *Factory) Users() types.UserSource { return f.users }

// For returns the collaborators acting as u. The direct kind works with
// the invoking process's identity and can therefore only manage the
// invoking user, even when that user is root: files it creates belong to
// the invoking account.
func (f *Factory) For(ctx context.Context, u types.User) (reconcile.Collaborators, error) {
	if f.kind == config.TransportDirect {
		if u.Name != f.current {
			return reconcile.Collaborators{}, errors.Newf(errors.ErrTransportSetup,
				"direct transport runs as %s and cannot manage %s; use the local transport", f.current, u.Name).
				WithDetail("user", u.Name)
		}
		return reconcile.Collaborators{
			Inspector: probe.NewLocalInspector(f.fs),
			Executor:  executor.NewLocalExecutor(u.Home),
			Store:     state.NewFileStore(f.paths),
			Source:    sources.NewGit(f.runner),
		}, nil
	}

	r := host.AsUser(f.runner, u.Name, f.current)
	return reconcile.Collaborators{
		Inspector: probe.NewShellInspector(r),
		Executor:  executor.NewShellExecutor(r, u.Home),
		Store:     state.NewShellStore(r, f.paths),
		Source:    sources.NewGit(r),
	}, nil
}

// Close releases the ssh connection, if one was opened.
func (f *Factory) Close() error {
	if c, ok := f.runner.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
