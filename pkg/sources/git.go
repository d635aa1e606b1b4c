package sources

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/host"
	"github.com/arthur-debert/dotlinks/pkg/logging"
	"github.com/arthur-debert/dotlinks/pkg/types"
)

// Git implements types.SourceControl with the git command line.
type Git struct {
	runner host.Runner
	logger zerolog.Logger
}

// NewGit returns a Git running commands through r.
func NewGit(r host.Runner) *Git {
	return &Git{
		runner: r,
		logger: logging.GetLogger("sources.git"),
	}
}

// Ensure clones repo into dir when no checkout exists there. An existing
// checkout is switched to the configured branch and, when repo.Pull is set,
// fast-forwarded from its remote.
func (g *Git) Ensure(ctx context.Context, repo types.RepoConfig, dir string) error {
	branch := repo.EffectiveBranch()
	logger := g.logger.With().Str("repo", repo.Name()).Str("dir", dir).Str("branch", branch).Logger()

	if _, err := host.Shell(ctx, g.runner, `command -v git >/dev/null 2>&1`); err != nil {
		return unavailable(err, repo, "git is not installed")
	}

	present, err := g.hasCheckout(ctx, dir)
	if err != nil {
		return unavailable(err, repo, "cannot inspect checkout")
	}

	if !present {
		logger.Info().Str("url", repo.URL).Msg("Cloning repository")
		if _, err := g.runner.Run(ctx, "mkdir", "-p", "--", filepath.Dir(dir)); err != nil {
			return unavailable(err, repo, "cannot create checkout parent")
		}
		if _, err := g.runner.Run(ctx, "git", "clone", "--branch", branch, "--", repo.URL, dir); err != nil {
			return unavailable(err, repo, "clone failed")
		}
		return nil
	}

	logger.Debug().Msg("Checkout present")
	if _, err := g.runner.Run(ctx, "git", "-C", dir, "checkout", branch); err != nil {
		return unavailable(err, repo, "checkout failed")
	}
	if repo.Pull {
		logger.Info().Msg("Pulling repository")
		if _, err := g.runner.Run(ctx, "git", "-C", dir, "pull", "--ff-only"); err != nil {
			return unavailable(err, repo, "pull failed")
		}
	}
	return nil
}

// ListTop returns the entry names at the root of the checkout, hidden
// entries included and .git excluded.
func (g *Git) ListTop(ctx context.Context, dir string) ([]string, error) {
	res, err := g.runner.Run(ctx, "ls", "-A1", "--", dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRepoUnavailable, "cannot list %s", dir).
			WithDetail("dir", dir)
	}

	var names []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		if line == "" || line == ".git" {
			continue
		}
		names = append(names, line)
	}
	return names, nil
}

// hasCheckout reports whether dir holds a git work tree. test exits 1 for
// "no"; anything else is a failure to find out.
func (g *Git) hasCheckout(ctx context.Context, dir string) (bool, error) {
	_, err := g.runner.Run(ctx, "test", "-d", filepath.Join(dir, ".git"))
	if err == nil {
		return true, nil
	}
	if host.ExitCode(err) == 1 {
		return false, nil
	}
	return false, err
}

func unavailable(err error, repo types.RepoConfig, msg string) error {
	return errors.Wrapf(err, errors.ErrRepoUnavailable, "%s: %s", repo.Name(), msg).
		WithDetail("url", repo.URL).
		WithDetail("branch", repo.EffectiveBranch())
}
