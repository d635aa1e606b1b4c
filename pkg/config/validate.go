package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/paths"
	"github.com/arthur-debert/dotlinks/pkg/types"
)

// Validate checks cfg and reports every problem found in one
// CONFIG_INVALID error.
func Validate(cfg *Config) error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for _, rel := range []struct{ key, value string }{
		{"settings.repo_dir", cfg.Settings.RepoDir},
		{"settings.state_dir", cfg.Settings.StateDir},
	} {
		if err := paths.ValidateRelative(rel.value); err != nil {
			add("%s: %s", rel.key, errMessage(err))
		}
	}
	if cfg.Settings.MinUID < 0 {
		add("settings.min_uid must not be negative")
	}
	if len(cfg.Settings.LoginShells) == 0 {
		add("settings.login_shells must name at least one shell")
	}

	switch cfg.Transport.Kind {
	case TransportDirect, TransportLocal:
	case TransportSSH:
		if cfg.Transport.SSH.Host == "" {
			add("transport.ssh.host is required for the ssh transport")
		}
		if cfg.Transport.SSH.User == "" {
			add("transport.ssh.user is required for the ssh transport")
		}
	default:
		add("transport.kind %q is not one of direct, local, ssh", cfg.Transport.Kind)
	}

	seenRepos := make(map[string]int)
	for i, repo := range cfg.Dotfiles {
		problems = append(problems, validateRepo(i, repo)...)

		key := repo.User + "/" + repo.Name()
		if prev, ok := seenRepos[key]; ok {
			add("dotfiles[%d]: repository %q for user %q already configured at dotfiles[%d]", i, repo.Name(), repo.User, prev)
		} else {
			seenRepos[key] = i
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New(errors.ErrConfigValid, strings.Join(problems, "; ")).
		WithDetail("problems", problems)
}

func validateRepo(i int, repo types.RepoConfig) []string {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf("dotfiles[%d]: "+format, append([]interface{}{i}, args...)...))
	}

	if strings.TrimSpace(repo.User) == "" {
		add("user is required")
	}
	if strings.TrimSpace(repo.URL) == "" {
		add("url is required")
	} else if err := paths.ValidateRepoName(repo.Name()); err != nil {
		add("url %q: %s", repo.URL, errMessage(err))
	}

	froms := make(map[string]int)
	closedDests := make(map[string]string)
	for j, link := range repo.Links {
		if link.From == "" {
			add("links[%d]: from is required", j)
			continue
		}
		if filepath.Clean(link.From) == "." {
			add("links[%d]: from must name an entry of the repository", j)
		} else if err := paths.ValidateRelative(link.From); err != nil {
			add("links[%d]: from: %s", j, errMessage(err))
		}
		if link.To != "" {
			if err := paths.ValidateRelative(link.To); err != nil {
				add("links[%d]: to: %s", j, errMessage(err))
			}
		}

		if prev, ok := froms[link.From]; ok {
			add("links[%d]: from %q already used by links[%d]", j, link.From, prev)
		} else {
			froms[link.From] = j
		}

		if link.Kind() == types.LinkClosed {
			dest := link.Destination()
			if dest == "." {
				add("links[%d]: closed link cannot replace the home directory", j)
				continue
			}
			if other, ok := closedDests[dest]; ok {
				add("links[%d]: destination %q already used by from %q", j, dest, other)
			} else {
				closedDests[dest] = link.From
			}
		}
	}
	return problems
}

func errMessage(err error) string {
	if e, ok := err.(*errors.DotlinksError); ok {
		return e.Message
	}
	return err.Error()
}
