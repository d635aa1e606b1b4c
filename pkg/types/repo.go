package types

import (
	"strings"
)

// DefaultBranch is used when a repository entry names no branch.
const DefaultBranch = "main"

// RepoConfig is one entry of the `dotfiles` list.
type RepoConfig struct {
	User   string     `koanf:"user"`
	URL    string     `koanf:"url"`
	Branch string     `koanf:"branch"`
	Pull   bool       `koanf:"pull"`
	Links  []LinkSpec `koanf:"links"`
}

// Name derives the repository identifier from its URL: the last path
// segment without a trailing ".git". Both URL and scp-like forms work.
func (r RepoConfig) Name() string {
	return RepoNameFromURL(r.URL)
}

// EffectiveBranch returns the configured branch or DefaultBranch.
func (r RepoConfig) EffectiveBranch() string {
	if strings.TrimSpace(r.Branch) == "" {
		return DefaultBranch
	}
	return r.Branch
}

// RepoNameFromURL returns the last path segment of url without ".git".
func RepoNameFromURL(url string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(url), "/")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return strings.TrimSuffix(trimmed, ".git")
}

// User is a login identity read from the account database.
type User struct {
	Name  string
	UID   int
	GID   int
	Home  string
	Shell string
}
