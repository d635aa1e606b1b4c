package types

import (
	"path/filepath"
)

// LinkKind distinguishes the two link flavours a specification can describe.
type LinkKind string

const (
	// LinkClosed links one repository item to one destination path.
	LinkClosed LinkKind = "closed"
	// LinkOpen links every immediate child of a repository directory
	// individually into a destination directory.
	LinkOpen LinkKind = "open"
)

// LinkSpec is one entry of a repository's `links` list.
type LinkSpec struct {
	From string `koanf:"from" yaml:"from"`
	To   string `koanf:"to" yaml:"to,omitempty"`
	Open bool   `koanf:"open" yaml:"open,omitempty"`
}

// Kind returns the link kind this spec describes.
func (s LinkSpec) Kind() LinkKind {
	if s.Open {
		return LinkOpen
	}
	return LinkClosed
}

// Destination returns the destination relative to the user's home.
// `to` defaults to `from`. For closed links a `to` that cleans to "."
// ("./", "a/..") collapses to `from`; for open links "." means the home
// directory itself.
func (s LinkSpec) Destination() string {
	dest := s.To
	if dest == "" {
		dest = s.From
	}
	dest = filepath.Clean(dest)
	if s.Kind() == LinkClosed && dest == "." {
		dest = filepath.Clean(s.From)
	}
	return dest
}

// ResolvedLink is one concrete symlink the run wants to exist.
type ResolvedLink struct {
	// SourceItem is the absolute path inside the repository checkout.
	SourceItem string
	// TargetPath is the absolute path of the symlink in the user's home.
	TargetPath string
	// Spec is the specification this link was expanded from.
	Spec LinkSpec
}

// RetainedSpec is a spec that survived expansion, together with the
// destination paths it manages.
type RetainedSpec struct {
	Spec LinkSpec
	// Destination is relative to home.
	Destination string
	// ManagedFiles holds absolute targets; only set for open specs.
	ManagedFiles []string
}

// DroppedSpec is a spec excluded from this run, with the reason.
type DroppedSpec struct {
	Spec   LinkSpec
	Reason string
}
