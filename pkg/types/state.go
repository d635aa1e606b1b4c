package types

import (
	"fmt"
	"path/filepath"
	"strings"
)

// AppliedLinkRecord is the persisted unit describing one link spec applied by
// the last successful run.
type AppliedLinkRecord struct {
	Source       string   `yaml:"source"`
	Path         string   `yaml:"path"`
	Open         bool     `yaml:"open"`
	ManagedFiles []string `yaml:"managed_files"`
}

// Kind returns the link kind of the record.
func (r AppliedLinkRecord) Kind() LinkKind {
	if r.Open {
		return LinkOpen
	}
	return LinkClosed
}

// NewClosedRecord builds the record of a closed link.
func NewClosedRecord(source, path string) AppliedLinkRecord {
	return AppliedLinkRecord{Source: source, Path: path, ManagedFiles: []string{}}
}

// NewOpenRecord builds the record of an open link.
func NewOpenRecord(source, path string, managed []string) AppliedLinkRecord {
	files := make([]string, len(managed))
	copy(files, managed)
	return AppliedLinkRecord{Source: source, Path: path, Open: true, ManagedFiles: files}
}

// Validate checks the per-record invariants.
func (r AppliedLinkRecord) Validate() error {
	if r.Source == "" {
		return fmt.Errorf("record without source")
	}
	if r.Open {
		for _, managed := range r.ManagedFiles {
			if !filepath.IsAbs(managed) || filepath.Clean(managed) == "/" {
				return fmt.Errorf("open record %q manages invalid path %q", r.Source, managed)
			}
		}
		return nil
	}
	if len(r.ManagedFiles) > 0 {
		return fmt.Errorf("closed record %q carries managed files", r.Source)
	}
	return validateClosedPath(r.Source, r.Path)
}

// validateClosedPath requires a home-relative path naming an entry below
// home.
func validateClosedPath(source, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("closed record %q has no path", source)
	}
	if filepath.IsAbs(path) {
		return fmt.Errorf("closed record %q has absolute path %q", source, path)
	}
	clean := filepath.Clean(path)
	if clean == "." {
		return fmt.Errorf("closed record %q points at the home directory", source)
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("closed record %q escapes the home directory: %q", source, path)
	}
	return nil
}

// AppliedState is the full snapshot of the last successful run for one
// (user, repository) pair. It is always replaced wholesale.
type AppliedState struct {
	Applied []AppliedLinkRecord `yaml:"applied"`
}

// Validate checks the snapshot invariants: every record valid and sources
// unique.
func (s AppliedState) Validate() error {
	seen := make(map[string]bool, len(s.Applied))
	for _, rec := range s.Applied {
		if err := rec.Validate(); err != nil {
			return err
		}
		if seen[rec.Source] {
			return fmt.Errorf("duplicate source %q", rec.Source)
		}
		seen[rec.Source] = true
	}
	return nil
}

// Sources returns the recorded sources in order.
func (s AppliedState) Sources() []string {
	out := make([]string, 0, len(s.Applied))
	for _, rec := range s.Applied {
		out = append(out, rec.Source)
	}
	return out
}

// Record returns the record for source, if present.
func (s AppliedState) Record(source string) (AppliedLinkRecord, bool) {
	for _, rec := range s.Applied {
		if rec.Source == source {
			return rec, true
		}
	}
	return AppliedLinkRecord{}, false
}
