// Package diff finds the paths a previous run created that the current
// configuration no longer wants.
package diff

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotlinks/pkg/paths"
	"github.com/arthur-debert/dotlinks/pkg/types"
)

type specKey struct {
	from string
	kind types.LinkKind
}

// Obsolete returns the absolute paths managed by previous records that no
// current spec accounts for, in record order and without duplicates.
//
// A record is still wanted only when a current spec has the same source and
// the same kind. A spec that flips between open and closed therefore hands
// its old paths over for removal. Empty paths and home itself are never
// returned.
func Obsolete(previous []types.AppliedLinkRecord, current []types.LinkSpec, home string) []string {
	wanted := make(map[specKey]bool, len(current))
	for _, spec := range current {
		wanted[specKey{from: spec.From, kind: spec.Kind()}] = true
	}

	var out []string
	root := filepath.Clean(home)
	seen := make(map[string]bool)
	add := func(path string) {
		if strings.TrimSpace(path) == "" || filepath.Clean(path) == root {
			return
		}
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	for _, rec := range previous {
		if wanted[specKey{from: rec.Source, kind: rec.Kind()}] {
			continue
		}
		if rec.Open {
			for _, managed := range rec.ManagedFiles {
				add(managed)
			}
			continue
		}
		if strings.TrimSpace(rec.Path) == "" {
			continue
		}
		add(paths.JoinHome(home, rec.Path))
	}
	return out
}
