// Package expand turns link specifications into the concrete symlinks a run
// wants to exist.
package expand

import (
	"context"
	stderrors "errors"
	"path/filepath"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/logging"
	"github.com/arthur-debert/dotlinks/pkg/paths"
	"github.com/arthur-debert/dotlinks/pkg/probe"
	"github.com/arthur-debert/dotlinks/pkg/types"
)

// Drop reasons
const (
	ReasonSourceMissing = "source is missing from the repository"
	ReasonNotDirectory  = "open source is not a directory"
)

// Lister lists the children of a directory.
type Lister interface {
	List(ctx context.Context, dir string) ([]string, error)
}

// Result is the output of one expansion.
type Result struct {
	Links    []types.ResolvedLink
	Retained []types.RetainedSpec
	Dropped  []types.DroppedSpec
}

// Expander resolves specs against a repository checkout.
type Expander struct {
	Lister Lister
}

// New returns an expander listing open sources through lister.
func New(lister Lister) *Expander {
	return &Expander{Lister: lister}
}

// Expand resolves specs, in order, for the checkout at repoDir whose root
// entries are topLevel, targeting the home directory home.
func (e *Expander) Expand(ctx context.Context, specs []types.LinkSpec, repoDir, home string, topLevel []string) (Result, error) {
	logger := logging.GetLogger("expand")

	present := make(map[string]bool, len(topLevel))
	for _, name := range topLevel {
		present[name] = true
	}

	var res Result
	owner := make(map[string]string)
	addLink := func(link types.ResolvedLink) error {
		if prev, ok := owner[link.TargetPath]; ok {
			return errors.Newf(errors.ErrDuplicateTarget, "%s is claimed by both %s and %s", link.TargetPath, prev, link.SourceItem).
				WithDetail("target", link.TargetPath).
				WithDetail("sources", []string{prev, link.SourceItem})
		}
		owner[link.TargetPath] = link.SourceItem
		res.Links = append(res.Links, link)
		return nil
	}
	drop := func(spec types.LinkSpec, reason string) {
		logger.Warn().
			Str("code", string(errors.ErrSourceMissing)).
			Str("from", spec.From).
			Str("reason", reason).
			Msg("Skipping link")
		res.Dropped = append(res.Dropped, types.DroppedSpec{Spec: spec, Reason: reason})
	}

	for _, spec := range specs {
		if !present[spec.From] {
			drop(spec, ReasonSourceMissing)
			continue
		}

		source := filepath.Join(repoDir, spec.From)
		dest := paths.JoinHome(home, spec.Destination())

		if spec.Kind() == types.LinkClosed {
			if err := addLink(types.ResolvedLink{SourceItem: source, TargetPath: dest, Spec: spec}); err != nil {
				return Result{}, err
			}
			res.Retained = append(res.Retained, types.RetainedSpec{Spec: spec, Destination: spec.Destination()})
			continue
		}

		children, err := e.Lister.List(ctx, source)
		if err != nil {
			if stderrors.Is(err, probe.ErrNotDirectory) {
				drop(spec, ReasonNotDirectory)
				continue
			}
			return Result{}, errors.Wrapf(err, errors.ErrProbeFailure, "cannot list open source %s", source)
		}

		managed := make([]string, 0, len(children))
		for _, child := range children {
			link := types.ResolvedLink{
				SourceItem: filepath.Join(source, child),
				TargetPath: filepath.Join(dest, child),
				Spec:       spec,
			}
			if err := addLink(link); err != nil {
				return Result{}, err
			}
			managed = append(managed, link.TargetPath)
		}
		res.Retained = append(res.Retained, types.RetainedSpec{
			Spec:         spec,
			Destination:  spec.Destination(),
			ManagedFiles: managed,
		})
	}

	logger.Debug().
		Int("links", len(res.Links)).
		Int("retained", len(res.Retained)).
		Int("dropped", len(res.Dropped)).
		Msg("Expanded link specifications")

	return res, nil
}
