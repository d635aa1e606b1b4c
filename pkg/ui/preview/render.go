// Package preview renders plans, statuses and run summaries.
package preview

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize/english"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/paths"
	"github.com/arthur-debert/dotlinks/pkg/reconcile"
	"github.com/arthur-debert/dotlinks/pkg/types"
	"github.com/arthur-debert/dotlinks/pkg/ui"
	"github.com/arthur-debert/dotlinks/pkg/ui/output/styles"
)

// Renderer writes human or machine readable views of reconciliation.
type Renderer struct {
	w      io.Writer
	format ui.Format
}

// New returns a renderer writing to w. FormatAuto is resolved against w.
func New(w io.Writer, format ui.Format) *Renderer {
	return &Renderer{w: w, format: ui.Resolve(format, w)}
}

// Format returns the resolved format.
func (r *Renderer) Format() ui.Format { return r.format }

func (r *Renderer) paint(style, s string) string {
	if r.format != ui.FormatTerminal {
		return s
	}
	return styles.GetStyle(style).Render(s)
}

func (r *Renderer) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.w, format, args...)
}

// Preview writes the changes planned for one repository.
func (r *Renderer) Preview(p types.Preview) error {
	if r.format == ui.FormatJSON {
		return r.encode(previewJSON(p))
	}

	r.header(p)
	if !p.HasChanges() {
		r.printf("  %s\n", r.paint("Muted", "nothing to do"))
	}
	for _, a := range p.Actions {
		r.printf("  %s\n", r.action(p, a))
	}
	r.dropped(p)
	return nil
}

// Status writes the per-link state of every repository in report.
func (r *Renderer) Status(report reconcile.RunReport) error {
	if r.format == ui.FormatJSON {
		return r.encode(reportJSON(report))
	}

	for _, rr := range report.Repos {
		p := rr.Preview
		if p.Repo == "" {
			p.User, p.Repo = rr.User, rr.Repo
		}
		r.header(p)
		if rr.Err != nil {
			r.printf("  %s %s\n", r.paint(outcomeStyle(rr.Outcome), string(rr.Outcome)), rr.Err.Error())
			continue
		}

		for _, s := range p.Links {
			r.printf("  %s %s -> %s\n",
				r.paint(stateStyle(s.State), pad(string(s.State))),
				tilde(p.Home, s.Link.TargetPath),
				source(p, s.Link.SourceItem))
		}
		for _, path := range p.Obsolete {
			r.printf("  %s %s\n", r.paint("Remove", pad("obsolete")), tilde(p.Home, path))
		}
		r.dropped(p)
	}
	return r.Summary(report)
}

// Summary writes the closing line of a run.
func (r *Renderer) Summary(report reconcile.RunReport) error {
	if r.format == ui.FormatJSON {
		return r.encode(reportJSON(report))
	}

	parts := []string{english.Plural(len(report.Repos), "repository", "repositories")}
	for _, o := range []reconcile.Outcome{
		reconcile.OutcomeApplied,
		reconcile.OutcomeUnchanged,
		reconcile.OutcomePlanned,
		reconcile.OutcomeSkipped,
		reconcile.OutcomeFailed,
	} {
		if n := report.Count(o); n > 0 {
			parts = append(parts, r.paint(outcomeStyle(o), fmt.Sprintf("%d %s", n, o)))
		}
	}

	if report.Mode == reconcile.ModeApply {
		parts = append(parts, english.Plural(report.ActionsApplied(), "action", "actions")+" applied")
	} else {
		pending := 0
		for _, rr := range report.Repos {
			pending += len(rr.Preview.Actions)
		}
		parts = append(parts, english.Plural(pending, "action", "actions")+" pending")
	}
	parts = append(parts, report.Duration.Round(time.Millisecond).String())

	prefix := ""
	if report.Mode == reconcile.ModeDryRun {
		prefix = r.paint("DryRunBanner", "DRY RUN") + " "
	}
	r.printf("\n%s%s\n", prefix, strings.Join(parts, " · "))
	return nil
}

func (r *Renderer) header(p types.Preview) {
	title := fmt.Sprintf("%s · %s", p.User, p.Repo)
	if p.RepoDir != "" {
		title += " " + r.paint("Muted", "("+tilde(p.Home, p.RepoDir)+")")
	}
	r.printf("%s\n", r.paint("Header", title))
}

func (r *Renderer) dropped(p types.Preview) {
	for _, d := range p.Dropped {
		r.printf("  %s %s: %s\n", r.paint("Warning", pad("skipped")), d.Spec.From, d.Reason)
	}
}

func (r *Renderer) action(p types.Preview, action types.PlannedAction) string {
	switch a := action.(type) {
	case types.EnsureDir:
		return fmt.Sprintf("%s %s", r.paint("Muted", pad("mkdir")), tilde(p.Home, a.Dir))
	case types.CreateLink:
		return fmt.Sprintf("%s %s -> %s", r.paint("Missing", pad("link")), tilde(p.Home, a.Target), source(p, a.Source))
	case types.BackupThenRelink:
		return fmt.Sprintf("%s %s -> %s %s", r.paint("Conflict", pad("replace")),
			tilde(p.Home, a.Target), source(p, a.Source),
			r.paint("Muted", "(backup "+tilde(p.Home, a.Backup)+")"))
	case types.RemovePath:
		return fmt.Sprintf("%s %s", r.paint("Remove", pad("remove")), tilde(p.Home, a.Target))
	}
	return action.Description()
}

func (r *Renderer) encode(v interface{}) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func pad(s string) string {
	return fmt.Sprintf("%-9s", s)
}

// tilde shortens paths below home to ~/rel.
func tilde(home, path string) string {
	if home == "" {
		return path
	}
	rel := paths.RelToHome(home, path)
	switch {
	case rel == path:
		return path
	case rel == ".":
		return "~"
	}
	return filepath.Join("~", rel)
}

// source shows a checkout path relative to the checkout.
func source(p types.Preview, path string) string {
	if p.RepoDir == "" {
		return path
	}
	rel := paths.RelToHome(p.RepoDir, path)
	if rel == path || rel == "." {
		return path
	}
	return rel
}

func stateStyle(s types.LinkState) string {
	switch s {
	case types.LinkConverged:
		return "Converged"
	case types.LinkMissing:
		return "Missing"
	}
	return "Conflict"
}

func outcomeStyle(o reconcile.Outcome) string {
	switch o {
	case reconcile.OutcomeApplied, reconcile.OutcomeUnchanged:
		return "Success"
	case reconcile.OutcomeSkipped:
		return "Warning"
	case reconcile.OutcomeFailed:
		return "Error"
	}
	return "Muted"
}

type linkJSON struct {
	Source string `json:"source"`
	Target string `json:"target"`
	State  string `json:"state"`
}

type actionJSON struct {
	Kind        string `json:"kind"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

type droppedJSON struct {
	From   string `json:"from"`
	Reason string `json:"reason"`
}

type repoJSON struct {
	User     string        `json:"user"`
	Repo     string        `json:"repo"`
	Outcome  string        `json:"outcome,omitempty"`
	Error    string        `json:"error,omitempty"`
	Code     string        `json:"code,omitempty"`
	Links    []linkJSON    `json:"links"`
	Obsolete []string      `json:"obsolete"`
	Dropped  []droppedJSON `json:"dropped"`
	Actions  []actionJSON  `json:"actions"`
}

type runJSON struct {
	Mode       string     `json:"mode"`
	Started    time.Time  `json:"started"`
	DurationMS int64      `json:"duration_ms"`
	Repos      []repoJSON `json:"repos"`
}

func previewJSON(p types.Preview) repoJSON {
	out := repoJSON{
		User:     p.User,
		Repo:     p.Repo,
		Links:    []linkJSON{},
		Obsolete: append([]string{}, p.Obsolete...),
		Dropped:  []droppedJSON{},
		Actions:  []actionJSON{},
	}
	for _, s := range p.Links {
		out.Links = append(out.Links, linkJSON{Source: s.Link.SourceItem, Target: s.Link.TargetPath, State: string(s.State)})
	}
	for _, d := range p.Dropped {
		out.Dropped = append(out.Dropped, droppedJSON{From: d.Spec.From, Reason: d.Reason})
	}
	for _, a := range p.Actions {
		out.Actions = append(out.Actions, actionJSON{Kind: string(a.Kind()), Path: a.Path(), Description: a.Description()})
	}
	return out
}

func reportJSON(report reconcile.RunReport) runJSON {
	out := runJSON{
		Mode:       report.Mode.String(),
		Started:    report.Started,
		DurationMS: report.Duration.Milliseconds(),
		Repos:      make([]repoJSON, 0, len(report.Repos)),
	}
	for _, rr := range report.Repos {
		repo := previewJSON(rr.Preview)
		repo.User, repo.Repo = rr.User, rr.Repo
		repo.Outcome = string(rr.Outcome)
		if rr.Err != nil {
			repo.Error = rr.Err.Error()
			repo.Code = string(errors.GetErrorCode(rr.Err))
		}
		out.Repos = append(out.Repos, repo)
	}
	return out
}
