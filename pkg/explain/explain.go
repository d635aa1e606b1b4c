// Package explain holds the concept documentation shown by
// `dotlinks explain`.
package explain

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/arthur-debert/dotlinks/pkg/errors"
)

//go:embed topics/*.md
var topicFiles embed.FS

// Topic is one explanation.
type Topic struct {
	Name    string
	Title   string
	Content string
}

// Names returns the available topic names, sorted.
func Names() []string {
	entries, err := fs.ReadDir(topicFiles, "topics")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// Get returns the named topic.
func Get(name string) (Topic, error) {
	data, err := topicFiles.ReadFile(path.Join("topics", name+".md"))
	if err != nil {
		return Topic{}, errors.Newf(errors.ErrNotFound, "no topic %q (available: %s)", name, strings.Join(Names(), ", ")).
			WithDetail("topic", name)
	}
	content := string(data)
	return Topic{Name: name, Title: title(content), Content: content}, nil
}

func title(content string) string {
	first, _, _ := strings.Cut(content, "\n")
	return strings.TrimSpace(strings.TrimPrefix(first, "#"))
}

// GlamourRenderer renders markdown for terminals.
type GlamourRenderer struct {
	Style string // "auto", "dark", "light", "notty" or a style file
	Width int    // 0 keeps glamour's default
}

// NewGlamourRenderer returns a renderer detecting the terminal style.
func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{Style: "auto"}
}

// Render returns content rendered, or content unchanged when rendering
// fails.
func (r *GlamourRenderer) Render(content string) string {
	var options []glamour.TermRendererOption
	if r.Style != "" && r.Style != "auto" {
		options = append(options, glamour.WithStylePath(r.Style))
	} else {
		options = append(options, glamour.WithAutoStyle())
	}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
