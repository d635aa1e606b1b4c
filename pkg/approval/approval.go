// Package approval decides whether a previewed plan may be applied.
//
// Every gate presents the preview first, so nothing is ever mutated
// without the plan having been shown.
package approval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/dotlinks/pkg/logging"
	"github.com/arthur-debert/dotlinks/pkg/types"
	"github.com/arthur-debert/dotlinks/pkg/ui"
)

// Prompt is the question asked after the preview.
const Prompt = "Apply these changes?"

// Presenter shows a preview.
type Presenter interface {
	Preview(p types.Preview) error
}

// Approves reports whether a typed answer means yes. An empty answer
// accepts the default; "s" and "sim" are accepted alongside "y" and "yes".
func Approves(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "y", "yes", "s", "sim":
		return true
	}
	return false
}

// AutoApprove presents the preview and approves it.
type AutoApprove struct {
	Presenter Presenter
}

func (g AutoApprove) Approve(ctx context.Context, p types.Preview) (bool, error) {
	if err := present(g.Presenter, p); err != nil {
		return false, err
	}
	logger := logging.GetLogger("approval")
	logger.Info().Str("user", p.User).Str("repo", p.Repo).Msg("Changes approved automatically")
	return true, nil
}

// ConsoleGate asks on Out and reads one line from In.
//
// A single goroutine reads In for the lifetime of the gate and hands each
// line to the next waiting Approve. A call cancelled while waiting leaves
// its line to the next call.
type ConsoleGate struct {
	Presenter Presenter
	In        io.Reader
	Out       io.Writer

	once    sync.Once
	reader  *bufio.Reader
	lines   chan string
	readErr error
}

// NewConsoleGate returns a gate reading answers from in.
func NewConsoleGate(p Presenter, in io.Reader, out io.Writer) *ConsoleGate {
	return &ConsoleGate{Presenter: p, In: in, Out: out, reader: bufio.NewReader(in)}
}

func (g *ConsoleGate) Approve(ctx context.Context, p types.Preview) (bool, error) {
	if err := present(g.Presenter, p); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	g.once.Do(g.startReading)

	if _, err := fmt.Fprintf(g.Out, "%s [Y/n]: ", Prompt); err != nil {
		return false, err
	}

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case answer, ok := <-g.lines:
		if ok {
			return Approves(answer), nil
		}
		if g.readErr == io.EOF {
			// No one is there to answer
			return false, nil
		}
		return false, fmt.Errorf("failed to read answer: %w", g.readErr)
	}
}

func (g *ConsoleGate) startReading() {
	if g.reader == nil {
		g.reader = bufio.NewReader(g.In)
	}
	g.lines = make(chan string)
	go func() {
		defer close(g.lines)
		for {
			line, err := g.reader.ReadString('\n')
			if line != "" && (err == nil || err == io.EOF) {
				g.lines <- line
			}
			if err != nil {
				g.readErr = err
				return
			}
		}
	}()
}

// InteractiveGate asks with a pterm confirmation on a terminal.
type InteractiveGate struct {
	Presenter Presenter
}

func (g InteractiveGate) Approve(ctx context.Context, p types.Preview) (bool, error) {
	if err := present(g.Presenter, p); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return pterm.DefaultInteractiveConfirm.WithDefaultValue(true).Show(Prompt)
}

// New picks a gate: AutoApprove when yes is set, an interactive prompt
// when in and out are terminals and a line-based prompt otherwise.
func New(p Presenter, yes bool, in, out *os.File) types.ApprovalGate {
	switch {
	case yes:
		return AutoApprove{Presenter: p}
	case ui.IsTerminal(in) && ui.IsTerminal(out):
		return InteractiveGate{Presenter: p}
	default:
		return NewConsoleGate(p, in, out)
	}
}

func present(p Presenter, preview types.Preview) error {
	if p == nil {
		return nil
	}
	return p.Preview(preview)
}
