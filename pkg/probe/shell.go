package probe

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/host"
	"github.com/arthur-debert/dotlinks/pkg/logging"
	"github.com/arthur-debert/dotlinks/pkg/types"
)

// MaxBatch bounds the number of paths passed to one shell invocation.
const MaxBatch = 512

// blockedFunc defines blocked, which succeeds when the nearest existing
// ancestor of $1 is a directory the caller cannot search, leaving it in $d.
// Paths below such a directory cannot be told apart from absent ones.
const blockedFunc = `blocked() {
  d=$1
  while [ "$d" != / ]; do
    case $d in */*) ;; *) return 1 ;; esac
    d=${d%/*}
    [ -n "$d" ] || d=/
    if [ -e "$d" ]; then
      [ -d "$d" ] && [ ! -x "$d" ]
      return
    fi
  done
  return 1
}
`

// probeScript prints one `path\ttype\ttarget` line per argument. %y does
// not follow symlinks. Absent paths get an explicit N line, paths hidden by
// an unsearchable directory an E line naming that directory.
const probeScript = blockedFunc + `for p do
  if [ -e "$p" ] || [ -L "$p" ]; then
    find "$p" -maxdepth 0 -printf '%p\t%y\t%l\n' || exit 1
  elif blocked "$p"; then
    printf '%s\tE\t%s\n' "$p" "$d"
  else
    printf '%s\tN\t\n' "$p"
  fi
done`

// listScript prints D then the children of $1, or N when $1 is not a
// directory.
const listScript = blockedFunc + `if [ -d "$1" ]; then
  echo D
  ls -A1 "$1/"
elif blocked "$1"; then
  echo "$d: permission denied" >&2
  exit 1
else
  echo N
fi`

// ShellInspector inspects a host through shell commands.
type ShellInspector struct {
	Runner host.Runner
}

// NewShellInspector returns an inspector running through r.
func NewShellInspector(r host.Runner) *ShellInspector {
	return &ShellInspector{Runner: r}
}

func (s *ShellInspector) Probe(ctx context.Context, paths []string) (types.ProbeResult, error) {
	logger := logging.GetLogger("probe.shell")

	unique := dedupe(paths)
	for _, p := range unique {
		if strings.ContainsAny(p, "\t\n") {
			return nil, errors.Newf(errors.ErrProbeFailure, "cannot inspect %q: path contains a tab or newline", p).
				WithDetail("path", p)
		}
	}

	result := make(types.ProbeResult, len(unique))
	for start := 0; start < len(unique); start += MaxBatch {
		end := start + MaxBatch
		if end > len(unique) {
			end = len(unique)
		}
		batch := unique[start:end]

		res, err := host.Shell(ctx, s.Runner, probeScript, batch...)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrProbeFailure, "probe command failed")
		}
		entries, err := parseProbeOutput(res.Stdout)
		if err != nil {
			return nil, err
		}
		for _, p := range batch {
			entry, ok := entries[p]
			if !ok {
				return nil, errors.Newf(errors.ErrProbeFailure, "no probe output for %s", p).
					WithDetail("path", p)
			}
			result[p] = entry
		}
		logger.Debug().Int("paths", len(batch)).Msg("Probed batch")
	}
	return result, nil
}

// parseProbeOutput turns probe lines into entries keyed by path.
func parseProbeOutput(out string) (map[string]types.FilesystemEntry, error) {
	entries := make(map[string]types.FilesystemEntry)
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) != 3 {
			return nil, errors.Newf(errors.ErrProbeFailure, "malformed probe line %q", line)
		}
		path, kind, target := fields[0], fields[1], fields[2]

		entry := types.FilesystemEntry{Path: path, Exists: true}
		switch kind {
		case "N":
			entry = types.Absent(path)
		case "E":
			return nil, errors.Newf(errors.ErrProbeFailure, "cannot inspect %s: %s is not searchable", path, target).
				WithDetail("path", path).
				WithDetail("blocked_by", target)
		case "l":
			entry.IsLink = true
			entry.LinkTarget = target
		case "d":
			entry.IsDir = true
		case "f":
			entry.IsFile = true
		case "p", "s", "b", "c", "D":
		default:
			return nil, errors.Newf(errors.ErrProbeFailure, "unknown file type %q for %s", kind, path)
		}
		entries[path] = entry
	}
	return entries, nil
}

func (s *ShellInspector) List(ctx context.Context, dir string) ([]string, error) {
	res, err := host.Shell(ctx, s.Runner, listScript, dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrProbeFailure, "cannot list %s", dir)
	}

	lines := strings.Split(strings.TrimRight(res.Stdout, "\n"), "\n")
	switch lines[0] {
	case "N":
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	case "D":
	default:
		return nil, errors.Newf(errors.ErrProbeFailure, "unexpected listing output for %s", dir)
	}

	names := make([]string, 0, len(lines)-1)
	for _, name := range lines[1:] {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
