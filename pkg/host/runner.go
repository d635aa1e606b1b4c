package host

import (
	"context"
	"fmt"
	"strings"

	"github.com/arthur-debert/dotlinks/pkg/errors"
)

// Result is the captured outcome of one command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes a single command. A non-zero exit is reported as an
// error carrying the Result in its details.
type Runner interface {
	Run(ctx context.Context, cmd string, args ...string) (Result, error)
}

// Shell runs script with `sh -c`. args become $1, $2, ... inside the script.
func Shell(ctx context.Context, r Runner, script string, args ...string) (Result, error) {
	shArgs := append([]string{"-c", script, "sh"}, args...)
	return r.Run(ctx, "sh", shArgs...)
}

// JoinCommand renders cmd and args as one shell-safe command line.
func JoinCommand(cmd string, args []string) string {
	if len(args) == 0 {
		return Quote(cmd)
	}

	var builder strings.Builder
	builder.WriteString(Quote(cmd))
	for _, arg := range args {
		builder.WriteByte(' ')
		builder.WriteString(Quote(arg))
	}

	return builder.String()
}

// Quote single-quotes value for POSIX shells.
func Quote(value string) string {
	if value == "" {
		return "''"
	}

	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

func commandError(err error, cmd string, args []string, res Result) error {
	msg := strings.TrimSpace(res.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(res.Stdout)
	}
	if msg == "" {
		msg = err.Error()
	}
	return errors.Wrapf(err, errors.ErrCommandFailed, "%s failed: %s", cmd, firstLine(msg)).
		WithDetail("command", JoinCommand(cmd, args)).
		WithDetail("exit_code", res.ExitCode).
		WithDetail("stderr", res.Stderr)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

// ExitCode returns the exit code recorded on a runner error, or -1.
func ExitCode(err error) int {
	if code, ok := errors.GetErrorDetails(err)["exit_code"].(int); ok {
		return code
	}
	return -1
}

// String implements fmt.Stringer for logging.
func (r Result) String() string {
	return fmt.Sprintf("exit=%d stdout=%dB stderr=%dB", r.ExitCode, len(r.Stdout), len(r.Stderr))
}
