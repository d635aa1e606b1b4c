package executor

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/host"
	"github.com/arthur-debert/dotlinks/pkg/logging"
	"github.com/arthur-debert/dotlinks/pkg/types"
)

const (
	// $1 target, $2 source
	linkScript = `if [ -e "$1" ] || [ -L "$1" ]; then
  echo "$1 already exists" >&2
  exit 1
fi
ln -s "$2" "$1"`

	// $1 target, $2 source, $3 backup
	backupScript = `if [ -e "$3" ] || [ -L "$3" ]; then
  echo "$3 already exists" >&2
  exit 1
fi
mv "$1" "$3" || exit 1
mkdir -p "$(dirname "$1")" || exit 1
ln -s "$2" "$1"`
)

// ShellExecutor applies actions with shell commands through a runner.
type ShellExecutor struct {
	logger zerolog.Logger
	runner host.Runner
	home   string
}

// NewShellExecutor returns an executor running commands through r,
// confined to home.
func NewShellExecutor(r host.Runner, home string) *ShellExecutor {
	return &ShellExecutor{
		logger: logging.GetLogger("executor.shell"),
		runner: r,
		home:   home,
	}
}

func (e *ShellExecutor) Execute(ctx context.Context, actions []types.PlannedAction) (types.ExecutionReport, error) {
	e.logger.Debug().Int("actionCount", len(actions)).Msg("Executing actions")
	return run(ctx, e.logger, e.home, actions, e.apply)
}

func (e *ShellExecutor) apply(ctx context.Context, action types.PlannedAction) error {
	var err error
	switch a := action.(type) {
	case types.EnsureDir:
		_, err = e.runner.Run(ctx, "mkdir", "-p", "--", a.Dir)
	case types.CreateLink:
		_, err = host.Shell(ctx, e.runner, linkScript, a.Target, a.Source)
	case types.BackupThenRelink:
		_, err = host.Shell(ctx, e.runner, backupScript, a.Target, a.Source, a.Backup)
	case types.RemovePath:
		_, err = e.runner.Run(ctx, "rm", "-rf", "--", a.Target)
	default:
		err = errors.Newf(errors.ErrActionInvalid, "unsupported action %T", action)
	}
	return err
}
