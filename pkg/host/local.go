package host

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/arthur-debert/dotlinks/pkg/logging"
)

// LocalRunner executes commands in the invoking process's environment.
type LocalRunner struct{}

func (LocalRunner) Run(ctx context.Context, cmd string, args ...string) (Result, error) {
	logger := logging.GetLogger("host.local")
	logging.LogCommand(logger, cmd, args)

	command := exec.CommandContext(ctx, cmd, args...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	err := command.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if command.ProcessState != nil {
		res.ExitCode = command.ProcessState.ExitCode()
	}
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return res, commandError(err, cmd, args, res)
	}
	return res, nil
}
