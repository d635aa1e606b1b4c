package host

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
)

// Call records one command seen by a RecordingRunner.
type Call struct {
	Cmd  string
	Args []string
}

// Line renders the call as a shell command line.
func (c Call) Line() string {
	return JoinCommand(c.Cmd, c.Args)
}

// RecordingRunner records calls and answers them from Respond. It is meant
// for tests of packages built on Runner.
type RecordingRunner struct {
	// Respond returns the result for a call. A nil Respond answers every
	// call with an empty, successful Result.
	Respond func(call Call) (Result, error)

	mu    sync.Mutex
	calls []Call
}

func (r *RecordingRunner) Run(ctx context.Context, cmd string, args ...string) (Result, error) {
	call := Call{Cmd: cmd, Args: append([]string(nil), args...)}
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()

	if r.Respond == nil {
		return Result{}, nil
	}
	res, err := r.Respond(call)
	if err == nil && res.ExitCode != 0 {
		err = errors.New("exit status " + strconv.Itoa(res.ExitCode))
	}
	if err != nil {
		return res, commandError(err, cmd, args, res)
	}
	return res, nil
}

// Calls returns a copy of the recorded calls.
func (r *RecordingRunner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Script returns the `sh -c` script of call, or "" when call is not a
// Shell invocation.
func (c Call) Script() string {
	if c.Cmd == "sh" && len(c.Args) >= 2 && c.Args[0] == "-c" {
		return c.Args[1]
	}
	return ""
}

// ShellArgs returns the positional arguments passed after a Shell script.
func (c Call) ShellArgs() []string {
	if c.Script() == "" || len(c.Args) < 3 {
		return nil
	}
	return c.Args[3:]
}

// Contains reports whether the rendered call line contains s.
func (c Call) Contains(s string) bool {
	return strings.Contains(c.Line(), s)
}
