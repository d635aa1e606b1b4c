package host

import (
	"context"
)

// SudoRunner runs every command as User through non-interactive sudo.
// An empty User runs commands unchanged.
type SudoRunner struct {
	Inner Runner
	User  string
}

// AsUser returns a runner acting as user. When user is current no
// wrapping happens.
func AsUser(inner Runner, user, current string) Runner {
	if user == "" || user == current {
		return inner
	}
	return SudoRunner{Inner: inner, User: user}
}

func (s SudoRunner) Run(ctx context.Context, cmd string, args ...string) (Result, error) {
	if s.User == "" {
		return s.Inner.Run(ctx, cmd, args...)
	}
	sudoArgs := append([]string{"-n", "-H", "-u", s.User, "--", cmd}, args...)
	return s.Inner.Run(ctx, "sudo", sudoArgs...)
}
