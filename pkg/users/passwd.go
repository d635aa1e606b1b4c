package users

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/filesystem"
	"github.com/arthur-debert/dotlinks/pkg/host"
	"github.com/arthur-debert/dotlinks/pkg/logging"
	"github.com/arthur-debert/dotlinks/pkg/types"
)

// DefaultPasswdFile is the account database read when none is configured.
const DefaultPasswdFile = "/etc/passwd"

// Nobody is never eligible, whatever its uid.
const Nobody = "nobody"

// Rules decide eligibility.
type Rules struct {
	MinUID      int
	LoginShells []string
}

// DefaultRules accept regular users with an interactive shell.
func DefaultRules() Rules {
	return Rules{MinUID: 1000, LoginShells: []string{"bash", "zsh", "fish", "sh"}}
}

// Check returns nil when u may be managed, otherwise an
// ErrUserNotEligible error naming the reason.
func (r Rules) Check(u types.User) error {
	switch {
	case u.Name == Nobody:
		return notEligible(u.Name, "the nobody account is never managed")
	case u.UID < r.MinUID:
		return notEligible(u.Name, "system account").
			WithDetail("uid", u.UID).
			WithDetail("min_uid", r.MinUID)
	case !r.loginShell(u.Shell):
		return notEligible(u.Name, "no login shell").WithDetail("shell", u.Shell)
	}
	return nil
}

func (r Rules) loginShell(shell string) bool {
	if shell == "" {
		return false
	}
	base := filepath.Base(shell)
	for _, s := range r.LoginShells {
		if s == base || s == shell {
			return true
		}
	}
	return false
}

// Parse reads passwd(5) lines. Comments, blank lines and NIS entries are
// skipped; a malformed line is an error.
func Parse(data []byte) ([]types.User, error) {
	var users []types.User
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-") {
			continue
		}

		fields := strings.Split(line, ":")
		if len(fields) != 7 {
			return nil, errors.Newf(errors.ErrInvalidInput, "passwd line %d: want 7 fields, got %d", lineNo, len(fields))
		}
		uid, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "passwd line %d: bad uid", lineNo)
		}
		gid, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "passwd line %d: bad gid", lineNo)
		}
		users = append(users, types.User{
			Name:  fields[0],
			UID:   uid,
			GID:   gid,
			Home:  fields[5],
			Shell: fields[6],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "cannot read passwd data")
	}
	return users, nil
}

// Source implements types.UserSource over a passwd file.
type Source struct {
	read   func(ctx context.Context, path string) ([]byte, error)
	path   string
	rules  Rules
	logger zerolog.Logger
}

// NewFileSource reads path from fsys.
func NewFileSource(fsys filesystem.FS, path string, rules Rules) *Source {
	return newSource(path, rules, func(_ context.Context, path string) ([]byte, error) {
		return fsys.ReadFile(path)
	})
}

// NewRunnerSource reads path with `cat` through r, for hosts reached by a
// transport.
func NewRunnerSource(r host.Runner, path string, rules Rules) *Source {
	return newSource(path, rules, func(ctx context.Context, path string) ([]byte, error) {
		res, err := r.Run(ctx, "cat", "--", path)
		if err != nil {
			return nil, err
		}
		return []byte(res.Stdout), nil
	})
}

func newSource(path string, rules Rules, read func(context.Context, string) ([]byte, error)) *Source {
	if path == "" {
		path = DefaultPasswdFile
	}
	return &Source{read: read, path: path, rules: rules, logger: logging.GetLogger("users")}
}

// Lookup returns the named user when present and eligible.
func (s *Source) Lookup(ctx context.Context, name string) (types.User, error) {
	data, err := s.read(ctx, s.path)
	if err != nil {
		return types.User{}, errors.Wrapf(err, errors.ErrUserNotEligible, "cannot read %s", s.path).
			WithDetail("user", name)
	}
	all, err := Parse(data)
	if err != nil {
		return types.User{}, errors.Wrapf(err, errors.ErrUserNotEligible, "cannot parse %s", s.path).
			WithDetail("user", name)
	}

	for _, u := range all {
		if u.Name != name {
			continue
		}
		if err := s.rules.Check(u); err != nil {
			s.logger.Warn().Str("user", name).Err(err).Msg("User not eligible")
			return types.User{}, err
		}
		s.logger.Debug().Str("user", name).Int("uid", u.UID).Str("home", u.Home).Msg("User resolved")
		return u, nil
	}
	return types.User{}, notEligible(name, "no such user")
}

func notEligible(name, reason string) *errors.DotlinksError {
	return errors.Newf(errors.ErrUserNotEligible, "user %s: %s", name, reason).
		WithDetail("user", name)
}
