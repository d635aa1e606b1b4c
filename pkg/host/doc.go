// Package host runs commands on the machine being reconciled.
//
// A Runner executes one command and captures its output. LocalRunner uses
// the invoking process, SSHRunner a remote host over one reused ssh
// connection, and SudoRunner wraps either to act as another account.
// Shell-based probes, mutations, state stores and git all sit on top of a
// Runner, so every transport shares the same command vocabulary.
package host
