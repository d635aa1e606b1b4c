// Package sources keeps dotfile repository checkouts present and current.
//
// Git is driven through a host.Runner so the same code clones in-process,
// as another local user via sudo, or on a remote host over ssh. Every
// failure is reported as REPO_UNAVAILABLE, which skips the repository
// without failing the run.
package sources
