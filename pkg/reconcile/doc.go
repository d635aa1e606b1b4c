// Package reconcile drives dotfile repositories to their configured links.
//
// For each configured repository the engine resolves the owning user,
// makes the checkout current, loads the previous applied state, expands the
// link specs, diffs them against the previous state, probes the home
// directory, plans, asks for approval, executes and finally persists the
// new state. Repositories are processed one at a time; a failure in one
// never stops the others.
//
// Outcomes per repository:
//
//	applied    actions ran and state was saved
//	unchanged  nothing to do
//	planned    dry-run or status: plan computed, nothing touched
//	skipped    user not eligible, checkout unavailable or approval declined
//	failed     probe, expansion, execution or state error
package reconcile
