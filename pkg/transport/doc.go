// Package transport builds the per-user collaborators the reconciliation
// engine works through.
//
// Three kinds exist:
//
//	direct  probes and mutates in-process through afero and synthfs
//	local   runs shell commands on this host, via sudo for other users
//	ssh     runs the same shell commands on a remote host
//
// The shell kinds share every collaborator; only the runner differs.
package transport
