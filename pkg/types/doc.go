// Package types defines the core data model and collaborator interfaces used
// throughout dotlinks: link specifications, resolved links, the applied-state
// snapshot, probe results and the planned filesystem actions consumed by
// executors.
package types
