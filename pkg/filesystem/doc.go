// Package filesystem provides the filesystem dotlinks mutates and inspects
// when it runs in-process.
//
// Everything goes through spf13/afero so tests can swap the backing store.
// Symlink operations need a backend implementing afero's Symlinker and
// LinkReader interfaces, which in practice means the OS filesystem.
package filesystem
