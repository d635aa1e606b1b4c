// Package paths provides centralized path handling for dotlinks.
//
// Two families of paths live here:
//
//   - Per-user layout: where a user's repository checkouts and applied-state
//     snapshots live. These are always relative to the user's home directory,
//     which is looked up from the account database rather than the invoking
//     process, so dotlinks can act on behalf of other users.
//   - Tool paths: the log file and default configuration location of the
//     invoking process, following the XDG Base Directory specification.
//
// # Environment Variables
//
//   - DOTLINKS_CONFIG_DIR: Override the config directory (default: $XDG_CONFIG_HOME/dotlinks)
//   - DOTLINKS_STATE_DIR: Override the tool state directory (default: $XDG_STATE_HOME/dotlinks)
//
// # Usage
//
//	p, err := paths.New(".dotfiles/dotlinks", ".local/state/dotlinks")
//	if err != nil {
//	    return err
//	}
//
//	p.RepoDir("/home/dex", "dots")   // /home/dex/.dotfiles/dotlinks/dots
//	p.StateFile("/home/dex", "dots") // /home/dex/.local/state/dotlinks/dotfiles_dots
package paths
