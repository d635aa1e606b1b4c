package types

// FilesystemEntry is the ephemeral probe result for one path.
type FilesystemEntry struct {
	Path       string
	Exists     bool
	IsLink     bool
	IsFile     bool
	IsDir      bool
	LinkTarget string
}

// Absent builds the entry for a path that does not exist.
func Absent(path string) FilesystemEntry {
	return FilesystemEntry{Path: path}
}

// PointsTo reports whether the entry is a symlink whose literal target is
// exactly target.
func (e FilesystemEntry) PointsTo(target string) bool {
	return e.Exists && e.IsLink && e.LinkTarget == target
}

// Describe returns a short word for the entry type.
func (e FilesystemEntry) Describe() string {
	switch {
	case !e.Exists:
		return "absent"
	case e.IsLink:
		return "symlink"
	case e.IsDir:
		return "directory"
	case e.IsFile:
		return "file"
	default:
		return "other"
	}
}

// ProbeResult maps requested paths to their entries.
type ProbeResult map[string]FilesystemEntry

// Get returns the entry for path, reporting whether it was probed.
func (p ProbeResult) Get(path string) (FilesystemEntry, bool) {
	e, ok := p[path]
	return e, ok
}

// Exists reports whether path was probed and exists.
func (p ProbeResult) Exists(path string) bool {
	e, ok := p[path]
	return ok && e.Exists
}
