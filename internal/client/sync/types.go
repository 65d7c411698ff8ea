package sync

// FileDescriptor is one resource file on either side of a sync,
// constructed fresh per sync call by the scanner or the remote API.
// It is never persisted by this core.
type FileDescriptor struct {
	Path    string
	Hash    string
	Content []byte
}

// ConflictType is the closed set of conflict classifications.
type ConflictType int

const (
	// BothModified: the same path changed on both sides since the last
	// recorded sync state.
	BothModified ConflictType = iota
	// ConfigurationConflict: the serialized project configuration
	// differs between local and remote.
	ConfigurationConflict
)

func (t ConflictType) String() string {
	switch t {
	case BothModified:
		return "both-modified"
	case ConfigurationConflict:
		return "configuration"
	default:
		return "unknown"
	}
}

// ConflictRecord flags one conflict for a human or a higher-level
// policy to resolve; conflicts are detected, never auto-merged.
type ConflictRecord struct {
	Path   string
	Type   ConflictType
	Detail string
}

// DiffSummary holds three disjoint path sets describing what a pull
// would change locally.
type DiffSummary struct {
	FilesToAdd    []string
	FilesToUpdate []string
	FilesToDelete []string
}

func (d *DiffSummary) HasChanges() bool {
	return d.TotalChanges() > 0
}

func (d *DiffSummary) TotalChanges() int {
	return len(d.FilesToAdd) + len(d.FilesToUpdate) + len(d.FilesToDelete)
}
