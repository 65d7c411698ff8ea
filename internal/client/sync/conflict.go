package sync

import (
	"bytes"
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/localeforge/localeforge/internal/client/workspace"
)

// DetectResourceConflicts compares two file lists by path. A path present
// on both sides with differing hash yields one BothModified record. A
// path on only one side is an unambiguous add/delete, not a conflict.
func DetectResourceConflicts(local, remote []*FileDescriptor) []ConflictRecord {
	remoteByPath := indexByPath(remote)

	var conflicts []ConflictRecord
	for _, lf := range local {
		rf, ok := remoteByPath[lf.Path]
		if !ok {
			continue
		}
		if rf.Hash != lf.Hash {
			conflicts = append(conflicts, ConflictRecord{
				Path:   lf.Path,
				Type:   BothModified,
				Detail: fmt.Sprintf("local hash %s, remote hash %s", lf.Hash, rf.Hash),
			})
		}
	}

	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Path < conflicts[j].Path })
	return conflicts
}

// DetectConfigurationConflict compares the raw serialized configuration
// blobs. Any byte difference is a conflict; the comparison is
// deliberately not structural, so key reordering counts as a change.
func DetectConfigurationConflict(localConfig, remoteConfig []byte) *ConflictRecord {
	if bytes.Equal(localConfig, remoteConfig) {
		return nil
	}
	return &ConflictRecord{
		Path:   workspace.ConfigFileName,
		Type:   ConfigurationConflict,
		Detail: "local and remote project configuration differ",
	}
}

// GetDiffSummary computes what a pull would change: remote-only paths
// are adds, local-only paths are deletes, and common paths with
// differing hashes are updates. Hash comparison avoids transferring
// full content just to know that something changed.
func GetDiffSummary(local, remote []*FileDescriptor) *DiffSummary {
	localByPath := indexByPath(local)
	remoteByPath := indexByPath(remote)

	localPaths := mapset.NewThreadUnsafeSetFromMapKeys(localByPath)
	remotePaths := mapset.NewThreadUnsafeSetFromMapKeys(remoteByPath)

	adds := remotePaths.Difference(localPaths)
	deletes := localPaths.Difference(remotePaths)

	updates := mapset.NewThreadUnsafeSet[string]()
	for path := range remotePaths.Intersect(localPaths).Iter() {
		if localByPath[path].Hash != remoteByPath[path].Hash {
			updates.Add(path)
		}
	}

	return &DiffSummary{
		FilesToAdd:    sortedSlice(adds),
		FilesToUpdate: sortedSlice(updates),
		FilesToDelete: sortedSlice(deletes),
	}
}

func indexByPath(files []*FileDescriptor) map[string]*FileDescriptor {
	index := make(map[string]*FileDescriptor, len(files))
	for _, f := range files {
		index[f.Path] = f
	}
	return index
}

func sortedSlice(s mapset.Set[string]) []string {
	slice := s.ToSlice()
	sort.Strings(slice)
	return slice
}
