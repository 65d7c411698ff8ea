package syncstate

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"

	"github.com/localeforge/localeforge/internal/client/workspace"
	"github.com/localeforge/localeforge/internal/utils"
)

// LoadResult carries the outcome of probing the persisted state file.
// Exactly one of the following holds:
//   - State set: current-schema file loaded normally
//   - NeedsMigration set: legacy v1 file recognized, best-effort data in Legacy
//   - Corrupted set: file present but empty or unparsable
//   - all zero: no persisted file
type LoadResult struct {
	State          *SyncState
	Legacy         *LegacyState
	Corrupted      bool
	NeedsMigration bool
}

// Store persists the sync state under the project's hidden metadata
// directory. One sync operation loads, mutates and saves it once.
type Store struct {
	ws *workspace.Workspace
}

func NewStore(ws *workspace.Workspace) *Store {
	return &Store{ws: ws}
}

// Path returns the absolute path of the state file.
func (s *Store) Path() string {
	return s.ws.StateFilePath
}

// Exists reports whether a persisted state file is present.
func (s *Store) Exists() bool {
	return utils.FileExists(s.ws.StateFilePath)
}

// Load reads and decodes the persisted state. Unparsable or empty
// content is reported via the Corrupted flag, never as an error; the
// caller decides recovery. Only I/O failures return an error.
func (s *Store) Load() (*LoadResult, error) {
	data, err := os.ReadFile(s.ws.StateFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &LoadResult{}, nil
		}
		return nil, fmt.Errorf("failed to read sync state %s: %w", s.ws.StateFilePath, err)
	}

	return decodeState(data), nil
}

// decodeState is a discriminated decode: probe the version/legacy marker
// first, then commit to one schema. Exception-driven fallbacks between
// schemas would misclassify a truncated v2 file as legacy.
func decodeState(data []byte) *LoadResult {
	if len(bytes.TrimSpace(data)) == 0 {
		return &LoadResult{Corrupted: true}
	}

	var probe struct {
		Version int             `json:"Version"`
		Files   json.RawMessage `json:"Files"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		slog.Debug("sync state unparsable", "error", err)
		return &LoadResult{Corrupted: true}
	}

	// v1 marker: explicit Version=1 or the flat Files map
	if probe.Version == LegacyVersion || probe.Files != nil {
		var legacy LegacyState
		// best effort; the legacy payload is only used for detection
		// and the deliberate migrate action
		_ = json.Unmarshal(data, &legacy)
		legacy.Version = LegacyVersion
		return &LoadResult{Legacy: &legacy, NeedsMigration: true}
	}

	if probe.Version != CurrentVersion {
		slog.Debug("sync state has unknown version", "version", probe.Version)
		return &LoadResult{Corrupted: true}
	}

	var state SyncState
	if err := json.Unmarshal(data, &state); err != nil {
		return &LoadResult{Corrupted: true}
	}
	if state.Entries == nil {
		state.Entries = make(map[string]map[string]string)
	}
	if state.ConfigProperties == nil {
		state.ConfigProperties = make(map[string]string)
	}
	return &LoadResult{State: &state}
}

// GetOrCreate returns the loaded current-schema state, or a fresh empty
// one when the file is absent, corrupted or needs migration. Legacy
// per-file data is never carried into the new per-entry shape here;
// migration is a deliberate, separate action.
func (s *Store) GetOrCreate() (*SyncState, error) {
	res, err := s.Load()
	if err != nil {
		return nil, err
	}

	switch {
	case res.State != nil:
		return res.State, nil
	case res.NeedsMigration:
		slog.Warn("sync state needs migration, starting fresh", "path", s.ws.StateFilePath)
	case res.Corrupted:
		slog.Warn("sync state corrupted, starting fresh", "path", s.ws.StateFilePath)
	}
	return New(), nil
}

// Save writes the state as indented, human-diffable JSON. The write goes
// to a temp file first and is renamed into place, so a concurrent reader
// never observes a half-written state.
func (s *Store) Save(state *SyncState) error {
	if state == nil {
		return fmt.Errorf("cannot save nil state")
	}

	if err := s.ws.EnsureMetadataDir(); err != nil {
		return fmt.Errorf("failed to create metadata dir: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sync state: %w", err)
	}

	if err := utils.WriteFileAtomic(s.ws.StateFilePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to save sync state: %w", err)
	}

	slog.Debug("sync state saved", "path", s.ws.StateFilePath, "entries", state.EntryCount())
	return nil
}

// Clear deletes only the state file, preserving backups and any other
// siblings in the metadata directory.
func (s *Store) Clear() error {
	err := os.Remove(s.ws.StateFilePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear sync state: %w", err)
	}
	return nil
}
