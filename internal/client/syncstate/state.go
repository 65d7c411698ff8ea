package syncstate

import (
	"time"
)

// CurrentVersion is the schema tag of the persisted sync state.
const CurrentVersion = 2

// LegacyVersion is the flat per-file schema written by older releases.
// It is recognized for detection but never auto-converted.
const LegacyVersion = 1

// SyncState is the persisted record of last-known content hashes per
// resource entry/language and per configuration property. It is created
// empty on first sync and superseded wholesale on the next successful
// sync; no history is retained.
//
// Invariant: a key appears in Entries only while it has at least one
// language hash.
type SyncState struct {
	Version          int                          `json:"Version"`
	Timestamp        time.Time                    `json:"Timestamp"`
	Entries          map[string]map[string]string `json:"Entries"`
	ConfigProperties map[string]string            `json:"ConfigProperties"`
}

// LegacyState is the v1 shape: a flat path→hash map plus a single
// config hash.
type LegacyState struct {
	Version    int               `json:"Version"`
	ConfigHash string            `json:"ConfigHash"`
	Files      map[string]string `json:"Files"`
}

// New returns a fresh empty state at the current schema version.
func New() *SyncState {
	return &SyncState{
		Version:          CurrentVersion,
		Timestamp:        time.Now().UTC(),
		Entries:          make(map[string]map[string]string),
		ConfigProperties: make(map[string]string),
	}
}

// Touch updates the state timestamp to now (UTC).
func (s *SyncState) Touch() {
	s.Timestamp = time.Now().UTC()
}

// SetEntryHash upserts the hash for (key, lang).
func (s *SyncState) SetEntryHash(key, lang, hash string) {
	if s.Entries == nil {
		s.Entries = make(map[string]map[string]string)
	}
	langs, ok := s.Entries[key]
	if !ok {
		langs = make(map[string]string)
		s.Entries[key] = langs
	}
	langs[lang] = hash
}

// GetEntryHash returns the hash for (key, lang), or ok=false if absent.
func (s *SyncState) GetEntryHash(key, lang string) (string, bool) {
	langs, ok := s.Entries[key]
	if !ok {
		return "", false
	}
	hash, ok := langs[lang]
	return hash, ok
}

// RemoveEntryHash deletes the language hash for key and prunes the key
// when its last language is removed.
func (s *SyncState) RemoveEntryHash(key, lang string) {
	langs, ok := s.Entries[key]
	if !ok {
		return
	}
	delete(langs, lang)
	if len(langs) == 0 {
		delete(s.Entries, key)
	}
}

// RemoveEntry deletes a key with all its language hashes.
func (s *SyncState) RemoveEntry(key string) {
	delete(s.Entries, key)
}

// SetConfigPropertyHash upserts the hash of a configuration property.
func (s *SyncState) SetConfigPropertyHash(name, hash string) {
	if s.ConfigProperties == nil {
		s.ConfigProperties = make(map[string]string)
	}
	s.ConfigProperties[name] = hash
}

// GetConfigPropertyHash returns the hash of a configuration property.
func (s *SyncState) GetConfigPropertyHash(name string) (string, bool) {
	hash, ok := s.ConfigProperties[name]
	return hash, ok
}

// EntryCount returns the number of keys currently tracked.
func (s *SyncState) EntryCount() int {
	return len(s.Entries)
}
