package syncstate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localeforge/localeforge/internal/client/workspace"
)

func newTestStore(t *testing.T) (*Store, *workspace.Workspace) {
	t.Helper()
	ws, err := workspace.NewWorkspace(t.TempDir())
	require.NoError(t, err)
	return NewStore(ws), ws
}

func TestLoadNoFile(t *testing.T) {
	store, _ := newTestStore(t)

	res, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, res.State)
	assert.Nil(t, res.Legacy)
	assert.False(t, res.Corrupted)
	assert.False(t, res.NeedsMigration)
	assert.False(t, store.Exists())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	state := New()
	state.SetEntryHash("greeting", "en", "hash-en")
	state.SetEntryHash("greeting", "fr", "hash-fr")
	state.SetEntryHash("farewell", "de", "hash-de")
	state.SetConfigPropertyHash("format", "cfg-hash")
	require.NoError(t, store.Save(state))
	assert.True(t, store.Exists())

	res, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, res.State)
	assert.False(t, res.Corrupted)
	assert.False(t, res.NeedsMigration)

	loaded := res.State
	assert.Equal(t, state.Version, loaded.Version)
	assert.True(t, state.Timestamp.Equal(loaded.Timestamp))
	assert.Equal(t, state.Entries, loaded.Entries)
	assert.Equal(t, state.ConfigProperties, loaded.ConfigProperties)
}

func TestSaveIsHumanDiffable(t *testing.T) {
	store, ws := newTestStore(t)

	state := New()
	state.SetEntryHash("greeting", "en", "abc")
	require.NoError(t, store.Save(state))

	data, err := os.ReadFile(ws.StateFilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"Version\": 2")
	assert.Contains(t, string(data), "\"Entries\"")
}

func TestLoadCorrupted(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace", "  \n\t "},
		{"not json", "{broken"},
		{"unknown version", `{"Version": 7}`},
		{"wrong shape", `{"Version": 2, "Entries": ["a", "b"]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, ws := newTestStore(t)
			require.NoError(t, os.MkdirAll(ws.MetadataDir, 0o755))
			require.NoError(t, os.WriteFile(ws.StateFilePath, []byte(tc.content), 0o644))

			res, err := store.Load()
			require.NoError(t, err, "corruption must never be fatal")
			assert.True(t, res.Corrupted)
			assert.Nil(t, res.State)
			assert.False(t, res.NeedsMigration)
		})
	}
}

func TestLoadLegacy(t *testing.T) {
	legacyJSON := `{
  "Version": 1,
  "ConfigHash": "cfg123",
  "Files": {
    "locales/messages.en.json": "aaa",
    "locales/messages.fr.json": "bbb"
  }
}`

	store, ws := newTestStore(t)
	require.NoError(t, os.MkdirAll(ws.MetadataDir, 0o755))
	require.NoError(t, os.WriteFile(ws.StateFilePath, []byte(legacyJSON), 0o644))

	res, err := store.Load()
	require.NoError(t, err)
	assert.True(t, res.NeedsMigration)
	assert.False(t, res.Corrupted)
	assert.Nil(t, res.State)
	require.NotNil(t, res.Legacy)
	assert.Equal(t, LegacyVersion, res.Legacy.Version)
	assert.Equal(t, "cfg123", res.Legacy.ConfigHash)
	assert.Len(t, res.Legacy.Files, 2)
}

func TestLoadLegacyByFilesMarker(t *testing.T) {
	// some v1 files predate the Version tag; the Files key is the marker
	store, ws := newTestStore(t)
	require.NoError(t, os.MkdirAll(ws.MetadataDir, 0o755))
	require.NoError(t, os.WriteFile(ws.StateFilePath, []byte(`{"Files": {"a.json": "h"}}`), 0o644))

	res, err := store.Load()
	require.NoError(t, err)
	assert.True(t, res.NeedsMigration)
	require.NotNil(t, res.Legacy)
	assert.Equal(t, "h", res.Legacy.Files["a.json"])
}

func TestGetOrCreate(t *testing.T) {
	t.Run("no file yields fresh state", func(t *testing.T) {
		store, _ := newTestStore(t)
		state, err := store.GetOrCreate()
		require.NoError(t, err)
		assert.Equal(t, CurrentVersion, state.Version)
		assert.Zero(t, state.EntryCount())
	})

	t.Run("existing state is returned", func(t *testing.T) {
		store, _ := newTestStore(t)
		state := New()
		state.SetEntryHash("k", "en", "h")
		require.NoError(t, store.Save(state))

		loaded, err := store.GetOrCreate()
		require.NoError(t, err)
		assert.Equal(t, 1, loaded.EntryCount())
	})

	t.Run("legacy file yields fresh state, not legacy data", func(t *testing.T) {
		store, ws := newTestStore(t)
		require.NoError(t, os.MkdirAll(ws.MetadataDir, 0o755))
		legacy := `{"Version": 1, "ConfigHash": "c", "Files": {"a.json": "h"}}`
		require.NoError(t, os.WriteFile(ws.StateFilePath, []byte(legacy), 0o644))

		state, err := store.GetOrCreate()
		require.NoError(t, err)
		assert.Equal(t, CurrentVersion, state.Version)
		assert.Zero(t, state.EntryCount())
	})

	t.Run("corrupted file yields fresh state", func(t *testing.T) {
		store, ws := newTestStore(t)
		require.NoError(t, os.MkdirAll(ws.MetadataDir, 0o755))
		require.NoError(t, os.WriteFile(ws.StateFilePath, []byte("garbage"), 0o644))

		state, err := store.GetOrCreate()
		require.NoError(t, err)
		assert.Equal(t, CurrentVersion, state.Version)
	})
}

func TestClearPreservesSiblings(t *testing.T) {
	store, ws := newTestStore(t)
	require.NoError(t, store.Save(New()))

	sibling := filepath.Join(ws.MetadataDir, "other.txt")
	require.NoError(t, os.WriteFile(sibling, []byte("keep me"), 0o644))

	require.NoError(t, store.Clear())
	assert.False(t, store.Exists())
	assert.FileExists(t, sibling)

	// clearing an already-clear store is fine
	require.NoError(t, store.Clear())
}

func TestSaveNil(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.Save(nil))
}

func TestSaveTimestampUTC(t *testing.T) {
	store, _ := newTestStore(t)
	state := New()
	require.NoError(t, store.Save(state))

	res, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, res.State.Timestamp.Location())
}
