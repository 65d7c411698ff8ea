package backup

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localeforge/localeforge/internal/client/workspace"
)

func newTestManager(t *testing.T) (*Manager, *workspace.Workspace) {
	t.Helper()
	ws, err := workspace.NewWorkspace(t.TempDir())
	require.NoError(t, err)
	return NewManager(ws), ws
}

func seedProject(t *testing.T, ws *workspace.Workspace) {
	t.Helper()
	files := map[string]string{
		"lforge.json":                    `{"format":"json"}`,
		".lforge/sync-state.json":        `{"Version":2}`,
		"locales/messages.en.json":       `{"greeting":"hello"}`,
		"locales/messages.fr.json":       `{"greeting":"bonjour"}`,
		"Resources/Strings.resx":         `<root/>`,
		"package.json":                   `{"name":"app"}`,
		"node_modules/dep/whatever.json": `{}`,
		"notes.txt":                      "not a resource",
	}
	for p, content := range files {
		full := filepath.Join(ws.Root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func archiveEntries(t *testing.T, archivePath string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer zr.Close()

	entries := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		entries[f.Name] = string(data)
	}
	return entries
}

func TestCreateBackup(t *testing.T) {
	m, ws := newTestManager(t)
	seedProject(t, ws)

	archivePath, err := m.CreateBackup(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, archivePath)
	assert.Regexp(t, `pull-backup-\d{8}-\d{6}\.zip$`, filepath.Base(archivePath))
	assert.Equal(t, ws.BackupsDir, filepath.Dir(archivePath))

	entries := archiveEntries(t, archivePath)
	assert.Contains(t, entries, "lforge.json")
	assert.Contains(t, entries, ".lforge/sync-state.json")
	assert.Contains(t, entries, "locales/messages.en.json")
	assert.Contains(t, entries, "locales/messages.fr.json")
	assert.Contains(t, entries, "Resources/Strings.resx")
	assert.Contains(t, entries, ManifestName)

	// non-resources and dependency trees stay out
	assert.NotContains(t, entries, "package.json")
	assert.NotContains(t, entries, "node_modules/dep/whatever.json")
	assert.NotContains(t, entries, "notes.txt")

	var manifest Manifest
	require.NoError(t, json.Unmarshal([]byte(entries[ManifestName]), &manifest))
	assert.Equal(t, filepath.Base(archivePath), manifest.BackupName)
	assert.Equal(t, ws.Root, manifest.ProjectDirectory)
	assert.WithinDuration(t, time.Now().UTC(), manifest.Timestamp, time.Minute)
}

func TestCreateBackupExcludesPriorBackups(t *testing.T) {
	m, ws := newTestManager(t)
	seedProject(t, ws)

	m.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local) }
	first, err := m.CreateBackup(context.Background())
	require.NoError(t, err)

	m.now = func() time.Time { return time.Date(2026, 3, 1, 11, 0, 0, 0, time.Local) }
	second, err := m.CreateBackup(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	for name := range archiveEntries(t, second) {
		assert.NotContains(t, name, workspace.BackupsDirName+"/")
	}
}

func TestCreateBackupCancelled(t *testing.T) {
	m, ws := newTestManager(t)
	seedProject(t, ws)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.CreateBackup(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// no half-written archive left behind
	entries, readErr := os.ReadDir(ws.BackupsDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestListBackups(t *testing.T) {
	m, ws := newTestManager(t)
	seedProject(t, ws)

	times := []time.Time{
		time.Date(2026, 1, 10, 9, 0, 0, 0, time.Local),
		time.Date(2026, 1, 12, 9, 0, 0, 0, time.Local),
		time.Date(2026, 1, 11, 9, 0, 0, 0, time.Local),
	}
	for _, ts := range times {
		m.now = func() time.Time { return ts }
		_, err := m.CreateBackup(context.Background())
		require.NoError(t, err)
	}

	backups, err := m.ListBackups()
	require.NoError(t, err)
	require.Len(t, backups, 3)

	// newest first
	assert.True(t, backups[0].Timestamp.After(backups[1].Timestamp))
	assert.True(t, backups[1].Timestamp.After(backups[2].Timestamp))
	for _, b := range backups {
		assert.Positive(t, b.Size)
		assert.Contains(t, b.Name, "pull-backup-")
	}

	// stray files in the backups dir are ignored
	require.NoError(t, os.WriteFile(filepath.Join(ws.BackupsDir, "readme.txt"), []byte("x"), 0o644))
	backups, err = m.ListBackups()
	require.NoError(t, err)
	assert.Len(t, backups, 3)
}

func TestListBackupsEmptyDir(t *testing.T) {
	m, _ := newTestManager(t)
	backups, err := m.ListBackups()
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestListBackupsFilenameFallback(t *testing.T) {
	// an archive without a readable manifest still lists, dated from
	// its filename
	m, ws := newTestManager(t)
	require.NoError(t, os.MkdirAll(ws.BackupsDir, 0o755))

	legacyPath := filepath.Join(ws.BackupsDir, "pull-backup-20250301-140000.zip")
	f, err := os.Create(legacyPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("locales/messages.en.json")
	require.NoError(t, err)
	_, err = w.Write([]byte(`{}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	backups, err := m.ListBackups()
	require.NoError(t, err)
	require.Len(t, backups, 1)

	want := time.Date(2025, 3, 1, 14, 0, 0, 0, time.Local)
	assert.True(t, want.Equal(backups[0].Timestamp))
}

func TestRestoreBackup(t *testing.T) {
	m, ws := newTestManager(t)
	seedProject(t, ws)

	archivePath, err := m.CreateBackup(context.Background())
	require.NoError(t, err)

	// mutate and delete after the snapshot
	enPath := filepath.Join(ws.Root, "locales", "messages.en.json")
	require.NoError(t, os.WriteFile(enPath, []byte(`{"greeting":"clobbered"}`), 0o644))
	frPath := filepath.Join(ws.Root, "locales", "messages.fr.json")
	require.NoError(t, os.Remove(frPath))

	require.NoError(t, m.RestoreBackup(context.Background(), archivePath))

	data, err := os.ReadFile(enPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"greeting":"hello"}`, string(data))

	data, err = os.ReadFile(frPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"greeting":"bonjour"}`, string(data))

	// the manifest never lands in the project tree
	assert.NoFileExists(t, filepath.Join(ws.Root, ManifestName))
}

func TestRestoreBackupMissingArchive(t *testing.T) {
	m, ws := newTestManager(t)
	err := m.RestoreBackup(context.Background(), filepath.Join(ws.BackupsDir, "nope.zip"))
	assert.Error(t, err)
}

func TestRestoreBackupRejectsEscapingEntries(t *testing.T) {
	m, ws := newTestManager(t)
	require.NoError(t, os.MkdirAll(ws.BackupsDir, 0o755))

	evilPath := filepath.Join(ws.BackupsDir, "pull-backup-20250101-000000.zip")
	f, err := os.Create(evilPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("../escape.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("gotcha"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	err = m.RestoreBackup(context.Background(), evilPath)
	assert.ErrorContains(t, err, "escapes the project directory")
	assert.NoFileExists(t, filepath.Join(filepath.Dir(ws.Root), "escape.txt"))
}

func TestPruneBackups(t *testing.T) {
	m, ws := newTestManager(t)
	seedProject(t, ws)

	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.Local)
	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		m.now = func() time.Time { return ts }
		_, err := m.CreateBackup(context.Background())
		require.NoError(t, err)
	}

	removed, err := m.PruneBackups(2)
	require.NoError(t, err)
	assert.Len(t, removed, 3)

	remaining, err := m.ListBackups()
	require.NoError(t, err)
	require.Len(t, remaining, 2)

	// the two most recent survive
	assert.True(t, remaining[0].Timestamp.Equal(base.Add(4*time.Hour).UTC()) ||
		remaining[0].Timestamp.Equal(base.Add(4*time.Hour)))
	assert.True(t, remaining[0].Timestamp.After(remaining[1].Timestamp))
}

func TestPruneBackupsNoOp(t *testing.T) {
	m, ws := newTestManager(t)
	seedProject(t, ws)

	_, err := m.CreateBackup(context.Background())
	require.NoError(t, err)

	removed, err := m.PruneBackups(5)
	require.NoError(t, err)
	assert.Empty(t, removed)

	_, err = m.PruneBackups(-1)
	assert.Error(t, err)
}
