package backup

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zip"

	"github.com/localeforge/localeforge/internal/client/workspace"
	"github.com/localeforge/localeforge/internal/utils"
)

const (
	// ManifestName is the self-describing metadata entry inside every
	// backup archive.
	ManifestName = "backup-metadata.json"

	archivePrefix = "pull-backup-"
	// archive name timestamp: pull-backup-<yyyyMMdd>-<HHmmss>.zip
	nameTimeFormat = "20060102-150405"
)

var archiveNameRe = regexp.MustCompile(`^pull-backup-(\d{8}-\d{6})\.zip$`)

// Manifest identifies a backup archive from the inside, so restores
// stay possible after archives are moved or renamed.
type Manifest struct {
	BackupName       string    `json:"BackupName"`
	Timestamp        time.Time `json:"Timestamp"`
	ProjectDirectory string    `json:"ProjectDirectory"`
}

// Info describes one backup archive on disk.
type Info struct {
	Path      string
	Name      string
	Timestamp time.Time
	Size      int64
}

// Manager snapshots and restores the project tree around destructive
// pull operations, and prunes old archives to bound disk growth.
type Manager struct {
	ws *workspace.Workspace

	// now is injected for deterministic archive names in tests.
	now func() time.Time
}

func NewManager(ws *workspace.Workspace) *Manager {
	return &Manager{ws: ws, now: time.Now}
}

// CreateBackup archives the project configuration, the metadata
// directory (excluding prior backups) and the resource tree into a
// timestamped zip under the backups directory, and returns its path.
func (m *Manager) CreateBackup(ctx context.Context) (string, error) {
	if err := utils.EnsureDir(m.ws.BackupsDir); err != nil {
		return "", fmt.Errorf("failed to create backups dir: %w", err)
	}

	now := m.now()
	name := archivePrefix + now.Format(nameTimeFormat) + ".zip"
	archivePath := filepath.Join(m.ws.BackupsDir, name)

	f, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to create backup archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	manifest := &Manifest{
		BackupName:       name,
		Timestamp:        now.UTC(),
		ProjectDirectory: m.ws.Root,
	}
	if err := writeManifest(zw, manifest); err != nil {
		zw.Close()
		os.Remove(archivePath)
		return "", err
	}

	if err := m.addProjectTree(ctx, zw); err != nil {
		zw.Close()
		os.Remove(archivePath)
		return "", err
	}

	if err := zw.Close(); err != nil {
		os.Remove(archivePath)
		return "", fmt.Errorf("failed to finalize backup archive: %w", err)
	}

	slog.Info("backup created", "path", archivePath)
	return archivePath, nil
}

func (m *Manager) addProjectTree(ctx context.Context, zw *zip.Writer) error {
	return filepath.WalkDir(m.ws.Root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("walk error at %s: %w", p, walkErr)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			// prior backups never go into a backup
			if p == m.ws.BackupsDir {
				return filepath.SkipDir
			}
			if p != m.ws.Root && p != m.ws.MetadataDir && workspace.IsExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := m.ws.RelPath(p)
		if err != nil {
			return err
		}

		if !m.includeInBackup(relPath, d.Name()) {
			return nil
		}

		return addFileEntry(zw, p, relPath)
	})
}

// includeInBackup selects the configuration file, everything under the
// metadata dir, and resource files.
func (m *Manager) includeInBackup(relPath, name string) bool {
	if relPath == workspace.ConfigFileName {
		return true
	}
	if strings.HasPrefix(relPath, workspace.MetadataDirName+"/") {
		return true
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".resx":
		return true
	case ".json":
		return !workspace.IsNonResourceJSON(name)
	default:
		return false
	}
}

func addFileEntry(zw *zip.Writer, absPath, relPath string) error {
	src, err := os.Open(absPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", absPath, err)
	}
	defer src.Close()

	w, err := zw.Create(relPath)
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s: %w", relPath, err)
	}

	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to write archive entry %s: %w", relPath, err)
	}
	return nil
}

func writeManifest(zw *zip.Writer, manifest *Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup manifest: %w", err)
	}

	w, err := zw.Create(ManifestName)
	if err != nil {
		return fmt.Errorf("failed to create manifest entry: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write manifest entry: %w", err)
	}
	return nil
}

// ListBackups enumerates archives newest-first. The timestamp comes from
// the embedded manifest; archives written by older versions without a
// readable manifest fall back to the filename-derived timestamp.
func (m *Manager) ListBackups() ([]*Info, error) {
	entries, err := os.ReadDir(m.ws.BackupsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backups dir: %w", err)
	}

	var backups []*Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, archivePrefix) || !strings.HasSuffix(name, ".zip") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		archivePath := filepath.Join(m.ws.BackupsDir, name)
		ts, ok := readManifestTimestamp(archivePath)
		if !ok {
			ts, ok = timestampFromName(name)
			if !ok {
				slog.Warn("skipping backup with no usable timestamp", "path", archivePath)
				continue
			}
		}

		backups = append(backups, &Info{
			Path:      archivePath,
			Name:      name,
			Timestamp: ts,
			Size:      info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

func readManifestTimestamp(archivePath string) (time.Time, bool) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return time.Time{}, false
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != ManifestName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return time.Time{}, false
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return time.Time{}, false
		}

		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil || manifest.Timestamp.IsZero() {
			return time.Time{}, false
		}
		return manifest.Timestamp, true
	}
	return time.Time{}, false
}

func timestampFromName(name string) (time.Time, bool) {
	match := archiveNameRe.FindStringSubmatch(name)
	if match == nil {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(nameTimeFormat, match[1], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// RestoreBackup extracts every entry except the manifest back to its
// original relative location, overwriting current files.
func (m *Manager) RestoreBackup(ctx context.Context, archivePath string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open backup archive %s: %w", archivePath, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.Name == ManifestName || f.FileInfo().IsDir() {
			continue
		}
		if err := extractEntry(f, m.ws.Root); err != nil {
			return err
		}
	}

	slog.Info("backup restored", "path", archivePath)
	return nil
}

func extractEntry(f *zip.File, rootDir string) error {
	// reject entries that would escape the project dir
	target := filepath.Join(rootDir, filepath.FromSlash(f.Name))
	if !strings.HasPrefix(target, filepath.Clean(rootDir)+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry %q escapes the project directory", f.Name)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	if err := utils.EnsureParent(target); err != nil {
		return fmt.Errorf("failed to create parent for %s: %w", target, err)
	}

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, rc); err != nil {
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return nil
}

// PruneBackups deletes the oldest archives beyond keepCount and returns
// the paths it removed.
func (m *Manager) PruneBackups(keepCount int) ([]string, error) {
	if keepCount < 0 {
		return nil, fmt.Errorf("keep count cannot be negative")
	}

	backups, err := m.ListBackups()
	if err != nil {
		return nil, err
	}
	if len(backups) <= keepCount {
		return nil, nil
	}

	// oldest first for deletion
	doomed := backups[keepCount:]
	sort.Slice(doomed, func(i, j int) bool {
		return doomed[i].Timestamp.Before(doomed[j].Timestamp)
	})

	var removed []string
	for _, b := range doomed {
		if err := os.Remove(b.Path); err != nil {
			return removed, fmt.Errorf("failed to remove backup %s: %w", b.Path, err)
		}
		slog.Debug("backup pruned", "path", b.Path)
		removed = append(removed, b.Path)
	}
	return removed, nil
}
