package workspace

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/localeforge/localeforge/internal/utils"
)

const (
	// MetadataDirName is the hidden per-project directory holding sync
	// state and pull backups.
	MetadataDirName = ".lforge"

	// StateFileName is the persisted sync state file inside MetadataDirName.
	StateFileName = "sync-state.json"

	// BackupsDirName is the pull-backup directory inside MetadataDirName.
	BackupsDirName = "backups"

	// ConfigFileName is the project configuration file at the project root.
	ConfigFileName = "lforge.json"
)

// Workspace resolves the on-disk layout of a localization project.
type Workspace struct {
	Root          string
	ConfigPath    string
	MetadataDir   string
	StateFilePath string
	BackupsDir    string
}

func NewWorkspace(rootDir string) (*Workspace, error) {
	root, err := utils.ResolvePath(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", rootDir, err)
	}

	metadataDir := filepath.Join(root, MetadataDirName)
	return &Workspace{
		Root:          root,
		ConfigPath:    filepath.Join(root, ConfigFileName),
		MetadataDir:   metadataDir,
		StateFilePath: filepath.Join(metadataDir, StateFileName),
		BackupsDir:    filepath.Join(metadataDir, BackupsDirName),
	}, nil
}

// EnsureMetadataDir creates the hidden metadata directory if absent.
func (w *Workspace) EnsureMetadataDir() error {
	return utils.EnsureDir(w.MetadataDir)
}

// AbsPath joins a normalized relative path onto the project root.
func (w *Workspace) AbsPath(relPath string) string {
	return filepath.Join(w.Root, filepath.FromSlash(relPath))
}

// RelPath converts an absolute path inside the project to its normalized form.
func (w *Workspace) RelPath(absPath string) (string, error) {
	rel, err := filepath.Rel(w.Root, absPath)
	if err != nil {
		return "", fmt.Errorf("failed to relativize %s: %w", absPath, err)
	}
	return NormPath(rel), nil
}

// NormPath normalizes a relative path to clean, slash-separated form.
func NormPath(path string) string {
	path = filepath.ToSlash(filepath.Clean(path))
	return strings.TrimPrefix(path, "./")
}
