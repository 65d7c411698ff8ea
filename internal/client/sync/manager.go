package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/localeforge/localeforge/internal/client/backup"
	"github.com/localeforge/localeforge/internal/client/config"
	"github.com/localeforge/localeforge/internal/client/remote"
	"github.com/localeforge/localeforge/internal/client/syncstate"
	"github.com/localeforge/localeforge/internal/client/workspace"
	"github.com/localeforge/localeforge/internal/utils"
)

var (
	// ErrValidationFailed means pre-flight validation produced blocking
	// errors; the details are in Result.Validation.
	ErrValidationFailed = errors.New("sync validation failed")

	// ErrConflictsDetected means both sides changed since the last
	// recorded sync state; the details are in Result.Conflicts.
	ErrConflictsDetected = errors.New("sync conflicts detected")
)

// RemoteAPI is the boundary the manager needs from the cloud project
// API. *remote.Client satisfies it; tests use a fake.
type RemoteAPI interface {
	GetProject(ctx context.Context) (*remote.Project, error)
	ListFiles(ctx context.Context) ([]*remote.File, error)
	GetProjectConfig(ctx context.Context) ([]byte, error)
	UploadFiles(ctx context.Context, files []*remote.File) error
	DeleteFiles(ctx context.Context, paths []string) error
}

// Result aggregates what a sync operation decided and did.
type Result struct {
	Validation *ValidationResult
	Conflicts  []ConflictRecord
	Diff       *DiffSummary
	BackupPath string
	Applied    bool
}

// Manager runs one sync operation (push/pull/link/status) to completion
// against a single project. One operation per project at a time; the
// steps are inherently sequential.
type Manager struct {
	ws        *workspace.Workspace
	cfg       *config.Config
	api       RemoteAPI
	store     *syncstate.Store
	backups   *backup.Manager
	validator *Validator
	scanner   *Scanner
	entryKey  EntryKeyFunc

	// Force applies changes even when conflicts were detected. The
	// conflicts are still reported in the Result.
	Force bool
}

func NewManager(ws *workspace.Workspace, cfg *config.Config, api RemoteAPI) *Manager {
	return &Manager{
		ws:        ws,
		cfg:       cfg,
		api:       api,
		store:     syncstate.NewStore(ws),
		backups:   backup.NewManager(ws),
		validator: NewValidator(),
		scanner:   NewScanner(ws),
		entryKey:  DefaultEntryKey,
	}
}

// SetEntryKeyFunc replaces the filename→(key, lang) mapping.
func (m *Manager) SetEntryKeyFunc(fn EntryKeyFunc) {
	if fn != nil {
		m.entryKey = fn
	}
}

// Backups exposes the backup manager for the CLI surface.
func (m *Manager) Backups() *backup.Manager {
	return m.backups
}

// Store exposes the sync state store for the CLI surface.
func (m *Manager) Store() *syncstate.Store {
	return m.store
}

// Push uploads local changes to the remote project.
func (m *Manager) Push(ctx context.Context) (*Result, error) {
	result := &Result{}

	project, err := m.api.GetProject(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch remote project: %w", err)
	}

	result.Validation = m.validator.ValidateForPush(m.ws.Root, m.cfg, project)
	if !result.Validation.CanSync() {
		return result, ErrValidationFailed
	}

	local, remoteFiles, state, err := m.gather(ctx)
	if err != nil {
		return result, err
	}

	result.Conflicts, err = m.detectConflicts(ctx, state, local, remoteFiles)
	if err != nil {
		return result, err
	}
	if len(result.Conflicts) > 0 && !m.Force {
		return result, ErrConflictsDetected
	}

	// push orientation: make remote look like local, so the operands of
	// the pull-oriented diff are swapped
	result.Diff = GetDiffSummary(remoteFiles, local)
	if !result.Diff.HasChanges() {
		slog.Info("push: nothing to do")
		return result, m.saveState(local)
	}

	localByPath := indexByPath(local)
	var uploads []*remote.File
	for _, path := range append(result.Diff.FilesToAdd, result.Diff.FilesToUpdate...) {
		f := localByPath[path]
		uploads = append(uploads, &remote.File{Path: f.Path, Hash: f.Hash, Content: f.Content})
	}

	if len(uploads) > 0 {
		if err := m.api.UploadFiles(ctx, uploads); err != nil {
			return result, fmt.Errorf("failed to upload files: %w", err)
		}
	}
	if len(result.Diff.FilesToDelete) > 0 {
		if err := m.api.DeleteFiles(ctx, result.Diff.FilesToDelete); err != nil {
			return result, fmt.Errorf("failed to delete remote files: %w", err)
		}
	}

	result.Applied = true
	slog.Info("push applied",
		"uploaded", len(uploads),
		"deleted", len(result.Diff.FilesToDelete))
	return result, m.saveState(local)
}

// Pull overwrites local files with the remote project state. A backup is
// always taken first; on cancellation or failure mid-apply the backup is
// restored, so the project ends in either its pre-pull or fully-applied
// state.
func (m *Manager) Pull(ctx context.Context) (*Result, error) {
	result := &Result{}

	project, err := m.api.GetProject(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch remote project: %w", err)
	}

	result.Validation = m.validator.ValidateForPull(m.cfg, project)
	if !result.Validation.CanSync() {
		return result, ErrValidationFailed
	}

	local, remoteFiles, state, err := m.gather(ctx)
	if err != nil {
		return result, err
	}

	result.Conflicts, err = m.detectConflicts(ctx, state, local, remoteFiles)
	if err != nil {
		return result, err
	}
	if len(result.Conflicts) > 0 && !m.Force {
		return result, ErrConflictsDetected
	}

	result.Diff = GetDiffSummary(local, remoteFiles)
	if !result.Diff.HasChanges() {
		slog.Info("pull: nothing to do")
		return result, m.saveState(remoteFiles)
	}

	result.BackupPath, err = m.backups.CreateBackup(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to create pull backup: %w", err)
	}

	if err := m.applyPull(ctx, result.Diff, remoteFiles); err != nil {
		// roll back with a fresh context; the operation's own context
		// may already be cancelled
		if restoreErr := m.backups.RestoreBackup(context.Background(), result.BackupPath); restoreErr != nil {
			return result, fmt.Errorf("pull failed (%w) and restore failed: %w", err, restoreErr)
		}
		slog.Warn("pull rolled back", "backup", result.BackupPath, "cause", err)
		return result, fmt.Errorf("pull rolled back: %w", err)
	}

	result.Applied = true
	slog.Info("pull applied",
		"added", len(result.Diff.FilesToAdd),
		"updated", len(result.Diff.FilesToUpdate),
		"deleted", len(result.Diff.FilesToDelete))
	return result, m.saveState(remoteFiles)
}

func (m *Manager) applyPull(ctx context.Context, diff *DiffSummary, remoteFiles []*FileDescriptor) error {
	remoteByPath := indexByPath(remoteFiles)

	for _, path := range append(diff.FilesToAdd, diff.FilesToUpdate...) {
		if err := ctx.Err(); err != nil {
			return err
		}
		f := remoteByPath[path]
		target := m.ws.AbsPath(path)
		if err := utils.WriteFileAtomic(target, f.Content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	for _, path := range diff.FilesToDelete {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.Remove(m.ws.AbsPath(path)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
	}

	return nil
}

// Link attaches the project directory to an existing remote project:
// it validates format compatibility, writes the project configuration
// and starts a fresh sync state.
func (m *Manager) Link(ctx context.Context, remoteURL *remote.URL) (*Result, error) {
	result := &Result{}

	project, err := m.api.GetProject(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch remote project: %w", err)
	}

	result.Validation = m.validator.ValidateForLink(m.ws.Root, project)
	if !result.Validation.CanSync() {
		return result, ErrValidationFailed
	}

	cfg := m.cfg
	if cfg == nil {
		cfg = &config.Config{}
	}
	cfg.RemoteURL = remoteURL.String()
	if cfg.ResourceFormat == "" && project.Format != "" {
		cfg.ResourceFormat = project.Format
	}
	if cfg.DefaultLanguageCode == "" && project.DefaultLanguage != "" {
		cfg.DefaultLanguageCode = project.DefaultLanguage
	}
	if err := cfg.Save(m.ws.ConfigPath); err != nil {
		return result, fmt.Errorf("failed to save project config: %w", err)
	}
	m.cfg = cfg

	if err := m.store.Save(syncstate.New()); err != nil {
		return result, err
	}

	result.Applied = true
	slog.Info("project linked", "remote", remoteURL.String())
	return result, nil
}

// Status reports conflicts and pending changes without mutating
// anything.
func (m *Manager) Status(ctx context.Context) (*Result, error) {
	result := &Result{}

	local, remoteFiles, state, err := m.gather(ctx)
	if err != nil {
		return result, err
	}

	result.Conflicts, err = m.detectConflicts(ctx, state, local, remoteFiles)
	if err != nil {
		return result, err
	}
	result.Diff = GetDiffSummary(local, remoteFiles)
	return result, nil
}

// gather runs the local scan, fetches the remote file list and loads the
// persisted sync state (fresh when absent, corrupted or legacy).
func (m *Manager) gather(ctx context.Context) (local, remoteFiles []*FileDescriptor, state *syncstate.SyncState, err error) {
	local, err = m.scanner.Scan(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	files, err := m.api.ListFiles(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list remote files: %w", err)
	}
	remoteFiles = toDescriptors(files)

	state, err = m.store.GetOrCreate()
	if err != nil {
		return nil, nil, nil, err
	}
	return local, remoteFiles, state, nil
}

// detectConflicts narrows the pure hash-difference records down to true
// conflicts: paths where both sides drifted from the last recorded sync
// state. When the state has no record for a path the difference stays a
// conflict; guessing a direction could silently clobber one side.
func (m *Manager) detectConflicts(ctx context.Context, state *syncstate.SyncState, local, remoteFiles []*FileDescriptor) ([]ConflictRecord, error) {
	localByPath := indexByPath(local)
	remoteByPath := indexByPath(remoteFiles)

	var conflicts []ConflictRecord
	for _, rec := range DetectResourceConflicts(local, remoteFiles) {
		key, lang := m.entryKey(rec.Path)
		known, ok := state.GetEntryHash(key, lang)
		if ok {
			if known == localByPath[rec.Path].Hash || known == remoteByPath[rec.Path].Hash {
				// only one side changed since the last sync
				continue
			}
		}
		conflicts = append(conflicts, rec)
	}

	if rec, err := m.detectConfigConflict(ctx); err != nil {
		return nil, err
	} else if rec != nil {
		conflicts = append(conflicts, *rec)
	}

	return conflicts, nil
}

func (m *Manager) detectConfigConflict(ctx context.Context) (*ConflictRecord, error) {
	if m.cfg == nil {
		return nil, nil
	}
	localRaw, err := m.cfg.Raw()
	if err != nil {
		return nil, err
	}

	remoteRaw, err := m.api.GetProjectConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote project config: %w", err)
	}
	if len(remoteRaw) == 0 {
		// remote has no stored configuration yet
		return nil, nil
	}

	return DetectConfigurationConflict(localRaw, remoteRaw), nil
}

// saveState supersedes the persisted state wholesale with hashes from
// the side that now represents truth.
func (m *Manager) saveState(files []*FileDescriptor) error {
	state := syncstate.New()
	for _, f := range files {
		key, lang := m.entryKey(f.Path)
		state.SetEntryHash(key, lang, f.Hash)
	}

	if m.cfg != nil {
		for name, value := range m.cfg.Properties() {
			state.SetConfigPropertyHash(name, utils.ContentHash([]byte(value)))
		}
	}

	return m.store.Save(state)
}

func toDescriptors(files []*remote.File) []*FileDescriptor {
	descriptors := make([]*FileDescriptor, 0, len(files))
	for _, f := range files {
		descriptors = append(descriptors, &FileDescriptor{
			Path:    workspace.NormPath(f.Path),
			Hash:    f.Hash,
			Content: f.Content,
		})
	}
	return descriptors
}
