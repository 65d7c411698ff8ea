package sync

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/localeforge/localeforge/internal/client/workspace"
	"github.com/localeforge/localeforge/internal/utils"
)

// Scanner walks the project's resource tree and produces fresh
// FileDescriptors with content hashes for each sync call.
type Scanner struct {
	ws *workspace.Workspace
}

func NewScanner(ws *workspace.Workspace) *Scanner {
	return &Scanner{ws: ws}
}

// Scan returns descriptors for every resource file in the project,
// applying the shared exclusion rules. The context is observed between
// file reads.
func (s *Scanner) Scan(ctx context.Context) ([]*FileDescriptor, error) {
	var files []*FileDescriptor

	err := filepath.WalkDir(s.ws.Root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("walk error at %s: %w", p, walkErr)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if p != s.ws.Root && workspace.IsExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !isResourceFile(d.Name()) {
			return nil
		}

		relPath, err := s.ws.RelPath(p)
		if err != nil {
			return err
		}

		content, err := os.ReadFile(p)
		if err != nil {
			slog.Warn("failed to read resource file, skipping", "path", p, "error", err)
			return nil
		}

		files = append(files, &FileDescriptor{
			Path:    relPath,
			Hash:    utils.ContentHash(content),
			Content: content,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("local scan failed: %w", err)
	}

	return files, nil
}

func isResourceFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".resx":
		return true
	case ".json":
		return !workspace.IsNonResourceJSON(name)
	default:
		return false
	}
}
