package sync

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/localeforge/localeforge/internal/client/workspace"
)

// Resource formats understood by the cloud service.
const (
	FormatResx = "resx"
	FormatJSON = "json"
)

// DetectLocalFormat recursively scans the project for resource files and
// returns the single format found, or "" when none or both are present.
// Build output, the hidden metadata dir and well-known non-resource JSON
// files are excluded from the scan.
func DetectLocalFormat(projectDir string) (string, error) {
	var resxCount, jsonCount int

	err := filepath.WalkDir(projectDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("walk error at %s: %w", path, walkErr)
		}

		if d.IsDir() {
			if path != projectDir && workspace.IsExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		switch strings.ToLower(filepath.Ext(d.Name())) {
		case ".resx":
			resxCount++
		case ".json":
			if !workspace.IsNonResourceJSON(d.Name()) {
				jsonCount++
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("format detection failed: %w", err)
	}

	switch {
	case resxCount > 0 && jsonCount > 0:
		// mixed trees are ambiguous; the caller decides how to react
		return "", nil
	case resxCount > 0:
		return FormatResx, nil
	case jsonCount > 0:
		return FormatJSON, nil
	default:
		return "", nil
	}
}
