package workspace

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Directories that never contain localization resources. Build output,
// dependency trees and VCS metadata are skipped during any project walk.
var excludedDirs = map[string]struct{}{
	"bin":          {},
	"obj":          {},
	"build":        {},
	"dist":         {},
	"out":          {},
	"target":       {},
	"node_modules": {},
	".git":         {},
	".svn":         {},
	".vs":          {},
	".idea":        {},
}

// JSON files that are well-known project plumbing, not localization
// resources. Matched against the base filename.
var nonResourceJSONPatterns = []string{
	"package.json",
	"package-lock.json",
	"composer.json",
	"tsconfig*.json",
	"jsconfig*.json",
	"*.schema.json",
	"*.csproj.json",
	ConfigFileName,
}

// IsExcludedDir reports whether a directory name should be skipped when
// walking the project tree. The hidden metadata dir is always skipped.
func IsExcludedDir(name string) bool {
	if name == MetadataDirName {
		return true
	}
	_, ok := excludedDirs[name]
	return ok
}

// IsNonResourceJSON reports whether a JSON filename is known project
// plumbing rather than a localization resource.
func IsNonResourceJSON(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range nonResourceJSONPatterns {
		if ok, _ := doublestar.Match(pattern, lower); ok {
			return true
		}
	}
	return false
}
