package sync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("{}"), 0o644))
	}
}

func TestDetectLocalFormat(t *testing.T) {
	t.Run("json only", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "locales/messages.en.json", "locales/messages.fr.json")

		format, err := DetectLocalFormat(dir)
		require.NoError(t, err)
		assert.Equal(t, FormatJSON, format)
	})

	t.Run("resx only", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "Resources/Strings.resx", "Resources/Strings.fr.resx")

		format, err := DetectLocalFormat(dir)
		require.NoError(t, err)
		assert.Equal(t, FormatResx, format)
	})

	t.Run("empty project", func(t *testing.T) {
		format, err := DetectLocalFormat(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, format)
	})

	t.Run("mixed formats are ambiguous", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "a.json", "b.resx")

		format, err := DetectLocalFormat(dir)
		require.NoError(t, err)
		assert.Empty(t, format)
	})

	t.Run("excluded dirs are skipped", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"node_modules/pkg/data.json",
			"bin/out.json",
			"obj/cache.json",
			".lforge/sync-state.json",
			"Resources/Strings.resx",
		)

		format, err := DetectLocalFormat(dir)
		require.NoError(t, err)
		assert.Equal(t, FormatResx, format)
	})

	t.Run("non-resource json is ignored", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"package.json",
			"package-lock.json",
			"tsconfig.json",
			"config.schema.json",
			"lforge.json",
		)

		format, err := DetectLocalFormat(dir)
		require.NoError(t, err)
		assert.Empty(t, format)
	})

	t.Run("extension match is case-insensitive", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "Strings.RESX")

		format, err := DetectLocalFormat(dir)
		require.NoError(t, err)
		assert.Equal(t, FormatResx, format)
	})
}
