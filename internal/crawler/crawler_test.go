package crawler

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrawler_ScanProject(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules", "react"), 0o755))

	files := map[string]string{
		"src/app.jsx":                  "",
		"src/server.ts":                "",
		"readme.md":                    "",
		"node_modules/react/index.js":  "",
		"node_modules/react/other.jsx": "",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, filepath.FromSlash(name)), []byte(content), 0o644))
	}

	var found []string
	c := NewCrawler()
	require.NoError(t, c.ScanProject(dir, func(path string) {
		rel, _ := filepath.Rel(dir, path)
		found = append(found, filepath.ToSlash(rel))
	}))
	sort.Strings(found)

	assert.Equal(t, []string{"src/app.jsx", "src/server.ts"}, found,
		"non-source files and ignored directories are skipped")
}

func TestCrawler_IsSource(t *testing.T) {
	c := NewCrawler()

	assert.True(t, c.IsSource("app.js"))
	assert.True(t, c.IsSource("App.TSX"))
	assert.False(t, c.IsSource("styles.css"))
	assert.False(t, c.IsSource("notes.txt"))
}

func TestCrawler_SkipDir(t *testing.T) {
	c := NewCrawler()

	assert.True(t, c.SkipDir("node_modules"))
	assert.True(t, c.SkipDir(".git"))
	assert.False(t, c.SkipDir("src"))
}
