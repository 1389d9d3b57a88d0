package crawler

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Crawler scans a project tree for bundler-relevant source files.
type Crawler struct {
	ignored []string
	exts    []string
}

// NewCrawler creates a new crawler instance.
func NewCrawler() *Crawler {
	return &Crawler{
		ignored: []string{".git", "node_modules", "dist", "build", "coverage", "vendor"},
		exts:    []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts"},
	}
}

// ScanProject walks the root directory and streams every source file
// path to the callback, preventing large in-memory file lists.
func (c *Crawler) ScanProject(root string, onFile func(path string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if c.SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !c.IsSource(d.Name()) {
			return nil
		}

		onFile(path)
		return nil
	})
}

// SkipDir reports whether a directory is excluded from scanning.
func (c *Crawler) SkipDir(name string) bool {
	for _, ign := range c.ignored {
		if name == ign {
			return true
		}
	}
	return false
}

// IsSource reports whether a file name has a scannable source extension.
func (c *Crawler) IsSource(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range c.exts {
		if ext == e {
			return true
		}
	}
	return false
}
