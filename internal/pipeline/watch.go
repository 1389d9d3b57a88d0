package pipeline

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"envfence/internal/crawler"
)

// Watch runs an initial scan and then keeps the import graph live: every
// change to a source file invalidates its graph entries and re-checks the
// file, reporting denials without stopping the loop. Watch returns when
// the context is cancelled.
func (s *Scan) Watch(ctx context.Context) error {
	if _, err := s.Run(ctx); err != nil {
		if de, ok := IsDenial(err); ok {
			s.logger.Error(de.Error())
		} else {
			return err
		}
	}
	s.logger.Info("watching for changes", "root", s.Root)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	absRoot, err := filepath.Abs(s.Root)
	if err != nil {
		return err
	}
	if err := addDirs(watcher, absRoot); err != nil {
		return err
	}

	cr := crawler.NewCrawler()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", "err", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addDirs(watcher, ev.Name)
					continue
				}
			}
			if !cr.IsSource(filepath.Base(ev.Name)) {
				continue
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename) {
				s.recheck(ev.Name)
			}
		}
	}
}

// recheck invalidates a changed file and replays its events against the
// otherwise intact graph.
func (s *Scan) recheck(path string) {
	g := s.guard
	if g == nil {
		return
	}

	dependents := g.Graph().Dependents(path)
	g.OnFileChanged(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		delete(s.files, path)
		s.logger.Info("module removed", "file", path, "dependents", len(dependents))
		return
	}
	s.files[path] = true

	pf, err := parseOne(path)
	if err != nil {
		s.logger.Warn("failed to parse file", "file", path, "err", err)
		return
	}

	for _, imp := range pf.imports {
		if err := g.OnResolve(imp.Specifier, path, s.SSR); err != nil {
			s.logger.Error(err.Error())
			return
		}
	}
	if err := g.OnTransform(pf.head, path, s.SSR); err != nil {
		s.logger.Error(err.Error())
		return
	}
	s.logger.Info("rechecked module", "file", path, "dependents", len(dependents))
}

func addDirs(watcher *fsnotify.Watcher, root string) error {
	cr := crawler.NewCrawler()
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if cr.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
