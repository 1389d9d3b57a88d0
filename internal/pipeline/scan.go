// Package pipeline drives the guard without a host build tool: it crawls
// a project tree, extracts imports, and replays them as resolution and
// transform events.
package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"envfence/internal/crawler"
	"envfence/internal/guard"
	"envfence/internal/scanner"
)

// directiveWindow bounds how much leading source is kept per file for the
// transform replay; directives live at the very top of a module.
const directiveWindow = 1024

// Result summarizes one scan.
type Result struct {
	FilesScanned  int
	EdgesRecorded int
	Denials       []*guard.Denial
}

type parsedFile struct {
	path    string
	head    string
	imports []scanner.Import
}

// Scan replays a project tree through a guard.
type Scan struct {
	Root string
	// SSR is the replay environment flag, used when the guard has no
	// explicitly configured environment.
	SSR bool
	// Only restricts rule evaluation to the given absolute paths;
	// edges from other files are still recorded so traces stay whole.
	Only map[string]bool
	// Workers bounds parallel file parsing; 0 means GOMAXPROCS.
	Workers int

	opts   guard.Options
	logger *log.Logger

	guard *guard.Guard
	files map[string]bool
}

// New creates a scan pipeline for root with the given guard options.
func New(root string, opts guard.Options, logger *log.Logger) *Scan {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "envfence"})
	}
	return &Scan{Root: root, opts: opts, logger: logger}
}

// Run performs a full scan: crawl, parse, then replay every resolution
// event followed by every transform event. In abort mode the first denial
// stops the scan and is returned; in advise mode all denials are
// collected into the result.
func (s *Scan) Run(ctx context.Context) (*Result, error) {
	absRoot, err := filepath.Abs(s.Root)
	if err != nil {
		return nil, err
	}

	var files []string
	if err := crawler.NewCrawler().ScanProject(absRoot, func(path string) {
		files = append(files, path)
	}); err != nil {
		return nil, err
	}
	sort.Strings(files)

	s.files = make(map[string]bool, len(files))
	for _, f := range files {
		s.files[f] = true
	}

	result := &Result{FilesScanned: len(files)}

	opts := s.opts
	opts.Root = absRoot
	opts.Logger = s.logger
	opts.Resolve = s.resolveLocal
	userAdvisories := opts.Advisories
	opts.Advisories = func(d *guard.Denial) {
		result.Denials = append(result.Denials, d)
		if userAdvisories != nil {
			userAdvisories(d)
		}
	}
	s.guard = guard.New(opts)

	parsed, err := s.parseFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	// Resolution events first, transforms second, mirroring a host that
	// resolves importers before loading them. A denied event surfaces
	// as *guard.DenialError in abort mode.
	for _, pf := range parsed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, imp := range pf.imports {
			if err := s.replayResolve(pf.path, imp.Specifier); err != nil {
				return result, err
			}
		}
	}
	for _, pf := range parsed {
		if !s.selected(pf.path) {
			continue
		}
		if err := s.guard.OnTransform(pf.head, pf.path, s.SSR); err != nil {
			return result, err
		}
	}

	result.EdgesRecorded = s.guard.Graph().Len()
	return result, nil
}

// Guard exposes the guard built by the last Run, for watch mode.
func (s *Scan) Guard() *guard.Guard {
	return s.guard
}

func (s *Scan) parseFiles(ctx context.Context, files []string) ([]parsedFile, error) {
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	parsed := make([]parsedFile, len(files))
	var mu sync.Mutex

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, path := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pf, err := parseOne(path)
			if err != nil {
				// A file the grammar cannot handle should not kill
				// the scan; it simply contributes no events.
				s.logger.Warn("failed to parse file", "file", path, "err", err)
				pf = parsedFile{path: path}
			}
			mu.Lock()
			parsed[i] = pf
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return parsed, nil
}

func parseOne(path string) (parsedFile, error) {
	sc, err := scanner.ForFile(path)
	if err != nil {
		return parsedFile{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return parsedFile{}, err
	}
	imports, err := sc.Scan(data)
	if err != nil {
		return parsedFile{}, err
	}
	head := string(data)
	if len(head) > directiveWindow {
		head = head[:directiveWindow]
	}
	return parsedFile{path: path, head: head, imports: imports}, nil
}

// replayResolve feeds one import through the guard, or records it
// directly when the importer is outside the evaluation filter (its edges
// still matter for other modules' traces).
func (s *Scan) replayResolve(importer, specifier string) error {
	if s.selected(importer) {
		return s.guard.OnResolve(specifier, importer, s.SSR)
	}
	target := specifier
	if abs, ok := s.resolveLocal(specifier, importer); ok {
		target = abs
	}
	s.guard.Graph().Record(target, importer, specifier)
	return nil
}

func (s *Scan) selected(path string) bool {
	return len(s.Only) == 0 || s.Only[path]
}

// resolveLocal maps a relative specifier to a crawled project file,
// probing the usual extension and index variants. Bare package
// specifiers do not resolve; they are matched by specifier rules only.
func (s *Scan) resolveLocal(specifier, importer string) (string, bool) {
	if !strings.HasPrefix(specifier, "./") && !strings.HasPrefix(specifier, "../") {
		return "", false
	}
	base := filepath.Join(filepath.Dir(importer), filepath.FromSlash(specifier))
	if s.files[base] {
		return base, true
	}
	for _, ext := range []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts"} {
		if cand := base + ext; s.files[cand] {
			return cand, true
		}
	}
	for _, ext := range []string{".js", ".jsx", ".ts", ".tsx"} {
		if cand := filepath.Join(base, "index"+ext); s.files[cand] {
			return cand, true
		}
	}
	return "", false
}

// IsDenial reports whether err is a guard denial and returns it.
func IsDenial(err error) (*guard.DenialError, bool) {
	var de *guard.DenialError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
