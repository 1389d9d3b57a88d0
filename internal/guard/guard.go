// Package guard implements the per-build boundary enforcement context: it
// records resolution events into the import graph, evaluates denial rules
// and source directives, and turns matches into aborts or advisories.
package guard

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"envfence/internal/directive"
	"envfence/internal/graph"
	"envfence/internal/rules"
)

// DefaultMaxDepth bounds the import trace when no depth is configured.
const DefaultMaxDepth = 15

// Mode selects what a denial does to the build.
type Mode string

const (
	// ModeAbort fails the offending resolution or transform, halting
	// the build with the diagnostic as the error.
	ModeAbort Mode = "abort"
	// ModeAdvise reports the diagnostic through the logger (and the
	// Advisories callback, if set) and lets the build continue.
	ModeAdvise Mode = "advise"
)

// ResolveFunc is the host's resolution capability: it maps a specifier
// requested by importer to an absolute path, reporting false when the
// specifier does not resolve to a project file.
type ResolveFunc func(specifier, importer string) (string, bool)

// Options configures a Guard. The zero value of each field means its
// documented default: depth 15, directives enabled, abort mode.
type Options struct {
	// Root is the project root; resolved paths are reported relative
	// to it.
	Root string

	Rules  rules.RuleSet
	Ignore []rules.Pattern

	// Env pins the execution environment for the whole build. When
	// empty, the per-call SSR flag decides; when set, it always wins.
	Env rules.Env

	// MaxDepth bounds reconstructed import traces.
	MaxDepth int

	// DisableDirectives turns off "use server"/"use client"
	// enforcement in transform events.
	DisableDirectives bool

	Mode Mode

	// Verbose appends internal denial detail to diagnostics.
	Verbose bool

	// Resolve supplies resolved absolute paths for file-pattern rules
	// and graph node identity. Optional; without it only specifier
	// rules apply.
	Resolve ResolveFunc

	// Advisories receives every non-fatal denial in advise mode.
	Advisories func(*Denial)

	Logger *log.Logger
}

// Guard is the per-build enforcement context. Construct one per build and
// pass it to every hook; it holds no process-wide state.
type Guard struct {
	opts     Options
	graph    *graph.Graph
	inflight *inflightSet
	lines    *lru.Cache[string, []string]
	logger   *log.Logger
}

// New creates a guard with fresh build-scoped state.
func New(opts Options) *Guard {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Mode == "" {
		opts.Mode = ModeAbort
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "envfence"})
	}
	lines, _ := lru.New[string, []string](256)
	return &Guard{
		opts:     opts,
		graph:    graph.New(),
		inflight: newInflightSet(),
		lines:    lines,
		logger:   logger,
	}
}

// Graph exposes the build's import graph for pipelines that need
// dependency lookups (watch mode).
func (g *Guard) Graph() *graph.Graph {
	return g.graph
}

// Reset discards all build-scoped state. Call at build start when reusing
// a guard across builds.
func (g *Guard) Reset() {
	g.graph.Clear()
	g.inflight.clear()
	g.lines.Purge()
}

// OnResolve handles one resolution event from the host. Entry modules
// (no importer) are never evaluated. In abort mode a denial is returned
// as a *DenialError; otherwise the event passes through with a nil error.
func (g *Guard) OnResolve(specifier, importer string, ssr bool) error {
	if importer == "" {
		return nil
	}

	// One concurrent evaluation per edge: duplicate in-flight events
	// pass through without re-recording or re-reporting.
	key := importer + "\x00" + specifier
	if !g.inflight.begin(key) {
		return nil
	}
	defer g.inflight.end(key)

	target := specifier
	resolved := ""
	if g.opts.Resolve != nil {
		if abs, ok := g.opts.Resolve(specifier, importer); ok {
			resolved = abs
			target = abs
		}
	}

	g.graph.Record(target, importer, specifier)

	env := g.env(ssr)
	envRules := g.opts.Rules.ForEnv(env)

	if p, ok := rules.Match(specifier, envRules.Specifiers); ok {
		return g.decide(&Denial{
			Kind:     SpecifierDenied,
			Env:      env,
			Pattern:  p,
			ModuleID: target,
			Denied:   specifier,
		})
	}

	if resolved != "" && len(envRules.Files) > 0 {
		rel := g.relPath(resolved)
		if p, ok := rules.Match(rel, envRules.Files); ok {
			return g.decide(&Denial{
				Kind:         FileDenied,
				Env:          env,
				Pattern:      p,
				ModuleID:     target,
				Denied:       specifier,
				ResolvedPath: rel,
			})
		}
	}

	return nil
}

// OnTransform handles one transform event: a lightweight scan of the
// module's leading source text for a boundary directive. A "use server"
// module evaluated for the client is denied; "use client" is never denied
// on the server.
func (g *Guard) OnTransform(source, id string, ssr bool) error {
	if g.opts.DisableDirectives {
		return nil
	}

	kind := directive.Detect(source)
	if kind != directive.RestrictToServer {
		return nil
	}

	env := g.env(ssr)
	if env != rules.EnvClient {
		return nil
	}

	return g.decide(&Denial{
		Kind:      DirectiveDenied,
		Env:       env,
		Directive: kind,
		ModuleID:  id,
	})
}

// OnFileChanged drops a changed file from the import graph so incremental
// rebuilds cannot walk through stale edges.
func (g *Guard) OnFileChanged(path string) {
	g.graph.Invalidate(path)
	g.lines.Remove(path)
	g.logger.Debug("invalidated module", "file", g.relPath(path))
}

// env picks the execution environment for one event. An explicitly
// configured environment always beats the host's per-call flag.
func (g *Guard) env(ssr bool) rules.Env {
	if g.opts.Env != "" {
		return g.opts.Env
	}
	if ssr {
		return rules.EnvServer
	}
	return rules.EnvClient
}

// decide turns a matched denial into an abort or an advisory. Specifier
// and file denials are first run through the ignore filter; directive
// denials are not, since ignore patterns target importers.
func (g *Guard) decide(d *Denial) error {
	d.Trace = g.graph.BuildTrace(d.ModuleID, g.opts.MaxDepth)

	if d.Kind != DirectiveDenied {
		files := make([]string, 0, len(d.Trace.Nodes))
		for _, n := range d.Trace.Nodes {
			files = append(files, n.File)
		}
		if rules.IsIgnored(files, g.opts.Ignore) {
			return nil
		}
	}

	d.Message = g.render(d)

	if g.opts.Mode == ModeAdvise {
		g.logger.Warn(d.Message)
		if g.opts.Advisories != nil {
			g.opts.Advisories(d)
		}
		return nil
	}
	return &DenialError{Denial: d}
}

// relPath renders an absolute path relative to the project root with
// forward slashes, falling back to the input when it cannot.
func (g *Guard) relPath(path string) string {
	if g.opts.Root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(g.opts.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
