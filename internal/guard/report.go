package guard

import (
	"fmt"
	"os"
	"strings"

	"envfence/internal/directive"
	"envfence/internal/graph"
	"envfence/internal/rules"
)

// Kind distinguishes what a denial matched against.
type Kind string

const (
	SpecifierDenied Kind = "specifier"
	FileDenied      Kind = "file"
	DirectiveDenied Kind = "directive"
)

// Denial fully describes one denial decision. It is immutable once
// constructed and consumed only by reporting.
type Denial struct {
	Kind Kind
	Env  rules.Env

	// Pattern is the matched rule for specifier and file denials.
	Pattern rules.Pattern
	// Directive is set instead of Pattern for directive denials.
	Directive directive.Kind

	// ModuleID is the denied module: its resolved path when known,
	// otherwise the specifier as requested.
	ModuleID string
	// Denied is the raw specifier text that triggered the match.
	Denied string
	// ResolvedPath is the root-relative path, set for file denials.
	ResolvedPath string

	Trace   graph.Trace
	Message string
}

// DenialError carries a denial upward as a build-halting failure in abort
// mode. Error() is the full formatted diagnostic.
type DenialError struct {
	Denial *Denial
}

func (e *DenialError) Error() string {
	return e.Denial.Message
}

const separator = "------------------------------------------------------------"

// render formats the human-facing diagnostic: a banner naming what was
// denied, the environment and matched pattern, the numbered import trace
// (entry point first, denied module last), all fenced by separators.
func (g *Guard) render(d *Denial) string {
	var b strings.Builder

	b.WriteString(separator)
	b.WriteString("\n")
	switch d.Kind {
	case SpecifierDenied:
		fmt.Fprintf(&b, "denied specifier %q\n", d.Denied)
		fmt.Fprintf(&b, "environment: %s, pattern: %s\n", d.Env, d.Pattern)
	case FileDenied:
		fmt.Fprintf(&b, "denied file %q\n", d.Denied)
		fmt.Fprintf(&b, "environment: %s, pattern: %s\n", d.Env, d.Pattern)
		fmt.Fprintf(&b, "resolved: %s\n", d.ResolvedPath)
	case DirectiveDenied:
		fmt.Fprintf(&b, "denied %q module\n", d.Directive.String())
		fmt.Fprintf(&b, "environment: %s, directive: %q\n", d.Env, d.Directive.String())
	}
	b.WriteString(separator)
	b.WriteString("\n")

	total := len(d.Trace.Nodes)
	for i, n := range d.Trace.Nodes {
		// Numbering counts distance from the denied module, so the
		// denied module is always line 1.
		idx := total - i
		line := g.relPath(n.File)
		if n.Specifier != "" {
			if ln, ok := g.lookupLine(n.File, n.Specifier); ok {
				line = fmt.Sprintf("%s:%d", line, ln)
			}
		}
		suffix := ""
		if i == 0 && d.Trace.Complete {
			suffix = " (entry point)"
		}
		fmt.Fprintf(&b, "  %d  %s%s\n", idx, line, suffix)
	}
	b.WriteString(separator)

	if g.opts.Verbose {
		fmt.Fprintf(&b, "\nkind=%s module=%s trace_nodes=%d trace_complete=%t",
			d.Kind, d.ModuleID, total, d.Trace.Complete)
	}

	return b.String()
}

// lookupLine finds the 1-based line in file where specifier appears as a
// quoted literal inside an import-like statement. Best effort: a file
// that cannot be read or contains no matching line just loses its line
// annotation.
func (g *Guard) lookupLine(file, specifier string) (int, bool) {
	lines, ok := g.lines.Get(file)
	if !ok {
		data, err := os.ReadFile(file)
		if err != nil {
			g.lines.Add(file, nil)
			return 0, false
		}
		lines = strings.Split(string(data), "\n")
		g.lines.Add(file, lines)
	}

	double := `"` + specifier + `"`
	single := `'` + specifier + `'`
	for i, line := range lines {
		if !strings.Contains(line, double) && !strings.Contains(line, single) {
			continue
		}
		if strings.Contains(line, "import") || strings.Contains(line, "require") ||
			strings.Contains(line, "export") {
			return i + 1, true
		}
	}
	return 0, false
}
