package rules

// nodeBuiltins are the Node-only modules the default preset denies in the
// client environment. Curated data, not an algorithm; the regex covers the
// "node:" protocol form of every builtin.
var nodeBuiltins = []string{
	"assert", "async_hooks", "buffer", "child_process", "cluster",
	"crypto", "dgram", "dns", "fs", "http", "http2", "https", "net",
	"os", "path", "perf_hooks", "process", "querystring", "readline",
	"repl", "stream", "string_decoder", "tls", "url", "util", "v8",
	"vm", "worker_threads", "zlib",
}

// PresetOptions tunes the default rule set.
type PresetOptions struct {
	// Exclude removes patterns from the default lists. A string literal
	// removes the glob with that exact source; a regex literal removes
	// only the regex with identical source.
	Exclude []Pattern
}

// Preset returns the curated default rule set: Node builtins and
// server-suffixed modules denied on the client, client-suffixed modules
// denied on the server.
func Preset(opts PresetOptions) RuleSet {
	client := make([]Pattern, 0, len(nodeBuiltins)+2)
	for _, name := range nodeBuiltins {
		client = append(client, MustGlob(name))
	}
	client = append(client,
		MustRegexp(`^node:`),
		MustRegexp(`\.server(\.[a-z]+)?$`),
	)

	server := []Pattern{
		MustRegexp(`\.client(\.[a-z]+)?$`),
	}

	return RuleSet{
		Client: EnvRules{Specifiers: exclude(client, opts.Exclude)},
		Server: EnvRules{Specifiers: exclude(server, opts.Exclude)},
	}
}

func exclude(patterns, excluded []Pattern) []Pattern {
	if len(excluded) == 0 {
		return patterns
	}
	kept := patterns[:0]
	for _, p := range patterns {
		drop := false
		for _, e := range excluded {
			if p.Equal(e) {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, p)
		}
	}
	return kept
}
