package rules

// Env identifies the execution environment a module is being built for.
type Env string

const (
	EnvClient Env = "client"
	EnvServer Env = "server"
)

// EnvRules holds the ordered pattern lists for one environment: one list
// evaluated against raw import specifiers, one against root-relative
// resolved file paths.
type EnvRules struct {
	Specifiers []Pattern
	Files      []Pattern
}

// RuleSet holds the rules for both environments.
type RuleSet struct {
	Client EnvRules
	Server EnvRules
}

// ForEnv returns the rules for the given environment.
func (r RuleSet) ForEnv(env Env) EnvRules {
	if env == EnvServer {
		return r.Server
	}
	return r.Client
}

// Match returns the first pattern in declaration order that candidate
// satisfies. Order matters: the matched pattern's literal is what shows
// up in the diagnostic.
func Match(candidate string, patterns []Pattern) (Pattern, bool) {
	for _, p := range patterns {
		if p.Matches(candidate) {
			return p, true
		}
	}
	return Pattern{}, false
}

// IsIgnored reports whether any of the given trace files matches any
// ignore pattern. An empty ignore list never suppresses anything.
func IsIgnored(files []string, ignore []Pattern) bool {
	if len(ignore) == 0 {
		return false
	}
	for _, f := range files {
		if _, ok := Match(f, ignore); ok {
			return true
		}
	}
	return false
}
