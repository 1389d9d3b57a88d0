package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// Pattern is a denial pattern: either a glob or a regular expression.
// Patterns are evaluated in declaration order, and which variant matched
// is part of the diagnostic, so the two are kept as an explicit tagged
// pair rather than a bare matching function.
type Pattern struct {
	Source  string
	IsRegex bool

	g  glob.Glob
	re *regexp.Regexp
}

// NewGlob compiles a glob pattern.
func NewGlob(source string) (Pattern, error) {
	g, err := glob.Compile(source)
	if err != nil {
		return Pattern{}, fmt.Errorf("invalid glob %q: %w", source, err)
	}
	return Pattern{Source: source, g: g}, nil
}

// NewRegexp compiles a regular-expression pattern.
func NewRegexp(source string) (Pattern, error) {
	re, err := regexp.Compile(source)
	if err != nil {
		return Pattern{}, fmt.Errorf("invalid regexp %q: %w", source, err)
	}
	return Pattern{Source: source, IsRegex: true, re: re}, nil
}

func MustGlob(source string) Pattern {
	p, err := NewGlob(source)
	if err != nil {
		panic(err)
	}
	return p
}

func MustRegexp(source string) Pattern {
	p, err := NewRegexp(source)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse turns a config literal into a Pattern. Literals wrapped in
// slashes ("/^node:/") compile as regular expressions, everything else
// as a glob.
func Parse(literal string) (Pattern, error) {
	if len(literal) >= 2 && strings.HasPrefix(literal, "/") && strings.HasSuffix(literal, "/") {
		return NewRegexp(literal[1 : len(literal)-1])
	}
	return NewGlob(literal)
}

// Matches reports whether candidate satisfies the pattern.
func (p Pattern) Matches(candidate string) bool {
	if p.IsRegex {
		return p.re != nil && p.re.MatchString(candidate)
	}
	return p.g != nil && p.g.Match(candidate)
}

// Equal compares patterns by variant and source text. Two regexes are
// equal only when their sources are identical.
func (p Pattern) Equal(other Pattern) bool {
	return p.IsRegex == other.IsRegex && p.Source == other.Source
}

func (p Pattern) String() string {
	if p.IsRegex {
		return "/" + p.Source + "/"
	}
	return p.Source
}
