package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_OrderSensitive(t *testing.T) {
	// A glob literal declared before an equivalent regex must be the
	// reported pattern.
	patterns := []Pattern{MustGlob("a"), MustRegexp("a")}

	p, ok := Match("a", patterns)

	require.True(t, ok)
	assert.False(t, p.IsRegex)
	assert.Equal(t, "a", p.Source)
}

func TestMatch_Variants(t *testing.T) {
	t.Run("glob", func(t *testing.T) {
		p, ok := Match("node:fs", []Pattern{MustGlob("node:*")})
		require.True(t, ok)
		assert.Equal(t, "node:*", p.Source)
	})

	t.Run("regex", func(t *testing.T) {
		_, ok := Match("secrets.server.js", []Pattern{MustRegexp(`\.server\.`)})
		assert.True(t, ok)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := Match("react", []Pattern{MustGlob("fs"), MustRegexp("^node:")})
		assert.False(t, ok)
	})

	t.Run("empty list", func(t *testing.T) {
		_, ok := Match("anything", nil)
		assert.False(t, ok)
	})
}

func TestParse(t *testing.T) {
	t.Run("slash-wrapped literal is a regex", func(t *testing.T) {
		p, err := Parse("/^node:/")
		require.NoError(t, err)
		assert.True(t, p.IsRegex)
		assert.Equal(t, "^node:", p.Source)
		assert.True(t, p.Matches("node:fs"))
	})

	t.Run("plain literal is a glob", func(t *testing.T) {
		p, err := Parse("src/server/**")
		require.NoError(t, err)
		assert.False(t, p.IsRegex)
	})

	t.Run("invalid regex", func(t *testing.T) {
		_, err := Parse("/(/")
		assert.Error(t, err)
	})
}

func TestIsIgnored(t *testing.T) {
	trace := []string{"entry.js", "src/routes/admin.js", "denied.js"}

	t.Run("matching node suppresses", func(t *testing.T) {
		assert.True(t, IsIgnored(trace, []Pattern{MustGlob("src/routes/*")}))
	})

	t.Run("no matching node", func(t *testing.T) {
		assert.False(t, IsIgnored(trace, []Pattern{MustGlob("test/**")}))
	})

	t.Run("empty ignore list never suppresses", func(t *testing.T) {
		assert.False(t, IsIgnored(trace, nil))
	})
}

func TestRuleSet_ForEnv(t *testing.T) {
	rs := RuleSet{
		Client: EnvRules{Specifiers: []Pattern{MustGlob("fs")}},
		Server: EnvRules{Specifiers: []Pattern{MustGlob("browser-thing")}},
	}

	assert.Equal(t, "fs", rs.ForEnv(EnvClient).Specifiers[0].Source)
	assert.Equal(t, "browser-thing", rs.ForEnv(EnvServer).Specifiers[0].Source)
}
