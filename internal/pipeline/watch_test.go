package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"envfence/internal/guard"
)

func TestRecheck_InvalidatesAndReplays(t *testing.T) {
	dir := writeProject(t)
	scan := New(dir, scanOptions(guard.ModeAdvise), log.New(io.Discard))

	result, err := scan.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Denials, 2)

	// The offending import goes away; after a recheck the graph no
	// longer records util.js as an importer of fs.
	util := filepath.Join(dir, "util.js")
	require.NoError(t, os.WriteFile(util, []byte("export const u = 1;\n"), 0o644))
	scan.recheck(util)

	assert.Empty(t, scan.Guard().Graph().Dependents("fs"))
}

func TestRecheck_RemovedFile(t *testing.T) {
	dir := writeProject(t)
	scan := New(dir, scanOptions(guard.ModeAdvise), log.New(io.Discard))

	_, err := scan.Run(context.Background())
	require.NoError(t, err)

	lib := filepath.Join(dir, "lib.js")
	g := scan.Guard().Graph()
	require.NotEmpty(t, g.Edges(lib))

	require.NoError(t, os.Remove(lib))
	scan.recheck(lib)

	assert.Empty(t, g.Edges(lib), "removed file is dropped as a target")
	assert.Empty(t, g.Dependents(filepath.Join(dir, "util.js")),
		"removed file is stripped as an importer")
}
