package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_JavaScript(t *testing.T) {
	sc, err := ForFile("app.js")
	require.NoError(t, err)

	source := []byte(`import React from "react";
import { helper } from './lib/helper';

export { thing } from "./thing";

async function load() {
	return import("./lazy");
}
`)

	imports, err := sc.Scan(source)
	require.NoError(t, err)
	require.Len(t, imports, 4)

	assert.Equal(t, Import{Specifier: "react", Line: 1}, imports[0])
	assert.Equal(t, Import{Specifier: "./lib/helper", Line: 2}, imports[1])
	assert.Equal(t, Import{Specifier: "./thing", Line: 4}, imports[2])
	assert.Equal(t, Import{Specifier: "./lazy", Line: 7}, imports[3])
}

func TestScan_TypeScript(t *testing.T) {
	sc, err := ForFile("component.tsx")
	require.NoError(t, err)

	source := []byte(`import fs from "node:fs";

export const App = () => <div />;
`)

	imports, err := sc.Scan(source)
	require.NoError(t, err)
	require.Len(t, imports, 1)
	assert.Equal(t, "node:fs", imports[0].Specifier)
}

func TestScanFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod.js")
	require.NoError(t, os.WriteFile(path, []byte("import x from \"dep\";\n"), 0o644))

	sc, err := ForFile(path)
	require.NoError(t, err)

	imports, err := sc.ScanFile(path)
	require.NoError(t, err)
	require.Len(t, imports, 1)
	assert.Equal(t, "dep", imports[0].Specifier)

	_, err = sc.ScanFile(filepath.Join(t.TempDir(), "missing.js"))
	assert.Error(t, err)
}

func TestScan_NoImports(t *testing.T) {
	sc, err := ForFile("util.mjs")
	require.NoError(t, err)

	imports, err := sc.Scan([]byte("export const x = 1;\n"))
	require.NoError(t, err)
	assert.Empty(t, imports)
}

func TestForFile_UnsupportedExtension(t *testing.T) {
	_, err := ForFile("styles.css")
	assert.Error(t, err)
}
