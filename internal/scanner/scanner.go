// Package scanner extracts import specifiers from JavaScript and
// TypeScript sources. It backs the standalone scan pipeline, which has no
// host build tool to stream resolution events from.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Import is one import site found in a module.
type Import struct {
	Specifier string
	Line      int // 1-based
}

// LanguageGrammar supplies the tree-sitter grammar and import query for
// one source language.
type LanguageGrammar interface {
	GetLanguage() *sitter.Language
	GetQuery() string
}

// Scanner parses source files and extracts their import specifiers.
type Scanner struct {
	grammar LanguageGrammar
}

// ForFile picks a scanner by file extension.
func ForFile(path string) (*Scanner, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return &Scanner{grammar: &JavaScriptGrammar{}}, nil
	case ".ts", ".tsx", ".mts", ".cts":
		return &Scanner{grammar: &TypeScriptGrammar{}}, nil
	default:
		return nil, fmt.Errorf("unsupported source extension: %s", path)
	}
}

// ScanFile reads and parses one source file.
func (s *Scanner) ScanFile(path string) ([]Import, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	imports, err := s.Scan(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	return imports, nil
}

// Scan parses source text and returns its import specifiers in document
// order.
func (s *Scanner) Scan(source []byte) ([]Import, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(s.grammar.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}

	query, err := sitter.NewQuery([]byte(s.grammar.GetQuery()), s.grammar.GetLanguage())
	if err != nil {
		return nil, fmt.Errorf("failed to create query: %w", err)
	}

	qc := sitter.NewQueryCursor()
	qc.Exec(query, tree.RootNode())

	var imports []Import
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			if query.CaptureNameForId(c.Index) != "source" {
				continue
			}
			spec := unquote(c.Node.Content(source))
			if spec == "" {
				continue
			}
			imports = append(imports, Import{
				Specifier: spec,
				Line:      int(c.Node.StartPoint().Row) + 1,
			})
		}
	}

	return imports, nil
}

func unquote(s string) string {
	return strings.Trim(s, "\"'`")
}
