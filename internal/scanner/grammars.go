package scanner

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// importQuery captures static imports, re-exports, and dynamic import()
// calls. The node names are shared between the javascript and tsx
// grammars.
const importQuery = `
	(import_statement source: (string) @source)
	(export_statement source: (string) @source)
	(call_expression
		function: (import)
		arguments: (arguments (string) @source))
`

// JavaScriptGrammar implements LanguageGrammar for .js/.jsx sources.
type JavaScriptGrammar struct{}

func (g *JavaScriptGrammar) GetLanguage() *sitter.Language {
	return javascript.GetLanguage()
}

func (g *JavaScriptGrammar) GetQuery() string {
	return importQuery
}

// TypeScriptGrammar implements LanguageGrammar for .ts/.tsx sources. The
// tsx grammar parses plain TypeScript as well.
type TypeScriptGrammar struct{}

func (g *TypeScriptGrammar) GetLanguage() *sitter.Language {
	return tsx.GetLanguage()
}

func (g *TypeScriptGrammar) GetQuery() string {
	return importQuery
}
