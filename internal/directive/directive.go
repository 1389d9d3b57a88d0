// Package directive classifies a module's permitted execution environment
// from a leading source marker ("use server" / "use client").
package directive

import "strings"

// Kind is the boundary restriction a directive declares.
type Kind int

const (
	// None means the module carries no boundary directive.
	None Kind = iota
	// RestrictToServer marks a module as only valid on the server
	// ("use server"). Evaluating it in a client build is a violation.
	RestrictToServer
	// RestrictToClient marks a client boundary ("use client"). It is
	// never a violation to evaluate such a module on the server; the
	// directive marks an entry into client code, not an exclusion.
	RestrictToClient
)

func (k Kind) String() string {
	switch k {
	case RestrictToServer:
		return "use server"
	case RestrictToClient:
		return "use client"
	default:
		return ""
	}
}

// Detect scans the start of a module's source for a boundary directive.
// Only a leading single- or double-quoted literal counts; no tokenizer
// beyond literal-prefix matching is involved.
func Detect(source string) Kind {
	trimmed := strings.TrimLeft(source, " \t\r\n\f\v")
	switch {
	case hasQuotedPrefix(trimmed, "use server"):
		return RestrictToServer
	case hasQuotedPrefix(trimmed, "use client"):
		return RestrictToClient
	default:
		return None
	}
}

func hasQuotedPrefix(s, marker string) bool {
	return strings.HasPrefix(s, `"`+marker+`"`) || strings.HasPrefix(s, `'`+marker+`'`)
}
