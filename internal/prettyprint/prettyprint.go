// Package prettyprint implements the optional --pep8 cosmetic pass
// (spec.md §4.5, §6): the compiler's own emission is whitespace-correct but
// does not wrap long comment text, so this pass re-wraps it. Grounded on
// the teacher's repeated rosed.Edit(...).Wrap(n).String() idiom (e.g.
// tunascript/syntax/ast.go, internal/ictiobus/parse/slr.go).
package prettyprint

import (
	"strings"

	"github.com/dekarrin/rosed"
)

const maxLineLength = 79

// Apply rewraps any "# ..." comment line in src longer than the
// conventional 79-column limit, and ensures the file ends with exactly one
// trailing newline. It is a cosmetic pass only -- it never touches a
// non-comment line, so it cannot change the emitted program's behavior.
func Apply(src string) string {
	lines := strings.Split(src, "\n")
	var out []string
	for _, ln := range lines {
		trimmed := strings.TrimLeft(ln, " \t")
		if strings.HasPrefix(trimmed, "#") && len(ln) > maxLineLength {
			indent := ln[:len(ln)-len(trimmed)]
			wrapped := rosed.Edit(trimmed).Wrap(maxLineLength - len(indent)).String()
			for _, wln := range strings.Split(wrapped, "\n") {
				out = append(out, indent+wln)
			}
			continue
		}
		out = append(out, ln)
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n"
}
