package emit

import (
	"fmt"
	"strings"
)

// writer accumulates generated Python source with tracked indentation,
// mirroring FuzzerGenerator's indent()/line() helpers in
// original_source/grammarinator/process.py.
type writer struct {
	buf   strings.Builder
	depth int
}

func (w *writer) line(format string, a ...interface{}) {
	w.buf.WriteString(strings.Repeat("    ", w.depth))
	if len(a) == 0 {
		w.buf.WriteString(format)
	} else {
		w.buf.WriteString(fmt.Sprintf(format, a...))
	}
	w.buf.WriteByte('\n')
}

// raw appends text with no trailing newline or indentation of its own,
// used to splice in already-formatted multi-line text (an action body).
func (w *writer) raw(text string) {
	w.buf.WriteString(text)
}

func (w *writer) indent(fn func()) {
	w.depth++
	fn()
	w.depth--
}

// indentErr is indent's counterpart for closures that can fail -- the
// depth is still restored even when fn returns an error, since the writer
// is reused for every remaining construct in the walk.
func (w *writer) indentErr(fn func() error) error {
	w.depth++
	err := fn()
	w.depth--
	return err
}

func (w *writer) String() string {
	return w.buf.String()
}

// indentLines prefixes every line of text with the writer's current
// indentation, for multi-line raw content (an action body) inserted via a
// placeholder value rather than through line().
func (w *writer) indentLines(text string) string {
	prefix := strings.Repeat("    ", w.depth)
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		lines[i] = prefix + ln
	}
	return strings.Join(lines, "\n")
}
