// Package placeholder implements the deferred-substitution mechanism the
// emitter relies on: text fragments are produced with `{name}` markers before
// their final value (a min-depth, an action body, a literal string) is known,
// and a single substitution pass resolves all of them at the end.
package placeholder

import (
	"fmt"
	"strings"
)

// Kind is the synthetic-identifier family a placeholder name belongs to. It
// only affects the prefix used by New; the table itself treats all entries
// uniformly.
type Kind string

const (
	KindAlt    Kind = "alt"
	KindCond   Kind = "cond"
	KindAction Kind = "action"
	KindLit    Kind = "lit"
	KindQuant  Kind = "quant"
	KindCode   Kind = "code"
)

// Table is a mapping from synthetic placeholder identifier to its resolved
// string value, plus the monotonic counters used to mint fresh identifiers
// per Kind. The zero value is ready to use.
type Table struct {
	values  map[string]string
	counter map[Kind]int
}

// New mints a fresh, unique identifier of the given kind (e.g. "alt_7"),
// without yet assigning it a value.
func (t *Table) New(kind Kind) string {
	if t.counter == nil {
		t.counter = make(map[Kind]int)
	}
	idx := t.counter[kind]
	t.counter[kind] = idx + 1
	return fmt.Sprintf("%s_%d", kind, idx)
}

// Set assigns the value for an identifier (minted via New or otherwise
// known, such as a rule name).
func (t *Table) Set(name, value string) {
	if t.values == nil {
		t.values = make(map[string]string)
	}
	t.values[name] = value
}

// Get returns the value set for name and whether it was present.
func (t *Table) Get(name string) (string, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Keys returns every identifier with a value set in t. Order is unspecified.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.values))
	for k := range t.values {
		keys = append(keys, k)
	}
	return keys
}

// Marker returns the `{name}` text that, once embedded in a buffer, will be
// resolved by Substitute.
func Marker(name string) string {
	return "{" + name + "}"
}

// Substitute performs the single deferred-substitution pass over src,
// replacing every `{name}` marker with its value from t. A marker whose name
// has no entry in t is an internal error, not a silent pass-through: the set
// of placeholder keys is a closed alphabet generated monotonically by the
// emitter, and a missing one means the emitter and the finalizer have gotten
// out of sync.
func Substitute(src string, t *Table) (string, error) {
	var out strings.Builder
	out.Grow(len(src))

	i := 0
	for i < len(src) {
		open := strings.IndexByte(src[i:], '{')
		if open < 0 {
			out.WriteString(src[i:])
			break
		}
		out.WriteString(src[i : i+open])
		start := i + open + 1

		close := strings.IndexByte(src[start:], '}')
		if close < 0 {
			return "", fmt.Errorf("placeholder: unterminated marker starting at byte %d", start-1)
		}
		name := src[start : start+close]

		value, ok := t.Get(name)
		if !ok {
			return "", fmt.Errorf("placeholder: no value set for %q", name)
		}
		out.WriteString(value)

		i = start + close + 1
	}

	return out.String(), nil
}
