// Package gencoding resolves the --encoding CLI flag (spec.md §6) to a
// concrete text transcoder, repurposing golang.org/x/text -- the teacher
// module imports x/text transitively for its own grammar tooling -- via its
// ianaindex registry rather than hand-rolling a name-to-charset table.
package gencoding

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/dekarrin/grammarinator/internal/gerrors"
)

// Decoder returns the encoding.Encoding registered under the given IANA
// name (e.g. "UTF-8", "ISO-8859-1", "Windows-1252").
func Decoder(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, gerrors.Wrapf(gerrors.KindInput, err, "gencoding: unknown encoding %q", name)
	}
	if enc == nil {
		return nil, gerrors.Newf(gerrors.KindInput, "gencoding: unknown encoding %q", name)
	}
	return enc, nil
}

// ToUTF8 decodes raw grammar-file bytes in the named encoding into a UTF-8
// string, which is the only form internal/g4lex accepts.
func ToUTF8(raw []byte, name string) (string, error) {
	enc, err := Decoder(name)
	if err != nil {
		return "", err
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", gerrors.Wrapf(gerrors.KindInput, err, "gencoding: decoding as %q", name)
	}
	return string(out), nil
}
