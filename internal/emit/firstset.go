package emit

import (
	"github.com/dekarrin/grammarinator/internal/g4parse"
	"github.com/dekarrin/grammarinator/internal/gtree"
)

// interval is a half-open code-point range, re-declared locally (rather than
// imported from g4parse) since emit's notion of "first characters" is a
// semantic analysis over the tree, not a lexical-escape concern.
type interval struct {
	lo, hi int
}

// fullUnicodeFallback is used when a lexer rule's possible first characters
// can't be statically narrowed (e.g. it opens with a rule reference into a
// recursive or action-heavy fragment). It is deliberately the same wide
// range the runtime's PrintableUnicodeRanges constant documents, so a
// negated token reference that can't be narrowed still produces a sensible
// fuzzer rather than an empty character class.
var fullUnicodeFallback = interval{lo: 0x20, hi: 0x110000}

// firstSetResolver computes, for a lexer rule's body, the set of code-point
// intervals its derivations can start with. It's a best-effort static
// analysis (not the full reachability solve ggraph performs for depth),
// used only to resolve a negated token reference inside a "~(...)" set --
// see FuzzerGenerator.chars_from_set's TOKEN_REF branch in
// original_source/grammarinator/process.py, which needs the same
// information to build an exclusion list.
type firstSetResolver struct {
	rules    map[string]*gtree.Node
	memo     map[string][]interval
	visiting map[string]bool
}

func newFirstSetResolver(rules map[string]*gtree.Node) *firstSetResolver {
	return &firstSetResolver{
		rules:    rules,
		memo:     make(map[string][]interval),
		visiting: make(map[string]bool),
	}
}

func (r *firstSetResolver) forRule(name string) []interval {
	if v, ok := r.memo[name]; ok {
		return v
	}
	if r.visiting[name] {
		// recursive rule reached while computing its own first set: can't
		// narrow further without it, fall back.
		return []interval{fullUnicodeFallback}
	}
	rule, ok := r.rules[name]
	if !ok || rule.Kind != gtree.KindLexerRuleSpec {
		return []interval{fullUnicodeFallback}
	}
	r.visiting[name] = true
	defer delete(r.visiting, name)

	out := r.forAltList(rule.Children[0])
	r.memo[name] = out
	return out
}

func (r *firstSetResolver) forAltList(altList *gtree.Node) []interval {
	var out []interval
	for _, alt := range altList.Children {
		out = append(out, r.forAlt(alt)...)
	}
	return out
}

func (r *firstSetResolver) forAlt(alt *gtree.Node) []interval {
	for _, el := range alt.Children {
		if len(el.Children) == 0 {
			continue
		}
		child := el.Children[0]
		if child.Kind == gtree.KindActionBlock {
			continue
		}
		return r.forAtom(child)
	}
	return nil
}

func (r *firstSetResolver) forAtom(node *gtree.Node) []interval {
	switch node.Kind {
	case gtree.KindStringLit:
		c, err := decodeFirstRune(node.Text)
		if err != nil {
			return []interval{fullUnicodeFallback}
		}
		return []interval{{lo: int(c), hi: int(c) + 1}}
	case gtree.KindCharacterRange:
		return []interval{{lo: node.RangeLo, hi: node.RangeHi}}
	case gtree.KindLexerCharSet:
		var out []interval
		for _, c := range node.Children {
			out = append(out, interval{lo: c.RangeLo, hi: c.RangeHi})
		}
		return out
	case gtree.KindDot:
		return []interval{fullUnicodeFallback}
	case gtree.KindTokenRef:
		return r.forRule(node.Text)
	case gtree.KindRuleref:
		return []interval{fullUnicodeFallback}
	case gtree.KindNotSet:
		// complement of a small exclusion set is still effectively
		// "almost anything"; approximate with the fallback range.
		return []interval{fullUnicodeFallback}
	case gtree.KindBlock:
		return r.forAltList(node.Children[0])
	}
	return []interval{fullUnicodeFallback}
}

func decodeFirstRune(raw string) (rune, error) {
	if raw == "" {
		return 0, errEmptyLiteral
	}
	r, _, err := g4parse.DecodeEscapedChar(raw)
	if err != nil {
		return 0, err
	}
	return r, nil
}

var errEmptyLiteral = emptyLiteralError{}

type emptyLiteralError struct{}

func (emptyLiteralError) Error() string { return "emit: empty string literal" }
