// Package gtree defines the parse tree node kinds the grammarinator core
// consumes. The real producer of this tree is, in a faithful ANTLR-based
// toolchain, the ANTLR-generated parser for .g4 files; that parser is treated
// as an external collaborator by spec.md, so this package only fixes the
// shape of the tree it hands to internal/emit. internal/g4parse is this
// repository's own stand-in producer.
//
// A single tagged Node struct is used for every construct rather than one
// struct type per ANTLR production, since the emitter only ever needs a
// handful of shared fields (Text, Label, Children) no matter which construct
// it is looking at; an element's quantifier suffix is carried in Text.
// Uninteresting node kinds are simply never constructed; internal/emit
// reports an internal error for an atom kind it has no handler for.
package gtree

// Kind tags what a Node represents.
type Kind int

const (
	// KindGrammarSpec is the root. Text holds the grammar type ("lexer",
	// "parser", or "" for combined); Label holds the grammar name.
	KindGrammarSpec Kind = iota

	// KindOption is one "name = value" entry harvested from an options
	// prequel. Text is the name, Label is the textual value.
	KindOption

	// KindImport is one imported grammar name from an import prequel.
	KindImport

	// KindAction is a named action block from the prequel, e.g.
	// "@header {...}" or "@members {...}". Text is the action type
	// ("header", "members", ...), Label is the raw action source.
	KindAction

	// KindTokensSpec wraps the implicit token names declared in a
	// "tokens { ... }" block; each child is a KindTokenRef leaf.
	KindTokensSpec

	// KindParserRuleSpec is one parser rule. Text is the rule name;
	// Children holds exactly one KindRuleAltList.
	KindParserRuleSpec

	// KindLexerRuleSpec is one lexer rule. Text is the rule name;
	// Children holds exactly one KindLexerAltList.
	KindLexerRuleSpec

	// KindRuleAltList is the body of a parser rule or parenthesized
	// sub-block: one or more KindLabeledAlt/KindAlternative children.
	KindRuleAltList

	// KindLexerAltList is the body of a lexer rule or lexer sub-block: one
	// or more KindLexerAlt children.
	KindLexerAltList

	// KindLabeledAlt is an alternative tagged with "# Label". Label holds
	// the tag name; Children holds exactly one KindAlternative.
	KindLabeledAlt

	// KindAlternative is one parser-rule alternative: a sequence of
	// KindElement children (possibly empty).
	KindAlternative

	// KindLexerAlt is one lexer-rule alternative: a sequence of
	// KindLexerElement children (possibly empty).
	KindLexerAlt

	// KindElement wraps one parser-rule element. Text holds the quantifier
	// suffix ("?", "*", "+", or "" for none). Children holds exactly one
	// child: a KindLabeledElement, an atom kind, a KindBlock, or a
	// KindActionBlock.
	KindElement

	// KindLexerElement wraps one lexer-rule element, shaped like
	// KindElement but for lexer atoms.
	KindLexerElement

	// KindLabeledElement is "name=atom" or "name+=atom". Label is the
	// name; PlusAssign distinguishes "+=" from "=". Children holds exactly
	// one atom/KindBlock child.
	KindLabeledElement

	// KindBlock is a parenthesized sub-alternation, e.g. "(a|b)". Children
	// holds exactly one KindRuleAltList or KindLexerAltList.
	KindBlock

	// KindRuleref is a reference to a parser rule. Text is the rule name.
	KindRuleref

	// KindTokenRef is a reference to a lexer rule/token by name, used both
	// as a terminal in a parser rule and as an implicit token declaration.
	// Text is the token name.
	KindTokenRef

	// KindStringLit is a quoted string literal used as a terminal. Text is
	// the literal's content with quotes stripped and escapes intact.
	KindStringLit

	// KindDot is the '.' wildcard atom.
	KindDot

	// KindNotSet is a negated set, "~x" or "~(x|y|...)". Children holds the
	// negated elements as KindCharacterRange leaves (string literals and
	// char sets are expanded into these) and KindTokenRef leaves.
	KindNotSet

	// KindCharacterRange is "'a'..'z'". RangeLo/RangeHi hold the resolved,
	// half-open code-point interval.
	KindCharacterRange

	// KindLexerCharSet is "[abc-f]". Text holds the raw bracket content
	// (escapes intact, brackets stripped).
	KindLexerCharSet

	// KindActionBlock is "{ ... }" or, when IsPredicate is true, the
	// semantic predicate form "{ ... }?". Text holds the raw action source.
	KindActionBlock
)

// Node is one vertex of the grammar parse tree.
type Node struct {
	Kind Kind

	// Text carries the kind-specific primary text payload -- see the Kind
	// constant doc comments above for what it holds per kind.
	Text string

	// Label carries the kind-specific secondary text payload (a label name,
	// an option value, an action source) -- see the Kind constants above.
	Label string

	// PlusAssign is true for a KindLabeledElement written "name+=atom"
	// rather than "name=atom".
	PlusAssign bool

	// IsPredicate is true for a KindActionBlock suffixed with "?", i.e. a
	// semantic predicate rather than a plain embedded action.
	IsPredicate bool

	// RangeLo/RangeHi are the resolved code points for a KindCharacterRange
	// node. The interval is half-open: [RangeLo, RangeHi).
	RangeLo, RangeHi int

	Children []*Node
}

// NewNode constructs a Node of the given kind with the given children.
func NewNode(kind Kind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// Append adds children to n and returns n, for fluent construction in the
// parser.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}
