// Package runtimecontract names the identifiers the emitted fuzzer source
// references on the external runtime library it links against. No code here
// implements that runtime -- per spec.md §1, the runtime is an external
// collaborator specified only by the names and shapes the compiler may
// reference. Keeping the names as constants avoids the header prefix and the
// per-construct emitters drifting apart on spelling.
package runtimecontract

const (
	// UnparserRule is the node constructor used for rules belonging to a
	// parser (or combined) grammar.
	UnparserRule = "UnparserRule"

	// UnlexerRule is the node constructor used for rules belonging to a
	// lexer grammar, and for raw source fragments (literals, char draws).
	UnlexerRule = "UnlexerRule"

	// DepthControlDecorator wraps every emitted rule method so that the
	// runtime can track and cap recursion depth.
	DepthControlDecorator = "depthcontrol"

	// DefaultSuperClass is the base class name used when the grammar does
	// not set the superClass option.
	DefaultSuperClass = "Generator"

	// CharFromList draws a single character from a list of code-point
	// ranges.
	CharFromList = "char_from_list"

	// PrintableUnicodeRanges is the full table of printable unicode ranges,
	// used as the base set that negated character classes subtract from.
	PrintableUnicodeRanges = "printable_unicode_ranges"

	// MultirangeDiff computes the set difference between two range lists.
	MultirangeDiff = "multirange_diff"

	// ModelChoice picks an index among n weighted alternatives.
	ModelChoice = "model.choice"

	// ModelQuantify returns an iterator that runs between min and max
	// times, both inclusive; the emitter passes max=None for no upper
	// bound.
	ModelQuantify = "model.quantify"

	// AnyCharDefault is the method used to resolve '.' in a lexer rule when
	// the grammar does not set the dot option.
	AnyCharDefault = "any_char"
)
