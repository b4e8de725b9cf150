// Package loader resolves a grammar entry point into a single merged
// gtree.Node set of rule specs, following ANTLR "import" prequels across
// files the way FuzzerFactory._collect_imports/_parse do in
// original_source/grammarinator/process.py. A rule name declared in more
// than one file (the entry grammar overriding an imported one, or two
// imports declaring the same rule) resolves to the body from the file
// reached first in the breadth-first import walk, so the entry grammar's
// own rules always win.
package loader

import (
	"github.com/dekarrin/grammarinator/internal/g4parse"
	"github.com/dekarrin/grammarinator/internal/gerrors"
	"github.com/dekarrin/grammarinator/internal/gtree"
)

// FileReader abstracts reading a grammar file's source by name, so tests
// can substitute an in-memory map instead of a filesystem.
type FileReader interface {
	// ReadGrammar returns the source text of the grammar named name (as it
	// appears in a "grammar NAME;" header or "import NAME;" prequel), along
	// with the path it was actually read from (for diagnostics).
	ReadGrammar(name string) (src string, path string, err error)
}

// Result is the outcome of loading one or more grammar files: the merged
// rule set plus bookkeeping needed by later pipeline stages.
type Result struct {
	// GrammarName is the name declared by the entry grammar.
	GrammarName string

	// GrammarType is the entry grammar's declared type: "lexer", "parser",
	// or "" for a combined grammar.
	GrammarType string

	// Rules maps rule name to its winning KindParserRuleSpec/
	// KindLexerRuleSpec node, in final (last-write-wins) form.
	Rules map[string]*gtree.Node

	// RuleOrder lists rule names in first-seen order across the whole
	// import closure, for deterministic downstream iteration.
	RuleOrder []string

	// Options, Tokens, and Actions collect prequel constructs across the
	// whole import closure, entry grammar first.
	Options []*gtree.Node
	Tokens  []*gtree.Node
	Actions []*gtree.Node

	// Files lists every grammar file visited, entry point first.
	Files []string
}

// Load parses entryName and every grammar it (transitively) imports,
// merging their rule sets. For a rule name declared in several grammars,
// the grammar reached first in the breadth-first walk wins. The entry
// grammar is always reached first, so its rules win over anything it
// imports; a nested importer wins over its own imports only when the walk
// reaches it before them.
func Load(reader FileReader, entryName string) (*Result, error) {
	res := &Result{
		Rules: make(map[string]*gtree.Node),
	}

	visited := make(map[string]bool)
	queue := []string{entryName}
	var specs []*gtree.Node

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		if visited[name] {
			continue
		}
		visited[name] = true

		src, path, err := reader.ReadGrammar(name)
		if err != nil {
			return nil, gerrors.Wrapf(gerrors.KindInput, err, "loader: reading grammar %q", name)
		}

		spec, err := g4parse.Parse(src)
		if err != nil {
			return nil, gerrors.Wrapf(gerrors.KindParse, err, "loader: parsing %q", path)
		}

		if name == entryName {
			res.GrammarName = spec.Label
			res.GrammarType = spec.Text
		}
		res.Files = append(res.Files, path)
		specs = append(specs, spec)

		for _, child := range spec.Children {
			if child.Kind == gtree.KindImport {
				queue = append(queue, child.Text)
			}
		}
	}

	// Forward pass: prequel constructs and first-seen rule order, entry
	// grammar first.
	seenRule := make(map[string]bool)
	for _, spec := range specs {
		for _, child := range spec.Children {
			switch child.Kind {
			case gtree.KindOption:
				res.Options = append(res.Options, child)
			case gtree.KindTokensSpec:
				res.Tokens = append(res.Tokens, child.Children...)
			case gtree.KindAction:
				res.Actions = append(res.Actions, child)
			case gtree.KindParserRuleSpec, gtree.KindLexerRuleSpec:
				if !seenRule[child.Text] {
					seenRule[child.Text] = true
					res.RuleOrder = append(res.RuleOrder, child.Text)
				}
			}
		}
	}

	// Reverse pass: assign winning rule bodies so the entry grammar (and
	// anything closer to it in the walk) overrides what it imports.
	for i := len(specs) - 1; i >= 0; i-- {
		for _, child := range specs[i].Children {
			switch child.Kind {
			case gtree.KindParserRuleSpec, gtree.KindLexerRuleSpec:
				res.Rules[child.Text] = child
			}
		}
	}

	if len(res.Rules) == 0 {
		return nil, gerrors.Newf(gerrors.KindIllFormed, "loader: grammar %q declares no rules", entryName)
	}

	return res, nil
}
