// Package g4parse is a recursive-descent parser over the token stream
// produced by internal/g4lex, building the internal/gtree shape that
// internal/emit consumes. It is this repository's stand-in for the
// ANTLR-generated parser that spec.md treats as an external collaborator
// (§1); grounded on the hand-written descent style of
// internal/ictiobus/parse and on the grammar surface handled by
// FuzzerGenerator.generate_single in
// original_source/grammarinator/process.py.
package g4parse

import (
	"fmt"

	"github.com/dekarrin/grammarinator/internal/g4lex"
	"github.com/dekarrin/grammarinator/internal/gerrors"
	"github.com/dekarrin/grammarinator/internal/gtree"
)

// Parse tokenizes and parses a complete .g4 source file, returning its
// KindGrammarSpec root.
func Parse(src string) (*gtree.Node, error) {
	toks, err := g4lex.Lex(src)
	if err != nil {
		return nil, gerrors.Wrap(gerrors.KindParse, err, "g4parse: lexing failed")
	}
	p := &parser{toks: toks}
	spec, err := p.parseGrammarSpec()
	if err != nil {
		return nil, err
	}
	if !p.at(g4lex.ClassEOF) {
		return nil, p.errorf("unexpected trailing input after grammar spec")
	}
	return spec, nil
}

type parser struct {
	toks []g4lex.Token
	pos  int
}

func (p *parser) peek() g4lex.Token {
	return p.toks[p.pos]
}

func (p *parser) peekAhead(n int) g4lex.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *parser) at(class g4lex.Class) bool {
	return p.peek().Class == class
}

func (p *parser) atPunct(text string) bool {
	t := p.peek()
	return t.Class == g4lex.ClassPunct && t.Text == text
}

func (p *parser) atKeyword(text string) bool {
	t := p.peek()
	return t.Class == g4lex.ClassKeyword && t.Text == text
}

func (p *parser) advance() g4lex.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errorf(format string, a ...interface{}) error {
	msg := fmt.Sprintf(format, a...)
	return gerrors.Newf(gerrors.KindParse, "line %d: %s (at %s)", p.peek().Line, msg, p.peek())
}

func (p *parser) expectPunct(text string) (g4lex.Token, error) {
	if !p.atPunct(text) {
		return g4lex.Token{}, p.errorf("expected %q", text)
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(text string) (g4lex.Token, error) {
	if !p.atKeyword(text) {
		return g4lex.Token{}, p.errorf("expected keyword %q", text)
	}
	return p.advance(), nil
}

// expectIdentifier accepts either a RULE_REF or TOKEN_REF token, used
// wherever ANTLR surface syntax allows either case.
func (p *parser) expectIdentifier() (g4lex.Token, error) {
	if p.at(g4lex.ClassRuleRef) || p.at(g4lex.ClassTokenRef) {
		return p.advance(), nil
	}
	return g4lex.Token{}, p.errorf("expected identifier")
}

// ---- grammarSpec ----

func (p *parser) parseGrammarSpec() (*gtree.Node, error) {
	grammarType := ""
	if p.atKeyword("lexer") {
		p.advance()
		grammarType = "lexer"
	} else if p.atKeyword("parser") {
		p.advance()
		grammarType = "parser"
	}
	if _, err := p.expectKeyword("grammar"); err != nil {
		return nil, err
	}
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}

	spec := &gtree.Node{Kind: gtree.KindGrammarSpec, Text: grammarType, Label: nameTok.Text}

	for p.atKeyword("import") || p.atKeyword("options") || p.atKeyword("tokens") || p.atPunct("@") {
		children, err := p.parsePrequelConstruct()
		if err != nil {
			return nil, err
		}
		spec.Append(children...)
	}

	for !p.at(g4lex.ClassEOF) {
		rule, err := p.parseRuleSpec()
		if err != nil {
			return nil, err
		}
		spec.Append(rule)
	}

	return spec, nil
}

func (p *parser) parsePrequelConstruct() ([]*gtree.Node, error) {
	switch {
	case p.atKeyword("import"):
		p.advance()
		var out []*gtree.Node
		for {
			nameTok, err := p.expectIdentifier()
			if err != nil {
				return nil, err
			}
			out = append(out, &gtree.Node{Kind: gtree.KindImport, Text: nameTok.Text})
			if p.atPunct(",") {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return out, nil

	case p.atKeyword("options"):
		p.advance()
		if !p.at(g4lex.ClassActionBlock) {
			return nil, p.errorf("expected options block")
		}
		raw := p.advance().Text
		var out []*gtree.Node
		for _, entry := range splitTopLevel(raw, ';') {
			name, value := splitAssignment(entry)
			out = append(out, &gtree.Node{Kind: gtree.KindOption, Text: name, Label: value})
		}
		return out, nil

	case p.atKeyword("tokens"):
		p.advance()
		if !p.at(g4lex.ClassActionBlock) {
			return nil, p.errorf("expected tokens block")
		}
		raw := p.advance().Text
		spec := &gtree.Node{Kind: gtree.KindTokensSpec}
		for _, name := range splitTopLevel(raw, ',') {
			spec.Append(&gtree.Node{Kind: gtree.KindTokenRef, Text: name})
		}
		return []*gtree.Node{spec}, nil

	case p.atPunct("@"):
		p.advance()
		var nameTok g4lex.Token
		if p.atKeyword("parser") || p.atKeyword("lexer") {
			nameTok = p.advance()
		} else {
			var err error
			nameTok, err = p.expectIdentifier()
			if err != nil {
				return nil, err
			}
		}
		actionType := nameTok.Text
		if p.atPunct(":") {
			// namespaced action, e.g. @parser::header -- fold the two
			// names into one "parser::header" action type.
			p.advance()
			second, err := p.expectPunct(":")
			_ = second
			if err != nil {
				return nil, err
			}
			nameTok2, err := p.expectIdentifier()
			if err != nil {
				return nil, err
			}
			actionType = actionType + "::" + nameTok2.Text
		}
		if !p.at(g4lex.ClassActionBlock) {
			return nil, p.errorf("expected action block for @%s", actionType)
		}
		raw := p.advance().Text
		return []*gtree.Node{{Kind: gtree.KindAction, Text: actionType, Label: raw}}, nil
	}

	return nil, p.errorf("expected a prequel construct")
}

func splitAssignment(entry string) (name, value string) {
	for i := 0; i < len(entry); i++ {
		if entry[i] == '=' {
			name = trimSpace(entry[:i])
			value = trimSpace(entry[i+1:])
			value = stripQuotes(value)
			return
		}
	}
	return trimSpace(entry), ""
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpaceByte(s[start]) {
		start++
	}
	for end > start && isSpaceByte(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}

// ---- ruleSpec ----

func (p *parser) parseRuleSpec() (*gtree.Node, error) {
	fragment := false
	if p.atKeyword("fragment") {
		p.advance()
		fragment = true
	}

	if p.at(g4lex.ClassTokenRef) {
		nameTok := p.advance()
		if _, err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		body, err := p.parseLexerAltList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &gtree.Node{Kind: gtree.KindLexerRuleSpec, Text: nameTok.Text, Children: []*gtree.Node{body}}, nil
	}

	if fragment {
		return nil, p.errorf("'fragment' may only precede a lexer rule")
	}

	if p.at(g4lex.ClassRuleRef) {
		nameTok := p.advance()
		if _, err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		body, err := p.parseRuleAltList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &gtree.Node{Kind: gtree.KindParserRuleSpec, Text: nameTok.Text, Children: []*gtree.Node{body}}, nil
	}

	return nil, p.errorf("expected a rule name")
}

// ---- parser-rule alt list ----

func (p *parser) atAltListEnd() bool {
	return p.atPunct(";") || p.atPunct(")") || p.at(g4lex.ClassEOF)
}

func (p *parser) parseRuleAltList() (*gtree.Node, error) {
	list := &gtree.Node{Kind: gtree.KindRuleAltList}
	for {
		alt, err := p.parseLabeledAlt()
		if err != nil {
			return nil, err
		}
		list.Append(alt)
		if p.atPunct("|") {
			p.advance()
			continue
		}
		break
	}
	return list, nil
}

func (p *parser) parseLabeledAlt() (*gtree.Node, error) {
	alt, err := p.parseAlternative()
	if err != nil {
		return nil, err
	}
	if p.atPunct("#") {
		p.advance()
		nameTok, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		return &gtree.Node{Kind: gtree.KindLabeledAlt, Label: nameTok.Text, Children: []*gtree.Node{alt}}, nil
	}
	return alt, nil
}

func (p *parser) parseAlternative() (*gtree.Node, error) {
	alt := &gtree.Node{Kind: gtree.KindAlternative}
	for !p.atAltListEnd() && !p.atPunct("|") && !p.atPunct("#") {
		el, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		alt.Append(el)
	}
	return alt, nil
}

// isAssignPunct reports whether t is the '=' or '+=' used to introduce a
// labeled element.
func isAssignPunct(t g4lex.Token) bool {
	return t.Class == g4lex.ClassPunct && (t.Text == "=" || t.Text == "+=")
}

func (p *parser) parseElement() (*gtree.Node, error) {
	if p.at(g4lex.ClassActionBlock) {
		tok := p.advance()
		isPred := false
		if p.atPunct("?") {
			p.advance()
			isPred = true
		}
		action := &gtree.Node{Kind: gtree.KindActionBlock, Text: tok.Text, IsPredicate: isPred}
		return &gtree.Node{Kind: gtree.KindElement, Children: []*gtree.Node{action}}, nil
	}

	if (p.at(g4lex.ClassRuleRef) || p.at(g4lex.ClassTokenRef)) && isAssignPunct(p.peekAhead(1)) {
		nameTok := p.advance()
		plus := p.advance().Text == "+="
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		labeled := &gtree.Node{Kind: gtree.KindLabeledElement, Label: nameTok.Text, PlusAssign: plus, Children: []*gtree.Node{atom}}
		suffix := p.parseOptionalSuffix()
		return &gtree.Node{Kind: gtree.KindElement, Text: suffix, Children: []*gtree.Node{labeled}}, nil
	}

	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	suffix := p.parseOptionalSuffix()
	return &gtree.Node{Kind: gtree.KindElement, Text: suffix, Children: []*gtree.Node{atom}}, nil
}

func (p *parser) parseOptionalSuffix() string {
	suffix := ""
	if p.atPunct("?") || p.atPunct("*") || p.atPunct("+") {
		suffix = p.advance().Text
	}
	// non-greedy marker, e.g. "*?" -- greediness has no effect on fuzzer
	// generation, so it's accepted and discarded.
	if suffix != "" && p.atPunct("?") {
		p.advance()
	}
	return suffix
}

// parseAtom handles the subset of ANTLR atoms legal in a parser-rule
// alternative: terminal (TOKEN_REF/STRING_LITERAL), ruleref, notSet, dot,
// and a parenthesized block.
func (p *parser) parseAtom() (*gtree.Node, error) {
	switch {
	case p.atPunct("("):
		p.advance()
		body, err := p.parseRuleAltList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return &gtree.Node{Kind: gtree.KindBlock, Children: []*gtree.Node{body}}, nil

	case p.atPunct("~"):
		return p.parseNotSet(false)

	case p.atPunct("."):
		p.advance()
		return &gtree.Node{Kind: gtree.KindDot}, nil

	case p.at(g4lex.ClassStringLit):
		tok := p.advance()
		return &gtree.Node{Kind: gtree.KindStringLit, Text: tok.Text}, nil

	case p.at(g4lex.ClassTokenRef):
		tok := p.advance()
		return &gtree.Node{Kind: gtree.KindTokenRef, Text: tok.Text}, nil

	case p.at(g4lex.ClassRuleRef):
		tok := p.advance()
		return &gtree.Node{Kind: gtree.KindRuleref, Text: tok.Text}, nil
	}

	return nil, p.errorf("expected an atom")
}

// ---- lexer-rule alt list ----

func (p *parser) parseLexerAltList() (*gtree.Node, error) {
	list := &gtree.Node{Kind: gtree.KindLexerAltList}
	for {
		alt, err := p.parseLexerAlt()
		if err != nil {
			return nil, err
		}
		list.Append(alt)
		if p.atPunct("|") {
			p.advance()
			continue
		}
		break
	}
	return list, nil
}

func (p *parser) parseLexerAlt() (*gtree.Node, error) {
	alt := &gtree.Node{Kind: gtree.KindLexerAlt}
	for !p.atAltListEnd() && !p.atPunct("|") {
		el, err := p.parseLexerElement()
		if err != nil {
			return nil, err
		}
		alt.Append(el)
	}
	return alt, nil
}

func (p *parser) parseLexerElement() (*gtree.Node, error) {
	if p.at(g4lex.ClassActionBlock) {
		tok := p.advance()
		isPred := false
		if p.atPunct("?") {
			p.advance()
			isPred = true
		}
		action := &gtree.Node{Kind: gtree.KindActionBlock, Text: tok.Text, IsPredicate: isPred}
		return &gtree.Node{Kind: gtree.KindLexerElement, Children: []*gtree.Node{action}}, nil
	}

	atom, err := p.parseLexerAtom()
	if err != nil {
		return nil, err
	}
	suffix := p.parseOptionalSuffix()
	return &gtree.Node{Kind: gtree.KindLexerElement, Text: suffix, Children: []*gtree.Node{atom}}, nil
}

// parseLexerAtom additionally handles characterRange and LEXER_CHAR_SET,
// which are only legal inside a lexer rule.
func (p *parser) parseLexerAtom() (*gtree.Node, error) {
	switch {
	case p.atPunct("("):
		p.advance()
		body, err := p.parseLexerAltList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return &gtree.Node{Kind: gtree.KindBlock, Children: []*gtree.Node{body}}, nil

	case p.atPunct("~"):
		return p.parseNotSet(true)

	case p.atPunct("."):
		p.advance()
		return &gtree.Node{Kind: gtree.KindDot}, nil

	case p.at(g4lex.ClassLexerCharSet):
		tok := p.advance()
		intervals, err := parseLexerCharSet(tok.Text)
		if err != nil {
			return nil, p.wrapErrorAt(tok.Line, err)
		}
		set := &gtree.Node{Kind: gtree.KindLexerCharSet, Text: tok.Text}
		for _, iv := range intervals {
			set.Append(&gtree.Node{Kind: gtree.KindCharacterRange, RangeLo: iv.Lo, RangeHi: iv.Hi})
		}
		return set, nil

	case p.at(g4lex.ClassStringLit):
		tok := p.advance()
		if p.atPunct("..") {
			p.advance()
			hiTok, err := p.expectStringLit()
			if err != nil {
				return nil, err
			}
			lo, err := decodeSingleChar(tok.Text)
			if err != nil {
				return nil, p.wrapErrorAt(tok.Line, err)
			}
			hi, err := decodeSingleChar(hiTok.Text)
			if err != nil {
				return nil, p.wrapErrorAt(hiTok.Line, err)
			}
			return &gtree.Node{Kind: gtree.KindCharacterRange, RangeLo: int(lo), RangeHi: int(hi) + 1}, nil
		}
		return &gtree.Node{Kind: gtree.KindStringLit, Text: tok.Text}, nil

	case p.at(g4lex.ClassTokenRef):
		tok := p.advance()
		return &gtree.Node{Kind: gtree.KindTokenRef, Text: tok.Text}, nil

	case p.at(g4lex.ClassRuleRef):
		tok := p.advance()
		return &gtree.Node{Kind: gtree.KindRuleref, Text: tok.Text}, nil
	}

	return nil, p.errorf("expected a lexer atom")
}

func (p *parser) expectStringLit() (g4lex.Token, error) {
	if !p.at(g4lex.ClassStringLit) {
		return g4lex.Token{}, p.errorf("expected a string literal")
	}
	return p.advance(), nil
}

func (p *parser) wrapErrorAt(line int, err error) error {
	return gerrors.Wrapf(gerrors.KindParse, err, "line %d", line)
}

// parseNotSet parses "~x" or "~(x|y|...)". Its resolved children are a flat
// mix of KindCharacterRange leaves (from string literals, character ranges,
// and expanded char sets) and KindTokenRef leaves (resolved later by the
// emitter's first-character analysis in internal/emit/firstset.go), matching
// FuzzerGenerator.chars_from_set in process.py.
func (p *parser) parseNotSet(lexerCtx bool) (*gtree.Node, error) {
	if _, err := p.expectPunct("~"); err != nil {
		return nil, err
	}
	notSet := &gtree.Node{Kind: gtree.KindNotSet}

	if p.atPunct("(") {
		p.advance()
		for {
			if err := p.parseSetElementInto(notSet); err != nil {
				return nil, err
			}
			if p.atPunct("|") {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return notSet, nil
	}

	if err := p.parseSetElementInto(notSet); err != nil {
		return nil, err
	}
	return notSet, nil
}

func (p *parser) parseSetElementInto(notSet *gtree.Node) error {
	switch {
	case p.at(g4lex.ClassStringLit):
		tok := p.advance()
		if p.atPunct("..") {
			p.advance()
			hiTok, err := p.expectStringLit()
			if err != nil {
				return err
			}
			lo, err := decodeSingleChar(tok.Text)
			if err != nil {
				return p.wrapErrorAt(tok.Line, err)
			}
			hi, err := decodeSingleChar(hiTok.Text)
			if err != nil {
				return p.wrapErrorAt(hiTok.Line, err)
			}
			notSet.Append(&gtree.Node{Kind: gtree.KindCharacterRange, RangeLo: int(lo), RangeHi: int(hi) + 1})
			return nil
		}
		c, err := decodeSingleChar(tok.Text)
		if err != nil {
			return p.wrapErrorAt(tok.Line, err)
		}
		notSet.Append(&gtree.Node{Kind: gtree.KindCharacterRange, RangeLo: int(c), RangeHi: int(c) + 1})
		return nil

	case p.at(g4lex.ClassLexerCharSet):
		tok := p.advance()
		intervals, err := parseLexerCharSet(tok.Text)
		if err != nil {
			return p.wrapErrorAt(tok.Line, err)
		}
		for _, iv := range intervals {
			notSet.Append(&gtree.Node{Kind: gtree.KindCharacterRange, RangeLo: iv.Lo, RangeHi: iv.Hi})
		}
		return nil

	case p.at(g4lex.ClassTokenRef):
		tok := p.advance()
		notSet.Append(&gtree.Node{Kind: gtree.KindTokenRef, Text: tok.Text})
		return nil
	}

	return p.errorf("expected a set element")
}
