// Package emit is the analyzer/emitter (spec.md §4.2, §4.3): a single
// recursive-descent walk over the merged grammar tree that simultaneously
// populates an internal/ggraph.Graph and appends templated Python source to
// two growing buffers, deferring min-depth and other late-bound values to
// internal/placeholder markers. Grounded directly on
// FuzzerGenerator.generate_single/generate_grammar/generate_prefixes/
// find_conditions/chars_from_set in
// original_source/grammarinator/process.py, translated into Go's explicit-
// error-return style in place of that class's mutation of instance state.
package emit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dekarrin/grammarinator/internal/g4parse"
	"github.com/dekarrin/grammarinator/internal/gerrors"
	"github.com/dekarrin/grammarinator/internal/ggraph"
	"github.com/dekarrin/grammarinator/internal/gtree"
	"github.com/dekarrin/grammarinator/internal/loader"
	"github.com/dekarrin/grammarinator/internal/placeholder"
	"github.com/dekarrin/grammarinator/internal/runtimecontract"
	"github.com/dekarrin/grammarinator/internal/version"
)

// Options controls emission behavior surfaced on the CLI (spec.md §6).
type Options struct {
	// NoActions treats every semantic predicate and embedded action as
	// absent.
	NoActions bool
}

// labeledAltTask is a deferred "alt # Label" arm waiting to be emitted as
// its own method once the enclosing rule's body is finished, per spec.md
// §4.3's "Labeled alternative" paragraph.
type labeledAltTask struct {
	methodName string
	altNode    *gtree.Node // KindAlternative or KindLexerAlt
	isLexer    bool
}

// generator carries all scratch state for one compilation. Per spec.md §9
// ("Global scratch state"), currentStartRange and pendingLabels are tied to
// whichever rule or labeled-alt method is currently being emitted and are
// saved/restored around that scope rather than living as ambient globals.
type generator struct {
	opts Options

	rules map[string]*gtree.Node

	grammarName string
	grammarType string // "lexer", "parser", or "" for combined
	className   string

	options map[string]string

	graph ggraph.Graph
	table placeholder.Table

	header writer
	body   writer

	firstSet *firstSetResolver

	vertexCounter map[string]int

	currentRuleName   string
	currentStartRange *[]interval
	pendingLabels     []labeledAltTask
}

// Generate runs the full analyzer/emitter + finalizer pipeline (spec.md
// §4.2-§4.5) over a loaded grammar, returning the complete fuzzer source
// text.
func Generate(loaded *loader.Result, opts Options) (string, error) {
	out, _, _, err := generate(loaded, opts)
	return out, err
}

// BuildGraph runs the full emission pass like Generate, but also returns the
// populated grammar graph and its solved depths, for callers (the
// --dump-graph diagnostic) that need the graph independently of the emitted
// source text.
func BuildGraph(loaded *loader.Result, opts Options) (*ggraph.Graph, *ggraph.DepthResult, error) {
	_, graph, result, err := generate(loaded, opts)
	return graph, result, err
}

func generate(loaded *loader.Result, opts Options) (string, *ggraph.Graph, *ggraph.DepthResult, error) {
	g := &generator{
		opts:          opts,
		rules:         loaded.Rules,
		grammarName:   loaded.GrammarName,
		grammarType:   loaded.GrammarType,
		options:       optionMap(loaded.Options),
		vertexCounter: make(map[string]int),
	}
	g.firstSet = newFirstSetResolver(g.rules)

	for _, name := range loaded.RuleOrder {
		if err := g.graph.AddVertex(name, ggraph.KindRule); err != nil {
			return "", nil, nil, err
		}
	}
	for _, tok := range loaded.Tokens {
		if _, exists := g.rules[tok.Text]; exists {
			continue
		}
		if g.graph.Vertex(tok.Text) != nil {
			continue
		}
		if err := g.graph.AddVertex(tok.Text, ggraph.KindRule); err != nil {
			return "", nil, nil, err
		}
	}

	g.emitPrefixes()

	for _, a := range loaded.Actions {
		g.emitNamedAction(a)
	}
	for _, tok := range loaded.Tokens {
		if _, exists := g.rules[tok.Text]; exists {
			continue
		}
		g.emitImplicitToken(tok.Text)
	}

	for _, name := range loaded.RuleOrder {
		if err := g.emitRule(name, g.rules[name]); err != nil {
			return "", nil, nil, err
		}
	}

	g.body.depth = 0
	g.emitTrailer(loaded.RuleOrder)

	result, err := g.graph.Solve()
	if err != nil {
		return "", nil, nil, err
	}
	for id, d := range result.Scalar {
		g.table.Set(id, strconv.Itoa(d))
	}
	for id, vec := range result.Vector {
		parts := make([]string, len(vec))
		for i, v := range vec {
			parts[i] = strconv.Itoa(v)
		}
		g.table.Set(id, "["+strings.Join(parts, ", ")+"]")
	}

	full := g.header.String() + "\n" + g.body.String()
	out, err := placeholder.Substitute(full, &g.table)
	if err != nil {
		return "", nil, nil, gerrors.Wrap(gerrors.KindInternal, err, "emit: finalizing placeholders")
	}
	return out, &g.graph, result, nil
}

func optionMap(opts []*gtree.Node) map[string]string {
	m := make(map[string]string, len(opts))
	for _, o := range opts {
		m[o.Text] = o.Label
	}
	return m
}

func (g *generator) newID(prefix string) string {
	idx := g.vertexCounter[prefix]
	g.vertexCounter[prefix] = idx + 1
	return fmt.Sprintf("%s_%d", prefix, idx)
}

func (g *generator) marker(id string) string {
	return placeholder.Marker(id)
}

// ---- prefixes / trailer ----

func deriveClassName(grammarName string) string {
	name := strings.TrimSuffix(grammarName, "Lexer")
	name = strings.TrimSuffix(name, "Parser")
	return name + "Generator"
}

func (g *generator) emitPrefixes() {
	g.className = deriveClassName(g.grammarName)
	superClass := g.options["superClass"]
	if superClass == "" {
		superClass = runtimecontract.DefaultSuperClass
	}

	g.header.line("# Generated by grammarinator %s", version.Current)
	g.header.line("from grammarinator.runtime import *")

	g.body.line("class %s(%s):", g.className, superClass)
	g.body.depth++
	g.body.line("def __init__(self, *args, **kwargs):")
	g.body.indent(func() {
		g.body.line("super(%s, self).__init__(*args, **kwargs)", g.className)
	})
	g.body.line("")
	g.body.line("def EOF(self):")
	g.body.indent(func() {
		g.body.line("pass")
	})
	g.body.line("")
}

func (g *generator) emitTrailer(ruleOrder []string) {
	if g.grammarType == "lexer" {
		return
	}
	for _, name := range ruleOrder {
		if rule, ok := g.rules[name]; ok && rule.Kind == gtree.KindParserRuleSpec {
			g.body.line("")
			g.body.line("%s.default_rule = %s.%s", g.className, g.className, name)
			return
		}
	}
}

// ---- named actions / implicit tokens ----

var dollarVarRe = regexp.MustCompile(`\$(\w+)`)

func rewriteDollarVars(text string) string {
	return dollarVarRe.ReplaceAllString(text, "local_ctx['$1']")
}

func (g *generator) emitNamedAction(a *gtree.Node) {
	if g.opts.NoActions {
		return
	}
	actionType := a.Text
	text := rewriteDollarVars(a.Label)

	// Raw target-language action text may itself contain "{"/"}" (a dict or
	// set literal, an f-string), which would be mistaken for a placeholder
	// marker by a later substitution pass. Store it as a placeholder value,
	// as original_source/grammarinator/process.py's code_chunks does, rather
	// than inlining it into the template directly.
	codeID := g.table.New(placeholder.KindAction)

	if strings.HasSuffix(actionType, "header") {
		g.table.Set(codeID, text)
		g.header.raw(g.marker(codeID))
		g.header.raw("\n")
		return
	}
	if strings.HasSuffix(actionType, "members") || strings.HasSuffix(actionType, "member") {
		g.table.Set(codeID, g.body.indentLines(text))
		g.body.raw(g.marker(codeID))
		g.body.raw("\n")
	}
}

func (g *generator) emitImplicitToken(name string) {
	g.body.line("@%s", runtimecontract.DepthControlDecorator)
	g.body.line("def %s(self):", name)
	g.body.indent(func() {
		g.body.line("current = %s(name=%s, src='')", runtimecontract.UnlexerRule, pythonStringLiteral(name))
		g.body.line("current.min_depth = %s", g.marker(name))
		g.body.line("return current")
	})
	g.body.line("")
}

// ---- rules ----

func containsLabeledElement(node *gtree.Node) bool {
	if node == nil {
		return false
	}
	if node.Kind == gtree.KindLabeledElement {
		return true
	}
	for _, c := range node.Children {
		if containsLabeledElement(c) {
			return true
		}
	}
	return false
}

func (g *generator) emitRule(name string, rule *gtree.Node) error {
	savedPending, savedRuleName := g.pendingLabels, g.currentRuleName
	g.pendingLabels = nil
	g.currentRuleName = name
	defer func() {
		g.currentRuleName = savedRuleName
	}()

	isLexer := rule.Kind == gtree.KindLexerRuleSpec
	nodeCtor := runtimecontract.UnparserRule
	if isLexer {
		nodeCtor = runtimecontract.UnlexerRule
	}
	altList := rule.Children[0]
	needsCtx := containsLabeledElement(altList)

	g.body.line("@%s", runtimecontract.DepthControlDecorator)
	g.body.line("def %s(self):", name)

	var startRange []interval
	if isLexer {
		g.currentStartRange = &startRange
	}
	err := g.body.indentErr(func() error {
		if needsCtx {
			g.body.line("local_ctx = dict()")
		}
		g.body.line("current = %s(name=%s)", nodeCtor, pythonStringLiteral(name))
		g.body.line("current.min_depth = %s", g.marker(name))
		if err := g.emitAltList(name, altList, isLexer); err != nil {
			return err
		}
		g.body.line("return current")
		return nil
	})
	g.currentStartRange = nil
	if err != nil {
		return err
	}
	g.body.line("")

	pending := g.pendingLabels
	g.pendingLabels = savedPending
	for _, t := range pending {
		if err := g.emitLabeledMethod(t); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) deferLabel(methodName string, altNode *gtree.Node, isLexer bool) {
	g.pendingLabels = append(g.pendingLabels, labeledAltTask{methodName: methodName, altNode: altNode, isLexer: isLexer})
}

func (g *generator) emitLabeledMethod(t labeledAltTask) error {
	nodeCtor := runtimecontract.UnparserRule
	if t.isLexer {
		nodeCtor = runtimecontract.UnlexerRule
	}
	needsCtx := containsLabeledElement(t.altNode)

	g.body.line("@%s", runtimecontract.DepthControlDecorator)
	g.body.line("def %s(self):", t.methodName)
	var startRange []interval
	if t.isLexer {
		g.currentStartRange = &startRange
	}
	err := g.body.indentErr(func() error {
		if needsCtx {
			g.body.line("local_ctx = dict()")
		}
		g.body.line("current = %s(name=%s)", nodeCtor, pythonStringLiteral(t.methodName))
		g.body.line("current.min_depth = %s", g.marker(t.methodName))
		if err := g.emitAlternative(t.methodName, t.altNode, t.isLexer); err != nil {
			return err
		}
		g.body.line("return current")
		return nil
	})
	g.currentStartRange = nil
	if err != nil {
		return err
	}
	g.body.line("")
	return nil
}

// ---- alternations / alternatives ----

func (g *generator) findCondition(alt *gtree.Node) string {
	if g.opts.NoActions {
		return "1"
	}
	if len(alt.Children) == 0 {
		return "1"
	}
	first := alt.Children[0]
	if len(first.Children) == 0 {
		return "1"
	}
	child := first.Children[0]
	if child.Kind == gtree.KindActionBlock && child.IsPredicate {
		return child.Text
	}
	return "1"
}

func (g *generator) emitAltList(vertexID string, altList *gtree.Node, isLexer bool) error {
	children := altList.Children
	if len(children) == 0 {
		return gerrors.Newf(gerrors.KindIllFormed, "rule %q has no alternatives", g.currentRuleName)
	}

	if len(children) == 1 {
		child := children[0]
		if child.Kind == gtree.KindLabeledAlt {
			methodName := g.currentRuleName + "_" + child.Label
			if err := g.graph.AddVertex(methodName, ggraph.KindRule); err != nil {
				return err
			}
			if err := g.graph.AddEdge(vertexID, methodName); err != nil {
				return err
			}
			g.deferLabel(methodName, child.Children[0], isLexer)
			g.body.line("current = self.%s()", methodName)
			return nil
		}
		return g.emitAlternative(vertexID, child, isLexer)
	}

	altID := g.newID("alt")
	if err := g.graph.AddVertex(altID, ggraph.KindAlternation); err != nil {
		return err
	}
	if err := g.graph.AddEdge(vertexID, altID); err != nil {
		return err
	}

	type armInfo struct {
		altVertex string
		cond      string
		label     string
		body      *gtree.Node
	}
	var arms []armInfo

	for _, child := range children {
		body := child
		label := ""
		if child.Kind == gtree.KindLabeledAlt {
			label = child.Label
			body = child.Children[0]
		}

		altVertex := g.newID("alternative")
		if err := g.graph.AddVertex(altVertex, ggraph.KindAlternative); err != nil {
			return err
		}
		if err := g.graph.AddEdge(altID, altVertex); err != nil {
			return err
		}

		// The condition may be a raw embedded predicate ("{expr}?") that
		// itself contains "{"/"}"; wrap it as a placeholder value (like
		// process.py's per-alternative cond_id code chunks) instead of
		// splicing it into the weights expression directly.
		condID := g.table.New(placeholder.KindCond)
		g.table.Set(condID, g.findCondition(body))
		cond := g.marker(condID)

		if label != "" {
			methodName := g.currentRuleName + "_" + label
			if err := g.graph.AddVertex(methodName, ggraph.KindRule); err != nil {
				return err
			}
			if err := g.graph.AddEdge(altVertex, methodName); err != nil {
				return err
			}
			g.deferLabel(methodName, body, isLexer)
		}

		arms = append(arms, armInfo{altVertex: altVertex, cond: cond, label: label, body: body})
	}

	weightParts := make([]string, len(arms))
	for i, a := range arms {
		weightParts[i] = fmt.Sprintf("0 if %s[%d] > max_depth else (%s)", g.marker(altID), i, a.cond)
	}
	g.body.line("weights = [%s]", strings.Join(weightParts, ", "))
	g.body.line("idx = self.%s(%s, weights)", runtimecontract.ModelChoice, pythonStringLiteral(altID))

	for i, a := range arms {
		kw := "elif"
		if i == 0 {
			kw = "if"
		}
		g.body.line("%s idx == %d:", kw, i)
		err := g.body.indentErr(func() error {
			if a.label != "" {
				g.body.line("current = self.%s()", g.currentRuleName+"_"+a.label)
				return nil
			}
			return g.emitAlternative(a.altVertex, a.body, isLexer)
		})
		if err != nil {
			return err
		}
	}
	g.body.line("else:")
	g.body.indent(func() {
		g.body.line("pass")
	})
	return nil
}

func (g *generator) emitAlternative(vertexID string, alt *gtree.Node, isLexer bool) error {
	if len(alt.Children) == 0 {
		g.body.line("current += %s(src='')", runtimecontract.UnlexerRule)
		return nil
	}
	for _, el := range alt.Children {
		if err := g.emitElement(vertexID, el, isLexer); err != nil {
			return err
		}
	}
	return nil
}

// ---- elements ----

func (g *generator) emitElement(vertexID string, el *gtree.Node, isLexer bool) error {
	if len(el.Children) == 0 {
		return nil
	}
	child := el.Children[0]

	if child.Kind == gtree.KindActionBlock {
		return g.emitActionBlock(child)
	}
	if child.Kind == gtree.KindLabeledElement {
		return g.emitLabeledElement(vertexID, child, isLexer)
	}

	switch el.Text {
	case "":
		return g.emitAtomOrBlock(vertexID, child, isLexer)
	case "+":
		g.body.line("if max_depth >= 0:")
		return g.body.indentErr(func() error {
			g.body.line("for _ in self.%s(min=1, max=None):", runtimecontract.ModelQuantify)
			return g.body.indentErr(func() error {
				return g.emitAtomOrBlock(vertexID, child, isLexer)
			})
		})
	case "?", "*":
		quantID := g.newID("quant")
		if err := g.graph.AddVertex(quantID, ggraph.KindQuantifier); err != nil {
			return err
		}
		if err := g.graph.AddEdge(vertexID, quantID); err != nil {
			return err
		}
		hi := "1"
		if el.Text == "*" {
			hi = "None"
		}
		g.body.line("if max_depth >= %s:", g.marker(quantID))
		return g.body.indentErr(func() error {
			g.body.line("for _ in self.%s(min=0, max=%s):", runtimecontract.ModelQuantify, hi)
			return g.body.indentErr(func() error {
				return g.emitAtomOrBlock(quantID, child, isLexer)
			})
		})
	}
	return gerrors.Newf(gerrors.KindInternal, "emit: unknown element suffix %q", el.Text)
}

func (g *generator) emitLabeledElement(vertexID string, node *gtree.Node, isLexer bool) error {
	atom := node.Children[0]
	if err := g.emitAtomOrBlock(vertexID, atom, isLexer); err != nil {
		return err
	}
	if node.PlusAssign {
		g.body.line("local_ctx.setdefault(%s, []).append(current.children[-1])", pythonStringLiteral(node.Label))
	} else {
		g.body.line("local_ctx[%s] = current.children[-1]", pythonStringLiteral(node.Label))
	}
	return nil
}

func (g *generator) emitActionBlock(node *gtree.Node) error {
	if node.IsPredicate {
		// consumed as a leading condition by findCondition, or a non-
		// leading predicate -- either way, dropped from body emission.
		return nil
	}
	if g.opts.NoActions {
		return nil
	}
	text := rewriteDollarVars(node.Text)
	codeID := g.table.New(placeholder.KindAction)
	g.table.Set(codeID, g.body.indentLines(text))
	g.body.raw(g.marker(codeID))
	g.body.raw("\n")
	return nil
}

// ---- atoms ----

func (g *generator) emitAtomOrBlock(vertexID string, node *gtree.Node, isLexer bool) error {
	switch node.Kind {
	case gtree.KindBlock:
		return g.emitAltList(vertexID, node.Children[0], isLexer)

	case gtree.KindRuleref:
		if g.graph.Vertex(node.Text) == nil {
			return gerrors.Newf(gerrors.KindIllFormed, "rule %q references undefined rule %q", g.currentRuleName, node.Text)
		}
		if err := g.graph.AddEdge(vertexID, node.Text); err != nil {
			return err
		}
		g.body.line("current += self.%s()", node.Text)
		return nil

	case gtree.KindTokenRef:
		if g.graph.Vertex(node.Text) == nil {
			return gerrors.Newf(gerrors.KindIllFormed, "rule %q references undefined token %q", g.currentRuleName, node.Text)
		}
		if err := g.graph.AddEdge(vertexID, node.Text); err != nil {
			return err
		}
		g.body.line("current += self.%s()", node.Text)
		return nil

	case gtree.KindStringLit:
		r, err := decodeFirstRune(node.Text)
		if err == nil && isLexer && g.currentStartRange != nil {
			*g.currentStartRange = append(*g.currentStartRange, interval{lo: int(r), hi: int(r) + 1})
		}
		litID := g.table.New(placeholder.KindLit)
		g.table.Set(litID, pythonStringLiteral(unescapeFullLiteral(node.Text)))
		g.body.line("current += %s(src=%s)", runtimecontract.UnlexerRule, g.marker(litID))
		return nil

	case gtree.KindDot:
		method := g.options["dot"]
		if method == "" {
			method = runtimecontract.AnyCharDefault
		}
		g.body.line("current += %s(src=self.%s())", runtimecontract.UnlexerRule, method)
		return nil

	case gtree.KindCharacterRange:
		if isLexer && g.currentStartRange != nil {
			*g.currentStartRange = append(*g.currentStartRange, interval{lo: node.RangeLo, hi: node.RangeHi})
		}
		g.body.line("current += %s(src=self.%s([(%d, %d)]))", runtimecontract.UnlexerRule, runtimecontract.CharFromList, node.RangeLo, node.RangeHi)
		return nil

	case gtree.KindLexerCharSet:
		pairs := make([]string, 0, len(node.Children))
		for _, c := range node.Children {
			if isLexer && g.currentStartRange != nil {
				*g.currentStartRange = append(*g.currentStartRange, interval{lo: c.RangeLo, hi: c.RangeHi})
			}
			pairs = append(pairs, fmt.Sprintf("(%d, %d)", c.RangeLo, c.RangeHi))
		}
		g.body.line("current += %s(src=self.%s([%s]))", runtimecontract.UnlexerRule, runtimecontract.CharFromList, strings.Join(pairs, ", "))
		return nil

	case gtree.KindNotSet:
		return g.emitNotSet(node, isLexer)
	}

	return gerrors.Newf(gerrors.KindInternal, "emit: unhandled atom kind %v", node.Kind)
}

// emitNotSet handles "~x"/"~(x|y|...)": it resolves every excluded element
// to a concrete interval (a TOKEN_REF is resolved via the first-character
// analysis in firstset.go), records a module-level list equal to
// printable_unicode_ranges minus those intervals, and draws from it.
// Grounded on FuzzerGenerator.chars_from_set in process.py.
func (g *generator) emitNotSet(node *gtree.Node, isLexer bool) error {
	var excluded []interval
	for _, c := range node.Children {
		switch c.Kind {
		case gtree.KindCharacterRange:
			excluded = append(excluded, interval{lo: c.RangeLo, hi: c.RangeHi})
		case gtree.KindTokenRef:
			excluded = append(excluded, g.firstSet.forRule(c.Text)...)
		}
	}

	pairs := make([]string, len(excluded))
	for i, iv := range excluded {
		pairs[i] = fmt.Sprintf("(%d, %d)", iv.lo, iv.hi)
	}

	charsetName := g.newID("charset")
	g.header.line("%s = %s(%s, [%s])", charsetName, runtimecontract.MultirangeDiff, runtimecontract.PrintableUnicodeRanges, strings.Join(pairs, ", "))
	g.body.line("current += %s(src=self.%s(%s))", runtimecontract.UnlexerRule, runtimecontract.CharFromList, charsetName)
	return nil
}

// unescapeFullLiteral decodes every escape sequence in a quote-stripped
// STRING_LITERAL body, used when embedding the literal's actual text into
// the emitted source (as opposed to decodeFirstRune, which only needs its
// first character for start-range bookkeeping).
func unescapeFullLiteral(raw string) string {
	var sb strings.Builder
	i := 0
	for i < len(raw) {
		r, n, err := g4parse.DecodeEscapedChar(raw[i:])
		if err != nil {
			sb.WriteByte(raw[i])
			i++
			continue
		}
		sb.WriteRune(r)
		i += n
	}
	return sb.String()
}

// pythonStringLiteral renders s as a double-quoted Python string literal.
// Go's escaping convention (strconv.Quote) produces the same escapes Python
// recognizes for the common cases this compiler emits (backslash, quote,
// \n \t \r and \xNN/\uNNNN), which covers every literal this emitter
// constructs.
func pythonStringLiteral(s string) string {
	return strconv.Quote(s)
}
