package g4lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classSequence(toks []Token) []Class {
	out := make([]Class, len(toks))
	for i, t := range toks {
		out[i] = t.Class
	}
	return out
}

func Test_Lex_classSequence(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []Class
	}{
		{name: "blank", input: "", expect: []Class{ClassEOF}},
		{name: "grammar header", input: "grammar Foo;", expect: []Class{
			ClassKeyword, ClassTokenRef, ClassPunct, ClassEOF,
		}},
		{name: "simple rule", input: "r : 'a' ;", expect: []Class{
			ClassRuleRef, ClassPunct, ClassStringLit, ClassPunct, ClassEOF,
		}},
		{name: "alternation and quantifier", input: "r : 'a'+ | 'b'? ;", expect: []Class{
			ClassRuleRef, ClassPunct, ClassStringLit, ClassPunct, ClassPunct, ClassStringLit, ClassPunct, ClassPunct, ClassEOF,
		}},
		{name: "char set", input: "[a-zA-Z]", expect: []Class{ClassLexerCharSet, ClassEOF}},
		{name: "action block", input: "{ self.x = 1 }", expect: []Class{ClassActionBlock, ClassEOF}},
		{name: "line comment skipped", input: "r // trailing\n : 'a' ;", expect: []Class{
			ClassRuleRef, ClassPunct, ClassStringLit, ClassPunct, ClassEOF,
		}},
		{name: "block comment skipped", input: "r /* hi */ : 'a' ;", expect: []Class{
			ClassRuleRef, ClassPunct, ClassStringLit, ClassPunct, ClassEOF,
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			toks, err := Lex(tc.input)
			require.NoError(err)
			assert.Equal(tc.expect, classSequence(toks))
		})
	}
}

func Test_Lex_stringLiteralPreservesEscapes(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	toks, err := Lex(`'\n\''`)
	require.NoError(err)
	require.Len(toks, 2)
	assert.Equal(ClassStringLit, toks[0].Class)
	assert.Equal(`\n\'`, toks[0].Text)
}

func Test_Lex_actionBlockBalancesNestedBraces(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	toks, err := Lex("{ if (x) { y = 1; } }")
	require.NoError(err)
	require.Len(toks, 2)
	assert.Equal(ClassActionBlock, toks[0].Class)
	assert.Equal(" if (x) { y = 1; } ", toks[0].Text)
}

func Test_Lex_actionBlockIgnoresBraceInsideStringLiteral(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	toks, err := Lex(`{ s = '}'; }`)
	require.NoError(err)
	require.Len(toks, 2)
	assert.Equal(ClassActionBlock, toks[0].Class)
}

func Test_Lex_identifierCaseDeterminesRuleVsTokenRef(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	toks, err := Lex("ruleName TOKEN_NAME")
	require.NoError(err)
	require.Len(toks, 3)
	assert.Equal(ClassRuleRef, toks[0].Class)
	assert.Equal(ClassTokenRef, toks[1].Class)
}

func Test_Lex_unterminatedStringLiteralIsError(t *testing.T) {
	_, err := Lex("'abc")
	require.Error(t, err)
}

func Test_Lex_unterminatedActionBlockIsError(t *testing.T) {
	_, err := Lex("{ abc")
	require.Error(t, err)
}

func Test_Lex_unknownCharacterIsError(t *testing.T) {
	_, err := Lex("$")
	require.Error(t, err)
}
