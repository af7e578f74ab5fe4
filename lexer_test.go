package bread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []Token {
	t.Helper()
	l := NewLexer(src, "test.bread")
	var toks []Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == TokEOF {
			return toks
		}
	}
}

func TestLexerPunctuationAndOperators(t *testing.T) {
	toks := scanAll(t, "+ - * / % != <= >= == && || -> += -= *= /= %=")
	kinds := make([]TokenKind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []TokenKind{
		TokPlus, TokMinus, TokStar, TokSlash, TokPercent,
		TokNe, TokLe, TokGe, TokEq, TokAndAnd, TokOrOr, TokArrow,
		TokPlusEq, TokMinusEq, TokStarEq, TokSlashEq, TokPercentEq,
		TokEOF,
	}, kinds)
}

func TestLexerKeywordsVsIdentifiers(t *testing.T) {
	toks := scanAll(t, "let x class classify")
	require.Len(t, toks, 5)
	assert.Equal(t, TokLet, toks[0].Kind)
	assert.Equal(t, TokIdent, toks[1].Kind)
	assert.Equal(t, TokClass, toks[2].Kind)
	assert.Equal(t, TokIdent, toks[3].Kind)
	assert.Equal(t, "classify", toks[3].Text)
}

func TestLexerNumberForms(t *testing.T) {
	toks := scanAll(t, "42 3.14 0")
	require.Len(t, toks, 4)
	assert.Equal(t, TokInt, toks[0].Kind)
	assert.EqualValues(t, 42, toks[0].IntVal)
	assert.Equal(t, TokDouble, toks[1].Kind)
	assert.InDelta(t, 3.14, toks[1].DblVal, 1e-9)
	assert.Equal(t, TokInt, toks[2].Kind)
	assert.EqualValues(t, 0, toks[2].IntVal)
}

func TestLexerStringEscapes(t *testing.T) {
	toks := scanAll(t, `"hello\nworld" "a\"b" "tab\there"`)
	require.Len(t, toks, 4)
	assert.Equal(t, "hello\nworld", toks[0].Text)
	assert.Equal(t, `a"b`, toks[1].Text)
	assert.Equal(t, "tab\there", toks[2].Text)
}

func TestLexerUnterminatedStringErrors(t *testing.T) {
	l := NewLexer(`"no closing quote`, "test.bread")
	_, err := l.Next()
	assert.Error(t, err)
}

func TestLexerSkipsLineComments(t *testing.T) {
	toks := scanAll(t, "let x // this is a comment\nlet y")
	kinds := make([]TokenKind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []TokenKind{TokLet, TokIdent, TokLet, TokIdent, TokEOF}, kinds)
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	l := NewLexer("@", "test.bread")
	_, err := l.Next()
	assert.Error(t, err)
}

func TestLexerTracksLineAndColumn(t *testing.T) {
	l := NewLexer("let\nx", "test.bread")
	tok, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, tok.Pos.Line)

	tok, err = l.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, tok.Pos.Line)
	assert.Equal(t, 1, tok.Pos.Column)
}
