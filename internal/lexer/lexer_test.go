package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/smasonuk/gracec/internal/token"
)

func lex(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := Lex("t.grc", src)
	if err != nil {
		t.Fatalf("Lex(%q): %v", src, err)
	}
	return toks
}

func TestLexBasicTokens(t *testing.T) {
	got := lex(t, "+ - * = # < > <= >= <- ( ) [ ] { } , : ;")
	want := []token.Token{
		{Type: token.PLUS, Lexeme: "+", Line: 1, Column: 1},
		{Type: token.MINUS, Lexeme: "-", Line: 1, Column: 3},
		{Type: token.STAR, Lexeme: "*", Line: 1, Column: 5},
		{Type: token.EQ, Lexeme: "=", Line: 1, Column: 7},
		{Type: token.NE, Lexeme: "#", Line: 1, Column: 9},
		{Type: token.LT, Lexeme: "<", Line: 1, Column: 11},
		{Type: token.GT, Lexeme: ">", Line: 1, Column: 13},
		{Type: token.LE, Lexeme: "<=", Line: 1, Column: 15},
		{Type: token.GE, Lexeme: ">=", Line: 1, Column: 18},
		{Type: token.ASSIGN, Lexeme: "<-", Line: 1, Column: 21},
		{Type: token.LPAREN, Lexeme: "(", Line: 1, Column: 24},
		{Type: token.RPAREN, Lexeme: ")", Line: 1, Column: 26},
		{Type: token.LBRACKET, Lexeme: "[", Line: 1, Column: 28},
		{Type: token.RBRACKET, Lexeme: "]", Line: 1, Column: 30},
		{Type: token.LBRACE, Lexeme: "{", Line: 1, Column: 32},
		{Type: token.RBRACE, Lexeme: "}", Line: 1, Column: 34},
		{Type: token.COMMA, Lexeme: ",", Line: 1, Column: 36},
		{Type: token.COLON, Lexeme: ":", Line: 1, Column: 38},
		{Type: token.SEMI, Lexeme: ";", Line: 1, Column: 40},
		{Type: token.EOF, Line: 1, Column: 41},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestLexKeywordsAndIdentifiers(t *testing.T) {
	got := lex(t, "fun var ref return if then else while do char int nothing and or not div mod x1 _y")
	wantTypes := []token.Type{
		token.FUN, token.VAR, token.REF, token.RETURN, token.IF, token.THEN,
		token.ELSE, token.WHILE, token.DO, token.CHAR, token.INT, token.NOTHING,
		token.AND, token.OR, token.NOT, token.DIV, token.MOD,
		token.IDENT, token.IDENT, token.EOF,
	}
	if len(got) != len(wantTypes) {
		t.Fatalf("got %d tokens, want %d", len(got), len(wantTypes))
	}
	for i, want := range wantTypes {
		if got[i].Type != want {
			t.Errorf("token %d: got %v, want %v", i, got[i].Type, want)
		}
	}
}

func TestLexLineComment(t *testing.T) {
	got := lex(t, "1 $ this is ignored\n2")
	if len(got) != 3 || got[0].Lexeme != "1" || got[1].Lexeme != "2" {
		t.Fatalf("unexpected tokens: %v", got)
	}
}

func TestLexBlockCommentDoesNotNest(t *testing.T) {
	toks, err := Lex("t.grc", "$$ outer $$ still code $$ trailing $$")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The first "$$" after "outer" closes the comment, so "still code"
	// is lexed as ordinary tokens.
	if len(toks) != 3 || toks[0].Lexeme != "still" || toks[1].Lexeme != "code" || toks[2].Type != token.EOF {
		t.Fatalf("unexpected tokens: %v", toks)
	}
}

func TestLexUnterminatedBlockComment(t *testing.T) {
	_, err := Lex("t.grc", "$$ never closed")
	if err == nil {
		t.Fatal("expected an unterminated block comment error")
	}
}

func TestLexCharLiteralEscapes(t *testing.T) {
	cases := map[string]rune{
		`'a'`:    'a',
		`'\n'`:   '\n',
		`'\t'`:   '\t',
		`'\r'`:   '\r',
		`'\0'`:   0,
		`'\\'`:   '\\',
		`'\''`:   '\'',
		`'\x41'`: 'A',
	}
	for src, want := range cases {
		toks := lex(t, src)
		if toks[0].Type != token.CHARLIT {
			t.Fatalf("%s: expected CHARLIT, got %v", src, toks[0].Type)
		}
		got := []rune(toks[0].Lexeme)[0]
		if got != want {
			t.Errorf("%s: got %q, want %q", src, got, want)
		}
	}
}

func TestLexStringLiteral(t *testing.T) {
	toks := lex(t, `"hello\nworld"`)
	if toks[0].Type != token.STRINGLIT {
		t.Fatalf("expected STRINGLIT, got %v", toks[0].Type)
	}
	if toks[0].Lexeme != "hello\nworld" {
		t.Errorf("got %q", toks[0].Lexeme)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := Lex("t.grc", `"no closing quote`)
	if err == nil {
		t.Fatal("expected unterminated string literal error")
	}
}

func TestLexBadEscape(t *testing.T) {
	_, err := Lex("t.grc", `"\q"`)
	if err == nil {
		t.Fatal("expected bad escape error")
	}
}
