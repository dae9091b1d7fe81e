package lexer

import (
	"os"
	"strings"
	"testing"
)

func tokenTypes(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Type
	}
	return out
}

func expectTypes(t *testing.T, input string, want []string) []Token {
	t.Helper()
	tokens, errs := Lex(input)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	got := tokenTypes(tokens)
	if len(got) != len(want) {
		t.Fatalf("token count: got %d %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d]: got %s, want %s", i, got[i], want[i])
		}
	}
	return tokens
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	tokens, errs := Lex("MainPrgm Var BeginPg EndPg let Int Float @define Const input output if then else do while for from to step AND OR foo arr_2 X")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	expected := []struct {
		typ string
		val string
	}{
		{MAINPRGM, "MainPrgm"},
		{VAR, "Var"},
		{BEGINPG, "BeginPg"},
		{ENDPG, "EndPg"},
		{LET, "let"},
		{INT_T, "Int"},
		{FLOAT_T, "Float"},
		{DEFINE, "@define"},
		{CONST, "Const"},
		{INPUT, "input"},
		{OUTPUT, "output"},
		{IF, "if"},
		{THEN, "then"},
		{ELSE, "else"},
		{DO, "do"},
		{WHILE, "while"},
		{FOR, "for"},
		{FROM, "from"},
		{TO, "to"},
		{STEP, "step"},
		{AND, "AND"},
		{OR, "OR"},
		{IDENT, "foo"},
		{IDENT, "arr_2"},
		{IDENT, "X"},
		{EOF, ""},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("token count: got %d, want %d", len(tokens), len(expected))
	}
	for i, exp := range expected {
		if tokens[i].Type != exp.typ || tokens[i].Value != exp.val {
			t.Errorf("token[%d]: got (%s, %q), want (%s, %q)",
				i, tokens[i].Type, tokens[i].Value, exp.typ, exp.val)
		}
	}
}

func TestKeywordsAreCaseSensitive(t *testing.T) {
	tokens := expectTypes(t, "and Or mainprgm int", []string{IDENT, IDENT, IDENT, IDENT, EOF})
	if tokens[0].Value != "and" {
		t.Errorf("got %q", tokens[0].Value)
	}
}

func TestNumberLiterals(t *testing.T) {
	tokens := expectTypes(t, "0 42 3.14 10.0", []string{INT, INT, FLOAT, FLOAT, EOF})
	want := []string{"0", "42", "3.14", "10.0"}
	for i, w := range want {
		if tokens[i].Value != w {
			t.Errorf("token[%d]: got %q, want %q", i, tokens[i].Value, w)
		}
	}
}

func TestSignedLiterals(t *testing.T) {
	tokens := expectTypes(t, "(-5) (+3) (-2.5) (+0.5)", []string{SIGNED_INT, SIGNED_INT, SIGNED_FLOAT, SIGNED_FLOAT, EOF})
	want := []string{"-5", "3", "-2.5", "0.5"}
	for i, w := range want {
		if tokens[i].Value != w {
			t.Errorf("token[%d]: got %q, want %q", i, tokens[i].Value, w)
		}
	}
	if tokens[1].Column != 6 {
		t.Errorf("column of (+3): got %d, want 6", tokens[1].Column)
	}
}

func TestParenthesisedExpressionIsNotSignedLiteral(t *testing.T) {
	expectTypes(t, "(-x) (5) (- 5) (-5 + 1)", []string{
		LPAREN, MINUS, IDENT, RPAREN,
		LPAREN, INT, RPAREN,
		LPAREN, MINUS, INT, RPAREN,
		LPAREN, MINUS, INT, PLUS, INT, RPAREN,
		EOF,
	})
}

func TestIntegerOutOfRange(t *testing.T) {
	_, errs := Lex("2147483648")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if !strings.Contains(errs[0].Message, "out of range") {
		t.Errorf("message: %q", errs[0].Message)
	}
	if _, errs := Lex("(-2147483648)"); len(errs) != 0 {
		t.Errorf("min int32 should lex cleanly: %v", errs)
	}
}

func TestStringLiteral(t *testing.T) {
	tokens := expectTypes(t, `output("The result is:", x);`, []string{OUTPUT, LPAREN, STRING, COMMA, IDENT, RPAREN, SEMICOLON, EOF})
	if tokens[2].Value != "The result is:" {
		t.Errorf("string value: got %q", tokens[2].Value)
	}
}

func TestDelimitersAndOperators(t *testing.T) {
	expectTypes(t, ":= : ; , [ ] { } ( ) + - * / < > <= >= == != ! =", []string{
		ASSIGN, COLON, SEMICOLON, COMMA, LBRACKET, RBRACKET, LBRACE, RBRACE, LPAREN, RPAREN,
		PLUS, MINUS, STAR, SLASH, LT, GT, LTE, GTE, EQ, NEQ, BANG, EQUALS, EOF,
	})
}

func TestArrayDeclarationTokens(t *testing.T) {
	expectTypes(t, "let arr:[Int;5];", []string{LET, IDENT, COLON, LBRACKET, INT_T, SEMICOLON, INT, RBRACKET, SEMICOLON, EOF})
}

func TestComments(t *testing.T) {
	src := "x <!- a comment -!> := {-- spans\nlines --} 1;"
	tokens := expectTypes(t, src, []string{IDENT, ASSIGN, INT, SEMICOLON, EOF})
	if tokens[2].Line != 2 {
		t.Errorf("line after block comment: got %d, want 2", tokens[2].Line)
	}
}

func TestLessThanBangIsNotComment(t *testing.T) {
	expectTypes(t, "a<!b", []string{IDENT, LT, BANG, IDENT, EOF})
}

func TestLineColumnTracking(t *testing.T) {
	tokens, _ := Lex("a := 1;\n  b := 2;")
	b := tokens[4]
	if b.Value != "b" || b.Line != 2 || b.Column != 3 {
		t.Errorf("b: got %q at %d:%d, want 2:3", b.Value, b.Line, b.Column)
	}
}

func TestIdentifierRules(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"abcdefghijklmno", "longer than 14"},
		{"trailing_", "must not end"},
		{"dou__ble", "must not contain"},
	}
	for _, tt := range tests {
		tokens, errs := Lex(tt.input)
		if len(errs) != 1 {
			t.Errorf("%s: expected 1 error, got %v", tt.input, errs)
			continue
		}
		if !strings.Contains(errs[0].Message, tt.want) {
			t.Errorf("%s: message %q does not contain %q", tt.input, errs[0].Message, tt.want)
		}
		if tokens[0].Type != IDENT {
			t.Errorf("%s: token still expected, got %s", tt.input, tokens[0].Type)
		}
	}
	if _, errs := Lex("abcdefghijklmn"); len(errs) != 0 {
		t.Errorf("14-character identifier rejected: %v", errs)
	}
}

func TestUnterminatedString(t *testing.T) {
	_, errs := Lex(`"hello`)
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "unterminated string") {
		t.Fatalf("got %v", errs)
	}
}

func TestUnterminatedComments(t *testing.T) {
	_, errs := Lex("<!- no end\nx")
	if len(errs) != 1 || errs[0].Message != "unterminated comment" {
		t.Errorf("line comment: got %v", errs)
	}
	_, errs = Lex("{-- no end")
	if len(errs) != 1 || errs[0].Message != "unterminated block comment" {
		t.Errorf("block comment: got %v", errs)
	}
}

func TestUnknownCharacter(t *testing.T) {
	tokens, errs := Lex("x $ y")
	if len(errs) != 1 || errs[0].Lexeme != "$" || errs[0].Column != 3 {
		t.Fatalf("got %v", errs)
	}
	if len(tokens) != 3 {
		t.Errorf("scanning should continue past the error, got %v", tokenTypes(tokens))
	}
}

func TestEmptyInput(t *testing.T) {
	tokens, errs := Lex("")
	if len(errs) != 0 || len(tokens) != 1 || tokens[0].Type != EOF {
		t.Fatalf("got %v %v", tokens, errs)
	}
}

func TestFixtureFile(t *testing.T) {
	content, err := os.ReadFile("../../testdata/error_test.prgm")
	if err != nil {
		t.Skipf("skipping: %v", err)
	}
	tokens, errs := Lex(string(content))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if tokens[0].Type != MAINPRGM || tokens[1].Value != "ErrorTest" {
		t.Errorf("header: got %v %v", tokens[0], tokens[1])
	}
}
