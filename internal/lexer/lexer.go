package lexer

import (
	"fmt"
	"strconv"
)

const (
	// Special
	EOF = "EOF"

	// Literals
	IDENT        = "IDENT"        // identifiers: x, arr, MAX, …
	INT          = "INT"          // integer literals: 0, 42
	SIGNED_INT   = "SIGNED_INT"   // parenthesised signed integers: (-5), (+3)
	FLOAT        = "FLOAT"        // float literals: 3.14
	SIGNED_FLOAT = "SIGNED_FLOAT" // parenthesised signed floats: (-2.5)
	STRING       = "STRING"       // string literals: "hello"

	// Program structure keywords
	MAINPRGM = "MAINPRGM"
	VAR      = "VAR"
	BEGINPG  = "BEGINPG"
	ENDPG    = "ENDPG"

	// Declaration keywords
	LET     = "LET"
	DEFINE  = "DEFINE" // @define
	CONST   = "CONST"
	INT_T   = "INT_T"   // Int
	FLOAT_T = "FLOAT_T" // Float

	// Statement keywords
	INPUT  = "INPUT"
	OUTPUT = "OUTPUT"
	IF     = "IF"
	THEN   = "THEN"
	ELSE   = "ELSE"
	DO     = "DO"
	WHILE  = "WHILE"
	FOR    = "FOR"
	FROM   = "FROM"
	TO     = "TO"
	STEP   = "STEP"

	// Delimiters
	LPAREN    = "LPAREN"    // (
	RPAREN    = "RPAREN"    // )
	LBRACE    = "LBRACE"    // {
	RBRACE    = "RBRACE"    // }
	LBRACKET  = "LBRACKET"  // [
	RBRACKET  = "RBRACKET"  // ]
	SEMICOLON = "SEMICOLON" // ;
	COLON     = "COLON"     // :
	COMMA     = "COMMA"     // ,

	// Operators
	ASSIGN = "ASSIGN" // :=
	EQUALS = "EQUALS" // = (constant initialiser)
	PLUS   = "PLUS"   // +
	MINUS  = "MINUS"  // -
	STAR   = "STAR"   // *
	SLASH  = "SLASH"  // /
	BANG   = "BANG"   // !

	// Comparison operators
	EQ  = "EQ"  // ==
	NEQ = "NEQ" // !=
	LT  = "LT"  // <
	GT  = "GT"  // >
	LTE = "LTE" // <=
	GTE = "GTE" // >=

	// Logical operators
	AND = "AND" // AND
	OR  = "OR"  // OR
)

// MaxIdentLength is the longest identifier the language accepts.
const MaxIdentLength = 14

// keywords maps reserved words to their token types. Keywords are case
// sensitive.
var keywords = map[string]string{
	"MainPrgm": MAINPRGM,
	"Var":      VAR,
	"BeginPg":  BEGINPG,
	"EndPg":    ENDPG,
	"let":      LET,
	"Const":    CONST,
	"Int":      INT_T,
	"Float":    FLOAT_T,
	"input":    INPUT,
	"output":   OUTPUT,
	"if":       IF,
	"then":     THEN,
	"else":     ELSE,
	"do":       DO,
	"while":    WHILE,
	"for":      FOR,
	"from":     FROM,
	"to":       TO,
	"step":     STEP,
	"AND":      AND,
	"OR":       OR,
}

// Token represents a single lexical token produced by the lexer.
type Token struct {
	Type   string
	Value  string
	Line   int
	Column int
}

func (t Token) String() string {
	if t.Value == "" {
		return t.Type
	}
	return fmt.Sprintf("%s %q", t.Type, t.Value)
}

// LexError represents a recoverable error encountered during lexing.
type LexError struct {
	Message string
	Lexeme  string
	Line    int
	Column  int
}

func (e LexError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s (got %q)", e.Line, e.Column, e.Message, e.Lexeme)
}

// Lex turns source text into tokens. Scanning continues after an error so
// that every lexical problem in the input is reported at once; the returned
// token slice always ends with an EOF token.
func Lex(input string) ([]Token, []LexError) {
	var tokens []Token
	var errors []LexError
	line, col, i := 1, 1, 0

	for i < len(input) {
		ch := input[i]
		if isWhitespace(ch) {
			if ch == '\n' {
				line++
				col = 1
			} else if ch != '\r' {
				col++
			}
			i++
			continue
		}

		// Single-line comment: <!- … -!>
		if ch == '<' && hasPrefixAt(input, i, "<!-") {
			var err *LexError
			i, col, err = skipLineComment(input, i, line, col)
			if err != nil {
				errors = append(errors, *err)
			}
			continue
		}

		// Multi-line comment: {-- … --}
		if ch == '{' && hasPrefixAt(input, i, "{--") {
			var err *LexError
			i, line, col, err = skipBlockComment(input, i, line, col)
			if err != nil {
				errors = append(errors, *err)
			}
			continue
		}

		if ch == '"' {
			tok, err, newI, newCol := lexString(input, i, line, col)
			i, col = newI, newCol
			if err != nil {
				errors = append(errors, *err)
			}
			if tok != nil {
				tokens = append(tokens, *tok)
			}
			continue
		}

		// Signed literal: (+5), (-3.5)
		if ch == '(' {
			if tok, width, ok := lexSignedNumber(input, i, line, col); ok {
				if err := checkNumber(tok); err != nil {
					errors = append(errors, *err)
				}
				tokens = append(tokens, tok)
				i += width
				col += width
				continue
			}
		}

		if isDigit(ch) {
			tok, newI, newCol := lexNumber(input, i, line, col)
			if err := checkNumber(tok); err != nil {
				errors = append(errors, *err)
			}
			tokens = append(tokens, tok)
			i, col = newI, newCol
			continue
		}

		if ch == '@' && hasPrefixAt(input, i, "@define") && !(i+7 < len(input) && isIdentPart(input[i+7])) {
			tokens = append(tokens, Token{DEFINE, "@define", line, col})
			i += 7
			col += 7
			continue
		}

		if isLetter(ch) {
			tok, newI, newCol := lexIdentifier(input, i, line, col)
			if tok.Type == IDENT {
				if err := checkIdentifier(tok); err != nil {
					errors = append(errors, *err)
				}
			}
			tokens = append(tokens, tok)
			i, col = newI, newCol
			continue
		}

		if tok, width := lexOperatorOrDelimiter(input, i, line, col); width > 0 {
			tokens = append(tokens, tok)
			i += width
			col += width
			continue
		}

		errors = append(errors, LexError{
			Message: "unexpected character",
			Lexeme:  string(ch),
			Line:    line,
			Column:  col,
		})
		i++
		col++
	}

	tokens = append(tokens, Token{EOF, "", line, col})
	return tokens, errors
}

func hasPrefixAt(input string, i int, prefix string) bool {
	return len(input)-i >= len(prefix) && input[i:i+len(prefix)] == prefix
}

// skipLineComment skips a <!- … -!> comment, which must close on the line it
// opens.
func skipLineComment(input string, i int, line int, col int) (int, int, *LexError) {
	startCol := col
	start := i
	i += 3
	col += 3
	for i < len(input) && input[i] != '\n' {
		if hasPrefixAt(input, i, "-!>") {
			return i + 3, col + 3, nil
		}
		i++
		col++
	}
	return i, col, &LexError{
		Message: "unterminated comment",
		Lexeme:  input[start:i],
		Line:    line,
		Column:  startCol,
	}
}

func skipBlockComment(input string, i int, line int, col int) (int, int, int, *LexError) {
	startLine, startCol := line, col
	i += 3
	col += 3

	for i < len(input) {
		if hasPrefixAt(input, i, "--}") {
			return i + 3, line, col + 3, nil
		}
		if input[i] == '\n' {
			line++
			col = 1
		} else if input[i] != '\r' {
			col++
		}
		i++
	}

	return i, line, col, &LexError{
		Message: "unterminated block comment",
		Lexeme:  "{--",
		Line:    startLine,
		Column:  startCol,
	}
}

// lexString scans a double-quoted string. The token value excludes the quotes.
func lexString(input string, start int, line int, col int) (*Token, *LexError, int, int) {
	startCol := col
	i := start + 1
	col++

	for i < len(input) {
		ch := input[i]
		if ch == '\n' || ch == '\r' {
			return nil, &LexError{
				Message: "unterminated string literal (newline in string)",
				Lexeme:  input[start:i],
				Line:    line,
				Column:  startCol,
			}, i, col
		}
		if ch == '"' {
			tok := Token{
				Type:   STRING,
				Value:  input[start+1 : i],
				Line:   line,
				Column: startCol,
			}
			return &tok, nil, i + 1, col + 1
		}
		i++
		col++
	}

	return nil, &LexError{
		Message: "unterminated string literal (reached end of input)",
		Lexeme:  input[start:],
		Line:    line,
		Column:  startCol,
	}, i, col
}

// lexNumber scans an unsigned integer or float literal. A dot is only part of
// the number when a digit follows it.
func lexNumber(input string, start int, line int, col int) (Token, int, int) {
	i := start
	startCol := col
	tokType := INT

	for i < len(input) && isDigit(input[i]) {
		i++
		col++
	}
	if i+1 < len(input) && input[i] == '.' && isDigit(input[i+1]) {
		tokType = FLOAT
		i++
		col++
		for i < len(input) && isDigit(input[i]) {
			i++
			col++
		}
	}
	return Token{tokType, input[start:i], line, startCol}, i, col
}

// lexSignedNumber recognises "(" sign digits ["." digits] ")". It reports
// ok=false without consuming anything when the input does not have that exact
// shape, in which case the '(' is an ordinary delimiter.
func lexSignedNumber(input string, start int, line int, col int) (Token, int, bool) {
	i := start + 1
	if i >= len(input) || (input[i] != '+' && input[i] != '-') {
		return Token{}, 0, false
	}
	sign := input[i]
	i++
	if i >= len(input) || !isDigit(input[i]) {
		return Token{}, 0, false
	}
	num, end, _ := lexNumber(input, i, line, col)
	if end >= len(input) || input[end] != ')' {
		return Token{}, 0, false
	}
	value := num.Value
	if sign == '-' {
		value = "-" + value
	}
	tokType := SIGNED_INT
	if num.Type == FLOAT {
		tokType = SIGNED_FLOAT
	}
	return Token{tokType, value, line, col}, end + 1 - start, true
}

func lexIdentifier(input string, start int, line int, col int) (Token, int, int) {
	i := start
	startCol := col
	for i < len(input) && isIdentPart(input[i]) {
		i++
		col++
	}
	word := input[start:i]
	tokType := IDENT
	if kw, ok := keywords[word]; ok {
		tokType = kw
	}
	return Token{tokType, word, line, startCol}, i, col
}

// checkIdentifier enforces the identifier spelling rules: at most
// MaxIdentLength characters, no trailing underscore, no doubled underscore.
func checkIdentifier(tok Token) *LexError {
	var msg string
	switch {
	case len(tok.Value) > MaxIdentLength:
		msg = fmt.Sprintf("identifier longer than %d characters", MaxIdentLength)
	case tok.Value[len(tok.Value)-1] == '_':
		msg = "identifier must not end with '_'"
	case containsDoubleUnderscore(tok.Value):
		msg = "identifier must not contain '__'"
	default:
		return nil
	}
	return &LexError{Message: msg, Lexeme: tok.Value, Line: tok.Line, Column: tok.Column}
}

func containsDoubleUnderscore(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '_' && s[i+1] == '_' {
			return true
		}
	}
	return false
}

// checkNumber verifies that a numeric literal fits its 32-bit representation.
func checkNumber(tok Token) *LexError {
	var err error
	switch tok.Type {
	case INT, SIGNED_INT:
		_, err = strconv.ParseInt(tok.Value, 10, 32)
	case FLOAT, SIGNED_FLOAT:
		_, err = strconv.ParseFloat(tok.Value, 32)
	}
	if err == nil {
		return nil
	}
	return &LexError{
		Message: "numeric literal out of range",
		Lexeme:  tok.Value,
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

// lexOperatorOrDelimiter tries to match a 1- or 2-character operator or
// delimiter starting at input[i]. Returns the token and the number of
// characters consumed (0 if nothing matched).
func lexOperatorOrDelimiter(input string, i int, line int, col int) (Token, int) {
	ch := input[i]
	var next byte
	if i+1 < len(input) {
		next = input[i+1]
	}

	switch ch {
	case ':':
		if next == '=' {
			return Token{ASSIGN, ":=", line, col}, 2
		}
		return Token{COLON, ":", line, col}, 1
	case '=':
		if next == '=' {
			return Token{EQ, "==", line, col}, 2
		}
		return Token{EQUALS, "=", line, col}, 1
	case '!':
		if next == '=' {
			return Token{NEQ, "!=", line, col}, 2
		}
		return Token{BANG, "!", line, col}, 1
	case '<':
		if next == '=' {
			return Token{LTE, "<=", line, col}, 2
		}
		return Token{LT, "<", line, col}, 1
	case '>':
		if next == '=' {
			return Token{GTE, ">=", line, col}, 2
		}
		return Token{GT, ">", line, col}, 1
	}

	switch ch {
	case '(':
		return Token{LPAREN, "(", line, col}, 1
	case ')':
		return Token{RPAREN, ")", line, col}, 1
	case '{':
		return Token{LBRACE, "{", line, col}, 1
	case '}':
		return Token{RBRACE, "}", line, col}, 1
	case '[':
		return Token{LBRACKET, "[", line, col}, 1
	case ']':
		return Token{RBRACKET, "]", line, col}, 1
	case ';':
		return Token{SEMICOLON, ";", line, col}, 1
	case ',':
		return Token{COMMA, ",", line, col}, 1
	case '+':
		return Token{PLUS, "+", line, col}, 1
	case '-':
		return Token{MINUS, "-", line, col}, 1
	case '*':
		return Token{STAR, "*", line, col}, 1
	case '/':
		return Token{SLASH, "/", line, col}, 1
	}

	return Token{}, 0
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}
