package sexpr

import (
	"bytes"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/wakame-lang/sform/internal/errors"
)

// bomUTF8 is the UTF-8 Byte Order Mark some editors prepend to source files.
var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// normalize strips a leading BOM and applies Unicode NFC normalization, so
// that visually identical source in different Unicode forms (e.g. "café" as
// a precomposed é vs. e + combining acute) lexes to the same token stream.
func normalize(src string) string {
	b := bytes.TrimPrefix([]byte(src), bomUTF8)
	if !norm.NFC.IsNormal(b) {
		b = norm.NFC.Bytes(b)
	}
	return string(b)
}

// Lexer scans program text into Tokens. It knows nothing about grammar
// (that's Parser's job) — only about the character classes the surface
// syntax uses: parens, atoms (`:name`), the lone `:` separator of
// annotations and record fields, strings, numbers, and bare symbols
// (identifiers and operators alike, since every form is fully parenthesized
// there is no need for operator precedence at this layer).
type Lexer struct {
	src    []rune
	pos    int
	line   int
	column int
	file   string
}

func NewLexer(src, file string) *Lexer {
	return &Lexer{src: []rune(normalize(src)), pos: 0, line: 1, column: 1, file: file}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) advance() rune {
	r := l.peek()
	l.pos++
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.pos < len(l.src) && isSpace(l.peek()) {
			l.advance()
		}
		if l.peek() == ';' {
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
			continue
		}
		return
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func isDelimiter(r rune) bool {
	return r == 0 || isSpace(r) || r == '(' || r == ')' || r == ';'
}

// Next returns the next Token, or an EOF Token once the source is exhausted.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespaceAndComments()
	line, col := l.line, l.column
	if l.pos >= len(l.src) {
		return Token{Type: EOF, Line: line, Column: col, File: l.file}, nil
	}

	r := l.peek()
	switch {
	case r == '(':
		l.advance()
		return Token{Type: LPAREN, Literal: "(", Line: line, Column: col, File: l.file}, nil
	case r == ')':
		l.advance()
		return Token{Type: RPAREN, Literal: ")", Line: line, Column: col, File: l.file}, nil
	case r == '"':
		return l.lexString(line, col)
	case r == ':' && !isDelimiter(l.peekAt(1)):
		return l.lexAtom(line, col)
	case r == ':':
		l.advance()
		return Token{Type: COLON, Literal: ":", Line: line, Column: col, File: l.file}, nil
	case r == '-' && isDigit(l.peekAt(1)):
		return l.lexNumber(line, col)
	case isDigit(r):
		return l.lexNumber(line, col)
	default:
		return l.lexSymbol(line, col)
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func (l *Lexer) lexString(line, col int) (Token, error) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return Token{}, l.err(line, col, "unterminated string literal")
		}
		r := l.advance()
		if r == '"' {
			return Token{Type: STRING, Literal: sb.String(), Line: line, Column: col, File: l.file}, nil
		}
		if r == '\\' {
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			default:
				sb.WriteRune(esc)
			}
			continue
		}
		sb.WriteRune(r)
	}
}

func (l *Lexer) lexAtom(line, col int) (Token, error) {
	l.advance() // ':'
	var sb strings.Builder
	for !isDelimiter(l.peek()) {
		sb.WriteRune(l.advance())
	}
	if sb.Len() == 0 {
		return Token{}, l.err(line, col, "empty atom literal")
	}
	return Token{Type: ATOM, Literal: sb.String(), Line: line, Column: col, File: l.file}, nil
}

func (l *Lexer) lexNumber(line, col int) (Token, error) {
	var sb strings.Builder
	if l.peek() == '-' {
		sb.WriteRune(l.advance())
	}
	for isDigit(l.peek()) {
		sb.WriteRune(l.advance())
	}
	return Token{Type: NUMBER, Literal: sb.String(), Line: line, Column: col, File: l.file}, nil
}

func (l *Lexer) lexSymbol(line, col int) (Token, error) {
	var sb strings.Builder
	for !isDelimiter(l.peek()) {
		sb.WriteRune(l.advance())
	}
	if sb.Len() == 0 {
		return Token{}, l.err(line, col, "unexpected character")
	}
	return Token{Type: SYMBOL, Literal: sb.String(), Line: line, Column: col, File: l.file}, nil
}

func (l *Lexer) err(line, col int, msg string) error {
	return errors.WrapReport(errors.New("parser", errors.PAR001, msg, nil, map[string]any{
		"line": line, "column": col, "file": l.file,
	}))
}
