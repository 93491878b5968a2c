// Package scanner tokenizes target-language (Python) source for the tree
// rewriter. It tracks string literal boundaries (every prefix and quote
// style, triple-quoted strings, escapes), bracket nesting and backslash
// continuation, and turns leading whitespace into INDENT and DEDENT tokens.
//
// Comments and blank lines produce no tokens. Every token keeps its byte
// offset so callers can splice replacement text back into the source.
package scanner

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"modernc.org/token"
)

// Kind classifies a token.
type Kind uint8

const (
	EOF Kind = iota
	NEWLINE
	INDENT
	DEDENT
	NAME
	NUMBER
	STRING
	OP
)

var kindNames = [...]string{
	EOF:     "EOF",
	NEWLINE: "NEWLINE",
	INDENT:  "INDENT",
	DEDENT:  "DEDENT",
	NAME:    "NAME",
	NUMBER:  "NUMBER",
	STRING:  "STRING",
	OP:      "OP",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Token is a single lexical token. Text is the exact source spelling;
// it is empty for INDENT, DEDENT and EOF.
type Token struct {
	Kind   Kind
	Text   string
	Offset int
	Pos    token.Pos
}

// End returns the byte offset just past the token.
func (t Token) End() int { return t.Offset + len(t.Text) }

// Error is a tokenization error with its source position.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string { return e.Pos.String() + ": " + e.Msg }

// tabSize is the indentation width of a tab character.
const tabSize = 8

// Scanner produces tokens one at a time.
type Scanner struct {
	file    *token.File
	src     string
	pos     int
	indents []int
	depth   int  // bracket nesting
	bol     bool // at the beginning of a logical line
	last    Kind // kind of the last emitted token
	emitted bool
	pending []Token
	done    bool
}

// New creates a Scanner over src. The name is used in positions.
func New(name, src string) *Scanner {
	f := token.NewFile(name, len(src))
	f.SetLinesForContent([]byte(src))
	return &Scanner{file: f, src: src, indents: []int{0}, bol: true}
}

// File returns the position table of the scanned source.
func (s *Scanner) File() *token.File { return s.file }

// Position converts a byte offset into a file:line:column position.
func (s *Scanner) Position(offset int) token.Position {
	return s.file.Position(s.file.Pos(offset))
}

// Tokenize scans all of src.
func Tokenize(name, src string) ([]Token, *token.File, error) {
	s := New(name, src)
	var toks []Token
	for {
		tok, err := s.Next()
		if err != nil {
			return nil, s.file, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, s.file, nil
		}
	}
}

// Next returns the next token. After EOF it keeps returning EOF.
func (s *Scanner) Next() (Token, error) {
	if len(s.pending) > 0 {
		tok := s.pending[0]
		s.pending = s.pending[1:]
		return s.emit(tok), nil
	}
	if s.done {
		return s.make(EOF, len(s.src), len(s.src)), nil
	}

	if s.bol && s.depth == 0 {
		if err := s.indentation(); err != nil {
			return Token{}, err
		}
		if len(s.pending) > 0 {
			return s.Next()
		}
	}

	for {
		s.skipSpace()
		if s.pos >= len(s.src) {
			return s.eof()
		}
		ch := s.src[s.pos]
		switch {
		case ch == '#':
			s.skipComment()
			continue
		case ch == '\\':
			if n := newlineLen(s.src, s.pos+1); n > 0 {
				s.pos += 1 + n
				continue
			}
			return Token{}, s.errorf(s.pos, "unexpected character after line continuation character")
		case ch == '\n' || ch == '\r':
			start := s.pos
			s.pos += max(newlineLen(s.src, s.pos), 1)
			if s.depth > 0 {
				continue
			}
			s.bol = true
			return s.emit(s.make(NEWLINE, start, s.pos)), nil
		}
		return s.scanToken()
	}
}

func (s *Scanner) scanToken() (Token, error) {
	start := s.pos
	ch := s.src[s.pos]

	if ch >= utf8.RuneSelf || ch == '_' || isASCIILetter(ch) {
		r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
		if r == '_' || unicode.IsLetter(r) {
			s.scanName()
			if s.pos < len(s.src) && isQuote(s.src[s.pos]) && isStringPrefix(s.src[start:s.pos]) {
				return s.scanString(start)
			}
			return s.emit(s.make(NAME, start, s.pos)), nil
		}
		if ch >= utf8.RuneSelf {
			return Token{}, s.errorf(start, "invalid character %q", r)
		}
	}
	if isDigit(ch) || (ch == '.' && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1])) {
		s.scanNumber()
		return s.emit(s.make(NUMBER, start, s.pos)), nil
	}
	if isQuote(ch) {
		return s.scanString(start)
	}
	if op := matchOperator(s.src[s.pos:]); op != "" {
		s.pos += len(op)
		switch {
		case IsOpenBracket(op[0]):
			s.depth++
		case IsCloseBracket(op[0]):
			if s.depth == 0 {
				return Token{}, s.errorf(start, "unmatched '%s'", op)
			}
			s.depth--
		}
		return s.emit(s.make(OP, start, s.pos)), nil
	}
	return Token{}, s.errorf(start, "invalid character %q", ch)
}

// indentation measures the leading whitespace of the next non-blank line
// and queues INDENT or DEDENT tokens for it.
func (s *Scanner) indentation() error {
	for {
		col := 0
		p := s.pos
	measure:
		for p < len(s.src) {
			switch s.src[p] {
			case ' ':
				col++
			case '\t':
				col = (col/tabSize + 1) * tabSize
			case '\f':
				col = 0
			default:
				break measure
			}
			p++
		}
		if p >= len(s.src) {
			s.pos = p
			s.bol = false
			return nil
		}
		switch ch := s.src[p]; {
		case ch == '#':
			s.pos = p
			s.skipComment()
			if s.pos < len(s.src) {
				s.pos += max(newlineLen(s.src, s.pos), 1)
			}
			continue
		case ch == '\n' || ch == '\r':
			s.pos = p + max(newlineLen(s.src, p), 1)
			continue
		}

		s.pos = p
		s.bol = false
		top := s.indents[len(s.indents)-1]
		switch {
		case col > top:
			s.indents = append(s.indents, col)
			s.pending = append(s.pending, s.make(INDENT, p, p))
		case col < top:
			for col < s.indents[len(s.indents)-1] {
				s.indents = s.indents[:len(s.indents)-1]
				s.pending = append(s.pending, s.make(DEDENT, p, p))
			}
			if col != s.indents[len(s.indents)-1] {
				return s.errorf(p, "unindent does not match any outer indentation level")
			}
		}
		return nil
	}
}

func (s *Scanner) eof() (Token, error) {
	if s.depth > 0 {
		return Token{}, s.errorf(len(s.src), "unexpected EOF: unclosed bracket")
	}
	end := len(s.src)
	if s.emitted && s.last != NEWLINE && s.last != DEDENT {
		s.pending = append(s.pending, s.make(NEWLINE, end, end))
	}
	for len(s.indents) > 1 {
		s.indents = s.indents[:len(s.indents)-1]
		s.pending = append(s.pending, s.make(DEDENT, end, end))
	}
	s.done = true
	if len(s.pending) > 0 {
		return s.Next()
	}
	return s.make(EOF, end, end), nil
}

func (s *Scanner) scanName() {
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if !IsNameRune(r) {
			return
		}
		s.pos += size
	}
}

func (s *Scanner) scanNumber() {
	hex := strings.HasPrefix(s.src[s.pos:], "0x") || strings.HasPrefix(s.src[s.pos:], "0X")
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		switch {
		case isDigit(ch) || isASCIILetter(ch) || ch == '_':
		case ch == '.':
			if strings.HasPrefix(s.src[s.pos:], "...") {
				return
			}
		case (ch == '+' || ch == '-') && !hex && s.pos > 0 && (s.src[s.pos-1] == 'e' || s.src[s.pos-1] == 'E'):
		default:
			return
		}
		s.pos++
	}
}

// scanString scans a string literal whose prefix (if any) starts at start
// and whose opening quote is at s.pos.
func (s *Scanner) scanString(start int) (Token, error) {
	q := s.src[s.pos]
	triple := strings.HasPrefix(s.src[s.pos:], strings.Repeat(string(q), 3))
	if triple {
		s.pos += 3
	} else {
		s.pos++
	}
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		switch {
		case ch == '\\':
			s.pos += 2
			continue
		case ch == q:
			if !triple {
				s.pos++
				return s.emit(s.make(STRING, start, s.pos)), nil
			}
			if strings.HasPrefix(s.src[s.pos:], strings.Repeat(string(q), 3)) {
				s.pos += 3
				return s.emit(s.make(STRING, start, s.pos)), nil
			}
		case (ch == '\n' || ch == '\r') && !triple:
			return Token{}, s.errorf(start, "unterminated string literal")
		}
		s.pos++
	}
	if triple {
		return Token{}, s.errorf(start, "unterminated triple-quoted string literal")
	}
	return Token{}, s.errorf(start, "unterminated string literal")
}

func (s *Scanner) skipSpace() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\f':
			s.pos++
		default:
			return
		}
	}
}

func (s *Scanner) skipComment() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' && s.src[s.pos] != '\r' {
		s.pos++
	}
}

func (s *Scanner) make(k Kind, start, end int) Token {
	return Token{Kind: k, Text: s.src[start:end], Offset: start, Pos: s.file.Pos(start)}
}

func (s *Scanner) emit(tok Token) Token {
	if tok.Kind != EOF {
		s.last = tok.Kind
		s.emitted = true
	}
	return tok
}

func (s *Scanner) errorf(offset int, format string, args ...any) error {
	return &Error{Pos: s.Position(offset), Msg: fmt.Sprintf(format, args...)}
}

// operators, longest first within each length class.
var operators = []string{
	"**=", "//=", ">>=", "<<=", "...",
	"**", "//", "<<", ">>", "<=", ">=", "==", "!=", "->",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=", ":=",
	"+", "-", "*", "/", "%", "@", "&", "|", "^", "~", "<", ">",
	"(", ")", "[", "]", "{", "}", ",", ":", ";", ".", "=",
}

func matchOperator(s string) string {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

var stringPrefixes = map[string]bool{
	"r": true, "u": true, "b": true, "f": true,
	"br": true, "rb": true, "fr": true, "rf": true,
}

func isStringPrefix(s string) bool { return stringPrefixes[strings.ToLower(s)] }

func newlineLen(src string, i int) int {
	switch {
	case strings.HasPrefix(src[i:], "\r\n"):
		return 2
	case i < len(src) && (src[i] == '\n' || src[i] == '\r'):
		return 1
	}
	return 0
}

func isQuote(ch byte) bool       { return ch == '"' || ch == '\'' }
func isDigit(ch byte) bool       { return ch >= '0' && ch <= '9' }
func isASCIILetter(ch byte) bool { return ch|0x20 >= 'a' && ch|0x20 <= 'z' }

// IsNameRune reports whether r may appear inside an identifier.
func IsNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// IsOpenBracket reports whether ch is an opening bracket/paren/brace.
func IsOpenBracket(ch byte) bool {
	return ch == '(' || ch == '[' || ch == '{'
}

// IsCloseBracket reports whether ch is a closing bracket/paren/brace.
func IsCloseBracket(ch byte) bool {
	return ch == ')' || ch == ']' || ch == '}'
}

var keywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// IsKeyword reports whether name is a reserved word of the target language.
func IsKeyword(name string) bool { return keywords[name] }

// IsIdentifier reports whether s is a valid, non-reserved identifier.
func IsIdentifier(s string) bool {
	if s == "" || IsKeyword(s) {
		return false
	}
	for i, r := range s {
		if i == 0 && !(r == '_' || unicode.IsLetter(r)) {
			return false
		}
		if !IsNameRune(r) {
			return false
		}
	}
	return true
}
