package tokenizer

import (
	"fmt"
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenIterator uses Go 1.24 iterator pattern
type TokenIterator iter.Seq2[Token, error]

// CfiTokenizer is a tokenizer that returns an iterator
type CfiTokenizer struct {
	input string
}

// NewTokenizer creates a new CfiTokenizer
func NewTokenizer(input string) *CfiTokenizer {
	return &CfiTokenizer{input: input}
}

// Tokens returns an iterator of tokens. The last token is always EOF.
func (t *CfiTokenizer) Tokens() TokenIterator {
	return func(yield func(Token, error) bool) {
		tokenizer := &tokenizer{
			input: t.input,
			line:  1,
		}

		tokenizer.readChar()

		for {
			token, err := tokenizer.nextToken()
			if err != nil {
				if !yield(token, err) {
					return
				}
				continue
			}

			if token.Type == EOF {
				yield(token, nil)
				return
			}

			if !yield(token, nil) {
				return
			}
		}
	}
}

// AllTokens gets all tokens as a slice. On error the returned slice ends with
// the offending token.
func (t *CfiTokenizer) AllTokens() ([]Token, error) {
	tokens := make([]Token, 0, 32)

	for token, err := range t.Tokens() {
		if err != nil {
			return append(tokens, token), err
		}

		tokens = append(tokens, token)
		if token.Type == EOF {
			break
		}
	}

	return tokens, nil
}

var delimiters = map[rune]TokenType{
	'/': SLASH,
	'!': EXCLAMATION,
	':': COLON,
	'@': AT,
	'~': TILDE,
	'[': OPENED_BRACKET,
	']': CLOSED_BRACKET,
	';': SEMICOLON,
	'=': EQUAL,
	',': COMMA,
	'(': OPENED_PARENS,
	')': CLOSED_PARENS,
}

// Internal tokenizer implementation
type tokenizer struct {
	input    string
	position int // offset of the next rune to read
	offset   int // offset of current
	line     int
	column   int
	current  rune
	width    int
	eof      bool
}

// nextToken gets the next token
func (t *tokenizer) nextToken() (Token, error) {
	if t.eof {
		return Token{Type: EOF, Position: t.pos()}, nil
	}

	if t.current == utf8.RuneError && t.width == 1 {
		token := Token{Type: OTHER, Value: t.input[t.offset:t.position], Position: t.pos()}
		t.readChar()
		return token, fmt.Errorf("%w at %s", ErrInvalidUTF8, token.Position)
	}

	if tokenType, ok := delimiters[t.current]; ok {
		token := Token{Type: tokenType, Value: string(t.current), Position: t.pos()}
		t.readChar()
		return token, nil
	}

	switch {
	case unicode.IsSpace(t.current):
		return t.readWhitespace(), nil
	case isAlphanumeric(t.current):
		return t.readWord(), nil
	case t.current == '-' || t.current == '+':
		next := t.peekChar()
		if isDigit(next) || (next == '.' && isDigit(t.peekSecondChar())) {
			return t.readNumber(), nil
		}
	case t.current == '.':
		if isDigit(t.peekChar()) {
			return t.readNumber(), nil
		}
	}

	return t.readOther(), nil
}

// readChar reads the next character
func (t *tokenizer) readChar() {
	if t.position >= len(t.input) {
		if !t.eof {
			t.column++
		}
		t.current = 0
		t.offset = len(t.input)
		t.width = 0
		t.eof = true
		return
	}

	t.current, t.width = utf8.DecodeRuneInString(t.input[t.position:])
	t.offset = t.position
	t.position += t.width
	t.column++
}

// peekChar looks ahead at the next character
func (t *tokenizer) peekChar() rune {
	if t.position >= len(t.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(t.input[t.position:])
	return r
}

func (t *tokenizer) peekSecondChar() rune {
	if t.position >= len(t.input) {
		return 0
	}
	_, width := utf8.DecodeRuneInString(t.input[t.position:])
	if t.position+width >= len(t.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(t.input[t.position+width:])
	return r
}

func (t *tokenizer) pos() Position {
	return Position{Line: t.line, Column: t.column, Offset: t.offset}
}

// readWhitespace reads whitespace characters
func (t *tokenizer) readWhitespace() Token {
	start := t.pos()
	var builder strings.Builder

	for !t.eof && unicode.IsSpace(t.current) {
		builder.WriteRune(t.current)
		t.readChar()
	}

	return Token{Type: WHITESPACE, Value: builder.String(), Position: start}
}

// readWord reads an alphanumeric run. Pure digit runs become NUMBER, or DECIMAL
// when a fraction follows.
func (t *tokenizer) readWord() Token {
	start := t.pos()
	var builder strings.Builder
	digitsOnly := true

	for !t.eof && isAlphanumeric(t.current) {
		if !isDigit(t.current) {
			digitsOnly = false
		}
		builder.WriteRune(t.current)
		t.readChar()
	}

	if !digitsOnly {
		return Token{Type: WORD, Value: builder.String(), Position: start}
	}

	if t.current == '.' && isDigit(t.peekChar()) {
		t.readFraction(&builder)
		return Token{Type: DECIMAL, Value: builder.String(), Position: start}
	}

	return Token{Type: NUMBER, Value: builder.String(), Position: start}
}

// readNumber reads a number starting with a sign or a decimal point
func (t *tokenizer) readNumber() Token {
	start := t.pos()
	var builder strings.Builder

	if t.current == '-' || t.current == '+' {
		builder.WriteRune(t.current)
		t.readChar()
	}

	for !t.eof && isDigit(t.current) {
		builder.WriteRune(t.current)
		t.readChar()
	}

	if t.current == '.' && isDigit(t.peekChar()) {
		t.readFraction(&builder)
	}

	return Token{Type: DECIMAL, Value: builder.String(), Position: start}
}

func (t *tokenizer) readFraction(builder *strings.Builder) {
	builder.WriteRune(t.current) // '.'
	t.readChar()

	for !t.eof && isDigit(t.current) {
		builder.WriteRune(t.current)
		t.readChar()
	}
}

// readOther reads a single character outside the CFI alphabet
func (t *tokenizer) readOther() Token {
	token := Token{Type: OTHER, Value: string(t.current), Position: t.pos()}
	t.readChar()
	return token
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlphanumeric(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
