package tokenizer

import (
	"errors"
	"fmt"
)

// ErrInvalidUTF8 is returned when the input is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8 encoding")

// TokenType represents the type of a token
type TokenType int

const (
	// Basic tokens
	EOF TokenType = iota
	WHITESPACE
	WORD    // alphanumeric run containing at least one letter
	NUMBER  // unsigned digit run
	DECIMAL // signed and/or fractional number

	// Delimiters
	SLASH          // /
	EXCLAMATION    // !
	COLON          // :
	AT             // @
	TILDE          // ~
	OPENED_BRACKET // [
	CLOSED_BRACKET // ]
	SEMICOLON      // ;
	EQUAL          // =
	COMMA          // ,
	OPENED_PARENS  // (
	CLOSED_PARENS  // )

	// Others
	OTHER // characters outside the CFI alphabet
)

// String returns the string representation of TokenType
func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case WHITESPACE:
		return "WHITESPACE"
	case WORD:
		return "WORD"
	case NUMBER:
		return "NUMBER"
	case DECIMAL:
		return "DECIMAL"
	case SLASH:
		return "SLASH"
	case EXCLAMATION:
		return "EXCLAMATION"
	case COLON:
		return "COLON"
	case AT:
		return "AT"
	case TILDE:
		return "TILDE"
	case OPENED_BRACKET:
		return "OPENED_BRACKET"
	case CLOSED_BRACKET:
		return "CLOSED_BRACKET"
	case SEMICOLON:
		return "SEMICOLON"
	case EQUAL:
		return "EQUAL"
	case COMMA:
		return "COMMA"
	case OPENED_PARENS:
		return "OPENED_PARENS"
	case CLOSED_PARENS:
		return "CLOSED_PARENS"
	case OTHER:
		return "OTHER"
	default:
		return "UNKNOWN"
	}
}

// IsNumeric reports whether the token can be read as a number.
func (t TokenType) IsNumeric() bool {
	return t == NUMBER || t == DECIMAL
}

// Position represents a position in the source text
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Token represents a token
type Token struct {
	Type     TokenType
	Value    string
	Position Position
}

// String returns the string representation of Token
func (t Token) String() string {
	return t.Type.String() + ": " + t.Value
}
