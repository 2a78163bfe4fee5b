package parsercommon

import (
	"errors"
	"fmt"

	"github.com/shibukawa/epubcfi/tokenizer"
)

// ParseError is the single error returned for a CFI that failed to parse.
// Kind is one of the sentinel errors of this package.
type ParseError struct {
	Kind     error
	Message  string
	Position tokenizer.Position
	Token    tokenizer.Token
}

// NewParseError creates a ParseError located at the given token.
func NewParseError(kind error, token tokenizer.Token, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Position: token.Position,
		Token:    token,
	}
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v at %s", e.Kind, e.Position)
	}
	return fmt.Sprintf("%v at %s: %s", e.Kind, e.Position, e.Message)
}

// Unwrap exposes Kind so errors.Is(err, ErrSyntax) and friends work.
func (e *ParseError) Unwrap() error {
	return e.Kind
}

// AsParseError is a helper to extract *ParseError from error using errors.As.
func AsParseError(err error) (*ParseError, bool) {
	var perr *ParseError
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}
