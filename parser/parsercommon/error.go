package parsercommon

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is returned when a required literal, integer or number is missing or malformed
	ErrSyntax = errors.New("invalid CFI syntax")
	// ErrAssertion is returned when a bracketed assertion is empty or matches neither form
	ErrAssertion = errors.New("invalid CFI assertion")
	// ErrIncompleteInput is returned when a fragment parsed but characters remain after it
	ErrIncompleteInput = errors.New("unexpected trailing input")
	// ErrAmbiguousAlternative signals a grammar defect: more than one alternative matched
	ErrAmbiguousAlternative = errors.New("ambiguous grammar alternative")

	ErrStepOutOfRange      = fmt.Errorf("%w: step index out of range", ErrSyntax)
	ErrOffsetOutOfRange    = fmt.Errorf("%w: character offset out of range", ErrSyntax)
	ErrNestingTooDeep      = fmt.Errorf("%w: too many redirections", ErrSyntax)
	ErrUnexpectedCharacter = fmt.Errorf("%w: unexpected character", ErrSyntax)
)
