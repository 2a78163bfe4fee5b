package epubcfi

import "github.com/shibukawa/epubcfi/parser"

// Errors returned by ParseFragment. Every parse failure is a *ParseError whose
// Kind is one of these; match them with errors.Is.
var (
	// ErrSyntax indicates a missing or malformed literal, integer or number.
	ErrSyntax = parser.ErrSyntax
	// ErrAssertion indicates an empty bracket or one matching neither assertion form.
	ErrAssertion = parser.ErrAssertion
	// ErrIncompleteInput indicates text left over after a complete fragment.
	ErrIncompleteInput = parser.ErrIncompleteInput
	// ErrAmbiguousAlternative indicates that more than one grammar alternative matched.
	ErrAmbiguousAlternative = parser.ErrAmbiguousAlternative

	// Refinements of ErrSyntax
	ErrStepOutOfRange      = parser.ErrStepOutOfRange
	ErrOffsetOutOfRange    = parser.ErrOffsetOutOfRange
	ErrNestingTooDeep      = parser.ErrNestingTooDeep
	ErrUnexpectedCharacter = parser.ErrUnexpectedCharacter
)
