package parser

import (
	cmn "github.com/shibukawa/epubcfi/parser/parsercommon"
	"github.com/shibukawa/epubcfi/parser/parserstep1"
	"github.com/shibukawa/epubcfi/parser/parserstep2"
	"github.com/shibukawa/epubcfi/tokenizer"
)

// Re-export common types for user convenience
type (
	// Core interfaces
	AstNode        = cmn.AstNode
	NodeType       = cmn.NodeType
	LocalPathTail  = cmn.LocalPathTail
	RedirectTarget = cmn.RedirectTarget
	Offset         = cmn.Offset
	Assertion      = cmn.Assertion

	// Structure
	Fragment       = cmn.Fragment
	Path           = cmn.Path
	LocalPath      = cmn.LocalPath
	RedirectedPath = cmn.RedirectedPath
	Range          = cmn.Range
	Step           = cmn.Step

	// Offsets
	CharacterOffset = cmn.CharacterOffset
	SpatialOffset   = cmn.SpatialOffset
	SpatialRange    = cmn.SpatialRange
	TemporalOffset  = cmn.TemporalOffset

	// Assertions
	ParameterAssertion = cmn.ParameterAssertion
	ValueAssertion     = cmn.ValueAssertion
	Parameter          = cmn.Parameter

	// Error types
	ParseError = cmn.ParseError
)

// Re-export sentinel errors
var (
	ErrSyntax               = cmn.ErrSyntax
	ErrAssertion            = cmn.ErrAssertion
	ErrIncompleteInput      = cmn.ErrIncompleteInput
	ErrAmbiguousAlternative = cmn.ErrAmbiguousAlternative
	ErrStepOutOfRange       = cmn.ErrStepOutOfRange
	ErrOffsetOutOfRange     = cmn.ErrOffsetOutOfRange
	ErrNestingTooDeep       = cmn.ErrNestingTooDeep
	ErrUnexpectedCharacter  = cmn.ErrUnexpectedCharacter
)

// Walk traverses the tree depth-first in source order. See parsercommon.Walk.
func Walk(node AstNode, visit func(node AstNode, depth int) bool) {
	cmn.Walk(node, visit)
}

// FormatNumber renders a spatial or temporal coordinate the way String does.
func FormatNumber(f float64) string {
	return cmn.FormatNumber(f)
}

// RawParse runs the parsing pipeline on already tokenized input.
// It takes tokenized CFI text, runs structural validation (parserstep1) and
// the grammar (parserstep2), and returns the fragment.
func RawParse(tokens []tokenizer.Token, opts Options) (*Fragment, error) {
	// Step 1: Run parserstep1 - Envelope, character set and bracket validation
	processedTokens, err := parserstep1.Execute(tokens, opts)
	if err != nil {
		return nil, err
	}

	// Step 2: Run parserstep2 - CFI grammar
	return parserstep2.Execute(processedTokens, opts)
}

// ParseFragment parses a complete "epubcfi(...)" string. Without opts the
// DefaultOptions are used.
func ParseFragment(text string, opts ...Options) (*Fragment, error) {
	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}

	tokens, err := tokenizer.NewTokenizer(text).AllTokens()
	if err != nil {
		return nil, cmn.NewParseError(ErrUnexpectedCharacter, tokens[len(tokens)-1], "%v", tokenizer.ErrInvalidUTF8)
	}

	return RawParse(tokens, o)
}
