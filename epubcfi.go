// Package epubcfi parses EPUB Canonical Fragment Identifiers such as
// "epubcfi(/6/4[chap01ref]!/4[body01]/10[para05]/3:10)" into a typed tree.
//
// The tree is rooted at Fragment. A Path starts with a Step and continues
// with a LocalPath, whose steps may end with either a RedirectedPath ("!")
// into an indirectly referenced document or an Offset inside the addressed
// element. Steps and offsets may carry an Assertion.
package epubcfi

import "github.com/shibukawa/epubcfi/parser"

// Re-export the tree types
type (
	AstNode        = parser.AstNode
	NodeType       = parser.NodeType
	LocalPathTail  = parser.LocalPathTail
	RedirectTarget = parser.RedirectTarget
	Offset         = parser.Offset
	Assertion      = parser.Assertion

	Fragment       = parser.Fragment
	Path           = parser.Path
	LocalPath      = parser.LocalPath
	RedirectedPath = parser.RedirectedPath
	Range          = parser.Range
	Step           = parser.Step

	CharacterOffset = parser.CharacterOffset
	SpatialOffset   = parser.SpatialOffset
	SpatialRange    = parser.SpatialRange
	TemporalOffset  = parser.TemporalOffset

	ParameterAssertion = parser.ParameterAssertion
	ValueAssertion     = parser.ValueAssertion
	Parameter          = parser.Parameter

	ParseError = parser.ParseError
	Options    = parser.Options
)

// ParseFragment parses a complete "epubcfi(...)" string with the default options.
func ParseFragment(text string) (*Fragment, error) {
	return parser.ParseFragment(text)
}

// ParseFragmentWithConfig parses text with the grammar options of config.
// A nil config behaves like ParseFragment.
func ParseFragmentWithConfig(text string, config *Config) (*Fragment, error) {
	return parser.ParseFragment(text, config.ParserOptions())
}

// ParseFragmentWithOptions parses text with explicit grammar options.
func ParseFragmentWithOptions(text string, opts Options) (*Fragment, error) {
	return parser.ParseFragment(text, opts)
}

// Walk traverses the tree rooted at node depth-first in source order, calling
// visit with each node and its depth. Children are skipped when visit returns
// false.
func Walk(node AstNode, visit func(node AstNode, depth int) bool) {
	parser.Walk(node, visit)
}

// FormatNumber renders a spatial or temporal coordinate in its shortest
// decimal spelling, as used by String.
func FormatNumber(f float64) string {
	return parser.FormatNumber(f)
}

// DefaultOptions returns the grammar options used by ParseFragment.
func DefaultOptions() Options {
	return parser.DefaultOptions()
}
