package parser

import cmn "github.com/shibukawa/epubcfi/parser/parsercommon"

// Options controls grammar limits and which optional constructs are accepted.
type Options = cmn.Options

// AssertionValues selects the charset of bare assertion values.
type AssertionValues = cmn.AssertionValues

const (
	AlphanumericValues = cmn.AlphanumericValues
	DigitValues        = cmn.DigitValues
)

// DefaultOptions provides the default parser options.
func DefaultOptions() Options {
	return cmn.DefaultOptions()
}
