package parsercommon

import (
	"io"
	"math"
)

// AssertionValues selects which tokens may form a bare assertion value.
type AssertionValues string

const (
	// AlphanumericValues accepts any alphanumeric run, e.g. "[2]" or "[chapter1]".
	AlphanumericValues AssertionValues = "alphanumeric"
	// DigitValues accepts digit runs only, e.g. "[2]".
	DigitValues AssertionValues = "digits"
)

// Options tune the grammar. The zero value is not usable; start from DefaultOptions.
type Options struct {
	// MaxStepSize is the largest accepted step index. Defaults to 255.
	MaxStepSize int
	// MaxRedirections bounds the number of "!" redirections in one fragment.
	MaxRedirections int
	// RequireSteps rejects local paths without any step (e.g. the "/6:5" path tail).
	RequireSteps bool
	// AssertionValues restricts the bare assertion value charset.
	AssertionValues AssertionValues
	// AllowRange accepts the ",start,end" range suffix of a fragment.
	AllowRange bool
	// Trace enables parsercombinator tracing and dumps it when a parse fails.
	Trace bool
	// TraceOutput receives the trace dump. Defaults to os.Stderr.
	TraceOutput io.Writer
}

// DefaultOptions returns the options used by ParseFragment.
func DefaultOptions() Options {
	return Options{
		MaxStepSize:     math.MaxUint8,
		MaxRedirections: 32,
		RequireSteps:    false,
		AssertionValues: AlphanumericValues,
		AllowRange:      true,
	}
}
