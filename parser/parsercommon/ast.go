package parsercommon

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// AstNode represents AST (Abstract Syntax Tree) node interface
// All AST nodes must implement this interface.
type AstNode interface {
	Type() NodeType
	String() string // Canonical CFI text of the node
}

// NodeType represents the type of AST node
// This is used for type discrimination and debugging.
type NodeType int

const (
	// Structure
	FRAGMENT NodeType = iota
	PATH
	LOCAL_PATH
	REDIRECTED_PATH
	RANGE
	STEP

	// Offsets
	CHARACTER_OFFSET
	SPATIAL_OFFSET
	TEMPORAL_OFFSET

	// Assertions
	PARAMETER_ASSERTION
	VALUE_ASSERTION
)

// String returns string representation of NodeType
func (n NodeType) String() string {
	switch n {
	case FRAGMENT:
		return "FRAGMENT"
	case PATH:
		return "PATH"
	case LOCAL_PATH:
		return "LOCAL_PATH"
	case REDIRECTED_PATH:
		return "REDIRECTED_PATH"
	case RANGE:
		return "RANGE"
	case STEP:
		return "STEP"
	case CHARACTER_OFFSET:
		return "CHARACTER_OFFSET"
	case SPATIAL_OFFSET:
		return "SPATIAL_OFFSET"
	case TEMPORAL_OFFSET:
		return "TEMPORAL_OFFSET"
	case PARAMETER_ASSERTION:
		return "PARAMETER_ASSERTION"
	case VALUE_ASSERTION:
		return "VALUE_ASSERTION"
	default:
		return "UNKNOWN"
	}
}

// Fragment is the root of a parsed CFI: "epubcfi(" path [range] ")".
type Fragment struct {
	Path  Path
	Range *Range // nil when the fragment addresses a single location
}

func (n Fragment) Type() NodeType { return FRAGMENT }

func (n Fragment) String() string {
	var sb strings.Builder
	sb.WriteString("epubcfi(")
	sb.WriteString(n.Path.String())
	if n.Range != nil {
		sb.WriteString(n.Range.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// Path is an initial step followed by a local path.
type Path struct {
	Step      Step
	LocalPath LocalPath
}

func (n Path) Type() NodeType { return PATH }

func (n Path) String() string {
	return n.Step.String() + n.LocalPath.String()
}

func (*Path) isRedirectTarget() {}

// LocalPathTail is what may follow the steps of a local path: either a
// *RedirectedPath or an Offset. A nil tail means the local path ends without
// an offset.
type LocalPathTail interface {
	AstNode
	isLocalPathTail()
}

// LocalPath is a run of steps followed by an optional tail.
type LocalPath struct {
	Steps []Step
	Tail  LocalPathTail
}

func (n LocalPath) Type() NodeType { return LOCAL_PATH }

func (n LocalPath) String() string {
	var sb strings.Builder
	for _, step := range n.Steps {
		sb.WriteString(step.String())
	}
	if n.Tail != nil {
		sb.WriteString(n.Tail.String())
	}
	return sb.String()
}

// Redirection returns the redirected path ending this local path, if any.
func (n LocalPath) Redirection() (*RedirectedPath, bool) {
	r, ok := n.Tail.(*RedirectedPath)
	return r, ok
}

// Offset returns the terminal offset of this local path, if any.
func (n LocalPath) Offset() (Offset, bool) {
	o, ok := n.Tail.(Offset)
	return o, ok
}

// RedirectTarget is the continuation after "!": either a *Path or an Offset.
type RedirectTarget interface {
	AstNode
	isRedirectTarget()
}

// RedirectedPath is a "!" redirection into an indirectly referenced document.
type RedirectedPath struct {
	Target RedirectTarget
}

func (n *RedirectedPath) Type() NodeType { return REDIRECTED_PATH }

func (n *RedirectedPath) String() string {
	if n.Target == nil {
		return "!"
	}
	return "!" + n.Target.String()
}

func (*RedirectedPath) isLocalPathTail() {}

// Path returns the redirection target when it is a path.
func (n *RedirectedPath) Path() (*Path, bool) {
	p, ok := n.Target.(*Path)
	return p, ok
}

// Offset returns the redirection target when it is an offset.
func (n *RedirectedPath) Offset() (Offset, bool) {
	o, ok := n.Target.(Offset)
	return o, ok
}

// Range is a start and an end local path, both relative to the fragment path.
type Range struct {
	Start LocalPath
	End   LocalPath
}

func (n Range) Type() NodeType { return RANGE }

func (n Range) String() string {
	return "," + n.Start.String() + "," + n.End.String()
}

// Step selects a child by index, optionally verified by an assertion.
type Step struct {
	Size      int
	Assertion Assertion
}

func (n Step) Type() NodeType { return STEP }

func (n Step) String() string {
	return "/" + strconv.Itoa(n.Size) + assertionString(n.Assertion)
}

// Offset is a position inside the element reached by a path.
// Implemented by CharacterOffset, SpatialOffset and TemporalOffset.
type Offset interface {
	AstNode
	OffsetAssertion() Assertion
	isLocalPathTail()
	isRedirectTarget()
}

// CharacterOffset is a ":" offset counted in characters.
type CharacterOffset struct {
	StartAtPoint uint32
	Assertion    Assertion
}

func (n CharacterOffset) Type() NodeType { return CHARACTER_OFFSET }

func (n CharacterOffset) String() string {
	return ":" + strconv.FormatUint(uint64(n.StartAtPoint), 10) + assertionString(n.Assertion)
}

func (n CharacterOffset) OffsetAssertion() Assertion { return n.Assertion }

func (CharacterOffset) isLocalPathTail()  {}
func (CharacterOffset) isRedirectTarget() {}

// SpatialOffset is an "@" offset. End is nil for a single point.
type SpatialOffset struct {
	Start     float64
	End       *float64
	Assertion Assertion
}

func (n SpatialOffset) Type() NodeType { return SPATIAL_OFFSET }

func (n SpatialOffset) String() string {
	var sb strings.Builder
	sb.WriteString("@")
	sb.WriteString(FormatNumber(n.Start))
	sb.WriteString(":")
	if n.End != nil {
		sb.WriteString(FormatNumber(*n.End))
	}
	sb.WriteString(assertionString(n.Assertion))
	return sb.String()
}

func (n SpatialOffset) OffsetAssertion() Assertion { return n.Assertion }

func (SpatialOffset) isLocalPathTail()  {}
func (SpatialOffset) isRedirectTarget() {}

// SpatialRange is the "@start:end" part of a temporal offset.
type SpatialRange struct {
	Start float64
	End   float64
}

// TemporalOffset is a "~" offset, optionally combined with a spatial range.
type TemporalOffset struct {
	StartAt      float64
	SpatialRange *SpatialRange
	Assertion    Assertion
}

func (n TemporalOffset) Type() NodeType { return TEMPORAL_OFFSET }

func (n TemporalOffset) String() string {
	var sb strings.Builder
	sb.WriteString("~")
	sb.WriteString(FormatNumber(n.StartAt))
	if n.SpatialRange != nil {
		sb.WriteString("@")
		sb.WriteString(FormatNumber(n.SpatialRange.Start))
		sb.WriteString(":")
		sb.WriteString(FormatNumber(n.SpatialRange.End))
	}
	sb.WriteString(assertionString(n.Assertion))
	return sb.String()
}

func (n TemporalOffset) OffsetAssertion() Assertion { return n.Assertion }

func (TemporalOffset) isLocalPathTail()  {}
func (TemporalOffset) isRedirectTarget() {}

// Assertion is the bracketed payload of a step or offset. A nil Assertion
// means none was given. Implemented by ParameterAssertion and ValueAssertion.
type Assertion interface {
	AstNode
	isAssertion()
}

// Parameter is one key=value pair of a parameter assertion.
type Parameter struct {
	Key   string
	Value string
}

// ParameterAssertion is a non-empty, ordered list of key=value pairs.
type ParameterAssertion struct {
	Parameters []Parameter
}

func (n ParameterAssertion) Type() NodeType { return PARAMETER_ASSERTION }

func (n ParameterAssertion) String() string {
	parts := make([]string, len(n.Parameters))
	for i, p := range n.Parameters {
		parts[i] = p.Key + "=" + p.Value
	}
	return "[" + strings.Join(parts, ";") + "]"
}

// Get returns the value of the first parameter with the given key.
func (n ParameterAssertion) Get(key string) (string, bool) {
	for _, p := range n.Parameters {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

func (ParameterAssertion) isAssertion() {}

// ValueAssertion is a single bare value, e.g. the "2" of "/6[2]".
type ValueAssertion struct {
	Value string
}

func (n ValueAssertion) Type() NodeType { return VALUE_ASSERTION }

func (n ValueAssertion) String() string {
	return "[" + n.Value + "]"
}

func (ValueAssertion) isAssertion() {}

func assertionString(a Assertion) string {
	if a == nil {
		return ""
	}
	return a.String()
}

// FormatNumber renders a spatial or temporal coordinate in its shortest
// decimal spelling ("2" for 2.0, "0.5" for 0.5).
func FormatNumber(f float64) string {
	return decimal.NewFromFloat(f).String()
}
