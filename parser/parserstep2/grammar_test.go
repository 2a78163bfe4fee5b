package parserstep2

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	cmn "github.com/shibukawa/epubcfi/parser/parsercommon"
	tok "github.com/shibukawa/epubcfi/tokenizer"
	pc "github.com/shibukawa/parsercombinator"
)

func parseWith(t *testing.T, src string, opts cmn.Options, production func(g *grammar) pc.Parser[Entity]) (int, cmn.AstNode, error) {
	t.Helper()
	tokens, err := tok.NewTokenizer(src).AllTokens()
	assert.NoError(t, err)

	g := newGrammar(opts, endOf(tokens))
	pctx := pc.NewParseContext[Entity]()
	consumed, out, err := production(g)(pctx, tokenToEntity(tokens))
	if err != nil {
		return consumed, nil, err
	}
	assert.Equal(t, 1, len(out))
	return consumed, out[0].Val.NewValue, nil
}

func stepProduction(g *grammar) pc.Parser[Entity]      { return g.step }
func assertionProduction(g *grammar) pc.Parser[Entity] { return g.assertion }
func offsetProduction(g *grammar) pc.Parser[Entity]    { return g.offset }

// assertParseError accepts pc.ErrNotMatch for a plain mismatch, which must
// not be reported as a located parse error.
func assertParseError(t *testing.T, err error, want error) {
	t.Helper()
	if want == pc.ErrNotMatch {
		assert.Error(t, err)
		_, ok := cmn.AsParseError(err)
		assert.False(t, ok)
		return
	}
	assert.IsError(t, err, want)
}

func float(f float64) *float64 {
	return &f
}

func TestStepIndexRange(t *testing.T) {
	for n := 0; n <= 255; n++ {
		consumed, node, err := parseWith(t, "/"+strconv.Itoa(n), cmn.DefaultOptions(), stepProduction)
		assert.NoError(t, err)
		assert.Equal(t, 2, consumed)
		assert.Equal(t, &cmn.Step{Size: n}, node.(*cmn.Step))
	}

	for _, src := range []string{"/256", "/1000", "/99999999999999999999999"} {
		_, _, err := parseWith(t, src, cmn.DefaultOptions(), stepProduction)
		assert.IsError(t, err, cmn.ErrStepOutOfRange, src)
		assert.IsError(t, err, cmn.ErrSyntax, src)
	}
}

func TestStepIndexCeilingIsConfigurable(t *testing.T) {
	opts := cmn.DefaultOptions()
	opts.MaxStepSize = 65535

	_, node, err := parseWith(t, "/4096", opts, stepProduction)
	assert.NoError(t, err)
	assert.Equal(t, 4096, node.(*cmn.Step).Size)

	_, _, err = parseWith(t, "/65536", opts, stepProduction)
	assert.IsError(t, err, cmn.ErrStepOutOfRange)
}

func TestStep(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		want      *cmn.Step
		wantCount int
		wantErr   error
	}{
		{
			name:      "with value assertion",
			src:       "/4[chap01ref]",
			want:      &cmn.Step{Size: 4, Assertion: cmn.ValueAssertion{Value: "chap01ref"}},
			wantCount: 5,
		},
		{
			name: "with parameter assertion",
			src:  "/10[type=para;lang=en]",
			want: &cmn.Step{Size: 10, Assertion: cmn.ParameterAssertion{Parameters: []cmn.Parameter{
				{Key: "type", Value: "para"},
				{Key: "lang", Value: "en"},
			}}},
			wantCount: 11,
		},
		{
			name:      "stops before next step",
			src:       "/6/4",
			want:      &cmn.Step{Size: 6},
			wantCount: 2,
		},
		{
			name:    "missing index",
			src:     "/",
			wantErr: cmn.ErrSyntax,
		},
		{
			name:    "word index",
			src:     "/a",
			wantErr: cmn.ErrSyntax,
		},
		{
			name:    "fractional index",
			src:     "/2.5",
			wantErr: cmn.ErrSyntax,
		},
		{
			name:    "not a step",
			src:     ":2",
			wantErr: pc.ErrNotMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumed, node, err := parseWith(t, tt.src, cmn.DefaultOptions(), stepProduction)
			if tt.wantErr != nil {
				assertParseError(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantCount, consumed)
			assert.Equal(t, tt.want, node.(*cmn.Step))
		})
	}
}

func TestAssertion(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		values  cmn.AssertionValues
		want    cmn.Assertion
		wantErr error
	}{
		{
			name: "single parameter",
			src:  "[type=note]",
			want: cmn.ParameterAssertion{Parameters: []cmn.Parameter{{Key: "type", Value: "note"}}},
		},
		{
			name: "parameters keep input order",
			src:  "[type=note;id=note1]",
			want: cmn.ParameterAssertion{Parameters: []cmn.Parameter{
				{Key: "type", Value: "note"},
				{Key: "id", Value: "note1"},
			}},
		},
		{
			name: "numeric keys and values",
			src:  "[1key=1value;2key=2]",
			want: cmn.ParameterAssertion{Parameters: []cmn.Parameter{
				{Key: "1key", Value: "1value"},
				{Key: "2key", Value: "2"},
			}},
		},
		{
			name: "digit value",
			src:  "[2]",
			want: cmn.ValueAssertion{Value: "2"},
		},
		{
			name: "alphanumeric value",
			src:  "[chap01ref]",
			want: cmn.ValueAssertion{Value: "chap01ref"},
		},
		{
			name:   "digit value in digits mode",
			src:    "[42]",
			values: cmn.DigitValues,
			want:   cmn.ValueAssertion{Value: "42"},
		},
		{
			name:    "word value in digits mode",
			src:     "[chap01ref]",
			values:  cmn.DigitValues,
			wantErr: cmn.ErrAssertion,
		},
		{
			name:   "parameters still allowed in digits mode",
			src:    "[id=x]",
			values: cmn.DigitValues,
			want:   cmn.ParameterAssertion{Parameters: []cmn.Parameter{{Key: "id", Value: "x"}}},
		},
		{
			name:    "empty",
			src:     "[]",
			wantErr: cmn.ErrAssertion,
		},
		{
			name:    "missing value",
			src:     "[type=]",
			wantErr: cmn.ErrAssertion,
		},
		{
			name:    "trailing separator",
			src:     "[type=note;]",
			wantErr: cmn.ErrAssertion,
		},
		{
			name:    "two bare values",
			src:     "[a;b]",
			wantErr: cmn.ErrAssertion,
		},
		{
			name:    "unterminated",
			src:     "[abc",
			wantErr: cmn.ErrAssertion,
		},
		{
			name:    "not an assertion",
			src:     "abc",
			wantErr: pc.ErrNotMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := cmn.DefaultOptions()
			if tt.values != "" {
				opts.AssertionValues = tt.values
			}
			consumed, node, err := parseWith(t, tt.src, opts, assertionProduction)
			if tt.wantErr != nil {
				assertParseError(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, node.(cmn.Assertion))
			assert.Equal(t, tt.src, node.String())
			assert.True(t, consumed >= 3)
		})
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    cmn.Offset
		wantErr error
	}{
		{
			name: "character",
			src:  ":10",
			want: cmn.CharacterOffset{StartAtPoint: 10},
		},
		{
			name: "character with assertion",
			src:  ":3[yes]",
			want: cmn.CharacterOffset{StartAtPoint: 3, Assertion: cmn.ValueAssertion{Value: "yes"}},
		},
		{
			name: "largest character offset",
			src:  ":4294967295",
			want: cmn.CharacterOffset{StartAtPoint: 4294967295},
		},
		{
			name:    "character offset overflow",
			src:     ":4294967296",
			wantErr: cmn.ErrOffsetOutOfRange,
		},
		{
			name:    "character without point",
			src:     ":",
			wantErr: cmn.ErrSyntax,
		},
		{
			name: "spatial range",
			src:  "@2.5:5.3",
			want: cmn.SpatialOffset{Start: 2.5, End: float(5.3)},
		},
		{
			name: "spatial point",
			src:  "@2.5:",
			want: cmn.SpatialOffset{Start: 2.5},
		},
		{
			name: "spatial signed",
			src:  "@-1.5:+3",
			want: cmn.SpatialOffset{Start: -1.5, End: float(3)},
		},
		{
			name: "spatial point with assertion",
			src:  "@.5:[a=b]",
			want: cmn.SpatialOffset{Start: 0.5, Assertion: cmn.ParameterAssertion{Parameters: []cmn.Parameter{{Key: "a", Value: "b"}}}},
		},
		{
			name:    "spatial without colon",
			src:     "@2.5",
			wantErr: cmn.ErrSyntax,
		},
		{
			name: "temporal",
			src:  "~3.7",
			want: cmn.TemporalOffset{StartAt: 3.7},
		},
		{
			name: "temporal with spatial range and parameters",
			src:  "~2@0.5:1.5[type=note;id=note1]",
			want: cmn.TemporalOffset{
				StartAt:      2,
				SpatialRange: &cmn.SpatialRange{Start: 0.5, End: 1.5},
				Assertion: cmn.ParameterAssertion{Parameters: []cmn.Parameter{
					{Key: "type", Value: "note"},
					{Key: "id", Value: "note1"},
				}},
			},
		},
		{
			name:    "temporal with partial spatial range",
			src:     "~2@0.5:",
			wantErr: cmn.ErrSyntax,
		},
		{
			name:    "temporal without time",
			src:     "~[a]",
			wantErr: cmn.ErrSyntax,
		},
		{
			name:    "not an offset",
			src:     "/2",
			wantErr: pc.ErrNotMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, node, err := parseWith(t, tt.src, cmn.DefaultOptions(), offsetProduction)
			if tt.wantErr != nil {
				assertParseError(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, node.(cmn.Offset))
		})
	}
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want *cmn.Fragment
	}{
		{
			name: "two steps",
			src:  "epubcfi(/6/2)",
			want: &cmn.Fragment{Path: cmn.Path{
				Step:      cmn.Step{Size: 6},
				LocalPath: cmn.LocalPath{Steps: []cmn.Step{{Size: 2}}},
			}},
		},
		{
			name: "zero step local path",
			src:  "epubcfi(/6:5)",
			want: &cmn.Fragment{Path: cmn.Path{
				Step:      cmn.Step{Size: 6},
				LocalPath: cmn.LocalPath{Tail: cmn.CharacterOffset{StartAtPoint: 5}},
			}},
		},
		{
			name: "redirection into a path",
			src:  "epubcfi(/6/2!/4/1:5)",
			want: &cmn.Fragment{Path: cmn.Path{
				Step: cmn.Step{Size: 6},
				LocalPath: cmn.LocalPath{
					Steps: []cmn.Step{{Size: 2}},
					Tail: &cmn.RedirectedPath{Target: &cmn.Path{
						Step: cmn.Step{Size: 4},
						LocalPath: cmn.LocalPath{
							Steps: []cmn.Step{{Size: 1}},
							Tail:  cmn.CharacterOffset{StartAtPoint: 5},
						},
					}},
				},
			}},
		},
		{
			name: "redirection into an offset",
			src:  "epubcfi(/6/2!~12.5)",
			want: &cmn.Fragment{Path: cmn.Path{
				Step: cmn.Step{Size: 6},
				LocalPath: cmn.LocalPath{
					Steps: []cmn.Step{{Size: 2}},
					Tail:  &cmn.RedirectedPath{Target: cmn.TemporalOffset{StartAt: 12.5}},
				},
			}},
		},
		{
			name: "range",
			src:  "epubcfi(/6/4[chap01ref]!/4[body01]/10[para05],/2/1:1,/3:4)",
			want: &cmn.Fragment{
				Path: cmn.Path{
					Step: cmn.Step{Size: 6},
					LocalPath: cmn.LocalPath{
						Steps: []cmn.Step{{Size: 4, Assertion: cmn.ValueAssertion{Value: "chap01ref"}}},
						Tail: &cmn.RedirectedPath{Target: &cmn.Path{
							Step: cmn.Step{Size: 4, Assertion: cmn.ValueAssertion{Value: "body01"}},
							LocalPath: cmn.LocalPath{
								Steps: []cmn.Step{{Size: 10, Assertion: cmn.ValueAssertion{Value: "para05"}}},
							},
						}},
					},
				},
				Range: &cmn.Range{
					Start: cmn.LocalPath{Steps: []cmn.Step{{Size: 2}, {Size: 1}}, Tail: cmn.CharacterOffset{StartAtPoint: 1}},
					End:   cmn.LocalPath{Steps: []cmn.Step{{Size: 3}}, Tail: cmn.CharacterOffset{StartAtPoint: 4}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := tok.NewTokenizer(tt.src).AllTokens()
			assert.NoError(t, err)

			got, err := Execute(tokens, cmn.DefaultOptions())
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.src, got.String())
		})
	}
}

func TestExecuteErrors(t *testing.T) {
	noSteps := cmn.DefaultOptions()
	noSteps.RequireSteps = true
	noRange := cmn.DefaultOptions()
	noRange.AllowRange = false

	tests := []struct {
		name       string
		src        string
		opts       cmn.Options
		wantErr    error
		wantColumn int
	}{
		{
			name:       "trailing input",
			src:        "epubcfi(/6)(/2)",
			opts:       cmn.DefaultOptions(),
			wantErr:    cmn.ErrIncompleteInput,
			wantColumn: 12,
		},
		{
			name:       "missing path",
			src:        "epubcfi()",
			opts:       cmn.DefaultOptions(),
			wantErr:    cmn.ErrSyntax,
			wantColumn: 9,
		},
		{
			name:       "dangling redirection",
			src:        "epubcfi(/6!)",
			opts:       cmn.DefaultOptions(),
			wantErr:    cmn.ErrSyntax,
			wantColumn: 12,
		},
		{
			name:       "character offset without point",
			src:        "epubcfi(/6/4:)",
			opts:       cmn.DefaultOptions(),
			wantErr:    cmn.ErrSyntax,
			wantColumn: 14,
		},
		{
			name:       "range without end",
			src:        "epubcfi(/6,/2)",
			opts:       cmn.DefaultOptions(),
			wantErr:    cmn.ErrSyntax,
			wantColumn: 14,
		},
		{
			name:       "range disabled",
			src:        "epubcfi(/6,/2,/4)",
			opts:       noRange,
			wantErr:    cmn.ErrSyntax,
			wantColumn: 11,
		},
		{
			name:       "step required before offset",
			src:        "epubcfi(/6:5)",
			opts:       noSteps,
			wantErr:    cmn.ErrSyntax,
			wantColumn: 11,
		},
		{
			name:       "step out of range",
			src:        "epubcfi(/6/300)",
			opts:       cmn.DefaultOptions(),
			wantErr:    cmn.ErrStepOutOfRange,
			wantColumn: 12,
		},
		{
			name:       "assertion of the wrong form",
			src:        "epubcfi(/6[a=b;c])",
			opts:       cmn.DefaultOptions(),
			wantErr:    cmn.ErrAssertion,
			wantColumn: 11,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := tok.NewTokenizer(tt.src).AllTokens()
			assert.NoError(t, err)

			_, err = Execute(tokens, tt.opts)
			assert.IsError(t, err, tt.wantErr)
			perr, ok := cmn.AsParseError(err)
			assert.True(t, ok)
			assert.Equal(t, tt.wantColumn, perr.Position.Column)
		})
	}
}

func TestExecuteWithSteps(t *testing.T) {
	opts := cmn.DefaultOptions()
	opts.RequireSteps = true

	tokens, err := tok.NewTokenizer("epubcfi(/6/4!/2/1:3)").AllTokens()
	assert.NoError(t, err)

	got, err := Execute(tokens, opts)
	assert.NoError(t, err)
	assert.Equal(t, "epubcfi(/6/4!/2/1:3)", got.String())
}

func TestExecuteDeepRedirections(t *testing.T) {
	opts := cmn.DefaultOptions()
	opts.MaxRedirections = 200

	src := "epubcfi(/6" + strings.Repeat("/2!", 150) + "/4)"
	tokens, err := tok.NewTokenizer(src).AllTokens()
	assert.NoError(t, err)

	got, err := Execute(tokens, opts)
	assert.NoError(t, err)
	assert.Equal(t, src, got.String())

	depth := 0
	cmn.Walk(got, func(n cmn.AstNode, _ int) bool {
		if n.Type() == cmn.REDIRECTED_PATH {
			depth++
		}
		return true
	})
	assert.Equal(t, 150, depth)
}

func TestExecuteTraceOutput(t *testing.T) {
	var trace bytes.Buffer
	opts := cmn.DefaultOptions()
	opts.Trace = true
	opts.TraceOutput = &trace

	tokens, err := tok.NewTokenizer("epubcfi(/6/4!)").AllTokens()
	assert.NoError(t, err)

	_, err = Execute(tokens, opts)
	assert.IsError(t, err, cmn.ErrSyntax)
	assert.NotZero(t, trace.Len())
}

func TestOffsetRejectsExponent(t *testing.T) {
	for _, src := range []string{"@1e3:2", "~2E1"} {
		_, _, err := parseWith(t, src, cmn.DefaultOptions(), offsetProduction)
		assert.IsError(t, err, cmn.ErrSyntax, src)
	}
}
