package parserstep2

import (
	"strconv"
	"strings"

	cmn "github.com/shibukawa/epubcfi/parser/parsercommon"
	tok "github.com/shibukawa/epubcfi/tokenizer"
	pc "github.com/shibukawa/parsercombinator"
	"github.com/shopspring/decimal"
)

// grammar holds the CFI productions built for one set of options.
//
//	fragment   = "epubcfi(" path [range] ")"
//	path       = step localPath
//	localPath  = step* [redirectedPath | offset]
//	redirected = "!" (offset | path)
//	range      = "," localPath "," localPath
//	step       = "/" integer [assertion]
//	offset     = ":" integer [assertion]
//	           | "@" number ":" [number] [assertion]
//	           | "~" number ["@" number ":" number] [assertion]
//	assertion  = "[" (parameter (";" parameter)* | value) "]"
type grammar struct {
	opts cmn.Options
	eof  tok.Token

	assertion      pc.Parser[Entity]
	step           pc.Parser[Entity]
	offset         pc.Parser[Entity]
	redirectedPath pc.Parser[Entity]
	localPath      pc.Parser[Entity]
	path           pc.Parser[Entity]
	rangeSuffix    pc.Parser[Entity]
	fragment       pc.Parser[Entity]
}

func newGrammar(opts cmn.Options, eof tok.Token) *grammar {
	g := &grammar{opts: opts, eof: eof}
	g.assertion = g.assertionParser()
	g.step = g.stepParser()
	g.offset = pc.Trace("offset", pc.Or(
		g.temporalOffsetParser(),
		g.spatialOffsetParser(),
		g.characterOffsetParser(),
	))
	g.redirectedPath = g.redirectedPathParser()
	g.localPath = g.localPathParser()
	g.path = g.pathParser()
	g.rangeSuffix = g.rangeParser()
	g.fragment = g.fragmentParser()
	return g
}

// head returns the first token, or the end of input when tokens is empty.
func (g *grammar) head(tokens []pc.Token[Entity]) tok.Token {
	if len(tokens) == 0 {
		return g.eof
	}
	return tokens[0].Val.Original
}

// required turns a mismatch of p into a critical syntax error. Used right
// after a prefix that commits the parser to one production.
func (g *grammar) required(what string, p pc.Parser[Entity]) pc.Parser[Entity] {
	return func(pctx *pc.ParseContext[Entity], tokens []pc.Token[Entity]) (int, []pc.Token[Entity], error) {
		consumed, out, err := p(pctx, tokens)
		if err == nil || isFatal(err) {
			return consumed, out, err
		}
		found := g.head(tokens)
		if found.Type == tok.EOF {
			return 0, nil, critical(cmn.ErrSyntax, found, "expected %s but input ended", what)
		}
		return 0, nil, critical(cmn.ErrSyntax, found, "expected %s but found %q", what, found.Value)
	}
}

func (g *grammar) assertionParser() pc.Parser[Entity] {
	param := pc.Trans(
		pc.Seq(alphanumeric, equal, alphanumeric),
		func(pctx *pc.ParseContext[Entity], tokens []pc.Token[Entity]) ([]pc.Token[Entity], error) {
			result := toEntity("parameter", tokens[0].Val.Original)
			result.Val.parameter = cmn.Parameter{
				Key:   tokens[0].Val.Original.Value,
				Value: tokens[2].Val.Original.Value,
			}
			return []pc.Token[Entity]{result}, nil
		},
	)
	parameters := pc.Trans(
		pc.Seq(param, pc.ZeroOrMore("more parameters", pc.Seq(semicolon, param))),
		func(pctx *pc.ParseContext[Entity], tokens []pc.Token[Entity]) ([]pc.Token[Entity], error) {
			var assertion cmn.ParameterAssertion
			for _, t := range tokens {
				if t.Type == "parameter" {
					assertion.Parameters = append(assertion.Parameters, t.Val.parameter)
				}
			}
			return node("assertion", tokens[0], assertion), nil
		},
	)
	valueToken := alphanumeric
	if g.opts.AssertionValues == cmn.DigitValues {
		valueToken = digits
	}
	value := pc.Trans(
		valueToken,
		func(pctx *pc.ParseContext[Entity], tokens []pc.Token[Entity]) ([]pc.Token[Entity], error) {
			return node("assertion", tokens[0], cmn.ValueAssertion{Value: tokens[0].Val.Original.Value}), nil
		},
	)
	alternatives := []pc.Parser[Entity]{parameters, value}

	return pc.Trace("assertion", func(pctx *pc.ParseContext[Entity], tokens []pc.Token[Entity]) (int, []pc.Token[Entity], error) {
		if _, _, err := bracketOpen(pctx, tokens); err != nil {
			return 0, nil, err
		}
		end := 1
		for end < len(tokens) && tokens[end].Val.Original.Type != tok.CLOSED_BRACKET {
			end++
		}
		if end == len(tokens) {
			return 0, nil, critical(cmn.ErrAssertion, tokens[0].Val.Original, "missing ']'")
		}
		if end == 1 {
			return 0, nil, critical(cmn.ErrAssertion, tokens[0].Val.Original, "empty assertion")
		}

		// Exactly one alternative has to consume the whole bracket body.
		body := tokens[1:end]
		var matched []pc.Token[Entity]
		for _, alternative := range alternatives {
			consumed, out, err := alternative(pctx, body)
			if err != nil {
				if isFatal(err) {
					return 0, nil, err
				}
				continue
			}
			if consumed != len(body) {
				continue
			}
			if matched != nil {
				return 0, nil, critical(cmn.ErrAmbiguousAlternative, tokens[0].Val.Original, "assertion matches more than one form")
			}
			matched = out
		}
		if matched == nil {
			return 0, nil, critical(cmn.ErrAssertion, tokens[0].Val.Original, "expected key=value list or a single %s value", g.opts.AssertionValues)
		}
		if _, _, err := bracketClose(pctx, tokens[end:]); err != nil {
			return 0, nil, err
		}

		return end + 1, node("assertion", tokens[0], matched[0].Val.NewValue), nil
	})
}

// assertionOf finds the trailing assertion among the tokens of a production.
func assertionOf(tokens []pc.Token[Entity]) cmn.Assertion {
	for _, t := range tokens {
		if t.Type == "assertion" {
			if a, ok := t.Val.NewValue.(cmn.Assertion); ok {
				return a
			}
		}
	}
	return nil
}

func (g *grammar) stepParser() pc.Parser[Entity] {
	return pc.Trace("step", pc.Trans(
		pc.Seq(slash, g.required("step index", integer), pc.Optional(g.assertion)),
		func(pctx *pc.ParseContext[Entity], tokens []pc.Token[Entity]) ([]pc.Token[Entity], error) {
			index := tokens[1].Val.Original
			size, err := strconv.Atoi(index.Value)
			if err != nil || size > g.opts.MaxStepSize {
				return nil, critical(cmn.ErrStepOutOfRange, index, "step index %s exceeds %d", index.Value, g.opts.MaxStepSize)
			}
			return node("step", tokens[0], &cmn.Step{Size: size, Assertion: assertionOf(tokens[2:])}), nil
		},
	))
}

func (g *grammar) characterOffsetParser() pc.Parser[Entity] {
	return pc.Trace("characterOffset", pc.Trans(
		pc.Seq(colon, g.required("character offset", integer), pc.Optional(g.assertion)),
		func(pctx *pc.ParseContext[Entity], tokens []pc.Token[Entity]) ([]pc.Token[Entity], error) {
			point := tokens[1].Val.Original
			value, err := strconv.ParseUint(point.Value, 10, 32)
			if err != nil {
				return nil, critical(cmn.ErrOffsetOutOfRange, point, "character offset %s does not fit in 32 bits", point.Value)
			}
			return node("offset", tokens[0], cmn.CharacterOffset{
				StartAtPoint: uint32(value),
				Assertion:    assertionOf(tokens[2:]),
			}), nil
		},
	))
}

func (g *grammar) spatialOffsetParser() pc.Parser[Entity] {
	return pc.Trace("spatialOffset", pc.Trans(
		pc.Seq(
			at,
			g.required("spatial start", number),
			g.required("':'", colon),
			pc.Optional(number),
			pc.Optional(g.assertion),
		),
		func(pctx *pc.ParseContext[Entity], tokens []pc.Token[Entity]) ([]pc.Token[Entity], error) {
			start, err := parseNumber(tokens[1].Val.Original)
			if err != nil {
				return nil, err
			}
			offset := cmn.SpatialOffset{Start: start, Assertion: assertionOf(tokens[3:])}
			if len(tokens) > 3 && tokens[3].Type == "number" {
				end, err := parseNumber(tokens[3].Val.Original)
				if err != nil {
					return nil, err
				}
				offset.End = &end
			}
			return node("offset", tokens[0], offset), nil
		},
	))
}

func (g *grammar) temporalOffsetParser() pc.Parser[Entity] {
	spatialRange := pc.Seq(
		at,
		g.required("spatial range start", number),
		g.required("':'", colon),
		g.required("spatial range end", number),
	)
	return pc.Trace("temporalOffset", pc.Trans(
		pc.Seq(
			tilde,
			g.required("temporal offset", number),
			pc.Optional(spatialRange),
			pc.Optional(g.assertion),
		),
		func(pctx *pc.ParseContext[Entity], tokens []pc.Token[Entity]) ([]pc.Token[Entity], error) {
			startAt, err := parseNumber(tokens[1].Val.Original)
			if err != nil {
				return nil, err
			}
			offset := cmn.TemporalOffset{StartAt: startAt, Assertion: assertionOf(tokens[2:])}
			if len(tokens) > 5 && tokens[2].Type == "at" {
				start, err := parseNumber(tokens[3].Val.Original)
				if err != nil {
					return nil, err
				}
				end, err := parseNumber(tokens[5].Val.Original)
				if err != nil {
					return nil, err
				}
				offset.SpatialRange = &cmn.SpatialRange{Start: start, End: end}
			}
			return node("offset", tokens[0], offset), nil
		},
	))
}

// parseNumber decodes a NUMBER or DECIMAL token such as "3", "-1.5" or ".25".
// Exponent forms like "1e3" lex as a WORD and never reach here.
func parseNumber(token tok.Token) (float64, error) {
	text := strings.TrimPrefix(token.Value, "+")
	if rest, ok := strings.CutPrefix(text, "-"); ok {
		text = "-" + withLeadingZero(rest)
	} else {
		text = withLeadingZero(text)
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, critical(cmn.ErrSyntax, token, "malformed number %q", token.Value)
	}
	f, _ := d.Float64()
	return f, nil
}

func withLeadingZero(s string) string {
	if strings.HasPrefix(s, ".") {
		return "0" + s
	}
	return s
}

func (g *grammar) redirectedPathParser() pc.Parser[Entity] {
	return pc.Trace("redirectedPath", pc.Trans(
		pc.Seq(
			exclamation,
			g.required("path or offset after '!'", pc.Or(
				g.offset,
				pc.Lazy(func() pc.Parser[Entity] { return g.path }),
			)),
		),
		func(pctx *pc.ParseContext[Entity], tokens []pc.Token[Entity]) ([]pc.Token[Entity], error) {
			target, ok := tokens[1].Val.NewValue.(cmn.RedirectTarget)
			if !ok {
				return nil, critical(cmn.ErrSyntax, tokens[1].Val.Original, "expected path or offset after '!'")
			}
			return node("redirectedPath", tokens[0], &cmn.RedirectedPath{Target: target}), nil
		},
	))
}

// localPathParser always yields exactly one "localPath" token, even when it
// consumed nothing.
func (g *grammar) localPathParser() pc.Parser[Entity] {
	tail := pc.Or(g.redirectedPath, g.offset)

	return pc.Trace("localPath", func(pctx *pc.ParseContext[Entity], tokens []pc.Token[Entity]) (int, []pc.Token[Entity], error) {
		result := &cmn.LocalPath{}
		start := toEntity("localPath", g.head(tokens))
		consumed := 0

		for consumed < len(tokens) {
			n, out, err := g.step(pctx, tokens[consumed:])
			if err != nil {
				if isFatal(err) {
					return 0, nil, err
				}
				break
			}
			result.Steps = append(result.Steps, *out[0].Val.NewValue.(*cmn.Step))
			consumed += n
		}
		if g.opts.RequireSteps && len(result.Steps) == 0 {
			found := g.head(tokens)
			return 0, nil, critical(cmn.ErrSyntax, found, "expected step but found %q", found.Value)
		}

		if consumed < len(tokens) {
			n, out, err := tail(pctx, tokens[consumed:])
			switch {
			case err == nil:
				result.Tail = out[0].Val.NewValue.(cmn.LocalPathTail)
				consumed += n
			case isFatal(err):
				return 0, nil, err
			}
		}

		return consumed, node("localPath", start, result), nil
	})
}

func (g *grammar) pathParser() pc.Parser[Entity] {
	return pc.Trace("path", pc.Trans(
		pc.Seq(g.step, g.localPath),
		func(pctx *pc.ParseContext[Entity], tokens []pc.Token[Entity]) ([]pc.Token[Entity], error) {
			result := &cmn.Path{}
			for _, t := range tokens {
				switch v := t.Val.NewValue.(type) {
				case *cmn.Step:
					result.Step = *v
				case *cmn.LocalPath:
					result.LocalPath = *v
				}
			}
			return node("path", tokens[0], result), nil
		},
	))
}

func (g *grammar) rangeParser() pc.Parser[Entity] {
	if !g.opts.AllowRange {
		return func(pctx *pc.ParseContext[Entity], tokens []pc.Token[Entity]) (int, []pc.Token[Entity], error) {
			if _, _, err := comma(pctx, tokens); err == nil {
				return 0, nil, critical(cmn.ErrSyntax, tokens[0].Val.Original, "ranges are not allowed")
			}
			return 0, nil, pc.ErrNotMatch
		}
	}
	return pc.Trace("range", pc.Trans(
		pc.Seq(comma, g.localPath, g.required("','", comma), g.localPath),
		func(pctx *pc.ParseContext[Entity], tokens []pc.Token[Entity]) ([]pc.Token[Entity], error) {
			var paths []cmn.LocalPath
			for _, t := range tokens {
				if lp, ok := t.Val.NewValue.(*cmn.LocalPath); ok {
					paths = append(paths, *lp)
				}
			}
			if len(paths) != 2 {
				return nil, critical(cmn.ErrSyntax, tokens[0].Val.Original, "range needs a start and an end")
			}
			return node("range", tokens[0], &cmn.Range{Start: paths[0], End: paths[1]}), nil
		},
	))
}

func (g *grammar) fragmentParser() pc.Parser[Entity] {
	return pc.Trace("fragment", pc.Trans(
		pc.Seq(
			g.required("'epubcfi'", keyword),
			g.required("'('", parenOpen),
			g.required("path", g.path),
			pc.Optional(g.rangeSuffix),
			g.required("')'", parenClose),
		),
		func(pctx *pc.ParseContext[Entity], tokens []pc.Token[Entity]) ([]pc.Token[Entity], error) {
			result := &cmn.Fragment{}
			for _, t := range tokens {
				switch v := t.Val.NewValue.(type) {
				case *cmn.Path:
					result.Path = *v
				case *cmn.Range:
					result.Range = v
				}
			}
			return node("fragment", tokens[0], result), nil
		},
	))
}
