package parserstep2

import (
	"errors"
	"os"
	"strings"

	cmn "github.com/shibukawa/epubcfi/parser/parsercommon"
	tok "github.com/shibukawa/epubcfi/tokenizer"
	pc "github.com/shibukawa/parsercombinator"
)

// Execute is the entry point for parserstep2. It parses a token slice and returns a Fragment.
// Every failure is reported as *cmn.ParseError.
func Execute(tokens []tok.Token, opts cmn.Options) (*cmn.Fragment, error) {
	entityTokens := tokenToEntity(tokens)
	g := newGrammar(opts, endOf(tokens))

	pctx := pc.NewParseContext[Entity]()
	pctx.OrMode = pc.OrModeTryFast
	pctx.MaxDepth = maxDepth(opts)
	pctx.TraceEnable = opts.Trace

	consumed, parsed, err := g.fragment(pctx, entityTokens)
	if err != nil {
		if opts.Trace {
			w := opts.TraceOutput
			if w == nil {
				w = os.Stderr
			}
			pctx.DumpTraceTo(w)
		}
		if perr, ok := cmn.AsParseError(err); ok {
			return nil, perr
		}
		if errors.Is(err, pc.ErrStackOverflow) {
			return nil, cmn.NewParseError(cmn.ErrNestingTooDeep, g.head(entityTokens), "parser depth %d exceeded", pctx.MaxDepth)
		}
		return nil, cmn.NewParseError(cmn.ErrSyntax, g.head(entityTokens), "%v", err)
	}

	if consumed < len(entityTokens) {
		rest := make([]string, 0, len(entityTokens)-consumed)
		for _, t := range entityTokens[consumed:] {
			rest = append(rest, t.Val.Original.Value)
		}
		return nil, cmn.NewParseError(cmn.ErrIncompleteInput, entityTokens[consumed].Val.Original, "%q", strings.Join(rest, ""))
	}

	if len(parsed) == 0 {
		return nil, cmn.NewParseError(cmn.ErrSyntax, g.head(entityTokens), "no fragment")
	}
	fragment, ok := parsed[0].Val.NewValue.(*cmn.Fragment)
	if !ok {
		return nil, cmn.NewParseError(cmn.ErrSyntax, g.head(entityTokens), "no fragment")
	}
	return fragment, nil
}

// Combinator nesting grows by a fixed amount for every "!" redirection.
const (
	baseDepth           = 256
	depthPerRedirection = 16
)

func maxDepth(opts cmn.Options) int {
	return baseDepth + depthPerRedirection*max(opts.MaxRedirections, 0)
}
