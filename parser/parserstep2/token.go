package parserstep2

import (
	"errors"
	"fmt"
	"slices"

	cmn "github.com/shibukawa/epubcfi/parser/parsercommon"
	tok "github.com/shibukawa/epubcfi/tokenizer"
	pc "github.com/shibukawa/parsercombinator"
)

const envelopeKeyword = "epubcfi"

// Primitives
var (
	slash        = primitiveType("slash", tok.SLASH)
	exclamation  = primitiveType("exclamation", tok.EXCLAMATION)
	colon        = primitiveType("colon", tok.COLON)
	at           = primitiveType("at", tok.AT)
	tilde        = primitiveType("tilde", tok.TILDE)
	bracketOpen  = primitiveType("bracketOpen", tok.OPENED_BRACKET)
	bracketClose = primitiveType("bracketClose", tok.CLOSED_BRACKET)
	semicolon    = primitiveType("semicolon", tok.SEMICOLON)
	equal        = primitiveType("equal", tok.EQUAL)
	comma        = primitiveType("comma", tok.COMMA)
	parenOpen    = primitiveType("parenOpen", tok.OPENED_PARENS)
	parenClose   = primitiveType("parenClose", tok.CLOSED_PARENS)
)

// Literals
var (
	integer      = primitiveType("integer", tok.NUMBER)
	number       = primitiveType("number", tok.NUMBER, tok.DECIMAL)
	alphanumeric = primitiveType("alphanumeric", tok.WORD, tok.NUMBER)
	digits       = primitiveType("digits", tok.NUMBER)
	keyword      = keywordType("keyword", envelopeKeyword)
)

func primitiveType(typeName string, types ...tok.TokenType) pc.Parser[Entity] {
	return func(pctx *pc.ParseContext[Entity], tokens []pc.Token[Entity]) (int, []pc.Token[Entity], error) {
		if len(tokens) > 0 && slices.Contains(types, tokens[0].Val.Original.Type) {
			return 1, []pc.Token[Entity]{toEntity(typeName, tokens[0].Val.Original)}, nil
		}
		return 0, nil, pc.ErrNotMatch
	}
}

func keywordType(typeName, word string) pc.Parser[Entity] {
	return func(pctx *pc.ParseContext[Entity], tokens []pc.Token[Entity]) (int, []pc.Token[Entity], error) {
		if len(tokens) > 0 && tokens[0].Val.Original.Type == tok.WORD && tokens[0].Val.Original.Value == word {
			return 1, []pc.Token[Entity]{toEntity(typeName, tokens[0].Val.Original)}, nil
		}
		return 0, nil, pc.ErrNotMatch
	}
}

// critical builds an error that stops backtracking and carries the position
// of the offending token.
func critical(kind error, token tok.Token, format string, args ...any) error {
	return fmt.Errorf("%w: %w", pc.ErrCritical, cmn.NewParseError(kind, token, format, args...))
}

func isCritical(err error) bool {
	return errors.Is(err, pc.ErrCritical)
}

// isFatal reports errors that must not be treated as a plain mismatch.
func isFatal(err error) bool {
	return isCritical(err) || errors.Is(err, pc.ErrStackOverflow)
}
