package parserstep2

import (
	cmn "github.com/shibukawa/epubcfi/parser/parsercommon"
	tok "github.com/shibukawa/epubcfi/tokenizer"
	pc "github.com/shibukawa/parsercombinator"
)

type Entity struct {
	Original  tok.Token     // The original token from the tokenizer
	NewValue  cmn.AstNode   // The parsed AST node (nil for plain tokens)
	parameter cmn.Parameter // Set on "parameter" tokens only
}

func tokenToEntity(tokens []tok.Token) []pc.Token[Entity] {
	results := make([]pc.Token[Entity], 0, len(tokens))
	for _, token := range tokens {
		if token.Type == tok.EOF {
			continue
		}

		results = append(results, toEntity("raw", token))
	}

	return results
}

func toEntity(typeName string, token tok.Token) pc.Token[Entity] {
	return pc.Token[Entity]{
		Type: typeName,
		Pos: &pc.Pos{
			Line:  token.Position.Line,
			Col:   token.Position.Column,
			Index: token.Position.Offset,
		},
		Val: Entity{
			Original: token,
		},
		Raw: token.Value,
	}
}

// node wraps a freshly built AST node into a single token located at start.
func node(typeName string, start pc.Token[Entity], value cmn.AstNode) []pc.Token[Entity] {
	return []pc.Token[Entity]{
		{
			Type: typeName,
			Pos:  start.Pos,
			Val: Entity{
				Original: start.Val.Original,
				NewValue: value,
			},
			Raw: start.Raw,
		},
	}
}

// endOf returns a synthetic EOF token located right after the last token.
func endOf(tokens []tok.Token) tok.Token {
	if len(tokens) == 0 {
		return tok.Token{Type: tok.EOF, Position: tok.Position{Line: 1, Column: 1}}
	}
	last := tokens[len(tokens)-1]
	if last.Type == tok.EOF {
		return last
	}
	last.Position.Column += len([]rune(last.Value))
	last.Position.Offset += len(last.Value)
	return tok.Token{Type: tok.EOF, Position: last.Position}
}
