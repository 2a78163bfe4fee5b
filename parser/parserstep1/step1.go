package parserstep1

import (
	"strings"

	cmn "github.com/shibukawa/epubcfi/parser/parsercommon"
	tokenizer "github.com/shibukawa/epubcfi/tokenizer"
)

const envelopeKeyword = "epubcfi"

// validateEnvelope checks the "epubcfi(" prefix.
func validateEnvelope(tokens []tokenizer.Token) error {
	if len(tokens) == 0 || tokens[0].Type != tokenizer.WORD || tokens[0].Value != envelopeKeyword {
		return cmn.NewParseError(cmn.ErrSyntax, first(tokens), "expected %q", envelopeKeyword)
	}
	if len(tokens) < 2 || tokens[1].Type != tokenizer.OPENED_PARENS {
		return cmn.NewParseError(cmn.ErrSyntax, at(tokens, 1), "expected '(' after %q", envelopeKeyword)
	}
	return nil
}

// validateTrailing rejects any token after the parenthesis closing the
// envelope. A missing close is left to validateParentheses.
func validateTrailing(tokens []tokenizer.Token) error {
	depth := 0
	for i, tok := range tokens {
		switch tok.Type {
		case tokenizer.OPENED_PARENS:
			depth++
		case tokenizer.CLOSED_PARENS:
			depth--
			if depth == 0 && i+1 < len(tokens) {
				rest := tokens[i+1:]
				var sb strings.Builder
				for _, r := range rest {
					sb.WriteString(r.Value)
				}
				return cmn.NewParseError(cmn.ErrIncompleteInput, rest[0], "%q", sb.String())
			}
		}
	}
	return nil
}

// validateCharacters rejects tokens outside the CFI alphabet.
func validateCharacters(tokens []tokenizer.Token) error {
	for _, tok := range tokens {
		switch tok.Type {
		case tokenizer.WHITESPACE, tokenizer.OTHER:
			return cmn.NewParseError(cmn.ErrUnexpectedCharacter, tok, "%q", tok.Value)
		}
	}
	return nil
}

// validateParentheses checks that all parentheses are properly matched.
// Returns nil if all pairs are matched, otherwise returns an error.
func validateParentheses(tokens []tokenizer.Token) error {
	var stack []tokenizer.Token
	for _, tok := range tokens {
		switch tok.Type {
		case tokenizer.OPENED_PARENS:
			stack = append(stack, tok)
		case tokenizer.CLOSED_PARENS:
			if len(stack) == 0 {
				return cmn.NewParseError(cmn.ErrSyntax, tok, "unmatched ')'")
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return cmn.NewParseError(cmn.ErrSyntax, stack[len(stack)-1], "missing ')'")
	}
	return nil
}

// validateBrackets checks that assertion brackets are matched, not nested and
// not empty.
func validateBrackets(tokens []tokenizer.Token) error {
	var open *tokenizer.Token
	for i := range tokens {
		tok := tokens[i]
		switch tok.Type {
		case tokenizer.OPENED_BRACKET:
			if open != nil {
				return cmn.NewParseError(cmn.ErrAssertion, tok, "nested '['")
			}
			open = &tokens[i]
		case tokenizer.CLOSED_BRACKET:
			if open == nil {
				return cmn.NewParseError(cmn.ErrAssertion, tok, "unmatched ']'")
			}
			if i > 0 && tokens[i-1].Type == tokenizer.OPENED_BRACKET {
				return cmn.NewParseError(cmn.ErrAssertion, *open, "empty assertion")
			}
			open = nil
		}
	}
	if open != nil {
		return cmn.NewParseError(cmn.ErrAssertion, *open, "missing ']'")
	}
	return nil
}

// validateRedirections bounds the "!" nesting depth. Every redirection opens a
// new nested path, so the count of "!" tokens is the recursion depth.
func validateRedirections(tokens []tokenizer.Token, limit int) error {
	count := 0
	for _, tok := range tokens {
		if tok.Type == tokenizer.EXCLAMATION {
			count++
			if count > limit {
				return cmn.NewParseError(cmn.ErrNestingTooDeep, tok, "more than %d redirections", limit)
			}
		}
	}
	return nil
}

// Execute receives a slice of tokenizer.Token, performs structural validation
// and returns the tokens without the trailing EOF token.
func Execute(tokens []tokenizer.Token, opts cmn.Options) ([]tokenizer.Token, error) {
	if n := len(tokens); n > 0 && tokens[n-1].Type == tokenizer.EOF {
		tokens = tokens[:n-1]
	}

	if err := validateEnvelope(tokens); err != nil {
		return tokens, err
	}
	if err := validateTrailing(tokens); err != nil {
		return tokens, err
	}
	if err := validateCharacters(tokens); err != nil {
		return tokens, err
	}
	if err := validateParentheses(tokens); err != nil {
		return tokens, err
	}
	if err := validateBrackets(tokens); err != nil {
		return tokens, err
	}
	if err := validateRedirections(tokens, opts.MaxRedirections); err != nil {
		return tokens, err
	}

	return tokens, nil
}

func first(tokens []tokenizer.Token) tokenizer.Token {
	return at(tokens, 0)
}

func at(tokens []tokenizer.Token, i int) tokenizer.Token {
	if i < len(tokens) {
		return tokens[i]
	}
	if len(tokens) > 0 {
		last := tokens[len(tokens)-1]
		last.Position.Column += len([]rune(last.Value))
		last.Position.Offset += len(last.Value)
		return tokenizer.Token{Type: tokenizer.EOF, Position: last.Position}
	}
	return tokenizer.Token{Type: tokenizer.EOF, Position: tokenizer.Position{Line: 1, Column: 1}}
}
