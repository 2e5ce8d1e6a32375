package input

import (
	"strconv"
	"strings"
)

// TokenKind classifies one whitespace-separated word of a query.
type TokenKind int

const (
	// Word is free text passed to retrieval.
	Word TokenKind = iota
	// Filter is a recognised name:value token with a valid value.
	Filter
	// BadFilter is a recognised filter name whose value does not parse.
	// It stays in the free-text query.
	BadFilter
)

// Token is one word of the query input.
type Token struct {
	Text  string
	Kind  TokenKind
	Name  string // lower-cased filter name, set for Filter and BadFilter
	Value string
	Int   int // parsed value for year and k
}

// Tokenize splits a query on whitespace and recognises the subject:, year:
// and k: filters. Unknown names and empty values are plain words.
func Tokenize(query string) []Token {
	fields := strings.Fields(query)
	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, classify(f))
	}
	return tokens
}

func classify(text string) Token {
	tok := Token{Text: text, Kind: Word}
	name, value, ok := strings.Cut(text, ":")
	if !ok || value == "" {
		return tok
	}

	name = strings.ToLower(name)
	switch name {
	case "subject":
		tok.Kind = Filter
	case "year":
		n, err := strconv.Atoi(value)
		tok.Kind, tok.Int = filterKind(err == nil), n
	case "k":
		n, err := strconv.Atoi(value)
		tok.Kind, tok.Int = filterKind(err == nil && n > 0), n
	default:
		return tok
	}
	tok.Name, tok.Value = name, value
	return tok
}

func filterKind(valid bool) TokenKind {
	if valid {
		return Filter
	}
	return BadFilter
}
