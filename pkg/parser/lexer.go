package parser

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "name"
	case tokInt:
		return "integer"
	default:
		return "punctuation"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return t.kind.String()
	}

	return fmt.Sprintf("%q", t.text)
}

const punctuation = "(){},:=*+-"

// lex splits text into tokens. Positions are byte offsets.
func lex(text string) ([]token, error) {
	var tokens []token

	for pos := 0; pos < len(text); {
		r, width := utf8.DecodeRuneInString(text[pos:])

		switch {
		case unicode.IsSpace(r):
			pos += width
		case r < utf8.RuneSelf && containsByte(punctuation, byte(r)):
			tokens = append(tokens, token{kind: tokPunct, text: text[pos : pos+1], pos: pos})
			pos++
		case isDigit(r):
			end := scan(text, pos, isDigit)
			tokens = append(tokens, token{kind: tokInt, text: text[pos:end], pos: pos})
			pos = end
		case r == '_' || unicode.IsLetter(r):
			end := scan(text, pos, isIdentRune)
			tokens = append(tokens, token{kind: tokIdent, text: text[pos:end], pos: pos})
			pos = end
		default:
			return nil, syntaxError(pos, "unexpected character %q", r)
		}
	}

	return append(tokens, token{kind: tokEOF, pos: len(text)}), nil
}

func scan(text string, pos int, accept func(rune) bool) int {
	for pos < len(text) {
		r, width := utf8.DecodeRuneInString(text[pos:])
		if !accept(r) {
			break
		}

		pos += width
	}

	return pos
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func containsByte(set string, b byte) bool {
	for i := range len(set) {
		if set[i] == b {
			return true
		}
	}

	return false
}
