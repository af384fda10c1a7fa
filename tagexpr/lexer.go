package tagexpr

import (
	"fmt"
)

// Keyword operators.
//
// These are only recognized when they stand alone as a whole identifier.
// A tag named "android" scans as one identifier first and never gets
// split into "and" + "roid".
var keywords = map[string]int{
	"and": tkAnd,
	"or":  tkOr,
	"not": tkNot,
}

// func isIdentStart {{{

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
} // }}}

// func isIdentPart {{{

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
} // }}}

// func lex {{{

// Scans the whole rule into tokens up front.
//
// Identifiers are consumed greedily (maximal munch) and only then
// checked against the keyword table, so keyword-vs-tag can never
// misfire on a prefix.
//
// The returned slice always ends with a tkEnd token.
func lex(rule string) ([]token, *ExprError) {
	// Small rules are the normal case, so one extra slot for tkEnd
	// usually avoids a regrow.
	toks := make([]token, 0, 8)

	i := 0
	for i < len(rule) {
		c := rule[i]

		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			// Whitespace means nothing between tokens.
			i++
		case c == ',' || c == '|':
			toks = append(toks, token{kind: tkOr, text: string(c), pos: i})
			i++
		case c == '&':
			toks = append(toks, token{kind: tkAnd, text: string(c), pos: i})
			i++
		case c == '!':
			toks = append(toks, token{kind: tkNot, text: string(c), pos: i})
			i++
		case c == '(':
			toks = append(toks, token{kind: tkLParen, text: string(c), pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tkRParen, text: string(c), pos: i})
			i++
		case isIdentStart(c):
			start := i
			for i < len(rule) && isIdentPart(rule[i]) {
				i++
			}

			word := rule[start:i]

			// Whole word scanned, now decide keyword or tag.
			if kind, ok := keywords[word]; ok {
				toks = append(toks, token{kind: kind, text: word, pos: start})
			} else {
				toks = append(toks, token{kind: tkTag, text: word, pos: start})
			}
		default:
			return nil, &ExprError{Reason: fmt.Sprintf("Unexpected character %q", string(c)), Pos: i}
		}
	}

	toks = append(toks, token{kind: tkEnd, pos: len(rule)})

	return toks, nil
} // }}}
