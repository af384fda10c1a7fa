package tagexpr

import (
	"fmt"
)

// type parser struct {{{

// Walks the token stream once, front to back, building the tree.
//
// Precedence from loosest to tightest: OR, AND, NOT, primary. Each
// level hands anything tighter down to the next function, which is all
// a recursive descent parser really is.
type parser struct {
	toks []token
	loc  int

	// Open groups right now, and the most we will ever allow.
	depth    int
	maxDepth int
} // }}}

// func parser.cur {{{

// The token under the cursor. Safe to call forever thanks to tkEnd.
func (p *parser) cur() token {
	if p.loc >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}

	return p.toks[p.loc]
} // }}}

// func parser.advance {{{

func (p *parser) advance() {
	if p.loc < len(p.toks) {
		p.loc++
	}
} // }}}

// func parser.parseOr {{{

// parseOr = parseAnd ( OR parseAnd )*
//
// Left-associative, "a,b,c" builds ((a|b)|c).
func (p *parser) parseOr() (node, *ExprError) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.cur().kind == tkOr {
		p.advance()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = orNode{left: left, right: right}
	}

	return left, nil
} // }}}

// func parser.parseAnd {{{

// parseAnd = parseNot ( AND parseNot )*
func (p *parser) parseAnd() (node, *ExprError) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.cur().kind == tkAnd {
		p.advance()

		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		left = andNode{left: left, right: right}
	}

	return left, nil
} // }}}

// func parser.parseNot {{{

// parseNot = NOT parseNot | parsePrimary
//
// Right-associative by the recursion itself, so "!!!a" is fine.
func (p *parser) parseNot() (node, *ExprError) {
	if p.cur().kind == tkNot {
		p.advance()

		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		return notNode{operand: operand}, nil
	}

	return p.parsePrimary()
} // }}}

// func parser.parsePrimary {{{

// parsePrimary = '(' parseOr ')' | TAG
//
// The depth counter moves here and only here. It is checked the moment
// a group opens, so a rule thats nested too deep fails before we sink
// any further into it.
func (p *parser) parsePrimary() (node, *ExprError) {
	tok := p.cur()

	switch tok.kind {
	case tkTag:
		p.advance()
		return tagNode{name: tok.text}, nil

	case tkLParen:
		p.depth++
		if p.depth > p.maxDepth {
			return nil, &ExprError{Reason: fmt.Sprintf("Group nesting exceeds limit %d", p.maxDepth), Pos: tok.pos}
		}

		p.advance()

		// A group with nothing in it is its own mistake, worth its
		// own message rather than a confusing "Unexpected token".
		if p.cur().kind == tkRParen {
			return nil, &ExprError{Reason: "Empty group", Pos: tok.pos}
		}

		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		if p.cur().kind != tkRParen {
			return nil, &ExprError{Reason: "Unterminated group", Pos: tok.pos}
		}

		p.advance()
		p.depth--

		return inner, nil

	case tkEnd:
		return nil, &ExprError{Reason: "Unexpected end of rule", Pos: tok.pos}

	case tkAnd, tkOr, tkNot:
		// A keyword operator sitting where a tag belongs gets called
		// out by name. Someone trying to use "and" as a tag should be
		// told that, not handed a generic syntax error.
		if isIdentStart(tok.text[0]) {
			return nil, &ExprError{Reason: fmt.Sprintf("Reserved keyword %q can not be a tag", tok.text), Pos: tok.pos}
		}
	}

	return nil, &ExprError{Reason: fmt.Sprintf("Unexpected token %q", tok.text), Pos: tok.pos}
} // }}}
