package tagexpr

import (
	"fmt"
)

// This contains the types shared between the lexer, parser and evaluator.

// Default limits applied by a zero Matcher.
//
// These exist so a rule coming from an untrusted place (user input, a
// request parameter, a database row) can not blow out memory or the stack.
const (
	DefaultMaxLength = 200
	DefaultMaxDepth  = 6
)

// Token kinds.
//
// tkEnd is always the last token the lexer emits, so the parser never has
// to bounds-check before looking at the current token.
const (
	tkTag = iota
	tkAnd
	tkOr
	tkNot
	tkLParen
	tkRParen
	tkEnd
)

// type token struct {{{

// A single lexical unit of a rule.
//
// For tkTag text is the identifier itself, for everything else it is the
// raw operator as written, which keeps error messages honest about what
// the user actually typed.
type token struct {
	kind int
	text string

	// Byte offset within the rule, for diagnostics.
	pos int
} // }}}

// type Matcher struct {{{

// Matcher evaluates boolean rules over tag names.
//
// A rule combines bare tag names with boolean operators -
//
//	admin & !internal
//	(admin | guest) & active
//	staff and not contractor
//
// Operators come in symbolic and keyword forms, freely mixable:
// "," and "|" and "or" all mean OR, "&" and "and" mean AND, "!" and
// "not" mean NOT. Parentheses group. Tag names are matched against the
// evaluation set by exact, case-sensitive string compare.
//
// The zero Matcher is ready to use and applies DefaultMaxLength and
// DefaultMaxDepth. Matchers hold no state, so one can be shared freely
// between goroutines.
type Matcher struct {
	// Longest rule accepted, in bytes. Checked before anything else.
	MaxLength int

	// How many groups can be open at once.
	MaxDepth int
} // }}}

// type ExprError struct {{{

// ExprError is the only error kind this package returns.
//
// A rule that fails to evaluate is always malformed input, never a
// system problem, so one kind with a reason and the byte offset of the
// offending spot covers every case.
type ExprError struct {
	Reason string
	Pos    int
} // }}}

// func ExprError.Error {{{

func (e *ExprError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Reason, e.Pos)
} // }}}

// The expression tree.
//
// The node set is closed: a rule only ever parses to these four shapes.
// eval doubles as the membership marker, nothing outside this package
// can implement it against an unexported interface.
type node interface {
	eval(set map[string]struct{}) bool
}

type tagNode struct {
	name string
}

type andNode struct {
	left  node
	right node
}

type orNode struct {
	left  node
	right node
}

type notNode struct {
	operand node
}
