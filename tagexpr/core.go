package tagexpr

import (
	"fmt"
)

// func Evaluate {{{

// Evaluate runs the rule against the given tags with the default limits.
//
// See Matcher for the rule syntax. Duplicate tags in values are harmless.
func Evaluate(rule string, values []string) (bool, error) {
	return Matcher{}.Evaluate(rule, values)
} // }}}

// func Matcher.Evaluate {{{

// Evaluate parses the rule and evaluates it against the given tags.
//
// The returned error is always a *ExprError. A malformed rule is an
// error, never a false, so a caller gating on a rule can refuse rather
// than silently deny.
//
// Everything allocated here stays here. No caching, no globals, no I/O.
func (m Matcher) Evaluate(rule string, values []string) (bool, error) {
	maxLength := m.MaxLength
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	maxDepth := m.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	// Length gate comes first, before the rule gets looked at.
	if len(rule) > maxLength {
		return false, &ExprError{Reason: fmt.Sprintf("Rule length %d exceeds limit %d", len(rule), maxLength), Pos: maxLength}
	}

	toks, err := lex(rule)
	if err != nil {
		return false, err
	}

	// Only the end marker? Then the rule was empty or all whitespace.
	if len(toks) == 1 {
		return false, &ExprError{Reason: "Empty rule", Pos: 0}
	}

	p := &parser{toks: toks, maxDepth: maxDepth}

	root, err := p.parseOr()
	if err != nil {
		return false, err
	}

	// A complete expression has to consume everything. "a)" or "a b"
	// leaves leftovers, and leftovers mean the user meant something
	// other than what parsed.
	if tok := p.cur(); tok.kind != tkEnd {
		return false, &ExprError{Reason: fmt.Sprintf("Trailing token %q after expression", tok.text), Pos: tok.pos}
	}

	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}

	return root.eval(set), nil
} // }}}

// func tagNode.eval {{{

func (n tagNode) eval(set map[string]struct{}) bool {
	_, ok := set[n.name]
	return ok
} // }}}

// func andNode.eval {{{

func (n andNode) eval(set map[string]struct{}) bool {
	return n.left.eval(set) && n.right.eval(set)
} // }}}

// func orNode.eval {{{

func (n orNode) eval(set map[string]struct{}) bool {
	return n.left.eval(set) || n.right.eval(set)
} // }}}

// func notNode.eval {{{

func (n notNode) eval(set map[string]struct{}) bool {
	return !n.operand.eval(set)
} // }}}
