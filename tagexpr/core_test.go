package tagexpr

import (
	"errors"
	"strings"
	"testing"
)

// func TestEvaluateSingle {{{

func TestEvaluateSingle(t *testing.T) {
	res, err := Evaluate("a", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Evaluate(a): %s", err)
	}

	if !res {
		t.Fatal("a not in {a, b}?")
	}

	res, err = Evaluate("a", []string{"b", "c"})
	if err != nil {
		t.Fatalf("Evaluate(a): %s", err)
	}

	if res {
		t.Fatal("a in {b, c}?")
	}

	// Case matters.
	res, err = Evaluate("Admin", []string{"admin"})
	if err != nil {
		t.Fatalf("Evaluate(Admin): %s", err)
	}

	if res {
		t.Fatal("Admin matched admin?")
	}

	// Duplicates in the value list should change nothing.
	res, err = Evaluate("a", []string{"a", "a", "a"})
	if err != nil {
		t.Fatalf("Evaluate(a): %s", err)
	}

	if !res {
		t.Fatal("a not in {a, a, a}?")
	}
} // }}}

// func TestEvaluateRepeat {{{

// Same rule, same values, same answer, every time.
func TestEvaluateRepeat(t *testing.T) {
	vals := []string{"admin", "active"}

	for i := 0; i < 50; i++ {
		res, err := Evaluate("(admin|guest)&active", vals)
		if err != nil {
			t.Fatalf("round %d: %s", i, err)
		}

		if !res {
			t.Fatalf("round %d: false?", i)
		}
	}
} // }}}

// func TestEvaluateOperators {{{

func TestEvaluateOperators(t *testing.T) {
	ev := func(rule string, vals ...string) bool {
		res, err := Evaluate(rule, vals)
		if err != nil {
			t.Fatalf("Evaluate(%q): %s", rule, err)
		}

		return res
	}

	// The three OR spellings are the same operator.
	if !ev("a|b", "b") {
		t.Fatal("a|b")
	}

	if !ev("a,b", "b") {
		t.Fatal("a,b")
	}

	if !ev("a or b", "b") {
		t.Fatal("a or b")
	}

	// Both AND spellings.
	if !ev("a&b", "a", "b") {
		t.Fatal("a&b")
	}

	if !ev("a and b", "a", "b") {
		t.Fatal("a and b")
	}

	if ev("a&b", "a") {
		t.Fatal("a&b with only a")
	}

	// Both NOT spellings.
	if ev("!a", "a") {
		t.Fatal("!a with a")
	}

	if !ev("not a", "b") {
		t.Fatal("not a with b")
	}

	// Mixed symbolic and keyword forms in one rule.
	if !ev("admin & not internal", "admin") {
		t.Fatal("mixed forms")
	}

	if !ev("staff and not contractor", "staff") {
		t.Fatal("keyword forms")
	}
} // }}}

// func TestEvaluatePrecedence {{{

func TestEvaluatePrecedence(t *testing.T) {
	ev := func(rule string, vals ...string) bool {
		res, err := Evaluate(rule, vals)
		if err != nil {
			t.Fatalf("Evaluate(%q): %s", rule, err)
		}

		return res
	}

	// OR binds loosest, so this is (a&b)|c.
	if !ev("a&b|c", "c") {
		t.Fatal("a&b|c with c")
	}

	// Same thing from the other side, a|(b&c).
	if !ev("a|b&c", "a") {
		t.Fatal("a|b&c with a")
	}

	// NOT binds tighter than AND, !a&b is (!a)&b.
	if !ev("!a&b", "b") {
		t.Fatal("!a&b with b")
	}

	if ev("!a&b", "a", "b") {
		t.Fatal("!a&b with a b")
	}

	// Grouping overrides all of it.
	if ev("(a|b)&c", "a") {
		t.Fatal("(a|b)&c with a")
	}

	if !ev("(a|b)&c", "b", "c") {
		t.Fatal("(a|b)&c with b c")
	}

	// Left-associative chains.
	if !ev("a,b,c,d", "d") {
		t.Fatal("a,b,c,d with d")
	}

	if !ev("a&b&c", "a", "b", "c") {
		t.Fatal("a&b&c")
	}
} // }}}

// func TestEvaluateNot {{{

func TestEvaluateNot(t *testing.T) {
	ev := func(rule string, vals ...string) bool {
		res, err := Evaluate(rule, vals)
		if err != nil {
			t.Fatalf("Evaluate(%q): %s", rule, err)
		}

		return res
	}

	// Double negation lands back where it started.
	if !ev("!!a", "a") {
		t.Fatal("!!a with a")
	}

	if ev("!!a") {
		t.Fatal("!!a with nothing")
	}

	// Stacked right-associative NOTs.
	if ev("!!!a", "a") {
		t.Fatal("!!!a with a")
	}

	// De Morgan, both directions, over every subset of {a, b}.
	sets := [][]string{
		{},
		{"a"},
		{"b"},
		{"a", "b"},
	}

	for _, vals := range sets {
		if ev("!(a&b)", vals...) != ev("!a|!b", vals...) {
			t.Fatalf("!(a&b) != !a|!b for %v", vals)
		}

		if ev("!(a|b)", vals...) != ev("!a&!b", vals...) {
			t.Fatalf("!(a|b) != !a&!b for %v", vals)
		}
	}
} // }}}

// func TestKeywordPrefixTags {{{

// Tags that merely start with (or contain) a keyword are still tags.
func TestKeywordPrefixTags(t *testing.T) {
	ev := func(rule string, vals ...string) bool {
		res, err := Evaluate(rule, vals)
		if err != nil {
			t.Fatalf("Evaluate(%q): %s", rule, err)
		}

		return res
	}

	if !ev("android", "android") {
		t.Fatal("android")
	}

	if ev("android", "roid") {
		t.Fatal("android split into and + roid?")
	}

	if !ev("orange|nothing", "nothing") {
		t.Fatal("orange|nothing")
	}

	if !ev("android & notify", "android", "notify") {
		t.Fatal("android & notify")
	}

	// Underscores and digits are identifier material too.
	if !ev("_private|v2_beta", "v2_beta") {
		t.Fatal("_private|v2_beta")
	}
} // }}}

// func TestEvaluateDepthLimit {{{

func TestEvaluateDepthLimit(t *testing.T) {
	nest := func(levels int) string {
		return strings.Repeat("(", levels) + "a" + strings.Repeat(")", levels)
	}

	// Right at the default limit is fine.
	if _, err := Evaluate(nest(DefaultMaxDepth), []string{"a"}); err != nil {
		t.Fatalf("depth %d: %s", DefaultMaxDepth, err)
	}

	// One past it is not.
	if _, err := Evaluate(nest(DefaultMaxDepth+1), []string{"a"}); err == nil {
		t.Fatalf("depth %d passed?", DefaultMaxDepth+1)
	}

	// Custom limit on a Matcher.
	m := Matcher{MaxDepth: 2}

	if _, err := m.Evaluate(nest(2), []string{"a"}); err != nil {
		t.Fatalf("custom depth 2: %s", err)
	}

	if _, err := m.Evaluate(nest(3), []string{"a"}); err == nil {
		t.Fatal("custom depth 3 passed?")
	}

	// Siblings do not stack, only simultaneous open groups count.
	if _, err := m.Evaluate("(a)&(b)&(c)", []string{"a"}); err != nil {
		t.Fatalf("sibling groups: %s", err)
	}
} // }}}

// func TestEvaluateLengthLimit {{{

func TestEvaluateLengthLimit(t *testing.T) {
	// A single tag exactly at the default cap is still a valid rule.
	exact := strings.Repeat("a", DefaultMaxLength)

	if _, err := Evaluate(exact, []string{}); err != nil {
		t.Fatalf("length %d: %s", DefaultMaxLength, err)
	}

	if _, err := Evaluate(exact+"a", []string{}); err == nil {
		t.Fatalf("length %d passed?", DefaultMaxLength+1)
	}

	// Custom cap.
	m := Matcher{MaxLength: 5}

	if _, err := m.Evaluate("a,b,c", []string{"b"}); err != nil {
		t.Fatalf("custom length 5: %s", err)
	}

	if _, err := m.Evaluate("a,b,cc", []string{"b"}); err == nil {
		t.Fatal("custom length 6 passed?")
	}
} // }}}

// func TestEvaluateErrors {{{

func TestEvaluateErrors(t *testing.T) {
	bad := func(rule string) *ExprError {
		res, err := Evaluate(rule, []string{"a"})
		if err == nil {
			t.Fatalf("Evaluate(%q) = %v, no error", rule, res)
		}

		// Every failure is an *ExprError, nothing else.
		var ee *ExprError
		if !errors.As(err, &ee) {
			t.Fatalf("Evaluate(%q): error type %T", rule, err)
		}

		return ee
	}

	bad("")
	bad("   ")
	bad("(a")
	bad("a)")
	bad("&a")
	bad("()")
	bad("a &")
	bad("a | | b")
	bad("not")
	bad("a b")
	bad("(a))")
	bad("#a")

	// Keywords can not stand in for tags.
	ee := bad("and")
	if !strings.Contains(ee.Reason, "and") {
		t.Fatalf("keyword error says: %s", ee.Reason)
	}

	bad("a & or")
	bad("not not")

	// Offsets should point at the problem.
	if ee := bad("a)"); ee.Pos != 1 {
		t.Fatalf("a) error at %d?", ee.Pos)
	}

	if ee := bad("a, ,b"); ee.Pos != 3 {
		t.Fatalf("a, ,b error at %d?", ee.Pos)
	}
} // }}}

// func TestEvaluateScenarios {{{

func TestEvaluateScenarios(t *testing.T) {
	ev := func(rule string, vals ...string) bool {
		res, err := Evaluate(rule, vals)
		if err != nil {
			t.Fatalf("Evaluate(%q): %s", rule, err)
		}

		return res
	}

	if !ev("admin&!internal", "admin") {
		t.Fatal("admin&!internal with admin")
	}

	if ev("admin&!internal", "admin", "internal") {
		t.Fatal("admin&!internal with admin internal")
	}

	if !ev("(admin|guest)&active", "guest", "active") {
		t.Fatal("(admin|guest)&active with guest active")
	}

	if ev("(admin|guest)&active", "guest") {
		t.Fatal("(admin|guest)&active with guest only")
	}
} // }}}

// func BenchmarkEvaluate {{{

func BenchmarkEvaluate(b *testing.B) {
	vals := []string{"admin", "active", "staff"}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		res, err := Evaluate("(admin|guest)&active&!internal", vals)
		if err != nil {
			b.Fatal(err)
		}

		if !res {
			b.Fatal("false")
		}
	}
} // }}}

// func BenchmarkEvaluateKeywords {{{

func BenchmarkEvaluateKeywords(b *testing.B) {
	vals := []string{"android", "notify"}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		res, err := Evaluate("android and notify and not internal", vals)
		if err != nil {
			b.Fatal(err)
		}

		if !res {
			b.Fatal("false")
		}
	}
} // }}}
