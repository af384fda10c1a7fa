package tags

// Tags is a sorted list of unique, lowercase tag names.
//
// Run Fix() after building one by hand, everything in this package
// assumes its already been done.
type Tags []string

// type trTag struct {{{

// Contains tags for use within a TagRule.
//
// Mainly these tags also have flags.
type trTag struct {
	tag string

	// Flag to specify specifically what type of match this tag
	// is to be used for.
	//
	// These are the trX constants, currently trAny, trAll and trNone.
	flag int
} // }}}

type trTags []trTag

// Tag rule constants used in trTag if the rule should apply or not.
const (
	trfAny  = 1 << iota
	trfAll  = 1 << iota
	trfNone = 1 << iota
)

// type TagRule struct {{{

type TagRule struct {
	// The tag to give if this rule applies.
	Tag string

	// The actual tags to match against to see if this rule applies or not.
	trTags trTags

	// Optional expression rule, evaluated against the full tag list
	// and ANDed with the tag matches above.
	expr string

	// Small bool flags that help us make decisions quicker when matching.
	hasAny  bool
	hasAll  bool
	hasNone bool
} // }}}

type TagRules []TagRule
