package tags

// This contains all the functions and types needed to load tag rules from a YAML/JSON configuration file.

// type ConfTagRule struct {{{

// Tag rules allow you to define rules that automatically add other tags.
//
// Lets say requests carry role tags, and you want one simple tag for tag
// matching that says "this caller is staff of some kind" -
//
//   tagrule:
//     tag: staff
//     any:
//       - admin
//       - editor
//       - support
//
// Now a tag only for fully verified operators (all checks present) -
//
//   tagrule:
//     tag: operator
//     all:
//       - admin
//       - mfa
//
// And one that must exclude external identities entirely -
//
//   tagrule:
//     tag: trusted
//     none: [ guest, contractor, external ]
//
// For anything the three lists can not say on their own there is "expr",
// a full expression over the same tags -
//
//   tagrule:
//     tag: reviewer
//     expr: (editor|admin) & !suspended
//
// Tag rules support any combination of "any", "all", "none" and/or "expr"
// (though you must have 1 of them for a tag rule to be valid)
//
//  - "any" tag means you need at least 1 of the tags within to match.
//  - "all" means you need all of the tags within to match.
//  - "none" means you can not have any of the tags within to match.
//  - "expr" is evaluated against the full tag list and must come out true.
//
// Everything set on one rule has to agree for the rule to match.
//
// Note that tags are matched lowercase, so expressions should be written
// in lowercase as well.
//
// Tag rules can rely on tags given by other tag rules as well, but in this situation the order of the tag rules is important.
//
// Tag rules in ConfTagRules are run in order so that earlier rules can give tags that later rules can use themselves.
//
// Multiple tag rules can give the same tag.
type ConfTagRule struct {
	Tag  string   `yaml:"tag" json:"tag"`
	Any  []string `yaml:"any" json:"any"`
	All  []string `yaml:"all" json:"all"`
	None []string `yaml:"none" json:"none"`
	Expr string   `yaml:"expr" json:"expr"`
} // }}}

type ConfTagRules []ConfTagRule

// func ConfTagRule.Make {{{

// Converts the configuration form into a usable TagRule.
func (ctr *ConfTagRule) Make() (TagRule, error) {
	return MakeTagRule(ctr.Tag, Tags(ctr.Any), Tags(ctr.All), Tags(ctr.None), ctr.Expr)
} // }}}

// func ConfTagRules.Make {{{

// Converts a whole list of configured rules, keeping their order.
func (ctrs ConfTagRules) Make() (TagRules, error) {
	trs := make(TagRules, 0, len(ctrs))

	for i := range ctrs {
		tr, err := ctrs[i].Make()
		if err != nil {
			return trs, err
		}

		trs = append(trs, tr)
	}

	return trs, nil
} // }}}
