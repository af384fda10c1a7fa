// Renders rows of values as ASCII or Markdown tables.
package table

// Align says which side of the column a cell hugs.
//
// The zero value is AlignLeft, which for a Column also means "pick for
// me" - numeric columns land right, everything else left.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// type Column struct {{{

// Column describes one column of output.
//
// Only Name is required. Type steers the default alignment, Format is
// handed to fmt.Sprintf when set, and Align forces a side regardless of
// Type.
type Column struct {
	Name string

	// One of "string", "int", "float" or "bool". Empty means "string".
	//
	// This is advisory, a cell of any Go type renders fine in any
	// column, Type only picks the default alignment.
	Type string

	// An fmt verb for the cells, "%.2f" and friends. Empty renders
	// with %v. A verb that does not fit the value falls back to %v
	// rather than leaking "%!d(string=x)" into the output.
	Format string

	Align Align
} // }}}
