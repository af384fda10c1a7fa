package table

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// func RenderASCII {{{

// RenderASCII renders the rows as a bordered plain-text table -
//
//	+------+-----+
//	| Name | Age |
//	+------+-----+
//	| bob  |  42 |
//	+------+-----+
//
// Every column is as wide as its widest cell (header included), with a
// space of padding inside the pipes. Rows shorter than the column list
// get empty cells, extra cells beyond it are dropped, nil cells render
// empty.
//
// No columns renders to an empty string.
func RenderASCII(cols []Column, rows [][]any) string {
	if len(cols) == 0 {
		return ""
	}

	cells, widths := layout(cols, rows)

	var sb strings.Builder

	border := func() {
		for _, w := range widths {
			sb.WriteByte('+')
			sb.WriteString(strings.Repeat("-", w+2))
		}

		sb.WriteString("+\n")
	}

	line := func(row []string, aligns []Align) {
		for i, w := range widths {
			sb.WriteString("| ")
			sb.WriteString(pad(row[i], w, aligns[i]))
			sb.WriteByte(' ')
		}

		sb.WriteString("|\n")
	}

	heads := make([]string, len(cols))
	hAligns := make([]Align, len(cols))
	cAligns := make([]Align, len(cols))

	for i, c := range cols {
		heads[i] = c.Name

		// Headers always sit left, only the cells follow the column
		// alignment.
		hAligns[i] = AlignLeft
		cAligns[i] = c.align()
	}

	border()
	line(heads, hAligns)
	border()

	for _, row := range cells {
		line(row, cAligns)
	}

	border()

	return sb.String()
} // }}}

// func RenderMarkdown {{{

// RenderMarkdown renders the rows as a pipe table -
//
//	| Name | Age |
//	| :--- | --: |
//	| bob  |  42 |
//
// The separator row carries the alignment markers, ":---" left, "---:"
// right, ":---:" center. Cells are padded to the column width so the
// source reads as cleanly as the rendered result, and any "|" inside a
// cell is escaped so it can not split the row.
func RenderMarkdown(cols []Column, rows [][]any) string {
	if len(cols) == 0 {
		return ""
	}

	cells, widths := layout(cols, rows)

	heads := make([]string, len(cols))
	hAligns := make([]Align, len(cols))
	cAligns := make([]Align, len(cols))

	for i, c := range cols {
		heads[i] = escapePipes(c.Name)
		hAligns[i] = AlignLeft
		cAligns[i] = c.align()

		// The separator needs room for its dashes and colons, and
		// escaping can grow a cell, so re-measure before padding.
		if w := minMarker(cAligns[i]); w > widths[i] {
			widths[i] = w
		}

		if w := utf8.RuneCountInString(heads[i]); w > widths[i] {
			widths[i] = w
		}
	}

	for _, row := range cells {
		for i := range row {
			row[i] = escapePipes(row[i])

			if w := utf8.RuneCountInString(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder

	line := func(row []string, aligns []Align) {
		for i, w := range widths {
			sb.WriteString("| ")
			sb.WriteString(pad(row[i], w, aligns[i]))
			sb.WriteByte(' ')
		}

		sb.WriteString("|\n")
	}

	seps := make([]string, len(cols))
	for i := range cols {
		seps[i] = marker(widths[i], cAligns[i])
	}

	line(heads, hAligns)
	line(seps, hAligns)

	for _, row := range cells {
		line(row, cAligns)
	}

	return sb.String()
} // }}}

// func Column.align {{{

// The alignment actually used for the cells.
func (c Column) align() Align {
	if c.Align != AlignLeft {
		return c.Align
	}

	switch c.Type {
	case "int", "float":
		return AlignRight
	}

	return AlignLeft
} // }}}

// func layout {{{

// Formats every cell and measures every column.
//
// The returned rows are rectangular, exactly one string per column.
func layout(cols []Column, rows [][]any) ([][]string, []int) {
	widths := make([]int, len(cols))

	for i, c := range cols {
		widths[i] = utf8.RuneCountInString(c.Name)
	}

	cells := make([][]string, 0, len(rows))

	for _, row := range rows {
		line := make([]string, len(cols))

		for i, c := range cols {
			if i >= len(row) {
				break
			}

			line[i] = formatCell(c, row[i])

			if w := utf8.RuneCountInString(line[i]); w > widths[i] {
				widths[i] = w
			}
		}

		cells = append(cells, line)
	}

	return cells, widths
} // }}}

// func formatCell {{{

func formatCell(c Column, v any) string {
	if v == nil {
		return ""
	}

	if c.Format != "" {
		s := fmt.Sprintf(c.Format, v)

		// A verb/value mismatch shows up as a "%!" marker in the
		// output. Plain %v can render anything, so use that instead.
		if !strings.Contains(s, "%!") {
			return s
		}
	}

	return fmt.Sprint(v)
} // }}}

// func pad {{{

func pad(s string, w int, a Align) string {
	gap := w - utf8.RuneCountInString(s)
	if gap <= 0 {
		return s
	}

	switch a {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	}

	return s + strings.Repeat(" ", gap)
} // }}}

// func marker {{{

// The separator cell for a Markdown column, ":---" and friends, padded
// with dashes out to the column width.
func marker(w int, a Align) string {
	if m := minMarker(a); w < m {
		w = m
	}

	switch a {
	case AlignRight:
		return strings.Repeat("-", w-1) + ":"
	case AlignCenter:
		return ":" + strings.Repeat("-", w-2) + ":"
	}

	return ":" + strings.Repeat("-", w-1)
} // }}}

// func minMarker {{{

// Markdown wants at least three dashes to call it a table, plus the
// colons the alignment needs.
func minMarker(a Align) int {
	if a == AlignCenter {
		return 5
	}

	return 4
} // }}}

// func escapePipes {{{

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
} // }}}
