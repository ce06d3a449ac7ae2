// Package table renders rows of heterogeneous cells as aligned plain text.
package table

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

const columnSeparator = "  "

// Table is an append-only list of rows. Row 0 is conventionally the header.
// Column widths track the widest cell appended so far. A Table is not safe
// for concurrent use.
type Table struct {
	rows   [][]any
	widths []int
}

// New creates a table, seeding it with header when one is given.
func New(header ...any) *Table {
	t := &Table{}
	if len(header) > 0 {
		t.Append(header...)
	}
	return t
}

// Append adds a row and widens its columns as needed. The row slice is
// copied.
func (t *Table) Append(row ...any) {
	for i, cell := range row {
		size := utf8.RuneCountInString(Display(cell))
		if i >= len(t.widths) {
			t.widths = append(t.widths, make([]int, i+1-len(t.widths))...)
		}
		if size > t.widths[i] {
			t.widths[i] = size
		}
	}

	t.rows = append(t.rows, append([]any(nil), row...))
}

// Len is the number of rows, header included.
func (t *Table) Len() int {
	return len(t.rows)
}

// Width is the current width of column col; unseen columns are 0 wide.
func (t *Table) Width(col int) int {
	if col < 0 || col >= len(t.widths) {
		return 0
	}
	return t.widths[col]
}

// Rows returns a copy of the appended rows.
func (t *Table) Rows() [][]any {
	rows := make([][]any, len(t.rows))
	for i, row := range t.rows {
		rows[i] = append([]any(nil), row...)
	}
	return rows
}

// AlignRight reports whether a cell is numeric and therefore right-aligned.
func AlignRight(cell any) bool {
	switch cell.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, Float, Percentage:
		return true
	default:
		return false
	}
}

// Display is the text a cell renders as.
func Display(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case Percentage:
		return v.String()
	case Float:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// alignments takes every column's alignment from the first data row. Columns
// that row does not reach align left. Mixed-kind columns are not supported.
func (t *Table) alignments() []bool {
	right := make([]bool, len(t.widths))
	if len(t.rows) < 2 {
		return right
	}
	for i, cell := range t.rows[1] {
		right[i] = AlignRight(cell)
	}
	return right
}

func (t *Table) String() string {
	var b strings.Builder
	right := t.alignments()

	for _, row := range t.rows {
		for i, cell := range row {
			text := Display(cell)
			pad := t.widths[i] - utf8.RuneCountInString(text)
			if right[i] {
				b.WriteString(strings.Repeat(" ", pad))
				b.WriteString(text)
			} else {
				b.WriteString(text)
				b.WriteString(strings.Repeat(" ", pad))
			}
			b.WriteString(columnSeparator)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Render is String under the name the report uses.
func (t *Table) Render() string {
	return t.String()
}

// WriteTo writes the rendered table to w.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, t.String())
	return int64(n), err
}
