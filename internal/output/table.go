package output

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Align is a column alignment.
type Align int

// Column alignments.
const (
	AlignLeft Align = iota
	AlignRight
)

// Table renders rows in aligned columns.
type Table struct {
	headers []string
	align   []Align
	rows    [][]string
	sep     string
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, sep: "  "}
}

// SetAlign sets the alignment of column i.
func (t *Table) SetAlign(i int, a Align) {
	for len(t.align) <= i {
		t.align = append(t.align, AlignLeft)
	}
	t.align[i] = a
}

// AddRow appends a row. Short rows are padded with empty cells.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Render writes the table to w. Widths are measured in runes.
func (t *Table) Render(w io.Writer) error {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return nil
	}
	widths := t.widths()

	var sb strings.Builder
	if len(t.headers) > 0 {
		t.writeRow(&sb, t.headers, widths)
		rule := make([]string, len(widths))
		for i, n := range widths {
			rule[i] = strings.Repeat("-", n)
		}
		t.writeRow(&sb, rule, widths)
	}
	for _, row := range t.rows {
		t.writeRow(&sb, row, widths)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// String returns the rendered table.
func (t *Table) String() string {
	var sb strings.Builder
	_ = t.Render(&sb)
	return sb.String()
}

func (t *Table) widths() []int {
	n := len(t.headers)
	for _, row := range t.rows {
		n = max(n, len(row))
	}
	widths := make([]int, n)
	for _, row := range append([][]string{t.headers}, t.rows...) {
		for i, cell := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}
	return widths
}

func (t *Table) writeRow(sb *strings.Builder, cells []string, widths []int) {
	parts := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := strings.Repeat(" ", width-utf8.RuneCountInString(cell))
		if i < len(t.align) && t.align[i] == AlignRight {
			parts[i] = pad + cell
		} else {
			parts[i] = cell + pad
		}
	}
	sb.WriteString(strings.TrimRight(strings.Join(parts, t.sep), " "))
	sb.WriteByte('\n')
}
