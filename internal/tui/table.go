package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table writes fixed-width columns. Widths grow to fit the widest cell.
type Table struct {
	w       io.Writer
	styles  *OutputStyles
	headers []string
	rows    [][]string
	// styled holds an optional style per row.
	styled map[int]lipgloss.Style
}

// NewTable creates a table with headers.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{w: w, styles: NewOutputStyles(), headers: headers, styled: map[int]lipgloss.Style{}}
}

// AddRow appends a row.
func (t *Table) AddRow(values ...string) {
	t.rows = append(t.rows, values)
}

// AddStyledRow appends a row rendered with style.
func (t *Table) AddStyledRow(style lipgloss.Style, values ...string) {
	t.styled[len(t.rows)] = style
	t.rows = append(t.rows, values)
}

// Render writes the header and every row.
func (t *Table) Render() {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i := range widths {
			if i < len(row) && lipgloss.Width(row[i]) > widths[i] {
				widths[i] = lipgloss.Width(row[i])
			}
		}
	}

	_, _ = fmt.Fprintln(t.w, t.styles.Header.Render(t.line(t.headers, widths)))
	for i, row := range t.rows {
		line := t.line(row, widths)
		if style, ok := t.styled[i]; ok {
			line = style.Render(line)
		}
		_, _ = fmt.Fprintln(t.w, line)
	}
}

func (t *Table) line(values []string, widths []int) string {
	cells := make([]string, len(widths))
	for i, w := range widths {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		cells[i] = v + strings.Repeat(" ", w-lipgloss.Width(v))
	}
	return strings.TrimRight(strings.Join(cells, "  "), " ")
}
