// Package report renders results as aligned text tables for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
)

// Align is a column alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Table is a titled grid of cells. Widths are measured in terminal cells so
// wide runes line up.
type Table struct {
	Title   string
	Headers []string
	Aligns  []Align
	Rows    [][]string
	// Highlight is the row index drawn in the highlight style, or -1.
	Highlight int
}

// NewTable creates a table with left-aligned columns and no highlight.
func NewTable(title string, headers ...string) *Table {
	return &Table{
		Title:     title,
		Headers:   headers,
		Aligns:    make([]Align, len(headers)),
		Highlight: -1,
	}
}

// AddRow appends a row. Missing cells are blank; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.Headers))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// AlignRight right-aligns the given columns.
func (t *Table) AlignRight(cols ...int) {
	for _, c := range cols {
		if c >= 0 && c < len(t.Aligns) {
			t.Aligns[c] = AlignRight
		}
	}
}

func (t *Table) widths() []int {
	w := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		w[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > w[i] {
				w[i] = cw
			}
		}
	}
	return w
}

func (t *Table) line(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if t.Aligns[i] == AlignRight {
			parts[i] = runewidth.FillLeft(cell, widths[i])
		} else {
			parts[i] = runewidth.FillRight(cell, widths[i])
		}
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

// Renderer writes tables, optionally with ANSI colour.
type Renderer struct {
	Color bool

	title     color.Style
	header    color.Style
	highlight color.Style
}

// NewRenderer returns a Renderer. With colour off the output is plain text.
func NewRenderer(useColor bool) *Renderer {
	return &Renderer{
		Color:     useColor,
		title:     color.New(color.OpBold),
		header:    color.New(color.FgCyan),
		highlight: color.New(color.FgGreen, color.OpBold),
	}
}

func (r *Renderer) paint(s color.Style, text string) string {
	if !r.Color {
		return text
	}
	return s.Sprint(text)
}

// Render writes t to w. Styling wraps whole padded lines so escape codes
// never count towards column widths.
func (r *Renderer) Render(w io.Writer, t *Table) error {
	widths := t.widths()
	var b strings.Builder
	if t.Title != "" {
		b.WriteString(r.paint(r.title, t.Title))
		b.WriteByte('\n')
	}
	head := t.line(t.Headers, widths)
	b.WriteString(r.paint(r.header, head))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("-", runewidth.StringWidth(head)))
	b.WriteByte('\n')
	for i, row := range t.Rows {
		text := t.line(row, widths)
		if i == t.Highlight {
			text = r.paint(r.highlight, text)
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Notice writes a highlighted one-paragraph message.
func (r *Renderer) Notice(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintln(w, r.paint(color.New(color.FgYellow), fmt.Sprintf(format, args...)))
	return err
}
