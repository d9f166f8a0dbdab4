// Package layout renders tabular document sections onto fixed-geometry
// PDF pages. It does its own word wrapping, row sizing and page
// breaking; nothing here relies on the PDF engine's auto layout.
package layout

import (
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Measure returns the rendered width of text in document units under
// the current font. gofpdf's GetStringWidth satisfies it.
type Measure func(text string) float64

// Column describes one table column: a fixed width, a header label and
// the horizontal alignment of its body cells ("L", "C" or "R").
type Column struct {
	Width float64
	Label string
	Align string
}

// Cell is one body cell. Align overrides the column alignment when set.
type Cell struct {
	Text  string
	Align string
}

// Row is an ordered list of cells matching the table's columns.
type Row []Cell

// Table is a transient grid renderer. Column widths must sum to the
// document's printable width; composers define them as constants.
type Table struct {
	Cols       []Column
	LineHeight float64
	Pad        float64
	Left       float64
	Top        float64 // y where the table resumes after a page break
	Bottom     float64 // printable-area bottom bound
	FontFamily string
	FontSize   float64
}

// Width returns the sum of all column widths.
func (t *Table) Width() float64 {
	var w float64
	for _, col := range t.Cols {
		w += col.Width
	}
	return w
}

// WrapText splits text on explicit newlines, then greedily word-wraps
// each paragraph into maxWidth. An empty paragraph still counts as one
// line, and a single word wider than maxWidth gets its own line, so
// the result is never empty.
func WrapText(text string, maxWidth float64, measure Measure) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := words[0]
		for _, word := range words[1:] {
			candidate := current + " " + word
			if measure(candidate) <= maxWidth {
				current = candidate
				continue
			}
			lines = append(lines, current)
			current = word
		}
		lines = append(lines, current)
	}
	return lines
}

// RowLines returns the wrapped line count of each cell in row.
func (t *Table) RowLines(row Row, measure Measure) []int {
	counts := make([]int, len(t.Cols))
	for i := range t.Cols {
		text := ""
		if i < len(row) {
			text = row[i].Text
		}
		counts[i] = len(WrapText(text, t.Cols[i].Width-2*t.Pad, measure))
	}
	return counts
}

// RowHeight computes the rendered height of row: the tallest cell's
// line count times the line height, never less than one line height.
func (t *Table) RowHeight(row Row, measure Measure) float64 {
	max := 1
	for _, n := range t.RowLines(row, measure) {
		if n > max {
			max = n
		}
	}
	return float64(max) * t.LineHeight
}

// DrawHeader draws the filled header row at the current cursor.
func (t *Table) DrawHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont(t.FontFamily, "B", t.FontSize)
	pdf.SetFillColor(220, 220, 220)
	y := pdf.GetY()
	x := t.Left
	for _, col := range t.Cols {
		pdf.SetXY(x, y)
		pdf.CellFormat(col.Width, t.LineHeight, col.Label, "1", 0, "C", true, 0, "")
		x += col.Width
	}
	pdf.SetY(y + t.LineHeight)
	pdf.SetFont(t.FontFamily, "", t.FontSize)
}

// Render draws the header followed by every row, breaking to a new
// page (with the header redrawn identically) whenever a row would
// cross the bottom bound. Cell text starts at the cell's top-left;
// shorter cells leave blank space below their last line, and every
// cell in a row shares the row's border height.
func (t *Table) Render(pdf *gofpdf.Fpdf, rows []Row) {
	pdf.SetFont(t.FontFamily, "", t.FontSize)
	measure := func(s string) float64 { return pdf.GetStringWidth(s) }

	t.DrawHeader(pdf)
	for _, row := range rows {
		height := t.RowHeight(row, measure)
		if pdf.GetY()+height > t.Bottom {
			pdf.AddPage()
			pdf.SetY(t.Top)
			t.DrawHeader(pdf)
		}

		y := pdf.GetY()
		x := t.Left
		for i, col := range t.Cols {
			var cell Cell
			if i < len(row) {
				cell = row[i]
			}
			align := cell.Align
			if align == "" {
				align = col.Align
			}
			if align == "" {
				align = "L"
			}

			for j, line := range WrapText(cell.Text, col.Width-2*t.Pad, measure) {
				pdf.SetXY(x+t.Pad, y+float64(j)*t.LineHeight)
				pdf.CellFormat(col.Width-2*t.Pad, t.LineHeight, line, "", 0, align, false, 0, "")
			}
			pdf.Rect(x, y, col.Width, height, "D")
			x += col.Width
		}
		pdf.SetY(y + height)
	}
}
