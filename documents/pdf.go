package documents

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"tradedocs/layout"
)

// Fixed A4 portrait geometry shared by all variants. Column widths in
// the per-variant schemas must sum to printableWidth.
const (
	pageLeft       = 10.0
	pageTop        = 10.0
	printableWidth = 190.0
	pageBottom     = 282.0
	lineHeight     = 6.0
	cellPad        = 1.5
	fontFamily     = "Helvetica"
	bodyFontSize   = 10.0
)

func newDocPDF(doc Document) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Variant.Title(), false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(pageLeft, pageTop, pageLeft)
	pdf.AddPage()
	return pdf
}

// drawMasthead draws the company letterhead, document title, reference
// and date, and returns with the cursor below them.
func drawMasthead(pdf *gofpdf.Fpdf, doc Document, subtitle string) {
	pdf.SetY(pageTop)
	pdf.SetFont(fontFamily, "B", 14)
	pdf.CellFormat(0, 8, doc.CompanyName, "", 1, "C", false, 0, "")

	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, 9, doc.Variant.Title(), "", 1, "R", false, 0, "")
	if subtitle != "" {
		pdf.SetFont(fontFamily, "B", 11)
		pdf.CellFormat(0, 6, subtitle, "", 1, "R", false, 0, "")
	}
	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(0, 5, "Ref: "+doc.Reference, "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 5, "Date: "+doc.Date.Format("2006-01-02"), "", 1, "R", false, 0, "")
	pdf.Ln(4)
}

type addressBlock struct {
	Label string
	Text  string
}

// drawAddressBlocks lays the three party blocks side by side and moves
// the cursor below the tallest one.
func drawAddressBlocks(pdf *gofpdf.Fpdf, blocks [3]addressBlock) {
	const blockWidth = printableWidth / 3
	top := pdf.GetY()
	bottom := top

	for i, block := range blocks {
		x := pageLeft + float64(i)*blockWidth
		pdf.SetXY(x, top)
		pdf.SetFont(fontFamily, "B", 10)
		pdf.CellFormat(blockWidth-4, 5, block.Label, "", 0, "L", false, 0, "")

		pdf.SetFont(fontFamily, "", 10)
		y := top + 5
		lines := layout.WrapText(block.Text, blockWidth-6, pdf.GetStringWidth)
		for _, line := range lines {
			pdf.SetXY(x, y)
			pdf.CellFormat(blockWidth-4, 5, line, "", 0, "L", false, 0, "")
			y += 5
		}
		if y > bottom {
			bottom = y
		}
	}
	pdf.SetY(bottom + 6)
}

// ensureSpace breaks to a fresh page when fewer than height mm remain.
func ensureSpace(pdf *gofpdf.Fpdf, height float64) {
	if pdf.GetY()+height > pageBottom {
		pdf.AddPage()
		pdf.SetY(pageTop)
	}
}

// drawNotesBox draws a fixed-size bordered notes area when the
// document carries notes.
func drawNotesBox(pdf *gofpdf.Fpdf, notes string) {
	if notes == "" {
		return
	}
	const boxHeight = 24.0
	ensureSpace(pdf, boxHeight+8)
	pdf.Ln(3)
	y := pdf.GetY()
	pdf.SetFont(fontFamily, "B", 9)
	pdf.SetXY(pageLeft+2, y+1)
	pdf.CellFormat(40, 4, "Notes:", "", 0, "L", false, 0, "")

	pdf.SetFont(fontFamily, "", 9)
	lines := layout.WrapText(notes, printableWidth-8, pdf.GetStringWidth)
	textY := y + 6
	for _, line := range lines {
		if textY+4 > y+boxHeight-1 {
			break
		}
		pdf.SetXY(pageLeft+2, textY)
		pdf.CellFormat(printableWidth-8, 4, line, "", 0, "L", false, 0, "")
		textY += 4
	}
	pdf.Rect(pageLeft, y, printableWidth, boxHeight, "D")
	pdf.SetY(y + boxHeight + 2)
}

// drawSignatureBlock places the declaration, the signature image above
// the name line when present, and the signatory name.
func drawSignatureBlock(pdf *gofpdf.Fpdf, doc Document, declaration string) {
	const imageHeight = 16.0
	needed := 18.0 + imageHeight
	ensureSpace(pdf, needed)
	pdf.Ln(4)

	if declaration != "" {
		pdf.SetFont(fontFamily, "I", 9)
		for _, line := range layout.WrapText(declaration, printableWidth, pdf.GetStringWidth) {
			pdf.CellFormat(0, 4.5, line, "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}

	y := pdf.GetY()
	if len(doc.SignaturePNG) > 0 {
		opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader("signature-"+string(doc.Variant), opt, bytes.NewReader(doc.SignaturePNG))
		pdf.ImageOptions("signature-"+string(doc.Variant), pageLeft, y, 50, imageHeight, false, opt, 0, "")
	}
	y += imageHeight + 1
	pdf.Line(pageLeft, y, pageLeft+70, y)
	pdf.SetXY(pageLeft, y+1)
	pdf.SetFont(fontFamily, "", 9)
	name := doc.SignatoryName
	if name == "" {
		name = "Authorized Signatory"
	}
	pdf.CellFormat(70, 4.5, name, "", 1, "L", false, 0, "")
}

// drawReferenceBarcode stamps a Code 128 of the reference in the top
// right corner of the current page.
func drawReferenceBarcode(pdf *gofpdf.Fpdf, doc Document) error {
	if doc.Reference == "" {
		return nil
	}
	pngBytes, err := renderCode128PNG(doc.Reference, 600, 120)
	if err != nil {
		return err
	}
	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	name := fmt.Sprintf("ref-barcode-%s-%d", doc.Variant, pdf.PageNo())
	pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(pngBytes))
	pdf.ImageOptions(name, pageLeft+printableWidth-45, pageTop, 45, 9, false, opt, 0, "")
	return nil
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	bounds := scaled.Bounds()
	normalized := image.NewNRGBA(bounds)
	draw.Draw(normalized, bounds, scaled, bounds.Min, draw.Src)

	var out bytes.Buffer
	if err := png.Encode(&out, normalized); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func outputPDF(pdf *gofpdf.Fpdf) ([]byte, error) {
	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
