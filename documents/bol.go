package documents

import (
	"bytes"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"tradedocs/layout"
)

// renderBillOfLading renders the BOL: not row-per-product, but two
// fixed commodity-class rows over the shipment totals. Two physical
// copies go into one PDF, one for the shipper and one for the carrier.
func renderBillOfLading(doc Document) ([]byte, error) {
	pdf := newDocPDF(doc)

	for i, copyLabel := range []string{"SHIPPER COPY", "CARRIER COPY"} {
		if i > 0 {
			pdf.AddPage()
		}
		if err := drawReferenceBarcode(pdf, doc); err != nil {
			return nil, err
		}
		drawMasthead(pdf, doc, copyLabel)
		drawCarrierHeader(pdf, doc)
		drawAddressBlocks(pdf, partyBlocks(doc))
		drawCommodityTable(pdf, doc)
		drawNotesBox(pdf, doc.Notes)
		drawDualSignatureFooter(pdf, doc)
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	return outputPDF(pdf)
}

// drawCarrierHeader draws the boxed carrier/date block above the
// address blocks.
func drawCarrierHeader(pdf *gofpdf.Fpdf, doc Document) {
	const boxHeight = 14.0
	y := pdf.GetY()
	pdf.Rect(pageLeft, y, printableWidth, boxHeight, "D")
	pdf.Line(pageLeft+printableWidth/3, y, pageLeft+printableWidth/3, y+boxHeight)
	pdf.Line(pageLeft+2*printableWidth/3, y, pageLeft+2*printableWidth/3, y+boxHeight)

	labels := []string{"Carrier", "Ship Date", "BOL Number"}
	values := []string{doc.CarrierCode, doc.Date.Format("2006-01-02"), doc.Reference}
	for i := range labels {
		x := pageLeft + float64(i)*printableWidth/3
		pdf.SetFont(fontFamily, "B", 8)
		pdf.SetXY(x+2, y+2)
		pdf.CellFormat(printableWidth/3-4, 4, labels[i], "", 0, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 11)
		pdf.SetXY(x+2, y+7)
		pdf.CellFormat(printableWidth/3-4, 5, values[i], "", 0, "L", false, 0, "")
	}
	pdf.SetY(y + boxHeight + 5)
}

// drawCommodityTable renders the two fixed commodity-class rows.
func drawCommodityTable(pdf *gofpdf.Fpdf, doc Document) {
	tbl := &layout.Table{
		Cols: []layout.Column{
			{Width: 100, Label: "Commodity Description", Align: "L"},
			{Width: 45, Label: "Handling Units", Align: "C"},
			{Width: 45, Label: "Weight (kg)", Align: "R"},
		},
		LineHeight: lineHeight,
		Pad:        cellPad,
		Left:       pageLeft,
		Top:        pageTop,
		Bottom:     pageBottom,
		FontFamily: fontFamily,
		FontSize:   bodyFontSize,
	}
	tbl.Render(pdf, []layout.Row{
		{
			{Text: "Palletized roasted coffee products"},
			{Text: strconv.FormatInt(doc.Pallets, 10) + " PLT"},
			{Text: doc.GrossWeightKg.StringFixed(1)},
		},
		{
			{Text: "Cartons, boxed consumer goods"},
			{Text: strconv.FormatInt(doc.Cartons, 10) + " CTN"},
			{Text: ""},
		},
	})
	pdf.Ln(4)
}

// drawDualSignatureFooter draws shipper and carrier signature boxes
// side by side. The stored signature image lands in the shipper box.
func drawDualSignatureFooter(pdf *gofpdf.Fpdf, doc Document) {
	const boxHeight = 30.0
	const boxWidth = printableWidth/2 - 5
	ensureSpace(pdf, boxHeight+6)
	pdf.Ln(3)
	y := pdf.GetY()

	for i, label := range []string{"SHIPPER SIGNATURE / DATE", "CARRIER SIGNATURE / DATE"} {
		x := pageLeft + float64(i)*(boxWidth+10)
		pdf.Rect(x, y, boxWidth, boxHeight, "D")
		pdf.SetFont(fontFamily, "B", 8)
		pdf.SetXY(x+2, y+2)
		pdf.CellFormat(boxWidth-4, 4, label, "", 0, "L", false, 0, "")

		if i == 0 && len(doc.SignaturePNG) > 0 {
			opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
			name := "bol-signature-" + strconv.Itoa(pdf.PageNo())
			pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(doc.SignaturePNG))
			pdf.ImageOptions(name, x+4, y+7, 45, 14, false, opt, 0, "")
		}

		pdf.Line(x+4, y+boxHeight-7, x+boxWidth-4, y+boxHeight-7)
		pdf.SetFont(fontFamily, "", 8)
		pdf.SetXY(x+4, y+boxHeight-6)
		name := doc.SignatoryName
		if i == 1 {
			name = doc.CarrierCode
		}
		pdf.CellFormat(boxWidth-8, 4, name, "", 0, "L", false, 0, "")
	}
	pdf.SetY(y + boxHeight + 2)
}
