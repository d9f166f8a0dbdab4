package documents

import (
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"tradedocs/layout"
	"tradedocs/orders"
)

const invoiceDeclaration = "I hereby certify that the information on this invoice is true and correct and that the contents of this shipment are as stated above."

// columnSpec pairs a table column with the line-item projection that
// fills it.
type columnSpec struct {
	col   layout.Column
	value func(item orders.LineItem) string
}

// schemaFor returns the per-variant column schema. Widths are fixed
// constants summing to the printable width.
func schemaFor(v Variant) []columnSpec {
	qty := func(item orders.LineItem) string { return strconv.FormatInt(item.Quantity, 10) }
	unit := func(item orders.LineItem) string { return money(item.UnitPrice) }
	total := func(item orders.LineItem) string { return money(item.TransferTotal) }
	sku := func(item orders.LineItem) string { return item.SKU }
	desc := func(item orders.LineItem) string { return item.Description }

	switch v {
	case CommercialInvoice:
		return []columnSpec{
			{layout.Column{Width: 22, Label: "SKU", Align: "L"}, sku},
			{layout.Column{Width: 48, Label: "Description", Align: "L"}, desc},
			{layout.Column{Width: 24, Label: "HTS Code", Align: "C"}, func(i orders.LineItem) string { return i.HTSCode }},
			{layout.Column{Width: 20, Label: "FDA Code", Align: "C"}, func(i orders.LineItem) string { return i.FDACode }},
			{layout.Column{Width: 12, Label: "COO", Align: "C"}, func(i orders.LineItem) string { return i.Origin }},
			{layout.Column{Width: 16, Label: "Wt (kg)", Align: "R"}, func(i orders.LineItem) string { return i.UnitWeightKg.StringFixed(2) }},
			{layout.Column{Width: 12, Label: "Qty", Align: "C"}, qty},
			{layout.Column{Width: 18, Label: "Price", Align: "R"}, unit},
			{layout.Column{Width: 18, Label: "Total", Align: "R"}, total},
		}
	case PackingList:
		return []columnSpec{
			{layout.Column{Width: 40, Label: "SKU", Align: "L"}, sku},
			{layout.Column{Width: 110, Label: "Description", Align: "L"}, desc},
			{layout.Column{Width: 40, Label: "Qty", Align: "C"}, qty},
		}
	default: // Purchase Order, Sales Invoice
		return []columnSpec{
			{layout.Column{Width: 30, Label: "SKU", Align: "L"}, sku},
			{layout.Column{Width: 90, Label: "Description", Align: "L"}, desc},
			{layout.Column{Width: 20, Label: "Qty", Align: "C"}, qty},
			{layout.Column{Width: 25, Label: "Price", Align: "R"}, unit},
			{layout.Column{Width: 25, Label: "Total", Align: "R"}, total},
		}
	}
}

// partyBlocks returns the three address blocks with the role labels
// the variant calls for. The three-block layout itself is shared.
func partyBlocks(doc Document) [3]addressBlock {
	switch doc.Variant {
	case PurchaseOrder:
		return [3]addressBlock{
			{"BUYER:", doc.BillTo},
			{"VENDOR:", doc.Exporter},
			{"SHIP TO:", doc.Consignee},
		}
	case SalesInvoice:
		return [3]addressBlock{
			{"FROM:", doc.Exporter},
			{"BILL TO:", doc.BillTo},
			{"SHIP TO:", doc.Consignee},
		}
	case PackingList:
		return [3]addressBlock{
			{"SHIPPER:", doc.Exporter},
			{"SHIP TO (CONSIGNEE):", doc.Consignee},
			{"BILL TO:", doc.BillTo},
		}
	case BillOfLading:
		return [3]addressBlock{
			{"SHIP FROM:", doc.Exporter},
			{"SHIP TO:", doc.Consignee},
			{"FREIGHT CHARGES BILL TO:", doc.BillTo},
		}
	default: // Commercial Invoice
		return [3]addressBlock{
			{"FROM (EXPORTER):", doc.Exporter},
			{"TO (CONSIGNEE):", doc.Consignee},
			{"BILL TO (IMPORTER):", doc.BillTo},
		}
	}
}

// renderTabular renders the row-per-product variants: Commercial
// Invoice, Purchase Order, Sales Invoice and Packing List.
func renderTabular(doc Document) ([]byte, error) {
	pdf := newDocPDF(doc)

	if doc.Variant == PackingList {
		if err := drawReferenceBarcode(pdf, doc); err != nil {
			return nil, err
		}
	}
	drawMasthead(pdf, doc, "")
	drawAddressBlocks(pdf, partyBlocks(doc))

	schema := schemaFor(doc.Variant)
	cols := make([]layout.Column, len(schema))
	for i, spec := range schema {
		cols[i] = spec.col
	}
	tbl := &layout.Table{
		Cols:       cols,
		LineHeight: lineHeight,
		Pad:        cellPad,
		Left:       pageLeft,
		Top:        pageTop,
		Bottom:     pageBottom,
		FontFamily: fontFamily,
		FontSize:   bodyFontSize,
	}

	rows := make([]layout.Row, len(doc.Items))
	for i, item := range doc.Items {
		row := make(layout.Row, len(schema))
		for j, spec := range schema {
			row[j] = layout.Cell{Text: spec.value(item)}
		}
		rows[i] = row
	}
	tbl.Render(pdf, rows)

	drawTotalsRow(pdf, doc)
	drawNotesBox(pdf, doc.Notes)

	switch doc.Variant {
	case CommercialInvoice:
		drawSignatureBlock(pdf, doc, invoiceDeclaration)
	case SalesInvoice:
		drawSignatureBlock(pdf, doc, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	return outputPDF(pdf)
}

// drawTotalsRow writes the monetary grand total, or the carton count
// for the Packing List, right-aligned under the table.
func drawTotalsRow(pdf *gofpdf.Fpdf, doc Document) {
	ensureSpace(pdf, 15)
	pdf.Ln(5)
	pdf.SetFont(fontFamily, "B", 12)
	if doc.Variant == PackingList {
		pdf.CellFormat(printableWidth-25, 10, "Total Cartons:", "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 10, strconv.FormatInt(doc.Cartons, 10), "", 1, "R", false, 0, "")
		return
	}
	pdf.CellFormat(printableWidth-25, 10, "Total ("+doc.Currency+"):", "", 0, "R", false, 0, "")
	pdf.CellFormat(25, 10, money(doc.Total()), "", 1, "R", false, 0, "")
}
