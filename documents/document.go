// Package documents composes the five cross-border trade documents and
// the customs-broker upload file from one consolidated line-item set.
package documents

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tradedocs/orders"
)

// Variant tags one of the five document types.
type Variant string

const (
	CommercialInvoice Variant = "commercial_invoice"
	PurchaseOrder     Variant = "purchase_order"
	SalesInvoice      Variant = "sales_invoice"
	PackingList       Variant = "packing_list"
	BillOfLading      Variant = "bill_of_lading"
)

// Variants lists every document variant in render order.
var Variants = []Variant{CommercialInvoice, PurchaseOrder, SalesInvoice, PackingList, BillOfLading}

// Title returns the printed document title.
func (v Variant) Title() string {
	switch v {
	case CommercialInvoice:
		return "COMMERCIAL INVOICE"
	case PurchaseOrder:
		return "PURCHASE ORDER"
	case SalesInvoice:
		return "SALES INVOICE"
	case PackingList:
		return "PACKING LIST"
	case BillOfLading:
		return "BILL OF LADING"
	}
	return string(v)
}

// Filename returns the download name for a rendered variant.
func (v Variant) Filename(reference string) string {
	base := "Document"
	switch v {
	case CommercialInvoice:
		base = "Commercial_Invoice"
	case PurchaseOrder:
		base = "Purchase_Order"
	case SalesInvoice:
		base = "Sales_Invoice"
	case PackingList:
		base = "Packing_List"
	case BillOfLading:
		base = "Bill_of_Lading"
	}
	return fmt.Sprintf("%s_%s.pdf", base, reference)
}

// Document is everything one render needs. It is built per request and
// discarded; line items arrive as-is from the batch (possibly hand
// edited) and are never re-derived here.
type Document struct {
	Variant       Variant
	Reference     string
	Date          time.Time
	Currency      string
	CompanyName   string
	Exporter      string // free-text address block
	Consignee     string
	BillTo        string
	Notes         string
	Items         []orders.LineItem
	Cartons       int64
	Pallets       int64
	GrossWeightKg decimal.Decimal
	CarrierCode   string
	SignatoryName string
	SignaturePNG  []byte
}

// Total returns the document grand total without re-deriving line
// values.
func (d Document) Total() decimal.Decimal {
	return orders.TotalValue(d.Items)
}

// Render produces the PDF bytes for the document's variant.
func Render(doc Document) ([]byte, error) {
	switch doc.Variant {
	case CommercialInvoice, PurchaseOrder, SalesInvoice, PackingList:
		return renderTabular(doc)
	case BillOfLading:
		return renderBillOfLading(doc)
	}
	return nil, fmt.Errorf("unknown document variant %q", doc.Variant)
}

// Output is one finished file.
type Output struct {
	Name        string
	ContentType string
	Bytes       []byte
}

// RenderError ties a failure to the output it belongs to.
type RenderError struct {
	Output string
	Err    error
}

func (e RenderError) Error() string {
	return e.Output + ": " + e.Err.Error()
}

// RenderAll renders every PDF variant plus the broker CSV. Each output
// is independent: a failure is recorded and the remaining outputs are
// still produced.
func RenderAll(doc Document, broker BrokerConfig) ([]Output, []RenderError) {
	outputs := make([]Output, 0, len(Variants)+1)
	var failures []RenderError

	for _, v := range Variants {
		doc.Variant = v
		pdfBytes, err := Render(doc)
		if err != nil {
			failures = append(failures, RenderError{Output: string(v), Err: err})
			continue
		}
		outputs = append(outputs, Output{
			Name:        v.Filename(doc.Reference),
			ContentType: "application/pdf",
			Bytes:       pdfBytes,
		})
	}

	csvBytes, err := RenderBrokerCSV(doc, broker)
	if err != nil {
		failures = append(failures, RenderError{Output: "broker_csv", Err: err})
	} else {
		outputs = append(outputs, Output{
			Name:        fmt.Sprintf("Broker_Upload_%s.csv", doc.Reference),
			ContentType: "text/csv",
			Bytes:       csvBytes,
		})
	}
	return outputs, failures
}
