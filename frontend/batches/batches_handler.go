package batches

import (
	"archive/zip"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"tradedocs/documents"
	"tradedocs/frontend/shared/html"
	"tradedocs/infrastructure/audit"
	settingsstore "tradedocs/infrastructure/settings"
	"tradedocs/infrastructure/sqlite"
	"tradedocs/models"
)

const actor = "operator"

// BatchesPageQueryHandler renders the batch list with the upload form.
func BatchesPageQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := ListBatches(r.Context(), db)
		if err != nil {
			http.Error(w, "failed to load batches", http.StatusInternalServerError)
			return
		}

		message := r.URL.Query().Get("status")
		if message == "" {
			message = "Upload an order export (CSV or XLSX) to start a batch"
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, html.RenderPage("Batches", batchesPageBody(list, message)))
	}
}

func batchesPageBody(list []models.Batch, message string) string {
	var b strings.Builder
	b.WriteString(html.StatusBanner(message))
	b.WriteString(`<h1>Batches</h1>`)

	b.WriteString(`<form method="POST" action="/desk/batches" enctype="multipart/form-data"><fieldset><legend>New batch</legend>`)
	b.WriteString(`<label>Order export <input type="file" name="file" accept=".csv,.xlsx"></label>`)
	b.WriteString(`<label>Reference <input type="text" name="reference" placeholder="auto"></label>`)
	fmt.Fprintf(&b, `<label>Document date <input type="date" name="document_date" value="%s"></label>`, time.Now().Format("2006-01-02"))
	b.WriteString(`<label>Transfer discount % <input type="text" name="discount" placeholder="inherit"></label>`)
	b.WriteString(`<button type="submit">Create batch</button></fieldset></form>`)

	b.WriteString(`<table><thead><tr><th>Reference</th><th>Date</th><th>Discount</th><th>Cartons</th><th>Pallets</th><th>Gross kg</th><th></th></tr></thead><tbody>`)
	for _, batch := range list {
		fmt.Fprintf(&b, `<tr><td><a href="/desk/batches/%d">%s</a></td><td>%s</td><td>%s</td><td>%d</td><td>%d</td><td>%s</td>`,
			batch.ID, html.Escape(batch.Reference), batch.DocumentDate.Format("2006-01-02"),
			batch.TransferDiscountPct.Mul(decimal.NewFromInt(100)).StringFixed(0)+"%",
			batch.Cartons, batch.Pallets, batch.GrossWeightKg.String())
		fmt.Fprintf(&b, `<td><form method="POST" action="/desk/batches/%d/delete"><button type="submit">Delete</button></form></td></tr>`, batch.ID)
	}
	b.WriteString(`</tbody></table>`)
	return b.String()
}

// CreateBatchCommandHandler ingests an uploaded order export.
func CreateBatchCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(20 << 20); err != nil {
			http.Redirect(w, r, "/desk/batches?status="+url.QueryEscape("Error: invalid upload"), http.StatusSeeOther)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Redirect(w, r, "/desk/batches?status="+url.QueryEscape("Error: order file is required"), http.StatusSeeOther)
			return
		}
		defer file.Close()

		documentDate, err := parseDate(r.FormValue("document_date"))
		if err != nil {
			http.Redirect(w, r, "/desk/batches?status="+url.QueryEscape("Error: invalid document date"), http.StatusSeeOther)
			return
		}

		batch, summary, err := CreateFromOrderFile(r.Context(), db, auditSvc, actor,
			file, header.Filename, r.FormValue("reference"), documentDate, r.FormValue("discount"))
		if err != nil {
			http.Redirect(w, r, "/desk/batches?status="+url.QueryEscape("Error: "+err.Error()), http.StatusSeeOther)
			return
		}

		status := fmt.Sprintf("Batch %s: %d of %d rows retained, %d line items, %d units, $%s",
			batch.Reference, summary.RetainedRows, summary.SourceRows, summary.LineItems,
			summary.TotalQuantity, summary.TotalValue.StringFixed(2))
		http.Redirect(w, r, fmt.Sprintf("/desk/batches/%d?status=%s", batch.ID, url.QueryEscape(status)), http.StatusSeeOther)
	}
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", s)
}

// BatchPageQueryHandler renders one batch with its edit form and
// document downloads.
func BatchPageQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batch, ok := loadBatchParam(w, r, db)
		if !ok {
			return
		}
		items, err := DecodeLines(batch.LinesJSON)
		if err != nil {
			http.Error(w, "stored line items are unreadable", http.StatusInternalServerError)
			return
		}

		var b strings.Builder
		b.WriteString(html.StatusBanner(r.URL.Query().Get("status")))
		fmt.Fprintf(&b, `<h1>Batch %s</h1>`, html.Escape(batch.Reference))

		b.WriteString(`<h2>Documents</h2><ul>`)
		for _, variant := range documents.Variants {
			fmt.Fprintf(&b, `<li><a href="/desk/batches/%d/documents/%s">%s</a></li>`, batch.ID, variant, html.Escape(variant.Title()))
		}
		fmt.Fprintf(&b, `<li><a href="/desk/batches/%d/broker.csv">Customs broker CSV</a></li>`, batch.ID)
		fmt.Fprintf(&b, `<li><a href="/desk/batches/%d/documents.zip">All documents (zip)</a></li>`, batch.ID)
		b.WriteString(`</ul>`)

		fmt.Fprintf(&b, `<form method="POST" action="/desk/batches/%d"><fieldset><legend>Batch fields</legend>`, batch.ID)
		fmt.Fprintf(&b, `<label>Reference <input type="text" name="reference" value="%s"></label>`, html.Escape(batch.Reference))
		fmt.Fprintf(&b, `<label>Document date <input type="date" name="document_date" value="%s"></label>`, batch.DocumentDate.Format("2006-01-02"))
		fmt.Fprintf(&b, `<label>Transfer discount %% <input type="text" name="discount" value="%s"></label>`, batch.TransferDiscountPct.Mul(decimal.NewFromInt(100)).String())
		fmt.Fprintf(&b, `<label>Cartons <input type="number" name="cartons" value="%d"></label>`, batch.Cartons)
		fmt.Fprintf(&b, `<label>Pallets <input type="number" name="pallets" value="%d"></label>`, batch.Pallets)
		fmt.Fprintf(&b, `<label>Gross weight kg <input type="text" name="gross_weight_kg" value="%s"></label>`, batch.GrossWeightKg.String())
		fmt.Fprintf(&b, `<label>Carrier SCAC <input type="text" name="carrier_code" value="%s"></label>`, html.Escape(batch.CarrierCode))
		fmt.Fprintf(&b, `<label>Notes <textarea name="notes" rows="4">%s</textarea></label>`, html.Escape(batch.Notes))
		fmt.Fprintf(&b, `<label>Line items (JSON) <textarea name="lines_json" rows="16">%s</textarea></label>`, html.Escape(batch.LinesJSON))
		b.WriteString(`<button type="submit">Save batch</button></fieldset></form>`)

		b.WriteString(`<h2>Line items</h2><table><thead><tr><th>Product ID</th><th>Description</th><th>HTS</th><th>FDA</th><th>Origin</th><th>Qty</th><th>Unit price</th><th>Total</th></tr></thead><tbody>`)
		for _, item := range items {
			fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%s</td><td>%s</td></tr>`,
				html.Escape(item.ProductID), html.Escape(item.Description), html.Escape(item.HTSCode), html.Escape(item.FDACode),
				html.Escape(item.Origin), item.Quantity, item.UnitPrice.StringFixed(4), item.TransferTotal.StringFixed(2))
		}
		b.WriteString(`</tbody></table>`)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, html.RenderPage("Batch "+batch.Reference, b.String()))
	}
}

// UpdateBatchCommandHandler saves operator edits to a batch.
func UpdateBatchCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batch, ok := loadBatchParam(w, r, db)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			redirectBatch(w, r, batch.ID, "Error: invalid form")
			return
		}

		documentDate, err := parseDate(r.FormValue("document_date"))
		if err != nil {
			redirectBatch(w, r, batch.ID, "Error: invalid document date")
			return
		}
		discount, err := resolveDiscount(r.FormValue("discount"), batch, true)
		if err != nil {
			redirectBatch(w, r, batch.ID, "Error: "+err.Error())
			return
		}
		gross, err := parseDecimalForm(r.FormValue("gross_weight_kg"))
		if err != nil {
			redirectBatch(w, r, batch.ID, "Error: invalid gross weight")
			return
		}

		params := UpdateParams{
			Reference:           r.FormValue("reference"),
			DocumentDate:        documentDate,
			TransferDiscountPct: discount,
			Notes:               r.FormValue("notes"),
			Cartons:             parseCount(r.FormValue("cartons")),
			Pallets:             parseCount(r.FormValue("pallets")),
			GrossWeightKg:       gross,
			CarrierCode:         r.FormValue("carrier_code"),
			LinesJSON:           r.FormValue("lines_json"),
		}
		if err := UpdateBatch(r.Context(), db, auditSvc, actor, batch.ID, params); err != nil {
			redirectBatch(w, r, batch.ID, "Error: "+err.Error())
			return
		}
		redirectBatch(w, r, batch.ID, "Batch saved")
	}
}

// DeleteBatchCommandHandler removes a batch.
func DeleteBatchCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batch, ok := loadBatchParam(w, r, db)
		if !ok {
			return
		}
		if err := DeleteBatch(r.Context(), db, auditSvc, actor, batch.ID); err != nil {
			http.Redirect(w, r, "/desk/batches?status="+url.QueryEscape("Failed to delete batch"), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/desk/batches?status="+url.QueryEscape("Deleted batch "+batch.Reference), http.StatusSeeOther)
	}
}

// DocumentDownloadHandler renders a single document variant on the fly.
func DocumentDownloadHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batch, ok := loadBatchParam(w, r, db)
		if !ok {
			return
		}
		variant := documents.Variant(chi.URLParam(r, "variant"))
		known := false
		for _, v := range documents.Variants {
			if v == variant {
				known = true
				break
			}
		}
		if !known {
			http.Error(w, "unknown document", http.StatusNotFound)
			return
		}

		cfg, err := settingsstore.Load(r.Context(), db)
		if err != nil {
			http.Error(w, "failed to load settings", http.StatusInternalServerError)
			return
		}
		doc, err := BuildDocument(batch, cfg, variant)
		if err != nil {
			http.Error(w, "stored line items are unreadable", http.StatusInternalServerError)
			return
		}
		pdf, err := documents.Render(doc)
		if err != nil {
			http.Error(w, "failed to render "+variant.Title(), http.StatusInternalServerError)
			return
		}

		RecordRender(r.Context(), db, auditSvc, actor, batch, variant.Filename(batch.Reference))
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", variant.Filename(batch.Reference)))
		_, _ = w.Write(pdf)
	}
}

// BrokerCSVHandler renders the customs clearance CSV for a batch.
func BrokerCSVHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batch, ok := loadBatchParam(w, r, db)
		if !ok {
			return
		}
		cfg, err := settingsstore.Load(r.Context(), db)
		if err != nil {
			http.Error(w, "failed to load settings", http.StatusInternalServerError)
			return
		}
		doc, err := BuildDocument(batch, cfg, documents.CommercialInvoice)
		if err != nil {
			http.Error(w, "stored line items are unreadable", http.StatusInternalServerError)
			return
		}
		data, err := documents.RenderBrokerCSV(doc, BrokerConfigFrom(cfg))
		if err != nil {
			http.Error(w, "failed to render broker CSV", http.StatusInternalServerError)
			return
		}

		RecordRender(r.Context(), db, auditSvc, actor, batch, "Broker_"+batch.Reference+".csv")
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "Broker_"+batch.Reference+".csv"))
		_, _ = w.Write(data)
	}
}

// DocumentsZipHandler renders every output for a batch into one zip.
// Variants that fail render as a failure note instead of sinking the
// whole archive.
func DocumentsZipHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batch, ok := loadBatchParam(w, r, db)
		if !ok {
			return
		}
		cfg, err := settingsstore.Load(r.Context(), db)
		if err != nil {
			http.Error(w, "failed to load settings", http.StatusInternalServerError)
			return
		}
		doc, err := BuildDocument(batch, cfg, documents.CommercialInvoice)
		if err != nil {
			http.Error(w, "stored line items are unreadable", http.StatusInternalServerError)
			return
		}

		outputs, failures := documents.RenderAll(doc, BrokerConfigFrom(cfg))
		RecordRender(r.Context(), db, auditSvc, actor, batch, batch.Reference+"_documents.zip")

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", batch.Reference+"_documents.zip"))

		zw := zip.NewWriter(w)
		for _, out := range outputs {
			f, err := zw.Create(out.Name)
			if err != nil {
				break
			}
			if _, err := f.Write(out.Bytes); err != nil {
				break
			}
		}
		if len(failures) > 0 {
			if f, err := zw.Create("FAILED.txt"); err == nil {
				for _, failure := range failures {
					fmt.Fprintf(f, "%s: %v\n", failure.Output, failure.Err)
				}
			}
		}
		_ = zw.Close()
	}
}

func loadBatchParam(w http.ResponseWriter, r *http.Request, db *sqlite.DB) (models.Batch, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Redirect(w, r, "/desk/batches?status="+url.QueryEscape("Invalid batch id"), http.StatusSeeOther)
		return models.Batch{}, false
	}
	batch, err := LoadByID(r.Context(), db, id)
	if err != nil {
		http.Redirect(w, r, "/desk/batches?status="+url.QueryEscape("Batch not found"), http.StatusSeeOther)
		return models.Batch{}, false
	}
	return batch, true
}

func redirectBatch(w http.ResponseWriter, r *http.Request, id int64, status string) {
	http.Redirect(w, r, fmt.Sprintf("/desk/batches/%d?status=%s", id, url.QueryEscape(status)), http.StatusSeeOther)
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseDecimalForm(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
