package catalog

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"tradedocs/frontend/shared/html"
	"tradedocs/infrastructure/audit"
	cataloginfra "tradedocs/infrastructure/catalog"
	"tradedocs/infrastructure/sqlite"
	"tradedocs/models"
)

const actor = "operator"

// CatalogPageQueryHandler renders the product master list with the
// import form.
func CatalogPageQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := cataloginfra.List(r.Context(), db)
		if err != nil {
			http.Error(w, "failed to load catalog", http.StatusInternalServerError)
			return
		}

		message := r.URL.Query().Get("status")
		if message == "" {
			message = "Upload CSV or XLSX with header: sku,name,description,hts_code,fda_code,unit_weight_kg,unit_price,origin,product_id"
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, html.RenderPage("Catalog", catalogPageBody(items, message)))
	}
}

func catalogPageBody(items []models.CatalogItem, message string) string {
	var b strings.Builder
	b.WriteString(html.StatusBanner(message))
	b.WriteString(`<h1>Catalog</h1>`)

	b.WriteString(`<form method="POST" action="/desk/catalog/import" enctype="multipart/form-data">`)
	b.WriteString(`<input type="file" name="file" accept=".csv,.xlsx">`)
	b.WriteString(`<button type="submit">Import</button></form>`)
	b.WriteString(`<p><a href="/desk/catalog/export.csv">Download catalog CSV</a></p>`)

	b.WriteString(`<table><thead><tr><th>SKU</th><th>Name</th><th>HTS</th><th>FDA</th><th>Unit kg</th><th>Unit price</th><th>Origin</th><th>Product ID</th><th></th></tr></thead><tbody>`)
	for _, item := range items {
		fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td>`,
			html.Escape(item.SKU), html.Escape(item.Name), html.Escape(item.HTSCode), html.Escape(item.FDACode),
			item.UnitWeightKg.String(), item.UnitPrice.String(), html.Escape(item.Origin), html.Escape(item.ExternalProductID()))
		fmt.Fprintf(&b, `<td><form method="POST" action="/desk/catalog/delete/%d"><button type="submit">Delete</button></form></td></tr>`, item.ID)
	}
	b.WriteString(`</tbody></table>`)
	return b.String()
}

// CatalogImportCommandHandler bulk-upserts catalog rows from an upload.
func CatalogImportCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			http.Redirect(w, r, "/desk/catalog?status="+url.QueryEscape("Error: invalid upload"), http.StatusSeeOther)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Redirect(w, r, "/desk/catalog?status="+url.QueryEscape("Error: file is required"), http.StatusSeeOther)
			return
		}
		defer file.Close()

		summary, err := cataloginfra.ImportTable(r.Context(), db, auditSvc, actor, file, header.Filename)
		if err != nil {
			http.Redirect(w, r, "/desk/catalog?status="+url.QueryEscape("Error: "+err.Error()), http.StatusSeeOther)
			return
		}

		status := fmt.Sprintf("Imported: %d inserted, %d updated, %d errors", summary.Inserted, summary.Updated, summary.Errors)
		http.Redirect(w, r, "/desk/catalog?status="+url.QueryEscape(status), http.StatusSeeOther)
	}
}

// CatalogExportCSVHandler downloads the catalog in the import format.
func CatalogExportCSVHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := cataloginfra.ExportCSV(r.Context(), db)
		if err != nil {
			http.Error(w, "failed to export catalog", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="catalog.csv"`)
		_, _ = w.Write(data)
	}
}

// CatalogDeleteItemCommandHandler removes a single catalog item.
func CatalogDeleteItemCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			http.Redirect(w, r, "/desk/catalog?status="+url.QueryEscape("Invalid catalog item id"), http.StatusSeeOther)
			return
		}

		deleted, err := cataloginfra.Delete(r.Context(), db, auditSvc, actor, []int64{id})
		if err != nil {
			http.Redirect(w, r, "/desk/catalog?status="+url.QueryEscape("Failed to delete catalog item"), http.StatusSeeOther)
			return
		}

		status := "No catalog item deleted"
		if deleted == 1 {
			status = "Deleted 1 catalog item"
		}
		http.Redirect(w, r, "/desk/catalog?status="+url.QueryEscape(status), http.StatusSeeOther)
	}
}
