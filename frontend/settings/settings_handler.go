package settings

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"tradedocs/frontend/login"
	"tradedocs/frontend/shared/html"
	"tradedocs/infrastructure/argon"
	"tradedocs/infrastructure/audit"
	settingsstore "tradedocs/infrastructure/settings"
	"tradedocs/infrastructure/sqlite"
)

const actor = "operator"

// SettingsPageHandler renders the settings form with current values.
func SettingsPageHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := settingsstore.Load(r.Context(), db)
		if err != nil {
			http.Error(w, "failed to load settings", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, html.RenderPage("Settings", settingsPageBody(cfg, r.URL.Query().Get("status"))))
	}
}

func settingsPageBody(cfg settingsstore.RenderSettings, status string) string {
	var b strings.Builder
	b.WriteString(html.StatusBanner(status))
	b.WriteString(`<h1>Settings</h1>`)

	b.WriteString(`<form method="POST" action="/desk/settings"><fieldset><legend>Company and parties</legend>`)
	textField(&b, "company_name", "Company name", cfg.CompanyName)
	areaField(&b, "exporter_address", "Exporter address", cfg.ExporterAddress)
	areaField(&b, "consignee_address", "Consignee address", cfg.ConsigneeAddress)
	areaField(&b, "billto_address", "Bill-to address", cfg.BillToAddress)
	b.WriteString(`</fieldset><fieldset><legend>Order defaults</legend>`)
	textField(&b, "target_country", "Ship-to country filter", cfg.TargetCountry)
	textField(&b, "default_hts", "Default HTS code", cfg.DefaultHTS)
	textField(&b, "default_fda", "Default FDA code", cfg.DefaultFDA)
	textField(&b, "default_origin", "Default country of origin", cfg.DefaultOrigin)
	b.WriteString(`</fieldset><fieldset><legend>Broker and signing</legend>`)
	textField(&b, "carrier_code", "Carrier SCAC code", cfg.CarrierCode)
	textField(&b, "shipper_name", "Broker shipper name", cfg.ShipperName)
	areaField(&b, "shipper_address", "Broker shipper address", cfg.ShipperAddress)
	textField(&b, "signatory_name", "Signatory name", cfg.SignatoryName)
	b.WriteString(`</fieldset><button type="submit">Save settings</button></form>`)

	b.WriteString(`<form method="POST" action="/desk/settings/signature" enctype="multipart/form-data">`)
	b.WriteString(`<fieldset><legend>Signature image</legend>`)
	if len(cfg.SignaturePNG) > 0 {
		b.WriteString(`<p>A signature image is on file.</p>`)
	} else {
		b.WriteString(`<p>No signature image uploaded; documents print a blank signing line.</p>`)
	}
	b.WriteString(`<input type="file" name="signature" accept="image/png">`)
	b.WriteString(`<button type="submit">Upload PNG</button></fieldset></form>`)

	b.WriteString(`<form method="POST" action="/desk/settings/password"><fieldset><legend>Operator password</legend>`)
	b.WriteString(`<label>New password <input type="password" name="password"></label>`)
	b.WriteString(`<label>Confirm <input type="password" name="confirm"></label>`)
	b.WriteString(`<button type="submit">Change password</button></fieldset></form>`)

	return b.String()
}

func textField(b *strings.Builder, name, label, value string) {
	fmt.Fprintf(b, `<label>%s <input type="text" name="%s" value="%s"></label>`, html.Escape(label), name, html.Escape(value))
}

func areaField(b *strings.Builder, name, label, value string) {
	fmt.Fprintf(b, `<label>%s <textarea name="%s" rows="4">%s</textarea></label>`, html.Escape(label), name, html.Escape(value))
}

// SettingsUpdateHandler saves the text settings in one transaction.
func SettingsUpdateHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("Error: invalid form"), http.StatusSeeOther)
			return
		}

		values := map[string][]byte{
			settingsstore.KeyCompanyName:      formBytes(r, "company_name"),
			settingsstore.KeyExporterAddress:  formBytes(r, "exporter_address"),
			settingsstore.KeyConsigneeAddress: formBytes(r, "consignee_address"),
			settingsstore.KeyBillToAddress:    formBytes(r, "billto_address"),
			settingsstore.KeyTargetCountry:    formBytes(r, "target_country"),
			settingsstore.KeyDefaultHTS:       formBytes(r, "default_hts"),
			settingsstore.KeyDefaultFDA:       formBytes(r, "default_fda"),
			settingsstore.KeyDefaultOrigin:    formBytes(r, "default_origin"),
			settingsstore.KeyCarrierCode:      formBytes(r, "carrier_code"),
			settingsstore.KeyShipperName:      formBytes(r, "shipper_name"),
			settingsstore.KeyShipperAddress:   formBytes(r, "shipper_address"),
			settingsstore.KeySignatoryName:    formBytes(r, "signatory_name"),
		}
		if err := settingsstore.SaveAll(r.Context(), db, auditSvc, actor, values); err != nil {
			http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("Error: save failed"), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("Settings saved"), http.StatusSeeOther)
	}
}

func formBytes(r *http.Request, name string) []byte {
	return []byte(strings.TrimSpace(r.FormValue(name)))
}

// SignatureUploadHandler stores the uploaded signature PNG.
func SignatureUploadHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(2 << 20); err != nil {
			http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("Error: invalid upload"), http.StatusSeeOther)
			return
		}
		file, header, err := r.FormFile("signature")
		if err != nil {
			http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("Error: signature file is required"), http.StatusSeeOther)
			return
		}
		defer file.Close()

		if !strings.HasSuffix(strings.ToLower(header.Filename), ".png") {
			http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("Error: signature must be a PNG"), http.StatusSeeOther)
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, 2<<20))
		if err != nil || len(data) == 0 {
			http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("Error: could not read signature file"), http.StatusSeeOther)
			return
		}

		if err := settingsstore.SaveAll(r.Context(), db, auditSvc, actor, map[string][]byte{settingsstore.KeySignaturePNG: data}); err != nil {
			http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("Error: save failed"), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("Signature uploaded"), http.StatusSeeOther)
	}
}

// PasswordUpdateHandler changes the operator password.
func PasswordUpdateHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("Error: invalid form"), http.StatusSeeOther)
			return
		}
		password := strings.TrimSpace(r.FormValue("password"))
		confirm := strings.TrimSpace(r.FormValue("confirm"))
		if password != confirm {
			http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("Error: passwords do not match"), http.StatusSeeOther)
			return
		}
		if err := login.ValidatePasswordPolicy(password); err != nil {
			http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("Error: "+err.Error()), http.StatusSeeOther)
			return
		}

		hash, err := argon.CreateHash(password, argon.DefaultParams)
		if err != nil {
			http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("Error: could not hash password"), http.StatusSeeOther)
			return
		}
		if err := settingsstore.SaveAll(r.Context(), db, auditSvc, actor, map[string][]byte{settingsstore.KeyOperatorHash: []byte(hash)}); err != nil {
			http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("Error: save failed"), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("Password changed"), http.StatusSeeOther)
	}
}
