package html

import (
	"fmt"
	"html"
	"strings"
)

// RenderPage wraps a screen body in the shared chrome: head, top nav
// and the CSRF form script.
func RenderPage(title, body string) string {
	var b strings.Builder
	b.WriteString("<!doctype html><html><head><meta charset=\"utf-8\">")
	fmt.Fprintf(&b, "<title>%s</title>", Escape(title))
	b.WriteString("<link rel=\"stylesheet\" href=\"/assets/app.css\"></head><body>")
	b.WriteString(topNav())
	fmt.Fprintf(&b, "<main>%s</main>", body)
	b.WriteString(CSRFFormScript())
	b.WriteString("</body></html>")
	return b.String()
}

// RenderBare wraps a body without the nav, for the login screen.
func RenderBare(title, body string) string {
	return fmt.Sprintf("<!doctype html><html><head><meta charset=\"utf-8\"><title>%s</title><link rel=\"stylesheet\" href=\"/assets/app.css\"></head><body><main>%s</main>%s</body></html>",
		Escape(title), body, CSRFFormScript())
}

func topNav() string {
	return `<nav class="topnav">` +
		`<a href="/desk/batches">Batches</a>` +
		`<a href="/desk/catalog">Catalog</a>` +
		`<a href="/desk/settings">Settings</a>` +
		`<form method="POST" action="/logout" class="logout"><button type="submit">Log out</button></form>` +
		`</nav>`
}

// Escape HTML-escapes untrusted text for element content.
func Escape(s string) string {
	return html.EscapeString(s)
}

// StatusBanner renders the post-redirect status line, if any.
func StatusBanner(message string) string {
	if message == "" {
		return ""
	}
	return fmt.Sprintf(`<p class="status">%s</p>`, Escape(message))
}
