package login

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"tradedocs/frontend/shared/html"
	"tradedocs/infrastructure/argon"
	sessioncookie "tradedocs/infrastructure/session"
	"tradedocs/infrastructure/settings"
	"tradedocs/infrastructure/sqlite"
)

// GetLoginScreenHandler renders the operator login screen.
func GetLoginScreenHandler(w http.ResponseWriter, r *http.Request) {
	errorMessage := r.URL.Query().Get("error")
	body := html.StatusBanner(errorMessage) +
		`<h1>Sign in</h1>` +
		`<form method="POST" action="/login">` +
		`<label>Operator password <input type="password" name="password" autofocus></label>` +
		`<button type="submit">Sign in</button>` +
		`</form>`
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html.RenderBare("Sign in", body))
}

// CreateLoginHandler verifies the operator password and issues a
// session cookie.
func CreateLoginHandler(db *sqlite.DB, sessions *sessioncookie.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("invalid form data"), http.StatusSeeOther)
			return
		}

		password := strings.TrimSpace(r.FormValue("password"))
		if password == "" {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("password is required"), http.StatusSeeOther)
			return
		}

		hash, err := settings.Get(r.Context(), db, settings.KeyOperatorHash)
		if err != nil {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("authentication failed"), http.StatusSeeOther)
			return
		}
		if hash == "" {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("no operator password is set; run the seed command"), http.StatusSeeOther)
			return
		}

		match, err := argon.ComparePasswordAndHash(password, hash)
		if err != nil || !match {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("invalid password"), http.StatusSeeOther)
			return
		}

		token := sessions.Issue()
		http.SetCookie(w, sessioncookie.Cookie(token, int(sessioncookie.TTL.Seconds())))
		http.Redirect(w, r, "/desk/batches", http.StatusSeeOther)
	}
}

// LogoutHandler revokes the session and clears the cookie.
func LogoutHandler(sessions *sessioncookie.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessioncookie.CookieName)
		if err == nil && cookie.Value != "" {
			sessions.Revoke(cookie.Value)
		}
		http.SetCookie(w, sessioncookie.Cookie("", -1))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}
