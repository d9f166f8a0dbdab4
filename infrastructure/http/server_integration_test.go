package http

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uptrace/bun"

	"tradedocs/infrastructure/argon"
	"tradedocs/infrastructure/audit"
	sessioncookie "tradedocs/infrastructure/session"
	"tradedocs/infrastructure/settings"
	"tradedocs/infrastructure/sqlite"
)

const operatorPassword = "Operator123!Tradedocs"

type integrationEnv struct {
	server *httptest.Server
	db     *sqlite.DB
}

func setupIntegrationServer(t *testing.T) (*integrationEnv, *http.Client) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "server-integration.db")
	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := sqlite.ApplyEmbeddedMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	hash, err := argon.CreateHash(operatorPassword, argon.DefaultParams)
	if err != nil {
		t.Fatalf("hash operator password: %v", err)
	}
	if err := settings.Set(context.Background(), db, settings.KeyOperatorHash, []byte(hash)); err != nil {
		t.Fatalf("seed operator password: %v", err)
	}

	s := NewServer("127.0.0.1:0", db, sessioncookie.NewStore(), audit.NewService())
	ts := httptest.NewServer(s.router)
	env := &integrationEnv{server: ts, db: db}
	t.Cleanup(func() {
		env.server.Close()
		_ = env.db.Close()
	})

	return env, newHTTPClient(t)
}

func newHTTPClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, client *http.Client, baseURL, path string) *http.Response {
	t.Helper()
	resp, err := client.Get(baseURL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

func postForm(t *testing.T, client *http.Client, baseURL, path string, data url.Values) *http.Response {
	t.Helper()
	if data == nil {
		data = url.Values{}
	}
	if token := csrfToken(t, client, baseURL); token != "" {
		data.Set("_csrf", token)
	}
	resp, err := client.PostForm(baseURL+path, data)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

func postMultipartFile(t *testing.T, client *http.Client, baseURL, path, fieldName, fileName string, fileContents []byte, extraFields map[string]string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if token := csrfToken(t, client, baseURL); token != "" {
		if err := writer.WriteField("_csrf", token); err != nil {
			t.Fatalf("write csrf multipart field: %v", err)
		}
	}
	for name, value := range extraFields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write multipart field %s: %v", name, err)
		}
	}

	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("create multipart file field: %v", err)
	}
	if _, err := part.Write(fileContents); err != nil {
		t.Fatalf("write multipart file content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, &body)
	if err != nil {
		t.Fatalf("build multipart request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("POST multipart %s failed: %v", path, err)
	}
	return resp
}

func csrfToken(t *testing.T, client *http.Client, baseURL string) string {
	t.Helper()
	u, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == "X-CSRF-Token" {
			return c.Value
		}
	}
	return ""
}

func loginOperator(t *testing.T, client *http.Client, baseURL string) {
	t.Helper()

	resp := get(t, client, baseURL, "/login")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected login page 200, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = postForm(t, client, baseURL, "/login", url.Values{
		"password": {operatorPassword},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected login 303, got %d", resp.StatusCode)
	}
	if location := resp.Header.Get("Location"); location != "/desk/batches" {
		t.Fatalf("unexpected login redirect: %s", location)
	}
	_ = resp.Body.Close()
}

func TestHealthAndAuthRedirects(t *testing.T) {
	env, client := setupIntegrationServer(t)
	baseURL := env.server.URL

	resp := get(t, client, baseURL, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected health 200, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = get(t, client, baseURL, "/desk/batches")
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Fatalf("expected unauthenticated redirect to /login, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
	_ = resp.Body.Close()

	loginOperator(t, client, baseURL)

	resp = get(t, client, baseURL, "/")
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/desk/batches" {
		t.Fatalf("expected authenticated root redirect to /desk/batches, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
	_ = resp.Body.Close()
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env, client := setupIntegrationServer(t)
	baseURL := env.server.URL

	resp := get(t, client, baseURL, "/login")
	_ = resp.Body.Close()

	resp = postForm(t, client, baseURL, "/login", url.Values{"password": {"not-the-password"}})
	if resp.StatusCode != http.StatusSeeOther || !strings.HasPrefix(resp.Header.Get("Location"), "/login") {
		t.Fatalf("expected redirect back to /login, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
	_ = resp.Body.Close()
}

func TestCSRFRejectsMissingToken(t *testing.T) {
	env, client := setupIntegrationServer(t)
	baseURL := env.server.URL

	resp, err := client.PostForm(baseURL+"/login", url.Values{"password": {operatorPassword}})
	if err != nil {
		t.Fatalf("POST /login failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without csrf token, got %d", resp.StatusCode)
	}
}

const catalogCSV = `sku,name,description,hts_code,fda_code,unit_weight_kg,unit_price,origin,product_id
HR-100,Espresso Blend 340g,Whole bean espresso blend,0901.21.0035,30BEC07,0.34,12.50,CA,4411001
HR-200,Ceramic Mug,Stoneware mug,6912.00.4810,,0.42,9.00,CA,4411002
`

const orderCSV = `Ship to country,Item type,Variant code / SKU,Item variant,Quantity,Price per unit,Discount
United States,product,HR-100,Espresso Blend 340g,4,$8.50,15%
United States,product,HR-200,Ceramic Mug,2,$9.00,0%
Canada,product,HR-100,Espresso Blend 340g,3,$8.50,15%
`

func TestOrderUploadRendersDocuments(t *testing.T) {
	env, client := setupIntegrationServer(t)
	baseURL := env.server.URL
	loginOperator(t, client, baseURL)

	resp := postMultipartFile(t, client, baseURL, "/desk/catalog/import", "file", "catalog.csv", []byte(catalogCSV), nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected catalog import 303, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = postMultipartFile(t, client, baseURL, "/desk/batches", "file", "orders.csv", []byte(orderCSV), map[string]string{
		"reference":     "EXP-IT-001",
		"document_date": "2026-01-09",
		"discount":      "25",
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected batch create 303, got %d", resp.StatusCode)
	}
	batchPath := resp.Header.Get("Location")
	_ = resp.Body.Close()
	if !strings.HasPrefix(batchPath, "/desk/batches/") {
		t.Fatalf("unexpected batch redirect: %s", batchPath)
	}
	if i := strings.IndexByte(batchPath, '?'); i >= 0 {
		batchPath = batchPath[:i]
	}

	var lineCount int64
	err := env.db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(*) FROM batches WHERE reference = ?`, "EXP-IT-001").Scan(ctx, &lineCount)
	})
	if err != nil || lineCount != 1 {
		t.Fatalf("expected 1 stored batch, got %d (err %v)", lineCount, err)
	}

	resp = get(t, client, baseURL, batchPath+"/documents/commercial_invoice")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected invoice 200, got %d", resp.StatusCode)
	}
	pdf, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("commercial invoice is not a PDF")
	}

	resp = get(t, client, baseURL, batchPath+"/broker.csv")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected broker csv 200, got %d", resp.StatusCode)
	}
	brokerBody, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(brokerBody), "HR-100") {
		t.Fatalf("broker csv missing FDA-coded product: %s", brokerBody)
	}
	if strings.Contains(string(brokerBody), "HR-200") {
		t.Fatalf("broker csv must omit items without an FDA code")
	}

	resp = get(t, client, baseURL, batchPath+"/documents.zip")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected documents zip 200, got %d", resp.StatusCode)
	}
	zipBody, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !bytes.HasPrefix(zipBody, []byte("PK")) {
		t.Fatalf("documents.zip is not a zip archive")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	env, client := setupIntegrationServer(t)
	baseURL := env.server.URL
	loginOperator(t, client, baseURL)

	resp := postForm(t, client, baseURL, "/desk/settings", url.Values{
		"company_name":   {"Northbound Trading Co."},
		"carrier_code":   {"FEDX"},
		"target_country": {"United States"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected settings save 303, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = get(t, client, baseURL, "/desk/settings")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected settings page 200, got %d", resp.StatusCode)
	}
	page, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(page), "Northbound Trading Co.") {
		t.Fatalf("saved company name not shown on settings page")
	}
}
