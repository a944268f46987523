package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"depletions/config"
	"depletions/depletion"
	"depletions/importer"
	"depletions/session"
	"depletions/storage"
	"depletions/submitter"
)

const csvHeader = "Product SKU,Distributor,Country,City,State,Case/Bottles,Quantity\n"

func openTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "web_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if _, err := store.UpsertProducts([]storage.Product{{ID: "p-1", Code: "SKU-1", Name: "Reserva"}}); err != nil {
		t.Fatalf("upsert products: %v", err)
	}
	if _, err := store.UpsertSellers([]storage.Seller{{ID: "s-1", Name: "Acme"}}); err != nil {
		t.Fatalf("upsert sellers: %v", err)
	}
	if _, err := store.ReplaceMovementTypes([]string{"Case", "Bottles"}); err != nil {
		t.Fatalf("replace movement types: %v", err)
	}
	if _, err := store.UpsertAccounts([]storage.Account{{ID: "acct-1", TaxID: "B123", Email: "ops@example.com"}}); err != nil {
		t.Fatalf("upsert accounts: %v", err)
	}
	return store
}

func newTestServer(t *testing.T, store *storage.SQLiteStore) *httptest.Server {
	t.Helper()
	return newTestServerWithSink(t, store, store)
}

func newTestServerWithSink(t *testing.T, store *storage.SQLiteStore, sink submitter.Sink) *httptest.Server {
	t.Helper()
	cfg := config.Config{Import: config.ImportConfig{Columns: importer.DefaultColumns()}}

	sess := session.New(store, session.Options{Columns: cfg.Import.Columns})
	ts := httptest.NewServer(NewServer(sess, sink, store, cfg, zerolog.Nop()))
	t.Cleanup(ts.Close)
	return ts
}

func doRequest(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func validateAccount(t *testing.T, ts *httptest.Server) {
	t.Helper()
	resp := doRequest(t, http.MethodPost, ts.URL+"/api/account/validate", `{"taxId":"B123","email":"ops@example.com"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from account validation, got %d", resp.StatusCode)
	}
}

func uploadCSV(t *testing.T, ts *httptest.Server, filename, content string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	resp, err := http.Post(ts.URL+"/api/import", writer.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("post import: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestServer_AccountValidation(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, openTestStore(t))

	resp := doRequest(t, http.MethodPost, ts.URL+"/api/account/validate", `{"taxId":"B999","email":"ops@example.com"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown account, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodPost, ts.URL+"/api/account/validate", `{"taxId":"","email":""}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodPost, ts.URL+"/api/account/validate", `{"taxId":"B123","email":"ops@example.com","extra":1}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown json field, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodPost, ts.URL+"/api/account/validate", `{"taxId":"B123","email":"ops@example.com"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var account accountResponse
	decodeBody(t, resp, &account)
	if account.AccountID != "acct-1" {
		t.Fatalf("unexpected account id %q", account.AccountID)
	}
}

func TestServer_TypesListsMovementTypes(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, openTestStore(t))
	resp := doRequest(t, http.MethodGet, ts.URL+"/api/types", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var types typesResponse
	decodeBody(t, resp, &types)
	if strings.Join(types.Types, ",") != "Case,Bottles" {
		t.Fatalf("unexpected types %v", types.Types)
	}
}

func TestServer_AddEditRemove(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ts := newTestServer(t, store)
	draft := `{"productId":"p-1","thirdPartySellerId":"s-1","country":"ES","city":"Madrid","state":"MD","type":"Case","quantity":"6"}`

	resp := doRequest(t, http.MethodPost, ts.URL+"/api/depletions", draft)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without an account, got %d", resp.StatusCode)
	}

	validateAccount(t, ts)
	resp = doRequest(t, http.MethodPost, ts.URL+"/api/depletions", draft)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var record depletion.Record
	decodeBody(t, resp, &record)
	if record.Token == "" || record.ProductName != "Reserva" || record.SellerName != "Acme" || record.Quantity != 6 {
		t.Fatalf("unexpected record %+v", record)
	}

	resp = doRequest(t, http.MethodPatch, ts.URL+"/api/depletions/"+record.Token, `{"changes":[{"field":"quantity","value":"0"}]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid quantity, got %d", resp.StatusCode)
	}
	var failure errorResponse
	decodeBody(t, resp, &failure)
	if failure.Field != "quantity" {
		t.Fatalf("expected quantity field error, got %+v", failure)
	}

	resp = doRequest(t, http.MethodPatch, ts.URL+"/api/depletions/"+record.Token, `{"changes":[{"field":"city","value":"Sevilla"},{"field":"quantity","value":"12"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for edit, got %d", resp.StatusCode)
	}
	decodeBody(t, resp, &record)
	if record.City != "Sevilla" || record.Quantity != 12 {
		t.Fatalf("edit not applied: %+v", record)
	}

	resp = doRequest(t, http.MethodPatch, ts.URL+"/api/depletions/missing", `{"changes":[{"field":"city","value":"Bilbao"}]}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown token, got %d", resp.StatusCode)
	}

	_, saved, err := store.LoadWorkingList()
	if err != nil {
		t.Fatalf("load working list: %v", err)
	}
	if len(saved) != 1 || saved[0].City != "Sevilla" {
		t.Fatalf("working list not persisted: %+v", saved)
	}

	resp = doRequest(t, http.MethodDelete, ts.URL+"/api/depletions/"+record.Token, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp = doRequest(t, http.MethodDelete, ts.URL+"/api/depletions/"+record.Token, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestServer_ImportReportsRowsAndSubmitDrainsList(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ts := newTestServer(t, store)
	validateAccount(t, ts)

	input := csvHeader +
		"SKU-1,Acme,ES,Madrid,MD,Case,10\n" +
		"SKU-9,Acme,ES,Madrid,MD,Case,10\n" +
		"SKU-1,Acme,ES,Bilbao,BI,Bottles,3\n"
	resp := uploadCSV(t, ts, "depletions.csv", input)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var imported importResponse
	decodeBody(t, resp, &imported)
	if imported.RowsRead != 3 || imported.RowsAccepted != 2 || imported.RowsRejected != 1 || imported.Total != 2 {
		t.Fatalf("unexpected import summary %+v", imported)
	}
	if len(imported.Messages) != 1 || !strings.HasPrefix(imported.Messages[0], "Line 3:") {
		t.Fatalf("unexpected import messages %v", imported.Messages)
	}

	resp = doRequest(t, http.MethodPost, ts.URL+"/api/submit", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from submit, got %d", resp.StatusCode)
	}
	var submitted submitResponse
	decodeBody(t, resp, &submitted)
	if submitted.Submitted != 2 || submitted.Remaining != 0 {
		t.Fatalf("unexpected submit result %+v", submitted)
	}

	count, err := store.CountDepletions()
	if err != nil {
		t.Fatalf("count depletions: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 stored depletions, got %d", count)
	}

	resp = doRequest(t, http.MethodPost, ts.URL+"/api/submit", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 on empty submit, got %d", resp.StatusCode)
	}
}

func TestServer_ImportRejectsMalformedFile(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, openTestStore(t))
	validateAccount(t, ts)

	resp := uploadCSV(t, ts, "broken.csv", csvHeader+"SKU-1,Acme\n")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var failure errorResponse
	decodeBody(t, resp, &failure)
	if len(failure.Messages) != 1 || !strings.HasPrefix(failure.Messages[0], "Row 2: Too few fields") {
		t.Fatalf("unexpected messages %v", failure.Messages)
	}

	resp = uploadCSV(t, ts, "depletions.pdf", csvHeader)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported extension, got %d", resp.StatusCode)
	}
}

func TestServer_TemplateAndExportDownloads(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, openTestStore(t))

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/template?format=csv", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, "depletions-template.csv") {
		t.Fatalf("unexpected content disposition %q", got)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "Product SKU,Distributor") {
		t.Fatalf("template missing header row: %s", body)
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/export?format=xlsx", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, "depletions.xlsx") {
		t.Fatalf("unexpected content disposition %q", got)
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/export?format=pdf", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown export format, got %d", resp.StatusCode)
	}
}

type gatedSink struct {
	next    submitter.Sink
	entered chan struct{}
	release chan struct{}
}

func (g gatedSink) CreateDepletions(ctx context.Context, depletions []depletion.Submission) error {
	g.entered <- struct{}{}
	<-g.release
	return g.next.CreateDepletions(ctx, depletions)
}

func TestServer_SubmitRejectsConcurrentSubmission(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	sink := gatedSink{next: store, entered: make(chan struct{}, 1), release: make(chan struct{})}
	ts := newTestServerWithSink(t, store, sink)
	validateAccount(t, ts)

	resp := uploadCSV(t, ts, "depletions.csv", csvHeader+"SKU-1,Acme,ES,Madrid,MD,Case,10\nSKU-1,Acme,ES,Bilbao,BI,Case,4\n")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from import, got %d", resp.StatusCode)
	}

	firstStatus := make(chan int, 1)
	go func() {
		resp, err := http.Post(ts.URL+"/api/submit", "application/json", nil)
		if err != nil {
			firstStatus <- 0
			return
		}
		resp.Body.Close()
		firstStatus <- resp.StatusCode
	}()

	select {
	case <-sink.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("first submission never reached the sink")
	}

	resp = doRequest(t, http.MethodPost, ts.URL+"/api/submit", "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 while a submission runs, got %d", resp.StatusCode)
	}

	close(sink.release)
	if status := <-firstStatus; status != http.StatusOK {
		t.Fatalf("expected 200 from first submission, got %d", status)
	}

	count, err := store.CountDepletions()
	if err != nil {
		t.Fatalf("count depletions: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 stored depletions, got %d", count)
	}
}
