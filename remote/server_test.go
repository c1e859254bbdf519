package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hazyhaar/pagekit"
	"github.com/hazyhaar/pagekit/trace"
)

// stubDriver satisfies pagekit.Driver without a browser.
type stubDriver struct {
	opened []string
	title  string
	handle string
}

func (d *stubDriver) OpenBrowser(ctx context.Context, url, browser string) (string, error) {
	d.opened = append(d.opened, url)
	d.handle = "sess_stub"
	return d.handle, nil
}
func (d *stubDriver) CloseBrowser(ctx context.Context) error         { d.handle = ""; return nil }
func (d *stubDriver) Navigate(ctx context.Context, url string) error { return nil }
func (d *stubDriver) CurrentHandle() string                          { return d.handle }
func (d *stubDriver) URL(ctx context.Context) (string, error)        { return "", nil }
func (d *stubDriver) Title(ctx context.Context) (string, error)      { return d.title, nil }
func (d *stubDriver) PageSource(ctx context.Context) (string, error) { return "", nil }
func (d *stubDriver) FindElement(ctx context.Context, locator string, required bool) (pagekit.Element, error) {
	return nil, nil
}
func (d *stubDriver) FindElements(ctx context.Context, locator string) ([]pagekit.Element, error) {
	return nil, nil
}
func (d *stubDriver) SetSpeed(time.Duration)               {}
func (d *stubDriver) Shutdown(ctx context.Context) error   { return nil }

var _ pagekit.Driver = (*stubDriver)(nil)

func serverLib(t *testing.T) *pagekit.Library {
	t.Helper()
	d := &stubDriver{title: "Stub Title"}
	p, err := pagekit.New(nil, pagekit.WithName("Stub Page"), pagekit.WithDriver(d))
	if err != nil {
		t.Fatal(err)
	}
	err = p.Operation("explode", func(ctx context.Context, args ...string) (any, error) {
		return nil, errors.New("element not clickable")
	})
	if err != nil {
		t.Fatal(err)
	}
	lib := pagekit.NewLibrary()
	if err := lib.Add(p); err != nil {
		t.Fatal(err)
	}
	return lib
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&m); err != nil {
		t.Fatalf("decode: %v (body %q)", err, rec.Body.String())
	}
	return m
}

func TestServer_Healthz(t *testing.T) {
	h := NewServer(serverLib(t)).Routes()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	if m := decodeBody(t, rec); m["status"] != "ok" {
		t.Fatalf("unexpected body: %v", m)
	}
}

func TestServer_Keywords(t *testing.T) {
	h := NewServer(serverLib(t)).Routes()

	req := httptest.NewRequest(http.MethodGet, "/keywords", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	var resp struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Keywords) != 6 {
		t.Fatalf("expected 6 keywords, got %d: %v", len(resp.Keywords), resp.Keywords)
	}
	var hasExplode bool
	for _, kw := range resp.Keywords {
		if kw == "explode_Stub_Page" {
			hasExplode = true
		}
	}
	if !hasExplode {
		t.Fatalf("custom operation missing from %v", resp.Keywords)
	}
}

func TestServer_Run_Pass(t *testing.T) {
	h := NewServer(serverLib(t)).Routes()

	rec := postJSON(t, h, "/run", `{"keyword":"page_title_Stub_Page"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}
	m := decodeBody(t, rec)
	if m["status"] != "PASS" {
		t.Errorf("status: got %v", m["status"])
	}
	if m["return"] != "Stub Title" {
		t.Errorf("return: got %v", m["return"])
	}
}

func TestServer_Run_KeywordNotFound(t *testing.T) {
	h := NewServer(serverLib(t)).Routes()

	rec := postJSON(t, h, "/run", `{"keyword":"warp_Stub_Page"}`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d", rec.Code)
	}
	m := decodeBody(t, rec)
	if m["status"] != "FAIL" || m["kind"] != "keyword_not_found" {
		t.Fatalf("unexpected body: %v", m)
	}
}

func TestServer_Run_ExecutionFail(t *testing.T) {
	h := NewServer(serverLib(t)).Routes()

	rec := postJSON(t, h, "/run", `{"keyword":"explode_Stub_Page"}`)

	// The keyword ran; the transport succeeded.
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	m := decodeBody(t, rec)
	if m["status"] != "FAIL" || m["kind"] != "execution" {
		t.Fatalf("unexpected body: %v", m)
	}
	if err, _ := m["error"].(string); !strings.Contains(err, "element not clickable") {
		t.Fatalf("error: got %v", m["error"])
	}
}

func TestServer_Run_BadRequest(t *testing.T) {
	h := NewServer(serverLib(t)).Routes()

	rec := postJSON(t, h, "/run", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: got status %d", rec.Code)
	}
	if m := decodeBody(t, rec); m["kind"] != "bad_request" {
		t.Fatalf("unexpected body: %v", m)
	}

	rec = postJSON(t, h, "/run", `{"args":["a"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing keyword: got status %d", rec.Code)
	}
}

func TestServer_BasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	h := NewServer(serverLib(t), ServerWithBasicAuth("ops", string(hash))).Routes()

	req := httptest.NewRequest(http.MethodGet, "/keywords", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no credentials: got status %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/keywords", nil)
	req.SetBasicAuth("ops", "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: got status %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/keywords", nil)
	req.SetBasicAuth("ops", "s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid credentials: got status %d", rec.Code)
	}

	// Health stays open for probes.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: got status %d", rec.Code)
	}
}

func TestServer_TraceHeader(t *testing.T) {
	h := NewServer(serverLib(t)).Routes()

	req := httptest.NewRequest(http.MethodGet, "/keywords", nil)
	req.Header.Set("X-Trace-Id", "trc_cafef00d")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Trace-Id"); got != "trc_cafef00d" {
		t.Fatalf("echoed trace ID: got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/keywords", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Trace-Id"); !strings.HasPrefix(got, "trc_") {
		t.Fatalf("minted trace ID: got %q", got)
	}
}

type captureRecorder struct {
	entries []*trace.Entry
}

func (r *captureRecorder) RecordAsync(e *trace.Entry) { r.entries = append(r.entries, e) }
func (r *captureRecorder) Close() error               { return nil }

func TestServer_Ingest(t *testing.T) {
	rec := &captureRecorder{}
	h := NewServer(serverLib(t), ServerWithIngest(rec)).Routes()

	batch, err := json.Marshal([]*trace.Entry{
		{Page: "Stub Page", Keyword: "open_Stub_Page", DurationUs: 1200, Timestamp: 1},
		{Page: "Stub Page", Keyword: "close_Stub_Page", DurationUs: 300, Timestamp: 2},
	})
	if err != nil {
		t.Fatal(err)
	}

	resp := postJSON(t, h, "/traces", string(batch))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("got status %d, body %s", resp.Code, resp.Body.String())
	}
	if len(rec.entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(rec.entries))
	}
	if rec.entries[0].Keyword != "open_Stub_Page" {
		t.Fatalf("first entry: got %+v", rec.entries[0])
	}
}

func TestServer_Ingest_NotMountedByDefault(t *testing.T) {
	h := NewServer(serverLib(t)).Routes()

	resp := postJSON(t, h, "/traces", `[]`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("got status %d", resp.Code)
	}
}
