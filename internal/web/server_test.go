package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/coverdesk/internal/apiclient"
	"github.com/JonMunkholm/coverdesk/internal/config"
	"github.com/JonMunkholm/coverdesk/internal/core"
	"github.com/JonMunkholm/coverdesk/internal/importer"
	"github.com/JonMunkholm/coverdesk/internal/metrics"
	"github.com/JonMunkholm/coverdesk/internal/table"
)

var testEntities = []core.Entity{
	{
		Key:      "members",
		Group:    "Membership",
		Label:    "Members",
		Endpoint: "/members/",
		DataPath: "results",
		Columns: []table.Column{
			{Key: "name", Label: "Name", Sortable: true},
			{Key: "card_number", Label: "Card No"},
			{Key: "status", Label: "Status", Renderer: table.RenderStatus},
		},
		StatusField: "status",
		DefaultSort: table.SortKey{Field: "name", Dir: table.Asc},
		Import: &core.ImportSpec{
			Mapping:        importer.FieldMapping{"Full Name": "name", "Card No": "card_number"},
			RequiredFields: []string{"name", "card_number"},
			BulkEndpoint:   "/members/bulk/",
		},
	},
	{
		Key:      "claims",
		Group:    "Claims",
		Label:    "Claims",
		Endpoint: "/claims/",
		DataPath: "results",
		Columns:  []table.Column{{Key: "claim_number", Label: "Claim No"}},
	},
}

const membersJSON = `{"count":3,"results":[
	{"id":1,"name":"Chebet <b>","card_number":"C-3","status":"active"},
	{"id":2,"name":"Amina","card_number":"C-1","status":"inactive"},
	{"id":3,"name":"Brian","card_number":"C-2","status":"active"}
]}`

// backend fakes the insurance API: csrf, login with password "secret",
// and members behind the session cookie.
type backend struct {
	mu      sync.Mutex
	expired bool
	bulk    []string
}

func (b *backend) expire() {
	b.mu.Lock()
	b.expired = true
	b.mu.Unlock()
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/v1/auth/csrf/":
		io.WriteString(w, `{"csrfToken":"tok"}`)
		return
	case "/api/v1/auth/login/":
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"non_field_errors":["Unable to log in with provided credentials."]}`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "s1", Path: "/"})
		io.WriteString(w, `{"username":"`+creds["username"]+`"}`)
		return
	case "/api/v1/auth/logout/":
		io.WriteString(w, `{}`)
		return
	}

	b.mu.Lock()
	expired := b.expired
	b.mu.Unlock()
	if c, err := r.Cookie("sessionid"); err != nil || c.Value != "s1" || expired {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"detail":"Authentication credentials were not provided."}`)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/members/":
		io.WriteString(w, membersJSON)
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/claims/":
		io.WriteString(w, `{"results":[]}`)
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/members/bulk/":
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bulk = append(b.bulk, string(body))
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"created":2}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail":"Not found."}`)
	}
}

type harness struct {
	t       *testing.T
	srv     *Server
	url     string
	client  *http.Client
	backend *backend
}

func newHarness(t *testing.T, env map[string]string) *harness {
	t.Helper()

	core.Clear()
	for _, e := range testEntities {
		core.Register(e)
	}
	t.Cleanup(core.Clear)

	be := &backend{}
	api := httptest.NewServer(be)
	t.Cleanup(api.Close)

	vars := map[string]string{
		"API_BASE_URL":            api.URL,
		"RATE_LIMIT_ENABLED":      "false",
		"IMPORT_AUTO_CLOSE_DELAY": "1h",
		"TABLE_PAGE_SIZE":         "2",
	}
	for k, v := range env {
		vars[k] = v
	}
	cfg, err := config.LoadFrom(func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	})
	if err != nil {
		t.Fatalf("config.LoadFrom() error = %v", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := core.NewService(cfg, nil, m)
	srv := NewServer(svc, cfg, reg, m)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &harness{t: t, srv: srv, url: ts.URL, client: client, backend: be}
}

func (h *harness) do(req *http.Request) (*http.Response, string) {
	h.t.Helper()
	resp, err := h.client.Do(req)
	if err != nil {
		h.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (h *harness) get(path string, headers ...string) (*http.Response, string) {
	h.t.Helper()
	req, _ := http.NewRequest(http.MethodGet, h.url+path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return h.do(req)
}

func (h *harness) postForm(path string, form url.Values) (*http.Response, string) {
	h.t.Helper()
	req, _ := http.NewRequest(http.MethodPost, h.url+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

func (h *harness) postFile(path, name, content string) (*http.Response, string) {
	h.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", name)
	io.WriteString(fw, content)
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, h.url+path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return h.do(req)
}

func (h *harness) login() {
	h.t.Helper()
	resp, _ := h.postForm("/login", url.Values{"username": {"agent"}, "password": {"secret"}})
	if resp.StatusCode != http.StatusSeeOther {
		h.t.Fatalf("login status = %d, want 303", resp.StatusCode)
	}
}

func TestRequiresLogin(t *testing.T) {
	h := newHarness(t, nil)

	resp, _ := h.get("/entities/members")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != "/login?next=%2Fentities%2Fmembers" {
		t.Errorf("Location = %q", got)
	}

	resp, _ = h.get("/api/entities")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("api status = %d, want 401", resp.StatusCode)
	}
}

func TestLogin(t *testing.T) {
	h := newHarness(t, nil)

	resp, body := h.postForm("/login", url.Values{"username": {"agent"}, "password": {"wrong"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", resp.StatusCode)
	}
	if !strings.Contains(body, "Invalid username or password.") {
		t.Errorf("body missing rejection message:\n%s", body)
	}
	if strings.Contains(body, "wrong") {
		t.Error("password echoed back in the form")
	}

	resp, _ = h.postForm("/login", url.Values{"username": {"agent"}, "password": {"secret"}, "next": {"/entities/claims"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != "/entities/claims" {
		t.Errorf("Location = %q, want /entities/claims", got)
	}

	resp, body = h.get("/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d", resp.StatusCode)
	}
	for _, want := range []string{"Membership", `href="/entities/members"`, "agent"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t, nil)
	h.login()

	resp, _ := h.postForm("/logout", nil)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Fatalf("logout = %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	resp, _ = h.get("/")
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("after logout status = %d, want 303", resp.StatusCode)
	}
}

func TestEntityPage(t *testing.T) {
	h := newHarness(t, nil)
	h.login()

	resp, body := h.get("/entities/members")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d\n%s", resp.StatusCode, body)
	}
	// Page size 2, sorted by name: Amina, Brian.
	for _, want := range []string{"Amina", "Brian", "Page 1 of 2", `id="import-panel"`, "<!DOCTYPE html>"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, "Chebet") {
		t.Error("page 1 shows a page 2 record")
	}

	// The session remembers the page; htmx gets just the table.
	resp, body = h.get("/entities/members?page=2", "HX-Request", "true")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("page 2 status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Chebet &lt;b&gt;") {
		t.Errorf("page 2 missing escaped name:\n%s", body)
	}
	if strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("htmx response includes the layout")
	}

	_, body = h.get("/entities/members?search=amina")
	if !strings.Contains(body, "Amina") || strings.Contains(body, "Brian") {
		t.Errorf("search did not filter:\n%s", body)
	}
}

func TestEntityPage_NotImportable(t *testing.T) {
	h := newHarness(t, nil)
	h.login()

	resp, body := h.get("/entities/claims")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if strings.Contains(body, `id="import-panel"`) {
		t.Error("claims page has an import panel")
	}

	resp, _ = h.get("/entities/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown entity status = %d, want 404", resp.StatusCode)
	}
}

func TestEntityViewJSON(t *testing.T) {
	h := newHarness(t, nil)
	h.login()

	resp, body := h.get("/api/entities/members?sort=name&dir=desc&page_size=10")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d\n%s", resp.StatusCode, body)
	}
	var view table.View
	if err := json.Unmarshal([]byte(body), &view); err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, r := range view.Rows {
		names = append(names, r.Cells[0].Text)
	}
	if got := strings.Join(names, ","); got != "Chebet <b>,Brian,Amina" {
		t.Errorf("rows = %s", got)
	}
	if view.State.SortDir != table.Desc || view.PageSize != 10 {
		t.Errorf("state = %+v", view.State)
	}

	// Unsortable columns are ignored.
	_, body = h.get("/api/entities/members?sort=card_number")
	if err := json.Unmarshal([]byte(body), &view); err != nil {
		t.Fatal(err)
	}
	if view.State.SortField != "name" {
		t.Errorf("sort field = %q, want name", view.State.SortField)
	}
}

func TestListEntities(t *testing.T) {
	h := newHarness(t, nil)
	h.login()

	_, body := h.get("/api/entities")
	var got []entitySummary
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entities, want 2", len(got))
	}
	for _, e := range got {
		if e.Key == "members" && !e.Importable {
			t.Error("members should be importable")
		}
	}
}

func TestBackendSessionExpiry(t *testing.T) {
	h := newHarness(t, nil)
	h.login()
	h.backend.expire()

	resp, _ := h.get("/entities/members", "HX-Request", "true")
	if got := resp.Header.Get("HX-Redirect"); got != "/login" {
		t.Errorf("HX-Redirect = %q, want /login", got)
	}

	// The session was signed out, so the gate redirects from now on.
	resp, _ = h.get("/entities/members")
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", resp.StatusCode)
	}
}

func TestBackendSessionExpiryDuringUpload(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{name: "htmx", headers: map[string]string{"HX-Request": "true"}},
		{name: "json", headers: map[string]string{"Accept": "application/json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.login()

			resp, body := h.postFile("/api/import/members/file", "members.csv", "Full Name,Card No\nAmina,C-1\n")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("file status = %d\n%s", resp.StatusCode, body)
			}
			h.backend.expire()

			req, _ := http.NewRequest(http.MethodPost, h.url+"/api/import/members/upload", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			resp, body = h.do(req)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401\n%s", resp.StatusCode, body)
			}

			if tt.name == "htmx" {
				if got := resp.Header.Get("HX-Redirect"); got != "/login" {
					t.Errorf("HX-Redirect = %q, want /login", got)
				}
			} else {
				var e ErrorResponse
				if err := json.Unmarshal([]byte(body), &e); err != nil {
					t.Fatalf("body is not an error response: %v\n%s", err, body)
				}
				if e.Redirect != "/login" || e.Code != "API001" {
					t.Errorf("error response = %+v", e)
				}
			}

			h.backend.mu.Lock()
			defer h.backend.mu.Unlock()
			if len(h.backend.bulk) != 0 {
				t.Errorf("bulk posts = %v, want none", h.backend.bulk)
			}
		})
	}
}

func TestImportFlow(t *testing.T) {
	h := newHarness(t, nil)
	h.login()

	csv := "Full Name,Card No\nAmina,C-1\nBrian,C-2\n"
	resp, body := h.postFile("/api/import/members/file", "members.csv", csv)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("file status = %d\n%s", resp.StatusCode, body)
	}
	var p importer.Preview
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatal(err)
	}
	if p.State != importer.StateParsedValid || p.TotalRows != 2 || !p.CanUpload {
		t.Fatalf("preview = %+v", p)
	}

	resp, body = h.postForm("/api/import/members/upload", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload status = %d\n%s", resp.StatusCode, body)
	}
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatal(err)
	}
	if p.State != importer.StateSuccess {
		t.Errorf("state = %s, want success", p.State)
	}
	if len(h.backend.bulk) != 1 || !strings.Contains(h.backend.bulk[0], `"card_number":"C-2"`) {
		t.Errorf("bulk posts = %v", h.backend.bulk)
	}

	_, body = h.get("/api/import/members/history")
	var records []core.ImportRecord
	if err := json.Unmarshal([]byte(body), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Actor != "agent" || records[0].FileName != "members.csv" {
		t.Errorf("history = %+v", records)
	}

	resp, body = h.postForm("/api/import/members/reset", nil)
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || p.State != importer.StateIdle {
		t.Errorf("reset = %d %s", resp.StatusCode, p.State)
	}
}

func TestImportFile_Rejected(t *testing.T) {
	h := newHarness(t, nil)
	h.login()

	resp, body := h.postFile("/api/import/members/file", "members.txt", "a,b\n1,2\n")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var e ErrorResponse
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(e.Code, "FILE") {
		t.Errorf("code = %q, want a FILE code", e.Code)
	}

	resp, _ = h.postForm("/api/import/members/upload", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("upload without file status = %d, want 409", resp.StatusCode)
	}

	resp, _ = h.postFile("/api/import/claims/file", "claims.csv", "a\n1\n")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unsupported entity status = %d, want 404", resp.StatusCode)
	}
}

func TestImportFile_InvalidRowsHTMX(t *testing.T) {
	h := newHarness(t, nil)
	h.login()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "members.csv")
	io.WriteString(fw, "Full Name,Card No\nAmina,\n")
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, h.url+"/api/import/members/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	resp, body := h.do(req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{`id="import-panel"`, "Row 2 (card_number)", "alert-error"} {
		if !strings.Contains(body, want) {
			t.Errorf("panel missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "/upload") {
		t.Error("panel offers upload for an invalid file")
	}
}

func TestImportSample(t *testing.T) {
	h := newHarness(t, nil)
	h.login()

	resp, body := h.get("/api/import/members/sample")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); got != `attachment; filename="members_sample.csv"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !strings.HasPrefix(body, "name,card_number") {
		t.Errorf("sample = %q", body)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t, nil)

	resp, body := h.get("/healthz")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"status":"ok"`) {
		t.Errorf("healthz = %d %s", resp.StatusCode, body)
	}

	h.get("/login")
	resp, body = h.get("/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}
	for _, want := range []string{"coverdesk_http_requests_total", "coverdesk_sessions"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := newHarness(t, nil)

	resp, _ := h.get("/login")
	for _, k := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy"} {
		if resp.Header.Get(k) == "" {
			t.Errorf("missing %s", k)
		}
	}

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "coverdesk_session" {
			session = c
		}
	}
	if session == nil || !session.HttpOnly {
		t.Errorf("session cookie = %+v", session)
	}
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, map[string]string{
		"RATE_LIMIT_ENABLED":             "true",
		"RATE_LIMIT_REQUESTS_PER_MINUTE": "2",
	})

	for i := range 2 {
		if resp, _ := h.get("/login"); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d", i, resp.StatusCode)
		}
	}
	resp, _ := h.get("/login")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	// Health checks are not limited.
	if resp, _ := h.get("/healthz"); resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "/"},
		{"/entities/members?page=2", "/entities/members?page=2"},
		{"//evil.example", "/"},
		{"https://evil.example", "/"},
		{`/\evil.example`, "/"},
		{"/login", "/"},
	}
	for _, tt := range tests {
		if got := safeNext(tt.in); got != tt.want {
			t.Errorf("safeNext(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestApplyQuery(t *testing.T) {
	ent := testEntities[0]
	clamp := func(n int) int { return min(max(n, 1), 50) }

	tests := []struct {
		name  string
		start table.State
		query string
		want  table.State
	}{
		{
			name:  "search resets page",
			start: table.State{SortField: "name", SortDir: table.Asc, CurrentPage: 3, PageSize: 10},
			query: "search=amina",
			want:  table.State{SearchTerm: "amina", SortField: "name", SortDir: table.Asc, CurrentPage: 1, PageSize: 10},
		},
		{
			name:  "sort toggles",
			start: table.State{SortField: "name", SortDir: table.Asc, CurrentPage: 1, PageSize: 10},
			query: "sort=name",
			want:  table.State{SortField: "name", SortDir: table.Desc, CurrentPage: 1, PageSize: 10},
		},
		{
			name:  "explicit direction",
			start: table.State{SortField: "name", SortDir: table.Desc, CurrentPage: 1, PageSize: 10},
			query: "sort=name&dir=desc",
			want:  table.State{SortField: "name", SortDir: table.Desc, CurrentPage: 1, PageSize: 10},
		},
		{
			name:  "page size clamped then page applied",
			start: table.State{CurrentPage: 4, PageSize: 10, SortDir: table.Asc},
			query: "page_size=500&page=2",
			want:  table.State{CurrentPage: 2, PageSize: 50, SortDir: table.Asc},
		},
		{
			name:  "garbage ignored",
			start: table.State{CurrentPage: 2, PageSize: 10, SortDir: table.Asc},
			query: "page=abc&page_size=&sort=unknown",
			want:  table.State{CurrentPage: 2, PageSize: 10, SortDir: table.Asc},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			st := tt.start
			applyQuery(&st, q, ent, clamp)
			if st != tt.want {
				t.Errorf("state = %+v, want %+v", st, tt.want)
			}
		})
	}
}

func TestSessionStore_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	st := NewSessionStore(time.Hour, nopClientFactory(t), nil)
	st.now = func() time.Time { return now }

	a, err := st.Create()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := st.Create()

	now = now.Add(45 * time.Minute)
	if _, ok := st.Get(a.ID); !ok {
		t.Fatal("session a expired early")
	}

	now = now.Add(30 * time.Minute)
	if n := st.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if _, ok := st.Get(b.ID); ok {
		t.Error("session b still live")
	}
	if _, ok := st.Get(a.ID); !ok {
		t.Error("session a should still be live")
	}

	now = now.Add(2 * time.Hour)
	if _, ok := st.Get(a.ID); ok {
		t.Error("session a should have expired on access")
	}
	if st.Len() != 0 {
		t.Errorf("Len() = %d, want 0", st.Len())
	}
}

func nopClientFactory(t *testing.T) ClientFactory {
	t.Helper()
	return func(sess apiclient.Session, nav apiclient.Navigator) (*apiclient.Client, error) {
		return apiclient.New(apiclient.Config{BaseURL: "http://127.0.0.1:9"},
			apiclient.WithSession(sess), apiclient.WithNavigator(nav))
	}
}
